package e2e

import (
	"github.com/cucumber/godog"

	"civicfin/e2e/steps/common"
	"civicfin/e2e/steps/finance"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Generic requests and status/body assertions
	common.RegisterSteps(ctx, tc)

	// Finance report assertions
	finance.RegisterSteps(ctx, tc)
}
