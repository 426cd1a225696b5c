package handler

import (
	"net/url"
	"strings"

	"civicfin/internal/finance/cycle"
	"civicfin/internal/finance/models"
	dErrors "civicfin/pkg/domain-errors"
)

// FinanceRequest is the parsed GET /finance request.
type FinanceRequest struct {
	LegislatorID string
	Cycle        *int
	Mode         models.Mode
}

// ParseFinanceRequest validates the path id and the cycle and mode query values.
func ParseFinanceRequest(legislatorID string, query url.Values) (FinanceRequest, error) {
	id, err := ParseLegislatorID(legislatorID)
	if err != nil {
		return FinanceRequest{}, err
	}
	c, err := cycle.Parse(query.Get("cycle"))
	if err != nil {
		return FinanceRequest{}, err
	}
	mode, ok := models.ParseMode(strings.ToLower(strings.TrimSpace(query.Get("mode"))))
	if !ok {
		return FinanceRequest{}, dErrors.New(dErrors.CodeValidation, "mode must be sample or full")
	}
	return FinanceRequest{LegislatorID: id, Cycle: c, Mode: mode}, nil
}

// ParseLegislatorID trims and bounds the path id.
func ParseLegislatorID(raw string) (string, error) {
	id := strings.ToUpper(strings.TrimSpace(raw))
	if id == "" {
		return "", dErrors.New(dErrors.CodeValidation, "legislator id is required")
	}
	if len(id) > 16 {
		return "", dErrors.New(dErrors.CodeValidation, "legislator id must be at most 16 characters")
	}
	return id, nil
}
