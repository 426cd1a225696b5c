// Package quality turns breakdown completeness into the confidence label
// attached to every finance response.
package quality

import (
	"fmt"
	"math"

	"civicfin/internal/finance/models"
)

// Thresholds are completeness percentages. Both bounds are inclusive on the
// upper side: an axis at exactly High counts as high and one at exactly Low
// counts as medium, so "exceeds High" reads as High or more.
type Thresholds struct {
	High float64 `yaml:"high"`
	Low  float64 `yaml:"low"`
}

// DefaultThresholds returns the standard 80/40 split.
func DefaultThresholds() Thresholds {
	return Thresholds{High: 80, Low: 40}
}

// Validate checks 0 <= Low <= High <= 100.
func (t Thresholds) Validate() error {
	if t.Low < 0 || t.High > 100 || t.Low > t.High {
		return fmt.Errorf("invalid quality thresholds: low=%.1f high=%.1f", t.Low, t.High)
	}
	return nil
}

// Classifier applies Thresholds.
type Classifier struct {
	thresholds Thresholds
}

// New creates a classifier, rejecting inconsistent thresholds.
func New(t Thresholds) (*Classifier, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{thresholds: t}, nil
}

// Metric builds the completeness metric for one breakdown axis.
func (c *Classifier) Metric(totalAnalyzed, withAttribute int) models.DataQualityMetric {
	m := models.DataQualityMetric{
		TotalAnalyzed: totalAnalyzed,
		WithAttribute: withAttribute,
	}
	if totalAnalyzed <= 0 {
		m.Confidence = models.ConfidenceUnavailable
		return m
	}
	m.CompletenessPercentage = round2(float64(withAttribute) / float64(totalAnalyzed) * 100)
	m.Confidence = c.level(m.CompletenessPercentage)
	return m
}

// Classify derives the overall confidence. Missing totals are unavailable;
// an empty axis or either axis under Low is low; both axes at or above High
// is high; everything else is medium.
func (c *Classifier) Classify(summaryPresent bool, industry, geography models.DataQualityMetric) models.Confidence {
	if !summaryPresent {
		return models.ConfidenceUnavailable
	}
	if industry.TotalAnalyzed == 0 || geography.TotalAnalyzed == 0 {
		return models.ConfidenceLow
	}
	if industry.CompletenessPercentage < c.thresholds.Low || geography.CompletenessPercentage < c.thresholds.Low {
		return models.ConfidenceLow
	}
	if industry.CompletenessPercentage >= c.thresholds.High && geography.CompletenessPercentage >= c.thresholds.High {
		return models.ConfidenceHigh
	}
	return models.ConfidenceMedium
}

func (c *Classifier) level(pct float64) models.Confidence {
	switch {
	case pct >= c.thresholds.High:
		return models.ConfidenceHigh
	case pct < c.thresholds.Low:
		return models.ConfidenceLow
	default:
		return models.ConfidenceMedium
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
