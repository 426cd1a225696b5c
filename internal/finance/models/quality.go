package models

// Confidence is the coarse data-quality label attached to a response.
type Confidence string

const (
	ConfidenceHigh        Confidence = "high"
	ConfidenceMedium      Confidence = "medium"
	ConfidenceLow         Confidence = "low"
	ConfidenceUnavailable Confidence = "unavailable"
)

// DataQualityMetric describes how many analyzed records carried the attribute
// a breakdown groups by.
type DataQualityMetric struct {
	TotalAnalyzed          int        `json:"totalAnalyzed"`
	WithAttribute          int        `json:"withAttribute"`
	CompletenessPercentage float64    `json:"completenessPercentage"`
	Confidence             Confidence `json:"confidence"`
}

// DataQuality summarizes both breakdown axes.
type DataQuality struct {
	Industry              DataQualityMetric `json:"industry"`
	Geography             DataQualityMetric `json:"geography"`
	OverallDataConfidence Confidence        `json:"overallDataConfidence"`
}
