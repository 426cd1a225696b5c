package ports

import (
	"context"
	"time"
)

// ResolutionEvent records a resolution worth reviewing: a fallback, a
// low-confidence match, or a legislator nothing could be found for.
type ResolutionEvent struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	LegislatorID   string    `json:"legislatorId"`
	LegislatorName string    `json:"legislatorName"`
	CandidateID    string    `json:"candidateId,omitempty"`
	Strategy       string    `json:"strategy,omitempty"`
	Score          int       `json:"score,omitempty"`
	OfficeFallback bool      `json:"officeFallback,omitempty"`
	LowConfidence  bool      `json:"lowConfidence,omitempty"`
	RequestID      string    `json:"requestId,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Resolution event types.
const (
	EventOfficeFallback = "resolution.office_fallback"
	EventLowConfidence  = "resolution.low_confidence"
	EventNotFound       = "resolution.not_found"
)

// EventPublisher emits resolution events. Failures are the caller's to log;
// they never fail a request.
type EventPublisher interface {
	Publish(ctx context.Context, event ResolutionEvent) error
}
