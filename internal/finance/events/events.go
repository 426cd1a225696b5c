// Package events publishes resolution events for later review. Publishing
// is best effort: a broken broker never fails a finance request.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"civicfin/internal/finance/ports"
	"civicfin/internal/platform/config"
)

// producer is the subset of *kgo.Client the publisher uses.
type producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

// KafkaPublisher writes events as JSON records keyed by legislator id, so
// all events for one legislator land on one partition in order.
type KafkaPublisher struct {
	client producer
	topic  string
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// NewKafkaClient builds a franz-go client for cfg.
func NewKafkaClient(cfg config.Kafka) (*kgo.Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerLinger(50 * time.Millisecond),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// NewKafkaPublisher wraps a producing client.
func NewKafkaPublisher(client producer, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &KafkaPublisher{client: client, topic: topic, logger: logger, now: time.Now}
}

// Publish enqueues event. Delivery is asynchronous; failures are logged by
// the produce callback. Only encoding errors are returned.
func (p *KafkaPublisher) Publish(ctx context.Context, event ports.ResolutionEvent) error {
	event = stamp(event, p.now)
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode resolution event: %w", err)
	}

	record := &kgo.Record{
		Topic:     p.topic,
		Key:       []byte(event.LegislatorID),
		Value:     value,
		Timestamp: event.OccurredAt,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}
	// The request context may be cancelled as soon as the response is
	// written; delivery must outlive it.
	p.client.Produce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Warn("resolution event delivery failed",
				"event_id", event.ID,
				"event_type", event.Type,
				"legislator_id", event.LegislatorID,
				"topic", r.Topic,
				"error", err,
			)
		}
	})
	return nil
}

// Close flushes buffered records and closes the client.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	err := p.client.Flush(ctx)
	p.client.Close()
	return err
}

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.EventPublisher = (*LogPublisher)(nil)

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogPublisher{logger: logger, now: time.Now}
}

// Publish logs event at info level.
func (p *LogPublisher) Publish(ctx context.Context, event ports.ResolutionEvent) error {
	event = stamp(event, p.now)
	p.logger.InfoContext(ctx, "resolution event",
		"event_id", event.ID,
		"event_type", event.Type,
		"legislator_id", event.LegislatorID,
		"legislator_name", event.LegislatorName,
		"candidate_id", event.CandidateID,
		"strategy", event.Strategy,
		"score", event.Score,
		"office_fallback", event.OfficeFallback,
		"low_confidence", event.LowConfidence,
		"request_id", event.RequestID,
	)
	return nil
}

func stamp(event ports.ResolutionEvent, now func() time.Time) ports.ResolutionEvent {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = now().UTC()
	}
	return event
}
