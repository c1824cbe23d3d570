// Package observability provides audit event schemas, metrics, and tracing
// for the draft pipeline. The pipeline emits one event per stage
// transition; retention and sink configuration belong to the operator.
package observability

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Stage names.
const (
	StageInput    = "input"
	StageClassify = "classify"
	StageResolve  = "resolve"
	StagePrompt   = "prompt"
	StageGenerate = "generate"
	StageExtract  = "extract"
	StageValidate = "validate"
)

// Stage statuses.
const (
	StageStatusCompleted = "completed"
	StageStatusFailed    = "failed"
)

// StageEvent is emitted after each pipeline stage transition.
type StageEvent struct {
	EventID       string    `json:"event_id"`
	CorrelationID string    `json:"correlation_id"`
	Stage         string    `json:"stage"`
	Status        string    `json:"status"`
	DurationMs    int64     `json:"duration_ms"`
	Detail        string    `json:"detail,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewStageEvent creates a stage event with a generated event id.
func NewStageEvent(correlationID, stage, status string, duration time.Duration) *StageEvent {
	return &StageEvent{
		EventID:       uuid.New().String(),
		CorrelationID: correlationID,
		Stage:         stage,
		Status:        status,
		DurationMs:    duration.Milliseconds(),
		Timestamp:     time.Now().UTC(),
	}
}

// Sink receives stage events. Implementations must be safe for concurrent
// use; publishing is best-effort and must not block the pipeline on sink
// failures.
type Sink interface {
	Publish(ctx context.Context, event *StageEvent) error
	Close() error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Publish(ctx context.Context, event *StageEvent) error { return nil }
func (NopSink) Close() error                                         { return nil }

// MemorySink retains published events in order. Intended for tests.
type MemorySink struct {
	Events []*StageEvent
}

func (s *MemorySink) Publish(ctx context.Context, event *StageEvent) error {
	s.Events = append(s.Events, event)
	return nil
}

func (s *MemorySink) Close() error { return nil }
