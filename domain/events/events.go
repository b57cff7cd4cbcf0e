package events

import (
	"time"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Load Events

const (
	EventTypeLoadCompleted = "papers.load_completed"
	EventTypeLoadFailed    = "papers.load_failed"
)

// LoadCompleted is raised when every view of a load run has been written
type LoadCompleted struct {
	BaseEvent
	RunID                 string   `json:"run_id"`
	PapersProcessed       int      `json:"papers_processed"`
	ViewsWritten          int      `json:"views_written"`
	DenormalizationFactor float64  `json:"denormalization_factor"`
	SkippedPaperIDs       []string `json:"skipped_paper_ids,omitempty"`
}

// NewLoadCompleted creates a LoadCompleted event
func NewLoadCompleted(runID string, papers, views int, factor float64, skipped []string, timestamp time.Time) LoadCompleted {
	return LoadCompleted{
		BaseEvent: BaseEvent{
			AggregateID: runID,
			EventType:   EventTypeLoadCompleted,
			Timestamp:   timestamp,
			Version:     1,
		},
		RunID:                 runID,
		PapersProcessed:       papers,
		ViewsWritten:          views,
		DenormalizationFactor: factor,
		SkippedPaperIDs:       skipped,
	}
}

// LoadFailed is raised when a load run stops with views left unwritten
type LoadFailed struct {
	BaseEvent
	RunID           string   `json:"run_id"`
	Reason          string   `json:"reason"`
	UnwrittenIDs    []string `json:"unwritten_ids,omitempty"`
	PapersProcessed int      `json:"papers_processed"`
}

// NewLoadFailed creates a LoadFailed event
func NewLoadFailed(runID, reason string, unwritten []string, papers int, timestamp time.Time) LoadFailed {
	return LoadFailed{
		BaseEvent: BaseEvent{
			AggregateID: runID,
			EventType:   EventTypeLoadFailed,
			Timestamp:   timestamp,
			Version:     1,
		},
		RunID:           runID,
		Reason:          reason,
		UnwrittenIDs:    unwritten,
		PapersProcessed: papers,
	}
}
