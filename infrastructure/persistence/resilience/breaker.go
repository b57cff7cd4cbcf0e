// Package resilience guards the view store with a circuit breaker so that a
// struggling table sheds load instead of queueing retries.
package resilience

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"paperindex/application/ports"
	"paperindex/domain/projection"
	"paperindex/pkg/errors"
)

// BreakerConfig holds configuration for the store circuit breaker
type BreakerConfig struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// DefaultBreakerConfig returns a default configuration for the store breaker
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  3,
		Interval:     10 * time.Second,
		Timeout:      30 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.6,
	}
}

// BreakerStore wraps a ViewStore with a circuit breaker. Only transient
// store failures count against the breaker; validation and marshalling
// errors pass through without tripping it.
type BreakerStore struct {
	next   ports.ViewStore
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// NewBreakerStore creates a BreakerStore around next
func NewBreakerStore(next ports.ViewStore, cfg BreakerConfig, logger *zap.Logger) *BreakerStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &BreakerStore{next: next, logger: logger}
	s.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.IsStoreUnavailable(err)
		},
	})
	return s
}

// State reports the breaker's current state
func (s *BreakerStore) State() gobreaker.State {
	return s.cb.State()
}

// PutBatch forwards to the wrapped store unless the breaker is open
func (s *BreakerStore) PutBatch(ctx context.Context, records []projection.ViewRecord) ([]projection.ViewRecord, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		return s.next.PutBatch(ctx, records)
	})
	if err != nil {
		return nil, s.translate("put batch", err)
	}
	failed, _ := out.([]projection.ViewRecord)
	return failed, nil
}

// Query forwards to the wrapped store unless the breaker is open
func (s *BreakerStore) Query(ctx context.Context, in ports.QueryInput) ([]projection.ViewRecord, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		return s.next.Query(ctx, in)
	})
	if err != nil {
		return nil, s.translate("query", err)
	}
	records, _ := out.([]projection.ViewRecord)
	return records, nil
}

func (s *BreakerStore) translate(operation string, err error) error {
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		s.logger.Debug("Circuit breaker rejected call",
			zap.String("operation", operation),
			zap.String("state", s.cb.State().String()),
		)
		return errors.NewStoreUnavailableError(operation, err)
	}
	return err
}
