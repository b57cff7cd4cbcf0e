package queries

import (
	"context"
	"time"

	"go.uber.org/zap"

	"paperindex/application/ports"
	"paperindex/domain/config"
	"paperindex/pkg/errors"
)

// Router validates queries, runs each as one store lookup and shapes the
// records into display projections. It is safe for concurrent use.
type Router struct {
	store   ports.ViewStore
	metrics ports.QueryMetrics
	limits  Limits
	timeout time.Duration
	logger  *zap.Logger
}

// NewRouter creates a query router. A zero timeout leaves deadlines to the caller.
func NewRouter(
	store ports.ViewStore,
	metrics ports.QueryMetrics,
	cfg *config.DomainConfig,
	timeout time.Duration,
	logger *zap.Logger,
) *Router {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		store:   store,
		metrics: metrics,
		limits:  Limits{Default: cfg.DefaultQueryLimit, Max: cfg.MaxQueryLimit},
		timeout: timeout,
		logger:  logger,
	}
}

// Limits returns the limits applied to caller-supplied result limits.
func (r *Router) Limits() Limits { return r.limits }

// Execute runs q. Invalid parameters fail before the store is contacted; a
// store failure, including a timeout, is never reported as an empty result.
func (r *Router) Execute(ctx context.Context, q Query) (*Result, error) {
	started := time.Now()
	result, err := r.execute(ctx, q)

	count := 0
	if result != nil {
		count = result.Count
	}
	r.metrics.QueryServed(q.Type(), count, time.Since(started), err)

	if err != nil {
		r.logger.Debug("Query failed",
			zap.String("queryType", q.Type()),
			zap.Duration("duration", time.Since(started)),
			zap.Error(err),
		)
		return nil, err
	}
	r.logger.Debug("Query served",
		zap.String("queryType", q.Type()),
		zap.Int("count", count),
		zap.Duration("duration", time.Since(started)),
	)
	return result, nil
}

func (r *Router) execute(ctx context.Context, q Query) (*Result, error) {
	if err := q.Validate(r.limits); err != nil {
		return nil, err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	records, err := r.store.Query(ctx, q.input(r.limits))
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.NewStoreUnavailableError(q.Type(), err)
	}

	papers := q.shape(records)
	return &Result{
		QueryType:  q.Type(),
		Parameters: q.Parameters(r.limits),
		Papers:     papers,
		Count:      len(papers),
	}, nil
}

// RecentInCategory lists the newest papers of category, newest first.
func (r *Router) RecentInCategory(ctx context.Context, category string, limit int) (*Result, error) {
	return r.Execute(ctx, RecentInCategoryQuery{Category: category, Limit: limit})
}

// PapersByAuthor lists every paper of author.
func (r *Router) PapersByAuthor(ctx context.Context, author string) (*Result, error) {
	return r.Execute(ctx, PapersByAuthorQuery{Author: author})
}

// PaperByID returns at most one paper.
func (r *Router) PaperByID(ctx context.Context, arxivID string) (*Result, error) {
	return r.Execute(ctx, PaperByIDQuery{ArxivID: arxivID})
}

// PapersInDateRange lists category papers published from start through end, oldest first.
func (r *Router) PapersInDateRange(ctx context.Context, category, start, end string) (*Result, error) {
	return r.Execute(ctx, PapersInDateRangeQuery{Category: category, Start: start, End: end})
}

// PapersByKeyword lists the newest papers tagged with keyword.
func (r *Router) PapersByKeyword(ctx context.Context, keyword string, limit int) (*Result, error) {
	return r.Execute(ctx, PapersByKeywordQuery{Keyword: keyword, Limit: limit})
}
