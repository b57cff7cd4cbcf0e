// Package loading streams canonical papers through the projector and writes
// the resulting views to the store in bounded, concurrently dispatched batches.
package loading

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"paperindex/application/ports"
	"paperindex/domain/config"
	"paperindex/domain/events"
	"paperindex/domain/paper"
	"paperindex/domain/projection"
	"paperindex/pkg/errors"
)

// LoadReport summarizes one load run.
type LoadReport struct {
	RunID                 string         `json:"run_id"`
	PapersProcessed       int            `json:"papers_processed"`
	ViewsWritten          int            `json:"views_written"`
	DenormalizationFactor float64        `json:"denormalization_factor"`
	QualityWarnings       int            `json:"quality_warnings"`
	Skipped               []SkippedPaper `json:"skipped,omitempty"`
	Duration              time.Duration  `json:"-"`
}

// SkippedPaper records a paper whose projection failed.
type SkippedPaper struct {
	Position int    `json:"position"`
	ArxivID  string `json:"arxiv_id,omitempty"`
	Reason   string `json:"reason"`
}

// SkippedIDs returns the ids of skipped papers that had one.
func (r *LoadReport) SkippedIDs() []string {
	var ids []string
	for _, s := range r.Skipped {
		if s.ArxivID != "" {
			ids = append(ids, s.ArxivID)
		}
	}
	return ids
}

// Coordinator runs load runs against a view store.
type Coordinator struct {
	store     ports.ViewStore
	projector *projection.Projector
	publisher ports.EventPublisher
	metrics   ports.LoadMetrics
	config    *config.DomainConfig
	logger    *zap.Logger
}

// NewCoordinator creates a load coordinator. A nil publisher or metrics sink
// discards what it would have received.
func NewCoordinator(
	store ports.ViewStore,
	projector *projection.Projector,
	publisher ports.EventPublisher,
	metrics ports.LoadMetrics,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *Coordinator {
	if publisher == nil {
		publisher = ports.NopEventPublisher{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		store:     store,
		projector: projector,
		publisher: publisher,
		metrics:   metrics,
		config:    cfg,
		logger:    logger,
	}
}

// Load reads every paper from source, projects it and writes its views. The
// report is returned even when the run fails. A run that leaves views
// unwritten fails with a load partial failure naming the affected paper ids.
func (c *Coordinator) Load(ctx context.Context, source paper.Source) (*LoadReport, error) {
	started := time.Now()
	report := &LoadReport{RunID: uuid.NewString()}
	logger := c.logger.With(zap.String("runID", report.RunID))

	logger.Info("Load run started",
		zap.Int("batchSize", c.config.BatchSize),
		zap.Int("workers", c.config.LoadWorkers),
		zap.Int("maxRetries", c.config.MaxRetries),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.LoadWorkers)

	var written atomic.Int64
	unwritten := &idCollector{}

	batch := make([]projection.ViewRecord, 0, c.config.BatchSize)
	dispatch := func() {
		pending := batch
		batch = make([]projection.ViewRecord, 0, c.config.BatchSize)
		g.Go(func() error {
			failed, err := c.writeBatch(gctx, pending, logger)
			written.Add(int64(len(pending) - len(failed)))
			if err != nil {
				unwritten.add(failed)
				return err
			}
			return nil
		})
	}

	var readErr error
	position := 0
	for gctx.Err() == nil {
		p, err := source.Next()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr = err
			break
		}
		position++

		views, err := c.projector.Project(*p)
		if err != nil {
			c.skip(report, logger, position, p.ID, err)
			continue
		}
		report.PapersProcessed++

		if issues := p.QualityIssues(); len(issues) > 0 {
			report.QualityWarnings++
			logger.Warn("Paper has data quality issues",
				zap.String("arxivID", p.ID),
				zap.Strings("issues", issues),
			)
		}

		for _, v := range views {
			batch = append(batch, v)
			if len(batch) == c.config.BatchSize {
				dispatch()
			}
		}
	}

	if len(batch) > 0 {
		if gctx.Err() == nil {
			dispatch()
		} else {
			unwritten.add(batch)
		}
	}
	if gctx.Err() != nil && readErr == nil {
		c.drain(source, unwritten, logger)
	}

	waitErr := g.Wait()

	report.ViewsWritten = int(written.Load())
	report.DenormalizationFactor = denormalizationFactor(report.ViewsWritten, report.PapersProcessed)
	report.Duration = time.Since(started)

	if waitErr == nil && ctx.Err() != nil {
		waitErr = ctx.Err()
	}
	if waitErr != nil {
		err := errors.NewLoadPartialFailureError(unwritten.ids(), waitErr)
		c.fail(ctx, report, logger, err, unwritten.ids())
		return report, err
	}
	if readErr != nil {
		err := errors.NewInvalidFieldError("papers", readErr.Error()).WithCause(readErr)
		c.fail(ctx, report, logger, err, nil)
		return report, err
	}

	c.metrics.RunFinished(true, report.PapersProcessed, report.ViewsWritten, report.DenormalizationFactor)
	logger.Info("Load run completed",
		zap.Int("papersProcessed", report.PapersProcessed),
		zap.Int("viewsWritten", report.ViewsWritten),
		zap.Float64("denormalizationFactor", report.DenormalizationFactor),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("qualityWarnings", report.QualityWarnings),
		zap.Duration("duration", report.Duration),
	)

	event := events.NewLoadCompleted(report.RunID, report.PapersProcessed, report.ViewsWritten,
		report.DenormalizationFactor, report.SkippedIDs(), time.Now().UTC())
	if err := c.publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish load completed event", zap.Error(err))
	}

	return report, nil
}

// writeBatch submits records and resubmits whatever the store reports as
// unprocessed, backing off exponentially between attempts. It returns the
// records still unwritten when it gives up.
func (c *Coordinator) writeBatch(ctx context.Context, records []projection.ViewRecord, logger *zap.Logger) ([]projection.ViewRecord, error) {
	started := time.Now()
	pending := records
	backoff := c.config.RetryBaseDelay

	for attempt := 0; ; attempt++ {
		failed, err := c.store.PutBatch(ctx, pending)
		if err != nil {
			if !errors.IsRetryable(err) {
				return pending, err
			}
			failed = pending
		}
		if len(failed) == 0 {
			c.metrics.BatchWritten(len(records), time.Since(started))
			return nil, nil
		}

		if attempt >= c.config.MaxRetries {
			if err == nil {
				err = fmt.Errorf("%d records still unprocessed after %d attempts", len(failed), attempt+1)
			}
			logger.Error("Batch write exhausted retries",
				zap.Int("attempts", attempt+1),
				zap.Int("unwritten", len(failed)),
				zap.Error(err),
			)
			return failed, err
		}

		c.metrics.BatchRetried(len(failed))
		logger.Warn("Retrying batch write",
			zap.Int("attempt", attempt+1),
			zap.Int("pending", len(failed)),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return failed, ctx.Err()
		}
		pending = failed
	}
}

func (c *Coordinator) skip(report *LoadReport, logger *zap.Logger, position int, id string, err error) {
	reason := err.Error()
	errType := string(errors.ErrorTypeInternal)
	if appErr := errors.GetAppError(err); appErr != nil {
		reason = appErr.Message
		errType = string(appErr.Type)
	}
	report.Skipped = append(report.Skipped, SkippedPaper{Position: position, ArxivID: id, Reason: reason})
	c.metrics.PaperSkipped(errType)
	logger.Warn("Skipping paper",
		zap.Int("position", position),
		zap.String("arxivID", id),
		zap.String("reason", reason),
	)
}

func (c *Coordinator) fail(ctx context.Context, report *LoadReport, logger *zap.Logger, err error, unwritten []string) {
	c.metrics.RunFinished(false, report.PapersProcessed, report.ViewsWritten, report.DenormalizationFactor)
	logger.Error("Load run failed",
		zap.Int("papersProcessed", report.PapersProcessed),
		zap.Int("viewsWritten", report.ViewsWritten),
		zap.Strings("unwrittenIDs", unwritten),
		zap.Error(err),
	)

	// The caller's context may be the reason for the failure.
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	event := events.NewLoadFailed(report.RunID, err.Error(), unwritten, report.PapersProcessed, time.Now().UTC())
	if pubErr := c.publisher.Publish(publishCtx, event); pubErr != nil {
		logger.Warn("Failed to publish load failed event", zap.Error(pubErr))
	}
}

// denormalizationFactor is views per paper rounded to two decimals.
func denormalizationFactor(views, papers int) float64 {
	if papers == 0 {
		return 0
	}
	return math.Round(float64(views)/float64(papers)*100) / 100
}

// drain reads the papers left in source after a run is aborted so they are
// reported as unwritten. Nothing is projected or written.
func (c *Coordinator) drain(source paper.Source, unwritten *idCollector, logger *zap.Logger) {
	remaining := 0
	for {
		p, err := source.Next()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Warn("Stopped reading papers after aborted run", zap.Error(err))
			break
		}
		if p.ID != "" {
			unwritten.addIDs(p.ID)
			remaining++
		}
	}
	if remaining > 0 {
		logger.Warn("Papers not attempted after aborted run", zap.Int("count", remaining))
	}
}

// idCollector gathers the distinct paper ids of unwritten records across workers.
type idCollector struct {
	mu  sync.Mutex
	set map[string]struct{}
}

func (c *idCollector) add(records []projection.ViewRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.set == nil {
		c.set = make(map[string]struct{})
	}
	for _, r := range records {
		c.set[r.ArxivID] = struct{}{}
	}
}

func (c *idCollector) addIDs(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.set == nil {
		c.set = make(map[string]struct{})
	}
	for _, id := range ids {
		c.set[id] = struct{}{}
	}
}

func (c *idCollector) ids() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.set))
	for id := range c.set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
