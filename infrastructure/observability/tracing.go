package observability

import (
	"context"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"

	"paperindex/application/ports"
	"paperindex/domain/projection"
)

// Tracer provides distributed tracing capabilities
type Tracer struct {
	serviceName string
}

// NewTracer creates a new tracer instance
func NewTracer(serviceName string) *Tracer {
	return &Tracer{
		serviceName: serviceName,
	}
}

// StartSegment starts a new trace segment
func (t *Tracer) StartSegment(ctx context.Context, name string) (context.Context, *xray.Segment) {
	return xray.BeginSegment(ctx, fmt.Sprintf("%s.%s", t.serviceName, name))
}

// TraceFunction runs fn in a subsegment when ctx carries a trace, and
// directly otherwise.
func (t *Tracer) TraceFunction(ctx context.Context, name string, fn func(context.Context) error) error {
	if xray.GetSegment(ctx) == nil {
		return fn(ctx)
	}

	ctx, seg := xray.BeginSubsegment(ctx, name)
	err := fn(ctx)
	seg.Close(err)
	return err
}

// AddAnnotation adds an indexed annotation to the current segment
func (t *Tracer) AddAnnotation(ctx context.Context, key string, value string) {
	if seg := xray.GetSegment(ctx); seg != nil {
		seg.AddAnnotation(key, value)
	}
}

// AddMetadata adds metadata to the current segment
func (t *Tracer) AddMetadata(ctx context.Context, key string, value interface{}) {
	if seg := xray.GetSegment(ctx); seg != nil {
		seg.AddMetadata(key, value)
	}
}

// TracedStore records a subsegment around every store call.
type TracedStore struct {
	next   ports.ViewStore
	tracer *Tracer
}

// NewTracedStore wraps next with tracing
func NewTracedStore(next ports.ViewStore, tracer *Tracer) *TracedStore {
	return &TracedStore{next: next, tracer: tracer}
}

func (s *TracedStore) PutBatch(ctx context.Context, records []projection.ViewRecord) ([]projection.ViewRecord, error) {
	var failed []projection.ViewRecord
	err := s.tracer.TraceFunction(ctx, "store.PutBatch", func(ctx context.Context) error {
		s.tracer.AddMetadata(ctx, "records", len(records))
		var err error
		failed, err = s.next.PutBatch(ctx, records)
		s.tracer.AddMetadata(ctx, "unprocessed", len(failed))
		return err
	})
	return failed, err
}

func (s *TracedStore) Query(ctx context.Context, in ports.QueryInput) ([]projection.ViewRecord, error) {
	var records []projection.ViewRecord
	err := s.tracer.TraceFunction(ctx, "store.Query", func(ctx context.Context) error {
		s.tracer.AddAnnotation(ctx, "index", in.Index.String())
		s.tracer.AddAnnotation(ctx, "partitionKind", in.PartitionKey.Kind().String())
		var err error
		records, err = s.next.Query(ctx, in)
		s.tracer.AddMetadata(ctx, "results", len(records))
		return err
	})
	return records, err
}
