package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/bits"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"marketfactory/internal/registry/metrics"
	"marketfactory/internal/registry/models"
	dErrors "marketfactory/pkg/domain-errors"
	"marketfactory/pkg/platform/sentinel"
	"marketfactory/pkg/requestcontext"
)

// Store is the read side of the market registry. The factory's write path owns
// appends; the service only observes Len and indexed Get.
//
// Get reports ok == false for an index the store does not hold at read time.
type Store interface {
	Len(ctx context.Context) (uint64, error)
	Get(ctx context.Context, index uint64) (models.MarketID, bool, error)
}

// Snapshotter is implemented by stores that can return the whole registry in a
// single consistent read.
type Snapshotter interface {
	All(ctx context.Context) ([]models.MarketID, error)
}

// RangeReader is implemented by stores that can fetch the half-open range
// [start, end) in one round trip. Missing indices are omitted from the result.
type RangeReader interface {
	Range(ctx context.Context, start, end uint64) ([]models.MarketID, error)
}

// maxPrealloc bounds the capacity reserved up front for a page, so a store that
// reports an absurd length cannot force a huge allocation before any Get.
const maxPrealloc = 4096

// Service answers read-only queries over the market registry.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New constructs a Service over store.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer("marketfactory/internal/registry/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAll returns every market ID in insertion order. Cost is linear in the
// registry size; callers with large registries should page with ListPage.
func (s *Service) ListAll(ctx context.Context) ([]models.MarketID, error) {
	ctx, span := s.tracer.Start(ctx, "registry.ListAll")
	defer span.End()
	start := time.Now()

	var (
		ids     []models.MarketID
		skipped int
		err     error
	)
	if snap, ok := s.store.(Snapshotter); ok {
		ids, err = snap.All(ctx)
	} else {
		var n uint64
		n, err = s.store.Len(ctx)
		if err == nil {
			ids, skipped = s.collect(ctx, 0, n)
		}
	}
	if err != nil {
		return nil, s.fail(ctx, span, metrics.OpListAll, start, err)
	}
	if ids == nil {
		ids = []models.MarketID{}
	}

	s.succeed(span, metrics.OpListAll, start, len(ids), skipped)
	return ids, nil
}

// Count returns the registry length at call time.
func (s *Service) Count(ctx context.Context) (models.U64, error) {
	ctx, span := s.tracer.Start(ctx, "registry.Count")
	defer span.End()
	start := time.Now()

	n, err := s.store.Len(ctx)
	if err != nil {
		return 0, s.fail(ctx, span, metrics.OpCount, start, err)
	}

	span.SetAttributes(attribute.String("registry.length", strconv.FormatUint(n, 10)))
	s.succeed(span, metrics.OpCount, start, 0, 0)
	return models.U64(n), nil
}

// ListPage returns at most limit market IDs starting at index from, in
// registry order. Any from and limit are accepted: the end of the range
// saturates at the registry length, an out-of-range from yields an empty page,
// and indices the store cannot return at read time are skipped.
func (s *Service) ListPage(ctx context.Context, from, limit uint64) ([]models.MarketID, error) {
	ctx, span := s.tracer.Start(ctx, "registry.ListPage", trace.WithAttributes(
		attribute.String("registry.from_index", strconv.FormatUint(from, 10)),
		attribute.String("registry.limit", strconv.FormatUint(limit, 10)),
	))
	defer span.End()
	start := time.Now()

	if limit == 0 {
		s.succeed(span, metrics.OpListPage, start, 0, 0)
		return []models.MarketID{}, nil
	}

	n, err := s.store.Len(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, metrics.OpListPage, start, err)
	}

	end := PageEnd(from, limit, n)
	if from >= end {
		s.succeed(span, metrics.OpListPage, start, 0, 0)
		return []models.MarketID{}, nil
	}

	var (
		ids     []models.MarketID
		skipped int
	)
	if rr, ok := s.store.(RangeReader); ok {
		ids, err = rr.Range(ctx, from, end)
		if err != nil {
			return nil, s.fail(ctx, span, metrics.OpListPage, start, err)
		}
		// A range read never returns more than the computed window.
		want := end - from
		if uint64(len(ids)) > want {
			ids = ids[:want]
		}
		skipped = int(min(want-uint64(len(ids)), math.MaxInt32))
		if ids == nil {
			ids = []models.MarketID{}
		}
	} else {
		ids, skipped = s.collect(ctx, from, end)
	}

	s.succeed(span, metrics.OpListPage, start, len(ids), skipped)
	return ids, nil
}

// collect walks [from, end) with indexed Gets, dropping indices the store does
// not hold or fails to return. end <= MaxUint64 so i+1 never wraps.
func (s *Service) collect(ctx context.Context, from, end uint64) ([]models.MarketID, int) {
	ids := make([]models.MarketID, 0, min(end-from, maxPrealloc))
	skipped := 0
	for i := from; i < end; i++ {
		id, ok, err := s.store.Get(ctx, i)
		if err != nil {
			s.logger.WarnContext(ctx, "registry index read failed, skipping",
				"request_id", requestcontext.RequestID(ctx),
				"index", i,
				"error", err,
			)
			skipped++
			continue
		}
		if !ok {
			skipped++
			continue
		}
		ids = append(ids, id)
	}
	return ids, skipped
}

// SaturatingAdd returns a + b, clamped to math.MaxUint64 on overflow.
func SaturatingAdd(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

// PageEnd computes the exclusive end index min(from+limit, length) without
// overflowing.
func PageEnd(from, limit, length uint64) uint64 {
	return min(SaturatingAdd(from, limit), length)
}

func (s *Service) succeed(span trace.Span, operation string, start time.Time, items, skipped int) {
	span.SetAttributes(attribute.Int("registry.returned", items))
	if skipped > 0 {
		span.SetAttributes(attribute.Int("registry.skipped", skipped))
	}
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveQuery(operation, "ok", start, items)
	s.metrics.AddSkipped(skipped)
}

func (s *Service) fail(ctx context.Context, span trace.Span, operation string, start time.Time, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "registry store read failed")
	s.logger.ErrorContext(ctx, "registry store read failed",
		"request_id", requestcontext.RequestID(ctx),
		"operation", operation,
		"error", err,
	)
	if s.metrics != nil {
		s.metrics.ObserveQuery(operation, "error", start, 0)
	}
	if errors.Is(err, sentinel.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "registry store unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "registry store read failed")
}
