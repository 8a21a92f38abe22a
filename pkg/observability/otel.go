package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/matzehuels/gatewalk"

// OTelHooks implements every hook interface on the global OpenTelemetry
// tracer and meter providers. Without a configured SDK the providers are
// no-ops, so registering the hooks is always safe.
type OTelHooks struct {
	tracer trace.Tracer
	meter  metric.Meter

	once             sync.Once
	initErr          error
	buildDuration    metric.Float64Histogram
	buildEndpoints   metric.Int64Histogram
	batchDuration    metric.Float64Histogram
	batchItems       metric.Int64Counter
	cacheOps         metric.Int64Counter
	cacheBytes       metric.Int64Counter
	requestDuration  metric.Float64Histogram
	requestsInFlight metric.Int64UpDownCounter
}

// NewOTelHooks returns hooks bound to the global providers.
func NewOTelHooks() *OTelHooks {
	return &OTelHooks{
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
	}
}

// initMetrics creates the instruments on first use. Safe to call multiple times.
func (h *OTelHooks) initMetrics() error {
	h.once.Do(func() {
		var err error
		if h.buildDuration, err = h.meter.Float64Histogram(
			"gatewalk_abstraction_build_duration_seconds",
			metric.WithDescription("Duration of netlist abstraction builds"),
			metric.WithUnit("s"),
		); err != nil {
			h.initErr = err
			return
		}
		if h.buildEndpoints, err = h.meter.Int64Histogram(
			"gatewalk_abstraction_endpoints",
			metric.WithDescription("Number of endpoints indexed per abstraction"),
		); err != nil {
			h.initErr = err
			return
		}
		if h.batchDuration, err = h.meter.Float64Histogram(
			"gatewalk_batch_duration_seconds",
			metric.WithDescription("Duration of parallel batch queries"),
			metric.WithUnit("s"),
		); err != nil {
			h.initErr = err
			return
		}
		if h.batchItems, err = h.meter.Int64Counter(
			"gatewalk_batch_items_total",
			metric.WithDescription("Total number of items processed by batch queries"),
		); err != nil {
			h.initErr = err
			return
		}
		if h.cacheOps, err = h.meter.Int64Counter(
			"gatewalk_cache_operations_total",
			metric.WithDescription("Result cache operations by outcome"),
		); err != nil {
			h.initErr = err
			return
		}
		if h.cacheBytes, err = h.meter.Int64Counter(
			"gatewalk_cache_written_bytes_total",
			metric.WithDescription("Bytes written to the result cache"),
			metric.WithUnit("By"),
		); err != nil {
			h.initErr = err
			return
		}
		if h.requestDuration, err = h.meter.Float64Histogram(
			"gatewalk_http_request_duration_seconds",
			metric.WithDescription("Duration of query API requests"),
			metric.WithUnit("s"),
		); err != nil {
			h.initErr = err
			return
		}
		h.requestsInFlight, h.initErr = h.meter.Int64UpDownCounter(
			"gatewalk_http_requests_in_flight",
			metric.WithDescription("Query API requests currently being served"),
		)
	})
	return h.initErr
}

// OnBuildStart opens an abstraction build span.
func (h *OTelHooks) OnBuildStart(ctx context.Context, gates int) context.Context {
	ctx, _ = h.tracer.Start(ctx, "abstraction.Build",
		trace.WithAttributes(attribute.Int("abstraction.gates", gates)),
	)
	return ctx
}

// OnBuildComplete closes the build span and records the build metrics.
func (h *OTelHooks) OnBuildComplete(ctx context.Context, gates, endpoints int, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int("abstraction.endpoints", endpoints))
	endSpan(span, err)

	if h.initMetrics() != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("success", err == nil))
	h.buildDuration.Record(ctx, duration.Seconds(), attrs)
	h.buildEndpoints.Record(ctx, int64(endpoints))
}

// OnBatchStart opens a batch span.
func (h *OTelHooks) OnBatchStart(ctx context.Context, op string, items, workers int) context.Context {
	ctx, _ = h.tracer.Start(ctx, "batch."+op,
		trace.WithAttributes(
			attribute.Int("batch.items", items),
			attribute.Int("batch.workers", workers),
		),
	)
	return ctx
}

// OnBatchComplete closes the batch span and records the batch metrics.
func (h *OTelHooks) OnBatchComplete(ctx context.Context, op string, items int, duration time.Duration, err error) {
	endSpan(trace.SpanFromContext(ctx), err)

	if h.initMetrics() != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("op", op),
		attribute.Bool("success", err == nil),
	)
	h.batchDuration.Record(ctx, duration.Seconds(), attrs)
	h.batchItems.Add(ctx, int64(items), attrs)
}

// OnCacheHit counts a cache hit.
func (h *OTelHooks) OnCacheHit(ctx context.Context, keyType string) {
	h.countCache(ctx, keyType, "hit")
}

// OnCacheMiss counts a cache miss.
func (h *OTelHooks) OnCacheMiss(ctx context.Context, keyType string) {
	h.countCache(ctx, keyType, "miss")
}

// OnCacheSet counts a cache write and its size.
func (h *OTelHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	h.countCache(ctx, keyType, "set")
	if h.initMetrics() != nil {
		return
	}
	h.cacheBytes.Add(ctx, int64(size), metric.WithAttributes(attribute.String("key_type", keyType)))
}

func (h *OTelHooks) countCache(ctx context.Context, keyType, outcome string) {
	if h.initMetrics() != nil {
		return
	}
	h.cacheOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("key_type", keyType),
		attribute.String("outcome", outcome),
	))
}

// OnRequest counts an in-flight request.
func (h *OTelHooks) OnRequest(ctx context.Context, method, route string) {
	if h.initMetrics() != nil {
		return
	}
	h.requestsInFlight.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}

// OnResponse records the request duration.
func (h *OTelHooks) OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration) {
	if h.initMetrics() != nil {
		return
	}
	h.requestsInFlight.Add(ctx, -1, metric.WithAttributes(attribute.String("method", method)))
	h.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", statusCode),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

var (
	_ AbstractionHooks = (*OTelHooks)(nil)
	_ BatchHooks       = (*OTelHooks)(nil)
	_ CacheHooks       = (*OTelHooks)(nil)
	_ ServerHooks      = (*OTelHooks)(nil)
)
