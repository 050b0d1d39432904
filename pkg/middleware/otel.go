package middleware

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/renatoruis/oh-institutional/pkg/view"
)

const defaultTracerName = "openheavens"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "openheavens").
	TracerName string

	// TracerProvider supplies the tracer. Default: the global provider.
	TracerProvider trace.TracerProvider

	// IncludeParams adds route parameters as span attributes.
	// Disabled by default.
	IncludeParams bool

	// Filter determines which renders to trace.
	// If nil, all renders are traced.
	Filter func(req view.Request) bool

	// AttributeExtractor adds custom attributes for each traced render.
	AttributeExtractor func(req view.Request) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithIncludeParams enables route parameters as span attributes.
func WithIncludeParams(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeParams = include
	}
}

// WithRenderFilter sets a filter function for renders.
func WithRenderFilter(filter func(req view.Request) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(req view.Request) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry creates render middleware that traces every view render.
//
// The span is started before the renderer runs and ended once its content
// (including any Deferred load) is ready, so data fetches made by the view
// are children of it.
func OpenTelemetry(opts ...OTelOption) view.Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.TracerProvider != nil {
		tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}

	return view.MiddlewareFunc(func(ctx context.Context, req view.Request, next view.Next) (view.Immediate, error) {
		if config.Filter != nil && !config.Filter(req) {
			return next(ctx, req)
		}

		attrs := []attribute.KeyValue{
			attribute.String("oh.view", req.View),
			attribute.Int64("oh.generation", int64(req.Generation)),
		}
		if req.Lang != "" {
			attrs = append(attrs, attribute.String("oh.lang", req.Lang))
		}
		if config.IncludeParams {
			for _, p := range req.Params {
				attrs = append(attrs, attribute.String("oh.param."+p.Name, p.Value))
			}
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(req)...)
		}

		spanCtx, span := tracer.Start(ctx, spanName(req),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		content, err := next(spanCtx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return content, err
	})
}

func spanName(req view.Request) string {
	return fmt.Sprintf("view.Render %s", req.View)
}
