package tracing

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/skyfare/internal/observability/context"
	"github.com/smallbiznis/skyfare/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	// ContextKeyRejectedCategory carries the rule category that made a quote
	// ineligible.
	ContextKeyRejectedCategory = "fare.rejected_category"

	contextKeyFareClassCode = "fare_class_code"
)

// GinMiddleware opens one server span per request and tags it with the
// flight and fare class involved once the handler has run.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("skyfare/http")
	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		method := strings.ToUpper(c.Request.Method)

		ctx, span := tracer.Start(ctx, "HTTP "+method, trace.WithSpanKind(trace.SpanKindServer))
		ctx = withRequestBaggage(ctx, span)

		c.Request = c.Request.WithContext(ctx)
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()

		span.SetName("HTTP " + method + " " + route)
		span.SetAttributes(SafeAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.Int64("http.server_duration_ms", time.Since(start).Milliseconds()),
		)...)
		span.SetAttributes(fareAttributes(c, route)...)

		if status >= http.StatusInternalServerError {
			if lastErr := c.Errors.Last(); lastErr != nil {
				if safeErr := SafeError(lastErr.Err); safeErr != nil {
					span.RecordError(safeErr)
				}
			}
			span.SetStatus(codes.Error, "request error")
		}
		span.End()
	}
}

func withRequestBaggage(ctx context.Context, span trace.Span) context.Context {
	if cid := correlation.ExtractCorrelationID(ctx); cid != "" {
		span.SetAttributes(attribute.String("correlation_id", cid))
	}

	requestID := obscontext.RequestIDFromContext(ctx)
	if requestID == "" {
		return ctx
	}
	span.SetAttributes(attribute.String("request_id", requestID))

	member, err := baggage.NewMember("request_id", requestID)
	if err != nil {
		return ctx
	}
	bag, err := baggage.New(member)
	if err != nil {
		return ctx
	}
	return baggage.ContextWithBaggage(ctx, bag)
}

func fareAttributes(c *gin.Context, route string) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if strings.HasPrefix(route, "/api/flights/") {
		if id := strings.TrimSpace(c.Param("id")); id != "" {
			attrs = append(attrs, attribute.String("fare.flight_id", id))
		}
	}
	if code := strings.TrimSpace(c.GetString(contextKeyFareClassCode)); code != "" {
		attrs = append(attrs, attribute.String("fare.class_code", code))
	}
	if category := strings.TrimSpace(c.GetString(ContextKeyRejectedCategory)); category != "" {
		attrs = append(attrs,
			attribute.Bool("fare.ineligible", true),
			attribute.String("fare.rejected_category", category),
		)
	}
	return attrs
}
