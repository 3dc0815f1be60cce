package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	obscontext "github.com/smallbiznis/skyfare/internal/observability/context"
	"github.com/smallbiznis/skyfare/pkg/telemetry/correlation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	headerRequestID = "X-Request-Id"

	// ContextKeyFareClassCode is set by handlers once the fare class of a
	// request is known, so the access log can carry it.
	ContextKeyFareClassCode = "fare_class_code"

	errorTypeIneligible  = "fare_ineligible"
	errorTypeRateLimited = "rate_limited"
)

// MiddlewareConfig controls request logging behavior.
type MiddlewareConfig struct {
	Debug           bool
	ErrorClassifier func(err error) (string, string)
}

// GinMiddleware seeds request and correlation ids, then writes one access
// line per request.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := ensureRequestID(c)

		ctx := c.Request.Context()
		ctx = obscontext.WithRequestID(ctx, requestID)
		ctx = obscontext.WithClientIP(ctx, c.ClientIP())
		ctx = correlation.ContextWithCorrelationID(ctx, c.GetHeader(correlation.HeaderName))
		ctx, cid := correlation.EnsureCorrelationID(ctx)
		c.Header(correlation.HeaderName, cid)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		route := routeOf(c)
		fields := requestFields(c, route, start)

		var errorType string
		if lastErr := c.Errors.Last(); lastErr != nil {
			var errorCode string
			if cfg.ErrorClassifier != nil {
				errorType, errorCode = cfg.ErrorClassifier(lastErr.Err)
			}
			fields = append(fields,
				zap.String("error_type", errorType),
				zap.String("error_code", errorCode),
			)
			if cfg.Debug && c.Writer.Status() >= http.StatusInternalServerError {
				fields = append(fields, zap.Error(lastErr.Err))
			}
		}

		log := FromContext(c.Request.Context())
		if log == nil {
			return
		}
		if ce := log.Check(accessLevel(route, c.Writer.Status(), errorType), "http_request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func ensureRequestID(c *gin.Context) string {
	requestID := strings.TrimSpace(c.GetHeader(headerRequestID))
	if requestID == "" {
		requestID = strings.TrimSpace(c.GetString("request_id"))
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}

	c.Set("request_id", requestID)
	c.Header(headerRequestID, requestID)
	return requestID
}

func routeOf(c *gin.Context) string {
	if route := strings.TrimSpace(c.FullPath()); route != "" {
		return route
	}
	return "unknown"
}

func requestFields(c *gin.Context, route string, start time.Time) []zap.Field {
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("route", route),
		zap.Int("status", c.Writer.Status()),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.Int64("bytes_in", max(c.Request.ContentLength, 0)),
		zap.Int("bytes_out", max(c.Writer.Size(), 0)),
	}
	if strings.HasPrefix(route, "/api/flights/") {
		fields = append(fields, zap.String("flight_id", c.Param("id")))
	}
	if code := strings.TrimSpace(c.GetString(ContextKeyFareClassCode)); code != "" {
		fields = append(fields, zap.String("fare_class_code", code))
	}
	return fields
}

// accessLevel logs expected pricing rejections at debug.
func accessLevel(route string, status int, errorType string) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case errorType == errorTypeRateLimited:
		return zapcore.WarnLevel
	case errorType == errorTypeIneligible && isPricing(route):
		return zapcore.DebugLevel
	case isHealthCheck(route):
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func isHealthCheck(route string) bool {
	return strings.EqualFold(route, "/metrics") || strings.EqualFold(route, "/health")
}

func isPricing(route string) bool {
	return strings.HasPrefix(route, "/api/fares/") || strings.HasSuffix(route, "/fares")
}
