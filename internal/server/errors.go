package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	farecalcdomain "github.com/smallbiznis/skyfare/internal/farecalc/domain"
	fareclassdomain "github.com/smallbiznis/skyfare/internal/fareclass/domain"
	"github.com/smallbiznis/skyfare/internal/farerule/conditions"
	fareruledomain "github.com/smallbiznis/skyfare/internal/farerule/domain"
	flightdomain "github.com/smallbiznis/skyfare/internal/flight/domain"
	"github.com/smallbiznis/skyfare/internal/observability/tracing"
	"gorm.io/gorm"
)

type ruleDetail struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Category conditions.Category `json:"category"`
}

type errorPayload struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Field   string      `json:"field,omitempty"`
	Rule    *ruleDetail `json:"rule,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ValidationError is a request problem detected at the HTTP edge.
type ValidationError struct {
	Field   string
	Message string
}

func (v *ValidationError) Error() string {
	return v.Field + ": " + v.Message
}

var (
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		if payload.Rule != nil {
			c.Set(tracing.ContextKeyRejectedCategory, string(payload.Rule.Category))
		}
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid request body")
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var ineligible *farecalcdomain.IneligibleError
	if errors.As(err, &ineligible) {
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "fare_ineligible",
			Message: ineligible.Reason,
			Rule: &ruleDetail{
				ID:       ineligible.RuleID,
				Name:     ineligible.RuleName,
				Category: ineligible.Category,
			},
		}
	}

	var edge *ValidationError
	if errors.As(err, &edge) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: edge.Message,
			Field:   edge.Field,
		}
	}

	var invalidConditions *conditions.ValidationError
	if errors.As(err, &invalidConditions) {
		field := "conditions"
		if invalidConditions.Field != "" {
			field += "." + invalidConditions.Field
		}
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: invalidConditions.Error(),
			Field:   field,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: code,
			Field:   validationErrorField(err),
		}
	}

	switch {
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: notFoundMessage(err),
		}
	case errors.Is(err, fareclassdomain.ErrConflict):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, fareclassdomain.ErrInvalidID),
		errors.Is(err, fareclassdomain.ErrInvalidAirline),
		errors.Is(err, fareclassdomain.ErrInvalidCode),
		errors.Is(err, fareclassdomain.ErrInvalidName),
		errors.Is(err, fareclassdomain.ErrInvalidCabin),
		errors.Is(err, fareclassdomain.ErrInvalidMultiplier),
		errors.Is(err, fareclassdomain.ErrInvalidSeats),
		errors.Is(err, fareclassdomain.ErrInvalidChangeFee),
		errors.Is(err, fareclassdomain.ErrInvalidFlight):
		return true
	case errors.Is(err, fareruledomain.ErrInvalidID),
		errors.Is(err, fareruledomain.ErrInvalidFareClass),
		errors.Is(err, fareruledomain.ErrInvalidAirline),
		errors.Is(err, fareruledomain.ErrInvalidCategory),
		errors.Is(err, fareruledomain.ErrInvalidRoute),
		errors.Is(err, fareruledomain.ErrInvalidValidity),
		errors.Is(err, fareruledomain.ErrInvalidMultiplier),
		errors.Is(err, fareruledomain.ErrInvalidName),
		errors.Is(err, fareruledomain.ErrInvalidConditions),
		errors.Is(err, fareruledomain.ErrInvalidPageToken):
		return true
	case errors.Is(err, flightdomain.ErrInvalidID),
		errors.Is(err, flightdomain.ErrInvalidAirline):
		return true
	case errors.Is(err, farecalcdomain.ErrInvalidFlight),
		errors.Is(err, farecalcdomain.ErrInvalidFareClass),
		errors.Is(err, farecalcdomain.ErrInvalidRoute),
		errors.Is(err, farecalcdomain.ErrInvalidPassengerType),
		errors.Is(err, farecalcdomain.ErrInvalidPassengerCount),
		errors.Is(err, farecalcdomain.ErrInvalidDates),
		errors.Is(err, farecalcdomain.ErrFareClassNotOffered):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, fareclassdomain.ErrNotFound),
		errors.Is(err, fareclassdomain.ErrFlightNotFound),
		errors.Is(err, fareruledomain.ErrNotFound),
		errors.Is(err, fareruledomain.ErrFareClassNotFound),
		errors.Is(err, flightdomain.ErrNotFound),
		errors.Is(err, farecalcdomain.ErrFlightNotFound),
		errors.Is(err, farecalcdomain.ErrFareClassNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func notFoundMessage(err error) string {
	if errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return "not found"
	}
	return err.Error()
}

// validationErrorField derives the offending field from sentinel codes such
// as "invalid_cabin_class".
func validationErrorField(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "request"
	case errors.Is(err, farecalcdomain.ErrFareClassNotOffered):
		return "fare_class_id"
	case errors.Is(err, farecalcdomain.ErrInvalidFlight):
		return "flight_id"
	case errors.Is(err, farecalcdomain.ErrInvalidFareClass), errors.Is(err, fareruledomain.ErrInvalidFareClass):
		return "fare_class_id"
	case errors.Is(err, fareclassdomain.ErrInvalidAirline), errors.Is(err, fareruledomain.ErrInvalidAirline):
		return "airline_id"
	}
	return strings.TrimPrefix(err.Error(), "invalid_")
}

// classifyErrorForLog feeds the request logger the same type the client sees.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if payload.Rule != nil {
		code = string(payload.Rule.Category)
	} else if payload.Field != "" {
		code = payload.Field
	}
	return payload.Type, code
}
