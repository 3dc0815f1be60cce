package domain

import (
	"errors"
	"fmt"

	"github.com/smallbiznis/skyfare/internal/farerule/conditions"
)

var (
	ErrFlightNotFound        = errors.New("flight_not_found")
	ErrFareClassNotFound     = errors.New("fare_class_not_found")
	ErrFareClassNotOffered   = errors.New("fare_class_not_offered_on_flight")
	ErrIneligible            = errors.New("fare_ineligible")
	ErrInvalidFlight         = errors.New("invalid_flight")
	ErrInvalidFareClass      = errors.New("invalid_fare_class")
	ErrInvalidRoute          = errors.New("invalid_route")
	ErrInvalidPassengerType  = errors.New("invalid_passenger_type")
	ErrInvalidPassengerCount = errors.New("invalid_passenger_count")
	ErrInvalidDates          = errors.New("invalid_dates")
)

// IneligibleError names the rule that rejected the itinerary or passenger.
type IneligibleError struct {
	RuleID   string
	RuleName string
	Category conditions.Category
	Reason   string
}

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("fare rule %q (%s): %s", e.RuleName, e.Category, e.Reason)
}

func (e *IneligibleError) Is(target error) bool {
	return target == ErrIneligible
}
