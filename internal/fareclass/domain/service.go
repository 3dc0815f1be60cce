package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	NestedAvailability(ctx context.Context, flightID string) (*AvailabilityResponse, error)
}

type ListRequest struct {
	AirlineID  string
	CabinClass string
	Active     *bool
}

type CreateRequest struct {
	AirlineID           string         `json:"airline_id"`
	Code                string         `json:"code"`
	Name                string         `json:"name"`
	CabinClass          string         `json:"cabin_class"`
	BasePriceMultiplier string         `json:"base_price_multiplier"`
	Priority            int            `json:"priority"`
	SeatsAllocated      *int           `json:"seats_allocated"`
	Refundable          bool           `json:"refundable"`
	Changeable          bool           `json:"changeable"`
	ChangeFee           *int64         `json:"change_fee"`
	Upgradeable         bool           `json:"upgradeable"`
	BaggageAllowance    string         `json:"baggage_allowance"`
	SeatSelection       bool           `json:"seat_selection"`
	LoungeAccess        bool           `json:"lounge_access"`
	PriorityBoarding    bool           `json:"priority_boarding"`
	MealIncluded        bool           `json:"meal_included"`
	MileageRate         int            `json:"mileage_rate"`
	Metadata            map[string]any `json:"metadata"`
	Active              *bool          `json:"active"`
}

// UpdateRequest is a partial update; nil fields are left untouched.
type UpdateRequest struct {
	ID                  string         `json:"-"`
	Code                *string        `json:"code"`
	Name                *string        `json:"name"`
	CabinClass          *string        `json:"cabin_class"`
	BasePriceMultiplier *string        `json:"base_price_multiplier"`
	Priority            *int           `json:"priority"`
	SeatsAllocated      *int           `json:"seats_allocated"`
	ClearSeats          bool           `json:"clear_seats_allocated"`
	Refundable          *bool          `json:"refundable"`
	Changeable          *bool          `json:"changeable"`
	ChangeFee           *int64         `json:"change_fee"`
	Upgradeable         *bool          `json:"upgradeable"`
	BaggageAllowance    *string        `json:"baggage_allowance"`
	SeatSelection       *bool          `json:"seat_selection"`
	LoungeAccess        *bool          `json:"lounge_access"`
	PriorityBoarding    *bool          `json:"priority_boarding"`
	MealIncluded        *bool          `json:"meal_included"`
	MileageRate         *int           `json:"mileage_rate"`
	Metadata            map[string]any `json:"metadata"`
	Active              *bool          `json:"active"`
}

type Response struct {
	ID                  string         `json:"id"`
	AirlineID           string         `json:"airline_id"`
	Code                string         `json:"code"`
	Name                string         `json:"name"`
	CabinClass          CabinClass     `json:"cabin_class"`
	BasePriceMultiplier string         `json:"base_price_multiplier"`
	Priority            int            `json:"priority"`
	SeatsAllocated      *int           `json:"seats_allocated,omitempty"`
	Refundable          bool           `json:"refundable"`
	Changeable          bool           `json:"changeable"`
	ChangeFee           int64          `json:"change_fee"`
	Upgradeable         bool           `json:"upgradeable"`
	BaggageAllowance    string         `json:"baggage_allowance,omitempty"`
	SeatSelection       bool           `json:"seat_selection"`
	LoungeAccess        bool           `json:"lounge_access"`
	PriorityBoarding    bool           `json:"priority_boarding"`
	MealIncluded        bool           `json:"meal_included"`
	MileageRate         int            `json:"mileage_rate"`
	Metadata            map[string]any `json:"metadata,omitempty"`
	Active              bool           `json:"active"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

type AvailabilityResponse struct {
	FlightID          string             `json:"flight_id"`
	FlightNumber      string             `json:"flight_number"`
	EconomyAvailable  int                `json:"economy_available"`
	BusinessAvailable int                `json:"business_available"`
	FareClasses       []SeatAvailability `json:"fare_classes"`
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidAirline    = errors.New("invalid_airline")
	ErrInvalidCode       = errors.New("invalid_code")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidCabin      = errors.New("invalid_cabin_class")
	ErrInvalidMultiplier = errors.New("invalid_base_price_multiplier")
	ErrInvalidSeats      = errors.New("invalid_seats_allocated")
	ErrInvalidChangeFee  = errors.New("invalid_change_fee")
	ErrInvalidFlight     = errors.New("invalid_flight")
	ErrFlightNotFound    = errors.New("flight_not_found")
	ErrConflict          = errors.New("fare_class_code_conflict")
	ErrNotFound          = errors.New("fare_class_not_found")
)
