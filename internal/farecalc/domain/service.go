package domain

import (
	"context"
	"time"

	fareclassdomain "github.com/smallbiznis/skyfare/internal/fareclass/domain"
)

type Service interface {
	Calculate(ctx context.Context, req CalculateRequest) (*CalculateResponse, error)
	ValidateBooking(ctx context.Context, req ValidateRequest) (*ValidateResponse, error)
	ChangeFee(ctx context.Context, req ChangeFeeRequest) (*ChangeFeeResponse, error)
	Compare(ctx context.Context, flightID string) (*CompareResponse, error)
}

// CalculateRequest prices one fare class on one flight. Route and departure
// default to the flight's own when omitted.
type CalculateRequest struct {
	FlightID       string `json:"flight_id"`
	FareClassID    string `json:"fare_class_id"`
	OriginID       string `json:"origin_id"`
	DestinationID  string `json:"destination_id"`
	DepartureDate  string `json:"departure_date"`
	ReturnDate     string `json:"return_date"`
	PassengerType  string `json:"passenger_type"`
	PassengerCount int    `json:"passenger_count"`
}

type CalculateResponse struct {
	FlightID            string                     `json:"flight_id"`
	FlightNumber        string                     `json:"flight_number"`
	FareClassID         string                     `json:"fare_class_id"`
	FareClassCode       string                     `json:"fare_class_code"`
	CabinClass          fareclassdomain.CabinClass `json:"cabin_class"`
	PassengerType       PassengerType              `json:"passenger_type"`
	PassengerCount      int                        `json:"passenger_count"`
	BaseFare            int64                      `json:"base_fare"`
	Multiplier          string                     `json:"multiplier"`
	PassengerMultiplier string                     `json:"passenger_multiplier,omitempty"`
	AdjustedFare        int64                      `json:"adjusted_fare"`
	Surcharges          int64                      `json:"surcharges"`
	TaxRate             string                     `json:"tax_rate"`
	Taxes               int64                      `json:"taxes"`
	PerPassenger        int64                      `json:"per_passenger"`
	Total               int64                      `json:"total"`
	Currency            string                     `json:"currency"`
	AppliedRules        []AppliedRule              `json:"applied_rules"`
}

type ValidateRequest struct {
	FareClassID    string `json:"fare_class_id"`
	FlightID       string `json:"flight_id"`
	OriginID       string `json:"origin_id"`
	DestinationID  string `json:"destination_id"`
	DepartureDate  string `json:"departure_date"`
	ReturnDate     string `json:"return_date"`
	PassengerType  string `json:"passenger_type"`
	PassengerCount int    `json:"passenger_count"`
	CorporateID    string `json:"corporate_id"`
}

type ValidateResponse struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations"`
}

type ChangeFeeRequest struct {
	FareClassID string `json:"fare_class_id"`
	BookingDate string `json:"booking_date"`
	ChangeDate  string `json:"change_date"`
}

type ChangeFeeResponse struct {
	FareClassID       string        `json:"fare_class_id"`
	Changeable        bool          `json:"changeable"`
	HoursSinceBooking int           `json:"hours_since_booking"`
	BaseFee           int64         `json:"base_fee"`
	AdditionalFees    int64         `json:"additional_fees"`
	TotalFee          int64         `json:"total_fee"`
	Currency          string        `json:"currency"`
	AppliedRules      []AppliedRule `json:"applied_rules"`
}

type FareOption struct {
	FareClassID    string                     `json:"fare_class_id"`
	Code           string                     `json:"code"`
	Name           string                     `json:"name"`
	CabinClass     fareclassdomain.CabinClass `json:"cabin_class"`
	Refundable     bool                       `json:"refundable"`
	Changeable     bool                       `json:"changeable"`
	SeatsAvailable int                        `json:"seats_available"`
	Total          int64                      `json:"total"`
	Quote          *CalculateResponse         `json:"quote"`
}

type CompareResponse struct {
	FlightID      string       `json:"flight_id"`
	FlightNumber  string       `json:"flight_number"`
	DepartureTime time.Time    `json:"departure_time"`
	Currency      string       `json:"currency"`
	Fares         []FareOption `json:"fares"`
}
