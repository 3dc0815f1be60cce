package domain

import (
	"context"
	"errors"
	"time"

)

type Service interface {
	Get(ctx context.Context, id string) (*Response, error)
	ListByAirline(ctx context.Context, airlineID string) ([]Response, error)
}

type Response struct {
	ID                string    `json:"id"`
	AirlineID         string    `json:"airline_id"`
	FlightNumber      string    `json:"flight_number"`
	OriginID          string    `json:"origin_id"`
	DestinationID     string    `json:"destination_id"`
	DepartureTime     time.Time `json:"departure_time"`
	ArrivalTime       time.Time `json:"arrival_time"`
	EconomyPrice      int64     `json:"economy_price"`
	BusinessPrice     int64     `json:"business_price"`
	EconomyAvailable  int       `json:"economy_available"`
	BusinessAvailable int       `json:"business_available"`
	Status            string    `json:"status"`
}

var (
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidAirline = errors.New("invalid_airline")
	ErrNotFound       = errors.New("flight_not_found")
)
