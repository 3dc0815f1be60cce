package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SeatPool is the physical compartment a flight prices and sells seats from.
type SeatPool string

const (
	PoolEconomy  SeatPool = "economy"
	PoolBusiness SeatPool = "business"
)

// Flight is the read model of a scheduled flight owned by the inventory system.
type Flight struct {
	ID                snowflake.ID `json:"id" gorm:"primaryKey"`
	AirlineID         snowflake.ID `json:"airline_id" gorm:"column:airline_id;not null;index"`
	FlightNumber      string       `json:"flight_number" gorm:"column:flight_number;type:text;not null"`
	OriginID          snowflake.ID `json:"origin_id" gorm:"column:origin_id;not null"`
	DestinationID     snowflake.ID `json:"destination_id" gorm:"column:destination_id;not null"`
	DepartureTime     time.Time    `json:"departure_time" gorm:"column:departure_time;not null"`
	ArrivalTime       time.Time    `json:"arrival_time" gorm:"column:arrival_time;not null"`
	EconomyPrice      int64        `json:"economy_price" gorm:"column:economy_price;not null"`
	BusinessPrice     int64        `json:"business_price" gorm:"column:business_price;not null"`
	EconomyAvailable  int          `json:"economy_available" gorm:"column:economy_available;not null;default:0"`
	BusinessAvailable int          `json:"business_available" gorm:"column:business_available;not null;default:0"`
	Status            string       `json:"status" gorm:"type:text;not null;default:'scheduled'"`
	CreatedAt         time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Flight) TableName() string { return "flights" }

// PriceFor returns the base fare of the pool in the smallest currency unit.
func (f Flight) PriceFor(pool SeatPool) int64 {
	if pool == PoolBusiness {
		return f.BusinessPrice
	}
	return f.EconomyPrice
}

// AvailableFor returns the unsold seats of the pool.
func (f Flight) AvailableFor(pool SeatPool) int {
	if pool == PoolBusiness {
		return f.BusinessAvailable
	}
	return f.EconomyAvailable
}
