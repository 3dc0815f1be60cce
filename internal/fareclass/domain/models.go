package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	flightdomain "github.com/smallbiznis/skyfare/internal/flight/domain"
	"gorm.io/datatypes"
)

type CabinClass string

const (
	CabinFirst          CabinClass = "first"
	CabinBusiness       CabinClass = "business"
	CabinPremiumEconomy CabinClass = "premium_economy"
	CabinEconomy        CabinClass = "economy"
)

var cabinRank = map[CabinClass]int{
	CabinFirst:          0,
	CabinBusiness:       1,
	CabinPremiumEconomy: 2,
	CabinEconomy:        3,
}

func ParseCabinClass(value string) (CabinClass, bool) {
	c := CabinClass(strings.ToLower(strings.TrimSpace(value)))
	_, ok := cabinRank[c]
	return c, ok
}

func (c CabinClass) Valid() bool {
	_, ok := cabinRank[c]
	return ok
}

// Rank orders cabins from first (0) to economy (3).
func (c CabinClass) Rank() int {
	if rank, ok := cabinRank[c]; ok {
		return rank
	}
	return len(cabinRank)
}

// SeatPool maps the cabin onto the flight compartment it is sold and priced from.
// First shares the business compartment, premium economy shares economy.
func (c CabinClass) SeatPool() flightdomain.SeatPool {
	switch c {
	case CabinFirst, CabinBusiness:
		return flightdomain.PoolBusiness
	default:
		return flightdomain.PoolEconomy
	}
}

const DefaultMultiplier = "1.000"

// FareClass is a priced booking class (RBD) within a cabin of one airline.
type FareClass struct {
	ID                  snowflake.ID      `json:"id" gorm:"primaryKey"`
	AirlineID           snowflake.ID      `json:"airline_id" gorm:"column:airline_id;not null;uniqueIndex:ux_fare_classes_airline_code"`
	Code                string            `json:"code" gorm:"type:text;not null;uniqueIndex:ux_fare_classes_airline_code"`
	Name                string            `json:"name" gorm:"type:text;not null"`
	CabinClass          CabinClass        `json:"cabin_class" gorm:"column:cabin_class;type:text;not null"`
	BasePriceMultiplier string            `json:"base_price_multiplier" gorm:"column:base_price_multiplier;type:text;not null"`
	Priority            int               `json:"priority" gorm:"not null"`
	SeatsAllocated      *int              `json:"seats_allocated,omitempty" gorm:"column:seats_allocated"`
	Refundable          bool              `json:"refundable" gorm:"not null"`
	Changeable          bool              `json:"changeable" gorm:"not null"`
	ChangeFee           *int64            `json:"change_fee,omitempty" gorm:"column:change_fee"`
	Upgradeable         bool              `json:"upgradeable" gorm:"not null"`
	BaggageAllowance    string            `json:"baggage_allowance" gorm:"column:baggage_allowance;type:text"`
	SeatSelection       bool              `json:"seat_selection" gorm:"column:seat_selection;not null"`
	LoungeAccess        bool              `json:"lounge_access" gorm:"column:lounge_access;not null"`
	PriorityBoarding    bool              `json:"priority_boarding" gorm:"column:priority_boarding;not null"`
	MealIncluded        bool              `json:"meal_included" gorm:"column:meal_included;not null"`
	MileageRate         int               `json:"mileage_rate" gorm:"column:mileage_rate;not null"`
	Metadata            datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:json"`
	Active              bool              `json:"active" gorm:"not null"`
	CreatedAt           time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt           time.Time         `json:"updated_at" gorm:"not null"`
}

func (FareClass) TableName() string { return "fare_classes" }

// Multiplier parses the stored base-price multiplier.
func (f FareClass) Multiplier() (decimal.Decimal, error) {
	if strings.TrimSpace(f.BasePriceMultiplier) == "" {
		return decimal.NewFromInt(1), nil
	}
	return decimal.NewFromString(f.BasePriceMultiplier)
}

// ChangeFeeAmount returns the configured change fee, zero when unset.
func (f FareClass) ChangeFeeAmount() int64 {
	if f.ChangeFee == nil {
		return 0
	}
	return *f.ChangeFee
}
