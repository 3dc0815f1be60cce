package conditions

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Conditions is the typed payload of one fare rule. Every category has exactly one implementation.
type Conditions interface {
	Category() Category
}

type Eligibility struct {
	PassengerTypes      []string `json:"passengerTypes,omitempty" jsonschema:"enum=adult,enum=child,enum=infant"`
	RequiresCorporateID bool     `json:"requiresCorporateId,omitempty"`
	CorporateIDs        []string `json:"corporateIds,omitempty"`
}

func (Eligibility) Category() Category { return CategoryEligibility }

// AllowsPassengerType is true when no list is configured or the list contains passengerType.
func (e Eligibility) AllowsPassengerType(passengerType string) bool {
	if len(e.PassengerTypes) == 0 {
		return true
	}
	return containsFold(e.PassengerTypes, passengerType)
}

// AllowsCorporateID checks the corporate-id flag and optional allow-list.
func (e Eligibility) AllowsCorporateID(corporateID string) bool {
	corporateID = strings.TrimSpace(corporateID)
	if !e.RequiresCorporateID {
		return true
	}
	if corporateID == "" {
		return false
	}
	if len(e.CorporateIDs) == 0 {
		return true
	}
	return containsFold(e.CorporateIDs, corporateID)
}

type FlightApplication struct {
	FlightNumbers []string `json:"flightNumbers,omitempty"`
}

func (FlightApplication) Category() Category { return CategoryFlightApplication }

func (f FlightApplication) AllowsFlight(flightNumber string) bool {
	if len(f.FlightNumbers) == 0 {
		return true
	}
	return containsFold(f.FlightNumbers, flightNumber)
}

type DayTime struct {
	AllowedDays       []int  `json:"allowedDays,omitempty" jsonschema:"description=Weekdays 0 (Sunday) to 6 (Saturday)"`
	DepartureTimeFrom string `json:"departureTimeFrom,omitempty" jsonschema:"pattern=^[0-2][0-9]:[0-5][0-9]$"`
	DepartureTimeTo   string `json:"departureTimeTo,omitempty" jsonschema:"pattern=^[0-2][0-9]:[0-5][0-9]$"`
}

func (DayTime) Category() Category { return CategoryDayTime }

// AllowsWeekday evaluates the departure weekday in UTC.
func (d DayTime) AllowsWeekday(departure time.Time) bool {
	if len(d.AllowedDays) == 0 {
		return true
	}
	return slices.Contains(d.AllowedDays, int(departure.UTC().Weekday()))
}

type AdvancePurchase struct {
	MinDaysBeforeDeparture *int `json:"minDaysBeforeDeparture" jsonschema:"required,minimum=0"`
	MaxDaysBeforeDeparture *int `json:"maxDaysBeforeDeparture,omitempty" jsonschema:"minimum=0"`
}

func (AdvancePurchase) Category() Category { return CategoryAdvancePurchase }

func (a AdvancePurchase) MinDays() int {
	if a.MinDaysBeforeDeparture == nil {
		return 0
	}
	return *a.MinDaysBeforeDeparture
}

// TooLate is true when fewer than the minimum days remain before departure.
func (a AdvancePurchase) TooLate(daysBefore int) bool {
	return daysBefore < a.MinDays()
}

// TooEarly is true when the booking is further out than the optional maximum.
func (a AdvancePurchase) TooEarly(daysBefore int) bool {
	return a.MaxDaysBeforeDeparture != nil && daysBefore > *a.MaxDaysBeforeDeparture
}

type Seasonality struct {
	Season     string           `json:"season" jsonschema:"required"`
	StartDate  string           `json:"startDate" jsonschema:"required"`
	EndDate    string           `json:"endDate" jsonschema:"required"`
	Multiplier *decimal.Decimal `json:"multiplier,omitempty"`
}

func (Seasonality) Category() Category { return CategorySeasonality }

func (s Seasonality) Window() (Window, error) {
	return ParseWindow(s.StartDate, s.EndDate)
}

// Period accepts both the current start/end and the legacy from/to field names.
type Period struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
}

// Bounds returns the normalized start and end of the period.
func (p Period) Bounds() (string, string) {
	start := strings.TrimSpace(p.Start)
	if start == "" {
		start = strings.TrimSpace(p.From)
	}
	end := strings.TrimSpace(p.End)
	if end == "" {
		end = strings.TrimSpace(p.To)
	}
	return start, end
}

func (p Period) Window() (Window, error) {
	start, end := p.Bounds()
	return ParseWindow(start, end)
}

type BlackoutDates struct {
	Periods []Period `json:"periods" jsonschema:"required,minItems=1"`
	Reason  string   `json:"reason,omitempty"`
}

func (BlackoutDates) Category() Category { return CategoryBlackoutDates }

// Blocks returns the first period containing departure. Unparseable periods never block.
func (b BlackoutDates) Blocks(departure time.Time) (Period, bool) {
	for _, period := range b.Periods {
		window, err := period.Window()
		if err != nil {
			continue
		}
		if window.Contains(departure) {
			return period, true
		}
	}
	return Period{}, false
}

type MinimumStay struct {
	MinDays               *int `json:"minDays,omitempty" jsonschema:"minimum=0"`
	MinNights             *int `json:"minNights,omitempty" jsonschema:"minimum=0"`
	MinimumStay           *int `json:"minimumStay,omitempty" jsonschema:"minimum=0"`
	SaturdayNightRequired bool `json:"saturdayNightRequired,omitempty"`
}

func (MinimumStay) Category() Category { return CategoryMinimumStay }

// Nights returns the first configured day-count field.
func (m MinimumStay) Nights() (int, bool) {
	return firstInt(m.MinDays, m.MinNights, m.MinimumStay)
}

type MaximumStay struct {
	MaxDays     *int `json:"maxDays,omitempty" jsonschema:"minimum=0"`
	MaxNights   *int `json:"maxNights,omitempty" jsonschema:"minimum=0"`
	MaximumStay *int `json:"maximumStay,omitempty" jsonschema:"minimum=0"`
}

func (MaximumStay) Category() Category { return CategoryMaximumStay }

func (m MaximumStay) Nights() (int, bool) {
	return firstInt(m.MaxDays, m.MaxNights, m.MaximumStay)
}

type Stopovers struct {
	MaxStopovers *int   `json:"maxStopovers,omitempty" jsonschema:"minimum=0"`
	StopoverFee  *int64 `json:"stopoverFee,omitempty" jsonschema:"minimum=0"`
}

func (Stopovers) Category() Category { return CategoryStopovers }

type Transfers struct {
	MaxTransfers         *int `json:"maxTransfers,omitempty" jsonschema:"minimum=0"`
	MinConnectionMinutes *int `json:"minConnectionMinutes,omitempty" jsonschema:"minimum=0"`
}

func (Transfers) Category() Category { return CategoryTransfers }

type Combinations struct {
	CombinableWith []string `json:"combinableWith,omitempty"`
	EndOnEnd       bool     `json:"endOnEnd,omitempty"`
}

func (Combinations) Category() Category { return CategoryCombinations }

type Surcharges struct {
	Type       string           `json:"type" jsonschema:"required"`
	Amount     *int64           `json:"amount,omitempty"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}

func (Surcharges) Category() Category { return CategorySurcharges }

const (
	PenaltyChange       = "change"
	PenaltyCancellation = "cancellation"
	PenaltyNoShow       = "no_show"
)

type PenaltyTier struct {
	WithinHours int   `json:"withinHours" jsonschema:"required,minimum=0"`
	Fee         int64 `json:"fee" jsonschema:"required,minimum=0"`
}

type Penalties struct {
	PenaltyType string        `json:"penaltyType" jsonschema:"required,enum=change,enum=cancellation,enum=no_show"`
	Tiers       []PenaltyTier `json:"tiers,omitempty"`
	FlatFee     *int64        `json:"flatFee,omitempty" jsonschema:"minimum=0"`
}

func (Penalties) Category() Category { return CategoryPenalties }

// TierFee returns the fee of the first tier, in declared order, whose bound covers hours.
func (p Penalties) TierFee(hours int) (PenaltyTier, bool) {
	for _, tier := range p.Tiers {
		if tier.WithinHours >= hours {
			return tier, true
		}
	}
	return PenaltyTier{}, false
}

type ChildrenDiscount struct {
	DiscountPercentage *decimal.Decimal `json:"discountPercentage" jsonschema:"required"`
	PassengerType      string           `json:"passengerType" jsonschema:"required,enum=child,enum=infant"`
}

func (ChildrenDiscount) Category() Category { return CategoryChildrenDiscount }

func (c ChildrenDiscount) Matches(passengerType string) bool {
	return strings.EqualFold(strings.TrimSpace(c.PassengerType), strings.TrimSpace(passengerType))
}

type GroupDiscount struct {
	MinPassengers      *int             `json:"minPassengers" jsonschema:"required,minimum=2"`
	MaxPassengers      *int             `json:"maxPassengers,omitempty"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage" jsonschema:"required"`
}

func (GroupDiscount) Category() Category { return CategoryGroupDiscount }

// Covers reports whether passengerCount lies in [min, max]; a missing max is unbounded.
func (g GroupDiscount) Covers(passengerCount int) bool {
	if g.MinPassengers != nil && passengerCount < *g.MinPassengers {
		return false
	}
	if g.MaxPassengers != nil && passengerCount > *g.MaxPassengers {
		return false
	}
	return true
}

func firstInt(values ...*int) (int, bool) {
	for _, v := range values {
		if v != nil {
			return *v, true
		}
	}
	return 0, false
}

func containsFold(values []string, target string) bool {
	target = strings.TrimSpace(target)
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}
