package conditions

import (
	"errors"
	"strings"
)

// Category tags a fare rule with the business rule type it encodes.
type Category string

const (
	CategoryEligibility       Category = "eligibility"
	CategoryFlightApplication Category = "flight_application"
	CategoryDayTime           Category = "day_time"
	CategoryAdvancePurchase   Category = "advance_purchase"
	CategorySeasonality       Category = "seasonality"
	CategoryBlackoutDates     Category = "blackout_dates"
	CategoryMinimumStay       Category = "minimum_stay"
	CategoryMaximumStay       Category = "maximum_stay"
	CategoryStopovers         Category = "stopovers"
	CategoryTransfers         Category = "transfers"
	CategoryCombinations      Category = "combinations"
	CategorySurcharges        Category = "surcharges"
	CategoryPenalties         Category = "penalties"
	CategoryChildrenDiscount  Category = "children_discount"
	CategoryGroupDiscount     Category = "group_discount"
)

var ErrInvalidCategory = errors.New("invalid_category")

// CategoryOrder is the order the pricing pipeline applies categories in.
// Later categories read the fare produced by earlier ones.
var CategoryOrder = [...]Category{
	CategoryEligibility,
	CategoryFlightApplication,
	CategoryDayTime,
	CategoryAdvancePurchase,
	CategorySeasonality,
	CategoryBlackoutDates,
	CategoryMinimumStay,
	CategoryMaximumStay,
	CategoryStopovers,
	CategoryTransfers,
	CategoryCombinations,
	CategorySurcharges,
	CategoryPenalties,
	CategoryChildrenDiscount,
	CategoryGroupDiscount,
}

func (c Category) String() string {
	return string(c)
}

func (c Category) Valid() bool {
	for _, known := range CategoryOrder {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory normalizes raw input into a known category.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// Categories returns a copy of CategoryOrder.
func Categories() []Category {
	out := make([]Category, len(CategoryOrder))
	copy(out, CategoryOrder[:])
	return out
}
