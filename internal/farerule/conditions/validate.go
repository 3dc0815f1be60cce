package conditions

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Validate checks the minimum shape a category needs to be applied mechanically.
func Validate(c Conditions) error {
	switch v := c.(type) {
	case *Eligibility, *FlightApplication, *DayTime:
		// Free form. The schema lists the passenger types and weekdays
		// the pipeline recognizes.
		return nil
	case *AdvancePurchase:
		if v.MinDaysBeforeDeparture == nil {
			return invalid(CategoryAdvancePurchase, "minDaysBeforeDeparture", "is required")
		}
		if *v.MinDaysBeforeDeparture < 0 {
			return invalid(CategoryAdvancePurchase, "minDaysBeforeDeparture", "must not be negative")
		}
		if v.MaxDaysBeforeDeparture != nil && *v.MaxDaysBeforeDeparture < *v.MinDaysBeforeDeparture {
			return invalid(CategoryAdvancePurchase, "maxDaysBeforeDeparture", "must not be below minDaysBeforeDeparture")
		}
		return nil
	case *Seasonality:
		if strings.TrimSpace(v.Season) == "" {
			return invalid(CategorySeasonality, "season", "is required")
		}
		if strings.TrimSpace(v.StartDate) == "" {
			return invalid(CategorySeasonality, "startDate", "is required")
		}
		if strings.TrimSpace(v.EndDate) == "" {
			return invalid(CategorySeasonality, "endDate", "is required")
		}
		if _, err := v.Window(); err != nil {
			return invalid(CategorySeasonality, "startDate", err.Error())
		}
		if v.Multiplier != nil && !v.Multiplier.IsPositive() {
			return invalid(CategorySeasonality, "multiplier", "must be positive")
		}
		return nil
	case *BlackoutDates:
		if len(v.Periods) == 0 {
			return invalid(CategoryBlackoutDates, "periods", "must contain at least one period")
		}
		for i, period := range v.Periods {
			start, end := period.Bounds()
			field := fmt.Sprintf("periods[%d]", i)
			if start == "" || end == "" {
				return invalid(CategoryBlackoutDates, field, "needs start/end or from/to")
			}
			if _, err := period.Window(); err != nil {
				return invalid(CategoryBlackoutDates, field, err.Error())
			}
		}
		return nil
	case *MinimumStay:
		nights, ok := v.Nights()
		if !ok && !v.SaturdayNightRequired {
			return invalid(CategoryMinimumStay, "minDays", "or minNights, minimumStay or saturdayNightRequired is required")
		}
		if nights < 0 {
			return invalid(CategoryMinimumStay, "minDays", "must not be negative")
		}
		return nil
	case *MaximumStay:
		nights, ok := v.Nights()
		if !ok {
			return invalid(CategoryMaximumStay, "maxDays", "or maxNights or maximumStay is required")
		}
		if nights < 0 {
			return invalid(CategoryMaximumStay, "maxDays", "must not be negative")
		}
		return nil
	case *Stopovers, *Transfers, *Combinations:
		return nil
	case *Surcharges:
		if strings.TrimSpace(v.Type) == "" {
			return invalid(CategorySurcharges, "type", "is required")
		}
		if v.Amount == nil && v.Percentage == nil {
			return invalid(CategorySurcharges, "amount", "or percentage is required")
		}
		return nil
	case *Penalties:
		switch strings.TrimSpace(v.PenaltyType) {
		case "":
			return invalid(CategoryPenalties, "penaltyType", "is required")
		case PenaltyChange, PenaltyCancellation, PenaltyNoShow:
		default:
			return invalid(CategoryPenalties, "penaltyType", fmt.Sprintf("unknown penalty type %q", v.PenaltyType))
		}
		for i, tier := range v.Tiers {
			if tier.WithinHours < 0 || tier.Fee < 0 {
				return invalid(CategoryPenalties, fmt.Sprintf("tiers[%d]", i), "must not be negative")
			}
		}
		return nil
	case *ChildrenDiscount:
		if err := validatePercentage(CategoryChildrenDiscount, v.DiscountPercentage); err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(v.PassengerType)) {
		case "":
			return invalid(CategoryChildrenDiscount, "passengerType", "is required")
		case "child", "infant":
			return nil
		default:
			return invalid(CategoryChildrenDiscount, "passengerType", "must be child or infant")
		}
	case *GroupDiscount:
		if v.MinPassengers == nil {
			return invalid(CategoryGroupDiscount, "minPassengers", "is required")
		}
		if *v.MinPassengers < 2 {
			return invalid(CategoryGroupDiscount, "minPassengers", "must be at least 2")
		}
		if v.MaxPassengers != nil && *v.MaxPassengers < *v.MinPassengers {
			return invalid(CategoryGroupDiscount, "maxPassengers", "must not be below minPassengers")
		}
		return validatePercentage(CategoryGroupDiscount, v.DiscountPercentage)
	case nil:
		return &ValidationError{Reason: "conditions are required"}
	default:
		return &ValidationError{Reason: fmt.Sprintf("unsupported conditions type %T", c)}
	}
}

func validatePercentage(category Category, pct *decimal.Decimal) error {
	if pct == nil {
		return invalid(category, "discountPercentage", "is required")
	}
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return invalid(category, "discountPercentage", "must be between 0 and 100")
	}
	return nil
}

func invalid(category Category, field, reason string) error {
	return &ValidationError{Category: category, Field: field, Reason: reason}
}
