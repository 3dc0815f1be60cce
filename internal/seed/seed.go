package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	fareclassdomain "github.com/smallbiznis/skyfare/internal/fareclass/domain"
	"github.com/smallbiznis/skyfare/internal/farerule/conditions"
	fareruledomain "github.com/smallbiznis/skyfare/internal/farerule/domain"
	flightdomain "github.com/smallbiznis/skyfare/internal/flight/domain"
	"gorm.io/gorm"
)

const (
	DemoAirlineID     snowflake.ID = 1000
	DemoOriginID      snowflake.ID = 2001
	DemoDestinationID snowflake.ID = 2002
	DemoFlightNumber               = "SF100"

	demoEconomyPrice  = 50000
	demoBusinessPrice = 120000
)

type demoFareClass struct {
	code       string
	name       string
	cabin      fareclassdomain.CabinClass
	multiplier string
	priority   int
	seats      int
	refundable bool
	changeable bool
	changeFee  int64
	baggage    string
	lounge     bool
	meal       bool
	mileage    int
}

type demoRule struct {
	name       string
	category   conditions.Category
	conditions string
	multiplier string
	adjustment *int64
}

var demoFareClasses = []demoFareClass{
	{code: "F", name: "First Flex", cabin: fareclassdomain.CabinFirst, multiplier: "1.500", priority: 1, seats: 8, refundable: true, changeable: true, baggage: "3x32kg", lounge: true, meal: true, mileage: 200},
	{code: "J", name: "Business Flex", cabin: fareclassdomain.CabinBusiness, multiplier: "1.000", priority: 2, seats: 24, refundable: true, changeable: true, changeFee: 5000, baggage: "2x32kg", lounge: true, meal: true, mileage: 150},
	{code: "Y", name: "Economy Standard", cabin: fareclassdomain.CabinEconomy, multiplier: "1.000", priority: 3, seats: 90, changeable: true, changeFee: 10000, baggage: "1x23kg", meal: true, mileage: 100},
	{code: "B", name: "Economy Saver", cabin: fareclassdomain.CabinEconomy, multiplier: "0.800", priority: 4, seats: 40, baggage: "cabin only", mileage: 50},
}

var demoRules = map[string][]demoRule{
	"J": {
		{name: "fuel surcharge", category: conditions.CategorySurcharges, conditions: `{"type":"fuel","amount":4000}`},
	},
	"Y": {
		{name: "7 day advance purchase", category: conditions.CategoryAdvancePurchase, conditions: `{"minDaysBeforeDeparture":7}`},
		{name: "change penalty", category: conditions.CategoryPenalties, conditions: `{"penaltyType":"change","tiers":[{"withinHours":24,"fee":15000},{"withinHours":72,"fee":5000}]}`},
		{name: "child fare", category: conditions.CategoryChildrenDiscount, conditions: `{"discountPercentage":30,"passengerType":"child"}`},
		{name: "group fare", category: conditions.CategoryGroupDiscount, conditions: `{"minPassengers":10,"maxPassengers":30,"discountPercentage":10}`},
	},
	"B": {
		{name: "21 day advance purchase", category: conditions.CategoryAdvancePurchase, conditions: `{"minDaysBeforeDeparture":21}`},
		{name: "saturday night stay", category: conditions.CategoryMinimumStay, conditions: `{"minNights":3,"saturdayNightRequired":true}`},
		{name: "year end blackout", category: conditions.CategoryBlackoutDates, conditions: `{"periods":[{"start":"2026-12-20","end":"2027-01-03"}],"reason":"holiday peak"}`},
	},
}

// EnsureDemoData seeds one flight and a small fare class catalogue with rules.
// Existing rows are left untouched so the call is safe on every start.
func EnsureDemoData(ctx context.Context, db *gorm.DB, node *snowflake.Node, now time.Time) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if node == nil {
		return errors.New("seed id generator is required")
	}

	now = now.UTC()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureFlightTx(ctx, tx, node, now); err != nil {
			return err
		}

		for _, class := range demoFareClasses {
			fc, created, err := ensureFareClassTx(ctx, tx, node, class, now)
			if err != nil {
				return err
			}
			if !created {
				continue
			}
			for _, rule := range demoRules[class.code] {
				if err := createRuleTx(ctx, tx, node, fc.ID, rule, now); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func ensureFlightTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, now time.Time) error {
	var existing flightdomain.Flight
	err := tx.WithContext(ctx).
		Where("airline_id = ? AND flight_number = ?", DemoAirlineID, DemoFlightNumber).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	departure := now.Truncate(24*time.Hour).AddDate(0, 0, 30).Add(9 * time.Hour)
	flight := flightdomain.Flight{
		ID:                node.Generate(),
		AirlineID:         DemoAirlineID,
		FlightNumber:      DemoFlightNumber,
		OriginID:          DemoOriginID,
		DestinationID:     DemoDestinationID,
		DepartureTime:     departure,
		ArrivalTime:       departure.Add(2*time.Hour + 45*time.Minute),
		EconomyPrice:      demoEconomyPrice,
		BusinessPrice:     demoBusinessPrice,
		EconomyAvailable:  150,
		BusinessAvailable: 32,
		Status:            "scheduled",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return tx.WithContext(ctx).Create(&flight).Error
}

func ensureFareClassTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, class demoFareClass, now time.Time) (fareclassdomain.FareClass, bool, error) {
	var fc fareclassdomain.FareClass
	err := tx.WithContext(ctx).
		Where("airline_id = ? AND code = ?", DemoAirlineID, class.code).
		First(&fc).Error
	if err == nil {
		return fc, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fc, false, err
	}

	seats := class.seats
	fc = fareclassdomain.FareClass{
		ID:                  node.Generate(),
		AirlineID:           DemoAirlineID,
		Code:                class.code,
		Name:                class.name,
		CabinClass:          class.cabin,
		BasePriceMultiplier: class.multiplier,
		Priority:            class.priority,
		SeatsAllocated:      &seats,
		Refundable:          class.refundable,
		Changeable:          class.changeable,
		BaggageAllowance:    class.baggage,
		SeatSelection:       class.cabin != fareclassdomain.CabinEconomy,
		LoungeAccess:        class.lounge,
		PriorityBoarding:    class.lounge,
		MealIncluded:        class.meal,
		MileageRate:         class.mileage,
		Active:              true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if class.changeFee > 0 {
		fee := class.changeFee
		fc.ChangeFee = &fee
	}
	if err := tx.WithContext(ctx).Create(&fc).Error; err != nil {
		return fc, false, err
	}
	return fc, true, nil
}

func createRuleTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, fareClassID snowflake.ID, rule demoRule, now time.Time) error {
	parsed, err := conditions.ParseAndValidate(rule.category, rule.conditions)
	if err != nil {
		return fmt.Errorf("demo rule %q: %w", rule.name, err)
	}
	text, err := conditions.Encode(parsed)
	if err != nil {
		return err
	}

	multiplier := rule.multiplier
	if multiplier == "" {
		multiplier = fareruledomain.DefaultMultiplier
	}

	return tx.WithContext(ctx).Create(&fareruledomain.FareRule{
		ID:              node.Generate(),
		FareClassID:     fareClassID,
		Name:            rule.name,
		Category:        rule.category,
		ValidFrom:       now.Truncate(24 * time.Hour),
		PriceAdjustment: rule.adjustment,
		PriceMultiplier: multiplier,
		Conditions:      text,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}).Error
}
