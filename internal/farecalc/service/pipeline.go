package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	farecalcdomain "github.com/smallbiznis/skyfare/internal/farecalc/domain"
	fareclassdomain "github.com/smallbiznis/skyfare/internal/fareclass/domain"
	"github.com/smallbiznis/skyfare/internal/farerule/conditions"
	fareruledomain "github.com/smallbiznis/skyfare/internal/farerule/domain"
	flightdomain "github.com/smallbiznis/skyfare/internal/flight/domain"
)

type quoteInput struct {
	flight         *flightdomain.Flight
	fareClass      *fareclassdomain.FareClass
	originID       *snowflake.ID
	destinationID  *snowflake.ID
	departure      time.Time
	returnDate     *time.Time
	passengerType  farecalcdomain.PassengerType
	passengerCount int
	now            time.Time
}

// quoteState is the running fare threaded through the category pipeline.
// Surcharges accumulate apart from the fare so percentage rules never read them.
type quoteState struct {
	adjusted        int64
	surcharges      int64
	passengerRuleOK bool
	applied         []farecalcdomain.AppliedRule
}

func (st *quoteState) record(rule *fareruledomain.FareRule, delta int64, m decimal.Decimal, description string) {
	st.applied = append(st.applied, farecalcdomain.AppliedRule{
		RuleID:      rule.ID.String(),
		RuleName:    rule.Name,
		Category:    rule.Category,
		PriceDelta:  delta,
		Multiplier:  formatMultiplier(m),
		Description: description,
	})
}

// adjust applies a rule's multiplier then its flat adjustment to the fare.
func (st *quoteState) adjust(rule *fareruledomain.FareRule, m decimal.Decimal, description string) {
	before := st.adjusted
	st.adjusted = applyMultiplier(st.adjusted, m) + rule.Adjustment()
	st.record(rule, st.adjusted-before, m, description)
}

// discount applies percentage off, then the rule multiplier, then the flat
// adjustment, rounding after each multiplication.
func (st *quoteState) discount(rule *fareruledomain.FareRule, pct *decimal.Decimal, m decimal.Decimal, description string) {
	before := st.adjusted
	factor := discountFactor(pct)
	st.adjusted = applyMultiplier(st.adjusted, factor)
	st.adjusted = applyMultiplier(st.adjusted, m)
	st.adjusted += rule.Adjustment()
	st.record(rule, st.adjusted-before, factor.Mul(m), description)
}

func ineligible(rule *fareruledomain.FareRule, reason string) error {
	return &farecalcdomain.IneligibleError{
		RuleID:   rule.ID.String(),
		RuleName: rule.Name,
		Category: rule.Category,
		Reason:   reason,
	}
}

// price runs the fare pipeline for an already resolved flight and fare class.
func (s *Service) price(ctx context.Context, in quoteInput) (*farecalcdomain.CalculateResponse, error) {
	pricing := s.pricing.Get()

	fareMultiplier, err := in.fareClass.Multiplier()
	if err != nil {
		return nil, fmt.Errorf("fare class %s multiplier %q: %w", in.fareClass.Code, in.fareClass.BasePriceMultiplier, err)
	}

	base := in.flight.PriceFor(in.fareClass.CabinClass.SeatPool())
	st := &quoteState{
		adjusted: applyMultiplier(base, fareMultiplier),
		applied:  []farecalcdomain.AppliedRule{},
	}

	rules, err := s.rules.Resolve(ctx, fareruledomain.ApplicableQuery{
		FareClassID:   in.fareClass.ID,
		OriginID:      in.originID,
		DestinationID: in.destinationID,
		At:            in.departure,
	})
	if err != nil {
		return nil, err
	}

	groups := fareruledomain.GroupByCategory(rules)
	for _, category := range conditions.CategoryOrder {
		for _, rule := range groups[category] {
			if err := s.applyRule(ctx, st, in, rule); err != nil {
				return nil, err
			}
		}
	}

	resp := &farecalcdomain.CalculateResponse{
		FlightID:       in.flight.ID.String(),
		FlightNumber:   in.flight.FlightNumber,
		FareClassID:    in.fareClass.ID.String(),
		FareClassCode:  in.fareClass.Code,
		CabinClass:     in.fareClass.CabinClass,
		PassengerType:  in.passengerType,
		PassengerCount: in.passengerCount,
		BaseFare:       base,
		Multiplier:     formatMultiplier(fareMultiplier),
		Currency:       pricing.Currency,
		AppliedRules:   st.applied,
	}

	if !st.passengerRuleOK && in.passengerType != farecalcdomain.PassengerAdult {
		m := pricing.ChildMultiplierDecimal()
		if in.passengerType == farecalcdomain.PassengerInfant {
			m = pricing.InfantMultiplierDecimal()
		}
		st.adjusted = applyMultiplier(st.adjusted, m)
		resp.PassengerMultiplier = formatMultiplier(m)
	}

	if st.adjusted < 0 {
		st.adjusted = 0
	}

	taxRate := pricing.TaxRateDecimal()
	taxes := applyMultiplier(st.adjusted+st.surcharges, taxRate)
	perPassenger := st.adjusted + st.surcharges + taxes

	resp.AdjustedFare = st.adjusted
	resp.Surcharges = st.surcharges
	resp.TaxRate = taxRate.String()
	resp.Taxes = taxes
	resp.PerPassenger = perPassenger
	resp.Total = perPassenger * int64(in.passengerCount)
	return resp, nil
}

// applyRule evaluates one rule against the running quote. Validation-only
// categories return an IneligibleError; malformed rules are skipped.
func (s *Service) applyRule(ctx context.Context, st *quoteState, in quoteInput, rule *fareruledomain.FareRule) error {
	parsed, ok := s.parseRule(ctx, rule)
	if !ok {
		return nil
	}
	m, _ := rule.Multiplier()

	switch c := parsed.(type) {
	case *conditions.Eligibility:
		if !c.AllowsPassengerType(string(in.passengerType)) {
			return ineligible(rule, passengerTypeMessage(string(in.passengerType)))
		}
		st.record(rule, 0, one, "")

	case *conditions.FlightApplication:
		if !c.AllowsFlight(in.flight.FlightNumber) {
			return ineligible(rule, flightMessage(in.flight.FlightNumber))
		}
		st.record(rule, 0, one, "")

	case *conditions.DayTime:
		if !c.AllowsWeekday(in.departure) {
			return ineligible(rule, weekdayMessage(in.departure.UTC().Weekday()))
		}
		st.record(rule, 0, one, "")

	case *conditions.AdvancePurchase:
		days := conditions.WholeDays(in.now, in.departure)
		if c.TooLate(days) {
			return ineligible(rule, advancePurchaseMessage(c.MinDays(), days))
		}
		if c.TooEarly(days) {
			return nil
		}
		st.adjust(rule, m, fmt.Sprintf("booked %d days before departure", days))

	case *conditions.Seasonality:
		window, err := c.Window()
		if err != nil {
			s.parseFailed(ctx, rule, err)
			return nil
		}
		if !window.Contains(in.departure) {
			return nil
		}
		seasonal := m
		if c.Multiplier != nil {
			seasonal = *c.Multiplier
		}
		st.adjust(rule, seasonal, "season "+c.Season)

	case *conditions.BlackoutDates:
		if period, blocked := c.Blocks(in.departure); blocked {
			return ineligible(rule, blackoutMessage(period, c.Reason))
		}
		st.record(rule, 0, one, "")

	case *conditions.MinimumStay:
		if in.returnDate == nil {
			return nil
		}
		nights := conditions.StayNights(in.departure, *in.returnDate)
		if minNights, ok := c.Nights(); ok && nights < minNights {
			return ineligible(rule, minimumStayMessage(minNights, nights))
		}
		if c.SaturdayNightRequired && !conditions.IncludesSaturdayNight(in.departure, *in.returnDate) {
			return ineligible(rule, saturdayNightMessage)
		}
		st.record(rule, 0, one, "")

	case *conditions.MaximumStay:
		if in.returnDate == nil {
			return nil
		}
		nights := conditions.StayNights(in.departure, *in.returnDate)
		if maxNights, ok := c.Nights(); ok && nights > maxNights {
			return ineligible(rule, maximumStayMessage(maxNights, nights))
		}
		st.record(rule, 0, one, "")

	case *conditions.Stopovers, *conditions.Transfers, *conditions.Combinations, *conditions.Penalties:
		st.record(rule, 0, one, "")

	case *conditions.Surcharges:
		var amount int64
		if c.Amount != nil {
			amount += *c.Amount
		}
		if c.Percentage != nil {
			amount += percentOf(st.adjusted, *c.Percentage)
		}
		amount += rule.Adjustment()
		st.surcharges += amount
		st.record(rule, amount, one, c.Type+" surcharge")

	case *conditions.ChildrenDiscount:
		if !c.Matches(string(in.passengerType)) {
			return nil
		}
		st.discount(rule, c.DiscountPercentage, m, string(in.passengerType)+" discount")
		st.passengerRuleOK = true

	case *conditions.GroupDiscount:
		if !c.Covers(in.passengerCount) {
			return nil
		}
		st.discount(rule, c.DiscountPercentage, m, fmt.Sprintf("group of %d", in.passengerCount))

	default:
		s.parseFailed(ctx, rule, fmt.Errorf("no pricing step for %T", parsed))
	}
	return nil
}
