package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/skyfare/internal/clock"
	"github.com/smallbiznis/skyfare/internal/config"
	farecalcdomain "github.com/smallbiznis/skyfare/internal/farecalc/domain"
	fareclassdomain "github.com/smallbiznis/skyfare/internal/fareclass/domain"
	fareclassrepository "github.com/smallbiznis/skyfare/internal/fareclass/repository"
	"github.com/smallbiznis/skyfare/internal/farerule/conditions"
	fareruledomain "github.com/smallbiznis/skyfare/internal/farerule/domain"
	farerulerepository "github.com/smallbiznis/skyfare/internal/farerule/repository"
	fareruleservice "github.com/smallbiznis/skyfare/internal/farerule/service"
	flightdomain "github.com/smallbiznis/skyfare/internal/flight/domain"
	flightrepository "github.com/smallbiznis/skyfare/internal/flight/repository"
	"github.com/smallbiznis/skyfare/internal/observability/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db        *gorm.DB
	node      *snowflake.Node
	clock     *clock.FakeClock
	registry  *prometheus.Registry
	rules     fareruledomain.Service
	svc       farecalcdomain.Service
	airlineID snowflake.ID
}

func setup(t *testing.T) fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&flightdomain.Flight{}, &fareclassdomain.FareClass{}, &fareruledomain.FareRule{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(now)
	registry := prometheus.NewRegistry()

	pricing, err := config.NewStaticPricingConfigHolder(config.DefaultPricingConfig())
	require.NoError(t, err)

	rules := fareruleservice.New(fareruleservice.Params{
		DB:            db,
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         clk,
		Repo:          farerulerepository.Provide(),
		FareClassRepo: fareclassrepository.Provide(),
	})

	svc := New(Params{
		DB:            db,
		Log:           zap.NewNop(),
		Clock:         clk,
		Pricing:       pricing,
		FlightRepo:    flightrepository.Provide(),
		FareClassRepo: fareclassrepository.Provide(),
		Rules:         rules,
		FareMetrics:   metrics.NewFareMetrics(registry, metrics.Config{ServiceName: "skyfare", Environment: "test"}),
	})

	return fixture{
		db:        db,
		node:      node,
		clock:     clk,
		registry:  registry,
		rules:     rules,
		svc:       svc,
		airlineID: node.Generate(),
	}
}

func (f fixture) flight(t *testing.T, departure time.Time) *flightdomain.Flight {
	t.Helper()
	fl := &flightdomain.Flight{
		ID:                f.node.Generate(),
		AirlineID:         f.airlineID,
		FlightNumber:      "SF101",
		OriginID:          f.node.Generate(),
		DestinationID:     f.node.Generate(),
		DepartureTime:     departure,
		ArrivalTime:       departure.Add(3 * time.Hour),
		EconomyPrice:      50000,
		BusinessPrice:     120000,
		EconomyAvailable:  100,
		BusinessAvailable: 20,
		Status:            "scheduled",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, flightrepository.Provide().Insert(context.Background(), f.db, fl))
	return fl
}

func (f fixture) fareClass(t *testing.T, code string, cabin fareclassdomain.CabinClass, multiplier string, mutate ...func(*fareclassdomain.FareClass)) *fareclassdomain.FareClass {
	t.Helper()
	fc := &fareclassdomain.FareClass{
		ID:                  f.node.Generate(),
		AirlineID:           f.airlineID,
		Code:                code,
		Name:                code,
		CabinClass:          cabin,
		BasePriceMultiplier: multiplier,
		Active:              true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	for _, fn := range mutate {
		fn(fc)
	}
	require.NoError(t, fareclassrepository.Provide().Insert(context.Background(), f.db, fc))
	return fc
}

func (f fixture) rule(t *testing.T, fc *fareclassdomain.FareClass, name, category, body string, mutate ...func(*fareruledomain.CreateRequest)) *fareruledomain.Response {
	t.Helper()
	req := fareruledomain.CreateRequest{
		FareClassID: fc.ID.String(),
		Name:        name,
		Category:    category,
		Conditions:  fareruledomain.ConditionsText(body),
	}
	for _, fn := range mutate {
		fn(&req)
	}
	resp, err := f.rules.Create(context.Background(), req)
	require.NoError(t, err)
	return resp
}

func (f fixture) counter(t *testing.T, name, label, value string) float64 {
	t.Helper()
	families, err := f.registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func calc(fl *flightdomain.Flight, fc *fareclassdomain.FareClass) farecalcdomain.CalculateRequest {
	return farecalcdomain.CalculateRequest{
		FlightID:    fl.ID.String(),
		FareClassID: fc.ID.String(),
	}
}

func TestCalculate_BaseFareWithTax(t *testing.T) {
	f := setup(t)
	fl := f.flight(t, now.Add(30*24*time.Hour))
	fc := f.fareClass(t, "Y", fareclassdomain.CabinEconomy, "1.000")

	resp, err := f.svc.Calculate(context.Background(), calc(fl, fc))
	require.NoError(t, err)
	assert.Equal(t, int64(50000), resp.BaseFare)
	assert.Equal(t, int64(50000), resp.AdjustedFare)
	assert.Equal(t, int64(7500), resp.Taxes)
	assert.Equal(t, int64(57500), resp.PerPassenger)
	assert.Equal(t, int64(57500), resp.Total)
	assert.Equal(t, "USD", resp.Currency)
	assert.Equal(t, farecalcdomain.PassengerAdult, resp.PassengerType)
	assert.Equal(t, 1, resp.PassengerCount)
	assert.Empty(t, resp.AppliedRules)
}

func TestCalculate_CabinPoolAndCount(t *testing.T) {
	f := setup(t)
	fl := f.flight(t, now.Add(30*24*time.Hour))
	first := f.fareClass(t, "F", fareclassdomain.CabinFirst, "1.500")
	premium := f.fareClass(t, "W", fareclassdomain.CabinPremiumEconomy, "1.250")

	resp, err := f.svc.Calculate(context.Background(), calc(fl, first))
	require.NoError(t, err)
	assert.Equal(t, int64(120000), resp.BaseFare, "first class prices from the business pool")
	assert.Equal(t, int64(180000), resp.AdjustedFare)

	req := calc(fl, premium)
	req.PassengerCount = 3
	resp, err = f.svc.Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), resp.BaseFare)
	assert.Equal(t, int64(62500), resp.AdjustedFare)
	assert.Equal(t, int64(71875), resp.PerPassenger)
	assert.Equal(t, int64(3*71875), resp.Total)
}

func TestCalculate_AdvancePurchaseTooLate(t *testing.T) {
	f := setup(t)
	fl := f.flight(t, now.Add(3*24*time.Hour))
	fc := f.fareClass(t, "Q", fareclassdomain.CabinEconomy, "0.800")
	rule := f.rule(t, fc, "7 day advance", "advance_purchase", `{"minDaysBeforeDeparture":7}`)

	_, err := f.svc.Calculate(context.Background(), calc(fl, fc))
	require.ErrorIs(t, err, farecalcdomain.ErrIneligible)

	var ineligible *farecalcdomain.IneligibleError
	require.ErrorAs(t, err, &ineligible)
	assert.Equal(t, rule.ID, ineligible.RuleID)
	assert.Equal(t, "7 day advance", ineligible.RuleName)
	assert.Equal(t, conditions.CategoryAdvancePurchase, ineligible.Category)
	assert.Equal(t, 1.0, f.counter(t, "skyfare_fare_ineligible_total", "category", "advance_purchase"))

	validation, err := f.svc.ValidateBooking(context.Background(), farecalcdomain.ValidateRequest{
		FareClassID: fc.ID.String(),
		FlightID:    fl.ID.String(),
	})
	require.NoError(t, err)
	assert.False(t, validation.Valid)
	require.Len(t, validation.Violations, 1)
	assert.Equal(t, "Must be booked at least 7 days before departure (currently 3 days)", validation.Violations[0].Message)
	assert.Equal(t, rule.ID, validation.Violations[0].RuleID)
}

func TestCalculate_AdvancePurchaseTooEarlySkipsRule(t *testing.T) {
	f := setup(t)
	fl := f.flight(t, now.Add(90*24*time.Hour))
	fc := f.fareClass(t, "Y", fareclassdomain.CabinEconomy, "1.000")
	f.rule(t, fc, "early bird", "advance_purchase", `{"minDaysBeforeDeparture":14,"maxDaysBeforeDeparture":60}`,
		func(r *fareruledomain.CreateRequest) { r.PriceMultiplier = "0.5" })

	resp, err := f.svc.Calculate(context.Background(), calc(fl, fc))
	require.NoError(t, err)
	assert.Equal(t, int64(50000), resp.AdjustedFare)
	assert.Empty(t, resp.AppliedRules)

	f.clock.Advance(45 * 24 * time.Hour)
	resp, err = f.svc.Calculate(context.Background(), calc(fl, fc))
	require.NoError(t, err)
	assert.Equal(t, int64(25000), resp.AdjustedFare)
	require.Len(t, resp.AppliedRules, 1)
	assert.Equal(t, int64(-25000), resp.AppliedRules[0].PriceDelta)
}

func TestCalculate_ValidationCategoriesFailFast(t *testing.T) {
	wednesday := time.Date(2026, 4, 8, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		category conditions.Category
		body     string
		message  string
	}{
		{name: "eligibility", category: conditions.CategoryEligibility, body: `{"passengerTypes":["child"]}`, message: "Fare is not available to adult passengers"},
		{name: "flight application", category: conditions.CategoryFlightApplication, body: `{"flightNumbers":["XX1"]}`, message: "Fare does not apply to flight SF101"},
		{name: "day time", category: conditions.CategoryDayTime, body: `{"allowedDays":[0,6]}`, message: "Departures on Wednesday are not permitted"},
		{name: "maximum stay", category: conditions.CategoryMaximumStay, body: `{"maxNights":2}`, message: "Maximum stay is 2 nights (currently 8 nights)"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := setup(t)
			fl := f.flight(t, wednesday)
			fc := f.fareClass(t, "V", fareclassdomain.CabinEconomy, "1.000")
			rule := f.rule(t, fc, tc.name+" rule", string(tc.category), tc.body)

			req := calc(fl, fc)
			req.ReturnDate = "2026-04-16T09:00:00Z"
			_, err := f.svc.Calculate(context.Background(), req)
			require.ErrorIs(t, err, farecalcdomain.ErrIneligible)

			var ineligible *farecalcdomain.IneligibleError
			require.ErrorAs(t, err, &ineligible)
			assert.Equal(t, rule.ID, ineligible.RuleID)
			assert.Equal(t, tc.name+" rule", ineligible.RuleName)
			assert.Equal(t, tc.category, ineligible.Category)
			assert.Equal(t, tc.message, ineligible.Reason)

			validation, err := f.svc.ValidateBooking(context.Background(), farecalcdomain.ValidateRequest{
				FareClassID: fc.ID.String(),
				FlightID:    fl.ID.String(),
				ReturnDate:  "2026-04-16T09:00:00Z",
			})
			require.NoError(t, err)
			assert.False(t, validation.Valid)
			require.Len(t, validation.Violations, 1)
			assert.Equal(t, tc.message, validation.Violations[0].Message)
			assert.Equal(t, rule.ID, validation.Violations[0].RuleID)
			assert.Equal(t, tc.category, validation.Violations[0].Category)
		})
	}
}

func TestCalculate_ChildDefaultMultiplier(t *testing.T) {
	f := setup(t)
	fl := f.flight(t, now.Add(30*24*time.Hour))
	fc := f.fareClass(t, "Y", fareclassdomain.CabinEconomy, "1.000")

	req := calc(fl, fc)
	req.PassengerType = "child"
	resp, err := f.svc.Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(37500), resp.AdjustedFare)
	assert.Equal(t, "0.750", resp.PassengerMultiplier)
	assert.Equal(t, int64(5625), resp.Taxes)
	assert.Equal(t, int64(43125), resp.PerPassenger)

	req.PassengerType = "infant"
	resp, err = f.svc.Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), resp.AdjustedFare)
}

func TestCalculate_ChildrenDiscountReplacesDefault(t *testing.T) {
	f := setup(t)
	fl := f.flight(t, now.Add(30*24*time.Hour))
	fc := f.fareClass(t, "Y", fareclassdomain.CabinEconomy, "1.000")
	adjustment := int64(-1000)
	f.rule(t, fc, "child fare", "children_discount", `{"discountPercentage":20,"passengerType":"child"}`,
		func(r *fareruledomain.CreateRequest) {
			r.PriceMultiplier = "0.9"
			r.PriceAdjustment = &adjustment
		})

	req := calc(fl, fc)
	req.PassengerType = "child"
	resp, err := f.svc.Calculate(context.Background(), req)
	require.NoError(t, err)

	// 50000 * 0.80 = 40000, * 0.9 = 36000, - 1000 = 35000
	assert.Equal(t, int64(35000), resp.AdjustedFare)
	assert.Empty(t, resp.PassengerMultiplier)
	require.Len(t, resp.AppliedRules, 1)
	assert.Equal(t, int64(-15000), resp.AppliedRules[0].PriceDelta)
	assert.Equal(t, int64(40250), resp.PerPassenger)

	req.PassengerType = "infant"
	resp, err = f.svc.Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), resp.AdjustedFare, "child rule does not match infants")
}

func TestCalculate_GroupDiscount(t *testing.T) {
	f := setup(t)
	fl := f.flight(t, now.Add(30*24*time.Hour))
	fc := f.fareClass(t, "G", fareclassdomain.CabinEconomy, "1.000")
	f.rule(t, fc, "group", "group_discount", `{"minPassengers":10,"maxPassengers":20,"discountPercentage":10}`)

	req := calc(fl, fc)
	req.PassengerCount = 12
	resp, err := f.svc.Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(45000), resp.AdjustedFare)
	assert.Equal(t, int64(51750*12), resp.Total)

	req.PassengerCount = 2
	resp, err = f.svc.Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), resp.AdjustedFare)
}

func TestCalculate_SurchargesAccumulateSeparately(t *testing.T) {
	f := setup(t)
	fl := f.flight(t, now.Add(30*24*time.Hour))
	fc := f.fareClass(t, "Y", fareclassdomain.CabinEconomy, "1.000")
	f.rule(t, fc, "fuel", "surcharges", `{"type":"fuel","amount":1000,"percentage":10}`)

	resp, err := f.svc.Calculate(context.Background(), calc(fl, fc))
	require.NoError(t, err)
	assert.Equal(t, int64(50000), resp.AdjustedFare)
	assert.Equal(t, int64(6000), resp.Surcharges)
	assert.Equal(t, int64(8400), resp.Taxes)
	assert.Equal(t, int64(64400), resp.PerPassenger)
	require.Len(t, resp.AppliedRules, 1)
	assert.Equal(t, "fuel surcharge", resp.AppliedRules[0].Description)
}

func TestCalculate_SeasonalityAppliesInsideWindow(t *testing.T) {
	f := setup(t)
	fl := f.flight(t, time.Date(2026, 7, 15, 9, 0, 0, 0, time.UTC))
	fc := f.fareClass(t, "Y", fareclassdomain.CabinEconomy, "1.000")
	f.rule(t, fc, "summer", "seasonality", `{"season":"summer","startDate":"2026-07-01","endDate":"2026-08-31","multiplier":1.2}`)
	f.rule(t, fc, "winter", "seasonality", `{"season":"winter","startDate":"2026-12-01","endDate":"2027-02-28","multiplier":0.7}`)

	resp, err := f.svc.Calculate(context.Background(), calc(fl, fc))
	require.NoError(t, err)
	assert.Equal(t, int64(60000), resp.AdjustedFare)
	require.Len(t, resp.AppliedRules, 1)
	assert.Equal(t, "season summer", resp.AppliedRules[0].Description)
}

func TestCalculate_BlackoutLegacyAndCurrentKeysAgree(t *testing.T) {
	f := setup(t)
	fl := f.flight(t, time.Date(2026, 4, 10, 22, 30, 0, 0, time.UTC))
	legacy := f.fareClass(t, "L", fareclassdomain.CabinEconomy, "1.000")
	current := f.fareClass(t, "C", fareclassdomain.CabinEconomy, "1.000")
	f.rule(t, legacy, "holiday", "blackout_dates", `{"periods":[{"from":"2026-04-10","to":"2026-04-10"}],"reason":"holiday"}`)
	f.rule(t, current, "holiday", "blackout_dates", `{"periods":[{"start":"2026-04-10","end":"2026-04-10"}],"reason":"holiday"}`)

	for _, fc := range []*fareclassdomain.FareClass{legacy, current} {
		_, err := f.svc.Calculate(context.Background(), calc(fl, fc))
		var ineligible *farecalcdomain.IneligibleError
		require.ErrorAs(t, err, &ineligible, fc.Code)
		assert.Equal(t, conditions.CategoryBlackoutDates, ineligible.Category)
		assert.Contains(t, ineligible.Reason, "holiday")
	}
}

func TestCalculate_MinimumStayOnlyWithReturn(t *testing.T) {
	f := setup(t)
	// Wednesday departure.
	fl := f.flight(t, time.Date(2026, 4, 8, 9, 0, 0, 0, time.UTC))
	fc := f.fareClass(t, "V", fareclassdomain.CabinEconomy, "1.000")
	f.rule(t, fc, "min stay", "minimum_stay", `{"minNights":3,"saturdayNightRequired":true}`)

	_, err := f.svc.Calculate(context.Background(), calc(fl, fc))
	require.NoError(t, err, "one-way itineraries skip stay rules")

	req := calc(fl, fc)
	req.ReturnDate = "2026-04-10T09:00:00Z"
	_, err = f.svc.Calculate(context.Background(), req)
	var ineligible *farecalcdomain.IneligibleError
	require.ErrorAs(t, err, &ineligible)
	assert.Equal(t, "Minimum stay is 3 nights (currently 2 nights)", ineligible.Reason)

	req.ReturnDate = "2026-04-13T09:00:00Z"
	_, err = f.svc.Calculate(context.Background(), req)
	require.NoError(t, err)
}

func TestCalculate_SkipsMalformedRules(t *testing.T) {
	f := setup(t)
	fl := f.flight(t, now.Add(30*24*time.Hour))
	fc := f.fareClass(t, "Y", fareclassdomain.CabinEconomy, "1.000")

	broken := &fareruledomain.FareRule{
		ID:              f.node.Generate(),
		FareClassID:     fc.ID,
		Name:            "broken",
		Category:        conditions.CategorySurcharges,
		ValidFrom:       now.Add(-time.Hour),
		PriceMultiplier: "1.000",
		Conditions:      "not json",
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, farerulerepository.Provide().Insert(context.Background(), f.db, broken))

	resp, err := f.svc.Calculate(context.Background(), calc(fl, fc))
	require.NoError(t, err)
	assert.Equal(t, int64(57500), resp.Total)
	assert.Empty(t, resp.AppliedRules)
	assert.Equal(t, 1.0, f.counter(t, "skyfare_fare_rule_malformed_total", "category", "surcharges"))
}

func TestCalculate_IsIdempotent(t *testing.T) {
	f := setup(t)
	fl := f.flight(t, now.Add(30*24*time.Hour))
	fc := f.fareClass(t, "Y", fareclassdomain.CabinEconomy, "1.100")
	f.rule(t, fc, "fuel", "surcharges", `{"type":"fuel","percentage":7.5}`)
	f.rule(t, fc, "eligibility", "eligibility", `{"passengerTypes":["adult","child"]}`)

	first, err := f.svc.Calculate(context.Background(), calc(fl, fc))
	require.NoError(t, err)
	second, err := f.svc.Calculate(context.Background(), calc(fl, fc))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCalculate_RequestErrors(t *testing.T) {
	f := setup(t)
	fl := f.flight(t, now.Add(30*24*time.Hour))
	fc := f.fareClass(t, "Y", fareclassdomain.CabinEconomy, "1.000")
	inactive := f.fareClass(t, "X", fareclassdomain.CabinEconomy, "1.000", func(fc *fareclassdomain.FareClass) { fc.Active = false })
	foreign := f.fareClass(t, "Z", fareclassdomain.CabinEconomy, "1.000", func(fc *fareclassdomain.FareClass) { fc.AirlineID = f.node.Generate() })

	cases := []struct {
		name string
		req  farecalcdomain.CalculateRequest
		want error
	}{
		{name: "flight id", req: farecalcdomain.CalculateRequest{FlightID: "abc", FareClassID: fc.ID.String()}, want: farecalcdomain.ErrInvalidFlight},
		{name: "missing flight", req: farecalcdomain.CalculateRequest{FlightID: f.node.Generate().String(), FareClassID: fc.ID.String()}, want: farecalcdomain.ErrFlightNotFound},
		{name: "missing fare class", req: farecalcdomain.CalculateRequest{FlightID: fl.ID.String(), FareClassID: f.node.Generate().String()}, want: farecalcdomain.ErrFareClassNotFound},
		{name: "inactive fare class", req: calc(fl, inactive), want: farecalcdomain.ErrFareClassNotFound},
		{name: "other airline", req: calc(fl, foreign), want: farecalcdomain.ErrFareClassNotOffered},
		{name: "passenger type", req: farecalcdomain.CalculateRequest{FlightID: fl.ID.String(), FareClassID: fc.ID.String(), PassengerType: "senior"}, want: farecalcdomain.ErrInvalidPassengerType},
		{name: "passenger count", req: farecalcdomain.CalculateRequest{FlightID: fl.ID.String(), FareClassID: fc.ID.String(), PassengerCount: -1}, want: farecalcdomain.ErrInvalidPassengerCount},
		{name: "passenger count above limit", req: farecalcdomain.CalculateRequest{FlightID: fl.ID.String(), FareClassID: fc.ID.String(), PassengerCount: maxPassengerCount + 1}, want: farecalcdomain.ErrInvalidPassengerCount},
		{name: "dates", req: farecalcdomain.CalculateRequest{FlightID: fl.ID.String(), FareClassID: fc.ID.String(), DepartureDate: "next week"}, want: farecalcdomain.ErrInvalidDates},
		{name: "route", req: farecalcdomain.CalculateRequest{FlightID: fl.ID.String(), FareClassID: fc.ID.String(), OriginID: "lhr"}, want: farecalcdomain.ErrInvalidRoute},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Calculate(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidateBooking_CollectsEveryViolation(t *testing.T) {
	f := setup(t)
	fl := f.flight(t, now.Add(3*24*time.Hour))
	fc := f.fareClass(t, "C", fareclassdomain.CabinEconomy, "1.000")
	f.rule(t, fc, "corporate", "eligibility", `{"passengerTypes":["adult"],"requiresCorporateId":true}`)
	f.rule(t, fc, "group", "group_discount", `{"minPassengers":10,"discountPercentage":15}`)
	f.rule(t, fc, "advance", "advance_purchase", `{"minDaysBeforeDeparture":7}`)

	resp, err := f.svc.ValidateBooking(context.Background(), farecalcdomain.ValidateRequest{
		FareClassID:    fc.ID.String(),
		FlightID:       fl.ID.String(),
		PassengerType:  "child",
		PassengerCount: 2,
	})
	require.NoError(t, err)
	assert.False(t, resp.Valid)

	messages := make([]string, 0, len(resp.Violations))
	for _, v := range resp.Violations {
		messages = append(messages, v.Message)
	}
	assert.Equal(t, []string{
		"Fare is not available to child passengers",
		"A corporate ID is required for this fare",
		"Must be booked at least 7 days before departure (currently 3 days)",
		"Group fare requires at least 10 passengers (currently 2)",
	}, messages)
	assert.Equal(t, 1.0, f.counter(t, "skyfare_booking_rule_violations_total", "category", "group_discount"))
}

func TestValidateBooking_Valid(t *testing.T) {
	f := setup(t)
	fc := f.fareClass(t, "C", fareclassdomain.CabinEconomy, "1.000")
	f.rule(t, fc, "corporate", "eligibility", `{"requiresCorporateId":true,"corporateIds":["ACME"]}`)

	resp, err := f.svc.ValidateBooking(context.Background(), farecalcdomain.ValidateRequest{
		FareClassID:   fc.ID.String(),
		DepartureDate: "2026-05-01",
		CorporateID:   "acme",
	})
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.NotNil(t, resp.Violations)
	assert.Empty(t, resp.Violations)

	_, err = f.svc.ValidateBooking(context.Background(), farecalcdomain.ValidateRequest{FareClassID: fc.ID.String()})
	assert.ErrorIs(t, err, farecalcdomain.ErrInvalidDates)

	_, err = f.svc.ValidateBooking(context.Background(), farecalcdomain.ValidateRequest{
		FareClassID: fc.ID.String(),
		FlightID:    f.node.Generate().String(),
	})
	assert.ErrorIs(t, err, farecalcdomain.ErrFlightNotFound)

	_, err = f.svc.ValidateBooking(context.Background(), farecalcdomain.ValidateRequest{
		FareClassID:    fc.ID.String(),
		DepartureDate:  "2026-05-01",
		PassengerCount: maxPassengerCount + 1,
	})
	assert.ErrorIs(t, err, farecalcdomain.ErrInvalidPassengerCount)
}

func TestChangeFee_TieredPenalty(t *testing.T) {
	f := setup(t)
	fee := int64(5000)
	fc := f.fareClass(t, "M", fareclassdomain.CabinEconomy, "1.000", func(fc *fareclassdomain.FareClass) {
		fc.Changeable = true
		fc.ChangeFee = &fee
	})
	f.rule(t, fc, "change tiers", "penalties", `{"penaltyType":"change","tiers":[{"withinHours":24,"fee":20000},{"withinHours":72,"fee":10000}]}`)
	f.rule(t, fc, "no show", "penalties", `{"penaltyType":"no_show","flatFee":30000}`)

	resp, err := f.svc.ChangeFee(context.Background(), farecalcdomain.ChangeFeeRequest{
		FareClassID: fc.ID.String(),
		BookingDate: "2026-02-28T06:00:00Z",
	})
	require.NoError(t, err)
	assert.True(t, resp.Changeable)
	assert.Equal(t, 30, resp.HoursSinceBooking)
	assert.Equal(t, int64(5000), resp.BaseFee)
	assert.Equal(t, int64(10000), resp.AdditionalFees)
	assert.Equal(t, int64(15000), resp.TotalFee)
	require.Len(t, resp.AppliedRules, 1)
	assert.Equal(t, "change tiers", resp.AppliedRules[0].RuleName)

	resp, err = f.svc.ChangeFee(context.Background(), farecalcdomain.ChangeFeeRequest{
		FareClassID: fc.ID.String(),
		BookingDate: "2026-03-01T06:00:00Z",
		ChangeDate:  "2026-03-01T12:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25000), resp.TotalFee)
}

func TestChangeFee_NotChangeable(t *testing.T) {
	f := setup(t)
	fc := f.fareClass(t, "N", fareclassdomain.CabinEconomy, "1.000")

	resp, err := f.svc.ChangeFee(context.Background(), farecalcdomain.ChangeFeeRequest{
		FareClassID: fc.ID.String(),
		BookingDate: "2026-02-01",
	})
	require.NoError(t, err)
	assert.False(t, resp.Changeable)
	assert.Zero(t, resp.TotalFee)
	assert.Empty(t, resp.AppliedRules)

	_, err = f.svc.ChangeFee(context.Background(), farecalcdomain.ChangeFeeRequest{FareClassID: fc.ID.String()})
	assert.ErrorIs(t, err, farecalcdomain.ErrInvalidDates)
}

func TestCompare_SortsAndExcludesIneligible(t *testing.T) {
	f := setup(t)
	fl := f.flight(t, now.Add(3*24*time.Hour))
	f.fareClass(t, "Y", fareclassdomain.CabinEconomy, "1.000")
	f.fareClass(t, "B", fareclassdomain.CabinEconomy, "0.800")
	f.fareClass(t, "J", fareclassdomain.CabinBusiness, "1.500")
	advance := f.fareClass(t, "Q", fareclassdomain.CabinEconomy, "0.500")
	f.rule(t, advance, "30 day advance", "advance_purchase", `{"minDaysBeforeDeparture":30}`)
	f.fareClass(t, "X", fareclassdomain.CabinEconomy, "0.100", func(fc *fareclassdomain.FareClass) { fc.Active = false })

	resp, err := f.svc.Compare(context.Background(), fl.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "SF101", resp.FlightNumber)

	codes := make([]string, 0, len(resp.Fares))
	totals := make([]int64, 0, len(resp.Fares))
	for _, fare := range resp.Fares {
		codes = append(codes, fare.Code)
		totals = append(totals, fare.Total)
	}
	assert.Equal(t, []string{"B", "Y", "J"}, codes)
	assert.Equal(t, []int64{46000, 57500, 207000}, totals)
	assert.Equal(t, 1.0, f.counter(t, "skyfare_fare_comparison_excluded_total", "reason", "advance_purchase"))

	_, err = f.svc.Compare(context.Background(), f.node.Generate().String())
	assert.ErrorIs(t, err, farecalcdomain.ErrFlightNotFound)
}
