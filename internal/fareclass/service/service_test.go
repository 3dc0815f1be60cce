package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/skyfare/internal/clock"
	fareclassdomain "github.com/smallbiznis/skyfare/internal/fareclass/domain"
	"github.com/smallbiznis/skyfare/internal/fareclass/repository"
	flightdomain "github.com/smallbiznis/skyfare/internal/flight/domain"
	flightrepository "github.com/smallbiznis/skyfare/internal/flight/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   fareclassdomain.Service
}

func setup(t *testing.T) fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&fareclassdomain.FareClass{}, &flightdomain.Flight{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(now)

	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clk,
		Repo:       repository.Provide(),
		FlightRepo: flightrepository.Provide(),
	})
	return fixture{db: db, node: node, clock: clk, svc: svc}
}

func intPtr(v int) *int { return &v }

func TestCreate_NormalizesAndDefaults(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	airline := f.node.Generate()

	resp, err := f.svc.Create(ctx, fareclassdomain.CreateRequest{
		AirlineID:  airline.String(),
		Code:       " y ",
		CabinClass: "Economy",
		Priority:   10,
		Metadata:   map[string]any{"brand": "light"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Y", resp.Code)
	assert.Equal(t, "Y", resp.Name)
	assert.Equal(t, fareclassdomain.CabinEconomy, resp.CabinClass)
	assert.Equal(t, "1.000", resp.BasePriceMultiplier)
	assert.True(t, resp.Active)
	assert.Equal(t, "light", resp.Metadata["brand"])
	assert.True(t, resp.CreatedAt.Equal(now))
	assert.True(t, resp.UpdatedAt.Equal(now))

	got, err := f.svc.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Y", got.Code)
	assert.Equal(t, "light", got.Metadata["brand"])
	assert.True(t, got.Active)
}

func TestCreate_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	airline := f.node.Generate().String()
	negative := int64(-1)

	cases := []struct {
		name string
		req  fareclassdomain.CreateRequest
		want error
	}{
		{name: "airline", req: fareclassdomain.CreateRequest{AirlineID: "x", Code: "Y", CabinClass: "economy"}, want: fareclassdomain.ErrInvalidAirline},
		{name: "empty code", req: fareclassdomain.CreateRequest{AirlineID: airline, Code: " ", CabinClass: "economy"}, want: fareclassdomain.ErrInvalidCode},
		{name: "long code", req: fareclassdomain.CreateRequest{AirlineID: airline, Code: "YYY", CabinClass: "economy"}, want: fareclassdomain.ErrInvalidCode},
		{name: "symbol code", req: fareclassdomain.CreateRequest{AirlineID: airline, Code: "Y-", CabinClass: "economy"}, want: fareclassdomain.ErrInvalidCode},
		{name: "cabin", req: fareclassdomain.CreateRequest{AirlineID: airline, Code: "Y", CabinClass: "coach"}, want: fareclassdomain.ErrInvalidCabin},
		{name: "multiplier text", req: fareclassdomain.CreateRequest{AirlineID: airline, Code: "Y", CabinClass: "economy", BasePriceMultiplier: "abc"}, want: fareclassdomain.ErrInvalidMultiplier},
		{name: "multiplier zero", req: fareclassdomain.CreateRequest{AirlineID: airline, Code: "Y", CabinClass: "economy", BasePriceMultiplier: "0"}, want: fareclassdomain.ErrInvalidMultiplier},
		{name: "seats", req: fareclassdomain.CreateRequest{AirlineID: airline, Code: "Y", CabinClass: "economy", SeatsAllocated: intPtr(-1)}, want: fareclassdomain.ErrInvalidSeats},
		{name: "change fee", req: fareclassdomain.CreateRequest{AirlineID: airline, Code: "Y", CabinClass: "economy", ChangeFee: &negative}, want: fareclassdomain.ErrInvalidChangeFee},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreate_ConflictPerAirline(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	airline := f.node.Generate().String()

	_, err := f.svc.Create(ctx, fareclassdomain.CreateRequest{AirlineID: airline, Code: "M", CabinClass: "economy"})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, fareclassdomain.CreateRequest{AirlineID: airline, Code: "m", CabinClass: "economy"})
	assert.ErrorIs(t, err, fareclassdomain.ErrConflict)

	_, err = f.svc.Create(ctx, fareclassdomain.CreateRequest{AirlineID: f.node.Generate().String(), Code: "M", CabinClass: "economy"})
	assert.NoError(t, err, "same code on another airline")
}

func TestUpdate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	airline := f.node.Generate().String()

	y, err := f.svc.Create(ctx, fareclassdomain.CreateRequest{AirlineID: airline, Code: "Y", CabinClass: "economy", SeatsAllocated: intPtr(20)})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, fareclassdomain.CreateRequest{AirlineID: airline, Code: "B", CabinClass: "economy"})
	require.NoError(t, err)

	taken := "b"
	_, err = f.svc.Update(ctx, fareclassdomain.UpdateRequest{ID: y.ID, Code: &taken})
	assert.ErrorIs(t, err, fareclassdomain.ErrConflict)

	same := "y"
	multiplier := "1.25"
	inactive := false
	fee := int64(5000)
	f.clock.Advance(time.Hour)
	updated, err := f.svc.Update(ctx, fareclassdomain.UpdateRequest{
		ID:                  y.ID,
		Code:                &same,
		BasePriceMultiplier: &multiplier,
		Active:              &inactive,
		ChangeFee:           &fee,
		ClearSeats:          true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Y", updated.Code)
	assert.Equal(t, "1.250", updated.BasePriceMultiplier)
	assert.False(t, updated.Active)
	assert.Equal(t, int64(5000), updated.ChangeFee)
	assert.Nil(t, updated.SeatsAllocated)
	assert.True(t, updated.CreatedAt.Equal(now))
	assert.True(t, updated.UpdatedAt.Equal(now.Add(time.Hour)))

	got, err := f.svc.Get(ctx, y.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, "1.250", got.BasePriceMultiplier)
	assert.Nil(t, got.SeatsAllocated)

	renamed := "H"
	updated, err = f.svc.Update(ctx, fareclassdomain.UpdateRequest{ID: y.ID, Code: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "H", updated.Code)

	_, err = f.svc.Update(ctx, fareclassdomain.UpdateRequest{ID: f.node.Generate().String()})
	assert.ErrorIs(t, err, fareclassdomain.ErrNotFound)
}

func TestList_OrderAndFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	airline := f.node.Generate().String()

	for _, req := range []fareclassdomain.CreateRequest{
		{Code: "Q", CabinClass: "economy", Priority: 1},
		{Code: "Y", CabinClass: "economy", Priority: 100},
		{Code: "J", CabinClass: "business", Priority: 10},
		{Code: "F", CabinClass: "first", Priority: 1},
		{Code: "W", CabinClass: "premium_economy", Priority: 5},
	} {
		req.AirlineID = airline
		_, err := f.svc.Create(ctx, req)
		require.NoError(t, err)
	}
	inactive := false
	_, err := f.svc.Create(ctx, fareclassdomain.CreateRequest{AirlineID: airline, Code: "Z", CabinClass: "economy", Active: &inactive})
	require.NoError(t, err)

	active := true
	items, err := f.svc.List(ctx, fareclassdomain.ListRequest{AirlineID: airline, Active: &active})
	require.NoError(t, err)

	codes := make([]string, 0, len(items))
	for _, item := range items {
		codes = append(codes, item.Code)
	}
	assert.Equal(t, []string{"F", "J", "W", "Y", "Q"}, codes)

	economy, err := f.svc.List(ctx, fareclassdomain.ListRequest{AirlineID: airline, CabinClass: "economy"})
	require.NoError(t, err)
	assert.Len(t, economy, 3)

	_, err = f.svc.List(ctx, fareclassdomain.ListRequest{CabinClass: "coach"})
	assert.ErrorIs(t, err, fareclassdomain.ErrInvalidCabin)
}

func TestNestedAvailability(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	airline := f.node.Generate()

	flight := &flightdomain.Flight{
		ID:                f.node.Generate(),
		AirlineID:         airline,
		FlightNumber:      "SF7",
		DepartureTime:     time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC),
		ArrivalTime:       time.Date(2026, 7, 1, 11, 0, 0, 0, time.UTC),
		EconomyAvailable:  12,
		BusinessAvailable: 3,
		Status:            "scheduled",
	}
	require.NoError(t, flightrepository.Provide().Insert(ctx, f.db, flight))

	for _, req := range []fareclassdomain.CreateRequest{
		{Code: "Y", CabinClass: "economy", Priority: 100, SeatsAllocated: intPtr(10)},
		{Code: "B", CabinClass: "economy", Priority: 50, SeatsAllocated: intPtr(10)},
		{Code: "J", CabinClass: "business", Priority: 10, SeatsAllocated: intPtr(3)},
	} {
		req.AirlineID = airline.String()
		_, err := f.svc.Create(ctx, req)
		require.NoError(t, err)
	}

	resp, err := f.svc.NestedAvailability(ctx, flight.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "SF7", resp.FlightNumber)
	require.Len(t, resp.FareClasses, 3)
	assert.Equal(t, "J", resp.FareClasses[0].Code)
	assert.Equal(t, 3, resp.FareClasses[0].SeatsAvailable)
	assert.Equal(t, 10, resp.FareClasses[1].SeatsAvailable)
	assert.Equal(t, 2, resp.FareClasses[2].SeatsAvailable)

	_, err = f.svc.NestedAvailability(ctx, f.node.Generate().String())
	assert.ErrorIs(t, err, fareclassdomain.ErrFlightNotFound)
}
