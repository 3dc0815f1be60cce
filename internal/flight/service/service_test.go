package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	flightdomain "github.com/smallbiznis/skyfare/internal/flight/domain"
	"github.com/smallbiznis/skyfare/internal/flight/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, *snowflake.Node, flightdomain.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&flightdomain.Flight{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{DB: db, Log: zap.NewNop(), Repo: repository.Provide()})
	return db, node, svc
}

func TestGet(t *testing.T) {
	db, node, svc := setup(t)
	ctx := context.Background()

	departure := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	flight := &flightdomain.Flight{
		ID:                node.Generate(),
		AirlineID:         node.Generate(),
		FlightNumber:      "SF101",
		OriginID:          node.Generate(),
		DestinationID:     node.Generate(),
		DepartureTime:     departure,
		ArrivalTime:       departure.Add(2 * time.Hour),
		EconomyPrice:      20000,
		BusinessPrice:     60000,
		EconomyAvailable:  120,
		BusinessAvailable: 12,
		Status:            "scheduled",
	}
	require.NoError(t, repository.Provide().Insert(ctx, db, flight))

	resp, err := svc.Get(ctx, flight.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "SF101", resp.FlightNumber)
	assert.Equal(t, int64(60000), resp.BusinessPrice)
	assert.True(t, departure.Equal(resp.DepartureTime))

	_, err = svc.Get(ctx, node.Generate().String())
	assert.ErrorIs(t, err, flightdomain.ErrNotFound)

	_, err = svc.Get(ctx, "not-an-id")
	assert.ErrorIs(t, err, flightdomain.ErrInvalidID)
}

func TestListByAirline(t *testing.T) {
	db, node, svc := setup(t)
	ctx := context.Background()
	airline := node.Generate()
	repo := repository.Provide()

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, number := range []string{"SF300", "SF100", "SF200"} {
		require.NoError(t, repo.Insert(ctx, db, &flightdomain.Flight{
			ID:            node.Generate(),
			AirlineID:     airline,
			FlightNumber:  number,
			DepartureTime: base.Add(time.Duration(3-i) * time.Hour),
			ArrivalTime:   base.Add(time.Duration(5-i) * time.Hour),
			Status:        "scheduled",
		}))
	}
	require.NoError(t, repo.Insert(ctx, db, &flightdomain.Flight{
		ID:            node.Generate(),
		AirlineID:     node.Generate(),
		FlightNumber:  "XX1",
		DepartureTime: base,
		ArrivalTime:   base,
		Status:        "scheduled",
	}))

	items, err := svc.ListByAirline(ctx, airline.String())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "SF200", items[0].FlightNumber)
	assert.Equal(t, "SF300", items[2].FlightNumber)
}

func TestSeatPool(t *testing.T) {
	f := flightdomain.Flight{EconomyPrice: 100, BusinessPrice: 300, EconomyAvailable: 9, BusinessAvailable: 2}
	assert.Equal(t, int64(300), f.PriceFor(flightdomain.PoolBusiness))
	assert.Equal(t, int64(100), f.PriceFor(flightdomain.PoolEconomy))
	assert.Equal(t, 2, f.AvailableFor(flightdomain.PoolBusiness))
	assert.Equal(t, 9, f.AvailableFor(flightdomain.PoolEconomy))
}
