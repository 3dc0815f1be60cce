package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	flightdomain "github.com/smallbiznis/skyfare/internal/flight/domain"
	"github.com/smallbiznis/skyfare/pkg/db/option"
	store "github.com/smallbiznis/skyfare/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() flightdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, f *flightdomain.Flight) error {
	return store.ProvideStore[flightdomain.Flight](db).Create(ctx, f)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*flightdomain.Flight, error) {
	return store.ProvideStore[flightdomain.Flight](db).FindOne(ctx, &flightdomain.Flight{ID: id})
}

func (r *repo) ListByAirline(ctx context.Context, db *gorm.DB, airlineID snowflake.ID) ([]*flightdomain.Flight, error) {
	return store.ProvideStore[flightdomain.Flight](db).Find(ctx,
		&flightdomain.Flight{AirlineID: airlineID},
		option.WithOrder("departure_time ASC, id ASC"),
	)
}
