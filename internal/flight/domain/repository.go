package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, flight *Flight) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Flight, error)
	ListByAirline(ctx context.Context, db *gorm.DB, airlineID snowflake.ID) ([]*Flight, error)
}
