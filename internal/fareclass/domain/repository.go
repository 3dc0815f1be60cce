package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	AirlineID  *snowflake.ID
	CabinClass *CabinClass
	Active     *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, fareClass *FareClass) error
	Update(ctx context.Context, db *gorm.DB, fareClass *FareClass) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*FareClass, error)
	FindByCode(ctx context.Context, db *gorm.DB, airlineID snowflake.ID, code string) (*FareClass, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*FareClass, error)
}
