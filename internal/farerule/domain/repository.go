package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/skyfare/internal/farerule/conditions"
	"gorm.io/gorm"
)

type ListFilter struct {
	FareClassID *snowflake.ID
	AirlineID   *snowflake.ID
	Category    *conditions.Category
	Active      *bool
	AfterID     *snowflake.ID
	Limit       int
}

// ApplicableQuery selects active rules of a fare class valid at At. Nil
// route endpoints match every rule; set endpoints match null or equal values.
type ApplicableQuery struct {
	FareClassID   snowflake.ID
	OriginID      *snowflake.ID
	DestinationID *snowflake.ID
	At            time.Time
	Categories    []conditions.Category
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rule *FareRule) error
	Update(ctx context.Context, db *gorm.DB, rule *FareRule) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*FareRule, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*FareRule, error)
	FindApplicable(ctx context.Context, db *gorm.DB, query ApplicableQuery) ([]*FareRule, error)
}
