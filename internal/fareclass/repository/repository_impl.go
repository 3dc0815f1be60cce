package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	fareclassdomain "github.com/smallbiznis/skyfare/internal/fareclass/domain"
	store "github.com/smallbiznis/skyfare/pkg/repository"
	"gorm.io/gorm"
)

const columns = `id, airline_id, code, name, cabin_class, base_price_multiplier, priority,
	seats_allocated, refundable, changeable, change_fee, upgradeable, baggage_allowance,
	seat_selection, lounge_access, priority_boarding, meal_included, mileage_rate,
	metadata, active, created_at, updated_at`

const cabinOrder = `CASE cabin_class
	WHEN 'first' THEN 0
	WHEN 'business' THEN 1
	WHEN 'premium_economy' THEN 2
	ELSE 3 END`

type repo struct{}

func Provide() fareclassdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, fc *fareclassdomain.FareClass) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO fare_classes (`+columns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fc.ID,
		fc.AirlineID,
		fc.Code,
		fc.Name,
		fc.CabinClass,
		fc.BasePriceMultiplier,
		fc.Priority,
		fc.SeatsAllocated,
		fc.Refundable,
		fc.Changeable,
		fc.ChangeFee,
		fc.Upgradeable,
		fc.BaggageAllowance,
		fc.SeatSelection,
		fc.LoungeAccess,
		fc.PriorityBoarding,
		fc.MealIncluded,
		fc.MileageRate,
		fc.Metadata,
		fc.Active,
		fc.CreatedAt,
		fc.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, fc *fareclassdomain.FareClass) error {
	if fc == nil {
		return gorm.ErrInvalidData
	}
	return store.ProvideStore[fareclassdomain.FareClass](db).Update(ctx, fc.ID, map[string]any{
		"code":                  fc.Code,
		"name":                  fc.Name,
		"cabin_class":           fc.CabinClass,
		"base_price_multiplier": fc.BasePriceMultiplier,
		"priority":              fc.Priority,
		"seats_allocated":       fc.SeatsAllocated,
		"refundable":            fc.Refundable,
		"changeable":            fc.Changeable,
		"change_fee":            fc.ChangeFee,
		"upgradeable":           fc.Upgradeable,
		"baggage_allowance":     fc.BaggageAllowance,
		"seat_selection":        fc.SeatSelection,
		"lounge_access":         fc.LoungeAccess,
		"priority_boarding":     fc.PriorityBoarding,
		"meal_included":         fc.MealIncluded,
		"mileage_rate":          fc.MileageRate,
		"metadata":              fc.Metadata,
		"active":                fc.Active,
		"updated_at":            fc.UpdatedAt,
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*fareclassdomain.FareClass, error) {
	var fc fareclassdomain.FareClass
	err := db.WithContext(ctx).Raw(
		`SELECT `+columns+` FROM fare_classes WHERE id = ?`,
		id,
	).Scan(&fc).Error
	if err != nil {
		return nil, err
	}
	if fc.ID == 0 {
		return nil, nil
	}
	return &fc, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, airlineID snowflake.ID, code string) (*fareclassdomain.FareClass, error) {
	var fc fareclassdomain.FareClass
	err := db.WithContext(ctx).Raw(
		`SELECT `+columns+` FROM fare_classes WHERE airline_id = ? AND code = ?`,
		airlineID,
		code,
	).Scan(&fc).Error
	if err != nil {
		return nil, err
	}
	if fc.ID == 0 {
		return nil, nil
	}
	return &fc, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter fareclassdomain.ListFilter) ([]*fareclassdomain.FareClass, error) {
	var items []*fareclassdomain.FareClass
	stmt := db.WithContext(ctx).Model(&fareclassdomain.FareClass{})

	if filter.AirlineID != nil {
		stmt = stmt.Where("airline_id = ?", *filter.AirlineID)
	}
	if filter.CabinClass != nil {
		stmt = stmt.Where("cabin_class = ?", *filter.CabinClass)
	}
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}

	err := stmt.Order(cabinOrder).Order("priority DESC").Order("id ASC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
