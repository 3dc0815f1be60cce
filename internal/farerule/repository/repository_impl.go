package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	fareruledomain "github.com/smallbiznis/skyfare/internal/farerule/domain"
	"github.com/smallbiznis/skyfare/pkg/db/option"
	"gorm.io/gorm"
)

const columns = `id, fare_class_id, name, description, category, origin_id, destination_id,
	valid_from, valid_until, price_adjustment, price_multiplier, conditions, active,
	created_at, updated_at`

type repo struct{}

func Provide() fareruledomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rule *fareruledomain.FareRule) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO fare_rules (`+columns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID,
		rule.FareClassID,
		rule.Name,
		rule.Description,
		rule.Category,
		rule.OriginID,
		rule.DestinationID,
		rule.ValidFrom,
		rule.ValidUntil,
		rule.PriceAdjustment,
		rule.PriceMultiplier,
		rule.Conditions,
		rule.Active,
		rule.CreatedAt,
		rule.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, rule *fareruledomain.FareRule) error {
	if rule == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE fare_rules
		 SET name = ?, description = ?, category = ?, origin_id = ?, destination_id = ?,
		     valid_from = ?, valid_until = ?, price_adjustment = ?, price_multiplier = ?,
		     conditions = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		rule.Name,
		rule.Description,
		rule.Category,
		rule.OriginID,
		rule.DestinationID,
		rule.ValidFrom,
		rule.ValidUntil,
		rule.PriceAdjustment,
		rule.PriceMultiplier,
		rule.Conditions,
		rule.Active,
		rule.UpdatedAt,
		rule.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*fareruledomain.FareRule, error) {
	var rule fareruledomain.FareRule
	err := db.WithContext(ctx).Raw(
		`SELECT `+columns+` FROM fare_rules WHERE id = ?`,
		id,
	).Scan(&rule).Error
	if err != nil {
		return nil, err
	}
	if rule.ID == 0 {
		return nil, nil
	}
	return &rule, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter fareruledomain.ListFilter) ([]*fareruledomain.FareRule, error) {
	var items []*fareruledomain.FareRule
	stmt := db.WithContext(ctx).
		Model(&fareruledomain.FareRule{}).
		Select("fare_rules.*")

	if filter.AirlineID != nil {
		stmt = stmt.
			Joins("JOIN fare_classes ON fare_classes.id = fare_rules.fare_class_id").
			Where("fare_classes.airline_id = ?", *filter.AirlineID)
	}

	var opts []option.QueryOption
	if filter.FareClassID != nil {
		opts = append(opts, option.WithWhere("fare_rules.fare_class_id = ?", *filter.FareClassID))
	}
	if filter.Category != nil {
		opts = append(opts, option.WithWhere("fare_rules.category = ?", *filter.Category))
	}
	if filter.Active != nil {
		opts = append(opts, option.WithWhere("fare_rules.active = ?", *filter.Active))
	}
	if filter.AfterID != nil {
		opts = append(opts, option.WithWhere("fare_rules.id > ?", *filter.AfterID))
	}
	opts = append(opts, option.WithOrder("fare_rules.id ASC"), option.WithLimit(filter.Limit))
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindApplicable(ctx context.Context, db *gorm.DB, q fareruledomain.ApplicableQuery) ([]*fareruledomain.FareRule, error) {
	var items []*fareruledomain.FareRule
	stmt := db.WithContext(ctx).
		Model(&fareruledomain.FareRule{}).
		Where("fare_class_id = ?", q.FareClassID).
		Where("active = ?", true).
		Where("valid_from <= ?", q.At).
		Where("valid_until IS NULL OR valid_until >= ?", q.At)

	if q.OriginID != nil {
		stmt = stmt.Where("origin_id IS NULL OR origin_id = ?", *q.OriginID)
	}
	if q.DestinationID != nil {
		stmt = stmt.Where("destination_id IS NULL OR destination_id = ?", *q.DestinationID)
	}
	if len(q.Categories) > 0 {
		stmt = stmt.Where("category IN ?", q.Categories)
	}

	if err := stmt.Order("category ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
