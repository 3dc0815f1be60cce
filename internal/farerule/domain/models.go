package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/skyfare/internal/farerule/conditions"
)

const DefaultMultiplier = "1.000"

// FareRule is one category-coded business rule attached to a fare class.
// Conditions holds the serialized, category-specific payload as authored.
type FareRule struct {
	ID              snowflake.ID        `json:"id" gorm:"primaryKey"`
	FareClassID     snowflake.ID        `json:"fare_class_id" gorm:"column:fare_class_id;not null;index"`
	Name            string              `json:"name" gorm:"type:text;not null"`
	Description     *string             `json:"description,omitempty" gorm:"type:text"`
	Category        conditions.Category `json:"category" gorm:"type:text;not null;index"`
	OriginID        *snowflake.ID       `json:"origin_id,omitempty" gorm:"column:origin_id"`
	DestinationID   *snowflake.ID       `json:"destination_id,omitempty" gorm:"column:destination_id"`
	ValidFrom       time.Time           `json:"valid_from" gorm:"column:valid_from;not null"`
	ValidUntil      *time.Time          `json:"valid_until,omitempty" gorm:"column:valid_until"`
	PriceAdjustment *int64              `json:"price_adjustment,omitempty" gorm:"column:price_adjustment"`
	PriceMultiplier string              `json:"price_multiplier" gorm:"column:price_multiplier;type:text;not null"`
	Conditions      string              `json:"conditions" gorm:"type:text;not null"`
	Active          bool                `json:"active" gorm:"not null"`
	CreatedAt       time.Time           `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time           `json:"updated_at" gorm:"not null"`
}

func (FareRule) TableName() string { return "fare_rules" }

// Multiplier parses the stored price multiplier; blank means 1.
func (r FareRule) Multiplier() (decimal.Decimal, error) {
	if strings.TrimSpace(r.PriceMultiplier) == "" {
		return decimal.NewFromInt(1), nil
	}
	return decimal.NewFromString(r.PriceMultiplier)
}

// Adjustment returns the flat price adjustment, zero when unset.
func (r FareRule) Adjustment() int64 {
	if r.PriceAdjustment == nil {
		return 0
	}
	return *r.PriceAdjustment
}

// ValidAt reports whether at falls inside [ValidFrom, ValidUntil].
func (r FareRule) ValidAt(at time.Time) bool {
	if at.Before(r.ValidFrom) {
		return false
	}
	return r.ValidUntil == nil || !at.After(*r.ValidUntil)
}

// ParseConditions decodes the stored payload for the rule's category.
func (r FareRule) ParseConditions() (conditions.Conditions, error) {
	return conditions.Parse(r.Category, r.Conditions)
}

// SortByCategory orders rules by pipeline category order, then by id.
func SortByCategory(rules []*FareRule) {
	rank := make(map[conditions.Category]int, len(conditions.CategoryOrder))
	for i, c := range conditions.CategoryOrder {
		rank[c] = i
	}
	sort.SliceStable(rules, func(i, j int) bool {
		ri, rj := rank[rules[i].Category], rank[rules[j].Category]
		if ri != rj {
			return ri < rj
		}
		return rules[i].ID < rules[j].ID
	})
}

// GroupByCategory buckets rules by category, preserving their order.
func GroupByCategory(rules []*FareRule) map[conditions.Category][]*FareRule {
	out := make(map[conditions.Category][]*FareRule)
	for _, rule := range rules {
		out[rule.Category] = append(out[rule.Category], rule)
	}
	return out
}
