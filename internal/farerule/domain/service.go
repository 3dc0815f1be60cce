package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/smallbiznis/skyfare/internal/farerule/conditions"
	"github.com/smallbiznis/skyfare/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Delete(ctx context.Context, id string) (*Response, error)
	Applicable(ctx context.Context, req ApplicableRequest) ([]Response, error)
	Resolve(ctx context.Context, query ApplicableQuery) ([]*FareRule, error)
}

// ConditionsText is the serialized conditions payload. It decodes from a JSON
// string holding the text or, for convenience, from an inline JSON object.
type ConditionsText string

func (c *ConditionsText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*c = ConditionsText(s)
		return nil
	}
	if bytes.Equal(trimmed, []byte("null")) {
		*c = ""
		return nil
	}
	*c = ConditionsText(trimmed)
	return nil
}

type CreateRequest struct {
	FareClassID     string         `json:"fare_class_id"`
	Name            string         `json:"name"`
	Description     *string        `json:"description"`
	Category        string         `json:"category"`
	OriginID        *string        `json:"origin_id"`
	DestinationID   *string        `json:"destination_id"`
	ValidFrom       string         `json:"valid_from"`
	ValidUntil      *string        `json:"valid_until"`
	PriceAdjustment *int64         `json:"price_adjustment"`
	PriceMultiplier string         `json:"price_multiplier"`
	Conditions      ConditionsText `json:"conditions"`
	Active          *bool          `json:"active"`
}

// UpdateRequest is a partial update. An empty string clears a nullable field.
type UpdateRequest struct {
	ID              string          `json:"-"`
	Name            *string         `json:"name"`
	Description     *string         `json:"description"`
	Category        *string         `json:"category"`
	OriginID        *string         `json:"origin_id"`
	DestinationID   *string         `json:"destination_id"`
	ValidFrom       *string         `json:"valid_from"`
	ValidUntil      *string         `json:"valid_until"`
	PriceAdjustment *int64          `json:"price_adjustment"`
	PriceMultiplier *string         `json:"price_multiplier"`
	Conditions      *ConditionsText `json:"conditions"`
	Active          *bool           `json:"active"`
}

type ListRequest struct {
	FareClassID string
	AirlineID   string
	Category    string
	Active      *bool
	pagination.Pagination
}

type ApplicableRequest struct {
	FareClassID   string
	OriginID      string
	DestinationID string
	Date          string
}

type Response struct {
	ID              string              `json:"id"`
	FareClassID     string              `json:"fare_class_id"`
	Name            string              `json:"name"`
	Description     *string             `json:"description,omitempty"`
	Category        conditions.Category `json:"category"`
	OriginID        *string             `json:"origin_id,omitempty"`
	DestinationID   *string             `json:"destination_id,omitempty"`
	ValidFrom       time.Time           `json:"valid_from"`
	ValidUntil      *time.Time          `json:"valid_until,omitempty"`
	PriceAdjustment *int64              `json:"price_adjustment,omitempty"`
	PriceMultiplier string              `json:"price_multiplier"`
	Conditions      string              `json:"conditions"`
	Active          bool                `json:"active"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type ListResponse struct {
	Rules    []Response           `json:"rules"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidFareClass  = errors.New("invalid_fare_class")
	ErrFareClassNotFound = errors.New("fare_class_not_found")
	ErrInvalidAirline    = errors.New("invalid_airline")
	ErrInvalidCategory   = conditions.ErrInvalidCategory
	ErrInvalidRoute      = errors.New("invalid_route")
	ErrInvalidValidity   = errors.New("invalid_validity")
	ErrInvalidMultiplier = errors.New("invalid_price_multiplier")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidConditions = conditions.ErrInvalid
	ErrInvalidPageToken  = errors.New("invalid_page_token")
	ErrNotFound          = errors.New("fare_rule_not_found")
)
