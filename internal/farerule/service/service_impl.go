package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/skyfare/internal/clock"
	fareclassdomain "github.com/smallbiznis/skyfare/internal/fareclass/domain"
	"github.com/smallbiznis/skyfare/internal/farerule/conditions"
	fareruledomain "github.com/smallbiznis/skyfare/internal/farerule/domain"
	"github.com/smallbiznis/skyfare/pkg/db"
	"github.com/smallbiznis/skyfare/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxNameLength = 120

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          fareruledomain.Repository
	FareClassRepo fareclassdomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	repo          fareruledomain.Repository
	fareClassRepo fareclassdomain.Repository
}

func New(p Params) fareruledomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("farerule.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		fareClassRepo: p.FareClassRepo,
	}
}

func (s *Service) Create(ctx context.Context, req fareruledomain.CreateRequest) (*fareruledomain.Response, error) {
	fareClassID, err := parseID(req.FareClassID)
	if err != nil {
		return nil, fareruledomain.ErrInvalidFareClass
	}
	if err := s.ensureFareClass(ctx, fareClassID); err != nil {
		return nil, err
	}

	category, err := conditions.ParseCategory(req.Category)
	if err != nil {
		return nil, fareruledomain.ErrInvalidCategory
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = category.String()
	}
	if len(name) > maxNameLength {
		return nil, fareruledomain.ErrInvalidName
	}

	originID, err := parseOptionalID(req.OriginID)
	if err != nil {
		return nil, fareruledomain.ErrInvalidRoute
	}
	destinationID, err := parseOptionalID(req.DestinationID)
	if err != nil {
		return nil, fareruledomain.ErrInvalidRoute
	}

	validFrom := s.clock.Now().UTC()
	if strings.TrimSpace(req.ValidFrom) != "" {
		validFrom, err = conditions.ParseInstant(req.ValidFrom, false)
		if err != nil {
			return nil, fareruledomain.ErrInvalidValidity
		}
	}
	validUntil, err := parseValidUntil(req.ValidUntil)
	if err != nil {
		return nil, err
	}
	if validUntil != nil && validUntil.Before(validFrom) {
		return nil, fareruledomain.ErrInvalidValidity
	}

	multiplier, err := normalizeMultiplier(req.PriceMultiplier)
	if err != nil {
		return nil, err
	}

	text, err := canonicalConditions(category, string(req.Conditions))
	if err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now()
	rule := &fareruledomain.FareRule{
		ID:              s.genID.Generate(),
		FareClassID:     fareClassID,
		Name:            name,
		Description:     trimOptional(req.Description),
		Category:        category,
		OriginID:        originID,
		DestinationID:   destinationID,
		ValidFrom:       validFrom,
		ValidUntil:      validUntil,
		PriceAdjustment: req.PriceAdjustment,
		PriceMultiplier: multiplier,
		Conditions:      text,
		Active:          active,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, rule); err != nil {
		if db.IsForeignKeyErr(err) {
			return nil, fareruledomain.ErrFareClassNotFound
		}
		return nil, err
	}

	s.log.Info("fare rule created",
		zap.String("rule_id", rule.ID.String()),
		zap.String("fare_class_id", fareClassID.String()),
		zap.String("category", category.String()),
	)

	return toResponse(rule), nil
}

func (s *Service) Update(ctx context.Context, req fareruledomain.UpdateRequest) (*fareruledomain.Response, error) {
	rule, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	revalidate := false
	if req.Category != nil {
		category, err := conditions.ParseCategory(*req.Category)
		if err != nil {
			return nil, fareruledomain.ErrInvalidCategory
		}
		revalidate = category != rule.Category
		rule.Category = category
	}
	if req.Conditions != nil {
		rule.Conditions = string(*req.Conditions)
		revalidate = true
	}
	if revalidate {
		text, err := canonicalConditions(rule.Category, rule.Conditions)
		if err != nil {
			return nil, err
		}
		rule.Conditions = text
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > maxNameLength {
			return nil, fareruledomain.ErrInvalidName
		}
		rule.Name = name
	}
	if req.Description != nil {
		rule.Description = trimOptional(req.Description)
	}
	if req.OriginID != nil {
		rule.OriginID, err = parseOptionalID(req.OriginID)
		if err != nil {
			return nil, fareruledomain.ErrInvalidRoute
		}
	}
	if req.DestinationID != nil {
		rule.DestinationID, err = parseOptionalID(req.DestinationID)
		if err != nil {
			return nil, fareruledomain.ErrInvalidRoute
		}
	}
	if req.ValidFrom != nil {
		rule.ValidFrom, err = conditions.ParseInstant(*req.ValidFrom, false)
		if err != nil {
			return nil, fareruledomain.ErrInvalidValidity
		}
	}
	if req.ValidUntil != nil {
		rule.ValidUntil, err = parseValidUntil(req.ValidUntil)
		if err != nil {
			return nil, err
		}
	}
	if rule.ValidUntil != nil && rule.ValidUntil.Before(rule.ValidFrom) {
		return nil, fareruledomain.ErrInvalidValidity
	}
	if req.PriceAdjustment != nil {
		adjustment := *req.PriceAdjustment
		rule.PriceAdjustment = &adjustment
	}
	if req.PriceMultiplier != nil {
		rule.PriceMultiplier, err = normalizeMultiplier(*req.PriceMultiplier)
		if err != nil {
			return nil, err
		}
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	rule.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, rule); err != nil {
		return nil, err
	}

	return toResponse(rule), nil
}

func (s *Service) Get(ctx context.Context, id string) (*fareruledomain.Response, error) {
	rule, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(rule), nil
}

// Delete deactivates the rule. Rules are never removed so quotes stay explainable.
func (s *Service) Delete(ctx context.Context, id string) (*fareruledomain.Response, error) {
	rule, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rule.Active {
		return toResponse(rule), nil
	}

	rule.Active = false
	rule.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, rule); err != nil {
		return nil, err
	}

	s.log.Info("fare rule deactivated", zap.String("rule_id", rule.ID.String()))
	return toResponse(rule), nil
}

func (s *Service) List(ctx context.Context, req fareruledomain.ListRequest) (*fareruledomain.ListResponse, error) {
	limit := req.Pagination.Limit()
	filter := fareruledomain.ListFilter{Active: req.Active, Limit: limit + 1}

	if strings.TrimSpace(req.FareClassID) != "" {
		id, err := parseID(req.FareClassID)
		if err != nil {
			return nil, fareruledomain.ErrInvalidFareClass
		}
		filter.FareClassID = &id
	}
	if strings.TrimSpace(req.AirlineID) != "" {
		id, err := parseID(req.AirlineID)
		if err != nil {
			return nil, fareruledomain.ErrInvalidAirline
		}
		filter.AirlineID = &id
	}
	if strings.TrimSpace(req.Category) != "" {
		category, err := conditions.ParseCategory(req.Category)
		if err != nil {
			return nil, fareruledomain.ErrInvalidCategory
		}
		filter.Category = &category
	}
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, fareruledomain.ErrInvalidPageToken
		}
		after, err := parseID(cursor.ID)
		if err != nil {
			return nil, fareruledomain.ErrInvalidPageToken
		}
		filter.AfterID = &after
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, limit, func(r *fareruledomain.FareRule) string {
		return r.ID.String()
	})

	resp := &fareruledomain.ListResponse{
		Rules:    make([]fareruledomain.Response, 0, len(items)),
		PageInfo: pageInfo,
	}
	for _, item := range items {
		resp.Rules = append(resp.Rules, *toResponse(item))
	}
	return resp, nil
}

func (s *Service) Applicable(ctx context.Context, req fareruledomain.ApplicableRequest) ([]fareruledomain.Response, error) {
	fareClassID, err := parseID(req.FareClassID)
	if err != nil {
		return nil, fareruledomain.ErrInvalidFareClass
	}

	query := fareruledomain.ApplicableQuery{FareClassID: fareClassID}
	if query.OriginID, err = parseOptionalID(&req.OriginID); err != nil {
		return nil, fareruledomain.ErrInvalidRoute
	}
	if query.DestinationID, err = parseOptionalID(&req.DestinationID); err != nil {
		return nil, fareruledomain.ErrInvalidRoute
	}
	if strings.TrimSpace(req.Date) != "" {
		if query.At, err = conditions.ParseInstant(req.Date, false); err != nil {
			return nil, fareruledomain.ErrInvalidValidity
		}
	}

	rules, err := s.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	resp := make([]fareruledomain.Response, 0, len(rules))
	for _, rule := range rules {
		resp = append(resp, *toResponse(rule))
	}
	return resp, nil
}

// Resolve returns the active rules applicable to the query, ordered by
// pipeline category then rule id. A zero At means now.
func (s *Service) Resolve(ctx context.Context, query fareruledomain.ApplicableQuery) ([]*fareruledomain.FareRule, error) {
	if query.At.IsZero() {
		query.At = s.clock.Now()
	}
	query.At = query.At.UTC()

	rules, err := s.repo.FindApplicable(ctx, s.db, query)
	if err != nil {
		return nil, err
	}

	fareruledomain.SortByCategory(rules)
	return rules, nil
}

func (s *Service) find(ctx context.Context, id string) (*fareruledomain.FareRule, error) {
	ruleID, err := parseID(id)
	if err != nil {
		return nil, fareruledomain.ErrInvalidID
	}

	rule, err := s.repo.FindByID(ctx, s.db, ruleID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, fareruledomain.ErrNotFound
	}
	return rule, nil
}

func (s *Service) ensureFareClass(ctx context.Context, id snowflake.ID) error {
	fc, err := s.fareClassRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if fc == nil {
		return fareruledomain.ErrFareClassNotFound
	}
	return nil
}

// canonicalConditions validates raw against the category's minimum shape and
// returns the re-encoded payload that gets stored.
func canonicalConditions(category conditions.Category, raw string) (string, error) {
	parsed, err := conditions.ParseAndValidate(category, raw)
	if err != nil {
		var invalid *conditions.ValidationError
		if errors.As(err, &invalid) {
			return "", err
		}
		return "", &conditions.ValidationError{Category: category, Reason: err.Error()}
	}
	return conditions.Encode(parsed)
}

func toResponse(r *fareruledomain.FareRule) *fareruledomain.Response {
	return &fareruledomain.Response{
		ID:              r.ID.String(),
		FareClassID:     r.FareClassID.String(),
		Name:            r.Name,
		Description:     r.Description,
		Category:        r.Category,
		OriginID:        idString(r.OriginID),
		DestinationID:   idString(r.DestinationID),
		ValidFrom:       r.ValidFrom,
		ValidUntil:      r.ValidUntil,
		PriceAdjustment: r.PriceAdjustment,
		PriceMultiplier: r.PriceMultiplier,
		Conditions:      r.Conditions,
		Active:          r.Active,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func normalizeMultiplier(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fareruledomain.DefaultMultiplier, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil || d.IsNegative() {
		return "", fareruledomain.ErrInvalidMultiplier
	}
	return d.StringFixed(3), nil
}

func parseValidUntil(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := conditions.ParseInstant(*value, true)
	if err != nil {
		return nil, fareruledomain.ErrInvalidValidity
	}
	return &t, nil
}

func parseOptionalID(value *string) (*snowflake.ID, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	id, err := parseID(*value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func idString(id *snowflake.ID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
