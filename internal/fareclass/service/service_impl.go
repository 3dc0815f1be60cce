package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/skyfare/internal/clock"
	fareclassdomain "github.com/smallbiznis/skyfare/internal/fareclass/domain"
	flightdomain "github.com/smallbiznis/skyfare/internal/flight/domain"
	"github.com/smallbiznis/skyfare/internal/observability/logger"
	"github.com/smallbiznis/skyfare/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxNameLength = 100

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       fareclassdomain.Repository
	FlightRepo flightdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       fareclassdomain.Repository
	flightRepo flightdomain.Repository
}

func New(p Params) fareclassdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("fareclass.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		flightRepo: p.FlightRepo,
	}
}

func (s *Service) Create(ctx context.Context, req fareclassdomain.CreateRequest) (*fareclassdomain.Response, error) {
	airlineID, err := parseID(req.AirlineID)
	if err != nil {
		return nil, fareclassdomain.ErrInvalidAirline
	}

	code, err := normalizeCode(req.Code)
	if err != nil {
		return nil, err
	}

	cabin, ok := fareclassdomain.ParseCabinClass(req.CabinClass)
	if !ok {
		return nil, fareclassdomain.ErrInvalidCabin
	}

	multiplier, err := normalizeMultiplier(req.BasePriceMultiplier)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = code
	}
	if len(name) > maxNameLength {
		return nil, fareclassdomain.ErrInvalidName
	}

	if err := validateSeats(req.SeatsAllocated); err != nil {
		return nil, err
	}
	if req.ChangeFee != nil && *req.ChangeFee < 0 {
		return nil, fareclassdomain.ErrInvalidChangeFee
	}

	existing, err := s.repo.FindByCode(ctx, s.db, airlineID, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fareclassdomain.ErrConflict
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now().UTC()
	entity := &fareclassdomain.FareClass{
		ID:                  s.genID.Generate(),
		AirlineID:           airlineID,
		Code:                code,
		Name:                name,
		CabinClass:          cabin,
		BasePriceMultiplier: multiplier,
		Priority:            req.Priority,
		SeatsAllocated:      req.SeatsAllocated,
		Refundable:          req.Refundable,
		Changeable:          req.Changeable,
		ChangeFee:           req.ChangeFee,
		Upgradeable:         req.Upgradeable,
		BaggageAllowance:    strings.TrimSpace(req.BaggageAllowance),
		SeatSelection:       req.SeatSelection,
		LoungeAccess:        req.LoungeAccess,
		PriorityBoarding:    req.PriorityBoarding,
		MealIncluded:        req.MealIncluded,
		MileageRate:         req.MileageRate,
		Metadata:            datatypes.JSONMap(req.Metadata),
		Active:              active,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, fareclassdomain.ErrConflict
		}
		return nil, err
	}

	logger.WithFareClass(s.log, entity.ID.String(), entity.Code).Info("fare class created",
		zap.String("airline_id", airlineID.String()),
		zap.String("cabin_class", string(cabin)),
	)

	return toResponse(entity), nil
}

func (s *Service) Update(ctx context.Context, req fareclassdomain.UpdateRequest) (*fareclassdomain.Response, error) {
	fareClassID, err := parseID(req.ID)
	if err != nil {
		return nil, fareclassdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, fareClassID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fareclassdomain.ErrNotFound
	}

	if req.Code != nil {
		code, err := normalizeCode(*req.Code)
		if err != nil {
			return nil, err
		}
		if code != item.Code {
			existing, err := s.repo.FindByCode(ctx, s.db, item.AirlineID, code)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != item.ID {
				return nil, fareclassdomain.ErrConflict
			}
			item.Code = code
		}
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > maxNameLength {
			return nil, fareclassdomain.ErrInvalidName
		}
		item.Name = name
	}
	if req.CabinClass != nil {
		cabin, ok := fareclassdomain.ParseCabinClass(*req.CabinClass)
		if !ok {
			return nil, fareclassdomain.ErrInvalidCabin
		}
		item.CabinClass = cabin
	}
	if req.BasePriceMultiplier != nil {
		multiplier, err := normalizeMultiplier(*req.BasePriceMultiplier)
		if err != nil {
			return nil, err
		}
		item.BasePriceMultiplier = multiplier
	}
	if req.Priority != nil {
		item.Priority = *req.Priority
	}
	if req.ClearSeats {
		item.SeatsAllocated = nil
	} else if req.SeatsAllocated != nil {
		if err := validateSeats(req.SeatsAllocated); err != nil {
			return nil, err
		}
		seats := *req.SeatsAllocated
		item.SeatsAllocated = &seats
	}
	if req.Refundable != nil {
		item.Refundable = *req.Refundable
	}
	if req.Changeable != nil {
		item.Changeable = *req.Changeable
	}
	if req.ChangeFee != nil {
		if *req.ChangeFee < 0 {
			return nil, fareclassdomain.ErrInvalidChangeFee
		}
		fee := *req.ChangeFee
		item.ChangeFee = &fee
	}
	if req.Upgradeable != nil {
		item.Upgradeable = *req.Upgradeable
	}
	if req.BaggageAllowance != nil {
		item.BaggageAllowance = strings.TrimSpace(*req.BaggageAllowance)
	}
	if req.SeatSelection != nil {
		item.SeatSelection = *req.SeatSelection
	}
	if req.LoungeAccess != nil {
		item.LoungeAccess = *req.LoungeAccess
	}
	if req.PriorityBoarding != nil {
		item.PriorityBoarding = *req.PriorityBoarding
	}
	if req.MealIncluded != nil {
		item.MealIncluded = *req.MealIncluded
	}
	if req.MileageRate != nil {
		item.MileageRate = *req.MileageRate
	}
	if req.Metadata != nil {
		item.Metadata = datatypes.JSONMap(req.Metadata)
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, fareclassdomain.ErrConflict
		}
		return nil, err
	}

	return toResponse(item), nil
}

func (s *Service) Get(ctx context.Context, id string) (*fareclassdomain.Response, error) {
	fareClassID, err := parseID(id)
	if err != nil {
		return nil, fareclassdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, fareClassID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fareclassdomain.ErrNotFound
	}

	return toResponse(item), nil
}

func (s *Service) List(ctx context.Context, req fareclassdomain.ListRequest) ([]fareclassdomain.Response, error) {
	filter := fareclassdomain.ListFilter{Active: req.Active}

	if strings.TrimSpace(req.AirlineID) != "" {
		airlineID, err := parseID(req.AirlineID)
		if err != nil {
			return nil, fareclassdomain.ErrInvalidAirline
		}
		filter.AirlineID = &airlineID
	}
	if strings.TrimSpace(req.CabinClass) != "" {
		cabin, ok := fareclassdomain.ParseCabinClass(req.CabinClass)
		if !ok {
			return nil, fareclassdomain.ErrInvalidCabin
		}
		filter.CabinClass = &cabin
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]fareclassdomain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, *toResponse(item))
	}
	return resp, nil
}

func (s *Service) NestedAvailability(ctx context.Context, flightID string) (*fareclassdomain.AvailabilityResponse, error) {
	id, err := parseID(flightID)
	if err != nil {
		return nil, fareclassdomain.ErrInvalidFlight
	}

	flight, err := s.flightRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if flight == nil {
		return nil, fareclassdomain.ErrFlightNotFound
	}

	active := true
	classes, err := s.repo.List(ctx, s.db, fareclassdomain.ListFilter{
		AirlineID: &flight.AirlineID,
		Active:    &active,
	})
	if err != nil {
		return nil, err
	}

	return &fareclassdomain.AvailabilityResponse{
		FlightID:          flight.ID.String(),
		FlightNumber:      flight.FlightNumber,
		EconomyAvailable:  flight.EconomyAvailable,
		BusinessAvailable: flight.BusinessAvailable,
		FareClasses:       fareclassdomain.NestedAvailability(flight, classes),
	}, nil
}

func toResponse(fc *fareclassdomain.FareClass) *fareclassdomain.Response {
	resp := &fareclassdomain.Response{
		ID:                  fc.ID.String(),
		AirlineID:           fc.AirlineID.String(),
		Code:                fc.Code,
		Name:                fc.Name,
		CabinClass:          fc.CabinClass,
		BasePriceMultiplier: fc.BasePriceMultiplier,
		Priority:            fc.Priority,
		SeatsAllocated:      fc.SeatsAllocated,
		Refundable:          fc.Refundable,
		Changeable:          fc.Changeable,
		ChangeFee:           fc.ChangeFeeAmount(),
		Upgradeable:         fc.Upgradeable,
		BaggageAllowance:    fc.BaggageAllowance,
		SeatSelection:       fc.SeatSelection,
		LoungeAccess:        fc.LoungeAccess,
		PriorityBoarding:    fc.PriorityBoarding,
		MealIncluded:        fc.MealIncluded,
		MileageRate:         fc.MileageRate,
		Active:              fc.Active,
		CreatedAt:           fc.CreatedAt,
		UpdatedAt:           fc.UpdatedAt,
	}
	if len(fc.Metadata) > 0 {
		resp.Metadata = map[string]any(fc.Metadata)
	}
	return resp
}

func normalizeCode(value string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(value))
	if len(code) < 1 || len(code) > 2 {
		return "", fareclassdomain.ErrInvalidCode
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", fareclassdomain.ErrInvalidCode
		}
	}
	return code, nil
}

func normalizeMultiplier(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fareclassdomain.DefaultMultiplier, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil || !d.IsPositive() {
		return "", fareclassdomain.ErrInvalidMultiplier
	}
	return d.StringFixed(3), nil
}

func validateSeats(seats *int) error {
	if seats != nil && *seats < 0 {
		return fareclassdomain.ErrInvalidSeats
	}
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
