package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	flightdomain "github.com/smallbiznis/skyfare/internal/flight/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo flightdomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo flightdomain.Repository
}

func New(p Params) flightdomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("flight.service"),
		repo: p.Repo,
	}
}

func (s *Service) Get(ctx context.Context, id string) (*flightdomain.Response, error) {
	flightID, err := parseID(id)
	if err != nil {
		return nil, flightdomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, flightID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, flightdomain.ErrNotFound
	}

	return toResponse(entity), nil
}

func (s *Service) ListByAirline(ctx context.Context, airlineID string) ([]flightdomain.Response, error) {
	id, err := parseID(airlineID)
	if err != nil {
		return nil, flightdomain.ErrInvalidAirline
	}

	items, err := s.repo.ListByAirline(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	resp := make([]flightdomain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, *toResponse(item))
	}
	return resp, nil
}

func toResponse(f *flightdomain.Flight) *flightdomain.Response {
	return &flightdomain.Response{
		ID:                f.ID.String(),
		AirlineID:         f.AirlineID.String(),
		FlightNumber:      f.FlightNumber,
		OriginID:          f.OriginID.String(),
		DestinationID:     f.DestinationID.String(),
		DepartureTime:     f.DepartureTime,
		ArrivalTime:       f.ArrivalTime,
		EconomyPrice:      f.EconomyPrice,
		BusinessPrice:     f.BusinessPrice,
		EconomyAvailable:  f.EconomyAvailable,
		BusinessAvailable: f.BusinessAvailable,
		Status:            f.Status,
	}
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
