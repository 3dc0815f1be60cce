package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/skyfare/internal/clock"
	"github.com/smallbiznis/skyfare/internal/config"
	farecalcdomain "github.com/smallbiznis/skyfare/internal/farecalc/domain"
	fareclassdomain "github.com/smallbiznis/skyfare/internal/fareclass/domain"
	"github.com/smallbiznis/skyfare/internal/farerule/conditions"
	fareruledomain "github.com/smallbiznis/skyfare/internal/farerule/domain"
	flightdomain "github.com/smallbiznis/skyfare/internal/flight/domain"
	"github.com/smallbiznis/skyfare/internal/observability/logger"
	"github.com/smallbiznis/skyfare/internal/observability/metrics"
	"github.com/smallbiznis/skyfare/internal/observability/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	compareConcurrency = 4
	maxPassengerCount  = 500
)

var tracer = otel.Tracer("skyfare/farecalc")

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	Pricing       *config.PricingConfigHolder
	FlightRepo    flightdomain.Repository
	FareClassRepo fareclassdomain.Repository
	Rules         fareruledomain.Service
	FareMetrics   *metrics.FareMetrics `optional:"true"`
	Metrics       *metrics.Metrics     `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	clock         clock.Clock
	pricing       *config.PricingConfigHolder
	flightRepo    flightdomain.Repository
	fareClassRepo fareclassdomain.Repository
	rules         fareruledomain.Service
	fareMetrics   *metrics.FareMetrics
	metrics       *metrics.Metrics
}

func New(p Params) farecalcdomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("farecalc.service"),
		clock:         p.Clock,
		pricing:       p.Pricing,
		flightRepo:    p.FlightRepo,
		fareClassRepo: p.FareClassRepo,
		rules:         p.Rules,
		fareMetrics:   p.FareMetrics,
		metrics:       p.Metrics,
	}
}

func (s *Service) Calculate(ctx context.Context, req farecalcdomain.CalculateRequest) (resp *farecalcdomain.CalculateResponse, err error) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "farecalc.Calculate", trace.WithAttributes(
		attribute.String("flight_id", strings.TrimSpace(req.FlightID)),
		attribute.String("fare_class_id", strings.TrimSpace(req.FareClassID)),
		attribute.String("passenger_type", strings.TrimSpace(req.PassengerType)),
		attribute.Int("passenger_count", req.PassengerCount),
	))
	defer func() {
		s.finish(span, metrics.OperationCalculate, started, err)
	}()

	in, err := s.loadQuote(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err = s.price(ctx, in)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("fare_class_code", resp.FareClassCode),
		attribute.Int64("per_passenger", resp.PerPassenger),
		attribute.Int("rules_applied", len(resp.AppliedRules)),
	)
	s.metrics.RecordQuote(ctx, string(resp.CabinClass), resp.Currency, resp.PerPassenger)

	log := logger.WithFareClass(logger.WithContext(ctx, s.log), in.fareClass.ID.String(), resp.FareClassCode)
	logger.WithFlight(log, in.flight.ID.String(), in.flight.FlightNumber).Debug("fare quoted",
		zap.Int64("per_passenger", resp.PerPassenger),
		zap.Int64("total", resp.Total),
		zap.Int("rules_applied", len(resp.AppliedRules)),
	)
	return resp, nil
}

func (s *Service) ChangeFee(ctx context.Context, req farecalcdomain.ChangeFeeRequest) (resp *farecalcdomain.ChangeFeeResponse, err error) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "farecalc.ChangeFee", trace.WithAttributes(
		attribute.String("fare_class_id", strings.TrimSpace(req.FareClassID)),
	))
	defer func() {
		s.finish(span, metrics.OperationChangeFee, started, err)
	}()

	fareClassID, err := parseID(req.FareClassID)
	if err != nil {
		return nil, farecalcdomain.ErrInvalidFareClass
	}
	if strings.TrimSpace(req.BookingDate) == "" {
		return nil, farecalcdomain.ErrInvalidDates
	}
	bookedAt, err := conditions.ParseInstant(req.BookingDate, false)
	if err != nil {
		return nil, farecalcdomain.ErrInvalidDates
	}
	changedAt := s.clock.Now()
	if strings.TrimSpace(req.ChangeDate) != "" {
		if changedAt, err = conditions.ParseInstant(req.ChangeDate, false); err != nil {
			return nil, farecalcdomain.ErrInvalidDates
		}
	}

	fc, err := s.fareClassRepo.FindByID(ctx, s.db, fareClassID)
	if err != nil {
		return nil, err
	}
	if fc == nil {
		return nil, farecalcdomain.ErrFareClassNotFound
	}

	resp = &farecalcdomain.ChangeFeeResponse{
		FareClassID:  fc.ID.String(),
		Currency:     s.pricing.Get().Currency,
		AppliedRules: []farecalcdomain.AppliedRule{},
	}
	if !fc.Changeable {
		return resp, nil
	}

	resp.Changeable = true
	resp.BaseFee = fc.ChangeFeeAmount()
	resp.HoursSinceBooking = conditions.WholeHours(bookedAt, changedAt)

	rules, err := s.rules.Resolve(ctx, fareruledomain.ApplicableQuery{
		FareClassID: fc.ID,
		At:          changedAt,
		Categories:  []conditions.Category{conditions.CategoryPenalties},
	})
	if err != nil {
		return nil, err
	}

	for _, rule := range rules {
		parsed, ok := s.parseRule(ctx, rule)
		if !ok {
			continue
		}
		penalty, ok := parsed.(*conditions.Penalties)
		if !ok || penalty.PenaltyType != conditions.PenaltyChange {
			continue
		}

		var fee int64
		if tier, ok := penalty.TierFee(resp.HoursSinceBooking); ok {
			fee += tier.Fee
		}
		if penalty.FlatFee != nil {
			fee += *penalty.FlatFee
		}
		if adj := rule.Adjustment(); adj > 0 {
			fee += adj
		}

		resp.AdditionalFees += fee
		resp.AppliedRules = append(resp.AppliedRules, farecalcdomain.AppliedRule{
			RuleID:     rule.ID.String(),
			RuleName:   rule.Name,
			Category:   rule.Category,
			PriceDelta: fee,
			Multiplier: formatMultiplier(one),
		})
	}

	resp.TotalFee = resp.BaseFee + resp.AdditionalFees
	return resp, nil
}

// Compare prices every active fare class of the flight's airline for one
// adult. Classes the pipeline rejects are left out; the rest are ranked by total.
func (s *Service) Compare(ctx context.Context, flightID string) (resp *farecalcdomain.CompareResponse, err error) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "farecalc.Compare", trace.WithAttributes(
		attribute.String("flight_id", strings.TrimSpace(flightID)),
	))
	defer func() {
		s.finish(span, metrics.OperationCompare, started, err)
	}()

	id, err := parseID(flightID)
	if err != nil {
		return nil, farecalcdomain.ErrInvalidFlight
	}
	flight, err := s.flightRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if flight == nil {
		return nil, farecalcdomain.ErrFlightNotFound
	}

	active := true
	classes, err := s.fareClassRepo.List(ctx, s.db, fareclassdomain.ListFilter{
		AirlineID: &flight.AirlineID,
		Active:    &active,
	})
	if err != nil {
		return nil, err
	}
	fareclassdomain.SortForDisplay(classes)

	seats := make(map[string]int, len(classes))
	for _, item := range fareclassdomain.NestedAvailability(flight, classes) {
		seats[item.FareClassID] = item.SeatsAvailable
	}

	now := s.clock.Now()
	quotes := make([]*farecalcdomain.CalculateResponse, len(classes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(compareConcurrency)
	for i, fc := range classes {
		g.Go(func() error {
			quote, err := s.price(gctx, quoteInput{
				flight:         flight,
				fareClass:      fc,
				originID:       &flight.OriginID,
				destinationID:  &flight.DestinationID,
				departure:      flight.DepartureTime.UTC(),
				passengerType:  farecalcdomain.PassengerAdult,
				passengerCount: 1,
				now:            now,
			})
			if err != nil {
				s.excluded(gctx, fc, err)
				return nil
			}
			quotes[i] = quote
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp = &farecalcdomain.CompareResponse{
		FlightID:      flight.ID.String(),
		FlightNumber:  flight.FlightNumber,
		DepartureTime: flight.DepartureTime,
		Currency:      s.pricing.Get().Currency,
		Fares:         make([]farecalcdomain.FareOption, 0, len(classes)),
	}
	for i, fc := range classes {
		quote := quotes[i]
		if quote == nil {
			continue
		}
		resp.Fares = append(resp.Fares, farecalcdomain.FareOption{
			FareClassID:    fc.ID.String(),
			Code:           fc.Code,
			Name:           fc.Name,
			CabinClass:     fc.CabinClass,
			Refundable:     fc.Refundable,
			Changeable:     fc.Changeable,
			SeatsAvailable: seats[fc.ID.String()],
			Total:          quote.Total,
			Quote:          quote,
		})
	}
	sort.SliceStable(resp.Fares, func(i, j int) bool {
		return resp.Fares[i].Total < resp.Fares[j].Total
	})

	span.SetAttributes(attribute.Int("fares_offered", len(resp.Fares)))
	return resp, nil
}

func (s *Service) excluded(ctx context.Context, fc *fareclassdomain.FareClass, err error) {
	reason := metrics.OutcomeError
	var ineligible *farecalcdomain.IneligibleError
	if errors.As(err, &ineligible) {
		reason = string(ineligible.Category)
	}
	s.fareMetrics.IncComparisonExcluded(reason)

	log := logger.WithFareClass(logger.WithContext(ctx, s.log), fc.ID.String(), fc.Code)
	if ineligible != nil {
		log.Debug("fare class excluded from comparison", zap.String("reason", ineligible.Reason))
		return
	}
	log.Warn("fare class excluded from comparison", zap.Error(err))
}

// loadQuote resolves the flight and fare class of a calculation and fills in
// route and departure defaults from the flight.
func (s *Service) loadQuote(ctx context.Context, req farecalcdomain.CalculateRequest) (quoteInput, error) {
	flightID, err := parseID(req.FlightID)
	if err != nil {
		return quoteInput{}, farecalcdomain.ErrInvalidFlight
	}
	fareClassID, err := parseID(req.FareClassID)
	if err != nil {
		return quoteInput{}, farecalcdomain.ErrInvalidFareClass
	}
	passengerType, ok := farecalcdomain.ParsePassengerType(req.PassengerType)
	if !ok {
		return quoteInput{}, farecalcdomain.ErrInvalidPassengerType
	}
	count := req.PassengerCount
	if count == 0 {
		count = 1
	}
	if count < 1 || count > maxPassengerCount {
		return quoteInput{}, farecalcdomain.ErrInvalidPassengerCount
	}

	flight, err := s.flightRepo.FindByID(ctx, s.db, flightID)
	if err != nil {
		return quoteInput{}, err
	}
	if flight == nil {
		return quoteInput{}, farecalcdomain.ErrFlightNotFound
	}
	fc, err := s.fareClassRepo.FindByID(ctx, s.db, fareClassID)
	if err != nil {
		return quoteInput{}, err
	}
	if fc == nil || !fc.Active {
		return quoteInput{}, farecalcdomain.ErrFareClassNotFound
	}
	if fc.AirlineID != flight.AirlineID {
		return quoteInput{}, farecalcdomain.ErrFareClassNotOffered
	}

	in := quoteInput{
		flight:         flight,
		fareClass:      fc,
		passengerType:  passengerType,
		passengerCount: count,
		now:            s.clock.Now(),
	}
	if in.originID, err = routeEndpoint(req.OriginID, flight.OriginID); err != nil {
		return quoteInput{}, err
	}
	if in.destinationID, err = routeEndpoint(req.DestinationID, flight.DestinationID); err != nil {
		return quoteInput{}, err
	}
	if in.departure, in.returnDate, err = parseTravelDates(req.DepartureDate, req.ReturnDate, flight.DepartureTime); err != nil {
		return quoteInput{}, err
	}
	return in, nil
}

// parseRule decodes a rule's stored conditions and price multiplier. Rules
// that fail are logged and counted, and the caller skips them.
func (s *Service) parseRule(ctx context.Context, rule *fareruledomain.FareRule) (conditions.Conditions, bool) {
	parsed, err := rule.ParseConditions()
	if err == nil {
		_, err = rule.Multiplier()
	}
	if err != nil {
		s.parseFailed(ctx, rule, err)
		return nil, false
	}
	return parsed, true
}

func (s *Service) parseFailed(ctx context.Context, rule *fareruledomain.FareRule, err error) {
	s.fareMetrics.IncMalformedRule(string(rule.Category))
	logger.WithContext(ctx, s.log).Warn("skipping fare rule with malformed conditions",
		zap.String("rule_id", rule.ID.String()),
		zap.String("category", string(rule.Category)),
		zap.Error(err),
	)
}

func (s *Service) finish(span trace.Span, operation string, started time.Time, err error) {
	outcome := outcomeOf(err)
	s.fareMetrics.ObserveOperation(operation, outcome, time.Since(started))

	var ineligible *farecalcdomain.IneligibleError
	if errors.As(err, &ineligible) {
		s.fareMetrics.IncIneligible(string(ineligible.Category))
		span.SetAttributes(
			attribute.String("ineligible.category", string(ineligible.Category)),
			attribute.String("ineligible.rule_id", ineligible.RuleID),
		)
	}
	span.SetAttributes(attribute.String("outcome", outcome))
	if err != nil && outcome == metrics.OutcomeError {
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, outcome)
	}
	span.End()
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomePriced
	case errors.Is(err, farecalcdomain.ErrIneligible):
		return metrics.OutcomeIneligible
	case errors.Is(err, farecalcdomain.ErrFlightNotFound),
		errors.Is(err, farecalcdomain.ErrFareClassNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, farecalcdomain.ErrInvalidFlight),
		errors.Is(err, farecalcdomain.ErrInvalidFareClass),
		errors.Is(err, farecalcdomain.ErrInvalidRoute),
		errors.Is(err, farecalcdomain.ErrInvalidPassengerType),
		errors.Is(err, farecalcdomain.ErrInvalidPassengerCount),
		errors.Is(err, farecalcdomain.ErrInvalidDates),
		errors.Is(err, farecalcdomain.ErrFareClassNotOffered):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}

func routeEndpoint(value string, fallback snowflake.ID) (*snowflake.ID, error) {
	if strings.TrimSpace(value) == "" {
		id := fallback
		return &id, nil
	}
	id, err := parseID(value)
	if err != nil {
		return nil, farecalcdomain.ErrInvalidRoute
	}
	return &id, nil
}

func parseTravelDates(departure, ret string, fallback time.Time) (time.Time, *time.Time, error) {
	dep := fallback.UTC()
	if strings.TrimSpace(departure) != "" {
		parsed, err := conditions.ParseInstant(departure, false)
		if err != nil {
			return time.Time{}, nil, farecalcdomain.ErrInvalidDates
		}
		dep = parsed
	}
	if strings.TrimSpace(ret) == "" {
		return dep, nil, nil
	}
	parsed, err := conditions.ParseInstant(ret, false)
	if err != nil {
		return time.Time{}, nil, farecalcdomain.ErrInvalidDates
	}
	return dep, &parsed, nil
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
