package service

import (
	"context"
	"strings"
	"time"

	farecalcdomain "github.com/smallbiznis/skyfare/internal/farecalc/domain"
	"github.com/smallbiznis/skyfare/internal/farerule/conditions"
	fareruledomain "github.com/smallbiznis/skyfare/internal/farerule/domain"
	flightdomain "github.com/smallbiznis/skyfare/internal/flight/domain"
	"github.com/smallbiznis/skyfare/internal/observability/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type bookingInput struct {
	flight         *flightdomain.Flight
	departure      time.Time
	returnDate     *time.Time
	passengerType  farecalcdomain.PassengerType
	passengerCount int
	corporateID    string
	now            time.Time
}

// ValidateBooking evaluates the user-facing booking constraints of a fare
// class and reports every violation rather than stopping at the first.
func (s *Service) ValidateBooking(ctx context.Context, req farecalcdomain.ValidateRequest) (resp *farecalcdomain.ValidateResponse, err error) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "farecalc.ValidateBooking", trace.WithAttributes(
		attribute.String("fare_class_id", strings.TrimSpace(req.FareClassID)),
	))
	defer func() {
		s.finish(span, metrics.OperationValidate, started, err)
	}()

	fareClassID, err := parseID(req.FareClassID)
	if err != nil {
		return nil, farecalcdomain.ErrInvalidFareClass
	}
	passengerType, ok := farecalcdomain.ParsePassengerType(req.PassengerType)
	if !ok {
		return nil, farecalcdomain.ErrInvalidPassengerType
	}
	count := req.PassengerCount
	if count == 0 {
		count = 1
	}
	if count < 1 || count > maxPassengerCount {
		return nil, farecalcdomain.ErrInvalidPassengerCount
	}

	fc, err := s.fareClassRepo.FindByID(ctx, s.db, fareClassID)
	if err != nil {
		return nil, err
	}
	if fc == nil || !fc.Active {
		return nil, farecalcdomain.ErrFareClassNotFound
	}

	in := bookingInput{
		passengerType:  passengerType,
		passengerCount: count,
		corporateID:    strings.TrimSpace(req.CorporateID),
		now:            s.clock.Now(),
	}
	query := fareruledomain.ApplicableQuery{FareClassID: fc.ID}

	var fallbackDeparture time.Time
	if strings.TrimSpace(req.FlightID) != "" {
		flightID, err := parseID(req.FlightID)
		if err != nil {
			return nil, farecalcdomain.ErrInvalidFlight
		}
		in.flight, err = s.flightRepo.FindByID(ctx, s.db, flightID)
		if err != nil {
			return nil, err
		}
		if in.flight == nil {
			return nil, farecalcdomain.ErrFlightNotFound
		}
		fallbackDeparture = in.flight.DepartureTime
		query.OriginID, query.DestinationID = &in.flight.OriginID, &in.flight.DestinationID
	} else if strings.TrimSpace(req.DepartureDate) == "" {
		return nil, farecalcdomain.ErrInvalidDates
	}

	if strings.TrimSpace(req.OriginID) != "" {
		if query.OriginID, err = routeEndpoint(req.OriginID, 0); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(req.DestinationID) != "" {
		if query.DestinationID, err = routeEndpoint(req.DestinationID, 0); err != nil {
			return nil, err
		}
	}
	if in.departure, in.returnDate, err = parseTravelDates(req.DepartureDate, req.ReturnDate, fallbackDeparture); err != nil {
		return nil, err
	}
	query.At = in.departure

	rules, err := s.rules.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	resp = &farecalcdomain.ValidateResponse{Violations: []farecalcdomain.Violation{}}
	for _, rule := range rules {
		parsed, ok := s.parseRule(ctx, rule)
		if !ok {
			continue
		}
		for _, message := range bookingViolations(parsed, in) {
			s.fareMetrics.IncViolation(string(rule.Category))
			resp.Violations = append(resp.Violations, farecalcdomain.Violation{
				RuleID:   rule.ID.String(),
				RuleName: rule.Name,
				Category: rule.Category,
				Message:  message,
			})
		}
	}
	resp.Valid = len(resp.Violations) == 0

	span.SetAttributes(attribute.Int("violations", len(resp.Violations)))
	return resp, nil
}

// bookingViolations uses the same predicates as the pricing pipeline so a
// booking the validator accepts is never rejected when priced.
func bookingViolations(parsed conditions.Conditions, in bookingInput) []string {
	var out []string

	switch c := parsed.(type) {
	case *conditions.Eligibility:
		if !c.AllowsPassengerType(string(in.passengerType)) {
			out = append(out, passengerTypeMessage(string(in.passengerType)))
		}
		if !c.AllowsCorporateID(in.corporateID) {
			if in.corporateID == "" {
				out = append(out, corporateRequiredMessage)
			} else {
				out = append(out, corporateMessage(in.corporateID))
			}
		}

	case *conditions.FlightApplication:
		if in.flight != nil && !c.AllowsFlight(in.flight.FlightNumber) {
			out = append(out, flightMessage(in.flight.FlightNumber))
		}

	case *conditions.DayTime:
		if !c.AllowsWeekday(in.departure) {
			out = append(out, weekdayMessage(in.departure.UTC().Weekday()))
		}

	case *conditions.AdvancePurchase:
		days := conditions.WholeDays(in.now, in.departure)
		if c.TooLate(days) {
			out = append(out, advancePurchaseMessage(c.MinDays(), days))
		}

	case *conditions.BlackoutDates:
		if period, blocked := c.Blocks(in.departure); blocked {
			out = append(out, blackoutMessage(period, c.Reason))
		}

	case *conditions.MinimumStay:
		if in.returnDate == nil {
			break
		}
		nights := conditions.StayNights(in.departure, *in.returnDate)
		if minNights, ok := c.Nights(); ok && nights < minNights {
			out = append(out, minimumStayMessage(minNights, nights))
		}
		if c.SaturdayNightRequired && !conditions.IncludesSaturdayNight(in.departure, *in.returnDate) {
			out = append(out, saturdayNightMessage)
		}

	case *conditions.MaximumStay:
		if in.returnDate == nil {
			break
		}
		nights := conditions.StayNights(in.departure, *in.returnDate)
		if maxNights, ok := c.Nights(); ok && nights > maxNights {
			out = append(out, maximumStayMessage(maxNights, nights))
		}

	case *conditions.GroupDiscount:
		if !c.Covers(in.passengerCount) {
			out = append(out, groupSizeMessage(c, in.passengerCount))
		}
	}

	return out
}
