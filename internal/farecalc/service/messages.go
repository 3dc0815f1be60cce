package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/skyfare/internal/farerule/conditions"
)

const (
	saturdayNightMessage     = "A Saturday night stay is required"
	corporateRequiredMessage = "A corporate ID is required for this fare"
)

func advancePurchaseMessage(minDays, days int) string {
	return fmt.Sprintf("Must be booked at least %d days before departure (currently %d days)", minDays, days)
}

func minimumStayMessage(minNights, nights int) string {
	return fmt.Sprintf("Minimum stay is %d nights (currently %d nights)", minNights, nights)
}

func maximumStayMessage(maxNights, nights int) string {
	return fmt.Sprintf("Maximum stay is %d nights (currently %d nights)", maxNights, nights)
}

func blackoutMessage(period conditions.Period, reason string) string {
	start, end := period.Bounds()
	msg := fmt.Sprintf("Travel is not permitted between %s and %s", start, end)
	if reason = strings.TrimSpace(reason); reason != "" {
		msg += " (" + reason + ")"
	}
	return msg
}

func weekdayMessage(day time.Weekday) string {
	return fmt.Sprintf("Departures on %s are not permitted", day)
}

func passengerTypeMessage(passengerType string) string {
	return fmt.Sprintf("Fare is not available to %s passengers", passengerType)
}

func flightMessage(flightNumber string) string {
	return fmt.Sprintf("Fare does not apply to flight %s", flightNumber)
}

func corporateMessage(corporateID string) string {
	return fmt.Sprintf("Corporate ID %s is not eligible for this fare", corporateID)
}

func groupSizeMessage(g *conditions.GroupDiscount, count int) string {
	if g.MinPassengers != nil && count < *g.MinPassengers {
		return fmt.Sprintf("Group fare requires at least %d passengers (currently %d)", *g.MinPassengers, count)
	}
	return fmt.Sprintf("Group fare allows at most %d passengers (currently %d)", *g.MaxPassengers, count)
}
