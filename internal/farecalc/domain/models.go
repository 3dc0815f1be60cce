package domain

import (
	"strings"

	"github.com/smallbiznis/skyfare/internal/farerule/conditions"
)

type PassengerType string

const (
	PassengerAdult  PassengerType = "adult"
	PassengerChild  PassengerType = "child"
	PassengerInfant PassengerType = "infant"
)

// ParsePassengerType defaults a blank value to adult.
func ParsePassengerType(value string) (PassengerType, bool) {
	switch PassengerType(strings.ToLower(strings.TrimSpace(value))) {
	case "", PassengerAdult:
		return PassengerAdult, true
	case PassengerChild:
		return PassengerChild, true
	case PassengerInfant:
		return PassengerInfant, true
	default:
		return "", false
	}
}

// AppliedRule explains one rule's contribution to a quote.
// PriceDelta is the change the rule made to the fare or to surcharges.
type AppliedRule struct {
	RuleID      string              `json:"rule_id"`
	RuleName    string              `json:"rule_name"`
	Category    conditions.Category `json:"category"`
	PriceDelta  int64               `json:"price_delta"`
	Multiplier  string              `json:"multiplier"`
	Description string              `json:"description,omitempty"`
}

// Violation is one booking constraint the itinerary does not meet.
type Violation struct {
	RuleID   string              `json:"rule_id"`
	RuleName string              `json:"rule_name"`
	Category conditions.Category `json:"category"`
	Message  string              `json:"message"`
}
