package conditions

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformed marks stored conditions text that cannot be decoded for its category.
	ErrMalformed = errors.New("malformed_conditions")
	// ErrInvalid marks conditions that decode but miss a field the category needs.
	ErrInvalid = errors.New("invalid_conditions")
)

// MalformedError carries the decode failure for a category.
type MalformedError struct {
	Category Category
	Err      error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s conditions: %v", e.Category, e.Err)
}

func (e *MalformedError) Unwrap() []error {
	return []error{ErrMalformed, e.Err}
}

// ValidationError names the field that failed a category's minimum shape.
type ValidationError struct {
	Category Category
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s conditions: %s", e.Category, e.Reason)
	}
	return fmt.Sprintf("%s conditions: %s %s", e.Category, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// New returns an empty conditions value for category.
func New(category Category) (Conditions, error) {
	switch category {
	case CategoryEligibility:
		return &Eligibility{}, nil
	case CategoryFlightApplication:
		return &FlightApplication{}, nil
	case CategoryDayTime:
		return &DayTime{}, nil
	case CategoryAdvancePurchase:
		return &AdvancePurchase{}, nil
	case CategorySeasonality:
		return &Seasonality{}, nil
	case CategoryBlackoutDates:
		return &BlackoutDates{}, nil
	case CategoryMinimumStay:
		return &MinimumStay{}, nil
	case CategoryMaximumStay:
		return &MaximumStay{}, nil
	case CategoryStopovers:
		return &Stopovers{}, nil
	case CategoryTransfers:
		return &Transfers{}, nil
	case CategoryCombinations:
		return &Combinations{}, nil
	case CategorySurcharges:
		return &Surcharges{}, nil
	case CategoryPenalties:
		return &Penalties{}, nil
	case CategoryChildrenDiscount:
		return &ChildrenDiscount{}, nil
	case CategoryGroupDiscount:
		return &GroupDiscount{}, nil
	default:
		return nil, ErrInvalidCategory
	}
}

// Parse decodes serialized conditions into the typed value for category.
// Blank text decodes as an empty object. The result is always a pointer type.
func Parse(category Category, raw string) (Conditions, error) {
	target, err := New(category)
	if err != nil {
		return nil, err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return target, nil
	}
	if !strings.HasPrefix(raw, "{") {
		return nil, &MalformedError{Category: category, Err: errors.New("conditions must be a JSON object")}
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return nil, &MalformedError{Category: category, Err: err}
	}
	return target, nil
}

// ParseAndValidate is used when a rule is authored: decode failures surface as validation errors.
func ParseAndValidate(category Category, raw string) (Conditions, error) {
	parsed, err := Parse(category, raw)
	if err != nil {
		var malformed *MalformedError
		if errors.As(err, &malformed) {
			return nil, &ValidationError{Category: category, Reason: malformed.Err.Error()}
		}
		return nil, err
	}
	if err := Validate(parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

// Encode serializes conditions in their canonical form.
func Encode(c Conditions) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
