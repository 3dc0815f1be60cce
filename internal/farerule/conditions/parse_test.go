package conditions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEveryCategoryAcceptsEmptyText(t *testing.T) {
	for _, c := range CategoryOrder {
		parsed, err := Parse(c, "")
		require.NoError(t, err, c)
		assert.Equal(t, c, parsed.Category())
	}
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"truncated":    `{"minDaysBeforeDeparture": 7`,
		"array":        `[1,2]`,
		"wrong type":   `{"minDaysBeforeDeparture": "seven"}`,
		"plain string": `"hello"`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(CategoryAdvancePurchase, raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestParseDecimalAcceptsNumberOrString(t *testing.T) {
	parsed, err := Parse(CategoryChildrenDiscount, `{"discountPercentage": 25, "passengerType": "child"}`)
	require.NoError(t, err)
	assert.Equal(t, "25", parsed.(*ChildrenDiscount).DiscountPercentage.String())

	parsed, err = Parse(CategorySeasonality, `{"season":"high","startDate":"2026-06-01","endDate":"2026-08-31","multiplier":"1.250"}`)
	require.NoError(t, err)
	assert.Equal(t, "1.25", parsed.(*Seasonality).Multiplier.String())
}

func TestParseAndValidateTurnsMalformedIntoValidationError(t *testing.T) {
	_, err := ParseAndValidate(CategoryGroupDiscount, `{"minPassengers": "ten"}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.NotErrorIs(t, err, ErrMalformed)
}

func TestParseUnknownCategory(t *testing.T) {
	_, err := Parse(Category("loyalty"), `{}`)
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestEncodeRoundTripKeepsLegacyPeriods(t *testing.T) {
	parsed, err := Parse(CategoryBlackoutDates, `{"periods":[{"from":"2026-06-01","to":"2026-06-10"}]}`)
	require.NoError(t, err)

	encoded, err := Encode(parsed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"periods":[{"from":"2026-06-01","to":"2026-06-10"}]}`, encoded)
}
