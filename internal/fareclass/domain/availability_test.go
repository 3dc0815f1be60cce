package domain

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	flightdomain "github.com/smallbiznis/skyfare/internal/flight/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seats(n int) *int { return &n }

func newClass(node *snowflake.Node, code string, cabin CabinClass, priority int, allocated *int) *FareClass {
	return &FareClass{
		ID:             node.Generate(),
		Code:           code,
		CabinClass:     cabin,
		Priority:       priority,
		SeatsAllocated: allocated,
		Active:         true,
	}
}

func byCode(items []SeatAvailability) map[string]int {
	out := make(map[string]int, len(items))
	for _, item := range items {
		out[item.Code] = item.SeatsAvailable
	}
	return out
}

func TestNestedAvailability_Cascade(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	flight := &flightdomain.Flight{EconomyAvailable: 100, BusinessAvailable: 10}
	classes := []*FareClass{
		newClass(node, "Y", CabinEconomy, 100, seats(40)),
		newClass(node, "M", CabinEconomy, 50, seats(30)),
		newClass(node, "L", CabinEconomy, 10, seats(5)),
		newClass(node, "J", CabinBusiness, 10, seats(4)),
		newClass(node, "F", CabinFirst, 20, seats(2)),
	}

	got := byCode(NestedAvailability(flight, classes))
	assert.Equal(t, 40, got["Y"])
	assert.Equal(t, 30, got["M"])
	assert.Equal(t, 30, got["L"], "last class absorbs the remainder")
	assert.Equal(t, 2, got["F"])
	assert.Equal(t, 8, got["J"], "first shares the business compartment")
}

func TestNestedAvailability_NeverExceedsPool(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cases := []struct {
		name      string
		pool      int
		allocated []*int
	}{
		{name: "under allocated", pool: 50, allocated: []*int{seats(10), seats(10), seats(10)}},
		{name: "over allocated", pool: 20, allocated: []*int{seats(15), seats(15), seats(15)}},
		{name: "nil allocation", pool: 30, allocated: []*int{nil, seats(10), nil}},
		{name: "empty pool", pool: 0, allocated: []*int{seats(5), seats(5)}},
		{name: "negative pool", pool: -3, allocated: []*int{seats(5), seats(5)}},
		{name: "single class", pool: 7, allocated: []*int{seats(2)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			flight := &flightdomain.Flight{EconomyAvailable: tc.pool}
			classes := make([]*FareClass, 0, len(tc.allocated))
			for i, alloc := range tc.allocated {
				classes = append(classes, newClass(node, string(rune('A'+i)), CabinEconomy, 100-i, alloc))
			}

			result := NestedAvailability(flight, classes)
			require.Len(t, result, len(classes))

			sum := 0
			higherAllocated := 0
			for i, item := range result {
				assert.GreaterOrEqual(t, item.SeatsAvailable, 0)
				sum += item.SeatsAvailable
				if i < len(result)-1 && item.SeatsAllocated != nil {
					higherAllocated += *item.SeatsAllocated
				}
			}
			assert.LessOrEqual(t, sum, max(tc.pool, 0))

			last := result[len(result)-1]
			assert.Equal(t, max(max(tc.pool, 0)-higherAllocated, 0), last.SeatsAvailable)
		})
	}
}

func TestNestedAvailability_BookingsReduceMonotonically(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	classes := []*FareClass{
		newClass(node, "Y", CabinEconomy, 100, seats(6)),
		newClass(node, "B", CabinEconomy, 50, seats(3)),
		newClass(node, "Q", CabinEconomy, 1, seats(2)),
	}

	flight := &flightdomain.Flight{EconomyAvailable: 10}
	before := byCode(NestedAvailability(flight, classes))
	assert.Equal(t, 1, before["Q"])

	flight.EconomyAvailable = 9
	first := byCode(NestedAvailability(flight, classes))
	flight.EconomyAvailable = 8
	second := byCode(NestedAvailability(flight, classes))

	for code := range before {
		assert.LessOrEqual(t, first[code], before[code], code)
		assert.LessOrEqual(t, second[code], first[code], code)
	}
	assert.Equal(t, 0, first["Q"])
	assert.Equal(t, 0, second["Q"], "sink never goes negative")
	assert.Equal(t, 2, second["B"])
}

func TestNestedAvailability_SkipsInactiveAndOrders(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	inactive := newClass(node, "X", CabinEconomy, 999, seats(50))
	inactive.Active = false
	classes := []*FareClass{
		newClass(node, "Y", CabinEconomy, 10, seats(5)),
		inactive,
		newClass(node, "W", CabinPremiumEconomy, 5, seats(5)),
		newClass(node, "J", CabinBusiness, 1, nil),
	}

	result := NestedAvailability(&flightdomain.Flight{EconomyAvailable: 20, BusinessAvailable: 4}, classes)
	require.Len(t, result, 3)
	assert.Equal(t, "J", result[0].Code)
	assert.Equal(t, "W", result[1].Code)
	assert.Equal(t, "Y", result[2].Code)
	assert.Equal(t, 4, result[0].SeatsAvailable)
	assert.Equal(t, 15, result[1].SeatsAvailable, "premium economy shares the economy pool")
	assert.Equal(t, 5, result[2].SeatsAvailable)
}

func TestCabinClass(t *testing.T) {
	c, ok := ParseCabinClass(" Premium_Economy ")
	require.True(t, ok)
	assert.Equal(t, CabinPremiumEconomy, c)
	assert.Equal(t, flightdomain.PoolEconomy, c.SeatPool())
	assert.Equal(t, flightdomain.PoolBusiness, CabinFirst.SeatPool())

	_, ok = ParseCabinClass("coach")
	assert.False(t, ok)
	assert.Less(t, CabinFirst.Rank(), CabinEconomy.Rank())
}
