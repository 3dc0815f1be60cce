package domain

import (
	"sort"

	"github.com/bwmarrin/snowflake"
	flightdomain "github.com/smallbiznis/skyfare/internal/flight/domain"
)

// SeatAvailability is the bookable seat count of one fare class on one flight.
type SeatAvailability struct {
	FareClassID    string                `json:"fare_class_id"`
	Code           string                `json:"code"`
	CabinClass     CabinClass            `json:"cabin_class"`
	SeatPool       flightdomain.SeatPool `json:"seat_pool"`
	Priority       int                   `json:"priority"`
	SeatsAllocated *int                  `json:"seats_allocated,omitempty"`
	SeatsAvailable int                   `json:"seats_available"`
}

// SortForDisplay orders classes by cabin, then priority descending, then id.
func SortForDisplay(classes []*FareClass) {
	sort.SliceStable(classes, func(i, j int) bool {
		a, b := classes[i], classes[j]
		if a.CabinClass.Rank() != b.CabinClass.Rank() {
			return a.CabinClass.Rank() < b.CabinClass.Rank()
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.ID < b.ID
	})
}

// NestedAvailability cascades each compartment's unsold seats down the
// active fare classes sharing it, highest priority first. Every class but the
// last gets min(allocated, remaining); the last absorbs what is left.
// A class without an allocation claims nothing before the sink.
func NestedAvailability(flight *flightdomain.Flight, classes []*FareClass) []SeatAvailability {
	groups := make(map[flightdomain.SeatPool][]*FareClass)
	for _, fc := range classes {
		if fc == nil || !fc.Active {
			continue
		}
		pool := fc.CabinClass.SeatPool()
		groups[pool] = append(groups[pool], fc)
	}

	available := make(map[snowflake.ID]int, len(classes))
	for pool, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Priority != group[j].Priority {
				return group[i].Priority > group[j].Priority
			}
			if group[i].CabinClass.Rank() != group[j].CabinClass.Rank() {
				return group[i].CabinClass.Rank() < group[j].CabinClass.Rank()
			}
			return group[i].ID < group[j].ID
		})

		remaining := max(flight.AvailableFor(pool), 0)
		for i, fc := range group {
			if i == len(group)-1 {
				available[fc.ID] = remaining
				break
			}
			allocated := 0
			if fc.SeatsAllocated != nil {
				allocated = max(*fc.SeatsAllocated, 0)
			}
			available[fc.ID] = min(allocated, remaining)
			remaining = max(remaining-allocated, 0)
		}
	}

	ordered := make([]*FareClass, 0, len(available))
	for _, group := range groups {
		ordered = append(ordered, group...)
	}
	SortForDisplay(ordered)

	out := make([]SeatAvailability, 0, len(ordered))
	for _, fc := range ordered {
		out = append(out, SeatAvailability{
			FareClassID:    fc.ID.String(),
			Code:           fc.Code,
			CabinClass:     fc.CabinClass,
			SeatPool:       fc.CabinClass.SeatPool(),
			Priority:       fc.Priority,
			SeatsAllocated: fc.SeatsAllocated,
			SeatsAvailable: available[fc.ID],
		})
	}
	return out
}
