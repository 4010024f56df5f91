package itinerary

import (
	"math"

	"github.com/BHUWON12/ztraveler/internal/types"
)

// minimumBudget replaces non-positive totals so the planner always has
// something to allocate.
const minimumBudget = 1000.0

// Allocation proportions for the three planned spending categories.
const (
	lodgingShare    = 0.60
	activitiesShare = 0.25
	transportShare  = 0.15
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AllocateBudget splits the total budget into category sub-budgets.
// The Total field echoes the (possibly floored) input rather than the
// sum of the parts; rounding may leave a sub-cent discrepancy.
func AllocateBudget(total float64) types.TripCost {
	if total <= 0 {
		total = minimumBudget
	}
	return types.TripCost{
		HotelTotal:      round2(total * lodgingShare),
		ActivitiesTotal: round2(total * activitiesShare),
		TransportTotal:  round2(total * transportShare),
		Total:           round2(total),
	}
}
