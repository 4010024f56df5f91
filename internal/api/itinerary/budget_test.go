package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocateBudget(t *testing.T) {
	t.Run("splits 1200 into 60/25/15", func(t *testing.T) {
		cost := AllocateBudget(1200)
		assert.Equal(t, 720.0, cost.HotelTotal)
		assert.Equal(t, 300.0, cost.ActivitiesTotal)
		assert.Equal(t, 180.0, cost.TransportTotal)
		assert.Equal(t, 1200.0, cost.Total)
	})

	t.Run("non-positive totals use the minimum floor", func(t *testing.T) {
		zero := AllocateBudget(0)
		floor := AllocateBudget(minimumBudget)
		assert.Equal(t, floor, zero)
		assert.Equal(t, 1000.0, zero.Total)
		assert.Equal(t, 600.0, zero.HotelTotal)

		negative := AllocateBudget(-50)
		assert.Equal(t, floor, negative)
	})

	t.Run("subtotals are rounded to cents", func(t *testing.T) {
		cost := AllocateBudget(999.99)
		assert.InDelta(t, 599.99, cost.HotelTotal, 0.001)
		assert.InDelta(t, 250.0, cost.ActivitiesTotal, 0.001)
		assert.InDelta(t, 150.0, cost.TransportTotal, 0.001)
		assert.Equal(t, 999.99, cost.Total)
	})

	t.Run("total echoes input, not the sum of parts", func(t *testing.T) {
		cost := AllocateBudget(1000.01)
		assert.Equal(t, 1000.01, cost.Total)
	})
}
