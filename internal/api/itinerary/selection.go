package itinerary

import (
	"math/rand"
	"sort"

	"github.com/BHUWON12/ztraveler/internal/types"
)

// pickHotel selects the best-rated hotel whose full-stay cost fits the
// lodging budget, falling back to the cheapest candidate when nothing
// fits. Deterministic for a given candidate list.
func pickHotel(hotels []types.HotelRecord, nights int, lodgingBudget float64) *types.Hotel {
	if len(hotels) == 0 {
		return nil
	}

	sorted := make([]types.HotelRecord, len(hotels))
	copy(sorted, hotels)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Rating != sorted[j].Rating {
			return sorted[i].Rating > sorted[j].Rating
		}
		return sorted[i].Price < sorted[j].Price
	})

	for _, h := range sorted {
		if h.Price*float64(nights) <= lodgingBudget {
			return hotelFromRecord(h)
		}
	}

	cheapest := sorted[0]
	for _, h := range sorted[1:] {
		if h.Price < cheapest.Price {
			cheapest = h
		}
	}
	return hotelFromRecord(cheapest)
}

func hotelFromRecord(h types.HotelRecord) *types.Hotel {
	return &types.Hotel{
		ID:            h.ID,
		Name:          h.Name,
		City:          h.City,
		PricePerNight: h.Price,
		Rating:        h.Rating,
		Source:        h.Source,
	}
}

// pickActivities chooses up to slots activities for one day from the
// pooled attraction and event candidates. The pool is shuffled with the
// day number as seed so each day gets a different but reproducible
// ordering, then scanned greedily: no id reused across the whole trip,
// at most one activity per category per day, and the cumulative fee
// stays within the per-day cap. A pool without category variety inside
// the cap can legitimately starve a day down to zero picks.
func pickActivities(pool []types.ActivityRecord, dailyCap float64, dayNumber int, used map[string]struct{}, slots int) []types.Activity {
	if len(pool) == 0 {
		return nil
	}
	if slots <= 0 {
		slots = 3
	}

	shuffled := make([]types.ActivityRecord, len(pool))
	copy(shuffled, pool)
	rng := rand.New(rand.NewSource(int64(dayNumber)))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	var picked []types.Activity
	total := 0.0
	categories := make(map[string]struct{})

	for _, a := range shuffled {
		if a.ID == "" {
			continue
		}
		if _, ok := used[a.ID]; ok {
			continue
		}
		category := a.Category
		if category == "" {
			category = "general"
		}
		if _, ok := categories[category]; ok {
			continue
		}
		if total+a.Fee > dailyCap {
			continue
		}

		picked = append(picked, types.Activity{
			ID:           a.ID,
			Name:         a.Name,
			City:         a.City,
			Category:     category,
			EntryFee:     a.Fee,
			DurationMin:  120,
			BestTimeHint: "Morning",
			Source:       a.Source,
		})
		used[a.ID] = struct{}{}
		categories[category] = struct{}{}
		total += a.Fee

		if len(picked) >= slots {
			break
		}
	}
	return picked
}
