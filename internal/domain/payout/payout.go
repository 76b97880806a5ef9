// Package payout allocates a monthly pool across catalog entries by view share.
package payout

import (
	"math"

	"github.com/lumiere-video/lumiere/internal/domain/model"
)

// Entry is one catalog entry's view count and revenue share for a month.
type Entry struct {
	EntityID        string
	MonthlyViews    int64
	RevenueSharePct float64 // in [0,100]
}

// Calculate splits pool across entries proportionally to monthly views.
// Entries with zero views are skipped; when no entry has views the
// result is empty, which callers treat as "nothing to pay out", not an
// error. Monetary outputs are rounded half-up to cents.
func Calculate(pool float64, entries []Entry) []model.PayoutAllocation {
	var total int64
	for _, e := range entries {
		if e.MonthlyViews > 0 {
			total += e.MonthlyViews
		}
	}
	if total == 0 {
		return nil
	}

	allocations := make([]model.PayoutAllocation, 0, len(entries))
	for _, e := range entries {
		if e.MonthlyViews <= 0 {
			continue
		}
		ratio := float64(e.MonthlyViews) / float64(total)
		gross := roundCents(pool * ratio)
		allocations = append(allocations, model.PayoutAllocation{
			EntityID:     e.EntityID,
			MonthlyViews: e.MonthlyViews,
			Ratio:        ratio,
			GrossAmount:  gross,
			CreatorShare: roundCents(gross * e.RevenueSharePct / 100),
		})
	}
	return allocations
}

// roundCents rounds half-up to two decimal places.
func roundCents(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
