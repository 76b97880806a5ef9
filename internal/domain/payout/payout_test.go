package payout_test

import (
	"strconv"
	"testing"

	"github.com/lumiere-video/lumiere/internal/domain/payout"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCalculate(t *testing.T) {
	Convey("Given a monthly payout pool", t, func() {
		pool := 10000.0

		Convey("When no entry has views", func() {
			allocations := payout.Calculate(pool, []payout.Entry{
				{EntityID: "film-1", MonthlyViews: 0, RevenueSharePct: 70},
				{EntityID: "film-2", MonthlyViews: 0, RevenueSharePct: 50},
			})

			Convey("Then the result is empty, not an error", func() {
				So(allocations, ShouldBeEmpty)
			})
		})

		Convey("When there are no entries at all", func() {
			So(payout.Calculate(pool, nil), ShouldBeEmpty)
		})

		Convey("When views are split across entries", func() {
			allocations := payout.Calculate(pool, []payout.Entry{
				{EntityID: "film-1", MonthlyViews: 7500, RevenueSharePct: 70},
				{EntityID: "film-2", MonthlyViews: 2500, RevenueSharePct: 50},
				{EntityID: "film-3", MonthlyViews: 0, RevenueSharePct: 90},
			})

			Convey("Then zero-view entries are excluded", func() {
				So(len(allocations), ShouldEqual, 2)
			})

			Convey("Then ratios are proportional and sum to 1", func() {
				So(allocations[0].Ratio, ShouldAlmostEqual, 0.75)
				So(allocations[1].Ratio, ShouldAlmostEqual, 0.25)
				So(allocations[0].Ratio+allocations[1].Ratio, ShouldAlmostEqual, 1.0)
			})

			Convey("Then gross amounts split the pool", func() {
				So(allocations[0].GrossAmount, ShouldEqual, 7500.0)
				So(allocations[1].GrossAmount, ShouldEqual, 2500.0)
			})

			Convey("Then creator shares apply the revenue percentage", func() {
				So(allocations[0].CreatorShare, ShouldEqual, 5250.0)
				So(allocations[1].CreatorShare, ShouldEqual, 1250.0)
			})
		})

		Convey("When many entries split the pool unevenly", func() {
			entries := make([]payout.Entry, 100)
			for i := range entries {
				entries[i] = payout.Entry{
					EntityID:        "film-" + strconv.Itoa(i),
					MonthlyViews:    int64(i + 1),
					RevenueSharePct: 60,
				}
			}
			allocations := payout.Calculate(pool, entries)

			Convey("Then ratios sum to 1 within tolerance", func() {
				var ratioSum float64
				for _, a := range allocations {
					ratioSum += a.Ratio
				}
				So(ratioSum, ShouldAlmostEqual, 1.0, 1e-9)
			})

			Convey("Then gross amounts sum to the pool within rounding tolerance", func() {
				var grossSum float64
				for _, a := range allocations {
					grossSum += a.GrossAmount
				}
				// Half-up rounding to cents can drift a few cents across 100 entries.
				So(grossSum, ShouldAlmostEqual, pool, 0.5)
			})

			Convey("Then no creator share exceeds its gross amount", func() {
				for _, a := range allocations {
					So(a.CreatorShare, ShouldBeLessThanOrEqualTo, a.GrossAmount)
				}
			})
		})

		Convey("When rounding is required", func() {
			allocations := payout.Calculate(100, []payout.Entry{
				{EntityID: "a", MonthlyViews: 1, RevenueSharePct: 33},
				{EntityID: "b", MonthlyViews: 2, RevenueSharePct: 33},
			})

			Convey("Then monetary outputs are rounded half-up to cents", func() {
				// 100/3 = 33.333... -> 33.33; 33.33 x 0.33 = 10.9989 -> 11.00
				So(allocations[0].GrossAmount, ShouldEqual, 33.33)
				So(allocations[0].CreatorShare, ShouldEqual, 11.0)
				// 200/3 = 66.666... -> 66.67
				So(allocations[1].GrossAmount, ShouldEqual, 66.67)
			})
		})
	})
}
