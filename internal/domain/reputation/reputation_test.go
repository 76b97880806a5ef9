package reputation_test

import (
	"testing"

	"github.com/lumiere-video/lumiere/internal/domain/reputation"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScore(t *testing.T) {
	Convey("Given the reputation aggregator", t, func() {
		Convey("When every metric is maxed", func() {
			score := reputation.Score(reputation.Metrics{
				DeadlineRate:   100,
				AcceptanceRate: 100,
				QualityScore:   100,
				CollabRate:     100,
				EngagementRate: 100,
				AccountAgeDays: 365,
				TasksCompleted: 50,
			})

			Convey("Then the score is exactly 100", func() {
				So(score, ShouldEqual, 100.0)
			})
		})

		Convey("When every metric is zero", func() {
			score := reputation.Score(reputation.Metrics{})

			Convey("Then the score is zero", func() {
				So(score, ShouldEqual, 0.0)
			})
		})

		Convey("When raw counters exceed their caps", func() {
			capped := reputation.Score(reputation.Metrics{
				AccountAgeDays: 365,
				TasksCompleted: 50,
			})
			over := reputation.Score(reputation.Metrics{
				AccountAgeDays: 3650,
				TasksCompleted: 500,
			})

			Convey("Then normalization caps seniority and task volume at 100", func() {
				So(over, ShouldEqual, capped)
			})
		})

		Convey("When rate inputs are out of range", func() {
			clamped := reputation.Score(reputation.Metrics{
				DeadlineRate:   150,
				AcceptanceRate: -20,
			})
			reference := reputation.Score(reputation.Metrics{
				DeadlineRate:   100,
				AcceptanceRate: 0,
			})

			Convey("Then they are clamped to [0,100] before weighting", func() {
				So(clamped, ShouldEqual, reference)
			})
		})

		Convey("When the weighted sum needs rounding", func() {
			// deadlines only: 33 x 0.20 = 6.6 exactly; 33.3 x 0.20 = 6.66 -> 6.7
			So(reputation.Score(reputation.Metrics{DeadlineRate: 33}), ShouldEqual, 6.6)
			So(reputation.Score(reputation.Metrics{DeadlineRate: 33.3}), ShouldEqual, 6.7)
		})

		Convey("When half a year of seniority is the only input", func() {
			score := reputation.Score(reputation.Metrics{AccountAgeDays: 73})

			Convey("Then seniority normalizes as days/365x100 before weighting", func() {
				// 73/365 x 100 = 20; 20 x 0.10 = 2.0
				So(score, ShouldEqual, 2.0)
			})
		})
	})
}

func TestBadgeFor(t *testing.T) {
	Convey("Given the badge ladder", t, func() {
		Convey("Then thresholds are monotonic at 0, 40, 65 and 85", func() {
			So(reputation.BadgeFor(0), ShouldEqual, reputation.BadgeBronze)
			So(reputation.BadgeFor(39), ShouldEqual, reputation.BadgeBronze)
			So(reputation.BadgeFor(40), ShouldEqual, reputation.BadgeSilver)
			So(reputation.BadgeFor(64.9), ShouldEqual, reputation.BadgeSilver)
			So(reputation.BadgeFor(65), ShouldEqual, reputation.BadgeGold)
			So(reputation.BadgeFor(84.9), ShouldEqual, reputation.BadgeGold)
			So(reputation.BadgeFor(85), ShouldEqual, reputation.BadgePlatinum)
			So(reputation.BadgeFor(100), ShouldEqual, reputation.BadgePlatinum)
		})
	})
}
