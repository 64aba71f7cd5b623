package scoring_test

import (
	"testing"
	"time"

	"github.com/okian/taskrank/internal/domain/model"
	scoring "github.com/okian/taskrank/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestUrgency(t *testing.T) {
	Convey("Given today is 2025-06-01", t, func() {
		today := time.Date(2025, time.June, 1, 23, 59, 0, 0, time.UTC)

		Convey("Then due today or earlier is fully urgent", func() {
			u, msg := scoring.Urgency("2025-06-01", today)
			So(u, ShouldEqual, 1.0)
			So(msg, ShouldEqual, "due today")

			u, msg = scoring.Urgency("2025-05-30", today)
			So(u, ShouldEqual, 1.0)
			So(msg, ShouldEqual, "past due by 2 day(s)")
		})

		Convey("Then k days ahead gives 1/(1+k)", func() {
			for k := 1; k <= 60; k++ {
				due := today.AddDate(0, 0, k).Format("2006-01-02")
				u, _ := scoring.Urgency(due, today)
				So(u, ShouldEqual, 1/(1+float64(k)))
			}
			_, msg := scoring.Urgency("2025-06-04", today)
			So(msg, ShouldEqual, "due in 3 day(s)")
		})

		Convey("Then day counts ignore clock time across a year boundary", func() {
			late := time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC)
			u, msg := scoring.Urgency("2026-01-01", late)
			So(u, ShouldEqual, 0.5)
			So(msg, ShouldEqual, "due in 1 day(s)")
		})

		Convey("Then dates centuries away keep an exact day count", func() {
			u, msg := scoring.Urgency("2500-06-01", today)
			So(msg, ShouldEqual, "due in 173490 day(s)")
			So(u, ShouldAlmostEqual, 1.0/173491, 1e-12)

			u, msg = scoring.Urgency("9999-12-31", today)
			So(msg, ShouldEqual, "due in 2912656 day(s)")
			So(u, ShouldBeGreaterThan, 0.0)

			u, msg = scoring.Urgency("0001-01-01", today)
			So(msg, ShouldEqual, "past due by 739402 day(s)")
			So(u, ShouldEqual, 1.0)
		})

		Convey("Then missing or unparsable dates carry no urgency", func() {
			u, msg := scoring.Urgency("", today)
			So(u, ShouldEqual, 0.0)
			So(msg, ShouldEqual, "no due date")

			for _, bad := range []string{"06/01/2025", "2025-13-01", "2025-02-30", "tomorrow", "123", "2025-1-5"} {
				u, msg = scoring.Urgency(bad, today)
				So(u, ShouldEqual, 0.0)
				So(msg, ShouldEqual, "invalid due date")
			}
		})
	})
}

func TestImportance(t *testing.T) {
	Convey("Given raw importance values", t, func() {
		So(scoring.Importance(model.ValueOf(1)), ShouldEqual, 0.0)
		So(scoring.Importance(model.ValueOf(10)), ShouldEqual, 1.0)
		So(scoring.ImportanceLevel(model.Value{}), ShouldEqual, 5)
		So(scoring.ImportanceLevel(model.ValueOf(0)), ShouldEqual, 1)
		So(scoring.ImportanceLevel(model.ValueOf(99)), ShouldEqual, 10)
		So(scoring.ImportanceLevel(model.ValueOf(7.9)), ShouldEqual, 7)
		So(scoring.ImportanceLevel(model.ValueOf(" 8 ")), ShouldEqual, 8)
		So(scoring.ImportanceLevel(model.ValueOf("7.5")), ShouldEqual, 5)
		So(scoring.ImportanceLevel(model.ValueOf("high")), ShouldEqual, 5)
		So(scoring.ImportanceLevel(model.ValueOf(nil)), ShouldEqual, 5)
		So(scoring.ImportanceLevel(model.ValueOf(true)), ShouldEqual, 1)

		Convey("Then the mapping is monotone nondecreasing", func() {
			prev := -1.0
			for raw := -5; raw <= 15; raw++ {
				cur := scoring.Importance(model.ValueOf(raw))
				So(cur, ShouldBeGreaterThanOrEqualTo, prev)
				So(cur, ShouldBeBetweenOrEqual, 0, 1)
				prev = cur
			}
		})
	})
}

func TestEffort(t *testing.T) {
	Convey("Given raw hour estimates", t, func() {
		So(scoring.Effort(model.ValueOf(1)), ShouldEqual, 0.5)
		So(scoring.Effort(model.Value{}), ShouldEqual, 0.5)
		So(scoring.Effort(model.ValueOf(0)), ShouldEqual, 0.5)
		So(scoring.Effort(model.ValueOf(-2)), ShouldEqual, 0.5)
		So(scoring.Effort(model.ValueOf("abc")), ShouldEqual, 0.5)
		So(scoring.Effort(model.ValueOf("3")), ShouldEqual, 0.25)
		So(scoring.EstimatedHours(model.ValueOf(2.5)), ShouldEqual, 2.5)

		Convey("Then effort strictly decreases as hours grow", func() {
			prev := 1.0
			for _, h := range []float64{0.1, 0.5, 1, 2, 4, 8, 40, 1000} {
				cur := scoring.Effort(model.ValueOf(h))
				So(cur, ShouldBeLessThan, prev)
				prev = cur
			}
		})
	})
}

func TestDependencyBonus(t *testing.T) {
	Convey("Given dependent counts", t, func() {
		So(scoring.DependencyBonus(0), ShouldEqual, 0.0)
		So(scoring.DependencyBonus(1), ShouldAlmostEqual, 0.1, 1e-12)
		So(scoring.DependencyBonus(3), ShouldAlmostEqual, 0.15, 1e-12)

		Convey("Then the bonus rises strictly and stays below 0.2", func() {
			prev := 0.0
			for n := 1; n <= 1000; n++ {
				cur := scoring.DependencyBonus(n)
				So(cur, ShouldBeGreaterThan, prev)
				So(cur, ShouldBeLessThan, 0.2)
				prev = cur
			}
		})
	})
}
