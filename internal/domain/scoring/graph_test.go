package scoring_test

import (
	"testing"

	scoring "github.com/okian/taskrank/internal/domain/scoring"
	"github.com/okian/taskrank/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDetectCycles(t *testing.T) {
	Convey("Given dependency graphs", t, func(c C) {
		Convey("When three tasks depend on each other in a ring", func() {
			cycles := scoring.DetectCycles(decodeTasks(c, `[
				{"id":"1","dependencies":["2"]},
				{"id":"2","dependencies":["3"]},
				{"id":"3","dependencies":["1"]}
			]`))

			Convey("Then the loop is reported closed on its first node", func() {
				So(cycles, ShouldResemble, []types.Cycle{{"1", "2", "3", "1"}})
			})
		})

		Convey("When a task depends on itself", func() {
			cycles := scoring.DetectCycles(decodeTasks(c, `[{"id":"s","dependencies":["s"]}]`))
			So(cycles, ShouldResemble, []types.Cycle{{"s", "s"}})
		})

		Convey("When two separate loops exist", func() {
			cycles := scoring.DetectCycles(decodeTasks(c, `[
				{"id":"a","dependencies":["b"]},
				{"id":"b","dependencies":["a"]},
				{"id":"c","dependencies":["d"]},
				{"id":"d","dependencies":["c"]}
			]`))
			So(cycles, ShouldResemble, []types.Cycle{{"a", "b", "a"}, {"c", "d", "c"}})
		})

		Convey("When a later root reaches an already explored loop", func() {
			cycles := scoring.DetectCycles(decodeTasks(c, `[
				{"id":"x","dependencies":["y"]},
				{"id":"y","dependencies":["x"]},
				{"id":"z","dependencies":["x","y"]}
			]`))

			Convey("Then explored nodes are not entered again", func() {
				So(cycles, ShouldHaveLength, 1)
			})
		})

		Convey("When edges point at unknown ids or come from anonymous tasks", func() {
			cycles := scoring.DetectCycles(decodeTasks(c, `[
				{"id":"a","dependencies":["ghost","b"]},
				{"id":"b","dependencies":[]},
				{"title":"anon","dependencies":["a"]}
			]`))
			So(cycles, ShouldBeEmpty)
		})

		Convey("When ids are numbers or external ids", func() {
			cycles := scoring.DetectCycles(decodeTasks(c, `[
				{"id":7,"dependencies":["ext-1"]},
				{"id":"","external_id":"ext-1","dependencies":[7]}
			]`))
			So(cycles, ShouldResemble, []types.Cycle{{"7", "ext-1", "7"}})
		})

		Convey("When an id repeats", func() {
			cycles := scoring.DetectCycles(decodeTasks(c, `[
				{"id":"a","dependencies":["b"]},
				{"id":"b","dependencies":["a"]},
				{"id":"a"}
			]`))

			Convey("Then the last occurrence's dependencies win", func() {
				So(cycles, ShouldBeEmpty)
			})
		})
	})
}

func TestGraph_Dependents(t *testing.T) {
	Convey("Given a graph with blockers", t, func(c C) {
		g := scoring.NewGraph(decodeTasks(c, `[
			{"id":"a"},
			{"id":"b","dependencies":["a"]},
			{"id":"c","dependencies":["a","a","b"]},
			{"dependencies":["a"]}
		]`))

		So(g.Dependents("a"), ShouldEqual, 3)
		So(g.Dependents("b"), ShouldEqual, 1)
		So(g.Dependents("c"), ShouldEqual, 0)
		So(g.Bonus("a"), ShouldAlmostEqual, 0.15, 1e-12)
		So(g.Bonus("missing"), ShouldEqual, 0)
	})
}
