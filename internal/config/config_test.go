package config_test

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/okian/taskrank/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.DefaultStrategy, convey.ShouldEqual, "smart")
			convey.So(cfg.SuggestTopN, convey.ShouldEqual, 3)
			convey.So(cfg.MaxTasks, convey.ShouldEqual, 10_000)
			convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, 8<<20)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.ParallelThreshold, convey.ShouldEqual, 256)
			convey.So(cfg.StoreEnabled, convey.ShouldBeFalse)
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "taskrank")
			convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "api")
			convey.So(config.Validate(cfg), convey.ShouldBeNil)
		})

		convey.Convey("Then the default location resolves", func() {
			loc, err := cfg.Location()
			convey.So(err, convey.ShouldBeNil)
			convey.So(loc, convey.ShouldEqual, time.Local)
		})
	})
}
