package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	service "github.com/okian/taskrank/internal/app"
	"github.com/okian/taskrank/internal/adapters/repository"
	"github.com/okian/taskrank/internal/domain/model"
	"github.com/okian/taskrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var today = time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return today }

func tasksFrom(c C, payload string) []model.Task {
	var tasks []model.Task
	c.So(json.Unmarshal([]byte(payload), &tasks), ShouldBeNil)
	return tasks
}

const sample = `[
	{"id":"1","title":"Ship","due_date":"2025-06-01","importance":9,"estimated_hours":0.5},
	{"id":"2","title":"Plan","due_date":"2025-07-15","importance":4,"estimated_hours":6,"dependencies":["1"]},
	{"id":"3","title":"Fix","importance":7,"estimated_hours":2,"dependencies":["4"]},
	{"id":"4","title":"Read","dependencies":["3"]}
]`

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithClock(fixedClock), service.WithLocation(time.UTC))
		defer svc.Stop()

		Convey("When it has not been started", func() {
			_, err := svc.Analyze(context.Background(), nil, "")

			Convey("Then ranking is refused", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})

		Convey("When starting the service twice", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)

			Convey("Then it should be marked as started", func() {
				So(svc.GetStats()["started"], ShouldEqual, true)
			})

			Convey("And stopping marks it stopped", func() {
				svc.Stop()
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Analyze(t *testing.T) {
	Convey("Given a started service", t, func(c C) {
		svc := service.New(
			service.WithClock(fixedClock),
			service.WithLocation(time.UTC),
			service.WithDefaultStrategy("deadline_driven"),
		)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("When no strategy is named", func() {
			res, err := svc.Analyze(context.Background(), tasksFrom(c, sample), "")

			Convey("Then the configured default is used", func() {
				So(err, ShouldBeNil)
				So(res.Strategy, ShouldEqual, "deadline_driven")
				So(res.Tasks, ShouldHaveLength, 4)
				So(res.Tasks[0].ID, ShouldEqual, "1")
				So(res.Cycles, ShouldHaveLength, 1)
			})

			Convey("And stats are counted", func() {
				stats := svc.GetStats()
				So(stats["analyses"], ShouldEqual, int64(1))
				So(stats["tasksScored"], ShouldEqual, int64(4))
				So(stats["cyclesDetected"], ShouldEqual, int64(1))
				So(stats["storeEnabled"], ShouldEqual, false)
			})
		})

		Convey("When suggesting without top_n", func() {
			res, err := svc.Suggest(context.Background(), tasksFrom(c, sample), 0, "smart")

			Convey("Then three suggestions come back", func() {
				So(err, ShouldBeNil)
				So(res.Suggestions, ShouldHaveLength, 3)
				So(res.Strategy, ShouldEqual, "smart")
				So(svc.GetStats()["suggestions"], ShouldEqual, int64(1))
			})
		})

		Convey("When suggesting with an explicit top_n", func() {
			res, err := svc.Suggest(context.Background(), tasksFrom(c, sample), 1, "")
			So(err, ShouldBeNil)
			So(res.Suggestions, ShouldHaveLength, 1)
		})

		Convey("When the archive is disabled", func() {
			_, err := svc.StoredTasks(context.Background(), 10)
			So(errors.Is(err, service.ErrStoreDisabled), ShouldBeTrue)
			_, err = svc.StoredTask(context.Background(), "1")
			So(errors.Is(err, service.ErrStoreDisabled), ShouldBeTrue)
		})

		Convey("When listing strategies", func() {
			list := svc.Strategies()
			So(list.Default, ShouldEqual, "deadline_driven")
			So(list.Strategies, ShouldHaveLength, 5)
		})
	})
}

func TestService_Archive(t *testing.T) {
	Convey("Given a service with an in-memory archive", t, func(c C) {
		svc := service.New(service.WithClock(fixedClock), service.WithTaskArchive(true, ""))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("When a list is analyzed", func() {
			_, err := svc.Analyze(context.Background(), tasksFrom(c, sample), "smart")
			So(err, ShouldBeNil)

			Convey("Then its tasks are archived", func() {
				records, err := svc.StoredTasks(context.Background(), 10)
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 4)

				rec, err := svc.StoredTask(context.Background(), "2")
				So(err, ShouldBeNil)
				So(rec.Title, ShouldEqual, "Plan")
				So(rec.Dependencies, ShouldResemble, []string{"1"})
				So(svc.GetStats()["storedTasks"], ShouldEqual, 4)
			})
		})

		Convey("When tasks have no id", func() {
			_, err := svc.Analyze(context.Background(), tasksFrom(c, `[{"title":"anon"}]`), "smart")
			So(err, ShouldBeNil)
			records, err := svc.StoredTasks(context.Background(), 10)
			So(err, ShouldBeNil)
			So(records, ShouldBeEmpty)
		})
	})

	Convey("Given a service with a sqlite archive", t, func(c C) {
		path := filepath.Join(t.TempDir(), "archive.db")
		svc := service.New(service.WithTaskArchive(true, path))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		_, err := svc.Suggest(context.Background(), tasksFrom(c, sample), 2, "high_impact")
		So(err, ShouldBeNil)

		records, err := svc.StoredTasks(context.Background(), repository.DefaultListLimit)
		So(err, ShouldBeNil)
		So(records, ShouldHaveLength, 4)
	})

	Convey("Given a service whose archive is already closed", t, func(c C) {
		store := repository.NewMemoryStore()
		So(store.Close(), ShouldBeNil)
		svc := service.New(service.WithStore(store))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("When a list is analyzed", func() {
			res, err := svc.Analyze(context.Background(), tasksFrom(c, sample), "smart")

			Convey("Then the ranking still succeeds", func() {
				So(err, ShouldBeNil)
				So(res.Tasks, ShouldHaveLength, 4)
			})
		})
	})
}

// gatedStore holds Upsert until release is closed.
type gatedStore struct {
	repository.Store
	entered   chan struct{}
	release   chan struct{}
	upsertErr error
	closed    atomic.Bool
}

func (g *gatedStore) Upsert(ctx context.Context, records []repository.Record) (int, error) {
	close(g.entered)
	<-g.release
	n, err := g.Store.Upsert(ctx, records)
	g.upsertErr = err
	return n, err
}

func (g *gatedStore) Close() error {
	g.closed.Store(true)
	return g.Store.Close()
}

func TestService_StopDrainsArchive(t *testing.T) {
	Convey("Given an archive write in flight", t, func(c C) {
		store := &gatedStore{
			Store:   repository.NewMemoryStore(),
			entered: make(chan struct{}),
			release: make(chan struct{}),
		}
		svc := service.New(service.WithClock(fixedClock), service.WithStore(store))
		So(svc.Start(context.Background()), ShouldBeNil)

		tasks := tasksFrom(c, sample)
		analyzed := make(chan error, 1)
		go func() {
			_, err := svc.Analyze(context.Background(), tasks, "smart")
			analyzed <- err
		}()
		<-store.entered

		Convey("When the service is stopped", func() {
			stopped := make(chan struct{})
			go func() {
				svc.Stop()
				close(stopped)
			}()

			Convey("Then the archive closes only after the write lands", func() {
				select {
				case <-stopped:
					So("Stop returned while the write was held", ShouldBeEmpty)
				case <-time.After(50 * time.Millisecond):
				}
				So(store.closed.Load(), ShouldBeFalse)

				close(store.release)
				So(<-analyzed, ShouldBeNil)
				select {
				case <-stopped:
				case <-time.After(5 * time.Second):
					So("Stop did not return", ShouldBeEmpty)
				}
				So(store.upsertErr, ShouldBeNil)
				So(store.closed.Load(), ShouldBeTrue)

				_, err := svc.StoredTasks(context.Background(), 10)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})
}
