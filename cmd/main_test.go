package main

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/lumiere-video/lumiere/internal/adapters/http/api"
	app "github.com/lumiere-video/lumiere/internal/app"
	"github.com/lumiere-video/lumiere/internal/config"
	"github.com/lumiere-video/lumiere/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("LUMIERE_ADDR", ":8080")
			_ = os.Setenv("LUMIERE_QUEUE_SIZE", "1000")
			_ = os.Setenv("LUMIERE_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("LUMIERE_ADDR")
				_ = os.Unsetenv("LUMIERE_QUEUE_SIZE")
				_ = os.Unsetenv("LUMIERE_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithWorkerCount(8),
					app.WithQueueSize(2000),
					app.WithDedupeSize(1000),
					app.WithPayoutPool(25000),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP route registration", func() {
			svc := app.New(app.WithWorkerCount(1))
			ctx := context.Background()
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			mux := http.NewServeMux()
			server := api.NewServer(svc, svc, 100)
			server.Register(ctx, mux)

			convey.Convey("Then registered routes should resolve", func() {
				for _, path := range []string{"/healthz", "/stats", "/submissions", "/leaderboard"} {
					req, err := http.NewRequest(http.MethodGet, path, nil)
					convey.So(err, convey.ShouldBeNil)
					handler, pattern := mux.Handler(req)
					convey.So(handler, convey.ShouldNotBeNil)
					convey.So(pattern, convey.ShouldNotBeEmpty)
				}
			})
		})
	})
}
