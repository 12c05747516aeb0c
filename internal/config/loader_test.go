package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/hexpel/copycatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"RADAR_CONFIG",
		"RADAR_ADDR",
		"RADAR_SCOREBOARD_URL",
		"RADAR_CACHE_PATH",
		"RADAR_CACHE_MAX_AGE_SECONDS",
		"RADAR_ANALYSIS_WORKERS",
		"RADAR_TIME_PROXIMITY_SECONDS",
		"RADAR_MIN_SIMILARITY_THRESHOLD",
	} {
		_ = os.Unsetenv(key)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.CacheMaxAgeSeconds, convey.ShouldEqual, 300)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RADAR_ADDR", ":8080")
			_ = os.Setenv("RADAR_SCOREBOARD_URL", "http://127.0.0.1:8080/api/game/7/scoreboard")
			_ = os.Setenv("RADAR_CACHE_MAX_AGE_SECONDS", "60")
			_ = os.Setenv("RADAR_ANALYSIS_WORKERS", "2")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ScoreboardURL, convey.ShouldEqual, "http://127.0.0.1:8080/api/game/7/scoreboard")
				convey.So(cfg.CacheMaxAgeSeconds, convey.ShouldEqual, 60)
				convey.So(cfg.AnalysisWorkers, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When a config file is provided", func() {
			clearConfigEnvVars()
			f, err := os.CreateTemp(t.TempDir(), "radar-*.yaml")
			convey.So(err, convey.ShouldBeNil)
			_, err = f.WriteString("addr: \":7070\"\nmin_similarity_threshold: 0.3\n")
			convey.So(err, convey.ShouldBeNil)
			convey.So(f.Close(), convey.ShouldBeNil)
			_ = os.Setenv("RADAR_CONFIG", f.Name())
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values should override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.MinSimilarityThreshold, convey.ShouldEqual, 0.3)
			})
		})

		convey.Convey("When validation fails", func() {
			_ = os.Setenv("RADAR_ANALYSIS_WORKERS", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an invalid config error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
