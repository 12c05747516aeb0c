package config_test

import (
	"runtime"
	"testing"

	"github.com/hexpel/copycatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.CachePath, convey.ShouldEqual, "scoreboard_data.json")
			convey.So(cfg.ResultsPath, convey.ShouldEqual, "analysis_results.json")
			convey.So(cfg.CacheMaxAgeSeconds, convey.ShouldEqual, 300)
			convey.So(cfg.FetchTimeoutSeconds, convey.ShouldEqual, 10)
			convey.So(cfg.AnalysisWorkers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.TimeProximitySeconds, convey.ShouldEqual, 300)
			convey.So(cfg.MinSimilarityThreshold, convey.ShouldEqual, 0)
			convey.So(cfg.DefaultMethods, convey.ShouldResemble, []string{
				"jaccard", "weighted_jaccard", "sequence", "time_proximity", "time_diff_dist",
			})
		})
	})
}
