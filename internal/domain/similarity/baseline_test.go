package similarity_test

import (
	"testing"

	"github.com/hexpel/copycatch/internal/domain/model"
	"github.com/hexpel/copycatch/internal/domain/similarity"
	. "github.com/smartystreets/goconvey/convey"
)

func solverPool(times map[int64]map[int64]int64) map[int64]*model.Contestant {
	pool := make(map[int64]*model.Contestant, len(times))
	for userID, solves := range times {
		pool[userID] = timedContestant(userID, "", solves)
	}
	return pool
}

func TestComputeBaselines(t *testing.T) {
	Convey("Given a pool of contestants", t, func() {
		challenges := map[int64]*model.Challenge{
			1: {ID: 1, Title: "alpha"},
			2: {ID: 2, Title: "beta"},
			3: {ID: 3, Title: "gamma"},
		}

		Convey("When a challenge has three solvers with spread-out times", func() {
			pool := solverPool(map[int64]map[int64]int64{
				10: {1: 0},
				11: {1: 60_000},
				12: {1: 180_000},
			})
			baselines := similarity.ComputeBaselines(pool, challenges)

			Convey("Then its baseline covers all pairwise differences", func() {
				base, ok := baselines[1]
				So(ok, ShouldBeTrue)
				// pairwise diffs: 60s, 180s, 120s
				So(base.Mean, ShouldAlmostEqual, 120.0)
				So(base.Std, ShouldAlmostEqual, 48.98979485566356, 1e-9)
			})
		})

		Convey("When a challenge has fewer than three solvers", func() {
			pool := solverPool(map[int64]map[int64]int64{
				10: {2: 0},
				11: {2: 60_000},
			})
			baselines := similarity.ComputeBaselines(pool, challenges)

			Convey("Then no baseline is produced for it", func() {
				_, ok := baselines[2]
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When every solver submitted at the same instant", func() {
			pool := solverPool(map[int64]map[int64]int64{
				10: {3: 500_000},
				11: {3: 500_000},
				12: {3: 500_000},
			})
			baselines := similarity.ComputeBaselines(pool, challenges)

			Convey("Then the zero-spread distribution is discarded", func() {
				_, ok := baselines[3]
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the pool is empty", func() {
			So(similarity.ComputeBaselines(nil, challenges), ShouldBeEmpty)
		})
	})
}
