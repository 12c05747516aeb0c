package results_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hexpel/copycatch/internal/adapters/results"
	"github.com/hexpel/copycatch/internal/domain/analysis"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a results store", t, func() {
		path := filepath.Join(t.TempDir(), "analysis_results.json")
		store := results.New(path)

		Convey("When nothing has been saved yet", func() {
			_, err := store.Load(ctx)
			So(errors.Is(err, results.ErrNoResults), ShouldBeTrue)
		})

		Convey("When an envelope is saved", func() {
			res := &analysis.Result{
				RunID:        "run-1",
				SimilarPairs: []analysis.PairResult{},
				NetworkNodes: []analysis.Node{{ID: "alice", UserIDInternal: 1, Score: 500, SolvedCount: 3}},
				NetworkEdges: []analysis.Edge{},
			}
			params := analysis.Params{
				Methods:              []string{analysis.MethodJaccard},
				TimeProximitySeconds: 300,
			}
			env := results.NewEnvelope(res, params)
			So(store.Save(ctx, env), ShouldBeNil)

			Convey("Then it loads back intact", func() {
				loaded, err := store.Load(ctx)
				So(err, ShouldBeNil)
				So(loaded.RunID, ShouldEqual, "run-1")
				So(loaded.ParamsUsed.Methods, ShouldResemble, params.Methods)
				So(loaded.CalculationTimeISO, ShouldEqual, env.CalculationTimeISO)
				So(loaded.Results.NetworkNodes, ShouldHaveLength, 1)
				So(loaded.Results.NetworkNodes[0].ID, ShouldEqual, "alice")
			})

			Convey("Then no temp file is left behind", func() {
				_, err := os.Stat(path + ".tmp")
				So(os.IsNotExist(err), ShouldBeTrue)
			})

			Convey("And a second save overwrites the first", func() {
				res2 := &analysis.Result{RunID: "run-2", SimilarPairs: []analysis.PairResult{}}
				So(store.Save(ctx, results.NewEnvelope(res2, params)), ShouldBeNil)

				loaded, err := store.Load(ctx)
				So(err, ShouldBeNil)
				So(loaded.RunID, ShouldEqual, "run-2")
			})
		})

		Convey("When the file on disk is corrupt", func() {
			So(os.WriteFile(path, []byte("{broken"), 0o644), ShouldBeNil)

			_, err := store.Load(ctx)
			So(errors.Is(err, results.ErrLoad), ShouldBeTrue)
		})
	})
}
