package similarity_test

import (
	"testing"

	"github.com/hexpel/copycatch/internal/domain/model"
	"github.com/hexpel/copycatch/internal/domain/similarity"
	. "github.com/smartystreets/goconvey/convey"
)

func set(ids ...int64) map[int64]struct{} {
	s := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func timedContestant(id int64, name string, solves map[int64]int64) *model.Contestant {
	c := &model.Contestant{
		ID:          id,
		Name:        name,
		SolvedSet:   make(map[int64]struct{}, len(solves)),
		SolvedTimed: make(map[int64]int64, len(solves)),
	}
	for cid, t := range solves {
		c.SolvedSet[cid] = struct{}{}
		c.SolvedTimed[cid] = t
	}
	return c
}

func TestJaccard(t *testing.T) {
	Convey("Given two solved sets", t, func() {
		Convey("When both are empty", func() {
			So(similarity.Jaccard(set(), set()), ShouldEqual, 1.0)
		})

		Convey("When exactly one is empty", func() {
			So(similarity.Jaccard(set(1, 2), set()), ShouldEqual, 0.0)
			So(similarity.Jaccard(set(), set(1, 2)), ShouldEqual, 0.0)
		})

		Convey("When they are identical", func() {
			So(similarity.Jaccard(set(1, 2, 3), set(1, 2, 3)), ShouldEqual, 1.0)
		})

		Convey("When they partially overlap", func() {
			// intersection {2,3}, union {1,2,3,4}
			So(similarity.Jaccard(set(1, 2, 3), set(2, 3, 4)), ShouldEqual, 0.5)
		})

		Convey("Then the index is symmetric", func() {
			a, b := set(1, 2, 5), set(2, 7)
			So(similarity.Jaccard(a, b), ShouldEqual, similarity.Jaccard(b, a))
		})
	})
}

func TestWeightedJaccard(t *testing.T) {
	Convey("Given rarity weights", t, func() {
		weights := map[int64]float64{1: 2.0, 2: 2.0, 3: 2.0, 4: 2.0}

		Convey("When all weights are equal it matches the unweighted index", func() {
			a, b := set(1, 2, 3), set(2, 3, 4)
			So(similarity.WeightedJaccard(a, b, weights), ShouldAlmostEqual, similarity.Jaccard(a, b))
		})

		Convey("When a rare challenge is shared it dominates", func() {
			skewed := map[int64]float64{1: 10.0, 2: 1.0, 3: 1.0}
			// shared {1}: 10 / (10+1+1) vs unweighted 1/3
			got := similarity.WeightedJaccard(set(1, 2), set(1, 3), skewed)
			So(got, ShouldAlmostEqual, 10.0/12.0)
		})

		Convey("When an id is missing from the weight map it gets the default weight", func() {
			partial := map[int64]float64{1: 1.0}
			// shared {1}: 1 / (1 + 0.1)
			got := similarity.WeightedJaccard(set(1), set(1, 99), partial)
			So(got, ShouldAlmostEqual, 1.0/1.1)
		})

		Convey("When the weight map is nil it degrades to the unweighted index", func() {
			a, b := set(1, 2), set(2, 3)
			So(similarity.WeightedJaccard(a, b, nil), ShouldEqual, similarity.Jaccard(a, b))
		})

		Convey("When both sets are empty", func() {
			So(similarity.WeightedJaccard(set(), set(), weights), ShouldEqual, 1.0)
		})

		Convey("When exactly one set is empty", func() {
			So(similarity.WeightedJaccard(set(1), set(), weights), ShouldEqual, 0.0)
		})
	})
}

func TestSequenceRatio(t *testing.T) {
	Convey("Given ordered solve sequences", t, func() {
		Convey("When both are empty", func() {
			So(similarity.SequenceRatio(nil, nil), ShouldEqual, 1.0)
		})

		Convey("When exactly one is empty", func() {
			So(similarity.SequenceRatio([]int64{1, 2}, nil), ShouldEqual, 0.0)
		})

		Convey("When a sequence is compared with itself", func() {
			seq := []int64{5, 3, 8, 1, 9}
			So(similarity.SequenceRatio(seq, seq), ShouldEqual, 1.0)
		})

		Convey("When the sequences share no elements", func() {
			So(similarity.SequenceRatio([]int64{1, 2, 3}, []int64{4, 5, 6}), ShouldEqual, 0.0)
		})

		Convey("When one element is dropped", func() {
			// matching blocks [1 2] and [4]: 2*3/(4+3)
			got := similarity.SequenceRatio([]int64{1, 2, 3, 4}, []int64{1, 2, 4})
			So(got, ShouldAlmostEqual, 6.0/7.0)
		})

		Convey("When the order is reversed", func() {
			// only a single element can match per block
			got := similarity.SequenceRatio([]int64{1, 2, 3}, []int64{3, 2, 1})
			So(got, ShouldAlmostEqual, 2.0/6.0)
		})
	})
}

func TestTimeProximity(t *testing.T) {
	Convey("Given two contestants with overlapping solves", t, func() {
		a := timedContestant(1, "alice", map[int64]int64{
			10: 1_000_000,
			11: 2_000_000,
			12: 3_000_000,
		})
		b := timedContestant(2, "bob", map[int64]int64{
			10: 1_030_000, // 30s apart
			11: 2_600_000, // 600s apart
			13: 3_000_000, // not common
		})

		Convey("When the threshold admits only the close solve", func() {
			entries := similarity.TimeProximity(a, b, 300)
			So(entries, ShouldHaveLength, 1)
			So(entries[0].ChallengeID, ShouldEqual, 10)
			So(entries[0].DiffSeconds, ShouldEqual, 30.0)
		})

		Convey("When the threshold admits both common solves", func() {
			entries := similarity.TimeProximity(a, b, 600)
			So(entries, ShouldHaveLength, 2)
			So(entries[0].ChallengeID, ShouldEqual, 10)
			So(entries[1].ChallengeID, ShouldEqual, 11)
			So(entries[1].DiffSeconds, ShouldEqual, 600.0)
		})

		Convey("When there is no overlap at all", func() {
			c := timedContestant(3, "carol", map[int64]int64{99: 5_000_000})
			So(similarity.TimeProximity(a, c, 300), ShouldBeEmpty)
		})
	})
}

func TestZScore(t *testing.T) {
	Convey("Given a challenge baseline", t, func() {
		Convey("When the spread is positive", func() {
			z, ok := similarity.ZScore(40, model.Baseline{Mean: 100, Std: 30})
			So(ok, ShouldBeTrue)
			So(z, ShouldAlmostEqual, -2.0)
		})

		Convey("When the spread is zero and the pair matches the mean", func() {
			z, ok := similarity.ZScore(100, model.Baseline{Mean: 100, Std: 0})
			So(ok, ShouldBeTrue)
			So(z, ShouldEqual, 0.0)
		})

		Convey("When the spread is zero and the pair deviates", func() {
			_, ok := similarity.ZScore(90, model.Baseline{Mean: 100, Std: 0})
			So(ok, ShouldBeFalse)
		})
	})
}

func TestCommonChallenges(t *testing.T) {
	Convey("Given two contestants", t, func() {
		a := timedContestant(1, "alice", map[int64]int64{3: 1, 1: 2, 7: 3})
		b := timedContestant(2, "bob", map[int64]int64{7: 4, 3: 5, 9: 6})

		Convey("Then the intersection is sorted by challenge id", func() {
			So(similarity.CommonChallenges(a, b), ShouldResemble, []int64{3, 7})
		})
	})
}

func TestRounding(t *testing.T) {
	Convey("Given unrounded values", t, func() {
		So(similarity.Round2(1.236), ShouldEqual, 1.24)
		So(similarity.Round2(2.004), ShouldEqual, 2.0)
		So(similarity.Round3(0.12345), ShouldEqual, 0.123)
		So(similarity.Round3(2.7184), ShouldEqual, 2.718)
	})
}
