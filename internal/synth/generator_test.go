package synth_test

import (
	"testing"

	"github.com/hexpel/copycatch/internal/synth"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerator(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		g := synth.New(
			synth.WithContestants(12),
			synth.WithChallenges(6),
			synth.WithSeed(7),
		)

		Convey("When a snapshot is generated", func() {
			snap := g.Snapshot()

			So(snap.Items, ShouldHaveLength, 12)
			So(snap.Challenges, ShouldNotBeEmpty)

			Convey("Then every contestant has at least one solve", func() {
				for _, item := range snap.Items {
					So(item.SolvedChallenges, ShouldNotBeEmpty)
					So(item.Score, ShouldBeGreaterThan, 0)
				}
			})

			Convey("Then generation is deterministic for a seed", func() {
				again := synth.New(
					synth.WithContestants(12),
					synth.WithChallenges(6),
					synth.WithSeed(7),
				).Snapshot()
				So(again, ShouldResemble, snap)
			})
		})

		Convey("When a colluding pair is injected", func() {
			snap := synth.New(
				synth.WithContestants(8),
				synth.WithChallenges(6),
				synth.WithColludingPair(true),
				synth.WithSeed(7),
			).Snapshot()

			var leader, follower []int64
			for _, item := range snap.Items {
				var ids []int64
				for _, s := range item.SolvedChallenges {
					ids = append(ids, *s.ID)
				}
				switch item.Name {
				case "shadow-a":
					leader = ids
				case "shadow-b":
					follower = ids
				}
			}

			Convey("Then the pair solved the same challenges", func() {
				So(leader, ShouldNotBeEmpty)
				So(follower, ShouldResemble, leader)
			})
		})
	})
}
