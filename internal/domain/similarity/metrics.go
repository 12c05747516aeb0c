// Package similarity holds the pure pairwise similarity metrics and the
// per-challenge temporal baseline computation. Every function here is
// stateless and total over its declared domain: degenerate inputs
// resolve to defined values instead of panicking.
package similarity

import (
	"math"
	"sort"

	"github.com/hexpel/copycatch/internal/domain/model"
)

const (
	// Epsilon below which a standard deviation is treated as zero.
	Epsilon = 1e-9

	// DefaultRarityWeight is used for challenge ids absent from the
	// rarity map: low but non-zero so unweighted challenges still
	// contribute to the union.
	DefaultRarityWeight = 0.1

	msPerSecond = 1000.0
)

// Jaccard returns |A∩B| / |A∪B|. Two empty sets are defined as fully
// similar; exactly one empty set as fully dissimilar.
func Jaccard(a, b map[int64]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	inter := 0
	for id := range a {
		if _, ok := b[id]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}

// WeightedJaccard is Jaccard with each challenge contributing its
// rarity weight instead of a unit count. A nil or empty weight map
// degrades to the unweighted index.
func WeightedJaccard(a, b map[int64]struct{}, weights map[int64]float64) float64 {
	if len(weights) == 0 {
		return Jaccard(a, b)
	}
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	weightOf := func(id int64) float64 {
		if w, ok := weights[id]; ok {
			return w
		}
		return DefaultRarityWeight
	}

	var interWeight, unionWeight float64
	for id := range a {
		w := weightOf(id)
		unionWeight += w
		if _, ok := b[id]; ok {
			interWeight += w
		}
	}
	for id := range b {
		if _, ok := a[id]; !ok {
			unionWeight += weightOf(id)
		}
	}

	if unionWeight == 0 {
		return 0.0
	}
	return interWeight / unionWeight
}

// SequenceRatio returns the alignment ratio of two ordered solve
// sequences: twice the total length of matching blocks divided by the
// sum of the sequence lengths. Equivalent to difflib's ratio().
func SequenceRatio(a, b []int64) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	b2j := make(map[int64][]int, len(b))
	for j, elem := range b {
		b2j[elem] = append(b2j[elem], j)
	}

	matched := matchingTotal(a, b2j, 0, len(a), 0, len(b))
	return 2 * float64(matched) / float64(len(a)+len(b))
}

// matchingTotal sums the sizes of all matching blocks: find the longest
// matching block in the window, then recurse on what precedes and
// follows it.
func matchingTotal(a []int64, b2j map[int64][]int, alo, ahi, blo, bhi int) int {
	besti, bestj, bestsize := longestMatch(a, b2j, alo, ahi, blo, bhi)
	if bestsize == 0 {
		return 0
	}
	total := bestsize
	total += matchingTotal(a, b2j, alo, besti, blo, bestj)
	total += matchingTotal(a, b2j, besti+bestsize, ahi, bestj+bestsize, bhi)
	return total
}

// longestMatch finds the longest block of equal elements inside
// a[alo:ahi] and b[blo:bhi], preferring the earliest when tied.
func longestMatch(a []int64, b2j map[int64][]int, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newJ2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newJ2len
	}
	return besti, bestj, bestsize
}

// ProximityEntry is one commonly solved challenge whose solve times
// fall within the proximity threshold.
type ProximityEntry struct {
	ChallengeID int64   `json:"challenge_id"`
	User1TimeMS int64   `json:"user1_time_ms"`
	User2TimeMS int64   `json:"user2_time_ms"`
	DiffSeconds float64 `json:"diff_seconds"`
}

// TimeProximity reports, over the intersection of two contestants'
// solved sets, the challenges whose solve-time difference is at or
// below thresholdSeconds. Entries are ordered by challenge id.
func TimeProximity(a, b *model.Contestant, thresholdSeconds float64) []ProximityEntry {
	common := commonChallenges(a, b)
	entries := make([]ProximityEntry, 0, len(common))

	for _, id := range common {
		t1, ok1 := a.SolvedTimed[id]
		t2, ok2 := b.SolvedTimed[id]
		if !ok1 || !ok2 {
			continue
		}
		diffSeconds := math.Abs(float64(t1-t2)) / msPerSecond
		if diffSeconds <= thresholdSeconds {
			entries = append(entries, ProximityEntry{
				ChallengeID: id,
				User1TimeMS: t1,
				User2TimeMS: t2,
				DiffSeconds: Round2(diffSeconds),
			})
		}
	}
	return entries
}

// ZScore standardizes a pair's solve-time difference against a
// challenge's baseline. With an effectively zero spread the z-score is
// 0 when the pair's difference matches the mean and undefined
// otherwise; the second return reports whether the value is defined.
func ZScore(pairDiffSeconds float64, base model.Baseline) (float64, bool) {
	if base.Std < Epsilon {
		if math.Abs(pairDiffSeconds-base.Mean) < Epsilon {
			return 0.0, true
		}
		return math.NaN(), false
	}
	return (pairDiffSeconds - base.Mean) / base.Std, true
}

// commonChallenges returns the sorted intersection of two solved sets.
func commonChallenges(a, b *model.Contestant) []int64 {
	small, large := a.SolvedSet, b.SolvedSet
	if len(large) < len(small) {
		small, large = large, small
	}
	ids := make([]int64, 0, len(small))
	for id := range small {
		if _, ok := large[id]; ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CommonChallenges is the exported form used by the orchestrator.
func CommonChallenges(a, b *model.Contestant) []int64 {
	return commonChallenges(a, b)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round3 rounds to three decimal places.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
