package scoring

import (
	"sort"

	"github.com/yungbote/cinematch-backend/internal/catalog"
	"github.com/yungbote/cinematch-backend/internal/similarity"
)

const coverageTopK = 10

// Stats summarizes the full similarity vector: central tendency plus counts
// in three affinity bands. Recomputed fresh per analysis run.
type Stats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
	Min    float64 `json:"min"`

	HighAffinity   int `json:"high_affinity"`   // similarity >= 0.7
	MediumAffinity int `json:"medium_affinity"` // 0.5 <= similarity < 0.7
	LowAffinity    int `json:"low_affinity"`    // similarity < 0.5
	Total          int `json:"total"`
}

func ComputeStats(sims []float64) Stats {
	if len(sims) == 0 {
		return Stats{}
	}
	st := Stats{
		Max:   sims[0],
		Min:   sims[0],
		Total: len(sims),
	}
	var sum float64
	for _, s := range sims {
		sum += s
		if s > st.Max {
			st.Max = s
		}
		if s < st.Min {
			st.Min = s
		}
		switch {
		case s >= 0.7:
			st.HighAffinity++
		case s >= 0.5:
			st.MediumAffinity++
		default:
			st.LowAffinity++
		}
	}
	st.Mean = sum / float64(len(sims))
	st.Median = median(sims)
	return st
}

// CoverageScore summarizes how well the catalog covers the user profile: the
// 10 most semantically similar entries are final-scored and averaged with
// rank weights 1/(i+1), normalized to sum to 1. The strongest matches
// dominate but breadth still counts.
func (s *Scorer) CoverageScore(
	sims []float64,
	genreWeights WeightMap,
	moodWeights WeightMap,
	cat *catalog.Catalog,
) float64 {
	top := similarity.TopN(sims, coverageTopK)
	if len(top) == 0 {
		return 0
	}

	var weightSum float64
	for i := range top {
		weightSum += 1.0 / float64(i+1)
	}

	var score float64
	for i, hit := range top {
		entry := cat.Entry(hit.Index)
		final := s.FinalScore(
			hit.Score,
			s.GenreScore(entry.Genre, genreWeights),
			s.MoodScore(entry.Mood, moodWeights),
		)
		score += final * (1.0 / float64(i+1)) / weightSum
	}
	return score
}

// GenreDistribution reports the mean similarity per coarse category among
// entries at or above threshold. Empty when nothing clears the threshold.
func (s *Scorer) GenreDistribution(sims []float64, cat *catalog.Catalog, threshold float64) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := 0; i < cat.Len(); i++ {
		if sims[i] < threshold {
			continue
		}
		c := cat.Entry(i).Category
		sums[c] += sims[i]
		counts[c]++
	}

	out := make(map[string]float64, len(sums))
	for c, sum := range sums {
		out[c] = sum / float64(counts[c])
	}
	return out
}

// WeakCategories lists the coarse categories whose mean similarity across
// all their entries falls below threshold, weakest first. Categories absent
// from the catalog never appear.
func (s *Scorer) WeakCategories(sims []float64, cat *catalog.Catalog, threshold float64) []string {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := 0; i < cat.Len(); i++ {
		c := cat.Entry(i).Category
		sums[c] += sims[i]
		counts[c]++
	}

	means := make(map[string]float64, len(sums))
	var weak []string
	for c, sum := range sums {
		m := sum / float64(counts[c])
		if m < threshold {
			means[c] = m
			weak = append(weak, c)
		}
	}

	sort.Slice(weak, func(i, j int) bool {
		if means[weak[i]] != means[weak[j]] {
			return means[weak[i]] < means[weak[j]]
		}
		return weak[i] < weak[j]
	})
	return weak
}

func median(sims []float64) float64 {
	cp := make([]float64, len(sims))
	copy(cp, sims)
	sort.Float64s(cp)
	n := len(cp)
	if n%2 == 1 {
		return cp[n/2]
	}
	return (cp[n/2-1] + cp[n/2]) / 2
}
