package similarity

import (
	"math"
	"sort"

	"github.com/yungbote/cinematch-backend/internal/embedding"
)

// Cosine returns the cosine similarity of a and b. Mismatched lengths or a
// zero-norm vector give 0, never NaN.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := 0; i < len(a); i++ {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(sim) {
		return 0
	}
	return sim
}

// All computes the similarity of query against every catalog vector, in
// catalog order, clipped to [0,1]. Negative cosine counts as no affinity.
func All(query []float32, vectors []embedding.IndexedVector) []float64 {
	out := make([]float64, len(vectors))
	for i := range vectors {
		sim := Cosine(query, vectors[i].Vector)
		if sim < 0 {
			sim = 0
		} else if sim > 1 {
			sim = 1
		}
		out[i] = sim
	}
	return out
}

// Hit is one entry of a semantic ranking: catalog index plus similarity.
type Hit struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// TopN ranks sims descending and returns the first n hits. Ties break by
// catalog index ascending so the ranking is deterministic. n larger than
// the catalog returns everything ranked.
func TopN(sims []float64, n int) []Hit {
	hits := make([]Hit, len(sims))
	for i, s := range sims {
		hits[i] = Hit{Index: i, Score: s}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Index < hits[j].Index
	})
	if n < 0 {
		n = 0
	}
	if n > len(hits) {
		n = len(hits)
	}
	return hits[:n]
}
