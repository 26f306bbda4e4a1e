package similarity

import (
	"math"
	"testing"

	"github.com/yungbote/cinematch-backend/internal/embedding"
)

func TestCosineIdenticalDirection(t *testing.T) {
	got := Cosine([]float32{1, 2, 3}, []float32{2, 4, 6})
	if math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("cosine: want=1.0 got=%v", got)
	}
}

func TestCosineOrthogonal(t *testing.T) {
	got := Cosine([]float32{1, 0}, []float32{0, 1})
	if got != 0 {
		t.Fatalf("cosine: want=0 got=%v", got)
	}
}

func TestCosineZeroVectorIsZeroNotNaN(t *testing.T) {
	got := Cosine([]float32{0, 0, 0}, []float32{1, 2, 3})
	if got != 0 {
		t.Fatalf("zero vector: want=0 got=%v", got)
	}
	if math.IsNaN(got) {
		t.Fatalf("zero vector must not yield NaN")
	}
}

func TestCosineMismatchedLengths(t *testing.T) {
	if got := Cosine([]float32{1, 2}, []float32{1, 2, 3}); got != 0 {
		t.Fatalf("mismatched lengths: want=0 got=%v", got)
	}
}

func TestAllClipsNegativeCosine(t *testing.T) {
	vectors := []embedding.IndexedVector{
		{Index: 0, Vector: []float32{1, 0}},
		{Index: 1, Vector: []float32{-1, 0}},
	}
	sims := All([]float32{1, 0}, vectors)
	if len(sims) != 2 {
		t.Fatalf("len: want=2 got=%d", len(sims))
	}
	if math.Abs(sims[0]-1.0) > 1e-9 {
		t.Fatalf("sims[0]: want=1.0 got=%v", sims[0])
	}
	if sims[1] != 0 {
		t.Fatalf("sims[1]: negative cosine must clip to 0, got=%v", sims[1])
	}
}

func TestTopNOrdersByScoreThenIndex(t *testing.T) {
	sims := []float64{0.2, 0.9, 0.5, 0.9, 0.1}
	hits := TopN(sims, 3)
	if len(hits) != 3 {
		t.Fatalf("len: want=3 got=%d", len(hits))
	}
	// 0.9 tie between indices 1 and 3 breaks by index ascending.
	if hits[0].Index != 1 || hits[1].Index != 3 || hits[2].Index != 2 {
		t.Fatalf("order: want=[1 3 2] got=[%d %d %d]", hits[0].Index, hits[1].Index, hits[2].Index)
	}
}

func TestTopNLargerThanCatalog(t *testing.T) {
	sims := []float64{0.3, 0.7}
	hits := TopN(sims, 10)
	if len(hits) != 2 {
		t.Fatalf("len: want=2 got=%d", len(hits))
	}
	if hits[0].Index != 1 || hits[1].Index != 0 {
		t.Fatalf("order: want=[1 0] got=[%d %d]", hits[0].Index, hits[1].Index)
	}
}

func TestTopNDeterministic(t *testing.T) {
	sims := []float64{0.5, 0.5, 0.5, 0.5}
	first := TopN(sims, 4)
	second := TopN(sims, 4)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("run %d: want=%+v got=%+v", i, first[i], second[i])
		}
	}
	for i := range first {
		if first[i].Index != i {
			t.Fatalf("all-tied ranking must follow catalog order, got=%+v", first)
		}
	}
}
