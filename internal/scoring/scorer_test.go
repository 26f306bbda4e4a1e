package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/yungbote/cinematch-backend/internal/catalog"
	"github.com/yungbote/cinematch-backend/internal/platform/logger"
	"github.com/yungbote/cinematch-backend/internal/similarity"
)

func newTestScorer(t *testing.T, alpha, beta, gamma float64) *Scorer {
	t.Helper()
	s, err := NewScorer(logger.NewNop(), alpha, beta, gamma, SubstringMatcher{})
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	return s
}

func TestNormalizeWeightsRescalesToOne(t *testing.T) {
	w, err := NormalizeWeights(1, 1, 1)
	if err != nil {
		t.Fatalf("NormalizeWeights: %v", err)
	}
	third := 1.0 / 3.0
	if math.Abs(w.Alpha-third) > 1e-12 || math.Abs(w.Beta-third) > 1e-12 || math.Abs(w.Gamma-third) > 1e-12 {
		t.Fatalf("weights: want thirds got=%+v", w)
	}
	if math.Abs(w.Alpha+w.Beta+w.Gamma-1.0) > 1e-9 {
		t.Fatalf("weights must sum to 1, got=%v", w.Alpha+w.Beta+w.Gamma)
	}
}

func TestNormalizeWeightsKeepsAlreadyNormalized(t *testing.T) {
	w, err := NormalizeWeights(0.5, 0.3, 0.2)
	if err != nil {
		t.Fatalf("NormalizeWeights: %v", err)
	}
	if w.Alpha != 0.5 || w.Beta != 0.3 || w.Gamma != 0.2 {
		t.Fatalf("weights should be untouched, got=%+v", w)
	}
}

func TestNormalizeWeightsRejectsNegative(t *testing.T) {
	_, err := NormalizeWeights(0.5, -0.1, 0.6)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if ve.Code != ValidationErrorBadWeights {
		t.Fatalf("code: want=%s got=%s", ValidationErrorBadWeights, ve.Code)
	}
}

func TestNormalizeWeightsRejectsAllZero(t *testing.T) {
	if _, err := NormalizeWeights(0, 0, 0); err == nil {
		t.Fatalf("want error for all-zero weights")
	}
}

func TestValidateWeightMap(t *testing.T) {
	if err := ValidateWeightMap("genre_weights", WeightMap{"Drame": 0.8, "Comedie": 0}); err != nil {
		t.Fatalf("valid map rejected: %v", err)
	}

	err := ValidateWeightMap("genre_weights", WeightMap{"Drame": 1.2})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError for out-of-range weight, got %v", err)
	}

	err = ValidateWeightMap("mood_weights", WeightMap{"Sombre": math.NaN()})
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError for NaN weight, got %v", err)
	}
	if ve.Code != ValidationErrorNonFinite {
		t.Fatalf("code: want=%s got=%s", ValidationErrorNonFinite, ve.Code)
	}
}

func TestGenreScoreExactMatch(t *testing.T) {
	s := newTestScorer(t, 0.5, 0.3, 0.2)
	got := s.GenreScore("Drame", WeightMap{"Drame": 1.0})
	if got != 1.0 {
		t.Fatalf("genre score: want=1.0 got=%v", got)
	}
}

func TestGenreScoreSubstringEitherDirection(t *testing.T) {
	s := newTestScorer(t, 0.5, 0.3, 0.2)

	// Entry token contained in the user label.
	if got := s.GenreScore("Fiction", WeightMap{"Science-Fiction": 0.8}); got != 0.8 {
		t.Fatalf("token-in-label: want=0.8 got=%v", got)
	}
	// User label contained in the entry token.
	if got := s.GenreScore("Science-Fiction", WeightMap{"Science": 0.6}); got != 0.6 {
		t.Fatalf("label-in-token: want=0.6 got=%v", got)
	}
}

func TestGenreScoreAveragesMatchedTokens(t *testing.T) {
	s := newTestScorer(t, 0.5, 0.3, 0.2)
	got := s.GenreScore("Drame Thriller", WeightMap{"Drame": 1.0, "Thriller": 0.5})
	if math.Abs(got-0.75) > 1e-12 {
		t.Fatalf("genre score: want=0.75 got=%v", got)
	}
}

func TestGenreScoreNoMatchIsNeutral(t *testing.T) {
	s := newTestScorer(t, 0.5, 0.3, 0.2)
	got := s.GenreScore("Western", WeightMap{"Drame": 1.0, "Comedie": 0.0})
	if got != 0.5 {
		t.Fatalf("no-match default: want=0.5 got=%v", got)
	}
}

func TestGenreScoreEmptyWeightMapIsNeutral(t *testing.T) {
	s := newTestScorer(t, 0.5, 0.3, 0.2)
	if got := s.GenreScore("Drame", WeightMap{}); got != 0.5 {
		t.Fatalf("empty map: want=0.5 got=%v", got)
	}
}

func TestMoodScoreSlashSplitMatch(t *testing.T) {
	s := newTestScorer(t, 0.5, 0.3, 0.2)
	// "Sombre" must hit the "Sombre/Derangeant" label through the slash
	// split, case-insensitively.
	if got := s.MoodScore("Sombre", WeightMap{"Sombre/Derangeant": 1.0}); got != 1.0 {
		t.Fatalf("slash-split match: want=1.0 got=%v", got)
	}
	if got := s.MoodScore("derangeant", WeightMap{"Sombre/Derangeant": 0.8}); got != 0.8 {
		t.Fatalf("second half, lowercase: want=0.8 got=%v", got)
	}
}

func TestMoodScoreNoMatchIsNeutral(t *testing.T) {
	s := newTestScorer(t, 0.5, 0.3, 0.2)
	if got := s.MoodScore("Joyeux", WeightMap{"Sombre/Derangeant": 1.0}); got != 0.5 {
		t.Fatalf("no-match default: want=0.5 got=%v", got)
	}
}

func TestFinalScoreFormulaAndClip(t *testing.T) {
	s := newTestScorer(t, 0.5, 0.3, 0.2)

	got := s.FinalScore(0.6, 1.0, 1.0)
	if math.Abs(got-0.80) > 1e-12 {
		t.Fatalf("final score: want=0.80 got=%v", got)
	}

	if got := s.FinalScore(0, 0, 0); got != 0 {
		t.Fatalf("floor: want=0 got=%v", got)
	}
	if got := s.FinalScore(1, 1, 1); got != 1 {
		t.Fatalf("ceiling: want=1 got=%v", got)
	}
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Entry{
		{ID: "F1", Title: "Un", Year: 1990, Genre: "Drame", Category: "Drame", Mood: "Sombre"},
		{ID: "F2", Title: "Deux", Year: 1995, Genre: "Comedie", Category: "Comedie", Mood: "Leger"},
		{ID: "F3", Title: "Trois", Year: 2000, Genre: "Thriller", Category: "Thriller", Mood: "Intense"},
		{ID: "F4", Title: "Quatre", Year: 2005, Genre: "Drame", Category: "Drame", Mood: "Sombre"},
		{ID: "F5", Title: "Cinq", Year: 2010, Genre: "Western", Category: "Western", Mood: "Aride"},
	})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return cat
}

func TestRankReordersByFinalScore(t *testing.T) {
	s := newTestScorer(t, 0.5, 0.3, 0.2)
	cat := testCatalog(t)

	// Semantic order says F2 > F1, but F1 carries full genre and mood
	// affinity while F2 has none; the final blend must flip them.
	candidates := []similarity.Hit{
		{Index: 1, Score: 0.70}, // F2: final 0.5*0.70 + 0.5*0.5 = 0.60
		{Index: 0, Score: 0.60}, // F1: final 0.5*0.60 + 0.3 + 0.2 = 0.80
	}
	recs := s.Rank(candidates, WeightMap{"Drame": 1.0}, WeightMap{"Sombre/Derangeant": 1.0}, cat)

	if len(recs) != 2 {
		t.Fatalf("len: want=2 got=%d", len(recs))
	}
	if recs[0].ID != "F1" {
		t.Fatalf("rank 1: want=F1 got=%s", recs[0].ID)
	}
	if recs[0].Rank != 1 || recs[1].Rank != 2 {
		t.Fatalf("ranks must be dense from 1: got=[%d %d]", recs[0].Rank, recs[1].Rank)
	}
	if math.Abs(recs[0].FinalScore-0.80) > 1e-12 {
		t.Fatalf("F1 final score: want=0.80 got=%v", recs[0].FinalScore)
	}
	if recs[0].GenreScore != 1.0 || recs[0].MoodScore != 1.0 {
		t.Fatalf("F1 sub-scores: want=(1.0,1.0) got=(%v,%v)", recs[0].GenreScore, recs[0].MoodScore)
	}
}

func TestRankDeterministic(t *testing.T) {
	s := newTestScorer(t, 0.5, 0.3, 0.2)
	cat := testCatalog(t)
	candidates := []similarity.Hit{
		{Index: 0, Score: 0.5},
		{Index: 3, Score: 0.5},
		{Index: 2, Score: 0.5},
	}
	gw := WeightMap{"Drame": 0.9}
	mw := WeightMap{"Sombre/Derangeant": 0.7}

	first := s.Rank(candidates, gw, mw, cat)
	second := s.Rank(candidates, gw, mw, cat)
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Rank != second[i].Rank {
			t.Fatalf("run mismatch at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRankMonotonicInMatchingWeight(t *testing.T) {
	s := newTestScorer(t, 0.5, 0.3, 0.2)
	cat := testCatalog(t)
	candidates := []similarity.Hit{{Index: 0, Score: 0.6}}
	mw := WeightMap{"Sombre/Derangeant": 0.5}

	var prev float64 = -1
	for _, w := range []float64{0.0, 0.2, 0.4, 0.6, 0.8, 1.0} {
		recs := s.Rank(candidates, WeightMap{"Drame": w}, mw, cat)
		if recs[0].FinalScore < prev {
			t.Fatalf("final score decreased when matching weight rose: weight=%v score=%v prev=%v",
				w, recs[0].FinalScore, prev)
		}
		prev = recs[0].FinalScore
	}
}

func TestScoresAlwaysInUnitInterval(t *testing.T) {
	s := newTestScorer(t, 0.5, 0.3, 0.2)
	cat := testCatalog(t)
	candidates := []similarity.Hit{
		{Index: 0, Score: 1.0},
		{Index: 1, Score: 0.0},
		{Index: 4, Score: 0.33},
	}
	recs := s.Rank(candidates, WeightMap{"Drame": 1.0, "Western": 0.0}, WeightMap{"Sombre/Derangeant": 1.0}, cat)
	for _, r := range recs {
		for name, v := range map[string]float64{
			"semantic": r.SemanticScore,
			"genre":    r.GenreScore,
			"mood":     r.MoodScore,
			"final":    r.FinalScore,
		} {
			if v < 0 || v > 1 {
				t.Fatalf("%s score out of [0,1] for %s: %v", name, r.ID, v)
			}
		}
	}
}
