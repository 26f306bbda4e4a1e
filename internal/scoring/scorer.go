package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yungbote/cinematch-backend/internal/catalog"
	"github.com/yungbote/cinematch-backend/internal/platform/logger"
	"github.com/yungbote/cinematch-backend/internal/similarity"
)

const weightSumTolerance = 1e-9

// Weights are the semantic/genre/mood blend. Construct through
// NormalizeWeights so the invariant Alpha+Beta+Gamma == 1 holds everywhere
// downstream.
type Weights struct {
	Alpha float64 `json:"alpha" yaml:"alpha"`
	Beta  float64 `json:"beta" yaml:"beta"`
	Gamma float64 `json:"gamma" yaml:"gamma"`
}

// NormalizeWeights rescales the three weights proportionally so they sum to
// 1.0. Negative or all-zero inputs are rejected.
func NormalizeWeights(alpha, beta, gamma float64) (Weights, error) {
	for name, v := range map[string]float64{"alpha": alpha, "beta": beta, "gamma": gamma} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Weights{}, validationErr(ValidationErrorNonFinite, name, "weight must be finite")
		}
		if v < 0 {
			return Weights{}, validationErr(ValidationErrorBadWeights, name, fmt.Sprintf("weight must be non-negative, got %v", v))
		}
	}
	total := alpha + beta + gamma
	if total == 0 {
		return Weights{}, validationErr(ValidationErrorBadWeights, "", "weights must not all be zero")
	}
	if math.Abs(total-1.0) > weightSumTolerance {
		alpha /= total
		beta /= total
		gamma /= total
	}
	return Weights{Alpha: alpha, Beta: beta, Gamma: gamma}, nil
}

// WeightMap binds category/mood labels to preference weights in [0,1]
// (Likert 1-5 divided by 5, produced by the questionnaire collaborator).
type WeightMap map[string]float64

// ValidateWeightMap rejects non-finite or out-of-range values. No silent
// clamping.
func ValidateWeightMap(field string, wm WeightMap) error {
	for label, w := range wm {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return validationErr(ValidationErrorNonFinite, field,
				fmt.Sprintf("weight for %q must be finite", label))
		}
		if w < 0 || w > 1 {
			return validationErr(ValidationErrorBadWeightMap, field,
				fmt.Sprintf("weight for %q must be in [0,1], got %v", label, w))
		}
	}
	return nil
}

// Recommendation is one ranked, score-annotated catalog entry. Immutable
// once produced; a re-rank yields a new list.
type Recommendation struct {
	catalog.Entry

	SemanticScore float64 `json:"semantic_score"`
	GenreScore    float64 `json:"genre_score"`
	MoodScore     float64 `json:"mood_score"`
	FinalScore    float64 `json:"final_score"`
	Rank          int     `json:"rank"`
}

// Scorer combines semantic similarity with genre and mood affinity.
// Weights are normalized exactly once, at construction.
type Scorer struct {
	log     *logger.Logger
	weights Weights
	matcher TagMatcher
}

func NewScorer(log *logger.Logger, alpha, beta, gamma float64, matcher TagMatcher) (*Scorer, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if matcher == nil {
		matcher = SubstringMatcher{}
	}
	w, err := NormalizeWeights(alpha, beta, gamma)
	if err != nil {
		return nil, err
	}
	log.Info("Scorer initialized", "alpha", w.Alpha, "beta", w.Beta, "gamma", w.Gamma)
	return &Scorer{
		log:     log.With("service", "Scorer"),
		weights: w,
		matcher: matcher,
	}, nil
}

func (s *Scorer) Weights() Weights { return s.weights }

// GenreScore averages the user weights matched by the entry's genre tokens.
// Each token contributes the first matching label's weight. No match at all
// scores a neutral 0.5; absence of signal is not negative preference.
func (s *Scorer) GenreScore(entryGenre string, userWeights WeightMap) float64 {
	var collected []float64
	for _, token := range tagTokens(entryGenre) {
		for _, label := range sortedLabels(userWeights) {
			if s.matcher.MatchGenre(token, label) {
				collected = append(collected, userWeights[label])
				break
			}
		}
	}
	if len(collected) == 0 {
		return 0.5
	}
	return mean(collected)
}

// MoodScore mirrors GenreScore on the mood channel, with the matcher's
// case-insensitive slash-aware rules.
func (s *Scorer) MoodScore(entryMood string, userWeights WeightMap) float64 {
	var collected []float64
	for _, token := range tagTokens(entryMood) {
		for _, label := range sortedLabels(userWeights) {
			if s.matcher.MatchMood(token, label) {
				collected = append(collected, userWeights[label])
				break
			}
		}
	}
	if len(collected) == 0 {
		return 0.5
	}
	return mean(collected)
}

// FinalScore blends the three components and clips to [0,1].
func (s *Scorer) FinalScore(semantic, genre, mood float64) float64 {
	v := s.weights.Alpha*semantic + s.weights.Beta*genre + s.weights.Gamma*mood
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Rank scores the candidate hits and re-sorts them by final score
// descending. The semantic-only order the candidates arrived in is
// provisional and does not survive; ranks are reassigned densely from 1.
func (s *Scorer) Rank(
	candidates []similarity.Hit,
	genreWeights WeightMap,
	moodWeights WeightMap,
	cat *catalog.Catalog,
) []Recommendation {
	recs := make([]Recommendation, 0, len(candidates))
	for _, hit := range candidates {
		entry := cat.Entry(hit.Index)
		genreScore := s.GenreScore(entry.Genre, genreWeights)
		moodScore := s.MoodScore(entry.Mood, moodWeights)
		recs = append(recs, Recommendation{
			Entry:         entry,
			SemanticScore: hit.Score,
			GenreScore:    genreScore,
			MoodScore:     moodScore,
			FinalScore:    s.FinalScore(hit.Score, genreScore, moodScore),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].FinalScore > recs[j].FinalScore
	})
	for i := range recs {
		recs[i].Rank = i + 1
	}
	return recs
}

// tagTokens splits a genre/mood string on whitespace and commas.
func tagTokens(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// sortedLabels iterates a weight map in a fixed order so that a token
// matching several labels always collects the same weight.
func sortedLabels(wm WeightMap) []string {
	labels := make([]string, 0, len(wm))
	for l := range wm {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
