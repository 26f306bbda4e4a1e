package scoring

import "strings"

// TagMatcher decides whether an entry tag token matches a user weight-map
// label. Matching mechanics are isolated here so the scoring formula never
// depends on how loose or strict the match is.
//
// Genre and mood are separate channels: genre labels are matched
// case-sensitively, mood labels are slash-joined synonym lists (e.g.
// "Intense/Tendu") matched case-insensitively against either half.
type TagMatcher interface {
	MatchGenre(entryToken, userLabel string) bool
	MatchMood(entryToken, userLabel string) bool
}

// SubstringMatcher is the default: a token matches a label when either
// string contains the other. Deliberately loose (short tokens can match
// unrelated longer labels) but kept as the default for parity with the
// historical scoring output.
type SubstringMatcher struct{}

func (SubstringMatcher) MatchGenre(entryToken, userLabel string) bool {
	if entryToken == "" || userLabel == "" {
		return false
	}
	return strings.Contains(userLabel, entryToken) || strings.Contains(entryToken, userLabel)
}

func (SubstringMatcher) MatchMood(entryToken, userLabel string) bool {
	if entryToken == "" || userLabel == "" {
		return false
	}
	token := strings.ToLower(entryToken)
	label := strings.ToLower(userLabel)
	if strings.Contains(label, token) {
		return true
	}
	for _, part := range strings.Split(label, "/") {
		if part != "" && strings.Contains(token, part) {
			return true
		}
	}
	return false
}

// ExactMatcher requires full equality (mood: equality with either slash
// half, case-insensitive).
type ExactMatcher struct{}

func (ExactMatcher) MatchGenre(entryToken, userLabel string) bool {
	return entryToken != "" && entryToken == userLabel
}

func (ExactMatcher) MatchMood(entryToken, userLabel string) bool {
	if entryToken == "" || userLabel == "" {
		return false
	}
	token := strings.ToLower(entryToken)
	for _, part := range strings.Split(strings.ToLower(userLabel), "/") {
		if token == part {
			return true
		}
	}
	return false
}

// TokenSetMatcher matches when the token sets of both sides overlap,
// case-insensitive on both channels. Stricter than substring (no partial
// word hits) but tolerant of multi-word labels.
type TokenSetMatcher struct{}

func (TokenSetMatcher) MatchGenre(entryToken, userLabel string) bool {
	return tokenSetsOverlap(entryToken, userLabel)
}

func (TokenSetMatcher) MatchMood(entryToken, userLabel string) bool {
	return tokenSetsOverlap(entryToken, strings.ReplaceAll(userLabel, "/", " "))
}

func tokenSetsOverlap(a, b string) bool {
	set := make(map[string]bool)
	for _, t := range strings.FieldsFunc(strings.ToLower(a), isTagSeparator) {
		set[t] = true
	}
	for _, t := range strings.FieldsFunc(strings.ToLower(b), isTagSeparator) {
		if set[t] {
			return true
		}
	}
	return false
}

func isTagSeparator(r rune) bool {
	return r == ' ' || r == ',' || r == '/' || r == '\t'
}
