package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/cinematch-backend/internal/platform/logger"
)

// QueryMemoKey is the memo slot for the single active user query within a
// session. Key equality, not text equality, governs memo hits.
const QueryMemoKey = "current_user_query"

// SessionEncoder embeds query text with a session-scoped memo. The memo is
// unbounded and dies with the session; it is never shared across sessions.
type SessionEncoder struct {
	log      *logger.Logger
	provider Provider

	mu   sync.Mutex
	memo map[string]memoEntry
}

type memoEntry struct {
	text   string
	vector []float32
}

func newSessionEncoder(log *logger.Logger, provider Provider) *SessionEncoder {
	return &SessionEncoder{
		log:      log,
		provider: provider,
		memo:     make(map[string]memoEntry),
	}
}

// Encode returns the embedding for text. When memoKey is non-empty and
// bound, the stored vector is returned without a provider call, even if
// the text has changed; callers replace the binding by calling Forget
// first when they start a new query.
func (e *SessionEncoder) Encode(ctx context.Context, text, memoKey string) ([]float32, error) {
	if memoKey != "" {
		e.mu.Lock()
		if m, ok := e.memo[memoKey]; ok {
			e.mu.Unlock()
			e.log.Debug("query embedding memo hit", "memo_key", memoKey)
			return m.vector, nil
		}
		e.mu.Unlock()
	}

	vecs, err := e.provider.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("encode query: provider returned %d vectors for one input", len(vecs))
	}

	if memoKey != "" {
		e.mu.Lock()
		e.memo[memoKey] = memoEntry{text: text, vector: vecs[0]}
		e.mu.Unlock()
	}
	return vecs[0], nil
}

// MemoSourceText reports the text a memo slot was built from, so callers
// can detect that a new query has started and clear the slot.
func (e *SessionEncoder) MemoSourceText(memoKey string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.memo[memoKey]
	return m.text, ok
}

// Forget clears one memo slot, marking the start of a new query.
func (e *SessionEncoder) Forget(memoKey string) {
	e.mu.Lock()
	delete(e.memo, memoKey)
	e.mu.Unlock()
}

// Sessions hands out per-session encoders keyed by session ID, so
// concurrent sessions cannot read each other's memos.
type Sessions struct {
	log      *logger.Logger
	provider Provider

	mu   sync.Mutex
	byID map[uuid.UUID]*SessionEncoder
}

func NewSessions(log *logger.Logger, provider Provider) (*Sessions, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if provider == nil {
		return nil, fmt.Errorf("embedding provider required")
	}
	return &Sessions{
		log:      log.With("service", "QueryEncoderSessions"),
		provider: provider,
		byID:     make(map[uuid.UUID]*SessionEncoder),
	}, nil
}

// Session returns the encoder for id, creating it on first use.
func (s *Sessions) Session(id uuid.UUID) *SessionEncoder {
	s.mu.Lock()
	defer s.mu.Unlock()
	enc, ok := s.byID[id]
	if !ok {
		enc = newSessionEncoder(s.log.With("session_id", id.String()), s.provider)
		s.byID[id] = enc
	}
	return enc
}

// End drops the session and its memo.
func (s *Sessions) End(id uuid.UUID) {
	s.mu.Lock()
	delete(s.byID, id)
	s.mu.Unlock()
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
