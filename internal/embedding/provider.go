package embedding

import (
	"context"
	"fmt"
)

// Provider turns text into fixed-length vectors. Implementations own
// batching and transport; callers treat a given model identifier as a
// deterministic mapping from text to vector.
type Provider interface {
	// Embed returns one vector per input, row order preserved.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Model reports the model identifier, which participates in every
	// cache key so vectors from different models can never be mixed.
	Model() string
}

// ProviderError wraps a failed embedding call. The engine never retries
// past the provider's own transport retries; the caller owns that policy.
type ProviderError struct {
	Op    string
	Model string
	Cause error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "embedding provider failed"
	}
	return fmt.Sprintf("embedding provider failed (op=%s model=%s): %v", e.Op, e.Model, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
