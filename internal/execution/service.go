package execution

import (
	"context"
	"sync"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/validators"
)

// Strategy runs a list of validators over one value. Implementations
// must return results in binding order regardless of how they
// dispatch; result ordering is a correctness requirement for a
// deterministic attempt history, not cosmetics.
type Strategy interface {
	Validate(ctx context.Context, value any, vs []validators.Validator, metadata map[string]any) []models.ValidationResult
}

// Sequential runs validators one at a time in binding order. It never
// short-circuits on the first failure: later failures still feed the
// filter and fix aggregation, and exception-on-fail results are acted
// on by the resolver, not by early termination here.
type Sequential struct{}

func (Sequential) Validate(ctx context.Context, value any, vs []validators.Validator, metadata map[string]any) []models.ValidationResult {
	results := make([]models.ValidationResult, len(vs))
	for i, v := range vs {
		results[i] = v.Validate(ctx, value, metadata)
	}
	return results
}

// Concurrent fans validators out to independent goroutines and gathers
// results back into binding order by index before returning.
type Concurrent struct{}

func (Concurrent) Validate(ctx context.Context, value any, vs []validators.Validator, metadata map[string]any) []models.ValidationResult {
	results := make([]models.ValidationResult, len(vs))
	var wg sync.WaitGroup

	for i, v := range vs {
		wg.Add(1)
		go func(slot int, val validators.Validator) {
			defer wg.Done()
			results[slot] = val.Validate(ctx, value, metadata)
		}(i, v)
	}

	wg.Wait()
	return results
}
