package validators

import (
	"errors"
	"fmt"
	"sync"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
)

var ErrDuplicateValidator = errors.New("validator already registered")
var ErrUnknownValidator = errors.New("unknown validator")

// Constructor builds a validator instance from its declared on-fail
// action and keyword arguments.
type Constructor func(onFail models.OnFailAction, kwargs map[string]any) (Validator, error)

// Registry maps stable validator ids to constructors. It is an
// explicit object handed to the schema compiler rather than
// process-wide state, so two guards can carry different validator
// sets. Reads dominate after startup; a RWMutex keeps registration
// safe for hot-reload.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	defaults     map[string]map[string]any
}

// NewRegistry returns a registry seeded with the builtin validators.
func NewRegistry() *Registry {
	r := &Registry{
		constructors: make(map[string]Constructor),
		defaults:     make(map[string]map[string]any),
	}

	r.Register("valid-length", NewValidLength)
	r.Register("regex-match", NewRegexMatch)
	r.Register("lower-case", NewLowerCase)
	r.Register("two-words", NewTwoWords)
	r.Register("ends-with", NewEndsWith)
	r.Register("valid-choices", NewValidChoices)

	return r
}

// Register binds id to a constructor. Last registration wins, which
// keeps custom validator hot-reload cheap.
func (r *Registry) Register(id string, c Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[id] = c
}

// RegisterStrict is Register with duplicate detection, for callers
// that want registration collisions surfaced instead of shadowed.
func (r *Registry) RegisterStrict(id string, c Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.constructors[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateValidator, id)
	}
	r.constructors[id] = c
	return nil
}

// Lookup returns the constructor registered under id.
func (r *Registry) Lookup(id string) (Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.constructors[id]
	return c, ok
}

// SetDefaults records default kwargs for a validator id, merged under
// any schema-supplied kwargs at build time.
func (r *Registry) SetDefaults(id string, kwargs map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaults[id] = kwargs
}

// Build instantiates a validator, merging registry defaults with the
// schema's kwargs (schema wins).
func (r *Registry) Build(id string, onFail models.OnFailAction, kwargs map[string]any) (Validator, error) {
	r.mu.RLock()
	c, ok := r.constructors[id]
	defaults := r.defaults[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownValidator, id)
	}

	merged := make(map[string]any, len(defaults)+len(kwargs))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range kwargs {
		merged[k] = v
	}

	return c(onFail, merged)
}
