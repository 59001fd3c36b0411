package schema

import (
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/validators"
)

// Plan is a compiled validation plan: a JSON-Schema-shaped output
// contract plus the ordered validator bindings resolved against it.
// A plan is immutable once returned by a compiler and is safe to share
// across concurrent invocations.
type Plan struct {
	outputSchema map[string]any
	bindings     []models.ValidatorReference
	validatorMap map[string][]validators.Validator
	paths        []string
}

// OutputSchema returns the JSON-Schema-shaped output contract.
func (p *Plan) OutputSchema() map[string]any {
	return p.outputSchema
}

// Bindings returns the compiled validator references in declaration
// order. Binding order defines execution order for the sequential
// strategy.
func (p *Plan) Bindings() []models.ValidatorReference {
	return p.bindings
}

// ValidatorsAt returns the validator instances bound to a JSON path.
func (p *Plan) ValidatorsAt(path string) []validators.Validator {
	return p.validatorMap[path]
}

// Paths returns the bound JSON paths in first-seen binding order.
func (p *Plan) Paths() []string {
	return p.paths
}

// OutputType reports the root type of the output contract, defaulting
// to string for flat outputs.
func (p *Plan) OutputType() string {
	if t, ok := p.outputSchema["type"].(string); ok {
		return t
	}
	return "string"
}

func newPlan(outputSchema map[string]any) *Plan {
	return &Plan{
		outputSchema: outputSchema,
		validatorMap: make(map[string][]validators.Validator),
	}
}

func (p *Plan) addBinding(ref models.ValidatorReference, v validators.Validator) {
	p.bindings = append(p.bindings, ref)
	if _, seen := p.validatorMap[ref.JSONPath]; !seen {
		p.paths = append(p.paths, ref.JSONPath)
	}
	p.validatorMap[ref.JSONPath] = append(p.validatorMap[ref.JSONPath], v)
}
