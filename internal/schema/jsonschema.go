package schema

import (
	"fmt"
	"strings"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
)

// CompileJSONSchema builds a plan from a JSON-Schema-shaped mapping
// plus declarative validator references, the path used by external
// schema adapters (typed model descriptions translated upstream). The
// adapter itself is out of scope; only its output shape matters here.
//
// Reference paths must exist in the schema once the schema has real
// structure; unknown validator ids follow the same warn-and-skip
// policy as the RAIL path.
func (c *Compiler) CompileJSONSchema(outputSchema map[string]any, refs []models.ValidatorReference) (*Plan, error) {
	if outputSchema == nil {
		return nil, fmt.Errorf("%w: nil output schema", ErrSchemaParse)
	}

	plan := newPlan(outputSchema)

	for _, ref := range refs {
		if !pathExists(outputSchema, ref.JSONPath) {
			return nil, fmt.Errorf("%w: %s", ErrUnboundPath, ref.JSONPath)
		}

		onFail := ref.OnFail
		if onFail == "" {
			onFail = models.OnFailNoop
		}

		instance, err := c.registry.Build(ref.ValidatorID, onFail, ref.Kwargs)
		if err != nil {
			c.logger.Warn().
				Err(err).
				Str("validator", ref.ValidatorID).
				Str("path", ref.JSONPath).
				Msg("skipping validator reference")
			continue
		}

		bound := ref
		bound.OnFail = onFail
		plan.addBinding(bound, instance)
	}

	return plan, nil
}

// pathExists reports whether a dotted JSON path addresses a node of
// the schema. The root path always exists; a structureless schema
// (no properties) accepts only the root.
func pathExists(outputSchema map[string]any, path string) bool {
	if path == RootPath {
		return true
	}
	if !strings.HasPrefix(path, RootPath+".") {
		return false
	}

	node := outputSchema
	for _, segment := range strings.Split(strings.TrimPrefix(path, RootPath+"."), ".") {
		properties, ok := node["properties"].(map[string]any)
		if !ok {
			return false
		}
		child, ok := properties[segment].(map[string]any)
		if !ok {
			return false
		}
		node = child
	}
	return true
}
