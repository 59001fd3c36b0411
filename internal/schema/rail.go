package schema

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/validators"
	"github.com/rs/zerolog"
)

// RootPath is the JSON path of a flat, unstructured output. Nested
// fields extend it with dotted segments.
const RootPath = "output"

// railNode is the generic element shape of a RAIL document. Element
// tags name types (string, integer, float, bool, object, list); the
// name attribute names fields; validators and on-fail-<id> attributes
// declare bindings.
type railNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []railNode `xml:",any"`
}

func (n *railNode) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Compiler turns declarative rule sources into compiled plans. The
// registry is injected so validator sets stay per-compiler instead of
// process-wide.
type Compiler struct {
	registry *validators.Registry
	logger   *zerolog.Logger
}

func NewCompiler(registry *validators.Registry, logger *zerolog.Logger) *Compiler {
	return &Compiler{
		registry: registry,
		logger:   logger,
	}
}

// CompileRAILFile compiles a RAIL document from disk.
func (c *Compiler) CompileRAILFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrSchemaParse, path, err)
	}
	return c.CompileRAIL(string(data))
}

// CompileRAIL compiles a RAIL document string. Malformed XML is fatal;
// unknown validator ids are skipped with a warning so a plan stays
// usable when an optional validator package is absent.
func (c *Compiler) CompileRAIL(railString string) (*Plan, error) {
	var root railNode
	if err := xml.Unmarshal([]byte(railString), &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaParse, err)
	}

	output := findOutput(&root)
	if output == nil {
		return nil, fmt.Errorf("%w: no <output> element", ErrSchemaParse)
	}

	rootType := output.attr("type")
	if rootType == "" {
		if len(output.Nodes) > 0 {
			rootType = "object"
		} else {
			rootType = "string"
		}
	}

	plan := newPlan(map[string]any{"type": rootType})
	c.bindNodeValidators(plan, output, RootPath)

	if rootType == "object" {
		properties := make(map[string]any, len(output.Nodes))
		for i := range output.Nodes {
			child := &output.Nodes[i]
			name := child.attr("name")
			if name == "" {
				return nil, fmt.Errorf("%w: <%s> element missing name attribute", ErrSchemaParse, child.XMLName.Local)
			}
			fragment, err := c.compileNode(plan, child, RootPath+"."+name)
			if err != nil {
				return nil, err
			}
			properties[name] = fragment
		}
		plan.outputSchema["properties"] = properties
	}

	return plan, nil
}

// compileNode emits the schema fragment for one element and records
// any validator bindings declared on it, depth first.
func (c *Compiler) compileNode(plan *Plan, node *railNode, path string) (map[string]any, error) {
	nodeType := node.XMLName.Local
	fragment := map[string]any{"type": nodeType}

	c.bindNodeValidators(plan, node, path)

	switch nodeType {
	case "object":
		properties := make(map[string]any, len(node.Nodes))
		for i := range node.Nodes {
			child := &node.Nodes[i]
			name := child.attr("name")
			if name == "" {
				return nil, fmt.Errorf("%w: <%s> element missing name attribute", ErrSchemaParse, child.XMLName.Local)
			}
			childFragment, err := c.compileNode(plan, child, path+"."+name)
			if err != nil {
				return nil, err
			}
			properties[name] = childFragment
		}
		fragment["properties"] = properties
	case "list":
		if len(node.Nodes) > 0 {
			itemFragment, err := c.compileNode(plan, &node.Nodes[0], path)
			if err != nil {
				return nil, err
			}
			fragment["items"] = itemFragment
		}
	case "string", "integer", "float", "bool":
		// scalar leaf
	default:
		return nil, fmt.Errorf("%w: unknown element type <%s>", ErrSchemaParse, nodeType)
	}

	return fragment, nil
}

// bindNodeValidators parses the validators attribute of one element
// and appends resolved bindings to the plan.
func (c *Compiler) bindNodeValidators(plan *Plan, node *railNode, path string) {
	specString := node.attr("validators")
	if specString == "" {
		return
	}

	onFailHandlers := parseOnFailHandlers(node, c.logger)

	for _, spec := range strings.Split(specString, ";") {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}

		id, kwargs := parseValidatorSpec(spec)

		onFail, declared := onFailHandlers[id]
		if !declared {
			// Observe but do not block.
			onFail = models.OnFailNoop
		}

		instance, err := c.registry.Build(id, onFail, kwargs)
		if err != nil {
			c.logger.Warn().
				Err(err).
				Str("validator", id).
				Str("path", path).
				Msg("skipping validator reference")
			continue
		}

		plan.addBinding(models.ValidatorReference{
			ValidatorID: id,
			JSONPath:    path,
			OnFail:      onFail,
			Kwargs:      kwargs,
		}, instance)
	}
}

// parseValidatorSpec splits "id: k1=v1 k2=v2" into the validator id
// and its keyword arguments.
func parseValidatorSpec(spec string) (string, map[string]any) {
	id, rest, found := strings.Cut(spec, ":")
	id = strings.TrimSpace(id)
	if !found {
		return id, nil
	}

	kwargs := make(map[string]any)
	for _, pair := range strings.Fields(rest) {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		kwargs[key] = value
	}
	return id, kwargs
}

// parseOnFailHandlers collects on-fail-<id> attributes. Unknown action
// strings are warned and dropped rather than defaulted, so a typo does
// not silently downgrade a policy.
func parseOnFailHandlers(node *railNode, logger *zerolog.Logger) map[string]models.OnFailAction {
	handlers := make(map[string]models.OnFailAction)
	for _, a := range node.Attrs {
		if !strings.HasPrefix(a.Name.Local, "on-fail-") {
			continue
		}
		id := strings.TrimPrefix(a.Name.Local, "on-fail-")
		action, ok := models.ParseOnFailAction(a.Value)
		if !ok {
			logger.Warn().
				Str("validator", id).
				Str("action", a.Value).
				Msg("invalid on-fail action, ignoring")
			continue
		}
		handlers[id] = action
	}
	return handlers
}

func findOutput(root *railNode) *railNode {
	if root.XMLName.Local == "output" {
		return root
	}
	for i := range root.Nodes {
		if found := findOutput(&root.Nodes[i]); found != nil {
			return found
		}
	}
	return nil
}
