package mcpadapter

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/guard"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/runner"
)

// ValidateInput is the MCP tool input schema for single-pass validation
// (matches HTTP API field names).
type ValidateInput struct {
	EventID string `json:"event_id,omitempty" jsonschema:"optional event identifier"`
	Output  string `json:"llm_output" jsonschema:"LLM output to validate against the compiled schema"`
}

// RunInput is the MCP tool input schema for the full
// generate-validate-retry loop.
type RunInput struct {
	EventID string `json:"event_id,omitempty" jsonschema:"optional event identifier"`
	Prompt  string `json:"prompt" jsonschema:"prompt sent to the model"`
}

// NewValidateHandler returns a tool handler that validates a candidate
// output in a single pass. Pass the returned function to mcp.AddTool.
func NewValidateHandler(g *guard.Guard) func(context.Context, *mcp.CallToolRequest, ValidateInput) (*mcp.CallToolResult, models.ValidationOutcome, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ValidateInput) (*mcp.CallToolResult, models.ValidationOutcome, error) {
		return ValidateResponse(ctx, g, req, input)
	}
}

// ValidateResponse runs the validation plan over the candidate output.
func ValidateResponse(
	ctx context.Context,
	g *guard.Guard,
	req *mcp.CallToolRequest,
	input ValidateInput,
) (*mcp.CallToolResult, models.ValidationOutcome, error) {
	outcome, err := g.Validate(ctx, input.Output)
	return nil, outcome, err
}

// NewRunHandler returns a tool handler that drives the full
// generate-validate-retry loop. Pass the returned function to
// mcp.AddTool.
func NewRunHandler(g *guard.Guard, caller runner.ModelCaller) func(context.Context, *mcp.CallToolRequest, RunInput) (*mcp.CallToolResult, models.ValidationOutcome, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RunInput) (*mcp.CallToolResult, models.ValidationOutcome, error) {
		return RunResponse(ctx, g, caller, req, input)
	}
}

// RunResponse generates with the model caller and validates with
// bounded re-asks.
func RunResponse(
	ctx context.Context,
	g *guard.Guard,
	caller runner.ModelCaller,
	req *mcp.CallToolRequest,
	input RunInput,
) (*mcp.CallToolResult, models.ValidationOutcome, error) {
	outcome, err := g.Run(ctx, caller, input.Prompt)
	return nil, outcome, err
}
