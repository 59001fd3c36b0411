package setup

import (
	"context"
	"fmt"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/execution"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/guard"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/history"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/llm/bedrock"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/llm/openai"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/runner"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/schema"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/validators"
	"github.com/rs/zerolog"
)

type Dependencies struct {
	Guard   *guard.Guard
	Caller  runner.ModelCaller
	Archive *history.Archive
	Logger  *zerolog.Logger
}

// Wire builds the registry, compiles the RAIL schema and assembles a
// ready-to-serve guard.
func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	llmClient, err := createLLMClient(ctx, cfg.DefaultProvider, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	registry := validators.NewRegistry()
	registry.Register("llm-critic", validators.NewCriticConstructor(llmClient, logger))

	// Per-validator defaults are optional.
	if fileCfg, err := validators.LoadFileConfig(); err == nil {
		fileCfg.ApplyTo(registry)
	} else {
		logger.Warn().Err(err).Msg("no validator defaults file loaded")
	}

	compiler := schema.NewCompiler(registry, logger)
	plan, err := compiler.CompileRAILFile(cfg.RailSchemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rail schema: %w", err)
	}

	var strategy execution.Strategy = execution.Concurrent{}
	if cfg.Sequential {
		strategy = execution.Sequential{}
	}

	options := []guard.Option{
		guard.WithStrategy(strategy),
		guard.WithRunnerOptions(runner.Options{
			NumReasks: cfg.NumReasks,
			BaseDelay: cfg.BaseDelay,
			MaxDelay:  cfg.MaxDelay,
		}),
		guard.WithStreamOnReask(runner.StreamOnReask(cfg.StreamOnReask)),
	}

	var archive *history.Archive
	if cfg.HistoryDBPath != "" {
		archive, err = history.NewArchive(cfg.HistoryDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open history archive: %w", err)
		}
		options = append(options, guard.WithCallSink(&archiveSink{archive: archive, logger: logger}))
	}

	g := guard.New(plan, logger, options...)

	return &Dependencies{
		Guard:   g,
		Caller:  &promptCaller{client: llmClient},
		Archive: archive,
		Logger:  logger,
	}, nil
}

// archiveSink adapts the sqlite archive to the recorder's sink
// contract: persistence failures are logged, never propagated into
// the invocation.
type archiveSink struct {
	archive *history.Archive
	logger  *zerolog.Logger
}

func (s *archiveSink) SaveCall(ctx context.Context, call *models.Call) error {
	if err := s.archive.SaveCall(ctx, call); err != nil {
		s.logger.Error().Err(err).Str("call_id", call.ID).Msg("failed to archive call")
	}
	return nil
}

func createLLMClient(ctx context.Context, provider string, cfg *Config) (llm.Client, error) {
	switch provider {
	case "bedrock":
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	case "openai":
		return openai.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID)
	default:
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	}
}

// promptCaller adapts an llm.Client to the orchestrator's model-caller
// capability, appending corrective feedback to the prompt on re-asks.
type promptCaller struct {
	client      llm.Client
	maxTokens   int
	temperature float64
}

func (c *promptCaller) Call(ctx context.Context, prompt string, feedback string) (string, error) {
	full := prompt
	if feedback != "" {
		full = prompt + "\n\n" + feedback
	}

	maxTokens := c.maxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	resp, err := c.client.InvokeModelWithRetry(ctx, llm.Request{
		Prompt:      full,
		MaxTokens:   maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
