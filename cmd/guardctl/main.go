package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/setup"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/setup/logger"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	schemaPath string
	sequential bool
)

var rootCmd = &cobra.Command{
	Use:   "guardctl",
	Short: "Compile RAIL schemas and validate LLM outputs from the command line",
}

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a RAIL schema and print the validation plan",
	Long: `Compiles the RAIL markup into a validation plan and prints each
bound path with its validators and on-fail policies. Useful for
checking a schema before wiring it into a service.`,
	RunE: runCompile,
}

var validateCmd = &cobra.Command{
	Use:   "validate [output]",
	Short: "Validate a candidate output against the compiled schema",
	Long: `Runs a single validation pass over the given output (or stdin when
no argument is given) and prints the outcome as JSON. Exits non-zero
when validation fails or an exception policy aborts.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&schemaPath, "schema", "s", "",
		"Path to the RAIL schema (defaults to RAIL_SCHEMA_PATH)")
	validateCmd.Flags().BoolVar(&sequential, "sequential", false,
		"Run validators sequentially instead of concurrently")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(validateCmd)
}

func main() {
	// Logs go to stderr so stdout stays machine-readable.
	log.Logger = logger.New(os.Stderr, os.Getenv("LOG_LEVEL"))

	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadDeps(ctx context.Context) (*setup.Dependencies, *setup.Config, error) {
	logger := log.Logger

	cfg := setup.LoadConfig()
	if schemaPath != "" {
		cfg.RailSchemaPath = schemaPath
	}
	if sequential {
		cfg.Sequential = true
	}

	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		return nil, nil, err
	}
	return deps, cfg, nil
}

func runCompile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	deps, cfg, err := loadDeps(ctx)
	if err != nil {
		return err
	}

	plan := deps.Guard.Plan()
	fmt.Printf("schema: %s\n", cfg.RailSchemaPath)
	fmt.Printf("output type: %s\n\n", plan.OutputType())

	for _, path := range plan.Paths() {
		fmt.Println(path)
		for _, v := range plan.ValidatorsAt(path) {
			fmt.Printf("  %s on-fail=%s\n", v.ID(), v.OnFail())
		}
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	deps, _, err := loadDeps(ctx)
	if err != nil {
		return err
	}

	var candidate string
	if len(args) == 1 {
		candidate = args[0]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		candidate = string(data)
	}

	outcome, err := deps.Guard.Validate(ctx, candidate)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(outcome); err != nil {
		return err
	}

	if !outcome.ValidationPassed {
		os.Exit(2)
	}
	return nil
}
