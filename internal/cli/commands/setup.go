package commands

import (
	"log/slog"

	"github.com/leapstack-labs/vendorperf/internal/cli/config"
	"github.com/leapstack-labs/vendorperf/internal/cli/output"
	"github.com/leapstack-labs/vendorperf/internal/pipeline"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Pipeline *pipeline.Pipeline
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with pipeline and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc := NewCommandContextWithoutPipeline(cmd)

	p, err := createPipeline(cc.Cfg, cc.Logger)
	if err != nil {
		return nil, nil, err
	}
	cc.Pipeline = p

	cleanup := func() {
		if err := p.Close(); err != nil {
			cc.Logger.Warn("failed to close pipeline", "error", err.Error())
		}
	}
	return cc, cleanup, nil
}

// NewCommandContextWithoutPipeline creates a CommandContext without a pipeline.
// Useful for commands that don't need database access.
func NewCommandContextWithoutPipeline(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// createPipeline creates a pipeline from the current configuration.
func createPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	return pipeline.New(pipeline.Config{
		InputDir:      cfg.InputDir,
		StatePath:     cfg.StatePath,
		AdapterConfig: cfg.Target.AdapterConfig(),
		Logger:        logger,
	})
}
