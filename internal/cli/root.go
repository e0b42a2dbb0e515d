// Package cli provides the command-line interface for vendorperf.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/leapstack-labs/vendorperf/internal/cli/commands"
	"github.com/leapstack-labs/vendorperf/internal/cli/config"
	"github.com/leapstack-labs/vendorperf/internal/cli/output"
	"github.com/leapstack-labs/vendorperf/internal/logging"
	"github.com/spf13/cobra"

	// Store adapters register themselves by type name.
	_ "github.com/leapstack-labs/vendorperf/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/vendorperf/pkg/adapters/mysql"
	_ "github.com/leapstack-labs/vendorperf/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/vendorperf/pkg/adapters/sqlite"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// openLog opens the log sink; tests replace it.
var openLog = logging.Open

// skipSetup lists commands that run without config or log file.
var skipSetup = map[string]bool{
	"help":       true,
	"completion": true,
	"__complete": true,
	"version":    true,
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var (
		cfgFile    string
		targetFlag string
		logCloser  io.Closer
	)

	rootCmd := &cobra.Command{
		Use:   "vendorperf",
		Short: "vendorperf - vendor performance ETL",
		Long: `vendorperf loads inventory CSV extracts into an analytical store and builds
the vendor_sales_summary table: purchases, sales and freight per vendor,
brand and price, with gross profit, profit margin, stock turnover and
sales-to-purchase ratio.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipSetup[cmd.Name()] {
				return nil
			}

			cfg, err := config.LoadConfigWithTarget(cfgFile, targetFlag, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			opts := cfg.Log.Options()
			if cfg.Verbose {
				opts.Echo = cmd.ErrOrStderr()
			}
			logger, closer, err := openLog(opts)
			if err != nil {
				return err
			}
			logCloser = closer

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				"command", cmd.Name(),
				"config_file", config.GetConfigFileUsed(),
				"env_file", config.GetEnvFileUsed(),
				"target", cfg.Target.Type,
				"input_dir", cfg.InputDir,
			)

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", configFile)
				}
				if targetFlag != "" {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Using target: %s\n", targetFlag)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./vendorperf.yaml)")
	rootCmd.PersistentFlags().StringVarP(&targetFlag, "target", "t", "", "Environment whose target to use (e.g., dev, prod)")
	rootCmd.PersistentFlags().String("input-dir", "", "Directory holding the CSV extracts")
	rootCmd.PersistentFlags().String("database", "", "Store database (file path, :memory:, or database name)")
	rootCmd.PersistentFlags().String("state", "", "Path to run history database")
	rootCmd.PersistentFlags().String("log-dir", "", "Directory of the log file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Also print log records to stderr")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json|csv)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return output.Modes(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit, BuildDate))
	rootCmd.AddCommand(commands.NewIngestCommand())
	rootCmd.AddCommand(commands.NewSummarizeCommand())
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewRunsCommand())
	rootCmd.AddCommand(commands.NewShowCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	// cobra skips post-run hooks when RunE fails, so the log is closed
	// around each RunE instead.
	closeLog := func() error {
		if logCloser == nil {
			return nil
		}
		err := logCloser.Close()
		logCloser = nil
		return err
	}
	for _, sub := range rootCmd.Commands() {
		if sub.RunE == nil {
			continue
		}
		run := sub.RunE
		sub.RunE = func(cmd *cobra.Command, args []string) error {
			err := run(cmd, args)
			return errors.Join(err, closeLog())
		}
	}

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for vendorperf.

To load completions:

Bash:
  $ source <(vendorperf completion bash)

Zsh:
  $ vendorperf completion zsh > "${fpath[1]}/_vendorperf"

Fish:
  $ vendorperf completion fish | source

PowerShell:
  PS> vendorperf completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
