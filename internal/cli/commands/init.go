package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/vendorperf/internal/cli/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default vendorperf.yaml",
		Long: `Initialize a vendorperf project.

This creates:
  - vendorperf.yaml with the default settings
  - data/ directory for the source CSV extracts`,
		Example: `  # Initialize in current directory
  vendorperf init

  # Initialize in a new directory
  vendorperf init my-project

  # Force overwrite existing config
  vendorperf init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			cc := NewCommandContextWithoutPipeline(cmd)
			return runInit(cc, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(cc *CommandContext, dir string, force bool) error {
	r := cc.Renderer

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, config.DefaultFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.DefaultFileName)
	}

	content, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(configPath, content, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	r.StatusLine(config.DefaultFileName, "success", "")

	dataDir := filepath.Join(dir, config.DefaultInputDir)
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dataDir, err)
	}
	r.StatusLine(config.DefaultInputDir+"/", "success", "")

	r.Println()
	r.Success("vendorperf project initialized!")
	r.Muted("Copy the purchases, purchase_prices, sales and vendor_invoice CSV extracts into " + dataDir + " and run `vendorperf run`.")
	return nil
}
