package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/astdiff/internal/config"
)

// InitCommand represents the init command
type InitCommand struct {
	force      bool
	configPath string
}

// NewInitCommand creates a new init command
func NewInitCommand() *InitCommand {
	return &InitCommand{configPath: config.ConfigFileName}
}

// CreateCobraCommand creates the cobra command for configuration initialization
func (i *InitCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an .astdiff.toml with the default settings",
		Long: `Create an .astdiff.toml in the current directory.

The file lists every setting with its default value and a short comment.
astdiff picks it up from the directory of the compared files or any parent.

Examples:
  astdiff init
  astdiff init --force
  astdiff init --path ci/astdiff.toml`,
		Args: cobra.NoArgs,
		RunE: i.runInit,
	}

	cmd.Flags().BoolVarP(&i.force, "force", "f", false, "Overwrite an existing configuration file")
	cmd.Flags().StringVarP(&i.configPath, "path", "p", config.ConfigFileName, "Where to write the configuration file")
	return cmd
}

func (i *InitCommand) runInit(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(i.configPath)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}
	if err := config.WriteDefaultConfig(path, i.force); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", path)
	return nil
}

// NewInitCmd creates and returns the init cobra command
func NewInitCmd() *cobra.Command {
	return NewInitCommand().CreateCobraCommand()
}
