package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/astdiff/app"
	"github.com/ludo-technologies/astdiff/service"
)

// DiffCommand represents the file diff command
type DiffCommand struct {
	diffFlags
}

// NewDiffCommand creates a new diff command
func NewDiffCommand() *DiffCommand {
	return &DiffCommand{}
}

// CreateCobraCommand creates the cobra command for diffing two files
func (c *DiffCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <source> <target>",
		Short: "Diff the syntax trees of two files",
		Long: `Diff the syntax trees of two files and print the edit script.

The front-end is picked from the source file name, falling back to the
target file name; use --language to force one.

Exit codes:
  0: success (with --exit-code: no changes)
  1: with --exit-code, the files differ
  2: the diff failed (missing files, syntax errors, bad options)

Examples:
  # Text report
  astdiff diff old.py new.py

  # Thorough matching with the node classification
  astdiff diff --matcher gumtree-complete --classify old.js new.js

  # JSON report written to a file
  astdiff diff --json -o diff.json old.go new.go`,
		Args: cobra.ExactArgs(2),
		RunE: c.run,
	}
	c.bind(cmd)
	return cmd
}

func (c *DiffCommand) run(cmd *cobra.Command, args []string) error {
	for _, p := range args {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("cannot access %s: %w", p, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory; use astdiff dir to compare directories", p)
		}
	}

	req, err := c.request(cmd)
	if err != nil {
		return err
	}
	req.SourcePath = args[0]
	req.TargetPath = args[1]

	useCase, err := app.NewDiffUseCaseBuilder().
		WithService(service.NewDiffService(newLogger(cmd))).
		WithConfigLoader(newConfigLoader(cmd)).
		Build()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	response, err := useCase.Execute(ctx, *req)
	if err != nil {
		return err
	}
	if c.exitCode && response.Summary.HasChanges() {
		return errChangesFound
	}
	return nil
}

// NewDiffCmd creates and returns the diff cobra command
func NewDiffCmd() *cobra.Command {
	return NewDiffCommand().CreateCobraCommand()
}
