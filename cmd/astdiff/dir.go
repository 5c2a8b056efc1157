package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/astdiff/app"
	"github.com/ludo-technologies/astdiff/domain"
	"github.com/ludo-technologies/astdiff/internal/config"
	"github.com/ludo-technologies/astdiff/service"
)

// DirCommand represents the directory diff command
type DirCommand struct {
	diffFlags

	recursive       bool
	includePatterns []string
	excludePatterns []string
	workers         int
	timeout         int
	noProgress      bool
}

// NewDirCommand creates a new dir command
func NewDirCommand() *DirCommand {
	return &DirCommand{}
}

// CreateCobraCommand creates the cobra command for diffing two directories
func (c *DirCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dir <source-dir> <target-dir>",
		Short: "Diff every file two directories have in common",
		Long: `Pair files by relative path and diff each pair's syntax trees.

Files present on one side only are reported as added or deleted. Without
--include, only files a front-end recognizes are compared (see astdiff list).

Examples:
  astdiff dir v1/ v2/
  astdiff dir --include "**/*.py" --exclude "tests/**" old/ new/
  astdiff dir --json --workers 8 before/ after/ > diff.json`,
		Args: cobra.ExactArgs(2),
		RunE: c.run,
	}
	c.bind(cmd)

	flags := cmd.Flags()
	flags.BoolVarP(&c.recursive, config.FlagRecursive, "r", true, "Descend into subdirectories")
	flags.StringSliceVar(&c.includePatterns, config.FlagInclude, nil, "Doublestar patterns of files to compare")
	flags.StringSliceVar(&c.excludePatterns, config.FlagExclude, domain.DefaultExcludePatterns, "Doublestar patterns of files and directories to skip")
	flags.IntVarP(&c.workers, config.FlagWorkers, "j", domain.DefaultMaxGoroutines, "Number of files diffed in parallel")
	flags.IntVar(&c.timeout, config.FlagTimeout, domain.DefaultTimeoutSeconds, "Overall timeout in seconds (0 disables it)")
	flags.BoolVar(&c.noProgress, "no-progress", false, "Hide the progress bar")
	return cmd
}

func (c *DirCommand) run(cmd *cobra.Command, args []string) error {
	diffReq, err := c.request(cmd)
	if err != nil {
		return err
	}

	svc := service.NewDiffService(newLogger(cmd))

	req := domain.DirDiffRequest{
		SourceDir:       args[0],
		TargetDir:       args[1],
		Recursive:       c.recursive,
		IncludePatterns: c.includePatterns,
		ExcludePatterns: c.excludePatterns,
		Diff:            *diffReq,
		MaxGoroutines:   c.workers,
		Timeout:         time.Duration(c.timeout) * time.Second,
		ShowProgress:    !c.noProgress,
	}

	progress := service.NewProgressManager("Diffing files")
	progress.SetWriter(cmd.ErrOrStderr())

	useCase, err := app.NewDirDiffUseCaseBuilder().
		WithService(svc).
		WithComparator(service.NewDirectoryComparator(service.NewFileReader())).
		WithConfigLoader(newConfigLoader(cmd)).
		WithProgressManager(progress).
		WithDefaultIncludePatterns(svc.Generators().Patterns()).
		Build()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	response, err := useCase.Execute(ctx, req)
	if err != nil {
		return err
	}
	s := response.Summary
	if c.exitCode && (s.FilesChanged+s.FilesAdded+s.FilesDeleted+s.FilesFailed) > 0 {
		return errChangesFound
	}
	return nil
}

// NewDirCmd creates and returns the dir cobra command
func NewDirCmd() *cobra.Command {
	return NewDirCommand().CreateCobraCommand()
}
