package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/astdiff/internal/version"
	"github.com/ludo-technologies/astdiff/service"
)

// Exit codes follow diff(1)
const (
	exitOK      = 0
	exitChanges = 1
	exitFailure = 2
)

// errChangesFound is returned by diff commands run with --exit-code when
// the inputs differ
var errChangesFound = errors.New("changes found")

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "astdiff",
		Short: "Structural diff for source code and data files",
		Long: `astdiff compares two files by their syntax trees instead of their lines.

It maps unchanged subtrees between the two versions and reports the edit
script that turns one into the other: inserted, deleted, updated and
moved nodes. Python, JavaScript, Go, YAML and JSON are supported.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file path (default: nearest .astdiff.toml)")

	rootCmd.AddCommand(NewDiffCmd())
	rootCmd.AddCommand(NewDirCmd())
	rootCmd.AddCommand(NewListCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func main() {
	os.Exit(run(NewRootCmd(), os.Args[1:], os.Stderr))
}

// run executes the command tree and maps the outcome to an exit code
func run(rootCmd *cobra.Command, args []string, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return exitOK
	}
	if errors.Is(err, errChangesFound) {
		return exitChanges
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	if cmd == nil {
		cmd = rootCmd
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		categorizer := service.NewErrorCategorizer()
		categorized := categorizer.Categorize(err)
		fmt.Fprintf(stderr, "\n%s: %s\n", categorized.Category, categorized.Message)
		for _, s := range categorizer.GetRecoverySuggestions(categorized.Category) {
			fmt.Fprintf(stderr, "  - %s\n", s)
		}
	}
	return exitFailure
}
