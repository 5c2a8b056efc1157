package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/astdiff/internal/version"
	"github.com/ludo-technologies/astdiff/service"
)

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	var short, asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the astdiff version, build commit, build date, Go version and platform.

Examples:
  astdiff version
  astdiff version --short
  astdiff version --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case asJSON:
				return service.WriteJSON(cmd.OutOrStdout(), version.Get())
			case short:
				fmt.Fprintln(cmd.OutOrStdout(), version.Short())
			default:
				fmt.Fprintln(cmd.OutOrStdout(), version.Info())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Show only the version number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print build information as JSON")
	return cmd
}
