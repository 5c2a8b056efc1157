package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/astdiff/service"
)

// NewListCmd creates the command listing matchers and languages
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List matching strategies and supported languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := service.NewDiffService(nil)
			heading := color.New(color.Bold)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			heading.Fprintln(w, "Matchers:")
			for _, s := range svc.Matchers().Strategies() {
				fmt.Fprintf(w, "  %s\t%s\n", s.Name, s.Description)
			}
			fmt.Fprintln(w)

			heading.Fprintln(w, "Languages:")
			for _, name := range svc.Generators().Names() {
				g, err := svc.Generators().Get(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "  %s\t%s\n", name, strings.Join(g.Patterns(), ", "))
			}
			return w.Flush()
		},
	}
}
