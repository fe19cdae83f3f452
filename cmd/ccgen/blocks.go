package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/matthewbaird/chaincodegen/internal/codegen"
	"github.com/matthewbaird/chaincodegen/internal/project"
)

func (a *app) blocksCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "blocks",
		Short:   "List the block palette",
		GroupID: "system",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"categories": project.Categories,
					"blocks":     project.Catalog,
				})
			}
			groups := project.ByCategory()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tEMITS")
			for _, c := range project.Categories {
				for _, b := range groups[c.ID] {
					emits := "stub"
					if b.Kind() != codegen.KindUnknown {
						emits = b.Kind().String()
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.ID, b.Name, c.Name, emits)
				}
			}
			return w.Flush()
		},
	}
}
