package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matthewbaird/chaincodegen/internal/codegen"
	"github.com/matthewbaird/chaincodegen/internal/project"
)

var errInvalid = errors.New("project is not valid")

func (a *app) validateCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:     "validate <project>",
		Short:   "Check a project file and list generator diagnostics",
		GroupID: "projects",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.LoadFile(args[0])
			if err != nil {
				return err
			}
			var problems []string
			if err := p.Validate(); err != nil {
				problems = strings.Split(err.Error(), "\n")
			}
			res := p.Generate()

			if a.jsonOutput {
				diags := res.Diagnostics
				if diags == nil {
					diags = []codegen.Diagnostic{}
				}
				if err := printJSON(cmd.OutOrStdout(), map[string]any{
					"valid":       len(problems) == 0,
					"errors":      problems,
					"asset_type":  res.AssetType,
					"diagnostics": diags,
				}); err != nil {
					return err
				}
			} else {
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "%s v%s: %d blocks, %d fields, asset type %s\n",
					p.Name, p.Version, len(p.Canvas), len(p.AssetFields), res.AssetType)
				for _, msg := range problems {
					fmt.Fprintf(w, "  error: %s\n", msg)
				}
				for _, d := range res.Diagnostics {
					where := ""
					if d.InstanceID != "" {
						where = " [" + d.InstanceID + "]"
					}
					fmt.Fprintf(w, "  %s%s: %s\n", d.Code, where, d.Message)
				}
				if len(problems) == 0 && len(res.Diagnostics) == 0 {
					fmt.Fprintln(w, "  ok")
				}
			}

			if len(problems) > 0 || (strict && len(res.Diagnostics) > 0) {
				return errInvalid
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat diagnostics as errors")
	return cmd
}
