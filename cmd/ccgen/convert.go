package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matthewbaird/chaincodegen/internal/project"
)

func (a *app) convertCmd() *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:     "convert <project>",
		Short:   "Re-encode a project file as JSON, YAML or CUE",
		GroupID: "projects",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.LoadFile(args[0])
			if err != nil {
				return err
			}
			f := project.FormatJSON
			switch {
			case format != "":
				if f, err = project.ParseFormat(format); err != nil {
					return err
				}
			case output != "":
				f = project.FormatFromPath(output)
			}
			data, err := project.Encode(p, f)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, yaml or cue (default from --output, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}
