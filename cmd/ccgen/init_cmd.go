package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matthewbaird/chaincodegen/internal/idgen"
	"github.com/matthewbaird/chaincodegen/internal/project"
	"github.com/matthewbaird/chaincodegen/internal/seed"
)

func (a *app) initCmd() *cobra.Command {
	var (
		sample string
		name   string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "init <file>",
		Short: "Write a new project file",
		Long: `Init writes an empty project, or one of the sample projects with --sample,
in the format given by the file extension (.json, .yaml/.yml or .cue).`,
		GroupID: "projects",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			p := project.New()
			if sample != "" {
				s, ok := findSample(sample)
				if !ok {
					return fmt.Errorf("unknown sample %q (have %s)", sample, sampleNames())
				}
				var err error
				if p, err = s.Build(idgen.Nanoid{}); err != nil {
					return err
				}
			}
			if name != "" {
				p.Name = name
			}

			data, err := project.Encode(p, project.FormatFromPath(path))
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s v%s, %d blocks)\n", path, p.Name, p.Version, len(p.Canvas))
			return nil
		},
	}
	cmd.Flags().StringVar(&sample, "sample", "", "start from a sample project ("+sampleNames()+")")
	cmd.Flags().StringVar(&name, "name", "", "chaincode name")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func findSample(name string) (seed.Sample, bool) {
	for _, s := range seed.Samples {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return seed.Sample{}, false
}

func sampleNames() string {
	names := make([]string, len(seed.Samples))
	for i, s := range seed.Samples {
		names[i] = s.Name
	}
	return strings.Join(names, ", ")
}
