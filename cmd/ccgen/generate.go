package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matthewbaird/chaincodegen/internal/artifact"
	"github.com/matthewbaird/chaincodegen/internal/event"
	"github.com/matthewbaird/chaincodegen/internal/eventbus"
	"github.com/matthewbaird/chaincodegen/internal/pipeline"
	"github.com/matthewbaird/chaincodegen/internal/project"
)

// natsRecorder publishes events straight to NATS; the CLI keeps no
// activity store.
type natsRecorder struct{ *eventbus.NATSConsumer }

func (r natsRecorder) Record(ctx context.Context, evt event.DomainEvent) error {
	return r.HandleEvent(ctx, evt)
}

func (a *app) generateCmd() *cobra.Command {
	var (
		output      string
		gofmt       bool
		diagnostics bool
		publish     bool
		strict      bool
	)
	cmd := &cobra.Command{
		Use:   "generate <project>",
		Short: "Generate chaincode source from a project file",
		Long: `Generate reads a project file (.json, .yaml/.yml or .cue) and writes the
generated Go chaincode to stdout, or to the file named by --output. With
--output set to a directory the file is named after the chaincode.`,
		GroupID: "projects",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := project.LoadFile(args[0])
			if err != nil {
				return err
			}

			pl := &pipeline.Pipeline{Gofmt: a.cfg.Generate.Gofmt, Prefix: a.cfg.Artifacts.Prefix}
			if cmd.Flags().Changed("gofmt") {
				pl.Gofmt = gofmt
			}
			if publish {
				if pl.Sinks, err = artifact.FromConfig(ctx, a.cfg.Artifacts); err != nil {
					return err
				}
				if len(pl.Sinks) == 0 {
					return fmt.Errorf("--publish needs an artifact dir or S3 bucket in the config")
				}
				if a.cfg.Events.NATSURL != "" {
					nc, err := eventbus.NewNATSConsumer(a.cfg.Events.NATSURL)
					if err != nil {
						return err
					}
					defer nc.Close()
					pl.Recorder = natsRecorder{nc}
				}
			}

			// Output is written even when publishing fails.
			out, publishErr := pl.Run(ctx, p)

			if a.jsonOutput {
				if err := printJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			} else if err := writeOutput(cmd, output, out); err != nil {
				return err
			}

			if diagnostics || strict {
				for _, d := range out.Diagnostics {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", d.Code, d.Message)
				}
				if out.FormatError != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "gofmt: %s\n", out.FormatError)
				}
			}
			for _, loc := range out.Artifacts {
				fmt.Fprintf(cmd.ErrOrStderr(), "published %s\n", loc)
			}
			if publishErr != nil {
				return publishErr
			}
			if strict {
				if out.FormatError != "" {
					return fmt.Errorf("generated source does not parse: %s", out.FormatError)
				}
				if len(out.Diagnostics) > 0 {
					return fmt.Errorf("%d diagnostics", len(out.Diagnostics))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file or directory instead of stdout")
	cmd.Flags().BoolVar(&gofmt, "gofmt", false, "run go/format over the generated source")
	cmd.Flags().BoolVar(&diagnostics, "diagnostics", false, "print diagnostics to stderr")
	cmd.Flags().BoolVar(&publish, "publish", false, "publish the source to the configured artifact sinks")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on diagnostics or when --gofmt cannot parse the source")
	return cmd
}

func writeOutput(cmd *cobra.Command, output string, out *pipeline.Output) error {
	if output == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), out.Source)
		return err
	}
	if fi, err := os.Stat(output); err == nil && fi.IsDir() {
		output = filepath.Join(output, out.FileName)
	}
	if err := os.WriteFile(output, []byte(out.Source), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
	return nil
}
