package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/determined-ai/trainconf/internal/results"
	"github.com/determined-ai/trainconf/internal/sweep"
)

func (c *cli) newSweepCmd() *cobra.Command {
	var (
		opts     sweep.Options
		runOpts  sweep.RunOptions
		noLaunch bool
	)
	cmd := &cobra.Command{
		Use:   "sweep BASE",
		Short: "Derive a config per benchmark dataset from BASE and train on each",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loadOpts, err := c.config.loaderOptions()
			if err != nil {
				return err
			}
			// The default skip list does not apply to datasets named with --only.
			if len(opts.Only) > 0 && !cmd.Flags().Changed("skip") {
				opts.Skip = nil
			}
			if noLaunch {
				runOpts.Command = ""
			}
			manifest, err := sweep.FromFile(cmd.Context(), args[0], loadOpts, opts, runOpts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sweep %s (%s): %d configs in %s\n",
				manifest.Name, manifest.ID, len(manifest.Jobs), runOpts.OutDir)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.DataRoot, "data-root", ".", "directory holding the datasets")
	flags.StringSliceVar(&opts.Only, "only", nil, "sweep only these datasets")
	flags.StringSliceVar(&opts.Skip, "skip", sweep.DefaultSkip,
		"datasets to leave out; the default list is ignored when --only is given")
	flags.BoolVar(&opts.UseHardcodedLR, "use-hardcoded-lr", false,
		"disable the lr finder and use each dataset's tuned learning rate")
	flags.BoolVar(&opts.ApplySchedule, "apply-schedule", false,
		"take max_epoch and batch_size from each dataset")
	flags.StringVar(&runOpts.OutDir, "out-dir", "sweep", "where configs and the manifest go")
	flags.StringVar(&runOpts.Name, "name", "", "name of the sweep, generated when empty")
	flags.StringVar(&runOpts.Command, "command", sweep.DefaultCommand,
		"trainer command template, with sprig functions")
	flags.BoolVar(&noLaunch, "no-launch", false, "only write the configs and the manifest")
	flags.IntVar(&runOpts.GPUs, "gpus", 1, "GPUs per trainer")
	flags.IntVar(&runOpts.Parallel, "parallel", 1, "trainers running at once")
	return cmd
}

func (c *cli) newSummarizeCmd() *cobra.Command {
	var (
		datasets    []string
		appendToLog bool
	)
	cmd := &cobra.Command{
		Use:   "summarize LOG",
		Short: "Summarize the best result of each dataset from a combined training log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := results.SummarizeFile(args[0], datasets, appendToLog)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary.String())
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&datasets, "datasets", sweep.PresetNames(),
		"datasets to report, in any order")
	cmd.Flags().BoolVar(&appendToLog, "append", false, "append the summary to the log")
	return cmd
}
