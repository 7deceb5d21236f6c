package main

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/determined-ai/trainconf/pkg/loader"
	"github.com/determined-ai/trainconf/pkg/logger"
)

func (c *cli) newShowCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Print the resolved config and its aux configs as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.config.loaderOptions()
			if err != nil {
				return err
			}
			bundle, err := loader.Load(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			if output != "" {
				if err := loader.SaveFile(output, bundle.Config); err != nil {
					return err
				}
				logger.Context{"file": output}.Entry().Info("wrote resolved config")
				return nil
			}

			out := cmd.OutOrStdout()
			return bundle.Walk(func(b *loader.Bundle, depth int) error {
				fmt.Fprintf(out, "---\n# %s (depth %d)\n", b.Path, depth)
				return loader.Save(out, b.Config)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "",
		"write the resolved primary config to this file instead")
	return cmd
}

func (c *cli) newDiffCmd() *cobra.Command {
	var exitCode bool
	cmd := &cobra.Command{
		Use:   "diff A B",
		Short: "Show the differences between two resolved configs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.config.loaderOptions()
			if err != nil {
				return err
			}
			l := loader.New(opts)
			a, err := l.LoadConfig(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			b, err := l.LoadConfig(cmd.Context(), args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			diff := cmp.Diff(a, b)
			if diff == "" {
				fmt.Fprintln(out, "configs are identical")
				return nil
			}
			fmt.Fprint(out, diff)
			if exitCode {
				return errors.Errorf("%s and %s differ", args[0], args[1])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "fail when the configs differ")
	return cmd
}
