package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/determined-ai/trainconf/pkg/logger"
	"github.com/determined-ai/trainconf/version"
)

// cli carries the tool configuration from the root command to its subcommands.
type cli struct {
	v      *viper.Viper
	config *toolConfig
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}
	rootCmd := &cobra.Command{
		Use:           "trainconf",
		Short:         "Validate, inspect and sweep image classification training configs",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config, err := initializeConfig(c.v)
			if err != nil {
				return err
			}
			if err := applyFlagOverrides(config, cmd.Flags()); err != nil {
				return err
			}
			c.config = config
			logger.SetLogrus(config.Log)
			logger.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}
	registerConfig(c.v, rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		c.newValidateCmd(),
		c.newShowCmd(),
		c.newDiffCmd(),
		c.newSweepCmd(),
		c.newSummarizeCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Version)
		},
	}
}
