// Package cli defines the cobra commands for the talentscout binary.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ent0n29/talentscout/internal/config"
)

var version = "dev" // set via ldflags at build time

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "talentscout",
		Short: "Hiring assistant that screens candidates and asks technical questions",
		Long: `TalentScout walks a candidate through a short intake form, asks for
their tech stack and generates 3 to 5 technical interview questions
with a single LLM call.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile == "" {
				return config.LoadDotEnv()
			}
			return config.LoadDotEnv(envFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "Read environment defaults from this file (default .env)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newAskCmd())
	return root
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
