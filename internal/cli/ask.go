package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ent0n29/talentscout/internal/config"
	"github.com/ent0n29/talentscout/internal/generation"
)

func newAskCmd() *cobra.Command {
	var (
		provider    string
		model       string
		temperature float64
		maxTokens   int
	)

	cmd := &cobra.Command{
		Use:   `ask "<tech stack>"`,
		Short: "Generate interview questions for a tech stack once and print them",
		Long: `Run the same single generation call the web flow makes, using the
configured provider and the given tuning settings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			techStack := args[0]
			if strings.TrimSpace(techStack) == "" {
				return errors.New("tech stack must not be empty")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if provider != "" {
				cfg.LLMProvider = strings.ToLower(provider)
			}

			limits := cfg.Limits()
			settings := generation.SettingsPatch{}
			if cmd.Flags().Changed("model") {
				settings.Model = &model
			}
			if cmd.Flags().Changed("temperature") {
				settings.Temperature = &temperature
			}
			if cmd.Flags().Changed("max-tokens") {
				settings.MaxTokens = &maxTokens
			}
			chosen := settings.Apply(limits.Defaults)
			if err := limits.Validate(chosen); err != nil {
				return err
			}

			gen, err := generation.NewGenerator(cmd.Context(), cfg.Generation())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.GenerationTimeout)
			defer cancel()
			questions, err := generation.Questions(ctx, gen, techStack, chosen)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), questions)
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider: auto|gemini|openai|mock (overrides LLM_PROVIDER)")
	cmd.Flags().StringVar(&model, "model", "", "Model name from LLM_MODELS")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "Sampling temperature (0.0-1.0)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Maximum response tokens (50-300)")
	return cmd
}
