package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"banortesmart/backend/internal/assistant"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask Maya one question",
	Long: `Runs one assistant turn against the loaded datasets. The generative provider is used
when GEMINI_API_KEY is set; otherwise, or when the provider fails, the rule table answers.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	var generator assistant.Generator
	if cfg.AIEnabled() {
		generator = assistant.NewGeminiClient(cfg)
	}
	controller := assistant.NewController(catalog, generator, time.Duration(cfg.AITimeoutSeconds)*time.Second)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	answer, err := controller.Reply(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s\n", assistant.PersonaName, answer.Text)
	if answer.Rule != "" {
		fmt.Fprintf(out, "[%s/%s]\n", answer.Source, answer.Rule)
	} else {
		fmt.Fprintf(out, "[%s/%s]\n", answer.Source, answer.Model)
	}
	return nil
}
