// Package commands defines the orc command line interface.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tmarsden/orc/internal/agent"
	"github.com/tmarsden/orc/internal/config"
	"github.com/tmarsden/orc/internal/llm"
	"github.com/tmarsden/orc/internal/version"
)

var (
	configPath    string
	flagModel     string
	flagCustomURL string
	flagMaxTokens int
	flagMaxIter   int
	flagTools     []string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "orc [flags] PROMPT",
	Short: "Run a tool-calling agent loop against a prompt",
	Long: `orc sends a prompt to an Anthropic model together with a set of local
tools, executes the tool calls the model requests, and keeps going until the
model produces a final answer or the iteration bound is reached.

The ANTHROPIC_API_KEY environment variable must be set.`,
	Version:      version.Get(),
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cfg, err := buildAgent(cmd)
		if err != nil {
			return err
		}

		result, err := a.Run(cmd.Context(), agent.Request{
			Prompt:        strings.Join(args, " "),
			MaxTokens:     cfg.MaxTokens,
			MaxIterations: cfg.MaxIterations,
			ToolNames:     cfg.Tools,
		})
		if err != nil {
			return err
		}

		for _, line := range result.ToolCallAudit {
			fmt.Fprintln(cmd.ErrOrStderr(), line)
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.FinalAnswer)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to the config file (default orc.yaml)")
	flags.StringVar(&flagModel, "model", "", "model to sample from")
	flags.StringVar(&flagCustomURL, "custom-url", "", "custom provider base URL")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.Flags().IntVar(&flagMaxTokens, "max-tokens", 0, "maximum tokens per sampling round trip")
	rootCmd.Flags().IntVar(&flagMaxIter, "max-iterations", 0, "maximum number of sampling round trips")
	rootCmd.Flags().StringSliceVar(&flagTools, "tools", nil, "tools offered to the model")
}

// loadConfig merges the config file with flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("model") {
		cfg.Model = flagModel
	}
	if cmd.Flags().Changed("custom-url") {
		cfg.BaseURL = flagCustomURL
	}
	if cmd.Flags().Changed("max-tokens") {
		cfg.MaxTokens = flagMaxTokens
	}
	if cmd.Flags().Changed("max-iterations") {
		cfg.MaxIterations = flagMaxIter
	}
	if cmd.Flags().Changed("tools") {
		cfg.Tools = flagTools
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildAgent assembles the provider and agent from the merged config.
func buildAgent(cmd *cobra.Command) (*agent.Agent, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}

	a := agent.New(agent.Config{
		Provider:    llm.NewAnthropicProvider(apiKey, cfg.BaseURL),
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
	})
	return a, cfg, nil
}

// Execute runs the CLI, cancelling on SIGINT and SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
