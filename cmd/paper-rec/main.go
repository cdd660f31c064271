// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-rec CLI.
// It wires configuration, logging, the recommendation fetcher and the
// conversation state store behind cobra subcommands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-rec/internal/httputil"
	"github.com/pdiddy/paper-rec/internal/recommend"
	"github.com/pdiddy/paper-rec/internal/state"
	"github.com/pdiddy/paper-rec/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfg    types.Config
	logger *slog.Logger
)

// rootCmd is the base command for the paper-rec CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-rec",
	Short: "Semantic Scholar single-paper recommendations for research agents",
	Long: `paper-rec fetches papers similar to a given Semantic Scholar paper ID,
keeps the ones with a title and authors, and renders them as a table.

Results are written to stdout and recorded as conversation state (the
"papers" slot plus a tool message tagged with the call ID) so an agent
orchestrator can pick them up.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger = newLogger(cfg.Log, verbose)
		logger.Debug("configuration loaded",
			"config_file", viper.ConfigFileUsed(),
			"base_url", cfg.Recommend.BaseURL,
			"timeout", cfg.Recommend.Timeout,
			"state_dir", cfg.State.Dir,
		)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-rec.yaml or ~/.config/paper-rec/paper-rec.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().String("state-dir", "", "directory holding the conversation state database (default .paper-rec)")
	rootCmd.PersistentFlags().String("conversation", "", "conversation whose state is updated (default \"default\")")

	_ = viper.BindPFlag("state.dir", rootCmd.PersistentFlags().Lookup("state-dir"))
	_ = viper.BindPFlag("state.conversation", rootCmd.PersistentFlags().Lookup("conversation"))

	setDefaults(viper.GetViper())
}

// setDefaults registers every configuration key so that environment
// variables and Unmarshal see it even without a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("recommend.base_url", "https://api.semanticscholar.org")
	v.SetDefault("recommend.timeout", recommend.DefaultTimeout)
	v.SetDefault("recommend.user_agent", httputil.UserAgent)
	v.SetDefault("recommend.limit", recommend.DefaultLimit)
	v.SetDefault("state.dir", ".paper-rec")
	v.SetDefault("state.conversation", state.DefaultConversation)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-rec")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-rec"))
		}
	}

	viper.SetEnvPrefix("PAPER_REC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger from configuration. verbose forces
// debug level.
func newLogger(lc types.LogConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(lc.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
