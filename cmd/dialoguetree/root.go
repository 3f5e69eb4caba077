package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/dialoguetree/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "dialoguetree",
	Short:         "dialoguetree compiles and plays branching dialogue graphs",
	Long:          `dialoguetree validates dialogue graphs written in YAML, JSON or Markdown frontmatter, draws them as Mermaid flowcharts and plays them in the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("dir", ".", "Directory containing the dialogue graphs")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	flags.String("store", cli.StoreFile, "Save store (file, memory, redis, sqlite)")
	flags.String("save-dir", "", "Directory of the file store (default <dir>/.dialoguetree/saves)")
	flags.String("format", "", "Save encoding (json, msgpack, msgpack+zstd, json+zstd)")
	flags.String("redis-addr", "localhost:6379", "Redis address for --store redis")
	flags.String("sqlite-path", "", "Database file for --store sqlite (default <dir>/.dialoguetree/saves.db)")
	flags.StringSlice("exclude-speakers", nil, "Regular expressions of speaker IDs whose records are never saved")
}

func configFrom(cmd *cobra.Command) cli.Config {
	flags := cmd.Flags()
	get := func(name string) string {
		v, _ := flags.GetString(name)
		return v
	}
	cfg := cli.Config{
		Dir:        get("dir"),
		LogLevel:   get("log-level"),
		LogFormat:  get("log-format"),
		Store:      get("store"),
		SaveDir:    get("save-dir"),
		Format:     get("format"),
		RedisAddr:  get("redis-addr"),
		SQLitePath: get("sqlite-path"),
	}
	cfg.ExcludeSpeakers, _ = flags.GetStringSlice("exclude-speakers")
	return cfg
}

func openProject(cmd *cobra.Command) (*cli.Project, error) {
	cfg := configFrom(cmd)
	logger, err := cfg.Logger()
	if err != nil {
		return nil, err
	}
	return cli.OpenProject(cfg, logger)
}
