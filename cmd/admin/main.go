package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tendant/media-catalog/internal/logging"
	"github.com/tendant/media-catalog/pkg/catalog"
	"github.com/tendant/media-catalog/pkg/catalog/config"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	var envFile string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "admin",
		Short: "Media Catalog Admin CLI",
		Long: `Media Catalog Admin CLI

Provisions users, issues bearer tokens and inspects the catalog directly
against the configured database (DATABASE_URL, DB_SCHEMA, MONGO_DATABASE).
Tokens are signed with JWT_SECRET.

Configuration can be loaded from a .env file in the current directory.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "read configuration keys from this file before the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log service activity to stderr")

	rootCmd.AddCommand(NewMigrateCommand())
	rootCmd.AddCommand(NewCreateUserCommand())
	rootCmd.AddCommand(NewTokenCommand())
	rootCmd.AddCommand(NewListContentCommand())
	rootCmd.AddCommand(NewStatsCommand())

	return rootCmd
}

// loadConfig applies --env-file and then the process environment
func loadConfig(cmd *cobra.Command) (*config.ServerConfig, error) {
	opts := []config.Option{config.WithEventLogging(false)}
	if envFile, _ := cmd.Flags().GetString("env-file"); envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	opts = append(opts, config.WithEnv())
	return config.Load(opts...)
}

func buildService(ctx context.Context, cmd *cobra.Command, cfg *config.ServerConfig) (catalog.Service, func(), error) {
	level := "warn"
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{
		Level:       level,
		Format:      "text",
		Environment: cfg.Environment,
		Output:      cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg.BuildService(ctx, logger)
}
