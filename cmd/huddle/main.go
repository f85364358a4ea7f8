package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xaenox/huddle-bot/pkg/config"
	"go.uber.org/zap"
)

type cli struct {
	configPath string
	debug      bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "huddle",
		Short: "Team chat with message intelligence",
		Long: `huddle is a chat workspace that classifies every message for tasks,
follow-ups, decisions and meetings, and lets you promote what it finds
into tracked lists.

Run it as a Telegram bot, as a JSON HTTP API, or classify a single message.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "development logging at debug level")

	root.AddCommand(
		&cobra.Command{
			Use:   "bot",
			Short: "Run the Telegram bot",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.runBot(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "api",
			Short: "Serve the HTTP API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.runAPI(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "classify [text]",
			Short: "Classify one message with the configured provider and print the result",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.runClassify(cmd.Context(), cmd.OutOrStdout(), args)
			},
		},
	)
	return root
}

func (c *cli) setup() error {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	c.cfg = cfg

	if c.debug {
		c.logger, err = zap.NewDevelopment()
	} else {
		c.logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
