package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xaenox/huddle-bot/internal/bot"
	"github.com/xaenox/huddle-bot/internal/classifier"
	"github.com/xaenox/huddle-bot/internal/httpapi"
	"github.com/xaenox/huddle-bot/internal/models"
	"github.com/xaenox/huddle-bot/internal/storage"
	"github.com/xaenox/huddle-bot/internal/workspace"
	"github.com/xaenox/huddle-bot/pkg/config"
	"go.uber.org/zap"
)

func newGateway(ctx context.Context, cfg *config.Config, logger *zap.Logger) (classifier.Gateway, error) {
	switch cfg.Classifier.Provider {
	case config.ProviderKeyword:
		return classifier.NewKeywordClassifier(), nil
	case config.ProviderAgent:
		client := &http.Client{Timeout: cfg.Classifier.Timeout}
		return classifier.NewAgentClient(cfg.Agent.Endpoint, cfg.Agent.APIKey, client, logger), nil
	case config.ProviderOpenAI:
		return classifier.NewGPTClassifier(
			cfg.OpenAI.APIKey,
			cfg.OpenAI.BaseURL,
			cfg.OpenAI.Model,
			cfg.OpenAI.MaxTokens,
			cfg.OpenAI.Temperature,
			logger,
		), nil
	case config.ProviderGemini:
		return classifier.NewGeminiClassifier(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Temperature, logger)
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Classifier.Provider)
	}
}

func newStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		return storage.NewMemoryStorage(), nil
	}

	logger.Info("Using PostgreSQL storage",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName))
	return storage.NewPostgresStorage(storage.DatabaseConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	}, logger)
}

// newWorkspace wires storage and the gateway. The returned close func
// releases the storage.
func (c *cli) newWorkspace(ctx context.Context) (*workspace.Workspace, func(), error) {
	gw, err := newGateway(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize classifier: %w", err)
	}

	store, err := newStorage(c.cfg, c.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			c.logger.Warn("Failed to close storage", zap.Error(err))
		}
	}

	ws := workspace.New(store, gw, workspace.Config{
		AgentID:        c.cfg.Classifier.AgentID,
		Timeout:        c.cfg.Classifier.Timeout,
		Sender:         c.cfg.Workspace.Sender,
		Avatar:         c.cfg.Workspace.Avatar,
		DefaultChannel: c.cfg.Workspace.DefaultChannel,
	}, c.logger)

	if c.cfg.Workspace.Seed {
		if err := seedOnce(ctx, store, ws); err != nil {
			closeStore()
			return nil, nil, err
		}
	}
	return ws, closeStore, nil
}

// seedOnce loads the demo conversation unless a persistent store already
// holds messages.
func seedOnce(ctx context.Context, store storage.Storage, ws *workspace.Workspace) error {
	existing, err := store.ListMessages(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to check for existing messages: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	return ws.Seed(ctx, models.SeedMessages(time.Now()))
}

func (c *cli) runBot(ctx context.Context) error {
	if c.cfg.Telegram.Token == "" {
		return errors.New("telegram.token is required to run the bot")
	}

	ws, closeStore, err := c.newWorkspace(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	b, err := bot.New(c.cfg.Telegram.Token, ws, c.logger)
	if err != nil {
		return err
	}
	return b.Start(ctx)
}

func (c *cli) runAPI(ctx context.Context) error {
	ws, closeStore, err := c.newWorkspace(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	app := httpapi.New(ws, c.logger)
	return httpapi.Serve(ctx, app, c.cfg.HTTP.Addr, c.logger)
}

type classifyOutput struct {
	classifier.Result
	Error string `json:"error,omitempty"`
}

func (c *cli) runClassify(ctx context.Context, out io.Writer, args []string) error {
	gw, err := newGateway(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Classifier.Timeout)
	defer cancel()

	result := classifier.Run(callCtx, gw, strings.Join(args, " "), c.cfg.Classifier.AgentID)
	output := classifyOutput{Result: result}
	if result.Err != nil {
		output.Error = result.Err.Error()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
