package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/huddle-bot/internal/classifier"
	"github.com/xaenox/huddle-bot/internal/models"
	"github.com/xaenox/huddle-bot/internal/storage"
	"github.com/xaenox/huddle-bot/pkg/config"
	"go.uber.org/zap/zaptest"
)

func testConfig(provider string) *config.Config {
	return &config.Config{
		Classifier: config.ClassifierConfig{Provider: provider, AgentID: "agent-test", Timeout: time.Second},
		Agent:      config.AgentConfig{Endpoint: "http://agents.local/invoke"},
		OpenAI:     config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini", MaxTokens: 100},
		Database:   config.DatabaseConfig{UseInMemory: true},
		Workspace:  config.WorkspaceConfig{Seed: true},
	}
}

func TestNewGateway(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	gw, err := newGateway(ctx, testConfig(config.ProviderKeyword), logger)
	require.NoError(t, err)
	assert.IsType(t, &classifier.KeywordClassifier{}, gw)

	gw, err = newGateway(ctx, testConfig(config.ProviderAgent), logger)
	require.NoError(t, err)
	assert.IsType(t, &classifier.AgentClient{}, gw)

	gw, err = newGateway(ctx, testConfig(config.ProviderOpenAI), logger)
	require.NoError(t, err)
	assert.IsType(t, &classifier.GPTClassifier{}, gw)

	_, err = newGateway(ctx, testConfig(config.ProviderGemini), logger)
	assert.Error(t, err, "gemini needs an api key")

	_, err = newGateway(ctx, testConfig("oracle"), logger)
	assert.Error(t, err)
}

func TestSeedOnce(t *testing.T) {
	ctx := context.Background()
	c := &cli{cfg: testConfig(config.ProviderKeyword), logger: zaptest.NewLogger(t)}

	ws, closeStore, err := c.newWorkspace(ctx)
	require.NoError(t, err)
	defer closeStore()

	msgs, err := ws.ChannelMessages(ctx, "general")
	require.NoError(t, err)
	assert.Len(t, msgs, 5)

	store := storage.NewMemoryStorage()
	require.NoError(t, store.AppendMessage(ctx, &models.Message{ID: "existing", Channel: "general", Content: "hi"}))
	require.NoError(t, seedOnce(ctx, store, ws))
	all, err := store.ListMessages(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1, "a populated store is not seeded again")
}

func TestClassifyCommand(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "OPENAI_API_KEY", "GEMINI_API_KEY"} {
		t.Setenv(key, "")
	}
	t.Setenv("HUDDLE_CLASSIFIER_PROVIDER", "keyword")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"classify", "We need to finish X by Friday"})
	require.NoError(t, root.Execute())

	var got struct {
		Outcome      classifier.Outcome   `json:"outcome"`
		Intelligence *models.Intelligence `json:"intelligence"`
		Error        string               `json:"error"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got), out.String())
	assert.Equal(t, classifier.OutcomeDetected, got.Outcome)
	require.NotNil(t, got.Intelligence)
	require.NotNil(t, got.Intelligence.Task)
	assert.Equal(t, "Friday", got.Intelligence.Task.DueDate)
	assert.Empty(t, got.Error)
}

func TestRootRejectsInvalidConfig(t *testing.T) {
	t.Setenv("HUDDLE_CLASSIFIER_PROVIDER", "oracle")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"classify", "hello"})
	assert.ErrorContains(t, root.Execute(), "unknown classifier provider")
}
