package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// AgentClient calls a hosted classification agent over HTTP.
type AgentClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
	logger   *zap.Logger
}

type agentRequest struct {
	Message string `json:"message"`
	AgentID string `json:"agent_id"`
}

func NewAgentClient(endpoint, apiKey string, client *http.Client, logger *zap.Logger) *AgentClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &AgentClient{endpoint: endpoint, apiKey: apiKey, http: client, logger: logger}
}

func (c *AgentClient) Classify(ctx context.Context, text, agentID string) (*Response, error) {
	body, err := json.Marshal(agentRequest{Message: text, AgentID: agentID})
	if err != nil {
		return nil, fmt.Errorf("encoding agent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building agent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling agent: %w", err)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading agent response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.logger.Warn("Agent returned non-2xx status",
			zap.Int("status", res.StatusCode),
			zap.String("agent_id", agentID))
		return nil, fmt.Errorf("agent returned status %d", res.StatusCode)
	}

	var out Response
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decoding agent response: %w", err)
	}
	return &out, nil
}
