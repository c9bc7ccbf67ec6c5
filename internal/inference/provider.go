package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lumenlogic/lumen-core/internal/infrastructure/config"
)

// systemPrompt frames the provider's task.
const systemPrompt = "You are a smart lighting controller optimizing comfort, " +
	"accessibility, and energy efficiency. Respond with a JSON object " +
	"containing intensity_0_100, cct_1800_6500, and reason."

// HTTPProvider calls an OpenAI-compatible chat completion endpoint.
type HTTPProvider struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// NewHTTPProvider creates a provider for the configured endpoint.
// Returns ErrProviderNotConfigured when no endpoint or key is set, so the
// caller can run fallback-only.
func NewHTTPProvider(cfg config.AIConfig) (*HTTPProvider, error) {
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		return nil, ErrProviderNotConfigured
	}
	return &HTTPProvider{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client: &http.Client{
			// The engine bounds each attempt via context; this is a
			// backstop against a missing deadline.
			Timeout: 30 * time.Second,
		},
	}, nil
}

type chatRequest struct {
	Model          string         `json:"model"`
	Temperature    float64        `json:"temperature"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// setpointResponse uses pointer fields so a missing or null field is
// distinguishable from a zero and rejected.
type setpointResponse struct {
	Intensity  *int    `json:"intensity_0_100"`
	ColorTempK *int    `json:"cct_1800_6500"`
	Reason     *string `json:"reason"`
}

// Infer posts the feature payload and parses the structured setpoint.
func (p *HTTPProvider) Infer(ctx context.Context, payload []byte) (Setpoint, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model:       p.model,
		Temperature: 0.2,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(payload)},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return Setpoint{}, fmt.Errorf("encoding provider request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return Setpoint{}, fmt.Errorf("building provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return Setpoint{}, fmt.Errorf("calling provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Setpoint{}, fmt.Errorf("reading provider response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Setpoint{}, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return Setpoint{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return Setpoint{}, fmt.Errorf("%w: empty completion", ErrInvalidResponse)
	}

	return parseSetpoint([]byte(chat.Choices[0].Message.Content))
}

// parseSetpoint decodes the completion content, rejecting missing or
// non-numeric fields.
func parseSetpoint(content []byte) (Setpoint, error) {
	var raw setpointResponse
	if err := json.Unmarshal(content, &raw); err != nil {
		return Setpoint{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if raw.Intensity == nil || raw.ColorTempK == nil || raw.Reason == nil {
		return Setpoint{}, fmt.Errorf("%w: missing required fields", ErrInvalidResponse)
	}
	return Setpoint{
		Intensity:  *raw.Intensity,
		ColorTempK: *raw.ColorTempK,
		Reason:     *raw.Reason,
	}, nil
}
