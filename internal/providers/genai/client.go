package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scribe/internal/infra"
	"scribe/internal/providers/llm"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is a thin text-generation facade over the Gemini generateContent API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

type textPart struct {
	Text string `json:"text,omitempty"`
}

type turn struct {
	Role  string     `json:"role,omitempty"`
	Parts []textPart `json:"parts,omitempty"`
}

type sampling struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents         []turn    `json:"contents"`
	GenerationConfig *sampling `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      turn   `json:"content"`
		FinishReason string `json:"finishReason,omitempty"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

// NewClient applies defaults for the base URL, model and HTTP client.
func NewClient(opts Options) (*Client, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("genai: invalid base url: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: client,
		logger:     logger,
	}, nil
}

func (c *Client) Name() string { return "gemini" }

// Model returns the configured Gemini model identifier.
func (c *Client) Model() string {
	return c.model
}

// Complete sends req.Prompt as a single user turn and returns the text of the
// first candidate that has any. A blocked prompt is reported as an APIError.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	if c.apiKey == "" {
		return "", llm.ErrNotConfigured
	}
	model := req.Model
	if model == "" {
		model = c.model
	}
	temperature := req.Temperature
	payload := generateRequest{
		Contents: []turn{{Role: "user", Parts: []textPart{{Text: req.Prompt}}}},
		GenerationConfig: &sampling{
			Temperature:     &temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}

	var out generateResponse
	if err := c.post(ctx, fmt.Sprintf("/models/%s:generateContent", url.PathEscape(model)), payload, &out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 && out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", &llm.APIError{
			Provider:   c.Name(),
			StatusCode: http.StatusOK,
			Type:       "BLOCKED",
			Message:    "prompt blocked: " + out.PromptFeedback.BlockReason,
		}
	}

	var b strings.Builder
	finish := ""
	for _, cand := range out.Candidates {
		for _, part := range cand.Content.Parts {
			b.WriteString(part.Text)
		}
		if b.Len() > 0 {
			finish = cand.FinishReason
			break
		}
	}
	c.logger.Debug().
		Str("model", model).
		Str("finish_reason", finish).
		Int("chars", b.Len()).
		Msg("genai: response received")
	return b.String(), nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	endpoint := strings.TrimRight(c.baseURL, "/") + path
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("genai: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("genai: build request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("genai: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(c.Name(), resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("genai: decode response: %w", err)
	}
	return nil
}

// decodeError maps a non-2xx response onto llm.APIError. Type carries the
// Google status string, e.g. RESOURCE_EXHAUSTED.
func decodeError(provider string, resp *http.Response) error {
	apiErr := &llm.APIError{Provider: provider, StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var env errorEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Error.Message != "" {
		apiErr.Type = env.Error.Status
		apiErr.Message = env.Error.Message
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(data))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
