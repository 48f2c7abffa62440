package genai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"scribe/internal/providers/llm"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestCompleteSendsPromptAndConfig(t *testing.T) {
	var captured generateRequest
	var path, key string
	client, err := NewClient(Options{
		APIKey: "k",
		Model:  "gemini-2.5-flash",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			path = r.URL.Path
			key = r.URL.Query().Get("key")
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"TITRE : A\n"},{"text":"RESUME : B"}]}}]}`), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	out, err := client.Complete(context.Background(), llm.Request{Prompt: "bonjour", MaxTokens: 2000, Temperature: 0.3})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if out != "TITRE : A\nRESUME : B" {
		t.Fatalf("unexpected text %q", out)
	}
	if path != "/v1beta/models/gemini-2.5-flash:generateContent" {
		t.Fatalf("unexpected path %q", path)
	}
	if key != "k" {
		t.Fatalf("api key not forwarded, got %q", key)
	}
	if captured.GenerationConfig == nil || captured.GenerationConfig.MaxOutputTokens != 2000 {
		t.Fatalf("generation config not sent: %#v", captured.GenerationConfig)
	}
	if captured.GenerationConfig.Temperature == nil || *captured.GenerationConfig.Temperature != 0.3 {
		t.Fatalf("temperature not sent: %#v", captured.GenerationConfig.Temperature)
	}
	if len(captured.Contents) != 1 || captured.Contents[0].Parts[0].Text != "bonjour" {
		t.Fatalf("prompt not sent: %#v", captured.Contents)
	}
}

func TestCompleteMapsAPIError(t *testing.T) {
	client, err := NewClient(Options{
		APIKey: "k",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = client.Complete(context.Background(), llm.Request{Prompt: "x"})
	var apiErr *llm.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T %v", err, err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || apiErr.Type != "RESOURCE_EXHAUSTED" || apiErr.Message != "quota" {
		t.Fatalf("unexpected api error %#v", apiErr)
	}
}

func TestCompleteWithoutKey(t *testing.T) {
	client, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if client.Model() != "gemini-2.5-flash" {
		t.Fatalf("default model = %q", client.Model())
	}
	if _, err := client.Complete(context.Background(), llm.Request{Prompt: "x"}); !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestCompleteReportsBlockedPrompt(t *testing.T) {
	client, err := NewClient(Options{
		APIKey: "k",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = client.Complete(context.Background(), llm.Request{Prompt: "x"})
	var apiErr *llm.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T %v", err, err)
	}
	if apiErr.Type != "BLOCKED" || !strings.Contains(apiErr.Message, "SAFETY") {
		t.Fatalf("unexpected api error %#v", apiErr)
	}
}
