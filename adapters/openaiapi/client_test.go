package openaiapi

import (
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Error("Expected error when API key is missing")
	}

	client, err := NewClient(Config{APIKey: "sk-test", BaseURL: "http://localhost:1/v1"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if client == nil {
		t.Fatal("Expected client")
	}
}

func TestConfigFromEnv(t *testing.T) {
	os.Setenv("OPENAI_API_KEY", "sk-env")
	os.Setenv("OPENAI_TIMEOUT_SECONDS", "15")
	defer os.Unsetenv("OPENAI_API_KEY")
	defer os.Unsetenv("OPENAI_TIMEOUT_SECONDS")

	config := ConfigFromEnv()
	if config.APIKey != "sk-env" {
		t.Errorf("Expected API key from env, got %q", config.APIKey)
	}
	if config.Timeout != 15*time.Second {
		t.Errorf("Expected 15s timeout, got %v", config.Timeout)
	}
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&openai.APIError{HTTPStatusCode: 401, Message: "bad key"}, "invalid OpenAI API key"},
		{fmt.Errorf("wrapped: %w", &openai.APIError{HTTPStatusCode: 429}), "OpenAI rate limit or quota exceeded"},
		{&openai.APIError{HTTPStatusCode: 400, Message: "audio too short"}, "invalid request: audio too short"},
		{&openai.RequestError{HTTPStatusCode: 503, Err: errors.New("unavailable")}, "OpenAI service error"},
		{errors.New("dial tcp: refused"), "openai request failed"},
	}

	for _, tc := range cases {
		if got := Describe(tc.err); got != tc.want {
			t.Errorf("Describe(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
