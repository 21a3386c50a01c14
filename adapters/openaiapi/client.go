// Package openaiapi builds the OpenAI client shared by the Whisper
// transcription, chat translation and speech adapters.
package openaiapi

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const defaultTimeout = 60 * time.Second

// Config holds the OpenAI credentials and transport settings
type Config struct {
	APIKey  string        // Required
	BaseURL string        // Optional: defaults to the public API
	Timeout time.Duration // Optional: bound for every request
}

// ConfigFromEnv reads OPENAI_API_KEY, OPENAI_BASE_URL and OPENAI_TIMEOUT_SECONDS.
func ConfigFromEnv() Config {
	config := Config{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
	}
	if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			config.Timeout = time.Duration(secs) * time.Second
		}
	}
	return config
}

// NewClient creates a go-openai client with a bounded HTTP timeout.
func NewClient(config Config) (*openai.Client, error) {
	if config.APIKey == "" {
		return nil, errors.New("openai API key is required")
	}

	cfg := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		cfg.BaseURL = config.BaseURL
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return openai.NewClientWithConfig(cfg), nil
}

// Describe turns an OpenAI error into a short message fit for display.
func Describe(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return describeStatus(apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return describeStatus(reqErr.HTTPStatusCode, "")
	}

	return "openai request failed"
}

func describeStatus(status int, message string) string {
	switch {
	case status == http.StatusUnauthorized:
		return "invalid OpenAI API key"
	case status == http.StatusNotFound:
		return "model not found"
	case status == http.StatusTooManyRequests:
		return "OpenAI rate limit or quota exceeded"
	case status == http.StatusBadRequest && message != "":
		return "invalid request: " + message
	case status == http.StatusBadRequest:
		return "invalid request"
	case status >= 500:
		return "OpenAI service error"
	case status != 0:
		return fmt.Sprintf("OpenAI returned status %d", status)
	default:
		return "openai request failed"
	}
}
