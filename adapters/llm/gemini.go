package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
	"github.com/shelenderrkumar/healthcare-translation/domain/repositories"
)

const (
	defaultGeminiModel    = "gemini-2.0-flash"
	defaultMaxTokens      = 1024
	defaultGeminiTemp     = 0.2
	maxGeminiTemperature  = 2.0
	geminiProviderLogName = "gemini"
)

// GeminiConfig holds configuration for the Gemini translator
// Required fields:
// - APIKey: Google AI Studio API key
// Optional fields with defaults:
// - Model: model name (default: "gemini-2.0-flash")
// - Temperature: sampling temperature between 0 and 2 (default: 0.2)
// - MaxOutputTokens: response token limit (default: 1024)
// - BaseURL: endpoint override, used by tests
type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int
	BaseURL         string
}

// GeminiTranslator implements Translator using Google's Gemini API
type GeminiTranslator struct {
	client          *genai.Client
	model           string
	temperature     float32
	maxOutputTokens int
	logger          *zap.Logger
}

var _ repositories.Translator = (*GeminiTranslator)(nil)

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("gemini API key is required")
	}

	if config.Temperature < 0 || config.Temperature > maxGeminiTemperature {
		return fmt.Errorf("temperature must be between 0 and %.0f, got %f", maxGeminiTemperature, config.Temperature)
	}

	if config.MaxOutputTokens < 0 {
		return fmt.Errorf("max output tokens must be positive, got %d", config.MaxOutputTokens)
	}

	return nil
}

// NewGeminiConfigFromEnv reads GEMINI_API_KEY, GEMINI_MODEL, GEMINI_TEMPERATURE
// and GEMINI_MAX_OUTPUT_TOKENS
func NewGeminiConfigFromEnv() GeminiConfig {
	config := GeminiConfig{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  os.Getenv("GEMINI_MODEL"),
	}

	if v := os.Getenv("GEMINI_TEMPERATURE"); v != "" {
		if temp, err := strconv.ParseFloat(v, 32); err == nil {
			config.Temperature = float32(temp)
		}
	}

	if v := os.Getenv("GEMINI_MAX_OUTPUT_TOKENS"); v != "" {
		if tokens, err := strconv.Atoi(v); err == nil && tokens > 0 {
			config.MaxOutputTokens = tokens
		}
	}

	return config
}

// NewGeminiTranslator creates a Gemini client and translator
func NewGeminiTranslator(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*GeminiTranslator, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = defaultGeminiModel
		logger.Info("Using default model", zap.String("model", model))
	}

	temperature := config.Temperature
	if temperature == 0 {
		temperature = defaultGeminiTemp
		logger.Info("Using default temperature", zap.Float32("temperature", temperature))
	}

	maxOutputTokens := config.MaxOutputTokens
	if maxOutputTokens == 0 {
		maxOutputTokens = defaultMaxTokens
		logger.Info("Using default maxOutputTokens", zap.Int("maxOutputTokens", maxOutputTokens))
	}

	return &GeminiTranslator{
		client:          client,
		model:           model,
		temperature:     temperature,
		maxOutputTokens: maxOutputTokens,
		logger:          logger,
	}, nil
}

// Translate sends one GenerateContent request with the translation instruction
// as system instruction and the text as the only user turn.
func (g *GeminiTranslator) Translate(ctx context.Context, text string, target entities.Language) (string, error) {
	if err := validateTranslationInput(text, target); err != nil {
		return "", err
	}

	g.logger.Info("Processing translation",
		zap.String("provider", geminiProviderLogName),
		zap.String("model", g.model),
		zap.String("target", string(target)),
		zap.Int("textLength", len(text)))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(repositories.TranslationPrompt(target), genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
		MaxOutputTokens:   int32(g.maxOutputTokens),
	}
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		g.logger.Error("Gemini request failed", zap.Error(err))
		if ctx.Err() != nil {
			return "", entities.AsStageError(entities.StageTranslation, err)
		}
		return "", entities.TranslationFailed(describeGeminiError(err), err)
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", entities.TranslationFailed("empty response from model", nil)
	}

	var sb strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", entities.TranslationFailed("empty response from model", nil)
	}

	translated := sb.String()
	g.logger.Info("Translation completed", zap.Int("textLength", len(translated)))
	return translated, nil
}

func describeGeminiError(err error) string {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	default:
		return "gemini request failed"
	}

	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return "invalid Gemini API key"
	case code == http.StatusNotFound:
		return "model not found"
	case code == http.StatusTooManyRequests:
		return "Gemini rate limit or quota exceeded"
	case code >= 500:
		return "Gemini service error"
	default:
		return fmt.Sprintf("Gemini returned status %d", code)
	}
}
