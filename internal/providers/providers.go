// Package providers builds the stage adapters selected in config.Config.
package providers

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/shelenderrkumar/healthcare-translation/adapters/llm"
	"github.com/shelenderrkumar/healthcare-translation/adapters/openaiapi"
	"github.com/shelenderrkumar/healthcare-translation/adapters/stt"
	"github.com/shelenderrkumar/healthcare-translation/adapters/tts"
	"github.com/shelenderrkumar/healthcare-translation/domain/repositories"
	"github.com/shelenderrkumar/healthcare-translation/internal/config"
)

// Set holds one adapter per stage. Call Close once the service stops.
type Set struct {
	SpeechToText repositories.SpeechToText
	Translator   repositories.Translator
	TextToSpeech repositories.TextToSpeech

	closers []func() error
}

// Build creates the adapters for every stage. The OpenAI client is shared by
// all stages that use it.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Set, error) {
	openaiClient, err := newOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}

	set := &Set{}

	switch cfg.STTProvider {
	case config.ProviderOpenAI:
		set.SpeechToText = stt.NewWhisperSpeechToText(openaiClient, cfg.OpenAITranscriptionModel, logger.Named("stt"))
	case config.ProviderGoogle:
		google, err := stt.NewGoogleSpeechToText(ctx, stt.GoogleConfigFromEnv(), logger.Named("stt"))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize speech-to-text: %w", err)
		}
		set.SpeechToText = google
		set.closers = append(set.closers, google.Close)
	case config.ProviderMock:
		set.SpeechToText = stt.NewMockSpeechToText(logger.Named("stt"))
	default:
		return nil, &config.ConfigurationError{Variable: "STT_PROVIDER", Reason: fmt.Sprintf("unknown provider %q", cfg.STTProvider)}
	}

	switch cfg.TranslatorProvider {
	case config.ProviderOpenAI:
		set.Translator = llm.NewOpenAITranslator(openaiClient, cfg.OpenAITranslationModel, logger.Named("translator"))
	case config.ProviderGemini:
		geminiConfig := llm.NewGeminiConfigFromEnv()
		geminiConfig.APIKey = cfg.GeminiAPIKey
		gemini, err := llm.NewGeminiTranslator(ctx, geminiConfig, logger.Named("translator"))
		if err != nil {
			set.Close()
			return nil, fmt.Errorf("failed to initialize translator: %w", err)
		}
		set.Translator = gemini
	case config.ProviderMock:
		set.Translator = llm.NewMockTranslator(logger.Named("translator"))
	default:
		set.Close()
		return nil, &config.ConfigurationError{Variable: "TRANSLATOR_PROVIDER", Reason: fmt.Sprintf("unknown provider %q", cfg.TranslatorProvider)}
	}

	set.TextToSpeech, err = NewTextToSpeech(cfg, openaiClient, logger)
	if err != nil {
		set.Close()
		return nil, err
	}

	logger.Info("Providers initialized",
		zap.String("stt", cfg.STTProvider),
		zap.String("translator", cfg.TranslatorProvider),
		zap.String("tts", cfg.TTSProvider))
	return set, nil
}

// NewTextToSpeech builds only the speech adapter. openaiClient may be nil
// unless the OpenAI provider is selected.
func NewTextToSpeech(cfg *config.Config, openaiClient *openai.Client, logger *zap.Logger) (repositories.TextToSpeech, error) {
	logger = logger.Named("tts")

	switch cfg.TTSProvider {
	case config.ProviderGoogleTranslate:
		google, err := tts.NewGoogleTranslateTTS(tts.NewGoogleTranslateConfigFromEnv(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize text-to-speech: %w", err)
		}
		return google, nil
	case config.ProviderElevenLabs:
		elevenLabsConfig := tts.NewElevenLabsConfigFromEnv()
		elevenLabsConfig.APIKey = cfg.ElevenLabsAPIKey
		elevenLabs, err := tts.NewElevenLabsTTS(elevenLabsConfig, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize text-to-speech: %w", err)
		}
		return elevenLabs, nil
	case config.ProviderOpenAI:
		if openaiClient == nil {
			var err error
			if openaiClient, err = newOpenAIClient(cfg); err != nil {
				return nil, err
			}
		}
		return tts.NewOpenAITTS(openaiClient, cfg.OpenAISpeechModel, cfg.OpenAISpeechVoice, logger), nil
	case config.ProviderMock:
		return tts.NewMockTTS(logger), nil
	default:
		return nil, &config.ConfigurationError{Variable: "TTS_PROVIDER", Reason: fmt.Sprintf("unknown provider %q", cfg.TTSProvider)}
	}
}

// Close releases adapter connections
func (s *Set) Close() error {
	var errs []error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func newOpenAIClient(cfg *config.Config) (*openai.Client, error) {
	if !cfg.UsesOpenAI() {
		return nil, nil
	}
	openaiConfig := openaiapi.ConfigFromEnv()
	openaiConfig.APIKey = cfg.OpenAIAPIKey
	client, err := openaiapi.NewClient(openaiConfig)
	if err != nil {
		return nil, &config.ConfigurationError{Variable: "OPENAI_API_KEY", Reason: err.Error()}
	}
	return client, nil
}
