package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/shelenderrkumar/healthcare-translation/adapters/llm"
	"github.com/shelenderrkumar/healthcare-translation/adapters/stt"
	"github.com/shelenderrkumar/healthcare-translation/adapters/tts"
	"github.com/shelenderrkumar/healthcare-translation/internal/config"
)

func mockConfig() *config.Config {
	cfg := config.Default()
	cfg.STTProvider = config.ProviderMock
	cfg.TranslatorProvider = config.ProviderMock
	cfg.TTSProvider = config.ProviderMock
	return cfg
}

func TestBuild_Mock(t *testing.T) {
	set, err := Build(context.Background(), mockConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer set.Close()

	assert.IsType(t, &stt.MockSpeechToText{}, set.SpeechToText)
	assert.IsType(t, &llm.MockTranslator{}, set.Translator)
	assert.IsType(t, &tts.MockTTS{}, set.TextToSpeech)
}

func TestBuild_OpenAIEverywhere(t *testing.T) {
	cfg := config.Default()
	cfg.STTProvider = config.ProviderOpenAI
	cfg.TranslatorProvider = config.ProviderOpenAI
	cfg.TTSProvider = config.ProviderOpenAI
	cfg.OpenAIAPIKey = "sk-test"

	set, err := Build(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.IsType(t, &stt.WhisperSpeechToText{}, set.SpeechToText)
	assert.IsType(t, &llm.OpenAITranslator{}, set.Translator)
	assert.IsType(t, &tts.OpenAITTS{}, set.TextToSpeech)
}

func TestBuild_Gemini(t *testing.T) {
	cfg := mockConfig()
	cfg.TranslatorProvider = config.ProviderGemini
	cfg.GeminiAPIKey = "test-key"

	set, err := Build(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.IsType(t, &llm.GeminiTranslator{}, set.Translator)
}

func TestBuild_MissingOpenAIKey(t *testing.T) {
	cfg := mockConfig()
	cfg.STTProvider = config.ProviderOpenAI

	_, err := Build(context.Background(), cfg, zaptest.NewLogger(t))

	var cfgErr *config.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "OPENAI_API_KEY", cfgErr.Variable)
}

func TestBuild_UnknownProvider(t *testing.T) {
	cfg := mockConfig()
	cfg.TTSProvider = "polly"

	_, err := Build(context.Background(), cfg, zaptest.NewLogger(t))

	var cfgErr *config.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "TTS_PROVIDER", cfgErr.Variable)
}

func TestNewTextToSpeech(t *testing.T) {
	tests := []struct {
		provider string
		want     any
	}{
		{config.ProviderGoogleTranslate, &tts.GoogleTranslateTTS{}},
		{config.ProviderElevenLabs, &tts.ElevenLabsTTS{}},
		{config.ProviderOpenAI, &tts.OpenAITTS{}},
		{config.ProviderMock, &tts.MockTTS{}},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := mockConfig()
			cfg.TTSProvider = tt.provider
			cfg.OpenAIAPIKey = "sk-test"
			cfg.ElevenLabsAPIKey = "el-test"

			speaker, err := NewTextToSpeech(cfg, nil, zaptest.NewLogger(t))
			require.NoError(t, err)
			assert.IsType(t, tt.want, speaker)
		})
	}
}
