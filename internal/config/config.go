// Package config loads the service settings. Values come from defaults, then an
// optional YAML file, then environment variables. Credentials are read from the
// environment only.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider names accepted for each stage.
const (
	ProviderOpenAI          = "openai"
	ProviderGoogle          = "google"
	ProviderGemini          = "gemini"
	ProviderGoogleTranslate = "google_translate"
	ProviderElevenLabs      = "elevenlabs"
	ProviderMock            = "mock"
)

const (
	defaultPort          = "8080"
	defaultStageTimeout  = 60 * time.Second
	defaultMaxAudioBytes = 25 << 20
	defaultMongoDatabase = "healthcare_translation"
	minJWTSecretBytes    = 32
)

var (
	sttProviders        = []string{ProviderOpenAI, ProviderGoogle, ProviderMock}
	translatorProviders = []string{ProviderOpenAI, ProviderGemini, ProviderMock}
	ttsProviders        = []string{ProviderGoogleTranslate, ProviderElevenLabs, ProviderOpenAI, ProviderMock}
)

// ConfigurationError reports a missing or invalid setting. The service cannot
// start until it is fixed.
type ConfigurationError struct {
	Variable string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Variable, e.Reason)
}

// Config holds the service settings
type Config struct {
	Port          string        `yaml:"port"`
	StageTimeout  time.Duration `yaml:"stage_timeout"`
	MaxAudioBytes int64         `yaml:"max_audio_bytes"`
	RateLimitRPS  float64       `yaml:"rate_limit_rps"` // per client IP, 0 disables

	STTProvider        string `yaml:"stt_provider"`
	TranslatorProvider string `yaml:"translator_provider"`
	TTSProvider        string `yaml:"tts_provider"`

	OpenAITranscriptionModel string `yaml:"openai_transcription_model"`
	OpenAITranslationModel   string `yaml:"openai_translation_model"`
	OpenAISpeechModel        string `yaml:"openai_speech_model"`
	OpenAISpeechVoice        string `yaml:"openai_speech_voice"`

	MongoURI      string `yaml:"mongodb_uri"`
	MongoDatabase string `yaml:"mongodb_database"`

	OpenAIAPIKey     string `yaml:"-"`
	GeminiAPIKey     string `yaml:"-"`
	ElevenLabsAPIKey string `yaml:"-"`
	JWTSecret        string `yaml:"-"` // enables bearer token auth on /api/v1
}

// Default returns the settings used when nothing is configured
func Default() *Config {
	return &Config{
		Port:               defaultPort,
		StageTimeout:       defaultStageTimeout,
		MaxAudioBytes:      defaultMaxAudioBytes,
		STTProvider:        ProviderOpenAI,
		TranslatorProvider: ProviderOpenAI,
		TTSProvider:        ProviderGoogleTranslate,
		MongoDatabase:      defaultMongoDatabase,
	}
}

// Load builds the configuration. path may be empty; when set the YAML file must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.STTProvider, "STT_PROVIDER")
	setString(&c.TranslatorProvider, "TRANSLATOR_PROVIDER")
	setString(&c.TTSProvider, "TTS_PROVIDER")
	setString(&c.OpenAITranscriptionModel, "OPENAI_TRANSCRIPTION_MODEL")
	setString(&c.OpenAITranslationModel, "OPENAI_TRANSLATION_MODEL")
	setString(&c.OpenAISpeechModel, "OPENAI_TTS_MODEL")
	setString(&c.OpenAISpeechVoice, "OPENAI_TTS_VOICE")
	setString(&c.MongoURI, "MONGODB_URI")
	setString(&c.MongoDatabase, "MONGODB_DATABASE")

	c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	c.ElevenLabsAPIKey = os.Getenv("ELEVEN_LABS_API_KEY")
	c.JWTSecret = os.Getenv("API_JWT_SECRET")

	if v := os.Getenv("STAGE_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return &ConfigurationError{Variable: "STAGE_TIMEOUT_SECONDS", Reason: "must be a positive integer"}
		}
		c.StageTimeout = time.Duration(secs) * time.Second
	}

	if v := os.Getenv("MAX_AUDIO_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return &ConfigurationError{Variable: "MAX_AUDIO_BYTES", Reason: "must be a positive integer"}
		}
		c.MaxAudioBytes = n
	}

	if v := os.Getenv("API_RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps < 0 {
			return &ConfigurationError{Variable: "API_RATE_LIMIT_RPS", Reason: "must be a non-negative number"}
		}
		c.RateLimitRPS = rps
	}

	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate checks provider names, limits and that every selected provider has
// its credential.
func (c *Config) Validate() error {
	c.STTProvider = strings.ToLower(c.STTProvider)
	c.TranslatorProvider = strings.ToLower(c.TranslatorProvider)
	c.TTSProvider = strings.ToLower(c.TTSProvider)

	if !slices.Contains(sttProviders, c.STTProvider) {
		return &ConfigurationError{Variable: "STT_PROVIDER", Reason: fmt.Sprintf("unknown provider %q", c.STTProvider)}
	}
	if !slices.Contains(translatorProviders, c.TranslatorProvider) {
		return &ConfigurationError{Variable: "TRANSLATOR_PROVIDER", Reason: fmt.Sprintf("unknown provider %q", c.TranslatorProvider)}
	}
	if !slices.Contains(ttsProviders, c.TTSProvider) {
		return &ConfigurationError{Variable: "TTS_PROVIDER", Reason: fmt.Sprintf("unknown provider %q", c.TTSProvider)}
	}

	if c.StageTimeout <= 0 {
		return &ConfigurationError{Variable: "STAGE_TIMEOUT_SECONDS", Reason: "must be positive"}
	}
	if c.MaxAudioBytes <= 0 {
		return &ConfigurationError{Variable: "MAX_AUDIO_BYTES", Reason: "must be positive"}
	}

	if c.UsesOpenAI() && c.OpenAIAPIKey == "" {
		return &ConfigurationError{Variable: "OPENAI_API_KEY", Reason: "required by the selected providers"}
	}
	if c.TranslatorProvider == ProviderGemini && c.GeminiAPIKey == "" {
		return &ConfigurationError{Variable: "GEMINI_API_KEY", Reason: "required by the gemini translator"}
	}
	if c.TTSProvider == ProviderElevenLabs && c.ElevenLabsAPIKey == "" {
		return &ConfigurationError{Variable: "ELEVEN_LABS_API_KEY", Reason: "required by the elevenlabs speech provider"}
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < minJWTSecretBytes {
		return &ConfigurationError{Variable: "API_JWT_SECRET", Reason: fmt.Sprintf("must be at least %d bytes", minJWTSecretBytes)}
	}

	return nil
}

// UsesOpenAI reports whether any stage talks to OpenAI
func (c *Config) UsesOpenAI() bool {
	return c.STTProvider == ProviderOpenAI ||
		c.TranslatorProvider == ProviderOpenAI ||
		c.TTSProvider == ProviderOpenAI
}

// AuthEnabled reports whether API requests need a bearer token
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// MongoEnabled reports whether run records go to MongoDB
func (c *Config) MongoEnabled() bool {
	return c.MongoURI != ""
}

// MaxAudioBodyLimit renders MaxAudioBytes for echo's BodyLimit middleware,
// leaving headroom for the multipart envelope.
func (c *Config) MaxAudioBodyLimit() string {
	return strconv.FormatInt((c.MaxAudioBytes+(1<<20))/1024, 10) + "K"
}
