package tts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
)

func TestNewElevenLabsTTS(t *testing.T) {
	logger := zaptest.NewLogger(t)

	// Test without API key
	t.Setenv("ELEVEN_LABS_API_KEY", "")
	config := NewElevenLabsConfigFromEnv()
	_, err := NewElevenLabsTTS(config, logger)
	if err == nil {
		t.Error("Expected error when API key is not set")
	}

	// Test with API key
	t.Setenv("ELEVEN_LABS_API_KEY", "test-api-key")

	config = NewElevenLabsConfigFromEnv()
	tts, err := NewElevenLabsTTS(config, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	if tts.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", tts.apiKey)
	}

	if tts.voiceID != defaultVoiceID {
		t.Errorf("Expected default voice ID '%s', got '%s'", defaultVoiceID, tts.voiceID)
	}

	if tts.outputFormat != defaultOutputFormat {
		t.Errorf("Expected default output format '%s', got '%s'", defaultOutputFormat, tts.outputFormat)
	}
}

func TestValidateElevenLabsConfig(t *testing.T) {
	if err := ValidateElevenLabsConfig(ElevenLabsConfig{APIKey: "k", OutputFormat: "pcm_24000"}); err == nil {
		t.Error("Expected error for PCM output format")
	}
	if err := ValidateElevenLabsConfig(ElevenLabsConfig{APIKey: "k", Stability: 1.5}); err == nil {
		t.Error("Expected error for stability out of range")
	}
	if err := ValidateElevenLabsConfig(ElevenLabsConfig{APIKey: "k", OutputFormat: "mp3_22050_32"}); err != nil {
		t.Errorf("Expected mp3 format to be valid, got %v", err)
	}
}

func TestElevenLabsTTS_Synthesize(t *testing.T) {
	var got ElevenLabsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/text-to-speech/"+defaultVoiceID {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "test-api-key" {
			t.Error("Expected API key header")
		}
		if r.URL.Query().Get("output_format") != defaultOutputFormat {
			t.Errorf("Unexpected output format %s", r.URL.Query().Get("output_format"))
		}
		json.NewDecoder(r.Body).Decode(&got)
		rw.Header().Set("Content-Type", "audio/mpeg")
		rw.Write([]byte("ID3mp3data"))
	}))
	defer srv.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-api-key", APIBaseURL: srv.URL}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	res, err := tts.Synthesize(context.Background(), "你好", "zh-CN")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if string(res.Audio) != "ID3mp3data" {
		t.Errorf("Unexpected audio %q", res.Audio)
	}
	if res.LanguageCode != "zh-CN" || res.Format != entities.FormatMPEG {
		t.Errorf("Unexpected result tags %s/%s", res.LanguageCode, res.Format)
	}
	if got.LanguageCode != "zh" {
		t.Errorf("Expected ISO 639-1 language code, got %q", got.LanguageCode)
	}
	if got.ModelID != defaultModelID {
		t.Errorf("Expected default model, got %s", got.ModelID)
	}
}

func TestElevenLabsTTS_Synthesize_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(http.StatusBadRequest)
		rw.Write([]byte(`{"detail":{"status":"invalid_voice","message":"voice not found"}}`))
	}))
	defer srv.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-api-key", APIBaseURL: srv.URL}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	_, err = tts.Synthesize(context.Background(), "Hola", "es")
	var stageErr *entities.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("Expected *StageError, got %v", err)
	}
	if stageErr.Message != "speech service error: voice not found" {
		t.Errorf("Unexpected message %q", stageErr.Message)
	}

	_, err = tts.Synthesize(context.Background(), "   ", "es")
	if !errors.Is(err, entities.ErrSynthesisFailed) {
		t.Errorf("Expected synthesis failure for whitespace-only text, got %v", err)
	}
}

// Integration test - only runs if ELEVEN_LABS_API_KEY is set with real API key
func TestElevenLabsTTS_Synthesize_Integration(t *testing.T) {
	apiKey := os.Getenv("ELEVEN_LABS_API_KEY")
	if apiKey == "" || apiKey == "test-api-key" {
		t.Skip("Skipping integration test - set ELEVEN_LABS_API_KEY environment variable with real API key")
	}

	logger := zap.NewNop() // Use no-op logger for integration test

	tts, err := NewElevenLabsTTS(NewElevenLabsConfigFromEnv(), logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := tts.Synthesize(ctx, "Tome dos tabletas al día.", "es")
	if err != nil {
		t.Fatalf("Failed to convert text to speech: %v", err)
	}

	if len(res.Audio) == 0 {
		t.Error("No audio data received")
	}

	t.Logf("Integration test completed: received %d bytes", len(res.Audio))
}
