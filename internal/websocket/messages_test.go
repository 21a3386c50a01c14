package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
)

func TestMessageValidator_RecordingStart(t *testing.T) {
	validator := NewMessageValidator()

	tests := []struct {
		name    string
		message string
		want    entities.LanguageSelection
		wantErr bool
	}{
		{
			name:    "defaults",
			message: `{"type":"recording_start"}`,
			want:    entities.DefaultLanguageSelection(),
		},
		{
			name:    "labels ignore case",
			message: `{"type":"recording_start","source_language":"hindi","target_language":"ARABIC","encoding":"webm_opus","sample_rate":48000}`,
			want:    entities.LanguageSelection{Source: entities.Hindi, Target: entities.Arabic},
		},
		{
			name:    "unsupported source",
			message: `{"type":"recording_start","source_language":"German"}`,
			wantErr: true,
		},
		{
			name:    "invalid sample rate",
			message: `{"type":"recording_start","sample_rate":100000}`,
			wantErr: true,
		},
		{
			name:    "invalid encoding",
			message: `{"type":"recording_start","encoding":"aiff"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := validator.ValidateMessage([]byte(tt.message))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			msg, ok := parsed.(*RecordingStartMessage)
			if !ok {
				t.Fatalf("Expected *RecordingStartMessage, got %T", parsed)
			}
			if msg.Selection() != tt.want {
				t.Errorf("Expected selection %v, got %v", tt.want, msg.Selection())
			}
		})
	}
}

func TestMessageValidator_Speak(t *testing.T) {
	validator := NewMessageValidator()

	tests := []struct {
		name     string
		message  string
		wantCode string
		wantErr  bool
	}{
		{"code", `{"type":"speak","text":"Hola","language_code":"es"}`, "es", false},
		{"label", `{"type":"speak","text":"你好","language":"Mandarin"}`, "zh-CN", false},
		{"code ignores case", `{"type":"speak","text":"你好","language_code":"ZH-cn"}`, "zh-CN", false},
		{"missing text", `{"type":"speak","language_code":"es"}`, "", true},
		{"missing language", `{"type":"speak","text":"Hola"}`, "", true},
		{"unsupported code", `{"type":"speak","text":"Hallo","language_code":"de"}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := validator.ValidateMessage([]byte(tt.message))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := parsed.(*SpeakMessage).LanguageCode; got != tt.wantCode {
				t.Errorf("Expected language code %s, got %s", tt.wantCode, got)
			}
		})
	}
}

func TestMessageValidator_UnsupportedType(t *testing.T) {
	validator := NewMessageValidator()

	if _, err := validator.ValidateMessage([]byte(`{"type":"audio_chunk"}`)); err == nil {
		t.Error("Expected error for unsupported message type")
	}
	if _, err := validator.ValidateMessage([]byte(`not json`)); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestCreateStateMessage(t *testing.T) {
	outcome := &entities.PipelineOutcome{
		Transcription: &entities.TranscriptionResult{Text: "Hello"},
		Translation:   &entities.TranslationResult{Text: "Hola"},
	}

	translating := CreateStateMessage(entities.StateTranslating, outcome)
	if translating.Transcript != "Hello" || translating.Translation != "" {
		t.Errorf("Translating state should carry only the transcript, got %+v", translating)
	}

	synthesizing := CreateStateMessage(entities.StateSynthesizing, outcome)
	if synthesizing.Translation != "Hola" || synthesizing.Transcript != "" {
		t.Errorf("Synthesizing state should carry only the translation, got %+v", synthesizing)
	}
}

func TestCreateResultMessage_Failure(t *testing.T) {
	outcome := &entities.PipelineOutcome{
		Transcription: &entities.TranscriptionResult{Text: "Hello"},
		Duration:      1500 * time.Millisecond,
	}
	outcome.Fail(entities.TranslationFailed("service error", nil))

	msg := CreateResultMessage(outcome)

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if decoded["type"] != "result" || decoded["state"] != "failed" {
		t.Errorf("Expected failed result, got %v", decoded)
	}
	if decoded["failed_stage"] != "translation" {
		t.Errorf("Expected failed stage translation, got %v", decoded["failed_stage"])
	}
	if decoded["transcript"] != "Hello" {
		t.Errorf("Expected transcript to be kept, got %v", decoded["transcript"])
	}
	if _, ok := decoded["translation"]; ok {
		t.Error("Expected no translation field")
	}
	if decoded["duration_ms"].(float64) != 1500 {
		t.Errorf("Expected duration 1500, got %v", decoded["duration_ms"])
	}
}
