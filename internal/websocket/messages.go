package websocket

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Client to server message types
const (
	MessageTypeRecordingStart MessageType = "recording_start"
	MessageTypeRecordingEnd   MessageType = "recording_end"
	MessageTypeSpeak          MessageType = "speak"
	MessageTypePing           MessageType = "ping"
)

// Server to client message types
const (
	MessageTypeState    MessageType = "state"
	MessageTypeResult   MessageType = "result"
	MessageTypeSpeakEnd MessageType = "speak_end"
	MessageTypePong     MessageType = "pong"
	MessageTypeError    MessageType = "error"
)

// Error codes sent in ErrorMessage
const (
	ErrorCodeInvalidMessage = "invalid_message"
	ErrorCodeNotRecording   = "not_recording"
	ErrorCodeBusy           = "run_in_progress"
	ErrorCodeAudioTooLarge  = "audio_too_large"
	ErrorCodeEmptyAudio     = "empty_audio"
	ErrorCodeSynthesis      = "synthesis_failed"
)

var validEncodings = []string{
	entities.EncodingWAV,
	entities.EncodingLinear16,
	entities.EncodingMP3,
	entities.EncodingFLAC,
	entities.EncodingMulaw,
	entities.EncodingOggOpus,
	entities.EncodingWebmOpus,
}

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// RecordingStartMessage opens a recording. Binary frames that follow are
// appended to it until RecordingEndMessage.
type RecordingStartMessage struct {
	BaseMessage
	SourceLanguage string `json:"source_language,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
	Encoding       string `json:"encoding,omitempty"`
	SampleRate     int    `json:"sample_rate,omitempty"`

	selection entities.LanguageSelection
}

// Selection returns the validated language pair
func (m *RecordingStartMessage) Selection() entities.LanguageSelection {
	return m.selection
}

// RecordingEndMessage closes the recording and starts a pipeline run
type RecordingEndMessage struct {
	BaseMessage
}

// SpeakMessage asks for synthesis of text without translation
type SpeakMessage struct {
	BaseMessage
	Text         string `json:"text"`
	LanguageCode string `json:"language_code,omitempty"`
	Language     string `json:"language,omitempty"`
}

// PingMessage represents a ping message for connection health check
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PongMessage represents a pong response
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// StateMessage reports a pipeline state change. Transcript is set when the
// run enters translating, Translation when it enters synthesizing.
type StateMessage struct {
	BaseMessage
	RunState    string `json:"state"`
	Transcript  string `json:"transcript,omitempty"`
	Translation string `json:"translation,omitempty"`
}

// ResultMessage closes a pipeline run. On success the audio was sent as one
// binary frame right before it.
type ResultMessage struct {
	BaseMessage
	RunState     string `json:"state"`
	FailedStage  string `json:"failed_stage,omitempty"`
	Error        string `json:"error,omitempty"`
	Transcript   string `json:"transcript,omitempty"`
	Translation  string `json:"translation,omitempty"`
	AudioFormat  string `json:"audio_format,omitempty"`
	AudioBytes   int    `json:"audio_bytes,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	DurationMs   int64  `json:"duration_ms"`
}

// SpeakEndMessage follows the binary audio of a speak request
type SpeakEndMessage struct {
	BaseMessage
	LanguageCode string `json:"language_code"`
	AudioFormat  string `json:"audio_format"`
	AudioBytes   int    `json:"audio_bytes"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// MessageValidator parses and validates client messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage parses a text frame into one of the client message types
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	// First parse as base message to get type
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case MessageTypeRecordingStart:
		var msg RecordingStartMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid recording start message: %w", err)
		}
		if err := v.validateRecordingStart(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MessageTypeRecordingEnd:
		return &RecordingEndMessage{BaseMessage: base}, nil

	case MessageTypeSpeak:
		var msg SpeakMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid speak message: %w", err)
		}
		if err := v.validateSpeak(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

// validateRecordingStart resolves the languages and checks the audio format
func (v *MessageValidator) validateRecordingStart(msg *RecordingStartMessage) error {
	msg.selection = entities.DefaultLanguageSelection()
	if msg.SourceLanguage != "" {
		source, err := entities.ParseLanguage(msg.SourceLanguage)
		if err != nil {
			return fmt.Errorf("source_language: %w", err)
		}
		msg.selection.Source = source
	}
	if msg.TargetLanguage != "" {
		target, err := entities.ParseLanguage(msg.TargetLanguage)
		if err != nil {
			return fmt.Errorf("target_language: %w", err)
		}
		msg.selection.Target = target
	}

	if msg.SampleRate != 0 && (msg.SampleRate < 8000 || msg.SampleRate > 48000) {
		return fmt.Errorf("sample_rate must be between 8000 and 48000")
	}

	msg.Encoding = strings.ToUpper(strings.TrimSpace(msg.Encoding))
	if msg.Encoding != "" && !slices.Contains(validEncodings, msg.Encoding) {
		return fmt.Errorf("encoding must be one of: %s", strings.Join(validEncodings, ", "))
	}

	return nil
}

// validateSpeak requires text and resolves the language to a synthesis code
func (v *MessageValidator) validateSpeak(msg *SpeakMessage) error {
	if strings.TrimSpace(msg.Text) == "" {
		return fmt.Errorf("text is required")
	}

	var language entities.Language
	var err error
	switch {
	case msg.LanguageCode != "":
		language, err = entities.LanguageForCode(msg.LanguageCode)
	case msg.Language != "":
		language, err = entities.ParseLanguage(msg.Language)
	default:
		return fmt.Errorf("language_code or language is required")
	}
	if err != nil {
		return err
	}
	msg.LanguageCode = entities.LanguageCodeOf(language)
	return nil
}

func newBase(t MessageType) BaseMessage {
	return BaseMessage{Type: t, Timestamp: time.Now().Format(time.RFC3339)}
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: newBase(MessageTypeError),
		Code:        code,
		Message:     message,
	}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: newBase(MessageTypePong),
		Data:        data,
	}
}

// CreateStateMessage reports the state a run just entered
func CreateStateMessage(state entities.PipelineState, outcome *entities.PipelineOutcome) *StateMessage {
	msg := &StateMessage{
		BaseMessage: newBase(MessageTypeState),
		RunState:    string(state),
	}
	switch state {
	case entities.StateTranslating:
		msg.Transcript, _ = outcome.Transcript()
	case entities.StateSynthesizing:
		msg.Translation, _ = outcome.TranslatedText()
	}
	return msg
}

// CreateResultMessage summarizes a finished run
func CreateResultMessage(outcome *entities.PipelineOutcome) *ResultMessage {
	msg := &ResultMessage{
		BaseMessage: newBase(MessageTypeResult),
		RunState:    string(outcome.State),
		FailedStage: string(outcome.FailedStage),
		DurationMs:  outcome.Duration.Milliseconds(),
	}
	if outcome.Failure != nil {
		msg.Error = outcome.Failure.Message
	}
	msg.Transcript, _ = outcome.Transcript()
	msg.Translation, _ = outcome.TranslatedText()
	if audio, ok := outcome.Audio(); ok {
		msg.AudioFormat = audio.Format
		msg.AudioBytes = len(audio.Audio)
		msg.LanguageCode = audio.LanguageCode
	}
	return msg
}

// CreateSpeakEndMessage describes audio sent for a speak request
func CreateSpeakEndMessage(result *entities.SynthesisResult) *SpeakEndMessage {
	return &SpeakEndMessage{
		BaseMessage:  newBase(MessageTypeSpeakEnd),
		LanguageCode: result.LanguageCode,
		AudioFormat:  result.Format,
		AudioBytes:   len(result.Audio),
	}
}
