package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"github.com/shelenderrkumar/healthcare-translation/adapters/llm"
	"github.com/shelenderrkumar/healthcare-translation/adapters/stt"
	"github.com/shelenderrkumar/healthcare-translation/adapters/tts"
	"github.com/shelenderrkumar/healthcare-translation/usecase"
)

type testStream struct {
	hub  *Hub
	tts  *tts.MockTTS
	conn *websocket.Conn
}

func setupTestStream(t *testing.T, maxAudioBytes int64) *testStream {
	t.Helper()
	logger := zaptest.NewLogger(t)

	speech := stt.NewMockSpeechToText(logger)
	speech.Transcript = "Hello, how are you?"
	speaker := tts.NewMockTTS(logger)
	service := usecase.NewTranslationService(speech, llm.NewMockTranslator(logger), speaker, nil, nil, 5*time.Second, logger)

	hub := NewHub(service, maxAudioBytes, logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	e := echo.New()
	e.GET("/ws", hub.HandleWebSocket)
	server := httptest.NewServer(e)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}

	t.Cleanup(func() {
		conn.Close()
		server.Close()
		cancel()
	})

	return &testStream{hub: hub, tts: speaker, conn: conn}
}

func (s *testStream) writeJSON(t *testing.T, v string) {
	t.Helper()
	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(v)); err != nil {
		t.Fatalf("Failed to write text frame: %v", err)
	}
}

func (s *testStream) writeBinary(t *testing.T, data []byte) {
	t.Helper()
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		t.Fatalf("Failed to write binary frame: %v", err)
	}
}

// read returns the next frame; text frames are decoded into a map
func (s *testStream) read(t *testing.T) (int, map[string]interface{}, []byte) {
	t.Helper()
	s.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	messageType, payload, err := s.conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read frame: %v", err)
	}
	if messageType != websocket.TextMessage {
		return messageType, nil, payload
	}
	var msg map[string]interface{}
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("Failed to decode %s: %v", payload, err)
	}
	return messageType, msg, payload
}

func TestHub_NewHub(t *testing.T) {
	hub := NewHub(nil, 0, zaptest.NewLogger(t))

	if hub.clients == nil {
		t.Error("Hub clients map not initialized")
	}
	if hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels not initialized")
	}
	if hub.maxAudioBytes != defaultMaxAudioBytes {
		t.Errorf("Expected default audio limit %d, got %d", defaultMaxAudioBytes, hub.maxAudioBytes)
	}
}

func TestHub_RecordingRunsPipeline(t *testing.T) {
	stream := setupTestStream(t, 0)

	stream.writeJSON(t, `{"type":"recording_start","source_language":"English","target_language":"French","encoding":"wav","sample_rate":16000}`)
	stream.writeBinary(t, make([]byte, 1024))
	stream.writeBinary(t, make([]byte, 1024))
	stream.writeJSON(t, `{"type":"recording_end"}`)

	var states []string
	var audio []byte
	var result map[string]interface{}
	for result == nil {
		messageType, msg, payload := stream.read(t)
		switch {
		case messageType == websocket.BinaryMessage:
			audio = payload
		case msg["type"] == string(MessageTypeState):
			states = append(states, msg["state"].(string))
			if msg["state"] == "translating" && msg["transcript"] != "Hello, how are you?" {
				t.Errorf("Expected transcript with translating state, got %v", msg["transcript"])
			}
			if msg["state"] == "synthesizing" && msg["translation"] != "Bonjour, comment allez-vous ?" {
				t.Errorf("Expected translation with synthesizing state, got %v", msg["translation"])
			}
		case msg["type"] == string(MessageTypeResult):
			result = msg
		default:
			t.Fatalf("Unexpected message %v", msg)
		}
	}

	expected := []string{"transcribing", "translating", "synthesizing", "done"}
	if strings.Join(states, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected states %v, got %v", expected, states)
	}
	if len(audio) == 0 {
		t.Fatal("Expected synthesized audio before the result")
	}
	if result["state"] != "done" {
		t.Errorf("Expected done, got %v", result["state"])
	}
	if result["language_code"] != "fr" {
		t.Errorf("Expected language code fr, got %v", result["language_code"])
	}
	if int(result["audio_bytes"].(float64)) != len(audio) {
		t.Errorf("Expected audio_bytes %d, got %v", len(audio), result["audio_bytes"])
	}
}

func TestHub_Speak(t *testing.T) {
	stream := setupTestStream(t, 0)

	stream.writeJSON(t, `{"type":"speak","text":"Hola","language":"Spanish"}`)

	messageType, _, audio := stream.read(t)
	if messageType != websocket.BinaryMessage || len(audio) == 0 {
		t.Fatalf("Expected binary audio, got type %d", messageType)
	}

	_, msg, _ := stream.read(t)
	if msg["type"] != string(MessageTypeSpeakEnd) {
		t.Fatalf("Expected speak_end, got %v", msg)
	}
	if msg["language_code"] != "es" {
		t.Errorf("Expected language code es, got %v", msg["language_code"])
	}
}

func TestHub_SpeakFailure(t *testing.T) {
	stream := setupTestStream(t, 0)
	stream.tts.Err = context.DeadlineExceeded

	stream.writeJSON(t, `{"type":"speak","text":"Hola","language_code":"es"}`)

	_, msg, _ := stream.read(t)
	if msg["type"] != string(MessageTypeError) || msg["error_code"] != ErrorCodeSynthesis {
		t.Fatalf("Expected synthesis error, got %v", msg)
	}
}

func TestHub_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name     string
		send     func(t *testing.T, s *testStream)
		wantCode string
	}{
		{
			name:     "audio before recording_start",
			send:     func(t *testing.T, s *testStream) { s.writeBinary(t, []byte{1, 2, 3}) },
			wantCode: ErrorCodeNotRecording,
		},
		{
			name:     "recording_end without recording",
			send:     func(t *testing.T, s *testStream) { s.writeJSON(t, `{"type":"recording_end"}`) },
			wantCode: ErrorCodeNotRecording,
		},
		{
			name: "empty recording",
			send: func(t *testing.T, s *testStream) {
				s.writeJSON(t, `{"type":"recording_start"}`)
				s.writeJSON(t, `{"type":"recording_end"}`)
			},
			wantCode: ErrorCodeEmptyAudio,
		},
		{
			name: "recording too large",
			send: func(t *testing.T, s *testStream) {
				s.writeJSON(t, `{"type":"recording_start"}`)
				s.writeBinary(t, make([]byte, 64))
			},
			wantCode: ErrorCodeAudioTooLarge,
		},
		{
			name:     "unsupported language",
			send:     func(t *testing.T, s *testStream) { s.writeJSON(t, `{"type":"recording_start","target_language":"Klingon"}`) },
			wantCode: ErrorCodeInvalidMessage,
		},
		{
			name:     "malformed json",
			send:     func(t *testing.T, s *testStream) { s.writeJSON(t, `{"type":`) },
			wantCode: ErrorCodeInvalidMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := setupTestStream(t, 32)

			tt.send(t, stream)

			_, msg, _ := stream.read(t)
			if msg["type"] != string(MessageTypeError) {
				t.Fatalf("Expected error message, got %v", msg)
			}
			if msg["error_code"] != tt.wantCode {
				t.Errorf("Expected error code %s, got %v", tt.wantCode, msg["error_code"])
			}
		})
	}
}

func TestHub_PingPong(t *testing.T) {
	stream := setupTestStream(t, 0)

	stream.writeJSON(t, `{"type":"ping","data":"abc"}`)

	_, msg, _ := stream.read(t)
	if msg["type"] != string(MessageTypePong) || msg["data"] != "abc" {
		t.Errorf("Expected pong with data, got %v", msg)
	}
}

func TestHub_ClientCount(t *testing.T) {
	stream := setupTestStream(t, 0)

	deadline := time.Now().Add(2 * time.Second)
	for stream.hub.ClientCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if stream.hub.ClientCount() != 1 {
		t.Fatalf("Expected 1 client, got %d", stream.hub.ClientCount())
	}

	stream.conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for stream.hub.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if stream.hub.ClientCount() != 0 {
		t.Errorf("Expected client to be unregistered, got %d", stream.hub.ClientCount())
	}
}
