package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Streams a recording to /api/v1/stream and saves the translated speech
func main() {
	addr := flag.String("addr", "localhost:8080", "server host:port")
	file := flag.String("file", "sample_audio.wav", "recording to send")
	source := flag.String("source", "English", "source language label")
	target := flag.String("target", "Spanish", "target language label")
	token := flag.String("token", os.Getenv("API_TOKEN"), "bearer token when the API requires one")
	chunkSize := flag.Int("chunk", 4096, "bytes per binary frame")
	out := flag.String("out", "translation.mp3", "where to write the synthesized audio")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	audio, err := os.ReadFile(*file)
	if err != nil {
		logger.Fatal("Failed to read recording", zap.Error(err))
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/api/v1/stream"}
	headers := http.Header{}
	if *token != "" {
		headers.Add("Authorization", "Bearer "+*token)
	}

	logger.Info("Connecting", zap.String("url", u.String()))
	c, _, err := websocket.DefaultDialer.Dial(u.String(), headers)
	if err != nil {
		logger.Fatal("dial", zap.Error(err))
	}
	defer c.Close()

	done := make(chan struct{})
	go handleIncomingMessages(c, *out, done, logger)

	if err := sendRecording(c, audio, *chunkSize, *source, *target, encodingFor(*file)); err != nil {
		logger.Fatal("Failed to send recording", zap.Error(err))
	}
	logger.Info("Recording sent, waiting for result", zap.Int("bytes", len(audio)))

	select {
	case <-done:
	case <-interrupt:
		logger.Info("interrupt")
		// Cleanly close the connection by sending a close message and then
		// waiting (with timeout) for the server to close the connection.
		err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err != nil {
			logger.Warn("write close", zap.Error(err))
			return
		}
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

func sendRecording(c *websocket.Conn, audio []byte, chunkSize int, source, target, encoding string) error {
	if chunkSize <= 0 {
		chunkSize = 4096
	}

	if err := sendJSONMessage(c, map[string]interface{}{
		"type":            "recording_start",
		"source_language": source,
		"target_language": target,
		"encoding":        encoding,
	}); err != nil {
		return err
	}

	for start := 0; start < len(audio); start += chunkSize {
		end := min(start+chunkSize, len(audio))
		if err := c.WriteMessage(websocket.BinaryMessage, audio[start:end]); err != nil {
			return err
		}
	}

	return sendJSONMessage(c, map[string]interface{}{"type": "recording_end"})
}

func sendJSONMessage(c *websocket.Conn, message map[string]interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, data)
}

// handleIncomingMessages logs state changes, saves the audio frame and
// returns after the result message
func handleIncomingMessages(c *websocket.Conn, out string, done chan struct{}, logger *zap.Logger) {
	defer close(done)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			logger.Warn("read", zap.Error(err))
			return
		}

		if messageType == websocket.BinaryMessage {
			if err := os.WriteFile(out, message, 0o644); err != nil {
				logger.Error("Failed to write audio", zap.Error(err))
				continue
			}
			logger.Info("Saved synthesized audio", zap.String("file", out), zap.Int("bytes", len(message)))
			continue
		}

		var msg map[string]interface{}
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Warn("unmarshal error", zap.Error(err))
			continue
		}

		switch msg["type"] {
		case "state":
			logger.Info("Pipeline state",
				zap.Any("state", msg["state"]),
				zap.Any("transcript", msg["transcript"]),
				zap.Any("translation", msg["translation"]))
		case "result":
			logger.Info("Run finished",
				zap.Any("state", msg["state"]),
				zap.Any("failedStage", msg["failed_stage"]),
				zap.Any("error", msg["error"]),
				zap.Any("durationMs", msg["duration_ms"]))
			return
		case "error":
			logger.Error("Server error", zap.Any("code", msg["error_code"]), zap.Any("message", msg["message"]))
			return
		default:
			logger.Info("Received message", zap.ByteString("payload", message))
		}
	}
}

func encodingFor(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".mp3":
		return "MP3"
	case ".flac":
		return "FLAC"
	case ".ogg", ".opus":
		return "OGG_OPUS"
	case ".webm":
		return "WEBM_OPUS"
	default:
		return "WAV"
	}
}
