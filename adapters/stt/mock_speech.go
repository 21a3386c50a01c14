package stt

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
	"github.com/shelenderrkumar/healthcare-translation/domain/repositories"
)

// MockSpeechToText is a placeholder implementation for speech recognition.
// With Transcript or Err set it returns them; otherwise it picks a phrase by
// audio size.
type MockSpeechToText struct {
	Transcript string
	Err        error

	logger *zap.Logger
	calls  atomic.Int64
}

var _ repositories.SpeechToText = (*MockSpeechToText)(nil)

// NewMockSpeechToText creates a new mock speech-to-text service
func NewMockSpeechToText(logger *zap.Logger) *MockSpeechToText {
	return &MockSpeechToText{
		logger: logger,
	}
}

// Transcribe implements repositories.SpeechToText
func (s *MockSpeechToText) Transcribe(ctx context.Context, clip entities.AudioClip) (string, error) {
	s.calls.Add(1)
	s.logger.Info("Processing mock speech-to-text",
		zap.Int("audioSize", clip.Size()),
		zap.String("encoding", clip.Encoding))

	if s.Err != nil {
		return "", entities.AsStageError(entities.StageTranscription, s.Err)
	}
	if clip.IsEmpty() {
		return "", entities.TranscriptionFailed("audio clip is empty", nil)
	}
	if s.Transcript != "" {
		return s.Transcript, nil
	}

	switch {
	case clip.Size() > 10000:
		return "I have had a headache and a mild fever since yesterday evening.", nil
	case clip.Size() > 5000:
		return "Take two tablets daily.", nil
	case clip.Size() > 1000:
		return "Hello, how are you?", nil
	default:
		return "Hello", nil
	}
}

// Calls returns how many times Transcribe was invoked
func (s *MockSpeechToText) Calls() int {
	return int(s.calls.Load())
}
