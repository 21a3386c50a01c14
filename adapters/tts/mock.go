package tts

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
	"github.com/shelenderrkumar/healthcare-translation/domain/repositories"
)

// mockFrame is an MPEG-1 Layer III frame header followed by silence
var mockFrame = append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 413)...)

// MockTTS returns a short silent MP3 for any valid input. Err forces a failure.
type MockTTS struct {
	Err error

	logger *zap.Logger
	calls  atomic.Int64
}

var _ repositories.TextToSpeech = (*MockTTS)(nil)

// NewMockTTS creates a new mock text-to-speech service
func NewMockTTS(logger *zap.Logger) *MockTTS {
	return &MockTTS{logger: logger}
}

// Synthesize implements repositories.TextToSpeech
func (m *MockTTS) Synthesize(ctx context.Context, text, languageCode string) (*entities.SynthesisResult, error) {
	m.calls.Add(1)
	m.logger.Info("Processing mock text-to-speech",
		zap.Int("textLength", len(text)),
		zap.String("languageCode", languageCode))

	if m.Err != nil {
		return nil, entities.AsStageError(entities.StageSynthesis, m.Err)
	}
	if _, stageErr := validateSynthesisInput(text, languageCode); stageErr != nil {
		return nil, stageErr
	}

	// One frame per ~10 characters keeps longer text audibly longer
	frames := len(text)/10 + 1
	audio := make([]byte, 0, frames*len(mockFrame))
	for i := 0; i < frames; i++ {
		audio = append(audio, mockFrame...)
	}
	return mpegResult(audio, languageCode), nil
}

// Calls returns how many times Synthesize was invoked
func (m *MockTTS) Calls() int {
	return int(m.calls.Load())
}
