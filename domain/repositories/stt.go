package repositories

import (
	"context"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
)

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// Transcribe converts one recorded clip to text. The text is returned as the
	// service produced it. Any failure is an *entities.StageError for the
	// transcription stage.
	Transcribe(ctx context.Context, clip entities.AudioClip) (string, error)
}
