package repositories

import (
	"context"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
)

// TextToSpeech abstracts speech synthesis services
type TextToSpeech interface {
	// Synthesize renders text in the language identified by languageCode and
	// returns the complete audio buffer. Any failure is an *entities.StageError
	// for the synthesis stage.
	Synthesize(ctx context.Context, text, languageCode string) (*entities.SynthesisResult, error)
}
