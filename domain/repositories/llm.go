package repositories

import (
	"context"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
)

// Translator abstracts any chat/LLM provider used for translation
type Translator interface {
	// Translate asks the model to translate text into target and returns the
	// model's full reply. Any failure is an *entities.StageError for the
	// translation stage.
	Translate(ctx context.Context, text string, target entities.Language) (string, error)
}

// TranslationPrompt is the instruction sent ahead of the text to translate.
func TranslationPrompt(target entities.Language) string {
	return "Translate the following text to " + string(target) + ":"
}
