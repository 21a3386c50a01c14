// Package llm holds the Translator adapters backed by chat language models.
package llm

import (
	"strings"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
)

func validateTranslationInput(text string, target entities.Language) *entities.StageError {
	if strings.TrimSpace(text) == "" {
		return entities.TranslationFailed("text cannot be empty", nil)
	}
	if !target.IsSupported() {
		return entities.TranslationFailed("unsupported target language: "+string(target), entities.ErrUnsupportedLanguage)
	}
	return nil
}
