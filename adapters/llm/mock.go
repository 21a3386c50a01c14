package llm

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
	"github.com/shelenderrkumar/healthcare-translation/domain/repositories"
)

// cannedTranslations covers the phrases the mock speech adapter produces
var cannedTranslations = map[entities.Language]map[string]string{
	entities.Spanish: {
		"Hello":                   "Hola",
		"Hello, how are you?":     "Hola, ¿cómo estás?",
		"Take two tablets daily.": "Tome dos tabletas al día.",
	},
	entities.French: {
		"Hello":                   "Bonjour",
		"Hello, how are you?":     "Bonjour, comment allez-vous ?",
		"Take two tablets daily.": "Prenez deux comprimés par jour.",
	},
}

// MockTranslator is a placeholder Translator. Err forces a failure; Reply fixes
// the answer; otherwise known phrases are looked up and unknown text is tagged
// with the target language.
type MockTranslator struct {
	Reply string
	Err   error

	logger *zap.Logger
	calls  atomic.Int64
}

var _ repositories.Translator = (*MockTranslator)(nil)

// NewMockTranslator creates a new mock translator
func NewMockTranslator(logger *zap.Logger) *MockTranslator {
	return &MockTranslator{logger: logger}
}

// Translate implements repositories.Translator
func (m *MockTranslator) Translate(ctx context.Context, text string, target entities.Language) (string, error) {
	m.calls.Add(1)
	m.logger.Info("Processing mock translation",
		zap.String("target", string(target)),
		zap.Int("textLength", len(text)))

	if m.Err != nil {
		return "", entities.AsStageError(entities.StageTranslation, m.Err)
	}
	if err := validateTranslationInput(text, target); err != nil {
		return "", err
	}
	if m.Reply != "" {
		return m.Reply, nil
	}
	if phrase, ok := cannedTranslations[target][text]; ok {
		return phrase, nil
	}
	return "[" + entities.LanguageCodeOf(target) + "] " + text, nil
}

// Calls returns how many times Translate was invoked
func (m *MockTranslator) Calls() int {
	return int(m.calls.Load())
}
