package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/shelenderrkumar/healthcare-translation/adapters/openaiapi"
	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
	"github.com/shelenderrkumar/healthcare-translation/domain/repositories"
)

const defaultOpenAIModel = openai.GPT4oMini

// OpenAITranslator implements Translator with OpenAI chat completions
type OpenAITranslator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.Translator = (*OpenAITranslator)(nil)

// NewOpenAITranslator creates a chat translator. An empty model selects gpt-4o-mini.
func NewOpenAITranslator(client *openai.Client, model string, logger *zap.Logger) *OpenAITranslator {
	if model == "" {
		model = defaultOpenAIModel
		logger.Info("Using default translation model", zap.String("model", model))
	}
	return &OpenAITranslator{
		client: client,
		model:  model,
		logger: logger,
	}
}

// Translate returns the content of the first choice unmodified
func (o *OpenAITranslator) Translate(ctx context.Context, text string, target entities.Language) (string, error) {
	if err := validateTranslationInput(text, target); err != nil {
		return "", err
	}

	o.logger.Info("Processing translation",
		zap.String("provider", "openai"),
		zap.String("model", o.model),
		zap.String("target", string(target)),
		zap.Int("textLength", len(text)))

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: repositories.TranslationPrompt(target)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		o.logger.Error("Chat completion failed", zap.Error(err))
		if ctx.Err() != nil {
			return "", entities.AsStageError(entities.StageTranslation, err)
		}
		return "", entities.TranslationFailed(openaiapi.Describe(err), err)
	}

	if len(resp.Choices) == 0 {
		return "", entities.TranslationFailed("empty response from model", nil)
	}

	translated := resp.Choices[0].Message.Content
	o.logger.Info("Translation completed", zap.Int("textLength", len(translated)))
	return translated, nil
}
