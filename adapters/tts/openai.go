package tts

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/shelenderrkumar/healthcare-translation/adapters/openaiapi"
	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
	"github.com/shelenderrkumar/healthcare-translation/domain/repositories"
)

// OpenAITTS implements TextToSpeech with the OpenAI speech endpoint. The
// voices are multilingual; the language follows the text.
type OpenAITTS struct {
	client *openai.Client
	model  openai.SpeechModel
	voice  openai.SpeechVoice
	logger *zap.Logger
}

var _ repositories.TextToSpeech = (*OpenAITTS)(nil)

// NewOpenAITTS creates the adapter. Empty model and voice select tts-1 and alloy.
func NewOpenAITTS(client *openai.Client, model, voice string, logger *zap.Logger) *OpenAITTS {
	speechModel := openai.SpeechModel(model)
	if model == "" {
		speechModel = openai.TTSModel1
		logger.Info("Using default speech model", zap.String("model", string(speechModel)))
	}
	speechVoice := openai.SpeechVoice(voice)
	if voice == "" {
		speechVoice = openai.VoiceAlloy
		logger.Info("Using default voice", zap.String("voice", string(speechVoice)))
	}
	return &OpenAITTS{
		client: client,
		model:  speechModel,
		voice:  speechVoice,
		logger: logger,
	}
}

// Synthesize implements repositories.TextToSpeech
func (o *OpenAITTS) Synthesize(ctx context.Context, text, languageCode string) (*entities.SynthesisResult, error) {
	if _, stageErr := validateSynthesisInput(text, languageCode); stageErr != nil {
		return nil, stageErr
	}

	o.logger.Info("Converting text to speech",
		zap.String("provider", "openai"),
		zap.Int("textLength", len(text)),
		zap.String("languageCode", languageCode))

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          o.model,
		Input:          text,
		Voice:          o.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		o.logger.Error("Speech request failed", zap.Error(err))
		if ctx.Err() != nil {
			return nil, entities.AsStageError(entities.StageSynthesis, err)
		}
		return nil, entities.SynthesisFailed(openaiapi.Describe(err), err)
	}
	defer resp.Close()

	audio, err := readAudio(resp)
	if err != nil {
		return nil, entities.SynthesisFailed("incomplete audio from speech service", err)
	}

	o.logger.Info("Speech synthesis completed",
		zap.String("provider", "openai"),
		zap.Int("audioSize", len(audio)))

	return mpegResult(audio, languageCode), nil
}
