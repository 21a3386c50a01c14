package stt

import (
	"context"
	"path"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/shelenderrkumar/healthcare-translation/adapters/openaiapi"
	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
	"github.com/shelenderrkumar/healthcare-translation/domain/repositories"
)

const defaultWhisperModel = openai.Whisper1

// WhisperSpeechToText implements SpeechToText with the OpenAI transcription API
type WhisperSpeechToText struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.SpeechToText = (*WhisperSpeechToText)(nil)

// NewWhisperSpeechToText creates a Whisper adapter. An empty model selects whisper-1.
func NewWhisperSpeechToText(client *openai.Client, model string, logger *zap.Logger) *WhisperSpeechToText {
	if model == "" {
		model = defaultWhisperModel
		logger.Info("Using default transcription model", zap.String("model", model))
	}
	return &WhisperSpeechToText{
		client: client,
		model:  model,
		logger: logger,
	}
}

// Transcribe sends the clip to Whisper and returns the text verbatim
func (w *WhisperSpeechToText) Transcribe(ctx context.Context, clip entities.AudioClip) (string, error) {
	if clip.IsEmpty() {
		return "", entities.TranscriptionFailed("audio clip is empty", nil)
	}

	w.logger.Info("Processing speech-to-text",
		zap.String("provider", "openai"),
		zap.Int("audioSize", clip.Size()),
		zap.String("encoding", clip.Encoding))

	req := openai.AudioRequest{
		Model:    w.model,
		FilePath: uploadName(clip),
		Reader:   clip.Reader(),
	}
	if clip.LanguageHint.IsSupported() {
		req.Language = clip.LanguageHint.ISO6391()
	}

	resp, err := w.client.CreateTranscription(ctx, req)
	if err != nil {
		w.logger.Error("Whisper transcription failed", zap.Error(err))
		if ctx.Err() != nil {
			return "", entities.AsStageError(entities.StageTranscription, err)
		}
		return "", entities.TranscriptionFailed(openaiapi.Describe(err), err)
	}

	w.logger.Info("Transcription completed", zap.Int("textLength", len(resp.Text)))
	return resp.Text, nil
}

// uploadName returns the clip name with an extension matching its encoding.
// The transcription endpoint picks its decoder from the file extension.
func uploadName(clip entities.AudioClip) string {
	want := entities.FileExtension(clip.Encoding)
	ext := path.Ext(clip.Name)
	if want == "" || strings.EqualFold(ext, want) {
		return clip.Name
	}
	base := strings.TrimSuffix(clip.Name, ext)
	if base == "" {
		base = "voice_message"
	}
	return base + want
}
