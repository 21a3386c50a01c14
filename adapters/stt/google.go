package stt

import (
	"context"
	"fmt"
	"os"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
	"go.uber.org/zap"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
	"github.com/shelenderrkumar/healthcare-translation/domain/repositories"
)

const defaultGoogleLanguage = "en-US"

// recognizer is the part of *speech.Client the adapter uses
type recognizer interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
	Close() error
}

// GoogleConfig holds configuration for the Google Cloud Speech adapter.
// Credentials come from Application Default Credentials.
type GoogleConfig struct {
	LanguageCode string // Optional: locale used when the clip has no language hint
	Model        string // Optional: recognition model, e.g. "latest_short"
}

// GoogleConfigFromEnv reads GOOGLE_SPEECH_LANGUAGE and GOOGLE_SPEECH_MODEL
func GoogleConfigFromEnv() GoogleConfig {
	return GoogleConfig{
		LanguageCode: os.Getenv("GOOGLE_SPEECH_LANGUAGE"),
		Model:        os.Getenv("GOOGLE_SPEECH_MODEL"),
	}
}

// GoogleSpeechToText implements SpeechToText for Google Cloud
type GoogleSpeechToText struct {
	client       recognizer
	languageCode string
	model        string
	logger       *zap.Logger
}

var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)

// NewGoogleSpeechToText dials the Speech API once; the client is reused by every run.
func NewGoogleSpeechToText(ctx context.Context, config GoogleConfig, logger *zap.Logger) (*GoogleSpeechToText, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return newGoogleSpeechToText(client, config, logger), nil
}

func newGoogleSpeechToText(client recognizer, config GoogleConfig, logger *zap.Logger) *GoogleSpeechToText {
	languageCode := config.LanguageCode
	if languageCode == "" {
		languageCode = defaultGoogleLanguage
		logger.Info("Using default recognition language", zap.String("languageCode", languageCode))
	}
	return &GoogleSpeechToText{
		client:       client,
		languageCode: languageCode,
		model:        config.Model,
		logger:       logger,
	}
}

// Transcribe converts audio data to text using Google Cloud Speech-to-Text (non-streaming)
func (g *GoogleSpeechToText) Transcribe(ctx context.Context, clip entities.AudioClip) (string, error) {
	if clip.IsEmpty() {
		return "", entities.TranscriptionFailed("audio clip is empty", nil)
	}

	encoding, err := getAudioEncoding(clip.Encoding)
	if err != nil {
		return "", entities.TranscriptionFailed("unsupported audio encoding", err)
	}

	languageCode := g.languageCode
	if clip.LanguageHint.IsSupported() {
		languageCode = clip.LanguageHint.Locale()
	}

	g.logger.Info("Processing speech-to-text",
		zap.String("provider", "google"),
		zap.Int("audioSize", clip.Size()),
		zap.String("encoding", clip.Encoding),
		zap.String("languageCode", languageCode))

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   encoding,
			SampleRateHertz:            int32(clip.SampleRate),
			LanguageCode:               languageCode,
			Model:                      g.model,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: clip.Data},
		},
	}

	resp, err := g.client.Recognize(ctx, req)
	if err != nil {
		g.logger.Error("Google recognition failed", zap.Error(err))
		if ctx.Err() != nil {
			return "", entities.AsStageError(entities.StageTranscription, err)
		}
		return "", entities.TranscriptionFailed("speech service error", err)
	}

	// Consecutive results cover consecutive portions of the audio
	var parts []string
	for _, result := range resp.GetResults() {
		if alts := result.GetAlternatives(); len(alts) > 0 {
			parts = append(parts, alts[0].GetTranscript())
		}
	}

	text := strings.Join(parts, " ")
	g.logger.Info("Transcription completed", zap.Int("textLength", len(text)))
	return text, nil
}

// Close releases the underlying gRPC connection
func (g *GoogleSpeechToText) Close() error {
	return g.client.Close()
}

// getAudioEncoding converts string encoding to Google Speech API enum
func getAudioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch strings.ToUpper(encoding) {
	case entities.EncodingWAV, entities.EncodingLinear16:
		return speechpb.RecognitionConfig_LINEAR16, nil
	case entities.EncodingFLAC:
		return speechpb.RecognitionConfig_FLAC, nil
	case entities.EncodingMulaw:
		return speechpb.RecognitionConfig_MULAW, nil
	case "AMR":
		return speechpb.RecognitionConfig_AMR, nil
	case "AMR_WB":
		return speechpb.RecognitionConfig_AMR_WB, nil
	case entities.EncodingOggOpus:
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "SPEEX_WITH_HEADER_BYTE":
		return speechpb.RecognitionConfig_SPEEX_WITH_HEADER_BYTE, nil
	case entities.EncodingWebmOpus:
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}
