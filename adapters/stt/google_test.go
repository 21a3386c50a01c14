package stt

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
	"go.uber.org/zap/zaptest"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
	"github.com/shelenderrkumar/healthcare-translation/domain/repositories"
)

var _ repositories.SpeechToText = &GoogleSpeechToText{}

type fakeRecognizer struct {
	resp    *speechpb.RecognizeResponse
	err     error
	lastReq *speechpb.RecognizeRequest
	closed  bool
}

func (f *fakeRecognizer) Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func (f *fakeRecognizer) Close() error {
	f.closed = true
	return nil
}

func TestGoogleSpeechToText_Transcribe(t *testing.T) {
	fake := &fakeRecognizer{
		resp: &speechpb.RecognizeResponse{
			Results: []*speechpb.SpeechRecognitionResult{
				{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "Hello,"}}},
				{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "how are you?"}}},
			},
		},
	}
	g := newGoogleSpeechToText(fake, GoogleConfig{}, zaptest.NewLogger(t))

	clip := entities.NewAudioClip([]byte("RIFFdata"), entities.EncodingWAV, 16000, "")
	text, err := g.Transcribe(context.Background(), clip)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if text != "Hello, how are you?" {
		t.Errorf("Expected joined transcript, got %q", text)
	}
	if fake.lastReq.GetConfig().GetLanguageCode() != defaultGoogleLanguage {
		t.Errorf("Expected default language, got %s", fake.lastReq.GetConfig().GetLanguageCode())
	}
	if fake.lastReq.GetConfig().GetEncoding() != speechpb.RecognitionConfig_LINEAR16 {
		t.Errorf("Expected LINEAR16, got %v", fake.lastReq.GetConfig().GetEncoding())
	}
	if fake.lastReq.GetConfig().GetSampleRateHertz() != 16000 {
		t.Errorf("Expected 16000Hz, got %d", fake.lastReq.GetConfig().GetSampleRateHertz())
	}
}

func TestGoogleSpeechToText_UsesLanguageHint(t *testing.T) {
	fake := &fakeRecognizer{resp: &speechpb.RecognizeResponse{}}
	g := newGoogleSpeechToText(fake, GoogleConfig{LanguageCode: "en-GB"}, zaptest.NewLogger(t))

	clip := entities.NewAudioClip([]byte{1, 2}, entities.EncodingFLAC, 0, "").WithLanguageHint(entities.Hindi)
	if _, err := g.Transcribe(context.Background(), clip); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := fake.lastReq.GetConfig().GetLanguageCode(); got != "hi-IN" {
		t.Errorf("Expected hi-IN, got %s", got)
	}
}

func TestGoogleSpeechToText_Failures(t *testing.T) {
	logger := zaptest.NewLogger(t)

	g := newGoogleSpeechToText(&fakeRecognizer{}, GoogleConfig{}, logger)
	_, err := g.Transcribe(context.Background(), entities.NewAudioClip(nil, "", 0, ""))
	if !errors.Is(err, entities.ErrTranscriptionFailed) {
		t.Errorf("Expected transcription failure for empty clip, got %v", err)
	}

	_, err = g.Transcribe(context.Background(), entities.NewAudioClip([]byte{1}, "AAC", 0, ""))
	if !errors.Is(err, entities.ErrTranscriptionFailed) {
		t.Errorf("Expected transcription failure for unsupported encoding, got %v", err)
	}

	failing := newGoogleSpeechToText(&fakeRecognizer{err: errors.New("rpc error: code = Unavailable")}, GoogleConfig{}, logger)
	_, err = failing.Transcribe(context.Background(), entities.NewAudioClip([]byte{1}, "", 0, ""))
	var stageErr *entities.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != entities.StageTranscription {
		t.Errorf("Expected transcription stage error, got %v", err)
	}
}

func TestGoogleSpeechToText_Close(t *testing.T) {
	fake := &fakeRecognizer{}
	g := newGoogleSpeechToText(fake, GoogleConfig{}, zaptest.NewLogger(t))
	if err := g.Close(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !fake.closed {
		t.Error("Expected client to be closed")
	}
}

func TestGetAudioEncoding(t *testing.T) {
	cases := map[string]speechpb.RecognitionConfig_AudioEncoding{
		"WAV":       speechpb.RecognitionConfig_LINEAR16,
		"linear16":  speechpb.RecognitionConfig_LINEAR16,
		"FLAC":      speechpb.RecognitionConfig_FLAC,
		"OGG_OPUS":  speechpb.RecognitionConfig_OGG_OPUS,
		"WEBM_OPUS": speechpb.RecognitionConfig_WEBM_OPUS,
		"MULAW":     speechpb.RecognitionConfig_MULAW,
	}
	for in, want := range cases {
		got, err := getAudioEncoding(in)
		if err != nil {
			t.Errorf("getAudioEncoding(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Errorf("getAudioEncoding(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := getAudioEncoding("AAC"); err == nil {
		t.Error("Expected error for unsupported encoding")
	}
}
