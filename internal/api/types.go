package api

import (
	"encoding/base64"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// LanguageInfo is one entry of the supported language list
type LanguageInfo struct {
	Label string `json:"label"`
	Code  string `json:"code"`
}

// LanguagesResponse lists the supported languages and the form defaults
type LanguagesResponse struct {
	Languages     []LanguageInfo `json:"languages"`
	DefaultSource string         `json:"default_source"`
	DefaultTarget string         `json:"default_target"`
}

// TranslationResponse renders a pipeline outcome. Fields of stages that did not
// succeed are omitted.
type TranslationResponse struct {
	State          string `json:"state"`
	FailedStage    string `json:"failed_stage,omitempty"`
	Error          string `json:"error,omitempty"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Transcript     string `json:"transcript,omitempty"`
	Translation    string `json:"translation,omitempty"`
	Audio          string `json:"audio,omitempty"` // base64
	AudioFormat    string `json:"audio_format,omitempty"`
	LanguageCode   string `json:"language_code,omitempty"`
	DurationMs     int64  `json:"duration_ms"`
}

// SpeechRequest is the text-to-speech shortcut payload. Either LanguageCode or
// Language must be set.
type SpeechRequest struct {
	Text         string `json:"text"`
	LanguageCode string `json:"language_code"`
	Language     string `json:"language"`
}

// RunsResponse lists recent run records
type RunsResponse struct {
	Runs []*entities.RunRecord `json:"runs"`
}

func newTranslationResponse(outcome *entities.PipelineOutcome) TranslationResponse {
	resp := TranslationResponse{
		State:          string(outcome.State),
		FailedStage:    string(outcome.FailedStage),
		SourceLanguage: string(outcome.Selection.Source),
		TargetLanguage: string(outcome.Selection.Target),
		DurationMs:     outcome.Duration.Milliseconds(),
	}
	if outcome.Failure != nil {
		resp.Error = outcome.Failure.Message
	}
	if text, ok := outcome.Transcript(); ok {
		resp.Transcript = text
	}
	if text, ok := outcome.TranslatedText(); ok {
		resp.Translation = text
	}
	if audio, ok := outcome.Audio(); ok {
		resp.Audio = base64.StdEncoding.EncodeToString(audio.Audio)
		resp.AudioFormat = audio.Format
		resp.LanguageCode = audio.LanguageCode
	}
	return resp
}

func supportedLanguageInfo() LanguagesResponse {
	languages := entities.SupportedLanguages()
	infos := make([]LanguageInfo, 0, len(languages))
	for _, l := range languages {
		infos = append(infos, LanguageInfo{Label: string(l), Code: entities.LanguageCodeOf(l)})
	}
	return LanguagesResponse{
		Languages:     infos,
		DefaultSource: string(entities.DefaultSourceLanguage),
		DefaultTarget: string(entities.DefaultTargetLanguage),
	}
}
