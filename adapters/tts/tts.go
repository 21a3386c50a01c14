// Package tts holds the TextToSpeech adapters. Every adapter returns a fully
// buffered MP3 tagged with the requested language code.
package tts

import (
	"fmt"
	"io"
	"strings"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
)

// maxAudioBytes bounds a single synthesized response
const maxAudioBytes = 32 << 20

func validateSynthesisInput(text, languageCode string) (entities.Language, *entities.StageError) {
	if strings.TrimSpace(text) == "" {
		return "", entities.SynthesisFailed("text cannot be empty", nil)
	}
	language, err := entities.LanguageForCode(languageCode)
	if err != nil {
		return "", entities.SynthesisFailed("unsupported language code: "+languageCode, err)
	}
	return language, nil
}

// readAudio buffers body, refusing empty or oversized payloads
func readAudio(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxAudioBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) > maxAudioBytes {
		return nil, fmt.Errorf("audio exceeds %d bytes", maxAudioBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("service returned no audio")
	}
	return data, nil
}

// mpegResult tags audio with the canonical spelling of languageCode
func mpegResult(audio []byte, languageCode string) *entities.SynthesisResult {
	if language, err := entities.LanguageForCode(languageCode); err == nil {
		languageCode = entities.LanguageCodeOf(language)
	}
	return &entities.SynthesisResult{
		Audio:        audio,
		Format:       entities.FormatMPEG,
		LanguageCode: languageCode,
	}
}
