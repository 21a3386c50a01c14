package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Language is the display label of a supported language, e.g. "Spanish".
type Language string

const (
	English  Language = "English"
	Spanish  Language = "Spanish"
	Hindi    Language = "Hindi"
	Mandarin Language = "Mandarin"
	Arabic   Language = "Arabic"
	French   Language = "French"
)

// Defaults match the initial selection of the recording form.
const (
	DefaultSourceLanguage = English
	DefaultTargetLanguage = Spanish
)

// ErrUnsupportedLanguage is returned when a label or code is outside the supported set.
var ErrUnsupportedLanguage = errors.New("unsupported language")

type languageInfo struct {
	code   string // synthesis code
	locale string // recognition locale
}

// languageTable is read-only after init and safe to share between pipeline runs.
var languageTable = map[Language]languageInfo{
	English:  {code: "en", locale: "en-US"},
	Spanish:  {code: "es", locale: "es-ES"},
	Hindi:    {code: "hi", locale: "hi-IN"},
	Mandarin: {code: "zh-CN", locale: "cmn-Hans-CN"},
	Arabic:   {code: "ar", locale: "ar-SA"},
	French:   {code: "fr", locale: "fr-FR"},
}

// supportedOrder is the order languages are offered to the user.
var supportedOrder = []Language{English, Spanish, Hindi, Mandarin, Arabic, French}

// SupportedLanguages returns the supported labels in display order.
func SupportedLanguages() []Language {
	out := make([]Language, len(supportedOrder))
	copy(out, supportedOrder)
	return out
}

// IsSupported reports whether l belongs to the supported set.
func (l Language) IsSupported() bool {
	_, ok := languageTable[l]
	return ok
}

// Code returns the synthesis language code of l, or "" when unsupported.
func (l Language) Code() string {
	return languageTable[l].code
}

// Locale returns the BCP-47 recognition locale of l, or "" when unsupported.
func (l Language) Locale() string {
	return languageTable[l].locale
}

// ISO6391 returns the two-letter language part of the synthesis code.
func (l Language) ISO6391() string {
	code := l.Code()
	if i := strings.IndexByte(code, '-'); i > 0 {
		return code[:i]
	}
	return code
}

// LanguageCodeOf maps a supported label to its synthesis code.
// Passing an unsupported label is a programming error and panics; labels coming
// from user input must go through ParseLanguage first.
func LanguageCodeOf(l Language) string {
	info, ok := languageTable[l]
	if !ok {
		panic(fmt.Sprintf("entities: no language code for unsupported label %q", string(l)))
	}
	return info.code
}

// ParseLanguage resolves a user supplied label, ignoring case and surrounding space.
func ParseLanguage(label string) (Language, error) {
	label = strings.TrimSpace(label)
	for _, l := range supportedOrder {
		if strings.EqualFold(string(l), label) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, label)
}

// LanguageForCode returns the label owning a synthesis code.
func LanguageForCode(code string) (Language, error) {
	for _, l := range supportedOrder {
		if strings.EqualFold(languageTable[l].code, code) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: code %q", ErrUnsupportedLanguage, code)
}

// IsSupportedCode reports whether code is one of the synthesis codes.
func IsSupportedCode(code string) bool {
	_, err := LanguageForCode(code)
	return err == nil
}

// LanguageSelection is the source/target pair chosen for one pipeline run.
type LanguageSelection struct {
	Source Language `json:"source"`
	Target Language `json:"target"`
}

// DefaultLanguageSelection returns the selection the form starts with.
func DefaultLanguageSelection() LanguageSelection {
	return LanguageSelection{Source: DefaultSourceLanguage, Target: DefaultTargetLanguage}
}

// Validate checks that both sides are supported labels.
func (s LanguageSelection) Validate() error {
	if !s.Source.IsSupported() {
		return fmt.Errorf("source language: %w: %q", ErrUnsupportedLanguage, string(s.Source))
	}
	if !s.Target.IsSupported() {
		return fmt.Errorf("target language: %w: %q", ErrUnsupportedLanguage, string(s.Target))
	}
	return nil
}
