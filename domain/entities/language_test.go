package entities

import (
	"errors"
	"testing"
)

func TestLanguageCodeOf_TotalOverSupportedSet(t *testing.T) {
	allowed := map[string]bool{"en": true, "es": true, "hi": true, "zh-CN": true, "ar": true, "fr": true}

	seen := make(map[string]bool)
	for _, l := range SupportedLanguages() {
		code := LanguageCodeOf(l)
		if !allowed[code] {
			t.Errorf("LanguageCodeOf(%s) = %q, not in the fixed code set", l, code)
		}
		if seen[code] {
			t.Errorf("code %q mapped from more than one label", code)
		}
		seen[code] = true
	}

	if len(seen) != len(allowed) {
		t.Errorf("Expected %d distinct codes, got %d", len(allowed), len(seen))
	}
}

func TestLanguageCodeOf_Table(t *testing.T) {
	cases := map[Language]string{
		English:  "en",
		Spanish:  "es",
		Hindi:    "hi",
		Mandarin: "zh-CN",
		Arabic:   "ar",
		French:   "fr",
	}
	for label, want := range cases {
		if got := LanguageCodeOf(label); got != want {
			t.Errorf("LanguageCodeOf(%s) = %q, want %q", label, got, want)
		}
	}
}

func TestLanguageCodeOf_UnsupportedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for unsupported label")
		}
	}()
	LanguageCodeOf(Language("Klingon"))
}

func TestParseLanguage(t *testing.T) {
	l, err := ParseLanguage("  spanish ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if l != Spanish {
		t.Errorf("Expected Spanish, got %s", l)
	}

	_, err = ParseLanguage("Esperanto")
	if !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("Expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestLanguageForCode(t *testing.T) {
	l, err := LanguageForCode("zh-cn")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if l != Mandarin {
		t.Errorf("Expected Mandarin, got %s", l)
	}

	if IsSupportedCode("de") {
		t.Error("Expected de to be unsupported")
	}
	if !IsSupportedCode("fr") {
		t.Error("Expected fr to be supported")
	}
}

func TestLanguage_ISO6391AndLocale(t *testing.T) {
	if got := Mandarin.ISO6391(); got != "zh" {
		t.Errorf("Expected zh, got %s", got)
	}
	if got := Arabic.ISO6391(); got != "ar" {
		t.Errorf("Expected ar, got %s", got)
	}
	if got := Hindi.Locale(); got != "hi-IN" {
		t.Errorf("Expected hi-IN, got %s", got)
	}
	if got := Language("Klingon").Code(); got != "" {
		t.Errorf("Expected empty code for unsupported label, got %q", got)
	}
}

func TestLanguageSelection_Validate(t *testing.T) {
	if err := DefaultLanguageSelection().Validate(); err != nil {
		t.Errorf("Default selection should be valid: %v", err)
	}

	bad := LanguageSelection{Source: English, Target: "Latin"}
	if err := bad.Validate(); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("Expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestSupportedLanguages_ReturnsCopy(t *testing.T) {
	langs := SupportedLanguages()
	langs[0] = "Changed"
	if SupportedLanguages()[0] != English {
		t.Error("SupportedLanguages must not expose the internal slice")
	}
}
