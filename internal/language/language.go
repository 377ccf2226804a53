package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Auto is the hint value that requests language detection.
const Auto = "auto"

// Bibliographic ISO 639-2 codes and English words the tag parser does not
// resolve on its own.
var aliases = map[string]string{
	"fre":        "fr",
	"ger":        "de",
	"chi":        "zh",
	"dut":        "nl",
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"polish":     "pl",
	"swedish":    "sv",
	"danish":     "da",
	"norwegian":  "no",
	"finnish":    "fi",
}

// Normalize converts a language hint to its base ISO 639-1 code, or the
// shortest code x/text knows when no two-letter form exists. Empty and
// "auto" hints return "". Unrecognized hints are an error.
func Normalize(hint string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(hint))
	if value == "" || value == Auto {
		return "", nil
	}
	if code, ok := aliases[value]; ok {
		return code, nil
	}
	tag, err := language.Parse(value)
	if err != nil {
		return "", fmt.Errorf("language %q: %w", hint, err)
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return "", fmt.Errorf("language %q: no base language", hint)
	}
	return base.String(), nil
}

// ToISO2 is Normalize without the error: unrecognized hints return "".
func ToISO2(hint string) string {
	code, err := Normalize(hint)
	if err != nil {
		return ""
	}
	return code
}

// DisplayName returns the English name for a language code. Empty input
// yields "Auto"; unknown codes are returned uppercased.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" || strings.EqualFold(trimmed, Auto) {
		return "Auto"
	}
	normalized, err := Normalize(trimmed)
	if err != nil || normalized == "" {
		return strings.ToUpper(trimmed)
	}
	name := display.English.Languages().Name(language.Make(normalized))
	if name == "" {
		return strings.ToUpper(trimmed)
	}
	return name
}
