package language

import (
	"strings"

	"github.com/pemistahl/lingua-go"

	"docqa/internal/rag/interfaces"
)

// DefaultLanguage is the fallback for ambiguous or failed detection.
const DefaultLanguage = "en"

// SupportedLanguages is the closed set of ISO 639-1 codes the pipeline
// answers in.
var SupportedLanguages = []string{"en", "es", "fr", "de", "it", "pt", "zh", "ja"}

var linguaByCode = map[string]lingua.Language{
	"en": lingua.English,
	"es": lingua.Spanish,
	"fr": lingua.French,
	"de": lingua.German,
	"it": lingua.Italian,
	"pt": lingua.Portuguese,
	"zh": lingua.Chinese,
	"ja": lingua.Japanese,
}

// Detector classifies free text into one of the supported languages.
// Detection never fails: any input the underlying statistical detector
// cannot confidently place inside the supported set yields the fallback.
type Detector struct {
	detector lingua.LanguageDetector
	codes    map[string]struct{}
	fallback string
}

// NewDetector creates a Detector restricted to the given language codes.
// Codes outside the supported set are ignored; an empty supported list
// means the full SupportedLanguages set. An unknown fallback defaults to
// DefaultLanguage.
func NewDetector(fallback string, supported []string) *Detector {
	if len(supported) == 0 {
		supported = SupportedLanguages
	}
	if _, ok := linguaByCode[fallback]; !ok {
		fallback = DefaultLanguage
	}

	codes := make(map[string]struct{}, len(supported))
	langs := make([]lingua.Language, 0, len(supported))
	for _, code := range supported {
		if lang, ok := linguaByCode[code]; ok {
			codes[code] = struct{}{}
			langs = append(langs, lang)
		}
	}
	if _, ok := codes[fallback]; !ok {
		codes[fallback] = struct{}{}
		langs = append(langs, linguaByCode[fallback])
	}

	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(langs...).
			Build(),
		codes:    codes,
		fallback: fallback,
	}
}

// Detect returns the language code for text, or the fallback when the
// input is empty, degenerate, or classified outside the supported set.
func (d *Detector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return d.fallback
	}

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return d.fallback
	}

	code := strings.ToLower(lang.IsoCode639_1().String())
	if _, ok := d.codes[code]; !ok {
		return d.fallback
	}
	return code
}

// compile-time check to ensure Detector implements the Detector interface
var _ interfaces.Detector = (*Detector)(nil)
