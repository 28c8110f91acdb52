package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFallsBackOnDegenerateInput(t *testing.T) {
	d := NewDetector(DefaultLanguage, nil)

	assert.Equal(t, "en", d.Detect(""))
	assert.Equal(t, "en", d.Detect("   \t\n"))
	assert.Equal(t, "en", d.Detect("🤖🤖🤖"))
}

func TestDetectSupportedLanguages(t *testing.T) {
	d := NewDetector(DefaultLanguage, nil)

	cases := []struct {
		text string
		want string
	}{
		{"What is the main conclusion of this document?", "en"},
		{"¿Cuál es la conclusión principal de este documento?", "es"},
		{"Quelle est la conclusion principale de ce document ?", "fr"},
		{"Was ist die wichtigste Schlussfolgerung dieses Dokuments?", "de"},
		{"Qual è la conclusione principale di questo documento?", "it"},
		{"As informações não estão disponíveis para você hoje.", "pt"},
		{"这份文件的主要结论是什么？", "zh"},
		{"この文書の主な結論は何ですか？", "ja"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, d.Detect(tc.text), "text: %s", tc.text)
	}
}

func TestDetectNeverReturnsOutOfSetCode(t *testing.T) {
	// Detector restricted to two languages: everything else maps to the
	// fallback, including text in an excluded language.
	d := NewDetector("en", []string{"en", "ja"})

	got := d.Detect("¿Dónde está la biblioteca de la ciudad?")
	assert.Contains(t, []string{"en", "ja"}, got)
}

func TestNewDetectorUnknownFallback(t *testing.T) {
	d := NewDetector("xx", nil)
	assert.Equal(t, "en", d.Detect(""))
}
