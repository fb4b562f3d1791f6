package textpattern

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLocale(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		name     string
		text     string
		expected Locale
	}{
		{"italian", "Non capisco perché questo non funziona", LocaleItalian},
		{"english", "I don't understand why this doesn't work", LocaleEnglish},
		{"spanish", "No puedo más, estoy harta de esto", LocaleSpanish},
		{"french", "Je ne comprends pas, c'est trop dur", LocaleFrench},
		{"german", "Ich verstehe das nicht und das ist zu schwer", LocaleGerman},
		{"no markers", "xyzzy plugh foobar", LocaleUnknown},
		{"empty", "", LocaleUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.DetectLocale(tt.text))
		})
	}
}

func TestAnalyzeTextExplicitFrustration(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		name   string
		text   string
		locale Locale
		min    float64
	}{
		{"italian give-up", "Odio la matematica, non ci riesco mai!", LocaleItalian, 0.8},
		{"english give-up", "I give up, this is impossible", LocaleEnglish, 0.8},
		{"spanish fed-up", "Estoy harta, no puedo más", LocaleSpanish, 0.8},
		{"french fed-up", "J'en ai marre, je n'y arrive pas", LocaleFrench, 0.8},
		{"german give-up", "Ich gebe auf, das ist unmöglich", LocaleGerman, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := m.AnalyzeText(tt.text, tt.locale)
			assert.GreaterOrEqual(t, analysis.FrustrationScore, tt.min)
			assert.NotEmpty(t, analysis.Matches)
		})
	}
}

func TestAnalyzeTextNeutral(t *testing.T) {
	m := NewMatcher()

	analysis := m.AnalyzeText("Il cielo è azzurro e il sole splende", LocaleItalian)
	assert.Zero(t, analysis.FrustrationScore)
	assert.Zero(t, analysis.RepeatScore)
	assert.Zero(t, analysis.ConfusionScore)
	assert.Empty(t, analysis.Matches)
}

func TestAnalyzeTextTokenBoundaries(t *testing.T) {
	m := NewMatcher()

	// Rule words buried inside longer words must not fire: "odio" in
	// "episodio", "basta" in "abbastanza"
	analysis := m.AnalyzeText("Questo episodio è abbastanza interessante", LocaleItalian)
	assert.Zero(t, analysis.FrustrationScore)
	assert.Zero(t, analysis.RepeatScore)
	assert.Zero(t, analysis.ConfusionScore)
	assert.Empty(t, analysis.Matches)

	// "ripeti" in "ripetizione"
	analysis = m.AnalyzeText("La ripetizione aiuta la memoria", LocaleItalian)
	assert.Zero(t, analysis.RepeatScore)

	// The same words standing alone still match
	analysis = m.AnalyzeText("Odio questo esercizio", LocaleItalian)
	assert.InDelta(t, 0.85, analysis.FrustrationScore, 0.001)

	analysis = m.AnalyzeText("Basta!", LocaleItalian)
	assert.InDelta(t, 0.7, analysis.FrustrationScore, 0.001)
}

func TestAnalyzeTextEmptyInput(t *testing.T) {
	m := NewMatcher()

	analysis := m.AnalyzeText("", LocaleUnknown)
	assert.Equal(t, Analysis{}, analysis)

	analysis = m.AnalyzeText("   \t\n", LocaleItalian)
	assert.Zero(t, analysis.FrustrationScore)
}

func TestAnalyzeTextScoreIsMaxNotSum(t *testing.T) {
	m := NewMatcher()

	// Two explicit phrases in one utterance must not push the score past
	// the strongest single match
	analysis := m.AnalyzeText("Odio tutto questo, non ce la faccio", LocaleItalian)
	assert.InDelta(t, 0.9, analysis.FrustrationScore, 0.001)
	assert.GreaterOrEqual(t, len(analysis.Matches), 2)
}

func TestAnalyzeTextUnknownLocaleFallback(t *testing.T) {
	m := NewMatcher()

	// No detection markers, but a strong Spanish phrase: the all-table scan
	// must still find it
	analysis := m.AnalyzeText("me rindo", LocaleUnknown)
	assert.InDelta(t, 0.9, analysis.FrustrationScore, 0.001)
}

func TestAnalyzeTextCategorySeparation(t *testing.T) {
	m := NewMatcher()

	analysis := m.AnalyzeText("Puoi ripetere? Non ho capito", LocaleItalian)
	assert.Zero(t, analysis.FrustrationScore)
	assert.InDelta(t, 0.55, analysis.RepeatScore, 0.001)
	assert.InDelta(t, 0.6, analysis.ConfusionScore, 0.001)
}

func TestAnalyzeTextCaseInsensitive(t *testing.T) {
	m := NewMatcher()

	lower := m.AnalyzeText("i give up", LocaleEnglish)
	upper := m.AnalyzeText("I GIVE UP", LocaleEnglish)
	assert.Equal(t, lower.FrustrationScore, upper.FrustrationScore)
}

func TestCountFillers(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		name     string
		text     string
		locale   Locale
		expected int
	}{
		{"english mixed", "Um, well, you know, this is like hard", LocaleEnglish, 4},
		{"italian", "Ehm, cioè, non lo so, boh", LocaleItalian, 3},
		{"substring safe", "The umbrella is well-made", LocaleEnglish, 1},
		{"none", "The answer is four", LocaleEnglish, 0},
		{"empty", "", LocaleEnglish, 0},
		{"spanish bigram", "O sea, pues no lo sé", LocaleSpanish, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.CountFillers(tt.text, tt.locale))
		})
	}
}

func TestCountFillersAdjacent(t *testing.T) {
	m := NewMatcher()

	// Back-to-back fillers each count once
	assert.Equal(t, 3, m.CountFillers("um uh hmm", LocaleEnglish))
}

func TestNewMatcherWithOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")

	overlay := `it:
  frustration:
    - expr: "non ne posso più"
      weight: 0.85
      category: explicit
  fillers: ["vabbè"]
`
	require.NoError(t, os.WriteFile(path, []byte(overlay), 0644))

	m, err := NewMatcherWithOverlay(path)
	require.NoError(t, err)

	// Overlay rule matches
	analysis := m.AnalyzeText("Non ne posso più di questo esercizio", LocaleItalian)
	assert.InDelta(t, 0.85, analysis.FrustrationScore, 0.001)

	// Built-in rules still present
	analysis = m.AnalyzeText("non ce la faccio", LocaleItalian)
	assert.InDelta(t, 0.9, analysis.FrustrationScore, 0.001)

	// Overlay filler counted
	assert.Equal(t, 1, m.CountFillers("vabbè, andiamo avanti", LocaleItalian))
}

func TestNewMatcherWithOverlayErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := NewMatcherWithOverlay(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("unknown locale", func(t *testing.T) {
		path := filepath.Join(dir, "bad_locale.yaml")
		require.NoError(t, os.WriteFile(path, []byte("pt:\n  fillers: [\"né\"]\n"), 0644))
		_, err := NewMatcherWithOverlay(path)
		assert.Error(t, err)
	})

	t.Run("invalid regex", func(t *testing.T) {
		path := filepath.Join(dir, "bad_regex.yaml")
		content := "en:\n  frustration:\n    - expr: \"([unclosed\"\n      weight: 0.5\n      category: explicit\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		_, err := NewMatcherWithOverlay(path)
		assert.Error(t, err)
	})

	t.Run("weight out of range", func(t *testing.T) {
		path := filepath.Join(dir, "bad_weight.yaml")
		content := "en:\n  frustration:\n    - expr: \"argh\"\n      weight: 1.5\n      category: explicit\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		_, err := NewMatcherWithOverlay(path)
		assert.Error(t, err)
	})
}
