package timing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fluentWords builds an evenly spaced utterance: 300 ms words with 100 ms
// gaps, high confidence.
func fluentWords(n int) []WordTiming {
	words := make([]WordTiming, n)
	for i := 0; i < n; i++ {
		words[i] = WordTiming{
			Word:       "word",
			OffsetMs:   float64(i) * 400,
			DurationMs: 300,
			Confidence: 0.95,
		}
	}
	return words
}

// gapPair builds two words separated by exactly gapMs of silence.
func gapPair(gapMs float64) []WordTiming {
	return []WordTiming{
		{Word: "a", OffsetMs: 0, DurationMs: 100, Confidence: 0.9},
		{Word: "b", OffsetMs: 100 + gapMs, DurationMs: 100, Confidence: 0.9},
	}
}

func TestDetectPausesLadder(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		name     string
		gapMs    float64
		expected PauseType
		detected bool
	}{
		{"below threshold", 100, "", false},
		{"exactly threshold", 150, "", false},
		{"just above threshold", 151, PauseMicro, true},
		{"short boundary", 300, PauseShort, true},
		{"short upper", 799, PauseShort, true},
		{"medium boundary", 800, PauseMedium, true},
		{"long boundary", 1500, PauseLong, true},
		{"long upper", 2499, PauseLong, true},
		{"sigh boundary", 2500, PauseSigh, true},
		{"sigh", 4000, PauseSigh, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pauses := a.DetectPauses(gapPair(tt.gapMs))
			if !tt.detected {
				assert.Empty(t, pauses)
				return
			}
			require.Len(t, pauses, 1)
			assert.Equal(t, tt.expected, pauses[0].Type)
			assert.Equal(t, tt.gapMs, pauses[0].DurationMs)
			assert.Equal(t, 0, pauses[0].AfterWordIndex)
		})
	}
}

func TestDetectPausesDegenerate(t *testing.T) {
	a := NewAnalyzer()

	assert.Nil(t, a.DetectPauses(nil))
	assert.Nil(t, a.DetectPauses([]WordTiming{{Word: "solo", DurationMs: 300}}))
}

func TestCalculateHesitationFluent(t *testing.T) {
	a := NewAnalyzer()

	ind := a.CalculateHesitation(fluentWords(10))
	assert.Less(t, ind.HesitationScore, 0.3)
	assert.Zero(t, ind.PauseRatio)
	assert.Equal(t, RateNormal, ind.SpeechRate)
	assert.False(t, ind.ConfidenceIssues)
	assert.InDelta(t, 0.95, ind.AvgConfidence, 0.001)
}

func TestCalculateHesitationHesitant(t *testing.T) {
	a := NewAnalyzer()

	// Long-pause-ridden low-confidence utterance
	gaps := []float64{1000, 2000, 3000, 400, 900}
	words := make([]WordTiming, len(gaps)+1)
	offset := 0.0
	for i := range words {
		words[i] = WordTiming{Word: "word", OffsetMs: offset, DurationMs: 300, Confidence: 0.6}
		if i < len(gaps) {
			offset += 300 + gaps[i]
		}
	}

	ind := a.CalculateHesitation(words)
	assert.Greater(t, ind.HesitationScore, 0.4)
	assert.Equal(t, 2, ind.LongPauseCount) // long + sigh
	assert.Equal(t, 2, ind.MediumPauseCount)
	assert.Equal(t, RateVerySlow, ind.SpeechRate)
	assert.True(t, ind.ConfidenceIssues)
	assert.Len(t, ind.Pauses, 5)
}

func TestCalculateHesitationEmpty(t *testing.T) {
	a := NewAnalyzer()

	ind := a.CalculateHesitation(nil)
	assert.Zero(t, ind.HesitationScore)
	assert.Equal(t, RateNormal, ind.SpeechRate)
	assert.Empty(t, ind.Pauses)
}

func TestCalculateHesitationZeroSpan(t *testing.T) {
	a := NewAnalyzer()

	// All-zero timings must not divide by zero; zero WPM reads as normal
	words := []WordTiming{
		{Word: "a", Confidence: 0.9},
		{Word: "b", Confidence: 0.9},
	}
	ind := a.CalculateHesitation(words)
	assert.Zero(t, ind.SpeechRateWpm)
	assert.Equal(t, RateNormal, ind.SpeechRate)
}

func TestCalculateHesitationConfidenceIssues(t *testing.T) {
	a := NewAnalyzer()

	// High average but more than two low-confidence words still flags
	words := fluentWords(10)
	words[1].Confidence = 0.5
	words[4].Confidence = 0.5
	words[7].Confidence = 0.5

	ind := a.CalculateHesitation(words)
	assert.Equal(t, 3, ind.LowConfidenceWordCount)
	assert.True(t, ind.ConfidenceIssues)
}

func TestCalculateHesitationScoreCapped(t *testing.T) {
	a := NewAnalyzer()

	// Pathological input: every contribution maxed still stays within 1
	gaps := []float64{3000, 3000, 3000, 3000, 900, 900, 900}
	words := make([]WordTiming, len(gaps)+1)
	offset := 0.0
	for i := range words {
		words[i] = WordTiming{Word: "word", OffsetMs: offset, DurationMs: 100, Confidence: 0.1}
		if i < len(gaps) {
			offset += 100 + gaps[i]
		}
	}

	ind := a.CalculateHesitation(words)
	assert.LessOrEqual(t, ind.HesitationScore, 1.0)
}

func TestSpeechRateBuckets(t *testing.T) {
	tests := []struct {
		wpm      float64
		expected SpeechRate
	}{
		{0, RateNormal},
		{50, RateVerySlow},
		{79.9, RateVerySlow},
		{80, RateSlow},
		{109, RateSlow},
		{110, RateNormal},
		{159, RateNormal},
		{160, RateFast},
		{189, RateFast},
		{190, RateVeryFast},
		{250, RateVeryFast},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, categorizeRate(tt.wpm), "wpm=%v", tt.wpm)
	}
}

func TestParseWordTimings(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		data := []byte(`[{"word":"ciao","offset_ms":0,"duration_ms":250,"confidence":0.92}]`)
		words := ParseWordTimings(data)
		require.Len(t, words, 1)
		assert.Equal(t, "ciao", words[0].Word)
		assert.Equal(t, 250.0, words[0].DurationMs)
	})

	t.Run("wrapped object", func(t *testing.T) {
		data := []byte(`{"words":[{"word":"hello","offset_ms":10,"duration_ms":200,"confidence":0.8}]}`)
		words := ParseWordTimings(data)
		require.Len(t, words, 1)
		assert.Equal(t, "hello", words[0].Word)
	})

	t.Run("malformed", func(t *testing.T) {
		assert.Empty(t, ParseWordTimings([]byte(`{{{not json`)))
		assert.Empty(t, ParseWordTimings([]byte(`42`)))
		assert.Empty(t, ParseWordTimings(nil))
	})
}
