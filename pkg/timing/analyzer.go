package timing

import (
	"encoding/json"
	"math"
)

// WordTiming is one word of speech-engine output: what was said, when, for
// how long, and how sure the engine is. Produced externally and consumed in
// ordered sequences; never mutated here.
type WordTiming struct {
	Word       string  `json:"word"`
	OffsetMs   float64 `json:"offset_ms"`
	DurationMs float64 `json:"duration_ms"`
	Confidence float64 `json:"confidence"`
}

// PauseType classifies an inter-word gap by duration.
type PauseType string

const (
	PauseMicro  PauseType = "micro"
	PauseShort  PauseType = "short"
	PauseMedium PauseType = "medium"
	PauseLong   PauseType = "long"
	PauseSigh   PauseType = "sigh"
)

// Pause classification thresholds in milliseconds.
const (
	MicroPauseMs  = 150
	ShortPauseMs  = 300
	MediumPauseMs = 800
	LongPauseMs   = 1500
	SighPauseMs   = 2500
)

// PauseInfo describes one detected inter-word pause. Derived per call,
// never persisted.
type PauseInfo struct {
	DurationMs     float64   `json:"duration_ms"`
	AfterWordIndex int       `json:"after_word_index"`
	Type           PauseType `json:"type"`
}

// SpeechRate is a coarse words-per-minute bucket.
type SpeechRate string

const (
	RateVerySlow SpeechRate = "very_slow"
	RateSlow     SpeechRate = "slow"
	RateNormal   SpeechRate = "normal"
	RateFast     SpeechRate = "fast"
	RateVeryFast SpeechRate = "very_fast"
)

// HesitationIndicators aggregates pause and confidence statistics into a
// single 0..1 hesitation score.
type HesitationIndicators struct {
	PauseRatio             float64    `json:"pause_ratio"`
	LongPauseCount         int        `json:"long_pause_count"`
	MediumPauseCount       int        `json:"medium_pause_count"`
	AvgConfidence          float64    `json:"avg_confidence"`
	LowConfidenceWordCount int        `json:"low_confidence_word_count"`
	SpeechRateWpm          float64    `json:"speech_rate_wpm"`
	SpeechRate             SpeechRate `json:"speech_rate"`
	DurationVarianceCoeff  float64    `json:"duration_variance_coeff"`
	ConfidenceIssues       bool       `json:"confidence_issues"`
	HesitationScore        float64    `json:"hesitation_score"`
	Pauses                 []PauseInfo `json:"pauses,omitempty"`
}

// Analyzer computes hesitation indicators from word-level timing. It holds
// no state and is safe for concurrent use.
type Analyzer struct{}

// NewAnalyzer creates a timing analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// DetectPauses finds inter-word gaps longer than the micro threshold and
// classifies each into the coarsest bucket its duration reaches.
func (a *Analyzer) DetectPauses(words []WordTiming) []PauseInfo {
	if len(words) < 2 {
		return nil
	}

	var pauses []PauseInfo
	for i := 0; i < len(words)-1; i++ {
		gap := words[i+1].OffsetMs - (words[i].OffsetMs + words[i].DurationMs)
		if gap <= MicroPauseMs {
			continue
		}
		pauses = append(pauses, PauseInfo{
			DurationMs:     gap,
			AfterWordIndex: i,
			Type:           classifyPause(gap),
		})
	}
	return pauses
}

func classifyPause(gapMs float64) PauseType {
	switch {
	case gapMs >= SighPauseMs:
		return PauseSigh
	case gapMs >= LongPauseMs:
		return PauseLong
	case gapMs >= MediumPauseMs:
		return PauseMedium
	case gapMs >= ShortPauseMs:
		return PauseShort
	default:
		return PauseMicro
	}
}

// CalculateHesitation builds the hesitation record for one utterance. Empty
// input yields the zero record, never an error.
func (a *Analyzer) CalculateHesitation(words []WordTiming) HesitationIndicators {
	if len(words) == 0 {
		return HesitationIndicators{SpeechRate: RateNormal}
	}

	pauses := a.DetectPauses(words)

	ind := HesitationIndicators{Pauses: pauses}

	totalSpeech := 0.0
	confSum := 0.0
	durations := make([]float64, 0, len(words))
	for _, w := range words {
		totalSpeech += w.DurationMs
		confSum += w.Confidence
		durations = append(durations, w.DurationMs)
		if w.Confidence < 0.7 {
			ind.LowConfidenceWordCount++
		}
	}
	ind.AvgConfidence = confSum / float64(len(words))

	totalPause := 0.0
	for _, p := range pauses {
		totalPause += p.DurationMs
		switch p.Type {
		case PauseLong, PauseSigh:
			ind.LongPauseCount++
		case PauseMedium:
			ind.MediumPauseCount++
		}
	}
	if totalSpeech+totalPause > 0 {
		ind.PauseRatio = totalPause / (totalSpeech + totalPause)
	}

	// Words per minute over the utterance span
	span := (words[len(words)-1].OffsetMs + words[len(words)-1].DurationMs) - words[0].OffsetMs
	if span > 0 {
		ind.SpeechRateWpm = float64(len(words)) / (span / 60000.0)
	}
	ind.SpeechRate = categorizeRate(ind.SpeechRateWpm)

	ind.DurationVarianceCoeff = variationCoefficient(durations)

	// Soft reliability signal, not a hard rejection
	ind.ConfidenceIssues = ind.AvgConfidence < 0.75 || ind.LowConfidenceWordCount > 2

	ind.HesitationScore = a.hesitationScore(ind, len(words))
	return ind
}

// hesitationScore combines five capped contributions additively.
func (a *Analyzer) hesitationScore(ind HesitationIndicators, wordCount int) float64 {
	score := 0.0

	score += math.Min(ind.PauseRatio*2, 1.0) * 0.3
	score += math.Min(float64(ind.LongPauseCount)*0.1, 0.25)
	score += math.Min(float64(ind.MediumPauseCount)*0.05, 0.15)

	if wordCount > 0 {
		score += float64(ind.LowConfidenceWordCount) / float64(wordCount) * 0.15
	}

	if ind.SpeechRateWpm > 0 {
		if ind.SpeechRateWpm < 80 {
			score += 0.1
		} else if ind.SpeechRateWpm < 110 {
			score += 0.05
		}
	}

	if ind.DurationVarianceCoeff > 0.8 {
		score += 0.05
	}

	return math.Min(score, 1.0)
}

// categorizeRate maps WPM onto the fixed five-bucket ladder. Zero WPM is a
// defined degenerate case and reports normal.
func categorizeRate(wpm float64) SpeechRate {
	if wpm == 0 {
		return RateNormal
	}
	switch {
	case wpm < 80:
		return RateVerySlow
	case wpm < 110:
		return RateSlow
	case wpm < 160:
		return RateNormal
	case wpm < 190:
		return RateFast
	default:
		return RateVeryFast
	}
}

func variationCoefficient(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if mean == 0 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance) / mean
}

// ParseWordTimings decodes a speech-engine timing payload. This is a
// best-effort heuristic system, not a validating parser: malformed payloads
// yield an empty sequence rather than an error. Both a bare array and a
// {"words": [...]} wrapper are accepted.
func ParseWordTimings(data []byte) []WordTiming {
	var words []WordTiming
	if err := json.Unmarshal(data, &words); err == nil {
		return words
	}

	var wrapped struct {
		Words []WordTiming `json:"words"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		return wrapped.Words
	}
	return nil
}
