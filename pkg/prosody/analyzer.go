package prosody

import (
	"math"
)

// Config holds the analysis parameters. Defaults cover tutoring-session
// speech at 16 kHz.
type Config struct {
	WindowSize       int     // samples per analysis window
	PitchMinHz       float64 // lower bound of the pitch search range
	PitchMaxHz       float64 // upper bound of the pitch search range
	MinCorrelation   float64 // autocorrelation acceptance threshold
	VADThreshold     float64 // RMS above this counts as voice activity
	SpectralCutoffHz float64 // low/high energy split frequency
	PitchJumpHz      float64 // pitch delta counted as a transition
}

// DefaultConfig returns the standard analysis parameters.
func DefaultConfig() Config {
	return Config{
		WindowSize:       2048,
		PitchMinHz:       75,
		PitchMaxHz:       500,
		MinCorrelation:   0.7,
		VADThreshold:     0.01,
		SpectralCutoffHz: 500,
		PitchJumpHz:      20,
	}
}

// ProsodyFeatures are the per-window acoustic measurements. All values are
// derived per analysis call; the analyzer keeps no state.
type ProsodyFeatures struct {
	PitchMean          float64 `json:"pitch_mean"`
	PitchStdDev        float64 `json:"pitch_std_dev"`
	PitchRange         float64 `json:"pitch_range"`
	VolumeRms          float64 `json:"volume_rms"`
	VolumeVariance     float64 `json:"volume_variance"`
	SpeechRateEstimate float64 `json:"speech_rate_estimate"`
	SilenceRatio       float64 `json:"silence_ratio"`
	LowFreqEnergy      float64 `json:"low_freq_energy"`
	HighFreqEnergy     float64 `json:"high_freq_energy"`
}

// EmotionalIndicators is the inferred emotional vector. Each component is
// 0..1 except Valence, which is -1..1.
type EmotionalIndicators struct {
	Frustration float64 `json:"frustration"`
	Stress      float64 `json:"stress"`
	Confusion   float64 `json:"confusion"`
	Engagement  float64 `json:"engagement"`
	Valence     float64 `json:"valence"`
}

// Result bundles one full prosody analysis.
type Result struct {
	Features      ProsodyFeatures     `json:"features"`
	Emotions      EmotionalIndicators `json:"emotions"`
	VoiceDetected bool                `json:"voice_detected"`
	Confidence    float64             `json:"confidence"`
}

// Analyzer extracts prosody features and emotional indicators from raw PCM
// samples. It is stateless and safe for concurrent use across sessions.
type Analyzer struct {
	config Config
}

// NewAnalyzer creates a prosody analyzer with the given config; zero-valued
// fields fall back to defaults.
func NewAnalyzer(config Config) *Analyzer {
	def := DefaultConfig()
	if config.WindowSize <= 0 {
		config.WindowSize = def.WindowSize
	}
	if config.PitchMinHz <= 0 {
		config.PitchMinHz = def.PitchMinHz
	}
	if config.PitchMaxHz <= 0 {
		config.PitchMaxHz = def.PitchMaxHz
	}
	if config.MinCorrelation <= 0 {
		config.MinCorrelation = def.MinCorrelation
	}
	if config.VADThreshold <= 0 {
		config.VADThreshold = def.VADThreshold
	}
	if config.SpectralCutoffHz <= 0 {
		config.SpectralCutoffHz = def.SpectralCutoffHz
	}
	if config.PitchJumpHz <= 0 {
		config.PitchJumpHz = def.PitchJumpHz
	}
	return &Analyzer{config: config}
}

// DetectPitch estimates the fundamental frequency of the samples via
// normalized autocorrelation over the configured pitch range. Silence and
// noise report 0 rather than a spurious pitch.
func (a *Analyzer) DetectPitch(samples []float64, sampleRate int) float64 {
	if len(samples) < 2 || sampleRate <= 0 {
		return 0
	}

	minLag := int(float64(sampleRate) / a.config.PitchMaxHz)
	maxLag := int(float64(sampleRate) / a.config.PitchMinHz)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(samples) {
		maxLag = len(samples) - 1
	}
	if minLag > maxLag {
		return 0
	}

	energy := 0.0
	for _, s := range samples {
		energy += s * s
	}
	if energy == 0 {
		return 0
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		num := 0.0
		normA := 0.0
		normB := 0.0
		for i := 0; i < len(samples)-lag; i++ {
			num += samples[i] * samples[i+lag]
			normA += samples[i] * samples[i]
			normB += samples[i+lag] * samples[i+lag]
		}
		denom := math.Sqrt(normA * normB)
		if denom == 0 {
			continue
		}
		corr := num / denom
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}

	if bestLag == 0 || bestCorr <= a.config.MinCorrelation {
		return 0
	}
	return float64(sampleRate) / float64(bestLag)
}

// RMS returns the root-mean-square volume of the samples.
func (a *Analyzer) RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// SpectralSplit returns the low- and high-band energy around the configured
// cutoff, normalized to sum to 1. Zero-energy input returns (0, 0).
func (a *Analyzer) SpectralSplit(samples []float64, sampleRate int) (low, high float64) {
	low, high = a.bandEnergies(samples, sampleRate)
	total := low + high
	if total == 0 {
		return 0, 0
	}
	return low / total, high / total
}

// bandEnergies returns raw low/high band energy via frequency-bin summation
// of the transformed window.
func (a *Analyzer) bandEnergies(samples []float64, sampleRate int) (low, high float64) {
	if len(samples) == 0 || sampleRate <= 0 {
		return 0, 0
	}

	// Pad or truncate to the nearest power of two for the transform
	n := 1
	for n < len(samples) && n < a.config.WindowSize {
		n <<= 1
	}
	re := make([]float64, n)
	im := make([]float64, n)
	copy(re, samples)

	fft(re, im)

	cutoffBin := int(a.config.SpectralCutoffHz * float64(n) / float64(sampleRate))
	if cutoffBin < 1 {
		cutoffBin = 1
	}
	for i := 1; i < n/2; i++ {
		e := re[i]*re[i] + im[i]*im[i]
		if i <= cutoffBin {
			low += e
		} else {
			high += e
		}
	}
	return low, high
}

// AnalyzeProsody slides the analysis window across the sample buffer with a
// 50% hop, accumulating pitch and volume statistics over voiced windows and
// a silence ratio over all windows. Input shorter than one window returns
// the empty result with confidence 0.
func (a *Analyzer) AnalyzeProsody(samples []float64, sampleRate int) Result {
	if len(samples) < a.config.WindowSize || sampleRate <= 0 {
		return Result{}
	}

	hop := a.config.WindowSize / 2
	var (
		pitches      []float64
		volumes      []float64
		silentCount  int
		totalWindows int
		transitions  int
		lastPitch    float64
		lowEnergy    float64
		highEnergy   float64
	)

	for i := 0; i+a.config.WindowSize <= len(samples); i += hop {
		window := samples[i : i+a.config.WindowSize]
		totalWindows++

		lo, hi := a.bandEnergies(window, sampleRate)
		lowEnergy += lo
		highEnergy += hi

		rms := a.RMS(window)
		if rms <= a.config.VADThreshold {
			silentCount++
			continue
		}

		volumes = append(volumes, rms)
		pitch := a.DetectPitch(window, sampleRate)
		if pitch > 0 {
			pitches = append(pitches, pitch)
			if lastPitch > 0 && math.Abs(pitch-lastPitch) > a.config.PitchJumpHz {
				transitions++
			}
			lastPitch = pitch
		}
	}

	result := Result{}
	result.Features.SilenceRatio = float64(silentCount) / float64(totalWindows)

	if len(volumes) > 0 {
		result.VoiceDetected = true
		mean := meanOf(volumes)
		result.Features.VolumeRms = mean
		result.Features.VolumeVariance = varianceOf(volumes, mean)
	}

	if len(pitches) > 0 {
		mean := meanOf(pitches)
		result.Features.PitchMean = mean
		result.Features.PitchStdDev = math.Sqrt(varianceOf(pitches, mean))
		result.Features.PitchRange = rangeOf(pitches)
	}

	// Speech-rate proxy: pitch transitions per second. This approximates
	// syllable rate, it does not measure it; the thresholds downstream are
	// tunable constants, not ground truth.
	durationSec := float64(len(samples)) / float64(sampleRate)
	if durationSec > 0 {
		result.Features.SpeechRateEstimate = float64(transitions) / durationSec
	}

	if total := lowEnergy + highEnergy; total > 0 {
		result.Features.LowFreqEnergy = lowEnergy / total
		result.Features.HighFreqEnergy = highEnergy / total
	}

	result.Emotions = a.InferEmotions(result.Features)
	result.Confidence = a.analysisConfidence(totalWindows, len(pitches), result.VoiceDetected)
	return result
}

func (a *Analyzer) analysisConfidence(totalWindows, pitchedWindows int, voiced bool) float64 {
	if !voiced {
		return 0
	}
	conf := 0.5
	if totalWindows > 0 {
		conf += 0.5 * float64(pitchedWindows) / float64(totalWindows)
	}
	return math.Min(conf, 1.0)
}

// InferEmotions maps acoustic features onto the emotional-indicator vector
// with a deterministic additive rule set, clamped to range at the end. The
// valence weighting is fixed for reproducible scoring.
func (a *Analyzer) InferEmotions(f ProsodyFeatures) EmotionalIndicators {
	frustration := 0.0
	stress := 0.0
	confusion := 0.0
	engagement := 0.5

	// Unsteady pitch reads as agitation
	if f.PitchStdDev > 60 {
		frustration += 0.25
		stress += 0.25
	} else if f.PitchStdDev > 35 {
		frustration += 0.12
		stress += 0.12
	}

	// Extreme mean pitch in either direction
	if f.PitchMean > 280 || (f.PitchMean > 0 && f.PitchMean < 90) {
		stress += 0.2
	}

	if f.VolumeVariance > 0.01 {
		frustration += 0.15
		stress += 0.1
	}

	if f.SilenceRatio > 0.6 {
		confusion += 0.25
		frustration += 0.15
	} else if f.SilenceRatio > 0.4 {
		confusion += 0.1
	}

	// Very slow delivery
	if f.SpeechRateEstimate > 0 && f.SpeechRateEstimate < 1.5 {
		confusion += 0.15
		engagement -= 0.15
	}

	// Withdrawn, quiet voice
	if f.VolumeRms > 0 && f.VolumeRms < 0.02 {
		engagement -= 0.2
		frustration += 0.05
	}

	if f.LowFreqEnergy > 0.75 {
		stress += 0.1
	}

	// Wide pitch swings at high volume
	if f.PitchRange > 150 && f.VolumeRms > 0.1 {
		frustration += 0.15
		stress += 0.1
	}

	ind := EmotionalIndicators{
		Frustration: clamp01(frustration),
		Stress:      clamp01(stress),
		Confusion:   clamp01(confusion),
		Engagement:  clamp01(engagement),
	}
	ind.Valence = clamp(
		(ind.Engagement-ind.Frustration-0.5*ind.Stress-0.3*ind.Confusion)/2,
		-1, 1)
	return ind
}

// fft is an in-place iterative radix-2 transform. len(re) must be a power
// of two.
func fft(re, im []float64) {
	n := len(re)
	if n <= 1 {
		return
	}

	// Bit-reversal permutation
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		angle := -2 * math.Pi / float64(length)
		wRe := math.Cos(angle)
		wIm := math.Sin(angle)
		for start := 0; start < n; start += length {
			curRe, curIm := 1.0, 0.0
			for k := 0; k < length/2; k++ {
				evenRe := re[start+k]
				evenIm := im[start+k]
				oddRe := re[start+k+length/2]*curRe - im[start+k+length/2]*curIm
				oddIm := re[start+k+length/2]*curIm + im[start+k+length/2]*curRe
				re[start+k] = evenRe + oddRe
				im[start+k] = evenIm + oddIm
				re[start+k+length/2] = evenRe - oddRe
				im[start+k+length/2] = evenIm - oddIm
				curRe, curIm = curRe*wRe-curIm*wIm, curRe*wIm+curIm*wRe
			}
		}
	}
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func varianceOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}

func rangeOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return max - min
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
