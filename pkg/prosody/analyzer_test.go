package prosody

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sineWave generates amp*sin(2*pi*freq*t) at the given rate.
func sineWave(freqHz float64, sampleRate int, seconds, amp float64) []float64 {
	n := int(float64(sampleRate) * seconds)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amp * math.Sin(2*math.Pi*freqHz*float64(i)/float64(sampleRate))
	}
	return samples
}

func TestDetectPitchSine(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	tests := []struct {
		name   string
		freqHz float64
	}{
		{"low voice", 120},
		{"mid voice", 200},
		{"high voice", 350},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := sineWave(tt.freqHz, 16000, 0.128, 0.5)
			pitch := a.DetectPitch(samples, 16000)
			assert.InDelta(t, tt.freqHz, pitch, tt.freqHz*0.05)
		})
	}
}

func TestDetectPitchRejectsSilenceAndNoise(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	t.Run("silence", func(t *testing.T) {
		assert.Zero(t, a.DetectPitch(make([]float64, 2048), 16000))
	})

	t.Run("white noise", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		noise := make([]float64, 2048)
		for i := range noise {
			noise[i] = rng.Float64() - 0.5
		}
		assert.Zero(t, a.DetectPitch(noise, 16000))
	})

	t.Run("degenerate input", func(t *testing.T) {
		assert.Zero(t, a.DetectPitch(nil, 16000))
		assert.Zero(t, a.DetectPitch([]float64{0.1}, 16000))
		assert.Zero(t, a.DetectPitch(sineWave(200, 16000, 0.1, 0.5), 0))
	})
}

func TestRMS(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	constant := make([]float64, 1000)
	for i := range constant {
		constant[i] = 0.5
	}
	assert.InDelta(t, 0.5, a.RMS(constant), 0.001)

	sine := sineWave(200, 16000, 0.5, 1.0)
	assert.InDelta(t, 1/math.Sqrt2, a.RMS(sine), 0.01)

	assert.Zero(t, a.RMS(nil))
}

func TestSpectralSplit(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	t.Run("low band tone", func(t *testing.T) {
		low, high := a.SpectralSplit(sineWave(200, 16000, 0.128, 0.5), 16000)
		assert.Greater(t, low, 0.8)
		assert.InDelta(t, 1.0, low+high, 0.001)
	})

	t.Run("high band tone", func(t *testing.T) {
		low, high := a.SpectralSplit(sineWave(2000, 16000, 0.128, 0.5), 16000)
		assert.Greater(t, high, 0.8)
		assert.InDelta(t, 1.0, low+high, 0.001)
	})

	t.Run("zero energy", func(t *testing.T) {
		low, high := a.SpectralSplit(make([]float64, 2048), 16000)
		assert.Zero(t, low)
		assert.Zero(t, high)
	})
}

func TestAnalyzeProsodyVoicedTone(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	result := a.AnalyzeProsody(sineWave(200, 16000, 2.0, 0.3), 16000)
	assert.True(t, result.VoiceDetected)
	assert.InDelta(t, 200, result.Features.PitchMean, 15)
	assert.Zero(t, result.Features.SilenceRatio)
	assert.Greater(t, result.Confidence, 0.5)
}

func TestAnalyzeProsodySilence(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	result := a.AnalyzeProsody(make([]float64, 32000), 16000)
	assert.False(t, result.VoiceDetected)
	assert.Zero(t, result.Confidence)
	assert.InDelta(t, 1.0, result.Features.SilenceRatio, 0.001)
}

func TestAnalyzeProsodyShortInput(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	result := a.AnalyzeProsody(sineWave(200, 16000, 0.05, 0.5), 16000)
	assert.Equal(t, Result{}, result)
}

func TestAnalyzeProsodyIdempotent(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	samples := sineWave(180, 16000, 1.0, 0.3)

	first := a.AnalyzeProsody(samples, 16000)
	second := a.AnalyzeProsody(samples, 16000)
	assert.Equal(t, first, second)
}

func TestInferEmotionsCalmVsAgitated(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	calm := a.InferEmotions(ProsodyFeatures{
		PitchMean:    150,
		PitchStdDev:  20,
		VolumeRms:    0.2,
		SilenceRatio: 0.1,
	})
	agitated := a.InferEmotions(ProsodyFeatures{
		PitchMean:      300,
		PitchStdDev:    80,
		PitchRange:     200,
		VolumeRms:      0.2,
		VolumeVariance: 0.02,
		SilenceRatio:   0.1,
	})

	assert.Zero(t, calm.Frustration)
	assert.Greater(t, agitated.Frustration, 0.4)
	assert.Greater(t, agitated.Stress, 0.5)
	assert.Greater(t, calm.Valence, agitated.Valence)
	assert.Less(t, agitated.Valence, 0.0)
}

func TestInferEmotionsWithdrawn(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	withdrawn := a.InferEmotions(ProsodyFeatures{
		PitchMean:    150,
		VolumeRms:    0.01,
		SilenceRatio: 0.7,
	})
	assert.Greater(t, withdrawn.Confusion, 0.2)
	assert.Less(t, withdrawn.Engagement, 0.5)
}

func TestInferEmotionsValenceBounds(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	// Every rule firing at once must still leave valence in range
	extreme := a.InferEmotions(ProsodyFeatures{
		PitchMean:          300,
		PitchStdDev:        100,
		PitchRange:         300,
		VolumeRms:          0.15,
		VolumeVariance:     0.05,
		SilenceRatio:       0.7,
		SpeechRateEstimate: 1.0,
		LowFreqEnergy:      0.9,
	})
	assert.GreaterOrEqual(t, extreme.Valence, -1.0)
	assert.LessOrEqual(t, extreme.Valence, 1.0)
	assert.LessOrEqual(t, extreme.Frustration, 1.0)
	assert.LessOrEqual(t, extreme.Stress, 1.0)
}

func TestAnalyzerConfigDefaults(t *testing.T) {
	a := NewAnalyzer(Config{})
	require.Equal(t, DefaultConfig(), a.config)

	custom := NewAnalyzer(Config{WindowSize: 1024})
	assert.Equal(t, 1024, custom.config.WindowSize)
	assert.Equal(t, 75.0, custom.config.PitchMinHz)
}
