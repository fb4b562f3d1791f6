package prosody

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"frustration-engine/pkg/errors"
	"frustration-engine/pkg/metrics"
)

// AudioSource is the raw-audio collaborator. Acquire grabs the input device
// (microphone, stream tap), ReadWindow pulls the samples buffered since the
// previous call, Release frees the device. Implementations are provided by
// the host application.
type AudioSource interface {
	Acquire() error
	ReadWindow() ([]float64, error)
	Release() error
}

// Probe is an instantaneous reading pushed on every fast-timer tick, meant
// for UI meters.
type Probe struct {
	Volume      float64   `json:"volume"`
	Pitch       float64   `json:"pitch"`
	VoiceActive bool      `json:"voice_active"`
	Timestamp   time.Time `json:"timestamp"`
}

// MonitorConfig configures the realtime loop cadence and retention.
type MonitorConfig struct {
	SampleRate       int
	ProbeInterval    time.Duration // fast probe cadence
	AnalysisInterval time.Duration // full analysis cadence
	RetainSeconds    float64       // rolling buffer cap between analyses
	TrimSeconds      float64       // buffer kept after each analysis
	SmoothingAlpha   float64       // EMA weight for the emotional state
}

// DefaultMonitorConfig returns the standard monitor parameters for 16 kHz
// input.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		SampleRate:       16000,
		ProbeInterval:    100 * time.Millisecond,
		AnalysisInterval: 2 * time.Second,
		RetainSeconds:    10,
		TrimSeconds:      2,
		SmoothingAlpha:   0.3,
	}
}

// MonitorStats tracks monitor activity.
type MonitorStats struct {
	mutex          sync.RWMutex
	ProbeCount     int64     `json:"probe_count"`
	AnalysisCount  int64     `json:"analysis_count"`
	ReadErrors     int64     `json:"read_errors"`
	BufferSamples  int       `json:"buffer_samples"`
	LastProbe      time.Time `json:"last_probe"`
	LastAnalysis   time.Time `json:"last_analysis"`
	MonitorStarted time.Time `json:"monitor_started"`
}

// Monitor runs the prosody analyzer continuously over a live audio source.
// Two periodic timers drive a single owning goroutine: a fast probe that
// samples the source and appends to a rolling buffer, and a slower tick
// that runs full analysis over the retained buffer and updates an
// exponentially smoothed emotional state. All buffer mutation happens on
// that one goroutine, so the loop is race-free by construction.
type Monitor struct {
	logger   *logrus.Entry
	analyzer *Analyzer
	source   AudioSource
	config   MonitorConfig

	// Push callbacks, invoked from the monitor goroutine
	onProbe  func(Probe)
	onResult func(Result)

	// Owned by the monitor goroutine
	buffer []float64

	// Shared smoothed state behind the mutex for pull access
	mutex        sync.RWMutex
	smoothed     EmotionalIndicators
	hasSmoothed  bool
	latestResult Result

	running  bool
	runMutex sync.Mutex
	stopChan chan struct{}
	done     chan struct{}

	stats *MonitorStats
}

// NewMonitor creates a realtime prosody monitor over the given source.
func NewMonitor(logger *logrus.Logger, analyzer *Analyzer, source AudioSource, config MonitorConfig) *Monitor {
	def := DefaultMonitorConfig()
	if config.SampleRate <= 0 {
		config.SampleRate = def.SampleRate
	}
	if config.ProbeInterval <= 0 {
		config.ProbeInterval = def.ProbeInterval
	}
	if config.AnalysisInterval <= 0 {
		config.AnalysisInterval = def.AnalysisInterval
	}
	if config.RetainSeconds <= 0 {
		config.RetainSeconds = def.RetainSeconds
	}
	if config.TrimSeconds <= 0 {
		config.TrimSeconds = def.TrimSeconds
	}
	if config.SmoothingAlpha <= 0 || config.SmoothingAlpha > 1 {
		config.SmoothingAlpha = def.SmoothingAlpha
	}

	return &Monitor{
		logger:   logger.WithField("component", "prosody_monitor"),
		analyzer: analyzer,
		source:   source,
		config:   config,
		stats:    &MonitorStats{},
	}
}

// OnProbe registers the fast-tick callback. Must be set before Start.
func (m *Monitor) OnProbe(fn func(Probe)) {
	m.onProbe = fn
}

// OnResult registers the full-analysis callback. Must be set before Start.
func (m *Monitor) OnResult(fn func(Result)) {
	m.onResult = fn
}

// Start acquires the audio source and launches the monitor loop. On any
// failure every partially acquired handle is released before the error is
// returned, so a failed Start leaves nothing dangling.
func (m *Monitor) Start() error {
	m.runMutex.Lock()
	defer m.runMutex.Unlock()

	if m.running {
		return errors.Wrap(errors.ErrMonitorAlreadyRunning, "start rejected")
	}

	if err := m.source.Acquire(); err != nil {
		return errors.Wrap(err, "failed to acquire audio source")
	}

	m.stopChan = make(chan struct{})
	m.done = make(chan struct{})
	m.buffer = m.buffer[:0]
	m.running = true

	m.stats.mutex.Lock()
	m.stats.MonitorStarted = time.Now()
	m.stats.mutex.Unlock()

	go m.run()

	m.logger.WithFields(logrus.Fields{
		"probe_interval":    m.config.ProbeInterval,
		"analysis_interval": m.config.AnalysisInterval,
		"sample_rate":       m.config.SampleRate,
	}).Info("Realtime prosody monitor started")

	return nil
}

// Stop halts the loop and releases the audio source. Safe to call more than
// once; stopping an idle monitor is a no-op error.
func (m *Monitor) Stop() error {
	m.runMutex.Lock()
	defer m.runMutex.Unlock()

	if !m.running {
		return errors.Wrap(errors.ErrMonitorNotRunning, "stop rejected")
	}

	close(m.stopChan)
	<-m.done
	m.running = false

	err := m.source.Release()
	if err != nil {
		m.logger.WithError(err).Warn("Audio source release failed")
		return errors.Wrap(err, "failed to release audio source")
	}

	m.logger.Info("Realtime prosody monitor stopped")
	return nil
}

// run is the owning goroutine: probe ticks and analysis ticks interleave
// here, never concurrently. There is no cancellation mid-analysis; a pending
// analysis runs to completion on its own snapshot and simply stops being
// scheduled after Stop.
func (m *Monitor) run() {
	defer close(m.done)

	probeTicker := time.NewTicker(m.config.ProbeInterval)
	defer probeTicker.Stop()
	analysisTicker := time.NewTicker(m.config.AnalysisInterval)
	defer analysisTicker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-probeTicker.C:
			m.probe()
		case <-analysisTicker.C:
			m.analyze()
		}
	}
}

// probe pulls the latest window, appends it to the rolling buffer and emits
// an instantaneous reading.
func (m *Monitor) probe() {
	samples, err := m.source.ReadWindow()
	if err != nil {
		m.stats.mutex.Lock()
		m.stats.ReadErrors++
		m.stats.mutex.Unlock()
		m.logger.WithError(err).Debug("Audio source read failed")
		return
	}
	if len(samples) == 0 {
		return
	}

	m.buffer = append(m.buffer, samples...)
	maxSamples := int(m.config.RetainSeconds * float64(m.config.SampleRate))
	if len(m.buffer) > maxSamples {
		// Drop oldest first
		m.buffer = m.buffer[len(m.buffer)-maxSamples:]
	}

	volume := m.analyzer.RMS(samples)
	active := volume > m.analyzer.config.VADThreshold
	pitch := 0.0
	if active {
		pitch = m.analyzer.DetectPitch(samples, m.config.SampleRate)
	}

	m.stats.mutex.Lock()
	m.stats.ProbeCount++
	m.stats.LastProbe = time.Now()
	m.stats.BufferSamples = len(m.buffer)
	m.stats.mutex.Unlock()

	metrics.SetMonitorBufferSeconds(float64(len(m.buffer)) / float64(m.config.SampleRate))

	if m.onProbe != nil {
		m.onProbe(Probe{
			Volume:      volume,
			Pitch:       pitch,
			VoiceActive: active,
			Timestamp:   time.Now(),
		})
	}
}

// analyze runs full prosody analysis over the retained buffer, folds the
// emotions into the smoothed state and trims the buffer to bound memory.
func (m *Monitor) analyze() {
	if len(m.buffer) == 0 {
		return
	}

	snapshot := make([]float64, len(m.buffer))
	copy(snapshot, m.buffer)

	result := m.analyzer.AnalyzeProsody(snapshot, m.config.SampleRate)

	m.mutex.Lock()
	if result.VoiceDetected {
		alpha := m.config.SmoothingAlpha
		if !m.hasSmoothed {
			m.smoothed = result.Emotions
			m.hasSmoothed = true
		} else {
			m.smoothed.Frustration = ema(m.smoothed.Frustration, result.Emotions.Frustration, alpha)
			m.smoothed.Stress = ema(m.smoothed.Stress, result.Emotions.Stress, alpha)
			m.smoothed.Confusion = ema(m.smoothed.Confusion, result.Emotions.Confusion, alpha)
			m.smoothed.Engagement = ema(m.smoothed.Engagement, result.Emotions.Engagement, alpha)
			m.smoothed.Valence = ema(m.smoothed.Valence, result.Emotions.Valence, alpha)
		}
	}
	m.latestResult = result
	m.mutex.Unlock()

	trimSamples := int(m.config.TrimSeconds * float64(m.config.SampleRate))
	if len(m.buffer) > trimSamples {
		m.buffer = m.buffer[len(m.buffer)-trimSamples:]
	}

	m.stats.mutex.Lock()
	m.stats.AnalysisCount++
	m.stats.LastAnalysis = time.Now()
	m.stats.BufferSamples = len(m.buffer)
	m.stats.mutex.Unlock()

	metrics.RecordProsodyAnalysis(result.VoiceDetected)

	if m.onResult != nil {
		m.onResult(result)
	}
}

func ema(prev, next, alpha float64) float64 {
	return prev*(1-alpha) + next*alpha
}

// EmotionalState returns the current smoothed emotional indicators.
func (m *Monitor) EmotionalState() EmotionalIndicators {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.smoothed
}

// LatestResult returns the most recent full analysis.
func (m *Monitor) LatestResult() Result {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.latestResult
}

// GetStats returns a copy of the monitor statistics.
func (m *Monitor) GetStats() MonitorStats {
	m.stats.mutex.RLock()
	defer m.stats.mutex.RUnlock()

	return MonitorStats{
		ProbeCount:     m.stats.ProbeCount,
		AnalysisCount:  m.stats.AnalysisCount,
		ReadErrors:     m.stats.ReadErrors,
		BufferSamples:  m.stats.BufferSamples,
		LastProbe:      m.stats.LastProbe,
		LastAnalysis:   m.stats.LastAnalysis,
		MonitorStarted: m.stats.MonitorStarted,
	}
}
