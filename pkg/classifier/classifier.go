package classifier

import (
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"frustration-engine/pkg/metrics"
	"frustration-engine/pkg/prosody"
	"frustration-engine/pkg/textpattern"
	"frustration-engine/pkg/timing"
	"frustration-engine/pkg/tracker"
)

// InterventionType names the recommended host action.
type InterventionType string

const (
	InterventionNone      InterventionType = ""
	InterventionHelp      InterventionType = "help"
	InterventionSimplify  InterventionType = "simplify"
	InterventionBreak     InterventionType = "break"
	InterventionEncourage InterventionType = "encourage"
)

// Weights are the per-source fusion weights.
type Weights struct {
	Text    float64
	Timing  float64
	Prosody float64
}

// DefaultWeights returns the standard source weighting.
func DefaultWeights() Weights {
	return Weights{Text: 0.4, Timing: 0.3, Prosody: 0.3}
}

// Config configures the fusion classifier.
type Config struct {
	Weights               Weights
	InterventionThreshold float64
}

// DefaultConfig returns the standard classifier parameters.
func DefaultConfig() Config {
	return Config{
		Weights:               DefaultWeights(),
		InterventionThreshold: 0.6,
	}
}

// Input is one classification request. Any non-empty subset of the three
// sources is accepted.
type Input struct {
	Text         string
	Locale       textpattern.Locale
	WordTimings  []timing.WordTiming
	AudioSamples []float64
	SampleRate   int
}

// Breakdown itemizes the per-source phase scores feeding the fusion.
type Breakdown struct {
	TextPatterns     float64 `json:"text_patterns"`
	Hesitation       float64 `json:"hesitation"`
	Prosody          float64 `json:"prosody"`
	RepeatMultiplier float64 `json:"repeat_multiplier"`
	TrendPenalty     float64 `json:"trend_penalty"`
}

// Result is the fused classification returned to the host.
type Result struct {
	FrustrationScore float64          `json:"frustration_score"`
	Confidence       float64          `json:"confidence"`
	ShouldIntervene  bool             `json:"should_intervene"`
	InterventionType InterventionType `json:"intervention_type,omitempty"`
	Reason           string           `json:"reason,omitempty"`
	Breakdown        Breakdown        `json:"breakdown"`

	// Raw per-phase sub-results, nil when the source was absent
	TextState  *tracker.FrustrationState   `json:"text_state,omitempty"`
	Hesitation *timing.HesitationIndicators `json:"hesitation_detail,omitempty"`
	Prosody    *prosody.Result             `json:"prosody_detail,omitempty"`
}

// Classifier fuses text, timing and prosody signals into one actionable
// score. Like the Tracker it owns, it is a long-lived per-session object
// and is not safe for concurrent use; callers serialize per session.
type Classifier struct {
	logger          *logrus.Entry
	config          Config
	tracker         *tracker.Tracker
	timingAnalyzer  *timing.Analyzer
	prosodyAnalyzer *prosody.Analyzer

	// Rolling fused scores for the classifier's own trend, independent of
	// the tracker's text-only trend; the two can diverge and both matter.
	recentScores []float64
}

const scoreHistoryCap = 10

// New creates a per-session classifier around an existing tracker.
func New(logger *logrus.Logger, config Config, trk *tracker.Tracker, prosodyAnalyzer *prosody.Analyzer) *Classifier {
	if config.InterventionThreshold <= 0 {
		config.InterventionThreshold = 0.6
	}
	if config.Weights.Text <= 0 && config.Weights.Timing <= 0 && config.Weights.Prosody <= 0 {
		config.Weights = DefaultWeights()
	}
	if prosodyAnalyzer == nil {
		prosodyAnalyzer = prosody.NewAnalyzer(prosody.DefaultConfig())
	}
	return &Classifier{
		logger:          logger.WithField("component", "frustration_classifier"),
		config:          config,
		tracker:         trk,
		timingAnalyzer:  timing.NewAnalyzer(),
		prosodyAnalyzer: prosodyAnalyzer,
	}
}

// Classify fuses whatever sources the input carries. With no sources at all
// the result is the defined zero classification, not an error.
func (c *Classifier) Classify(input Input) Result {
	start := time.Now()

	result := Result{}
	weighted := 0.0
	totalWeight := 0.0

	hasText := strings.TrimSpace(input.Text) != ""
	if hasText {
		state := c.tracker.Analyze(input.Text, input.Locale)
		result.TextState = &state
		result.Breakdown.TextPatterns = state.Breakdown.TextPatterns
		result.Breakdown.RepeatMultiplier = state.RepeatMultiplier

		weighted += state.Overall * c.config.Weights.Text
		totalWeight += c.config.Weights.Text

		if state.Trend == tracker.TrendDeclining {
			result.Breakdown.TrendPenalty = 0.1 * c.config.Weights.Text
			weighted += result.Breakdown.TrendPenalty
		}
		metrics.ObservePhaseScore("text", state.Overall)
	}

	if len(input.WordTimings) > 0 {
		hes := c.timingAnalyzer.CalculateHesitation(input.WordTimings)
		result.Hesitation = &hes
		result.Breakdown.Hesitation = hes.HesitationScore

		weighted += hes.HesitationScore * c.config.Weights.Timing
		totalWeight += c.config.Weights.Timing
		metrics.ObservePhaseScore("timing", hes.HesitationScore)
	}

	if len(input.AudioSamples) > 0 && input.SampleRate > 0 {
		pros := c.prosodyAnalyzer.AnalyzeProsody(input.AudioSamples, input.SampleRate)
		result.Prosody = &pros
		result.Breakdown.Prosody = prosodyPhaseScore(pros.Emotions)

		weighted += result.Breakdown.Prosody * c.config.Weights.Prosody
		totalWeight += c.config.Weights.Prosody
		metrics.ObservePhaseScore("prosody", result.Breakdown.Prosody)
	}

	if totalWeight > 0 {
		result.FrustrationScore = math.Min(weighted/totalWeight, 1.0)
	}

	result.Confidence = c.confidence(hasText, input, result)
	c.decide(&result)
	c.appendScore(result.FrustrationScore)

	metrics.RecordClassification(result.ShouldIntervene, string(result.InterventionType),
		time.Since(start).Seconds())

	c.logger.WithFields(logrus.Fields{
		"score":        result.FrustrationScore,
		"confidence":   result.Confidence,
		"intervene":    result.ShouldIntervene,
		"intervention": result.InterventionType,
	}).Debug("Classification complete")

	return result
}

// prosodyPhaseScore reduces the emotional vector to one phase score. Stress
// counts at reduced weight so pure stress without frustration still reads
// below the intervention bands.
func prosodyPhaseScore(e prosody.EmotionalIndicators) float64 {
	return math.Min(math.Max(e.Frustration, 0.8*e.Stress), 1.0)
}

// confidence sums fixed per-source contributions, clamped to 1.
func (c *Classifier) confidence(hasText bool, input Input, result Result) float64 {
	conf := 0.0
	if hasText {
		conf += 0.4
	}
	if len(input.WordTimings) >= 4 {
		conf += 0.3
	}
	if result.Prosody != nil && result.Prosody.VoiceDetected {
		conf += 0.3
	}
	return math.Min(conf, 1.0)
}

// decide applies the intervention precedence. First matching rule wins;
// the ordering is part of the product contract, so simultaneous strong
// signals report only the highest-precedence one.
func (c *Classifier) decide(result *Result) {
	if result.FrustrationScore < c.config.InterventionThreshold {
		return
	}
	result.ShouldIntervene = true

	switch {
	case result.Breakdown.TextPatterns > 0.8:
		result.InterventionType = InterventionHelp
		result.Reason = "Explicit frustration detected"
	case result.Breakdown.Hesitation > 0.7:
		result.InterventionType = InterventionSimplify
		result.Reason = "High hesitation in speech timing"
	case result.Breakdown.Prosody > 0.7:
		result.InterventionType = InterventionBreak
		result.Reason = "Sustained vocal stress"
	case result.Breakdown.RepeatMultiplier > 1.5:
		result.InterventionType = InterventionSimplify
		result.Reason = "Repeated similar questions"
	case result.Breakdown.TrendPenalty > 0:
		result.InterventionType = InterventionEncourage
		result.Reason = "Frustration trending upward"
	default:
		result.InterventionType = InterventionEncourage
		result.Reason = "Multiple moderate frustration signals"
	}
}

func (c *Classifier) appendScore(score float64) {
	c.recentScores = append(c.recentScores, score)
	if len(c.recentScores) > scoreHistoryCap {
		c.recentScores = c.recentScores[len(c.recentScores)-scoreHistoryCap:]
	}
}

// GetTrend mirrors the tracker's half-window comparison but over the fused
// score history, so it reflects every active source rather than text alone.
func (c *Classifier) GetTrend() tracker.Trend {
	if len(c.recentScores) < 4 {
		return tracker.TrendStable
	}

	half := len(c.recentScores) / 2
	firstAvg := mean(c.recentScores[:half])
	secondAvg := mean(c.recentScores[half:])

	diff := secondAvg - firstAvg
	switch {
	case diff > 0.15:
		return tracker.TrendDeclining
	case diff < -0.15:
		return tracker.TrendImproving
	default:
		return tracker.TrendStable
	}
}

// Reset clears the fused score history and the underlying tracker state.
func (c *Classifier) Reset() {
	c.recentScores = c.recentScores[:0]
	c.tracker.Reset()
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
