package tracker

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"frustration-engine/pkg/metrics"
	"frustration-engine/pkg/textpattern"
)

// Trend is the direction of the recent frustration signal.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

const (
	// repeatWindow bounds how long a cluster stays eligible for new matches
	repeatWindow = 5 * time.Minute
	// staleAge is the default Cleanup eviction age
	staleAge = 30 * time.Minute
	// similarityThreshold is the minimum keyword overlap to join a cluster
	similarityThreshold = 0.4
	// trendCapacity caps the trend ring buffer
	trendCapacity = 50
	// trendWindow is how many recent entries feed the trend split
	trendWindow = 10
	// trendBand is the half/half difference needed to leave "stable"
	trendBand = 0.15
)

// RepeatedAttempt is one cluster of near-duplicate learner utterances,
// owned exclusively by its Tracker. It is created on the first unmatched
// utterance and mutated on each similar one inside the repeat window.
type RepeatedAttempt struct {
	ID          string          `json:"id"`
	KeywordSet  map[string]bool `json:"-"`
	Count       int             `json:"count"`
	FirstSeenAt time.Time       `json:"first_seen_at"`
	LastSeenAt  time.Time       `json:"last_seen_at"`
	RawTexts    []string        `json:"raw_texts"`
}

// Multiplier converts the repeat count into a score multiplier:
// 1.0, 1.25, 1.5, 1.75, capped at 2.0 from the fifth repeat on.
func (r *RepeatedAttempt) Multiplier() float64 {
	count := r.Count
	if count > 5 {
		count = 5
	}
	if count < 1 {
		count = 1
	}
	return 1 + float64(count-1)*0.25
}

// TrendEntry is one analysis sample in the rolling trend window.
type TrendEntry struct {
	TimestampMs      int64   `json:"timestamp_ms"`
	FrustrationScore float64 `json:"frustration_score"`
	RepeatScore      float64 `json:"repeat_score"`
	ConfusionScore   float64 `json:"confusion_score"`
}

// Breakdown itemizes the contributions to the overall score.
type Breakdown struct {
	TextPatterns     float64 `json:"text_patterns"`
	RepeatedAttempts float64 `json:"repeated_attempts"`
	TrendPenalty     float64 `json:"trend_penalty"`
	FillerPenalty    float64 `json:"filler_penalty"`
}

// FrustrationState is the per-call result of Analyze.
type FrustrationState struct {
	Overall          float64              `json:"overall"`
	TextAnalysis     textpattern.Analysis `json:"text_analysis"`
	RepeatMultiplier float64              `json:"repeat_multiplier"`
	Trend            Trend                `json:"trend"`
	FillerCount      int                  `json:"filler_count"`
	Breakdown        Breakdown            `json:"breakdown"`
}

// Stats tracks Tracker activity for a session.
type Stats struct {
	Analyses        int64 `json:"analyses"`
	ClustersCreated int64 `json:"clusters_created"`
	ClustersMerged  int64 `json:"clusters_merged"`
	ClustersEvicted int64 `json:"clusters_evicted"`
}

// Tracker is the stateful per-session layer: it combines text pattern
// analysis with repeated-attempt clustering and a rolling sentiment trend.
// One instance per conversation session, owned by that session's caller;
// it is deliberately not safe for concurrent use — callers serialize.
type Tracker struct {
	logger  *logrus.Entry
	matcher *textpattern.Matcher

	clusters map[string]*RepeatedAttempt
	trend    []TrendEntry
	stats    Stats

	// now is swappable for tests
	now func() time.Time
}

// NewTracker creates a per-session conversation tracker.
func NewTracker(logger *logrus.Logger, matcher *textpattern.Matcher) *Tracker {
	return &Tracker{
		logger:   logger.WithField("component", "conversation_tracker"),
		matcher:  matcher,
		clusters: make(map[string]*RepeatedAttempt),
		now:      time.Now,
	}
}

// Analyze scores one utterance against the pattern tables, folds it into
// the repeat clusters and the trend window, and returns the combined state.
// Empty text yields a neutral state, never an error.
func (t *Tracker) Analyze(text string, locale textpattern.Locale) FrustrationState {
	t.stats.Analyses++

	analysis := t.matcher.AnalyzeText(text, locale)
	fillers := t.matcher.CountFillers(text, locale)

	multiplier := 1.0
	if strings.TrimSpace(text) != "" {
		attempt := t.trackRepeatedAttempt(text)
		multiplier = attempt.Multiplier()
	}

	t.appendTrendEntry(analysis)
	trend := t.currentTrend()
	metrics.RecordTrend(string(trend))

	// A single strong signal dominates the text side; repeats and confusion
	// feed in at reduced weight
	base := math.Max(analysis.FrustrationScore,
		math.Max(analysis.RepeatScore*0.7, analysis.ConfusionScore*0.5))

	breakdown := Breakdown{
		TextPatterns:     base,
		RepeatedAttempts: (multiplier - 1) * 0.3,
		FillerPenalty:    math.Min(float64(fillers)*0.05, 0.15),
	}
	if trend == TrendDeclining {
		breakdown.TrendPenalty = 0.1
	}

	overall := math.Min(1.0,
		base+breakdown.RepeatedAttempts+breakdown.TrendPenalty+breakdown.FillerPenalty)

	return FrustrationState{
		Overall:          overall,
		TextAnalysis:     analysis,
		RepeatMultiplier: multiplier,
		Trend:            trend,
		FillerCount:      fillers,
		Breakdown:        breakdown,
	}
}

// trackRepeatedAttempt finds the most similar live cluster or opens a new
// one. Similarity is Jaccard overlap between stemmed keyword sets; only
// clusters seen inside the repeat window are eligible.
func (t *Tracker) trackRepeatedAttempt(text string) *RepeatedAttempt {
	keywords := ExtractKeywords(text)
	now := t.now()

	var best *RepeatedAttempt
	bestSim := 0.0
	for _, c := range t.clusters {
		if now.Sub(c.LastSeenAt) > repeatWindow {
			continue
		}
		sim := jaccard(keywords, c.KeywordSet)
		if sim >= similarityThreshold && sim > bestSim {
			best = c
			bestSim = sim
		}
	}

	if best != nil {
		best.Count++
		for k := range keywords {
			best.KeywordSet[k] = true
		}
		best.LastSeenAt = now
		best.RawTexts = append(best.RawTexts, text)
		t.stats.ClustersMerged++
		t.logger.WithFields(logrus.Fields{
			"cluster_id": best.ID,
			"count":      best.Count,
			"similarity": bestSim,
		}).Debug("Utterance joined repeat cluster")
		return best
	}

	attempt := &RepeatedAttempt{
		ID:          uuid.New().String(),
		KeywordSet:  keywords,
		Count:       1,
		FirstSeenAt: now,
		LastSeenAt:  now,
		RawTexts:    []string{text},
	}
	t.clusters[attempt.ID] = attempt
	t.stats.ClustersCreated++
	metrics.AddRepeatClusters(1)
	return attempt
}

func (t *Tracker) appendTrendEntry(analysis textpattern.Analysis) {
	t.trend = append(t.trend, TrendEntry{
		TimestampMs:      t.now().UnixMilli(),
		FrustrationScore: analysis.FrustrationScore,
		RepeatScore:      analysis.RepeatScore,
		ConfusionScore:   analysis.ConfusionScore,
	})
	if len(t.trend) > trendCapacity {
		// Ring-buffer semantics: oldest out first
		t.trend = t.trend[len(t.trend)-trendCapacity:]
	}
}

// currentTrend splits the last ten entries in half and compares averages.
// Fewer than four entries is too little signal and reads as stable.
func (t *Tracker) currentTrend() Trend {
	window := t.trend
	if len(window) > trendWindow {
		window = window[len(window)-trendWindow:]
	}
	if len(window) < 4 {
		return TrendStable
	}

	half := len(window) / 2
	firstAvg := trendAverage(window[:half])
	secondAvg := trendAverage(window[half:])

	diff := secondAvg - firstAvg
	switch {
	case diff > trendBand:
		return TrendDeclining
	case diff < -trendBand:
		return TrendImproving
	default:
		return TrendStable
	}
}

func trendAverage(entries []TrendEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range entries {
		sum += e.FrustrationScore + 0.5*e.RepeatScore
	}
	return sum / float64(len(entries))
}

// Clusters returns the live repeated-attempt clusters.
func (t *Tracker) Clusters() []*RepeatedAttempt {
	out := make([]*RepeatedAttempt, 0, len(t.clusters))
	for _, c := range t.clusters {
		out = append(out, c)
	}
	return out
}

// GetStats returns a copy of the session statistics.
func (t *Tracker) GetStats() Stats {
	return t.stats
}

// Reset clears every cluster and the whole trend history.
func (t *Tracker) Reset() {
	metrics.AddRepeatClusters(-float64(len(t.clusters)))
	t.clusters = make(map[string]*RepeatedAttempt)
	t.trend = t.trend[:0]
	t.logger.Debug("Tracker state reset")
}

// Cleanup evicts clusters and trend entries older than maxAge without
// touching fresher state. Zero maxAge applies the default stale age.
func (t *Tracker) Cleanup(maxAge time.Duration) {
	if maxAge <= 0 {
		maxAge = staleAge
	}
	cutoff := t.now().Add(-maxAge)

	evicted := 0
	for id, c := range t.clusters {
		if c.LastSeenAt.Before(cutoff) {
			delete(t.clusters, id)
			evicted++
		}
	}
	if evicted > 0 {
		t.stats.ClustersEvicted += int64(evicted)
		metrics.AddRepeatClusters(-float64(evicted))
	}

	cutoffMs := cutoff.UnixMilli()
	keep := t.trend[:0]
	for _, e := range t.trend {
		if e.TimestampMs >= cutoffMs {
			keep = append(keep, e)
		}
	}
	t.trend = keep
}

// jaccard is set intersection over union.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
