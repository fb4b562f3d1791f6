package textpattern

// Locale identifies a supported analysis language.
type Locale string

// Supported locales
const (
	LocaleItalian Locale = "it"
	LocaleEnglish Locale = "en"
	LocaleSpanish Locale = "es"
	LocaleFrench  Locale = "fr"
	LocaleGerman  Locale = "de"

	// LocaleUnknown is returned when no locale scores above zero
	LocaleUnknown Locale = ""
)

// Category classifies what kind of signal a pattern carries.
type Category string

const (
	// CategoryExplicit marks direct statements of frustration ("I give up")
	CategoryExplicit Category = "explicit"
	// CategoryImplicit marks self-doubt phrasing ("I'm not smart enough")
	CategoryImplicit Category = "implicit"
	// CategoryQuestion marks confusion cues ("what does that mean")
	CategoryQuestion Category = "question"
	// CategoryRepeat marks repeat-request cues ("say that again")
	CategoryRepeat Category = "repeat"
)

// Rule is a single weighted pattern. Expr is a case-insensitive regular
// expression; Weight is a hand-tuned severity prior in [0,1].
type Rule struct {
	Expr     string   `yaml:"expr"`
	Weight   float64  `yaml:"weight"`
	Category Category `yaml:"category"`
}

// Marker is a locale-detection cue word. Distinctive closed-class words
// carry weight 2 to break ties between related languages.
type Marker struct {
	Word   string  `yaml:"word"`
	Weight float64 `yaml:"weight"`
}

// Table holds every pattern list for one locale.
type Table struct {
	Frustration []Rule   `yaml:"frustration"`
	Repeat      []Rule   `yaml:"repeat"`
	Confusion   []Rule   `yaml:"confusion"`
	Fillers     []string `yaml:"fillers"`
	Markers     []Marker `yaml:"markers"`
}

// PatternMatch records one rule hit for explainability.
type PatternMatch struct {
	Locale      Locale   `json:"locale"`
	Category    Category `json:"category"`
	Weight      float64  `json:"weight"`
	MatchedText string   `json:"matched_text"`
}

// Analysis is the per-utterance result of AnalyzeText. Each score is the
// maximum matched weight in its category, so a single strong phrase
// dominates and scores stay within [0,1] without re-normalization.
type Analysis struct {
	Locale           Locale         `json:"locale"`
	FrustrationScore float64        `json:"frustration_score"`
	RepeatScore      float64        `json:"repeat_score"`
	ConfusionScore   float64        `json:"confusion_score"`
	Matches          []PatternMatch `json:"matches,omitempty"`
}
