package textpattern

import (
	"regexp"
	"sort"
	"strings"
)

// Matcher scores utterances against the locale pattern tables. It is a pure
// function of its inputs once built: no hidden state, safe for concurrent
// use from any number of sessions.
type Matcher struct {
	tables map[Locale]*compiledTable
}

type compiledTable struct {
	frustration []compiledRule
	repeat      []compiledRule
	confusion   []compiledRule
	fillers     [][]string // filler phrases, tokenized
	markers     map[string]float64
}

type compiledRule struct {
	re       *regexp.Regexp
	weight   float64
	category Category
}

var wordPattern = regexp.MustCompile(`[\p{L}][\p{L}']*`)

// NewMatcher builds a matcher over the built-in tables.
func NewMatcher() *Matcher {
	m := &Matcher{tables: make(map[Locale]*compiledTable, len(builtinTables))}
	for locale, table := range builtinTables {
		m.tables[locale] = compileTable(table)
	}
	return m
}

func compileTable(t Table) *compiledTable {
	ct := &compiledTable{
		markers: make(map[string]float64, len(t.Markers)),
	}
	for _, r := range t.Frustration {
		ct.frustration = append(ct.frustration, compileRule(r))
	}
	for _, r := range t.Repeat {
		ct.repeat = append(ct.repeat, compileRule(r))
	}
	for _, r := range t.Confusion {
		ct.confusion = append(ct.confusion, compileRule(r))
	}
	for _, f := range t.Fillers {
		ct.fillers = append(ct.fillers, tokenize(f))
	}
	for _, mk := range t.Markers {
		ct.markers[strings.ToLower(mk.Word)] = mk.Weight
	}
	return ct
}

// wrapExpr adds token-boundary guards around a rule expression so single-word
// rules cannot fire inside longer words ("odio" in "episodio", "basta" in
// "abbastanza"). Go's \b is ASCII-only, so accented letters are treated as
// word characters explicitly. The inner group captures the rule's own match.
func wrapExpr(expr string) string {
	return `(?i)(?:^|[^\p{L}])(` + expr + `)(?:[^\p{L}]|$)`
}

func compileRule(r Rule) compiledRule {
	return compiledRule{
		re:       regexp.MustCompile(wrapExpr(r.Expr)),
		weight:   r.Weight,
		category: r.Category,
	}
}

// tokenize splits text into lowercase word tokens. Accented letters count as
// word characters, not delimiters.
func tokenize(text string) []string {
	raw := wordPattern.FindAllString(strings.ReplaceAll(text, "’", "'"), -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		tokens = append(tokens, strings.ToLower(t))
	}
	return tokens
}

// DetectLocale returns the locale with the strictly highest marker score,
// or LocaleUnknown when every locale scores zero or the best score is tied.
func (m *Matcher) DetectLocale(text string) Locale {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return LocaleUnknown
	}

	scores := make(map[Locale]float64, len(m.tables))
	for locale, ct := range m.tables {
		for _, tok := range tokens {
			if w, ok := ct.markers[tok]; ok {
				scores[locale] += w
			}
		}
	}

	best := LocaleUnknown
	bestScore := 0.0
	tied := false
	// Deterministic iteration so ties resolve the same way every call
	locales := make([]Locale, 0, len(scores))
	for l := range scores {
		locales = append(locales, l)
	}
	sort.Slice(locales, func(i, j int) bool { return locales[i] < locales[j] })
	for _, l := range locales {
		s := scores[l]
		if s > bestScore {
			best = l
			bestScore = s
			tied = false
		} else if s == bestScore && s > 0 {
			tied = true
		}
	}
	if bestScore == 0 || tied {
		return LocaleUnknown
	}
	return best
}

// AnalyzeText scores an utterance. With no locale given it auto-detects; if
// detection stays ambiguous it scans every locale table and unions the
// matches rather than failing. Empty text yields the zero Analysis.
func (m *Matcher) AnalyzeText(text string, locale Locale) Analysis {
	result := Analysis{Locale: locale}
	if strings.TrimSpace(text) == "" {
		return result
	}

	if result.Locale == LocaleUnknown {
		result.Locale = m.DetectLocale(text)
	}

	scan := make([]Locale, 0, len(m.tables))
	if ct := m.tables[result.Locale]; ct != nil {
		scan = append(scan, result.Locale)
	} else {
		// Permissive fallback: ambiguous or unsupported locale scans all tables
		for l := range m.tables {
			scan = append(scan, l)
		}
		sort.Slice(scan, func(i, j int) bool { return scan[i] < scan[j] })
	}

	for _, l := range scan {
		ct := m.tables[l]
		result.FrustrationScore = maxScore(result.FrustrationScore,
			m.matchRules(text, l, ct.frustration, &result.Matches))
		result.RepeatScore = maxScore(result.RepeatScore,
			m.matchRules(text, l, ct.repeat, &result.Matches))
		result.ConfusionScore = maxScore(result.ConfusionScore,
			m.matchRules(text, l, ct.confusion, &result.Matches))
	}
	return result
}

// matchRules returns the maximum matched weight in the rule list. A single
// strong phrase dominates; summing would need re-normalization.
func (m *Matcher) matchRules(text string, locale Locale, rules []compiledRule, matches *[]PatternMatch) float64 {
	score := 0.0
	for _, r := range rules {
		sub := r.re.FindStringSubmatch(text)
		if sub == nil {
			continue
		}
		*matches = append(*matches, PatternMatch{
			Locale:      locale,
			Category:    r.category,
			Weight:      r.weight,
			MatchedText: sub[1],
		})
		if r.weight > score {
			score = r.weight
		}
	}
	return score
}

// CountFillers counts filler-word occurrences using token-level matching, so
// filler substrings inside longer words are never miscounted. With an
// unknown locale the filler lists of all locales are unioned.
func (m *Matcher) CountFillers(text string, locale Locale) int {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	if locale == LocaleUnknown {
		locale = m.DetectLocale(text)
	}

	var phrases [][]string
	if ct := m.tables[locale]; ct != nil {
		phrases = ct.fillers
	} else {
		seen := make(map[string]bool)
		locales := make([]Locale, 0, len(m.tables))
		for l := range m.tables {
			locales = append(locales, l)
		}
		sort.Slice(locales, func(i, j int) bool { return locales[i] < locales[j] })
		for _, l := range locales {
			for _, p := range m.tables[l].fillers {
				key := strings.Join(p, " ")
				if !seen[key] {
					seen[key] = true
					phrases = append(phrases, p)
				}
			}
		}
	}

	count := 0
	for i := 0; i < len(tokens); {
		matched := 0
		for _, p := range phrases {
			if len(p) > matched && phraseAt(tokens, i, p) {
				matched = len(p)
			}
		}
		if matched > 0 {
			count++
			i += matched
		} else {
			i++
		}
	}
	return count
}

func phraseAt(tokens []string, i int, phrase []string) bool {
	if i+len(phrase) > len(tokens) {
		return false
	}
	for j, w := range phrase {
		if tokens[i+j] != w {
			return false
		}
	}
	return true
}

func maxScore(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
