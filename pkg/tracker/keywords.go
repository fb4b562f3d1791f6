package tracker

import (
	"regexp"
	"strings"
)

var keywordToken = regexp.MustCompile(`[\p{L}][\p{L}']*`)

// Multi-language stop words: the closed-class vocabulary of the five
// supported languages carries no topical signal for clustering.
var stopWords = map[string]bool{
	// English
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "what": true, "how": true, "why": true, "can": true,
	"you": true, "not": true, "but": true, "are": true, "was": true,
	"have": true, "does": true, "don't": true, "doesn't": true, "can't": true,
	// Italian
	"che": true, "non": true, "per": true, "una": true, "come": true,
	"con": true, "sono": true, "del": true, "della": true, "questo": true,
	"cosa": true, "perché": true, "più": true, "anche": true, "gli": true,
	// Spanish
	"los": true, "las": true, "por": true, "qué": true, "cómo": true,
	"pero": true, "este": true, "esta": true, "para": true,
	"muy": true, "nada": true, "estoy": true, "tengo": true, "puedo": true,
	// French
	"les": true, "des": true, "une": true, "est": true, "pas": true,
	"mais": true, "avec": true, "pour": true, "c'est": true, "j'ai": true,
	"comment": true, "pourquoi": true, "dans": true, "sur": true,
	// German
	"das": true, "ich": true, "nicht": true, "und": true, "ist": true,
	"ein": true, "eine": true, "wie": true, "aber": true, "mit": true,
	"warum": true, "kann": true, "mir": true, "mich": true,
}

// Suffixes tried longest-first; a strip only applies when at least three
// characters of stem remain.
var stemSuffixes = []string{
	// Romance verb endings
	"erebbe", "iamo", "iendo", "ando", "endo", "ación", "azione",
	"are", "ere", "ire", "ato", "uto", "ito", "ado", "ido",
	"ais", "ait", "ons", "ez", "ar", "er", "ir",
	// English
	"ing", "ed",
}

// ExtractKeywords normalizes an utterance into a set of comparable stems:
// lowercase, punctuation stripped, stop words removed, tokens of two or
// fewer characters dropped, then light suffix stemming so conjugations of
// the same verb land on the same stem.
func ExtractKeywords(text string) map[string]bool {
	tokens := keywordToken.FindAllString(strings.ReplaceAll(text, "’", "'"), -1)

	keywords := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		tok = strings.ToLower(tok)
		if len([]rune(tok)) <= 2 || stopWords[tok] {
			continue
		}
		keywords[stem(tok)] = true
	}
	return keywords
}

func stem(word string) string {
	runes := []rune(word)
	for _, suffix := range stemSuffixes {
		sr := []rune(suffix)
		if len(runes) > len(sr)+2 && strings.HasSuffix(word, suffix) {
			return string(runes[:len(runes)-len(sr)])
		}
	}
	// No verb ending matched: truncate so plural/diminutive variants align
	if len(runes) > 5 {
		return string(runes[:5])
	}
	return word
}
