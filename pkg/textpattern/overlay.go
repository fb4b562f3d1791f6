package textpattern

import (
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"frustration-engine/pkg/errors"
)

// NewMatcherWithOverlay builds a matcher from the built-in tables extended
// with rules from a YAML overlay file. The overlay is a map of locale to
// Table fragments; entries are appended to the built-in lists, so deployments
// can add site-specific phrasing without touching the defaults.
//
//	it:
//	  frustration:
//	    - expr: "non ne posso più"
//	      weight: 0.85
//	      category: explicit
//	  fillers: ["vabbè"]
func NewMatcherWithOverlay(path string) (*Matcher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read pattern table overlay",
			map[string]interface{}{"path": path})
	}

	var overlay map[Locale]Table
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, errors.Wrap(err, "failed to parse pattern table overlay",
			map[string]interface{}{"path": path})
	}

	m := NewMatcher()
	for locale, extra := range overlay {
		ct := m.tables[locale]
		if ct == nil {
			return nil, errors.Wrap(errors.ErrUnsupportedLocale, "overlay references unknown locale",
				map[string]interface{}{"locale": string(locale)})
		}
		if err := mergeOverlay(ct, extra); err != nil {
			return nil, errors.Wrap(err, "invalid overlay rule",
				map[string]interface{}{"locale": string(locale)})
		}
	}
	return m, nil
}

func mergeOverlay(ct *compiledTable, extra Table) error {
	lists := []struct {
		rules []Rule
		dst   *[]compiledRule
	}{
		{extra.Frustration, &ct.frustration},
		{extra.Repeat, &ct.repeat},
		{extra.Confusion, &ct.confusion},
	}
	for _, l := range lists {
		for _, r := range l.rules {
			re, err := regexp.Compile(wrapExpr(r.Expr))
			if err != nil {
				return err
			}
			if r.Weight < 0 || r.Weight > 1 {
				return errors.Wrap(errors.ErrInvalidInput, "rule weight out of range",
					map[string]interface{}{"expr": r.Expr, "weight": r.Weight})
			}
			*l.dst = append(*l.dst, compiledRule{re: re, weight: r.Weight, category: r.Category})
		}
	}
	for _, f := range extra.Fillers {
		ct.fillers = append(ct.fillers, tokenize(f))
	}
	for _, mk := range extra.Markers {
		ct.markers[strings.ToLower(mk.Word)] = mk.Weight
	}
	return nil
}
