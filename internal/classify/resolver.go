package classify

import (
	"sort"
	"strings"

	"github.com/tkalin/phototag-go/internal/vision"
)

// matchSource records where a rule trigger was found in the signal.
type matchSource string

const (
	sourceLabel  matchSource = "label"
	sourceObject matchSource = "object"
	sourceText   matchSource = "text"
	sourceWeb    matchSource = "web"
)

// equipmentMatch is one activated equipment rule. Confidence is the score of
// the triggering label, or 1.0 for object, text and web-hint matches.
type equipmentMatch struct {
	Rule       *EquipmentRule
	order      int
	Confidence float64
	Source     matchSource
}

// countryMatch is one activated country rule.
type countryMatch struct {
	Rule       *CountryRule
	order      int
	Confidence float64
	Source     matchSource
}

// triggered reports whether any of the rule's triggers occurs in s as a
// case-insensitive substring. The signal is already lowercased by the caller.
func triggered(triggers []string, s string) bool {
	for _, t := range triggers {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// resolveEquipment walks the signal against the equipment table and returns
// the activated rules ordered by confidence, with ties broken by table order.
// Label matches below the floor are discarded. Object, text and web matches
// carry no usable score and are admitted unconditionally at confidence 1.0.
func resolveEquipment(rules []EquipmentRule, sig *vision.Signal, floor float64) []equipmentMatch {
	best := make(map[int]*equipmentMatch)

	record := func(i int, conf float64, src matchSource) {
		if m, ok := best[i]; ok {
			if conf > m.Confidence {
				m.Confidence = conf
				m.Source = src
			}
			return
		}
		best[i] = &equipmentMatch{Rule: &rules[i], order: i, Confidence: conf, Source: src}
	}

	for _, lab := range sig.Labels {
		if lab.Confidence <= floor {
			continue
		}
		text := strings.ToLower(lab.Text)
		for i := range rules {
			if triggered(rules[i].Triggers, text) {
				record(i, lab.Confidence, sourceLabel)
			}
		}
	}
	for _, obj := range sig.Objects {
		text := strings.ToLower(obj)
		for i := range rules {
			if triggered(rules[i].Triggers, text) {
				record(i, 1.0, sourceObject)
			}
		}
	}
	for _, tok := range sig.TextTokens {
		text := strings.ToLower(tok)
		for i := range rules {
			if triggered(rules[i].Triggers, text) {
				record(i, 1.0, sourceText)
			}
		}
	}
	for _, hint := range sig.WebHints {
		text := strings.ToLower(hint)
		for i := range rules {
			if triggered(rules[i].Triggers, text) {
				record(i, 1.0, sourceWeb)
			}
		}
	}

	matches := make([]equipmentMatch, 0, len(best))
	for _, m := range best {
		matches = append(matches, *m)
	}
	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].Confidence != matches[b].Confidence {
			return matches[a].Confidence > matches[b].Confidence
		}
		return matches[a].order < matches[b].order
	})
	return matches
}

// resolveCountry applies the single-attribution policy: every country rule is
// scored, and the one with the highest confidence wins. Ties go to the rule
// that appears first in the table. Label matches below the country floor are
// discarded before scoring.
func resolveCountry(rules []CountryRule, sig *vision.Signal, floor float64) (countryMatch, bool) {
	best := make(map[int]*countryMatch)

	record := func(i int, conf float64, src matchSource) {
		if m, ok := best[i]; ok {
			if conf > m.Confidence {
				m.Confidence = conf
				m.Source = src
			}
			return
		}
		best[i] = &countryMatch{Rule: &rules[i], order: i, Confidence: conf, Source: src}
	}

	for _, lab := range sig.Labels {
		if lab.Confidence <= floor {
			continue
		}
		text := strings.ToLower(lab.Text)
		for i := range rules {
			if triggered(rules[i].Triggers, text) {
				record(i, lab.Confidence, sourceLabel)
			}
		}
	}
	for _, tok := range sig.TextTokens {
		text := strings.ToLower(tok)
		for i := range rules {
			if triggered(rules[i].Triggers, text) {
				record(i, 1.0, sourceText)
			}
		}
	}
	for _, hint := range sig.WebHints {
		text := strings.ToLower(hint)
		for i := range rules {
			if triggered(rules[i].Triggers, text) {
				record(i, 1.0, sourceWeb)
			}
		}
	}

	var winner *countryMatch
	for _, m := range best {
		switch {
		case winner == nil:
			winner = m
		case m.Confidence > winner.Confidence:
			winner = m
		case m.Confidence == winner.Confidence && m.order < winner.order:
			winner = m
		}
	}
	if winner == nil {
		return countryMatch{}, false
	}
	return *winner, true
}
