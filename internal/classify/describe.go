package classify

import (
	"fmt"
	"strings"
)

// FallbackDescription is used when no rule produces a usable description.
// Records carrying it are flagged for review rather than silently accepted.
const FallbackDescription = "Military or defense-related image"

// categoryTemplates render the primary equipment match into a sentence stem.
var categoryTemplates = map[Category]string{
	CategoryMissile:   "Missile system imagery featuring %s",
	CategoryArmor:     "Armored vehicle imagery featuring %s",
	CategoryAircraft:  "Military aviation imagery featuring %s",
	CategoryNaval:     "Naval imagery featuring %s",
	CategoryPersonnel: "Military personnel imagery featuring %s",
	CategoryOther:     "Military image featuring %s",
}

// describe builds the record description from the resolved matches. The
// primary equipment match drives the template, the country attribution is
// appended when present, and relevant OCR markings close the sentence. With
// no equipment at all the description degrades to the country-only form and
// finally to the fallback.
func describe(matches []equipmentMatch, country string, markings []string) string {
	if len(matches) == 0 {
		if country != "" {
			return fmt.Sprintf("Military or national imagery associated with %s", country)
		}
		return FallbackDescription
	}

	primary := matches[0]
	tpl, ok := categoryTemplates[primary.Rule.Category]
	if !ok {
		tpl = categoryTemplates[CategoryOther]
	}

	var b strings.Builder
	fmt.Fprintf(&b, tpl, primary.Rule.Tag)
	if country != "" {
		fmt.Fprintf(&b, ", associated with %s", country)
	}
	if len(markings) > 0 {
		fmt.Fprintf(&b, ", with visible markings %q", strings.Join(markings, " "))
	}
	return b.String()
}

// relevantMarkings filters OCR tokens down to those worth surfacing in the
// description: short alphanumeric designators such as hull numbers or unit
// codes. Free text and noise tokens are dropped.
func relevantMarkings(tokens []string, max int) []string {
	var out []string
	for _, tok := range tokens {
		if !looksLikeDesignator(tok) {
			continue
		}
		out = append(out, tok)
		if len(out) == max {
			break
		}
	}
	return out
}

// looksLikeDesignator accepts tokens of up to 12 runes that mix letters and
// digits or are fully uppercase, the shape of military serials and markings.
func looksLikeDesignator(tok string) bool {
	if tok == "" || len([]rune(tok)) > 12 {
		return false
	}
	var letters, digits, upper, other int
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r >= 'A' && r <= 'Z':
			letters++
			upper++
		case r >= 'a' && r <= 'z':
			letters++
		case r == '-' || r == '/':
		default:
			other++
		}
	}
	if other > 0 {
		return false
	}
	if digits > 0 && letters > 0 {
		return true
	}
	return letters >= 2 && upper == letters
}
