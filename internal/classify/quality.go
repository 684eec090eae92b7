package classify

import "strings"

// Reasons a result can be flagged for manual review.
const (
	FlagReasonFallback    = "fallback description"
	FlagReasonBoilerplate = "boilerplate description"
	FlagReasonNonASCII    = "low ascii letter ratio"
	FlagReasonNonEnglish  = "non-english description"
)

// foreignStopWords are function words common in non-English generated text.
// A description containing any of them, without a balancing English function
// word, is held for review. Matching is on whole words.
var foreignStopWords = map[string]bool{
	"el": true, "la": true, "los": true, "las": true, "una": true,
	"der": true, "die": true, "das": true, "und": true, "ein": true,
	"le": true, "les": true, "des": true, "une": true, "avec": true,
	"il": true, "gli": true, "della": true, "nel": true,
}

var englishStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "with": true,
	"and": true, "or": true, "from": true, "featuring": true,
}

// checkQuality vets a description before it is accepted onto a record.
// It returns a non-empty reason when the record should be held as pending.
func checkQuality(description string, minASCIIRatio float64) string {
	if description == FallbackDescription {
		return FlagReasonFallback
	}
	if strings.HasPrefix(description, "Scene featuring") {
		return FlagReasonBoilerplate
	}
	if asciiLetterRatio(description) < minASCIIRatio {
		return FlagReasonNonASCII
	}
	if looksNonEnglish(description) {
		return FlagReasonNonEnglish
	}
	return ""
}

// asciiLetterRatio is the share of the description's letters that are ASCII.
// A description with no letters at all scores zero.
func asciiLetterRatio(s string) float64 {
	var letters, ascii int
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letters++
			ascii++
		case r > 0x7f && isLetter(r):
			letters++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(ascii) / float64(letters)
}

func isLetter(r rune) bool {
	return (r >= 0xc0 && r <= 0x24f) || (r >= 0x370 && r <= 0x1fff) || r >= 0x2c00
}

func looksNonEnglish(description string) bool {
	var foreign, english int
	for _, w := range strings.Fields(strings.ToLower(description)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if foreignStopWords[w] {
			foreign++
		}
		if englishStopWords[w] {
			english++
		}
	}
	return foreign > 0 && english == 0
}
