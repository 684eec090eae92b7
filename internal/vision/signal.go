// signal.go normalizes raw detection payloads into the form consumed by the
// classification engine. Any compliant signal source can feed the engine; the
// remote annotate client is merely the default implementation.
package vision

import (
	"context"
	"sort"
	"strings"
	"unicode"
)

// Label is a detected label with its confidence.
type Label struct {
	Text       string
	Confidence float64
}

// Signal is the normalized set of per-image detection facts used as
// classification input. All collections may be empty, never nil checks
// required by consumers.
type Signal struct {
	// Labels are confidence-sorted descending; duplicate label text is merged
	// keeping the maximum confidence.
	Labels []Label
	// Objects are localized object names, order of first appearance.
	Objects []string
	// TextTokens are recognized text fragments in original order.
	TextTokens []string
	// WebHints are short strings from visually similar web pages.
	WebHints []string
	// Colors is an optional coarse visual-property summary. Not consumed by
	// the current rule set.
	Colors []ColorInfo
}

// SignalSource produces a normalized detection signal for an image.
type SignalSource interface {
	Analyze(ctx context.Context, identifier string, image []byte) (Signal, error)
}

// Normalize adapts a raw detection response into a Signal. It is total: a nil
// or partially filled response yields a Signal with empty collections.
func Normalize(resp *ImageResponse) Signal {
	var sig Signal
	if resp == nil {
		return sig
	}

	sig.Labels = normalizeLabels(resp.LabelAnnotations)
	sig.Objects = normalizeObjects(resp.LocalizedObjectAnnotations)
	sig.TextTokens = normalizeText(resp.TextAnnotations)
	sig.WebHints = normalizeWebHints(resp.WebDetection)
	if resp.ImageProperties != nil {
		sig.Colors = resp.ImageProperties.DominantColors.Colors
	}
	return sig
}

// normalizeLabels merges duplicate label text keeping the maximum confidence,
// then sorts descending by confidence. The sort is stable so equal-confidence
// labels keep their detection order.
func normalizeLabels(annotations []EntityAnnotation) []Label {
	if len(annotations) == 0 {
		return nil
	}

	index := make(map[string]int, len(annotations))
	labels := make([]Label, 0, len(annotations))
	for _, ann := range annotations {
		text := stripNonPrintable(ann.Description)
		if text == "" {
			continue
		}
		key := strings.ToLower(text)
		if i, seen := index[key]; seen {
			if ann.Score > labels[i].Confidence {
				labels[i].Confidence = ann.Score
			}
			continue
		}
		index[key] = len(labels)
		labels = append(labels, Label{Text: text, Confidence: ann.Score})
	}

	sort.SliceStable(labels, func(i, j int) bool {
		return labels[i].Confidence > labels[j].Confidence
	})
	return labels
}

func normalizeObjects(annotations []LocalizedObjectAnnotation) []string {
	if len(annotations) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(annotations))
	objects := make([]string, 0, len(annotations))
	for _, ann := range annotations {
		name := stripNonPrintable(ann.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		objects = append(objects, name)
	}
	return objects
}

// normalizeText extracts per-token text. The first annotation is the full
// recognized text block; subsequent annotations are individual tokens. When
// only the block is present it is split on whitespace.
func normalizeText(annotations []EntityAnnotation) []string {
	if len(annotations) == 0 {
		return nil
	}

	var raw []string
	if len(annotations) > 1 {
		for _, ann := range annotations[1:] {
			raw = append(raw, ann.Description)
		}
	} else {
		raw = strings.Fields(annotations[0].Description)
	}

	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(stripNonPrintable(t))
		if t == "" {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

func normalizeWebHints(web *WebDetection) []string {
	if web == nil {
		return nil
	}

	seen := make(map[string]bool)
	var hints []string
	add := func(s string) {
		s = strings.TrimSpace(stripNonPrintable(s))
		if s == "" {
			return
		}
		key := strings.ToLower(s)
		if seen[key] {
			return
		}
		seen[key] = true
		hints = append(hints, s)
	}

	for _, l := range web.BestGuessLabels {
		add(l.Label)
	}
	for _, e := range web.WebEntities {
		if e.Score > 0 {
			add(e.Description)
		}
	}
	for _, p := range web.PagesWithMatchingImages {
		add(p.PageTitle)
	}
	return hints
}

// stripNonPrintable removes control and other non-printable runes, keeping
// spaces. Case is preserved; case normalization is the resolver's job.
func stripNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)
}
