// Package classify turns normalized vision signals into deterministic image
// metadata: a description, a single country attribution, a capped keyword
// list and a confidence score. Classification is pure rule application over
// the loaded tables, so the same signal always yields the same result.
package classify

import "github.com/tkalin/phototag-go/internal/vision"

// Options tune the engine thresholds. Zero values are replaced by defaults.
type Options struct {
	// ConfidenceFloor is the minimum label score for an equipment match.
	ConfidenceFloor float64
	// CountryFloor is the minimum label score for a country match.
	CountryFloor float64
	// MaxKeywords caps the keyword list.
	MaxKeywords int
	// MinASCIIRatio is the quality gate on the description's letters.
	MinASCIIRatio float64
}

// DefaultOptions returns the thresholds used when no configuration overrides
// them.
func DefaultOptions() Options {
	return Options{
		ConfidenceFloor: 0.5,
		CountryFloor:    0.6,
		MaxKeywords:     25,
		MinASCIIRatio:   0.85,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ConfidenceFloor <= 0 {
		o.ConfidenceFloor = d.ConfidenceFloor
	}
	if o.CountryFloor <= 0 {
		o.CountryFloor = d.CountryFloor
	}
	if o.MaxKeywords <= 0 {
		o.MaxKeywords = d.MaxKeywords
	}
	if o.MinASCIIRatio <= 0 {
		o.MinASCIIRatio = d.MinASCIIRatio
	}
	return o
}

// Result is the outcome of classifying one signal.
type Result struct {
	Description string
	Country     string
	Keywords    []string
	Confidence  float64
	Flagged     bool
	FlagReason  string
}

// Engine applies a rule table to vision signals.
type Engine struct {
	rules *RuleTable
	opts  Options
}

// NewEngine builds an engine over the given table. A nil table selects the
// built-in rules.
func NewEngine(rules *RuleTable, opts Options) (*Engine, error) {
	if rules == nil {
		var err error
		rules, err = DefaultRules()
		if err != nil {
			return nil, err
		}
	}
	return &Engine{rules: rules, opts: opts.withDefaults()}, nil
}

// Classify resolves the signal against the rule tables and assembles the
// record metadata. It never fails: an empty signal yields the flagged
// fallback result.
func (e *Engine) Classify(sig *vision.Signal) Result {
	matches := resolveEquipment(e.rules.Equipment, sig, e.opts.ConfidenceFloor)

	var country string
	var countryConf float64
	if cm, ok := resolveCountry(e.rules.Countries, sig, e.opts.CountryFloor); ok {
		country = cm.Rule.Name
		countryConf = cm.Confidence
	}

	markings := relevantMarkings(sig.TextTokens, 3)

	res := Result{
		Description: describe(matches, country, markings),
		Country:     country,
		Keywords:    buildKeywords(matches, country, markings, e.opts.MaxKeywords),
		Confidence:  resultConfidence(matches, countryConf),
	}
	if reason := checkQuality(res.Description, e.opts.MinASCIIRatio); reason != "" {
		res.Flagged = true
		res.FlagReason = reason
	}
	return res
}

// resultConfidence is the maximum confidence across everything that matched,
// equipment and country alike.
func resultConfidence(matches []equipmentMatch, countryConf float64) float64 {
	conf := countryConf
	if len(matches) > 0 && matches[0].Confidence > conf {
		conf = matches[0].Confidence
	}
	return conf
}
