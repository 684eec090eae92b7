// Package classify turns normalized detection signals into deterministic
// (description, country, keywords) triples using ordered rule tables.
package classify

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/tkalin/phototag-go/internal/errors"
)

//go:embed rules.yaml
var builtinRules []byte

// Category buckets equipment for description templates.
type Category string

const (
	CategoryMissile   Category = "missile"
	CategoryArmor     Category = "armor"
	CategoryAircraft  Category = "aircraft"
	CategoryNaval     Category = "naval"
	CategoryPersonnel Category = "personnel"
	CategoryOther     Category = "other"
)

var validCategories = map[Category]bool{
	CategoryMissile:   true,
	CategoryArmor:     true,
	CategoryAircraft:  true,
	CategoryNaval:     true,
	CategoryPersonnel: true,
	CategoryOther:     true,
}

// EquipmentRule maps a tag to the trigger phrases that activate it and the
// alias list used for keyword expansion. Table order is significant: it breaks
// confidence ties.
type EquipmentRule struct {
	Tag      string   `yaml:"tag"`
	Category Category `yaml:"category"`
	Triggers []string `yaml:"triggers"`
	Aliases  []string `yaml:"aliases"`
}

// CountryRule maps a country attribution to its trigger phrases.
type CountryRule struct {
	Name     string   `yaml:"name"`
	Triggers []string `yaml:"triggers"`
}

// RuleTable holds the ordered equipment and country rule tables. It is
// read-only after load; a process loads it once and never mutates it during a
// run.
type RuleTable struct {
	Equipment []EquipmentRule `yaml:"equipment"`
	Countries []CountryRule   `yaml:"countries"`
}

// DefaultRules parses the built-in rule table.
func DefaultRules() (*RuleTable, error) {
	return parseRules(builtinRules)
}

// LoadRules reads a rule table from an external YAML file, falling back to the
// built-in table when path is empty.
func LoadRules(path string) (*RuleTable, error) {
	if path == "" {
		return DefaultRules()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("reading rule table: %w", err)).
			Component("classify").
			Category(errors.CategoryFileIO).
			Build()
	}
	return parseRules(data)
}

func parseRules(data []byte) (*RuleTable, error) {
	var table RuleTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, errors.New(fmt.Errorf("parsing rule table: %w", err)).
			Component("classify").
			Category(errors.CategoryRuleTable).
			Build()
	}
	table.normalize()
	if err := table.validate(); err != nil {
		return nil, err
	}
	return &table, nil
}

// normalize lower-cases tags, aliases and trigger phrases, and canonicalizes
// country names to English title case so that rule files may use any casing.
func (rt *RuleTable) normalize() {
	caser := cases.Title(language.English)

	for i := range rt.Equipment {
		rule := &rt.Equipment[i]
		rule.Tag = strings.ToLower(strings.TrimSpace(rule.Tag))
		if rule.Category == "" {
			rule.Category = CategoryOther
		}
		for j, t := range rule.Triggers {
			rule.Triggers[j] = strings.ToLower(strings.TrimSpace(t))
		}
		for j, a := range rule.Aliases {
			rule.Aliases[j] = strings.ToLower(strings.TrimSpace(a))
		}
	}

	for i := range rt.Countries {
		rule := &rt.Countries[i]
		rule.Name = caser.String(strings.ToLower(strings.TrimSpace(rule.Name)))
		for j, t := range rule.Triggers {
			rule.Triggers[j] = strings.ToLower(strings.TrimSpace(t))
		}
	}
}

// validate enforces the startup invariants: unique tags and country names,
// non-empty trigger lists, known categories.
func (rt *RuleTable) validate() error {
	var problems []string

	if len(rt.Equipment) == 0 {
		problems = append(problems, "equipment table is empty")
	}
	if len(rt.Countries) == 0 {
		problems = append(problems, "country table is empty")
	}

	seenTags := make(map[string]bool, len(rt.Equipment))
	for _, rule := range rt.Equipment {
		switch {
		case rule.Tag == "":
			problems = append(problems, "equipment rule with empty tag")
		case seenTags[rule.Tag]:
			problems = append(problems, fmt.Sprintf("duplicate equipment tag %q", rule.Tag))
		default:
			seenTags[rule.Tag] = true
		}
		if len(rule.Triggers) == 0 {
			problems = append(problems, fmt.Sprintf("equipment tag %q has no trigger phrases", rule.Tag))
		}
		if !validCategories[rule.Category] {
			problems = append(problems, fmt.Sprintf("equipment tag %q has unknown category %q", rule.Tag, rule.Category))
		}
	}

	seenCountries := make(map[string]bool, len(rt.Countries))
	for _, rule := range rt.Countries {
		switch {
		case rule.Name == "":
			problems = append(problems, "country rule with empty name")
		case seenCountries[rule.Name]:
			problems = append(problems, fmt.Sprintf("duplicate country %q", rule.Name))
		default:
			seenCountries[rule.Name] = true
		}
		if len(rule.Triggers) == 0 {
			problems = append(problems, fmt.Sprintf("country %q has no trigger phrases", rule.Name))
		}
	}

	if len(problems) > 0 {
		return errors.Newf("invalid rule table: %s", strings.Join(problems, "; ")).
			Component("classify").
			Category(errors.CategoryRuleTable).
			Build()
	}
	return nil
}
