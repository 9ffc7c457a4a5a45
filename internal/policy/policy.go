// Package policy holds the static lookup tables the analytics consult: how
// essential a macro-category is and how far ahead a reminder starts warning.
// The tables are versioned YAML so they can change without a redeploy.
package policy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultDocument []byte

var ErrInvalidPolicy = errors.New("invalid policy")

type Policy struct {
	Version   int             `yaml:"version"`
	Necessity NecessityTable  `yaml:"necessity"`
	Frequency FrequencyPolicy `yaml:"frequency"`
}

type NecessityTable struct {
	Default int            `yaml:"default"`
	Scores  map[string]int `yaml:"scores"`
}

type FrequencyPolicy struct {
	DefaultDays int              `yaml:"default_days"`
	Classes     []FrequencyClass `yaml:"classes"`
}

type FrequencyClass struct {
	Name string   `yaml:"name"`
	Days int      `yaml:"days"`
	Tags []string `yaml:"tags"`
}

// Default returns the embedded policy tables.
func Default() *Policy {
	p, err := Parse(defaultDocument)
	if err != nil {
		panic(fmt.Sprintf("embedded policy is broken: %v", err))
	}
	return p
}

// Load returns the embedded policy, or the document at path when path is set.
func Load(path string) (*Policy, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Policy) Validate() error {
	if p.Version < 1 {
		return fmt.Errorf("%w: version must be >= 1", ErrInvalidPolicy)
	}
	if p.Necessity.Default < 0 || p.Necessity.Default > 100 {
		return fmt.Errorf("%w: necessity default %d out of range", ErrInvalidPolicy, p.Necessity.Default)
	}
	for name, score := range p.Necessity.Scores {
		if score < 0 || score > 100 {
			return fmt.Errorf("%w: necessity score for %q is %d", ErrInvalidPolicy, name, score)
		}
	}
	if p.Frequency.DefaultDays < 0 {
		return fmt.Errorf("%w: negative default lookahead", ErrInvalidPolicy)
	}
	for _, c := range p.Frequency.Classes {
		if c.Days < 0 {
			return fmt.Errorf("%w: class %q has negative lookahead", ErrInvalidPolicy, c.Name)
		}
	}
	return nil
}

// NecessityScore maps a macro-category to its 0-100 weight. Unknown names get the default.
func (p *Policy) NecessityScore(macroCategory string) int {
	if score, ok := p.Necessity.Scores[macroCategory]; ok {
		return score
	}
	return p.Necessity.Default
}

// Lookahead is the number of days before the due date during which a reminder
// may fire. The tag is matched by substring, case-insensitively.
func (p *Policy) Lookahead(frequency string) int {
	tag := strings.ToLower(strings.TrimSpace(frequency))
	if tag == "" {
		return p.Frequency.DefaultDays
	}
	for _, c := range p.Frequency.Classes {
		for _, t := range c.Tags {
			if strings.Contains(tag, strings.ToLower(t)) {
				return c.Days
			}
		}
	}
	return p.Frequency.DefaultDays
}
