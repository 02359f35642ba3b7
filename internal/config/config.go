package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/AaronLay10/SeedEngine/internal/item"
)

// Defaults applied when a settings file leaves a field unset.
const (
	DefaultMaxAttempts   = 10
	DefaultMaxIterations = 10000
	MaxPendants          = 3
)

// Settings is the immutable description of one generation run. It is read at
// graph construction and fill start and never mutated afterwards.
type Settings struct {
	Version int    `yaml:"version"`
	Seed    uint64 `yaml:"seed"`

	Logic LogicMode `yaml:"logic"`

	Swordless        bool `yaml:"swordless"`
	Keysy            bool `yaml:"keysy"`
	MaiamaiMadness   bool `yaml:"maiamai_madness"`
	SkipBoulderField bool `yaml:"skip_boulder_field"`
	RequiredPendants int  `yaml:"required_pendants"`

	StartItems []string          `yaml:"start_items,omitempty"`
	Plando     map[string]string `yaml:"plando,omitempty"`

	MaxAttempts   int `yaml:"max_attempts,omitempty"`
	MaxIterations int `yaml:"max_iterations,omitempty"`
}

// Default returns settings for a normal-logic seed requiring every pendant.
func Default() *Settings {
	return &Settings{
		Version:          1,
		Logic:            LogicNormal,
		RequiredPendants: MaxPendants,
		MaxAttempts:      DefaultMaxAttempts,
		MaxIterations:    DefaultMaxIterations,
	}
}

// LoadSettings reads and validates a settings YAML file.
func LoadSettings(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	return ParseSettings(b)
}

// ParseSettings decodes and validates settings YAML.
func ParseSettings(b []byte) (*Settings, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Clone returns a deep copy so callers can vary the seed per attempt.
func (s *Settings) Clone() *Settings {
	cpy := *s
	cpy.StartItems = append([]string(nil), s.StartItems...)
	if s.Plando != nil {
		cpy.Plando = make(map[string]string, len(s.Plando))
		for k, v := range s.Plando {
			cpy.Plando[k] = v
		}
	}
	return &cpy
}

// Validate rejects settings that can never produce a graph or pool.
func (s *Settings) Validate() error {
	if s.Version != 1 {
		return &ValidationError{Field: "version", Detail: fmt.Sprintf("unsupported settings version: %d", s.Version)}
	}
	if !s.Logic.Valid() {
		return &ValidationError{Field: "logic", Detail: fmt.Sprintf("unknown logic mode %d", s.Logic)}
	}
	if s.RequiredPendants < 0 || s.RequiredPendants > MaxPendants {
		return &ValidationError{Field: "required_pendants", Detail: fmt.Sprintf("must be between 0 and %d, got %d", MaxPendants, s.RequiredPendants)}
	}
	if s.MaxAttempts < 0 {
		return &ValidationError{Field: "max_attempts", Detail: "must not be negative"}
	}
	if s.MaxIterations < 0 {
		return &ValidationError{Field: "max_iterations", Detail: "must not be negative"}
	}
	for _, name := range s.StartItems {
		k, err := item.ParseKind(name)
		if err != nil {
			return &ValidationError{Field: "start_items", Detail: err.Error()}
		}
		if s.Swordless && k == item.Sword {
			return &ValidationError{Field: "start_items", Detail: "sword cannot be a start item in swordless mode"}
		}
	}
	for check, name := range s.Plando {
		if _, err := item.Parse(name); err != nil {
			return &ValidationError{Field: "plando", Detail: fmt.Sprintf("%s: %v", check, err)}
		}
	}
	return nil
}

// StartKinds returns the parsed start items. Validate must have passed.
func (s *Settings) StartKinds() []item.Kind {
	out := make([]item.Kind, 0, len(s.StartItems))
	for _, name := range s.StartItems {
		if k, err := item.ParseKind(name); err == nil {
			out = append(out, k)
		}
	}
	return out
}

// PlandoChecks returns the plando check names in a stable order.
func (s *Settings) PlandoChecks() []string {
	names := make([]string, 0, len(s.Plando))
	for name := range s.Plando {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Attempts returns the retry budget, falling back to the default.
func (s *Settings) Attempts() int {
	if s.MaxAttempts == 0 {
		return DefaultMaxAttempts
	}
	return s.MaxAttempts
}

// Iterations returns the per-attempt placement cap, falling back to the default.
func (s *Settings) Iterations() int {
	if s.MaxIterations == 0 {
		return DefaultMaxIterations
	}
	return s.MaxIterations
}

// ValidationError reports a settings field that cannot be used.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return "invalid settings field " + e.Field + ": " + e.Detail
}
