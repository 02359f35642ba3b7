package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// LogicMode selects how permissive logic evaluation is. Modes are ordered:
// each one allows everything the previous one allows.
type LogicMode uint8

const (
	LogicNormal LogicMode = iota
	LogicHard
	LogicGlitchBasic
	LogicGlitchAdvanced
	LogicGlitchHell

	NumLogicModes = 5
)

var logicModeNames = [NumLogicModes]string{
	"normal",
	"hard",
	"glitch_basic",
	"glitch_advanced",
	"glitch_hell",
}

// LogicModes returns every mode from strictest to most permissive.
func LogicModes() []LogicMode {
	return []LogicMode{LogicNormal, LogicHard, LogicGlitchBasic, LogicGlitchAdvanced, LogicGlitchHell}
}

// ParseLogicMode resolves a mode name such as "glitch_basic".
func ParseLogicMode(s string) (LogicMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range logicModeNames {
		if name == s {
			return LogicMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown logic mode: %q", s)
}

func (m LogicMode) Valid() bool {
	return m < NumLogicModes
}

func (m LogicMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("LogicMode(%d)", uint8(m))
	}
	return logicModeNames[m]
}

// UnmarshalYAML accepts the mode name.
func (m *LogicMode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseLogicMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalYAML writes the mode name.
func (m LogicMode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}
