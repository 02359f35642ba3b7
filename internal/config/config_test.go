package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AaronLay10/SeedEngine/internal/item"
)

const sampleSettings = `
version: 1
seed: 42
logic: glitch_basic
swordless: true
keysy: false
required_pendants: 2
start_items: [lamp, boots]
plando:
  "Sanctuary Chest": hookshot
max_attempts: 3
`

func TestParseSettings(t *testing.T) {
	s, err := ParseSettings([]byte(sampleSettings))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Seed != 42 {
		t.Errorf("expected seed 42, got %d", s.Seed)
	}
	if s.Logic != LogicGlitchBasic {
		t.Errorf("expected glitch_basic, got %s", s.Logic)
	}
	if !s.Swordless {
		t.Error("expected swordless")
	}
	if s.RequiredPendants != 2 {
		t.Errorf("expected 2 pendants, got %d", s.RequiredPendants)
	}
	kinds := s.StartKinds()
	if len(kinds) != 2 || kinds[0] != item.Lamp || kinds[1] != item.Boots {
		t.Errorf("unexpected start kinds %v", kinds)
	}
	if s.Attempts() != 3 {
		t.Errorf("expected 3 attempts, got %d", s.Attempts())
	}
	if s.Iterations() != DefaultMaxIterations {
		t.Errorf("expected default iterations, got %d", s.Iterations())
	}
}

func TestParseSettingsDefaults(t *testing.T) {
	s, err := ParseSettings([]byte("version: 1\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Logic != LogicNormal {
		t.Errorf("expected normal logic, got %s", s.Logic)
	}
	if s.RequiredPendants != MaxPendants {
		t.Errorf("expected %d pendants, got %d", MaxPendants, s.RequiredPendants)
	}
}

func TestParseSettingsRejects(t *testing.T) {
	cases := map[string]string{
		"version":       "version: 2\n",
		"logic":         "version: 1\nlogic: glitch_everything\n",
		"pendants":      "version: 1\nrequired_pendants: 4\n",
		"start item":    "version: 1\nstart_items: [jetpack]\n",
		"swordless":     "version: 1\nswordless: true\nstart_items: [sword]\n",
		"plando item":   "version: 1\nplando: {\"Chest\": jetpack}\n",
		"attempts":      "version: 1\nmax_attempts: -1\n",
		"not yaml list": "version: 1\nstart_items: 7\n",
	}
	for name, doc := range cases {
		if _, err := ParseSettings([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	_, err := ParseSettings([]byte("version: 1\nrequired_pendants: 9\n"))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "required_pendants" {
		t.Errorf("expected ValidationError on required_pendants, got %v", err)
	}
}

func TestLoadSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(sampleSettings), 0600); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}
	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Plando["Sanctuary Chest"] != "hookshot" {
		t.Errorf("unexpected plando %v", s.Plando)
	}

	if _, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s, err := ParseSettings([]byte(sampleSettings))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cpy := s.Clone()
	cpy.Seed = 7
	cpy.StartItems[0] = "bow"
	cpy.Plando["Sanctuary Chest"] = "bow"

	if s.Seed != 42 || s.StartItems[0] != "lamp" || s.Plando["Sanctuary Chest"] != "hookshot" {
		t.Error("mutating the clone changed the original")
	}
}

func TestLogicModeOrder(t *testing.T) {
	modes := LogicModes()
	if len(modes) != NumLogicModes {
		t.Fatalf("expected %d modes, got %d", NumLogicModes, len(modes))
	}
	for i := 1; i < len(modes); i++ {
		if modes[i] <= modes[i-1] {
			t.Errorf("modes not strictly ordered at %d", i)
		}
	}
	m, err := ParseLogicMode("Glitch_Hell")
	if err != nil || m != LogicGlitchHell {
		t.Errorf("ParseLogicMode = %v, %v", m, err)
	}
}
