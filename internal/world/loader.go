package world

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/AaronLay10/SeedEngine/internal/events"
	"github.com/AaronLay10/SeedEngine/internal/item"
	"github.com/AaronLay10/SeedEngine/internal/logic"
)

// File is one YAML world fragment. Fragments are merged in path order;
// exactly one of them sets start and goal.
type File struct {
	Version   int            `yaml:"version"`
	Start     Location       `yaml:"start,omitempty"`
	Goal      Location       `yaml:"goal,omitempty"`
	Locations []LocationFile `yaml:"locations"`
	Pool      map[string]int `yaml:"pool,omitempty"`
}

type LocationFile struct {
	Name   Location    `yaml:"name"`
	Checks []CheckFile `yaml:"checks,omitempty"`
	Paths  []PathFile  `yaml:"paths,omitempty"`
}

type CheckFile struct {
	Name   string     `yaml:"name"`
	Logic  logic.Spec `yaml:"logic,omitempty"`
	Quest  string     `yaml:"quest,omitempty"`
	Region string     `yaml:"region,omitempty"`
	Flag   uint16     `yaml:"flag,omitempty"`
}

type PathFile struct {
	To    Location   `yaml:"to"`
	Logic logic.Spec `yaml:"logic,omitempty"`
}

// Definition is a loaded world: the graph plus the item pool it ships with.
type Definition struct {
	Graph *Graph
	Pool  map[item.Kind]int
}

// LoadFiles reads every file in fsys matching pattern (doublestar syntax,
// e.g. "worlds/**/*.yaml") and builds one graph from them.
func LoadFiles(fsys fs.FS, pattern string) (*Definition, error) {
	paths, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob world files: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no world files match %q", pattern)
	}
	sort.Strings(paths)

	files := make([]*File, 0, len(paths))
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read world file: %w", err)
		}
		f, err := ParseFile(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		files = append(files, f)
	}

	def, err := Compile(files...)
	if err != nil {
		events.Emit(events.LevelError, "graph.failed", "", map[string]interface{}{
			"pattern": pattern,
			"error":   err.Error(),
		})
		return nil, err
	}
	events.Emit(events.LevelInfo, "graph.loaded", "", map[string]interface{}{
		"files":     len(paths),
		"locations": len(def.Graph.Locations()),
		"checks":    def.Graph.NumChecks(),
	})
	return def, nil
}

// ParseFile decodes a single fragment without building it.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse world YAML: %w", err)
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported world file version: %d", f.Version)
	}
	return &f, nil
}

// Compile merges fragments and builds the graph and pool.
func Compile(files ...*File) (*Definition, error) {
	var start, goal Location
	b := NewBuilder()
	pool := make(map[item.Kind]int)
	var errs []error

	for _, f := range files {
		if f.Start != "" {
			if start != "" && start != f.Start {
				errs = append(errs, fmt.Errorf("conflicting start locations %q and %q", start, f.Start))
			}
			start = f.Start
		}
		if f.Goal != "" {
			if goal != "" && goal != f.Goal {
				errs = append(errs, fmt.Errorf("conflicting goal locations %q and %q", goal, f.Goal))
			}
			goal = f.Goal
		}

		for _, lf := range f.Locations {
			checks, paths, err := compileLocation(lf)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			b.Add(lf.Name, checks, paths)
		}

		for name, n := range f.Pool {
			k, err := item.ParseKind(name)
			if err != nil {
				errs = append(errs, fmt.Errorf("pool: %w", err))
				continue
			}
			if n < 0 {
				errs = append(errs, fmt.Errorf("pool: negative count %d for %s", n, name))
				continue
			}
			pool[k] += n
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	g, err := b.Build(start, goal)
	if err != nil {
		return nil, err
	}
	return &Definition{Graph: g, Pool: pool}, nil
}

func compileLocation(lf LocationFile) ([]CheckDef, []Path, error) {
	var errs []error
	checks := make([]CheckDef, 0, len(lf.Checks))
	for _, cf := range lf.Checks {
		l, err := cf.Logic.Compile()
		if err != nil {
			errs = append(errs, &ConstructionError{Kind: err, Location: lf.Name, Check: cf.Name})
			continue
		}
		if cf.Quest != "" {
			r, err := item.Parse(cf.Quest)
			if err != nil {
				errs = append(errs, &ConstructionError{Kind: err, Location: lf.Name, Check: cf.Name})
				continue
			}
			checks = append(checks, QuestCheck(cf.Name, l, r))
			continue
		}
		region := cf.Region
		if region == "" {
			region = string(lf.Name)
		}
		checks = append(checks, NewCheck(cf.Name, l, LocationInfo{Region: region, Flag: cf.Flag}))
	}

	paths := make([]Path, 0, len(lf.Paths))
	for _, pf := range lf.Paths {
		l, err := pf.Logic.Compile()
		if err != nil {
			errs = append(errs, &ConstructionError{Kind: err, Location: lf.Name, Detail: fmt.Sprintf("path to %q", pf.To)})
			continue
		}
		paths = append(paths, Edge(pf.To, l))
	}

	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}
	return checks, paths, nil
}
