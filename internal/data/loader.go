package data

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_tables.yaml
var defaultTables []byte

// tablesFile is the on-disk layout of a data tables file.
type tablesFile struct {
	Abilities     []AbilityStatic `yaml:"abilities"`
	Units         []UnitStatic    `yaml:"units"`
	Montages      []Montage       `yaml:"montages"`
	AnimationSets []AnimationSet  `yaml:"animation_sets"`
}

// Tables groups every data table the gameplay code reads.
type Tables struct {
	Abilities     *Table[AbilityStatic]
	Units         *Table[UnitStatic]
	Montages      *Table[Montage]
	AnimationSets *Table[AnimationSet]
}

// LoadDefaultTables parses the tables embedded in the binary.
func LoadDefaultTables() (*Tables, error) {
	t, err := ParseTables(defaultTables)
	if err != nil {
		return nil, fmt.Errorf("loading default tables: %w", err)
	}
	return t, nil
}

// LoadTables reads tables from path. An empty path loads the embedded defaults.
func LoadTables(path string) (*Tables, error) {
	if path == "" {
		return LoadDefaultTables()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tables %s: %w", path, err)
	}
	t, err := ParseTables(raw)
	if err != nil {
		return nil, fmt.Errorf("loading tables %s: %w", path, err)
	}
	return t, nil
}

// ParseTables builds tables from YAML.
func ParseTables(raw []byte) (*Tables, error) {
	f, err := decodeTables(raw)
	if err != nil {
		return nil, err
	}

	t := &Tables{}
	if t.Abilities, err = NewTable("abilities", f.Abilities); err != nil {
		return nil, err
	}
	if t.Units, err = NewTable("units", f.Units); err != nil {
		return nil, err
	}
	if t.Montages, err = NewTable("montages", f.Montages); err != nil {
		return nil, err
	}
	if t.AnimationSets, err = NewTable("animation_sets", f.AnimationSets); err != nil {
		return nil, err
	}

	slog.Info("loaded data tables",
		"abilities", t.Abilities.Len(),
		"units", t.Units.Len(),
		"montages", t.Montages.Len(),
		"animation_sets", t.AnimationSets.Len())
	return t, nil
}

// Reload replaces every table from path and notifies subscribers of each table.
// Nothing is replaced when the file fails to parse.
func (t *Tables) Reload(path string) error {
	var raw []byte
	if path == "" {
		raw = defaultTables
	} else {
		var err error
		if raw, err = os.ReadFile(path); err != nil {
			return fmt.Errorf("reading tables %s: %w", path, err)
		}
	}

	f, err := decodeTables(raw)
	if err != nil {
		return fmt.Errorf("reloading tables: %w", err)
	}

	// Validate everything first so a bad file leaves all tables untouched.
	if _, err := NewTable("abilities", f.Abilities); err != nil {
		return err
	}
	if _, err := NewTable("units", f.Units); err != nil {
		return err
	}
	if _, err := NewTable("montages", f.Montages); err != nil {
		return err
	}
	if _, err := NewTable("animation_sets", f.AnimationSets); err != nil {
		return err
	}

	if err := t.Abilities.Replace(f.Abilities); err != nil {
		return err
	}
	if err := t.Units.Replace(f.Units); err != nil {
		return err
	}
	if err := t.Montages.Replace(f.Montages); err != nil {
		return err
	}
	if err := t.AnimationSets.Replace(f.AnimationSets); err != nil {
		return err
	}

	slog.Info("reloaded data tables", "path", path)
	return nil
}

func decodeTables(raw []byte) (*tablesFile, error) {
	var f tablesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing tables: %w", err)
	}
	return &f, nil
}
