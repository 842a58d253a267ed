// Package catalog holds the static exercise metadata: category groupings,
// per-exercise scoring flags, and the cardio MET table. The catalog is
// read-only after load; a missing name is a data-integrity error, not a
// retryable condition.
package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/claude/ironpath/internal/models"
	"gopkg.in/yaml.v3"
)

var (
	ErrExerciseNotFound = errors.New("exercise not found in catalog")
	ErrCategoryNotFound = errors.New("category not found in catalog")
)

// FallbackCardioMET is used when an exercise/intensity combination is absent
// from the MET table. Roughly moderate cardio.
const FallbackCardioMET = 6

// Exercise is one exercise definition with its scoring flags.
type Exercise struct {
	Name string      `yaml:"name" json:"name"`
	Kind models.Kind `yaml:"kind" json:"kind"`
	// OptionalWeight allows added external weight on a bodyweight exercise.
	OptionalWeight bool `yaml:"optional_weight" json:"optionalWeight,omitempty"`
	// DoubleWeight doubles the entered weight (dual-dumbbell movements).
	DoubleWeight bool `yaml:"double_weight" json:"doubleWeight,omitempty"`
	// RequiresWeight makes a positive input weight mandatory.
	RequiresWeight bool `yaml:"requires_weight" json:"requiresWeight,omitempty"`
	// MachineAssisted marks machine exercises where the stack setting is
	// optional input.
	MachineAssisted bool `yaml:"machine_assisted" json:"machineAssisted,omitempty"`
	// Unilateral marks one-side-at-a-time movements; more of the lifter's own
	// body weight contributes per rep.
	Unilateral bool `yaml:"unilateral" json:"unilateral,omitempty"`
}

// LoadMultiplier is the factor applied to the entered weight: 2 for
// dual-implement movements, 1 otherwise.
func (e Exercise) LoadMultiplier() int {
	if e.DoubleWeight {
		return 2
	}
	return 1
}

// Category is a muscle-group (or cardio) grouping of exercises.
type Category struct {
	Key       string     `yaml:"key" json:"key"`
	Name      string     `yaml:"name" json:"name"`
	Exercises []Exercise `yaml:"exercises" json:"exercises"`
}

type catalogFile struct {
	Categories []Category                    `yaml:"categories"`
	CardioMET  map[string]map[string]float64 `yaml:"cardio_met"`
}

// Catalog is the loaded, validated exercise catalog.
type Catalog struct {
	categories []Category
	byName     map[string]Exercise
	cardioMET  map[string]map[string]float64
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}
	return c, nil
}

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		// The embedded catalog is validated by tests; failing to parse it is
		// a build defect.
		panic(fmt.Sprintf("embedded catalog invalid: %v", err))
	}
	return c
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding catalog YAML: %w", err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("catalog has no categories")
	}

	byName := make(map[string]Exercise)
	for _, cat := range f.Categories {
		if cat.Key == "" {
			return nil, fmt.Errorf("category %q has empty key", cat.Name)
		}
		for _, ex := range cat.Exercises {
			if ex.Name == "" {
				return nil, fmt.Errorf("category %q contains an unnamed exercise", cat.Key)
			}
			if !ex.Kind.Valid() {
				return nil, fmt.Errorf("exercise %q has unknown kind %q", ex.Name, ex.Kind)
			}
			if _, dup := byName[ex.Name]; dup {
				return nil, fmt.Errorf("duplicate exercise name %q", ex.Name)
			}
			byName[ex.Name] = ex
		}
	}

	met := f.CardioMET
	if met == nil {
		met = map[string]map[string]float64{}
	}

	return &Catalog{categories: f.Categories, byName: byName, cardioMET: met}, nil
}

// Categories returns all categories in declaration order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Category returns the category with the given key.
func (c *Catalog) Category(key string) (Category, error) {
	for _, cat := range c.categories {
		if cat.Key == key {
			return cat, nil
		}
	}
	return Category{}, fmt.Errorf("category %q: %w", key, ErrCategoryNotFound)
}

// Exercise looks up an exercise by its unique name.
func (c *Catalog) Exercise(name string) (Exercise, error) {
	ex, ok := c.byName[name]
	if !ok {
		return Exercise{}, fmt.Errorf("exercise %q: %w", name, ErrExerciseNotFound)
	}
	return ex, nil
}

// CardioMET returns the MET value for a cardio exercise at the given
// intensity, falling back to FallbackCardioMET when the combination is absent.
func (c *Catalog) CardioMET(name, intensity string) float64 {
	if table, ok := c.cardioMET[name]; ok {
		if met, ok := table[intensity]; ok {
			return met
		}
	}
	return FallbackCardioMET
}
