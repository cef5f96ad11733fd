// Package taxonomy exposes the fixed macro-sector → meso-sector and
// indicator-category → indicator-type reference data consulted by the filter
// and option logic. The data ships embedded in the binary and is immutable
// for the lifetime of the process.
package taxonomy

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed sectors.yaml
var sectorsYAML []byte

// Taxonomy holds both two-level reference hierarchies.
type Taxonomy struct {
	MacroSectors map[string][]string `yaml:"macroSectors"`
	Indicators   map[string][]string `yaml:"indicators"`
}

// Load parses the embedded taxonomy file.
func Load() (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(sectorsYAML, &t); err != nil {
		return nil, fmt.Errorf("parse sectors taxonomy: %w", err)
	}
	if len(t.MacroSectors) == 0 || len(t.Indicators) == 0 {
		return nil, fmt.Errorf("sectors taxonomy is incomplete")
	}
	return &t, nil
}

// MacroSectorNames returns all macro-sector names in lexicographic order.
func (t *Taxonomy) MacroSectorNames() []string {
	return sortedKeys(t.MacroSectors)
}

// IndicatorCategories returns all indicator-category names in lexicographic order.
func (t *Taxonomy) IndicatorCategories() []string {
	return sortedKeys(t.Indicators)
}

// MesoSectors returns the meso-sectors under a macro-sector, sorted. The
// result is empty for an unknown parent; the taxonomy is authoritative even
// for parents with zero matching rating records.
func (t *Taxonomy) MesoSectors(macroSector string) []string {
	return sortedValues(t.MacroSectors[macroSector])
}

// IndicatorTypes returns the indicator types under a category, sorted.
func (t *Taxonomy) IndicatorTypes(category string) []string {
	return sortedValues(t.Indicators[category])
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedValues(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}
