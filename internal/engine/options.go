package engine

import (
	"sort"

	"github.com/slurp-civic/slurp-api/internal/domain"
	"github.com/slurp-civic/slurp-api/internal/taxonomy"
)

// OptionList is the set of valid choices for one filter dimension. Enabled
// is false while the dimension's parent is unset; the presentation layer must
// disable the control in that case.
type OptionList struct {
	Values  []string
	Enabled bool
}

// OptionSet carries the valid choices for all seven dimensions under the
// current filter state. Lists are deduplicated and lexicographically sorted.
type OptionSet struct {
	Governorates        OptionList
	Delegations         OptionList
	MacroSectors        OptionList
	MesoSectors         OptionList
	IndicatorCategories OptionList
	IndicatorTypes      OptionList
	Actors              OptionList
}

// AvailableOptions resolves the option lists for the current filter state.
//
// Top-level dimensions (governorate, macro-sector, indicator category) come
// from the full unfiltered snapshot so their choices stay stable regardless
// of sibling selections. Delegation and actor options come from the records
// under the selected parent, again from the full snapshot. Meso-sector and
// indicator-type options come from the static taxonomy keyed by the parent
// selection.
func AvailableOptions(records []domain.Rating, f FilterState, tax *taxonomy.Taxonomy) OptionSet {
	set := OptionSet{
		Governorates:        OptionList{Values: distinctValues(records, domain.DimGovernorate, nil), Enabled: true},
		MacroSectors:        OptionList{Values: distinctValues(records, domain.DimMacroSector, nil), Enabled: true},
		IndicatorCategories: OptionList{Values: distinctValues(records, domain.DimIndicatorCategory, nil), Enabled: true},
	}
	sortFolded(set.Governorates.Values)

	if f.Governorate != "" {
		set.Delegations = OptionList{
			Values: distinctValues(records, domain.DimDelegation, func(r domain.Rating) bool {
				return r.Governorate == f.Governorate
			}),
			Enabled: true,
		}
	}
	if f.MacroSector != "" {
		set.MesoSectors = OptionList{Values: tax.MesoSectors(f.MacroSector), Enabled: true}
	}
	if f.IndicatorCategory != "" {
		set.IndicatorTypes = OptionList{Values: tax.IndicatorTypes(f.IndicatorCategory), Enabled: true}
	}
	if f.MesoSector != "" {
		set.Actors = OptionList{
			Values: distinctValues(records, domain.DimActorName, func(r domain.Rating) bool {
				return r.MesoSector == f.MesoSector
			}),
			Enabled: true,
		}
	}
	return set
}

// distinctValues collects the sorted distinct non-empty values of a dimension
// across records passing the keep predicate (nil keeps everything).
func distinctValues(records []domain.Rating, dim domain.Dimension, keep func(domain.Rating) bool) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if keep != nil && !keep(r) {
			continue
		}
		if v := r.Value(dim); v != "" {
			seen[v] = struct{}{}
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
