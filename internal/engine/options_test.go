package engine

import (
	"reflect"
	"testing"

	"github.com/slurp-civic/slurp-api/internal/domain"
	"github.com/slurp-civic/slurp-api/internal/taxonomy"
)

func loadTaxonomy(t *testing.T) *taxonomy.Taxonomy {
	t.Helper()
	tax, err := taxonomy.Load()
	if err != nil {
		t.Fatalf("load taxonomy: %v", err)
	}
	return tax
}

func optionRecords() []domain.Rating {
	return []domain.Rating{
		{Governorate: "Tunis", Delegation: "Le Bardo", MacroSector: "Health-Hygiene", MesoSector: "Hospital", IndicatorCategory: "Staff", ActorName: "Hôpital B"},
		{Governorate: "Tunis", Delegation: "La Marsa", MacroSector: "Governance", MesoSector: "Justice", IndicatorCategory: "Facility", ActorName: "Tribunal A"},
		{Governorate: "Béja", Delegation: "Nefza", MacroSector: "Health-Hygiene", MesoSector: "Hospital", IndicatorCategory: "Staff", ActorName: "Hôpital A"},
		{Governorate: "Ariana", Delegation: "Raoued", MacroSector: "Transport-Telco", MesoSector: "Bus", IndicatorCategory: "Programs", ActorName: "Transtu"},
	}
}

func TestAvailableOptionsTopLevelStable(t *testing.T) {
	tax := loadTaxonomy(t)
	records := optionRecords()

	unfiltered := AvailableOptions(records, NewFilterState(), tax)

	narrowed := NewFilterState()
	narrowed.SelectGovernorate("Tunis")
	narrowed.SelectMacroSector("Governance")
	withFilters := AvailableOptions(records, narrowed, tax)

	// Top-level lists never narrow under sibling selections.
	if !reflect.DeepEqual(unfiltered.Governorates.Values, withFilters.Governorates.Values) {
		t.Fatalf("governorate options changed under filters: %v vs %v",
			unfiltered.Governorates.Values, withFilters.Governorates.Values)
	}
	if !reflect.DeepEqual(unfiltered.MacroSectors.Values, withFilters.MacroSectors.Values) {
		t.Fatalf("macro sector options changed under filters")
	}
	if !reflect.DeepEqual(unfiltered.IndicatorCategories.Values, withFilters.IndicatorCategories.Values) {
		t.Fatalf("indicator category options changed under filters")
	}
}

func TestAvailableOptionsGovernorateOrdering(t *testing.T) {
	tax := loadTaxonomy(t)
	got := AvailableOptions(optionRecords(), NewFilterState(), tax)

	want := []string{"Ariana", "Béja", "Tunis"}
	if !reflect.DeepEqual(got.Governorates.Values, want) {
		t.Fatalf("governorates = %v, want %v (diacritic-folded order)", got.Governorates.Values, want)
	}
}

func TestAvailableOptionsDependentsDisabled(t *testing.T) {
	tax := loadTaxonomy(t)
	got := AvailableOptions(optionRecords(), NewFilterState(), tax)

	for name, list := range map[string]OptionList{
		"delegations":     got.Delegations,
		"meso sectors":    got.MesoSectors,
		"indicator types": got.IndicatorTypes,
		"actors":          got.Actors,
	} {
		if list.Enabled {
			t.Fatalf("%s should be disabled while parent is unset", name)
		}
		if len(list.Values) != 0 {
			t.Fatalf("%s should be empty while parent is unset: %v", name, list.Values)
		}
	}
}

func TestAvailableOptionsDelegationsFromFullSet(t *testing.T) {
	tax := loadTaxonomy(t)
	f := NewFilterState()
	f.SelectGovernorate("Tunis")
	// A sibling sector filter must not narrow the delegation choices.
	f.SelectMacroSector("Governance")

	got := AvailableOptions(optionRecords(), f, tax)
	want := []string{"La Marsa", "Le Bardo"}
	if !got.Delegations.Enabled || !reflect.DeepEqual(got.Delegations.Values, want) {
		t.Fatalf("delegations = %+v, want %v enabled", got.Delegations, want)
	}
}

func TestAvailableOptionsTaxonomyAuthoritative(t *testing.T) {
	tax := loadTaxonomy(t)
	f := NewFilterState()
	// No record carries this macro sector; the taxonomy still provides choices.
	f.SelectMacroSector("Food-Finance")
	f.SelectIndicatorCategory("Programs")

	got := AvailableOptions(optionRecords(), f, tax)
	wantMeso := []string{"Banking", "Insurance", "Restaurants", "Retail"}
	if !got.MesoSectors.Enabled || !reflect.DeepEqual(got.MesoSectors.Values, wantMeso) {
		t.Fatalf("meso sectors = %+v, want %v", got.MesoSectors, wantMeso)
	}
	wantTypes := []string{"Diversity", "Pricing"}
	if !got.IndicatorTypes.Enabled || !reflect.DeepEqual(got.IndicatorTypes.Values, wantTypes) {
		t.Fatalf("indicator types = %+v, want %v", got.IndicatorTypes, wantTypes)
	}
}

func TestAvailableOptionsActorsPerMesoSector(t *testing.T) {
	tax := loadTaxonomy(t)
	f := NewFilterState()
	f.SelectMacroSector("Health-Hygiene")
	f.SelectMesoSector("Hospital")

	got := AvailableOptions(optionRecords(), f, tax)
	want := []string{"Hôpital A", "Hôpital B"}
	if !got.Actors.Enabled || !reflect.DeepEqual(got.Actors.Values, want) {
		t.Fatalf("actors = %+v, want %v", got.Actors, want)
	}
}

func TestAvailableOptionsDeduplicates(t *testing.T) {
	tax := loadTaxonomy(t)
	records := append(optionRecords(), optionRecords()...)

	got := AvailableOptions(records, NewFilterState(), tax)
	if len(got.Governorates.Values) != 3 {
		t.Fatalf("governorates not deduplicated: %v", got.Governorates.Values)
	}
}
