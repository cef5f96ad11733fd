package taxonomy

import (
	"sort"
	"testing"
)

func TestLoad(t *testing.T) {
	tax, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if len(tax.MacroSectors) != 7 {
		t.Fatalf("macro sectors = %d, want 7", len(tax.MacroSectors))
	}
	if len(tax.Indicators) != 3 {
		t.Fatalf("indicator categories = %d, want 3", len(tax.Indicators))
	}
}

func TestMesoSectors(t *testing.T) {
	tax, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	meso := tax.MesoSectors("Governance")
	want := []string{"Government", "Justice", "Parliament"}
	if len(meso) != len(want) {
		t.Fatalf("MesoSectors(Governance) = %v, want %v", meso, want)
	}
	for i := range want {
		if meso[i] != want[i] {
			t.Fatalf("MesoSectors(Governance) = %v, want %v", meso, want)
		}
	}

	if got := tax.MesoSectors("Nope"); len(got) != 0 {
		t.Fatalf("MesoSectors(Nope) = %v, want empty", got)
	}
}

func TestIndicatorTypes(t *testing.T) {
	tax, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	types := tax.IndicatorTypes("Staff")
	if len(types) != 2 || types[0] != "Courtesy" || types[1] != "Efficiency" {
		t.Fatalf("IndicatorTypes(Staff) = %v", types)
	}
}

func TestNamesAreSorted(t *testing.T) {
	tax, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	names := tax.MacroSectorNames()
	if !sort.StringsAreSorted(names) {
		t.Fatalf("MacroSectorNames() not sorted: %v", names)
	}
	cats := tax.IndicatorCategories()
	if !sort.StringsAreSorted(cats) {
		t.Fatalf("IndicatorCategories() not sorted: %v", cats)
	}
}
