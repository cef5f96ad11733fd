package engine

import (
	"sort"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/slurp-civic/slurp-api/internal/domain"
)

// UnknownKey groups records whose dimension value is empty.
const UnknownKey = "Unknown"

const (
	defaultTopActorsLimit     = 3
	defaultRecentRatingsLimit = 10
)

// canonicalSectorOrder is the fixed display order for macro-sector averages
// on the dashboard. Sectors outside the list follow in sorted order.
var canonicalSectorOrder = []string{
	"Governance",
	"Security-Defense",
	"Health-Hygiene",
	"Instruction-Culture",
	"Food-Finance",
	"Housing-Tourism",
	"Transport-Telco",
}

// GlobalAverage returns the mean of all rating values, or 0 for an empty
// snapshot. The zero is a defined sentinel, not an error.
func GlobalAverage(records []domain.Rating) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.Rating
	}
	return sum / float64(len(records))
}

// AverageByDimension groups records by the named dimension and returns the
// mean rating per group. Empty field values land under UnknownKey. An empty
// input yields an empty map.
func AverageByDimension(records []domain.Rating, dim domain.Dimension) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range records {
		key := r.Value(dim)
		if key == "" {
			key = UnknownKey
		}
		sums[key] += r.Rating
		counts[key]++
	}
	averages := make(map[string]float64, len(sums))
	for key, sum := range sums {
		averages[key] = sum / float64(counts[key])
	}
	return averages
}

// ActorAverage is one actor's mean rating.
type ActorAverage struct {
	Name    string
	Average float64
}

// TopActors returns up to limit actors ranked by mean rating, highest first.
// Ties break by ascending actor name so the ranking is deterministic. A
// non-positive limit applies the default of 3.
func TopActors(records []domain.Rating, limit int) []ActorAverage {
	if limit <= 0 {
		limit = defaultTopActorsLimit
	}
	averages := AverageByDimension(records, domain.DimActorName)
	ranked := make([]ActorAverage, 0, len(averages))
	for name, avg := range averages {
		ranked = append(ranked, ActorAverage{Name: name, Average: avg})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Average != ranked[j].Average {
			return ranked[i].Average > ranked[j].Average
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// RecentRatings returns up to limit records ordered newest first, ties broken
// by ascending id. The input is not modified. A non-positive limit applies
// the default of 10.
func RecentRatings(records []domain.Rating, limit int) []domain.Rating {
	if limit <= 0 {
		limit = defaultRecentRatingsLimit
	}
	recent := make([]domain.Rating, len(records))
	copy(recent, records)
	sort.Slice(recent, func(i, j int) bool {
		if !recent[i].SubmittedAt.Equal(recent[j].SubmittedAt) {
			return recent[i].SubmittedAt.After(recent[j].SubmittedAt)
		}
		return recent[i].ID < recent[j].ID
	})
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}

// UserStatistics summarizes one user's rating activity.
type UserStatistics struct {
	TotalRatings   int
	Average        float64
	BestActor      string
	WorstActor     string
	SectorAverages map[string]float64
}

// StatisticsForUser computes the statistics over the user's own records.
// A user with zero records gets the zero sentinels: average 0, empty actor
// names, empty sector map.
func StatisticsForUser(records []domain.Rating, userID string) UserStatistics {
	var own []domain.Rating
	for _, r := range records {
		if r.UserID == userID {
			own = append(own, r)
		}
	}

	stats := UserStatistics{
		TotalRatings:   len(own),
		Average:        GlobalAverage(own),
		SectorAverages: AverageByDimension(own, domain.DimMacroSector),
	}
	if len(own) == 0 {
		return stats
	}

	byActor := AverageByDimension(own, domain.DimActorName)
	names := make([]string, 0, len(byActor))
	for name := range byActor {
		names = append(names, name)
	}
	// Sorted walk keeps best/worst deterministic when means tie.
	sort.Strings(names)
	best, worst := names[0], names[0]
	for _, name := range names[1:] {
		if byActor[name] > byActor[best] {
			best = name
		}
		if byActor[name] < byActor[worst] {
			worst = name
		}
	}
	stats.BestActor = best
	stats.WorstActor = worst
	return stats
}

// DimensionAverage is one named group's mean rating, for ordered display.
type DimensionAverage struct {
	Name    string
	Average float64
}

// OrderedSectors arranges macro-sector averages into the canonical dashboard
// order. Sectors absent from the canonical list are appended afterwards in
// natural sorted order.
func OrderedSectors(averages map[string]float64) []DimensionAverage {
	ordered := make([]DimensionAverage, 0, len(averages))
	listed := make(map[string]struct{}, len(canonicalSectorOrder))
	for _, name := range canonicalSectorOrder {
		listed[name] = struct{}{}
		if avg, ok := averages[name]; ok {
			ordered = append(ordered, DimensionAverage{Name: name, Average: avg})
		}
	}

	var rest []string
	for name := range averages {
		if _, ok := listed[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		ordered = append(ordered, DimensionAverage{Name: name, Average: averages[name]})
	}
	return ordered
}

// OrderedGovernorates arranges governorate averages lexicographically over
// diacritic-stripped keys, so e.g. "Béja" sorts as "Beja" no matter which
// encoding variant of the name the dataset carries.
func OrderedGovernorates(averages map[string]float64) []DimensionAverage {
	names := make([]string, 0, len(averages))
	for name := range averages {
		names = append(names, name)
	}
	sortFolded(names)

	ordered := make([]DimensionAverage, 0, len(names))
	for _, name := range names {
		ordered = append(ordered, DimensionAverage{Name: name, Average: averages[name]})
	}
	return ordered
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldKey strips combining marks so accented and plain spellings of the same
// name order identically.
func foldKey(s string) string {
	folded, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return folded
}

// sortFolded sorts names lexicographically by their fold keys, falling back
// to the raw string so distinct names never compare equal.
func sortFolded(names []string) {
	sort.Slice(names, func(i, j int) bool {
		ki, kj := foldKey(names[i]), foldKey(names[j])
		if ki != kj {
			return ki < kj
		}
		return names[i] < names[j]
	})
}
