package httpserver

import (
	"net/url"
	"testing"
)

func FuzzBuildFilterState(f *testing.F) {
	seeds := []string{
		"governorate=Tunis&timeRange=LAST_WEEK",
		"minRating=abc",
		"minRating=4&maxRating=2",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}
		_, _ = buildFilterState(values)
	})
}
