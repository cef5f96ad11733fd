package views

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/slurp-civic/slurp-api/internal/domain"
	"github.com/slurp-civic/slurp-api/internal/engine"
	"github.com/slurp-civic/slurp-api/internal/taxonomy"
)

type fakeSource struct {
	ratings []domain.Rating
	profile *domain.UserProfile
	err     error
}

func (f *fakeSource) FetchAll(ctx context.Context) ([]domain.Rating, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ratings, nil
}

func (f *fakeSource) ListByUser(ctx context.Context, userID string) ([]domain.Rating, error) {
	if f.err != nil {
		return nil, f.err
	}
	var own []domain.Rating
	for _, r := range f.ratings {
		if r.UserID == userID {
			own = append(own, r)
		}
	}
	return own, nil
}

func (f *fakeSource) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func newTestAssembler(t *testing.T, src *fakeSource) *Assembler {
	t.Helper()
	tax, err := taxonomy.Load()
	if err != nil {
		t.Fatalf("load taxonomy: %v", err)
	}
	a := NewAssembler(src, src, tax)
	a.now = func() time.Time {
		return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	}
	return a
}

func seedRatings() []domain.Rating {
	base := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	return []domain.Rating{
		{ID: "r1", UserID: "u1", ActorName: "Hôpital A", Governorate: "Tunis", Delegation: "Le Bardo", MacroSector: "Health-Hygiene", MesoSector: "Hospital", IndicatorCategory: "Staff", Rating: 4, SubmittedAt: base},
		{ID: "r2", UserID: "u1", ActorName: "Transtu", Governorate: "Tunis", Delegation: "La Marsa", MacroSector: "Transport-Telco", MesoSector: "Bus", IndicatorCategory: "Programs", Rating: 2, SubmittedAt: base.AddDate(0, 0, 1)},
		{ID: "r3", UserID: "u2", ActorName: "Hôpital B", Governorate: "Béja", Delegation: "Nefza", MacroSector: "Health-Hygiene", MesoSector: "Hospital", IndicatorCategory: "Facility", Rating: 3, SubmittedAt: base.AddDate(0, 0, 2)},
	}
}

func TestGlobalSummary(t *testing.T) {
	a := newTestAssembler(t, &fakeSource{ratings: seedRatings()})

	summary, err := a.GlobalSummary(context.Background())
	if err != nil {
		t.Fatalf("GlobalSummary: %v", err)
	}

	if summary.GlobalAverage != 3 {
		t.Fatalf("GlobalAverage = %v, want 3", summary.GlobalAverage)
	}
	if len(summary.TerritoryAverages) != 2 || summary.TerritoryAverages[0].Name != "Béja" {
		t.Fatalf("TerritoryAverages = %v, want Béja first", summary.TerritoryAverages)
	}
	if len(summary.TopActors) != 3 {
		t.Fatalf("TopActors = %v", summary.TopActors)
	}
	if summary.TopActors[0].Name != "Hôpital A" {
		t.Fatalf("top actor = %q, want Hôpital A", summary.TopActors[0].Name)
	}
	if len(summary.RecentRatings) != 3 || summary.RecentRatings[0].ID != "r3" {
		t.Fatalf("RecentRatings = %v, want r3 first", summary.RecentRatings)
	}
}

func TestGlobalSummaryEmptySnapshot(t *testing.T) {
	a := newTestAssembler(t, &fakeSource{})

	summary, err := a.GlobalSummary(context.Background())
	if err != nil {
		t.Fatalf("GlobalSummary: %v", err)
	}
	if summary.GlobalAverage != 0 {
		t.Fatalf("GlobalAverage = %v, want 0 sentinel", summary.GlobalAverage)
	}
	if len(summary.TerritoryAverages) != 0 || len(summary.TopActors) != 0 {
		t.Fatalf("empty snapshot should yield empty views: %+v", summary)
	}
}

func TestFilteredView(t *testing.T) {
	a := newTestAssembler(t, &fakeSource{ratings: seedRatings()})

	f := engine.NewFilterState()
	f.SelectGovernorate("Tunis")

	view, err := a.FilteredView(context.Background(), f)
	if err != nil {
		t.Fatalf("FilteredView: %v", err)
	}

	if len(view.FilteredRatings) != 2 {
		t.Fatalf("FilteredRatings = %v", view.FilteredRatings)
	}
	if view.MapData["Tunis"] != 3 {
		t.Fatalf("MapData = %v", view.MapData)
	}
	if _, ok := view.MapData["Béja"]; ok {
		t.Fatalf("filtered map data should not include Béja: %v", view.MapData)
	}
	// Option lists stay derived from the full snapshot.
	if len(view.Options.Governorates.Values) != 2 {
		t.Fatalf("governorate options = %v", view.Options.Governorates.Values)
	}
	if !view.Options.Delegations.Enabled || len(view.Options.Delegations.Values) != 2 {
		t.Fatalf("delegation options = %+v", view.Options.Delegations)
	}
}

func TestFilteredViewTransportError(t *testing.T) {
	wantErr := errors.New("source unreachable")
	a := newTestAssembler(t, &fakeSource{err: wantErr})

	_, err := a.FilteredView(context.Background(), engine.NewFilterState())
	if !errors.Is(err, wantErr) {
		t.Fatalf("FilteredView error = %v, want %v propagated verbatim", err, wantErr)
	}
}

func TestUserSummary(t *testing.T) {
	src := &fakeSource{
		ratings: seedRatings(),
		profile: &domain.UserProfile{
			UserID:          "u1",
			Email:           "citizen@example.tn",
			DisplayName:     "Citizen",
			LastActive:      time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
			IsEmailVerified: true,
		},
	}
	a := newTestAssembler(t, src)

	summary, err := a.UserSummary(context.Background(), "u1")
	if err != nil {
		t.Fatalf("UserSummary: %v", err)
	}
	if summary.TotalRatings != 2 || summary.AverageRating != 3 {
		t.Fatalf("stats = %d/%v", summary.TotalRatings, summary.AverageRating)
	}
	if summary.BestActor != "Hôpital A" || summary.WorstActor != "Transtu" {
		t.Fatalf("best/worst = %q/%q", summary.BestActor, summary.WorstActor)
	}
	if summary.Email != "citizen@example.tn" || !summary.IsEmailVerified {
		t.Fatalf("profile fields missing: %+v", summary)
	}
	if len(summary.Ratings) != 2 || summary.Ratings[0].ID != "r2" {
		t.Fatalf("Ratings = %v, want newest first", summary.Ratings)
	}
}

func TestUserSummaryWithoutProfile(t *testing.T) {
	a := newTestAssembler(t, &fakeSource{ratings: seedRatings()})

	summary, err := a.UserSummary(context.Background(), "u9")
	if err != nil {
		t.Fatalf("UserSummary: %v", err)
	}
	if summary.TotalRatings != 0 || summary.AverageRating != 0 {
		t.Fatalf("zero-record sentinels violated: %+v", summary)
	}
	if summary.BestActor != "" || summary.WorstActor != "" {
		t.Fatalf("best/worst should be empty: %+v", summary)
	}
	if summary.Email != "" {
		t.Fatalf("missing profile should leave identity fields empty")
	}
}
