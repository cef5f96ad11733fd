// Package views assembles engine outputs into screen-shaped payloads for the
// dashboard, exploration, and profile surfaces. Assemblers are thin: each
// request re-fetches a full snapshot from the record source and recomputes
// every derived value; there is no incremental update and no cached state.
package views

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/slurp-civic/slurp-api/internal/domain"
	"github.com/slurp-civic/slurp-api/internal/engine"
	"github.com/slurp-civic/slurp-api/internal/taxonomy"
)

// RecordSource supplies materialized rating snapshots. Failures propagate to
// the caller untouched so the presentation layer can surface a retryable
// "failed to load" state; no stale aggregate is substituted.
type RecordSource interface {
	FetchAll(ctx context.Context) ([]domain.Rating, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Rating, error)
}

// ProfileSource supplies the per-user projection. A nil profile with nil
// error means no projection exists yet.
type ProfileSource interface {
	GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error)
}

// Assembler builds the per-screen payloads.
type Assembler struct {
	records  RecordSource
	profiles ProfileSource
	tax      *taxonomy.Taxonomy
	now      func() time.Time
}

// NewAssembler constructs an Assembler over the given collaborators.
func NewAssembler(records RecordSource, profiles ProfileSource, tax *taxonomy.Taxonomy) *Assembler {
	return &Assembler{
		records:  records,
		profiles: profiles,
		tax:      tax,
		now:      time.Now,
	}
}

// DashboardSummary is the global summary screen payload.
type DashboardSummary struct {
	GlobalAverage     float64
	TerritoryAverages []engine.DimensionAverage
	SectorAverages    []engine.DimensionAverage
	IndicatorAverages map[string]float64
	TopActors         []engine.ActorAverage
	RecentRatings     []domain.Rating
}

// GlobalSummary computes the dashboard payload over a fresh snapshot.
func (a *Assembler) GlobalSummary(ctx context.Context) (DashboardSummary, error) {
	records, err := a.records.FetchAll(ctx)
	if err != nil {
		return DashboardSummary{}, err
	}

	return DashboardSummary{
		GlobalAverage:     engine.GlobalAverage(records),
		TerritoryAverages: engine.OrderedGovernorates(engine.AverageByDimension(records, domain.DimGovernorate)),
		SectorAverages:    engine.OrderedSectors(engine.AverageByDimension(records, domain.DimMacroSector)),
		IndicatorAverages: engine.AverageByDimension(records, domain.DimIndicatorCategory),
		TopActors:         engine.TopActors(records, 0),
		RecentRatings:     engine.RecentRatings(records, 0),
	}, nil
}

// DimensionBreakdown returns the per-group averages for one dimension.
func (a *Assembler) DimensionBreakdown(ctx context.Context, dim domain.Dimension) (map[string]float64, error) {
	records, err := a.records.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return engine.AverageByDimension(records, dim), nil
}

// TopActors returns up to limit actors ranked by mean rating.
func (a *Assembler) TopActors(ctx context.Context, limit int) ([]engine.ActorAverage, error) {
	records, err := a.records.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return engine.TopActors(records, limit), nil
}

// RecentRatings returns up to limit of the newest ratings.
func (a *Assembler) RecentRatings(ctx context.Context, limit int) ([]domain.Rating, error) {
	records, err := a.records.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return engine.RecentRatings(records, limit), nil
}

// ExploreView is the exploration screen payload: option lists plus the
// statistics over the filtered subset.
type ExploreView struct {
	Options            engine.OptionSet
	DelegationAverages map[string]float64
	MapData            map[string]float64
	FilteredRatings    []domain.Rating
}

// FilteredView recomputes the whole exploration view for a filter state.
// Option lists derive from the full snapshot; averages and the record list
// derive from the filtered subset.
func (a *Assembler) FilteredView(ctx context.Context, f engine.FilterState) (ExploreView, error) {
	records, err := a.records.FetchAll(ctx)
	if err != nil {
		return ExploreView{}, err
	}

	filtered := engine.Apply(records, f, a.now())
	return ExploreView{
		Options:            engine.AvailableOptions(records, f, a.tax),
		DelegationAverages: engine.AverageByDimension(filtered, domain.DimDelegation),
		MapData:            engine.AverageByDimension(filtered, domain.DimGovernorate),
		FilteredRatings:    filtered,
	}, nil
}

// ProfileSummary is the profile screen payload, assembled from the user's
// own ratings plus the stored projection when one exists.
type ProfileSummary struct {
	UserID          string
	Email           string
	DisplayName     string
	MemberSince     time.Time
	IsEmailVerified bool
	TotalRatings    int
	AverageRating   float64
	BestActor       string
	WorstActor      string
	SectorAverages  map[string]float64
	Ratings         []domain.Rating
}

// UserSummary assembles the profile view. The projection and the user's
// ratings load concurrently; statistics always come from the ratings, the
// projection only contributes identity fields.
func (a *Assembler) UserSummary(ctx context.Context, userID string) (ProfileSummary, error) {
	var (
		profile *domain.UserProfile
		own     []domain.Rating
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = a.profiles.GetByUserID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		own, err = a.records.ListByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return ProfileSummary{}, err
	}

	stats := engine.StatisticsForUser(own, userID)
	summary := ProfileSummary{
		UserID:         userID,
		TotalRatings:   stats.TotalRatings,
		AverageRating:  stats.Average,
		BestActor:      stats.BestActor,
		WorstActor:     stats.WorstActor,
		SectorAverages: stats.SectorAverages,
		Ratings:        engine.RecentRatings(own, len(own)),
	}
	if profile != nil {
		summary.Email = profile.Email
		summary.DisplayName = profile.DisplayName
		summary.MemberSince = profile.LastActive
		summary.IsEmailVerified = profile.IsEmailVerified
	}
	return summary, nil
}
