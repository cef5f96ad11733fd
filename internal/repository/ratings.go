package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slurp-civic/slurp-api/internal/domain"
)

// RatingsRepository is the record source for citizen ratings. Ratings are
// append-only; the engine always works over a full snapshot from FetchAll.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

const ratingColumns = `
    id,
    user_id,
    actor_name,
    governorate,
    delegation,
    macro_sector,
    meso_sector,
    indicator_category,
    indicator_type,
    rating,
    comment,
    submitted_at
`

// RatingCreateParams bundles the fields accepted at submission time. The id
// and timestamp are assigned by the store.
type RatingCreateParams struct {
	UserID            string
	ActorName         string
	Governorate       string
	Delegation        string
	MacroSector       string
	MesoSector        string
	IndicatorCategory string
	IndicatorType     string
	Rating            float64
	Comment           string
}

// Append inserts a new rating and returns the stored record.
func (r *RatingsRepository) Append(ctx context.Context, params RatingCreateParams) (domain.Rating, error) {
	query := fmt.Sprintf(`
        INSERT INTO ratings (user_id, actor_name, governorate, delegation, macro_sector, meso_sector, indicator_category, indicator_type, rating, comment)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING %s
    `, ratingColumns)

	row := r.pool.QueryRow(ctx, query,
		params.UserID,
		params.ActorName,
		params.Governorate,
		params.Delegation,
		params.MacroSector,
		params.MesoSector,
		params.IndicatorCategory,
		params.IndicatorType,
		params.Rating,
		params.Comment,
	)
	rating, err := scanRating(row)
	if err != nil {
		return domain.Rating{}, fmt.Errorf("append rating: %w", err)
	}
	return rating, nil
}

// FetchAll returns the full materialized rating snapshot, newest first.
func (r *RatingsRepository) FetchAll(ctx context.Context) ([]domain.Rating, error) {
	query := fmt.Sprintf(`SELECT %s FROM ratings ORDER BY submitted_at DESC, id ASC`, ratingColumns)
	return r.queryRatings(ctx, query)
}

// ListByUser returns one user's ratings, newest first.
func (r *RatingsRepository) ListByUser(ctx context.Context, userID string) ([]domain.Rating, error) {
	query := fmt.Sprintf(`SELECT %s FROM ratings WHERE user_id = $1 ORDER BY submitted_at DESC, id ASC`, ratingColumns)
	return r.queryRatings(ctx, query, userID)
}

// ActorsBySector returns the distinct actor names rated under a meso-sector,
// sorted, for the submission flow's actor picker.
func (r *RatingsRepository) ActorsBySector(ctx context.Context, mesoSector string) ([]string, error) {
	const query = `
        SELECT DISTINCT actor_name
        FROM ratings
        WHERE meso_sector = $1 AND actor_name <> ''
        ORDER BY actor_name
    `
	rows, err := r.pool.Query(ctx, query, mesoSector)
	if err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}
	defer rows.Close()

	var actors []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		actors = append(actors, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return actors, nil
}

func (r *RatingsRepository) queryRatings(ctx context.Context, query string, args ...interface{}) ([]domain.Rating, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]domain.Rating, 0)
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ratings, nil
}

func scanRating(row pgx.Row) (domain.Rating, error) {
	var rating domain.Rating
	err := row.Scan(
		&rating.ID,
		&rating.UserID,
		&rating.ActorName,
		&rating.Governorate,
		&rating.Delegation,
		&rating.MacroSector,
		&rating.MesoSector,
		&rating.IndicatorCategory,
		&rating.IndicatorType,
		&rating.Rating,
		&rating.Comment,
		&rating.SubmittedAt,
	)
	if err != nil {
		return domain.Rating{}, err
	}
	return rating, nil
}
