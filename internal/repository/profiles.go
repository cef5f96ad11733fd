package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slurp-civic/slurp-api/internal/domain"
)

// ProfilesRepository stores the per-user activity projection maintained by
// the profile sync job.
type ProfilesRepository struct {
	pool *pgxpool.Pool
}

const profileColumns = `
    user_id,
    email,
    display_name,
    total_ratings,
    average_rating,
    sector_averages,
    last_active,
    is_email_verified
`

// GetByUserID fetches a user's profile projection. A missing profile is not
// an error: the result is nil when no row exists yet.
func (r *ProfilesRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_profiles WHERE user_id = $1`, profileColumns)

	profile, err := scanProfile(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return &profile, nil
}

// Upsert rewrites a user's profile projection and returns the stored row.
func (r *ProfilesRepository) Upsert(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
	sectorJSON, err := json.Marshal(profile.SectorAverages)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("marshal sector averages: %w", err)
	}

	query := fmt.Sprintf(`
        INSERT INTO user_profiles (user_id, email, display_name, total_ratings, average_rating, sector_averages, last_active, is_email_verified)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (user_id)
        DO UPDATE SET email = EXCLUDED.email,
            display_name = EXCLUDED.display_name,
            total_ratings = EXCLUDED.total_ratings,
            average_rating = EXCLUDED.average_rating,
            sector_averages = EXCLUDED.sector_averages,
            last_active = EXCLUDED.last_active,
            is_email_verified = EXCLUDED.is_email_verified
        RETURNING %s
    `, profileColumns)

	row := r.pool.QueryRow(ctx, query,
		profile.UserID,
		profile.Email,
		profile.DisplayName,
		profile.TotalRatings,
		profile.AverageRating,
		sectorJSON,
		profile.LastActive,
		profile.IsEmailVerified,
	)
	stored, err := scanProfile(row)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("upsert profile: %w", err)
	}
	return stored, nil
}

func scanProfile(row pgx.Row) (domain.UserProfile, error) {
	var (
		profile    domain.UserProfile
		sectorJSON []byte
	)
	err := row.Scan(
		&profile.UserID,
		&profile.Email,
		&profile.DisplayName,
		&profile.TotalRatings,
		&profile.AverageRating,
		&sectorJSON,
		&profile.LastActive,
		&profile.IsEmailVerified,
	)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if len(sectorJSON) > 0 {
		if err := json.Unmarshal(sectorJSON, &profile.SectorAverages); err != nil {
			return domain.UserProfile{}, fmt.Errorf("decode sector averages: %w", err)
		}
	}
	return profile, nil
}
