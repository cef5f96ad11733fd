package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slurp-civic/slurp-api/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// Repository aggregates the record-source repositories.
type Repository struct {
	Ratings  *RatingsRepository
	Profiles *ProfilesRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Ratings:  &RatingsRepository{pool: pool},
		Profiles: &ProfilesRepository{pool: pool},
	}
}
