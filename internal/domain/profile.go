package domain

import "time"

// UserProfile is a read-mostly projection of one user's rating activity,
// rewritten periodically by the profile sync job. It is never treated as
// authoritative; the rating set is.
type UserProfile struct {
	UserID          string
	Email           string
	DisplayName     string
	TotalRatings    int
	AverageRating   float64
	SectorAverages  map[string]float64
	LastActive      time.Time
	IsEmailVerified bool
}
