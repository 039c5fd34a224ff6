package models

import "time"

// Rating is a user's score and optional comment on a listing. At most one
// rating exists per (listing, user); the database constraint is the
// authoritative guard.
type Rating struct {
	ID        int64     `db:"id" json:"id"`
	ListingID int64     `db:"listing_id" json:"listing_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Score     int       `db:"score" json:"score"`
	Comment   *string   `db:"comment" json:"comment,omitempty"`
	RatedAt   time.Time `db:"rated_at" json:"rated_at"`

	User    *User    `db:"-" json:"user,omitempty"`
	Listing *Listing `db:"-" json:"listing,omitempty"`
}

// RatingBreakdown accompanies a listing's rating list.
type RatingBreakdown struct {
	Average float64 `json:"average"`
	Total   int64   `json:"total"`
}
