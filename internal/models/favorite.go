package models

import "time"

// Favorite bookmarks a listing for a user.
type Favorite struct {
	UserID    int64     `db:"user_id" json:"user_id"`
	ListingID int64     `db:"listing_id" json:"listing_id"`
	AddedAt   time.Time `db:"added_at" json:"added_at"`

	Listing *Listing `db:"-" json:"listing,omitempty"`
}
