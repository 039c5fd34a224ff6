package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Listing statuses.
const (
	ListingActive   = "active"
	ListingInactive = "inactive"
	ListingDeleted  = "deleted"
)

// ImageList stores normalized image paths as a JSONB column.
type ImageList []string

// Value implements driver.Valuer.
func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		l = ImageList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *ImageList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("image list: unsupported scan type %T", src)
	}
}

// Listing is a published service offer. Images hold storage paths only;
// raw payloads are normalized away before the row is written.
type Listing struct {
	ID          int64     `db:"id" json:"id"`
	OwnerID     int64     `db:"owner_id" json:"owner_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	Images      ImageList `db:"images" json:"images"`
	Status      string    `db:"status" json:"status"`
	PublishedAt time.Time `db:"published_at" json:"published_at"`

	Owner *User `db:"-" json:"owner,omitempty"`
}

// ListingSummary adds the rating aggregates computed by the discovery queries.
type ListingSummary struct {
	Listing
	AvgRating   float64 `db:"avg_rating" json:"avg_rating"`
	RatingCount int64   `db:"rating_count" json:"rating_count"`
}

// ContactedListing marks a listing the user has messaged about, with the
// moment of first contact.
type ContactedListing struct {
	ListingID      int64     `db:"listing_id" json:"listing_id"`
	FirstContactAt time.Time `db:"first_contact_at" json:"first_contact_at"`

	Listing *Listing `db:"-" json:"listing,omitempty"`
}
