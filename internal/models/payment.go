package models

import "time"

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Payment records a transfer between two users for a listing.
type Payment struct {
	ID        int64     `db:"id" json:"id"`
	PayerID   int64     `db:"payer_id" json:"payer_id"`
	PayeeID   int64     `db:"payee_id" json:"payee_id"`
	ListingID int64     `db:"listing_id" json:"listing_id"`
	Amount    float64   `db:"amount" json:"amount"`
	Status    string    `db:"status" json:"status"`
	PaidAt    time.Time `db:"paid_at" json:"paid_at"`

	Payer   *User    `db:"-" json:"payer,omitempty"`
	Payee   *User    `db:"-" json:"payee,omitempty"`
	Listing *Listing `db:"-" json:"listing,omitempty"`
}
