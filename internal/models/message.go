package models

import "time"

// Message is a directed chat message. Rows are immutable once created;
// the only mutation path is a hard delete by id.
type Message struct {
	ID          int64     `db:"id" json:"id"`
	SenderID    int64     `db:"sender_id" json:"sender_id"`
	RecipientID int64     `db:"recipient_id" json:"recipient_id"`
	ListingID   *int64    `db:"listing_id" json:"listing_id,omitempty"`
	Body        string    `db:"body" json:"body"`
	SentAt      time.Time `db:"sent_at" json:"sent_at"`

	Sender    *User `db:"-" json:"sender,omitempty"`
	Recipient *User `db:"-" json:"recipient,omitempty"`
}
