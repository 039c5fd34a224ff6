package models

import "time"

// ConversationSummary is one entry in a user's conversation list: the
// counterpart they exchanged messages with, ordered by most recent activity.
type ConversationSummary struct {
	CounterpartID int64     `db:"counterpart_id" json:"counterpart_id"`
	MessageCount  int64     `db:"message_count" json:"message_count"`
	LastMessageAt time.Time `db:"last_message_at" json:"last_message_at"`

	Counterpart *User `db:"-" json:"counterpart,omitempty"`
}

// ConversationGroup is the admin-side aggregate over all users, keyed by the
// unordered participant pair (UserAID < UserBID).
type ConversationGroup struct {
	UserAID       int64     `db:"user_a_id" json:"user_a_id"`
	UserBID       int64     `db:"user_b_id" json:"user_b_id"`
	MessageCount  int64     `db:"message_count" json:"message_count"`
	LastMessageAt time.Time `db:"last_message_at" json:"last_message_at"`

	UserA *User `db:"-" json:"user_a,omitempty"`
	UserB *User `db:"-" json:"user_b,omitempty"`
}
