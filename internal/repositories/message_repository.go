package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"marketplace-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageFilter narrows the admin message listing.
type MessageFilter struct {
	UserID *int64
	Search string
}

// MessageRepository stores directed messages and derives conversations
// from them on read.
type MessageRepository interface {
	Create(ctx context.Context, senderID, recipientID int64, listingID *int64, body string) (models.Message, error)
	ListConversations(ctx context.Context, userID int64) ([]models.ConversationSummary, error)
	Transcript(ctx context.Context, userA, userB int64) ([]models.Message, error)
	HasContacted(ctx context.Context, userID, listingID int64) (bool, error)
	ContactedListingIDs(ctx context.Context, userID int64) ([]models.ContactedListing, error)
	AggregateConversations(ctx context.Context, limit, offset int) ([]models.ConversationGroup, int64, error)
	List(ctx context.Context, filter MessageFilter, limit, offset int) ([]models.Message, int64, error)
	Delete(ctx context.Context, id int64) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, sender_id, recipient_id, listing_id, body, sent_at`

// Create appends a message. Messages are immutable afterwards.
func (r *MessageRepo) Create(ctx context.Context, senderID, recipientID int64, listingID *int64, body string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (sender_id, recipient_id, listing_id, body)
        VALUES ($1, $2, $3, $4) RETURNING `+messageColumns,
		senderID, recipientID, listingID, body).
		StructScan(&msg)
	return msg, err
}

// ListConversations derives the user's distinct counterparts, most recent
// activity first. Sender and recipient are treated symmetrically; a user
// with no messages gets an empty list.
func (r *MessageRepo) ListConversations(ctx context.Context, userID int64) ([]models.ConversationSummary, error) {
	query := `SELECT CASE WHEN sender_id=$1 THEN recipient_id ELSE sender_id END AS counterpart_id,
            COUNT(*) AS message_count,
            MAX(sent_at) AS last_message_at
        FROM messages
        WHERE sender_id=$1 OR recipient_id=$1
        GROUP BY counterpart_id
        ORDER BY last_message_at DESC, counterpart_id ASC`
	var convs []models.ConversationSummary
	err := r.db.SelectContext(ctx, &convs, query, userID)
	return convs, err
}

// Transcript returns every message between the pair in chronological order.
// Equal timestamps fall back to id order so pagination stays deterministic.
func (r *MessageRepo) Transcript(ctx context.Context, userA, userB int64) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
        WHERE (sender_id=$1 AND recipient_id=$2) OR (sender_id=$2 AND recipient_id=$1)
        ORDER BY sent_at ASC, id ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, userA, userB)
	return msgs, err
}

// HasContacted reports whether the user ever sent a message about the listing.
func (r *MessageRepo) HasContacted(ctx context.Context, userID, listingID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM messages WHERE sender_id=$1 AND listing_id=$2)`, userID, listingID)
	return exists, err
}

// ContactedListingIDs returns the distinct listings the user messaged about,
// newest first contact last.
func (r *MessageRepo) ContactedListingIDs(ctx context.Context, userID int64) ([]models.ContactedListing, error) {
	query := `SELECT listing_id, MIN(sent_at) AS first_contact_at
        FROM messages
        WHERE sender_id=$1 AND listing_id IS NOT NULL
        GROUP BY listing_id
        ORDER BY first_contact_at DESC`
	var contacted []models.ContactedListing
	err := r.db.SelectContext(ctx, &contacted, query, userID)
	return contacted, err
}

// AggregateConversations groups the whole message table by unordered
// participant pair. The grouping runs in the storage layer; the application
// never loads the table into memory.
func (r *MessageRepo) AggregateConversations(ctx context.Context, limit, offset int) ([]models.ConversationGroup, int64, error) {
	ctx, span := otel.Tracer("marketplace-service/repositories").Start(ctx, "messages.aggregate_conversations")
	defer span.End()
	span.SetAttributes(attribute.Int("limit", limit), attribute.Int("offset", offset))

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM (
            SELECT 1 FROM messages
            GROUP BY LEAST(sender_id, recipient_id), GREATEST(sender_id, recipient_id)
        ) AS pairs`); err != nil {
		return nil, 0, err
	}

	query := `SELECT LEAST(sender_id, recipient_id) AS user_a_id,
            GREATEST(sender_id, recipient_id) AS user_b_id,
            COUNT(*) AS message_count,
            MAX(sent_at) AS last_message_at
        FROM messages
        GROUP BY user_a_id, user_b_id
        ORDER BY last_message_at DESC, user_a_id ASC, user_b_id ASC
        LIMIT $1 OFFSET $2`
	var groups []models.ConversationGroup
	if err := r.db.SelectContext(ctx, &groups, query, limit, offset); err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

// List returns one admin page of raw messages, newest first.
func (r *MessageRepo) List(ctx context.Context, filter MessageFilter, limit, offset int) ([]models.Message, int64, error) {
	where := []string{"TRUE"}
	var args []any

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		n := len(args)
		where = append(where, fmt.Sprintf("(sender_id = $%d OR recipient_id = $%d)", n, n))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("body ILIKE $%d", len(args)))
	}

	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM messages WHERE `+cond, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM messages WHERE %s ORDER BY sent_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		messageColumns, cond, len(args)-1, len(args))

	var msgs []models.Message
	if err := r.db.SelectContext(ctx, &msgs, query, args...); err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

// Delete hard-deletes one message.
func (r *MessageRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}
