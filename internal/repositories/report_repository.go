package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"marketplace-service/internal/models"
)

// DashboardStats is the admin landing-page aggregate.
type DashboardStats struct {
	TotalUsers         int64   `db:"total_users" json:"total_users"`
	ActiveUsers        int64   `db:"active_users" json:"active_users"`
	TotalListings      int64   `db:"total_listings" json:"total_listings"`
	ActiveListings     int64   `db:"active_listings" json:"active_listings"`
	TotalPayments      int64   `db:"total_payments" json:"total_payments"`
	CompletedAmount    float64 `db:"completed_amount" json:"completed_amount"`
	TotalRatings       int64   `db:"total_ratings" json:"total_ratings"`
	AverageRating      float64 `db:"average_rating" json:"average_rating"`
	TotalMessages      int64   `db:"total_messages" json:"total_messages"`
	TotalConversations int64   `db:"total_conversations" json:"total_conversations"`
}

// ReportRepository persists generated reports and collects their data.
type ReportRepository interface {
	Insert(ctx context.Context, report models.Report) (models.Report, error)
	List(ctx context.Context, limit, offset int) ([]models.Report, int64, error)
	Collect(ctx context.Context, kind string, params models.ReportParams) (int64, any, error)
	Dashboard(ctx context.Context) (DashboardStats, error)
}

// ReportRepo is a sqlx-backed repository.
type ReportRepo struct {
	db *sqlx.DB
}

// NewReportRepo constructs ReportRepo.
func NewReportRepo(db *sqlx.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

// Insert records a generated report.
func (r *ReportRepo) Insert(ctx context.Context, report models.Report) (models.Report, error) {
	var created models.Report
	err := r.db.QueryRowxContext(ctx, `INSERT INTO reports (admin_id, kind, params)
        VALUES ($1, $2, $3) RETURNING id, admin_id, kind, params, generated_at`,
		report.AdminID, report.Kind, report.Params).
		StructScan(&created)
	return created, err
}

// List returns one page of past reports, newest first.
func (r *ReportRepo) List(ctx context.Context, limit, offset int) ([]models.Report, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reports`); err != nil {
		return nil, 0, err
	}
	var reports []models.Report
	err := r.db.SelectContext(ctx, &reports,
		`SELECT id, admin_id, kind, params, generated_at FROM reports ORDER BY generated_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	return reports, total, err
}

var reportSources = map[string]struct {
	table     string
	columns   string
	dateField string
}{
	models.ReportUsers:    {"users", userColumns, "registered_at"},
	models.ReportListings: {"listings", listingColumns, "published_at"},
	models.ReportPayments: {"payments", paymentColumns, "paid_at"},
	models.ReportMessages: {"messages", messageColumns, "sent_at"},
	models.ReportRatings:  {"ratings", ratingColumns, "rated_at"},
}

// Collect gathers the rows a report covers, filtered by the optional date range.
func (r *ReportRepo) Collect(ctx context.Context, kind string, params models.ReportParams) (int64, any, error) {
	src, ok := reportSources[kind]
	if !ok {
		return 0, nil, fmt.Errorf("unknown report kind %q", kind)
	}

	where := []string{"TRUE"}
	var args []any
	if params.From != nil {
		args = append(args, *params.From)
		where = append(where, fmt.Sprintf("%s >= $%d", src.dateField, len(args)))
	}
	if params.To != nil {
		args = append(args, *params.To)
		where = append(where, fmt.Sprintf("%s <= $%d", src.dateField, len(args)))
	}
	cond := strings.Join(where, " AND ")

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s DESC",
		src.columns, src.table, cond, src.dateField)

	switch kind {
	case models.ReportUsers:
		var rows []models.User
		err := r.db.SelectContext(ctx, &rows, query, args...)
		return int64(len(rows)), rows, err
	case models.ReportListings:
		var rows []models.Listing
		err := r.db.SelectContext(ctx, &rows, query, args...)
		return int64(len(rows)), rows, err
	case models.ReportPayments:
		var rows []models.Payment
		err := r.db.SelectContext(ctx, &rows, query, args...)
		return int64(len(rows)), rows, err
	case models.ReportMessages:
		var rows []models.Message
		err := r.db.SelectContext(ctx, &rows, query, args...)
		return int64(len(rows)), rows, err
	default:
		var rows []models.Rating
		err := r.db.SelectContext(ctx, &rows, query, args...)
		return int64(len(rows)), rows, err
	}
}

// Dashboard computes the admin overview in a single round trip.
func (r *ReportRepo) Dashboard(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	err := r.db.GetContext(ctx, &stats, `SELECT
        (SELECT COUNT(*) FROM users) AS total_users,
        (SELECT COUNT(*) FROM users WHERE active) AS active_users,
        (SELECT COUNT(*) FROM listings) AS total_listings,
        (SELECT COUNT(*) FROM listings WHERE status = 'active') AS active_listings,
        (SELECT COUNT(*) FROM payments) AS total_payments,
        (SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = 'completed')::float AS completed_amount,
        (SELECT COUNT(*) FROM ratings) AS total_ratings,
        (SELECT COALESCE(ROUND(AVG(score)::numeric, 2), 0) FROM ratings)::float AS average_rating,
        (SELECT COUNT(*) FROM messages) AS total_messages,
        (SELECT COUNT(*) FROM (
            SELECT 1 FROM messages
            GROUP BY LEAST(sender_id, recipient_id), GREATEST(sender_id, recipient_id)
        ) AS pairs) AS total_conversations`)
	return stats, err
}
