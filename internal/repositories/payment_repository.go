package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"marketplace-service/internal/models"
)

var ErrPaymentNotFound = errors.New("payment not found")

// PaymentFilter narrows the admin payment listing.
type PaymentFilter struct {
	Status *string
	From   *time.Time
	To     *time.Time
}

// PaymentRepository abstracts payment persistence.
type PaymentRepository interface {
	Create(ctx context.Context, payment models.Payment) (models.Payment, error)
	ListByPayer(ctx context.Context, payerID int64) ([]models.Payment, error)
	ListByPayee(ctx context.Context, payeeID int64) ([]models.Payment, error)
	ListAdmin(ctx context.Context, filter PaymentFilter, limit, offset int) ([]models.Payment, int64, error)
	SetStatus(ctx context.Context, id int64, status string) (models.Payment, error)
}

// PaymentRepo is a sqlx-backed repository.
type PaymentRepo struct {
	db *sqlx.DB
}

// NewPaymentRepo constructs PaymentRepo.
func NewPaymentRepo(db *sqlx.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

const paymentColumns = `id, payer_id, payee_id, listing_id, amount, status, paid_at`

// Create records a payment.
func (r *PaymentRepo) Create(ctx context.Context, payment models.Payment) (models.Payment, error) {
	var created models.Payment
	err := r.db.QueryRowxContext(ctx, `INSERT INTO payments (payer_id, payee_id, listing_id, amount, status)
        VALUES ($1, $2, $3, $4, $5) RETURNING `+paymentColumns,
		payment.PayerID, payment.PayeeID, payment.ListingID, payment.Amount, payment.Status).
		StructScan(&created)
	return created, err
}

// ListByPayer returns payments the user made, newest first.
func (r *PaymentRepo) ListByPayer(ctx context.Context, payerID int64) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.SelectContext(ctx, &payments,
		`SELECT `+paymentColumns+` FROM payments WHERE payer_id=$1 ORDER BY paid_at DESC, id DESC`, payerID)
	return payments, err
}

// ListByPayee returns payments the user received, newest first.
func (r *PaymentRepo) ListByPayee(ctx context.Context, payeeID int64) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.SelectContext(ctx, &payments,
		`SELECT `+paymentColumns+` FROM payments WHERE payee_id=$1 ORDER BY paid_at DESC, id DESC`, payeeID)
	return payments, err
}

// ListAdmin returns one supervision page of payments.
func (r *PaymentRepo) ListAdmin(ctx context.Context, filter PaymentFilter, limit, offset int) ([]models.Payment, int64, error) {
	where := []string{"TRUE"}
	var args []any

	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("paid_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where = append(where, fmt.Sprintf("paid_at <= $%d", len(args)))
	}

	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM payments WHERE `+cond, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE %s ORDER BY paid_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		paymentColumns, cond, len(args)-1, len(args))

	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// SetStatus moves a payment between pending/completed/failed.
func (r *PaymentRepo) SetStatus(ctx context.Context, id int64, status string) (models.Payment, error) {
	var payment models.Payment
	err := r.db.QueryRowxContext(ctx, `UPDATE payments SET status=$2 WHERE id=$1 RETURNING `+paymentColumns, id, status).
		StructScan(&payment)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Payment{}, ErrPaymentNotFound
	}
	return payment, err
}
