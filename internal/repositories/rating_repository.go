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

var (
	ErrRatingNotFound  = errors.New("rating not found")
	ErrDuplicateRating = errors.New("rating already exists for this listing and user")
)

// RatingFilter narrows the admin rating listing.
type RatingFilter struct {
	ListingID *int64
	UserID    *int64
	MinScore  *int
	MaxScore  *int
	Search    string
	From      *time.Time
	To        *time.Time
}

// RatingRepository abstracts rating persistence. The UNIQUE(listing_id,
// user_id) constraint is the authoritative duplicate guard; Create surfaces
// it as ErrDuplicateRating.
type RatingRepository interface {
	Create(ctx context.Context, rating models.Rating) (models.Rating, error)
	Update(ctx context.Context, id int64, score *int, comment *string) (models.Rating, error)
	FindByID(ctx context.Context, id int64) (models.Rating, error)
	FindByListingAndUser(ctx context.Context, listingID, userID int64) (models.Rating, error)
	ListForListing(ctx context.Context, listingID int64) ([]models.Rating, models.RatingBreakdown, error)
	ListAdmin(ctx context.Context, filter RatingFilter, limit, offset int) ([]models.Rating, int64, error)
	Delete(ctx context.Context, id int64) error
}

// RatingRepo is a sqlx-backed repository.
type RatingRepo struct {
	db *sqlx.DB
}

// NewRatingRepo constructs RatingRepo.
func NewRatingRepo(db *sqlx.DB) *RatingRepo {
	return &RatingRepo{db: db}
}

const ratingColumns = `id, listing_id, user_id, score, comment, rated_at`

// Create inserts a rating, mapping the uniqueness constraint to
// ErrDuplicateRating so concurrent duplicates never produce a second row.
func (r *RatingRepo) Create(ctx context.Context, rating models.Rating) (models.Rating, error) {
	var created models.Rating
	err := r.db.QueryRowxContext(ctx, `INSERT INTO ratings (listing_id, user_id, score, comment)
        VALUES ($1, $2, $3, $4) RETURNING `+ratingColumns,
		rating.ListingID, rating.UserID, rating.Score, rating.Comment).
		StructScan(&created)
	if isUniqueViolation(err) {
		return models.Rating{}, ErrDuplicateRating
	}
	return created, err
}

// Update changes score and/or comment; nil fields keep their value.
func (r *RatingRepo) Update(ctx context.Context, id int64, score *int, comment *string) (models.Rating, error) {
	var updated models.Rating
	err := r.db.QueryRowxContext(ctx, `UPDATE ratings
        SET score = COALESCE($2, score),
            comment = COALESCE($3, comment)
        WHERE id=$1 RETURNING `+ratingColumns,
		id, score, comment).
		StructScan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Rating{}, ErrRatingNotFound
	}
	return updated, err
}

// FindByID fetches one rating.
func (r *RatingRepo) FindByID(ctx context.Context, id int64) (models.Rating, error) {
	var rating models.Rating
	err := r.db.GetContext(ctx, &rating, `SELECT `+ratingColumns+` FROM ratings WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Rating{}, ErrRatingNotFound
	}
	return rating, err
}

// FindByListingAndUser fetches the caller's rating on a listing, if any.
func (r *RatingRepo) FindByListingAndUser(ctx context.Context, listingID, userID int64) (models.Rating, error) {
	var rating models.Rating
	err := r.db.GetContext(ctx, &rating,
		`SELECT `+ratingColumns+` FROM ratings WHERE listing_id=$1 AND user_id=$2`, listingID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Rating{}, ErrRatingNotFound
	}
	return rating, err
}

// ListForListing returns a listing's ratings newest first, with the average
// and total computed in SQL.
func (r *RatingRepo) ListForListing(ctx context.Context, listingID int64) ([]models.Rating, models.RatingBreakdown, error) {
	var ratings []models.Rating
	if err := r.db.SelectContext(ctx, &ratings,
		`SELECT `+ratingColumns+` FROM ratings WHERE listing_id=$1 ORDER BY rated_at DESC, id DESC`, listingID); err != nil {
		return nil, models.RatingBreakdown{}, err
	}

	var breakdown models.RatingBreakdown
	err := r.db.QueryRowxContext(ctx,
		`SELECT COALESCE(ROUND(AVG(score)::numeric, 1), 0)::float, COUNT(*) FROM ratings WHERE listing_id=$1`, listingID).
		Scan(&breakdown.Average, &breakdown.Total)
	return ratings, breakdown, err
}

// ListAdmin returns one moderation page of ratings.
func (r *RatingRepo) ListAdmin(ctx context.Context, filter RatingFilter, limit, offset int) ([]models.Rating, int64, error) {
	where := []string{"TRUE"}
	var args []any

	if filter.ListingID != nil {
		args = append(args, *filter.ListingID)
		where = append(where, fmt.Sprintf("listing_id = $%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.MinScore != nil {
		args = append(args, *filter.MinScore)
		where = append(where, fmt.Sprintf("score >= $%d", len(args)))
	}
	if filter.MaxScore != nil {
		args = append(args, *filter.MaxScore)
		where = append(where, fmt.Sprintf("score <= $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("comment ILIKE $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("rated_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where = append(where, fmt.Sprintf("rated_at <= $%d", len(args)))
	}

	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM ratings WHERE `+cond, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM ratings WHERE %s ORDER BY rated_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		ratingColumns, cond, len(args)-1, len(args))

	var ratings []models.Rating
	if err := r.db.SelectContext(ctx, &ratings, query, args...); err != nil {
		return nil, 0, err
	}
	return ratings, total, nil
}

// Delete removes one rating.
func (r *RatingRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ratings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrRatingNotFound
	}
	return nil
}
