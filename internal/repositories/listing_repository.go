package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"marketplace-service/internal/models"
)

var ErrListingNotFound = errors.New("listing not found")

// ListingFilter narrows listing searches.
type ListingFilter struct {
	Search   string
	MinPrice *float64
	MaxPrice *float64
	Status   *string
}

// ListingRepository abstracts listing persistence.
type ListingRepository interface {
	Create(ctx context.Context, listing models.Listing) (models.Listing, error)
	Update(ctx context.Context, listing models.Listing) (models.Listing, error)
	FindByID(ctx context.Context, id int64) (models.Listing, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Listing, error)
	ListPublic(ctx context.Context, filter ListingFilter, limit, offset int) ([]models.ListingSummary, int64, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.ListingSummary, error)
	ListAdmin(ctx context.Context, filter ListingFilter, limit, offset int) ([]models.Listing, int64, error)
	SetStatus(ctx context.Context, id int64, status string) (models.Listing, error)
	Delete(ctx context.Context, id int64) error
}

// ListingRepo is a sqlx-backed repository.
type ListingRepo struct {
	db *sqlx.DB
}

// NewListingRepo constructs ListingRepo.
func NewListingRepo(db *sqlx.DB) *ListingRepo {
	return &ListingRepo{db: db}
}

const listingColumns = `id, owner_id, title, description, price, images, status, published_at`

// Create inserts a listing with its already-normalized image paths.
func (r *ListingRepo) Create(ctx context.Context, listing models.Listing) (models.Listing, error) {
	var created models.Listing
	err := r.db.QueryRowxContext(ctx, `INSERT INTO listings (owner_id, title, description, price, images, status)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+listingColumns,
		listing.OwnerID, listing.Title, listing.Description, listing.Price, listing.Images, listing.Status).
		StructScan(&created)
	return created, err
}

// Update overwrites the mutable columns.
func (r *ListingRepo) Update(ctx context.Context, listing models.Listing) (models.Listing, error) {
	var updated models.Listing
	err := r.db.QueryRowxContext(ctx, `UPDATE listings
        SET title=$2, description=$3, price=$4, images=$5, status=$6
        WHERE id=$1 RETURNING `+listingColumns,
		listing.ID, listing.Title, listing.Description, listing.Price, listing.Images, listing.Status).
		StructScan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Listing{}, ErrListingNotFound
	}
	return updated, err
}

// FindByID fetches one listing.
func (r *ListingRepo) FindByID(ctx context.Context, id int64) (models.Listing, error) {
	var listing models.Listing
	err := r.db.GetContext(ctx, &listing, `SELECT `+listingColumns+` FROM listings WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Listing{}, ErrListingNotFound
	}
	return listing, err
}

// FindByIDs resolves a batch of listings in one query.
func (r *ListingRepo) FindByIDs(ctx context.Context, ids []int64) ([]models.Listing, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+listingColumns+` FROM listings WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var listings []models.Listing
	err = r.db.SelectContext(ctx, &listings, r.db.Rebind(query), args...)
	return listings, err
}

func listingConditions(filter ListingFilter, where *[]string, args *[]any) {
	if filter.Status != nil {
		*args = append(*args, *filter.Status)
		*where = append(*where, fmt.Sprintf("l.status = $%d", len(*args)))
	}
	if filter.MinPrice != nil {
		*args = append(*args, *filter.MinPrice)
		*where = append(*where, fmt.Sprintf("l.price >= $%d", len(*args)))
	}
	if filter.MaxPrice != nil {
		*args = append(*args, *filter.MaxPrice)
		*where = append(*where, fmt.Sprintf("l.price <= $%d", len(*args)))
	}
	if filter.Search != "" {
		*args = append(*args, "%"+filter.Search+"%")
		n := len(*args)
		*where = append(*where, fmt.Sprintf("(l.title ILIKE $%d OR l.description ILIKE $%d)", n, n))
	}
}

// ListPublic returns one discovery page with rating aggregates computed in SQL.
func (r *ListingRepo) ListPublic(ctx context.Context, filter ListingFilter, limit, offset int) ([]models.ListingSummary, int64, error) {
	where := []string{"TRUE"}
	var args []any
	listingConditions(filter, &where, &args)
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM listings l WHERE `+cond, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT l.id, l.owner_id, l.title, l.description, l.price, l.images, l.status, l.published_at,
            COALESCE(AVG(r.score), 0)::float AS avg_rating,
            COUNT(r.id) AS rating_count
        FROM listings l
        LEFT JOIN ratings r ON r.listing_id = l.id
        WHERE %s
        GROUP BY l.id
        ORDER BY l.published_at DESC, l.id DESC
        LIMIT $%d OFFSET $%d`, cond, len(args)-1, len(args))

	var listings []models.ListingSummary
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// ListByOwner returns every listing the owner published, with aggregates.
func (r *ListingRepo) ListByOwner(ctx context.Context, ownerID int64) ([]models.ListingSummary, error) {
	query := `SELECT l.id, l.owner_id, l.title, l.description, l.price, l.images, l.status, l.published_at,
            COALESCE(AVG(r.score), 0)::float AS avg_rating,
            COUNT(r.id) AS rating_count
        FROM listings l
        LEFT JOIN ratings r ON r.listing_id = l.id
        WHERE l.owner_id = $1
        GROUP BY l.id
        ORDER BY l.published_at DESC, l.id DESC`
	var listings []models.ListingSummary
	err := r.db.SelectContext(ctx, &listings, query, ownerID)
	return listings, err
}

// ListAdmin returns one moderation page without aggregates.
func (r *ListingRepo) ListAdmin(ctx context.Context, filter ListingFilter, limit, offset int) ([]models.Listing, int64, error) {
	where := []string{"TRUE"}
	var args []any
	listingConditions(filter, &where, &args)
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM listings l WHERE `+cond, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT l.id, l.owner_id, l.title, l.description, l.price, l.images, l.status, l.published_at
        FROM listings l WHERE %s ORDER BY l.published_at DESC, l.id DESC LIMIT $%d OFFSET $%d`,
		cond, len(args)-1, len(args))

	var listings []models.Listing
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// SetStatus moves a listing between active/inactive/deleted.
func (r *ListingRepo) SetStatus(ctx context.Context, id int64, status string) (models.Listing, error) {
	var listing models.Listing
	err := r.db.QueryRowxContext(ctx, `UPDATE listings SET status=$2 WHERE id=$1 RETURNING `+listingColumns, id, status).
		StructScan(&listing)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Listing{}, ErrListingNotFound
	}
	return listing, err
}

// Delete hard-deletes a listing. Blob cleanup is the caller's concern.
func (r *ListingRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrListingNotFound
	}
	return nil
}
