package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"marketplace-service/internal/models"
)

var (
	ErrFavoriteNotFound = errors.New("favorite not found")
	ErrAlreadyFavorite  = errors.New("listing already in favorites")
)

// FavoriteRepository abstracts favorite bookmarks.
type FavoriteRepository interface {
	Add(ctx context.Context, userID, listingID int64) (models.Favorite, error)
	Remove(ctx context.Context, userID, listingID int64) error
	ListForUser(ctx context.Context, userID int64) ([]models.Favorite, error)
}

// FavoriteRepo is a sqlx-backed repository.
type FavoriteRepo struct {
	db *sqlx.DB
}

// NewFavoriteRepo constructs FavoriteRepo.
func NewFavoriteRepo(db *sqlx.DB) *FavoriteRepo {
	return &FavoriteRepo{db: db}
}

// Add bookmarks a listing; the primary key maps duplicates to ErrAlreadyFavorite.
func (r *FavoriteRepo) Add(ctx context.Context, userID, listingID int64) (models.Favorite, error) {
	var fav models.Favorite
	err := r.db.QueryRowxContext(ctx, `INSERT INTO favorites (user_id, listing_id)
        VALUES ($1, $2) RETURNING user_id, listing_id, added_at`, userID, listingID).
		StructScan(&fav)
	if isUniqueViolation(err) {
		return models.Favorite{}, ErrAlreadyFavorite
	}
	return fav, err
}

// Remove deletes the bookmark.
func (r *FavoriteRepo) Remove(ctx context.Context, userID, listingID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id=$1 AND listing_id=$2`, userID, listingID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// ListForUser returns the user's bookmarks, newest first.
func (r *FavoriteRepo) ListForUser(ctx context.Context, userID int64) ([]models.Favorite, error) {
	var favs []models.Favorite
	err := r.db.SelectContext(ctx, &favs,
		`SELECT user_id, listing_id, added_at FROM favorites WHERE user_id=$1 ORDER BY added_at DESC`, userID)
	return favs, err
}
