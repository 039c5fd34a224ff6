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

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// UserFilter narrows admin user listings.
type UserFilter struct {
	Role   *string
	Active *bool
	Search string
}

// UserRepository abstracts account persistence.
type UserRepository interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.User, error)
	List(ctx context.Context, filter UserFilter, limit, offset int) ([]models.User, int64, error)
	SetActive(ctx context.Context, id int64, active bool) (models.User, error)
	Delete(ctx context.Context, id int64) error
}

// UserRepo is a sqlx-backed repository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, role, name, surname, email, password_hash, phone, photo, active, registered_at`

// Create inserts a new account. The unique email constraint maps to ErrEmailTaken.
func (r *UserRepo) Create(ctx context.Context, user models.User) (models.User, error) {
	var created models.User
	err := r.db.QueryRowxContext(ctx, `INSERT INTO users (role, name, surname, email, password_hash, phone, photo)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING `+userColumns,
		user.Role, user.Name, user.Surname, user.Email, user.PasswordHash, user.Phone, user.Photo).
		StructScan(&created)
	if isUniqueViolation(err) {
		return models.User{}, ErrEmailTaken
	}
	return created, err
}

// FindByID fetches one account.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// FindByEmail fetches one account by email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// FindByIDs resolves a batch of accounts in one query.
func (r *UserRepo) FindByIDs(ctx context.Context, ids []int64) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var users []models.User
	err = r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...)
	return users, err
}

// List returns one page of accounts plus the unpaginated total.
func (r *UserRepo) List(ctx context.Context, filter UserFilter, limit, offset int) ([]models.User, int64, error) {
	where := []string{"TRUE"}
	var args []any

	if filter.Role != nil {
		args = append(args, *filter.Role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		where = append(where, fmt.Sprintf("active = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR surname ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}

	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users WHERE `+cond, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY registered_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		userColumns, cond, len(args)-1, len(args))

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// SetActive flips the account's active flag.
func (r *UserRepo) SetActive(ctx context.Context, id int64, active bool) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `UPDATE users SET active=$2 WHERE id=$1 RETURNING `+userColumns, id, active).
		StructScan(&user)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// Delete removes an account. The admin-protection rule lives in the
// authorization gate, not here.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}
