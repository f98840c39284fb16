package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/drivelog-hub/drivelog/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

const userColumns = `
	id, username, first_name, last_name, phone, email, cpr,
	address, postal_code, city, password_hash, picture_url,
	instructor, created_at, updated_at
`

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (
			id, username, first_name, last_name, phone, email, cpr,
			address, postal_code, city, password_hash, picture_url,
			instructor, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.conn.Exec(ctx, query,
		u.ID,
		u.Username,
		u.FirstName,
		u.LastName,
		u.Phone,
		u.Email,
		u.CPR,
		u.Address,
		u.PostalCode,
		u.City,
		u.PasswordHash,
		u.PictureURL,
		u.Instructor,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return user.ErrUserAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID returns a user by internal ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.conn.QueryRow(ctx, query, id))
}

// GetByUsername returns a user by login name.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanUser(r.conn.QueryRow(ctx, query, username))
}

// Update persists profile changes.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users SET
			username = $1,
			first_name = $2,
			last_name = $3,
			phone = $4,
			email = $5,
			cpr = $6,
			address = $7,
			postal_code = $8,
			city = $9,
			password_hash = $10,
			picture_url = $11,
			instructor = $12,
			updated_at = $13
		WHERE id = $14
	`

	result, err := r.conn.Exec(ctx, query,
		u.Username,
		u.FirstName,
		u.LastName,
		u.Phone,
		u.Email,
		u.CPR,
		u.Address,
		u.PostalCode,
		u.City,
		u.PasswordHash,
		u.PictureURL,
		u.Instructor,
		time.Now().UTC(),
		u.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return user.ErrUserAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

// ExistsByUsername reports whether a user with this login name exists.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)", username)
}

// ExistsByEmail reports whether a user with this email exists.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)", email)
}

// ExistsByCPR reports whether a user with this CPR number exists.
func (r *UserRepository) ExistsByCPR(ctx context.Context, cpr string) (bool, error) {
	return r.exists(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE cpr = $1)", cpr)
}

func (r *UserRepository) exists(ctx context.Context, query, arg string) (bool, error) {
	var exists bool
	if err := r.conn.QueryRow(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// rowScanner abstracts pgx.Row for scanUser.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *UserRepository) scanUser(row rowScanner) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.Phone,
		&u.Email,
		&u.CPR,
		&u.Address,
		&u.PostalCode,
		&u.City,
		&u.PasswordHash,
		&u.PictureURL,
		&u.Instructor,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
