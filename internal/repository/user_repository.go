package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/chrolluash/rentconnect/internal/model"
)

// UserRepo persists rows of the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,first_name,last_name,email,contact_number,role,password,auth_provider,profile_picture,created_at,last_login"

// NormalizeEmail lower-cases and trims an address before it hits the index.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts u (PasswordHash already computed) and fills its ID and
// CreatedAt.  A duplicate email yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = NormalizeEmail(u.Email)
	if u.AuthProvider == "" {
		u.AuthProvider = model.AuthProviderEmail
	}
	var hash any
	if u.PasswordHash != "" {
		hash = u.PasswordHash
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (first_name,last_name,email,contact_number,role,password,auth_provider) VALUES (?,?,?,?,?,?,?)",
		u.FirstName, u.LastName, u.Email, u.ContactNumber, u.Role, hash, u.AuthProvider)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	u.CreatedAt = time.Now().UTC()
	return nil
}

// EmailExists reports whether a user with the normalized email is present.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM users WHERE email=? LIMIT 1", NormalizeEmail(email)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", NormalizeEmail(email))
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// TouchLastLogin stamps users.last_login with the current time.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET last_login=NOW() WHERE id=?", id)
	return err
}

// SetProfilePicture replaces users.profile_picture and returns the previous
// value (nil when none was set) so the caller can remove the old file.
func (r *UserRepo) SetProfilePicture(ctx context.Context, id uint64, path string) (old *string, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var prev sql.NullString
	if err = tx.QueryRowContext(ctx,
		"SELECT profile_picture FROM users WHERE id=? FOR UPDATE", id).Scan(&prev); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrUserNotFound
		}
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, "UPDATE users SET profile_picture=? WHERE id=?", path, id); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	if prev.Valid && prev.String != "" {
		s := prev.String
		return &s, nil
	}
	return nil, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u        model.User
		password sql.NullString
		picture  sql.NullString
		last     sql.NullTime
	)
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.ContactNumber, &u.Role,
		&password, &u.AuthProvider, &picture, &u.CreatedAt, &last)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.PasswordHash = password.String
	if picture.Valid {
		p := picture.String
		u.ProfilePicture = &p
	}
	if last.Valid {
		t := last.Time
		u.LastLogin = &t
	}
	return &u, nil
}
