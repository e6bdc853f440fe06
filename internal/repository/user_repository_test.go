package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrolluash/rentconnect/internal/model"
)

var userCols = []string{"id", "first_name", "last_name", "email", "contact_number", "role", "password",
	"auth_provider", "profile_picture", "created_at", "last_login"}

func newUserMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepo(db), mock
}

func TestUserRepo_Create_NormalizesEmail(t *testing.T) {
	repo, mock := newUserMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("Ana", "Reyes", "ana@example.com", "0917", "tenant", "hash", "email").
		WillReturnResult(sqlmock.NewResult(5, 1))

	u := &model.User{FirstName: "Ana", LastName: "Reyes", Email: "  ANA@Example.com ", ContactNumber: "0917",
		Role: "tenant", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, uint64(5), u.ID)
	assert.Equal(t, "ana@example.com", u.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newUserMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.Create(context.Background(), &model.User{Email: "a@b.co", PasswordHash: "x"})
	require.ErrorIs(t, err, ErrEmailExists)
}

func TestUserRepo_GetByEmail(t *testing.T) {
	repo, mock := newUserMock(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=? LIMIT 1")).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(5, "Ana", "Reyes", "ana@example.com", "0917", "landlord", "hash", "email", nil, created, nil))

	u, err := repo.GetByEmail(context.Background(), "Ana@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "landlord", u.Role)
	assert.Equal(t, "Ana Reyes", u.FullName())
	assert.Nil(t, u.ProfilePicture)
	assert.Nil(t, u.LastLogin)
}

func TestUserRepo_GetByEmail_NotFound(t *testing.T) {
	repo, mock := newUserMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepo_SetProfilePicture_ReturnsPrevious(t *testing.T) {
	repo, mock := newUserMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT profile_picture FROM users WHERE id=? FOR UPDATE")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"profile_picture"}).AddRow("uploads/profiles/old.png"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET profile_picture=? WHERE id=?")).
		WithArgs("uploads/profiles/new.png", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	old, err := repo.SetProfilePicture(context.Background(), 5, "uploads/profiles/new.png")
	require.NoError(t, err)
	require.NotNil(t, old)
	assert.Equal(t, "uploads/profiles/old.png", *old)
	require.NoError(t, mock.ExpectationsWereMet())
}
