package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrolluash/rentconnect/internal/model"
	"github.com/chrolluash/rentconnect/internal/session"
	"github.com/chrolluash/rentconnect/internal/utils"
)

func newSessionMock(t *testing.T) (*SessionRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSessionRepo(db), mock
}

var sessionCols = []string{"user_id", "email", "name", "role", "created_at", "expires_at"}

func TestSessionRepo_SaveStoresHashOnly(t *testing.T) {
	repo, mock := newSessionMock(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := &model.Session{ID: "abc", UserID: 7, Email: "l@example.com", Name: "Lan", Role: "landlord",
		CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	mock.ExpectExec(regexp.QuoteMeta("REPLACE INTO sessions")).
		WithArgs(utils.HashSessionID("abc"), 7, "l@example.com", "Lan", "landlord", now, now.Add(time.Hour)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE user_id=? AND expires_at < UTC_TIMESTAMP()")).
		WithArgs(7).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Save(context.Background(), s))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_Get(t *testing.T) {
	repo, mock := newSessionMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE id_hash=?")).
		WithArgs(utils.HashSessionID("live")).
		WillReturnRows(sqlmock.NewRows(sessionCols).AddRow(7, "l@example.com", "Lan", "landlord", now, now.Add(time.Hour)))
	s, err := repo.Get(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, "live", s.ID)
	assert.Equal(t, uint64(7), s.UserID)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE id_hash=?")).
		WillReturnRows(sqlmock.NewRows(sessionCols).AddRow(7, "l@example.com", "Lan", "landlord", now.Add(-2*time.Hour), now.Add(-time.Hour)))
	_, err = repo.Get(context.Background(), "stale")
	assert.ErrorIs(t, err, session.ErrNotFound)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE id_hash=?")).
		WillReturnRows(sqlmock.NewRows(sessionCols))
	_, err = repo.Get(context.Background(), "gone")
	assert.ErrorIs(t, err, session.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_Delete(t *testing.T) {
	repo, mock := newSessionMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE id_hash=?")).
		WithArgs(utils.HashSessionID("abc")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "abc"))
}
