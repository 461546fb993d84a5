package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAdminRepositoryIsAdmin(t *testing.T) {
	db, mock, cleanup := newAdminMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectQuery("SELECT is_admin FROM admins WHERE account_id").
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"is_admin"}).AddRow(true))

	isAdmin, err := repo.IsAdmin(context.Background(), "a1")
	require.NoError(t, err)
	assert.True(t, isAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryMissingRowIsNotAdmin(t *testing.T) {
	db, mock, cleanup := newAdminMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectQuery("SELECT is_admin FROM admins WHERE account_id").
		WithArgs("a2").
		WillReturnError(sql.ErrNoRows)

	isAdmin, err := repo.IsAdmin(context.Background(), "a2")
	require.NoError(t, err)
	assert.False(t, isAdmin)
}

func TestAdminRepositoryFalseFlag(t *testing.T) {
	db, mock, cleanup := newAdminMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectQuery("SELECT is_admin FROM admins WHERE account_id").
		WithArgs("a3").
		WillReturnRows(sqlmock.NewRows([]string{"is_admin"}).AddRow(false))

	isAdmin, err := repo.IsAdmin(context.Background(), "a3")
	require.NoError(t, err)
	assert.False(t, isAdmin)
}
