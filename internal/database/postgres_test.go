package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_profile_service/internal/database/migrations"
)

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 5433, User: "u", Password: "p", DBName: "hr", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=hr sslmode=disable", cfg.DSN())
}

func TestRunMigrationsUsesEmbeddedDir(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	called := false
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		called = true
		assert.Equal(t, ".", dir)
		assert.Empty(t, opts)
		return nil
	}

	require.NoError(t, RunMigrations(context.Background(), db))
	assert.True(t, called)
}

func TestRunMigrationsError(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	err = RunMigrations(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestEmbeddedMigrationsCreateEmployees(t *testing.T) {
	names, err := fs.Glob(migrations.Migrations, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	data, err := fs.ReadFile(migrations.Migrations, names[0])
	require.NoError(t, err)
	body := string(data)
	assert.True(t, strings.HasPrefix(body, "-- +goose Up"))
	assert.Contains(t, body, "CREATE TABLE IF NOT EXISTS employees")
	assert.Contains(t, body, "-- +goose Down")
}
