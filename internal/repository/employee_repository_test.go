package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_profile_service/internal/domain"
)

var (
	testDOB = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	testNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	pngData = []byte{0x89, 'P', 'N', 'G'}
)

func newMockRepo(t *testing.T) (*employeeRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &employeeRepository{db: db, now: func() time.Time { return testNow }}, mock
}

func returningColumns() string {
	return strings.Join(employeeColumns, ", ")
}

func employeeRows() *sqlmock.Rows {
	return sqlmock.NewRows(employeeColumns)
}

func TestPostgresCreate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO employees (title, name, designation, dob, address, image_kind, image_content_type, image_data, image_locator, created_at, updated_at) " +
		"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id").
		WithArgs("Mr", "Ada", "Engineer", testDOB, "1 Main St", "inline", "image/png", pngData, nil, testNow, testNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	e := &domain.Employee{
		Title: "Mr", Name: "Ada", Designation: "Engineer", DOB: testDOB, Address: "1 Main St",
		Attachment: &domain.Attachment{Kind: domain.AttachmentInline, ContentType: "image/png", Data: pngData},
	}
	require.NoError(t, repo.Create(context.Background(), e))
	assert.Equal(t, "7", e.ID)
	assert.Equal(t, testNow, e.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateConstraintViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO employees (title, name, designation, dob, address, image_kind, image_content_type, image_data, image_locator, created_at, updated_at) " +
		"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id").
		WillReturnError(&pq.Error{Code: "23514", Message: "violates check constraint"})

	err := repo.Create(context.Background(), &domain.Employee{Title: "Mr", DOB: testDOB})
	var se *domain.StorageError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Error(), "check_violation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("SELECT " + returningColumns() + " FROM employees WHERE id = $1").
			WithArgs(int64(7)).
			WillReturnRows(employeeRows().AddRow(int64(7), "Mr", "Ada", "Engineer", testDOB, "1 Main St",
				"external", "image/png", nil, "/uploads/1-1-a.png", testNow, testNow))

		e, err := repo.GetByID(context.Background(), "7")
		require.NoError(t, err)
		assert.Equal(t, "7", e.ID)
		assert.Equal(t, testDOB, e.DOB)
		require.NotNil(t, e.Attachment)
		assert.Equal(t, domain.AttachmentExternal, e.Attachment.Kind)
		assert.Equal(t, "/uploads/1-1-a.png", e.Attachment.Locator)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no attachment", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("SELECT " + returningColumns() + " FROM employees WHERE id = $1").
			WithArgs(int64(8)).
			WillReturnRows(employeeRows().AddRow(int64(8), "Ms", "Grace", "Admiral", testDOB, "Navy",
				nil, nil, nil, nil, testNow, testNow))

		e, err := repo.GetByID(context.Background(), "8")
		require.NoError(t, err)
		assert.Nil(t, e.Attachment)
	})

	t.Run("missing row", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("SELECT " + returningColumns() + " FROM employees WHERE id = $1").
			WithArgs(int64(9)).
			WillReturnRows(employeeRows())

		_, err := repo.GetByID(context.Background(), "9")
		var nf *domain.NotFoundError
		assert.True(t, errors.As(err, &nf))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed id never hits the database", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		_, err := repo.GetByID(context.Background(), "not-a-number")
		var nf *domain.NotFoundError
		assert.True(t, errors.As(err, &nf))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("connection failure", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("SELECT " + returningColumns() + " FROM employees WHERE id = $1").
			WithArgs(int64(9)).
			WillReturnError(sql.ErrConnDone)

		_, err := repo.GetByID(context.Background(), "9")
		var se *domain.StorageError
		require.True(t, errors.As(err, &se))
		assert.True(t, errors.Is(err, sql.ErrConnDone))
	})
}

func TestPostgresUpdateOnlySetsSuppliedColumns(t *testing.T) {
	repo, mock := newMockRepo(t)
	addr := "2 Side St"

	mock.ExpectQuery("UPDATE employees SET address = $1, updated_at = $2 WHERE id = $3 RETURNING " + returningColumns()).
		WithArgs(addr, testNow, int64(7)).
		WillReturnRows(employeeRows().AddRow(int64(7), "Mr", "Ada", "Engineer", testDOB, addr,
			"inline", "image/png", pngData, nil, testNow, testNow))

	e, err := repo.Update(context.Background(), "7", domain.EmployeePatch{Address: &addr})
	require.NoError(t, err)
	assert.Equal(t, addr, e.Address)
	assert.Equal(t, "Ada", e.Name)
	assert.Equal(t, pngData, e.Attachment.Data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateReplacesWholeAttachment(t *testing.T) {
	repo, mock := newMockRepo(t)
	next := &domain.Attachment{Kind: domain.AttachmentExternal, ContentType: "image/jpeg", Locator: "/uploads/2-1-b.jpg"}

	mock.ExpectQuery("UPDATE employees SET image_kind = $1, image_content_type = $2, image_data = $3, image_locator = $4, updated_at = $5 WHERE id = $6 RETURNING " + returningColumns()).
		WithArgs("external", "image/jpeg", nil, "/uploads/2-1-b.jpg", testNow, int64(7)).
		WillReturnRows(employeeRows().AddRow(int64(7), "Mr", "Ada", "Engineer", testDOB, "1 Main St",
			"external", "image/jpeg", nil, "/uploads/2-1-b.jpg", testNow, testNow))

	e, err := repo.Update(context.Background(), "7", domain.EmployeePatch{Attachment: next})
	require.NoError(t, err)
	assert.Equal(t, *next, *e.Attachment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateMissing(t *testing.T) {
	repo, mock := newMockRepo(t)
	name := "Bob"

	mock.ExpectQuery("UPDATE employees SET name = $1, updated_at = $2 WHERE id = $3 RETURNING " + returningColumns()).
		WithArgs(name, testNow, int64(404)).
		WillReturnRows(employeeRows())

	_, err := repo.Update(context.Background(), "404", domain.EmployeePatch{Name: &name})
	var nf *domain.NotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDelete(t *testing.T) {
	repo, mock := newMockRepo(t)
	query := "DELETE FROM employees WHERE id = $1 RETURNING " + returningColumns()

	mock.ExpectQuery(query).
		WithArgs(int64(7)).
		WillReturnRows(employeeRows().AddRow(int64(7), "Mr", "Ada", "Engineer", testDOB, "1 Main St",
			"external", "image/png", nil, "/uploads/a.png", testNow, testNow))
	mock.ExpectQuery(query).
		WithArgs(int64(7)).
		WillReturnRows(employeeRows())

	e, err := repo.Delete(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a.png", e.Attachment.Locator)

	_, err = repo.Delete(context.Background(), "7")
	var nf *domain.NotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListAndCount(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT " + returningColumns() + " FROM employees ORDER BY id ASC LIMIT 2 OFFSET 2").
		WillReturnRows(employeeRows().
			AddRow(int64(3), "Mr", "C", "Dev", testDOB, "x", nil, nil, nil, nil, testNow, testNow).
			AddRow(int64(4), "Ms", "D", "Dev", testDOB, "y", nil, nil, nil, nil, testNow, testNow))
	mock.ExpectQuery("SELECT COUNT(*) FROM employees").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	list, err := repo.List(context.Background(), domain.EmployeeFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "3", list[0].ID)
	assert.Equal(t, "4", list[1].ID)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
