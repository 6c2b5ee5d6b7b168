package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"

	"github.com/locvowork/employee_profile_service/internal/domain"
	"github.com/locvowork/employee_profile_service/internal/repository/builder"
)

const employeeTable = "employees"

var employeeColumns = []string{
	"id", "title", "name", "designation", "dob", "address",
	"image_kind", "image_content_type", "image_data", "image_locator",
	"created_at", "updated_at",
}

type employeeRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewEmployeeRepository creates a postgres backed EmployeeRepository
func NewEmployeeRepository(db *sql.DB) domain.EmployeeRepository {
	return &employeeRepository{db: db, now: time.Now}
}

func (r *employeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	kind, ct, data, locator := attachmentColumns(e.Attachment)
	now := r.now().UTC()

	query, args := builder.NewSQLBuilder().
		Insert(employeeTable, "title", "name", "designation", "dob", "address",
			"image_kind", "image_content_type", "image_data", "image_locator",
			"created_at", "updated_at").
		Values(e.Title, e.Name, e.Designation, e.DOB, e.Address, kind, ct, data, locator, now, now).
		Returning("id").
		Build()

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return storageError("create employee", err)
	}
	e.ID = strconv.FormatInt(id, 10)
	e.CreatedAt = now
	e.UpdatedAt = now
	return nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, &domain.NotFoundError{ID: id}
	}

	query, args := builder.NewSQLBuilder().
		Select(employeeColumns...).
		From(employeeTable).
		Where("id = ?", n).
		Build()

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, rowError("get employee", id, err)
	}
	return e, nil
}

// Update issues a single UPDATE that only sets the supplied columns.
func (r *employeeRepository) Update(ctx context.Context, id string, patch domain.EmployeePatch) (*domain.Employee, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}
	n, ok := parseID(id)
	if !ok {
		return nil, &domain.NotFoundError{ID: id}
	}

	b := builder.NewSQLBuilder().Update(employeeTable)
	if patch.Title != nil {
		b.Set("title", *patch.Title)
	}
	if patch.Name != nil {
		b.Set("name", *patch.Name)
	}
	if patch.Designation != nil {
		b.Set("designation", *patch.Designation)
	}
	if patch.DOB != nil {
		b.Set("dob", *patch.DOB)
	}
	if patch.Address != nil {
		b.Set("address", *patch.Address)
	}
	if patch.Attachment != nil {
		kind, ct, data, locator := attachmentColumns(patch.Attachment)
		b.Set("image_kind", kind).
			Set("image_content_type", ct).
			Set("image_data", data).
			Set("image_locator", locator)
	}
	query, args := b.Set("updated_at", r.now().UTC()).
		Where("id = ?", n).
		Returning(employeeColumns...).
		Build()

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, rowError("update employee", id, err)
	}
	return e, nil
}

func (r *employeeRepository) Delete(ctx context.Context, id string) (*domain.Employee, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, &domain.NotFoundError{ID: id}
	}

	query, args := builder.NewSQLBuilder().
		Delete(employeeTable).
		Where("id = ?", n).
		Returning(employeeColumns...).
		Build()

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, rowError("delete employee", id, err)
	}
	return e, nil
}

func (r *employeeRepository) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	b := builder.NewSQLBuilder()
	b.Select(employeeColumns...).
		From(employeeTable).
		OrderBy("id ASC")

	if filter.Limit > 0 {
		b.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		b.Offset(filter.Offset)
	}

	query, args := b.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("list employees", err)
	}
	defer rows.Close()

	employees := []domain.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, storageError("scan employee", err)
		}
		employees = append(employees, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list employees", err)
	}
	return employees, nil
}

func (r *employeeRepository) Count(ctx context.Context) (int, error) {
	query, args := builder.NewSQLBuilder().Select("COUNT(*)").From(employeeTable).Build()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, storageError("count employees", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	var (
		e                 domain.Employee
		id                int64
		kind, ct, locator sql.NullString
		data              []byte
	)
	err := row.Scan(&id, &e.Title, &e.Name, &e.Designation, &e.DOB, &e.Address,
		&kind, &ct, &data, &locator, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	e.ID = strconv.FormatInt(id, 10)
	e.DOB = time.Date(e.DOB.Year(), e.DOB.Month(), e.DOB.Day(), 0, 0, 0, 0, time.UTC)
	if kind.Valid {
		e.Attachment = &domain.Attachment{
			Kind:        domain.AttachmentKind(kind.String),
			ContentType: ct.String,
			Data:        data,
			Locator:     locator.String,
		}
	}
	return &e, nil
}

func attachmentColumns(a *domain.Attachment) (kind, ct sql.NullString, data interface{}, locator sql.NullString) {
	if a == nil {
		return
	}
	kind = sql.NullString{String: string(a.Kind), Valid: true}
	ct = sql.NullString{String: a.ContentType, Valid: true}
	if len(a.Data) > 0 {
		data = a.Data
	}
	locator = sql.NullString{String: a.Locator, Valid: a.Locator != ""}
	return kind, ct, data, locator
}

// parseID rejects ids postgres could never have issued.
func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func rowError(op, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{ID: id}
	}
	return storageError(op, err)
}

func storageError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		err = fmt.Errorf("%s (%s): %w", pqErr.Code.Name(), pqErr.Code, err)
	}
	return &domain.StorageError{Op: op, Err: err}
}
