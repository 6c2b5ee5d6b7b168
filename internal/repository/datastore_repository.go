package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"cloud.google.com/go/datastore"

	"github.com/locvowork/employee_profile_service/internal/domain"
)

const employeeKind = "Employee"

// employeeEntity is the Cloud Datastore shape of an employee.
type employeeEntity struct {
	Title            string    `datastore:"Title"`
	Name             string    `datastore:"Name"`
	Designation      string    `datastore:"Designation"`
	DOB              time.Time `datastore:"DOB"`
	Address          string    `datastore:"Address,noindex"`
	ImageKind        string    `datastore:"ImageKind,noindex"`
	ImageContentType string    `datastore:"ImageContentType,noindex"`
	ImageData        []byte    `datastore:"ImageData,noindex"`
	ImageLocator     string    `datastore:"ImageLocator,noindex"`
	CreatedAt        time.Time `datastore:"CreatedAt"`
	UpdatedAt        time.Time `datastore:"UpdatedAt"`
}

type datastoreEmployeeRepository struct {
	client *datastore.Client
	now    func() time.Time
}

// NewDatastoreEmployeeRepository creates a Cloud Datastore backed
// EmployeeRepository. Numeric ids are allocated by Datastore.
func NewDatastoreEmployeeRepository(client *datastore.Client) domain.EmployeeRepository {
	return &datastoreEmployeeRepository{client: client, now: time.Now}
}

func (r *datastoreEmployeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	now := r.stamp()
	e.CreatedAt = now
	e.UpdatedAt = now

	ent := toEntity(e)
	key, err := r.client.Put(ctx, datastore.IncompleteKey(employeeKind, nil), &ent)
	if err != nil {
		return &domain.StorageError{Op: "create employee", Err: err}
	}
	e.ID = strconv.FormatInt(key.ID, 10)
	return nil
}

func (r *datastoreEmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	key, ok := datastoreKey(id)
	if !ok {
		return nil, &domain.NotFoundError{ID: id}
	}

	var ent employeeEntity
	if err := r.client.Get(ctx, key, &ent); err != nil {
		return nil, datastoreError("get employee", id, err)
	}
	return fromEntity(key, ent), nil
}

// Update runs get, merge and put in one transaction.
func (r *datastoreEmployeeRepository) Update(ctx context.Context, id string, patch domain.EmployeePatch) (*domain.Employee, error) {
	key, ok := datastoreKey(id)
	if !ok {
		return nil, &domain.NotFoundError{ID: id}
	}

	var updated *domain.Employee
	_, err := r.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var ent employeeEntity
		if err := tx.Get(key, &ent); err != nil {
			return err
		}
		e := fromEntity(key, ent)
		if !patch.IsEmpty() {
			patch.Apply(e)
			e.UpdatedAt = r.stamp()
			next := toEntity(e)
			if _, err := tx.Put(key, &next); err != nil {
				return err
			}
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, datastoreError("update employee", id, err)
	}
	return updated, nil
}

func (r *datastoreEmployeeRepository) Delete(ctx context.Context, id string) (*domain.Employee, error) {
	key, ok := datastoreKey(id)
	if !ok {
		return nil, &domain.NotFoundError{ID: id}
	}

	var deleted *domain.Employee
	_, err := r.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var ent employeeEntity
		if err := tx.Get(key, &ent); err != nil {
			return err
		}
		deleted = fromEntity(key, ent)
		return tx.Delete(key)
	})
	if err != nil {
		return nil, datastoreError("delete employee", id, err)
	}
	return deleted, nil
}

func (r *datastoreEmployeeRepository) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	q := datastore.NewQuery(employeeKind).Order("CreatedAt").Order("__key__")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var ents []employeeEntity
	keys, err := r.client.GetAll(ctx, q, &ents)
	if err != nil {
		return nil, &domain.StorageError{Op: "list employees", Err: err}
	}

	employees := make([]domain.Employee, 0, len(keys))
	for i, key := range keys {
		employees = append(employees, *fromEntity(key, ents[i]))
	}
	return employees, nil
}

func (r *datastoreEmployeeRepository) Count(ctx context.Context) (int, error) {
	keys, err := r.client.GetAll(ctx, datastore.NewQuery(employeeKind).KeysOnly(), nil)
	if err != nil {
		return 0, &domain.StorageError{Op: "count employees", Err: err}
	}
	return len(keys), nil
}

// stamp truncates to the microsecond precision Datastore keeps.
func (r *datastoreEmployeeRepository) stamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

func datastoreKey(id string) (*datastore.Key, bool) {
	n, ok := parseID(id)
	if !ok {
		return nil, false
	}
	return datastore.IDKey(employeeKind, n, nil), true
}

func datastoreError(op, id string, err error) error {
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return &domain.NotFoundError{ID: id}
	}
	return &domain.StorageError{Op: op, Err: err}
}

func toEntity(e *domain.Employee) employeeEntity {
	ent := employeeEntity{
		Title:       e.Title,
		Name:        e.Name,
		Designation: e.Designation,
		DOB:         e.DOB,
		Address:     e.Address,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if a := e.Attachment; a != nil {
		ent.ImageKind = string(a.Kind)
		ent.ImageContentType = a.ContentType
		ent.ImageData = a.Data
		ent.ImageLocator = a.Locator
	}
	return ent
}

func fromEntity(key *datastore.Key, ent employeeEntity) *domain.Employee {
	dob := ent.DOB.UTC()
	e := &domain.Employee{
		ID:          strconv.FormatInt(key.ID, 10),
		Title:       ent.Title,
		Name:        ent.Name,
		Designation: ent.Designation,
		DOB:         time.Date(dob.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, time.UTC),
		Address:     ent.Address,
		CreatedAt:   ent.CreatedAt.UTC(),
		UpdatedAt:   ent.UpdatedAt.UTC(),
	}
	if ent.ImageKind != "" {
		e.Attachment = &domain.Attachment{
			Kind:        domain.AttachmentKind(ent.ImageKind),
			ContentType: ent.ImageContentType,
			Data:        ent.ImageData,
			Locator:     ent.ImageLocator,
		}
	}
	return e
}
