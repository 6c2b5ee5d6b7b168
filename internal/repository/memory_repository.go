package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/locvowork/employee_profile_service/internal/domain"
)

// MemoryEmployeeRepository keeps employees in process memory, in insertion
// order. Used for tests and local runs without a database.
type MemoryEmployeeRepository struct {
	mu        sync.RWMutex
	employees []domain.Employee
	now       func() time.Time
}

// NewMemoryEmployeeRepository creates an empty in-memory repository.
func NewMemoryEmployeeRepository() *MemoryEmployeeRepository {
	return &MemoryEmployeeRepository{now: time.Now}
}

func (r *MemoryEmployeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	if err := ctx.Err(); err != nil {
		return &domain.StorageError{Op: "create employee", Err: err}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	e.ID = uuid.New().String()
	e.CreatedAt = now
	e.UpdatedAt = now
	r.employees = append(r.employees, cloneEmployee(*e))
	return nil
}

func (r *MemoryEmployeeRepository) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, &domain.NotFoundError{ID: id}
	}
	e := cloneEmployee(r.employees[i])
	return &e, nil
}

func (r *MemoryEmployeeRepository) Update(_ context.Context, id string, patch domain.EmployeePatch) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, &domain.NotFoundError{ID: id}
	}
	if !patch.IsEmpty() {
		patch.Apply(&r.employees[i])
		r.employees[i].UpdatedAt = r.now().UTC()
	}
	e := cloneEmployee(r.employees[i])
	return &e, nil
}

func (r *MemoryEmployeeRepository) Delete(_ context.Context, id string) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, &domain.NotFoundError{ID: id}
	}
	e := r.employees[i]
	r.employees = append(r.employees[:i:i], r.employees[i+1:]...)
	return &e, nil
}

func (r *MemoryEmployeeRepository) List(_ context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := filter.Offset
	if start < 0 {
		start = 0
	}
	if start > len(r.employees) {
		start = len(r.employees)
	}
	end := len(r.employees)
	if filter.Limit > 0 && filter.Limit < end-start {
		end = start + filter.Limit
	}

	out := make([]domain.Employee, 0, end-start)
	for _, e := range r.employees[start:end] {
		out = append(out, cloneEmployee(e))
	}
	return out, nil
}

func (r *MemoryEmployeeRepository) Count(context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.employees), nil
}

func (r *MemoryEmployeeRepository) indexOf(id string) int {
	for i := range r.employees {
		if r.employees[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneEmployee(e domain.Employee) domain.Employee {
	if e.Attachment != nil {
		a := *e.Attachment
		if a.Data != nil {
			a.Data = append([]byte(nil), a.Data...)
		}
		e.Attachment = &a
	}
	return e
}
