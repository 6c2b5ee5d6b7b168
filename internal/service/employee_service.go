package service

import (
	"context"

	"github.com/locvowork/employee_profile_service/internal/domain"
	"github.com/locvowork/employee_profile_service/internal/logger"
	"github.com/locvowork/employee_profile_service/internal/query"
	"github.com/locvowork/employee_profile_service/internal/validation"
)

// EmployeeService is the record lifecycle exposed to transports.
type EmployeeService interface {
	Create(ctx context.Context, fields validation.Fields, upload *domain.Upload) (*domain.Employee, error)
	Get(ctx context.Context, id string) (*domain.Employee, error)
	Update(ctx context.Context, id string, fields validation.Fields, upload *domain.Upload) (*domain.Employee, error)
	Delete(ctx context.Context, id string) (*domain.Employee, error)
	List(ctx context.Context, params query.Params) (*query.Result, error)
	All(ctx context.Context) ([]domain.Employee, error)
}

type employeeService struct {
	repo   domain.EmployeeRepository
	store  domain.AttachmentStore
	engine *query.Engine
}

// NewEmployeeService wires a record store and an attachment strategy.
func NewEmployeeService(repo domain.EmployeeRepository, store domain.AttachmentStore) EmployeeService {
	return &employeeService{
		repo:   repo,
		store:  store,
		engine: query.NewEngine(repo),
	}
}

func (s *employeeService) Create(ctx context.Context, fields validation.Fields, upload *domain.Upload) (*domain.Employee, error) {
	valid, err := validation.ValidateCreate(fields)
	if err != nil {
		return nil, err
	}
	if upload == nil && s.store.RequiredOnCreate() {
		return nil, &domain.ValidationError{Field: domain.FieldImage, Reason: "is required"}
	}

	var att *domain.Attachment
	if upload != nil {
		if att, err = s.store.Store(ctx, *upload); err != nil {
			return nil, err
		}
	}

	e := domain.NewEmployee(valid, att)
	if err := s.repo.Create(ctx, e); err != nil {
		s.release(ctx, att, "create failed")
		return nil, err
	}
	logger.InfoLog(ctx, "Employee %s created", e.ID)
	return e, nil
}

func (s *employeeService) Get(ctx context.Context, id string) (*domain.Employee, error) {
	return s.repo.GetByID(ctx, id)
}

// Update merges the supplied fields. A new upload replaces the current
// attachment, which is released once the record points at the new one.
func (s *employeeService) Update(ctx context.Context, id string, fields validation.Fields, upload *domain.Upload) (*domain.Employee, error) {
	patch, err := validation.ValidatePatch(fields)
	if err != nil {
		return nil, err
	}
	if upload == nil {
		return s.repo.Update(ctx, id, patch)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Attachment, err = s.store.Store(ctx, *upload); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		s.release(ctx, patch.Attachment, "update failed")
		return nil, err
	}
	s.release(ctx, current.Attachment, "replaced")
	logger.InfoLog(ctx, "Employee %s updated", id)
	return updated, nil
}

func (s *employeeService) Delete(ctx context.Context, id string) (*domain.Employee, error) {
	e, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.release(ctx, e.Attachment, "deleted")
	logger.InfoLog(ctx, "Employee %s deleted", id)
	return e, nil
}

func (s *employeeService) List(ctx context.Context, params query.Params) (*query.Result, error) {
	return s.engine.List(ctx, params)
}

func (s *employeeService) All(ctx context.Context) ([]domain.Employee, error) {
	return s.engine.All(ctx)
}

// release frees an attachment that no record references any more.
// Failures are logged, never returned.
func (s *employeeService) release(ctx context.Context, a *domain.Attachment, reason string) {
	if a == nil {
		return
	}
	if err := s.store.Release(ctx, a); err != nil {
		logger.WarnLog(ctx, "Failed to release attachment (%s): %v", reason, err)
	}
}
