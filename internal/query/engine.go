// Package query turns listing parameters into a window over the record store.
package query

import (
	"context"
	"strconv"
	"strings"

	"github.com/locvowork/employee_profile_service/internal/domain"
)

// DefaultPageLimit is the page size used in page mode when no limit is given.
const DefaultPageLimit = 10

// Mode selects between a plain limited listing and a paginated one.
type Mode int

const (
	ModeLimit Mode = iota
	ModePage
)

// Params are parsed listing parameters. A zero Limit in limit mode means
// every record.
type Params struct {
	Mode  Mode
	Page  int
	Limit int
}

// Result is a listing. The pagination fields are only set in page mode.
type Result struct {
	Mode         Mode
	Records      []domain.Employee
	Page         int
	Limit        int
	TotalRecords int
	TotalPages   int
}

// ParseParams reads the raw limit and page query values. A present page
// selects page mode.
func ParseParams(limit, page string) (Params, error) {
	limit = strings.TrimSpace(limit)
	page = strings.TrimSpace(page)

	p := Params{Mode: ModeLimit}
	if limit != "" {
		n, err := positive("limit", limit)
		if err != nil {
			return Params{}, err
		}
		p.Limit = n
	}
	if page == "" {
		return p, nil
	}

	n, err := positive("page", page)
	if err != nil {
		return Params{}, err
	}
	p.Mode = ModePage
	p.Page = n
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	return p, nil
}

func positive(field, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.ValidationError{Field: field, Reason: "must be a whole number"}
	}
	if n < 1 {
		return 0, &domain.ValidationError{Field: field, Reason: "must be at least 1"}
	}
	return n, nil
}

// Engine runs listings against an EmployeeRepository.
type Engine struct {
	repo domain.EmployeeRepository
}

func NewEngine(repo domain.EmployeeRepository) *Engine {
	return &Engine{repo: repo}
}

func (e *Engine) List(ctx context.Context, p Params) (*Result, error) {
	if p.Mode != ModePage {
		records, err := e.repo.List(ctx, domain.EmployeeFilter{Limit: p.Limit})
		if err != nil {
			return nil, err
		}
		return &Result{Mode: ModeLimit, Records: records, Limit: p.Limit}, nil
	}

	total, err := e.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Mode:         ModePage,
		Records:      []domain.Employee{},
		Page:         p.Page,
		Limit:        p.Limit,
		TotalRecords: total,
		TotalPages:   TotalPages(total, p.Limit),
	}

	// Page <= TotalPages keeps (Page-1)*Limit below total.
	if p.Page > res.TotalPages {
		return res, nil
	}
	records, err := e.repo.List(ctx, domain.EmployeeFilter{Limit: p.Limit, Offset: (p.Page - 1) * p.Limit})
	if err != nil {
		return nil, err
	}
	res.Records = records
	return res, nil
}

// All returns every record in insertion order.
func (e *Engine) All(ctx context.Context) ([]domain.Employee, error) {
	return e.repo.List(ctx, domain.EmployeeFilter{})
}

// TotalPages is ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total-1)/limit + 1
}
