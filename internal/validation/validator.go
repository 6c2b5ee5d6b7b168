// Package validation checks submitted employee form fields against
// domain.EmployeeSchema before anything is persisted.
package validation

import (
	"strings"
	"time"

	"github.com/locvowork/employee_profile_service/internal/domain"
)

// Fields is a raw submitted field set. A key that is absent was not
// submitted; a key mapped to "" was submitted empty.
type Fields map[string]string

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date at UTC midnight. Out-of-range days and months fail.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if d, err := time.Parse(domain.DateLayout, raw); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ValidateCreate requires every schema field and returns the normalized set.
func ValidateCreate(in Fields) (domain.EmployeeFields, error) {
	var out domain.EmployeeFields
	for _, spec := range domain.EmployeeSchema {
		raw, ok := in[spec.Name]
		if !ok && spec.Required {
			return domain.EmployeeFields{}, &domain.ValidationError{Field: spec.Name, Reason: "is required"}
		}
		if err := assign(&out, spec, raw); err != nil {
			return domain.EmployeeFields{}, err
		}
	}
	return out, nil
}

// ValidatePatch checks only the submitted fields. A submitted field must
// still be non-empty and well formed.
func ValidatePatch(in Fields) (domain.EmployeePatch, error) {
	var patch domain.EmployeePatch
	for _, spec := range domain.EmployeeSchema {
		raw, ok := in[spec.Name]
		if !ok {
			continue
		}
		var f domain.EmployeeFields
		if err := assign(&f, spec, raw); err != nil {
			return domain.EmployeePatch{}, err
		}
		switch spec.Name {
		case domain.FieldTitle:
			patch.Title = &f.Title
		case domain.FieldName:
			patch.Name = &f.Name
		case domain.FieldDesignation:
			patch.Designation = &f.Designation
		case domain.FieldDOB:
			patch.DOB = &f.DOB
		case domain.FieldAddress:
			patch.Address = &f.Address
		}
	}
	return patch, nil
}

func assign(out *domain.EmployeeFields, spec domain.FieldSpec, raw string) error {
	value := strings.TrimSpace(raw)
	if value == "" {
		return &domain.ValidationError{Field: spec.Name, Reason: "must not be empty"}
	}

	switch spec.Kind {
	case domain.FieldDate:
		d, err := ParseDate(value)
		if err != nil {
			return &domain.ValidationError{Field: spec.Name, Reason: "must be a valid date (YYYY-MM-DD)"}
		}
		out.DOB = d
	case domain.FieldText:
		switch spec.Name {
		case domain.FieldTitle:
			out.Title = value
		case domain.FieldName:
			out.Name = value
		case domain.FieldDesignation:
			out.Designation = value
		case domain.FieldAddress:
			out.Address = value
		}
	}
	return nil
}
