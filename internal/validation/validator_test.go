package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_profile_service/internal/domain"
)

func validFields() Fields {
	return Fields{
		"title":       "Mr",
		"name":        "Ada",
		"designation": "Engineer",
		"dob":         "1990-01-01",
		"address":     "1 Main St",
	}
}

func requireValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	assert.Equal(t, field, ve.Field)
}

func TestValidateCreate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		in := validFields()
		in["name"] = "  Ada  "

		got, err := ValidateCreate(in)
		require.NoError(t, err)
		assert.Equal(t, "Ada", got.Name)
		assert.Equal(t, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), got.DOB)
	})

	tests := []struct {
		name   string
		mutate func(Fields)
		field  string
	}{
		{"missing title", func(f Fields) { delete(f, "title") }, "title"},
		{"blank designation", func(f Fields) { f["designation"] = "   " }, "designation"},
		{"missing address", func(f Fields) { delete(f, "address") }, "address"},
		{"feb 30", func(f Fields) { f["dob"] = "2023-02-30" }, "dob"},
		{"month 13", func(f Fields) { f["dob"] = "2023-13-01" }, "dob"},
		{"day 32", func(f Fields) { f["dob"] = "2023-01-32" }, "dob"},
		{"garbage date", func(f Fields) { f["dob"] = "yesterday" }, "dob"},
		{"first offending wins", func(f Fields) { delete(f, "address"); f["name"] = "" }, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validFields()
			tt.mutate(in)
			_, err := ValidateCreate(in)
			requireValidationField(t, err, tt.field)
		})
	}
}

func TestValidatePatch(t *testing.T) {
	t.Run("only address", func(t *testing.T) {
		p, err := ValidatePatch(Fields{"address": "2 Side St"})
		require.NoError(t, err)
		require.NotNil(t, p.Address)
		assert.Equal(t, "2 Side St", *p.Address)
		assert.Nil(t, p.Title)
		assert.Nil(t, p.Name)
		assert.Nil(t, p.Designation)
		assert.Nil(t, p.DOB)
		assert.Nil(t, p.Attachment)
	})

	t.Run("nothing supplied", func(t *testing.T) {
		p, err := ValidatePatch(Fields{})
		require.NoError(t, err)
		assert.True(t, p.IsEmpty())
	})

	t.Run("supplied but empty", func(t *testing.T) {
		_, err := ValidatePatch(Fields{"title": ""})
		requireValidationField(t, err, "title")
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := ValidatePatch(Fields{"dob": "2021-04-31"})
		requireValidationField(t, err, "dob")
	})
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("1990-06-15T13:45:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("2024-02-29")
	assert.NoError(t, err)
	_, err = ParseDate("2023-02-29")
	assert.Error(t, err)
}
