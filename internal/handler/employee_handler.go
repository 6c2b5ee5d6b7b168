package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_profile_service/internal/domain"
	"github.com/locvowork/employee_profile_service/internal/export"
	"github.com/locvowork/employee_profile_service/internal/query"
	"github.com/locvowork/employee_profile_service/internal/service"
	"github.com/locvowork/employee_profile_service/internal/service/serviceutils"
	"github.com/locvowork/employee_profile_service/internal/validation"
)

type EmployeeHandler struct {
	svc       service.EmployeeService
	presenter *Presenter
	exporter  *export.Exporter
}

func NewEmployeeHandler(svc service.EmployeeService, presenter *Presenter, exporter *export.Exporter) *EmployeeHandler {
	return &EmployeeHandler{svc: svc, presenter: presenter, exporter: exporter}
}

func (h *EmployeeHandler) CreateHandler(c echo.Context) error {
	fields, upload, err := readForm(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	emp, err := h.svc.Create(c.Request().Context(), fields, upload)
	if err != nil {
		return respondError(c, "Failed to create employee", err)
	}
	return h.respondEmployee(c, http.StatusCreated, "Employee created successfully", emp)
}

func (h *EmployeeHandler) GetHandler(c echo.Context) error {
	emp, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, "Failed to get employee", err)
	}
	return h.respondEmployee(c, http.StatusOK, "Employee retrieved successfully", emp)
}

func (h *EmployeeHandler) UpdateHandler(c echo.Context) error {
	fields, upload, err := readForm(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	emp, err := h.svc.Update(c.Request().Context(), c.Param("id"), fields, upload)
	if err != nil {
		return respondError(c, "Failed to update employee", err)
	}
	return h.respondEmployee(c, http.StatusOK, "Employee updated successfully", emp)
}

func (h *EmployeeHandler) DeleteHandler(c echo.Context) error {
	emp, err := h.svc.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, "Failed to delete employee", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee deleted successfully", DeleteResponse{ID: emp.ID})
}

func (h *EmployeeHandler) ListHandler(c echo.Context) error {
	params, err := query.ParseParams(c.QueryParam("limit"), c.QueryParam("page"))
	if err != nil {
		return respondError(c, "Invalid pagination parameters", err)
	}

	ctx := c.Request().Context()
	res, err := h.svc.List(ctx, params)
	if err != nil {
		return respondError(c, "Failed to list employees", err)
	}

	records, err := h.presenter.Employees(ctx, res.Records)
	if err != nil {
		return respondError(c, "Failed to render employees", err)
	}
	if res.Mode != query.ModePage {
		return serviceutils.ResponseSuccess(c, http.StatusOK, "Employees listed successfully", records)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employees listed successfully", PageResponse{
		Records:      records,
		Page:         res.Page,
		Limit:        res.Limit,
		TotalRecords: res.TotalRecords,
		TotalPages:   res.TotalPages,
	})
}

// ExportHandler streams every record as an xlsx workbook.
func (h *EmployeeHandler) ExportHandler(c echo.Context) error {
	employees, err := h.svc.All(c.Request().Context())
	if err != nil {
		return respondError(c, "Failed to load employees", err)
	}

	data, err := h.exporter.ToBytes(employees)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to generate excel file", err)
	}

	c.Response().Header().Set("Content-Disposition", `attachment; filename="employees.xlsx"`)
	c.Response().Header().Set("Content-Length", strconv.Itoa(len(data)))
	return c.Blob(http.StatusOK, export.ContentType, data)
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *EmployeeHandler) respondEmployee(c echo.Context, status int, msg string, emp *domain.Employee) error {
	resp, err := h.presenter.Employee(c.Request().Context(), emp)
	if err != nil {
		return respondError(c, "Failed to render employee", err)
	}
	return serviceutils.ResponseSuccess(c, status, msg, resp)
}

// respondError maps domain errors to HTTP statuses.
func respondError(c echo.Context, msg string, err error) error {
	var (
		ve *domain.ValidationError
		te *domain.AttachmentTypeError
		nf *domain.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		return serviceutils.ResponseError(c, http.StatusBadRequest, msg, err)
	case errors.As(err, &te):
		return serviceutils.ResponseError(c, http.StatusUnsupportedMediaType, msg, err)
	case errors.As(err, &nf):
		return serviceutils.ResponseError(c, http.StatusNotFound, msg, err)
	default:
		return serviceutils.ResponseError(c, http.StatusInternalServerError, msg, err)
	}
}

// readForm collects the submitted schema fields and the optional image.
// Only fields present in the form end up in the returned set.
func readForm(c echo.Context) (validation.Fields, *domain.Upload, error) {
	form, err := c.FormParams()
	if err != nil {
		return nil, nil, err
	}
	fields := validation.Fields{}
	for _, spec := range domain.EmployeeSchema {
		if vals, ok := form[spec.Name]; ok && len(vals) > 0 {
			fields[spec.Name] = vals[0]
		}
	}

	fh, err := c.FormFile(domain.FieldImage)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return fields, nil, nil
		}
		return nil, nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read upload: %w", err)
	}
	return fields, &domain.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	}, nil
}
