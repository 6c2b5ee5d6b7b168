package handler

import (
	"context"
	"encoding/base64"

	"github.com/locvowork/employee_profile_service/internal/domain"
)

// Presenter renders records for clients. Inline images become data URIs,
// external ones are returned as their locator.
type Presenter struct {
	store domain.AttachmentStore
}

func NewPresenter(store domain.AttachmentStore) *Presenter {
	return &Presenter{store: store}
}

func (p *Presenter) Employee(ctx context.Context, e *domain.Employee) (EmployeeResponse, error) {
	resp := EmployeeResponse{
		ID:          e.ID,
		Title:       e.Title,
		Name:        e.Name,
		Designation: e.Designation,
		DOB:         e.DOB.Format(domain.DateLayout),
		Address:     e.Address,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.Attachment == nil {
		return resp, nil
	}

	r, err := p.store.Resolve(ctx, e.Attachment)
	if err != nil {
		return EmployeeResponse{}, err
	}
	resp.ImageContentType = r.ContentType
	switch r.Kind {
	case domain.AttachmentInline:
		resp.Image = DataURI(r.ContentType, r.Data)
	default:
		resp.Image = r.Locator
	}
	return resp, nil
}

func (p *Presenter) Employees(ctx context.Context, list []domain.Employee) ([]EmployeeResponse, error) {
	out := make([]EmployeeResponse, 0, len(list))
	for i := range list {
		r, err := p.Employee(ctx, &list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// DataURI encodes bytes as an RFC 2397 data URI.
func DataURI(contentType string, data []byte) string {
	if contentType == "" {
		contentType = domain.DefaultContentType
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
