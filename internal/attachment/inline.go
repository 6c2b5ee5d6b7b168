// Package attachment implements the two attachment strategies: inline
// (bytes kept on the record) and external (bytes written to a Sink, the
// record keeps a locator).
package attachment

import (
	"context"
	"strings"

	"github.com/locvowork/employee_profile_service/internal/domain"
)

// InlineStore keeps the image bytes on the record itself.
type InlineStore struct{}

// NewInlineStore creates an InlineStore.
func NewInlineStore() *InlineStore {
	return &InlineStore{}
}

func (s *InlineStore) Kind() domain.AttachmentKind { return domain.AttachmentInline }

func (s *InlineStore) RequiredOnCreate() bool { return true }

// Store returns the upload unchanged as the reference.
func (s *InlineStore) Store(_ context.Context, u domain.Upload) (*domain.Attachment, error) {
	if len(u.Data) == 0 {
		return nil, &domain.ValidationError{Field: domain.FieldImage, Reason: "must not be empty"}
	}
	ct := strings.TrimSpace(u.ContentType)
	if ct == "" {
		ct = domain.DefaultContentType
	}
	data := make([]byte, len(u.Data))
	copy(data, u.Data)
	return &domain.Attachment{Kind: domain.AttachmentInline, ContentType: ct, Data: data}, nil
}

func (s *InlineStore) Resolve(_ context.Context, a *domain.Attachment) (domain.ResolvedAttachment, error) {
	return domain.ResolvedAttachment{
		Kind:        domain.AttachmentInline,
		ContentType: a.ContentType,
		Data:        a.Data,
	}, nil
}

// Release is a no-op, the bytes go away with the record.
func (s *InlineStore) Release(context.Context, *domain.Attachment) error { return nil }
