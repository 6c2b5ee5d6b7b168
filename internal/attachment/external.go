package attachment

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/locvowork/employee_profile_service/internal/domain"
)

// Sink is the byte storage behind an ExternalStore.
type Sink interface {
	// Put stores data under name in one step and returns a fetchable locator.
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
	// Delete removes the object a locator points to. Missing objects are ignored.
	Delete(ctx context.Context, locator string) error
}

// ExternalStore writes images to a Sink and keeps only the locator.
type ExternalStore struct {
	sink Sink
	seq  uint64
	now  func() time.Time
}

// NewExternalStore creates an ExternalStore on top of sink.
func NewExternalStore(sink Sink) *ExternalStore {
	return &ExternalStore{sink: sink, now: time.Now}
}

func (s *ExternalStore) Kind() domain.AttachmentKind { return domain.AttachmentExternal }

func (s *ExternalStore) RequiredOnCreate() bool { return false }

// Store rejects anything that is not image/* before writing a byte.
func (s *ExternalStore) Store(ctx context.Context, u domain.Upload) (*domain.Attachment, error) {
	ct, err := imageMediaType(u.ContentType)
	if err != nil {
		return nil, err
	}
	if len(u.Data) == 0 {
		return nil, &domain.ValidationError{Field: domain.FieldImage, Reason: "must not be empty"}
	}

	locator, err := s.sink.Put(ctx, s.uniqueName(u.Filename), ct, u.Data)
	if err != nil {
		return nil, &domain.StorageError{Op: "store attachment", Err: err}
	}
	return &domain.Attachment{Kind: domain.AttachmentExternal, ContentType: ct, Locator: locator}, nil
}

// Resolve hands the locator back; clients fetch the bytes themselves.
func (s *ExternalStore) Resolve(_ context.Context, a *domain.Attachment) (domain.ResolvedAttachment, error) {
	return domain.ResolvedAttachment{
		Kind:        domain.AttachmentExternal,
		ContentType: a.ContentType,
		Locator:     a.Locator,
	}, nil
}

func (s *ExternalStore) Release(ctx context.Context, a *domain.Attachment) error {
	if a == nil || a.Locator == "" {
		return nil
	}
	if err := s.sink.Delete(ctx, a.Locator); err != nil {
		return &domain.StorageError{Op: "release attachment", Err: err}
	}
	return nil
}

// uniqueName prefixes the original file name with a time token and a
// per-process sequence number.
func (s *ExternalStore) uniqueName(filename string) string {
	n := atomic.AddUint64(&s.seq, 1)
	return fmt.Sprintf("%d-%d-%s", s.now().UnixNano(), n, sanitizeFilename(filename))
}

func imageMediaType(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", &domain.AttachmentTypeError{ContentType: raw}
	}
	return mediaType, nil
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "upload"
	}
	return out
}
