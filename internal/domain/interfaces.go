package domain

import "context"

// EmployeeRepository defines the interface for employee data access
type EmployeeRepository interface {
	Create(ctx context.Context, e *Employee) error
	GetByID(ctx context.Context, id string) (*Employee, error)
	// Update merges patch into the stored record and returns the result.
	Update(ctx context.Context, id string, patch EmployeePatch) (*Employee, error)
	// Delete removes the record and returns it as it was before removal.
	Delete(ctx context.Context, id string) (*Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	Count(ctx context.Context) (int, error)
}

// AttachmentStore turns uploads into attachment references and back.
type AttachmentStore interface {
	Kind() AttachmentKind
	// RequiredOnCreate reports whether a record must carry an attachment.
	RequiredOnCreate() bool
	Store(ctx context.Context, u Upload) (*Attachment, error)
	Resolve(ctx context.Context, a *Attachment) (ResolvedAttachment, error)
	// Release frees whatever backs the attachment. It is best-effort.
	Release(ctx context.Context, a *Attachment) error
}
