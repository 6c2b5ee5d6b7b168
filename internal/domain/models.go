package domain

import "time"

// DateLayout is the wire format of Employee.DOB.
const DateLayout = "2006-01-02"

// DefaultContentType is used for inline attachments uploaded without a type.
const DefaultContentType = "application/octet-stream"

// AttachmentKind tells which attachment strategy produced a reference.
type AttachmentKind string

const (
	AttachmentInline   AttachmentKind = "inline"
	AttachmentExternal AttachmentKind = "external"
)

// Attachment is the reference kept on a record. Inline attachments carry
// Data, external ones carry Locator. ContentType is set for both.
type Attachment struct {
	Kind        AttachmentKind `json:"kind"`
	ContentType string         `json:"contentType"`
	Data        []byte         `json:"data,omitempty"`
	Locator     string         `json:"locator,omitempty"`
}

// Upload is an image file as received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ResolvedAttachment is what a client needs to display an attachment:
// the bytes for inline attachments, the locator for external ones.
type ResolvedAttachment struct {
	Kind        AttachmentKind
	ContentType string
	Data        []byte
	Locator     string
}

// Employee is the single record kind managed by the service.
type Employee struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Name        string      `json:"name"`
	Designation string      `json:"designation"`
	DOB         time.Time   `json:"dob"`
	Address     string      `json:"address"`
	Attachment  *Attachment `json:"attachment,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// EmployeeFields is a validated field set for creation.
type EmployeeFields struct {
	Title       string
	Name        string
	Designation string
	DOB         time.Time
	Address     string
}

// NewEmployee builds an unsaved record from validated fields.
func NewEmployee(f EmployeeFields, a *Attachment) *Employee {
	return &Employee{
		Title:       f.Title,
		Name:        f.Name,
		Designation: f.Designation,
		DOB:         f.DOB,
		Address:     f.Address,
		Attachment:  a,
	}
}

// EmployeePatch is a partial update. Nil fields are left untouched.
type EmployeePatch struct {
	Title       *string
	Name        *string
	Designation *string
	DOB         *time.Time
	Address     *string
	Attachment  *Attachment
}

// IsEmpty reports whether the patch changes nothing.
func (p EmployeePatch) IsEmpty() bool {
	return p.Title == nil && p.Name == nil && p.Designation == nil &&
		p.DOB == nil && p.Address == nil && p.Attachment == nil
}

// Apply merges the supplied fields into e. The ID is never touched and an
// absent attachment keeps the current one.
func (p EmployeePatch) Apply(e *Employee) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Designation != nil {
		e.Designation = *p.Designation
	}
	if p.DOB != nil {
		e.DOB = *p.DOB
	}
	if p.Address != nil {
		e.Address = *p.Address
	}
	if p.Attachment != nil {
		a := *p.Attachment
		e.Attachment = &a
	}
}

// EmployeeFilter defines the window of a listing.
// A zero Limit means no limit.
type EmployeeFilter struct {
	Limit  int
	Offset int
}
