package domain

import "fmt"

// ValidationError reports a missing or malformed field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// AttachmentTypeError is returned when an upload is not an image.
type AttachmentTypeError struct {
	ContentType string
}

func (e *AttachmentTypeError) Error() string {
	if e.ContentType == "" {
		return "attachment has no content type, an image is required"
	}
	return fmt.Sprintf("attachment content type %q is not an image", e.ContentType)
}

// NotFoundError is returned when no employee has the requested id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("employee %q not found", e.ID)
}

// StorageError wraps a failure of the persistence backend or content sink.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
