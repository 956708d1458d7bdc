package entity

import "fmt"

// Error taxonomy for account operations. All types carry enough context for
// the transport layer to build a response without re-deriving it. None of
// them ever hold a plaintext password.

// ValidationError reports input that the caller can fix and resubmit.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError reports a uniqueness violation on username or email. The
// service pre-check and the store's constraint both produce this type, so
// the race between check and insert is indistinguishable to callers.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already taken", e.Field, e.Value)
}

// NotFoundError reports a lookup miss. Repositories return it for routine
// misses; the service decides whether the absence is an error to the caller.
type NotFoundError struct {
	Key   string
	Value string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("account not found by %s %q", e.Key, e.Value)
}

// UploadError wraps a blob-storage failure during an image change. The
// caller may retry.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string { return "image upload failed: " + e.Err.Error() }
func (e *UploadError) Unwrap() error { return e.Err }

// PersistenceError wraps a store failure that is neither a miss nor a
// uniqueness violation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return "persistence failure in " + e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
