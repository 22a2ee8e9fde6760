package store

import "errors"

// Local precondition failures. These are returned before any remote call.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrTitleRequired    = errors.New("please enter a title")
	ErrNameRequired     = errors.New("please enter a notebook name")
)

// Lookup failures for ids that are not in the local collections.
var (
	ErrNoteNotFound     = errors.New("note not found")
	ErrNotebookNotFound = errors.New("notebook not found")
)

// OperationError reports a failed remote call behind a store operation. All
// remote failures are treated alike; Op names the user-facing action.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return "failed to " + e.Op + ": " + e.Err.Error()
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Message is the short notice shown to the user.
func (e *OperationError) Message() string {
	return "Failed to " + e.Op
}
