package session

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoChanges        = errors.New("no changes to save")
	ErrPasswordRequired = errors.New("current password is required to change email")
	ErrNotAnImage       = errors.New("please select an image file")
	ErrImageTooLarge    = errors.New("image size should be less than 5MB")
)

// OperationError reports a failed account or storage call.
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

func (e *OperationError) Message() string {
	return "Failed to " + e.Op
}
