package stepengine

import "fmt"

// UserFacingError surfaces to the DAP client as RequestFailed, message
// shown verbatim, no stack trace (§7 kind 1). Every step-precondition
// violation and ambiguity detection in this package uses this kind.
type UserFacingError struct {
	Message string
}

func (e *UserFacingError) Error() string { return e.Message }

func userf(format string, args ...interface{}) error {
	return &UserFacingError{Message: fmt.Sprintf(format, args...)}
}

// InternalError is an invariant violation — e.g. a missing frame for a
// frameId the adapter itself produced. Surfaced as a generic server
// error and logged with context (§7 kind 2).
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string { return e.Message }

func internalf(format string, args ...interface{}) error {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}
