package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAccountNotFound is returned at login when no account exists for the email.
	ErrAccountNotFound = errors.New("application: account not found")
	// ErrRoleMismatch is returned at login when the selected role differs from the stored role.
	ErrRoleMismatch = errors.New("application: role mismatch")
	// ErrInvalidCredentials is returned when password verification fails.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrPendingApproval is returned when an unapproved clinic staff account attempts to log in.
	ErrPendingApproval = errors.New("application: account pending approval")
	// ErrSessionExpired is returned when a presented session token is past its expiry.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a presented session token was revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
	// ErrAlreadyExists is returned when a uniqueness requirement is violated.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrMissingPetLink is returned when a staff action requires the appointment
	// to carry a linked pet and it does not.
	ErrMissingPetLink = errors.New("application: appointment has no linked pet")
)

// ValidationError captures field level validation issues plus page level
// messages that are not tied to a single field. Callers re-render the
// originating form with both.
type ValidationError struct {
	FieldErrors map[string]string
	Messages    []string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any issue was recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && (len(v.FieldErrors) > 0 || len(v.Messages) > 0)
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// addMessage records a page level message not attributable to one field.
func (v *ValidationError) addMessage(message string) {
	v.Messages = append(v.Messages, message)
}
