package service

import "errors"

// Error kinds. Handlers map a kind to a transport status; every specific
// error below unwraps to exactly one kind.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInvalidInput        = errors.New("invalid input")
	ErrGenerationExhausted = errors.New("could not generate unique handle")
	ErrNotAnOrganizer      = errors.New("account is not an organizer")
	ErrMatchNotFound       = errors.New("match not found")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	ErrAccountNotFound    = newError(ErrNotFound, "account not found")
	ErrNotClaimed         = newError(ErrUnauthorized, "account not claimed")
	ErrInvalidCredentials = newError(ErrUnauthorized, "invalid credentials")
	ErrRoleNotPermitted   = newError(ErrUnauthorized, "role not permitted for this operation")
	ErrAlreadyClaimed     = newError(ErrConflict, "account already claimed")
	ErrDuplicateHandle    = newError(ErrConflict, "handle already exists")
	ErrInvalidName        = newError(ErrInvalidInput, "name is required")
	ErrInvalidHandle      = newError(ErrInvalidInput, "handle must be 3-64 lowercase letters, digits or dashes")
	ErrCredentialTooShort = newError(ErrInvalidInput, "password must be at least 6 characters")
	ErrInvalidRole        = newError(ErrInvalidInput, "invalid role")
	ErrCannotDeleteSelf   = newError(ErrInvalidInput, "cannot delete yourself")

	ErrEventNotFound            = newError(ErrNotFound, "event not found")
	ErrInvalidBudget            = newError(ErrInvalidInput, "gift limit must be a non-negative number")
	ErrNothingToUpdate          = newError(ErrInvalidInput, "nothing to update")
	ErrInvalidTransition        = newError(ErrInvalidInput, "event status transition not allowed")
	ErrInsufficientParticipants = newError(ErrInvalidInput, "not enough participants (min 2)")
	ErrInvalidParticipant       = newError(ErrInvalidInput, "participant must be an existing participant account")
	ErrReshuffleNotConfirmed    = newError(ErrConflict, "event already has matches; confirm reshuffle to discard them")
	ErrAssignmentInProgress     = newError(ErrConflict, "an assignment for this event is already running")
	ErrConcurrentUpdate         = newError(ErrConflict, "event was modified concurrently, retry")
)
