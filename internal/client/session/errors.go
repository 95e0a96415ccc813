package session

import (
	"errors"
	"fmt"
)

// ErrValidation is the base class for client-side validation failures. These
// are raised before any network call is made.
var ErrValidation = errors.New("validation error")

var (
	ErrNotAuthenticated        = errors.New("not authenticated")
	ErrCurrentPasswordRequired = fmt.Errorf("%w: current password is required to set a new password", ErrValidation)
	ErrPasswordConfirmation    = fmt.Errorf("%w: password confirmation does not match", ErrValidation)
)
