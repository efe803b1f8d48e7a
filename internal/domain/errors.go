package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidSupporter     = errors.New("invalid supporter")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrStoreUnavailable     = errors.New("store unavailable")
)

var (
	ErrNameRequired   = fmt.Errorf("%w: name is required", ErrInvalidSupporter)
	ErrAmountRequired = fmt.Errorf("%w: amount is required", ErrInvalidSupporter)
	ErrInvalidAmount  = fmt.Errorf("%w: amount must be a non-negative number", ErrInvalidSupporter)
)
