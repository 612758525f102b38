package services

import (
	"errors"
	"strings"
)

// Error classes surfaced past this layer. Shape problems never reach callers
// (they degrade to defaults) and persistence failures on derived data are
// logged and swallowed; only write-boundary invariant and validation
// violations propagate, so the caller can correct the request.
var (
	ErrValidation = errors.New("validation")
	ErrInvariant  = errors.New("invariant violation")
	ErrForbidden  = errors.New("forbidden")
)

var (
	ErrDuplicateRating = InvariantError("a rating for this order already exists")
	ErrTooManyPhotos   = InvariantError("a rating can carry at most one photo")
	ErrRatingLocked    = InvariantError("rating is past its edit window")
)

// ValidationError tags an error as caller input validation failure.
func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

// InvariantError tags an error as a write-boundary invariant violation.
func InvariantError(msg string) error {
	return errors.Join(ErrInvariant, errors.New(strings.TrimSpace(msg)))
}
