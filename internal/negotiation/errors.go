package negotiation

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the negotiation flow. Handlers map these to HTTP
// statuses; everything else is an internal error.
var (
	// ErrNotFound indicates a missing timeline, session or proposal.
	ErrNotFound = errors.New("negotiation: not found")
	// ErrForbidden indicates a share-token mismatch: the resource exists
	// but the presented token does not grant access to it.
	ErrForbidden = errors.New("negotiation: access denied")
	// ErrConflict indicates a duplicate change order for a proposal.
	ErrConflict = errors.New("negotiation: already exists")
)

// ValidationError reports malformed client input.
type ValidationError struct {
	Errs []string
}

func (e *ValidationError) Error() string {
	return "negotiation: validation failed: " + strings.Join(e.Errs, "; ")
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Errs: []string{fmt.Sprintf(format, args...)}}
}
