package shamir

import (
	"errors"
	"fmt"
)

var (
	// ErrParameter matches every *ParameterError.
	ErrParameter = errors.New("shamir: invalid parameter")

	// ErrMismatch matches every *MismatchError.
	ErrMismatch = errors.New("shamir: share mismatch")
)

// ParameterError reports a split or join argument outside its bounds.
type ParameterError struct {
	// Param names the offending argument: "threshold", "shares" or "secret".
	Param  string
	Value  int
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("shamir: invalid %s %d: %s", e.Param, e.Value, e.Reason)
}

// Is reports whether target is ErrParameter.
func (e *ParameterError) Is(target error) bool {
	return target == ErrParameter
}

// MismatchError reports a share set that cannot be interpolated: unequal
// payload lengths, or an index that is repeated, zero, or not a field element.
type MismatchError struct {
	Index  int
	Reason string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("shamir: share %d: %s", e.Index, e.Reason)
}

// Is reports whether target is ErrMismatch.
func (e *MismatchError) Is(target error) bool {
	return target == ErrMismatch
}
