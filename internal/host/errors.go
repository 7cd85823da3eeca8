package host

import "fmt"

// ApplyError reports that the live panels could not be converged onto the
// saved document. The document itself is unaffected.
type ApplyError struct {
	Err error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply: %v", e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }
