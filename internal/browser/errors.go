package browser

import (
	"errors"
	"fmt"
)

var (
	// ErrElementNotFound is returned when an index does not exist on the current page.
	ErrElementNotFound = errors.New("element not found; indexes change after every page update")
	// ErrNoOption is returned when a select has no option matching the requested value.
	ErrNoOption = errors.New("no matching option")
	// ErrNoFileInput is returned when no file input can be resolved for an upload.
	ErrNoFileInput = errors.New("no file input found for element")
	// ErrClosed is returned for actions on a closed session.
	ErrClosed = errors.New("browser session closed")
)

// ActionError describes a failed browser action.
type ActionError struct {
	Action string
	Index  int // -1 when the action has no target element
	Cause  error
}

func (e *ActionError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s on element %d failed: %v", e.Action, e.Index, e.Cause)
	}
	return fmt.Sprintf("%s failed: %v", e.Action, e.Cause)
}

func (e *ActionError) Unwrap() error {
	return e.Cause
}
