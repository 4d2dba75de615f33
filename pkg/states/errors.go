package states

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownState is the sentinel wrapped by UnknownStateError.
var ErrUnknownState = errors.New("unknown provider state")

// UnknownStateError is returned when no hook is registered for a state name.
type UnknownStateError struct {
	Name string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("no setup hook registered for provider state %q", e.Name)
}

func (e *UnknownStateError) Unwrap() error {
	return ErrUnknownState
}

// MissingStatesError lists contract states that have no registered hook.
type MissingStatesError struct {
	Names []string
}

func (e *MissingStatesError) Error() string {
	quoted := make([]string, len(e.Names))
	for i, n := range e.Names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return "contract declares provider states without setup hooks: " + strings.Join(quoted, ", ")
}

func (e *MissingStatesError) Unwrap() error {
	return ErrUnknownState
}
