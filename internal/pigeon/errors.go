package pigeon

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCycle is wrapped by every *CycleError.
	ErrCycle = errors.New("dependency cycle")
	// ErrProviderConflict is wrapped by every *ProviderConflictError.
	ErrProviderConflict = errors.New("provider conflict")
	// ErrMissingAttribute is wrapped by every *MissingAttributeError.
	ErrMissingAttribute = errors.New("missing attribute")
	// ErrArity is returned by typed compute adapters called with the wrong
	// number of arguments.
	ErrArity = errors.New("wrong number of arguments")
	// ErrNoCompute is reported for an action registered without a compute function.
	ErrNoCompute = errors.New("action has no compute function")
)

// CycleError reports actions that depend on each other circularly. Actions
// starts and ends with the same action name.
type CycleError struct {
	Actions []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCycle, strings.Join(e.Actions, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// ProviderConflictError reports several actions providing the same key.
type ProviderConflictError struct {
	Key     Key
	Actions []string
}

func (e *ProviderConflictError) Error() string {
	return fmt.Sprintf("%s: key %q is provided by %s", ErrProviderConflict, e.Key, strings.Join(e.Actions, ", "))
}

func (e *ProviderConflictError) Unwrap() error { return ErrProviderConflict }

// MissingAttributeError reports a required key that had no value when the
// action needing it was about to run.
type MissingAttributeError struct {
	Action string
	Key    Key
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("%s: action %q requires %q", ErrMissingAttribute, e.Action, e.Key)
}

func (e *MissingAttributeError) Unwrap() error { return ErrMissingAttribute }

// ComputeError wraps the error returned by an action's compute function.
type ComputeError struct {
	Action  string
	Provide Key
	Err     error
}

func (e *ComputeError) Error() string {
	if e.Provide == "" {
		return fmt.Sprintf("action %q: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("action %q (provides %q): %v", e.Action, e.Provide, e.Err)
}

func (e *ComputeError) Unwrap() error { return e.Err }

// ArgumentError reports an argument whose dynamic type does not match the
// parameter of a typed compute function.
type ArgumentError struct {
	Index int
	Want  string
	Got   string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument %d: want %s, got %s", e.Index, e.Want, e.Got)
}
