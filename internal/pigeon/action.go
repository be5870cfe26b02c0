package pigeon

import (
	"context"
	"fmt"
)

// ComputeFunc is the computation of an Action. args holds the current value
// of each required key, in the order the keys were declared.
type ComputeFunc func(ctx context.Context, args []Value) (Value, error)

// Action is one registered unit of work.
type Action struct {
	// Name identifies the action in logs and errors. Optional.
	Name string
	// Requires lists the input keys; their order is the argument order.
	Requires []Key
	// Provide is the output key. Empty means the action only has side effects.
	Provide Key
	// Compute produces the provided value from the required ones.
	Compute ComputeFunc
}

// HasProvide reports whether the action contributes a value to the attributes.
func (a Action) HasProvide() bool {
	return a.Provide != ""
}

// displayName names the action at position index of the action set.
func (a Action) displayName(index int) string {
	switch {
	case a.Name != "":
		return a.Name
	case a.HasProvide():
		return string(a.Provide)
	default:
		return fmt.Sprintf("action#%d", index)
	}
}

// Module is implemented by packages that contribute actions to an engine.
type Module interface {
	Register(p *Pigeon)
}
