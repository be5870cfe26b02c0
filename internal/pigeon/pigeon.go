package pigeon

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Observer is notified after every action the engine runs.
type Observer func(ctx context.Context, action string, elapsed time.Duration, err error)

// Pigeon is an ordered set of actions together with the engine that runs
// them. Registration is safe for concurrent use, and any number of
// executions may run concurrently since each owns its Attributes.
type Pigeon struct {
	mu       sync.RWMutex
	actions  []Action
	observer Observer
}

// New creates an engine holding the given actions in order.
func New(actions ...Action) *Pigeon {
	p := &Pigeon{}
	for _, a := range actions {
		p.Add(a)
	}
	return p
}

// Register appends an action built from its parts. Nothing is validated
// here; problems surface when the action set is resolved. It returns the
// receiver so registrations can be chained.
func (p *Pigeon) Register(requires []Key, provide Key, fn ComputeFunc) *Pigeon {
	return p.Add(Action{Requires: requires, Provide: provide, Compute: fn})
}

// Add appends a fully described action.
func (p *Pigeon) Add(a Action) *Pigeon {
	a.Requires = slices.Clone(a.Requires)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actions = append(p.actions, a)
	return p
}

// Use lets every module register its actions.
func (p *Pigeon) Use(modules ...Module) *Pigeon {
	for _, m := range modules {
		m.Register(p)
	}
	return p
}

// Observe installs fn as the per-action observer.
func (p *Pigeon) Observe(fn Observer) *Pigeon {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observer = fn
	return p
}

// Len returns the number of registered actions.
func (p *Pigeon) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.actions)
}

// Actions returns a copy of the action set in registration order, with
// every action's Name filled in.
func (p *Pigeon) Actions() []Action {
	actions, _ := p.snapshot()
	return actions
}

// snapshot copies the action set so that a run is unaffected by actions
// registered after it started.
func (p *Pigeon) snapshot() ([]Action, Observer) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Action, len(p.actions))
	for i, a := range p.actions {
		a.Name = a.displayName(i)
		out[i] = a
	}
	return out, p.observer
}
