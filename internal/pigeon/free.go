package pigeon

import "errors"

// Free returns the keys some action requires but no action provides, in
// the order they first appear. These are the keys the initial Attributes
// of an execution must supply. Free does not need the graph to be acyclic.
func (p *Pigeon) Free() []Key {
	actions, _ := p.snapshot()
	return free(actions)
}

func free(actions []Action) []Key {
	provided := make(map[Key]struct{}, len(actions))
	for _, a := range actions {
		if a.HasProvide() {
			provided[a.Provide] = struct{}{}
		}
	}

	seen := make(map[Key]struct{})
	var out []Key
	for _, a := range actions {
		for _, k := range a.Requires {
			if _, ok := provided[k]; ok {
				continue
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

// Validate checks that initial supplies every free key. Each uncovered key
// is reported as a *MissingAttributeError naming the first action that
// requires it; several are joined with errors.Join.
func (p *Pigeon) Validate(initial Attributes) error {
	actions, _ := p.snapshot()

	var errs []error
	for _, k := range free(actions) {
		if initial.Has(k) {
			continue
		}
		errs = append(errs, &MissingAttributeError{Action: firstRequiring(actions, k), Key: k})
	}
	return errors.Join(errs...)
}

func firstRequiring(actions []Action, key Key) string {
	for _, a := range actions {
		for _, k := range a.Requires {
			if k == key {
				return a.Name
			}
		}
	}
	return ""
}
