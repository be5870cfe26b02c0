package pigeon

import (
	"errors"
	"strconv"

	"github.com/vk/pigeon/internal/dag"
)

// Resolve returns the actions in an order where every action comes after
// the actions providing the keys it requires. Actions the graph does not
// constrain keep their registration order, so the result is the same for
// every call on an unchanged action set.
//
// Two actions providing the same key yield a *ProviderConflictError and a
// circular dependency yields a *CycleError.
func (p *Pigeon) Resolve() ([]Action, error) {
	actions, _ := p.snapshot()
	return resolve(actions)
}

func resolve(actions []Action) ([]Action, error) {
	providers, err := providerIndex(actions)
	if err != nil {
		return nil, err
	}

	// Nodes are keyed by position; names are for people and may repeat.
	g := dag.New()
	for i := range actions {
		g.AddNode(strconv.Itoa(i))
	}
	for i, a := range actions {
		for _, key := range a.Requires {
			j, ok := providers[key]
			if !ok {
				continue
			}
			if j == i {
				return nil, &CycleError{Actions: []string{a.Name, a.Name}}
			}
			if err := g.AddEdge(strconv.Itoa(j), strconv.Itoa(i)); err != nil {
				return nil, err
			}
		}
	}

	ids, err := g.TopologicalOrder()
	if err != nil {
		var cycle *dag.CycleError
		if errors.As(err, &cycle) {
			return nil, &CycleError{Actions: names(actions, cycle.Path)}
		}
		return nil, err
	}
	return byID(actions, ids), nil
}

// providerIndex maps every provided key to the position of its action.
func providerIndex(actions []Action) (map[Key]int, error) {
	providers := make(map[Key]int, len(actions))
	var conflict *ProviderConflictError
	for i, a := range actions {
		if !a.HasProvide() {
			continue
		}
		j, dup := providers[a.Provide]
		if !dup {
			providers[a.Provide] = i
			continue
		}
		switch {
		case conflict == nil:
			conflict = &ProviderConflictError{Key: a.Provide, Actions: []string{actions[j].Name, a.Name}}
		case conflict.Key == a.Provide:
			conflict.Actions = append(conflict.Actions, a.Name)
		}
	}
	if conflict != nil {
		return nil, conflict
	}
	return providers, nil
}

func names(actions []Action, ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = actions[mustIndex(id)].Name
	}
	return out
}

func byID(actions []Action, ids []string) []Action {
	out := make([]Action, len(ids))
	for i, id := range ids {
		out[i] = actions[mustIndex(id)]
	}
	return out
}

func mustIndex(id string) int {
	i, err := strconv.Atoi(id)
	if err != nil {
		panic("pigeon: malformed node id " + id)
	}
	return i
}
