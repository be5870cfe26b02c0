package pigeon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_TopologicalOrder(t *testing.T) {
	// Registered in reverse so that registration order alone would be wrong.
	p := New().
		Add(Action{Name: "write", Requires: Keys("output", "filename"), Compute: constant(nil)}).
		Add(Action{Name: "filename", Requires: Keys("title", "date"), Provide: "filename", Compute: constant("f")}).
		Add(Action{Name: "template", Requires: Keys("title", "date", "html"), Provide: "output", Compute: constant("o")}).
		Add(Action{Name: "date", Requires: Keys("document"), Provide: "date", Compute: constant("d")}).
		Add(Action{Name: "title", Requires: Keys("document"), Provide: "title", Compute: constant("t")}).
		Add(Action{Name: "parse", Requires: Keys("html"), Provide: "document", Compute: constant("doc")}).
		Add(Action{Name: "markdown", Requires: Keys("source"), Provide: "html", Compute: constant("h")})

	order, err := p.Resolve()
	require.NoError(t, err)
	require.Len(t, order, p.Len())

	providerOf := map[Key]string{}
	for _, a := range p.Actions() {
		if a.HasProvide() {
			providerOf[a.Provide] = a.Name
		}
	}
	for i, a := range order {
		for _, k := range a.Requires {
			provider, ok := providerOf[k]
			if !ok {
				continue
			}
			assert.Less(t, indexOf(order, provider), i, "%s must run before %s", provider, a.Name)
		}
	}
}

func TestResolve_IsolatedActionsKeepRegistrationOrder(t *testing.T) {
	p := New().
		Add(Action{Name: "c", Provide: "c", Compute: constant(3)}).
		Add(Action{Name: "a", Provide: "a", Compute: constant(1)}).
		Add(Action{Name: "b", Requires: Keys("x"), Compute: constant(nil)})

	order, err := p.Resolve()
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, actionNames(order))
}

func TestResolve_Idempotent(t *testing.T) {
	p := New().
		Add(Action{Name: "sum", Requires: Keys("left", "right"), Provide: "sum", Compute: constant(0)}).
		Add(Action{Name: "right", Requires: Keys("seed"), Provide: "right", Compute: constant(0)}).
		Add(Action{Name: "left", Requires: Keys("seed"), Provide: "left", Compute: constant(0)}).
		Add(Action{Name: "log", Compute: constant(nil)})

	first, err := p.Resolve()
	require.NoError(t, err)
	second, err := p.Resolve()
	require.NoError(t, err)

	assert.Equal(t, actionNames(first), actionNames(second))
	// sum requires left before right, so left is visited first.
	assert.Equal(t, []string{"left", "right", "sum", "log"}, actionNames(first))
}

func TestResolve_Cycle(t *testing.T) {
	t.Run("two actions", func(t *testing.T) {
		var calls []string
		p := New().
			Add(Action{Name: "a", Requires: Keys("b"), Provide: "a", Compute: recorder(&calls, "a")}).
			Add(Action{Name: "b", Requires: Keys("a"), Provide: "b", Compute: recorder(&calls, "b")})

		_, err := p.Resolve()
		require.ErrorIs(t, err, ErrCycle)

		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, []string{"a", "b", "a"}, cycle.Actions)
		assert.Empty(t, calls)
	})

	t.Run("action requiring its own output", func(t *testing.T) {
		p := New().Add(Action{Name: "loop", Requires: Keys("x"), Provide: "x", Compute: constant(1)})

		_, err := p.Resolve()
		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, []string{"loop", "loop"}, cycle.Actions)
	})

	t.Run("longer cycle behind an acyclic prefix", func(t *testing.T) {
		p := New().
			Add(Action{Name: "start", Provide: "s", Compute: constant(0)}).
			Add(Action{Name: "x", Requires: Keys("s", "z"), Provide: "x", Compute: constant(0)}).
			Add(Action{Name: "y", Requires: Keys("x"), Provide: "y", Compute: constant(0)}).
			Add(Action{Name: "z", Requires: Keys("y"), Provide: "z", Compute: constant(0)})

		_, err := p.Resolve()
		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
		assert.ElementsMatch(t, []string{"x", "y", "z"}, cycle.Actions[:3])
		assert.Equal(t, cycle.Actions[0], cycle.Actions[len(cycle.Actions)-1])
		assert.NotContains(t, cycle.Actions, "start")
	})
}

func TestResolve_ProviderConflict(t *testing.T) {
	p := New().
		Add(Action{Name: "first", Provide: "total", Compute: constant(1)}).
		Add(Action{Name: "other", Provide: "other", Compute: constant(0)}).
		Add(Action{Name: "second", Provide: "total", Compute: constant(2)}).
		Add(Action{Name: "third", Provide: "total", Compute: constant(3)})

	_, err := p.Resolve()
	require.ErrorIs(t, err, ErrProviderConflict)

	var conflict *ProviderConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, Key("total"), conflict.Key)
	assert.Equal(t, []string{"first", "second", "third"}, conflict.Actions)
	assert.ErrorContains(t, err, `key "total"`)
}

func TestResolve_DefaultNames(t *testing.T) {
	p := New().
		Register(Keys("source"), "html", constant("h")).
		Register(Keys("html"), "", constant(nil))

	order, err := p.Resolve()
	require.NoError(t, err)
	assert.Equal(t, []string{"html", "action#1"}, actionNames(order))
}

func TestResolve_Empty(t *testing.T) {
	order, err := New().Resolve()
	require.NoError(t, err)
	assert.Empty(t, order)
}

func actionNames(actions []Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Name
	}
	return out
}
