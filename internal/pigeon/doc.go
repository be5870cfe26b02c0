// Package pigeon is a small declarative dependency-graph executor.
//
// A caller registers Actions, each declaring the attribute Keys it requires
// and the single Key it provides, then asks the engine to run every action
// against an initial bag of Attributes. The engine orders the actions so
// that every action runs after the actions providing its inputs, binds the
// current value of each required key positionally to the action's compute
// function and stores the result under the provided key.
//
//	p := pigeon.New().
//	    Register([]pigeon.Key{"source"}, "html", renderMarkdown).
//	    Register([]pigeon.Key{"html"}, "output", wrapPage)
//
//	attrs, err := p.Execute(ctx, pigeon.Attributes{"source": "post.md"})
//
// Keys that some action requires but no action provides are "free": they
// must be present in the initial Attributes. Free reports them and Validate
// checks an initial bag against them before any work is done.
//
// # Failure model
//
// Execution is sequential and fail-fast. Resolution fails with a
// *CycleError when the actions depend on each other circularly and with a
// *ProviderConflictError when two actions provide the same key; in both
// cases no compute function runs. During execution a required key absent
// from the attributes yields a *MissingAttributeError and an error returned
// by a compute function is wrapped in a *ComputeError. Any failure stops the
// run; the partially filled attributes are discarded.
package pigeon
