package pigeon

import (
	"context"
	"strings"
)

// upper and bang are the computations of the two-step reference pipeline.
var (
	upper = Func1(func(_ context.Context, s string) (string, error) { return strings.ToUpper(s), nil })
	bang  = Func1(func(_ context.Context, s string) (string, error) { return s + "!", nil })
)

// constant returns a compute function ignoring its inputs.
func constant(v Value) ComputeFunc {
	return func(context.Context, []Value) (Value, error) { return v, nil }
}

// recorder returns a compute function appending name to *log on every call.
func recorder(log *[]string, name string) ComputeFunc {
	return func(context.Context, []Value) (Value, error) {
		*log = append(*log, name)
		return name, nil
	}
}

func indexOf(order []Action, name string) int {
	for i, a := range order {
		if a.Name == name {
			return i
		}
	}
	return -1
}
