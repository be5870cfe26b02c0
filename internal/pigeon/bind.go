package pigeon

import (
	"context"
	"fmt"
	"reflect"
)

// The FuncN and EffectN adapters turn typed Go functions into ComputeFuncs.
// Each argument is type-asserted to its parameter type; a nil value becomes
// the parameter's zero value, and any other mismatch is an *ArgumentError.
// EffectN adapters are meant for actions without a provided key.

// Func0 adapts a function taking no attributes.
func Func0[R any](fn func(context.Context) (R, error)) ComputeFunc {
	return func(ctx context.Context, args []Value) (Value, error) {
		if err := arity(args, 0); err != nil {
			return nil, err
		}
		return fn(ctx)
	}
}

// Func1 adapts a function of one attribute.
func Func1[A, R any](fn func(context.Context, A) (R, error)) ComputeFunc {
	return func(ctx context.Context, args []Value) (Value, error) {
		if err := arity(args, 1); err != nil {
			return nil, err
		}
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		return fn(ctx, a)
	}
}

// Func2 adapts a function of two attributes.
func Func2[A, B, R any](fn func(context.Context, A, B) (R, error)) ComputeFunc {
	return func(ctx context.Context, args []Value) (Value, error) {
		if err := arity(args, 2); err != nil {
			return nil, err
		}
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		b, err := arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		return fn(ctx, a, b)
	}
}

// Func3 adapts a function of three attributes.
func Func3[A, B, C, R any](fn func(context.Context, A, B, C) (R, error)) ComputeFunc {
	return func(ctx context.Context, args []Value) (Value, error) {
		if err := arity(args, 3); err != nil {
			return nil, err
		}
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		b, err := arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		c, err := arg[C](args, 2)
		if err != nil {
			return nil, err
		}
		return fn(ctx, a, b, c)
	}
}

// Func4 adapts a function of four attributes.
func Func4[A, B, C, D, R any](fn func(context.Context, A, B, C, D) (R, error)) ComputeFunc {
	return func(ctx context.Context, args []Value) (Value, error) {
		if err := arity(args, 4); err != nil {
			return nil, err
		}
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		b, err := arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		c, err := arg[C](args, 2)
		if err != nil {
			return nil, err
		}
		d, err := arg[D](args, 3)
		if err != nil {
			return nil, err
		}
		return fn(ctx, a, b, c, d)
	}
}

// Effect2 adapts a side-effecting function of two attributes.
func Effect2[A, B any](fn func(context.Context, A, B) error) ComputeFunc {
	return Func2(func(ctx context.Context, a A, b B) (Value, error) {
		return nil, fn(ctx, a, b)
	})
}

// Effect3 adapts a side-effecting function of three attributes.
func Effect3[A, B, C any](fn func(context.Context, A, B, C) error) ComputeFunc {
	return Func3(func(ctx context.Context, a A, b B, c C) (Value, error) {
		return nil, fn(ctx, a, b, c)
	})
}

func arity(args []Value, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: want %d, got %d", ErrArity, n, len(args))
	}
	return nil
}

func arg[T any](args []Value, i int) (T, error) {
	var zero T
	if args[i] == nil {
		return zero, nil
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, &ArgumentError{Index: i, Want: reflect.TypeFor[T]().String(), Got: fmt.Sprintf("%T", args[i])}
	}
	return v, nil
}
