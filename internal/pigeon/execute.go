package pigeon

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vk/pigeon/internal/ctxlog"
)

var tracer = otel.Tracer("pigeon")

// Execute resolves the action set and runs every action once, in order,
// against a copy of initial. It returns the attributes as left by the last
// action. The caller's map is never modified.
//
// The first failure stops the run and is returned with nil attributes.
// The context is checked before each action; compute functions receive it
// and are expected to honour it themselves.
func (p *Pigeon) Execute(ctx context.Context, initial Attributes) (Attributes, error) {
	actions, observer := p.snapshot()
	order, err := resolve(actions)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "pigeon.Execute",
		trace.WithAttributes(attribute.Int("pigeon.actions", len(order))),
	)
	defer span.End()

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Execution started.", "actions", len(order))

	attrs := initial.Clone()
	for _, a := range order {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "context canceled")
			return nil, fmt.Errorf("execution aborted before action %q: %w", a.Name, err)
		}

		start := time.Now()
		err := run(ctx, a, attrs)
		if observer != nil {
			observer(ctx, a.Name, time.Since(start), err)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Debug("Execution failed.", "action", a.Name, "error", err)
			return nil, err
		}
	}

	logger.Debug("Execution finished.", "attributes", len(attrs))
	return attrs, nil
}

// run binds the action's arguments, calls its compute function and stores
// the result.
func run(ctx context.Context, a Action, attrs Attributes) (err error) {
	ctx, span := tracer.Start(ctx, "pigeon.Action",
		trace.WithAttributes(
			attribute.String("pigeon.action", a.Name),
			attribute.String("pigeon.provide", string(a.Provide)),
		),
	)
	defer span.End()

	args := make([]Value, len(a.Requires))
	for i, key := range a.Requires {
		v, ok := attrs[key]
		if !ok {
			err := &MissingAttributeError{Action: a.Name, Key: key}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		args[i] = v
	}

	ctxlog.FromContext(ctx).Debug("Running action.", "action", a.Name, "requires", a.Requires, "provide", a.Provide)

	out, err := call(ctx, a, args)
	if err != nil {
		err = &ComputeError{Action: a.Name, Provide: a.Provide, Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if a.HasProvide() {
		attrs[a.Provide] = out
	}
	return nil
}

// call invokes the compute function, turning a panic into an error so that
// a misbehaving action fails the run like any other.
func call(ctx context.Context, a Action, args []Value) (out Value, err error) {
	if a.Compute == nil {
		return nil, ErrNoCompute
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return a.Compute(ctx, args)
}
