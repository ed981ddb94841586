// Package logging defines the structured-logging interface used across the
// project, with slog and zap implementations. Both read extra fields from
// the context, so a request id attached once shows up on every line logged
// while serving that request.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// key-value pairs:
//
//	log.Info(ctx, "customer created", "customer_id", id)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}

type fieldsKey struct{}

// ContextWith returns a copy of ctx carrying extra key-value pairs for
// every log call made with it. Pairs accumulate across calls.
func ContextWith(ctx context.Context, args ...any) context.Context {
	if len(args) == 0 {
		return ctx
	}
	prev := FieldsFrom(ctx)
	fields := make([]any, 0, len(prev)+len(args))
	fields = append(fields, prev...)
	fields = append(fields, args...)
	return context.WithValue(ctx, fieldsKey{}, fields)
}

// FieldsFrom returns the pairs attached with ContextWith.
func FieldsFrom(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).([]any)
	return fields
}

// withContextFields prepends the context pairs to args.
func withContextFields(ctx context.Context, args []any) []any {
	fields := FieldsFrom(ctx)
	if len(fields) == 0 {
		return args
	}
	out := make([]any, 0, len(fields)+len(args))
	out = append(out, fields...)
	return append(out, args...)
}
