package viewmodel

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vango-dev/vmbase/pkg/viewmodel"

// Observer is notified when view models are created and disposed.
// Implementations must not call back into the view model.
type Observer interface {
	NodeCreated(n Node)
	NodeDisposed(n Node)
}

// Env carries the collaborators shared by a view model graph.
// A nil *Env, and any nil field, selects the default.
type Env struct {
	// Logger receives disposal failures and debug events.
	// Default: slog.Default().With("component", "viewmodel").
	Logger *slog.Logger

	// Tracer records a span per handled change.
	// Default: the global OpenTelemetry tracer provider.
	Tracer trace.Tracer

	// Observer is an optional diagnostics collaborator.
	Observer Observer
}

func (e *Env) logger() *slog.Logger {
	if e == nil || e.Logger == nil {
		return slog.Default().With("component", "viewmodel")
	}
	return e.Logger
}

func (e *Env) tracer() trace.Tracer {
	if e == nil || e.Tracer == nil {
		return otel.Tracer(tracerName)
	}
	return e.Tracer
}

func (e *Env) observer() Observer {
	if e == nil {
		return nil
	}
	return e.Observer
}
