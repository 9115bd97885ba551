package toolserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Dispatcher executes registered tools without blocking its caller's
// scheduling goroutine: each handler runs on its own goroutine while the
// invocation is tracked in a correlation table. Multiple invocations may be
// in flight at once and complete independently.
type Dispatcher struct {
	registry *Registry
	log      logrus.FieldLogger

	// pending maps correlation id -> tool name for the duration of one
	// invocation round-trip.
	pending sync.Map
}

// NewDispatcher creates a dispatcher over the given registry. A nil logger
// falls back to the logrus standard logger.
func NewDispatcher(registry *Registry, log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{registry: registry, log: log}
}

// InFlight reports how many invocations are currently pending on backend
// I/O.
func (d *Dispatcher) InFlight() int {
	n := 0
	d.pending.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Invoke resolves, validates, and executes one tool call. Every failure
// mode — unknown name, argument validation, backend errors, even a
// panicking handler — is converted into an error Result; Invoke never
// returns a fault that could take down the serving process. The backend is
// only contacted once name and arguments have been accepted.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]any) Result {
	reg, ok := d.registry.lookup(name)
	if !ok {
		return errorResult(fmt.Sprintf("unknown tool: %s", name))
	}

	if args == nil {
		args = map[string]any{}
	}
	if err := validateArgs(args, reg.desc.Params); err != nil {
		return errorResult(err.Error())
	}

	corrID := uuid.NewString()
	d.pending.Store(corrID, name)
	defer d.pending.Delete(corrID)

	log := d.log.WithFields(logrus.Fields{
		"tool":           name,
		"correlation_id": corrID,
	})
	log.Info("dispatching tool call")

	start := time.Now()
	done := make(chan Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- errorResult(fmt.Sprintf("tool %s panicked: %v", name, r))
			}
		}()

		data, err := reg.handler(ctx, args)
		if err != nil {
			done <- errorResult(err.Error())
			return
		}
		done <- successResult(data, args)
	}()

	select {
	case res := <-done:
		log.WithFields(logrus.Fields{
			"status":   res.Status,
			"duration": time.Since(start).String(),
		}).Info("tool call completed")
		return res
	case <-ctx.Done():
		// The backend call keeps running; we only stop waiting on it.
		log.WithField("duration", time.Since(start).String()).Warn("tool call abandoned")
		return errorResult(fmt.Sprintf("tool %s aborted: %v", name, ctx.Err()))
	}
}

// validateArgs checks required fields and primitive types against the
// descriptor schema. Unknown arguments pass through untouched.
func validateArgs(args map[string]any, schema Schema) error {
	for _, field := range schema.Required {
		if _, ok := args[field]; !ok {
			return fmt.Errorf("missing required argument: %s", field)
		}
	}

	for key, value := range args {
		prop, ok := schema.Properties[key]
		if !ok || prop.Type == "" {
			continue
		}
		if err := checkType(value, prop.Type); err != nil {
			return fmt.Errorf("argument %s: %w", key, err)
		}
	}

	return nil
}

func checkType(value any, expected string) error {
	switch expected {
	case "string":
		if _, ok := value.(string); ok {
			return nil
		}
	case "number", "integer":
		switch value.(type) {
		case float32, float64, int, int32, int64, json.Number:
			return nil
		}
	case "boolean":
		if _, ok := value.(bool); ok {
			return nil
		}
	case "object":
		if _, ok := value.(map[string]any); ok {
			return nil
		}
	case "array":
		if _, ok := value.([]any); ok {
			return nil
		}
	default:
		return nil
	}
	return fmt.Errorf("expected %s but got %T", expected, value)
}
