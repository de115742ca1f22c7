// Package slotflow routes conversational turns between a dialog
// decision handler and a fulfillment handler, translating failures
// into a terminal close so the runtime always gets a well-formed
// response.
package slotflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tbxark/slotflow/response"
	"github.com/tbxark/slotflow/turn"
)

// Handler processes one turn to completion.
type Handler interface {
	Handle(ctx context.Context, t *turn.Turn) (*turn.Response, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, t *turn.Turn) (*turn.Response, error)

func (f HandlerFunc) Handle(ctx context.Context, t *turn.Turn) (*turn.Response, error) {
	return f(ctx, t)
}

// FailureMessage is the generic text substituted when a handler fails.
const FailureMessage = "Sorry, something went wrong while handling your request."

// Router selects a handler by the turn's invocation source.
type Router struct {
	dialog      Handler
	fulfillment Handler
}

func NewRouter(dialog, fulfillment Handler) *Router {
	return &Router{
		dialog:      dialog,
		fulfillment: fulfillment,
	}
}

// Route dispatches the turn. A turn whose invocation source is outside
// the two recognized values is a hard failure and returns an error.
// Any error or panic out of the selected handler is translated into a
// Close/Failed response carrying the inbound session attributes.
func (r *Router) Route(ctx context.Context, t *turn.Turn) (*turn.Response, error) {
	handler, err := r.handler(t)
	if err != nil {
		return nil, err
	}
	resp, err := safeHandle(ctx, handler, t)
	if err != nil {
		slog.Error("turn handling failed", "intent", t.IntentName, "source", string(t.InvocationSource), "error", err)
		return response.Close(t, turn.Failed, FailureMessage), nil
	}
	return resp, nil
}

func (r *Router) handler(t *turn.Turn) (Handler, error) {
	switch t.InvocationSource {
	case turn.SourceDialog:
		if r.dialog == nil {
			return nil, fmt.Errorf("no dialog handler configured")
		}
		return r.dialog, nil
	case turn.SourceFulfillment:
		if r.fulfillment == nil {
			return nil, fmt.Errorf("no fulfillment handler configured")
		}
		return r.fulfillment, nil
	default:
		return nil, fmt.Errorf("unknown invocation source: %q", t.InvocationSource)
	}
}

func safeHandle(ctx context.Context, handler Handler, t *turn.Turn) (resp *turn.Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("recover from panic: %v", rec)
		}
	}()
	return handler.Handle(ctx, t)
}
