// Package engine walks an ordered list of slot evaluators over one
// turn and decides whether to re-ask a slot or let the conversation
// proceed.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cloudwego/eino/callbacks"

	"github.com/tbxark/slotflow/evaluate"
	"github.com/tbxark/slotflow/response"
	"github.com/tbxark/slotflow/turn"
)

// Engine is the dialog decision engine. Configuration is immutable
// after New; an Engine may be shared across concurrent turns. The
// only mutable state is the fallback-evaluator cache, guarded by mu.
type Engine struct {
	mu         sync.Mutex
	evaluators map[string]evaluate.Evaluator
	order      []string
	opts       options
}

// New builds an engine from the given options. Registering two
// evaluators for the same slot is rejected here rather than letting
// the later one silently win.
func New(opts ...Option) (*Engine, error) {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	evaluators := make(map[string]evaluate.Evaluator, len(o.evaluators))
	order := make([]string, 0, len(o.evaluators))
	for _, evaluator := range o.evaluators {
		name := evaluator.SlotName()
		if name == "" {
			return nil, fmt.Errorf("evaluator with empty slot name")
		}
		if _, exists := evaluators[name]; exists {
			return nil, fmt.Errorf("duplicate evaluator for slot %q", name)
		}
		evaluators[name] = evaluator
		order = append(order, name)
	}
	if len(o.slotOrder) > 0 {
		order = make([]string, len(o.slotOrder))
		copy(order, o.slotOrder)
	}

	return &Engine{
		evaluators: evaluators,
		order:      order,
		opts:       o,
	}, nil
}

// SlotOrder returns the elicitation order the engine walks.
func (e *Engine) SlotOrder() []string {
	order := make([]string, len(e.order))
	copy(order, e.order)
	return order
}

// Handle evaluates the turn's slots in order and produces the next
// instruction for the runtime. The first invalid slot wins: its value
// is cleared on the turn and a re-ask response is returned without
// evaluating later slots. The engine raises no errors of its own;
// evaluator errors propagate to the caller untouched.
func (e *Engine) Handle(ctx context.Context, t *turn.Turn) (*turn.Response, error) {
	ctx = callbacks.EnsureRunInfo(ctx, "DialogEngine", "Engine")
	ctx = callbacks.OnStart(ctx, map[string]any{
		"intent": t.IntentName,
		"slots":  t.Slots,
	})

	resp, err := e.walk(ctx, t)
	if err != nil {
		callbacks.OnError(ctx, err)
		return nil, err
	}

	callbacks.OnEnd(ctx, map[string]any{
		"action":         string(resp.DialogAction.Type),
		"slot_to_elicit": resp.DialogAction.SlotToElicit,
	})
	return resp, nil
}

func (e *Engine) walk(ctx context.Context, t *turn.Turn) (*turn.Response, error) {
	for _, slot := range e.order {
		evaluator := e.resolve(slot)
		result, err := evaluator.Evaluate(ctx, t)
		if err != nil {
			return nil, err
		}
		if e.opts.afterEvaluation != nil {
			e.opts.afterEvaluation(t, evaluator, result)
		}
		if result.Assessment == evaluate.Invalid {
			slog.Debug("slot rejected", "intent", t.IntentName, "slot", slot)
			t.ClearSlot(slot)
			if e.opts.rejection != nil {
				return e.opts.rejection(t, evaluator, result), nil
			}
			return response.ElicitSlot(t, evaluator.SlotName(), evaluator.Prompt()), nil
		}
		if len(result.Replacements) > 0 {
			if err := turn.ApplyReplacements(t, result.Replacements); err != nil {
				return nil, err
			}
		}
	}

	if e.opts.allValid != nil {
		e.opts.allValid(t)
	}
	if e.opts.proceed != nil {
		return e.opts.proceed(t), nil
	}
	return response.Delegate(t), nil
}

// resolve returns the registered evaluator for the slot, substituting
// and caching a non-absence fallback when none is registered. The
// substitution is a compatibility default for orders that name slots
// without rules, not an error.
func (e *Engine) resolve(slot string) evaluate.Evaluator {
	e.mu.Lock()
	defer e.mu.Unlock()
	if evaluator, ok := e.evaluators[slot]; ok {
		return evaluator
	}
	slog.Warn("no evaluator registered for slot, falling back to non-absence check", "slot", slot)
	fallback := evaluate.Required(slot, fmt.Sprintf("Please provide a value for %s.", slot))
	e.evaluators[slot] = fallback
	return fallback
}
