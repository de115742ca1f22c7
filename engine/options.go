package engine

import (
	"github.com/tbxark/slotflow/evaluate"
	"github.com/tbxark/slotflow/turn"
)

// AfterEvaluationHook runs after every slot evaluation, whatever the
// assessment. Side effects only; nothing is consumed from it.
type AfterEvaluationHook func(t *turn.Turn, evaluator evaluate.Evaluator, result *evaluate.Result)

// AllValidHook runs once when every slot passed, before the proceed
// response is built.
type AllValidHook func(t *turn.Turn)

// RejectionBuilder replaces the default re-ask response for the first
// invalid slot.
type RejectionBuilder func(t *turn.Turn, evaluator evaluate.Evaluator, result *evaluate.Result) *turn.Response

// ProceedBuilder replaces the default proceed response.
type ProceedBuilder func(t *turn.Turn) *turn.Response

type options struct {
	evaluators      []evaluate.Evaluator
	slotOrder       []string
	afterEvaluation AfterEvaluationHook
	allValid        AllValidHook
	rejection       RejectionBuilder
	proceed         ProceedBuilder
}

type Option func(*options)

// WithEvaluators registers slot evaluators. Their order is the
// elicitation order unless WithSlotOrder overrides it.
func WithEvaluators(evaluators ...evaluate.Evaluator) Option {
	return func(o *options) {
		o.evaluators = append(o.evaluators, evaluators...)
	}
}

// WithSlotOrder overrides the elicitation order. Names without a
// registered evaluator get a lazily created non-absence fallback.
func WithSlotOrder(names ...string) Option {
	return func(o *options) {
		o.slotOrder = append(o.slotOrder, names...)
	}
}

func WithAfterEvaluation(hook AfterEvaluationHook) Option {
	return func(o *options) {
		o.afterEvaluation = hook
	}
}

func WithAllValid(hook AllValidHook) Option {
	return func(o *options) {
		o.allValid = hook
	}
}

func WithRejectionBuilder(builder RejectionBuilder) Option {
	return func(o *options) {
		o.rejection = builder
	}
}

func WithProceedBuilder(builder ProceedBuilder) Option {
	return func(o *options) {
		o.proceed = builder
	}
}
