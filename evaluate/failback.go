package evaluate

import (
	"context"
	"fmt"

	"github.com/tbxark/slotflow/turn"
)

// FailbackEvaluator tries a list of evaluators for the same slot in
// order and returns the first result produced without error. Useful
// for backing a model-checked evaluator with a deterministic one.
type FailbackEvaluator struct {
	evaluators []Evaluator
}

var _ Evaluator = (*FailbackEvaluator)(nil)

func NewFailbackEvaluator(evaluators ...Evaluator) *FailbackEvaluator {
	return &FailbackEvaluator{evaluators: evaluators}
}

func (f *FailbackEvaluator) SlotName() string {
	if len(f.evaluators) == 0 {
		return ""
	}
	return f.evaluators[0].SlotName()
}

func (f *FailbackEvaluator) Prompt() string {
	if len(f.evaluators) == 0 {
		return ""
	}
	return f.evaluators[0].Prompt()
}

func (f *FailbackEvaluator) Evaluate(ctx context.Context, t *turn.Turn) (*Result, error) {
	if len(f.evaluators) == 0 {
		return nil, fmt.Errorf("no evaluators configured")
	}
	var lastErr error
	for _, evaluator := range f.evaluators {
		result, err := evaluator.Evaluate(ctx, t)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all evaluators failed: %w", lastErr)
}

func (f *FailbackEvaluator) IsValid(ctx context.Context, val *SlotValue) (Assessment, error) {
	if len(f.evaluators) == 0 {
		return Invalid, fmt.Errorf("no evaluators configured")
	}
	var lastErr error
	for _, evaluator := range f.evaluators {
		assessment, err := evaluator.IsValid(ctx, val)
		if err == nil {
			return assessment, nil
		}
		lastErr = err
	}
	return Invalid, fmt.Errorf("all evaluators failed: %w", lastErr)
}
