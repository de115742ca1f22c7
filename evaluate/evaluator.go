package evaluate

import (
	"context"

	"github.com/tbxark/slotflow/turn"
)

// Assessment is the three-valued judgment of one slot's candidate.
type Assessment string

const (
	// Invalid means the candidate is not acceptable and the slot must
	// be elicited again.
	Invalid Assessment = "invalid"
	// Valid means the candidate was accepted this turn.
	Valid Assessment = "valid"
	// ValidRecent means a prior turn already confirmed a value for the
	// slot, per the turn's summary view. Recently confirmed slots are
	// never re-validated by new rules.
	ValidRecent Assessment = "valid_recent"
)

// SlotValue is the read-only view an evaluator judges: the candidate
// from the current turn, the freshest previously-summarized value for
// the same slot, the recognition detail, and the slot the runtime was
// eliciting when that summary was taken. Built fresh per evaluation
// and never persisted.
type SlotValue struct {
	Current      *string
	Recent       *string
	Detail       turn.SlotDetail
	ElicitedSlot string
}

// Result is the outcome of evaluating one slot. Replacements, when
// set, maps slot names to values the evaluator wants forced onto the
// turn (e.g. canonicalizing a near-match).
type Result struct {
	Assessment   Assessment
	Value        *SlotValue
	Replacements map[string]string
}

// Evaluator judges one named slot per turn.
type Evaluator interface {
	SlotName() string
	Prompt() string
	Evaluate(ctx context.Context, t *turn.Turn) (*Result, error)
	IsValid(ctx context.Context, val *SlotValue) (Assessment, error)
}

// CheckFunc judges a slot value that has no recent confirmation. It
// may return replacements to force onto the turn alongside a
// non-invalid assessment.
type CheckFunc func(ctx context.Context, val *SlotValue) (Assessment, map[string]string, error)

// Extract builds the evaluatable view for the named slot from a turn.
func Extract(t *turn.Turn, slot string) *SlotValue {
	val := &SlotValue{Current: t.SlotValue(slot)}
	if detail, ok := t.SlotDetails[slot]; ok {
		val.Detail = detail
	}
	if summary := t.MostRecentSummary(); summary != nil {
		val.Recent = summary.SummaryValue(slot)
		val.ElicitedSlot = summary.SlotToElicit
	}
	return val
}

// RecentlyValidated is the shared short-circuit every evaluator
// applies before its own rule: a slot whose freshest summary holds a
// value needs no further checking.
func RecentlyValidated(val *SlotValue) bool {
	return val != nil && present(val.Recent)
}

func present(v *string) bool {
	return v != nil && *v != ""
}

// SlotEvaluator is the base evaluator. The injected check only runs
// when no recent confirmation exists; with no check configured the
// slot is judged invalid.
type SlotEvaluator struct {
	name   string
	prompt string
	check  CheckFunc
}

var _ Evaluator = (*SlotEvaluator)(nil)

func NewSlotEvaluator(name, prompt string, check CheckFunc) *SlotEvaluator {
	return &SlotEvaluator{
		name:   name,
		prompt: prompt,
		check:  check,
	}
}

func (e *SlotEvaluator) SlotName() string {
	return e.name
}

func (e *SlotEvaluator) Prompt() string {
	return e.prompt
}

func (e *SlotEvaluator) Evaluate(ctx context.Context, t *turn.Turn) (*Result, error) {
	val := Extract(t, e.name)
	if RecentlyValidated(val) {
		return &Result{Assessment: ValidRecent, Value: val}, nil
	}
	if e.check == nil {
		return &Result{Assessment: Invalid, Value: val}, nil
	}
	assessment, replacements, err := e.check(WithTurn(ctx, t), val)
	if err != nil {
		return nil, err
	}
	return &Result{Assessment: assessment, Value: val, Replacements: replacements}, nil
}

func (e *SlotEvaluator) IsValid(ctx context.Context, val *SlotValue) (Assessment, error) {
	if RecentlyValidated(val) {
		return ValidRecent, nil
	}
	if e.check == nil {
		return Invalid, nil
	}
	assessment, _, err := e.check(ctx, val)
	return assessment, err
}
