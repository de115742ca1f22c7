package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/slotflow/evaluate"
	"github.com/tbxark/slotflow/turn"
)

func strPtr(s string) *string {
	return &s
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithEvaluators(
			evaluate.Required("A", "Please provide A."),
			evaluate.Membership("B", "Please pick B.", []string{"x", "y"}),
		),
	}
	eng, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return eng
}

func TestFirstInvalidSlotIsElicited(t *testing.T) {
	eng := newTestEngine(t)
	tn := &turn.Turn{
		IntentName: "BookHotel",
		Slots:      map[string]*string{"A": strPtr("")},
	}

	resp, err := eng.Handle(context.Background(), tn)
	require.NoError(t, err)
	assert.Equal(t, turn.ActionElicitSlot, resp.DialogAction.Type)
	assert.Equal(t, "A", resp.DialogAction.SlotToElicit)
	assert.Equal(t, "Please provide A.", resp.DialogAction.Message)
	assert.Equal(t, "BookHotel", resp.DialogAction.IntentName)
}

func TestRejectedSlotClearedInResponse(t *testing.T) {
	eng := newTestEngine(t)
	tn := &turn.Turn{
		IntentName: "BookHotel",
		Slots:      map[string]*string{"A": strPtr("hi"), "B": strPtr("z")},
	}

	resp, err := eng.Handle(context.Background(), tn)
	require.NoError(t, err)
	assert.Equal(t, turn.ActionElicitSlot, resp.DialogAction.Type)
	assert.Equal(t, "B", resp.DialogAction.SlotToElicit)

	// The rejected slot is explicitly absent, not missing.
	value, ok := resp.DialogAction.Slots["B"]
	assert.True(t, ok)
	assert.Nil(t, value)
	assert.Equal(t, "hi", *resp.DialogAction.Slots["A"])
}

func TestAllValidDelegates(t *testing.T) {
	eng := newTestEngine(t)
	tn := &turn.Turn{
		IntentName: "BookHotel",
		Slots:      map[string]*string{"A": strPtr("hi"), "B": strPtr("x")},
	}

	resp, err := eng.Handle(context.Background(), tn)
	require.NoError(t, err)
	assert.Equal(t, turn.ActionDelegate, resp.DialogAction.Type)
	assert.Equal(t, map[string]*string{"A": strPtr("hi"), "B": strPtr("x")}, resp.DialogAction.Slots)
}

func TestElicitationFollowsRegistrationOrder(t *testing.T) {
	eng, err := New(WithEvaluators(
		evaluate.Required("First", "first?"),
		evaluate.Required("Second", "second?"),
		evaluate.Required("Third", "third?"),
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second", "Third"}, eng.SlotOrder())

	// Every slot is invalid; the first registered one is re-asked.
	tn := &turn.Turn{IntentName: "BookHotel", Slots: map[string]*string{}}
	resp, err := eng.Handle(context.Background(), tn)
	require.NoError(t, err)
	assert.Equal(t, "First", resp.DialogAction.SlotToElicit)

	// With the first filled, the second is re-asked.
	tn = &turn.Turn{IntentName: "BookHotel", Slots: map[string]*string{"First": strPtr("v")}}
	resp, err = eng.Handle(context.Background(), tn)
	require.NoError(t, err)
	assert.Equal(t, "Second", resp.DialogAction.SlotToElicit)
}

func TestRecentSummaryCountsAsValid(t *testing.T) {
	eng, err := New(WithEvaluators(evaluate.Required("C", "c?")))
	require.NoError(t, err)

	tn := &turn.Turn{
		IntentName: "BookHotel",
		Slots:      map[string]*string{"C": nil},
		RecentSummaries: []turn.Summary{
			{IntentName: "BookHotel", Slots: map[string]*string{"C": strPtr("confirmed-val")}},
		},
	}
	resp, err := eng.Handle(context.Background(), tn)
	require.NoError(t, err)
	assert.Equal(t, turn.ActionDelegate, resp.DialogAction.Type)
}

func TestHooks(t *testing.T) {
	var evaluated []string
	var assessments []evaluate.Assessment
	allValidCalls := 0

	eng := newTestEngine(t,
		WithAfterEvaluation(func(tn *turn.Turn, evaluator evaluate.Evaluator, result *evaluate.Result) {
			evaluated = append(evaluated, evaluator.SlotName())
			assessments = append(assessments, result.Assessment)
		}),
		WithAllValid(func(tn *turn.Turn) {
			allValidCalls++
		}),
	)

	// Invalid B: hook still sees both evaluations, all-valid never runs.
	tn := &turn.Turn{IntentName: "BookHotel", Slots: map[string]*string{"A": strPtr("hi"), "B": strPtr("z")}}
	_, err := eng.Handle(context.Background(), tn)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, evaluated)
	assert.Equal(t, []evaluate.Assessment{evaluate.Valid, evaluate.Invalid}, assessments)
	assert.Equal(t, 0, allValidCalls)

	// All valid: hook runs once.
	evaluated = nil
	tn = &turn.Turn{IntentName: "BookHotel", Slots: map[string]*string{"A": strPtr("hi"), "B": strPtr("x")}}
	_, err = eng.Handle(context.Background(), tn)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, evaluated)
	assert.Equal(t, 1, allValidCalls)
}

func TestCustomBuilders(t *testing.T) {
	custom := &turn.Response{DialogAction: turn.DialogAction{Type: turn.ActionConfirmIntent}}

	eng := newTestEngine(t,
		WithRejectionBuilder(func(tn *turn.Turn, evaluator evaluate.Evaluator, result *evaluate.Result) *turn.Response {
			return custom
		}),
	)
	tn := &turn.Turn{IntentName: "BookHotel", Slots: map[string]*string{}}
	resp, err := eng.Handle(context.Background(), tn)
	require.NoError(t, err)
	assert.Same(t, custom, resp)

	eng = newTestEngine(t,
		WithProceedBuilder(func(tn *turn.Turn) *turn.Response {
			return custom
		}),
	)
	tn = &turn.Turn{IntentName: "BookHotel", Slots: map[string]*string{"A": strPtr("hi"), "B": strPtr("x")}}
	resp, err = eng.Handle(context.Background(), tn)
	require.NoError(t, err)
	assert.Same(t, custom, resp)
}

func TestReplacementsAppliedToTurn(t *testing.T) {
	eng, err := New(WithEvaluators(
		evaluate.Membership("Kind", "kind?", []string{"roses"}, evaluate.WithCanonicalization()),
	))
	require.NoError(t, err)

	tn := &turn.Turn{IntentName: "OrderFlowers", Slots: map[string]*string{"Kind": strPtr("Roses")}}
	resp, err := eng.Handle(context.Background(), tn)
	require.NoError(t, err)
	assert.Equal(t, turn.ActionDelegate, resp.DialogAction.Type)
	assert.Equal(t, "roses", *tn.Slots["Kind"])
	assert.Equal(t, "roses", *resp.DialogAction.Slots["Kind"])
}

func TestMissingEvaluatorFallsBackToRequired(t *testing.T) {
	eng, err := New(WithSlotOrder("A", "B"))
	require.NoError(t, err)

	tn := &turn.Turn{IntentName: "BookHotel", Slots: map[string]*string{"A": strPtr("hi")}}
	resp, err := eng.Handle(context.Background(), tn)
	require.NoError(t, err)
	assert.Equal(t, turn.ActionElicitSlot, resp.DialogAction.Type)
	assert.Equal(t, "B", resp.DialogAction.SlotToElicit)

	// The fallback is cached; a second pass behaves the same.
	tn = &turn.Turn{IntentName: "BookHotel", Slots: map[string]*string{"A": strPtr("hi"), "B": strPtr("ok")}}
	resp, err = eng.Handle(context.Background(), tn)
	require.NoError(t, err)
	assert.Equal(t, turn.ActionDelegate, resp.DialogAction.Type)
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	_, err := New(WithEvaluators(
		evaluate.Required("A", "a?"),
		evaluate.Required("A", "again?"),
	))
	require.Error(t, err)
	assert.ErrorContains(t, err, "duplicate evaluator")
}

func TestEvaluatorErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	broken := evaluate.NewSlotEvaluator("A", "a?", func(ctx context.Context, val *evaluate.SlotValue) (evaluate.Assessment, map[string]string, error) {
		return evaluate.Invalid, nil, boom
	})
	eng, err := New(WithEvaluators(broken))
	require.NoError(t, err)

	tn := &turn.Turn{IntentName: "BookHotel", Slots: map[string]*string{"A": strPtr("hi")}}
	_, err = eng.Handle(context.Background(), tn)
	require.ErrorIs(t, err, boom)
}

func TestSessionStatePassthrough(t *testing.T) {
	eng := newTestEngine(t)
	attrs := map[string]string{"sessionId": "abc"}
	summaries := []turn.Summary{{IntentName: "Other"}}
	tn := &turn.Turn{
		IntentName:        "BookHotel",
		Slots:             map[string]*string{"A": strPtr("hi"), "B": strPtr("x")},
		SessionAttributes: attrs,
		RecentSummaries:   summaries,
	}

	resp, err := eng.Handle(context.Background(), tn)
	require.NoError(t, err)
	assert.Equal(t, attrs, resp.SessionAttributes)
	assert.Equal(t, summaries, resp.RecentSummaries)
}
