// Package response builds the three canonical outcomes the engine can
// hand back to the conversational runtime.
package response

import (
	"github.com/tbxark/slotflow/turn"
)

// Close builds the terminal handoff outcome. The message may be empty.
func Close(t *turn.Turn, state turn.FulfillmentState, message string) *turn.Response {
	return wrap(t, turn.DialogAction{
		Type:             turn.ActionClose,
		FulfillmentState: state,
		Message:          message,
	})
}

// Delegate builds the proceed outcome, carrying the full current slot
// mapping: continue, there is nothing further to ask.
func Delegate(t *turn.Turn) *turn.Response {
	return wrap(t, turn.DialogAction{
		Type:  turn.ActionDelegate,
		Slots: t.Slots,
	})
}

// ElicitSlot builds the re-ask outcome for one slot. The slot mapping
// is carried as-is, including a just-cleared slot as explicit null.
func ElicitSlot(t *turn.Turn, slot, prompt string) *turn.Response {
	return wrap(t, turn.DialogAction{
		Type:         turn.ActionElicitSlot,
		IntentName:   t.IntentName,
		Slots:        t.Slots,
		SlotToElicit: slot,
		Message:      prompt,
	})
}

// wrap copies session attributes and the summary view through
// unchanged. Absent stays absent; neither is defaulted to empty.
func wrap(t *turn.Turn, action turn.DialogAction) *turn.Response {
	return &turn.Response{
		SessionAttributes: t.SessionAttributes,
		RecentSummaries:   t.RecentSummaries,
		DialogAction:      action,
	}
}
