package turn

// InvocationSource tells the router which handler the runtime expects
// to process the turn.
type InvocationSource string

const (
	SourceDialog      InvocationSource = "DialogCodeHook"
	SourceFulfillment InvocationSource = "FulfillmentCodeHook"
)

type ConfirmationStatus string

const (
	ConfirmationNone ConfirmationStatus = "None"
	Confirmed        ConfirmationStatus = "Confirmed"
	Denied           ConfirmationStatus = "Denied"
)

// DialogActionType is the discriminator on every outbound response.
type DialogActionType string

const (
	ActionElicitIntent  DialogActionType = "ElicitIntent"
	ActionElicitSlot    DialogActionType = "ElicitSlot"
	ActionConfirmIntent DialogActionType = "ConfirmIntent"
	ActionDelegate      DialogActionType = "Delegate"
	ActionClose         DialogActionType = "Close"
)

type FulfillmentState string

const (
	Fulfilled FulfillmentState = "Fulfilled"
	Failed    FulfillmentState = "Failed"
)

// SlotDetail carries the structured recognition detail the runtime
// attaches to a slot candidate: alternative resolutions plus the raw
// utterance the candidate was extracted from.
type SlotDetail struct {
	Resolutions   []string `json:"resolutions,omitempty"`
	OriginalValue string   `json:"originalValue,omitempty"`
}

// Turn is one exchange of conversational state with the external
// runtime. Slot values are pointers: a nil entry means the slot is
// present in the mapping but has no value yet.
//
// A Turn is owned by a single call chain for the duration of one
// invocation. The decision engine is its only writer: it may clear a
// rejected slot or merge replacement values in.
type Turn struct {
	IntentName         string                `json:"intentName"`
	InvocationSource   InvocationSource      `json:"invocationSource,omitempty"`
	Slots              map[string]*string    `json:"slots"`
	SlotDetails        map[string]SlotDetail `json:"slotDetails,omitempty"`
	ConfirmationStatus ConfirmationStatus    `json:"confirmationStatus,omitempty"`
	SessionAttributes  map[string]string     `json:"sessionAttributes,omitempty"`
	RecentSummaries    []Summary             `json:"recentIntentSummaryView,omitempty"`
}

// Summary is a snapshot of a previous turn's state for some intent,
// ordered most-recent-first in Turn.RecentSummaries.
type Summary struct {
	IntentName         string             `json:"intentName"`
	CheckpointLabel    string             `json:"checkpointLabel,omitempty"`
	Slots              map[string]*string `json:"slots,omitempty"`
	ConfirmationStatus ConfirmationStatus `json:"confirmationStatus,omitempty"`
	DialogActionType   DialogActionType   `json:"dialogActionType,omitempty"`
	FulfillmentState   FulfillmentState   `json:"fulfillmentState,omitempty"`
	SlotToElicit       string             `json:"slotToElicit,omitempty"`
}

// DialogAction is the instruction part of a response.
type DialogAction struct {
	Type             DialogActionType   `json:"type"`
	FulfillmentState FulfillmentState   `json:"fulfillmentState,omitempty"`
	Message          string             `json:"message,omitempty"`
	IntentName       string             `json:"intentName,omitempty"`
	Slots            map[string]*string `json:"slots,omitempty"`
	SlotToElicit     string             `json:"slotToElicit,omitempty"`
}

// Response is what goes back to the runtime. SessionAttributes and
// RecentSummaries are passed through from the inbound turn when
// present and omitted when absent, never defaulted to empty.
type Response struct {
	SessionAttributes map[string]string `json:"sessionAttributes,omitempty"`
	RecentSummaries   []Summary         `json:"recentIntentSummaryView,omitempty"`
	DialogAction      DialogAction      `json:"dialogAction"`
}

// SlotValue returns the current value of the named slot, nil when the
// slot is absent or explicitly null.
func (t *Turn) SlotValue(name string) *string {
	if t.Slots == nil {
		return nil
	}
	return t.Slots[name]
}

// ClearSlot marks the named slot absent while keeping its key in the
// mapping, so the runtime sees an explicit null rather than a missing
// entry.
func (t *Turn) ClearSlot(name string) {
	if t.Slots == nil {
		t.Slots = make(map[string]*string)
	}
	t.Slots[name] = nil
}

// StringValue renders a slot value pointer for logs.
func StringValue(v *string) string {
	if v == nil {
		return "<absent>"
	}
	return *v
}
