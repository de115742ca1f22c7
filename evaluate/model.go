package evaluate

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/tbxark/slotflow/turn"
)

// SlotVerdict is the structured output the judge model is forced to
// produce through a tool call.
type SlotVerdict struct {
	Acceptable     bool   `json:"acceptable" jsonschema:"required,description=Whether the candidate value is acceptable for the slot"`
	CanonicalValue string `json:"canonical_value,omitempty" jsonschema:"description=Normalized value to store instead of the raw candidate when acceptable"`
	Reason         string `json:"reason,omitempty" jsonschema:"description=Short justification for the verdict"`
}

// DefaultJudgeSystemPrompt is the system prompt used by ModelChecked
// evaluators unless overridden.
const DefaultJudgeSystemPrompt = `You judge whether a candidate value is acceptable for a named conversation slot.

Consider the candidate, the original utterance and any alternative resolutions. Accept values a reasonable operator would accept; when the candidate is a near-match of an obviously intended value, accept it and return the normalized form as canonical_value. Reject empty, nonsensical or off-topic candidates.`

type modelOptions struct {
	guidance     string
	systemPrompt string
}

type ModelOption func(*modelOptions)

// WithGuidance adds slot-specific acceptance guidance to the judge
// prompt.
func WithGuidance(guidance string) ModelOption {
	return func(o *modelOptions) {
		o.guidance = guidance
	}
}

// WithJudgeSystemPrompt overrides the judge system prompt.
func WithJudgeSystemPrompt(systemPrompt string) ModelOption {
	return func(o *modelOptions) {
		o.systemPrompt = systemPrompt
	}
}

// ModelChecked builds an evaluator that delegates the acceptance
// judgment for free-form slots to a chat model via a forced tool
// call. Absent candidates are rejected without a model round trip;
// recently confirmed slots short-circuit like every other evaluator.
func ModelChecked(slot, prompt string, chatModel model.ToolCallingChatModel, opts ...ModelOption) (*SlotEvaluator, error) {
	options := modelOptions{
		systemPrompt: DefaultJudgeSystemPrompt,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	toolInfo, err := utils.GoStruct2ToolInfo[SlotVerdict](
		"judge_slot_value",
		"Report whether the candidate slot value is acceptable",
	)
	if err != nil {
		return nil, fmt.Errorf("convert tool info failed: %w", err)
	}

	check := func(ctx context.Context, val *SlotValue) (Assessment, map[string]string, error) {
		if !present(val.Current) {
			return Invalid, nil, nil
		}
		t, ok := turnFromContext(ctx)
		if !ok {
			t = &turn.Turn{}
		}
		messages := []*schema.Message{
			schema.SystemMessage(options.systemPrompt),
			schema.UserMessage(FormatJudgeRequest(t, slot, val, options.guidance)),
		}
		response, err := chatModel.Generate(ctx, messages,
			model.WithTools([]*schema.ToolInfo{toolInfo}),
			model.WithToolChoice(schema.ToolChoiceForced, toolInfo.Name),
		)
		if err != nil {
			return Invalid, nil, fmt.Errorf("judge model call failed: %w", err)
		}
		if len(response.ToolCalls) == 0 {
			return Invalid, nil, fmt.Errorf("no ToolCall found in judge response: %s", response.Content)
		}
		var verdict SlotVerdict
		if err := sonic.UnmarshalString(response.ToolCalls[0].Function.Arguments, &verdict); err != nil {
			return Invalid, nil, fmt.Errorf("parse ToolCall arguments failed: %w", err)
		}
		if !verdict.Acceptable {
			return Invalid, nil, nil
		}
		if verdict.CanonicalValue != "" && verdict.CanonicalValue != *val.Current {
			return Valid, map[string]string{slot: verdict.CanonicalValue}, nil
		}
		return Valid, nil, nil
	}

	return NewSlotEvaluator(slot, prompt, check), nil
}

type turnContextKey struct{}

// WithTurn stashes the turn on the context so checks that build a
// model prompt can see the full slot state, not just their own value.
// The base evaluator does this before invoking its check.
func WithTurn(ctx context.Context, t *turn.Turn) context.Context {
	return context.WithValue(ctx, turnContextKey{}, t)
}

func turnFromContext(ctx context.Context) (*turn.Turn, bool) {
	value := ctx.Value(turnContextKey{})
	if value == nil {
		return nil, false
	}
	t, ok := value.(*turn.Turn)
	return t, ok
}
