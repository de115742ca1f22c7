package slotflow

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"

	"github.com/tbxark/slotflow/turn"
)

var _ adk.Agent = (*Agent)(nil)

// Agent exposes a Router as an eino ADK agent: the last input message
// carries a JSON-encoded turn event, the emitted assistant message
// carries the JSON-encoded response. This matches the deferred-result
// calling convention of the turn-processing runtime.
type Agent struct {
	name        string
	description string
	router      *Router
}

func NewAgent(name, description string, router *Router) *Agent {
	return &Agent{
		name:        name,
		description: description,
		router:      router,
	}
}

func (a *Agent) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent) Description(ctx context.Context) string {
	return a.description
}

func (a *Agent) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			e := recover()
			if e != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()
		if len(input.Messages) == 0 {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("no messages in input"),
			})
			return
		}
		var t turn.Turn
		if err := sonic.UnmarshalString(input.Messages[len(input.Messages)-1].Content, &t); err != nil {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("decode turn event failed: %w", err),
			})
			return
		}
		resp, err := a.router.Route(ctx, &t)
		if err != nil {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("route turn failed: %w", err),
			})
			return
		}
		out, err := sonic.MarshalString(resp)
		if err != nil {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("encode response failed: %w", err),
			})
			return
		}
		gen.Send(&adk.AgentEvent{
			Output: &adk.AgentOutput{
				MessageOutput: &adk.MessageVariant{
					IsStreaming: false,
					Message: &schema.Message{
						Role:    schema.Assistant,
						Content: out,
					},
					Role: schema.Assistant,
				},
			},
		})
	}()
	return iter
}
