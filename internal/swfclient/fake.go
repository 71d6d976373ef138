package swfclient

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/swf"
	"github.com/aws/aws-sdk-go-v2/service/swf/types"
)

// Fake is an in-memory Client for tests: PollForDecisionTask serves a
// caller-loaded queue of outputs (one per page) and, once the queue is
// drained, blocks until ctx is cancelled; RespondDecisionTaskCompleted
// records every call it receives.
type Fake struct {
	mu sync.Mutex

	outputs []*swf.PollForDecisionTaskOutput
	polls   []*swf.PollForDecisionTaskInput

	Responses []*swf.RespondDecisionTaskCompletedInput
}

var _ Client = (*Fake)(nil)

// EnqueuePoll appends an output PollForDecisionTask will return, in order.
func (f *Fake) EnqueuePoll(out *swf.PollForDecisionTaskOutput) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs = append(f.outputs, out)
}

func (f *Fake) PollForDecisionTask(ctx context.Context, in *swf.PollForDecisionTaskInput) (*swf.PollForDecisionTaskOutput, error) {
	f.mu.Lock()
	f.polls = append(f.polls, in)
	if len(f.outputs) == 0 {
		f.mu.Unlock()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	out := f.outputs[0]
	f.outputs = f.outputs[1:]
	f.mu.Unlock()
	return out, nil
}

func (f *Fake) RespondDecisionTaskCompleted(_ context.Context, in *swf.RespondDecisionTaskCompletedInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses = append(f.Responses, in)
	return nil
}

// Polls returns every PollForDecisionTaskInput received so far.
func (f *Fake) Polls() []*swf.PollForDecisionTaskInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*swf.PollForDecisionTaskInput(nil), f.polls...)
}

// Decisions returns the decisions from the n'th RespondDecisionTaskCompleted
// call (0-indexed), or nil if it doesn't have that call yet.
func (f *Fake) Decisions(n int) []types.Decision {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n < 0 || n >= len(f.Responses) {
		return nil
	}
	return f.Responses[n].Decisions
}
