// Package swfclient is the boundary between this decider and Amazon SWF:
// the Client interface (implemented by a thin adapter over *swf.Client, and
// by an in-memory fake for tests), and the conversion between the SDK's own
// wire types and this core's internal/swfmodel view of them.
//
// Everything upstream of this package (internal/history, internal/decision)
// only ever sees internal/swfmodel types, so any drift between this file's
// assumptions about the SDK's generated struct shapes and the real thing is
// contained to this one adapter.
package swfclient

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/swf"
)

// Client is the subset of the SWF API this decider calls, trimmed to the
// two RPCs the Decider Loop needs (spec.md §4.7).
type Client interface {
	PollForDecisionTask(ctx context.Context, in *swf.PollForDecisionTaskInput) (*swf.PollForDecisionTaskOutput, error)
	RespondDecisionTaskCompleted(ctx context.Context, in *swf.RespondDecisionTaskCompletedInput) error
}

// sdkClient adapts *swf.Client to Client, discarding the (empty)
// RespondDecisionTaskCompleted output the generated method returns.
type sdkClient struct {
	inner *swf.Client
}

// NewFromConfig builds a Client backed by the real SWF service. An empty
// baseEndpoint selects the default regional endpoint; a non-empty one
// overrides it (spec.md §6 "Environment", e.g. for a local emulator).
func NewFromConfig(cfg aws.Config, baseEndpoint string) Client {
	if baseEndpoint == "" {
		return &sdkClient{inner: swf.NewFromConfig(cfg)}
	}
	return &sdkClient{inner: swf.NewFromConfig(cfg, func(o *swf.Options) {
		o.BaseEndpoint = aws.String(baseEndpoint)
	})}
}

func (c *sdkClient) PollForDecisionTask(ctx context.Context, in *swf.PollForDecisionTaskInput) (*swf.PollForDecisionTaskOutput, error) {
	return c.inner.PollForDecisionTask(ctx, in)
}

func (c *sdkClient) RespondDecisionTaskCompleted(ctx context.Context, in *swf.RespondDecisionTaskCompletedInput) error {
	_, err := c.inner.RespondDecisionTaskCompleted(ctx, in)
	return err
}
