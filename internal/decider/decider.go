// Package decider implements the Decider Loop (spec.md §4.7, §5): the
// single-threaded poll/page/build/respond cycle that turns a long-running
// process into a working decider, wired over internal/swfclient,
// internal/specloader and internal/decision.
package decider

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/swf"
	"github.com/aws/aws-sdk-go-v2/service/swf/types"
	"github.com/google/uuid"

	"github.com/EpicWink/seddy/internal/decision"
	"github.com/EpicWink/seddy/internal/errs"
	"github.com/EpicWink/seddy/internal/logging"
	"github.com/EpicWink/seddy/internal/metrics"
	"github.com/EpicWink/seddy/internal/specloader"
	"github.com/EpicWink/seddy/internal/swfclient"
	"github.com/EpicWink/seddy/internal/swfmodel"
)

const (
	// pollTimeoutFloor is the "~60 s" long-poll ceiling spec.md §4.7
	// names. The loop does not apply it (nor Loop.PollTimeout) to the poll
	// call; the service enforces the ceiling.
	pollTimeoutFloor = 60 * time.Second

	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// Loop is the Decider Loop for one (domain, task list). It is not safe
// for concurrent use by multiple goroutines; run one Loop per SWF Client
// (spec.md §5 "Shared resources").
type Loop struct {
	Client   swfclient.Client
	Registry *specloader.Registry

	Domain   string
	TaskList string

	// Identity overrides the generated FQDN+short-uuid decider identity.
	// Resolved once, lazily, on first use.
	Identity string

	// PollTimeout is accepted for parity with spec.md §4.7's "socket
	// timeout floor" note; the long-poll call itself is bounded by ctx,
	// not by this field — it documents the minimum the transport must
	// tolerate (>= 70s idle).
	PollTimeout time.Duration

	Logger logging.Logger

	identityOnce string
}

func (l *Loop) identity() string {
	if l.Identity != "" {
		return l.Identity
	}
	if l.identityOnce == "" {
		l.identityOnce = generateIdentity()
	}
	return l.identityOnce
}

func generateIdentity() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return host + "-" + uuid.New().String()[:8]
}

func (l *Loop) logger() logging.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return logging.FromContext(context.Background())
}

// Run blocks, processing decision tasks one at a time, until ctx is
// cancelled or a DeciderError is raised. On cancellation, any in-flight
// decision is finished before Run returns (spec.md §5).
func (l *Loop) Run(ctx context.Context) error {
	backoff := minBackoff
	for {
		if ctx.Err() != nil {
			return nil
		}

		task, err := l.pollForTask(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.logger().Error("poll for decision task failed", "error", err)
			if !sleepBackoff(ctx, &backoff) {
				return nil
			}
			continue
		}
		backoff = minBackoff

		if task == nil {
			continue // empty poll result; restart immediately
		}

		if err := l.handleTask(ctx, task); err != nil {
			if !errs.Is(err, errs.KindDeciderError) {
				l.logger().Error("responding to decision task failed", "error", err)
				if !sleepBackoff(ctx, &backoff) {
					return nil
				}
				continue
			}
			l.logger().Error("decider error; stopping loop", "error", err)
			return err
		}
	}
}

// sleepBackoff waits out the current backoff (doubling it, capped at
// maxBackoff, for next time) or returns false if ctx is cancelled first.
func sleepBackoff(ctx context.Context, backoff *time.Duration) bool {
	timer := time.NewTimer(*backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}
	*backoff *= 2
	if *backoff > maxBackoff {
		*backoff = maxBackoff
	}
	return true
}

// pollForTask long-polls once, pages through the full event history, and
// assembles a swfmodel.DecisionTask. It returns (nil, nil) for an empty
// poll result (spec.md §4.7 step b: "restart from (a)").
func (l *Loop) pollForTask(ctx context.Context) (*swfmodel.DecisionTask, error) {
	start := time.Now()
	defer func() { metrics.RecordPollDuration(time.Since(start)) }()

	// The long-poll's own ~60s ceiling (spec.md §4.7) is enforced
	// service-side; ctx here only carries this loop's own cancellation,
	// not an extra client-side deadline, so a slow-but-healthy poll isn't
	// mistaken for a transport failure.
	in := &swf.PollForDecisionTaskInput{
		Domain:   aws.String(l.Domain),
		TaskList: &types.TaskList{Name: aws.String(l.TaskList)},
		Identity: aws.String(l.identity()),
	}
	out, err := l.Client.PollForDecisionTask(ctx, in)
	if err != nil {
		return nil, errs.Wrap(errs.KindTransportError, err, "polling for decision task")
	}
	if out.TaskToken == nil || *out.TaskToken == "" {
		return nil, nil
	}

	events := append([]types.HistoryEvent(nil), out.Events...)
	token := out.NextPageToken
	for token != nil {
		pageIn := &swf.PollForDecisionTaskInput{
			Domain:        aws.String(l.Domain),
			TaskList:      &types.TaskList{Name: aws.String(l.TaskList)},
			Identity:      aws.String(l.identity()),
			NextPageToken: token,
		}
		page, err := l.Client.PollForDecisionTask(ctx, pageIn)
		if err != nil {
			return nil, errs.Wrap(errs.KindTransportError, err, "paging decision task history")
		}
		events = append(events, page.Events...)
		token = page.NextPageToken
	}

	return swfclient.ToDecisionTask(out, events)
}

// handleTask selects a workflow, builds decisions, and responds. It
// returns a DeciderError, which aborts the loop, or a TransportError from
// the respond call, which Run retries with backoff; every other failure is
// converted into a FailWorkflowExecution decision, responded with, and
// logged (spec.md §7:
// "errors are converted to decisions whenever possible ... re-raised so
// the loop records it").
func (l *Loop) handleTask(ctx context.Context, task *swfmodel.DecisionTask) error {
	wf, ok := l.Registry.Get(task.WorkflowType.Name, task.WorkflowType.Version)
	if !ok {
		l.logger().Error(
			"unsupported workflow",
			"name", task.WorkflowType.Name,
			"version", task.WorkflowType.Version,
		)
		decisions := []swfmodel.Decision{unsupportedWorkflowDecision(task.WorkflowType)}
		metrics.RecordDecisionTask(metrics.OutcomeError)
		return l.respond(ctx, task.TaskToken, decisions)
	}

	b := &decision.Builder{Workflow: wf, Identity: l.identity()}

	buildStart := time.Now()
	decisions, buildErr := b.Build(task)
	metrics.RecordBuilderDuration(time.Since(buildStart))

	if buildErr != nil {
		if errs.Is(buildErr, errs.KindDeciderError) {
			return buildErr
		}
		l.logger().Error("decision builder failed; failing workflow execution", "error", buildErr)
		decisions = []swfmodel.Decision{builderErrorDecision(buildErr)}
		metrics.RecordDecisionTask(metrics.OutcomeError)
	} else {
		metrics.RecordDecisionTask(outcomeFor(decisions))
	}

	return l.respond(ctx, task.TaskToken, decisions)
}

func (l *Loop) respond(ctx context.Context, taskToken string, decisions []swfmodel.Decision) error {
	for _, d := range decisions {
		metrics.RecordDecisions(string(d.Type))
	}
	in := &swf.RespondDecisionTaskCompletedInput{
		TaskToken: aws.String(taskToken),
		Decisions: swfclient.FromDecisions(decisions),
	}
	// Not cancelled with ctx: a decision already built is always sent.
	if err := l.Client.RespondDecisionTaskCompleted(context.WithoutCancel(ctx), in); err != nil {
		return errs.Wrap(errs.KindTransportError, err, "responding to decision task")
	}
	return nil
}

func unsupportedWorkflowDecision(wt swfmodel.WorkflowTypeRef) swfmodel.Decision {
	return swfmodel.Decision{
		Type: swfmodel.DecisionFailWorkflowExecution,
		FailWorkflowExecution: &swfmodel.FailWorkflowExecutionAttributes{
			Reason:  "deciderError",
			Details: fmt.Sprintf("unsupported workflow %s/%s", wt.Name, wt.Version),
		},
	}
}

func builderErrorDecision(err error) swfmodel.Decision {
	return swfmodel.Decision{
		Type: swfmodel.DecisionFailWorkflowExecution,
		FailWorkflowExecution: &swfmodel.FailWorkflowExecutionAttributes{
			Reason:  "deciderError",
			Details: err.Error(),
		},
	}
}

// outcomeFor classifies a built decision list for DecisionTasksTotal. An
// empty list (nothing ready to schedule yet, no terminal decision due) is
// still an OutcomeScheduled pass — the task was handled, just with
// nothing new to say.
func outcomeFor(decisions []swfmodel.Decision) metrics.Outcome {
	for _, d := range decisions {
		switch d.Type {
		case swfmodel.DecisionCompleteWorkflowExecution:
			return metrics.OutcomeCompleted
		case swfmodel.DecisionFailWorkflowExecution:
			return metrics.OutcomeFailed
		case swfmodel.DecisionCancelWorkflowExecution:
			return metrics.OutcomeCancelled
		}
	}
	return metrics.OutcomeScheduled
}
