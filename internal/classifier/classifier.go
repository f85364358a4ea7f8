package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xaenox/huddle-bot/internal/models"
)

// Gateway is the external agent that inspects a single outgoing message.
type Gateway interface {
	Classify(ctx context.Context, text, agentID string) (*Response, error)
}

// Response mirrors the agent wire format:
//
//	{"success": true, "response": {"result": {...} | "<encoded json>"}}
type Response struct {
	Success  bool           `json:"success"`
	Response *AgentResponse `json:"response,omitempty"`
}

type AgentResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
}

// Outcome tells apart the ways a classification can end. Everything other
// than OutcomeDetected renders as a plain message.
type Outcome string

const (
	OutcomeDetected       Outcome = "detected"
	OutcomeNoDetection    Outcome = "no_detection"
	OutcomeGatewayFailure Outcome = "gateway_failure"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeTimeout        Outcome = "timeout"
	OutcomeDecodeError    Outcome = "decode_error"
)

type Result struct {
	Outcome      Outcome              `json:"outcome"`
	Intelligence *models.Intelligence `json:"intelligence,omitempty"`
	Err          error                `json:"-"`
}

// Interpret turns a gateway reply into a Result. It never fails: transport
// and decoding problems are folded into the outcome.
func Interpret(resp *Response, err error) Result {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return Result{Outcome: OutcomeTimeout, Err: err}
		}
		return Result{Outcome: OutcomeTransportError, Err: err}
	}
	if resp == nil || !resp.Success {
		return Result{Outcome: OutcomeGatewayFailure}
	}
	if resp.Response == nil || len(resp.Response.Result) == 0 {
		return Result{Outcome: OutcomeNoDetection}
	}

	intel, err := DecodeIntelligence(resp.Response.Result)
	if err != nil {
		return Result{Outcome: OutcomeDecodeError, Err: err}
	}
	if intel.Empty() {
		return Result{Outcome: OutcomeNoDetection}
	}
	return Result{Outcome: OutcomeDetected, Intelligence: intel}
}

// Run performs exactly one gateway call and interprets it. The call is
// abandoned when ctx ends, even if the gateway ignores ctx. A panic inside the
// gateway is reported as a transport error.
func Run(ctx context.Context, gw Gateway, text, agentID string) Result {
	type reply struct {
		resp *Response
		err  error
	}
	done := make(chan reply, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: fmt.Errorf("gateway panic: %v", r)}
			}
		}()
		resp, err := gw.Classify(ctx, text, agentID)
		done <- reply{resp: resp, err: err}
	}()

	select {
	case r := <-done:
		return Interpret(r.resp, r.err)
	case <-ctx.Done():
		return Interpret(nil, ctx.Err())
	}
}
