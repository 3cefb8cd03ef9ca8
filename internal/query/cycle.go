package query

import (
	"context"
	"errors"

	"ollamaui/internal/ollama"
	"ollamaui/pkg/types"
)

// Action is the user interaction that started a cycle.
type Action int

const (
	// ActionNone is any re-render that is not a submit (page load, control change).
	ActionNone Action = iota
	ActionSubmit
)

// State is where a cycle ended up. StateSubmitting is only ever transient.
type State string

const (
	StateIdle               State = "idle"
	StateSubmitting         State = "submitting"
	StateSuccess            State = "success"
	StateConnectionFailed   State = "connection_failed"
	StateOtherFailure       State = "other_failure"
	StateEmptyPromptWarning State = "empty_prompt_warning"
)

// Input is the immutable snapshot of the controls for one cycle.
type Input struct {
	Host        string  `json:"host"`
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	Action      Action  `json:"-"`
}

// Decision is the result of Decide: the next state and the request to send, if any.
type Decision struct {
	Next    State
	Request *types.GenerateRequest
}

// Decide is the pure step of a cycle. Only a submit with a non-empty prompt
// produces a request; whitespace counts as content.
func Decide(in Input) Decision {
	if in.Action != ActionSubmit {
		return Decision{Next: StateIdle}
	}
	if in.Prompt == "" {
		return Decision{Next: StateEmptyPromptWarning}
	}
	return Decision{
		Next: StateSubmitting,
		Request: &types.GenerateRequest{
			Model:  in.Model,
			Prompt: in.Prompt,
			Stream: false,
			Options: types.GenerateOptions{
				Temperature: in.Temperature,
				TopP:        in.TopP,
			},
		},
	}
}

// Generator is the inference call a cycle depends on.
type Generator interface {
	Generate(ctx context.Context, host string, req types.GenerateRequest) (*types.GenerateResponse, error)
}

// Outcome is the terminal state of a cycle with whatever the call produced.
type Outcome struct {
	State    State
	Response *types.GenerateResponse
	Err      error
}

var errEmptyResponse = errors.New("empty response from server")

// Submit runs one cycle: at most one blocking call, never retried.
func Submit(ctx context.Context, gen Generator, in Input) Outcome {
	d := Decide(in)
	if d.Request == nil {
		return Outcome{State: d.Next}
	}
	resp, err := gen.Generate(ctx, in.Host, *d.Request)
	switch {
	case err != nil && ollama.IsConnectionError(err):
		return Outcome{State: StateConnectionFailed, Err: err}
	case err != nil:
		return Outcome{State: StateOtherFailure, Err: err}
	case resp == nil:
		return Outcome{State: StateOtherFailure, Err: errEmptyResponse}
	}
	return Outcome{State: StateSuccess, Response: resp}
}
