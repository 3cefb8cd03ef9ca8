package query

import (
	"context"

	"ollamaui/pkg/types"
)

// User-facing copy.
const (
	MsgGenerating    = "Connecting to Ollama and generating response..."
	MsgSuccess       = "Response generated successfully!"
	MsgEmptyPrompt   = "Please enter a query before submitting"
	HintConnection   = "Make sure Ollama is running and accessible at the specified host"
	HintOtherFailure = "Please check your input and try again"
)

// Metadata is the collapsible panel shown beneath a successful response.
type Metadata struct {
	Model       string                 `json:"model"`
	Temperature float64                `json:"temperature"`
	TopP        float64                `json:"top_p"`
	Fields      []types.OptionalMetric `json:"fields"`
}

// View is everything the page shows after a cycle. It never carries data
// from an earlier cycle.
type View struct {
	State    State     `json:"state"`
	Input    Input     `json:"input"`
	Info     string    `json:"info,omitempty"`
	Success  string    `json:"success,omitempty"`
	Response string    `json:"response"`
	Metadata *Metadata `json:"metadata,omitempty"`
	Error    string    `json:"error,omitempty"`
	Hint     string    `json:"hint,omitempty"`
	Warning  string    `json:"warning,omitempty"`
}

// Render maps an outcome to a view. It is pure.
func Render(in Input, out Outcome) View {
	v := View{State: out.State, Input: in}
	switch out.State {
	case StateSuccess:
		v.Info = MsgGenerating
		v.Success = MsgSuccess
		v.Response = out.Response.Response
		v.Metadata = &Metadata{
			Model:       in.Model,
			Temperature: in.Temperature,
			TopP:        in.TopP,
			Fields:      out.Response.Metrics(),
		}
	case StateConnectionFailed:
		v.Info = MsgGenerating
		v.Error = "Could not connect to Ollama at " + in.Host
		v.Hint = HintConnection
	case StateOtherFailure:
		v.Info = MsgGenerating
		v.Error = "Error: " + errText(out.Err)
		v.Hint = HintOtherFailure
	case StateEmptyPromptWarning:
		v.Warning = MsgEmptyPrompt
	}
	return v
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// Run is Submit followed by Render.
func Run(ctx context.Context, gen Generator, in Input) View {
	return Render(in, Submit(ctx, gen, in))
}
