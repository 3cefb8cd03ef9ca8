package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"

	"ollamaui/internal/ollama"
	"ollamaui/pkg/types"
)

type stubGen struct {
	calls []types.GenerateRequest
	hosts []string
	resp  *types.GenerateResponse
	err   error
}

func (s *stubGen) Generate(ctx context.Context, host string, req types.GenerateRequest) (*types.GenerateResponse, error) {
	s.calls = append(s.calls, req)
	s.hosts = append(s.hosts, host)
	return s.resp, s.err
}

func i64(v int64) *int64 { return &v }
func f64(v float64) *float64 { return &v }

func submitInput(prompt string) Input {
	p := NewPanel("http://localhost:11434")
	return p.Bind(Fields{Model: "mistral", Prompt: prompt, Submit: true})
}

func TestOptionsEqualSliderGrid(t *testing.T) {
	p := NewPanel("http://localhost:11434")
	for ti := 0; ti <= 10; ti++ {
		for pi := 0; pi <= 10; pi++ {
			temp, topP := float64(ti)/10, float64(pi)/10
			in := p.Bind(Fields{Model: "llama2", Prompt: "x", Temperature: f64(temp), TopP: f64(topP), Submit: true})
			gen := &stubGen{resp: &types.GenerateResponse{}}
			Submit(context.Background(), gen, in)
			if len(gen.calls) != 1 {
				t.Fatalf("(%v,%v): calls=%d", temp, topP, len(gen.calls))
			}
			got := gen.calls[0].Options
			if got.Temperature != temp || got.TopP != topP {
				t.Fatalf("options=%+v, want (%v,%v)", got, temp, topP)
			}
			if gen.calls[0].Stream {
				t.Fatalf("stream must be false")
			}
		}
	}
}

func TestEmptyPromptNeverCalls(t *testing.T) {
	gen := &stubGen{err: errors.New("must not be called")}
	v := Run(context.Background(), gen, submitInput(""))
	if len(gen.calls) != 0 {
		t.Fatalf("unexpected call: %+v", gen.calls)
	}
	if v.State != StateEmptyPromptWarning {
		t.Fatalf("state=%s", v.State)
	}
	if v.Warning != MsgEmptyPrompt {
		t.Fatalf("warning=%q", v.Warning)
	}
	if v.Error != "" || v.Info != "" {
		t.Fatalf("warning view must not carry error/info: %+v", v)
	}
}

func TestWhitespacePromptIsSubmitted(t *testing.T) {
	gen := &stubGen{resp: &types.GenerateResponse{Response: "ok"}}
	v := Run(context.Background(), gen, submitInput("   "))
	if len(gen.calls) != 1 || gen.calls[0].Prompt != "   " {
		t.Fatalf("calls=%+v", gen.calls)
	}
	if v.State != StateSuccess {
		t.Fatalf("state=%s", v.State)
	}
}

func TestNoSubmitIsIdle(t *testing.T) {
	p := NewPanel("h")
	gen := &stubGen{}
	v := Run(context.Background(), gen, p.Bind(Fields{Prompt: "hello"}))
	if v.State != StateIdle || len(gen.calls) != 0 {
		t.Fatalf("state=%s calls=%d", v.State, len(gen.calls))
	}
}

func TestConnectionFailureNamesHost(t *testing.T) {
	host := "http://ollama.invalid:11434"
	p := NewPanel("unused")
	in := p.Bind(Fields{Host: host, Model: "llama2", Prompt: "hi", Submit: true})
	gen := &stubGen{err: &ollama.ConnectionError{Host: host, Err: errors.New("connection refused")}}
	v := Run(context.Background(), gen, in)
	if v.State != StateConnectionFailed {
		t.Fatalf("state=%s", v.State)
	}
	if !strings.Contains(v.Error, host) {
		t.Fatalf("error %q must include host %q", v.Error, host)
	}
	if v.Hint != HintConnection {
		t.Fatalf("hint=%q", v.Hint)
	}
	if gen.hosts[0] != host {
		t.Fatalf("call went to %q", gen.hosts[0])
	}
}

func TestWrappedConnectionFailure(t *testing.T) {
	gen := &stubGen{err: fmt.Errorf("wrapped: %w", &ollama.ConnectionError{Host: "h"})}
	if out := Submit(context.Background(), gen, submitInput("hi")); out.State != StateConnectionFailed {
		t.Fatalf("state=%s", out.State)
	}
}

func TestGenericFailureCarriesText(t *testing.T) {
	msg := `model "llama2" not found, try pulling it first (status code: 404)`
	gen := &stubGen{err: errors.New(msg)}
	v := Run(context.Background(), gen, submitInput("hi"))
	if v.State != StateOtherFailure {
		t.Fatalf("state=%s", v.State)
	}
	if !strings.Contains(v.Error, msg) {
		t.Fatalf("error %q must include %q", v.Error, msg)
	}
	if v.Hint != HintOtherFailure {
		t.Fatalf("hint=%q", v.Hint)
	}
	if v.Response != "" || v.Metadata != nil {
		t.Fatalf("failure must not render a response: %+v", v)
	}
}

func TestNilResponseIsFailure(t *testing.T) {
	v := Run(context.Background(), &stubGen{}, submitInput("hi"))
	if v.State != StateOtherFailure {
		t.Fatalf("state=%s", v.State)
	}
}

func TestSuccessRendersMetadata(t *testing.T) {
	gen := &stubGen{resp: &types.GenerateResponse{Response: "Hello world", TotalDuration: i64(123), EvalCount: i64(10)}}
	in := submitInput("hi")
	v := Run(context.Background(), gen, in)
	if v.State != StateSuccess {
		t.Fatalf("state=%s", v.State)
	}
	if v.Response != "Hello world" {
		t.Fatalf("response=%q", v.Response)
	}
	if v.Success != MsgSuccess {
		t.Fatalf("success=%q", v.Success)
	}
	m := v.Metadata
	if m == nil {
		t.Fatalf("metadata missing")
	}
	if m.Model != "mistral" || m.Temperature != DefaultTemperature || m.TopP != DefaultTopP {
		t.Fatalf("metadata=%+v", m)
	}
	want := map[string]string{
		"total_duration":    "123",
		"load_duration":     types.NotAvailable,
		"prompt_eval_count": types.NotAvailable,
		"eval_count":        "10",
	}
	if len(m.Fields) != len(want) {
		t.Fatalf("fields=%+v", m.Fields)
	}
	for _, f := range m.Fields {
		if got := f.Display; got != want[f.Name] {
			t.Fatalf("%s=%q, want %q", f.Name, got, want[f.Name])
		}
	}
}

func TestZeroCounterIsNotMissing(t *testing.T) {
	gen := &stubGen{resp: &types.GenerateResponse{Response: "", LoadDuration: i64(0)}}
	v := Run(context.Background(), gen, submitInput("hi"))
	if got := v.Metadata.Fields[1].Display; got != "0" {
		t.Fatalf("load_duration=%q", got)
	}
}

func TestIdempotentRender(t *testing.T) {
	resp := &types.GenerateResponse{Response: "same", TotalDuration: i64(5)}
	in := submitInput("hi")
	a := Run(context.Background(), &stubGen{resp: resp}, in)
	b := Run(context.Background(), &stubGen{resp: resp}, in)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("views differ:\n%+v\n%+v", a, b)
	}
}

func TestBindConstraints(t *testing.T) {
	p := NewPanel("http://default:11434")
	in := p.Bind(Fields{Model: "gpt-4", Temperature: f64(1.7), TopP: f64(-3)})
	if in.Model != "llama2" {
		t.Fatalf("unknown model must fall back to first offered, got %q", in.Model)
	}
	if in.Temperature != 1 || in.TopP != 0 {
		t.Fatalf("clamp failed: %v %v", in.Temperature, in.TopP)
	}
	if in.Host != "http://default:11434" {
		t.Fatalf("host=%q", in.Host)
	}
	if in.Action != ActionNone {
		t.Fatalf("action=%v", in.Action)
	}

	in = p.Bind(Fields{Temperature: f64(0.34), TopP: f64(0.66)})
	if in.Temperature != 0.3 || in.TopP != 0.7 {
		t.Fatalf("snap failed: %v %v", in.Temperature, in.TopP)
	}

	in = p.Bind(Fields{})
	if in.Temperature != DefaultTemperature || in.TopP != DefaultTopP {
		t.Fatalf("defaults: %+v", in)
	}
}

func TestSnapNonFinite(t *testing.T) {
	if got := Snap(math.NaN(), 0.7); got != 0.7 {
		t.Fatalf("Snap(NaN)=%v", got)
	}
}

func TestViewJSONCarriesMissingMarker(t *testing.T) {
	gen := &stubGen{resp: &types.GenerateResponse{Response: "", EvalCount: i64(3)}}
	v := Run(context.Background(), gen, submitInput("hi"))
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(b)
	for _, want := range []string{
		`"response":""`,
		`{"name":"load_duration","value":null,"display":"not available"}`,
		`{"name":"eval_count","value":3,"display":"3"}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("json missing %s: %s", want, out)
		}
	}
}
