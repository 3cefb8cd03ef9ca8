package e2e

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"ollamaui/internal/config"
	"ollamaui/internal/httpapi"
	"ollamaui/internal/ollama"
	"ollamaui/internal/query"
	"ollamaui/pkg/types"
)

// fakeOllama answers /api/generate deterministically and records what it received.
type fakeOllama struct {
	hits atomic.Int32
	last atomic.Value // types.GenerateRequest
}

func (f *fakeOllama) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/version":
		_, _ = w.Write([]byte(`{"version":"0.0.0-test"}`))
	case "/api/generate":
		f.hits.Add(1)
		var req types.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
			return
		}
		f.last.Store(req)
		if req.Model == "missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"model 'missing' not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"model":"` + req.Model + `","response":"echo: ` + req.Prompt + `","done":true,"total_duration":123,"eval_count":10}`))
	default:
		http.NotFound(w, r)
	}
}

func startApp(t *testing.T, ollamaHost string, models ...string) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.OllamaHost = ollamaHost
	if len(models) > 0 {
		cfg.Models = models
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	svc := query.NewService(cfg.Panel(), ollama.New())
	app := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(app.Close)
	return app
}

func submit(t *testing.T, app *httptest.Server, vals url.Values) string {
	t.Helper()
	resp, err := http.PostForm(app.URL+"/", vals)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func TestE2E_FormRoundTrip(t *testing.T) {
	fake := &fakeOllama{}
	upstream := httptest.NewServer(fake)
	defer upstream.Close()
	app := startApp(t, upstream.URL, "phi3", "qwen2")

	body := submit(t, app, url.Values{
		"model": {"qwen2"}, "temperature": {"0.4"}, "top_p": {"0.5"},
		"prompt": {"ping"}, "action": {"submit"},
	})
	if fake.hits.Load() != 1 {
		t.Fatalf("upstream hits=%d", fake.hits.Load())
	}
	got := fake.last.Load().(types.GenerateRequest)
	if got.Model != "qwen2" || got.Prompt != "ping" || got.Stream || got.Options.Temperature != 0.4 || got.Options.TopP != 0.5 {
		t.Fatalf("upstream got %+v", got)
	}
	for _, want := range []string{
		"\necho: ping</pre>",
		`<td id="meta-total_duration">123</td>`,
		`<td id="meta-load_duration">not available</td>`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestE2E_EmptyPromptDoesNotReachUpstream(t *testing.T) {
	fake := &fakeOllama{}
	upstream := httptest.NewServer(fake)
	defer upstream.Close()
	app := startApp(t, upstream.URL)
	body := submit(t, app, url.Values{"prompt": {""}, "action": {"submit"}})
	if fake.hits.Load() != 0 {
		t.Fatalf("upstream was called")
	}
	if !strings.Contains(body, query.MsgEmptyPrompt) {
		t.Fatalf("warning missing")
	}
}

func TestE2E_UnreachableHost(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	host := "http://" + ln.Addr().String()
	_ = ln.Close()

	app := startApp(t, host)
	body := submit(t, app, url.Values{"prompt": {"hi"}, "action": {"submit"}})
	if !strings.Contains(body, "Could not connect to Ollama at "+host) {
		t.Fatalf("connection failure not rendered")
	}

	resp, err := http.Get(app.URL + "/readyz")
	if err != nil {
		t.Fatalf("readyz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d", resp.StatusCode)
	}
}

func TestE2E_ServerErrorIsGenericFailure(t *testing.T) {
	upstream := httptest.NewServer(&fakeOllama{})
	defer upstream.Close()
	app := startApp(t, upstream.URL, "missing")

	resp, err := http.Post(app.URL+"/api/query", "application/json", strings.NewReader(`{"model":"missing","prompt":"hi"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	var v query.View
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("json: %v", err)
	}
	if v.State != query.StateOtherFailure {
		t.Fatalf("state=%s", v.State)
	}
	if !strings.Contains(v.Error, "model 'missing' not found") {
		t.Fatalf("error=%q", v.Error)
	}
}

func TestE2E_HostOverrideFromForm(t *testing.T) {
	fake := &fakeOllama{}
	upstream := httptest.NewServer(fake)
	defer upstream.Close()
	// configured default is unreachable; the form points at the live server
	app := startApp(t, "http://127.0.0.1:1")
	body := submit(t, app, url.Values{"host": {upstream.URL}, "prompt": {"x"}, "action": {"submit"}})
	if fake.hits.Load() != 1 || !strings.Contains(body, "echo: x") {
		t.Fatalf("host override not honored")
	}
}
