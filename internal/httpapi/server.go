package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ollamaui/internal/query"
	"ollamaui/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Panel() query.Panel
	Query(ctx context.Context, in query.Input) query.View
	Ready(ctx context.Context) error
}

// readyTimeout bounds the upstream probe behind /readyz.
const readyTimeout = 3 * time.Second

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			ExposedHeaders: []string{"X-Cycle-ID", "X-Request-Id"},
			MaxAge:         300,
		}))
	}

	// GET renders the panel; query parameters prefill the controls but never submit.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		panel := svc.Panel()
		in := panel.Bind(fieldsFromValues(r.URL.Query(), false))
		v := runCycle(w, r, svc, in)
		renderPage(w, panel, v)
	})

	// queryPage godoc
	// @Summary      Run one interaction cycle from the HTML form
	// @Accept       x-www-form-urlencoded
	// @Produce      html
	// @Param        host         formData  string  false  "Ollama host"
	// @Param        model        formData  string  false  "Model name"
	// @Param        prompt       formData  string  false  "Prompt text"
	// @Param        temperature  formData  number  false  "Temperature"
	// @Param        top_p        formData  number  false  "Top P"
	// @Param        action       formData  string  false  "submit to send the prompt"
	// @Success      200  {string}  string  "rendered page"
	// @Failure      400  {string}  string  "invalid form body"
	// @Router       / [post]
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form body", http.StatusBadRequest)
			return
		}
		panel := svc.Panel()
		in := panel.Bind(fieldsFromValues(r.PostForm, r.PostForm.Get("action") == "submit"))
		v := runCycle(w, r, svc, in)
		renderPage(w, panel, v)
	})

	r.Route("/api", func(r chi.Router) {
		// listModels godoc
		// @Summary      List offered models
		// @Produce      json
		// @Success      200  {object}  types.ModelsResponse
		// @Router       /api/models [get]
		r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
			p := svc.Panel()
			writeJSON(w, http.StatusOK, types.ModelsResponse{Models: p.Models, Default: p.DefaultModel()})
		})

		// apiQuery godoc
		// @Summary      Run one interaction cycle
		// @Description  Always submits. Failures of the inference server are part of the returned view, not HTTP errors.
		// @Accept       json
		// @Produce      json
		// @Param        request  body      types.QueryRequest  true  "Query"
		// @Success      200      {object}  query.View
		// @Failure      400      {object}  types.ErrorResponse
		// @Failure      415      {object}  types.ErrorResponse
		// @Router       /api/query [post]
		r.Post("/query", func(w http.ResponseWriter, r *http.Request) {
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
				writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			var req types.QueryRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			panel := svc.Panel()
			if req.Model != "" && !slices.Contains(panel.Models, req.Model) {
				writeJSONError(w, http.StatusBadRequest, "unknown model: "+req.Model)
				return
			}
			in := panel.Bind(query.Fields{
				Host:        req.Host,
				Model:       req.Model,
				Prompt:      req.Prompt,
				Temperature: req.Temperature,
				TopP:        req.TopP,
				Submit:      true,
			})
			writeJSON(w, http.StatusOK, runCycle(w, r, svc, in))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := svc.Ready(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("unavailable: " + err.Error()))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// runCycle executes one interaction cycle with logging and metrics.
// The call is joined with the server base context so shutdown cancels it too.
func runCycle(w http.ResponseWriter, r *http.Request, svc Service, in query.Input) query.View {
	if in.Action != query.ActionSubmit {
		return svc.Query(r.Context(), in)
	}
	cycleID := uuid.NewString()
	w.Header().Set("X-Cycle-ID", cycleID)
	lvl := requestLogLevel(r)
	logCycle(r, lvl, cycleID, "query start", in, nil, 0)

	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	start := time.Now()
	v := svc.Query(ctx, in)
	dur := time.Since(start)

	observeCycle(v.State, dur)
	logCycle(r, lvl, cycleID, "query end", in, &v, dur)
	return v
}

// fieldsFromValues reads the panel controls from form or query values.
// Unparseable slider values are treated as absent.
func fieldsFromValues(vals url.Values, submit bool) query.Fields {
	return query.Fields{
		Host:        vals.Get("host"),
		Model:       vals.Get("model"),
		Prompt:      vals.Get("prompt"),
		Temperature: parseFloat(vals.Get("temperature")),
		TopP:        parseFloat(vals.Get("top_p")),
		Submit:      submit,
	}
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}
