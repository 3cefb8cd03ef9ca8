package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"ollamaui/internal/query"
)

// zlog is the structured logger used by the HTTP layer.
var zlog = zerolog.New(os.Stderr).With().Timestamp().Logger()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// defaultLogLevel applies when a request carries no override.
var defaultLogLevel = LevelInfo

// SetLogLevel sets the default per-request log level ("off", "error", "info", "debug").
func SetLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logCycle records the start or end of a query cycle. Prompts are never logged.
func logCycle(r *http.Request, lvl LogLevel, cycleID, msg string, in query.Input, v *query.View, dur time.Duration) {
	failed := v != nil && v.Error != ""
	if lvl == LevelOff || (lvl == LevelError && !failed) {
		return
	}
	e := zlog.Info()
	if failed {
		e = zlog.Warn()
	}
	e = e.Str("path", r.URL.Path).Str("cycle_id", cycleID).Str("model", in.Model)
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		e = e.Str("request_id", rid)
	}
	if lvl >= LevelDebug {
		e = e.Str("host", in.Host).Float64("temperature", in.Temperature).Float64("top_p", in.TopP).Int("prompt_len", len(in.Prompt))
	}
	if v != nil {
		e = e.Str("state", string(v.State)).Dur("dur", dur)
		if v.Error != "" {
			e = e.Str("error", v.Error)
		}
	}
	e.Msg(msg)
}
