package types

// QueryRequest is the input of one interaction cycle as accepted by POST /api/query.
type QueryRequest struct {
	// Base URL of the Ollama server. Empty means the configured default.
	// example: http://localhost:11434
	Host string `json:"host,omitempty" example:"http://localhost:11434"`
	// Model name; must be one of the offered models.
	// example: mistral
	Model string `json:"model" example:"mistral"`
	// Prompt text. An empty prompt yields the empty_prompt_warning state.
	// example: Write a haiku about the ocean.
	Prompt string `json:"prompt" example:"Write a haiku about the ocean."`
	// Sampling temperature in [0,1], step 0.1.
	// example: 0.7
	Temperature *float64 `json:"temperature,omitempty" example:"0.7"`
	// Nucleus sampling probability in [0,1], step 0.1.
	// example: 0.9
	TopP *float64 `json:"top_p,omitempty" example:"0.9"`
}

// GenerateOptions carries the sampling parameters forwarded to Ollama.
type GenerateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

// GenerateRequest is the body of POST {host}/api/generate.
type GenerateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options GenerateOptions `json:"options"`
}

// GenerateResponse is the subset of the Ollama generate response that is rendered.
// Counters are pointers so an absent field stays distinguishable from zero.
type GenerateResponse struct {
	Model    string `json:"model,omitempty"`
	Response string `json:"response"`
	Done     bool   `json:"done"`

	// Durations are nanoseconds as reported by Ollama.
	TotalDuration   *int64 `json:"total_duration,omitempty"`
	LoadDuration    *int64 `json:"load_duration,omitempty"`
	PromptEvalCount *int64 `json:"prompt_eval_count,omitempty"`
	EvalCount       *int64 `json:"eval_count,omitempty"`
}

// ModelsResponse wraps the list of offered models returned by GET /api/models.
type ModelsResponse struct {
	// Offered model names, in display order.
	Models []string `json:"models"`
	// Model preselected in the panel.
	// example: llama2
	Default string `json:"default" example:"llama2"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
