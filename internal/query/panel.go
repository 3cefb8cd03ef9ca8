package query

import (
	"math"
	"slices"
)

// Offered models when configuration does not name any.
var DefaultModels = []string{"llama2", "mistral", "neural-chat", "dolphin-mixtral"}

const (
	DefaultTemperature = 0.7
	DefaultTopP        = 0.9

	sliderMin = 0.0
	sliderMax = 1.0
	// steps per unit; the sliders move in increments of 0.1
	sliderSteps = 10
)

// Panel holds the offered choices and the defaults of the configuration controls.
type Panel struct {
	Host        string   `json:"host"`
	Models      []string `json:"models"`
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p"`
}

// NewPanel returns a panel for host with the stock model list and slider defaults.
func NewPanel(host string) Panel {
	return Panel{
		Host:        host,
		Models:      append([]string(nil), DefaultModels...),
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
	}
}

// DefaultModel is the preselected entry of the model list.
func (p Panel) DefaultModel() string {
	if len(p.Models) == 0 {
		return ""
	}
	return p.Models[0]
}

// Fields are raw control values as read from a request. Nil sliders mean
// the control was not sent and its default applies.
type Fields struct {
	Host        string
	Model       string
	Prompt      string
	Temperature *float64
	TopP        *float64
	Submit      bool
}

// Bind applies the constraints the controls themselves enforce and returns
// the immutable cycle input. It performs no other validation.
func (p Panel) Bind(f Fields) Input {
	in := Input{
		Host:        f.Host,
		Model:       f.Model,
		Prompt:      f.Prompt,
		Temperature: p.Temperature,
		TopP:        p.TopP,
	}
	if in.Host == "" {
		in.Host = p.Host
	}
	if !slices.Contains(p.Models, in.Model) {
		in.Model = p.DefaultModel()
	}
	if f.Temperature != nil {
		in.Temperature = Snap(*f.Temperature, p.Temperature)
	}
	if f.TopP != nil {
		in.TopP = Snap(*f.TopP, p.TopP)
	}
	if f.Submit {
		in.Action = ActionSubmit
	}
	return in
}

// Snap clamps v to the slider range and rounds it to the slider step.
// Non-finite values fall back to def.
func Snap(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = def
	}
	v = math.Max(sliderMin, math.Min(sliderMax, v))
	return math.Round(v*sliderSteps) / sliderSteps
}
