package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"ollamaui/internal/ollama"
	"ollamaui/internal/query"
)

type queryFlags struct {
	model       string
	prompt      string
	temperature float64
	topP        float64
	interactive bool
	jsonOut     bool
}

// errCycleFailed marks a cycle that ended in a failure or warning state;
// the view has already been printed.
var errCycleFailed = errors.New("query did not succeed")

func newQueryCmd(rf *rootFlags) *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query [prompt]",
		Short: "Run one query cycle from the terminal",
		Example: "  ollamaui query --model mistral --temperature 0.2 \"Write a haiku about the ocean\"\n" +
			"  echo 'Explain TCP' | ollamaui query --prompt -\n" +
			"  ollamaui query -i",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, rf)
			if err != nil {
				return err
			}
			panel := cfg.Panel()
			fields, err := queryFields(cmd, f, args, panel)
			if err != nil {
				return err
			}
			client := ollama.New(ollama.WithRequestTimeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second))
			in := panel.Bind(fields)
			v := query.Run(cmd.Context(), client, in)
			if f.jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(v); err != nil {
					return err
				}
			} else {
				printView(cmd.OutOrStdout(), v)
			}
			if v.State != query.StateSuccess {
				return errCycleFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "Model name (defaults to the first configured model)")
	cmd.Flags().StringVarP(&f.prompt, "prompt", "p", "", "Prompt text; '-' reads stdin")
	cmd.Flags().Float64Var(&f.temperature, "temperature", query.DefaultTemperature, "Sampling temperature in [0,1], step 0.1")
	cmd.Flags().Float64Var(&f.topP, "top-p", query.DefaultTopP, "Nucleus sampling in [0,1], step 0.1")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "Pick the model and type the prompt interactively")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Print the rendered view as JSON")
	return cmd
}

// queryFields gathers control values from flags, args, stdin or prompts.
func queryFields(cmd *cobra.Command, f *queryFlags, args []string, panel query.Panel) (query.Fields, error) {
	// A flag has no select control to fall back on, so an unknown name is an error.
	if f.model != "" && !slices.Contains(panel.Models, f.model) {
		return query.Fields{}, fmt.Errorf("unknown model: %s (offered: %s)", f.model, strings.Join(panel.Models, ", "))
	}
	fields := query.Fields{Host: panel.Host, Model: f.model, Prompt: f.prompt, Submit: true}
	if len(args) == 1 {
		fields.Prompt = args[0]
	}
	if fields.Prompt == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fields, fmt.Errorf("read prompt from stdin: %w", err)
		}
		fields.Prompt = strings.TrimRight(string(b), "\n")
	}
	if flagChanged(cmd, "temperature") {
		fields.Temperature = &f.temperature
	}
	if flagChanged(cmd, "top-p") {
		fields.TopP = &f.topP
	}
	if !f.interactive {
		return fields, nil
	}
	if fields.Model == "" {
		sel := promptui.Select{Label: "Select Model", Items: panel.Models}
		_, model, err := sel.Run()
		if err != nil {
			return fields, fmt.Errorf("model selection: %w", err)
		}
		fields.Model = model
	}
	if fields.Prompt == "" {
		p := promptui.Prompt{Label: "Enter your prompt"}
		text, err := p.Run()
		if err != nil {
			return fields, fmt.Errorf("prompt input: %w", err)
		}
		fields.Prompt = text
	}
	return fields, nil
}

// printView renders a view as plain text in the same order as the page.
func printView(w io.Writer, v query.View) {
	if v.Info != "" {
		fmt.Fprintln(w, v.Info)
	}
	if v.Warning != "" {
		fmt.Fprintln(w, "Warning: "+v.Warning)
	}
	if v.Error != "" {
		fmt.Fprintln(w, v.Error)
		fmt.Fprintln(w, v.Hint)
	}
	if v.State != query.StateSuccess {
		return
	}
	fmt.Fprintln(w, v.Success)
	fmt.Fprintln(w)
	fmt.Fprintln(w, v.Response)
	if m := v.Metadata; m != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "model=%s temperature=%.1f top_p=%.1f\n", m.Model, m.Temperature, m.TopP)
		for _, fld := range m.Fields {
			fmt.Fprintf(w, "%s=%s\n", fld.Name, fld.Display)
		}
	}
}

// compile-time check that the client satisfies the cycle's dependency
var _ query.Generator = (*ollama.Client)(nil)
