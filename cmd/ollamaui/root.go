package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ollamaui/internal/config"
	"ollamaui/internal/logging"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	envFile    string
	ollamaHost string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:   "ollamaui",
		Short: "Query local Ollama models from a single-page web form",
		Long: `ollamaui serves a form that picks a local model, tunes temperature and top-p,
sends one prompt to an Ollama server and shows the generated text with its
timing metadata. Running it without a subcommand starts the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "Config file (.yaml, .yml, .json or .toml)")
	pf.StringVar(&f.envFile, "env-file", ".env", "Dotenv file loaded before reading the environment")
	pf.StringVar(&f.ollamaHost, "ollama-host", "", "Ollama server URL (defaults OLLAMA_HOST or http://localhost:11434)")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level: debug|info|warn|error|off")
	pf.StringVar(&f.logFormat, "log-format", "", "Log format: console|json")

	serve := newServeCmd(f)
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, newQueryCmd(f))
	return root
}

// resolveConfig layers config file, .env, environment and flags, in that order.
func resolveConfig(cmd *cobra.Command, f *rootFlags) (config.Config, error) {
	cfg, err := config.Resolve(f.configPath, f.envFile)
	if err != nil {
		return cfg, err
	}
	if flagChanged(cmd, "ollama-host") {
		cfg.OllamaHost = f.ollamaHost
	}
	if flagChanged(cmd, "log-level") {
		cfg.LogLevel = f.logLevel
	}
	if flagChanged(cmd, "log-format") {
		cfg.LogFormat = f.logFormat
	}
	return cfg, cfg.Validate()
}

func flagChanged(cmd *cobra.Command, name string) bool {
	fl := cmd.Flags().Lookup(name)
	return fl != nil && fl.Changed
}

func newLogger(cmd *cobra.Command, cfg config.Config) zerolog.Logger {
	return logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
}
