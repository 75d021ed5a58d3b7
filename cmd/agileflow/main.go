package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notkshitijsingh/AgileFlowAI/internal/cli/printer"
	"github.com/notkshitijsingh/AgileFlowAI/internal/client"
	"github.com/notkshitijsingh/AgileFlowAI/internal/config"
)

var Version = "dev"

// app carries what every subcommand needs
type app struct {
	configPath string
	verbose    bool
	out        io.Writer
	printer    *printer.Printer
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{
		out:     out,
		printer: printer.New(out, errOut),
	}

	rootCmd := &cobra.Command{
		Use:           "agileflow",
		Short:         "AgileFlow AI - generate agile boards from project details",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "configs/config.yaml", "path to the yaml config file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log AI calls to stderr")

	rootCmd.AddCommand(a.generateCmd())
	rootCmd.AddCommand(a.tipCmd())
	rootCmd.AddCommand(a.versionCmd())

	return rootCmd
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("agileflow %s\n", Version)
		},
	}
}

func (a *app) logger() *zap.Logger {
	if !a.verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// loadAI loads configuration and builds the AI client, failing when no key is set
func (a *app) loadAI() (*config.Config, client.BoardAI, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, nil, a.printer.Error("Invalid configuration", err.Error(), nil)
	}
	if !cfg.AI.Enabled() {
		return nil, nil, a.printer.Error("No AI API key configured",
			"Story suggestion, board generation and tips need the Gemini API.",
			[]string{"export GEMINI_API_KEY=<your key>", "or set ai.api_key in " + a.configPath},
		)
	}
	ai := client.NewGeminiClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout, a.logger(), nil)
	return cfg, ai, nil
}
