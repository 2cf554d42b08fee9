package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/config"
	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/aretw0/stepwise/internal/timeout"
	"github.com/aretw0/stepwise/pkg/domain"
)

var rootCmd = &cobra.Command{
	Use:   "stepwise",
	Short: "Stepwise explains symbolic mathematics one rewrite at a time",
	Long: `Stepwise runs a rule-based step-decomposition engine: every operation
returns the final result together with the DAG of explainable rewrite steps
that produced it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree and maps failures onto exit codes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a stepwise.yaml config file")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "Output format: text, json or mermaid")
	rootCmd.PersistentFlags().String("verbosity", "detailed", "Explanation detail: concise, detailed or teacher")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Computation time limit (0 uses the configured default)")
	rootCmd.PersistentFlags().Bool("plain", false, "Disable styled terminal output")
}

// loadConfig resolves the configuration for one command invocation.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// newEngine assembles the library facade from the resolved configuration.
func newEngine(cfg config.Config) (*stepwise.Engine, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return stepwise.New(
		stepwise.WithLogger(logging.New(level)),
		stepwise.WithMaxSteps(cfg.MaxSteps),
	)
}

// runAndPrint executes one operation and prints it in the requested format.
func runAndPrint(cmd *cobra.Command, req domain.Request) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	d, _ := cmd.Flags().GetDuration("timeout")
	if d == 0 {
		d = cfg.Timeout
	}
	if d, err = timeout.Validate(d); err != nil {
		return err
	}

	result, err := timeout.Run(cmd.Context(), d, func(ctx context.Context) (*domain.EngineResult, error) {
		return eng.Run(ctx, req)
	})
	if err != nil {
		return err
	}
	return printResult(cmd, eng, result)
}

func printResult(cmd *cobra.Command, eng *stepwise.Engine, result *domain.EngineResult) error {
	format, _ := cmd.Flags().GetString("format")
	verbosityName, _ := cmd.Flags().GetString("verbosity")
	plain, _ := cmd.Flags().GetBool("plain")

	verbosity, err := domain.ParseVerbosity(verbosityName)
	if err != nil {
		return err
	}

	// Styled output only for the text format on an interactive terminal.
	if format == "text" && !plain && term.IsTerminal(int(os.Stdout.Fd())) {
		render := tui.NewRenderer()
		out, err := render(tui.Markdown(result, verbosity))
		if err == nil {
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}
		// Fall through to the plain renderer on styling failure.
	}

	out, err := eng.Render(result, format, verbosity)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	for _, w := range result.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", w)
	}
	return nil
}
