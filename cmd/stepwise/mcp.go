package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepwise"
	mcpAdapter "github.com/aretw0/stepwise/internal/adapters/mcp"
	"github.com/aretw0/stepwise/internal/logging"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP tool server",
	Long: `Exposes the engine operations as MCP tools. The stdio transport is the
default; --transport sse serves the protocol over HTTP instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if transport, _ := cmd.Flags().GetString("transport"); transport != "" {
			cfg.MCP.Transport = transport
		}
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.MCP.Port = port
		}

		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		log := logging.New(level)

		eng, err := stepwise.New(
			stepwise.WithLogger(log),
			stepwise.WithMaxSteps(cfg.MaxSteps),
		)
		if err != nil {
			return err
		}

		server := mcpAdapter.NewServer(eng, stepwise.Version, mcpAdapter.WithLogger(log))

		if cfg.MCP.Transport == "sse" {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.ServeSSE(ctx, cfg.MCP.Port)
		}
		return server.ServeStdio()
	},
}

func init() {
	mcpCmd.Flags().String("transport", "", "Transport: stdio or sse (overrides config)")
	mcpCmd.Flags().Int("port", 0, "SSE port (overrides config)")
	rootCmd.AddCommand(mcpCmd)
}
