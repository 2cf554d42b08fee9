// Package mcp exposes the engine as MCP tools so agent hosts can request
// step-by-step mathematics over stdio or SSE.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
)

// Engine is the surface the MCP adapter needs from the stepwise facade.
type Engine interface {
	Run(ctx context.Context, req domain.Request) (*domain.EngineResult, error)
	Render(result *domain.EngineResult, format string, verbosity domain.Verbosity) (string, error)
	Operations() []domain.Operation
}

// Server wraps the Engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	log       *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the adapter logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// NewServer creates an MCP server exposing one tool per engine capability.
func NewServer(engine Engine, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("stepwise-mcp", version),
		log:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP protocol over SSE on the given port until ctx ends.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.log.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

// toolArgs is the argument shape shared by all tools. The mapstructure tags
// bind the raw MCP argument map onto it.
type toolArgs struct {
	Expression string `mapstructure:"expression"`
	Variable   string `mapstructure:"variable"`
	Order      int    `mapstructure:"order"`
	Operation  string `mapstructure:"operation"`
	MatrixB    string `mapstructure:"matrix_b"`
	Verbosity  string `mapstructure:"verbosity"`
}

func decodeArgs(raw map[string]any) (toolArgs, error) {
	var args toolArgs
	cfg := &mapstructure.DecoderConfig{
		Result:           &args,
		WeaklyTypedInput: true, // JSON numbers arrive as float64
	}
	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return args, err
	}
	if err := dec.Decode(raw); err != nil {
		return args, fmt.Errorf("invalid tool arguments: %w", err)
	}
	return args, nil
}

func (s *Server) registerTools() {
	expressionArg := mcp.WithString("expression", mcp.Required(),
		mcp.Description("The expression to transform, e.g. 'sin(x**2)'"))
	verbosityArg := mcp.WithString("verbosity",
		mcp.Description("Explanation detail: concise, detailed or teacher"))

	s.mcpServer.AddTool(mcp.NewTool("differentiate",
		mcp.WithDescription("Differentiate an expression step by step."),
		expressionArg,
		mcp.WithString("variable", mcp.Description("Differentiation variable (default x)")),
		mcp.WithNumber("order", mcp.Description("Derivative order, 1 to 10 (default 1)")),
		verbosityArg,
	), s.iterativeHandler(domain.OpDifferentiate))

	s.mcpServer.AddTool(mcp.NewTool("expand",
		mcp.WithDescription("Expand a product or power into a sum of terms."),
		expressionArg, verbosityArg,
	), s.iterativeHandler(domain.OpExpand))

	s.mcpServer.AddTool(mcp.NewTool("factor",
		mcp.WithDescription("Factor an expression."),
		expressionArg, verbosityArg,
	), s.iterativeHandler(domain.OpFactor))

	s.mcpServer.AddTool(mcp.NewTool("simplify",
		mcp.WithDescription("Simplify an expression."),
		expressionArg, verbosityArg,
	), s.iterativeHandler(domain.OpSimplify))

	s.mcpServer.AddTool(mcp.NewTool("matrix",
		mcp.WithDescription("Run a matrix operation with narrated steps."),
		mcp.WithString("operation", mcp.Required(),
			mcp.Description("One of matrix_multiply, matrix_determinant, matrix_inverse, matrix_rref, matrix_eigenvalues, matrix_lu")),
		mcp.WithString("expression", mcp.Required(),
			mcp.Description("Matrix literal, e.g. [[1,2],[3,4]]")),
		mcp.WithString("matrix_b", mcp.Description("Right-hand operand for matrix_multiply")),
		verbosityArg,
	), s.handleMatrix)

	s.mcpServer.AddTool(mcp.NewTool("list_operations",
		mcp.WithDescription("List the operations this engine supports."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var names string
		for _, op := range s.engine.Operations() {
			names += op.String() + "\n"
		}
		return mcp.NewToolResultText(names), nil
	})
}

// iterativeHandler builds the tool handler for one rewrite operation.
func (s *Server) iterativeHandler(op domain.Operation) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := decodeArgs(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return s.run(ctx, domain.Request{
			Operation:  op,
			Expression: args.Expression,
			Variable:   args.Variable,
			Order:      args.Order,
		}, args.Verbosity)
	}
}

func (s *Server) handleMatrix(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decodeArgs(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.run(ctx, domain.Request{
		Operation:  domain.Operation(args.Operation),
		Expression: args.Expression,
		MatrixB:    args.MatrixB,
	}, args.Verbosity)
}

func (s *Server) run(ctx context.Context, req domain.Request, verbosity string) (*mcp.CallToolResult, error) {
	v, err := domain.ParseVerbosity(verbosity)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := s.engine.Run(ctx, req)
	if err != nil {
		// User errors are tool results so the host can relay them; only
		// engine bugs surface as protocol errors.
		if domain.IsUserError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}
	text, err := s.engine.Render(result, "text", v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(text), nil
}
