// Package http exposes the engine as a JSON API: one POST route per run, the
// operation catalog, stored results, health, metrics and the OpenAPI contract.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/stepwise/api"
	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/internal/timeout"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

// Engine is the surface the HTTP adapter needs from the stepwise facade.
type Engine interface {
	Run(ctx context.Context, req domain.Request) (*domain.EngineResult, error)
	Render(result *domain.EngineResult, format string, verbosity domain.Verbosity) (string, error)
	Operations() []domain.Operation
}

// Server routes requests to the engine.
type Server struct {
	engine  Engine
	store   ports.ResultStore
	metrics http.Handler
	log     *slog.Logger
	timeout time.Duration
}

// Option configures the Server.
type Option func(*Server)

// WithStore enables result persistence and the /results routes.
func WithStore(store ports.ResultStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithMetricsHandler mounts a collector (typically promhttp) at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTimeout bounds the computation time of one request.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// NewHandler builds the routed handler. The embedded OpenAPI document is
// validated here so a broken contract fails startup, not a request.
func NewHandler(engine Engine, opts ...Option) (http.Handler, error) {
	if _, err := api.Load(); err != nil {
		return nil, err
	}

	s := &Server{
		engine:  engine,
		log:     logging.NewNop(),
		timeout: timeout.Default,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Post("/api/v1/{operation}", s.runOperation)
	r.Get("/api/v1/operations", s.listOperations)
	r.Get("/api/v1/results", s.listResults)
	r.Get("/api/v1/results/{id}", s.getResult)
	r.Get("/healthz", s.healthz)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(api.Spec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	return r, nil
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Stepwise API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// runRequest is the JSON body of POST /api/v1/{operation}.
type runRequest struct {
	Expression string `json:"expression"`
	Variable   string `json:"variable"`
	Order      int    `json:"order"`
	MatrixB    string `json:"matrix_b"`
	Format     string `json:"format"`
	Verbosity  string `json:"verbosity"`
}

// runResponse carries the completed run plus optional storage id and
// rendered text.
type runResponse struct {
	ID       string               `json:"id,omitempty"`
	Result   *domain.EngineResult `json:"result"`
	Rendered string               `json:"rendered,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Rule  string `json:"rule,omitempty"`
}

func (s *Server) runOperation(w http.ResponseWriter, r *http.Request) {
	var body runRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Kind: kindUserError})
		return
	}

	verbosity, err := domain.ParseVerbosity(body.Verbosity)
	if err != nil {
		s.writeJSONError(w, err)
		return
	}
	format := body.Format
	if format == "" {
		format = "json"
	}

	req := domain.Request{
		Operation:  domain.Operation(chi.URLParam(r, "operation")),
		Expression: body.Expression,
		Variable:   body.Variable,
		Order:      body.Order,
		MatrixB:    body.MatrixB,
	}

	result, err := timeout.Run(r.Context(), s.timeout, func(ctx context.Context) (*domain.EngineResult, error) {
		return s.engine.Run(ctx, req)
	})
	if err != nil {
		s.writeJSONError(w, err)
		return
	}

	resp := runResponse{Result: result}
	if format != "json" {
		rendered, err := s.engine.Render(result, format, verbosity)
		if err != nil {
			s.writeJSONError(w, err)
			return
		}
		resp.Rendered = rendered
	}
	if s.store != nil {
		id := newID()
		if err := s.store.Save(r.Context(), id, result); err != nil {
			s.log.Error("result save failed", "id", id, "err", err)
		} else {
			resp.ID = id
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listOperations(w http.ResponseWriter, _ *http.Request) {
	ops := s.engine.Operations()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.String()
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"operations": names})
}

func (s *Server) listResults(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotFound, errorResponse{Error: "no result store configured", Kind: kindUserError})
		return
	}
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.writeJSONError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"ids": ids})
}

func (s *Server) getResult(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotFound, errorResponse{Error: "no result store configured", Kind: kindUserError})
		return
	}
	id := chi.URLParam(r, "id")
	result, err := s.store.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrResultNotFound) {
			s.writeError(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("result %q not found", id), Kind: kindUserError})
			return
		}
		s.writeJSONError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Error kinds on the wire.
const (
	kindUserError   = "user_error"
	kindInvalidStep = "invalid_step"
	kindTimeout     = "timeout"
	kindInternal    = "internal"
)

// writeJSONError maps an engine error onto a status and kind: malformed input
// is 400, mathematically impossible requests are 422, rule bugs are 500 with
// the rule named, timeouts are 504.
func (s *Server) writeJSONError(w http.ResponseWriter, err error) {
	var sve *domain.StepValidationError
	switch {
	case errors.Is(err, timeout.ErrTimeout):
		s.writeError(w, http.StatusGatewayTimeout, errorResponse{Error: err.Error(), Kind: kindTimeout})
	case errors.As(err, &sve):
		s.log.Error("rule emitted an invalid step", "rule", sve.Rule, "err", err)
		s.writeError(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), Kind: kindInvalidStep, Rule: sve.Rule})
	case errors.Is(err, domain.ErrDimensionMismatch),
		errors.Is(err, domain.ErrNotSquare),
		errors.Is(err, domain.ErrSingularMatrix):
		s.writeError(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: kindUserError})
	case domain.IsUserError(err):
		s.writeError(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: kindUserError})
	default:
		s.log.Error("run failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), Kind: kindInternal})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, body errorResponse) {
	s.writeJSON(w, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("response encode failed", "err", err)
	}
}

// newID returns a random storage id for a persisted result.
func newID() string {
	var b [8]byte
	rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
