package rpc

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"escrowd/native/escrow"
	"escrowd/observability"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
	codeUnauthorized   = -32001
	codeNotFound       = -32004
	codeConflict       = -32005
	codeExpired        = -32006
	codePrecondition   = -32007
)

// Server exposes the escrow engine and query facade over JSON-RPC. Transfer
// instructions produced by operations are returned verbatim in the result
// for the host-side ledger executor.
type Server struct {
	engine *escrow.Engine
	query  *escrow.Query
	log    *slog.Logger
}

// NewServer wires the RPC surface.
func NewServer(engine *escrow.Engine, query *escrow.Query, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{engine: engine, query: query, log: log}
}

// Router assembles the HTTP routes: the JSON-RPC endpoint at the root plus
// health and metrics endpoints.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/", s.handle)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	s.log.Info("starting JSON-RPC server", "addr", addr)
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}

// RPCRequest is the inbound JSON-RPC envelope. Params is a single object.
type RPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      json.RawMessage `json:"id"`
}

// RPCResponse is the outbound JSON-RPC envelope.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError carries a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		s.writeResponse(w, RPCResponse{JSONRPC: jsonRPCVersion, Error: &RPCError{Code: codeParseError, Message: "unable to read request body"}})
		return
	}
	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeResponse(w, RPCResponse{JSONRPC: jsonRPCVersion, Error: &RPCError{Code: codeParseError, Message: "malformed JSON-RPC request"}})
		return
	}
	if req.Method == "" {
		s.writeResponse(w, RPCResponse{JSONRPC: jsonRPCVersion, ID: req.ID, Error: &RPCError{Code: codeInvalidRequest, Message: "method required"}})
		return
	}

	start := time.Now()
	result, rpcErr := s.dispatch(req.Method, req.Params)
	outcome := "ok"
	if rpcErr != nil {
		outcome = "error"
		s.log.Warn("rpc request failed", "method", req.Method, "code", rpcErr.Code, "message", rpcErr.Message)
	}
	observability.Metrics().Observe(req.Method, outcome, time.Since(start))

	s.writeResponse(w, RPCResponse{JSONRPC: jsonRPCVersion, ID: req.ID, Result: result, Error: rpcErr})
}

func (s *Server) writeResponse(w http.ResponseWriter, resp RPCResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("write rpc response", "err", err)
	}
}

// errorToRPC maps engine errors onto JSON-RPC error objects.
func errorToRPC(err error) *RPCError {
	code := codeServerError
	switch {
	case errors.Is(err, escrow.ErrUnauthorized):
		code = codeUnauthorized
	case errors.Is(err, escrow.ErrNotFound), errors.Is(err, escrow.ErrMilestoneNotFound):
		code = codeNotFound
	case errors.Is(err, escrow.ErrAlreadyInUse):
		code = codeConflict
	case errors.Is(err, escrow.ErrExpired), errors.Is(err, escrow.ErrMilestoneExpired):
		code = codeExpired
	case errors.Is(err, escrow.ErrInvalidAddress), errors.Is(err, escrow.ErrInvalidID),
		errors.Is(err, escrow.ErrInvalidAmount), errors.Is(err, escrow.ErrEmptyBalance),
		errors.Is(err, escrow.ErrEmptyMilestones):
		code = codeInvalidParams
	case errors.Is(err, escrow.ErrFundsMismatch), errors.Is(err, escrow.ErrRecipientNotSet),
		errors.Is(err, escrow.ErrMilestoneCompleted), errors.Is(err, escrow.ErrDeadlineNotExtended):
		code = codePrecondition
	}
	return &RPCError{Code: code, Message: err.Error()}
}
