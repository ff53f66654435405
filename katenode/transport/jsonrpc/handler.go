package jsonrpc

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	jsoniter "github.com/json-iterator/go"

	"github.com/LumeraProtocol/kate/katenode/status"
	"github.com/LumeraProtocol/kate/pkg/errors"
	"github.com/LumeraProtocol/kate/pkg/kate"
	"github.com/LumeraProtocol/kate/pkg/logtrace"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonRaw = jsoniter.RawMessage

const (
	MethodQueryProof  = "kate_queryProof"
	MethodBlockLength = "kate_blockLength"
	MethodStatus      = "kate_status"
	MethodResetCache  = "kate_resetCache"
)

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// maxRequestBytes bounds a request body. Large cell lists fit comfortably.
const maxRequestBytes = 4 << 20

// ProofService is what the RPC surface serves.
type ProofService interface {
	QueryProof(ctx context.Context, n uint32, cells []kate.Cell) ([]byte, error)
	QueryBlockLength(ctx context.Context) (kate.BlockDimensions, error)
}

// Reporter produces node status reports.
type Reporter interface {
	Report(ctx context.Context) (*status.Report, error)
}

// CacheAdmin lets an operator clear the extension cache, which also lifts a
// poisoned state.
type CacheAdmin interface {
	Reset()
}

type request struct {
	JSONRPC string  `json:"jsonrpc"`
	Method  string  `json:"method"`
	Params  jsonRaw `json:"params,omitempty"`
	ID      jsonRaw `json:"id,omitempty"`
}

type response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      jsonRaw     `json:"id"`
}

// Error is a JSON-RPC error object. Data carries the failure kind so clients
// can tell retryable failures apart.
type Error struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    *ErrorData `json:"data,omitempty"`
}

// ErrorData is the structured part of an Error.
type ErrorData struct {
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
}

func invalidParams(err error) *Error {
	return &Error{
		Code:    CodeInvalidParams,
		Message: err.Error(),
		Data:    &ErrorData{Kind: errors.KindInvalidParams.String()},
	}
}

func internalError(err error) *Error {
	return &Error{
		Code:    CodeInternalError,
		Message: err.Error(),
		Data: &ErrorData{
			Kind:      errors.KindOf(err).String(),
			Retryable: errors.IsRetryable(err),
		},
	}
}

func (s *Server) serveRPC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		s.write(ctx, w, response{Error: &Error{Code: CodeParseError, Message: "read request: " + err.Error()}})
		return
	}

	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		s.write(ctx, w, response{Error: &Error{Code: CodeParseError, Message: "invalid JSON"}})
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		s.write(ctx, w, response{ID: req.ID, Error: &Error{Code: CodeInvalidRequest, Message: "invalid request"}})
		return
	}

	fields := logtrace.Fields{
		logtrace.FieldModule: "jsonrpc",
		logtrace.FieldMethod: req.Method,
	}
	start := time.Now()
	result, rpcErr := s.dispatch(ctx, req)
	fields[logtrace.FieldDuration] = time.Since(start).String()
	if rpcErr != nil {
		fields[logtrace.FieldError] = rpcErr.Message
		if rpcErr.Data != nil {
			fields[logtrace.FieldKind] = rpcErr.Data.Kind
		}
		logtrace.Warn(ctx, "rpc call failed", fields)
	} else {
		logtrace.Debug(ctx, "rpc call served", fields)
	}
	s.write(ctx, w, response{ID: req.ID, Result: result, Error: rpcErr})
}

func (s *Server) dispatch(ctx context.Context, req request) (interface{}, *Error) {
	switch req.Method {
	case MethodQueryProof:
		n, cells, err := decodeQueryProofParams(req.Params)
		if err != nil {
			return nil, invalidParams(err)
		}
		p, err := s.service.QueryProof(ctx, n, cells)
		if err != nil {
			return nil, internalError(err)
		}
		return hexutil.Encode(p), nil

	case MethodBlockLength:
		if err := decodeNoParams(req.Params); err != nil {
			return nil, invalidParams(err)
		}
		dims, err := s.service.QueryBlockLength(ctx)
		if err != nil {
			return nil, internalError(err)
		}
		return dims, nil

	case MethodStatus:
		if s.reporter == nil {
			break
		}
		if err := decodeNoParams(req.Params); err != nil {
			return nil, invalidParams(err)
		}
		report, err := s.reporter.Report(ctx)
		if err != nil {
			return nil, internalError(err)
		}
		return report, nil

	case MethodResetCache:
		if s.admin == nil {
			break
		}
		if err := decodeNoParams(req.Params); err != nil {
			return nil, invalidParams(err)
		}
		s.admin.Reset()
		logtrace.Warn(ctx, "extension cache reset", logtrace.Fields{logtrace.FieldModule: "jsonrpc"})
		return true, nil
	}
	return nil, &Error{Code: CodeMethodNotFound, Message: "method " + req.Method + " not found"}
}

func (s *Server) write(ctx context.Context, w http.ResponseWriter, resp response) {
	resp.JSONRPC = "2.0"
	if len(resp.ID) == 0 {
		resp.ID = jsonRaw("null")
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logtrace.Error(ctx, "write rpc response", logtrace.Fields{
			logtrace.FieldModule: "jsonrpc",
			logtrace.FieldError:  err.Error(),
		})
	}
}

func (s *Server) serveHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
