package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/agbru/bigcalc/internal/calculator"
	"github.com/agbru/bigcalc/internal/config"
	apperrors "github.com/agbru/bigcalc/internal/errors"
	"github.com/agbru/bigcalc/internal/expr"
	"github.com/agbru/bigcalc/internal/logging"
	"github.com/agbru/bigcalc/internal/service"
	"github.com/agbru/bigcalc/pkg/bigint"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleBackends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, map[string]any{
		"backends": s.service.Backends(),
		"default":  s.defaultBackend(),
	})
}

func (s *Server) handleFunctions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, map[string]any{
		"functions": expr.Functions(),
	})
}

// handleEvaluate evaluates one expression. GET takes "expr", "backend" and
// repeated "var=name=value" query parameters; POST takes an EvaluateRequest
// body.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var (
		req EvaluateRequest
		err error
	)
	switch r.Method {
	case http.MethodGet:
		req, err = parseEvaluateQuery(r)
	case http.MethodPost:
		req, err = decodeEvaluateBody(r)
	default:
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if err != nil {
		status, msg := requestStatus(err)
		s.rejectRequest(w, status, msg)
		return
	}
	if req.Backend == "" {
		req.Backend = s.defaultBackend()
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.service.Evaluate(ctx, req.Backend, req.Expr, req.Vars)
	duration := time.Since(start)

	resp := buildEvaluateResponse(req, result, duration, err)
	status := statusFor(err)
	if status != http.StatusOK {
		s.metrics.ObserveRejection(status)
		s.logger.Debug("evaluation failed",
			logging.String("backend", req.Backend),
			logging.Int("status", status),
			logging.Err(err),
		)
	}
	s.writeJSONResponse(w, status, resp)
}

// parseEvaluateQuery reads an EvaluateRequest from the URL query.
func parseEvaluateQuery(r *http.Request) (EvaluateRequest, error) {
	q := r.URL.Query()
	req := EvaluateRequest{
		Expr:    q.Get("expr"),
		Backend: q.Get("backend"),
	}
	if strings.TrimSpace(req.Expr) == "" {
		return req, RequestError{Message: "Missing 'expr' parameter", StatusCode: http.StatusBadRequest}
	}
	for _, kv := range q["var"] {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return req, apperrors.NewValidationError("var", "want name=value", kv)
		}
		if req.Vars == nil {
			req.Vars = calculator.Env{}
		}
		req.Vars[name] = value
	}
	return req, validateVars(req.Vars)
}

// decodeEvaluateBody reads an EvaluateRequest from a JSON body.
func decodeEvaluateBody(r *http.Request) (EvaluateRequest, error) {
	var req EvaluateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, RequestError{Message: "Request body too large", StatusCode: http.StatusRequestEntityTooLarge}
		}
		return req, RequestError{Message: "Invalid JSON body: " + err.Error(), StatusCode: http.StatusBadRequest}
	}
	if strings.TrimSpace(req.Expr) == "" {
		return req, RequestError{Message: "Missing 'expr' field", StatusCode: http.StatusBadRequest}
	}
	return req, validateVars(req.Vars)
}

// validateVars rejects variable values that are not decimal integers.
func validateVars(vars calculator.Env) error {
	for name, value := range vars {
		if _, err := bigint.Parse(value); err != nil {
			return apperrors.NewValidationError(name, err.Error(), value)
		}
	}
	return nil
}

// requestStatus maps a request decoding error to an HTTP status and the
// message returned to the client.
func requestStatus(err error) (int, string) {
	var (
		reqErr RequestError
		valErr apperrors.ValidationError
	)
	switch {
	case errors.As(err, &reqErr):
		return reqErr.StatusCode, reqErr.Message
	case errors.As(err, &valErr):
		return http.StatusBadRequest, "Invalid request: " + valErr.Error()
	}
	return http.StatusBadRequest, err.Error()
}

// statusFor maps an evaluation error to an HTTP status.
func statusFor(err error) int {
	var (
		syntaxErr *expr.SyntaxError
		evalErr   *expr.EvalError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &syntaxErr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnknownBackend):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrExpressionTooLong):
		return http.StatusRequestEntityTooLarge
	case apperrors.IsContextError(err):
		return http.StatusGatewayTimeout
	case errors.As(err, &evalErr):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func buildEvaluateResponse(req EvaluateRequest, result calculator.Result, duration time.Duration, err error) Response {
	resp := Response{
		Expr:     req.Expr,
		Backend:  req.Backend,
		Duration: duration.String(),
	}
	if err != nil {
		resp.Error = err.Error()
		var (
			syntaxErr *expr.SyntaxError
			evalErr   *expr.EvalError
		)
		if errors.As(err, &syntaxErr) {
			resp.Position = syntaxErr.Pos + 1
		} else if errors.As(err, &evalErr) {
			resp.Position = evalErr.Pos + 1
		}
		return resp
	}
	resp.Result = result.Value
	resp.Bits = result.Bits
	resp.Digits = result.Digits()
	return resp
}

// defaultBackend is the configured backend, or the first registered one
// when the configuration asks for all of them.
func (s *Server) defaultBackend() string {
	if s.cfg.Backend != "" && s.cfg.Backend != config.DefaultBackend {
		return s.cfg.Backend
	}
	if names := s.service.Backends(); len(names) > 0 {
		return names[0]
	}
	return ""
}

func (s *Server) rejectRequest(w http.ResponseWriter, statusCode int, message string) {
	s.metrics.ObserveRejection(statusCode)
	s.writeErrorResponse(w, statusCode, message)
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSONResponse(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
