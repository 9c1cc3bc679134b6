package server

import "github.com/agbru/bigcalc/internal/calculator"

// EvaluateRequest is the JSON body accepted by POST /evaluate.
type EvaluateRequest struct {
	Expr    string `json:"expr"`
	Backend string `json:"backend,omitempty"`
	// Vars maps variable names to decimal integers.
	Vars calculator.Env `json:"vars,omitempty"`
}

// Response is the JSON body returned by /evaluate.
type Response struct {
	Expr    string `json:"expr"`
	Backend string `json:"backend"`
	// Result is the decimal value, omitted on error.
	Result   string `json:"result,omitempty"`
	Bits     int    `json:"bits"`
	Digits   int    `json:"digits"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
	// Position is the one-based offset of a syntax or evaluation error.
	Position int `json:"position,omitempty"`
}

// ErrorResponse is the JSON body of a request-level failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// RequestError is a request validation failure with its HTTP status.
type RequestError struct {
	Message    string
	StatusCode int
}

func (e RequestError) Error() string { return e.Message }
