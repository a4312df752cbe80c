// Package handlers holds the HTTP handlers of the pricing API.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

// DefaultMaxBodyBytes bounds request bodies when the server sets no limit.
const DefaultMaxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeAppError maps err's code onto an HTTP status.  Server-side failures
// are masked; client errors echo the message and detail.
func writeAppError(w http.ResponseWriter, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{Code: code.String(), Message: errors.DefaultMessageForCode(code)}
	var ae *errors.AppError
	if stderrors.As(err, &ae) && status < http.StatusInternalServerError {
		resp.Message = ae.Message
		resp.Detail = ae.Detail
	}
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", logging.String("code", code.String()), logging.Err(err))
	}
	writeJSON(w, status, resp)
}

// decodeJSON reads a JSON body into dst.  An empty body is an error.
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New(errors.ErrCodeBadRequest, "request body is required")
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, DefaultMaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if stderrors.Is(err, io.EOF) {
			return errors.New(errors.ErrCodeBadRequest, "request body is required")
		}
		return errors.Wrap(err, errors.ErrCodeSerialization, "malformed request body").WithDetail(err.Error())
	}
	return nil
}

// readBody returns the raw request body up to DefaultMaxBodyBytes.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, errors.New(errors.ErrCodeBadRequest, "request body is required")
	}
	data, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, DefaultMaxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read request body").WithDetail(err.Error())
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeBadRequest, "request body is required")
	}
	return data, nil
}

//Personal.AI order the ending
