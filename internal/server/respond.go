package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/timeslice/pkg/errors"
)

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		http.Error(w, `{"code":"INTERNAL_ERROR","message":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// writeError maps err to a status code by its error code. Errors without a
// code are logged and reported as internal errors.
func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	msg := errors.UserMessage(err)
	if code == "" || status == http.StatusInternalServerError {
		logger.Error("request failed", "err", err)
		if code == "" {
			code = errors.ErrCodeInternal
			msg = "internal server error"
		}
	}
	writeJSON(w, status, ErrorResponse{Code: string(code), Message: msg})
}

func statusFor(code errors.Code) int {
	switch {
	case code == errors.ErrCodeNotFound:
		return http.StatusNotFound
	case code == errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case code == errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case code == errors.ErrCodeStorage:
		return http.StatusServiceUnavailable
	case errors.IsValidation(errors.New(code, "")):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	return nil
}
