package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	lcerr "github.com/ruliana/link-community/pkg/errors"
	"github.com/ruliana/link-community/pkg/observability"
)

// statusClientClosed is logged when the client went away mid-request.
const statusClientClosed = 499

// statusError is an error with a fixed HTTP status.
type statusError struct {
	status int
	code   lcerr.Code
	msg    string
}

func (e *statusError) Error() string { return e.msg }

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one failed request.
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var se *statusError
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &se):
		return se.status
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return statusClientClosed
	}

	return lcerr.HTTPStatus(err)
}

func codeFor(err error, status int) string {
	var se *statusError
	if errors.As(err, &se) && se.code != "" {
		return string(se.code)
	}
	if code := lcerr.GetCode(err); code != "" {
		return string(code)
	}
	switch status {
	case http.StatusRequestEntityTooLarge:
		return "TOO_LARGE"
	case http.StatusGatewayTimeout:
		return "TIMEOUT"
	case http.StatusNotFound:
		return string(lcerr.ErrCodeNotFound)
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	}
	return string(lcerr.ErrCodeInternal)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	id := RequestID(ctx)
	status := statusFor(err)
	observability.HTTP().OnError(ctx, id, r.Method, routePattern(r), err)

	msg := lcerr.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request", id, "path", r.URL.Path, "err", err)
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	}
	s.writeJSON(w, status, ErrorBody{Error: ErrorDetail{
		Code:      codeFor(err, status),
		Message:   msg,
		RequestID: id,
	}})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}
