// Public domain.

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	StatusCode int    `json:"status_code"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	Data       any    `json:"data,omitempty"`
}

// statusError carries an HTTP status for the client.
type statusError struct {
	code int
	msg  string
}

func (e *statusError) Error() string { return e.msg }

func errorf(code int, format string, a ...any) error {
	return &statusError{code, fmt.Sprintf(format, a...)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondOK(w http.ResponseWriter, r *http.Request, data any) {
	writeJSON(w, http.StatusOK, Envelope{
		StatusCode: http.StatusOK,
		Status:     http.StatusText(http.StatusOK),
		RequestID:  middleware.GetReqID(r.Context()),
		Data:       data,
	})
}

// respondError writes err with its status, 500 for errors without one.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	var se *statusError
	if errors.As(err, &se) {
		status, msg = se.code, se.msg
	} else {
		s.log.Error().Err(err).Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).Msg("request failed")
	}
	writeJSON(w, status, Envelope{
		StatusCode: status,
		Status:     http.StatusText(status),
		Error:      msg,
		RequestID:  middleware.GetReqID(r.Context()),
	})
}

// handle adapts a handler returning data or an error.
func (s *Server) handle(h func(r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := h(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondOK(w, r, data)
	}
}

const maxBody = 1 << 20

// decode reads a JSON body into a T and validates it.
func decode[T any](s *Server, r *http.Request) (T, error) {
	var zero, dst T
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dst); err != nil {
		return zero, errorf(http.StatusBadRequest, "invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, errorf(http.StatusBadRequest, "unexpected trailing data")
	}
	if err := s.check.Struct(dst); err != nil {
		return zero, errorf(http.StatusUnprocessableEntity, "%v", err)
	}
	return dst, nil
}
