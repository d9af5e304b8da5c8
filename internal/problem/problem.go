// Package problem writes RFC 7807 problem details responses.
package problem

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Details is an RFC 7807 problem details document.
type Details struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Status    int       `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	Instance  string    `json:"instance,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const ContentType = "application/problem+json"

// Error is an error that carries the HTTP status to answer with.
type Error struct {
	Status int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Detail + ": " + e.Err.Error()
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound wraps err as a 404 with a public detail message.
func NotFound(detail string, err error) error {
	return &Error{Status: http.StatusNotFound, Detail: detail, Err: err}
}

// BadRequest wraps err as a 400 with a public detail message.
func BadRequest(detail string, err error) error {
	return &Error{Status: http.StatusBadRequest, Detail: detail, Err: err}
}

// New builds the details for status. The type is about:blank as RFC 7807 allows
// when the status code carries all the semantics.
func New(status int, detail, instance string) *Details {
	return &Details{
		Type:      "about:blank",
		Title:     http.StatusText(status),
		Status:    status,
		Detail:    detail,
		Instance:  instance,
		Timestamp: time.Now().UTC(),
	}
}

// Write sends d as the response.
func Write(w http.ResponseWriter, d *Details) {
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(d.Status)
	_ = json.NewEncoder(w).Encode(d)
}

// ErrorHandler returns a route error handler. Errors of type *Error answer with their
// status and detail; any other error is logged and answered with a bare 500.
func ErrorHandler(log *zap.Logger) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		var perr *Error
		if errors.As(err, &perr) {
			if perr.Status >= http.StatusInternalServerError {
				log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
			}
			Write(w, New(perr.Status, perr.Detail, r.URL.Path))
			return
		}
		log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		Write(w, New(http.StatusInternalServerError, "", r.URL.Path))
	}
}

// NotFoundHandler answers every request with a 404 problem.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Write(w, New(http.StatusNotFound, "no route matches "+r.URL.Path, r.URL.Path))
	})
}

// MethodNotAllowedHandler answers every request with a 405 problem.
func MethodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Write(w, New(http.StatusMethodNotAllowed, r.Method+" is not allowed on "+r.URL.Path, r.URL.Path))
	})
}
