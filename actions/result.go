package actions

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies why a Result is not successful.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindHTTP means the upstream API answered with a non-2xx status.
	KindHTTP
	// KindNetwork means the request never produced a usable response.
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindNetwork:
		return "network"
	default:
		return "none"
	}
}

// Result is the uniform outcome of every action. Success implies Data holds the
// upstream payload's data field; failure implies Error is populated.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`

	Kind   ErrorKind `json:"-"`
	Status int       `json:"-"`
}

// Ok wraps data in a successful Result.
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Err builds a failed Result.
func Err[T any](kind ErrorKind, msg string, details any) Result[T] {
	return Result[T]{Kind: kind, Error: msg, Details: details}
}

// HTTPError builds the failed Result for an upstream status code.
func HTTPError[T any](status int, details any) Result[T] {
	r := Err[T](KindHTTP, fmt.Sprintf("HTTP error! status: %d", status), details)
	r.Status = status
	return r
}

// Unauthorized reports whether the upstream API rejected the credential.
func (r Result[T]) Unauthorized() bool {
	return r.Kind == KindHTTP && r.Status == http.StatusUnauthorized
}

// Message returns the upstream "message" field from Details when present,
// falling back to Error.
func (r Result[T]) Message() string {
	if m, ok := r.Details.(map[string]any); ok {
		if s, ok := m["message"].(string); ok && s != "" {
			return s
		}
	}
	return r.Error
}
