package collector

import "net/http"

// runNotFoundError is returned for unknown or already closed run ids.
type runNotFoundError struct{ id string }

func (e runNotFoundError) Error() string   { return "run not found: " + e.id }
func (e runNotFoundError) StatusCode() int { return http.StatusNotFound }

func ErrRunNotFound(id string) error { return runNotFoundError{id: id} }

// IsRunNotFound reports whether err indicates an unknown run id.
func IsRunNotFound(err error) bool {
	_, ok := err.(runNotFoundError)
	return ok
}
