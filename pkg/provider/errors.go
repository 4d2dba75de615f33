package provider

import (
	"fmt"
	"net/http"

	"github.com/getmockd/provider/pkg/fixture"
)

// MissingParameterError is returned when a required query parameter is absent.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return e.Name + " is required"
}

// StatusCode returns the HTTP status code for this error.
func (e *MissingParameterError) StatusCode() int {
	return http.StatusBadRequest
}

// UnparseableDateError is returned when valid_date is not a recognizable date.
type UnparseableDateError struct {
	Value string
	Err   error
}

func (e *UnparseableDateError) Error() string {
	return fmt.Sprintf("'%s' is not a date", e.Value)
}

func (e *UnparseableDateError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code for this error.
func (e *UnparseableDateError) StatusCode() int {
	return http.StatusBadRequest
}

// EmptyFixtureError is returned when a count fixture holds zero.
type EmptyFixtureError struct {
	Kind fixture.Kind
}

func (e *EmptyFixtureError) Error() string {
	return fmt.Sprintf("%s fixture is empty", e.Kind)
}

// StatusCode returns the HTTP status code for this error.
func (e *EmptyFixtureError) StatusCode() int {
	return http.StatusNotFound
}
