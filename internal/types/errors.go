package types

import "fmt"

// ErrAPIError represents a non-success response from a remote service.
type ErrAPIError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e ErrAPIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Service, e.StatusCode, e.Message)
}
