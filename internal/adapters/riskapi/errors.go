package riskapi

import (
	"errors"
	"fmt"
	"strings"
)

// Error constants
var (
	// ErrDecode is returned when a 200 prediction body is not valid JSON.
	ErrDecode = errors.New("invalid response body")
	// ErrBodyTooLarge is returned when a 200 body exceeds the configured cap.
	ErrBodyTooLarge = errors.New("response body too large")
)

// APIError reports a non-200 answer from the risk service.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

// Error renders "Erreur API : <status> - <body>" (body omitted when empty).
func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return e.Short()
	}
	return fmt.Sprintf("Erreur API : %d - %s", e.StatusCode, body)
}

// Short renders only the status, as shown for visualization failures.
func (e *APIError) Short() string {
	return fmt.Sprintf("Erreur API : %d", e.StatusCode)
}

// TransportError reports a request that never produced a response.
type TransportError struct {
	Operation string
	Err       error
}

// Error renders "Erreur de connexion à l'API : <cause>".
func (e *TransportError) Error() string {
	return "Erreur de connexion à l'API : " + e.Err.Error()
}

// Unwrap exposes the cause.
func (e *TransportError) Unwrap() error { return e.Err }

// StatusCode extracts the upstream status from err, or 0 when err is not an APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
