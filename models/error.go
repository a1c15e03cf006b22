package models

// ErrorResponse is the shared error envelope returned by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}
