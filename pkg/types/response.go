// Package types holds the wire shapes shared by every HTTP handler.
package types

// SuccessEnvelope wraps all 2xx payloads under a data key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error body. Details is populated only for
// codes whose metadata allows it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps all error payloads under an error key.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
