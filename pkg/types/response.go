package types

// SuccessEnvelope wraps every successful JSON response.
type SuccessEnvelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorEnvelope is the error body. Error carries the human readable message.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
	Stack   string `json:"stack,omitempty"`
}
