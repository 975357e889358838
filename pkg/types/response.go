package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error shape. Reason names the domain failure kind
// (for example EMPTY_BANK) when one is known.
type APIError struct {
	Code    string `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
