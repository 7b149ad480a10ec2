package types

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SuccessEnvelope is the uniform success payload: a status discriminator plus data.
type SuccessEnvelope struct {
	Status  string `json:"status"`
	Payload any    `json:"payload,omitempty"`
}

// ErrorEnvelope carries the status discriminator and a human-readable message.
type ErrorEnvelope struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}
