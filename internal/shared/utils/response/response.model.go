package response

// Envelope status labels
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIResponse is the envelope every parkwise endpoint and middleware writes,
// success or failure, so clients parse a single shape.
type APIResponse struct {
	Status     string      `json:"status"`           // StatusSuccess or StatusError
	StatusCode int         `json:"status_code"`      // HTTP status code
	Message    string      `json:"message"`          // Human-readable message
	Data       interface{} `json:"data,omitempty"`   // Payload for success
	Errors     interface{} `json:"errors,omitempty"` // Validation or error details
}
