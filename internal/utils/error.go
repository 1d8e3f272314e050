package utils

// ErrorResponse is the JSON body returned for failed requests. Message carries
// the HTTP status text; Description says what went wrong with this request.
type ErrorResponse struct {
	Code        int    `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

// NewErrorResponse builds the standard error body
func NewErrorResponse(code int, message, description string) ErrorResponse {
	return ErrorResponse{
		Code:        code,
		Message:     message,
		Description: description,
	}
}
