package dto

// Response is the common envelope for every API response.
// Errors carries per-field validation messages on 400s.
type Response struct {
	Message string            `json:"message"`
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// OK builds a success envelope.
func OK(message string, data any) Response {
	return Response{Message: message, Success: true, Data: data}
}

// Fail builds an error envelope.
func Fail(message string) Response {
	return Response{Message: message, Success: false}
}

// FailFields builds an error envelope with per-field violations.
func FailFields(message string, fields map[string]string) Response {
	return Response{Message: message, Success: false, Errors: fields}
}
