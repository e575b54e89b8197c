package model

// Response is the envelope for replies that carry no payload.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// DataResponse is the envelope for replies with a payload. Data is always
// serialised, so an empty collection reads as "data": [] and an unset hero as
// "data": null.
type DataResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// ErrorResponse is the envelope for failed requests. Field names the offending
// input on validation errors.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}
