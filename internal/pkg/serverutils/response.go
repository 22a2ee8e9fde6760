package serverutils

type Response[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) *Response[T] {
	return &Response[T]{
		Success: true,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) *Response[any] {
	return &Response[any]{
		Success: false,
		Code:    code,
		Message: message,
	}
}

// ValidationErrorResponse carries the per-field messages of a rejected body.
func ValidationErrorResponse(fields map[string]string) *Response[map[string]string] {
	return &Response[map[string]string]{
		Success: false,
		Code:    400,
		Message: "Validation failed",
		Data:    fields,
	}
}
