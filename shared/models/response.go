package models

// ErrorResponse - стандартная структура для ответа об ошибке в формате JSON.
// Каждый ответ API содержит флаг success.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewErrorResponse builds a failed response envelope.
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Success: false, Error: message}
}

// SuccessResponse - минимальный успешный ответ без данных.
type SuccessResponse struct {
	Success bool `json:"success"`
}
