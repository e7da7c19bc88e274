// Package response contains response utility functions and types
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error types carried in the `error_type` field
const (
	InputException          = "InputException"
	AuthenticationException = "AuthenticationException"
	PermissionException     = "PermissionException"
	NotFoundException       = "NotFoundException"
	ConflictException       = "ConflictException"
	GeneratorException      = "GeneratorException"
	ServerException         = "ServerException"
)

// Response represents the standard API response structure
type Response struct {
	Status    string      `json:"status"`
	Data      interface{} `json:"data,omitempty"`
	ErrorType string      `json:"error_type,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// SuccessResponse sends a successful JSON response
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Status: "success",
		Data:   data,
	})
}

// CreatedResponse sends a 201 JSON response
func CreatedResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{
		Status: "success",
		Data:   data,
	})
}

// ErrorResponse sends an error JSON response
func ErrorResponse(c echo.Context, httpStatus int, errorType, message string) error {
	return c.JSON(httpStatus, Response{
		Status:    "error",
		ErrorType: errorType,
		Message:   message,
	})
}

// ErrorResponseWithData sends an error JSON response that still carries partial data
func ErrorResponseWithData(c echo.Context, httpStatus int, errorType, message string, data interface{}) error {
	return c.JSON(httpStatus, Response{
		Status:    "error",
		Data:      data,
		ErrorType: errorType,
		Message:   message,
	})
}
