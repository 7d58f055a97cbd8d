// Package response defines the JSON envelope every API endpoint replies with.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var EmptyRequestBodyResponse = Response{
	Status:     StatusError,
	StatusCode: http.StatusBadRequest,
	Error:      "Empty Request Body",
	Message:    "Request body is empty. Please provide necessary data.",
}

var BadRequestResponse = Response{
	Status:     StatusError,
	StatusCode: http.StatusBadRequest,
	Error:      "Bad Request",
	Message:    "The request could not be understood. Please check the request body and parameters.",
}

var UnauthorizedResponse = Response{
	Status:     StatusError,
	StatusCode: http.StatusUnauthorized,
	Error:      "Unauthorized",
	Message:    "Authentication is required to access this resource.",
}

var ForbiddenResponse = Response{
	Status:     StatusError,
	StatusCode: http.StatusForbidden,
	Error:      "Forbidden",
	Message:    "You are not allowed to modify this resource.",
}

var ResourceNotFoundResponse = Response{
	Status:     StatusError,
	StatusCode: http.StatusNotFound,
	Error:      "Resource Not Found",
	Message:    "The requested resource was not found.",
}

var ConflictResponse = Response{
	Status:     StatusError,
	StatusCode: http.StatusConflict,
	Error:      "Conflict",
	Message:    "The requested short code is already taken. Please choose another one.",
}

var TooManyRequestsResponse = Response{
	Status:     StatusError,
	StatusCode: http.StatusTooManyRequests,
	Error:      "Too Many Requests",
	Message:    "Too many requests. Please try again later.",
}

var ServerErrorResponse = Response{
	Status:     StatusError,
	StatusCode: http.StatusInternalServerError,
	Error:      "Server Error",
	Message:    "An internal server error occurred. Please try again later.",
}

type Response struct {
	Status     string `json:"status"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
	Message    string `json:"message"`
	Details    []any  `json:"details,omitempty"`
	Data       any    `json:"data,omitempty"`
}

// SuccessResponse builds a success envelope. Only the first data value is used.
func SuccessResponse(msg string, data ...any) Response {
	resp := Response{
		Status:  StatusSuccess,
		Message: msg,
	}

	if len(data) > 0 {
		resp.Data = data[0]
	}

	return resp
}

// InvalidInputResponse reports a request rejected by business rules.
func InvalidInputResponse(msg string) Response {
	resp := BadRequestResponse
	resp.Error = "Invalid Input"
	resp.Message = msg
	return resp
}

type validationError struct {
	Field string `json:"field"`
	Value any    `json:"value"`
	Issue string `json:"issue"`
}

func issue(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "url", "http_url":
		return "Invalid url."
	case "shortcode":
		return "Must be 3-20 letters, digits, hyphens or underscores and not a reserved word."
	case "min", "gte":
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.Join(strings.Fields(fe.Param()), ", "))
	case "uuid", "uuid4":
		return "Invalid id."
	case "gtfield", "gt":
		return "Value is too small."
	default:
		return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
	}
}

func getValidationErrors(err error) []validationError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	errs := make([]validationError, 0, len(ve))
	for _, fe := range ve {
		errs = append(errs, validationError{
			Field: fe.Field(),
			Value: fe.Value(),
			Issue: issue(fe),
		})
	}

	return errs
}

// ValidationErrorResponse lists the fields that failed validation.
func ValidationErrorResponse(err error) Response {
	resp := Response{
		Status:     StatusError,
		StatusCode: http.StatusBadRequest,
		Error:      "Validation Error",
		Message:    "The request contains invalid fields.",
	}

	for _, e := range getValidationErrors(err) {
		resp.Details = append(resp.Details, e)
	}

	return resp
}
