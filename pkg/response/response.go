package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Envelope is the unified API response format.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPagination computes the derived pagination fields from page, limit and total.
func NewPagination(page, limit int, total int64) *Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    int64(page*limit) < total,
		HasPrev:    page > 1,
	}
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError represents a structured application error with HTTP status and error code.
type AppError struct {
	HTTPStatus int          // HTTP status code (e.g. 400, 404, 500)
	Code       string       // Machine-readable error code
	Message    string       // Human-readable error message
	Fields     []FieldError // Field-level details for validation errors
}

func (e *AppError) Error() string {
	return e.Message
}

// Pre-defined error constructors

func NewBadRequest(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Code: "BAD_REQUEST", Message: msg}
}

func NewUnauthorized(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: msg}
}

// NewNotFound covers both absent and unauthorized resources so the API never
// reveals whether a resource exists to a caller who cannot access it.
func NewNotFound(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusNotFound, Code: "NOT_FOUND", Message: msg}
}

func NewConflict(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Code: "CONFLICT", Message: msg}
}

func NewValidation(fields []FieldError) *AppError {
	return &AppError{
		HTTPStatus: http.StatusBadRequest,
		Code:       "VALIDATION_ERROR",
		Message:    "Validation failed",
		Fields:     fields,
	}
}

func NewServerError(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: msg}
}

// --- Gin response helpers ---

// Success sends a 200 OK response with data.
func Success(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// Paginated sends a 200 OK response with data and pagination metadata.
func Paginated(c *gin.Context, data interface{}, message string, p *Pagination) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message, Pagination: p})
}

// Created sends a 201 Created response with data.
func Created(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

// Error sends an error response. If err is an *AppError, its status, message and
// field errors are used; otherwise a generic 500 internal server error is
// returned, with the underlying message suppressed in release mode.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		env := Envelope{Success: false, Message: appErr.Message}
		if len(appErr.Fields) > 0 {
			env.Errors = appErr.Fields
		}
		c.JSON(appErr.HTTPStatus, env)
		return
	}

	msg := "Internal server error"
	if gin.Mode() != gin.ReleaseMode {
		msg = err.Error()
	}
	c.JSON(http.StatusInternalServerError, Envelope{Success: false, Message: msg})
}

// BindError translates a gin binding failure into either a field-level
// validation response or a plain 400 for malformed payloads.
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Message: validationMessage(fe)})
		}
		Error(c, NewValidation(fields))
		return
	}
	Error(c, NewBadRequest(err.Error()))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "hexcolor":
		return "must be a hex color like #1890ff"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		return "value is too short"
	case "max":
		return "value is too long"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "invalid value"
	}
}
