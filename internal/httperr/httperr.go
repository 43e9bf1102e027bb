package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string         `json:"error_code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

var statusByCode = map[string]int{
	"not_found":                http.StatusNotFound,
	"invalid_request":          http.StatusBadRequest,
	"invalid_transition":       http.StatusConflict,
	"slot_unavailable":         http.StatusConflict,
	"slot_no_longer_available": http.StatusConflict,
	"insufficient_inventory":   http.StatusConflict,
	"store_unavailable":        http.StatusServiceUnavailable,
	"forbidden":                http.StatusForbidden,
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// StatusFor maps a business code to its HTTP status; unknown codes are 500.
func StatusFor(code string) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// FromError writes err using its business code and details, if any.
func FromError(c *gin.Context, err error) {
	code := CodeOf(err)
	if code == "" {
		Internal(c, "internal_error", "Unexpected error.")
		return
	}

	body := HTTPError{
		Code:    code,
		Message: err.Error(),
	}
	if code == "store_unavailable" {
		// driver errors stay in the logs
		body.Message = "Data store unavailable, try again."
	}

	var d Detailer
	if errors.As(err, &d) {
		body.Details = d.Details()
	}

	c.JSON(StatusFor(code), body)
}
