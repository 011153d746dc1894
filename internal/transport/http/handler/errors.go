package handler

import (
	"errors"

	"github.com/ErlanBelekov/notekeeper/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	errInternalServer     = "Internal server error"
	errInvalidBody        = "Invalid request body"
	errValidation         = "Validation failed"
	errDuplicateEmail     = "An account with this email already exists"
	errInvalidCredentials = "Invalid email or password"
	errNoteNotFound       = "Note not found or you don't have permission"
	errUnauthorized       = "Unauthorized"
)

// Message categories shown to the end user.
const (
	categorySuccess = "success"
	categoryError   = "error"
)

func errorBody(msg string) gin.H {
	return gin.H{"error": msg, "category": categoryError}
}

func messageBody(category, msg string) gin.H {
	return gin.H{"message": msg, "category": category}
}

// validationBody lists field errors; it never echoes input values.
func validationBody(err error) gin.H {
	body := errorBody(errValidation)
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		fields := make(map[string]string, len(ve.Fields))
		for _, f := range ve.Fields {
			if _, seen := fields[f.Field]; !seen {
				fields[f.Field] = f.Message
			}
		}
		body["fields"] = fields
	}
	return body
}
