package models

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// MissingFieldsMessage is shown to the user when a submission is incomplete.
const MissingFieldsMessage = "Please select all dropdowns and date!"

// ValidationError is a user-facing rejection of the form; no request is sent.
type ValidationError struct {
	Missing []Field
	Reason  string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		names := make([]string, len(e.Missing))
		for i, f := range e.Missing {
			names[i] = string(f)
		}
		return fmt.Sprintf("validation: missing %s", strings.Join(names, ", "))
	}
	return "validation: " + e.Reason
}

// UserMessage is the text to put in front of the user.
func (e *ValidationError) UserMessage() string {
	if len(e.Missing) > 0 {
		return MissingFieldsMessage
	}
	return e.Reason
}

func (e *ValidationError) ErrorCode() string { return "validation_error" }

func (e *ValidationError) HTTPStatus() int { return http.StatusBadRequest }

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
