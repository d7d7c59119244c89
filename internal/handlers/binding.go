package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// bindingErrorMessage flattens validator field errors into one client-facing
// message. Non-validator binding failures (malformed JSON, wrong types) fall
// back to a generic message.
func bindingErrorMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return "Invalid request format"
	}
	parts := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		parts[i] = fe.Field() + " failed validation on '" + fe.Tag() + "'"
	}
	return "Invalid request: " + strings.Join(parts, "; ")
}
