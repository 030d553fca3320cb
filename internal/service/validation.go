package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const invalidInputMessage = "Invalid inputs passed, please check your data."

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput runs struct tag validation and classifies any failure as a
// validation error whose cause names the offending fields.
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
		return Validation(invalidInputMessage, errors.New(strings.Join(details, "; ")))
	}
	return Validation(invalidInputMessage, err)
}
