package security

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// UsernameTag validates a user name against the user name grammar.
const UsernameTag = "username"

// RegisterUsernameValidation adds the username tag to v, matching grammar.
func RegisterUsernameValidation(v *validator.Validate, grammar string) error {
	re, err := regexp.Compile(grammar)
	if err != nil {
		return fmt.Errorf("invalid username grammar: %w", err)
	}
	return v.RegisterValidation(UsernameTag, matcher(re))
}

func matcher(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// FormatValidationError converts validator.ValidationErrors into a human-readable message.
func FormatValidationError(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Field()
		if ns := e.Namespace(); ns != "" {
			if i := strings.Index(ns, "."); i >= 0 {
				field = ns[i+1:]
			}
		}
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case UsernameTag:
			messages = append(messages, fmt.Sprintf("%s is not a valid user name", field))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}
	return "validation failed: " + strings.Join(messages, ", ")
}
