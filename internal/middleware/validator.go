package middleware

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Input validation and sanitization utilities

// idValidate checks path identifiers. slug allows letters, digits, '_' and
// '-'; ident drops '-'.
var idValidate *validator.Validate

func init() {
	idValidate = validator.New()
	_ = idValidate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return identChars(fl.Field().String(), true)
	})
	_ = idValidate.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		return identChars(fl.Field().String(), false)
	})
}

func identChars(s string, dash bool) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		case c == '-' && dash:
		default:
			return false
		}
	}
	return true
}

// ValidateSessionID validates session ID format
func ValidateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("session ID cannot be empty")
	}
	if err := idValidate.Var(id, "max=64,slug"); err != nil {
		return fmt.Errorf("invalid session ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateQuestionID validates question and field identifiers
func ValidateQuestionID(id string) error {
	if err := idValidate.Var(id, "required,max=32,ident"); err != nil {
		return fmt.Errorf("invalid question ID %q", id)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidatePage validates the pagination page
func ValidatePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}
