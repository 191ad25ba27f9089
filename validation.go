package hsjwt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cybergodev/hsjwt/claims"
)

const (
	maxNameLength   = 64
	maxStringLength = 256
	maxClaims       = 50
	maxNestingDepth = 4
)

// validateClaims checks the claim names and values a Processor is willing
// to sign. Nested sets are checked recursively.
func validateClaims(payload *claims.Set) error {
	if payload == nil || payload.Len() == 0 {
		return &ValidationError{Field: "payload", Message: "at least one claim is required"}
	}
	return validateSet("", payload, 0)
}

func validateSet(prefix string, set *claims.Set, depth int) error {
	if depth > maxNestingDepth {
		return &ValidationError{
			Field:   strings.TrimSuffix(prefix, "."),
			Message: fmt.Sprintf("nested too deeply: maximum %d levels", maxNestingDepth),
		}
	}
	if set.Len() > maxClaims {
		return &ValidationError{
			Field:   prefix + "*",
			Message: fmt.Sprintf("too many claims: maximum %d allowed", maxClaims),
		}
	}

	var err error
	set.Range(func(name string, v claims.Value) bool {
		field := prefix + name
		if err = validateString(field, name, maxNameLength); err != nil {
			return false
		}

		switch v.Kind() {
		case claims.KindString:
			s, _ := v.AsString()
			err = validateString(field, s, maxStringLength)
		case claims.KindObject:
			nested, _ := v.AsObject()
			err = validateSet(field+".", nested, depth+1)
		}
		return err == nil
	})
	return err
}

func validateString(fieldName, value string, maxLength int) error {
	if len(value) == 0 {
		return nil
	}

	if len(value) > maxLength {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("too long: maximum %d characters", maxLength),
		}
	}

	if !utf8.ValidString(value) {
		return &ValidationError{
			Field:   fieldName,
			Message: "contains invalid UTF-8",
		}
	}

	for i := 0; i < len(value); i++ {
		char := value[i]
		if char < 32 && char != '\t' && char != '\n' && char != '\r' {
			return &ValidationError{
				Field:   fieldName,
				Message: "contains invalid control character",
			}
		}
	}

	if containsDangerousPattern(value) {
		return &ValidationError{
			Field:   fieldName,
			Message: "contains suspicious pattern",
		}
	}

	return nil
}

var dangerousPatterns = [...]string{
	"<script", "javascript:", "data:", "eval(", "../", "file://", "vbscript:",
}

func containsDangerousPattern(value string) bool {
	if len(value) < 4 {
		return false
	}

	lower := strings.ToLower(value)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
