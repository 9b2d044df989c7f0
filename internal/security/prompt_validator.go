package security

import (
	"fmt"
	"regexp"
	"strings"
)

const MaxPromptLength = 2000

// dangerousPatterns catch command execution, path probing and prompt injection.
var dangerousPatterns = []*regexp.Regexp{
	// Command execution
	regexp.MustCompile(`(?i)\brm\s+-`),
	regexp.MustCompile(`(?i)\brm\s+/`),
	regexp.MustCompile(`(?i)\bcurl\s+`),
	regexp.MustCompile(`(?i)\bwget\s+`),
	regexp.MustCompile(`(?i)\bnc\s+-`),
	regexp.MustCompile(`(?i)\bbash\s+-`),
	regexp.MustCompile(`(?i)\bsudo\s+`),

	// File operations / path traversal
	regexp.MustCompile(`\.\./`),
	regexp.MustCompile(`/etc/passwd`),
	regexp.MustCompile(`/etc/shadow`),
	regexp.MustCompile(`/proc/`),
	regexp.MustCompile(`id_rsa`),
	regexp.MustCompile(`\.ssh/`),

	// Code execution
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`(?i)exec\s*\(`),
	regexp.MustCompile(`(?i)__import__\s*\(`),
	regexp.MustCompile(`(?i)os\.system`),

	// Prompt injection
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)forget\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)override\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)reveal\s+(your\s+)?system\s+prompt`),
	regexp.MustCompile(`(?i)new\s+context\s*:`),
	regexp.MustCompile(`(?i)instead\s+of\s+the\s+above`),
}

var suspiciousIndicators = []string{
	"import os", "import sys", "subprocess", "__import__",
}

// PromptValidator screens chat prompts before they reach the model.
type PromptValidator struct {
	maxLength int
}

// NewPromptValidator uses MaxPromptLength when maxLength is not positive.
func NewPromptValidator(maxLength int) *PromptValidator {
	if maxLength <= 0 {
		maxLength = MaxPromptLength
	}
	return &PromptValidator{maxLength: maxLength}
}

// ValidationResult contains validation outcome
type ValidationResult struct {
	Valid   bool
	Message string
}

// Validate checks a prompt for dangerous patterns
func (v *PromptValidator) Validate(prompt string) ValidationResult {
	if len(prompt) > v.maxLength {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("prompt too long: %d chars (max %d)", len(prompt), v.maxLength),
		}
	}

	if strings.TrimSpace(prompt) == "" {
		return ValidationResult{Valid: false, Message: "prompt cannot be empty"}
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(prompt) {
			return ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("dangerous pattern detected: %s", pattern.String()),
			}
		}
	}

	lower := strings.ToLower(prompt)
	for _, indicator := range suspiciousIndicators {
		if strings.Contains(lower, indicator) {
			return ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("suspicious instruction indicator detected: %q", indicator),
			}
		}
	}

	return ValidationResult{Valid: true, Message: "ok"}
}
