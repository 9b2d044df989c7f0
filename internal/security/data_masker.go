package security

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRe      = regexp.MustCompile(`(?i)email`)
	phoneRe      = regexp.MustCompile(`(?i)phone`)
	ssnRe        = regexp.MustCompile(`(?i)ssn|social_security`)
	creditCardRe = regexp.MustCompile(`(?i)credit_?card|card_?number`)
	fullMaskRe   = regexp.MustCompile(`(?i)password|secret|token|api_?key|access_?key|private_?key|authorization`)

	emailValueRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

// Masker redacts sensitive values in tool arguments before they are audited.
type Masker struct {
	detector *PIIDetector
}

// NewMasker treats any key containing one of sensitiveKeys as sensitive, in
// addition to the built-in patterns.
func NewMasker(sensitiveKeys []string) *Masker {
	return &Masker{detector: NewPIIDetector(sensitiveKeys)}
}

// MaskArguments returns a masked deep copy of args. Email addresses found in
// free-text values are masked regardless of the key.
func (m *Masker) MaskArguments(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}
	return m.maskMap(args)
}

func (m *Masker) maskMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if m.isSensitive(k) && v != nil {
			out[k] = m.maskValue(k, fmt.Sprintf("%v", v))
			continue
		}
		out[k] = m.maskAny(v)
	}
	return out
}

func (m *Masker) maskAny(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return m.maskMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = m.maskAny(item)
		}
		return out
	case string:
		return emailValueRe.ReplaceAllStringFunc(t, maskEmail)
	}
	return v
}

func (m *Masker) isSensitive(key string) bool {
	if found, _ := m.detector.Detect(key); found {
		return true
	}
	return emailRe.MatchString(key) || phoneRe.MatchString(key) ||
		ssnRe.MatchString(key) || creditCardRe.MatchString(key) || fullMaskRe.MatchString(key)
}

func (m *Masker) maskValue(key, val string) string {
	switch {
	case emailRe.MatchString(key):
		return maskEmail(val)
	case phoneRe.MatchString(key):
		return maskPhone(val)
	case ssnRe.MatchString(key):
		return "***-**-****"
	case creditCardRe.MatchString(key):
		return maskCreditCard(val)
	default:
		return "***"
	}
}

// maskEmail: "john.doe@example.com" → "jo***@***.com"
func maskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***"
	}
	visible := min(2, len(local))
	ext := domain[strings.LastIndex(domain, ".")+1:]
	return fmt.Sprintf("%s***@***.%s", local[:visible], ext)
}

// maskPhone keeps the last four digits.
func maskPhone(phone string) string {
	digits := onlyDigits(phone)
	if len(digits) < 4 {
		return "***-***-****"
	}
	return "***-***-" + digits[len(digits)-4:]
}

// maskCreditCard: "4111111111111111" → "****-****-****-1111"
func maskCreditCard(cc string) string {
	digits := onlyDigits(cc)
	if len(digits) < 4 {
		return "****-****-****-****"
	}
	return "****-****-****-" + digits[len(digits)-4:]
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
