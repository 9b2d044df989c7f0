package security

import (
	"strings"
)

// PIIDetector matches text against configured sensitive keywords.
type PIIDetector struct {
	keywords []string
}

func NewPIIDetector(keywords []string) *PIIDetector {
	lower := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lower = append(lower, k)
		}
	}
	return &PIIDetector{keywords: lower}
}

// Detect returns true and the matched keyword if text contains one.
func (d *PIIDetector) Detect(text string) (bool, string) {
	lower := strings.ToLower(text)
	for _, kw := range d.keywords {
		if strings.Contains(lower, kw) {
			return true, kw
		}
	}
	return false, ""
}
