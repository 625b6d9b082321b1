package safety

import (
	"fmt"
	"regexp"
	"strings"
)

// PII categories reported by DetectPII.
const (
	PIIPhone      = "phone"
	PIIEmail      = "email"
	PIIAddress    = "address"
	PIISSN        = "ssn"
	PIICreditCard = "credit-card"
	PIIName       = "name"
)

var (
	phoneRegex      = regexp.MustCompile(`\+?\d{1,3}[\s-]?\(?\d{2,4}\)?[\s-]?\d{3,4}[\s-]?\d{3,4}|\b\d{7,}\b`)
	emailRegex      = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	addressRegex    = regexp.MustCompile(`(?i)\d+\s+(Street|St|Avenue|Ave|Road|Rd|Lane|Ln|Boulevard|Blvd|Drive|Dr|Court|Ct|Way)\b`)
	ssnRegex        = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	creditCardRegex = regexp.MustCompile(`\b\d{13,19}\b`)

	// Self-introduction templates. The phrase match is case-insensitive but
	// the name token must be capitalized. Deliberately permissive: any
	// capitalized token after a template counts, so "I'm Fine" triggers too.
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i:my name is)\s+[A-Z][a-z]+`),
		regexp.MustCompile(`(?i:i am)\s+[A-Z][a-z]+(\s|$|[,.])`),
		regexp.MustCompile(`(?i:i'm)\s+[A-Z][a-z]+(\s|$|[,.])`),
		regexp.MustCompile(`(?i:call me)\s+[A-Z][a-z]+`),
		regexp.MustCompile(`(?i:myself)\s+[A-Z][a-z]+`),
		regexp.MustCompile(`(?i:this is)\s+[A-Z][a-z]+(\s|$|[,.])`),
	}
)

var piiLabels = map[string]string{
	PIIPhone:      "phone number",
	PIIEmail:      "email address",
	PIIAddress:    "street address",
	PIISSN:        "social security number",
	PIICreditCard: "credit card",
	PIIName:       "name",
}

// Crisis trigger phrases, highest severity first. A higher-severity match
// always wins regardless of discovery order.
var (
	highCrisisPhrases = []string{
		"kill myself",
		"end my life",
		"commit suicide",
		"want to die",
		"planning to die",
		"no reason to live",
		"better off dead",
		"suicide plan",
		"take my life",
	}

	selfHarmPhrases = []string{
		"cut myself",
		"hurt myself",
		"self harm",
		"self-harm",
		"harming myself",
	}

	distressPhrases = []string{
		"depressed",
		"hopeless",
		"can't go on",
	}
)

// PIIResult is the outcome of the local PII scan for one message.
type PIIResult struct {
	HasPII  bool     `json:"hasPII"`
	Types   []string `json:"types"`
	Message string   `json:"message"`
}

// CrisisResult is the outcome of the local crisis scan for one message.
type CrisisResult struct {
	IsCrisis bool        `json:"isCrisis"`
	Level    CrisisLevel `json:"level"`
	Keywords []string    `json:"keywords"`
}

// DetectPII scans text for personally identifying information. Pure and
// synchronous; a positive result must hard-block the send.
func DetectPII(text string) PIIResult {
	var types []string

	if phoneRegex.MatchString(text) {
		types = append(types, PIIPhone)
	}
	if emailRegex.MatchString(text) {
		types = append(types, PIIEmail)
	}
	if addressRegex.MatchString(text) {
		types = append(types, PIIAddress)
	}
	if ssnRegex.MatchString(text) {
		types = append(types, PIISSN)
	}
	if creditCardRegex.MatchString(text) {
		types = append(types, PIICreditCard)
	}

	for _, pattern := range namePatterns {
		if pattern.MatchString(text) {
			types = append(types, PIIName)
			break
		}
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "i live at") || strings.Contains(lower, "my address") {
		if !contains(types, PIIAddress) {
			types = append(types, PIIAddress)
		}
	}

	result := PIIResult{HasPII: len(types) > 0, Types: types}
	if result.HasPII {
		labels := make([]string, len(types))
		for i, t := range types {
			labels[i] = piiLabels[t]
		}
		result.Message = fmt.Sprintf(
			"This message appears to contain: %s. Sharing personal information can put you at risk. Please edit to protect your privacy.",
			strings.Join(labels, ", "))
	}
	return result
}

// DetectCrisis scans text for crisis language and classifies its severity.
// Severity is monotonic: once a high trigger matches, medium and low matches
// cannot downgrade it.
func DetectCrisis(text string) CrisisResult {
	lower := strings.ToLower(text)
	var keywords []string

	level := CrisisNone
	for _, phrase := range highCrisisPhrases {
		if strings.Contains(lower, phrase) {
			keywords = append(keywords, phrase)
			level = CrisisHigh
		}
	}
	for _, phrase := range selfHarmPhrases {
		if strings.Contains(lower, phrase) {
			keywords = append(keywords, phrase)
			level = MaxCrisisLevel(level, CrisisMedium)
		}
	}
	if level == CrisisNone {
		for _, phrase := range distressPhrases {
			if strings.Contains(lower, phrase) {
				keywords = append(keywords, "distress indicators")
				level = CrisisLow
				break
			}
		}
	}

	return CrisisResult{
		IsCrisis: level != CrisisNone,
		Level:    level,
		Keywords: keywords,
	}
}

// Sanitize replaces detected contact-style PII with redaction markers. Name
// introductions are left alone; they need rewording, not masking.
func Sanitize(text string) string {
	out := phoneRegex.ReplaceAllString(text, "[PHONE REDACTED]")
	out = emailRegex.ReplaceAllString(out, "[EMAIL REDACTED]")
	out = ssnRegex.ReplaceAllString(out, "[SSN REDACTED]")
	out = creditCardRegex.ReplaceAllString(out, "[CARD REDACTED]")
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
