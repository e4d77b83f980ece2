package strata

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// RequiredFieldMessage is the exact message returned for an empty required
// value. It is identical for every field type.
const RequiredFieldMessage = "This field is required"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{10,}$`)
	colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

	lowerPattern  = regexp.MustCompile(`[a-z]`)
	upperPattern  = regexp.MustCompile(`[A-Z]`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
	symbolPattern = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// FieldOptions carries the constraint set applied when validating one value.
// Nil pointers mean the bound is not set.
type FieldOptions struct {
	Required  bool
	Min       *float64
	Max       *float64
	MinLength *int
	MaxLength *int
	Pattern   string
}

// fieldRule validates a non-empty value for one field type.
type fieldRule func(value string, opts FieldOptions) ValidationResult

// fieldRules dispatches per-type validation. Types without an entry (DATE,
// BOOLEAN, JSON, anything unknown) are accepted as valid; see the package
// documentation for the rationale.
var fieldRules = map[FieldType]fieldRule{
	FieldTypeText:     validateLength,
	FieldTypeTextarea: validateLength,
	FieldTypeNumber:   validateNumber,
	FieldTypeEmail:    validateEmail,
	FieldTypeURL:      validateURL,
	FieldTypePhone:    validatePhone,
	FieldTypeColor:    validateColor,
	FieldTypeSlug:     validateSlug,
	FieldTypePassword: validatePasswordRule,
}

// ValidateField validates a single raw value against a field type and its
// constraint set. The required check runs first and behaves identically for
// every type; empty optional values are accepted without running type rules.
// Pure and safe for concurrent use.
func ValidateField(ft FieldType, value string, opts FieldOptions) ValidationResult {
	if strings.TrimSpace(value) == "" {
		if opts.Required {
			return ValidationResult{Valid: false, Message: RequiredFieldMessage}
		}
		return ValidationResult{Valid: true}
	}
	rule, ok := fieldRules[ft]
	if !ok {
		return ValidationResult{Valid: true}
	}
	return rule(value, opts)
}

func validateEmail(value string, _ FieldOptions) ValidationResult {
	if !emailPattern.MatchString(value) {
		return ValidationResult{Valid: false, Message: "Please enter a valid email address"}
	}
	return ValidationResult{Valid: true}
}

func validateURL(value string, _ FieldOptions) ValidationResult {
	u, err := url.Parse(value)
	if err != nil || u.Host == "" {
		return ValidationResult{Valid: false, Message: "Please enter a valid URL"}
	}
	switch u.Scheme {
	case "http", "https", "ftp", "ftps":
		return ValidationResult{Valid: true}
	}
	return ValidationResult{Valid: false, Message: "Please enter a valid URL"}
}

func validatePhone(value string, _ FieldOptions) ValidationResult {
	stripped := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(value)
	if !phonePattern.MatchString(stripped) {
		return ValidationResult{Valid: false, Message: "Please enter a valid phone number"}
	}
	return ValidationResult{Valid: true}
}

func validateNumber(value string, opts FieldOptions) ValidationResult {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	// ParseFloat accepts "NaN" and "Inf"; neither is a finite number.
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return ValidationResult{Valid: false, Message: "Please enter a valid number"}
	}
	if opts.Min != nil && n < *opts.Min {
		return ValidationResult{Valid: false, Message: "Must be at least " + formatBound(*opts.Min)}
	}
	if opts.Max != nil && n > *opts.Max {
		return ValidationResult{Valid: false, Message: "Must be at most " + formatBound(*opts.Max)}
	}
	return ValidationResult{Valid: true}
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func validateLength(value string, opts FieldOptions) ValidationResult {
	length := utf8.RuneCountInString(value)
	if opts.MinLength != nil && length < *opts.MinLength {
		return ValidationResult{Valid: false, Message: fmt.Sprintf("Must be at least %d characters", *opts.MinLength)}
	}
	if opts.MaxLength != nil && length > *opts.MaxLength {
		return ValidationResult{Valid: false, Message: fmt.Sprintf("Must be at most %d characters", *opts.MaxLength)}
	}
	if opts.Pattern != "" {
		// An uncompilable pattern is skipped at runtime; stratactl schema
		// validate flags it as a warning.
		re, err := regexp.Compile(opts.Pattern)
		if err == nil && !re.MatchString(value) {
			return ValidationResult{Valid: false, Message: "Value does not match the required format"}
		}
	}
	return ValidationResult{Valid: true}
}

func validateColor(value string, _ FieldOptions) ValidationResult {
	if !colorPattern.MatchString(value) {
		return ValidationResult{Valid: false, Message: "Please enter a valid hex color"}
	}
	return ValidationResult{Valid: true}
}

func validateSlug(value string, _ FieldOptions) ValidationResult {
	if !slugPattern.MatchString(value) {
		return ValidationResult{Valid: false, Message: "Must contain only lowercase letters, numbers and single hyphens"}
	}
	return ValidationResult{Valid: true}
}

func validatePasswordRule(value string, _ FieldOptions) ValidationResult {
	return ValidatePassword(value)
}

// ValidatePassword scores a password on five points: length of at least 8,
// a lowercase letter, an uppercase letter, a digit and a symbol. Five points
// is strong, three or four is medium, anything less is weak. The password is
// valid from three points up.
func ValidatePassword(value string) ValidationResult {
	score := 0
	if utf8.RuneCountInString(value) >= 8 {
		score++
	}
	for _, p := range []*regexp.Regexp{lowerPattern, upperPattern, digitPattern, symbolPattern} {
		if p.MatchString(value) {
			score++
		}
	}

	res := ValidationResult{Valid: score >= 3}
	switch {
	case score == 5:
		res.Strength = StrengthStrong
	case score >= 3:
		res.Strength = StrengthMedium
	default:
		res.Strength = StrengthWeak
	}
	if !res.Valid {
		res.Message = "Password is too weak"
	}
	return res
}
