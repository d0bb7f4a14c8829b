package schema

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// phonePattern is applied after stripping spaces, dashes, and
// parentheses from the candidate value.
var phonePattern = regexp.MustCompile(`^\+?\d+$`)

// dateLayouts are accepted in order when parsing date field values.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// Validator evaluates field definitions against candidate values.
// Malformed authoring data (e.g. a regex rule whose pattern does not
// compile) is logged and skipped rather than surfaced as a validation
// failure.
type Validator struct {
	log *zap.Logger
}

// NewValidator returns a Validator logging through the given logger.
// A nil logger disables logging.
func NewValidator(log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{log: log}
}

// ValidateField checks value against the field's type and every
// configured rule and returns all failure messages.
//
// A required field with an empty value yields exactly one message and
// nothing else is evaluated. A non-required field with an empty value
// always passes. For non-empty values the type-native check runs
// first, then every rule independently; failures accumulate in rule
// declaration order.
func (v *Validator) ValidateField(field Field, value interface{}) []string {
	errs := []string{}

	if isEmpty(value) {
		if field.Required {
			return []string{field.Label + " is required"}
		}
		return errs
	}

	str := Stringify(value)

	switch field.Type {
	case FieldTypeEmail:
		if !emailPattern.MatchString(str) {
			errs = append(errs, field.Label+" must be a valid email address")
		}
	case FieldTypeURL:
		if !isAbsoluteURL(str) {
			errs = append(errs, field.Label+" must be a valid URL")
		}
	case FieldTypeNumber, FieldTypeCurrency:
		if _, ok := parseFinite(value); !ok {
			errs = append(errs, field.Label+" must be a number")
		}
	case FieldTypePhone:
		stripped := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(str)
		if !phonePattern.MatchString(stripped) {
			errs = append(errs, field.Label+" must be a valid phone number")
		}
	case FieldTypeDate:
		if !isParsableDate(str) {
			errs = append(errs, field.Label+" must be a valid date")
		}
	}

	for _, rule := range field.ValidationRules {
		switch rule.Type {
		case RuleRequired:
			// Non-empty by this point, nothing to check.
		case RuleMinLength:
			if n, ok := ruleNumber(rule.Value); ok && utf8.RuneCountInString(str) < int(n) {
				errs = append(errs, ruleMessage(rule, fmt.Sprintf("%s must be at least %d characters", field.Label, int(n))))
			}
		case RuleMaxLength:
			if n, ok := ruleNumber(rule.Value); ok && utf8.RuneCountInString(str) > int(n) {
				errs = append(errs, ruleMessage(rule, fmt.Sprintf("%s must be no more than %d characters", field.Label, int(n))))
			}
		case RuleMin:
			n, okRule := ruleNumber(rule.Value)
			val, okVal := parseFinite(value)
			if okRule && okVal && val < n {
				errs = append(errs, ruleMessage(rule, fmt.Sprintf("%s must be at least %s", field.Label, formatNumber(n))))
			}
		case RuleMax:
			n, okRule := ruleNumber(rule.Value)
			val, okVal := parseFinite(value)
			if okRule && okVal && val > n {
				errs = append(errs, ruleMessage(rule, fmt.Sprintf("%s must be no more than %s", field.Label, formatNumber(n))))
			}
		case RuleRegex:
			pattern, _ := rule.Value.(string)
			re, err := regexp.Compile(pattern)
			if err != nil {
				v.log.Warn("skipping malformed regex rule",
					zap.String("field", field.Name),
					zap.String("pattern", pattern),
					zap.Error(err))
				continue
			}
			if !re.MatchString(str) {
				errs = append(errs, ruleMessage(rule, field.Label+" format is invalid"))
			}
		case RuleEmail:
			if !emailPattern.MatchString(str) {
				errs = append(errs, ruleMessage(rule, field.Label+" must be a valid email address"))
			}
		case RuleURL:
			if !isAbsoluteURL(str) {
				errs = append(errs, ruleMessage(rule, field.Label+" must be a valid URL"))
			}
		}
	}

	return errs
}

// ValidateRow runs ValidateField for every field in the definition,
// not just the fields present in data, and reports only fields that
// failed at least one check.
func (v *Validator) ValidateRow(fields []Field, data map[string]interface{}) []ValidationError {
	result := []ValidationError{}
	for _, field := range fields {
		errs := v.ValidateField(field, data[field.Name])
		if len(errs) > 0 {
			result = append(result, ValidationError{
				FieldID:   field.ID,
				FieldName: field.Name,
				Errors:    errs,
			})
		}
	}
	return result
}

// CheckRules verifies that a field's rules are well formed: regex
// patterns compile and operand-carrying rules have numeric operands.
// Editing layers may call this before saving a definition; stores do
// not, so a definition with a bad rule still saves and the bad rule
// is skipped at validation time.
func CheckRules(field Field) error {
	for _, rule := range field.ValidationRules {
		switch rule.Type {
		case RuleRegex:
			pattern, _ := rule.Value.(string)
			if _, err := regexp.Compile(pattern); err != nil {
				return fmt.Errorf("field %q: invalid regex pattern %q: %w", field.Name, pattern, err)
			}
		case RuleMinLength, RuleMaxLength, RuleMin, RuleMax:
			if _, ok := ruleNumber(rule.Value); !ok {
				return fmt.Errorf("field %q: rule %s requires a numeric operand", field.Name, rule.Type)
			}
		}
	}
	return nil
}

// Stringify renders a stored cell value for display, length checks,
// and export. Numbers use their minimal representation and nil is the
// empty string.
func Stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func isAbsoluteURL(str string) bool {
	u, err := url.Parse(str)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func isParsableDate(str string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, str); err == nil {
			return true
		}
	}
	return false
}

// parseFinite interprets a cell value as a finite number. Strings are
// parsed after trimming; anything unparsable reports false so range
// rules never fire on non-numeric input.
func parseFinite(value interface{}) (float64, bool) {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func ruleNumber(operand interface{}) (float64, bool) {
	return parseFinite(operand)
}

func ruleMessage(rule ValidationRule, fallback string) string {
	if rule.Message != "" {
		return rule.Message
	}
	return fallback
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
