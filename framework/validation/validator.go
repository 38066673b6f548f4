package validation

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ── Types ────────────────────────────────────────────────────────────────────

// Errors holds validation errors per field.
// JSON output: {"errors": {"APP_PORT": ["msg1", "msg2"]}}
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Has returns true if there are any errors.
func (e *Errors) Has() bool { return len(e.Bag) > 0 }

// First returns the first error for a field.
func (e *Errors) First(field string) string {
	if msgs, ok := e.Bag[field]; ok && len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Error joins every message, fields in name order.
func (e *Errors) Error() string {
	fields := make([]string, 0, len(e.Bag))
	for f := range e.Bag {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	var msgs []string
	for _, f := range fields {
		msgs = append(msgs, e.Bag[f]...)
	}
	return "validation failed: " + strings.Join(msgs, " ")
}

// ── Validator ────────────────────────────────────────────────────────────────

// Rules is a map of field → pipe-separated rule string.
// e.g. Rules{"APP_PORT": "required|integer|between:1,65535"}
type Rules map[string]string

// Validator validates a flat map of input values.
type Validator struct {
	data   map[string]string
	rules  Rules
	errors *Errors
	ran    bool
}

// Make creates a new Validator.
func Make(data map[string]string, rules Rules) *Validator {
	return &Validator{
		data:   data,
		rules:  rules,
		errors: &Errors{},
	}
}

// Fails runs validation and returns true if any rule fails.
func (v *Validator) Fails() bool {
	v.validate()
	return v.errors.Has()
}

// Passes runs validation and returns true if all rules pass.
func (v *Validator) Passes() bool { return !v.Fails() }

// Errors returns the validation error bag.
func (v *Validator) Errors() *Errors { return v.errors }

// Validate runs validation and returns the error bag, or nil.
func (v *Validator) Validate() error {
	if v.Fails() {
		return v.errors
	}
	return nil
}

// ── Core validation loop ─────────────────────────────────────────────────────

func (v *Validator) validate() {
	if v.ran {
		return
	}
	v.ran = true

	for field, ruleStr := range v.rules {
		value := v.data[field]
		rules := strings.Split(ruleStr, "|")
		numeric := slices.Contains(rules, "integer") || slices.Contains(rules, "numeric")

		for _, rule := range rules {
			rule = strings.TrimSpace(rule)
			if rule == "" {
				continue
			}

			// min:3 → name=min, param=3
			name, param, _ := strings.Cut(rule, ":")

			if !v.applyRule(field, value, name, param, numeric) {
				break // stop on first failure
			}
		}
	}
}

// applyRule returns true if the rule passes. Size rules compare the value
// itself when the field is numeric and its length otherwise.
func (v *Validator) applyRule(field, value, rule, param string, numeric bool) bool {
	switch rule {
	case "required":
		if strings.TrimSpace(value) == "" {
			v.errors.add(field, fmt.Sprintf("The %s field is required.", field))
			return false
		}

	case "sometimes":
		// Skip remaining rules if field is absent.
		if value == "" {
			return false
		}

	case "numeric":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			v.errors.add(field, fmt.Sprintf("The %s must be a number.", field))
			return false
		}

	case "integer":
		if _, err := strconv.Atoi(value); err != nil {
			v.errors.add(field, fmt.Sprintf("The %s must be an integer.", field))
			return false
		}

	case "boolean":
		if _, err := strconv.ParseBool(value); err != nil {
			v.errors.add(field, fmt.Sprintf("The %s field must be true or false.", field))
			return false
		}

	case "min":
		n, _ := strconv.ParseFloat(param, 64)
		if size(value, numeric) < n {
			v.errors.add(field, fmt.Sprintf("The %s must be at least %s%s.", field, param, unit(numeric)))
			return false
		}

	case "max":
		n, _ := strconv.ParseFloat(param, 64)
		if size(value, numeric) > n {
			v.errors.add(field, fmt.Sprintf("The %s may not be greater than %s%s.", field, param, unit(numeric)))
			return false
		}

	case "between":
		lo, hi, ok := strings.Cut(param, ",")
		if !ok {
			break
		}
		min, _ := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		max, _ := strconv.ParseFloat(strings.TrimSpace(hi), 64)
		if s := size(value, numeric); s < min || s > max {
			v.errors.add(field, fmt.Sprintf("The %s must be between %s and %s%s.", field, strings.TrimSpace(lo), strings.TrimSpace(hi), unit(numeric)))
			return false
		}

	case "in":
		if !slices.Contains(splitList(param), value) {
			v.errors.add(field, fmt.Sprintf("The selected %s is invalid.", field))
			return false
		}

	case "not_in":
		if slices.Contains(splitList(param), value) {
			v.errors.add(field, fmt.Sprintf("The selected %s is invalid.", field))
			return false
		}

	case "alpha_dash":
		if !alphaDashRE.MatchString(value) {
			v.errors.add(field, fmt.Sprintf("The %s may only contain letters, numbers, dashes and underscores.", field))
			return false
		}

	case "regex":
		re, err := regexp.Compile(param)
		if err != nil || !re.MatchString(value) {
			v.errors.add(field, fmt.Sprintf("The %s format is invalid.", field))
			return false
		}
	}

	return true
}

var alphaDashRE = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func size(value string, numeric bool) float64 {
	if numeric {
		f, _ := strconv.ParseFloat(value, 64)
		return f
	}
	return float64(utf8.RuneCountInString(value))
}

func unit(numeric bool) string {
	if numeric {
		return ""
	}
	return " characters"
}

func splitList(param string) []string {
	items := strings.Split(param, ",")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	return items
}
