package records

import (
	"fmt"
	"strings"
)

// Filter is a backend filter formula. Constructors below cover the two
// shapes the intake flow needs: case-insensitive equality and membership
// tests over joined multi-value fields.
type Filter struct {
	formula string
}

func (f Filter) Formula() string { return f.formula }

func (f Filter) IsZero() bool { return f.formula == "" }

// EqFold matches records whose field equals value, ignoring case.
func EqFold(field, value string) Filter {
	return Filter{formula: fmt.Sprintf(
		`LOWER({%s}) = %s`, escapeField(field), quote(strings.ToLower(value)),
	)}
}

// Eq matches records whose field equals value exactly.
func Eq(field, value string) Filter {
	return Filter{formula: fmt.Sprintf(
		`{%s} = %s`, escapeField(field), quote(value),
	)}
}

// Contains matches records whose multi-value field, joined to text,
// contains value as a substring. Used for linked-record membership.
func Contains(field, value string) Filter {
	return Filter{formula: fmt.Sprintf(
		`FIND(%s, ARRAYJOIN({%s})) > 0`, quote(value), escapeField(field),
	)}
}

func quote(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}

// Field names appear inside {braces} in formulas; braces themselves
// cannot be escaped there, so they are stripped.
func escapeField(field string) string {
	field = strings.ReplaceAll(field, "{", "")
	field = strings.ReplaceAll(field, "}", "")
	return field
}
