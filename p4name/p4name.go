// Package p4name translates between P4 identifiers and the message/field
// names used by the program-dependent (PD) schema: snake_case <-> PascalCase
// conversion plus the suffix rules for tables and actions.
package p4name

import (
	"strings"

	"github.com/p4rtxlate/p4rtxlate/p4err"
)

// EntityKind selects the suffix rule to apply.
type EntityKind int

const (
	Table EntityKind = iota
	Action
)

// messageSuffix returns the suffix appended to a PD message name.
func messageSuffix(kind EntityKind) string {
	switch kind {
	case Table:
		return "Entry"
	case Action:
		return "Action"
	default:
		return ""
	}
}

// fieldSuffix returns the suffix appended to a PD field name.
func fieldSuffix(kind EntityKind) string {
	switch kind {
	case Table:
		return "_entry"
	case Action:
		return ""
	default:
		return ""
	}
}

// flatten replaces P4 bracket-and-dot characters with underscores:
// '[' -> '_', ']' removed, '.' -> '_'.
func flatten(p4Name string) string {
	var b strings.Builder
	for _, r := range p4Name {
		switch r {
		case '[':
			b.WriteRune('_')
		case ']':
			// dropped
		case '.':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// camelToSnake converts a CamelCase or mixedCase string to snake_case.
func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteRune('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// snakeToPascal converts snake_case to PascalCase.
func snakeToPascal(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// ToMessageName converts a P4 object name to its PD message name, including
// the fixed suffix for its entity kind.
func ToMessageName(p4Name string, kind EntityKind) string {
	flat := camelToSnake(flatten(p4Name))
	return snakeToPascal(flat) + messageSuffix(kind)
}

// ToPascalCase converts a P4 object name to PascalCase with no entity
// suffix — used for leaf struct fields (match fields, action params) that
// carry no message-level suffix of their own.
func ToPascalCase(p4Name string) string {
	return snakeToPascal(camelToSnake(flatten(p4Name)))
}

// ToFieldName converts a P4 object name to its PD field name, including the
// fixed suffix for its entity kind.
func ToFieldName(p4Name string, kind EntityKind) string {
	flat := camelToSnake(flatten(p4Name))
	return flat + fieldSuffix(kind)
}

// FromFieldName reverses ToFieldName: strips the field suffix for kind,
// failing if it is absent.
func FromFieldName(fieldName string, kind EntityKind) (string, error) {
	suffix := fieldSuffix(kind)
	if suffix == "" {
		return fieldName, nil
	}
	if !strings.HasSuffix(fieldName, suffix) {
		return "", p4err.New(p4err.InvalidArgument,
			"field name %q is missing required suffix %q", fieldName, suffix)
	}
	return strings.TrimSuffix(fieldName, suffix), nil
}
