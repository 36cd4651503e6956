// Package annotation parses P4 "@label" and "@label(args)" annotations
// attached to tables, actions, match fields, and action parameters.
package annotation

import (
	"regexp"
	"strings"

	"github.com/p4rtxlate/p4rtxlate/p4err"
)

// Annotation is a parsed "@label" or "@label(body)".
type Annotation struct {
	Label string
	Body  string // empty if there was no parenthesized body
	HasBody bool
}

var annotationRe = regexp.MustCompile(`^\s*@([A-Za-z_][A-Za-z0-9_]*)(\((.*)\))?\s*$`)

// Parse parses a single annotation string into its label and optional body.
func Parse(s string) (Annotation, error) {
	m := annotationRe.FindStringSubmatch(s)
	if m == nil {
		return Annotation{}, p4err.New(p4err.InvalidArgument, "malformed annotation %q", s)
	}
	return Annotation{Label: m[1], Body: m[3], HasBody: m[2] != ""}, nil
}

var argCharRe = regexp.MustCompile(`^[A-Za-z0-9_/, \t]*$`)

// ParseArgs splits an annotation body as a comma-separated argument list,
// trimming whitespace from each argument. It rejects any body containing a
// character outside [A-Za-z0-9_/, \t].
func ParseArgs(body string) ([]string, error) {
	if !argCharRe.MatchString(body) {
		return nil, p4err.New(p4err.InvalidArgument, "annotation body %q contains disallowed characters", body)
	}
	parts := strings.Split(body, ",")
	args := make([]string, len(parts))
	for i, p := range parts {
		args[i] = strings.TrimSpace(p)
	}
	return args, nil
}

// FindByLabel returns the first annotation in annos whose label matches,
// and whether one was found.
func FindByLabel(annos []Annotation, label string) (Annotation, bool) {
	for _, a := range annos {
		if a.Label == label {
			return a, true
		}
	}
	return Annotation{}, false
}

// ParseAll parses every raw annotation string in raws, short-circuiting on
// the first malformed entry.
func ParseAll(raws []string) ([]Annotation, error) {
	out := make([]Annotation, 0, len(raws))
	for _, r := range raws {
		a, err := Parse(r)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
