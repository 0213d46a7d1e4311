// Package records adapts the tabular backend (an Airtable-style REST API)
// behind a narrow store interface: filtered lookups, create and update.
// Field names are passed explicitly per call so table layouts stay
// configurable without leaking raw response maps to callers.
package records

import (
	"context"
	"regexp"
	"strings"
)

// Fields is an outbound field set for create/update calls.
type Fields map[string]any

// Attachment is one stored artifact reference on a record.
type Attachment struct {
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
}

// Record is a typed projection of one row in the backend.
type Record struct {
	ID     string
	fields map[string]any
}

func NewRecord(id string, fields map[string]any) Record {
	return Record{ID: id, fields: fields}
}

// Str returns the named field as a trimmed string, or "".
func (r Record) Str(field string) string {
	v, ok := r.fields[field]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// Strs returns the named field as a list of strings. A single string
// value becomes a one-element list; non-string members are dropped.
func (r Record) Strs(field string) []string {
	v, ok := r.fields[field]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, m := range t {
			if s, ok := m.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	default:
		return nil
	}
}

// Attachments returns the named field decoded as attachment references,
// preserving stored order.
func (r Record) Attachments(field string) []Attachment {
	v, ok := r.fields[field]
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Attachment, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		a := Attachment{}
		if s, ok := m["url"].(string); ok {
			a.URL = s
		}
		if s, ok := m["filename"].(string); ok {
			a.Filename = s
		}
		if a.URL != "" {
			out = append(out, a)
		}
	}
	return out
}

// Store is the record store contract the intake services depend on.
// FindOne reports a missing record via xerrors.ErrNotFound.
type Store interface {
	FindOne(ctx context.Context, table string, filter Filter) (Record, error)
	FindAll(ctx context.Context, table string, filter Filter) ([]Record, error)
	Create(ctx context.Context, table string, fields Fields) (Record, error)
	Update(ctx context.Context, table, id string, fields Fields) (Record, error)
	GetOrCreateByName(ctx context.Context, table, nameField, name string) (Record, bool, error)
}

var recordIDPattern = regexp.MustCompile(`^rec[A-Za-z0-9]{14}$`)

// LooksLikeRecordID reports whether s is already shaped like a
// store-assigned record id rather than free text.
func LooksLikeRecordID(s string) bool {
	return recordIDPattern.MatchString(strings.TrimSpace(s))
}
