// Package normalize turns raw GraphQL repository nodes into flat records.
package normalize

// TimeLayout is the ISO-8601 form used for fetchedAt.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Record is a normalized repository. Keys follow the GraphQL field aliases.
type Record map[string]any

// NameWithOwner returns the "owner/name" identity of the record.
func (r Record) NameWithOwner() string {
	s, _ := r["nameWithOwner"].(string)
	return s
}

// FetchedAt returns when the record was normalized.
func (r Record) FetchedAt() string {
	s, _ := r["fetchedAt"].(string)
	return s
}

// IsPrivate reports whether the repository was flagged private.
func (r Record) IsPrivate() bool {
	b, _ := r["isPrivate"].(bool)
	return b
}

// Errors returns the per-field failures, or nil when every field transformed cleanly.
func (r Record) Errors() map[string]any {
	e, _ := r["errors"].(map[string]any)
	return e
}

// Labels returns the flattened label names.
func (r Record) Labels() []string {
	switch l := r["labels"].(type) {
	case []string:
		return l
	case []any:
		names := make([]string, 0, len(l))
		for _, v := range l {
			if s, ok := v.(string); ok {
				names = append(names, s)
			}
		}
		return names
	}
	return nil
}
