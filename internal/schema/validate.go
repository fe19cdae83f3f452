package schema

import (
	"fmt"
	"go/token"
)

// Issue codes reported by Validate.
const (
	IssueDuplicateField    = "duplicate_field"
	IssueInvalidIdentifier = "invalid_identifier"
	IssueEmptyJSONTag      = "empty_json_tag"
	IssueUnknownType       = "unknown_type"
)

// Issue is a non-fatal schema finding. Generation proceeds regardless; the
// issue explains why the emitted source may not compile.
type Issue struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Field == "" {
		return i.Code + ": " + i.Message
	}
	return fmt.Sprintf("%s (%s): %s", i.Code, i.Field, i.Message)
}

// IsIdentifier reports whether s can be emitted as a Go identifier.
func IsIdentifier(s string) bool { return token.IsIdentifier(s) }

// Validate checks that the schema yields sane identifiers. Field name
// uniqueness is normally enforced by the editor; it is re-checked here because
// imported projects bypass the editor.
func Validate(s Schema) []Issue {
	var issues []Issue
	seen := make(map[string]bool, len(s))
	for _, f := range s {
		if seen[f.Name] {
			issues = append(issues, Issue{
				Code:    IssueDuplicateField,
				Field:   f.Name,
				Message: "field name appears more than once",
			})
		}
		seen[f.Name] = true

		if !IsIdentifier(f.Name) {
			issues = append(issues, Issue{
				Code:    IssueInvalidIdentifier,
				Field:   f.Name,
				Message: fmt.Sprintf("%q is not a valid Go identifier", f.Name),
			})
		}
		if f.JSONTag == "" {
			issues = append(issues, Issue{
				Code:    IssueEmptyJSONTag,
				Field:   f.Name,
				Message: "json tag is empty",
			})
		}
		if !f.Type.Known() {
			issues = append(issues, Issue{
				Code:    IssueUnknownType,
				Field:   f.Name,
				Message: fmt.Sprintf("type %q is emitted verbatim", string(f.Type)),
			})
		}
	}
	return issues
}
