package schema

import "strings"

const (
	keyRole   = "id"
	ownerRole = "owner"
)

func hasRole(f Field, role string) bool {
	return strings.ToLower(f.Name) == role || strings.ToLower(f.JSONTag) == role
}

// IsKeyField reports whether f identifies the record: its name or JSON tag is
// "id", compared case-insensitively.
func IsKeyField(f Field) bool { return hasRole(f, keyRole) }

// IsOwnerField reports whether f names the record owner.
func IsOwnerField(f Field) bool { return hasRole(f, ownerRole) }

// FindKeyField returns the first key field in schema order.
func FindKeyField(s Schema) (Field, bool) {
	for _, f := range s {
		if IsKeyField(f) {
			return f, true
		}
	}
	return Field{}, false
}
