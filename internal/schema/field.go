// Package schema describes the user-defined asset record: an ordered list of
// named, typed fields. It owns the name-based role inference (key field, owner
// field) so that heuristic lives in exactly one place.
package schema

import "strings"

// TypeTag is the Go type text of a field. The recognised set is closed; any
// other text is kept verbatim and treated as unknown.
type TypeTag string

const (
	TypeString     TypeTag = "string"
	TypeInteger    TypeTag = "int"
	TypeFloat      TypeTag = "float64"
	TypeBoolean    TypeTag = "bool"
	TypeStringList TypeTag = "[]string"
	TypeStringMap  TypeTag = "map[string]string"
)

// KnownTypes lists the recognised tags in the order the field editor offers them.
var KnownTypes = []TypeTag{
	TypeString, TypeInteger, TypeFloat, TypeBoolean, TypeStringList, TypeStringMap,
}

// typeAliases maps the language-neutral names onto Go type text.
var typeAliases = map[string]TypeTag{
	"string":     TypeString,
	"integer":    TypeInteger,
	"float":      TypeFloat,
	"boolean":    TypeBoolean,
	"stringList": TypeStringList,
	"stringMap":  TypeStringMap,
}

// ParseTypeTag normalises a type name. Both the Go spelling ("int") and the
// neutral spelling ("integer") are accepted. Unrecognised text is returned
// unchanged (trimmed) so it can still be emitted as written.
func ParseTypeTag(s string) TypeTag {
	s = strings.TrimSpace(s)
	if t, ok := typeAliases[s]; ok {
		return t
	}
	return TypeTag(s)
}

// Known reports whether t is one of the recognised tags.
func (t TypeTag) Known() bool {
	for _, k := range KnownTypes {
		if t == k {
			return true
		}
	}
	return false
}

// GoType returns the Go type text emitted for the field.
func (t TypeTag) GoType() string { return string(t) }

// Field is one member of the asset record.
type Field struct {
	Name    string  `json:"name" yaml:"name"`
	Type    TypeTag `json:"type" yaml:"type"`
	JSONTag string  `json:"jsonTag" yaml:"jsonTag"`
}

// Schema is the ordered field list. Order fixes struct field order and
// constructor parameter order in generated code.
type Schema []Field

// DefaultSchema returns the starter fields of a new project.
func DefaultSchema() Schema {
	return Schema{
		{Name: "ID", Type: TypeString, JSONTag: "id"},
		{Name: "Description", Type: TypeString, JSONTag: "description"},
		{Name: "Owner", Type: TypeString, JSONTag: "owner"},
		{Name: "Value", Type: TypeInteger, JSONTag: "value"},
	}
}

// Clone returns a copy that shares no backing array with s.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	out := make(Schema, len(s))
	copy(out, s)
	return out
}

// Lookup returns the field with the given name.
func (s Schema) Lookup(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
