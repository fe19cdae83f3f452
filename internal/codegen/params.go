package codegen

import (
	"strings"

	"github.com/matthewbaird/chaincodegen/internal/schema"
)

// fallbackKeyParam is the key parameter assumed when the schema declares no
// key field.
const fallbackKeyParam = "id"

// Param is one function parameter derived from a field.
type Param struct {
	Name string
	Type string
}

// Initializer assigns a parameter to a struct field in a composite literal.
type Initializer struct {
	Field string
	Param string
}

// Params is the parameter list of a record-constructing function and the
// matching field initializers. Both follow schema order, so the i-th
// parameter always initializes the i-th field.
type Params struct {
	List         []Param
	Initializers []Initializer
}

// ParamName is the parameter a field is passed as: its JSON tag lower-cased.
func ParamName(f schema.Field) string { return strings.ToLower(f.JSONTag) }

// BuildParams derives parameters and initializers from the schema.
func BuildParams(s schema.Schema) Params {
	p := Params{
		List:         make([]Param, 0, len(s)),
		Initializers: make([]Initializer, 0, len(s)),
	}
	for _, f := range s {
		name := ParamName(f)
		p.List = append(p.List, Param{Name: name, Type: f.Type.GoType()})
		p.Initializers = append(p.Initializers, Initializer{Field: f.Name, Param: name})
	}
	return p
}

// Signature renders the parameters as "a string, b int".
func (p Params) Signature() string {
	parts := make([]string, len(p.List))
	for i, prm := range p.List {
		parts[i] = prm.Name + " " + prm.Type
	}
	return strings.Join(parts, ", ")
}

// Declares reports whether a parameter with the given name is in the list.
func (p Params) Declares(name string) bool {
	for _, prm := range p.List {
		if prm.Name == name {
			return true
		}
	}
	return false
}

// KeyParam is the parameter carrying the record key: the key field's
// parameter name, or "id" when the schema has no key field.
func KeyParam(s schema.Schema) string {
	if f, ok := schema.FindKeyField(s); ok {
		return ParamName(f)
	}
	return fallbackKeyParam
}

// keyProperty is the struct field read off a record to obtain its key.
func keyProperty(s schema.Schema) string {
	if f, ok := schema.FindKeyField(s); ok {
		return f.Name
	}
	return "ID"
}
