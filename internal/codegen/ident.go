package codegen

import (
	"fmt"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultAssetType names the record when no block configures one.
const DefaultAssetType = "Asset"

// VarName lower-cases the first character of a type name: "Item" -> "item".
// The remainder is left unchanged ("IOUNote" -> "iOUNote").
func VarName(typeName string) string {
	r, size := utf8.DecodeRuneInString(typeName)
	if r == utf8.RuneError {
		return typeName
	}
	return string(unicode.ToLower(r)) + typeName[size:]
}

// PluralName is the collection variable for a type name: "Item" -> "items".
func PluralName(typeName string) string { return VarName(typeName) + "s" }

// Noun is the type name as it reads in comments and error strings.
func Noun(typeName string) string { return strings.ToLower(typeName) }

// collectionNoun is the plural noun used in contract-level comments. The
// default type reads as "assets"; custom types read as their lower-cased plural.
func collectionNoun(typeName string) string {
	if typeName == "" || typeName == DefaultAssetType {
		return "assets"
	}
	return Noun(typeName) + "s"
}

// checkTypeName returns why typeName cannot name the record, or "". The type
// itself and the variable derived from it must both be Go identifiers:
// "Package" would declare a variable named package.
func checkTypeName(typeName string) string {
	if !token.IsIdentifier(typeName) {
		return fmt.Sprintf("asset type %q is not a valid Go identifier", typeName)
	}
	if v := VarName(typeName); !token.IsIdentifier(v) {
		return fmt.Sprintf("asset type %q declares the variable %q, which is a Go keyword", typeName, v)
	}
	return ""
}
