// Package codegen turns a chaincode design (field schema, ordered operation
// blocks, naming parameters) into the Go source of a Hyperledger Fabric
// contract. Generation is a pure function of its Input: no I/O, no clock, no
// state shared between runs.
package codegen

import (
	"fmt"
	"strings"

	"github.com/matthewbaird/chaincodegen/internal/schema"
)

// preamble is emitted after the header comment of every file.
const preamble = `package main

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

`

// generator holds the state of a single run. existsEmitted is the only state
// carried from one block to the next.
type generator struct {
	in            Input
	assetType     string
	params        Params
	hasCreate     bool
	existsEmitted map[string]bool
	buf           cw
	diags         []Diagnostic
}

// Generate emits the contract source for in. It never fails: missing
// configuration, a missing key field and unknown block kinds all have
// fallbacks, reported in Result.Diagnostics.
func Generate(in Input) *Result {
	g := &generator{
		in:            in,
		assetType:     ResolveAssetType(in.Blocks, in.Configs),
		params:        BuildParams(in.Schema),
		existsEmitted: make(map[string]bool),
	}
	for _, b := range in.Blocks {
		if ParseKind(b.Kind) == KindCreate {
			g.hasCreate = true
			break
		}
	}

	g.diagnoseSchema()

	g.buf.line("// Generated Chaincode: %s v%s", in.Name, in.Version)
	g.buf.WriteString(preamble)

	if g.needsRecord() {
		writeRecordStruct(&g.buf, g.assetType, in.Schema)
	}
	writeContract(&g.buf, g.assetType)

	for _, b := range in.Blocks {
		g.emit(b)
	}

	writeMain(&g.buf, in.Name)

	return &Result{
		Source:      g.buf.String(),
		AssetType:   g.assetType,
		Diagnostics: g.diags,
	}
}

// ResolveAssetType returns the record type name shared by the whole run: the
// assetType of the first single-record block if it has one, else "Asset".
// Unknown block ids containing "Asset" ("transferAsset") are consulted too.
func ResolveAssetType(blocks []Block, configs map[string]Config) string {
	for _, b := range blocks {
		if !namesAssetType(b.Kind) {
			continue
		}
		if t := configs[b.InstanceID].String("assetType"); t != "" {
			return t
		}
		return DefaultAssetType
	}
	return DefaultAssetType
}

func namesAssetType(id string) bool {
	k := ParseKind(id)
	if k == KindUnknown {
		return strings.Contains(id, "Asset")
	}
	return k.namesAssetType()
}

func (g *generator) needsRecord() bool {
	for _, b := range g.in.Blocks {
		if ParseKind(b.Kind).usesRecord() {
			return true
		}
	}
	return false
}

// emit dispatches one block to its writer. Output order follows block order.
func (g *generator) emit(b Block) {
	cfg := g.in.config(b.InstanceID)
	kind := ParseKind(b.Kind)
	if kind.needsKey() {
		g.diagnoseKey(b, kind)
	}

	switch kind {
	case KindInit:
		writeInit(&g.buf, g.assetType, g.in.Schema, cfg, g.hasCreate)
	case KindCreate:
		fnType := cfg.String("assetType")
		if fnType == "" {
			fnType = g.assetType
		} else if fnType != g.assetType {
			if msg := checkTypeName(fnType); msg != "" {
				g.report(Diagnostic{Code: DiagInvalidAssetType, InstanceID: b.InstanceID, Message: msg})
			}
		}
		writeCreate(&g.buf, g.assetType, fnType, g.in.Schema, g.params)
	case KindRead:
		writeRead(&g.buf, g.assetType)
	case KindUpdate:
		writeUpdate(&g.buf, g.assetType, g.in.Schema, g.params)
		g.ensureExistsHelper(g.assetType)
	case KindDelete:
		writeDelete(&g.buf, g.assetType)
		g.ensureExistsHelper(g.assetType)
	case KindList:
		writeList(&g.buf, g.assetType)
	case KindUnknown:
		g.report(Diagnostic{
			Code:       DiagUnknownBlockKind,
			InstanceID: b.InstanceID,
			Message:    fmt.Sprintf("no emitter for block kind %q, a stub was emitted", b.Kind),
		})
		writeStub(&g.buf, stubName(b))
	}
}

// ensureExistsHelper emits <Type>Exists the first time any block needs it.
func (g *generator) ensureExistsHelper(typeName string) {
	if g.existsEmitted[typeName] {
		return
	}
	g.existsEmitted[typeName] = true
	writeExistsHelper(&g.buf, typeName)
}

func stubName(b Block) string {
	return strings.Join(strings.Fields(b.displayName()), " ")
}

// ─── Diagnostics ─────────────────────────────────────────────────────────────

func (g *generator) report(d Diagnostic) {
	g.diags = append(g.diags, d)
}

func (g *generator) diagnoseSchema() {
	for _, issue := range schema.Validate(g.in.Schema) {
		g.report(Diagnostic{Code: issue.Code, Field: issue.Field, Message: issue.Message})
	}
	// The name lands in the header comment and in string literals of main;
	// the version only in the comment.
	if strings.ContainsAny(g.in.Name, "\"\\\n\r") || strings.ContainsAny(g.in.Version, "\n\r") {
		g.report(Diagnostic{
			Code:    DiagInvalidName,
			Message: fmt.Sprintf("chaincode name %q or version %q cannot be emitted verbatim", g.in.Name, g.in.Version),
		})
	}
	if msg := checkTypeName(g.assetType); msg != "" {
		g.report(Diagnostic{Code: DiagInvalidAssetType, Message: msg})
	}
	for _, f := range g.in.Schema {
		// An empty tag is already reported as empty_json_tag.
		if name := ParamName(f); name != "" && !schema.IsIdentifier(name) {
			g.report(Diagnostic{
				Code:    DiagInvalidParamName,
				Field:   f.Name,
				Message: fmt.Sprintf("json tag %q yields the parameter %q, which is not a valid Go identifier", f.JSONTag, name),
			})
		}
	}
	if key, ok := schema.FindKeyField(g.in.Schema); ok && key.Type != schema.TypeString {
		g.report(Diagnostic{
			Code:    DiagKeyFieldNotString,
			Field:   key.Name,
			Message: fmt.Sprintf("key field has type %s, world state keys are strings", key.Type.GoType()),
		})
	}
}

// diagnoseKey reports blocks that address records by key while the schema
// declares no key field. Such blocks fall back to a literal "id" parameter.
func (g *generator) diagnoseKey(b Block, kind Kind) {
	if _, ok := schema.FindKeyField(g.in.Schema); ok {
		return
	}
	g.report(Diagnostic{
		Code:       DiagMissingKeyField,
		InstanceID: b.InstanceID,
		Message:    fmt.Sprintf("%s block has no key field, using %q", kind, fallbackKeyParam),
	})
	if (kind == KindCreate || kind == KindUpdate) && !g.params.Declares(fallbackKeyParam) {
		g.report(Diagnostic{
			Code:       DiagUndeclaredKeyParam,
			InstanceID: b.InstanceID,
			Message:    fmt.Sprintf("%s block stores under %q, which is not one of its parameters", kind, fallbackKeyParam),
		})
	}
}
