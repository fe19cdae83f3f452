package codegen

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/matthewbaird/chaincodegen/internal/schema"
)

// ─── Output buffer ───────────────────────────────────────────────────────────

type cw struct{ bytes.Buffer }

func (w *cw) line(format string, args ...any) {
	fmt.Fprintf(&w.Buffer, format+"\n", args...)
}

// raw writes s followed by a newline without interpreting format verbs.
func (w *cw) raw(s string) {
	w.WriteString(s)
	w.WriteByte('\n')
}

const ctxParam = "ctx contractapi.TransactionContextInterface"

// withCtx prefixes a parameter signature with the transaction context.
func withCtx(sig string) string {
	if sig == "" {
		return ctxParam
	}
	return ctxParam + ", " + sig
}

// ─── Record and contract declarations ────────────────────────────────────────

func writeRecordStruct(buf *cw, typeName string, s schema.Schema) {
	buf.line("// %s represents a general asset in the ledger", typeName)
	buf.line("type %s struct {", typeName)
	for _, f := range s {
		buf.line("\t%s %s `json:\"%s\"`", f.Name, f.Type.GoType(), f.JSONTag)
	}
	buf.line("}")
	buf.line("")
}

func writeContract(buf *cw, typeName string) {
	buf.line("// SmartContract provides functions for managing %s", collectionNoun(typeName))
	buf.line("type SmartContract struct {")
	buf.line("\tcontractapi.Contract")
	buf.line("}")
	buf.line("")
}

// ─── Init ────────────────────────────────────────────────────────────────────

const (
	defaultInitMessage = "Initializing the chaincode"
	sampleCount        = 3
)

// writeInit emits InitLedger. With samples it seeds sampleCount records built
// from the schema and stores each under its key property.
func writeInit(buf *cw, typeName string, s schema.Schema, cfg Config, withSamples bool) {
	message := cfg.String("message")
	if message == "" {
		message = defaultInitMessage
	}
	noun := collectionNoun(typeName)
	v := VarName(typeName)
	vs := PluralName(typeName)

	buf.line("// InitLedger adds a base set of %s to the ledger", noun)
	buf.line("func (s *SmartContract) InitLedger(%s) error {", ctxParam)
	buf.line("\tfmt.Println(%s)", strconv.Quote(message))

	if !withSamples {
		buf.line("\treturn nil")
		buf.line("}")
		buf.line("")
		return
	}

	buf.line("")
	buf.line("\t// Create some initial %s", noun)
	buf.line("\t%s := []%s{", vs, typeName)
	for i := 1; i <= sampleCount; i++ {
		buf.line("\t\t{")
		for _, f := range s {
			buf.raw(fmt.Sprintf("%-22s%s,", "\t\t\t"+f.Name+":", SampleValue(f, i)))
		}
		buf.line("\t\t},")
	}
	buf.line("\t}")
	buf.line("")
	buf.line("\tfor _, %s := range %s {", v, vs)
	buf.line("\t\t%sJSON, err := json.Marshal(%s)", v, v)
	buf.line("\t\tif err != nil {")
	buf.line("\t\t\treturn err")
	buf.line("\t\t}")
	buf.line("")
	buf.line("\t\terr = ctx.GetStub().PutState(%s.%s, %sJSON)", v, keyProperty(s), v)
	buf.line("\t\tif err != nil {")
	buf.line("\t\t\treturn fmt.Errorf(\"failed to put to world state: %%v\", err)")
	buf.line("\t\t}")
	buf.line("\t}")
	buf.line("")
	buf.line("\treturn nil")
	buf.line("}")
	buf.line("")
}

// ─── Create ──────────────────────────────────────────────────────────────────

// writeRecordLiteral emits `v := Type{...}` initializing every field from its
// parameter in schema order.
func writeRecordLiteral(buf *cw, v, recordType string, p Params) {
	buf.line("\t%s := %s{", v, recordType)
	for _, in := range p.Initializers {
		buf.raw(fmt.Sprintf("%-20s%s,", "\t\t"+in.Field+":", in.Param))
	}
	buf.line("\t}")
}

// writeCreate emits Create<fnType>. The function is named for the block's own
// asset type; the value it stores is always the declared record type.
func writeCreate(buf *cw, recordType, fnType string, s schema.Schema, p Params) {
	v := VarName(fnType)
	key := KeyParam(s)

	buf.line("// Create%s creates a new %s in the ledger", fnType, Noun(fnType))
	buf.line("func (s *SmartContract) Create%s(%s) error {", fnType, withCtx(p.Signature()))
	writeRecordLiteral(buf, v, recordType, p)
	buf.line("")
	buf.line("\t%sJSON, err := json.Marshal(%s)", v, v)
	buf.line("\tif err != nil {")
	buf.line("\t\treturn err")
	buf.line("\t}")
	buf.line("")
	buf.line("\treturn ctx.GetStub().PutState(%s, %sJSON)", key, v)
	buf.line("}")
	buf.line("")
}

// ─── Read ────────────────────────────────────────────────────────────────────

func writeRead(buf *cw, typeName string) {
	v := VarName(typeName)
	noun := Noun(typeName)

	buf.line("// Read%s returns the %s stored in the ledger", typeName, noun)
	buf.line("func (s *SmartContract) Read%s(%s, id string) (*%s, error) {", typeName, ctxParam, typeName)
	buf.line("\t%sJSON, err := ctx.GetStub().GetState(id)", v)
	buf.line("\tif err != nil {")
	buf.line("\t\treturn nil, fmt.Errorf(\"failed to read from world state: %%v\", err)")
	buf.line("\t}")
	buf.line("\tif %sJSON == nil {", v)
	buf.line("\t\treturn nil, fmt.Errorf(\"the %s %%s does not exist\", id)", noun)
	buf.line("\t}")
	buf.line("")
	buf.line("\tvar %s %s", v, typeName)
	buf.line("\terr = json.Unmarshal(%sJSON, &%s)", v, v)
	buf.line("\tif err != nil {")
	buf.line("\t\treturn nil, err")
	buf.line("\t}")
	buf.line("")
	buf.line("\treturn &%s, nil", v)
	buf.line("}")
	buf.line("")
}

// ─── Update ──────────────────────────────────────────────────────────────────

func writeUpdate(buf *cw, typeName string, s schema.Schema, p Params) {
	v := VarName(typeName)
	noun := Noun(typeName)
	key := KeyParam(s)

	buf.line("// Update%s updates an existing %s in the ledger", typeName, noun)
	buf.line("func (s *SmartContract) Update%s(%s) error {", typeName, withCtx(p.Signature()))
	buf.line("\texists, err := s.%sExists(ctx, %s)", typeName, key)
	buf.line("\tif err != nil {")
	buf.line("\t\treturn err")
	buf.line("\t}")
	buf.line("\tif !exists {")
	buf.line("\t\treturn fmt.Errorf(\"the %s %%s does not exist\", %s)", noun, key)
	buf.line("\t}")
	buf.line("")
	writeRecordLiteral(buf, v, typeName, p)
	buf.line("\t%sJSON, err := json.Marshal(%s)", v, v)
	buf.line("\tif err != nil {")
	buf.line("\t\treturn err")
	buf.line("\t}")
	buf.line("")
	buf.line("\treturn ctx.GetStub().PutState(%s, %sJSON)", key, v)
	buf.line("}")
	buf.line("")
}

// writeExistsHelper emits <Type>Exists. Callers emit it once per type.
func writeExistsHelper(buf *cw, typeName string) {
	v := VarName(typeName)

	buf.line("// %sExists returns true when %s exists in the ledger", typeName, Noun(typeName))
	buf.line("func (s *SmartContract) %sExists(%s, id string) (bool, error) {", typeName, ctxParam)
	buf.line("\t%sJSON, err := ctx.GetStub().GetState(id)", v)
	buf.line("\tif err != nil {")
	buf.line("\t\treturn false, fmt.Errorf(\"failed to read from world state: %%v\", err)")
	buf.line("\t}")
	buf.line("")
	buf.line("\treturn %sJSON != nil, nil", v)
	buf.line("}")
	buf.line("")
}

// ─── Delete ──────────────────────────────────────────────────────────────────

func writeDelete(buf *cw, typeName string) {
	noun := Noun(typeName)

	buf.line("// Delete%s deletes a %s from the ledger", typeName, noun)
	buf.line("func (s *SmartContract) Delete%s(%s, id string) error {", typeName, ctxParam)
	buf.line("\t// Check if %s exists before deleting", VarName(typeName))
	buf.line("\texists, err := s.%sExists(ctx, id)", typeName)
	buf.line("\tif err != nil {")
	buf.line("\t\treturn err")
	buf.line("\t}")
	buf.line("\tif !exists {")
	buf.line("\t\treturn fmt.Errorf(\"the %s %%s does not exist\", id)", noun)
	buf.line("\t}")
	buf.line("")
	buf.line("\treturn ctx.GetStub().DelState(id)")
	buf.line("}")
	buf.line("")
}

// ─── List ────────────────────────────────────────────────────────────────────

// writeList emits Query<Type>s, which walks the whole key space with an open
// range and decodes every value.
func writeList(buf *cw, typeName string) {
	v := VarName(typeName)
	vs := PluralName(typeName)

	buf.line("// Query%ss returns all %ss found in the ledger", typeName, Noun(typeName))
	buf.line("func (s *SmartContract) Query%ss(%s) ([]*%s, error) {", typeName, ctxParam, typeName)
	buf.line("\tresultIterator, err := ctx.GetStub().GetStateByRange(\"\", \"\")")
	buf.line("\tif err != nil {")
	buf.line("\t\treturn nil, err")
	buf.line("\t}")
	buf.line("\tdefer resultIterator.Close()")
	buf.line("")
	buf.line("\tvar %s []*%s", vs, typeName)
	buf.line("\tfor resultIterator.HasNext() {")
	buf.line("\t\tqueryResponse, err := resultIterator.Next()")
	buf.line("\t\tif err != nil {")
	buf.line("\t\t\treturn nil, err")
	buf.line("\t\t}")
	buf.line("")
	buf.line("\t\tvar %s %s", v, typeName)
	buf.line("\t\terr = json.Unmarshal(queryResponse.Value, &%s)", v)
	buf.line("\t\tif err != nil {")
	buf.line("\t\t\treturn nil, err")
	buf.line("\t\t}")
	buf.line("\t\t%s = append(%s, &%s)", vs, vs, v)
	buf.line("\t}")
	buf.line("")
	buf.line("\treturn %s, nil", vs)
	buf.line("}")
	buf.line("")
}

// ─── Unknown ─────────────────────────────────────────────────────────────────

// writeStub marks a block the generator has no emitter for. It is comment-only
// so the file stays well-formed however many stubs it carries.
func writeStub(buf *cw, name string) {
	buf.raw("// " + name + " function")
	buf.raw("// TODO: Implement " + name)
	buf.line("")
}

// ─── Entry point ─────────────────────────────────────────────────────────────

func writeMain(buf *cw, name string) {
	buf.line("func main() {")
	buf.line("\tchaincode, err := contractapi.NewChaincode(new(SmartContract))")
	buf.line("\tif err != nil {")
	buf.raw("\t\tfmt.Printf(\"Error creating " + name + " chaincode: %s\", err.Error())")
	buf.line("\t\treturn")
	buf.line("\t}")
	buf.line("")
	buf.line("\tif err := chaincode.Start(); err != nil {")
	buf.raw("\t\tfmt.Printf(\"Error starting " + name + " chaincode: %s\", err.Error())")
	buf.line("\t}")
	buf.line("}")
}
