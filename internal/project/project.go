// Package project is the editable chaincode design: naming parameters, the
// placed blocks with their configuration and the asset field schema. Its JSON
// form is the builder's export format.
package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/matthewbaird/chaincodegen/internal/codegen"
	"github.com/matthewbaird/chaincodegen/internal/schema"
)

const (
	DefaultName    = "MyChaincode"
	DefaultVersion = "1.0"
)

// Position is where a block sits on the canvas. Generation ignores it.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Placement is a block placed on the canvas.
type Placement struct {
	InstanceID string   `json:"instanceId" yaml:"instanceId"`
	BlockID    string   `json:"blockId" yaml:"blockId"`
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	Color      string   `json:"color,omitempty" yaml:"color,omitempty"`
	Position   Position `json:"position" yaml:"position"`
}

// Project is one chaincode design.
type Project struct {
	ID          string                    `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string                    `json:"chaincodeName" yaml:"chaincodeName"`
	Version     string                    `json:"chaincodeVersion" yaml:"chaincodeVersion"`
	Canvas      []Placement               `json:"canvas" yaml:"canvas"`
	BlockProps  map[string]codegen.Config `json:"blockProps" yaml:"blockProps"`
	AssetFields schema.Schema             `json:"assetFields" yaml:"assetFields"`
}

// New returns an empty project with the builder's starting values.
func New() *Project {
	return &Project{
		Name:        DefaultName,
		Version:     DefaultVersion,
		Canvas:      []Placement{},
		BlockProps:  map[string]codegen.Config{},
		AssetFields: schema.DefaultSchema(),
	}
}

// Normalize fills absent collections and canonicalises field type names.
// It is applied to every imported project.
func (p *Project) Normalize() {
	if p.Canvas == nil {
		p.Canvas = []Placement{}
	}
	if p.BlockProps == nil {
		p.BlockProps = map[string]codegen.Config{}
	}
	if p.AssetFields == nil {
		p.AssetFields = schema.Schema{}
	}
	for i := range p.AssetFields {
		p.AssetFields[i].Type = schema.ParseTypeTag(string(p.AssetFields[i].Type))
	}
	for i := range p.Canvas {
		if p.Canvas[i].Name == "" {
			if d, ok := LookupBlock(p.Canvas[i].BlockID); ok {
				p.Canvas[i].Name = d.Name
			}
		}
	}
}

// Input maps the project onto the generator input. Canvas order is
// emission order.
func (p *Project) Input() codegen.Input {
	blocks := make([]codegen.Block, len(p.Canvas))
	for i, c := range p.Canvas {
		blocks[i] = codegen.Block{InstanceID: c.InstanceID, Kind: c.BlockID, Name: c.Name}
	}
	return codegen.Input{
		Name:    p.Name,
		Version: p.Version,
		Blocks:  blocks,
		Configs: p.BlockProps,
		Schema:  p.AssetFields,
	}
}

// Generate runs the generator over the project.
func (p *Project) Generate() *codegen.Result {
	return codegen.Generate(p.Input())
}

// FileName is the name the generated source is saved under:
// "MyChaincode" -> "my_chaincode.go".
func (p *Project) FileName() string {
	return Slug(p.Name) + ".go"
}

// pathSeparators are turned into word breaks so a slug is always a single
// path element.
var pathSeparators = strings.NewReplacer("/", " ", "\\", " ")

// Slug is the snake_case form of a chaincode name, used in file and object
// names. An empty name yields "chaincode".
func Slug(name string) string {
	s := strcase.ToSnake(strings.TrimSpace(pathSeparators.Replace(name)))
	if s == "" {
		return "chaincode"
	}
	return s
}

var (
	ErrDuplicateInstance = errors.New("duplicate block instance id")
	ErrMissingName       = errors.New("chaincode name is required")
)

// Validate checks the structural invariants the generator relies on but does
// not enforce: a name, unique instance ids and unique field names.
func (p *Project) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ErrMissingName)
	}
	seen := make(map[string]bool, len(p.Canvas))
	for _, c := range p.Canvas {
		if seen[c.InstanceID] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateInstance, c.InstanceID))
		}
		seen[c.InstanceID] = true
	}
	for _, issue := range schema.Validate(p.AssetFields) {
		if issue.Code == schema.IssueDuplicateField {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateField, issue.Field))
		}
	}
	return errors.Join(errs...)
}

// Clone returns a deep copy of p. Config values are copied one level deep.
func (p *Project) Clone() *Project {
	out := *p
	out.Canvas = append([]Placement(nil), p.Canvas...)
	out.AssetFields = p.AssetFields.Clone()
	out.BlockProps = make(map[string]codegen.Config, len(p.BlockProps))
	for id, cfg := range p.BlockProps {
		c := make(codegen.Config, len(cfg))
		for k, v := range cfg {
			c[k] = v
		}
		out.BlockProps[id] = c
	}
	return &out
}
