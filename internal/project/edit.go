package project

import (
	"errors"
	"fmt"
	"maps"

	"github.com/matthewbaird/chaincodegen/internal/codegen"
	"github.com/matthewbaird/chaincodegen/internal/idgen"
	"github.com/matthewbaird/chaincodegen/internal/schema"
)

var (
	ErrUnknownBlock    = errors.New("unknown block")
	ErrNoSuchInstance  = errors.New("no such block instance")
	ErrDuplicateField  = errors.New("duplicate field name")
	ErrIncompleteField = errors.New("field name and json tag are required")
	ErrNoSuchField     = errors.New("no such field")
)

// ─── Blocks ──────────────────────────────────────────────────────────────────

// AddBlock places a palette block at the end of the canvas and seeds its
// configuration with the block's defaults.
func (p *Project) AddBlock(ids idgen.Generator, blockID string, pos Position) (Placement, error) {
	def, ok := LookupBlock(blockID)
	if !ok {
		return Placement{}, fmt.Errorf("%w: %s", ErrUnknownBlock, blockID)
	}
	instanceID, err := ids.InstanceID(blockID)
	if err != nil {
		return Placement{}, fmt.Errorf("allocating instance id: %w", err)
	}
	pl := Placement{
		InstanceID: instanceID,
		BlockID:    def.ID,
		Name:       def.Name,
		Color:      def.Color,
		Position:   pos,
	}
	p.Canvas = append(p.Canvas, pl)
	if p.BlockProps == nil {
		p.BlockProps = map[string]codegen.Config{}
	}
	p.BlockProps[instanceID] = DefaultProps(blockID)
	return pl, nil
}

// RemoveBlock removes a placed block and its configuration.
func (p *Project) RemoveBlock(instanceID string) error {
	i := p.indexOf(instanceID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNoSuchInstance, instanceID)
	}
	p.Canvas = append(p.Canvas[:i], p.Canvas[i+1:]...)
	delete(p.BlockProps, instanceID)
	return nil
}

// MoveBlock changes a block's position in emission order.
func (p *Project) MoveBlock(instanceID string, to int) error {
	i := p.indexOf(instanceID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNoSuchInstance, instanceID)
	}
	to = max(0, min(to, len(p.Canvas)-1))
	pl := p.Canvas[i]
	p.Canvas = append(p.Canvas[:i], p.Canvas[i+1:]...)
	p.Canvas = append(p.Canvas[:to], append([]Placement{pl}, p.Canvas[to:]...)...)
	return nil
}

// SetBlockProps merges props into a block's configuration. Changing the
// assetType of a create block renames the record for every create block on
// the canvas so they stay on one type.
func (p *Project) SetBlockProps(instanceID string, props codegen.Config) error {
	i := p.indexOf(instanceID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNoSuchInstance, instanceID)
	}
	if p.BlockProps == nil {
		p.BlockProps = map[string]codegen.Config{}
	}
	current := p.BlockProps[instanceID]

	if codegen.ParseKind(p.Canvas[i].BlockID) == codegen.KindCreate {
		if next := props.String("assetType"); next != "" && next != current.String("assetType") {
			p.syncAssetType(next)
			current = p.BlockProps[instanceID]
		}
	}

	merged := codegen.Config{}
	maps.Copy(merged, current)
	maps.Copy(merged, props)
	p.BlockProps[instanceID] = merged
	return nil
}

func (p *Project) syncAssetType(assetType string) {
	for _, c := range p.Canvas {
		if codegen.ParseKind(c.BlockID) != codegen.KindCreate {
			continue
		}
		cfg, ok := p.BlockProps[c.InstanceID]
		if !ok {
			continue
		}
		next := codegen.Config{}
		maps.Copy(next, cfg)
		next["assetType"] = assetType
		p.BlockProps[c.InstanceID] = next
	}
}

func (p *Project) indexOf(instanceID string) int {
	for i, c := range p.Canvas {
		if c.InstanceID == instanceID {
			return i
		}
	}
	return -1
}

// ─── Fields ──────────────────────────────────────────────────────────────────

// AddField appends a field. Name and JSON tag are required and names are
// unique.
func (p *Project) AddField(f schema.Field) error {
	if f.Name == "" || f.JSONTag == "" {
		return ErrIncompleteField
	}
	if _, ok := p.AssetFields.Lookup(f.Name); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateField, f.Name)
	}
	if f.Type == "" {
		f.Type = schema.TypeString
	}
	f.Type = schema.ParseTypeTag(string(f.Type))
	p.AssetFields = append(p.AssetFields, f)
	return nil
}

// RemoveField deletes the named field.
func (p *Project) RemoveField(name string) error {
	for i, f := range p.AssetFields {
		if f.Name == name {
			p.AssetFields = append(p.AssetFields[:i], p.AssetFields[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNoSuchField, name)
}

// UpdateField replaces the named field in place, keeping its position.
func (p *Project) UpdateField(name string, f schema.Field) error {
	if f.Name == "" || f.JSONTag == "" {
		return ErrIncompleteField
	}
	idx := -1
	for i, cur := range p.AssetFields {
		if cur.Name == name {
			idx = i
		} else if cur.Name == f.Name {
			return fmt.Errorf("%w: %s", ErrDuplicateField, f.Name)
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNoSuchField, name)
	}
	if f.Type == "" {
		f.Type = schema.TypeString
	}
	f.Type = schema.ParseTypeTag(string(f.Type))
	p.AssetFields[idx] = f
	return nil
}
