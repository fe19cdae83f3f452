// Package seed provides demo projects for a fresh store.
package seed

import (
	"context"
	"fmt"
	"log"

	"github.com/matthewbaird/chaincodegen/internal/codegen"
	"github.com/matthewbaird/chaincodegen/internal/idgen"
	"github.com/matthewbaird/chaincodegen/internal/project"
	"github.com/matthewbaird/chaincodegen/internal/schema"
	"github.com/matthewbaird/chaincodegen/internal/store"
)

// Sample describes one demo project.
type Sample struct {
	Name    string
	Version string
	Blocks  []string
	Fields  schema.Schema // nil keeps the default fields
	Props   map[string]codegen.Config
}

// Samples are the demo projects, from a plain asset ledger to a record type
// with every field type. CarRegistry also places two palette blocks that
// have no emitter and render as stubs.
var Samples = []Sample{
	{
		Name:    "AssetTransfer",
		Version: "1.0",
		Blocks:  []string{"init", "createAsset", "readAsset", "updateAsset", "deleteAsset", "query"},
	},
	{
		Name:    "CarRegistry",
		Version: "2.1",
		Blocks:  []string{"init", "createAsset", "readAsset", "query", "getCreator", "emitEvent"},
		Fields: schema.Schema{
			{Name: "ID", Type: schema.TypeString, JSONTag: "id"},
			{Name: "Make", Type: schema.TypeString, JSONTag: "make"},
			{Name: "Model", Type: schema.TypeString, JSONTag: "model"},
			{Name: "Owner", Type: schema.TypeString, JSONTag: "owner"},
			{Name: "Year", Type: schema.TypeInteger, JSONTag: "year"},
			{Name: "Price", Type: schema.TypeFloat, JSONTag: "price"},
			{Name: "Insured", Type: schema.TypeBoolean, JSONTag: "insured"},
			{Name: "Previous", Type: schema.TypeStringList, JSONTag: "previousOwners"},
			{Name: "Labels", Type: schema.TypeStringMap, JSONTag: "labels"},
		},
		Props: map[string]codegen.Config{
			"init":        {"message": "Registering the first cars"},
			"createAsset": {"assetType": "Car"},
		},
	},
}

// Build places a sample's blocks on a new project.
func (s Sample) Build(ids idgen.Generator) (*project.Project, error) {
	p := project.New()
	p.Name = s.Name
	if s.Version != "" {
		p.Version = s.Version
	}
	if s.Fields != nil {
		p.AssetFields = s.Fields.Clone()
	}
	for _, blockID := range s.Blocks {
		pl, err := p.AddBlock(ids, blockID, project.Position{X: 40, Y: float64(40 + 80*len(p.Canvas))})
		if err != nil {
			return nil, fmt.Errorf("sample %s: %w", s.Name, err)
		}
		if props, ok := s.Props[blockID]; ok {
			if err := p.SetBlockProps(pl.InstanceID, props); err != nil {
				return nil, fmt.Errorf("sample %s: %w", s.Name, err)
			}
		}
	}
	return p, nil
}

// SeedProjects stores the sample projects. If the store already holds
// projects it skips seeding.
func SeedProjects(ctx context.Context, s store.Store, ids idgen.Generator) error {
	_, count, err := s.List(ctx, store.ListOptions{Limit: 1})
	if err != nil {
		return fmt.Errorf("checking projects: %w", err)
	}
	if count > 0 {
		log.Printf("projects already seeded (%d found), skipping", count)
		return nil
	}

	for _, sample := range Samples {
		p, err := sample.Build(ids)
		if err != nil {
			return err
		}
		rec, err := s.Create(ctx, p)
		if err != nil {
			return fmt.Errorf("creating %s: %w", sample.Name, err)
		}
		log.Printf("seeded project %s (%s)", rec.Project.Name, rec.Project.ID)
	}
	return nil
}
