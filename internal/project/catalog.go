package project

import (
	"maps"

	"github.com/matthewbaird/chaincodegen/internal/codegen"
)

// Category groups blocks in the palette.
type Category struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// BlockDef is one palette entry. Kind is the generator kind the id maps to;
// palette-only blocks have codegen.KindUnknown and generate a stub.
type BlockDef struct {
	ID       string         `json:"id" yaml:"id"`
	Name     string         `json:"name" yaml:"name"`
	Category string         `json:"category" yaml:"category"`
	Color    string         `json:"color" yaml:"color"`
	Defaults codegen.Config `json:"defaults,omitempty" yaml:"defaults,omitempty"`
}

// Kind returns the generator kind of the block.
func (d BlockDef) Kind() codegen.Kind { return codegen.ParseKind(d.ID) }

// Categories in palette order.
var Categories = []Category{
	{ID: "core", Name: "Core Functions"},
	{ID: "assets", Name: "Asset Operations"},
	{ID: "state", Name: "State Management"},
	{ID: "crypto", Name: "Cryptography"},
	{ID: "identity", Name: "Identity & Access"},
	{ID: "events", Name: "Events"},
}

// Catalog is the block palette in display order.
var Catalog = []BlockDef{
	{ID: "init", Name: "Init Function", Category: "core", Color: "bg-blue-600",
		Defaults: codegen.Config{"message": "Initializing the chaincode"}},
	{ID: "createAsset", Name: "Create Asset", Category: "assets", Color: "bg-green-600",
		Defaults: codegen.Config{"assetType": codegen.DefaultAssetType}},
	{ID: "readAsset", Name: "Read Asset", Category: "assets", Color: "bg-green-500"},
	{ID: "updateAsset", Name: "Update Asset", Category: "assets", Color: "bg-green-700"},
	{ID: "deleteAsset", Name: "Delete Asset", Category: "assets", Color: "bg-green-800"},
	{ID: "query", Name: "Query Assets", Category: "assets", Color: "bg-green-400"},
	{ID: "putState", Name: "Put State", Category: "state", Color: "bg-purple-600"},
	{ID: "getState", Name: "Get State", Category: "state", Color: "bg-purple-500"},
	{ID: "delState", Name: "Delete State", Category: "state", Color: "bg-purple-700"},
	{ID: "getStateByRange", Name: "Get State Range", Category: "state", Color: "bg-purple-400"},
	{ID: "createCompositeKey", Name: "Composite Key", Category: "state", Color: "bg-purple-800"},
	{ID: "verifySignature", Name: "Verify Signature", Category: "crypto", Color: "bg-yellow-600"},
	{ID: "getCreator", Name: "Get Creator", Category: "identity", Color: "bg-orange-600"},
	{ID: "checkACL", Name: "Check ACL", Category: "identity", Color: "bg-orange-500"},
	{ID: "emitEvent", Name: "Emit Event", Category: "events", Color: "bg-pink-600",
		Defaults: codegen.Config{"eventName": "NewEvent", "payload": "{}"}},
}

// LookupBlock returns the palette entry for id.
func LookupBlock(id string) (BlockDef, bool) {
	for _, d := range Catalog {
		if d.ID == id {
			return d, true
		}
	}
	return BlockDef{}, false
}

// DefaultProps returns a fresh copy of the default configuration of a block.
// Blocks without defaults get an empty, non-nil map.
func DefaultProps(id string) codegen.Config {
	out := codegen.Config{}
	if d, ok := LookupBlock(id); ok {
		maps.Copy(out, d.Defaults)
	}
	return out
}

// ByCategory groups the catalog by category id, keeping palette order.
func ByCategory() map[string][]BlockDef {
	out := make(map[string][]BlockDef, len(Categories))
	for _, d := range Catalog {
		out[d.Category] = append(out[d.Category], d)
	}
	return out
}
