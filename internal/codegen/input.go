package codegen

import (
	"fmt"

	"github.com/matthewbaird/chaincodegen/internal/schema"
)

// Block is one placed operation in emission order.
type Block struct {
	InstanceID string `json:"instanceId"`
	Kind       string `json:"blockId"`
	Name       string `json:"name,omitempty"`
}

// displayName is how stub output refers to the block.
func (b Block) displayName() string {
	if b.Name != "" {
		return b.Name
	}
	return b.Kind
}

// Config is the free-form per-instance configuration of a block.
type Config map[string]any

// String returns the value under key when it is a non-empty string.
func (c Config) String(key string) string {
	if c == nil {
		return ""
	}
	switch v := c[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return ""
	}
}

// Input carries everything one generation run reads. The generator never
// mutates it.
type Input struct {
	Name    string
	Version string
	Blocks  []Block
	Configs map[string]Config
	Schema  schema.Schema
}

// config returns the configuration of the given instance, or nil.
func (in Input) config(instanceID string) Config {
	return in.Configs[instanceID]
}

// Diagnostic codes produced by the generator in addition to the schema
// issue codes.
const (
	DiagMissingKeyField    = "missing_key_field"
	DiagUndeclaredKeyParam = "undeclared_key_param"
	DiagKeyFieldNotString  = "key_field_not_string"
	DiagInvalidAssetType   = "invalid_asset_type"
	DiagInvalidParamName   = "invalid_param_name"
	DiagInvalidName        = "invalid_chaincode_name"
	DiagUnknownBlockKind   = "unknown_block_kind"
)

// Diagnostic is a non-fatal finding about the input. Source is still emitted.
type Diagnostic struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	InstanceID string `json:"instance_id,omitempty"`
	Field      string `json:"field,omitempty"`
}

// Result is the output of one generation run.
type Result struct {
	Source      string       `json:"source"`
	AssetType   string       `json:"asset_type"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}
