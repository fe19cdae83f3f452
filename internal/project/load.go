package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueformat "cuelang.org/go/cue/format"
	"gopkg.in/yaml.v3"
)

// Format is a project file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatFromPath picks the format from a file extension. Anything that is
// not YAML or CUE is read as JSON, the builder's export format.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".cue":
		return FormatCUE
	default:
		return FormatJSON
	}
}

// ParseFormat accepts "json", "yaml"/"yml" and "cue".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cue":
		return FormatCUE, nil
	}
	return "", fmt.Errorf("unknown project format %q", s)
}

// LoadError reports a project file that could not be read or decoded.
type LoadError struct {
	Path   string
	Format Format
	Err    error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decoding %s project: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("loading %s project %s: %v", e.Format, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadFile reads and decodes a project file.
func LoadFile(path string) (*Project, error) {
	format := FormatFromPath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Format: format, Err: err}
	}
	p, err := decode(data, format, path)
	if err != nil {
		return nil, &LoadError{Path: path, Format: format, Err: err}
	}
	return p, nil
}

// Decode parses a project in the given format and normalises it.
func Decode(data []byte, format Format) (*Project, error) {
	p, err := decode(data, format, "project."+string(format))
	if err != nil {
		return nil, &LoadError{Format: format, Err: err}
	}
	return p, nil
}

func decode(data []byte, format Format, name string) (*Project, error) {
	p := &Project{}
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, p); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, p); err != nil {
			return nil, err
		}
	case FormatCUE:
		raw, err := cueToJSON(data, name)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, p); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	p.Normalize()
	return p, nil
}

// cueToJSON evaluates a CUE project. The project is either the whole file or
// the value of its top-level "project" field, and must be concrete.
func cueToJSON(data []byte, name string) ([]byte, error) {
	v := cuecontext.New().CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, err
	}
	if pv := v.LookupPath(cue.ParsePath("project")); pv.Exists() {
		v = pv
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, err
	}
	return v.MarshalJSON()
}

// Encode writes p in the given format.
func Encode(p *Project, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatCUE:
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		v := cuecontext.New().CompileBytes(raw)
		if err := v.Err(); err != nil {
			return nil, err
		}
		return cueformat.Node(v.Syntax(cue.Final(), cue.Concrete(true)))
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}
