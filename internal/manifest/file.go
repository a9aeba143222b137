package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/egoist/bina/internal/platform"
)

// FileName is the release asset name that switches resolution to explicit mode.
const FileName = "bina.json"

const schemaURL = "https://bina.egoist.sh/bina.schema.json"

//go:embed bina.schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// File is the decoded form of a bina.json manifest.
type File struct {
	Platforms map[string]PlatformFile `json:"platforms"`
}

// PlatformFile is one platform declaration in a manifest.
type PlatformFile struct {
	Asset string `json:"asset"`
	File  string `json:"file,omitempty"`
}

// Keys returns the declared platform keys in sorted order.
func (f *File) Keys() []platform.Key {
	keys := make([]platform.Key, 0, len(f.Platforms))
	for k := range f.Platforms {
		keys = append(keys, platform.Key(k))
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("decode manifest schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add manifest schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Parse validates data against the manifest schema and decodes it.
// Platform keys are not checked against the supported vocabulary; an
// unrecognized key only fails when the generated script runs.
func Parse(data []byte) (*File, error) {
	sch, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, &ManifestParseError{Message: "not valid JSON", Err: err}
	}
	if err := sch.Validate(inst); err != nil {
		return nil, &ManifestParseError{Message: "unexpected shape", Err: err}
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, &ManifestParseError{Message: "decode", Err: err}
	}
	return &f, nil
}
