package verify

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const indexSchemaName = "index.schema.json"

//go:embed schema/index.schema.json
var indexSchemaJSON []byte

var (
	indexSchemaOnce sync.Once
	indexSchema     *jsonschema.Schema
	indexSchemaErr  error
)

func compiledIndexSchema() (*jsonschema.Schema, error) {
	indexSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(indexSchemaJSON))
		if err != nil {
			indexSchemaErr = fmt.Errorf("parse embedded index schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(indexSchemaName, doc); err != nil {
			indexSchemaErr = fmt.Errorf("load embedded index schema: %w", err)
			return
		}
		indexSchema, indexSchemaErr = c.Compile(indexSchemaName)
		if indexSchemaErr != nil {
			indexSchemaErr = fmt.Errorf("compile embedded index schema: %w", indexSchemaErr)
		}
	})
	return indexSchema, indexSchemaErr
}

// ValidateIndex checks a raw index document against the embedded schema.
func ValidateIndex(data []byte) error {
	sch, err := compiledIndexSchema()
	if err != nil {
		return err
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("index is not valid JSON: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("index schema validation failed: %w", err)
	}
	return nil
}
