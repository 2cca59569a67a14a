package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/artuross/formula-engine/internal/formula/formulaerr"
	"github.com/artuross/formula-engine/internal/formula/value"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "schema://inputs.json"

var ErrRemoteSchema = errors.New("schema references outside the document are not allowed")

// schemaCache keeps compiled input schemas keyed by their source.
type schemaCache struct {
	mu      sync.Mutex
	schemas map[string]*jsonschema.Schema
}

func newSchemaCache() *schemaCache {
	return &schemaCache{
		schemas: make(map[string]*jsonschema.Schema),
	}
}

func (c *schemaCache) compile(source []byte) (*jsonschema.Schema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if schema, ok := c.schemas[string(source)]; ok {
		return schema, nil
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.LoadURL = func(url string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("%w: %s", ErrRemoteSchema, url)
	}

	if err := compiler.AddResource(schemaURL, bytes.NewReader(source)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	c.schemas[string(source)] = schema

	return schema, nil
}

// validate checks inputs against the formula's declared JSON Schema. A
// formula without a schema accepts any inputs.
func (p *Pipeline) validate(source []byte, inputs value.Map) error {
	if len(bytes.TrimSpace(source)) == 0 {
		return nil
	}

	schema, err := p.schemas.compile(source)
	if err != nil {
		return fmt.Errorf("load input schema: %w", err)
	}

	if err := schema.Validate(value.ToAny(inputs)); err != nil {
		return &formulaerr.InputValidationError{
			Message: describeValidation(err),
			Err:     err,
		}
	}

	return nil
}

// describeValidation flattens a validation error tree into its leaves.
func describeValidation(err error) string {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return err.Error()
	}

	leaves := make([]string, 0)

	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "/"
			}

			leaves = append(leaves, fmt.Sprintf("%s: %s", location, e.Message))

			return
		}

		for _, cause := range e.Causes {
			walk(cause)
		}
	}

	walk(validationErr)

	return strings.Join(leaves, "; ")
}
