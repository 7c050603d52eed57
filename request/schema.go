package request

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// searchOptionsSchema describes the wire shape of SearchOptions before it
// is decoded into the typed struct, so malformed filter clauses are
// rejected with a precise message rather than a generic JSON unmarshal
// error or, worse, silently ignored fields.
const searchOptionsSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"limit": {"type": "integer", "minimum": 1, "maximum": 1000},
		"offset": {"type": "integer", "minimum": 0},
		"timeout_ms": {"type": "integer", "minimum": 100, "maximum": 60000},
		"filters": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["field", "operator"],
				"properties": {
					"field": {"type": "string", "minLength": 1},
					"operator": {"enum": ["eq", "ne", "gt", "gte", "lt", "lte", "in", "contains", "range"]}
				}
			}
		},
		"min_score": {"type": "number"}
	}
}`

var optionsValidator *jsonschema.Schema

func init() {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("search_options.json", bytes.NewReader([]byte(searchOptionsSchema))); err != nil {
		panic(fmt.Sprintf("request: invalid embedded schema: %v", err))
	}
	s, err := c.Compile("search_options.json")
	if err != nil {
		panic(fmt.Sprintf("request: schema compile failed: %v", err))
	}
	optionsValidator = s
}

// ValidateOptionsJSON validates a raw JSON options payload against the
// wire schema before it is unmarshaled into SearchOptions, so a malformed
// filter operator is rejected with a clear message. The HTTP handlers
// decode request bodies directly and do not call it.
func ValidateOptionsJSON(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("options is not valid JSON: %w", err)
	}
	if err := optionsValidator.Validate(v); err != nil {
		return fmt.Errorf("options failed schema validation: %w", err)
	}
	return nil
}
