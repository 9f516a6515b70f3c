package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// JSON schemas describing the backend responses the ui relies on.
// Additional properties are allowed: the backend also returns ids and timestamps.
const (
	recordSchemaJSON = `{
		"type": "object",
		"required": ["shortCode"],
		"properties": {
			"shortCode": {"type": "string", "minLength": 1},
			"url": {"type": "string"}
		}
	}`

	lookupSchemaJSON = `{
		"type": "object",
		"properties": {
			"url": {"type": "string"}
		}
	}`

	listSchemaJSON = `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["shortCode", "url"],
			"properties": {
				"shortCode": {"type": "string"},
				"url": {"type": "string"}
			}
		}
	}`

	statsSchemaJSON = `{
		"type": "object",
		"required": ["shortCode", "url"],
		"properties": {
			"shortCode": {"type": "string"},
			"url": {"type": "string"},
			"accessCount": {"type": "integer", "minimum": 0}
		}
	}`

	updateSchemaJSON = `{
		"type": "object",
		"required": ["url"],
		"properties": {
			"url": {"type": "string", "minLength": 1}
		}
	}`
)

var (
	recordSchema = mustCompileSchema("record.json", recordSchemaJSON)
	lookupSchema = mustCompileSchema("lookup.json", lookupSchemaJSON)
	listSchema   = mustCompileSchema("list.json", listSchemaJSON)
	statsSchema  = mustCompileSchema("stats.json", statsSchemaJSON)
	updateSchema = mustCompileSchema("update.json", updateSchemaJSON)
)

func mustCompileSchema(name, content string) *jsonschema.Schema {
	url := "http://shortener-ui.local/schemas/" + name

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(content))
	if err != nil {
		panic(fmt.Sprintf("schema %s is not valid JSON: %v", name, err))
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		panic(fmt.Sprintf("could not add schema %s: %v", name, err))
	}

	schema, err := c.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("could not compile schema %s: %v", name, err))
	}
	return schema
}

// decodeResponse checks data against schema and decodes it into out.
func decodeResponse(data json.RawMessage, schema *jsonschema.Schema, out any, while string) error {
	if data == nil {
		return NewClientInvalidResponseError(0, errors.New("empty response body"), while)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return NewClientInvalidResponseError(0, err, while)
	}

	if err := schema.Validate(doc); err != nil {
		return NewClientInvalidResponseError(0, err, while)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return NewClientInvalidResponseError(0, err, while)
	}
	return nil
}
