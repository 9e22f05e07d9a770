package api

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Response schemas for the payloads the quiz flow depends on. A backend that
// drifts from these shapes is reported as a NetworkError instead of silently
// producing zero-valued questions or scores.
const (
	schemaLogin = `{
		"type": "object",
		"required": ["token", "user"],
		"properties": {
			"token": {"type": "string", "minLength": 1},
			"user": {"type": "object", "required": ["id", "username"]}
		}
	}`

	schemaQuestions = `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["id", "description", "options"],
			"properties": {
				"id": {"type": "integer"},
				"description": {"type": "string"},
				"options": {
					"type": "array",
					"minItems": 1,
					"items": {
						"type": "object",
						"required": ["id", "text"],
						"properties": {
							"id": {"type": "integer"},
							"text": {"type": "string"}
						}
					}
				}
			}
		}
	}`

	schemaVerify = `{
		"type": "object",
		"required": ["correct"],
		"properties": {"correct": {"type": "boolean"}}
	}`

	schemaSubmission = `{
		"type": "object",
		"required": ["total", "correct"],
		"properties": {
			"total": {"type": "integer", "minimum": 0},
			"correct": {"type": "integer", "minimum": 0},
			"score": {"type": "integer"},
			"bestScore": {"type": "integer"},
			"improved": {"type": "boolean"},
			"completed": {"type": "boolean"}
		}
	}`
)

var schemaSources = map[string]string{
	"login":      schemaLogin,
	"questions":  schemaQuestions,
	"verify":     schemaVerify,
	"submission": schemaSubmission,
}

// schemaCache caches compiled schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validateBody checks raw against the named schema.
func validateBody(name string, raw []byte) error {
	compiled, err := compiledSchema(name)
	if err != nil {
		return err
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("unexpected %s payload: %w", name, err)
	}
	return nil
}

func compiledSchema(name string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	src, ok := schemaSources[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	var doc any
	if err := json.Unmarshal([]byte(src), &doc); err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}
