package viewer

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/matzehuels/xdsmgen/pkg/errors"
)

const schemaURL = "https://xdsmgen.dev/schemas/viewer.json"

const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["tree"],
  "properties": {
    "tree": {"$ref": "#/$defs/system"},
    "connections_list": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "src": {"type": "string"},
          "tgt": {"type": "string"}
        }
      }
    },
    "driver": {
      "type": ["object", "null"],
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "type": {"type": "string"}
      }
    },
    "design_vars": {"$ref": "#/$defs/variables"},
    "responses": {"$ref": "#/$defs/variables"}
  },
  "$defs": {
    "system": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string"},
        "type": {"type": "string"},
        "subsystem_type": {"enum": ["group", "component"]},
        "component_type": {"type": ["string", "null"]},
        "class": {"type": ["string", "null"]},
        "is_parallel": {"type": "boolean"},
        "linear_solver": {"type": "string"},
        "nonlinear_solver": {"type": "string"},
        "expressions": {"type": ["array", "null"], "items": {"type": "string"}},
        "children": {"type": "array", "items": {"$ref": "#/$defs/system"}}
      }
    },
    "variables": {
      "oneOf": [
        {"type": "object"},
        {"type": "array", "items": {"type": ["string", "object"]}},
        {"type": "null"}
      ]
    }
  }
}`

// Problem is a single schema violation.
type Problem struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

// Validator checks raw viewer documents against the viewer JSON Schema.
// It is safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal viewer schema: %w", err)
	}
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add viewer schema resource: %w", err)
	}
	sch, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile viewer schema: %w", err)
	}
	return &Validator{schema: sch}, nil
}

// Validate checks raw JSON. It returns nil when the document conforms,
// otherwise an INVALID_INPUT error and the individual problems.
func (v *Validator) Validate(raw []byte) ([]Problem, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "viewer data is not valid JSON")
	}
	if err := v.schema.Validate(inst); err != nil {
		var verr *jsonschema.ValidationError
		if !stderrors.As(err, &verr) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "validate viewer data")
		}
		problems := collectProblems(verr)
		msg := fmt.Sprintf("viewer data has %d schema violations", len(problems))
		if len(problems) == 1 {
			msg = fmt.Sprintf("%s: %s", problems[0].Location, problems[0].Message)
		}
		return problems, errors.New(errors.ErrCodeInvalidInput, "%s", msg)
	}
	return nil, nil
}

// collectProblems flattens the leaf causes of a validation error.
func collectProblems(verr *jsonschema.ValidationError) []Problem {
	if len(verr.Causes) == 0 {
		return []Problem{{
			Location: "/" + strings.Join(verr.InstanceLocation, "/"),
			Message:  verr.Error(),
		}}
	}
	var out []Problem
	for _, cause := range verr.Causes {
		out = append(out, collectProblems(cause)...)
	}
	return out
}
