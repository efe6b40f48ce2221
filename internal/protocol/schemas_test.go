package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, raw string) error {
		t.Helper()
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			t.Fatalf("unmarshal sample: %v", err)
		}
		return s.Validate(v)
	}

	sceneSchema := compile("scene.schema.json")
	plansSchema := compile("plans.schema.json")
	resultSchema := compile("result.schema.json")

	if err := validate(sceneSchema, `{
	  "b1": {"min":[0,0,0], "max":[10,10,10]},
	  "b2": {"min":[20,0,0], "max":[30,10,10]},
	  "table1": {"min":[-50,-50,-1], "max":[50,50,0]}
	}`); err != nil {
		t.Fatalf("scene sample: %v", err)
	}
	if err := validate(sceneSchema, `{"crate": {"min":[0,0,0], "max":[1,1,1]}}`); err == nil {
		t.Fatalf("scene schema should reject labels outside bN/tableN")
	}
	if err := validate(sceneSchema, `{"b1": {"min":[0,0], "max":[1,1,1]}}`); err == nil {
		t.Fatalf("scene schema should reject 2-component corners")
	}

	if err := validate(plansSchema, `{
	  "llm": {
	    "run1": {
	      "p01": {
	        "revised": ["move b1 on b2"],
	        "original": [["pick up the blue box", "place it on the red box"]]
	      }
	    }
	  }
	}`); err != nil {
		t.Fatalf("plans sample: %v", err)
	}
	if err := validate(plansSchema, `{"llm": {"run1": {"p01": {"revised": ["move b1 on b2"]}}}}`); err == nil {
		t.Fatalf("plans schema should require original")
	}

	if err := validate(resultSchema, `{
	  "method":"llm", "run":"run1", "domain":"p01",
	  "steps":1, "skipped":0, "errors":[]
	}`); err != nil {
		t.Fatalf("result sample: %v", err)
	}
	if err := validate(resultSchema, `{"method":"llm", "run":"run1", "domain":"p01", "steps":-1, "errors":[]}`); err == nil {
		t.Fatalf("result schema should reject negative steps")
	}
}
