package epidemic_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"epi-ca/internal/sims/epidemic"
)

func TestConfigSchema(t *testing.T) {
	schema, err := jsonschema.Compile(filepath.Join("..", "..", "..", "schemas", "config.schema.json"))
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}

	toDoc := func(c epidemic.Config) any {
		t.Helper()
		raw, err := json.Marshal(c)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return doc
	}

	if err := schema.Validate(toDoc(epidemic.DefaultConfig())); err != nil {
		t.Fatalf("default config does not match schema: %v", err)
	}

	ring := epidemic.DefaultConfig()
	ring.Params.Ring = true
	ring.Params.Vaccination = 0
	if err := schema.Validate(toDoc(ring)); err != nil {
		t.Fatalf("ring config does not match schema: %v", err)
	}

	bad := epidemic.DefaultConfig()
	bad.Size = 0
	if err := schema.Validate(toDoc(bad)); err == nil {
		t.Fatal("schema accepted size 0")
	}
	bad = epidemic.DefaultConfig()
	bad.Params.Infection = 2
	if err := schema.Validate(toDoc(bad)); err == nil {
		t.Fatal("schema accepted infection probability 2")
	}
}
