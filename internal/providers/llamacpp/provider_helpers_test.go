// internal/providers/llamacpp/provider_helpers_test.go
package llamacpp

import (
	"testing"
)

func TestParseModelsVariants(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{name: "wrapped models", data: `{"models":[{"id":"m1"},{"name":"m2"}]}`, want: []string{"m1", "m2"}},
		{name: "wrapped data", data: `{"data":[{"model":"m3"},{"path":"m4.gguf"}]}`, want: []string{"m3", "m4.gguf"}},
		{name: "direct array", data: `[{"id":"m5"},{"name":"m6"}]`, want: []string{"m5", "m6"}},
		{name: "names list", data: `{"models":["m7","m8"]}`, want: []string{"m7", "m8"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models, err := parseModels([]byte(tt.data))
			if err != nil {
				t.Fatalf("parseModels error: %v", err)
			}
			if len(models) != len(tt.want) {
				t.Fatalf("expected %d models, got %d", len(tt.want), len(models))
			}
			for i, want := range tt.want {
				if got := modelDisplayName(models[i]); got != want {
					t.Fatalf("model %d name = %q, want %q", i, got, want)
				}
			}
		})
	}

	if _, err := parseModels([]byte(`{"unexpected":true}`)); err == nil {
		t.Fatal("expected error for unrecognized payload")
	}
}

func TestStatusFieldUnmarshalJSON(t *testing.T) {
	var s statusField
	if err := s.UnmarshalJSON([]byte(`"loaded"`)); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if s.Value != "loaded" {
		t.Fatalf("expected loaded, got %q", s.Value)
	}
	if err := s.UnmarshalJSON([]byte(`{"value":"unloaded"}`)); err != nil {
		t.Fatalf("unmarshal object: %v", err)
	}
	if s.Value != "unloaded" {
		t.Fatalf("expected unloaded, got %q", s.Value)
	}
	if err := s.UnmarshalJSON([]byte(`null`)); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if s.Value != "" {
		t.Fatalf("expected empty value, got %q", s.Value)
	}
}

func TestIsAlreadyLoadedError(t *testing.T) {
	body := []byte(`{"error":{"message":"model already loaded"}}`)
	if !isAlreadyLoadedError(400, body) {
		t.Fatal("expected already loaded match")
	}
	if isAlreadyLoadedError(500, body) {
		t.Fatal("expected false for non-400 status")
	}
	if !isAlreadyLoadedError(400, []byte("Model Already Loaded")) {
		t.Fatal("expected plain-text match")
	}
	if isAlreadyLoadedError(400, []byte(`{"error":{"message":"bad request"}}`)) {
		t.Fatal("expected false for unrelated error")
	}
}

func TestHostIdentifier(t *testing.T) {
	if got := hostIdentifier(" http://localhost:8080 "); got != "http://localhost:8080" {
		t.Fatalf("unexpected identifier: %q", got)
	}
	if got := hostIdentifier(""); got != "llama.cpp-host" {
		t.Fatalf("unexpected fallback: %q", got)
	}
}
