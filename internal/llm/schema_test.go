package llm

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestSchemaDefinition(t *testing.T) {
	s := &Schema{Name: "def-test", Description: "A reply", Fields: []Field{{Name: "text", Description: "body"}, {Name: "mood"}}}
	def := s.Definition()
	if !reflect.DeepEqual(def["required"], []any{"text", "mood"}) {
		t.Fatalf("every field must be required, got %v", def["required"])
	}
	props := def["properties"].(map[string]any)
	if !reflect.DeepEqual(props["text"], map[string]any{"type": "string", "description": "body"}) {
		t.Fatalf("unexpected text property %v", props["text"])
	}
	if def["additionalProperties"] != false || def["description"] != "A reply" {
		t.Fatalf("unexpected definition %v", def)
	}
}

func TestSchemaValidate(t *testing.T) {
	s := &Schema{Name: "validate-test-text", Fields: []Field{{Name: "text"}}}
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"text":"ola mundo"}`, false},
		{"missing required", `{}`, true},
		{"wrong type", `{"text":42}`, true},
		{"extra field", `{"text":"a","mood":"happy"}`, true},
		{"malformed", `{not json}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%s) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			var invalid *ErrInvalidResponse
			if err != nil && !errors.As(err, &invalid) {
				t.Fatalf("expected ErrInvalidResponse, got %T", err)
			}
		})
	}
	if _, ok := compiledSchemas.Load(s.Name); !ok {
		t.Fatalf("expected compiled schema to be cached")
	}
	var nilSchema *Schema
	if err := nilSchema.Validate(json.RawMessage(`anything`)); err != nil {
		t.Fatalf("nil schema must accept anything, got %v", err)
	}
}

func TestFinishReply(t *testing.T) {
	req := Request{Reply: &Schema{Name: "finish-test", Fields: []Field{{Name: "message"}}}}

	resp, err := finishReply(req, "  {\"message\":\"GG\"}\n", false, "m", Usage{InputTokens: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text, err := resp.Text("message"); err != nil || text != "GG" {
		t.Fatalf("Text = %q, %v", text, err)
	}
	if _, err := resp.Text("missing"); err == nil {
		t.Fatalf("expected error for missing field")
	}

	var truncated *ErrTruncated
	if _, err := finishReply(req, `{"message":"G`, true, "m", Usage{}); !errors.As(err, &truncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestClassifyStatus(t *testing.T) {
	var limited *ErrRateLimit
	if err := classifyStatus(429, errors.New("slow down")); !errors.As(err, &limited) {
		t.Fatalf("429 must map to ErrRateLimit, got %T", err)
	}
	var unavailable *ErrProviderUnavailable
	if err := classifyStatus(0, errors.New("dial")); !errors.As(err, &unavailable) {
		t.Fatalf("no status must map to ErrProviderUnavailable, got %T", err)
	}
}
