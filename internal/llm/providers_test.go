package llm

import (
	"encoding/json"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

func practiceRequest() Request {
	return Request{
		Purpose:     "practice-text",
		System:      "be brief",
		Prompt:      "hello",
		Reply:       &Schema{Name: "providers-test", Fields: []Field{{Name: "text", Description: "paragraph"}}},
		MaxTokens:   200,
		Temperature: 0.8,
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		models   map[string]string
		input    string
		expected string
	}{
		{geminiModels, "gemini-flash", "gemini-2.0-flash"},
		{geminiModels, "gemini-flash-latest", "gemini-flash-latest"},
		{anthropicModels, "claude-haiku", "claude-haiku-4-5-20251001"},
		{openaiModels, "gpt-4o-mini", "gpt-4o-mini"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, tt.models); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGeminiConfig(t *testing.T) {
	config := geminiConfig(practiceRequest())
	if config.ResponseMIMEType != "application/json" {
		t.Fatalf("expected JSON mime type, got %q", config.ResponseMIMEType)
	}
	schema, ok := config.ResponseJsonSchema.(map[string]any)
	if !ok || schema["type"] != "object" {
		t.Fatalf("expected object schema, got %#v", config.ResponseJsonSchema)
	}
	if config.SystemInstruction == nil || config.SystemInstruction.Parts[0].Text != "be brief" {
		t.Fatalf("unexpected system instruction %#v", config.SystemInstruction)
	}
	if config.MaxOutputTokens != 200 || config.Temperature == nil || *config.Temperature != float32(0.8) {
		t.Fatalf("unexpected limits: %d %v", config.MaxOutputTokens, config.Temperature)
	}

	plain := geminiConfig(Request{Prompt: "hi"})
	if plain.ResponseJsonSchema != nil || plain.SystemInstruction != nil || plain.Temperature != nil {
		t.Fatalf("expected empty config, got %#v", plain)
	}
	if genai.Text("hi")[0].Role != genai.RoleUser {
		t.Fatalf("prompt must be sent as the user turn")
	}
}

func TestOpenAIRequest(t *testing.T) {
	req, err := openaiRequest("gpt-4o-mini", practiceRequest())
	if err != nil {
		t.Fatalf("openaiRequest: %v", err)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != openai.ChatMessageRoleSystem || req.Messages[1].Content != "hello" {
		t.Fatalf("unexpected messages: %+v", req.Messages)
	}
	format := req.ResponseFormat
	if format == nil || format.Type != openai.ChatCompletionResponseFormatTypeJSONSchema || !format.JSONSchema.Strict {
		t.Fatalf("expected strict JSON schema format, got %+v", format)
	}
	raw, err := format.JSONSchema.Schema.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	var def map[string]any
	if err := json.Unmarshal(raw, &def); err != nil || def["additionalProperties"] != false {
		t.Fatalf("strict schema must forbid extra fields: %s", raw)
	}

	noSystem, _ := openaiRequest("gpt-4o-mini", Request{Prompt: "hi"})
	if len(noSystem.Messages) != 1 || noSystem.ResponseFormat != nil {
		t.Fatalf("expected a single user message, got %+v", noSystem)
	}
}

func TestAnthropicParams(t *testing.T) {
	params := anthropicParams("claude-haiku-4-5-20251001", practiceRequest())
	if len(params.Messages) != 1 || params.Messages[0].Role != anthropic.MessageParamRoleUser {
		t.Fatalf("unexpected messages: %+v", params.Messages)
	}
	if params.MaxTokens != 200 || params.System[0].Text != "be brief" {
		t.Fatalf("unexpected params: %d %+v", params.MaxTokens, params.System)
	}
	if params.OutputConfig.Format.Schema["type"] != "object" {
		t.Fatalf("expected JSON output format, got %+v", params.OutputConfig.Format.Schema)
	}
	if got := anthropicParams("m", Request{Prompt: "hi"}).MaxTokens; got != defaultAnthropicMaxTokens {
		t.Fatalf("expected default max tokens, got %d", got)
	}
}
