package utils

import (
	"testing"
)

type testPayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func TestParseAgentJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    testPayload
		wantErr bool
	}{
		{
			name:  "pure JSON",
			input: `{"success": true, "message": "ok"}`,
			want:  testPayload{Success: true, Message: "ok"},
		},
		{
			name:  "json code fence",
			input: "Here is the result:\n```json\n{\"success\": true, \"message\": \"fenced\"}\n```\nDone.",
			want:  testPayload{Success: true, Message: "fenced"},
		},
		{
			name:  "plain code fence",
			input: "```\n{\"success\": false, \"message\": \"plain fence\"}\n```",
			want:  testPayload{Success: false, Message: "plain fence"},
		},
		{
			name:  "embedded in prose",
			input: `The task finished. Result: {"success": true, "message": "embedded"} as requested.`,
			want:  testPayload{Success: true, Message: "embedded"},
		},
		{
			name:  "trailing comma repaired",
			input: `{"success": true, "message": "trailing",}`,
			want:  testPayload{Success: true, Message: "trailing"},
		},
		{
			name:  "unquoted keys repaired",
			input: `{success: true, message: "unquoted"}`,
			want:  testPayload{Success: true, Message: "unquoted"},
		},
		{
			name:  "single quotes repaired",
			input: `{'success': true, 'message': 'single quoted'}`,
			want:  testPayload{Success: true, Message: "single quoted"},
		},
		{
			name:  "apostrophe inside double-quoted string kept",
			input: `{"success": true, "message": "it's fine"}`,
			want:  testPayload{Success: true, Message: "it's fine"},
		},
		{
			name:  "bom prefix stripped",
			input: "\ufeff{\"success\": true, \"message\": \"bom\"}",
			want:  testPayload{Success: true, Message: "bom"},
		},
		{
			name:  "braces inside string literals ignored",
			input: `prefix {"success": true, "message": "a } b { c"} suffix`,
			want:  testPayload{Success: true, Message: "a } b { c"},
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "no JSON at all",
			input:   "the agent finished without producing data",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got testPayload
			err := ParseAgentJSON(tt.input, &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAgentJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseAgentJSON() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtractJSONFromText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "object in prose",
			input: `before {"a": 1} after`,
			want:  `{"a": 1}`,
		},
		{
			name:  "nested object",
			input: `x {"a": {"b": 2}} y`,
			want:  `{"a": {"b": 2}}`,
		},
		{
			name:  "array",
			input: `list: [1, 2, 3] end`,
			want:  `[1, 2, 3]`,
		},
		{
			name:  "unbalanced returns empty",
			input: `broken {"a": 1`,
			want:  "",
		},
		{
			name:  "no json",
			input: "nothing here",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONFromText(tt.input); got != tt.want {
				t.Errorf("ExtractJSONFromText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate() = %q", got)
	}
	if got := Truncate("a long string here", 6); got != "a long..." {
		t.Errorf("Truncate() = %q", got)
	}
}
