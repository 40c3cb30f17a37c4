package prompt

import "testing"

func TestFormatTemplate(t *testing.T) {
	output, err := FormatTemplate(
		"Analyze the product with website {website}{description_clause}.",
		map[string]string{
			"website":            "https://example.com",
			"description_clause": " and description: a note app",
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Analyze the product with website https://example.com and description: a note app."
	if output != want {
		t.Fatalf("unexpected output: %s", output)
	}
}

func TestFormatTemplateEscapedBraces(t *testing.T) {
	output, err := FormatTemplate("respond with {{\"relevant\": true}}", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output != `respond with {"relevant": true}` {
		t.Fatalf("unexpected output: %s", output)
	}
}

func TestFormatTemplateMissingKey(t *testing.T) {
	if _, err := FormatTemplate("Hello {name}", map[string]string{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFormatTemplateInvalidSyntax(t *testing.T) {
	if _, err := FormatTemplate("Hello {name", map[string]string{"name": "A"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateSystemStatic(t *testing.T) {
	if err := ValidateSystemStatic("analyze", "Find subreddits for {website}"); err == nil {
		t.Fatalf("expected error for template variable in system prompt")
	}
	if err := ValidateSystemStatic("judge", "Respond with {{\"relevant\": true}}"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
