package security

import (
	"strings"
	"testing"
)

func TestSanitize_RemovesScriptTags(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<p>hello</p><script>alert('xss')</script>`)

	if strings.Contains(got, "<script") {
		t.Errorf("expected script tag to be removed, got %q", got)
	}
	if !strings.Contains(got, "<p>hello</p>") {
		t.Errorf("expected allowed tag to survive, got %q", got)
	}
}

func TestSanitize_RemovesEventAttributes(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<p onclick="alert('xss')">click me</p>`)

	if strings.Contains(got, "onclick") {
		t.Errorf("expected onclick attribute to be removed, got %q", got)
	}
}

func TestSanitize_AllowsFormattingTags(t *testing.T) {
	s := NewContentSanitizer()

	tests := []struct {
		name  string
		input string
	}{
		{"strong", "<strong>太字</strong>"},
		{"em", "<em>強調</em>"},
		{"list", "<ul><li>項目</li></ul>"},
		{"code", "<pre><code>x := 1</code></pre>"},
		{"blockquote", "<blockquote>引用</blockquote>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sanitize(tt.input)
			if got != tt.input {
				t.Errorf("Sanitize(%q) = %q, want unchanged", tt.input, got)
			}
		})
	}
}

func TestSanitize_PlainTextPassesThrough(t *testing.T) {
	s := NewContentSanitizer()

	input := "買い物リスト: 牛乳、卵、パン"
	if got := s.Sanitize(input); got != input {
		t.Errorf("Sanitize(%q) = %q, want unchanged", input, got)
	}
}

func TestSanitize_EmptyInputReturnsEmpty(t *testing.T) {
	s := NewContentSanitizer()

	if got := s.Sanitize(""); got != "" {
		t.Errorf("Sanitize(\"\") = %q, want empty", got)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	s := NewContentSanitizer()

	input := `<p>text</p><iframe src="https://evil.example.com"></iframe>`
	once := s.Sanitize(input)
	twice := s.Sanitize(once)

	if once != twice {
		t.Errorf("expected idempotent sanitization: once=%q twice=%q", once, twice)
	}
}
