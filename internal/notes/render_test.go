package notes

import (
	"strings"
	"testing"
)

func TestRenderHTML_BasicMarkdown(t *testing.T) {
	t.Parallel()

	out := RenderHTML("# Title\n\nSome *emphasis* and a [link](https://example.com).")

	if !strings.Contains(out, "<h1") {
		t.Fatalf("expected heading in output: %s", out)
	}
	if !strings.Contains(out, "<em>emphasis</em>") {
		t.Fatalf("expected emphasis in output: %s", out)
	}
	if !strings.Contains(out, `href="https://example.com"`) {
		t.Fatalf("expected link in output: %s", out)
	}
}

func TestRenderHTML_StripsScripts(t *testing.T) {
	t.Parallel()

	out := RenderHTML("Hello <script>alert('xss')</script> world")

	if strings.Contains(out, "<script") {
		t.Fatalf("script tag survived sanitization: %s", out)
	}
	if strings.Contains(out, "alert(") {
		t.Fatalf("script body survived sanitization: %s", out)
	}
	if !strings.Contains(out, "Hello") || !strings.Contains(out, "world") {
		t.Fatalf("surrounding text lost: %s", out)
	}
}

func TestRenderHTML_StripsEventHandlers(t *testing.T) {
	t.Parallel()

	out := RenderHTML(`<img src="x" onerror="alert(1)">`)

	if strings.Contains(out, "onerror") {
		t.Fatalf("event handler survived sanitization: %s", out)
	}
}
