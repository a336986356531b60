package render

import (
	"strings"
	"testing"
)

func TestRender_Emphasis(t *testing.T) {
	r := New(Options{})
	out, warns, err := r.Render("Body **bold**")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(warns) != 0 {
		t.Fatalf("warnings = %v", warns)
	}
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("output = %q", out)
	}
}

func TestRender_FencedCodeIsLiteral(t *testing.T) {
	r := New(Options{})
	out, _, err := r.Render("```\n# not a heading\n```\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out, "<h1") {
		t.Errorf("fence content rendered as heading: %q", out)
	}
	if !strings.Contains(out, "<code>") || !strings.Contains(out, "# not a heading") {
		t.Errorf("output = %q", out)
	}
}

func TestRender_RawRegionVerbatim(t *testing.T) {
	r := New(Options{})
	embed := `<iframe src="//slideshare.example/embed/42" width="476" height="400"></iframe>`
	out, warns, err := r.Render("intro\n\n{% raw %}\n" + embed + "\n{% endraw %}\n\noutro **x**\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(warns) != 0 {
		t.Fatalf("warnings = %v", warns)
	}
	if !strings.Contains(out, embed) {
		t.Errorf("iframe not passed through verbatim: %q", out)
	}
	if !strings.Contains(out, "<strong>x</strong>") {
		t.Errorf("markdown after raw region not rendered: %q", out)
	}
	if strings.Contains(out, "{% raw %}") || strings.Contains(out, "{% endraw %}") {
		t.Errorf("raw markers leaked: %q", out)
	}
}

func TestRender_RawRegionVerbatimInSafeMode(t *testing.T) {
	r := New(Options{Safe: true})
	out, _, err := r.Render("{% raw %}\n<video controls></video>\n{% endraw %}\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<video controls></video>") {
		t.Errorf("raw passthrough suppressed in safe mode: %q", out)
	}
}

func TestRender_UnterminatedFenceDegrades(t *testing.T) {
	r := New(Options{})
	out, warns, err := r.Render("before\n\n```\ncode without end\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(warns) != 1 || warns[0].Kind != WarnUnterminatedCodeFence {
		t.Fatalf("warnings = %v", warns)
	}
	if !strings.Contains(out, "code without end") {
		t.Errorf("trailing content lost: %q", out)
	}
}

func TestRender_GFMTable(t *testing.T) {
	r := New(Options{})
	out, _, err := r.Render("| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("table not rendered: %q", out)
	}
}

func TestRender_UnknownExtensionIgnored(t *testing.T) {
	r := New(Options{Extensions: []string{"gfm", "made-up", ""}})
	if _, _, err := r.Render("x"); err != nil {
		t.Fatalf("Render: %v", err)
	}
}
