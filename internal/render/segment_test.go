package render

import (
	"strings"
	"testing"
)

// reassemble concatenates segment texts, re-inserting nothing for the
// stripped raw markers.
func reassemble(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}

func TestSplit_PlainMarkdown(t *testing.T) {
	body := "# Heading\n\nSome text.\n"
	segs, warns := Split(body)
	if len(warns) != 0 {
		t.Fatalf("warnings = %v", warns)
	}
	if len(segs) != 1 || segs[0].Kind != SegmentMarkdown {
		t.Fatalf("segs = %+v", segs)
	}
	if segs[0].Text != body {
		t.Errorf("text = %q", segs[0].Text)
	}
}

func TestSplit_RawRegion(t *testing.T) {
	body := "before\n{% raw %}\n<iframe src=\"x\"></iframe>\n{% endraw %}\nafter\n"
	segs, warns := Split(body)
	if len(warns) != 0 {
		t.Fatalf("warnings = %v", warns)
	}
	if len(segs) != 3 {
		t.Fatalf("want 3 segments, got %+v", segs)
	}
	if segs[1].Kind != SegmentRaw {
		t.Fatalf("middle segment kind = %v", segs[1].Kind)
	}
	if !strings.Contains(segs[1].Text, `<iframe src="x"></iframe>`) {
		t.Errorf("raw text = %q", segs[1].Text)
	}
	if strings.Contains(reassemble(segs), "{% raw %}") {
		t.Error("raw marker leaked into segments")
	}
}

func TestSplit_InlineRawSpan(t *testing.T) {
	body := "a {% raw %}**literal**{% endraw %} b\n"
	segs, warns := Split(body)
	if len(warns) != 0 {
		t.Fatalf("warnings = %v", warns)
	}
	var raw string
	for _, s := range segs {
		if s.Kind == SegmentRaw {
			raw += s.Text
		}
	}
	if raw != "**literal**" {
		t.Errorf("raw = %q", raw)
	}
	if got := reassemble(segs); got != "a **literal** b\n" {
		t.Errorf("reassembled = %q", got)
	}
}

func TestSplit_RawMarkerInsideFenceIsLiteral(t *testing.T) {
	body := "```\n{% raw %}\n```\ntext\n"
	segs, warns := Split(body)
	if len(warns) != 0 {
		t.Fatalf("warnings = %v", warns)
	}
	for _, s := range segs {
		if s.Kind == SegmentRaw {
			t.Fatalf("fence content treated as raw region: %+v", segs)
		}
	}
	if got := reassemble(segs); got != body {
		t.Errorf("reassembled = %q, want input", got)
	}
}

func TestSplit_FenceMarkerInsideRawIsPassthrough(t *testing.T) {
	body := "{% raw %}\n```\nnot a fence\n{% endraw %}\n"
	segs, warns := Split(body)
	if len(warns) != 0 {
		t.Fatalf("warnings = %v", warns)
	}
	if len(segs) != 1 || segs[0].Kind != SegmentRaw {
		t.Fatalf("segs = %+v", segs)
	}
	if !strings.Contains(segs[0].Text, "```") {
		t.Errorf("raw text = %q", segs[0].Text)
	}
}

func TestSplit_UnterminatedFence(t *testing.T) {
	body := "text\n```scala\nval x = 1\n"
	segs, warns := Split(body)
	if len(warns) != 1 || warns[0].Kind != WarnUnterminatedCodeFence {
		t.Fatalf("warnings = %v", warns)
	}
	if warns[0].Line != 2 {
		t.Errorf("warning line = %d, want 2", warns[0].Line)
	}
	// Degraded, not dropped: the whole input is still markdown.
	if got := reassemble(segs); got != body {
		t.Errorf("reassembled = %q", got)
	}
}

func TestSplit_UnterminatedRaw(t *testing.T) {
	body := "intro\n{% raw %}\n<b>rest is raw\n"
	segs, warns := Split(body)
	if len(warns) != 1 || warns[0].Kind != WarnUnterminatedRawBlock {
		t.Fatalf("warnings = %v", warns)
	}
	last := segs[len(segs)-1]
	if last.Kind != SegmentRaw || !strings.Contains(last.Text, "<b>rest is raw") {
		t.Errorf("last segment = %+v", last)
	}
}

func TestSplit_LongerCloseFence(t *testing.T) {
	body := "````\ncode with ``` inside\n````\n"
	segs, warns := Split(body)
	if len(warns) != 0 {
		t.Fatalf("warnings = %v", warns)
	}
	if got := reassemble(segs); got != body {
		t.Errorf("reassembled = %q", got)
	}
}
