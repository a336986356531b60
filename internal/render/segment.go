package render

import "strings"

// Raw region markers. Content between them bypasses Markdown rendering
// byte-for-byte; the markers themselves are dropped from output.
const (
	rawOpen  = "{% raw %}"
	rawClose = "{% endraw %}"
)

// Warning kinds reported by Split.
const (
	WarnUnterminatedCodeFence = "UnterminatedCodeFence"
	WarnUnterminatedRawBlock  = "UnterminatedRawBlock"
)

// Warning describes a recoverable defect found while segmenting a body.
// Rendering continues; the document degrades instead of failing.
type Warning struct {
	Kind string `json:"kind"`
	Line int    `json:"line"`
}

// SegmentKind discriminates Segment content.
type SegmentKind int

const (
	// SegmentMarkdown is regular body text, rendered by the Markdown engine.
	SegmentMarkdown SegmentKind = iota
	// SegmentRaw is passthrough text emitted verbatim.
	SegmentRaw
)

// Segment is a contiguous run of body text of a single kind.
type Segment struct {
	Kind SegmentKind
	Text string
}

// splitter accumulates segments during the line scan.
type splitter struct {
	segs     []Segment
	markdown strings.Builder
	raw      strings.Builder
}

func (s *splitter) writeMarkdown(text string) { s.markdown.WriteString(text) }
func (s *splitter) writeRaw(text string)      { s.raw.WriteString(text) }

func (s *splitter) flushMarkdown() {
	if s.markdown.Len() > 0 {
		s.segs = append(s.segs, Segment{Kind: SegmentMarkdown, Text: s.markdown.String()})
		s.markdown.Reset()
	}
}

func (s *splitter) flushRaw() {
	if s.raw.Len() > 0 {
		s.segs = append(s.segs, Segment{Kind: SegmentRaw, Text: s.raw.String()})
		s.raw.Reset()
	}
}

// Split cuts a Markdown body into markdown and raw segments.
//
// The scan is a line-oriented state machine over three states: outside any
// fence, inside a fenced code block, inside a raw region. Raw markers inside
// a code fence are literal text, and fence markers inside a raw region are
// passthrough bytes. Concatenating the returned segment texts reproduces the
// input minus the raw markers.
//
// An unterminated fence or raw region produces a Warning; the remainder of
// the body is treated as the interior of the unterminated region.
func Split(body string) ([]Segment, []Warning) {
	var (
		s        splitter
		warnings []Warning

		inRaw     bool
		inFence   bool
		fenceLen  int
		fenceLine int
		rawLine   int
	)

	lines := splitAfterNewlines(body)
	for i, line := range lines {
		lineNo := i + 1

		if inRaw {
			before, after, found := strings.Cut(line, rawClose)
			if !found {
				s.writeRaw(line)
				continue
			}
			s.writeRaw(before)
			s.flushRaw()
			inRaw = false
			line = after
			// Fall through: the rest of the line is markdown again and may
			// open another raw region.
			if line == "" {
				continue
			}
		}

		if inFence {
			s.writeMarkdown(line)
			if isFenceClose(line, fenceLen) {
				inFence = false
			}
			continue
		}

		if n := fenceOpenLen(line); n > 0 {
			s.writeMarkdown(line)
			inFence = true
			fenceLen = n
			fenceLine = lineNo
			continue
		}

		// Outside fences a line may contain any number of inline raw spans,
		// or open a region that continues on later lines.
		rest := line
		for {
			before, after, found := strings.Cut(rest, rawOpen)
			if !found {
				s.writeMarkdown(rest)
				break
			}
			s.writeMarkdown(before)
			inner, tail, closed := strings.Cut(after, rawClose)
			if !closed {
				s.flushMarkdown()
				inRaw = true
				rawLine = lineNo
				s.writeRaw(after)
				break
			}
			s.flushMarkdown()
			s.writeRaw(inner)
			s.flushRaw()
			rest = tail
		}
	}

	if inFence {
		warnings = append(warnings, Warning{Kind: WarnUnterminatedCodeFence, Line: fenceLine})
	}
	if inRaw {
		warnings = append(warnings, Warning{Kind: WarnUnterminatedRawBlock, Line: rawLine})
		s.flushRaw()
	}
	s.flushMarkdown()
	s.flushRaw()

	return s.segs, warnings
}

// splitAfterNewlines splits text into lines that keep their trailing
// newline, so segment texts concatenate back to the input.
func splitAfterNewlines(text string) []string {
	var out []string
	for len(text) > 0 {
		nl := strings.IndexByte(text, '\n')
		if nl < 0 {
			out = append(out, text)
			break
		}
		out = append(out, text[:nl+1])
		text = text[nl+1:]
	}
	return out
}

// fenceOpenLen reports the length of a code-fence opener on this line, or 0.
// Openers are runs of three or more backticks indented at most three spaces;
// an info string may follow.
func fenceOpenLen(line string) int {
	trimmed, ok := stripFenceIndent(line)
	if !ok {
		return 0
	}
	n := runLen(trimmed, '`')
	if n < 3 {
		return 0
	}
	return n
}

// isFenceClose reports whether this line closes a fence opened with openLen
// backticks: an equal-or-longer run with nothing but whitespace after it.
func isFenceClose(line string, openLen int) bool {
	trimmed, ok := stripFenceIndent(line)
	if !ok {
		return false
	}
	n := runLen(trimmed, '`')
	if n < openLen {
		return false
	}
	return strings.TrimSpace(trimmed[n:]) == ""
}

func stripFenceIndent(line string) (string, bool) {
	indent := 0
	for indent < len(line) && line[indent] == ' ' {
		indent++
	}
	if indent > 3 {
		return "", false
	}
	return line[indent:], true
}

func runLen(s string, c byte) int {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	return n
}
