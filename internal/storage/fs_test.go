package storage

import (
	"testing"
)

func tempTree(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempTree(t)
	content := []byte("---\ntitle: Hello\n---\nWorld\n")
	if err := s.Write("post.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("post.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempTree(t)
	if err := s.Write("2014/04/post.md", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("2014/04/post.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempTree(t)
	_ = s.Write("del.md", []byte("bye"))
	if err := s.Delete("del.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.md"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestList_SuffixFilter(t *testing.T) {
	s := tempTree(t)
	_ = s.Write("a.md", []byte("a"))
	_ = s.Write("sub/b.md", []byte("b"))
	_ = s.Write("a.html", []byte("<p>a</p>"))
	_ = s.Write("notes.txt", []byte("neither"))

	md, err := s.List("", ".md")
	if err != nil {
		t.Fatalf("List .md: %v", err)
	}
	if len(md) != 2 {
		t.Errorf("md count = %d, want 2", len(md))
	}

	html, err := s.List("", ".html")
	if err != nil {
		t.Fatalf("List .html: %v", err)
	}
	if len(html) != 1 || html[0].Path != "a.html" {
		t.Errorf("html = %+v", html)
	}
}

func TestList_SkipsHiddenDirs(t *testing.T) {
	s := tempTree(t)
	_ = s.Write("visible.md", []byte("v"))
	_ = s.Write(".git/objects/fake.md", []byte("x"))

	items, err := s.List("", ".md")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Path != "visible.md" {
		t.Errorf("items = %+v", items)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempTree(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("Read(%q): expected traversal error", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("Write(%q): expected traversal error", p)
		}
	}
}
