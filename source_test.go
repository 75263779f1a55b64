package vyra

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func Test_StripComments_LineComment(t *testing.T) {
	src := "Set x to 5. # this sets x\nDisplay x."
	got := StripComments(src)
	want := "Set x to 5. \nDisplay x."
	if got != want {
		t.Errorf("StripComments() = %q, want %q", got, want)
	}
}

func Test_StripComments_HashInsideStringIsNotAComment(t *testing.T) {
	src := `Display "a#b".`
	got := StripComments(src)
	if got != src {
		t.Errorf("expected quoted '#' left untouched, got %q", got)
	}
}

func Test_StripComments_NoteSentence(t *testing.T) {
	src := "Note: this explains things.\nDisplay 1."
	got := StripComments(src)
	want := "\nDisplay 1."
	if got != want {
		t.Errorf("StripComments() = %q, want %q", got, want)
	}
}

func Test_LoadSource_IncludeResolution(t *testing.T) {
	dir := t.TempDir()
	inc := filepath.Join(dir, "lib.vyra")
	main := filepath.Join(dir, "main.vyra")
	if err := os.WriteFile(inc, []byte(`Set shared to 1.`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(main, []byte(`Include "lib.vyra".
Display shared.`), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := LoadSource(main)
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if !strings.Contains(src, "Set shared to 1") || !strings.Contains(src, "Display shared") {
		t.Errorf("expected included content inlined, got %q", src)
	}
}

func Test_LoadSource_IncludeCycleDetected(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.vyra")
	b := filepath.Join(dir, "b.vyra")
	os.WriteFile(a, []byte(`Include "b.vyra".`), 0644)
	os.WriteFile(b, []byte(`Include "a.vyra".`), 0644)

	_, err := LoadSource(a)
	if err == nil {
		t.Fatal("expected an include cycle error")
	}
	pe, ok := err.(*ParseError)
	if !ok || pe.Reason != "IncludeCycle" {
		t.Fatalf("expected IncludeCycle ParseError, got %#v", err)
	}
}
