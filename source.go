// source.go — source reader: UTF-8 loading, comment stripping, and
// `Include "path".` resolution with cycle detection.
//
// Grounded on the teacher's modules.go cycle-detection guard (a set of
// in-flight canonical identities consulted before each load) and its
// filesystem-relative resolution style, adapted here to plain text
// inclusion rather than module evaluation.
package vyra

import (
	"os"
	"path/filepath"
	"strings"
)

// LoadSource reads path, strips comments, and inlines any `Include "other".`
// directives found at the top level, resolving relative paths against the
// directory of the including file. Returns the fully expanded source text.
func LoadSource(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &IOError{Path: path, Err: err}
	}
	return loadSourceRec(abs, map[string]bool{})
}

func loadSourceRec(abs string, including map[string]bool) (string, error) {
	if including[abs] {
		return "", &ParseError{Reason: "IncludeCycle", Msg: "include cycle detected at " + abs}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return "", &IOError{Path: abs, Err: err}
	}
	including[abs] = true
	defer delete(including, abs)

	stripped := StripComments(string(raw))
	return resolveIncludes(stripped, filepath.Dir(abs), including)
}

// StripComments removes `#...`-to-end-of-line comments and `Note: ...`
// sentences (case-insensitive, up to the next `.` or `:` terminator or
// end of line) outside of quoted string literals. Line endings are
// normalized to LF.
func StripComments(src string) string {
	src = normalizeLineEndings(src)
	var out strings.Builder
	inString := false
	var quote byte
	runes := []byte(src)
	i := 0
	for i < len(runes) {
		c := runes[i]
		if inString {
			out.WriteByte(c)
			if c == '\\' && i+1 < len(runes) {
				out.WriteByte(runes[i+1])
				i += 2
				continue
			}
			if c == quote {
				inString = false
			}
			i++
			continue
		}
		switch {
		case c == '"' || c == '\'':
			inString = true
			quote = c
			out.WriteByte(c)
			i++
		case c == '#':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case isNoteAt(runes, i):
			i += len("note:")
			for i < len(runes) && runes[i] != '.' && runes[i] != ':' && runes[i] != '\n' {
				i++
			}
			if i < len(runes) && (runes[i] == '.' || runes[i] == ':') {
				i++
			}
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// isNoteAt reports whether the case-insensitive literal "Note:" begins at i
// and is preceded by a word boundary (start of line/string or whitespace).
func isNoteAt(b []byte, i int) bool {
	const tok = "note:"
	if i+len(tok) > len(b) {
		return false
	}
	if i > 0 {
		prev := b[i-1]
		if !(prev == '\n' || prev == ' ' || prev == '\t') {
			return false
		}
	}
	for k := 0; k < len(tok); k++ {
		c := b[i+k]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != tok[k] {
			return false
		}
	}
	return true
}

func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

// resolveIncludes finds `Include "path".` sentences at the top level and
// replaces each with the recursively loaded and comment-stripped contents
// of the referenced file, resolved relative to dir.
func resolveIncludes(src, dir string, including map[string]bool) (string, error) {
	var out strings.Builder
	i := 0
	n := len(src)
	for i < n {
		if m := matchIncludeAt(src, i); m != nil {
			target := m.path
			if !filepath.IsAbs(target) {
				target = filepath.Join(dir, target)
			}
			absTarget, err := filepath.Abs(target)
			if err != nil {
				return "", &IOError{Path: m.path, Err: err}
			}
			inc, err := loadSourceRec(absTarget, including)
			if err != nil {
				if pe, ok := err.(*ParseError); ok && pe.Reason == "IncludeCycle" {
					return "", pe
				}
				return "", &ParseError{Reason: "IncludeMissing", Msg: "cannot include " + m.path + ": " + err.Error()}
			}
			out.WriteString(inc)
			out.WriteByte('\n')
			i = m.end
			continue
		}
		out.WriteByte(src[i])
		i++
	}
	return out.String(), nil
}

// includeMatch is the result of matching an `Include "path".` sentence.
type includeMatch struct {
	path string
	end  int // byte offset immediately after the matched sentence
}

// matchIncludeAt attempts to match `Include "path".` (or single-quoted)
// starting exactly at position i, requiring the keyword to start a sentence.
// Returns nil if no match.
func matchIncludeAt(src string, i int) *includeMatch {
	const kw = "include"
	if i+len(kw) > len(src) {
		return nil
	}
	for k := 0; k < len(kw); k++ {
		c := src[i+k]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != kw[k] {
			return nil
		}
	}
	// must be at a sentence boundary: start of file or preceded by . : or newline/space
	if i > 0 {
		prev := src[i-1]
		if !(prev == '\n' || prev == ' ' || prev == '\t' || prev == '.' || prev == ':') {
			return nil
		}
	}
	j := i + len(kw)
	for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
		j++
	}
	if j >= len(src) || (src[j] != '"' && src[j] != '\'') {
		return nil
	}
	quote := src[j]
	j++
	start := j
	for j < len(src) && src[j] != quote {
		j++
	}
	if j >= len(src) {
		return nil
	}
	path := src[start:j]
	j++ // past closing quote
	for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
		j++
	}
	if j < len(src) && src[j] == '.' {
		j++
	}
	return &includeMatch{path: path, end: j}
}
