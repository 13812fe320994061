package engine

import (
	"unicode"
	"unicode/utf8"

	"github.com/coregx/ahocorasick"
)

// Literal searches for the pattern as plain text. Unless the backend is case
// sensitive, letters match regardless of case. A letter only matches a case
// variant whose UTF-8 encoding has the same length, so the Kelvin sign does
// not match 'k'.
type Literal struct {
	opts Options
}

// NewLiteral returns the plain-text backend.
func NewLiteral(opts Options) *Literal {
	return &Literal{opts: opts}
}

// Name implements Backend.
func (l *Literal) Name() string { return "literal" }

// Compile implements Backend. Every pattern is valid; the empty pattern
// matches nothing.
func (l *Literal) Compile(pattern string) (Program, error) {
	if pattern == "" {
		return neverProgram{}, nil
	}

	needle := []byte(pattern)
	fold := !l.opts.CaseSensitive
	if fold {
		needle = foldCase(nil, needle)
	}

	builder := ahocorasick.NewBuilder()
	builder.AddPattern(needle)
	auto, err := builder.Build()
	if err != nil {
		return nil, &CompileError{Backend: l.Name(), Pattern: pattern, Err: err}
	}
	return &literalProgram{auto: auto, fold: fold}, nil
}

type literalProgram struct {
	auto *ahocorasick.Automaton
	fold bool

	// folded caches the case-folded copy of the last searched text, keyed
	// by its backing array and length.
	folded []byte
	src    *byte
	srcLen int
}

func (p *literalProgram) Exec(text []byte, start, end int) (int, int, bool) {
	if p.auto == nil || !validSpan(text, start, end) || start == end {
		return -1, -1, false
	}

	haystack := text
	if p.fold {
		haystack = p.foldedCopy(text)
	}

	m := p.auto.Find(haystack[:end], start)
	if m == nil {
		return -1, -1, false
	}
	return m.Start, m.End, true
}

func (p *literalProgram) foldedCopy(text []byte) []byte {
	if p.src != &text[0] || p.srcLen != len(text) {
		p.folded = foldCase(p.folded[:0], text)
		p.src, p.srcLen = &text[0], len(text)
	}
	return p.folded
}

func (p *literalProgram) Release() {
	p.auto = nil
	p.folded = nil
	p.src = nil
}

// foldCase appends src to dst with every letter replaced by the smallest
// rune of its case-fold orbit that encodes to the same number of bytes.
// Byte offsets are preserved; invalid UTF-8 is copied unchanged.
func foldCase(dst, src []byte) []byte {
	for len(src) > 0 {
		c := src[0]
		if c < utf8.RuneSelf {
			if 'a' <= c && c <= 'z' {
				c -= 'a' - 'A'
			}
			dst = append(dst, c)
			src = src[1:]
			continue
		}

		r, n := utf8.DecodeRune(src)
		if r == utf8.RuneError && n == 1 {
			dst = append(dst, c)
		} else {
			dst = utf8.AppendRune(dst, foldRune(r, n))
		}
		src = src[n:]
	}
	return dst
}

func foldRune(r rune, n int) rune {
	folded := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f < folded && utf8.RuneLen(f) == n {
			folded = f
		}
	}
	return folded
}
