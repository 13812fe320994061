package engine

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/coregx/gridsearch/internal/conv"
)

// PCRE2 option bits, from pcre2.h.
const (
	pcre2Caseless      = 0x00000008
	pcre2NoAutoCapture = 0x00002000
	pcre2UTF           = 0x00080000

	pcre2NotBOL = 0x00000001
	pcre2NotEOL = 0x00000002
)

// pcre2API holds the libpcre2-8 entry points. All handles are opaque C
// pointers.
type pcre2API struct {
	compile         func(pattern *byte, length uintptr, options uint32, errcode *int32, erroffset *uintptr, ccontext uintptr) uintptr
	match           func(code uintptr, subject *byte, length, startoffset uintptr, options uint32, matchData, mcontext uintptr) int32
	matchDataCreate func(code, gcontext uintptr) uintptr
	ovectorPointer  func(matchData uintptr) *uintptr
	matchDataFree   func(matchData uintptr)
	codeFree        func(code uintptr)
}

type pcre2Symbol struct {
	name string
	fn   any // pointer to a pcre2API field
}

// symbols lists the entry points a library must export.
func (api *pcre2API) symbols() []pcre2Symbol {
	return []pcre2Symbol{
		{"pcre2_compile_8", &api.compile},
		{"pcre2_match_8", &api.match},
		{"pcre2_match_data_create_from_pattern_8", &api.matchDataCreate},
		{"pcre2_get_ovector_pointer_8", &api.ovectorPointer},
		{"pcre2_match_data_free_8", &api.matchDataFree},
		{"pcre2_code_free_8", &api.codeFree},
	}
}

// PCRE is the backend backed by a runtime-loaded libpcre2-8. Obtain one
// through LoadPCRE or a Resolution.
type PCRE struct {
	api  *pcre2API
	path string
	opts Options
}

// Name implements Backend.
func (p *PCRE) Name() string { return "pcre2" }

// Path returns the library the backend was loaded from.
func (p *PCRE) Path() string { return p.path }

// withOptions returns a copy of p sharing the loaded library.
func (p *PCRE) withOptions(opts Options) *PCRE {
	c := *p
	c.opts = opts
	return &c
}

// Compile implements Backend.
func (p *PCRE) Compile(pattern string) (Program, error) {
	options := uint32(pcre2UTF | pcre2NoAutoCapture)
	if !p.opts.CaseSensitive {
		options |= pcre2Caseless
	}

	// The library reads exactly len(source) bytes; the extra byte keeps
	// &buf[0] valid for the empty pattern.
	source := failTextAnchors(pattern)
	buf := append([]byte(source), 0)

	var errcode int32
	var erroffset uintptr
	code := p.api.compile(&buf[0], conv.IntToUintptr(len(source)), options, &errcode, &erroffset, 0)
	if code == 0 {
		return nil, &CompileError{
			Backend: p.Name(),
			Pattern: pattern,
			Err:     fmt.Errorf("error %d at offset %d", errcode, erroffset),
		}
	}

	md := p.api.matchDataCreate(code, 0)
	if md == 0 {
		p.api.codeFree(code)
		return nil, &CompileError{
			Backend: p.Name(),
			Pattern: pattern,
			Err:     errors.New("cannot allocate match data"),
		}
	}
	return &pcreProgram{api: p.api, code: code, matchData: md}, nil
}

type pcreProgram struct {
	api       *pcre2API
	code      uintptr
	matchData uintptr
}

func (p *pcreProgram) Exec(text []byte, start, end int) (int, int, bool) {
	if p.code == 0 || !validSpan(text, start, end) || end == 0 {
		return -1, -1, false
	}

	rc := p.api.match(p.code, &text[0], conv.IntToUintptr(end), conv.IntToUintptr(start),
		pcre2NotBOL|pcre2NotEOL, p.matchData, 0)
	if rc < 0 {
		// PCRE2_ERROR_NOMATCH, or a matching error such as a resource
		// limit; both end the search.
		return -1, -1, false
	}

	ovector := unsafe.Slice(p.api.ovectorPointer(p.matchData), 2)
	return conv.UintptrToInt(ovector[0]), conv.UintptrToInt(ovector[1]), true
}

func (p *pcreProgram) Release() {
	if p.matchData != 0 {
		p.api.matchDataFree(p.matchData)
		p.matchData = 0
	}
	if p.code != 0 {
		p.api.codeFree(p.code)
		p.code = 0
	}
}

// neverMatches is a PCRE2 group that fails wherever it is tried. Being a
// group, it accepts any quantifier the replaced escape had.
const neverMatches = "(?:(?!))"

// failTextAnchors replaces the text anchors \A, \z and \Z outside character
// classes and \Q...\E quotes with a group that never matches. NOTBOL and
// NOTEOL only disable ^ and $.
func failTextAnchors(pattern string) string {
	if !strings.Contains(pattern, `\`) {
		return pattern
	}

	var b strings.Builder
	b.Grow(len(pattern))
	inClass, quoted := false, false

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		var next byte
		if i+1 < len(pattern) {
			next = pattern[i+1]
		}

		switch {
		case quoted:
			if c == '\\' && next == 'E' {
				quoted = false
				b.WriteString(`\E`)
				i++
				continue
			}
		case c == '\\' && i+1 < len(pattern):
			switch {
			case next == 'Q':
				quoted = true
			case !inClass && (next == 'A' || next == 'z' || next == 'Z'):
				b.WriteString(neverMatches)
				i++
				continue
			}
			b.WriteByte(c)
			b.WriteByte(next)
			i++
			continue
		case inClass:
			switch {
			case c == '[' && next == ':':
				// POSIX class such as [:alpha:] inside a bracket expression.
				if end := strings.Index(pattern[i+2:], ":]"); end >= 0 {
					b.WriteString(pattern[i : i+2+end+2])
					i += 2 + end + 1
					continue
				}
			case c == ']':
				inClass = false
			}
		case c == '[':
			inClass = true
			b.WriteByte(c)
			// A leading ']' (after an optional '^') is a literal member.
			if next == '^' {
				b.WriteByte(next)
				i++
			}
			if i+1 < len(pattern) && pattern[i+1] == ']' {
				b.WriteByte(']')
				i++
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
