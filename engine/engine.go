// Package engine defines the regex backend contract used by grid search and
// its implementations.
//
// A Backend compiles a pattern into a Program; a Program finds the leftmost
// match in a byte slice starting at a given offset. Three backends exist:
//
//   - Native: the built-in engine (github.com/coregx/coregex), always present.
//   - PCRE: libpcre2-8 loaded at run time when the library is installed.
//   - Literal: plain-text search (Aho-Corasick), no regex syntax.
//
// All backends share the same external behaviour: patterns are
// case-insensitive unless Options.CaseSensitive is set, and the anchors ^, $,
// \A and \z never match. Searched text is an artificial single-line
// projection of a terminal grid, so neither line nor text boundaries exist in
// it.
//
// Whether the PCRE library is available is decided once per process; see
// Preferred and Select.
package engine

import (
	"fmt"
	"io"

	"github.com/coregx/coregex/meta"
	"github.com/sirupsen/logrus"
)

// Backend compiles patterns.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string

	// Compile compiles pattern, which is UTF-8 text. A malformed pattern
	// yields a *CompileError.
	Compile(pattern string) (Program, error)
}

// Program is a compiled pattern. It is not safe for concurrent use.
type Program interface {
	// Exec finds the leftmost match in text[:end] that starts at or after
	// start. Offsets are absolute positions in text. An empty match is
	// reported with so == eo.
	Exec(text []byte, start, end int) (so, eo int, ok bool)

	// Release frees resources held by the program. The program must not be
	// used afterwards.
	Release()
}

// Options configures a backend.
type Options struct {
	// CaseSensitive disables case-insensitive matching.
	CaseSensitive bool

	// Engine tunes the native engine. The zero value selects
	// meta.DefaultConfig().
	Engine meta.Config
}

// Kind names a backend selection policy.
type Kind string

const (
	// KindAuto uses PCRE when the library can be loaded, Native otherwise.
	KindAuto Kind = "auto"
	// KindPCRE asks for PCRE and falls back to Native when it is missing.
	KindPCRE Kind = "pcre"
	// KindNative always uses the built-in engine.
	KindNative Kind = "native"
	// KindLiteral searches for the query as plain text.
	KindLiteral Kind = "literal"
)

// ParseKind parses a backend name. The empty string is KindAuto.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case "":
		return KindAuto, nil
	case KindAuto, KindPCRE, KindNative, KindLiteral:
		return k, nil
	}
	return "", fmt.Errorf("unknown regex backend %q", s)
}

// neverProgram matches nothing.
type neverProgram struct{}

func (neverProgram) Exec([]byte, int, int) (int, int, bool) { return -1, -1, false }
func (neverProgram) Release()                               {}

func validSpan(text []byte, start, end int) bool {
	return start >= 0 && start <= end && end <= len(text)
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func orDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return discard
	}
	return log
}
