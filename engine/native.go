package engine

import (
	"regexp/syntax"
	"slices"
	"unicode"

	"github.com/coregx/coregex/meta"
)

// Native is the built-in backend, backed by the coregex meta-engine.
type Native struct {
	opts Options
}

// NewNative returns the built-in backend.
func NewNative(opts Options) *Native {
	if opts.Engine == (meta.Config{}) {
		opts.Engine = meta.DefaultConfig()
	}
	return &Native{opts: opts}
}

// Name implements Backend.
func (n *Native) Name() string { return "native" }

// Compile implements Backend. The pattern uses Perl syntax as accepted by
// regexp/syntax.
func (n *Native) Compile(pattern string) (Program, error) {
	flags := syntax.Perl
	if !n.opts.CaseSensitive {
		flags |= syntax.FoldCase
	}

	re, err := syntax.Parse(pattern, flags)
	if err != nil {
		return nil, &CompileError{Backend: n.Name(), Pattern: pattern, Err: err}
	}

	re, ok := pruneAnchors(re)
	if !ok {
		return neverProgram{}, nil
	}
	re = expandFolds(re)

	eng, err := meta.CompileRegexp(re, n.opts.Engine)
	if err != nil {
		return nil, &CompileError{Backend: n.Name(), Pattern: pattern, Err: err}
	}
	return &nativeProgram{eng: eng}, nil
}

type nativeProgram struct {
	eng *meta.Engine
}

func (p *nativeProgram) Exec(text []byte, start, end int) (int, int, bool) {
	if p.eng == nil || !validSpan(text, start, end) {
		return -1, -1, false
	}
	return p.eng.FindIndicesAt(text[:end], start)
}

func (p *nativeProgram) Release() {
	p.eng = nil
}

// pruneAnchors removes every part of re that depends on a line or text
// boundary, since none exists in the searched text. It reports false when
// nothing of re can match any more.
//
// The tree is rewritten in place.
func pruneAnchors(re *syntax.Regexp) (*syntax.Regexp, bool) {
	switch re.Op {
	case syntax.OpNoMatch,
		syntax.OpBeginLine, syntax.OpEndLine,
		syntax.OpBeginText, syntax.OpEndText:
		return nil, false

	case syntax.OpCapture, syntax.OpPlus:
		sub, ok := pruneAnchors(re.Sub[0])
		if !ok {
			return nil, false
		}
		re.Sub[0] = sub

	case syntax.OpStar, syntax.OpQuest:
		sub, ok := pruneAnchors(re.Sub[0])
		if !ok {
			return &syntax.Regexp{Op: syntax.OpEmptyMatch}, true
		}
		re.Sub[0] = sub

	case syntax.OpRepeat:
		sub, ok := pruneAnchors(re.Sub[0])
		if !ok {
			if re.Min == 0 {
				return &syntax.Regexp{Op: syntax.OpEmptyMatch}, true
			}
			return nil, false
		}
		re.Sub[0] = sub

	case syntax.OpConcat:
		for i, s := range re.Sub {
			sub, ok := pruneAnchors(s)
			if !ok {
				return nil, false
			}
			re.Sub[i] = sub
		}

	case syntax.OpAlternate:
		kept := re.Sub[:0]
		for _, s := range re.Sub {
			if sub, ok := pruneAnchors(s); ok {
				kept = append(kept, sub)
			}
		}
		switch len(kept) {
		case 0:
			return nil, false
		case 1:
			return kept[0], true
		}
		re.Sub = kept
	}
	return re, true
}

// expandFolds rewrites case-insensitive literals into case-sensitive
// literals and character classes holding every simple case fold of each
// rune. The engine then never sees a case-insensitive literal, and
// non-ASCII letters fold the same way ASCII ones do.
//
// The tree is rewritten in place.
func expandFolds(re *syntax.Regexp) *syntax.Regexp {
	for i, sub := range re.Sub {
		re.Sub[i] = expandFolds(sub)
	}
	if re.Op != syntax.OpLiteral || re.Flags&syntax.FoldCase == 0 {
		return re
	}

	flags := re.Flags &^ syntax.FoldCase
	var subs []*syntax.Regexp
	var run []rune
	flush := func() {
		if len(run) > 0 {
			subs = append(subs, &syntax.Regexp{Op: syntax.OpLiteral, Flags: flags, Rune: run})
			run = nil
		}
	}

	for _, r := range re.Rune {
		class := foldClass(r)
		if class == nil {
			run = append(run, r)
			continue
		}
		flush()
		subs = append(subs, &syntax.Regexp{Op: syntax.OpCharClass, Flags: flags, Rune: class})
	}
	flush()

	if len(subs) == 1 {
		return subs[0]
	}
	return &syntax.Regexp{Op: syntax.OpConcat, Flags: flags, Sub: subs}
}

// foldClass returns the character class ranges matching r and its case
// folds, or nil when r has no other case.
func foldClass(r rune) []rune {
	orbit := []rune{r}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		orbit = append(orbit, f)
	}
	if len(orbit) == 1 {
		return nil
	}
	slices.Sort(orbit)

	class := make([]rune, 0, 2*len(orbit))
	for _, c := range orbit {
		if n := len(class); n > 0 && class[n-1]+1 == c {
			class[n-1] = c
			continue
		}
		class = append(class, c, c)
	}
	return class
}
