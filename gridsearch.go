// Package gridsearch finds regular expression matches in a terminal's
// scrollback and screen.
//
// A terminal grid is a two-dimensional array of cells holding UTF-16 code
// units. A Searcher flattens a linear range of cells into UTF-8 text, runs a
// regex over it and reports every non-overlapping, non-empty match as a cell
// range to a Sink.
//
// Basic usage:
//
//	buf := grid.NewBuffer(80, 24, 1000)
//	buf.WriteString("hello world")
//
//	var results gridsearch.Results
//	s, err := gridsearch.New(buf, gridsearch.QueryString("wor"), &results, gridsearch.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s.Search(0, buf.Len())
//	// results: [{Index:6 Length:3}]
//
// Cell indices are linear: index = row*columns + column, where row 0 is the
// oldest scrollback line. Matching is case-insensitive by default, and ^ and
// $ never match since the searched text has no line boundaries.
//
// The regex backend is chosen by Config.Backend. With the default, auto, the
// PCRE2 library is used when it can be loaded and the built-in engine
// otherwise. Both produce the same results.
package gridsearch

import (
	"errors"
	"fmt"
	"unicode/utf16"

	"github.com/sirupsen/logrus"

	"github.com/coregx/gridsearch/engine"
	"github.com/coregx/gridsearch/grid"
	"github.com/coregx/gridsearch/projection"
)

var (
	// ErrInvalidRange reports a cell range with begin > end or a negative
	// bound.
	ErrInvalidRange = errors.New("gridsearch: invalid cell range")

	// ErrEmptyPattern reports an empty query.
	ErrEmptyPattern = errors.New("gridsearch: empty pattern")
)

// Result is one match: Length cells starting at cell Index.
type Result struct {
	Index  int
	Length int
}

// Sink receives results in increasing Index order.
type Sink interface {
	AddResult(Result)
}

// Results is a Sink that appends to a slice.
type Results []Result

// AddResult implements Sink.
func (r *Results) AddResult(res Result) { *r = append(*r, res) }

// QuerySource provides the pattern to search for as UTF-16 code units. It is
// read once per search.
type QuerySource interface {
	Query() []uint16
}

// Query is a fixed QuerySource.
type Query []uint16

// QueryString returns s as a Query.
func QueryString(s string) Query {
	return Query(utf16.Encode([]rune(s)))
}

// Query implements QuerySource.
func (q Query) Query() []uint16 { return q }

// Searcher runs searches over one grid.
//
// A Searcher is not safe for concurrent use: one Search runs to completion
// before the next begins.
type Searcher struct {
	grid    grid.Grid
	query   QuerySource
	sink    Sink
	config  Config
	backend engine.Backend
	log     logrus.FieldLogger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLogger sets the logger. Aborted searches and backend resolution are
// logged at debug level. By default nothing is logged.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Searcher) { s.log = log }
}

// WithBackend overrides the backend chosen by Config.Backend.
func WithBackend(b engine.Backend) Option {
	return func(s *Searcher) { s.backend = b }
}

// New creates a Searcher over g that reads its pattern from q and reports
// matches to sink. It returns a *ConfigError if config is invalid.
func New(g grid.Grid, q QuerySource, sink Sink, config Config, opts ...Option) (*Searcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Searcher{
		grid:   g,
		query:  q,
		sink:   sink,
		config: config,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = discardLogger()
	}
	return s, nil
}

// Search reports every match in the cell range [begin, end) to the sink.
//
// An empty range does nothing. An invalid range, an empty query or a pattern
// that does not compile ends the search without results; the reason is
// logged at debug level.
func (s *Searcher) Search(begin, end int) {
	s.run(begin, end, s.sink)
}

// Collect is like Search but returns the results instead of sending them to
// the Searcher's sink.
func (s *Searcher) Collect(begin, end int) []Result {
	var results Results
	s.run(begin, end, &results)
	return results
}

func (s *Searcher) run(begin, end int, sink Sink) {
	if err := s.search(begin, end, sink); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"begin": begin,
			"end":   end,
		}).Debug("search aborted")
	}
}

func (s *Searcher) search(begin, end int, sink Sink) error {
	if begin == end {
		return nil
	}
	if begin < 0 || begin > end {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, begin, end)
	}

	pattern := string(utf16.Decode(s.query.Query()))
	if pattern == "" {
		return ErrEmptyPattern
	}

	prog, err := s.resolveBackend().Compile(pattern)
	if err != nil {
		return err
	}
	defer prog.Release()

	p := projection.Project(s.grid, begin, end)
	defer p.Release()

	text, size := p.Bytes(), p.Size()
	for start := 0; start < size; {
		so, eo, ok := prog.Exec(text, start, size)
		if !ok || so < start || eo < so || eo > size {
			break
		}

		index := p.Index(so)
		length := p.Index(eo) - index
		if length > 0 {
			sink.AddResult(Result{Index: index, Length: length})
			start = eo
			continue
		}
		// Degenerate match: step over one code point so the next attempt
		// cannot return it again.
		start = p.NextBoundary(start)
	}
	return nil
}

func (s *Searcher) resolveBackend() engine.Backend {
	if s.backend == nil {
		s.backend = engine.Select(s.config.Backend, s.config.engineOptions(), s.config.LibraryPath, s.log)
		s.log.WithField("backend", s.backend.Name()).Debug("regex backend selected")
	}
	return s.backend
}
