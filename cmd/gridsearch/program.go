package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/sjson"

	"github.com/coregx/gridsearch"
	"github.com/coregx/gridsearch/engine"
	"github.com/coregx/gridsearch/grid"
	"github.com/coregx/gridsearch/projection"
)

type program struct {
	args     arguments
	flags    func(name string) bool // reports whether a flag was set
	pattern  string
	filename string

	stdin  io.Reader
	stdout io.Writer
	log    logrus.FieldLogger

	config  gridsearch.Config
	backend engine.Backend
	buf     *grid.Buffer
	results []gridsearch.Result
}

func (p *program) run() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"load config", p.loadConfig},
		{"compile pattern", p.compilePattern},
		{"read input", p.readInput},
		{"search", p.search},
		{"print matches", p.printMatches},
	}

	for _, step := range steps {
		p.log.Debugf("starting %q step", step.name)
		if err := step.fn(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	if len(p.results) == 0 {
		return errNotMatched
	}
	return nil
}

func (p *program) loadConfig() error {
	config, err := loadConfig(p.args.configFile)
	if err != nil {
		return err
	}

	if p.args.configFile == "" || p.flags("backend") {
		kind, err := engine.ParseKind(p.args.backend)
		if err != nil {
			return err
		}
		config.Backend = kind
	}
	if p.flags("case-sensitive") {
		config.CaseSensitive = p.args.caseSensitive
	}

	p.config = config
	return config.Validate()
}

// compilePattern selects the backend and rejects a malformed pattern up
// front; the search itself only logs compile failures.
func (p *program) compilePattern() error {
	opts := engine.Options{
		CaseSensitive: p.config.CaseSensitive,
		Engine:        p.config.Engine,
	}
	p.backend = engine.Select(p.config.Backend, opts, p.config.LibraryPath, p.log)
	p.log.WithField("backend", p.backend.Name()).Debug("regex backend selected")

	prog, err := p.backend.Compile(p.pattern)
	if err != nil {
		return err
	}
	prog.Release()
	return nil
}

func (p *program) readInput() error {
	in := p.stdin
	if p.filename != "" && p.filename != "-" {
		f, err := os.Open(p.filename)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	text, err := decodeInput(data, p.args.encoding)
	if err != nil {
		return err
	}

	p.buf = grid.NewBuffer(p.args.columns, p.args.rows, p.args.scrollback)
	p.buf.WriteString(text)
	p.log.WithFields(logrus.Fields{
		"columns":    p.buf.Columns(),
		"rows":       p.buf.Rows(),
		"scrollback": p.buf.ScrollbackLines(),
	}).Debug("grid filled")
	return nil
}

func (p *program) search() error {
	s, err := gridsearch.New(p.buf, gridsearch.QueryString(p.pattern), nil, p.config,
		gridsearch.WithBackend(p.backend), gridsearch.WithLogger(p.log))
	if err != nil {
		return err
	}
	p.results = s.Collect(0, p.buf.Len())
	return nil
}

func (p *program) printMatches() error {
	w := bufio.NewWriter(p.stdout)
	cols := p.buf.Columns()

	for _, r := range p.results {
		row, col := r.Index/cols, r.Index%cols
		text := p.matchText(r)

		if !p.args.json {
			fmt.Fprintf(w, "%d:%d: %s\n", row, col, text)
			continue
		}
		line, err := matchJSON(r, row, col, text)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}

func (p *program) matchText(r gridsearch.Result) string {
	proj := projection.Project(p.buf, r.Index, r.Index+r.Length)
	defer proj.Release()
	return string(proj.Bytes())
}

func matchJSON(r gridsearch.Result, row, col int, text string) (string, error) {
	fields := []struct {
		path  string
		value any
	}{
		{"index", r.Index},
		{"length", r.Length},
		{"row", row},
		{"column", col},
		{"text", text},
	}

	line := ""
	for _, f := range fields {
		var err error
		if line, err = sjson.Set(line, f.path, f.value); err != nil {
			return "", err
		}
	}
	return line, nil
}
