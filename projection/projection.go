// Package projection flattens a range of terminal grid cells into UTF-8 text
// and keeps the reverse mapping from every encoded byte to the cell that
// produced it.
//
// Regex engines search flat byte strings; the terminal needs results as cell
// indices. Encoding is variable width and some cells (wide-character padding,
// broken surrogate pairs) contribute no bytes at all, so the offset table is
// the only way back from a match span to grid coordinates.
package projection

import (
	"sync"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/coregx/gridsearch/grid"
)

// maxPooledBytes bounds the buffers kept for reuse after Release.
const maxPooledBytes = 1 << 20

// Projection is the encoded text of a cell range [begin, end).
//
// The text is followed by a 0 terminator and the offset table by an extra
// entry equal to end, so lookups one past the last byte are valid.
//
// A Projection must not be used after Release.
type Projection struct {
	buf     []byte // len(buf) == size+1
	offsets []int  // len(offsets) == size+1

	begin, end int
	released   bool
}

var pool = sync.Pool{
	New: func() any { return &Projection{} },
}

// Project encodes the cells in [begin, end) of g.
//
// Each cell index idx maps to column idx%Columns() of grid row
// idx/Columns()-ScrollbackLines(). A high surrogate whose continuation is not
// a low surrogate is skipped, as is the padding cell of a wide character.
// Every line fetched from g is released before Project returns.
func Project(g grid.Grid, begin, end int) *Projection {
	p := pool.Get().(*Projection)
	p.begin, p.end = begin, end
	p.released = false

	capacity := 0
	if end > begin {
		capacity = 4 * (end - begin)
	}
	p.buf = growBytes(p.buf, capacity+1)
	p.offsets = growInts(p.offsets, capacity+1)

	if g.Columns() > 0 {
		p.fill(g)
	}

	p.buf = append(p.buf, 0)
	p.offsets = append(p.offsets, end)
	return p
}

func (p *Projection) fill(g grid.Grid) {
	cols := g.Columns()
	scrollback := g.ScrollbackLines()

	lines := lineCursor{g: g, y: -1}
	defer lines.release()

	for idx := p.begin; idx < p.end; idx++ {
		x, y := idx%cols, idx/cols
		c := lines.at(y, scrollback).Cell(x)

		r := rune(c.Char)
		if grid.IsHighSurrogate(c.Char) {
			lo, ok := c.Continuation()
			if !ok || !grid.IsLowSurrogate(lo) {
				continue
			}
			r = utf16.DecodeRune(r, rune(lo))
		} else if c.IsWidePadding() {
			continue
		}

		n := len(p.buf)
		p.buf = utf8.AppendRune(p.buf, r)
		for i := n; i < len(p.buf); i++ {
			p.offsets = append(p.offsets, idx)
		}
	}
}

// Bytes returns the encoded text without its terminator.
func (p *Projection) Bytes() []byte {
	return p.buf[:p.Size()]
}

// Size returns the number of encoded bytes.
func (p *Projection) Size() int {
	return len(p.buf) - 1
}

// Begin returns the first cell index of the projected range.
func (p *Projection) Begin() int { return p.begin }

// End returns the exclusive end of the projected range.
func (p *Projection) End() int { return p.end }

// Offsets returns the offset table: Size()+1 entries, the last one End().
// The slice is owned by the projection.
func (p *Projection) Offsets() []int {
	return p.offsets
}

// Index returns the cell index that produced byte off. Offsets at or past
// Size() map to End().
func (p *Projection) Index(off int) int {
	switch {
	case off >= p.Size():
		return p.end
	case off < 0:
		return p.begin
	}
	return p.offsets[off]
}

// NextBoundary returns the offset of the first code point that starts after
// off. It never returns a value <= off unless off >= Size().
func (p *Projection) NextBoundary(off int) int {
	size := p.Size()
	if off >= size {
		return size
	}
	if off < 0 {
		return 0
	}
	_, n := utf8.DecodeRune(p.buf[off:size])
	return off + n
}

// Release returns the projection's buffers for reuse. Calling Release more
// than once has no effect.
func (p *Projection) Release() {
	if p.released {
		return
	}
	p.released = true
	if cap(p.buf) > maxPooledBytes {
		return
	}
	p.buf = p.buf[:0]
	p.offsets = p.offsets[:0]
	pool.Put(p)
}

func growBytes(b []byte, n int) []byte {
	if cap(b) < n {
		return make([]byte, 0, n)
	}
	return b[:0]
}

func growInts(b []int, n int) []int {
	if cap(b) < n {
		return make([]int, 0, n)
	}
	return b[:0]
}

// lineCursor holds at most one fetched line at a time.
type lineCursor struct {
	g    grid.Grid
	line grid.Line
	y    int
}

func (c *lineCursor) at(y, scrollback int) grid.Line {
	if c.line == nil || c.y != y {
		c.release()
		c.line = c.g.FetchLine(y - scrollback)
		c.y = y
	}
	return c.line
}

func (c *lineCursor) release() {
	if c.line != nil {
		c.g.ReleaseLine(c.line)
		c.line = nil
	}
}
