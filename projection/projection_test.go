package projection

import (
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"github.com/coregx/gridsearch/grid"
)

// countingGrid wraps a Buffer and fails the test if more than one line is
// held at a time.
type countingGrid struct {
	*grid.Buffer
	t       *testing.T
	fetches int
}

func (g *countingGrid) FetchLine(row int) grid.Line {
	if g.Outstanding() != 0 {
		g.t.Errorf("FetchLine(%d) with %d line(s) still held", row, g.Outstanding())
	}
	g.fetches++
	return g.Buffer.FetchLine(row)
}

func newBuffer(cols, rows int, text string) *grid.Buffer {
	b := grid.NewBuffer(cols, rows, 100)
	b.WriteString(text)
	return b
}

func TestProjectASCII(t *testing.T) {
	b := newBuffer(11, 1, "hello world")
	p := Project(b, 0, 11)
	defer p.Release()

	if got := string(p.Bytes()); got != "hello world" {
		t.Fatalf("Bytes() = %q, want %q", got, "hello world")
	}
	want := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	if diff := cmp.Diff(want, p.Offsets()); diff != "" {
		t.Errorf("Offsets() mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectWideAndSupplementary(t *testing.T) {
	// "a中b😀c" lays out as a | 中 pad | b | 😀 pad | c
	b := newBuffer(8, 1, "a中b\U0001F600c")
	p := Project(b, 0, 8)
	defer p.Release()

	if got, want := string(p.Bytes()), "a中b\U0001F600c "; got != want {
		t.Fatalf("Bytes() = %q, want %q", got, want)
	}
	want := []int{
		0,          // a
		1, 1, 1,    // 中
		3,          // b
		4, 4, 4, 4, // 😀
		6,          // c
		7,          // trailing blank
		8,          // sentinel
	}
	if diff := cmp.Diff(want, p.Offsets()); diff != "" {
		t.Errorf("Offsets() mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectBrokenSurrogates(t *testing.T) {
	b := grid.NewBuffer(4, 1, 0)
	b.SetCell(0, 0, grid.Cell{Char: 0xD83D})               // no continuation
	b.SetCell(1, 0, grid.Cell{Char: 0xD83D, Link: 'x'})    // continuation is not a low surrogate
	b.SetCell(2, 0, grid.Cell{Char: 0xDC00})               // lone low surrogate
	b.SetCell(3, 0, grid.Cell{Char: 0xD83D, Link: 0xDE00}) // valid pair

	p := Project(b, 0, 4)
	defer p.Release()

	if got, want := string(p.Bytes()), "�\U0001F600"; got != want {
		t.Fatalf("Bytes() = %q, want %q", got, want)
	}
	want := []int{2, 2, 2, 3, 3, 3, 3, 4}
	if diff := cmp.Diff(want, p.Offsets()); diff != "" {
		t.Errorf("Offsets() mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectAcrossRowsAndScrollback(t *testing.T) {
	b := grid.NewBuffer(3, 2, 10)
	b.WriteString("abc\ndef\nghi")
	g := &countingGrid{Buffer: b, t: t}

	if g.ScrollbackLines() != 1 {
		t.Fatalf("ScrollbackLines() = %d, want 1", g.ScrollbackLines())
	}

	p := Project(g, 1, 8)
	defer p.Release()

	if got := string(p.Bytes()); got != "bcdefgh" {
		t.Errorf("Bytes() = %q, want %q", got, "bcdefgh")
	}
	if g.fetches != 3 {
		t.Errorf("fetched %d lines, want 3", g.fetches)
	}
	if g.Outstanding() != 0 {
		t.Errorf("%d line(s) not released", g.Outstanding())
	}
}

func TestProjectEmptyRange(t *testing.T) {
	b := newBuffer(4, 1, "abcd")
	p := Project(b, 2, 2)
	defer p.Release()

	if p.Size() != 0 {
		t.Errorf("Size() = %d, want 0", p.Size())
	}
	if diff := cmp.Diff([]int{2}, p.Offsets()); diff != "" {
		t.Errorf("Offsets() mismatch (-want +got):\n%s", diff)
	}
	if b.Outstanding() != 0 {
		t.Errorf("%d line(s) not released", b.Outstanding())
	}
}

func TestProjectTerminator(t *testing.T) {
	b := newBuffer(4, 1, "abcd")
	p := Project(b, 0, 4)
	defer p.Release()

	if got := p.buf[p.Size()]; got != 0 {
		t.Errorf("terminator = %#x, want 0", got)
	}
	if got := p.Index(p.Size()); got != 4 {
		t.Errorf("Index(Size()) = %d, want 4", got)
	}
}

// TestProjectInvariants checks the table and round-trip properties over every
// sub-range of a mixed grid.
func TestProjectInvariants(t *testing.T) {
	b := grid.NewBuffer(5, 3, 5)
	b.WriteString("x中y\U0001F600\nℵ b\tc\ndé中中")
	b.SetCell(4, 1, grid.Cell{Char: 0xD800})

	total := b.Len()
	for begin := 0; begin <= total; begin++ {
		for end := begin; end <= total; end++ {
			p := Project(b, begin, end)
			size := p.Size()
			off := p.Offsets()

			if size > 4*(end-begin) {
				t.Fatalf("[%d,%d): size %d exceeds %d", begin, end, size, 4*(end-begin))
			}
			if len(off) != size+1 || off[size] != end {
				t.Fatalf("[%d,%d): offsets len %d, last %d", begin, end, len(off), off[len(off)-1])
			}
			for i, v := range off {
				if v < begin || v > end {
					t.Fatalf("[%d,%d): offsets[%d] = %d out of range", begin, end, i, v)
				}
				if i > 0 && v < off[i-1] {
					t.Fatalf("[%d,%d): offsets decrease at %d", begin, end, i)
				}
			}
			if !utf8.Valid(p.Bytes()) {
				t.Fatalf("[%d,%d): invalid UTF-8 %q", begin, end, p.Bytes())
			}
			if got, want := string(p.Bytes()), expectedText(b, begin, end); got != want {
				t.Fatalf("[%d,%d): text %q, want %q", begin, end, got, want)
			}
			p.Release()
		}
	}
	if b.Outstanding() != 0 {
		t.Errorf("%d line(s) not released", b.Outstanding())
	}
}

// expectedText decodes the cells of [begin, end) independently of Project.
func expectedText(b *grid.Buffer, begin, end int) string {
	var out []rune
	cols := b.Columns()
	for idx := begin; idx < end; idx++ {
		l := b.FetchLine(idx/cols - b.ScrollbackLines())
		c := l.Cell(idx % cols)
		b.ReleaseLine(l)

		lo, hasLink := c.Continuation()
		switch {
		case grid.IsHighSurrogate(c.Char):
			if hasLink && grid.IsLowSurrogate(lo) {
				out = append(out, (rune(c.Char)-0xD800)<<10+(rune(lo)-0xDC00)+0x10000)
			}
		case c.IsWidePadding():
		case grid.IsLowSurrogate(c.Char):
			out = append(out, utf8.RuneError)
		default:
			out = append(out, rune(c.Char))
		}
	}
	return string(out)
}

func TestIndex(t *testing.T) {
	b := newBuffer(4, 1, "a中b")
	p := Project(b, 0, 4)
	defer p.Release()

	tests := []struct {
		off  int
		want int
	}{
		{-1, 0},
		{0, 0},
		{1, 1},
		{3, 1},
		{4, 3},
		{5, 4},
		{99, 4},
	}
	for _, tt := range tests {
		if got := p.Index(tt.off); got != tt.want {
			t.Errorf("Index(%d) = %d, want %d", tt.off, got, tt.want)
		}
	}
}

func TestNextBoundary(t *testing.T) {
	b := newBuffer(4, 1, "a中b")
	p := Project(b, 0, 4)
	defer p.Release()

	// bytes: a(0) 中(1..3) b(4)
	tests := []struct {
		off  int
		want int
	}{
		{-3, 0},
		{0, 1},
		{1, 4},
		{2, 3},
		{4, 5},
		{5, 5},
		{6, 5},
	}
	for _, tt := range tests {
		if got := p.NextBoundary(tt.off); got != tt.want {
			t.Errorf("NextBoundary(%d) = %d, want %d", tt.off, got, tt.want)
		}
	}
}

func TestReleaseTwice(t *testing.T) {
	b := newBuffer(4, 1, "abcd")
	p := Project(b, 0, 4)
	p.Release()
	p.Release()

	q := Project(b, 0, 2)
	r := Project(b, 2, 4)
	defer q.Release()
	defer r.Release()
	if q == r {
		t.Fatal("double Release handed out the same projection twice")
	}
	if string(q.Bytes()) != "ab" || string(r.Bytes()) != "cd" {
		t.Errorf("got %q and %q, want %q and %q", q.Bytes(), r.Bytes(), "ab", "cd")
	}
}

func TestProjectZeroColumns(t *testing.T) {
	p := Project(zeroGrid{}, 0, 3)
	defer p.Release()
	if p.Size() != 0 || p.Index(0) != 3 {
		t.Errorf("Size() = %d, Index(0) = %d; want 0, 3", p.Size(), p.Index(0))
	}
}

type zeroGrid struct{}

func (zeroGrid) Columns() int            { return 0 }
func (zeroGrid) ScrollbackLines() int    { return 0 }
func (zeroGrid) FetchLine(int) grid.Line { panic("unexpected FetchLine") }
func (zeroGrid) ReleaseLine(grid.Line)   {}
