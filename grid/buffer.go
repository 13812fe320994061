package grid

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

const tabWidth = 8

// Buffer is an in-memory terminal grid with a bounded scrollback.
//
// Text written with WriteString is segmented into grapheme clusters; each
// cluster occupies one cell, or two for double-width clusters. Only the
// first code point of a cluster is stored.
//
// Buffer is not safe for concurrent use.
type Buffer struct {
	cols, rows    int
	maxScrollback int

	history [][]Cell // oldest first
	lines   [][]Cell

	// Cursor position on the screen (0-indexed). x == cols means a wrap is
	// pending.
	x, y int

	outstanding int
}

// NewBuffer creates a buffer with the given screen size. maxScrollback
// bounds the number of lines kept after they scroll off the top; a value
// <= 0 disables scrollback.
func NewBuffer(cols, rows, maxScrollback int) *Buffer {
	if cols < 1 {
		cols = 80
	}
	if rows < 1 {
		rows = 24
	}
	if maxScrollback < 0 {
		maxScrollback = 0
	}

	b := &Buffer{
		cols:          cols,
		rows:          rows,
		maxScrollback: maxScrollback,
		lines:         make([][]Cell, rows),
	}
	for i := range b.lines {
		b.lines[i] = newLine(cols)
	}
	return b
}

func newLine(cols int) []Cell {
	cells := make([]Cell, cols)
	for i := range cells {
		cells[i] = Blank
	}
	return cells
}

// Columns returns the grid width.
func (b *Buffer) Columns() int { return b.cols }

// Rows returns the screen height.
func (b *Buffer) Rows() int { return b.rows }

// ScrollbackLines returns the number of lines currently held in scrollback.
func (b *Buffer) ScrollbackLines() int { return len(b.history) }

// Len returns the number of addressable cells, scrollback included. It is
// the exclusive upper bound of the linear cell index space.
func (b *Buffer) Len() int {
	return (len(b.history) + b.rows) * b.cols
}

// Index returns the linear cell index of column x on the given row, where
// row is relative to the top of the screen.
func (b *Buffer) Index(x, row int) int {
	return (row+len(b.history))*b.cols + x
}

// Outstanding returns the number of fetched lines not yet released.
func (b *Buffer) Outstanding() int { return b.outstanding }

// FetchLine returns a handle to the given row. Rows outside the buffer yield
// a line of blank cells.
func (b *Buffer) FetchLine(row int) Line {
	b.outstanding++

	y := row + len(b.history)
	switch {
	case y < 0 || y >= len(b.history)+b.rows:
		return &bufferLine{}
	case y < len(b.history):
		return &bufferLine{cells: b.history[y]}
	default:
		return &bufferLine{cells: b.lines[y-len(b.history)]}
	}
}

// ReleaseLine returns a line obtained from FetchLine. Releasing a line twice
// or releasing a foreign line has no effect.
func (b *Buffer) ReleaseLine(l Line) {
	bl, ok := l.(*bufferLine)
	if !ok || bl.released {
		return
	}
	bl.released = true
	b.outstanding--
}

// SetCell stores c at column x of the given row. Out-of-range positions are
// ignored.
func (b *Buffer) SetCell(x, row int, c Cell) {
	y := row + len(b.history)
	if x < 0 || x >= b.cols || y < 0 || y >= len(b.history)+b.rows {
		return
	}
	if y < len(b.history) {
		b.history[y][x] = c
		return
	}
	b.lines[y-len(b.history)][x] = c
}

// WriteString writes s at the cursor, wrapping at the right margin and
// scrolling into the scrollback at the bottom. '\n' starts a new line, '\r'
// returns to column 0 and '\t' advances to the next tab stop. Other control
// characters and zero-width clusters are dropped.
func (b *Buffer) WriteString(s string) {
	state := -1
	for len(s) > 0 {
		var cluster string
		var width int
		cluster, s, width, state = uniseg.FirstGraphemeClusterInString(s, state)

		switch cluster {
		case "\n", "\r\n":
			b.x = 0
			b.lineFeed()
			continue
		case "\r":
			b.x = 0
			continue
		case "\t":
			next := (b.x/tabWidth + 1) * tabWidth
			for b.x < next && b.x < b.cols {
				b.put(Blank, 1)
			}
			continue
		}

		r, _ := utf8.DecodeRuneInString(cluster)
		if r < 0x20 || r == 0x7f || width <= 0 {
			continue
		}
		b.putRune(r, width)
	}
}

// LineFeed moves the cursor to the start of the next line.
func (b *Buffer) LineFeed() {
	b.x = 0
	b.lineFeed()
}

func (b *Buffer) putRune(r rune, width int) {
	if width > 2 {
		width = 2
	}
	if width > b.cols {
		width = b.cols
	}

	c := Cell{Char: uint16(r)}
	if r > 0xFFFF {
		hi, lo := utf16.EncodeRune(r)
		c = Cell{Char: uint16(hi), Link: uint16(lo)}
	}
	b.put(c, width)
}

// put writes c at the cursor and fills the remaining width-1 cells with
// padding.
func (b *Buffer) put(c Cell, width int) {
	if b.x+width > b.cols {
		b.x = 0
		b.lineFeed()
	}

	line := b.lines[b.y]
	line[b.x] = c
	for i := 1; i < width; i++ {
		line[b.x+i] = Cell{Char: WidePadding}
	}
	b.x += width
}

func (b *Buffer) lineFeed() {
	if b.y < b.rows-1 {
		b.y++
		return
	}

	// Scroll the top line into history.
	if b.maxScrollback > 0 {
		b.history = append(b.history, b.lines[0])
		if over := len(b.history) - b.maxScrollback; over > 0 {
			b.history = append(b.history[:0], b.history[over:]...)
		}
	}
	copy(b.lines, b.lines[1:])
	b.lines[b.rows-1] = newLine(b.cols)
}

type bufferLine struct {
	cells    []Cell
	released bool
}

func (l *bufferLine) Cell(x int) Cell {
	if x < 0 || x >= len(l.cells) {
		return Blank
	}
	return l.cells[x]
}
