// Package grid defines the terminal cell grid consumed by the search core and
// provides Buffer, an in-memory scrollback + screen implementation.
//
// Cells hold UTF-16 code units. A character outside the Basic Multilingual
// Plane occupies one cell whose Char is the high surrogate and whose
// continuation link carries the low surrogate. A double-width character
// occupies two cells: the character itself followed by a WidePadding cell.
//
// Rows are addressed relative to the start of the screen: row 0 is the top
// screen line and rows -ScrollbackLines() .. -1 are scrollback, oldest first.
// A linear cell index is y*Columns()+x where y counts from the oldest
// scrollback line, so row = y - ScrollbackLines().
package grid

// WidePadding is the code unit stored in the second cell of a double-width
// character.
const WidePadding uint16 = 0xDFFF

// Blank is the cell returned for positions outside a line.
var Blank = Cell{Char: ' '}

// Cell is a single character cell.
type Cell struct {
	// Char is the UTF-16 code unit displayed in the cell.
	Char uint16

	// Link is the code unit of the cell's first continuation (the low half
	// of a surrogate pair). Zero means no continuation.
	Link uint16
}

// IsWidePadding reports whether c is the trailing half of a wide character.
func (c Cell) IsWidePadding() bool {
	return c.Char == WidePadding
}

// Continuation returns the code unit linked to c, if any.
func (c Cell) Continuation() (uint16, bool) {
	return c.Link, c.Link != 0
}

// IsHighSurrogate reports whether u is the leading half of a surrogate pair.
func IsHighSurrogate(u uint16) bool {
	return u >= 0xD800 && u < 0xDC00
}

// IsLowSurrogate reports whether u is the trailing half of a surrogate pair.
func IsLowSurrogate(u uint16) bool {
	return u >= 0xDC00 && u < 0xE000
}

// Line is a handle to one grid row obtained from Grid.FetchLine.
type Line interface {
	// Cell returns the cell at column x, or Blank when x is out of range.
	Cell(x int) Cell
}

// Grid is the storage a search reads from.
//
// Every Line returned by FetchLine must be handed back to ReleaseLine
// exactly once.
type Grid interface {
	Columns() int
	ScrollbackLines() int
	FetchLine(row int) Line
	ReleaseLine(Line)
}
