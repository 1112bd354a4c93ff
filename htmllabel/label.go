// Package htmllabel parses the HTML-like label mini-language into a tree of
// tables, rows, cells, images, fonts and text spans.
//
// The recognized elements are TABLE, TR, TD, FONT, BR, HR, VR, IMG, I, B, S,
// U, O, SUP, SUB and the top-level HTML wrapper injected by the driver. A
// malformed label yields a single diagnostic and is rejected as a whole; the
// surrounding graph parse continues without it.
package htmllabel

import (
	"fmt"
)

// Align is a horizontal alignment.
type Align int

const (
	AlignNone Align = iota
	AlignLeft
	AlignCenter
	AlignRight
	AlignText // cells only: use per-line text alignment
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "LEFT"
	case AlignCenter:
		return "CENTER"
	case AlignRight:
		return "RIGHT"
	case AlignText:
		return "TEXT"
	default:
		return ""
	}
}

// VAlign is a vertical alignment.
type VAlign int

const (
	VAlignNone VAlign = iota
	VAlignTop
	VAlignMiddle
	VAlignBottom
)

// Sides is a bitmask of box sides, a subset of L, T, R and B.
type Sides uint8

const (
	SideLeft Sides = 1 << iota
	SideTop
	SideRight
	SideBottom
	AllSides = SideLeft | SideTop | SideRight | SideBottom
)

// Font describes the typeface state of a span. Unset fields inherit from the
// enclosing font scope.
type Font struct {
	Face  string
	Color string
	Size  float64 // point size, 0 when unset

	Bold, Italic, Underline, Overline, Strikethrough bool
	Superscript, Subscript                           bool
}

// Span is one line fragment of a text run.
type Span struct {
	Text  string
	Font  Font
	Break bool  // an explicit <BR/> terminates the span's line
	Align Align // alignment of the line ended by the break
}

// Text is a run of spans, the leaf label form.
type Text struct {
	Spans []Span
}

// Img references an external image by name; decoding is the renderer's
// business.
type Img struct {
	Src   string
	Scale string
}

// Cell is one table cell holding exactly one of a text run, a nested table
// or an image.
type Cell struct {
	RowSpan, ColSpan int // both >= 1

	Align                        Align
	VAlign                       VAlign
	BAlign                       Align // alignment of contained <BR> lines
	Border                       int   // -1 when unset, inherits table cellborder
	CellPadding                  int
	CellSpacing                  int
	Width, Height                int
	FixedSize                    bool
	BGColor                      string
	Color                        string
	Port                         string
	Sides                        Sides
	Href, Title, Target, Tooltip string

	Text  *Text
	Table *Table
	Image *Img
}

// Row is a list of cells. Ruled marks a row followed by a horizontal rule.
type Row struct {
	Cells []*Cell
	Ruled bool
}

// Table is the structured label form.
type Table struct {
	Align                        Align
	VAlign                       VAlign
	Border                       int // -1 when unset
	CellBorder                   int // -1 when unset
	CellPadding                  int // -1 when unset
	CellSpacing                  int // -1 when unset
	Width, Height                int
	FixedSize                    bool
	BGColor                      string
	Color                        string
	GradientAngle                int
	Port                         string
	Sides                        Sides
	Columns                      string // "*" requests column separators between all cells
	Rows                         string // "*" requests row separators between all rows
	Href, Title, Target, Tooltip string

	Body []*Row
	Font *Font // font scope wrapping the table, if any
}

// Label is the parse result: exactly one of Text or Table is set.
type Label struct {
	Text  *Text
	Table *Table
}

// Dimensions returns the row and column count of the table grid, counting
// spans.
func (t *Table) Dimensions() (rows, cols int) {
	rows = len(t.Body)
	for _, r := range t.Body {
		var c int
		for _, cell := range r.Cells {
			c += cell.ColSpan
		}
		if c > cols {
			cols = c
		}
	}
	return rows, cols
}

// CheckTiling verifies that the cells of the table tile its grid exactly:
// no two spans overlap and no grid position is left uncovered.
func (t *Table) CheckTiling() error {
	rows, cols := t.Dimensions()
	if rows == 0 || cols == 0 {
		return nil
	}
	occupied := make([][]bool, rows)
	for i := range occupied {
		occupied[i] = make([]bool, cols)
	}
	for ri, row := range t.Body {
		ci := 0
		for _, cell := range row.Cells {
			for ci < cols && occupied[ri][ci] {
				ci++
			}
			if ci+cell.ColSpan > cols || ri+cell.RowSpan > rows {
				return fmt.Errorf("cell at row %d exceeds the table grid", ri+1)
			}
			for dr := 0; dr < cell.RowSpan; dr++ {
				for dc := 0; dc < cell.ColSpan; dc++ {
					if occupied[ri+dr][ci+dc] {
						return fmt.Errorf("overlapping cell spans at row %d column %d", ri+dr+1, ci+dc+1)
					}
					occupied[ri+dr][ci+dc] = true
				}
			}
			ci += cell.ColSpan
		}
	}
	for ri := range occupied {
		for ci := range occupied[ri] {
			if !occupied[ri][ci] {
				return fmt.Errorf("cell spans leave a gap at row %d column %d", ri+1, ci+1)
			}
		}
	}
	return nil
}
