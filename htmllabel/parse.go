package htmllabel

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Error is the single diagnostic emitted for a rejected label.
type Error struct {
	Line int
	Msg  string
}

func (e Error) Error() string {
	return fmt.Sprintf("label:%d: %s", e.Line, e.Msg)
}

// Parse parses a label body (the content between the outermost angle
// brackets of the attribute value). The driver-injected HTML wrapper is
// implicit. A malformed label returns a nil Label and the diagnostic.
func Parse(src string) (*Label, error) {
	p := &parser{lx: newLexer(src)}
	p.fonts = []Font{{}}
	lbl, err := p.parseLabel()
	if err != nil {
		return nil, err
	}
	return lbl, nil
}

type parser struct {
	lx    *lexer
	fonts []Font // font stack, top is the current scope
}

func (p *parser) font() Font { return p.fonts[len(p.fonts)-1] }

// pushFont derives a new scope inheriting unset fields from the stack top.
func (p *parser) pushFont(f Font) {
	top := p.font()
	if f.Face == "" {
		f.Face = top.Face
	}
	if f.Color == "" {
		f.Color = top.Color
	}
	if f.Size == 0 {
		f.Size = top.Size
	}
	f.Bold = f.Bold || top.Bold
	f.Italic = f.Italic || top.Italic
	f.Underline = f.Underline || top.Underline
	f.Overline = f.Overline || top.Overline
	f.Strikethrough = f.Strikethrough || top.Strikethrough
	f.Superscript = f.Superscript || top.Superscript
	f.Subscript = f.Subscript || top.Subscript
	p.fonts = append(p.fonts, f)
}

func (p *parser) popFont() { p.fonts = p.fonts[:len(p.fonts)-1] }

func (p *parser) errorf(format string, args ...any) error {
	return Error{Line: p.lx.line, Msg: fmt.Sprintf(format, args...)}
}

// parseLabel parses the top level: either a single table (with optional
// font-style wrappers) or a text run.
func (p *parser) parseLabel() (*Label, error) {
	item, err := p.parseFlow("")
	if err != nil {
		return nil, err
	}
	if tok := p.lx.peek(); tok.kind != tokEOF {
		return nil, p.errorf("unexpected %s after label content", tok)
	}
	switch {
	case item.table != nil:
		return &Label{Table: item.table}, nil
	case item.text != nil:
		return &Label{Text: item.text}, nil
	default:
		return &Label{Text: &Text{}}, nil
	}
}

// flowItem is the content of a label or cell: one table, one image, or a
// text run.
type flowItem struct {
	text  *Text
	table *Table
	img   *Img
}

// parseFlow parses mixed font/text/table content until EOF or the closing
// tag named by until. A cell may hold a text run, a nested table or an
// image, never a mixture.
func (p *parser) parseFlow(until string) (flowItem, error) {
	var item flowItem
	var spans []Span
	pending := "" // accumulated character data of the current line

	flushText := func(brk bool, align Align) {
		if pending != "" || brk {
			spans = append(spans, Span{Text: pending, Font: p.font(), Break: brk, Align: align})
			pending = ""
		}
	}

	for {
		tok := p.lx.next()
		switch tok.kind {
		case tokEOF:
			if until != "" {
				return item, p.errorf("missing closing tag </%s>", until)
			}
			flushText(false, AlignNone)
			if len(spans) > 0 {
				if item.table != nil || item.img != nil {
					return item, p.errorf("cell cannot mix text with a table or image")
				}
				item.text = &Text{Spans: spans}
			}
			return item, nil

		case tokText:
			pending += tok.text

		case tokClose:
			name := strings.ToUpper(tok.name)
			if styleFlag(name) != nil {
				// closing a style/font tag pops the scope opened below; the
				// pending text still belongs to the inner scope
				if len(p.fonts) == 1 {
					return item, p.errorf("unbalanced closing tag </%s>", name)
				}
				flushText(false, AlignNone)
				p.popFont()
				continue
			}
			if name != until {
				return item, p.errorf("unbalanced closing tag </%s>", name)
			}
			flushText(false, AlignNone)
			if len(spans) > 0 {
				if item.table != nil || item.img != nil {
					return item, p.errorf("cell cannot mix text with a table or image")
				}
				item.text = &Text{Spans: spans}
			}
			return item, nil

		case tokOpen:
			name := strings.ToUpper(tok.name)
			switch {
			case name == "BR":
				// BR is void; <BR> and <BR/> are both accepted
				flushText(true, parseAlignAttr(tok.attrs["ALIGN"]))
			case name == "FONT":
				f, err := p.fontFromAttrs(tok.attrs)
				if err != nil {
					return item, err
				}
				flushText(false, AlignNone)
				p.pushFont(f)
			case styleFlag(name) != nil:
				f := Font{}
				styleFlag(name)(&f)
				flushText(false, AlignNone)
				p.pushFont(f)
			case name == "TABLE":
				if item.table != nil || item.img != nil || len(spans) > 0 || strings.TrimSpace(pending) != "" {
					return item, p.errorf("cell cannot mix text with a table or image")
				}
				pending = ""
				tbl, err := p.parseTable(tok)
				if err != nil {
					return item, err
				}
				if len(p.fonts) > 1 {
					f := p.font()
					tbl.Font = &f
				}
				item.table = tbl
			case name == "IMG":
				if item.table != nil || item.img != nil || len(spans) > 0 || strings.TrimSpace(pending) != "" {
					return item, p.errorf("cell cannot mix text with a table or image")
				}
				pending = ""
				item.img = &Img{Src: tok.attrs["SRC"], Scale: tok.attrs["SCALE"]}
			default:
				return item, p.errorf("unknown tag <%s>", tok.name)
			}

		case tokError:
			return item, Error{Line: p.lx.line, Msg: tok.text}
		}
	}
}

// styleFlag returns the Font mutation of a pure style tag, nil for other
// tags.
func styleFlag(name string) func(*Font) {
	switch name {
	case "B":
		return func(f *Font) { f.Bold = true }
	case "I":
		return func(f *Font) { f.Italic = true }
	case "U":
		return func(f *Font) { f.Underline = true }
	case "O":
		return func(f *Font) { f.Overline = true }
	case "S":
		return func(f *Font) { f.Strikethrough = true }
	case "SUP":
		return func(f *Font) { f.Superscript = true }
	case "SUB":
		return func(f *Font) { f.Subscript = true }
	case "FONT":
		return func(f *Font) {}
	default:
		return nil
	}
}

func (p *parser) fontFromAttrs(attrs map[string]string) (Font, error) {
	var f Font
	for name, val := range attrs {
		switch name {
		case "FACE":
			f.Face = val
		case "COLOR":
			f.Color = val
		case "POINT-SIZE":
			f.Size = p.clampFloat("POINT-SIZE", val, 1, 512)
		default:
			return f, p.errorf("unknown attribute %s on <FONT>", name)
		}
	}
	return f, nil
}

// parseTable parses rows until </TABLE>.
func (p *parser) parseTable(open tag) (*Table, error) {
	tbl := &Table{Border: -1, CellBorder: -1, CellPadding: -1, CellSpacing: -1, Sides: AllSides}
	if err := p.tableAttrs(tbl, open.attrs); err != nil {
		return nil, err
	}

	for {
		tok := p.lx.next()
		switch tok.kind {
		case tokEOF:
			return nil, p.errorf("missing closing tag </TABLE>")
		case tokText:
			if strings.TrimSpace(tok.text) != "" {
				return nil, p.errorf("text is not allowed between table rows")
			}
		case tokOpen:
			name := strings.ToUpper(tok.name)
			switch name {
			case "TR":
				row, err := p.parseRow(tok)
				if err != nil {
					return nil, err
				}
				tbl.Body = append(tbl.Body, row)
			case "HR":
				if n := len(tbl.Body); n > 0 {
					tbl.Body[n-1].Ruled = true
				}
			default:
				return nil, p.errorf("unexpected tag <%s> inside <TABLE>", tok.name)
			}
		case tokClose:
			if strings.ToUpper(tok.name) != "TABLE" {
				return nil, p.errorf("unbalanced closing tag </%s> inside <TABLE>", tok.name)
			}
			if err := tbl.CheckTiling(); err != nil {
				return nil, p.errorf("%v", err)
			}
			return tbl, nil
		case tokError:
			return nil, Error{Line: p.lx.line, Msg: tok.text}
		}
	}
}

// parseRow parses cells until </TR>.
func (p *parser) parseRow(open tag) (*Row, error) {
	if len(open.attrs) > 0 {
		return nil, p.errorf("<TR> takes no attributes")
	}
	row := &Row{}
	for {
		tok := p.lx.next()
		switch tok.kind {
		case tokEOF:
			return nil, p.errorf("missing closing tag </TR>")
		case tokText:
			if strings.TrimSpace(tok.text) != "" {
				return nil, p.errorf("text is not allowed between table cells")
			}
		case tokOpen:
			name := strings.ToUpper(tok.name)
			switch name {
			case "TD":
				cell, err := p.parseCell(tok)
				if err != nil {
					return nil, err
				}
				row.Cells = append(row.Cells, cell)
			case "VR":
				// a vertical rule between cells; accepted and not recorded
			default:
				return nil, p.errorf("unexpected tag <%s> inside <TR>", tok.name)
			}
		case tokClose:
			if strings.ToUpper(tok.name) != "TR" {
				return nil, p.errorf("unbalanced closing tag </%s> inside <TR>", tok.name)
			}
			return row, nil
		case tokError:
			return nil, Error{Line: p.lx.line, Msg: tok.text}
		}
	}
}

// parseCell parses one cell body until </TD>.
func (p *parser) parseCell(open tag) (*Cell, error) {
	cell := &Cell{RowSpan: 1, ColSpan: 1, Border: -1, Sides: AllSides}
	if err := p.cellAttrs(cell, open.attrs); err != nil {
		return nil, err
	}
	item, err := p.parseFlow("TD")
	if err != nil {
		return nil, err
	}
	cell.Text, cell.Table, cell.Image = item.text, item.table, item.img
	return cell, nil
}

func (p *parser) tableAttrs(tbl *Table, attrs map[string]string) error {
	for name, val := range attrs {
		switch name {
		case "ALIGN":
			tbl.Align = parseAlignAttr(val)
		case "VALIGN":
			tbl.VAlign = parseVAlignAttr(val)
		case "BORDER":
			tbl.Border = p.clampInt("BORDER", val, 0, 255)
		case "CELLBORDER":
			tbl.CellBorder = p.clampInt("CELLBORDER", val, 0, 255)
		case "CELLPADDING":
			tbl.CellPadding = p.clampInt("CELLPADDING", val, 0, 255)
		case "CELLSPACING":
			tbl.CellSpacing = p.clampInt("CELLSPACING", val, 0, 127)
		case "WIDTH":
			tbl.Width = p.clampInt("WIDTH", val, 0, 65535)
		case "HEIGHT":
			tbl.Height = p.clampInt("HEIGHT", val, 0, 65535)
		case "FIXEDSIZE":
			tbl.FixedSize = parseBoolAttr(val)
		case "BGCOLOR":
			tbl.BGColor = val
		case "COLOR":
			tbl.Color = val
		case "GRADIENTANGLE":
			tbl.GradientAngle = p.clampInt("GRADIENTANGLE", val, 0, 360)
		case "PORT":
			tbl.Port = val
		case "SIDES":
			tbl.Sides = parseSidesAttr(val)
		case "COLUMNS":
			tbl.Columns = val
		case "ROWS":
			tbl.Rows = val
		case "HREF":
			tbl.Href = val
		case "TITLE":
			tbl.Title = val
		case "TARGET":
			tbl.Target = val
		case "TOOLTIP":
			tbl.Tooltip = val
		default:
			return p.errorf("unknown attribute %s on <TABLE>", name)
		}
	}
	return nil
}

func (p *parser) cellAttrs(cell *Cell, attrs map[string]string) error {
	for name, val := range attrs {
		switch name {
		case "ALIGN":
			cell.Align = parseAlignAttr(val)
		case "VALIGN":
			cell.VAlign = parseVAlignAttr(val)
		case "BALIGN":
			cell.BAlign = parseAlignAttr(val)
		case "ROWSPAN":
			cell.RowSpan = p.clampInt("ROWSPAN", val, 1, 255)
		case "COLSPAN":
			cell.ColSpan = p.clampInt("COLSPAN", val, 1, 255)
		case "BORDER":
			cell.Border = p.clampInt("BORDER", val, 0, 255)
		case "CELLPADDING":
			cell.CellPadding = p.clampInt("CELLPADDING", val, 0, 255)
		case "CELLSPACING":
			cell.CellSpacing = p.clampInt("CELLSPACING", val, 0, 127)
		case "WIDTH":
			cell.Width = p.clampInt("WIDTH", val, 0, 65535)
		case "HEIGHT":
			cell.Height = p.clampInt("HEIGHT", val, 0, 65535)
		case "FIXEDSIZE":
			cell.FixedSize = parseBoolAttr(val)
		case "BGCOLOR":
			cell.BGColor = val
		case "COLOR":
			cell.Color = val
		case "PORT":
			cell.Port = val
		case "SIDES":
			cell.Sides = parseSidesAttr(val)
		case "HREF":
			cell.Href = val
		case "TITLE":
			cell.Title = val
		case "TARGET":
			cell.Target = val
		case "TOOLTIP":
			cell.Tooltip = val
		default:
			return p.errorf("unknown attribute %s on <TD>", name)
		}
	}
	return nil
}

// clampInt parses an integer attribute, clipping out-of-range values to the
// documented bounds.
func (p *parser) clampInt(name, val string, lo, hi int) int {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return lo
	}
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func (p *parser) clampFloat(name, val string, lo, hi float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return lo
	}
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

func parseBoolAttr(val string) bool {
	return strings.EqualFold(val, "true")
}

func parseAlignAttr(val string) Align {
	switch strings.ToUpper(val) {
	case "LEFT":
		return AlignLeft
	case "CENTER":
		return AlignCenter
	case "RIGHT":
		return AlignRight
	case "TEXT":
		return AlignText
	default:
		return AlignNone
	}
}

func parseVAlignAttr(val string) VAlign {
	switch strings.ToUpper(val) {
	case "TOP":
		return VAlignTop
	case "MIDDLE":
		return VAlignMiddle
	case "BOTTOM":
		return VAlignBottom
	default:
		return VAlignNone
	}
}

func parseSidesAttr(val string) Sides {
	var s Sides
	for _, r := range strings.ToUpper(val) {
		switch r {
		case 'L':
			s |= SideLeft
		case 'T':
			s |= SideTop
		case 'R':
			s |= SideRight
		case 'B':
			s |= SideBottom
		}
	}
	if s == 0 {
		return AllSides
	}
	return s
}

// isNameRune reports whether r may appear in a tag or attribute name.
func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-'
}
