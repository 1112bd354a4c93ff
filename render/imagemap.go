package render

import (
	"fmt"
	"math"

	"github.com/hverr/gviz/geom"
	"github.com/hverr/gviz/htmllabel"
)

// The image-map device renders only anchor regions: one record per
// hyperlinked object, with a rectangle, circle or polygon shape descriptor.
// Four dialects share the implementation: cmap (HTML <area> fragments),
// cmapx (a complete <map> element), imap (server-side map) and ismap (the
// legacy one-line format).

func init() {
	for _, name := range []string{"cmap", "cmapx", "imap", "ismap"} {
		Default().Register(&Plugin{
			Name:     name,
			Renderer: "map",
			Library:  "core",
			Quality:  0,
			New:      func(s *Sink) Renderer { return &mapRenderer{sink: s} },
		})
	}
}

// anchorShape is the hot-zone descriptor of the anchor being tracked. The
// first ellipse drawn inside an anchor makes it a circle, the first polygon
// a poly; everything else, and any mixture, degrades to the bounding
// rectangle.
type anchorShape int

const (
	shapeRect anchorShape = iota
	shapeCircle
	shapePoly
)

type mapRenderer struct {
	BaseRenderer
	sink    *Sink
	dialect string
	name    string

	anchor  *Anchor
	tracked []geom.Point // points seen inside the open anchor

	shape  anchorShape
	shapes int // geometry callbacks seen inside the open anchor
	center geom.Point
	radius float64
	poly   []geom.Point
}

func (m *mapRenderer) BeginJob(job *Job) {
	m.dialect = job.Format
	m.name = job.Graph.Name()
	if m.name == "" {
		m.name = "G"
	}
}

func (m *mapRenderer) BeginGraph(job *Job) {
	switch m.dialect {
	case "cmapx":
		fmt.Fprintf(m.sink, "<map id=%q name=%q>\n", m.name, m.name)
	case "imap":
		fmt.Fprintf(m.sink, "base referer\n")
	}
}

func (m *mapRenderer) EndGraph() {
	if m.dialect == "cmapx" {
		fmt.Fprintf(m.sink, "</map>\n")
	}
}

func (m *mapRenderer) BeginAnchor(a Anchor) {
	m.anchor = &a
	m.tracked = m.tracked[:0]
	m.shape = shapeRect
	m.shapes = 0
	m.poly = nil
}

func (m *mapRenderer) EndAnchor() {
	if m.anchor == nil || len(m.tracked) == 0 {
		m.anchor = nil
		return
	}
	m.emit(*m.anchor)
	m.anchor = nil
}

// noteShape records the shape of one geometry callback; a second shape
// inside the same anchor falls back to the bounding rectangle.
func (m *mapRenderer) noteShape(s anchorShape) {
	m.shapes++
	if m.shapes > 1 {
		m.shape = shapeRect
		return
	}
	m.shape = s
}

// geometric callbacks track extents and the shape kind while an anchor is
// open

func (m *mapRenderer) Polygon(verts []geom.Point, pen Pen) {
	if m.anchor != nil {
		m.tracked = append(m.tracked, verts...)
		m.poly = append([]geom.Point{}, verts...)
		m.noteShape(shapePoly)
	}
}

func (m *mapRenderer) Polyline(verts []geom.Point, pen Pen) {
	if m.anchor != nil {
		m.tracked = append(m.tracked, verts...)
		m.noteShape(shapeRect)
	}
}

func (m *mapRenderer) Ellipse(center geom.Point, rx, ry float64, pen Pen) {
	if m.anchor != nil {
		m.tracked = append(m.tracked,
			geom.Pt(center.X-rx, center.Y-ry), geom.Pt(center.X+rx, center.Y+ry))
		m.center = center
		m.radius = math.Max(rx, ry)
		m.noteShape(shapeCircle)
	}
}

func (m *mapRenderer) Bezier(bz geom.Bezier, pen Pen) {
	if m.anchor != nil {
		m.tracked = append(m.tracked, bz.Points...)
		m.noteShape(shapeRect)
	}
}

func (m *mapRenderer) Textspan(span TextSpan, pen Pen) {
	if m.anchor != nil {
		// label extents widen the rectangle fallback but never change the
		// shape kind
		w := float64(len(span.Text)) * span.Font.Size * 0.6
		h := span.Font.Size
		m.tracked = append(m.tracked,
			geom.Pt(span.At.X-w/2, span.At.Y-h/2), geom.Pt(span.At.X+w/2, span.At.Y+h/2))
	}
}

func (m *mapRenderer) emit(a Anchor) {
	switch m.shape {
	case shapeCircle:
		m.emitCircle(a)
	case shapePoly:
		m.emitPoly(a)
	default:
		m.emitRect(a, geom.BoundingBox(m.tracked))
	}
}

func (m *mapRenderer) emitRect(a Anchor, bb geom.Box) {
	x0, y0 := int(math.Floor(bb.LL.X)), int(math.Floor(bb.LL.Y))
	x1, y1 := int(math.Ceil(bb.UR.X)), int(math.Ceil(bb.UR.Y))
	switch m.dialect {
	case "cmap", "cmapx":
		m.area(a, "rect", fmt.Sprintf("%d,%d,%d,%d", x0, y0, x1, y1))
	case "imap":
		fmt.Fprintf(m.sink, "rect %s %d,%d %d,%d\n", a.Href, x0, y0, x1, y1)
	case "ismap":
		fmt.Fprintf(m.sink, "rectangle (%d,%d) (%d,%d) %s %s\n", x0, y0, x1, y1, a.Href, a.ID)
	}
}

func (m *mapRenderer) emitCircle(a Anchor) {
	cx, cy := int(math.Round(m.center.X)), int(math.Round(m.center.Y))
	r := int(math.Ceil(m.radius))
	switch m.dialect {
	case "cmap", "cmapx":
		m.area(a, "circle", fmt.Sprintf("%d,%d,%d", cx, cy, r))
	case "imap":
		// center plus one point on the circle
		fmt.Fprintf(m.sink, "circle %s %d,%d %d,%d\n", a.Href, cx, cy, cx+r, cy)
	case "ismap":
		fmt.Fprintf(m.sink, "circle (%d,%d) %d %s %s\n", cx, cy, r, a.Href, a.ID)
	}
}

func (m *mapRenderer) emitPoly(a Anchor) {
	switch m.dialect {
	case "cmap", "cmapx":
		coords := ""
		for i, p := range m.poly {
			if i > 0 {
				coords += ","
			}
			coords += fmt.Sprintf("%d,%d", int(math.Round(p.X)), int(math.Round(p.Y)))
		}
		m.area(a, "poly", coords)
	case "imap":
		fmt.Fprintf(m.sink, "poly %s", a.Href)
		for _, p := range m.poly {
			fmt.Fprintf(m.sink, " %d,%d", int(math.Round(p.X)), int(math.Round(p.Y)))
		}
		fmt.Fprintf(m.sink, "\n")
	case "ismap":
		fmt.Fprintf(m.sink, "polygon")
		for _, p := range m.poly {
			fmt.Fprintf(m.sink, " (%d,%d)", int(math.Round(p.X)), int(math.Round(p.Y)))
		}
		fmt.Fprintf(m.sink, " %s %s\n", a.Href, a.ID)
	}
}

// area writes one cmap/cmapx <area> record.
func (m *mapRenderer) area(a Anchor, shape, coords string) {
	fmt.Fprintf(m.sink, "<area shape=%q href=%q", shape, htmllabel.Escape(a.Href))
	if a.Tooltip != "" {
		fmt.Fprintf(m.sink, " title=%q", htmllabel.Escape(a.Tooltip))
	}
	if a.Target != "" {
		fmt.Fprintf(m.sink, " target=%q", htmllabel.Escape(a.Target))
	}
	fmt.Fprintf(m.sink, " coords=%q/>\n", coords)
}
