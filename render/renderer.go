// Package render drives output generation: a process-global plugin
// registry resolves a format string to a device/renderer pair, and a render
// job streams the laid-out graph through the renderer callbacks with the
// coordinate transform, color state and style state applied.
package render

import (
	"github.com/hverr/gviz/geom"
	"github.com/hverr/gviz/htmllabel"
)

// Style is the pen style bitmask.
type Style uint

const (
	StyleSolid  Style = 0
	StyleDashed Style = 1 << iota
	StyleDotted
	StyleBold
	StyleFilled
	StyleRounded
	StyleRadial
	StyleInvisible
)

// ObjScope identifies the object kind currently being drawn.
type ObjScope int

const (
	ScopeGraph ObjScope = iota
	ScopeCluster
	ScopeNode
	ScopeEdge
	ScopeAnchor
	ScopeLabel
)

// Pen is the drawing state handed to geometric callbacks.
type Pen struct {
	Color     Color
	FillColor Color
	Width     float64
	Style     Style
}

// TextSpan is one positioned piece of label text.
type TextSpan struct {
	Text  string
	At    geom.Point
	Font  htmllabel.Font
	Align htmllabel.Align
}

// Anchor describes a hyperlink region emitted between BeginAnchor and
// EndAnchor.
type Anchor struct {
	Href    string
	Tooltip string
	Target  string
	ID      string
}

// Renderer is the callback surface a renderer plugin implements. The
// driver calls these in document order; geometric callbacks receive graph
// coordinates or device coordinates depending on the plugin's
// RawCoordinates capability flag.
type Renderer interface {
	BeginJob(job *Job)
	EndJob()
	BeginGraph(job *Job)
	EndGraph()
	BeginCluster(name string)
	EndCluster()
	BeginNodes()
	EndNodes()
	BeginEdges()
	EndEdges()
	BeginNode(name string)
	EndNode()
	BeginEdge(tail, head string)
	EndEdge()
	BeginAnchor(a Anchor)
	EndAnchor()
	Textspan(span TextSpan, pen Pen)
	Polygon(verts []geom.Point, pen Pen)
	Ellipse(center geom.Point, rx, ry float64, pen Pen)
	Bezier(bz geom.Bezier, pen Pen)
	Polyline(verts []geom.Point, pen Pen)
}

// BaseRenderer implements every callback as a no-op so devices override
// only what they consume.
type BaseRenderer struct{}

func (BaseRenderer) BeginJob(*Job)                             {}
func (BaseRenderer) EndJob()                                   {}
func (BaseRenderer) BeginGraph(*Job)                           {}
func (BaseRenderer) EndGraph()                                 {}
func (BaseRenderer) BeginCluster(string)                       {}
func (BaseRenderer) EndCluster()                               {}
func (BaseRenderer) BeginNodes()                               {}
func (BaseRenderer) EndNodes()                                 {}
func (BaseRenderer) BeginEdges()                               {}
func (BaseRenderer) EndEdges()                                 {}
func (BaseRenderer) BeginNode(string)                          {}
func (BaseRenderer) EndNode()                                  {}
func (BaseRenderer) BeginEdge(string, string)                  {}
func (BaseRenderer) EndEdge()                                  {}
func (BaseRenderer) BeginAnchor(Anchor)                        {}
func (BaseRenderer) EndAnchor()                                {}
func (BaseRenderer) Textspan(TextSpan, Pen)                    {}
func (BaseRenderer) Polygon([]geom.Point, Pen)                 {}
func (BaseRenderer) Ellipse(geom.Point, float64, float64, Pen) {}
func (BaseRenderer) Bezier(geom.Bezier, Pen)                   {}
func (BaseRenderer) Polyline([]geom.Point, Pen)                {}
