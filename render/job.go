package render

import (
	"io"
	"strconv"
	"strings"

	"github.com/hverr/gviz/geom"
	"github.com/hverr/gviz/graph"
	"github.com/hverr/gviz/htmllabel"
)

// Job is the state of one rendering pass, spanning begin-job to end-job.
type Job struct {
	Format string
	Graph  *graph.Graph

	// coordinate transform: device = (p + Translate) * Zoom * Scale,
	// optionally rotated by 90 degrees
	Translate geom.Point
	Zoom      float64
	Scale     float64 // device scale from DPI
	Rotate    bool

	// Canvas is the transformed bounding box of the drawing.
	Canvas geom.Box

	plugin   *Plugin
	renderer Renderer
	sink     *Sink
	scope    ObjScope
}

// DefaultDPI is the drawing resolution assumed by graph coordinates.
const DefaultDPI = 72

// Render lays the selected plugin over the graph and streams it to w. The
// graph must already carry positions and, for drawn edges, splines.
func Render(g *graph.Graph, format string, w io.Writer) error {
	return Default().Render(g, format, w)
}

// Render resolves format against this registry and runs one job.
func (r *Registry) Render(g *graph.Graph, format string, w io.Writer) error {
	plugin, err := r.Select(format)
	if err != nil {
		return err
	}
	sink := NewSink(w)
	if plugin.Flags&Compressed != 0 {
		sink.Compress()
	}

	job := &Job{
		Format: strings.ToLower(strings.SplitN(format, ":", 2)[0]),
		Graph:  g,
		Zoom:   1,
		Scale:  dpiOf(g) / DefaultDPI,
		plugin: plugin,
		sink:   sink,
	}
	job.renderer = plugin.New(sink)
	job.setupTransform()
	job.run()
	return sink.Close()
}

func dpiOf(g *graph.Graph) float64 {
	v, ok := g.Get(graph.KindGraph, "dpi")
	if !ok {
		return DefaultDPI
	}
	f := v.Float(DefaultDPI)
	if f <= 0 {
		return DefaultDPI
	}
	return f
}

// setupTransform translates the drawing to the origin and applies rotation
// requested by the rotate attribute.
func (j *Job) setupTransform() {
	bb := j.Graph.BoundingBox()
	j.Translate = geom.Pt(-bb.LL.X, -bb.LL.Y)
	if v, ok := j.Graph.Get(graph.KindGraph, "rotate"); ok && v.Int(0) == 90 {
		j.Rotate = true
	}
	j.Canvas = geom.Box{
		LL: j.transform(bb.LL),
		UR: j.transform(bb.UR),
	}
	if j.Rotate {
		j.Canvas = geom.BoundingBox([]geom.Point{
			j.transform(bb.LL), j.transform(bb.UR),
			j.transform(geom.Pt(bb.LL.X, bb.UR.Y)), j.transform(geom.Pt(bb.UR.X, bb.LL.Y)),
		})
	}
}

// transform maps a graph coordinate into device space.
func (j *Job) transform(p geom.Point) geom.Point {
	q := p.Add(j.Translate).Scale(j.Zoom * j.Scale)
	if j.Rotate {
		q = geom.Pt(q.Y, -q.X)
	}
	return q
}

// xform applies the transform unless the plugin asked for raw coordinates.
func (j *Job) xform(p geom.Point) geom.Point {
	if j.plugin.Flags&RawCoordinates != 0 {
		return p
	}
	return j.transform(p)
}

func (j *Job) xformAll(pts []geom.Point) []geom.Point {
	out := make([]geom.Point, len(pts))
	for i, p := range pts {
		out[i] = j.xform(p)
	}
	return out
}

// run streams the graph through the renderer callbacks.
func (j *Job) run() {
	rd := j.renderer
	rd.BeginJob(j)
	rd.BeginGraph(j)
	j.scope = ScopeGraph

	for _, sub := range j.Graph.Subgraphs() {
		j.emitCluster(sub)
	}

	rd.BeginNodes()
	for _, n := range j.Graph.Nodes() {
		j.emitNode(n)
	}
	rd.EndNodes()

	rd.BeginEdges()
	for _, e := range j.Graph.Edges() {
		j.emitEdge(e)
	}
	rd.EndEdges()

	rd.EndGraph()
	rd.EndJob()
}

func (j *Job) emitCluster(sub *graph.Graph) {
	if sub.IsCluster() {
		j.scope = ScopeCluster
		j.renderer.BeginCluster(sub.Name())
		if bb := sub.BoundingBox(); bb.Width() > 0 {
			pen := j.penFor(styleOf(sub.GetStr(graph.KindGraph, "style", "")),
				sub.GetStr(graph.KindGraph, "color", "black"),
				sub.GetStr(graph.KindGraph, "bgcolor", ""))
			j.renderer.Polygon(j.xformAll(boxVerts(bb)), pen)
		}
		defer j.renderer.EndCluster()
	}
	for _, child := range sub.Subgraphs() {
		j.emitCluster(child)
	}
}

func (j *Job) emitNode(n *graph.Node) {
	pos, ok := n.Pos(j.Graph)
	if !ok {
		return
	}
	style := styleOf(n.GetStr(j.Graph, "style", ""))
	if style&StyleInvisible != 0 {
		return
	}
	j.scope = ScopeNode
	j.renderer.BeginNode(n.Name())
	defer j.renderer.EndNode()

	anchored := j.beginAnchorFor(n.GetStr(j.Graph, "href", n.GetStr(j.Graph, "URL", "")),
		n.GetStr(j.Graph, "tooltip", ""), n.GetStr(j.Graph, "target", ""), n.Name())

	pen := j.penFor(style, n.GetStr(j.Graph, "color", "black"), n.GetStr(j.Graph, "fillcolor", ""))
	pen.Width = penwidth(n.GetStr(j.Graph, "penwidth", ""))
	w, h := n.Size(j.Graph)

	switch n.GetStr(j.Graph, "shape", "ellipse") {
	case "box", "rect", "rectangle", "square", "record", "Mrecord":
		b := geom.Rect(pos.X-w/2, pos.Y-h/2, pos.X+w/2, pos.Y+h/2)
		j.renderer.Polygon(j.xformAll(boxVerts(b)), pen)
	case "point":
		j.renderer.Ellipse(j.xform(pos), 2*j.coordScale(), 2*j.coordScale(), pen)
	default:
		j.renderer.Ellipse(j.xform(pos), w/2*j.coordScale(), h/2*j.coordScale(), pen)
	}

	j.emitLabel(labelOf(j.Graph, n), pos, n.GetStr(j.Graph, "fontname", "Times-Roman"),
		n.GetStr(j.Graph, "fontcolor", "black"), fontsize(n.GetStr(j.Graph, "fontsize", "")))

	if anchored {
		j.renderer.EndAnchor()
	}
}

func (j *Job) emitEdge(e *graph.Edge) {
	if e.Spline == nil {
		return
	}
	style := styleOf(e.GetStr(j.Graph, "style", ""))
	if style&StyleInvisible != 0 {
		return
	}
	j.scope = ScopeEdge
	j.renderer.BeginEdge(e.Tail().Name(), e.Head().Name())
	defer j.renderer.EndEdge()

	anchored := j.beginAnchorFor(e.GetStr(j.Graph, "href", e.GetStr(j.Graph, "URL", "")),
		e.GetStr(j.Graph, "tooltip", ""), e.GetStr(j.Graph, "target", ""), "")

	pen := j.penFor(style, e.GetStr(j.Graph, "color", "black"), "")
	pen.Width = penwidth(e.GetStr(j.Graph, "penwidth", ""))

	bz := *e.Spline
	bz.Points = j.xformAll(bz.Points)
	if bz.SP != nil {
		sp := j.xform(*e.Spline.SP)
		bz.SP = &sp
	}
	if bz.EP != nil {
		ep := j.xform(*e.Spline.EP)
		bz.EP = &ep
	}
	j.renderer.Bezier(bz, pen)

	if v, ok := e.Get(j.Graph, "label"); ok && v.IsSet() && !v.IsHTML() {
		at := splineMidpoint(e.Spline)
		j.scope = ScopeLabel
		j.renderer.Textspan(TextSpan{
			Text:  v.String(),
			At:    j.xform(at),
			Font:  htmllabel.Font{Face: e.GetStr(j.Graph, "fontname", "Times-Roman"), Size: fontsize(e.GetStr(j.Graph, "fontsize", ""))},
			Align: htmllabel.AlignCenter,
		}, pen)
	}

	if anchored {
		j.renderer.EndAnchor()
	}
}

func (j *Job) beginAnchorFor(href, tooltip, target, id string) bool {
	if href == "" {
		return false
	}
	j.scope = ScopeAnchor
	j.renderer.BeginAnchor(Anchor{Href: href, Tooltip: tooltip, Target: target, ID: id})
	return true
}

// emitLabel renders a node label: plain text becomes one centered span,
// HTML labels flatten into one span per text line stacked top to bottom.
func (j *Job) emitLabel(lbl *htmllabel.Label, at geom.Point, face, color string, size float64) {
	if lbl == nil {
		return
	}
	j.scope = ScopeLabel
	pen := Pen{Color: ResolveColor(color)}

	var lines []htmllabel.Span
	switch {
	case lbl.Text != nil:
		lines = lbl.Text.Spans
	case lbl.Table != nil:
		lines = flattenTable(lbl.Table)
	}
	offset := float64(len(lines)-1) / 2
	for i, span := range lines {
		f := span.Font
		if f.Face == "" {
			f.Face = face
		}
		if f.Size == 0 {
			f.Size = size
		}
		p := geom.Pt(at.X, at.Y+(offset-float64(i))*f.Size*1.2)
		j.renderer.Textspan(TextSpan{Text: span.Text, At: j.xform(p), Font: f, Align: htmllabel.AlignCenter}, pen)
	}
}

func flattenTable(t *htmllabel.Table) []htmllabel.Span {
	var out []htmllabel.Span
	for _, row := range t.Body {
		var texts []string
		for _, cell := range row.Cells {
			switch {
			case cell.Text != nil:
				for _, s := range cell.Text.Spans {
					texts = append(texts, s.Text)
				}
			case cell.Table != nil:
				for _, s := range flattenTable(cell.Table) {
					texts = append(texts, s.Text)
				}
			}
		}
		out = append(out, htmllabel.Span{Text: strings.Join(texts, " ")})
	}
	return out
}

// labelOf parses the node's label attribute; the node name is the implicit
// default label.
func labelOf(g *graph.Graph, n *graph.Node) *htmllabel.Label {
	v, ok := n.Get(g, "label")
	if !ok {
		return &htmllabel.Label{Text: &htmllabel.Text{Spans: []htmllabel.Span{{Text: n.Name()}}}}
	}
	if v.IsHTML() {
		lbl, err := htmllabel.Parse(v.String())
		if err != nil {
			return nil
		}
		return lbl
	}
	text := v.String()
	if text == "\\N" {
		text = n.Name()
	}
	return &htmllabel.Label{Text: &htmllabel.Text{Spans: []htmllabel.Span{{Text: text}}}}
}

func (j *Job) penFor(style Style, color, fill string) Pen {
	pen := Pen{
		Color: ResolveColor(color),
		Style: style,
		Width: 1,
	}
	if fill != "" {
		pen.FillColor = ResolveColor(fill)
		pen.Style |= StyleFilled
	}
	return pen
}

// coordScale is the scalar part of the transform, used for radii.
func (j *Job) coordScale() float64 {
	if j.plugin.Flags&RawCoordinates != 0 {
		return 1
	}
	return j.Zoom * j.Scale
}

func styleOf(s string) Style {
	var out Style
	for _, part := range strings.Split(s, ",") {
		switch strings.TrimSpace(strings.ToLower(part)) {
		case "dashed":
			out |= StyleDashed
		case "dotted":
			out |= StyleDotted
		case "bold":
			out |= StyleBold
		case "filled":
			out |= StyleFilled
		case "rounded":
			out |= StyleRounded
		case "radial":
			out |= StyleRadial
		case "invis", "invisible":
			out |= StyleInvisible
		}
	}
	return out
}

func penwidth(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f <= 0 {
		return 1
	}
	return f
}

func fontsize(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f <= 0 {
		return 14
	}
	return f
}

func boxVerts(b geom.Box) []geom.Point {
	return []geom.Point{
		b.LL,
		{X: b.LL.X, Y: b.UR.Y},
		b.UR,
		{X: b.UR.X, Y: b.LL.Y},
	}
}

func splineMidpoint(bz *geom.Bezier) geom.Point {
	if bz.Segments() == 0 {
		if len(bz.Points) > 0 {
			return bz.Points[0]
		}
		return geom.Point{}
	}
	seg := bz.Segments() / 2
	t := 0.5
	if bz.Segments()%2 == 0 {
		t = 0
	}
	if seg >= bz.Segments() {
		seg = bz.Segments() - 1
	}
	return bz.Eval(seg, t)
}
