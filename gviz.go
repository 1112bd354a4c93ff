package gviz

import (
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/hverr/gviz/graph"
	"github.com/hverr/gviz/internal/emit"
	"github.com/hverr/gviz/layout"
	"github.com/hverr/gviz/overlap"
	"github.com/hverr/gviz/pack"
	"github.com/hverr/gviz/render"
	"github.com/hverr/gviz/route"
)

// Layout runs the geometric pipeline on a parsed graph: force-directed
// placement, overlap removal, edge routing, and component packing when the
// graph is disconnected. The results land in the model: node pos
// attributes and edge splines.
func Layout(g *graph.Graph) error {
	if engine := strings.ToLower(g.GetStr(graph.KindGraph, "layout", "")); engine != "" {
		switch engine {
		case "sfdp", "fdp", "neato":
			// all map onto the spring-electrical engine
		default:
			emit.Oncef(log.Fields{"layout": engine},
				"unsupported layout engine requested, using the spring-electrical engine")
		}
	}

	ctrl := layout.DefaultControl()

	comps := pack.Components(g)
	if len(comps) > 1 && packEnabled(g) {
		for _, c := range comps {
			if err := layout.Layout(c, ctrl); err != nil {
				return err
			}
			overlap.Remove(c)
			route.Edges(c)
		}
		pack.Graphs(g, comps)
		return nil
	}

	if err := layout.Layout(g, ctrl); err != nil {
		return err
	}
	overlap.Remove(g)
	route.Edges(g)
	return nil
}

// packEnabled reports whether disconnected components should be packed,
// which is the default; pack=false opts out.
func packEnabled(g *graph.Graph) bool {
	v, ok := g.Get(graph.KindGraph, "pack")
	if !ok {
		return true
	}
	s := strings.ToLower(v.String())
	return s != "false" && s != "0"
}

// Draw is the whole pipeline: layout the parsed graph and render it to w
// in the requested output format.
func Draw(g *graph.Graph, format string, w io.Writer) error {
	if err := Layout(g); err != nil {
		return err
	}
	return render.Render(g, format, w)
}

// ParseAndDraw reads one graph from r and draws it to w.
func ParseAndDraw(r io.Reader, format string, w io.Writer) error {
	g, err := Parse(r)
	if err != nil {
		return err
	}
	defer g.Close()
	return Draw(g, format, w)
}
