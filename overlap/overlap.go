// Package overlap removes node-node overlaps after layout. The strategy is
// selected by the graph's overlap attribute; every mode leaves node order
// intact as far as the strategy allows. The scale, nscale, voronoi, prism,
// ortho and vpsc modes terminate with zero pairwise overlap for
// non-degenerate input; none leaves the positions as they are, and compress
// never enlarges the layout, so overlaps that need expansion remain.
package overlap

import (
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/hverr/gviz/geom"
	"github.com/hverr/gviz/graph"
)

// Margin is the sep/esep pad specification [+]x[,y]: additive padding in
// points when Add is set, multiplicative scaling otherwise.
type Margin struct {
	X, Y float64
	Add  bool
}

// DefaultSep is the conventional node separation margin: 4 additive points.
var DefaultSep = Margin{X: 4, Y: 4, Add: true}

// ParseSep parses a pad specification. Missing y reuses x; malformed input
// returns the default.
func ParseSep(s string, def Margin) Margin {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	m := Margin{}
	if strings.HasPrefix(s, "+") {
		m.Add = true
		s = s[1:]
	}
	parts := strings.SplitN(s, ",", 2)
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return def
	}
	m.X = x
	m.Y = x
	if len(parts) == 2 {
		y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return def
		}
		m.Y = y
	}
	return m
}

// Grow expands a node box by the margin.
func (m Margin) Grow(b geom.Box) geom.Box {
	if m.Add {
		return b.Expand(m.X, m.Y)
	}
	w := b.Width() * m.X
	h := b.Height() * m.Y
	c := b.Center()
	return geom.Rect(c.X-w/2, c.Y-h/2, c.X+w/2, c.Y+h/2)
}

// site is the working representation: a center plus half extents after
// margin expansion.
type site struct {
	pos  geom.Point
	hw   float64
	hh   float64
	node *graph.Node
}

func collect(g *graph.Graph, m Margin) []site {
	var out []site
	for _, n := range g.Nodes() {
		p, ok := n.Pos(g)
		if !ok {
			continue
		}
		w, h := n.Size(g)
		b := m.Grow(geom.Rect(p.X-w/2, p.Y-h/2, p.X+w/2, p.Y+h/2))
		out = append(out, site{pos: p, hw: b.Width() / 2, hh: b.Height() / 2, node: n})
	}
	return out
}

func (s site) box() geom.Box {
	return geom.Rect(s.pos.X-s.hw, s.pos.Y-s.hh, s.pos.X+s.hw, s.pos.Y+s.hh)
}

func countOverlaps(sites []site) int {
	var c int
	for i := range sites {
		for j := i + 1; j < len(sites); j++ {
			if sites[i].box().Overlaps(sites[j].box()) {
				c++
			}
		}
	}
	return c
}

// Remove applies the overlap-removal mode named by the graph's overlap
// attribute (default none) using the sep attribute's margin. Unknown modes
// warn and fall back to scale. When overlaps remain after the voronoi,
// prism, ortho or vpsc passes, those modes finish with the scale strategy;
// no warning is logged for that.
func Remove(g *graph.Graph) {
	mode := strings.ToLower(g.Root().GetStr(graph.KindGraph, "overlap", ""))
	RemoveMode(g, mode)
}

// RemoveMode is Remove with an explicit mode. Margins always resolve at the
// root graph, also when g is a component subgraph.
func RemoveMode(g *graph.Graph, mode string) {
	sep := ParseSep(g.Root().GetStr(graph.KindGraph, "sep", ""), DefaultSep)
	sites := collect(g, sep)
	if len(sites) < 2 {
		return
	}

	switch mode {
	case "", "none", "true":
		return
	case "voronoi":
		voronoiRemoval(sites)
	case "scale", "oscale":
		scaleRemoval(sites)
	case "nscale":
		nscaleRemoval(sites, false)
	case "compress":
		nscaleRemoval(sites, true)
	case "prism":
		prismRemoval(sites)
	case "orthoxy", "ortho", "ortho_yx":
		orthoRemoval(sites)
	case "vpsc", "ipsep":
		// ipsep degrades gracefully to the vpsc solver
		vpscRemoval(sites)
	default:
		log.WithFields(log.Fields{"overlap": mode}).Warn("unknown overlap mode, falling back to scale")
		scaleRemoval(sites)
	}

	for _, s := range sites {
		s.node.SetPos(s.pos)
	}
}
