package render

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hverr/gviz/geom"
	"github.com/hverr/gviz/graph"
)

func TestRegistrySelect(t *testing.T) {
	r := &Registry{}
	mk := func() Renderer { return &mapRenderer{} }
	r.Register(&Plugin{Name: "svg", Renderer: "native", Library: "core", Quality: 1, New: func(s *Sink) Renderer { return mk() }})
	r.Register(&Plugin{Name: "svg", Renderer: "cairo", Library: "ext", Quality: 5, New: func(s *Sink) Renderer { return mk() }})
	r.Register(&Plugin{Name: "png", Renderer: "cairo", Library: "ext", Quality: 5, New: func(s *Sink) Renderer { return mk() }})

	t.Run("CaseInsensitiveName", func(t *testing.T) {
		p, err := r.Select("SVG")
		require.NoError(t, err)
		assert.Equal(t, "cairo", p.Renderer, "highest quality wins")
	})

	t.Run("RendererRefinement", func(t *testing.T) {
		p, err := r.Select("svg:NATIVE")
		require.NoError(t, err)
		assert.Equal(t, "native", p.Renderer)
	})

	t.Run("LibraryRefinement", func(t *testing.T) {
		p, err := r.Select("svg:cairo:ext")
		require.NoError(t, err)
		assert.Equal(t, "ext", p.Library)
	})

	t.Run("LastInstallWinsTies", func(t *testing.T) {
		r2 := &Registry{}
		r2.Register(&Plugin{Name: "x", Renderer: "first", Quality: 1, New: func(s *Sink) Renderer { return mk() }})
		r2.Register(&Plugin{Name: "x", Renderer: "second", Quality: 1, New: func(s *Sink) Renderer { return mk() }})
		p, err := r2.Select("x")
		require.NoError(t, err)
		assert.Equal(t, "second", p.Renderer)
	})

	t.Run("NoSupport", func(t *testing.T) {
		_, err := r.Select("pdf")
		var ns ErrNoSupport
		require.ErrorAs(t, err, &ns)
		assert.Equal(t, "pdf", ns.Format)
	})

	t.Run("ListDeduplicates", func(t *testing.T) {
		assert.Equal(t, []string{"png", "svg"}, r.List())
	})
}

func TestDefaultRegistryShipsImageMaps(t *testing.T) {
	for _, format := range []string{"cmap", "cmapx", "imap", "ismap"} {
		_, err := Default().Select(format)
		assert.NoError(t, err, "format %s", format)
	}
}

func TestResolveColor(t *testing.T) {
	tests := map[string]struct {
		in   string
		want Color
	}{
		"PaletteName":    {in: "red", want: Color{255, 0, 0, 255}},
		"PaletteCase":    {in: "RED", want: Color{255, 0, 0, 255}},
		"Hex":            {in: "#102030", want: Color{16, 32, 48, 255}},
		"HexAlpha":       {in: "#10203040", want: Color{16, 32, 48, 64}},
		"HSVRed":         {in: "0,1,1", want: Color{255, 0, 0, 255}},
		"HSVGray":        {in: "0.5,0,0.5", want: Color{128, 128, 128, 255}},
		"ListFirstStop":  {in: "blue;0.5:red", want: Color{0, 0, 255, 255}},
		"UnknownIsBlack": {in: "nonesuchcolor", want: Black},
		"EmptyIsBlack":   {in: "", want: Black},
		"MalformedHex":   {in: "#12", want: Black},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got := ResolveColor(test.in)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("ResolveColor(%q) mismatch (-want +got):\n%s", test.in, diff)
			}
		})
	}
}

func TestSink(t *testing.T) {
	t.Run("Direct", func(t *testing.T) {
		var buf bytes.Buffer
		s := NewSink(&buf)
		_, err := s.WriteString("hello")
		require.NoError(t, err)
		require.NoError(t, s.Close())
		assert.Equal(t, "hello", buf.String())
	})

	t.Run("Buffer", func(t *testing.T) {
		s := NewBufferSink()
		_, err := s.WriteString("data")
		require.NoError(t, err)
		require.NoError(t, s.Close())
		b := s.Bytes()
		assert.Equal(t, byte(0), b[len(b)-1], "buffer output is NUL-terminated")
		assert.Equal(t, "data", string(b[:len(b)-1]))
	})

	t.Run("Callback", func(t *testing.T) {
		var got []byte
		s := NewCallbackSink(func(p []byte) (int, error) {
			got = append(got, p...)
			return len(p), nil
		})
		_, err := s.WriteString("cb")
		require.NoError(t, err)
		assert.Equal(t, "cb", string(got))
	})

	t.Run("GzipRoundTrips", func(t *testing.T) {
		var buf bytes.Buffer
		s := NewSink(&buf)
		s.Compress()
		_, err := s.WriteString("compressed payload")
		require.NoError(t, err)
		require.NoError(t, s.Close(), "close writes the CRC32 and length trailer")

		zr, err := gzip.NewReader(&buf)
		require.NoError(t, err)
		out, err := io.ReadAll(zr)
		require.NoError(t, err, "trailer checksum validates")
		assert.Equal(t, "compressed payload", string(out))
	})
}

func laidOutGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.Open("demo", graph.Directed)
	a := g.AddNode("a")
	b := g.AddNode("b")
	a.SetPos(geom.Pt(30, 30))
	b.SetPos(geom.Pt(230, 30))
	a.Set("href", graph.StringValue("https://example.org/a"))
	a.Set("tooltip", graph.StringValue("node a"))
	e := g.AddEdge(a, b, "")
	bz := geom.PolylineToBezier([]geom.Point{{X: 57, Y: 30}, {X: 203, Y: 30}})
	e.Spline = &bz
	e.Set("href", graph.StringValue("https://example.org/e"))
	return g
}

func TestImageMapDevice(t *testing.T) {
	t.Run("Cmapx", func(t *testing.T) {
		g := laidOutGraph(t)
		defer g.Close()
		var buf bytes.Buffer
		require.NoError(t, Render(g, "cmapx", &buf))

		out := buf.String()
		assert.True(t, strings.HasPrefix(out, `<map id="demo" name="demo">`), "got %q", out)
		assert.Contains(t, out, `href="https://example.org/a"`)
		assert.Contains(t, out, `title="node a"`)
		assert.Contains(t, out, `href="https://example.org/e"`)
		assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</map>"))
	})

	t.Run("CmapHasNoWrapper", func(t *testing.T) {
		g := laidOutGraph(t)
		defer g.Close()
		var buf bytes.Buffer
		require.NoError(t, Render(g, "cmap", &buf))
		assert.NotContains(t, buf.String(), "<map")
		assert.Contains(t, buf.String(), `<area shape="rect"`)
	})

	t.Run("AnchorCoordinatesCoverTheNode", func(t *testing.T) {
		g := laidOutGraph(t)
		defer g.Close()
		var buf bytes.Buffer
		require.NoError(t, Render(g, "cmap", &buf))

		// node a is centered at (30,30), 54x36 points, translated so the
		// drawing's lower-left (3,12) is the origin: its circle area is
		// centered at (27,18) with radius 27
		assert.Contains(t, buf.String(), "coords=")
		assert.Contains(t, buf.String(), `coords="27,18,27"`)
	})

	t.Run("EllipticalNodesBecomeCircleAreas", func(t *testing.T) {
		g := laidOutGraph(t)
		defer g.Close()
		var buf bytes.Buffer
		require.NoError(t, Render(g, "cmap", &buf))

		// node a keeps the default ellipse shape, the edge stays a rect
		assert.Contains(t, buf.String(), `<area shape="circle"`)
		assert.Contains(t, buf.String(), `<area shape="rect"`)
	})

	t.Run("BoxNodesBecomePolyAreas", func(t *testing.T) {
		g := laidOutGraph(t)
		defer g.Close()
		g.Node("a").Set("shape", graph.StringValue("box"))
		var buf bytes.Buffer
		require.NoError(t, Render(g, "cmap", &buf))

		out := buf.String()
		assert.Contains(t, out, `<area shape="poly"`)
		// four clockwise vertices make eight coordinates
		for _, line := range strings.Split(out, "\n") {
			if !strings.Contains(line, `shape="poly"`) {
				continue
			}
			i := strings.Index(line, `coords="`)
			require.GreaterOrEqual(t, i, 0)
			coords := line[i+len(`coords="`):]
			coords = coords[:strings.IndexByte(coords, '"')]
			assert.Len(t, strings.Split(coords, ","), 8)
		}
	})

	t.Run("ImapDialectShapes", func(t *testing.T) {
		g := laidOutGraph(t)
		defer g.Close()
		var buf bytes.Buffer
		require.NoError(t, Render(g, "imap", &buf))

		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "base referer\n"), "got %q", out)
		assert.Contains(t, out, "circle https://example.org/a ")
		assert.Contains(t, out, "rect https://example.org/e ")
	})

	t.Run("UnanchoredObjectsEmitNothing", func(t *testing.T) {
		g := graph.Open("", graph.Directed)
		defer g.Close()
		g.AddNode("lonely").SetPos(geom.Pt(0, 0))
		var buf bytes.Buffer
		require.NoError(t, Render(g, "cmap", &buf))
		assert.Empty(t, strings.TrimSpace(buf.String()))
	})
}

func TestStyleParsing(t *testing.T) {
	s := styleOf("dashed, bold,invis")
	assert.NotZero(t, s&StyleDashed)
	assert.NotZero(t, s&StyleBold)
	assert.NotZero(t, s&StyleInvisible)
	assert.Zero(t, s&StyleDotted)
}

func TestJobTransform(t *testing.T) {
	g := graph.Open("", graph.Directed)
	defer g.Close()
	g.AddNode("a").SetPos(geom.Pt(100, 50))

	j := &Job{Graph: g, Zoom: 1, Scale: 1, plugin: &Plugin{}}
	j.setupTransform()

	// the lower-left of the drawing maps to the origin
	bb := g.BoundingBox()
	p := j.transform(bb.LL)
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)

	t.Run("Rotation", func(t *testing.T) {
		g.Set(graph.KindGraph, "rotate", graph.IntValue(90))
		j2 := &Job{Graph: g, Zoom: 1, Scale: 1, plugin: &Plugin{}}
		j2.setupTransform()
		assert.True(t, j2.Rotate)
		q := j2.transform(bb.UR)
		assert.InDelta(t, bb.Height(), q.X, 1e-9)
		assert.InDelta(t, -bb.Width(), q.Y, 1e-9)
	})
}
