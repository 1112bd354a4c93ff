package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"

	"github.com/hverr/gviz/internal/emit"
)

// Color is a resolved RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Black is the fallback for unresolvable colors.
var Black = Color{A: 255}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// knownPalette is the built-in named palette consulted before the full
// color-translation pass.
var knownPalette = map[string]Color{
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 255, 0, 255},
	"blue":        {0, 0, 255, 255},
	"yellow":      {255, 255, 0, 255},
	"cyan":        {0, 255, 255, 255},
	"magenta":     {255, 0, 255, 255},
	"gray":        {192, 192, 192, 255},
	"grey":        {192, 192, 192, 255},
	"lightgray":   {211, 211, 211, 255},
	"lightgrey":   {211, 211, 211, 255},
	"darkgray":    {169, 169, 169, 255},
	"orange":      {255, 165, 0, 255},
	"purple":      {160, 32, 240, 255},
	"brown":       {165, 42, 42, 255},
	"pink":        {255, 192, 203, 255},
	"lightblue":   {173, 216, 230, 255},
	"lightyellow": {255, 255, 224, 255},
	"navy":        {0, 0, 128, 255},
	"aliceblue":   {240, 248, 255, 255},
	"crimson":     {220, 20, 60, 255},
	"gold":        {255, 215, 0, 255},
	"indigo":      {75, 0, 130, 255},
	"ivory":       {255, 255, 240, 255},
	"khaki":       {240, 230, 140, 255},
	"lavender":    {230, 230, 250, 255},
	"maroon":      {176, 48, 96, 255},
	"olive":       {128, 128, 0, 255},
	"salmon":      {250, 128, 114, 255},
	"silver":      {192, 192, 192, 255},
	"tan":         {210, 180, 140, 255},
	"teal":        {0, 128, 128, 255},
	"tomato":      {255, 99, 71, 255},
	"violet":      {238, 130, 238, 255},
	"wheat":       {245, 222, 179, 255},
}

// colorCache memoizes full translation passes across jobs.
var colorCache, _ = lru.New[string, Color](512)

// ResolveColor translates a color specification: a palette name, #RRGGBB,
// #RRGGBBAA, "H,S,V" with components in [0,1], or a color list with stops
// ("c1;f1:c2"), whose first entry wins for flat fills. Unknown colors warn
// once per run and resolve to black.
func ResolveColor(spec string) Color {
	s := strings.TrimSpace(spec)
	if s == "" {
		return Black
	}
	if c, ok := knownPalette[strings.ToLower(s)]; ok {
		return c
	}
	if c, ok := colorCache.Get(s); ok {
		return c
	}
	c, ok := translateColor(s)
	if !ok {
		emit.Oncef(log.Fields{"color": spec}, fmt.Sprintf("unknown color %q, using black", spec))
		return Black
	}
	colorCache.Add(s, c)
	return c
}

func translateColor(s string) (Color, bool) {
	// a color list resolves to its first stop
	if i := strings.IndexByte(s, ':'); i >= 0 {
		first := s[:i]
		if j := strings.IndexByte(first, ';'); j >= 0 {
			first = first[:j]
		}
		return translateColor(strings.TrimSpace(first))
	}
	if c, ok := knownPalette[strings.ToLower(s)]; ok {
		return c, true
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s)
	}
	if c, ok := parseHSV(s); ok {
		return c, true
	}
	return Black, false
}

func parseHex(s string) (Color, bool) {
	hex := s[1:]
	if len(hex) != 6 && len(hex) != 8 {
		return Black, false
	}
	v, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return Black, false
	}
	if len(hex) == 8 {
		return Color{
			R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v),
		}, true
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

// parseHSV accepts "h,s,v" or "h s v" with components in [0,1].
func parseHSV(s string) (Color, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != 3 {
		return Black, false
	}
	var hsv [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil || v < 0 || v > 1 {
			return Black, false
		}
		hsv[i] = v
	}
	return hsvToRGB(hsv[0], hsv[1], hsv[2]), true
}

func hsvToRGB(h, s, v float64) Color {
	if s == 0 {
		g := uint8(math.Round(v * 255))
		return Color{R: g, G: g, B: g, A: 255}
	}
	h = math.Mod(h, 1) * 6
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return Color{
		R: uint8(math.Round(r * 255)),
		G: uint8(math.Round(g * 255)),
		B: uint8(math.Round(b * 255)),
		A: 255,
	}
}
