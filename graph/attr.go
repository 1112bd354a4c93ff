package graph

import (
	"sort"

	"github.com/hverr/gviz/internal/emit"
)

// Symbol is one attribute dictionary entry: a name bound to a dense slot in
// every object's value array, together with the default value at some graph
// level.
type Symbol struct {
	Name string
	// Slot is the dense index into object value arrays. Symbols overriding a
	// default at a subgraph level share the slot of the root symbol.
	Slot int
	// Default is the value objects fall back to when no local value is set.
	Default Value
	// Print controls whether the symbol is written on serialization.
	Print bool
	// Fixed prevents nested subgraphs from overriding the default.
	Fixed bool
}

// dict is an ordered-by-name attribute dictionary with a viewpath: a lookup
// that misses locally continues in the parent view up to the root.
type dict struct {
	parent   *dict
	root     *dict
	entries  map[string]*Symbol
	nextSlot int // root only
}

func newDict() *dict {
	d := &dict{entries: make(map[string]*Symbol)}
	d.root = d
	return d
}

func newDictView(parent *dict) *dict {
	return &dict{parent: parent, root: parent.root, entries: make(map[string]*Symbol)}
}

// lookup walks the viewpath and returns the nearest symbol for name.
func (d *dict) lookup(name string) *Symbol {
	for cur := d; cur != nil; cur = cur.parent {
		if sym, ok := cur.entries[name]; ok {
			return sym
		}
	}
	return nil
}

// declare installs or updates the default for name at this dictionary's
// level. New names allocate a dense slot at the root.
func (d *dict) declare(name string, def Value) *Symbol {
	if sym, ok := d.entries[name]; ok {
		sym.Default = def
		return sym
	}
	inherited := d.lookup(name)
	if inherited != nil && inherited.Fixed {
		return inherited
	}
	sym := &Symbol{Name: name, Default: def, Print: true}
	if inherited != nil {
		sym.Slot = inherited.Slot
	} else {
		sym.Slot = d.root.nextSlot
		d.root.nextSlot++
	}
	d.entries[name] = sym
	return sym
}

// symbols returns this level's symbols ordered by name.
func (d *dict) symbols() []*Symbol {
	out := make([]*Symbol, 0, len(d.entries))
	for _, sym := range d.entries {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Attrs is a per-object dense value array indexed by symbol slot.
type Attrs struct {
	vals []Value
}

func newAttrs(d *dict) Attrs {
	return Attrs{vals: make([]Value, d.root.nextSlot)}
}

func (a *Attrs) get(slot int) Value {
	if slot >= len(a.vals) {
		return Value{}
	}
	return a.vals[slot]
}

func (a *Attrs) set(slot int, v Value) {
	for slot >= len(a.vals) {
		a.vals = append(a.vals, Value{})
	}
	a.vals[slot] = v
}

// release drops interner references held by string values.
func (a *Attrs) release(t *interner) {
	for i, v := range a.vals {
		if v.kind == ValueString || v.kind == ValueHTML {
			t.release(v.str)
		}
		a.vals[i] = Value{}
	}
}

// internValue routes string storage through the root interner.
func (g *Graph) internValue(v Value) Value {
	switch v.kind {
	case ValueString:
		v.str = g.root.interner.intern(v.str.s, false)
	case ValueHTML:
		v.str = g.root.interner.intern(v.str.s, true)
	}
	return v
}

// DeclareAttr registers the attribute for the given object kind at g's
// level, or updates its default there. Registering a new name grows every
// existing object's value array on demand; objects without a local value
// read the default through the dictionary viewpath.
//
// Setting "layout" anywhere but the root graph is a warning and a no-op.
func (g *Graph) DeclareAttr(kind Kind, name string, def Value) *Symbol {
	if kind == KindGraph && name == "layout" && !g.IsMain() {
		emit.Once("layout attribute is only honored on the root graph")
		return g.dicts[kind].lookup(name)
	}
	return g.dicts[kind].declare(name, g.internValue(def))
}

// AttrSymbol returns the nearest symbol for name visible from g, or nil.
func (g *Graph) AttrSymbol(kind Kind, name string) *Symbol {
	return g.dicts[kind].lookup(name)
}

// Set assigns a graph attribute on g itself, registering the symbol at g's
// level with an empty default if it is new.
func (g *Graph) Set(kind Kind, name string, v Value) {
	if kind == KindGraph && name == "layout" && !g.IsMain() {
		emit.Once("layout attribute is only honored on the root graph")
		return
	}
	sym := g.dicts[kind].lookup(name)
	if sym == nil {
		sym = g.dicts[kind].declare(name, Value{})
	}
	if kind == KindGraph {
		old := g.attrs.get(sym.Slot)
		if old.kind == ValueString || old.kind == ValueHTML {
			g.root.interner.release(old.str)
		}
		g.attrs.set(sym.Slot, g.internValue(v))
		for _, o := range g.observers() {
			o.AttrUpdated(g, sym)
		}
		return
	}
	// for node/edge kinds a bare Set on the graph updates the default
	sym.Default = g.internValue(v)
}

// Get returns g's own value for the graph attribute, falling back to the
// defaults visible through the viewpath. The second result reports whether
// any value, local or default, was found.
func (g *Graph) Get(kind Kind, name string) (Value, bool) {
	sym := g.dicts[kind].lookup(name)
	if sym == nil {
		return Value{}, false
	}
	if kind == KindGraph {
		if v := g.attrs.get(sym.Slot); v.IsSet() {
			return v, true
		}
	}
	if !sym.Default.IsSet() {
		return Value{}, false
	}
	return sym.Default, true
}

// GetStr is Get reduced to the textual form with a default.
func (g *Graph) GetStr(kind Kind, name, def string) string {
	v, ok := g.Get(kind, name)
	if !ok {
		return def
	}
	return v.String()
}

// Set assigns a local attribute value on the node, registering the symbol
// at the root with an empty default if it is new.
func (n *Node) Set(name string, v Value) {
	r := n.root
	sym := r.dicts[KindNode].lookup(name)
	if sym == nil {
		sym = r.dicts[KindNode].declare(name, Value{})
	}
	old := n.attrs.get(sym.Slot)
	if old.kind == ValueString || old.kind == ValueHTML {
		r.interner.release(old.str)
	}
	n.attrs.set(sym.Slot, r.internValue(v))
	for _, o := range r.observers() {
		o.AttrUpdated(n, sym)
	}
}

// Get returns the node's value for name as seen from g: the local slot
// first, then the default visible through g's dictionary viewpath.
func (n *Node) Get(g *Graph, name string) (Value, bool) {
	sym := g.dicts[KindNode].lookup(name)
	if sym == nil {
		return Value{}, false
	}
	if v := n.attrs.get(sym.Slot); v.IsSet() {
		return v, true
	}
	if !sym.Default.IsSet() {
		return Value{}, false
	}
	return sym.Default, true
}

// GetStr is Get reduced to the textual form with a default.
func (n *Node) GetStr(g *Graph, name, def string) string {
	v, ok := n.Get(g, name)
	if !ok {
		return def
	}
	return v.String()
}

// Set assigns a local attribute value on the edge.
func (e *Edge) Set(name string, v Value) {
	r := e.root
	sym := r.dicts[KindEdge].lookup(name)
	if sym == nil {
		sym = r.dicts[KindEdge].declare(name, Value{})
	}
	old := e.attrs.get(sym.Slot)
	if old.kind == ValueString || old.kind == ValueHTML {
		r.interner.release(old.str)
	}
	e.attrs.set(sym.Slot, r.internValue(v))
	for _, o := range r.observers() {
		o.AttrUpdated(e, sym)
	}
}

// Get returns the edge's value for name as seen from g.
func (e *Edge) Get(g *Graph, name string) (Value, bool) {
	sym := g.dicts[KindEdge].lookup(name)
	if sym == nil {
		return Value{}, false
	}
	if v := e.attrs.get(sym.Slot); v.IsSet() {
		return v, true
	}
	if !sym.Default.IsSet() {
		return Value{}, false
	}
	return sym.Default, true
}

// GetStr is Get reduced to the textual form with a default.
func (e *Edge) GetStr(g *Graph, name, def string) string {
	v, ok := e.Get(g, name)
	if !ok {
		return def
	}
	return v.String()
}

// localValue exposes an object's local slot without default fallback. The
// serializer uses it to write only values that differ from the visible
// default.
func (n *Node) localValue(sym *Symbol) Value  { return n.attrs.get(sym.Slot) }
func (e *Edge) localValue(sym *Symbol) Value  { return e.attrs.get(sym.Slot) }
func (g *Graph) localValue(sym *Symbol) Value { return g.attrs.get(sym.Slot) }
