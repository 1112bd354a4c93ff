package graph

import (
	"fmt"
	"io"
	"strings"

	"github.com/hverr/gviz/token"
)

// Write serializes the graph in canonical textual form. Only attribute
// values that differ from the default visible at the enclosing scope are
// written, so parsing the output reconstructs an isomorphic graph.
func (g *Graph) Write(w io.Writer) error {
	wr := &writer{w: w, doneN: map[*Node]bool{}, doneE: map[*Edge]bool{}}
	wr.graph(g)
	return wr.err
}

// String returns the canonical textual form of the graph.
func (g *Graph) String() string {
	var sb strings.Builder
	_ = g.Write(&sb)
	return sb.String()
}

type writer struct {
	w     io.Writer
	err   error
	depth int
	doneN map[*Node]bool
	doneE map[*Edge]bool
}

func (wr *writer) printf(format string, args ...any) {
	if wr.err != nil {
		return
	}
	_, wr.err = fmt.Fprintf(wr.w, format, args...)
}

func (wr *writer) indent() {
	wr.printf("%s", strings.Repeat("\t", wr.depth))
}

func (wr *writer) graph(g *Graph) {
	wr.indent()
	if g.IsMain() {
		if g.IsStrict() {
			wr.printf("strict ")
		}
		if g.IsDirected() {
			wr.printf("digraph ")
		} else {
			wr.printf("graph ")
		}
		if g.name != "" {
			wr.printf("%s ", quote(g.name))
		}
	} else {
		if strings.HasPrefix(g.name, "%") { // implicit local name
			wr.printf("subgraph ")
		} else {
			wr.printf("subgraph %s ", quote(g.name))
		}
	}
	wr.printf("{\n")
	wr.depth++
	wr.body(g)
	wr.depth--
	wr.indent()
	wr.printf("}")
	if !g.IsMain() {
		wr.printf(";")
	}
	wr.printf("\n")
}

func (wr *writer) body(g *Graph) {
	wr.attrStmts(g)
	for _, sub := range g.Subgraphs() {
		wr.graph(sub)
	}
	for _, n := range g.Nodes() {
		if wr.doneN[n] || !wr.nodeBelongsHere(g, n) {
			continue
		}
		wr.doneN[n] = true
		wr.node(g, n)
	}
	for _, e := range g.Edges() {
		if wr.doneE[e] {
			continue
		}
		wr.doneE[e] = true
		wr.edge(g, e)
	}
}

// nodeBelongsHere reports whether the node should be declared in g rather
// than one of g's subgraphs, which is the case when no subgraph contains it.
func (wr *writer) nodeBelongsHere(g *Graph, n *Node) bool {
	for _, sub := range g.Subgraphs() {
		if sub.Contains(n) {
			return false
		}
	}
	return true
}

// attrStmts writes graph/node/edge default statements declared at g's
// level. Defaults identical to the parent scope are invisible.
func (wr *writer) attrStmts(g *Graph) {
	for kind := KindGraph; kind <= KindEdge; kind++ {
		var pairs []string
		for _, sym := range g.dicts[kind].symbols() {
			if !sym.Print || !sym.Default.IsSet() {
				continue
			}
			if g.parent != nil {
				if up := g.parent.dicts[kind].lookup(sym.Name); up != nil && up.Default.String() == sym.Default.String() && up.Default.IsHTML() == sym.Default.IsHTML() {
					continue
				}
			}
			pairs = append(pairs, sym.Name+"="+quoteValue(sym.Default))
		}
		if kind == KindGraph {
			// the graph's own values are attribute statements too
			for _, sym := range graphOwnSymbols(g) {
				v := g.attrs.get(sym.Slot)
				if v.IsSet() && v.String() != sym.Default.String() {
					pairs = append(pairs, sym.Name+"="+quoteValue(v))
				}
			}
		}
		if len(pairs) == 0 {
			continue
		}
		wr.indent()
		wr.printf("%s [%s];\n", kind, strings.Join(pairs, ", "))
	}
}

func graphOwnSymbols(g *Graph) []*Symbol {
	var out []*Symbol
	seen := map[int]bool{}
	for d := g.dicts[KindGraph]; d != nil; d = d.parent {
		for _, sym := range d.symbols() {
			if sym.Print && !seen[sym.Slot] {
				seen[sym.Slot] = true
				out = append(out, sym)
			}
		}
	}
	return out
}

func (wr *writer) node(g *Graph, n *Node) {
	pairs := wr.attrPairs(g.dicts[KindNode], func(sym *Symbol) Value { return n.localValue(sym) })
	if len(pairs) == 0 && n.Degree(g) > 0 {
		return // an edge statement in this scope declares it
	}
	wr.indent()
	wr.printf("%s", quote(n.name))
	if len(pairs) > 0 {
		wr.printf(" [%s]", strings.Join(pairs, ", "))
	}
	wr.printf(";\n")
}

func (wr *writer) edge(g *Graph, e *Edge) {
	op := "--"
	if g.root.IsDirected() {
		op = "->"
	}
	wr.indent()
	wr.printf("%s", quote(e.tail.name))
	if e.TailPort != "" {
		wr.printf(":%s", e.TailPort)
	}
	wr.printf(" %s %s", op, quote(e.head.name))
	if e.HeadPort != "" {
		wr.printf(":%s", e.HeadPort)
	}
	pairs := wr.attrPairs(g.dicts[KindEdge], func(sym *Symbol) Value { return e.localValue(sym) })
	if e.name != "" {
		pairs = append([]string{"key=" + quote(e.name)}, pairs...)
	}
	if len(pairs) > 0 {
		wr.printf(" [%s]", strings.Join(pairs, ", "))
	}
	wr.printf(";\n")
}

func (wr *writer) attrPairs(d *dict, local func(*Symbol) Value) []string {
	var out []string
	seen := map[int]bool{}
	for cur := d; cur != nil; cur = cur.parent {
		for _, sym := range cur.symbols() {
			if seen[sym.Slot] || !sym.Print {
				continue
			}
			seen[sym.Slot] = true
			v := local(sym)
			if !v.IsSet() || v.String() == sym.Default.String() && v.IsHTML() == sym.Default.IsHTML() {
				continue
			}
			out = append(out, sym.Name+"="+quoteValue(v))
		}
	}
	return out
}

func quoteValue(v Value) string {
	if v.IsHTML() {
		return "<" + v.String() + ">"
	}
	return quote(v.String())
}

// quote returns s in a form the scanner tokenizes back to the same ID:
// unchanged when it is a legal unquoted identifier or numeral and not a
// keyword, double-quoted with escaped quotes otherwise.
func quote(s string) string {
	if isUnquotable(s) && token.Lookup(s) == token.ID {
		return s
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		if r == '"' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('"')
	return sb.String()
}

func isUnquotable(s string) bool {
	if s == "" {
		return false
	}
	if isNumeral(s) {
		return true
	}
	for i, r := range s {
		alpha := r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= 0x80
		if i == 0 && !alpha {
			return false
		}
		if !alpha && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

func isNumeral(s string) bool {
	var hasDigit, hasDot bool
	for i, r := range s {
		switch {
		case r == '-':
			if i != 0 {
				return false
			}
		case r == '.':
			if hasDot {
				return false
			}
			hasDot = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			return false
		}
	}
	return hasDigit
}
