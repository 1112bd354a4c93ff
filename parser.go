// Package gviz implements the core of a graph-visualization toolkit: parsing
// the textual graph-definition language into the in-memory graph model,
// laying the model out, and rendering the result through the plugin driver.
//
// # Grammar
//
// The parser implements the following grammar:
//
//	graph      : [ 'strict' ] ( 'graph' | 'digraph' ) [ ID ] '{' stmt_list '}'
//	stmt_list  : [ stmt [ ';' ] stmt_list ]
//	stmt       : node_stmt | edge_stmt | attr_stmt | ID '=' ID | subgraph
//	attr_stmt  : ( 'graph' | 'node' | 'edge' ) attr_list
//	attr_list  : '[' [ a_list ] ']' [ attr_list ]
//	a_list     : ID '=' ID [ ( ';' | ',' ) ] [ a_list ]
//	edge_stmt  : ( node_id | subgraph ) edgeRHS [ attr_list ]
//	edgeRHS    : edgeop ( node_id | subgraph ) [ edgeRHS ]
//	node_stmt  : node_id [ attr_list ]
//	node_id    : ID [ port ]
//	port       : ':' ID [ ':' compass_pt ] | ':' compass_pt
//	subgraph   : [ 'subgraph' [ ID ] ] '{' stmt_list '}'
//	compass_pt : 'n' | 'ne' | 'e' | 'se' | 's' | 'sw' | 'w' | 'nw' | 'c' | '_'
//
// Where edgeop is '--' for undirected graphs and '->' for directed graphs.
// Keywords are case-insensitive; comments of the forms '//…', '/*…*/' and
// '#…' are ignored. An attribute value whose raw token begins with '<' is an
// HTML-like label and is validated by the htmllabel package.
package gviz

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/hverr/gviz/graph"
	"github.com/hverr/gviz/htmllabel"
	"github.com/hverr/gviz/token"
)

// maxNestingDepth bounds subgraph nesting, half the parser-stack budget.
const maxNestingDepth = 5000

// Error represents a parse error in graph-definition source code.
// The position Pos points to the beginning of the offending token, and the error condition is
// described by Msg. Near holds up to the two most recently consumed tokens.
type Error struct {
	Pos  token.Position
	Msg  string
	Near string
}

// Error formats the error as "line:column: message (near '…')".
func (e Error) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
	}
	return fmt.Sprintf("%d:%d: %s (near %q)", e.Pos.Line, e.Pos.Column, e.Msg, e.Near)
}

// Parser parses graph-definition source code directly into the graph model.
//
// The parser uses one token of lookahead. It continues after recoverable
// errors, collecting them for retrieval via [Parser.Errors]; when any error
// was recorded the parsed graph is discarded.
type Parser struct {
	scanner   *Scanner
	curToken  token.Token
	peekToken token.Token
	recent    [2]string // most recently consumed token literals, newest last
	errors    []Error
	depth     int
}

// NewParser creates a new parser that reads source code from r. Returns an error if reading
// from r fails.
func NewParser(r io.Reader) (*Parser, error) {
	scanner, err := NewScanner(r)
	if err != nil {
		return nil, err
	}

	p := Parser{scanner: scanner}

	// initialize current and peek token
	err = p.nextToken()
	if err != nil {
		return nil, err
	}
	err = p.nextToken()
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// Parse reads one graph and returns the instantiated model. On syntax errors
// the subgraph stack is unwound and a nil graph is returned together with
// the first error; all errors remain available via [Parser.Errors]. The
// returned error is also non-nil for terminal I/O failures.
func Parse(r io.Reader) (*graph.Graph, error) {
	p, err := NewParser(r)
	if err != nil {
		return nil, err
	}
	return p.Parse()
}

// Errors returns all parse and scan errors collected during parsing.
func (p *Parser) Errors() []Error {
	return p.errors
}

// Parse parses the source and returns the graph, or nil and the first error
// when the input was not syntactically valid.
func (p *Parser) Parse() (*graph.Graph, error) {
	g, err := p.parseGraph()
	if err != nil {
		return nil, err // terminal I/O error
	}
	if len(p.errors) > 0 {
		if g != nil {
			_ = g.Close()
		}
		return nil, p.errors[0]
	}
	return g, nil
}

func (p *Parser) nextToken() error {
	if p.curToken.Type != 0 {
		p.recent[0] = p.recent[1]
		p.recent[1] = p.curToken.String()
	}

	var tok token.Token
	var err error
	for tok, err = p.scanner.Next(); err == nil && tok.Type == token.Comment; tok, err = p.scanner.Next() {
	}
	if err != nil { // terminal error
		return err
	}

	p.curToken = p.peekToken
	p.peekToken = tok
	return nil
}

func (p *Parser) curTokenIs(t token.Kind) bool  { return p.curToken.Type&t != 0 }
func (p *Parser) peekTokenIs(t token.Kind) bool { return p.peekToken.Type&t != 0 }

func (p *Parser) error(msg string) {
	near := strings.TrimSpace(p.recent[0] + " " + p.recent[1])
	p.errors = append(p.errors, Error{Pos: p.curToken.Start, Msg: msg, Near: near})
}

func (p *Parser) errorExpected(what string) {
	if p.curToken.Type == token.ERROR {
		p.error(p.curToken.Error)
		return
	}
	p.error(fmt.Sprintf("expected %s, got %q", what, p.curToken.String()))
}

// expect consumes the current token when it matches, records an error and
// leaves the position unchanged otherwise.
func (p *Parser) expect(want token.Kind, what string) (bool, error) {
	if p.curTokenIs(want) {
		return true, p.nextToken()
	}
	p.errorExpected(what)
	return false, nil
}

// parseGraph parses the graph header and body.
//
//	graph : [ 'strict' ] ( 'graph' | 'digraph' ) [ ID ] '{' stmt_list '}'
func (p *Parser) parseGraph() (*graph.Graph, error) {
	strict := false
	if p.curTokenIs(token.Strict) {
		strict = true
		if err := p.nextToken(); err != nil {
			return nil, err
		}
	}

	if !p.curTokenIs(token.Graph | token.Digraph) {
		p.errorExpected("graph or digraph")
		return nil, nil
	}
	desc := graph.Undirected
	if p.curTokenIs(token.Digraph) {
		desc = graph.Directed
	}
	desc.Strict = strict
	if err := p.nextToken(); err != nil {
		return nil, err
	}

	var name string
	if p.curTokenIs(token.ID) {
		name = p.curToken.Literal
		if err := p.nextToken(); err != nil {
			return nil, err
		}
	}

	g := graph.Open(name, desc)

	if ok, err := p.expect(token.LeftBrace, "{"); err != nil || !ok {
		return g, err
	}
	if err := p.parseStatementList(g); err != nil {
		return g, err
	}
	_, err := p.expect(token.RightBrace, "}")
	return g, err
}

// parseStatementList parses statements into g until the closing brace.
//
//	stmt_list : [ stmt [ ';' ] stmt_list ]
func (p *Parser) parseStatementList(g *graph.Graph) error {
	for !p.curTokenIs(token.RightBrace | token.EOF) {
		if err := p.parseStatement(g); err != nil {
			return err
		}
	}
	return nil
}

// parseStatement dispatches on the first token(s) of a statement.
//
//	stmt : node_stmt | edge_stmt | attr_stmt | ID '=' ID | subgraph
func (p *Parser) parseStatement(g *graph.Graph) error {
	switch {
	case p.curTokenIs(token.Semicolon):
		return p.nextToken()

	case p.curTokenIs(token.ID) && p.peekTokenIs(token.Equal):
		name := p.curToken.Literal
		if err := p.nextToken(); err != nil { // name
			return err
		}
		if err := p.nextToken(); err != nil { // =
			return err
		}
		if !p.curTokenIs(token.ID) {
			p.errorExpected("attribute value")
			return p.recover()
		}
		g.Set(graph.KindGraph, name, p.attrValue(name))
		return p.nextToken()

	case p.curTokenIs(token.Graph | token.Node | token.Edge):
		return p.parseAttrStatement(g)

	case p.curTokenIs(token.ID | token.Subgraph | token.LeftBrace):
		return p.parseNodeEdgeOrSubgraph(g)

	default:
		if p.curToken.Type == token.ERROR {
			p.error(p.curToken.Error)
		} else {
			p.error(fmt.Sprintf("%q cannot start a statement", p.curToken.String()))
		}
		return p.recover()
	}
}

// recover skips tokens until a statement boundary so subsequent statements
// can still be parsed and reported on.
func (p *Parser) recover() error {
	for !p.curTokenIs(token.Semicolon | token.RightBrace | token.EOF) {
		if err := p.nextToken(); err != nil {
			return err
		}
	}
	if p.curTokenIs(token.Semicolon) {
		return p.nextToken()
	}
	return nil
}

// endpoint is one operand of an edge statement: a single node with optional
// port, or the node set of a subgraph.
type endpoint struct {
	nodes   []*graph.Node
	port    string
	compass string
}

// parseNodeEdgeOrSubgraph parses a node statement, an edge statement or a
// standalone subgraph, which all start with an ID, 'subgraph' or '{'.
func (p *Parser) parseNodeEdgeOrSubgraph(g *graph.Graph) error {
	first, sub, err := p.parseEndpoint(g)
	if err != nil {
		return err
	}

	if p.curTokenIs(token.DirectedEdge | token.UndirectedEdge) {
		return p.parseEdgeRHS(g, first)
	}

	if sub != nil { // standalone subgraph
		return nil
	}

	// node_stmt : node_id [ attr_list ]
	attrs, err := p.parseOptionalAttrList()
	if err != nil {
		return err
	}
	for _, n := range first.nodes {
		for _, a := range attrs {
			n.Set(a.name, a.value)
		}
	}
	return nil
}

// parseEndpoint parses a node_id or subgraph operand. The returned graph is
// non-nil when the operand was a subgraph.
func (p *Parser) parseEndpoint(g *graph.Graph) (endpoint, *graph.Graph, error) {
	if p.curTokenIs(token.ID) {
		n := g.AddNode(p.curToken.Literal)
		ep := endpoint{nodes: []*graph.Node{n}}
		if err := p.nextToken(); err != nil {
			return ep, nil, err
		}
		if p.curTokenIs(token.Colon) {
			port, compass, err := p.parsePort()
			if err != nil {
				return ep, nil, err
			}
			ep.port, ep.compass = port, compass
		}
		return ep, nil, nil
	}

	sub, err := p.parseSubgraph(g)
	if err != nil || sub == nil {
		return endpoint{}, nil, err
	}
	return endpoint{nodes: sub.Nodes()}, sub, nil
}

// parsePort parses ':' ID [ ':' compass ] | ':' compass.
func (p *Parser) parsePort() (string, string, error) {
	if err := p.nextToken(); err != nil { // consume ':'
		return "", "", err
	}
	if !p.curTokenIs(token.ID) {
		p.errorExpected("port name or compass point")
		return "", "", nil
	}
	first := p.curToken
	if err := p.nextToken(); err != nil {
		return "", "", err
	}

	if !p.curTokenIs(token.Colon) {
		if first.IsCompassPoint() {
			return "", first.Literal, nil
		}
		return first.Literal, "", nil
	}
	if err := p.nextToken(); err != nil { // consume second ':'
		return "", "", err
	}
	if !p.curToken.IsCompassPoint() {
		p.errorExpected("compass point (c, e, n, ne, nw, s, se, sw, w, or _)")
		return first.Literal, "", nil
	}
	compass := p.curToken.Literal
	return first.Literal, compass, p.nextToken()
}

// parseEdgeRHS expands an edge chain into the Cartesian product of
// consecutive endpoint sets.
//
//	edgeRHS : edgeop ( node_id | subgraph ) [ edgeRHS ]
func (p *Parser) parseEdgeRHS(g *graph.Graph, left endpoint) error {
	var created []*graph.Edge
	for p.curTokenIs(token.DirectedEdge | token.UndirectedEdge) {
		if g.Root().IsDirected() && p.curTokenIs(token.UndirectedEdge) {
			p.error("expected '->' for edge in directed graph")
		} else if !g.Root().IsDirected() && p.curTokenIs(token.DirectedEdge) {
			p.error("expected '--' for edge in undirected graph")
		}
		if err := p.nextToken(); err != nil {
			return err
		}

		if !p.curTokenIs(token.ID | token.Subgraph | token.LeftBrace) {
			p.errorExpected("node or subgraph as edge operand")
			return p.recover()
		}
		right, _, err := p.parseEndpoint(g)
		if err != nil {
			return err
		}

		for _, t := range left.nodes {
			for _, h := range right.nodes {
				e := g.AddEdge(t, h, "")
				e.TailPort = joinPort(left.port, left.compass)
				e.HeadPort = joinPort(right.port, right.compass)
				created = append(created, e)
			}
		}
		left = right
	}

	attrs, err := p.parseOptionalAttrList()
	if err != nil {
		return err
	}
	for _, e := range created {
		for _, a := range attrs {
			e.Set(a.name, a.value)
		}
	}
	return nil
}

func joinPort(port, compass string) string {
	switch {
	case port == "":
		return compass
	case compass == "":
		return port
	default:
		return port + ":" + compass
	}
}

// parseAttrStatement installs graph/node/edge defaults on the current
// subgraph.
//
//	attr_stmt : ( 'graph' | 'node' | 'edge' ) attr_list
func (p *Parser) parseAttrStatement(g *graph.Graph) error {
	var kind graph.Kind
	switch {
	case p.curTokenIs(token.Graph):
		kind = graph.KindGraph
	case p.curTokenIs(token.Node):
		kind = graph.KindNode
	default:
		kind = graph.KindEdge
	}
	if err := p.nextToken(); err != nil {
		return err
	}

	if !p.curTokenIs(token.LeftBracket) {
		p.error("expected [ to start attribute list")
		return p.recover()
	}
	attrs, err := p.parseOptionalAttrList()
	if err != nil {
		return err
	}
	for _, a := range attrs {
		if kind == graph.KindGraph {
			g.Set(graph.KindGraph, a.name, a.value)
		} else {
			g.DeclareAttr(kind, a.name, a.value)
		}
	}
	return nil
}

type attrPair struct {
	name  string
	value graph.Value
}

// parseOptionalAttrList parses zero or more bracketed attribute lists.
//
//	attr_list : '[' [ a_list ] ']' [ attr_list ]
//	a_list    : ID '=' ID [ ( ';' | ',' ) ] [ a_list ]
func (p *Parser) parseOptionalAttrList() ([]attrPair, error) {
	var out []attrPair
	for p.curTokenIs(token.LeftBracket) {
		if err := p.nextToken(); err != nil {
			return out, err
		}
		for p.curTokenIs(token.ID) {
			name := p.curToken.Literal
			if err := p.nextToken(); err != nil {
				return out, err
			}
			if ok, err := p.expect(token.Equal, "="); err != nil {
				return out, err
			} else if !ok {
				return out, p.recover()
			}
			if !p.curTokenIs(token.ID) {
				p.errorExpected("attribute value")
				return out, p.recover()
			}
			if v, ok := p.attrValueChecked(name); ok {
				out = append(out, attrPair{name: name, value: v})
			}
			if err := p.nextToken(); err != nil {
				return out, err
			}
			if p.curTokenIs(token.Semicolon | token.Comma) {
				if err := p.nextToken(); err != nil {
					return out, err
				}
			}
		}
		if ok, err := p.expect(token.RightBracket, "] to close attribute list"); err != nil {
			return out, err
		} else if !ok {
			return out, p.recover()
		}
	}
	return out, nil
}

// attrValue converts the current ID token into a typed attribute value.
func (p *Parser) attrValue(name string) graph.Value {
	v, _ := p.attrValueChecked(name)
	return v
}

// attrValueChecked additionally validates HTML label values; a malformed
// label is warned about and discarded without failing the graph parse.
func (p *Parser) attrValueChecked(name string) (graph.Value, bool) {
	if !p.curToken.HTML {
		return graph.StringValue(p.curToken.Literal), true
	}
	if _, err := htmllabel.Parse(p.curToken.Literal); err != nil {
		log.WithFields(log.Fields{
			"attribute": name,
			"pos":       p.curToken.Start.String(),
		}).Warnf("discarding malformed HTML label: %v", err)
		return graph.Value{}, false
	}
	return graph.HTMLValue(p.curToken.Literal), true
}

// parseSubgraph parses a subgraph and returns it, or nil when the nesting
// bound was exceeded, in which case the body is parsed into g itself.
//
//	subgraph : [ 'subgraph' [ ID ] ] '{' stmt_list '}'
func (p *Parser) parseSubgraph(g *graph.Graph) (*graph.Graph, error) {
	var name string
	if p.curTokenIs(token.Subgraph) {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		if p.curTokenIs(token.ID) {
			name = p.curToken.Literal
			if err := p.nextToken(); err != nil {
				return nil, err
			}
		}
	}

	if ok, err := p.expect(token.LeftBrace, "{"); err != nil {
		return nil, err
	} else if !ok {
		return nil, p.recover()
	}

	target := g
	exceeded := p.depth >= maxNestingDepth
	if exceeded {
		p.error(fmt.Sprintf("subgraphs nested deeper than %d; closing subgraph", maxNestingDepth))
	} else {
		target = g.OpenSubgraph(name)
	}

	p.depth++
	err := p.parseStatementList(target)
	p.depth--
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RightBrace, "}"); err != nil {
		return nil, err
	}
	if exceeded {
		return nil, nil
	}
	return target, nil
}
