package graph

// Observer receives synchronous notifications during graph mutation. Init
// notifications fire before the new object is returned to the creator;
// update notifications fire with the affected symbol. Nested mutations from
// inside a callback are permitted.
//
// Observers registered later are notified first.
type Observer interface {
	NodeAdded(n *Node)
	NodeDeleted(n *Node)
	EdgeAdded(e *Edge)
	EdgeDeleted(e *Edge)
	SubgraphAdded(sub *Graph)
	AttrUpdated(obj any, sym *Symbol)
}

// BaseObserver implements Observer with no-ops so listeners only override
// the notifications they care about.
type BaseObserver struct{}

func (BaseObserver) NodeAdded(*Node)          {}
func (BaseObserver) NodeDeleted(*Node)        {}
func (BaseObserver) EdgeAdded(*Edge)          {}
func (BaseObserver) EdgeDeleted(*Edge)        {}
func (BaseObserver) SubgraphAdded(*Graph)     {}
func (BaseObserver) AttrUpdated(any, *Symbol) {}

// Observe pushes an observer onto the graph's callback stack.
func (g *Graph) Observe(o Observer) {
	g.obs = append(g.obs, o)
}

// Unobserve removes the most recently pushed occurrence of o.
func (g *Graph) Unobserve(o Observer) {
	for i := len(g.obs) - 1; i >= 0; i-- {
		if g.obs[i] == o {
			g.obs = append(g.obs[:i], g.obs[i+1:]...)
			return
		}
	}
}

// observers returns the listeners to notify for a mutation in g: its own
// stack and the stacks of all ancestors, each in LIFO order.
func (g *Graph) observers() []Observer {
	var out []Observer
	for _, anc := range g.ancestors() {
		for i := len(anc.obs) - 1; i >= 0; i-- {
			out = append(out, anc.obs[i])
		}
	}
	return out
}
