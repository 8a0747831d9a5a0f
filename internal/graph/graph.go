package graph

// Graph is a directed, weighted interaction graph over account ids.
// It is built once before scoring and read-only afterwards, so no
// locking is needed for concurrent readers.
type Graph struct {
	nodes map[string]struct{}
	// source -> target -> merged edge
	edges map[string]map[string]*Edge
	// reverse adjacency for in-degree and weak connectivity
	preds map[string]map[string]struct{}
}

// Edge is the stored form of one or more interactions between a pair.
// Parallel edges are merged by summing weight; the distinct interaction
// types are kept as tags for traceability.
type Edge struct {
	Weight float64
	Types  []string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]struct{}),
		edges: make(map[string]map[string]*Edge),
		preds: make(map[string]map[string]struct{}),
	}
}

// AddNode registers an account id without any edges.
func (g *Graph) AddNode(id string) {
	if id == "" {
		return
	}
	g.nodes[id] = struct{}{}
}

// AddEdge inserts or merges a directed edge. Unknown endpoints are created
// implicitly. Self-loops carry no meaning and are dropped silently.
func (g *Graph) AddEdge(source, target string, weight float64, edgeType string) {
	if source == "" || target == "" || source == target {
		return
	}
	if weight < 0 {
		weight = 0
	}
	g.nodes[source] = struct{}{}
	g.nodes[target] = struct{}{}
	if g.edges[source] == nil {
		g.edges[source] = make(map[string]*Edge)
	}
	e, ok := g.edges[source][target]
	if !ok {
		e = &Edge{}
		g.edges[source][target] = e
	}
	e.Weight += weight
	if edgeType != "" && !containsType(e.Types, edgeType) {
		e.Types = append(e.Types, edgeType)
	}
	if g.preds[target] == nil {
		g.preds[target] = make(map[string]struct{})
	}
	g.preds[target][source] = struct{}{}
}

func containsType(ts []string, t string) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

// Neighbors returns the direct successors of id with merged edge weights.
func (g *Graph) Neighbors(id string) map[string]*Edge {
	out := make(map[string]*Edge, len(g.edges[id]))
	for to, e := range g.edges[id] {
		out[to] = e
	}
	return out
}

// Nodes returns all known account ids.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	return out
}

// NodeCount returns the number of known accounts.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of merged directed edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, m := range g.edges {
		n += len(m)
	}
	return n
}

// Has reports whether id is a known node.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// OutDegree and InDegree count merged edges, not raw interactions.
func (g *Graph) OutDegree(id string) int { return len(g.edges[id]) }
func (g *Graph) InDegree(id string) int  { return len(g.preds[id]) }

// ShortestPathLengths runs a BFS from id and returns the hop distance to
// every reachable node (excluding id itself). Distance is determined purely
// by breadth-first expansion, so a node reachable at several path lengths
// is recorded at its minimum.
func (g *Graph) ShortestPathLengths(id string) map[string]int {
	dist := make(map[string]int)
	if !g.Has(id) {
		return dist
	}
	frontier := []string{id}
	visited := map[string]struct{}{id: {}}
	d := 0
	for len(frontier) > 0 {
		d++
		var next []string
		for _, u := range frontier {
			for v := range g.edges[u] {
				if _, seen := visited[v]; seen {
					continue
				}
				visited[v] = struct{}{}
				dist[v] = d
				next = append(next, v)
			}
		}
		frontier = next
	}
	return dist
}

// IsWeaklyConnected reports whether the graph is connected when edges are
// treated as undirected. An empty graph is not connected; a single node is.
func (g *Graph) IsWeaklyConnected() bool {
	if len(g.nodes) == 0 {
		return false
	}
	return g.WeaklyConnectedComponents() == 1
}

// WeaklyConnectedComponents counts components ignoring edge direction.
func (g *Graph) WeaklyConnectedComponents() int {
	visited := make(map[string]struct{}, len(g.nodes))
	count := 0
	for id := range g.nodes {
		if _, seen := visited[id]; seen {
			continue
		}
		count++
		stack := []string{id}
		visited[id] = struct{}{}
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for v := range g.edges[u] {
				if _, seen := visited[v]; !seen {
					visited[v] = struct{}{}
					stack = append(stack, v)
				}
			}
			for v := range g.preds[u] {
				if _, seen := visited[v]; !seen {
					visited[v] = struct{}{}
					stack = append(stack, v)
				}
			}
		}
	}
	return count
}

// StronglyConnectedComponents counts SCCs with Tarjan's algorithm,
// implemented iteratively to stay safe on deep graphs.
func (g *Graph) StronglyConnectedComponents() int {
	index := make(map[string]int, len(g.nodes))
	lowlink := make(map[string]int, len(g.nodes))
	onStack := make(map[string]bool, len(g.nodes))
	var stack []string
	next := 0
	count := 0

	type frame struct {
		node  string
		succs []string
		i     int
	}

	for root := range g.nodes {
		if _, seen := index[root]; seen {
			continue
		}
		var call []frame
		push := func(n string) {
			index[n] = next
			lowlink[n] = next
			next++
			stack = append(stack, n)
			onStack[n] = true
			succs := make([]string, 0, len(g.edges[n]))
			for v := range g.edges[n] {
				succs = append(succs, v)
			}
			call = append(call, frame{node: n, succs: succs})
		}
		push(root)
		for len(call) > 0 {
			f := &call[len(call)-1]
			if f.i < len(f.succs) {
				v := f.succs[f.i]
				f.i++
				if _, seen := index[v]; !seen {
					push(v)
				} else if onStack[v] {
					if index[v] < lowlink[f.node] {
						lowlink[f.node] = index[v]
					}
				}
				continue
			}
			// node finished
			if lowlink[f.node] == index[f.node] {
				count++
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					if w == f.node {
						break
					}
				}
			}
			done := f.node
			call = call[:len(call)-1]
			if len(call) > 0 {
				parent := &call[len(call)-1]
				if lowlink[done] < lowlink[parent.node] {
					lowlink[parent.node] = lowlink[done]
				}
			}
		}
	}
	return count
}
