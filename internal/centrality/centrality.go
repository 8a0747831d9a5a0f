package centrality

import (
	"math"

	"degrants/internal/graph"
)

// Scores holds the per-node centrality measures for one graph.
type Scores struct {
	Degree      map[string]float64
	Betweenness map[string]float64
	Closeness   map[string]float64
	Eigenvector map[string]float64
	// Converged is false when power iteration hit the cap without
	// stabilizing; Eigenvector is all zeros in that case.
	Converged bool
}

// Compute derives every centrality measure over g. Empty and single-node
// graphs produce zero-valued maps, never an error.
func Compute(g *graph.Graph, eigenIterations int, eigenTolerance float64) Scores {
	eig, ok := eigenvector(g, eigenIterations, eigenTolerance)
	return Scores{
		Degree:      Degree(g),
		Betweenness: Betweenness(g),
		Closeness:   Closeness(g),
		Eigenvector: eig,
		Converged:   ok,
	}
}

// Degree returns (in-degree + out-degree) / (N-1) per node, 0 when N <= 1.
func Degree(g *graph.Graph) map[string]float64 {
	nodes := g.Nodes()
	out := make(map[string]float64, len(nodes))
	n := len(nodes)
	for _, id := range nodes {
		out[id] = 0
		if n > 1 {
			out[id] = float64(g.InDegree(id)+g.OutDegree(id)) / float64(n-1)
		}
	}
	return out
}

// Closeness returns the reciprocal average shortest-path distance from each
// node, scaled by the fraction of other nodes it reaches. Nodes reaching
// nothing score 0.
func Closeness(g *graph.Graph) map[string]float64 {
	nodes := g.Nodes()
	out := make(map[string]float64, len(nodes))
	n := len(nodes)
	for _, id := range nodes {
		out[id] = 0
		if n <= 1 {
			continue
		}
		dist := g.ShortestPathLengths(id)
		r := len(dist)
		if r == 0 {
			continue
		}
		sum := 0
		for _, d := range dist {
			sum += d
		}
		// reciprocal of average distance, scaled by reachable fraction
		out[id] = (float64(r) / float64(sum)) * (float64(r) / float64(n-1))
	}
	return out
}

// Betweenness computes directed shortest-path betweenness with Brandes'
// accumulation. Ties in path length split credit equally across all
// shortest paths. Values are normalized by (N-1)(N-2) for N > 2.
func Betweenness(g *graph.Graph) map[string]float64 {
	nodes := g.Nodes()
	out := make(map[string]float64, len(nodes))
	for _, id := range nodes {
		out[id] = 0
	}
	n := len(nodes)
	if n < 3 {
		return out
	}
	for _, s := range nodes {
		// BFS from s tracking path counts and predecessors
		var order []string
		pred := make(map[string][]string)
		sigma := map[string]float64{s: 1}
		dist := map[string]int{s: 0}
		queue := []string{s}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			order = append(order, v)
			for w := range g.Neighbors(v) {
				if _, seen := dist[w]; !seen {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					pred[w] = append(pred[w], v)
				}
			}
		}
		// accumulate dependencies in reverse BFS order
		delta := make(map[string]float64, len(order))
		for i := len(order) - 1; i >= 0; i-- {
			w := order[i]
			for _, v := range pred[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != s {
				out[w] += delta[w]
			}
		}
	}
	norm := float64(n-1) * float64(n-2)
	for id := range out {
		out[id] /= norm
	}
	return out
}

// eigenvector runs power iteration on the in-edge adjacency. Returns all
// zeros when the iteration fails to converge within the cap, e.g. on a
// disconnected graph with no dominant eigenvalue.
func eigenvector(g *graph.Graph, maxIter int, tol float64) (map[string]float64, bool) {
	nodes := g.Nodes()
	out := make(map[string]float64, len(nodes))
	for _, id := range nodes {
		out[id] = 0
	}
	n := len(nodes)
	if n < 2 {
		return out, true
	}
	if maxIter < 1 {
		maxIter = 1000
	}
	if tol <= 0 {
		tol = 1e-6
	}
	x := make(map[string]float64, n)
	for _, id := range nodes {
		x[id] = 1.0 / float64(n)
	}
	for iter := 0; iter < maxIter; iter++ {
		next := make(map[string]float64, n)
		for _, u := range nodes {
			xu := x[u]
			if xu == 0 {
				continue
			}
			for v, e := range g.Neighbors(u) {
				next[v] += xu * e.Weight
			}
		}
		norm := 0.0
		for _, v := range next {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			// no dominant eigenvalue to converge to
			return out, false
		}
		diff := 0.0
		for _, id := range nodes {
			next[id] /= norm
			diff += math.Abs(next[id] - x[id])
		}
		x = next
		if diff < tol*float64(n) {
			for _, id := range nodes {
				out[id] = x[id]
			}
			return out, true
		}
	}
	// hit the cap without stabilizing
	return out, false
}

// Eigenvector exposes the power-iteration computation with explicit bounds.
// The second return reports convergence; values are all zeros when false.
func Eigenvector(g *graph.Graph, maxIter int, tol float64) (map[string]float64, bool) {
	return eigenvector(g, maxIter, tol)
}
