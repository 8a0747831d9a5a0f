package centrality

import (
	"math"
	"testing"

	"degrants/internal/graph"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDegreeCentrality(t *testing.T) {
	g := graph.New()
	g.AddEdge("a", "b", 1, "")
	g.AddEdge("a", "c", 1, "")
	g.AddEdge("b", "a", 1, "")
	deg := Degree(g)
	// a: in 1 + out 2 over N-1=2
	if !almostEqual(deg["a"], 1.5) {
		t.Fatalf("degree(a) = %v, want 1.5", deg["a"])
	}
	if !almostEqual(deg["c"], 0.5) {
		t.Fatalf("degree(c) = %v, want 0.5", deg["c"])
	}
}

func TestDegreeSingleNode(t *testing.T) {
	g := graph.New()
	g.AddNode("only")
	deg := Degree(g)
	if deg["only"] != 0 {
		t.Fatalf("single node degree = %v, want 0", deg["only"])
	}
}

func TestClosenessCentrality(t *testing.T) {
	// path a->b->c: a reaches both at distances 1,2
	g := graph.New()
	g.AddEdge("a", "b", 1, "")
	g.AddEdge("b", "c", 1, "")
	cl := Closeness(g)
	// a: avg dist 1.5, reachable fraction 1 => 2/3
	if !almostEqual(cl["a"], 2.0/3.0) {
		t.Fatalf("closeness(a) = %v, want 2/3", cl["a"])
	}
	// b reaches only c: (1/1) * (1/2)
	if !almostEqual(cl["b"], 0.5) {
		t.Fatalf("closeness(b) = %v, want 0.5", cl["b"])
	}
	// c reaches nothing
	if cl["c"] != 0 {
		t.Fatalf("closeness(c) = %v, want 0", cl["c"])
	}
}

func TestBetweennessPathGraph(t *testing.T) {
	// a->b->c: only b lies between a and c
	g := graph.New()
	g.AddEdge("a", "b", 1, "")
	g.AddEdge("b", "c", 1, "")
	bw := Betweenness(g)
	// one of (N-1)(N-2)=2 ordered pairs passes through b
	if !almostEqual(bw["b"], 0.5) {
		t.Fatalf("betweenness(b) = %v, want 0.5", bw["b"])
	}
	if bw["a"] != 0 || bw["c"] != 0 {
		t.Fatalf("endpoints should have 0 betweenness: %v %v", bw["a"], bw["c"])
	}
}

func TestBetweennessSplitsTiedPaths(t *testing.T) {
	// a->b->d and a->c->d: b and c each carry half the a-d credit
	g := graph.New()
	g.AddEdge("a", "b", 1, "")
	g.AddEdge("a", "c", 1, "")
	g.AddEdge("b", "d", 1, "")
	g.AddEdge("c", "d", 1, "")
	bw := Betweenness(g)
	if !almostEqual(bw["b"], bw["c"]) {
		t.Fatalf("tied shortest paths must split credit equally: b=%v c=%v", bw["b"], bw["c"])
	}
	if bw["b"] == 0 {
		t.Fatalf("expected nonzero betweenness on b")
	}
}

func TestEigenvectorCycle(t *testing.T) {
	// symmetric cycle: all nodes equal
	g := graph.New()
	g.AddEdge("a", "b", 1, "")
	g.AddEdge("b", "c", 1, "")
	g.AddEdge("c", "a", 1, "")
	eig, ok := Eigenvector(g, 1000, 1e-6)
	if !ok {
		t.Fatalf("expected convergence on a cycle")
	}
	if !almostEqual(eig["a"], eig["b"]) || !almostEqual(eig["b"], eig["c"]) {
		t.Fatalf("cycle nodes should score equally: %v", eig)
	}
	if eig["a"] <= 0 {
		t.Fatalf("expected positive eigenvector values, got %v", eig["a"])
	}
}

func TestEigenvectorNoEdgesReturnsZeros(t *testing.T) {
	g := graph.New()
	g.AddNode("a")
	g.AddNode("b")
	eig, ok := Eigenvector(g, 100, 1e-6)
	if ok {
		t.Fatalf("edgeless graph has no dominant eigenvalue")
	}
	for id, v := range eig {
		if v != 0 {
			t.Fatalf("eigenvector[%s] = %v, want 0", id, v)
		}
	}
}

func TestComputeEmptyGraph(t *testing.T) {
	g := graph.New()
	s := Compute(g, 1000, 1e-6)
	if len(s.Degree) != 0 || len(s.Betweenness) != 0 || len(s.Closeness) != 0 || len(s.Eigenvector) != 0 {
		t.Fatalf("empty graph should produce empty zero maps")
	}
}
