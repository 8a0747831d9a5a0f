package graph

import "testing"

func TestAddEdgeMergesAndCreatesNodes(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", 2, "like")
	g.AddEdge("a", "b", 3, "reply")
	if g.NodeCount() != 2 {
		t.Fatalf("expected 2 implicit nodes, got %d", g.NodeCount())
	}
	if g.EdgeCount() != 1 {
		t.Fatalf("expected merged edge, got %d", g.EdgeCount())
	}
	e := g.Neighbors("a")["b"]
	if e == nil || e.Weight != 5 {
		t.Fatalf("expected merged weight 5, got %+v", e)
	}
	if len(e.Types) != 2 {
		t.Fatalf("expected both interaction types kept, got %v", e.Types)
	}
}

func TestSelfLoopDroppedSilently(t *testing.T) {
	g := New()
	g.AddEdge("a", "a", 1, "like")
	if g.NodeCount() != 0 || g.EdgeCount() != 0 {
		t.Fatalf("self loop should be dropped, got %d nodes %d edges", g.NodeCount(), g.EdgeCount())
	}
}

func TestShortestPathLengths(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", 1, "")
	g.AddEdge("b", "c", 1, "")
	g.AddEdge("a", "c", 1, "") // c reachable at distance 1 and 2; min wins
	g.AddEdge("c", "d", 1, "")
	dist := g.ShortestPathLengths("a")
	want := map[string]int{"b": 1, "c": 1, "d": 2}
	if len(dist) != len(want) {
		t.Fatalf("distances: got %v want %v", dist, want)
	}
	for n, d := range want {
		if dist[n] != d {
			t.Errorf("dist[%s] = %d, want %d", n, dist[n], d)
		}
	}
	if len(g.ShortestPathLengths("zz")) != 0 {
		t.Errorf("unknown node should reach nothing")
	}
}

func TestWeakConnectivity(t *testing.T) {
	g := New()
	if g.IsWeaklyConnected() {
		t.Fatalf("empty graph is not connected")
	}
	g.AddEdge("a", "b", 1, "")
	g.AddEdge("c", "d", 1, "")
	if g.IsWeaklyConnected() {
		t.Fatalf("two components should not be weakly connected")
	}
	if got := g.WeaklyConnectedComponents(); got != 2 {
		t.Fatalf("components = %d, want 2", got)
	}
	// b->c joins them even though direction opposes a path from d to a
	g.AddEdge("b", "c", 1, "")
	if !g.IsWeaklyConnected() {
		t.Fatalf("expected weak connectivity after bridge")
	}
}

func TestStronglyConnectedComponents(t *testing.T) {
	g := New()
	// directed 3-cycle is one SCC
	g.AddEdge("a", "b", 1, "")
	g.AddEdge("b", "c", 1, "")
	g.AddEdge("c", "a", 1, "")
	if got := g.StronglyConnectedComponents(); got != 1 {
		t.Fatalf("cycle SCCs = %d, want 1", got)
	}
	// a tail node is its own SCC
	g.AddEdge("c", "d", 1, "")
	if got := g.StronglyConnectedComponents(); got != 2 {
		t.Fatalf("cycle+tail SCCs = %d, want 2", got)
	}
}

func TestDegrees(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", 1, "")
	g.AddEdge("a", "c", 1, "")
	g.AddEdge("b", "a", 1, "")
	if g.OutDegree("a") != 2 || g.InDegree("a") != 1 {
		t.Fatalf("a degrees: out=%d in=%d", g.OutDegree("a"), g.InDegree("a"))
	}
	if g.OutDegree("c") != 0 || g.InDegree("c") != 1 {
		t.Fatalf("c degrees: out=%d in=%d", g.OutDegree("c"), g.InDegree("c"))
	}
}
