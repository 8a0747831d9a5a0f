package influence

import (
	"math"

	"degrants/internal/config"
	"degrants/internal/graph"
	"degrants/internal/model"
)

// Score is the one influence formula shared by every caller. Each component
// saturates at its scale constant and is then stretched to [0,Cap], so the
// weighted sum stays inside [0,Cap]. A missing rank must be passed as
// model.RankSentinel; other missing fields as 0.
func Score(cfg config.ScoringConfig, followers, interactions24, rank int) float64 {
	followersNorm := saturate(float64(followers)/cfg.FollowerScale) * cfg.Cap
	interactionsNorm := saturate(float64(interactions24)/cfg.InteractionScale) * cfg.Cap
	rankNorm := saturate((cfg.RankCeiling-float64(rank))/cfg.RankScale) * cfg.Cap
	score := followersNorm*cfg.FollowerWeight +
		interactionsNorm*cfg.InteractWeight +
		rankNorm*cfg.RankWeight
	// weights sum to 1 so the sum stays in [0,Cap] up to float error
	if score > cfg.Cap {
		score = cfg.Cap
	}
	if score < 0 {
		score = 0
	}
	return score
}

func saturate(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Engine computes base and multi-hop decayed influence over a static
// snapshot. Accounts absent from the snapshot contribute zero influence.
type Engine struct {
	g        *graph.Graph
	accounts map[string]model.Account
	scoring  config.ScoringConfig
	prop     config.PropagationConfig
	base     map[string]float64
}

// New builds an engine over an already-constructed graph and snapshot.
// Base influence is precomputed for the whole snapshot here so the engine
// is safe for concurrent readers during batch scoring.
func New(g *graph.Graph, accounts map[string]model.Account, scoring config.ScoringConfig, prop config.PropagationConfig) *Engine {
	e := &Engine{
		g:        g,
		accounts: accounts,
		scoring:  scoring,
		prop:     prop,
		base:     make(map[string]float64, len(accounts)),
	}
	for id, a := range accounts {
		rank := a.Rank
		if rank <= 0 {
			rank = model.RankSentinel
		}
		e.base[id] = Score(scoring, a.Followers, a.Interactions24, rank)
	}
	return e
}

// BaseInfluence is the account's own, unpropagated influence. Accounts
// outside the snapshot score 0.
func (e *Engine) BaseInfluence(id string) float64 {
	return e.base[id]
}

// Propagate returns the per-hop decayed influence contributions for hops
// 1..MaxHops. Hop membership follows exact BFS distance, so a node
// reachable both near and far counts only at its shortest distance; a
// disconnected account gets all zeros.
func (e *Engine) Propagate(id string) []float64 {
	hops := make([]float64, e.prop.MaxHops)
	dist := e.g.ShortestPathLengths(id)
	for n, d := range dist {
		if d < 1 || d > e.prop.MaxHops {
			continue
		}
		hops[d-1] += e.BaseInfluence(n) * math.Pow(e.prop.DecayFactor, float64(d))
	}
	return hops
}

// HopInfluence returns the decayed influence at exactly the given hop.
func (e *Engine) HopInfluence(id string, hop int) float64 {
	if hop < 1 || hop > e.prop.MaxHops {
		return 0
	}
	return e.Propagate(id)[hop-1]
}

// TotalReach sums the per-hop contributions.
func (e *Engine) TotalReach(id string) float64 {
	total := 0.0
	for _, h := range e.Propagate(id) {
		total += h
	}
	return total
}

// ViralCoefficient estimates propagation potential from the account's most
// recent posts: average interactions per post times a conversion rate
// capped at 10%. No posts means 0.
func (e *Engine) ViralCoefficient(id string) float64 {
	a, ok := e.accounts[id]
	if !ok || len(a.RecentPosts) == 0 {
		return 0
	}
	posts := a.RecentPosts
	if n := e.prop.RecentPosts; n > 0 && len(posts) > n {
		posts = posts[:n]
	}
	total := 0
	for _, p := range posts {
		total += p.Interactions
	}
	avg := float64(total) / float64(len(posts))
	conversion := math.Min(avg/1000, 0.1)
	return avg * conversion
}
