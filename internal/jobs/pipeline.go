package jobs

import (
	"context"
	"errors"

	"degrants/internal/config"
	"degrants/internal/graph"
	"degrants/internal/lcclient"
	"degrants/internal/logging"
	"degrants/internal/model"
	"degrants/internal/scoring"
)

// Snapshot is the fully-fetched input to one scoring run: account records
// plus the interaction edges between them. Once assembled it is never
// mutated.
type Snapshot struct {
	Accounts []model.Account
	Edges    []model.Edge
}

// FetchSnapshot pulls profiles, posts, and interaction edges for the named
// creators. Fetching is sequential and rate-limited by the client. An
// absent profile degrades to a zero-valued account rather than failing the
// batch; only context cancellation aborts.
func FetchSnapshot(ctx context.Context, client lcclient.Client, network string, names []string, postLimit int) (Snapshot, error) {
	var snap Snapshot
	for _, name := range names {
		acct, err := client.GetCreator(ctx, network, name)
		if err != nil {
			if ctx.Err() != nil {
				return snap, ctx.Err()
			}
			if !errors.Is(err, lcclient.ErrNotFound) {
				logging.Warn("creator_fetch_failed", map[string]any{"creator": name, "error": err.Error()})
			}
			// absent profile: documented zero defaults
			acct = model.Account{ID: name, Name: name, Rank: model.RankSentinel}
			snap.Accounts = append(snap.Accounts, acct)
			continue
		}
		acct.Platforms = []string{network}
		posts, err := client.GetCreatorPosts(ctx, network, name, postLimit)
		if err == nil {
			acct.RecentPosts = posts
			for _, p := range posts {
				edges, err := client.GetPostInteractions(ctx, p.ID)
				if err != nil {
					continue
				}
				for _, e := range edges {
					if e.Source == "" {
						e.Source = acct.ID
					}
					if e.Target == "" {
						e.Target = acct.ID
					}
					snap.Edges = append(snap.Edges, e)
				}
			}
		}
		snap.Accounts = append(snap.Accounts, acct)
	}
	return snap, nil
}

// BuildGraph assembles the interaction graph from a snapshot. Construction
// is sequential; the graph is read-only afterwards.
func BuildGraph(snap Snapshot) *graph.Graph {
	g := graph.New()
	for _, a := range snap.Accounts {
		g.AddNode(a.ID)
	}
	for _, e := range snap.Edges {
		g.AddEdge(e.Source, e.Target, e.Weight, e.Type)
	}
	return g
}

// Run scores a snapshot end to end and returns per-account results with
// the batch summary.
func Run(cfg config.Config, snap Snapshot) ([]model.ScoreResult, model.BatchSummary) {
	g := BuildGraph(snap)
	accounts := make(map[string]model.Account, len(snap.Accounts))
	for _, a := range snap.Accounts {
		accounts[a.ID] = a
	}
	engine := scoring.New(cfg, g, accounts)
	logging.Info("graph_built", map[string]any{
		"nodes":      g.NodeCount(),
		"edges":      g.EdgeCount(),
		"components": g.WeaklyConnectedComponents(),
	})
	results, summary := engine.ScoreBatch(snap.Accounts)
	logging.Info("scoring_run_complete", map[string]any{
		"accounts": summary.TotalAccounts,
		"scored":   summary.ScoredAccounts,
		"flagged":  len(summary.Flagged),
	})
	return results, summary
}
