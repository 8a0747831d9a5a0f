package scoring

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"degrants/internal/alignment"
	"degrants/internal/centrality"
	"degrants/internal/config"
	"degrants/internal/graph"
	"degrants/internal/influence"
	"degrants/internal/logging"
	"degrants/internal/metrics"
	"degrants/internal/model"
	"degrants/internal/util"
)

// Social score weights for grant evaluation. These are one fixed formula,
// summing to 1.0; the normalization scales live in config.
const (
	galaxyWeight      = 0.30
	interactionWeight = 0.25
	sentimentWeight   = 0.20
	platformWeight    = 0.15
	consistencyWeight = 0.10
)

// Network quality weights, also fixed, summing to 1.0 each.
const (
	peerInfluenceWeight = 0.3
	communityWeight     = 0.4
	diversityWeight     = 0.3
	highInfluencePeersW = 0.4
	alignedPeersW       = 0.3
	communityDiversityW = 0.3
)

// Engine combines influence, alignment, and network metrics into the final
// per-account score and threshold flags. The graph and snapshot are
// read-only once the engine is built.
type Engine struct {
	cfg      config.Config
	g        *graph.Graph
	accounts map[string]model.Account
	inf      *influence.Engine
	matcher  *alignment.Matcher
	central  centrality.Scores
}

func New(cfg config.Config, g *graph.Graph, accounts map[string]model.Account) *Engine {
	central := centrality.Compute(g, cfg.Propagation.EigenIterations, cfg.Propagation.EigenTolerance)
	if !central.Converged && g.NodeCount() > 1 {
		logging.Warn("eigenvector_nonconvergence", map[string]any{"nodes": g.NodeCount()})
	}
	return &Engine{
		cfg:      cfg,
		g:        g,
		accounts: accounts,
		inf:      influence.New(g, accounts, cfg.Scoring, cfg.Propagation),
		matcher:  alignment.New(cfg.Alignment),
		central:  central,
	}
}

// Influence exposes the propagation engine for callers that only need
// base/hop influence.
func (e *Engine) Influence() *influence.Engine { return e.inf }

// ScoreAccount derives every metric for one account.
func (e *Engine) ScoreAccount(a model.Account) model.ScoreResult {
	res := model.ScoreResult{AccountID: a.ID}

	res.BaseInfluence = e.inf.BaseInfluence(a.ID)
	res.HopInfluence = e.inf.Propagate(a.ID)
	for _, h := range res.HopInfluence {
		res.TotalReach += h
	}
	res.ViralCoeff = e.inf.ViralCoefficient(a.ID)

	al := e.matcher.Match(alignment.ItemsFromTopics(a.Topics))
	res.AlignmentScore = al.Score
	res.Categories = al.Categories
	res.MatchedKeywords = al.MatchedKeywords

	res.Degree = e.central.Degree[a.ID]
	res.Betweenness = e.central.Betweenness[a.ID]
	res.Closeness = e.central.Closeness[a.ID]
	res.Eigenvector = e.central.Eigenvector[a.ID]
	res.NetworkPosition = e.networkPosition(a)

	res.NetworkQuality = e.networkQuality(a.ID)
	res.SocialScore = e.socialScore(a)
	res.Flagged, res.FlagReasons = e.evaluateFlags(a, res.SocialScore)
	return res
}

// networkPosition buckets the account's platform rank. The cutoffs are
// platform-specific tuning carried in config.
func (e *Engine) networkPosition(a model.Account) string {
	rank := a.Rank
	if rank <= 0 {
		rank = model.RankSentinel
	}
	switch {
	case rank <= e.cfg.Network.CoreRank:
		return "Top Tier"
	case rank <= e.cfg.Network.ActiveRank:
		return "Mid Tier"
	default:
		return "Emerging"
	}
}

// socialScore is the weighted grant-evaluation score, clamped to [0,100].
// Consistency proxies long-term activity through the recent post window.
func (e *Engine) socialScore(a model.Account) float64 {
	if len(a.Platforms) == 0 {
		return 0
	}
	galaxyNorm := util.Clamp(a.GalaxyScore, 0, 100)
	interactionsNorm := util.Clamp(float64(a.Interactions24)/float64(e.cfg.Flagging.HighEngagement)*100, 0, 100)
	sentimentNorm := util.Clamp(a.Sentiment, 0, 100)
	platformsNorm := util.Clamp(float64(len(a.Platforms))*25, 0, 100)
	consistencyNorm := util.Clamp(float64(len(a.RecentPosts))*5, 0, 100)

	score := galaxyNorm*galaxyWeight +
		interactionsNorm*interactionWeight +
		sentimentNorm*sentimentWeight +
		platformsNorm*platformWeight +
		consistencyNorm*consistencyWeight
	return util.Round2(util.Clamp(score, 0, 100))
}

// networkQuality scores the account's direct peer set: average peer
// influence, community building potential, and topic diversity.
func (e *Engine) networkQuality(id string) float64 {
	peers := e.g.Neighbors(id)
	if len(peers) == 0 {
		return 0
	}
	var influenceSum float64
	highInfluence := 0
	aligned := 0
	topics := make(map[string]struct{})
	for pid := range peers {
		pi := e.inf.BaseInfluence(pid)
		influenceSum += pi
		if pi > e.cfg.Network.HighInfluence {
			highInfluence++
		}
		p, ok := e.accounts[pid]
		if !ok {
			continue
		}
		pa := e.matcher.Match(alignment.ItemsFromTopics(p.Topics))
		if pa.Score > e.cfg.Network.HighAlignment {
			aligned++
		}
		for _, t := range p.Topics {
			topics[t.Topic] = struct{}{}
		}
	}
	avgInfluence := influenceSum / float64(len(peers))
	diversity := float64(len(topics))
	community := float64(highInfluence)*highInfluencePeersW +
		float64(aligned)*alignedPeersW +
		diversity*communityDiversityW
	return util.Round2(avgInfluence*peerInfluenceWeight + community*communityWeight + diversity*diversityWeight)
}

// evaluateFlags applies the threshold rules. Each satisfied condition
// contributes exactly one reason; conditions are independent.
func (e *Engine) evaluateFlags(a model.Account, socialScore float64) (bool, []string) {
	t := e.cfg.Flagging
	var reasons []string
	flagged := false

	if len(a.Platforms) == 0 {
		return false, []string{"No social presence detected"}
	}
	if socialScore >= t.HighScore {
		reasons = append(reasons, fmt.Sprintf("High social score (%.1f/100)", socialScore))
		flagged = true
	}
	if a.Interactions24 >= t.HighEngagement {
		reasons = append(reasons, fmt.Sprintf("High engagement (%d interactions)", a.Interactions24))
		flagged = true
	}
	if a.Sentiment >= t.PositiveSent {
		reasons = append(reasons, fmt.Sprintf("Very positive sentiment (%.1f%%)", a.Sentiment))
		flagged = true
	}
	if len(a.Platforms) >= t.MultiPlatform {
		reasons = append(reasons, fmt.Sprintf("Multi-platform presence (%d platforms)", len(a.Platforms)))
		flagged = true
	}
	return flagged, reasons
}

// ScoreBatch fans per-account scoring out over a bounded worker pool and
// joins before computing summary statistics. One account's failure never
// aborts the batch; it yields an incomplete result.
func (e *Engine) ScoreBatch(accounts []model.Account) ([]model.ScoreResult, model.BatchSummary) {
	start := time.Now()
	metrics.ScoringRuns.Inc()

	results := make([]model.ScoreResult, len(accounts))
	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := e.cfg.Network.Workers
	if workers < 1 {
		workers = 1
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.scoreIsolated(accounts[i])
			}
		}()
	}
	for i := range accounts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	summary := e.summarize(results)
	metrics.ObserveScoringDuration(start)
	return results, summary
}

// scoreIsolated guards one account's scoring so a malformed record cannot
// take the batch down with it.
func (e *Engine) scoreIsolated(a model.Account) (res model.ScoreResult) {
	defer func() {
		if r := recover(); r != nil {
			metrics.ScoringErrors.Inc()
			logging.Warn("account_scoring_failed", map[string]any{"account": a.ID, "panic": fmt.Sprint(r)})
			res = model.ScoreResult{AccountID: a.ID, Incomplete: true, Err: fmt.Sprint(r)}
		}
	}()
	return e.ScoreAccount(a)
}

func (e *Engine) summarize(results []model.ScoreResult) model.BatchSummary {
	s := model.BatchSummary{TotalAccounts: len(results), Timestamp: time.Now().UTC()}
	sum := 0.0
	first := true
	for _, r := range results {
		if r.Incomplete {
			continue
		}
		s.ScoredAccounts++
		sum += r.SocialScore
		if first || r.SocialScore < s.MinScore {
			s.MinScore = r.SocialScore
		}
		if first || r.SocialScore > s.MaxScore {
			s.MaxScore = r.SocialScore
		}
		first = false
		if r.Flagged {
			metrics.AccountsFlagged.Inc()
			s.Flagged = append(s.Flagged, r)
		}
	}
	if s.ScoredAccounts > 0 {
		s.MeanScore = util.Round2(sum / float64(s.ScoredAccounts))
		s.FlaggedPercent = math.Round(float64(len(s.Flagged))/float64(s.ScoredAccounts)*1000) / 10
	}
	// descending score, ties broken by id for reproducible reports
	sort.Slice(s.Flagged, func(i, j int) bool {
		if s.Flagged[i].SocialScore != s.Flagged[j].SocialScore {
			return s.Flagged[i].SocialScore > s.Flagged[j].SocialScore
		}
		return s.Flagged[i].AccountID < s.Flagged[j].AccountID
	})
	return s
}
