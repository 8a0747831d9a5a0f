package scoring

import (
	"math"
	"strings"
	"testing"

	"degrants/internal/config"
	"degrants/internal/graph"
	"degrants/internal/model"
)

func newTestEngine(accounts map[string]model.Account, g *graph.Graph) *Engine {
	if g == nil {
		g = graph.New()
	}
	cfg := config.Default()
	cfg.Network.Workers = 4
	return New(cfg, g, accounts)
}

func toMap(accounts []model.Account) map[string]model.Account {
	m := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		m[a.ID] = a
	}
	return m
}

func twentyPosts() []model.Post {
	out := make([]model.Post, 20)
	for i := range out {
		out[i] = model.Post{ID: string(rune('a' + i)), Interactions: 10}
	}
	return out
}

// score80 etc. construct accounts whose social score lands exactly on the
// target given the default weights (galaxy .30, interactions .25,
// sentiment .20, platforms .15, consistency .10).
func score80() model.Account {
	return model.Account{
		ID: "amy", GalaxyScore: 100, Sentiment: 100, Interactions24: 200000,
		Platforms: []string{"twitter", "youtube", "reddit", "tiktok"}, RecentPosts: twentyPosts(),
	}
}

func score45() model.Account {
	return model.Account{
		ID: "bob", GalaxyScore: 50, Sentiment: 50, Interactions24: 100000,
		Platforms: []string{"twitter", "youtube"}, RecentPosts: twentyPosts(),
	}
}

func score72() model.Account {
	return model.Account{
		ID: "cat", GalaxyScore: 90, Sentiment: 60, Interactions24: 470000,
		Platforms: []string{"twitter", "youtube", "reddit"}, RecentPosts: twentyPosts(),
	}
}

func TestSocialScoreTargets(t *testing.T) {
	e := newTestEngine(toMap([]model.Account{score80(), score45(), score72()}), nil)
	for _, tc := range []struct {
		a    model.Account
		want float64
	}{
		{score80(), 80},
		{score45(), 45},
		{score72(), 72},
	} {
		got := e.socialScore(tc.a)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("socialScore(%s) = %v, want %v", tc.a.ID, got, tc.want)
		}
	}
}

func TestBatchSummaryAndFlagOrdering(t *testing.T) {
	accounts := []model.Account{score80(), score45(), score72()}
	e := newTestEngine(toMap(accounts), nil)
	results, summary := e.ScoreBatch(accounts)
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if summary.FlaggedPercent != 66.7 {
		t.Fatalf("flagged percentage = %v, want 66.7", summary.FlaggedPercent)
	}
	if len(summary.Flagged) != 2 {
		t.Fatalf("flagged = %d, want 2", len(summary.Flagged))
	}
	if summary.Flagged[0].AccountID != "amy" || summary.Flagged[1].AccountID != "cat" {
		t.Fatalf("flagged order = [%s %s], want [amy cat]",
			summary.Flagged[0].AccountID, summary.Flagged[1].AccountID)
	}
	if summary.MinScore != 45 || summary.MaxScore != 80 {
		t.Fatalf("min/max = %v/%v, want 45/80", summary.MinScore, summary.MaxScore)
	}
}

func TestFlagTieOrderByAccountID(t *testing.T) {
	a, b := score80(), score80()
	a.ID, b.ID = "zeta", "alpha"
	e := newTestEngine(toMap([]model.Account{a, b}), nil)
	_, summary := e.ScoreBatch([]model.Account{a, b})
	if len(summary.Flagged) != 2 {
		t.Fatalf("flagged = %d, want 2", len(summary.Flagged))
	}
	if summary.Flagged[0].AccountID != "alpha" {
		t.Fatalf("equal scores must order by id ascending, got %s first", summary.Flagged[0].AccountID)
	}
}

func TestFlagConditionsAreIndependent(t *testing.T) {
	// baseline sits just under every threshold
	base := model.Account{
		ID: "x", GalaxyScore: 0, Sentiment: 0, Interactions24: 0,
		Platforms: []string{"twitter"},
	}
	e := newTestEngine(toMap([]model.Account{base}), nil)

	flagged, reasons := e.evaluateFlags(base, 69.9)
	if flagged || len(reasons) != 0 {
		t.Fatalf("baseline should not flag: %v %v", flagged, reasons)
	}

	flagged, reasons = e.evaluateFlags(base, 70)
	if !flagged || len(reasons) != 1 || !strings.Contains(reasons[0], "social score") {
		t.Fatalf("score threshold alone should add one reason: %v %v", flagged, reasons)
	}

	hot := base
	hot.Interactions24 = 1000000
	flagged, reasons = e.evaluateFlags(hot, 0)
	if !flagged || len(reasons) != 1 || !strings.Contains(reasons[0], "engagement") {
		t.Fatalf("engagement threshold alone should add one reason: %v %v", flagged, reasons)
	}

	warm := base
	warm.Sentiment = 80
	flagged, reasons = e.evaluateFlags(warm, 0)
	if !flagged || len(reasons) != 1 || !strings.Contains(reasons[0], "sentiment") {
		t.Fatalf("sentiment threshold alone should add one reason: %v %v", flagged, reasons)
	}

	wide := base
	wide.Platforms = []string{"twitter", "youtube", "reddit"}
	flagged, reasons = e.evaluateFlags(wide, 0)
	if !flagged || len(reasons) != 1 || !strings.Contains(reasons[0], "Multi-platform") {
		t.Fatalf("platform threshold alone should add one reason: %v %v", flagged, reasons)
	}
}

func TestNoSocialPresence(t *testing.T) {
	ghost := model.Account{ID: "ghost"}
	e := newTestEngine(toMap([]model.Account{ghost}), nil)
	res := e.ScoreAccount(ghost)
	if res.Flagged {
		t.Fatalf("no-presence account must not be flagged")
	}
	if len(res.FlagReasons) != 1 || res.FlagReasons[0] != "No social presence detected" {
		t.Fatalf("reasons = %v, want the no-presence marker", res.FlagReasons)
	}
	if res.SocialScore != 0 {
		t.Fatalf("no-presence social score = %v, want 0", res.SocialScore)
	}
}

func TestNetworkQualityUsesPeers(t *testing.T) {
	g := graph.New()
	g.AddEdge("hub", "p1", 1, "reply")
	g.AddEdge("hub", "p2", 1, "reply")
	accounts := toMap([]model.Account{
		{ID: "hub", Platforms: []string{"twitter"}},
		// p1 saturates the influence formula: base influence 100 > 50
		{ID: "p1", Followers: 1 << 30, Interactions24: 1 << 30, Rank: 1,
			Topics: []model.TopicInfluence{{Topic: "bitcoin l2", Percent: 90}}},
		{ID: "p2", Topics: []model.TopicInfluence{{Topic: "gardening", Percent: 100}}},
	})
	e := newTestEngine(accounts, g)
	// peers: avg influence 50, 1 high-influence, 1 aligned (ratio variant:
	// p1's single topic matches => 100 > 50), diversity 2 topics
	community := 1*0.4 + 1*0.3 + 2*0.3
	want := 50*0.3 + community*0.4 + 2*0.3
	got := e.networkQuality("hub")
	if math.Abs(got-want) > 0.01 {
		t.Fatalf("network quality = %v, want %v", got, want)
	}
	if e.networkQuality("p2") != 0 {
		t.Fatalf("peerless account should score 0")
	}
}

func TestNetworkPositionBuckets(t *testing.T) {
	e := newTestEngine(nil, nil)
	cases := []struct {
		rank int
		want string
	}{
		{1, "Top Tier"},
		{10000, "Top Tier"},
		{10001, "Mid Tier"},
		{100000, "Mid Tier"},
		{100001, "Emerging"},
		{0, "Emerging"}, // missing rank falls back to the sentinel
	}
	for _, tc := range cases {
		got := e.networkPosition(model.Account{Rank: tc.rank})
		if got != tc.want {
			t.Errorf("rank %d position = %s, want %s", tc.rank, got, tc.want)
		}
	}
}

func TestScoreAccountCarriesCentrality(t *testing.T) {
	g := graph.New()
	g.AddEdge("a", "b", 1, "")
	g.AddEdge("b", "c", 1, "")
	accounts := toMap([]model.Account{
		{ID: "a", Platforms: []string{"twitter"}},
		{ID: "b", Platforms: []string{"twitter"}},
		{ID: "c", Platforms: []string{"twitter"}},
	})
	e := newTestEngine(accounts, g)
	res := e.ScoreAccount(accounts["b"])
	if res.Degree != 1.0 {
		t.Fatalf("degree(b) = %v, want 1.0", res.Degree)
	}
	if res.Betweenness == 0 {
		t.Fatalf("middle of a path should have nonzero betweenness")
	}
}

func TestSummarizeSkipsIncomplete(t *testing.T) {
	e := newTestEngine(nil, nil)
	s := e.summarize([]model.ScoreResult{
		{AccountID: "ok", SocialScore: 40, Flagged: false},
		{AccountID: "bad", Incomplete: true},
	})
	if s.TotalAccounts != 2 || s.ScoredAccounts != 1 {
		t.Fatalf("counts = %d/%d, want 2/1", s.ScoredAccounts, s.TotalAccounts)
	}
	if s.MeanScore != 40 {
		t.Fatalf("mean = %v, want 40 (incomplete results excluded)", s.MeanScore)
	}
}
