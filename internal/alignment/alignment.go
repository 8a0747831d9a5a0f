package alignment

import (
	"strings"

	"degrants/internal/config"
	"degrants/internal/model"
	"degrants/internal/util"
)

// Item is one unit of account content to match: a topic name or free text,
// with the share of the account's content it represents.
type Item struct {
	Text    string
	Percent float64
}

// Result is the outcome of matching one account's items against the taxonomy.
type Result struct {
	Score           float64 // [0,100]
	Categories      map[string]model.CategoryMatch
	MatchedKeywords []string
}

// Matcher scores content items against an immutable weighted keyword
// taxonomy. The taxonomy is passed in at construction; there is no shared
// module state, so per-run overrides are just a different Matcher.
type Matcher struct {
	cfg config.AlignmentConfig
}

func New(cfg config.AlignmentConfig) *Matcher {
	return &Matcher{cfg: cfg}
}

// ItemsFromTopics adapts an account's topic influence list to match input.
func ItemsFromTopics(topics []model.TopicInfluence) []Item {
	items := make([]Item, 0, len(topics))
	for _, t := range topics {
		items = append(items, Item{Text: t.Topic, Percent: t.Percent})
	}
	return items
}

// Match runs case-insensitive substring matching of every item against
// every keyword in every category. Item text has its whitespace collapsed
// first so multi-word keywords match across tabs and line breaks. The overall score follows the
// configured variant: "ratio" scores matched-items/total-items as a
// percentage, "weighted" sums percent x category weight over matches.
// Matching is pure; identical input always yields identical output.
func (m *Matcher) Match(items []Item) Result {
	res := Result{Categories: make(map[string]model.CategoryMatch, len(m.cfg.Categories))}
	for _, cat := range m.cfg.Categories {
		res.Categories[cat.Name] = model.CategoryMatch{Level: "Low"}
	}
	if len(items) == 0 {
		return res
	}

	matchedItems := 0
	weightedSum := 0.0
	for _, item := range items {
		itemMatched := false
		text := util.NormalizeWhitespace(item.Text)
		for _, cat := range m.cfg.Categories {
			found := util.MatchKeywords(text, cat.Keywords)
			if len(found) == 0 {
				continue
			}
			itemMatched = true
			cm := res.Categories[cat.Name]
			cm.RawCount += len(found)
			cm.Score += item.Percent * cat.Weight
			for _, kw := range found {
				if !containsFold(cm.Keywords, kw) {
					cm.Keywords = append(cm.Keywords, kw)
				}
				if !containsFold(res.MatchedKeywords, kw) {
					res.MatchedKeywords = append(res.MatchedKeywords, kw)
				}
			}
			res.Categories[cat.Name] = cm
			weightedSum += item.Percent * cat.Weight
		}
		if itemMatched {
			matchedItems++
		}
	}

	for name, cm := range res.Categories {
		cm.Level = m.classify(cm.RawCount)
		res.Categories[name] = cm
	}

	switch m.cfg.Variant {
	case "weighted":
		res.Score = util.Clamp(weightedSum, 0, 100)
	default: // ratio
		res.Score = float64(matchedItems) / float64(len(items)) * 100
	}
	return res
}

func (m *Matcher) classify(rawCount int) string {
	switch {
	case rawCount >= m.cfg.HighThreshold:
		return "High"
	case rawCount >= m.cfg.MedThreshold:
		return "Medium"
	default:
		return "Low"
	}
}

func containsFold(list []string, s string) bool {
	for _, x := range list {
		if strings.EqualFold(x, s) {
			return true
		}
	}
	return false
}
