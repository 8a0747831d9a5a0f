package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"degrants/internal/model"
)

// WriteJSON exports the batch summary and per-account results to path.
func WriteJSON(path string, summary model.BatchSummary, results []model.ScoreResult) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload := struct {
		Summary model.BatchSummary  `json:"summary"`
		Results []model.ScoreResult `json:"results"`
	}{Summary: summary, Results: results}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Markdown renders a human-readable evaluation report.
func Markdown(summary model.BatchSummary, results []model.ScoreResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Grant Applicant Social Analysis\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", summary.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "- **Accounts analyzed**: %d of %d\n", summary.ScoredAccounts, summary.TotalAccounts)
	fmt.Fprintf(&b, "- **Mean score**: %.2f (min %.2f, max %.2f)\n", summary.MeanScore, summary.MinScore, summary.MaxScore)
	fmt.Fprintf(&b, "- **Flagged**: %d (%.1f%%)\n\n", len(summary.Flagged), summary.FlaggedPercent)

	if len(summary.Flagged) > 0 {
		fmt.Fprintf(&b, "## Flagged Accounts\n\n")
		for i, r := range summary.Flagged {
			fmt.Fprintf(&b, "### %d. %s — %.2f/100\n\n", i+1, r.AccountID, r.SocialScore)
			for _, reason := range r.FlagReasons {
				fmt.Fprintf(&b, "- %s\n", reason)
			}
			fmt.Fprintf(&b, "\n")
		}
	}

	fmt.Fprintf(&b, "## Per-Account Detail\n\n")
	for _, r := range results {
		fmt.Fprintf(&b, "### %s\n\n", r.AccountID)
		if r.Incomplete {
			fmt.Fprintf(&b, "- **Status**: incomplete (%s)\n\n", r.Err)
			continue
		}
		fmt.Fprintf(&b, "- **Social score**: %.2f/100\n", r.SocialScore)
		fmt.Fprintf(&b, "- **Base influence**: %.2f/100\n", r.BaseInfluence)
		for i, h := range r.HopInfluence {
			fmt.Fprintf(&b, "- **%d-hop influence**: %.3f\n", i+1, h)
		}
		fmt.Fprintf(&b, "- **Total reach**: %.3f\n", r.TotalReach)
		fmt.Fprintf(&b, "- **Viral coefficient**: %.3f\n", r.ViralCoeff)
		fmt.Fprintf(&b, "- **Alignment score**: %.1f%%\n", r.AlignmentScore)
		fmt.Fprintf(&b, "- **Network quality**: %.1f\n", r.NetworkQuality)
		if r.NetworkPosition != "" {
			fmt.Fprintf(&b, "- **Network position**: %s\n", r.NetworkPosition)
		}
		fmt.Fprintf(&b, "- **Centrality**: degree %.3f, betweenness %.3f, closeness %.3f, eigenvector %.3f\n",
			r.Degree, r.Betweenness, r.Closeness, r.Eigenvector)
		if len(r.Categories) > 0 {
			names := make([]string, 0, len(r.Categories))
			for name := range r.Categories {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				cm := r.Categories[name]
				fmt.Fprintf(&b, "- **%s**: %s (%d matches)\n", name, cm.Level, cm.RawCount)
			}
		}
		if len(r.MatchedKeywords) > 0 {
			fmt.Fprintf(&b, "- **Matched keywords**: %s\n", strings.Join(r.MatchedKeywords, ", "))
		}
		fmt.Fprintf(&b, "\n")
	}
	return b.String()
}
