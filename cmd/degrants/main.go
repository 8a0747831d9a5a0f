package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"degrants/internal/cmdlog"
	"degrants/internal/config"
	"degrants/internal/jobs"
	"degrants/internal/lcclient"
	"degrants/internal/metrics"
	"degrants/internal/model"
	"degrants/internal/report"
	"degrants/internal/store"
	"degrants/internal/theme"
)

const version = "0.3.0"

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "init":
		cmdInit()
	case "score":
		cmdScore()
	case "batch":
		cmdBatch()
	case "history":
		cmdHistory()
	case "version":
		fmt.Println("degrants", version)
	default:
		printHelp()
	}
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: degrants <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init        Create a config file at ./degrants.yaml")
	fmt.Println("  score       Score a single creator handle")
	fmt.Println("  batch       Score a batch of applicants from a snapshot or handle list")
	fmt.Println("  history     Show stored scoring runs")
	fmt.Println("  version     Print the version")
}

func mustLoadConfig(path string) config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	return cfg
}

func cmdInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", "./degrants.yaml", "path to write config")
	_ = fs.Parse(os.Args[2:])
	cfg := config.Default()
	if err := config.Save(*path, cfg); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner()
	fmt.Println("Config written to:", abs)
}

func cmdScore() {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	cfgPath := fs.String("config", "./degrants.yaml", "config path")
	network := fs.String("network", "twitter", "social network")
	handle := fs.String("handle", "", "creator handle")
	_ = fs.Parse(os.Args[2:])
	if *handle == "" {
		fmt.Println("error: -handle is required")
		os.Exit(1)
	}
	cfg := mustLoadConfig(*cfgPath)
	metrics.StartServer(cfg.Metrics.Addr)
	err := cmdlog.Run("score", func() error {
		client := lcclient.NewHTTPClient(cfg.Credentials.APIKey)
		snap, err := jobs.FetchSnapshot(context.Background(), client, *network, []string{*handle}, cfg.Propagation.RecentPosts)
		if err != nil {
			return err
		}
		results, summary := jobs.Run(cfg, snap)
		fmt.Print(report.Markdown(summary, results))
		return nil
	})
	if err != nil {
		os.Exit(1)
	}
}

func cmdBatch() {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	cfgPath := fs.String("config", "./degrants.yaml", "config path")
	network := fs.String("network", "twitter", "social network")
	handlesPath := fs.String("handles", "", "file with one creator handle per line")
	snapshotPath := fs.String("snapshot", "", "pre-fetched snapshot JSON (skips API fetch)")
	out := fs.String("out", "./degrants-report.json", "JSON report output path")
	md := fs.String("md", "", "optional markdown report output path")
	_ = fs.Parse(os.Args[2:])
	cfg := mustLoadConfig(*cfgPath)
	metrics.StartServer(cfg.Metrics.Addr)
	err := cmdlog.Run("batch", func() error {
		var snap jobs.Snapshot
		var err error
		switch {
		case *snapshotPath != "":
			snap, err = loadSnapshot(*snapshotPath)
		case *handlesPath != "":
			var names []string
			names, err = loadHandles(*handlesPath)
			if err != nil {
				return err
			}
			client := lcclient.NewHTTPClient(cfg.Credentials.APIKey)
			snap, err = jobs.FetchSnapshot(context.Background(), client, *network, names, cfg.Propagation.RecentPosts)
		default:
			return fmt.Errorf("one of -handles or -snapshot is required")
		}
		if err != nil {
			return err
		}
		results, summary := jobs.Run(cfg, snap)
		if err := report.WriteJSON(*out, summary, results); err != nil {
			return err
		}
		if *md != "" {
			if err := os.WriteFile(*md, []byte(report.Markdown(summary, results)), 0o644); err != nil {
				return err
			}
		}
		if cfg.Storage.DBPath != "" {
			db, err := store.Open(cfg.Storage.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()
			if _, err := db.PutRun(context.Background(), summary, results); err != nil {
				return err
			}
		}
		fmt.Printf("Scored %d accounts, %d flagged (%.1f%%). Report: %s\n",
			summary.ScoredAccounts, len(summary.Flagged), summary.FlaggedPercent, *out)
		return nil
	})
	if err != nil {
		os.Exit(1)
	}
}

func cmdHistory() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	cfgPath := fs.String("config", "./degrants.yaml", "config path")
	limit := fs.Int("limit", 20, "entries to show")
	account := fs.String("account", "", "show one account's scores across runs")
	runID := fs.Int64("run", 0, "show the stored results of one run")
	_ = fs.Parse(os.Args[2:])
	cfg := mustLoadConfig(*cfgPath)
	err := cmdlog.Run("history", func() error {
		db, err := store.Open(cfg.Storage.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		ctx := context.Background()
		switch {
		case *account != "":
			hist, err := db.HistoryForAccount(ctx, *account, *limit)
			if err != nil {
				return err
			}
			for _, r := range hist {
				printResultLine(r)
			}
		case *runID != 0:
			results, err := db.LoadResults(ctx, *runID)
			if err != nil {
				return err
			}
			for _, r := range results {
				printResultLine(r)
			}
		default:
			runs, err := db.ListRuns(ctx, *limit)
			if err != nil {
				return err
			}
			for _, r := range runs {
				fmt.Printf("run=%d ts=%s scored=%d/%d mean=%.2f flagged=%.1f%%\n",
					r.ID, r.TS.Format("2006-01-02 15:04"), r.ScoredAccounts, r.TotalAccounts, r.MeanScore, r.FlaggedPercent)
			}
		}
		return nil
	})
	if err != nil {
		os.Exit(1)
	}
}

func printResultLine(r model.ScoreResult) {
	mark := " "
	if r.Flagged {
		mark = "F"
	}
	if r.Incomplete {
		fmt.Printf("%s %-20s incomplete (%s)\n", mark, r.AccountID, r.Err)
		return
	}
	fmt.Printf("%s %-20s score=%.2f influence=%.2f alignment=%.1f%%\n",
		mark, r.AccountID, r.SocialScore, r.BaseInfluence, r.AlignmentScore)
}

func loadHandles(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []string
	cur := ""
	flush := func() {
		if cur != "" {
			out = append(out, cur)
			cur = ""
		}
	}
	for _, r := range string(b) {
		switch r {
		case '\n', '\r', ',':
			flush()
		case ' ', '\t':
		default:
			cur += string(r)
		}
	}
	flush()
	return out, nil
}

func loadSnapshot(path string) (jobs.Snapshot, error) {
	var snap jobs.Snapshot
	b, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	var raw struct {
		Accounts []model.Account `json:"accounts"`
		Edges    []model.Edge    `json:"edges"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return snap, err
	}
	snap.Accounts = raw.Accounts
	snap.Edges = raw.Edges
	for i := range snap.Accounts {
		if snap.Accounts[i].Rank <= 0 {
			snap.Accounts[i].Rank = model.RankSentinel
		}
	}
	return snap, nil
}
