package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model.
// It captures API credentials, scoring constants, the keyword taxonomy,
// and flagging thresholds.
type Config struct {
	Credentials CredentialsConfig `yaml:"credentials"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Propagation PropagationConfig `yaml:"propagation"`
	Flagging    FlaggingConfig    `yaml:"flagging"`
	Alignment   AlignmentConfig   `yaml:"alignment"`
	Network     NetworkConfig     `yaml:"network"`
	Storage     StorageConfig     `yaml:"storage"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type CredentialsConfig struct {
	// LunarCrush API bearer token. If empty, read from env LUNARCRUSH_API_KEY
	APIKey string `yaml:"apiKey"`
}

// ScoringConfig holds the normalization constants for the influence formula.
// The formula lives in internal/influence and is the only place these are
// applied; every caller goes through it.
type ScoringConfig struct {
	FollowerScale    float64 `yaml:"followerScale"`
	InteractionScale float64 `yaml:"interactionScale"`
	RankCeiling      float64 `yaml:"rankCeiling"`
	RankScale        float64 `yaml:"rankScale"`
	Cap              float64 `yaml:"cap"`
	FollowerWeight   float64 `yaml:"followerWeight"`
	InteractWeight   float64 `yaml:"interactWeight"`
	RankWeight       float64 `yaml:"rankWeight"`
}

type PropagationConfig struct {
	// Per-hop multiplicative attenuation, must be in (0,1]
	DecayFactor float64 `yaml:"decayFactor"`
	MaxHops     int     `yaml:"maxHops"`
	// Power-iteration bounds for eigenvector centrality
	EigenIterations int     `yaml:"eigenIterations"`
	EigenTolerance  float64 `yaml:"eigenTolerance"`
	// Most recent posts considered for the viral coefficient
	RecentPosts int `yaml:"recentPosts"`
}

type FlaggingConfig struct {
	HighScore      float64 `yaml:"highScore"`
	HighEngagement int     `yaml:"highEngagement"`
	PositiveSent   float64 `yaml:"positiveSentiment"`
	MultiPlatform  int     `yaml:"multiPlatform"`
}

// AlignmentConfig defines the keyword taxonomy and the scoring variant.
// Variant "ratio" scores matched-items/total-items; "weighted" sums
// percent x category weight. One variant per run, never mixed.
type AlignmentConfig struct {
	Variant       string             `yaml:"variant"`
	HighThreshold int                `yaml:"highThreshold"`
	MedThreshold  int                `yaml:"medThreshold"`
	Categories    []TaxonomyCategory `yaml:"categories"`
}

type TaxonomyCategory struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Weight   float64  `yaml:"weight"`
}

// NetworkConfig holds peer/positional thresholds for network quality.
// The rank cutoffs are platform-specific tuning, not domain constants.
type NetworkConfig struct {
	HighInfluence float64 `yaml:"highInfluence"`
	HighAlignment float64 `yaml:"highAlignment"`
	CoreRank      int     `yaml:"coreRank"`
	ActiveRank    int     `yaml:"activeRank"`
	Workers       int     `yaml:"workers"`
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Credentials: CredentialsConfig{APIKey: ""},
		Scoring: ScoringConfig{
			FollowerScale:    10000,
			InteractionScale: 100000,
			RankCeiling:      1000000,
			RankScale:        10000,
			Cap:              100,
			FollowerWeight:   0.4,
			InteractWeight:   0.4,
			RankWeight:       0.2,
		},
		Propagation: PropagationConfig{
			DecayFactor:     0.7,
			MaxHops:         3,
			EigenIterations: 1000,
			EigenTolerance:  1e-6,
			RecentPosts:     20,
		},
		Flagging: FlaggingConfig{
			HighScore:      70,
			HighEngagement: 1000000,
			PositiveSent:   80,
			MultiPlatform:  3,
		},
		Alignment: AlignmentConfig{
			Variant:       "ratio",
			HighThreshold: 3,
			MedThreshold:  1,
			Categories: []TaxonomyCategory{
				{Name: "core_development", Weight: 0.25, Keywords: []string{
					"block production", "transaction speed", "clarity", "wasm",
					"stacking improvements", "miner transaction replay", "pox 5", "nakamoto",
				}},
				{Name: "sbtc_features", Weight: 0.25, Keywords: []string{
					"sbtc withdrawal", "custody support", "institutional support",
					"trustless sbtc", "self-custody", "bitcoin post-conditions",
					"bitvm", "data availability", "synthetic bitcoin",
				}},
				{Name: "ecosystem_growth", Weight: 0.25, Keywords: []string{
					"defi growth", "tvl", "liquidity", "lp incentives",
					"exchange listings", "interoperability", "bridges",
					"bns", "stablecoins", "wallet integrations", "grants",
				}},
				{Name: "bitcoin_integration", Weight: 0.25, Keywords: []string{
					"bitcoin l2", "bitcoin defi", "bitcoin yield",
					"bitcoin capital", "bitcoin economy", "bitcoin hashpower",
					"bitcoin layer 2", "bitcoin scaling",
				}},
			},
		},
		Network: NetworkConfig{
			HighInfluence: 50,
			HighAlignment: 50,
			CoreRank:      10000,
			ActiveRank:    100000,
			Workers:       8,
		},
		Storage: StorageConfig{DBPath: "./degrants.db"},
		Metrics: MetricsConfig{Addr: ""},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if c.Credentials.APIKey == "" {
		c.Credentials.APIKey = os.Getenv("LUNARCRUSH_API_KEY")
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = os.Getenv("METRICS_ADDR")
	}
}

const weightTolerance = 1e-9

// Validate rejects configurations that would corrupt scoring. Invalid
// configuration is fatal at load time; every other input problem degrades
// to documented defaults instead.
func (c *Config) Validate() error {
	s := c.Scoring
	if s.FollowerScale <= 0 || s.InteractionScale <= 0 || s.RankScale <= 0 || s.RankCeiling <= 0 {
		return errors.New("scoring: scale constants must be positive")
	}
	if s.Cap <= 0 {
		return errors.New("scoring: cap must be positive")
	}
	if d := s.FollowerWeight + s.InteractWeight + s.RankWeight - 1.0; d > weightTolerance || d < -weightTolerance {
		return fmt.Errorf("scoring: weights sum to %v, want 1.0", s.FollowerWeight+s.InteractWeight+s.RankWeight)
	}
	p := c.Propagation
	if p.DecayFactor <= 0 || p.DecayFactor > 1 {
		return fmt.Errorf("propagation: decay factor %v outside (0,1]", p.DecayFactor)
	}
	if p.MaxHops < 1 {
		return fmt.Errorf("propagation: maxHops %d < 1", p.MaxHops)
	}
	if p.EigenIterations < 1 {
		return errors.New("propagation: eigenIterations must be >= 1")
	}
	f := c.Flagging
	if f.HighScore <= 0 || f.HighScore > 100 {
		return fmt.Errorf("flagging: highScore %v outside (0,100]", f.HighScore)
	}
	if f.HighEngagement < 1 {
		return errors.New("flagging: highEngagement must be >= 1")
	}
	if f.PositiveSent <= 0 || f.PositiveSent > 100 {
		return fmt.Errorf("flagging: positiveSentiment %v outside (0,100]", f.PositiveSent)
	}
	if f.MultiPlatform < 1 {
		return errors.New("flagging: multiPlatform must be >= 1")
	}
	if c.Alignment.Variant != "ratio" && c.Alignment.Variant != "weighted" {
		return fmt.Errorf("alignment: unknown variant %q", c.Alignment.Variant)
	}
	if len(c.Alignment.Categories) == 0 {
		return errors.New("alignment: no taxonomy categories")
	}
	for _, cat := range c.Alignment.Categories {
		if cat.Name == "" || len(cat.Keywords) == 0 {
			return fmt.Errorf("alignment: category %q has no keywords", cat.Name)
		}
	}
	if c.Network.Workers < 1 {
		return errors.New("network: workers must be >= 1")
	}
	return nil
}

// Load reads YAML config from path and validates it.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
