package lcclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"degrants/internal/metrics"
	"degrants/internal/model"

	"golang.org/x/time/rate"
)

// Client defines the fetch surface the scoring pipeline needs. The core
// never calls this directly; it only sees the snapshot the pipeline builds.
type Client interface {
	GetCreator(ctx context.Context, network, name string) (model.Account, error)
	GetCreatorPosts(ctx context.Context, network, name string, limit int) ([]model.Post, error)
	GetPostInteractions(ctx context.Context, postID string) ([]model.Edge, error)
}

// ErrNotFound marks a creator the analytics service does not know.
// Callers treat it as an absent profile, not a batch failure.
var ErrNotFound = errors.New("creator not found")

// HTTPClient is a bearer-token client for the LunarCrush v4 API.
type HTTPClient struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseBackoff time.Duration
}

func NewHTTPClient(apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:     "https://lunarcrush.com/api4",
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		limiter:     newDefaultLimiter(),
		maxAttempts: getEnvInt("LC_API_MAX_ATTEMPTS", 5),
		baseBackoff: time.Duration(getEnvInt("LC_API_BASE_BACKOFF_MS", 500)) * time.Millisecond,
	}
}

func (c *HTTPClient) auth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
}

// GetCreator fetches one creator profile. Missing numeric fields decode to
// zero; a missing rank is normalized to the sentinel downstream.
func (c *HTTPClient) GetCreator(ctx context.Context, network, name string) (model.Account, error) {
	var out model.Account
	if name == "" {
		return out, errors.New("empty creator name")
	}
	u := fmt.Sprintf("%s/public/creator/%s/%s/v1", c.baseURL, url.PathEscape(network), url.PathEscape(name))
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	c.auth(req)
	if err := c.limiter.Wait(ctx); err != nil {
		return out, err
	}
	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return out, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return out, fmt.Errorf("lunarcrush api status %d", resp.StatusCode)
	}
	var raw struct {
		Data struct {
			ID             string  `json:"creator_id"`
			Name           string  `json:"creator_name"`
			DisplayName    string  `json:"creator_display_name"`
			Followers      int     `json:"creator_followers"`
			Rank           int     `json:"creator_rank"`
			Interactions24 int     `json:"interactions_24h"`
			Sentiment      float64 `json:"sentiment"`
			GalaxyScore    float64 `json:"galaxy_score"`
			TopicInfluence []struct {
				Topic   string  `json:"topic"`
				Count   int     `json:"count"`
				Percent float64 `json:"percent"`
				Rank    int     `json:"rank"`
			} `json:"topic_influence"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return out, err
	}
	d := raw.Data
	out = model.Account{
		ID:             d.ID,
		Name:           d.Name,
		DisplayName:    d.DisplayName,
		Followers:      d.Followers,
		Rank:           d.Rank,
		Interactions24: d.Interactions24,
		Sentiment:      d.Sentiment,
		GalaxyScore:    d.GalaxyScore,
	}
	if out.ID == "" {
		out.ID = d.Name
	}
	if out.Rank <= 0 {
		out.Rank = model.RankSentinel
	}
	for _, t := range d.TopicInfluence {
		out.Topics = append(out.Topics, model.TopicInfluence{Topic: t.Topic, Count: t.Count, Percent: t.Percent, Rank: t.Rank})
	}
	return out, nil
}

// GetCreatorPosts returns the creator's most recent posts with interaction totals.
func (c *HTTPClient) GetCreatorPosts(ctx context.Context, network, name string, limit int) ([]model.Post, error) {
	u := fmt.Sprintf("%s/public/creator/%s/%s/posts/v1?limit=%d", c.baseURL, url.PathEscape(network), url.PathEscape(name), clampInt(limit, 1, 100))
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	c.auth(req)
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("lunarcrush api status %d", resp.StatusCode)
	}
	var raw struct {
		Data []struct {
			ID           string `json:"id"`
			Interactions int    `json:"interactions_total"`
			CreatedUnix  int64  `json:"post_created"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	out := make([]model.Post, 0, len(raw.Data))
	for _, d := range raw.Data {
		out = append(out, model.Post{ID: d.ID, Interactions: d.Interactions, CreatedAt: time.Unix(d.CreatedUnix, 0).UTC()})
	}
	return out, nil
}

// GetPostInteractions returns interaction edges attributed to one post.
func (c *HTTPClient) GetPostInteractions(ctx context.Context, postID string) ([]model.Edge, error) {
	u := fmt.Sprintf("%s/public/posts/%s/interactions/v1", c.baseURL, url.PathEscape(postID))
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	c.auth(req)
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("lunarcrush api status %d", resp.StatusCode)
	}
	var raw struct {
		Data []struct {
			CreatorID string  `json:"creator_id"`
			TargetID  string  `json:"target_id"`
			Strength  float64 `json:"interaction_strength"`
			Type      string  `json:"type"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	out := make([]model.Edge, 0, len(raw.Data))
	for _, d := range raw.Data {
		w := d.Strength
		if w == 0 {
			w = 1
		}
		out = append(out, model.Edge{Source: d.CreatorID, Target: d.TargetID, Weight: w, Type: d.Type})
	}
	return out, nil
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func (c *HTTPClient) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	backoff := c.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.httpClient.Do(req.Clone(ctx))
		if err == nil {
			if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599) {
				ra := resp.Header.Get("Retry-After")
				_ = resp.Body.Close()
				lastErr = fmt.Errorf("status %d", resp.StatusCode)
				metrics.IncAPIRetry(req.URL.Path)
				wait := backoff
				if ra != "" {
					if secs, err := strconv.Atoi(ra); err == nil {
						wait = time.Duration(secs) * time.Second
					} else if t, err := http.ParseTime(ra); err == nil {
						if d := time.Until(t); d > 0 {
							wait = d
						}
					}
				}
				// jitter +/-20%
				jitter := time.Duration(float64(wait) * 0.2)
				if jitter > 0 {
					wait = wait - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter))
				}
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				backoff *= 2
				continue
			}
			return resp, nil
		}
		lastErr = err
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("request failed after %d attempts: %v", c.maxAttempts, lastErr)
}
