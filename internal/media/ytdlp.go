// Package media resolves free-text queries to playable media references
// using a yt-dlp subprocess.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"connectdj/internal/core"
)

// searchPrefix asks yt-dlp for the single best text-search hit.
const searchPrefix = "ytsearch1:"

type lookupEntry struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	WebpageURL  string        `json:"webpage_url"`
	Duration    float64       `json:"duration"`
	Entries     []lookupEntry `json:"entries"`
}

// Lookup implements core.MediaLookup with a yt-dlp subprocess. The
// subprocess is blocking, so every search runs on the bounded worker pool.
type Lookup struct {
	config  *core.MediaConfig
	logger  *zap.Logger
	pool    *Pool
	cache   *SearchCache
	metrics core.Metrics
}

func NewLookup(config *core.MediaConfig, logger *zap.Logger, metrics core.Metrics) *Lookup {
	if metrics == nil {
		metrics = core.NopMetrics{}
	}

	return &Lookup{
		config:  config,
		logger:  logger,
		pool:    NewPool(config.Workers),
		cache:   NewSearchCache(config.CacheSize, config.CacheFalsePositives),
		metrics: metrics,
	}
}

// Search resolves a free-text query to its best media hit. Results are
// cached per query; playlist-shaped answers are unwrapped to their first
// entry.
func (l *Lookup) Search(ctx context.Context, query string) (*core.MediaResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &core.ValidationError{Reason: "nothing to search"}
	}

	if result, ok := l.cache.Get(query); ok {
		l.logger.Debug("Media lookup cache hit", zap.String("query", query))
		return result, nil
	}

	var entry lookupEntry
	err := l.pool.Do(ctx, func() error {
		return l.extract(ctx, query, &entry)
	})
	if err != nil {
		l.metrics.ObserveMediaLookup("error")
		return nil, err
	}

	if len(entry.Entries) > 0 {
		entry = entry.Entries[0]
	}
	if entry.WebpageURL == "" {
		l.metrics.ObserveMediaLookup("miss")
		return nil, &core.NotFoundError{Query: query}
	}

	result := &core.MediaResult{
		URL:         entry.WebpageURL,
		Title:       entry.Title,
		Description: entry.Description,
		Duration:    entry.Duration,
	}

	l.cache.Add(query, result)
	l.metrics.ObserveMediaLookup("ok")
	l.logger.Debug("Media lookup completed",
		zap.String("query", query),
		zap.String("url", result.URL))

	return result, nil
}

func (l *Lookup) extract(ctx context.Context, query string, out *lookupEntry) error {
	ctx, cancel := context.WithTimeout(ctx, l.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, l.config.YTDLPPath,
		"--dump-single-json",
		"--no-warnings",
		"--skip-download",
		searchPrefix+query)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("media lookup failed: %w", err)
	}

	if err := json.Unmarshal(stdout.Bytes(), out); err != nil {
		return fmt.Errorf("failed to decode media lookup output: %w", err)
	}

	return nil
}
