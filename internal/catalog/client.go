// Package catalog provides the Connect catalog API client and the catalog
// identifier classifier.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"connectdj/internal/core"
	"connectdj/pkg/fuzzy"
)

// Neutral not-found messages returned inside an error body; these are
// translated to NotFoundError instead of being surfaced verbatim.
const (
	msgResourceNotFound = "The specified resource was not found."
	msgArtistNotFound   = "Artist not found."
)

type releasePage struct {
	Results []core.Release `json:"results"`
}

type trackPage struct {
	Results []core.Track `json:"results"`
}

type artistPage struct {
	Results []core.Artist `json:"results"`
}

// Client issues lookup calls against the Connect catalog API. A Client holds
// only a transport handle and may be shared read-only across sessions.
type Client struct {
	config     *core.ConnectConfig
	logger     *zap.Logger
	httpClient *http.Client
	normalizer *fuzzy.Normalizer
	metrics    core.Metrics
}

func NewClient(config *core.ConnectConfig, logger *zap.Logger, metrics core.Metrics) *Client {
	if metrics == nil {
		metrics = core.NopMetrics{}
	}

	return &Client{
		config:     config,
		logger:     logger,
		httpClient: &http.Client{Timeout: config.Timeout},
		normalizer: fuzzy.NewNormalizer(),
		metrics:    metrics,
	}
}

// GetRelease resolves a query to a release and its ordered track list. A
// query that classifies as a catalog identifier is fetched directly;
// anything else goes through the fuzzy multi-field search and takes the top
// result. The track list is always a second round trip: the API exposes no
// joined query, and a failure there fails the whole operation.
func (c *Client) GetRelease(ctx context.Context, query string) (*core.Release, []core.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil, &core.ValidationError{Reason: "nothing to search"}
	}

	var release core.Release

	if IsCatalogID(query) {
		id := strings.ToUpper(query)
		if err := c.getJSON(ctx, "release", "/catalog/release/"+id, id, &release); err != nil {
			return nil, nil, err
		}
	} else {
		normalized := c.normalizer.NormalizeQuery(query)
		path := "/catalog/release" +
			fuzzyOrQuery(normalized, "title", "renderedArtists", "catalogId") +
			fmt.Sprintf("&limit=%d", c.config.SearchLimit)

		var page releasePage
		if err := c.getJSON(ctx, "release-search", path, query, &page); err != nil {
			return nil, nil, err
		}
		if len(page.Results) == 0 {
			return nil, nil, &core.NotFoundError{Query: query}
		}
		release = page.Results[0]
	}

	var tracks trackPage
	if err := c.getJSON(ctx, "release-tracks", "/catalog/release/"+release.ID+"/tracks", query, &tracks); err != nil {
		return nil, nil, err
	}

	c.logger.Debug("Resolved release",
		zap.String("query", query),
		zap.String("releaseID", release.ID),
		zap.String("catalogID", release.CatalogID),
		zap.Int("trackCount", len(tracks.Results)))

	return &release, tracks.Results, nil
}

// ReleaseFromID fetches a release directly by its internal identity.
func (c *Client) ReleaseFromID(ctx context.Context, id string) (*core.Release, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &core.ValidationError{Reason: "no id given"}
	}

	var release core.Release
	if err := c.getJSON(ctx, "release", "/catalog/release/"+id, id, &release); err != nil {
		return nil, err
	}

	return &release, nil
}

// GetTrack fuzzy-searches individual tracks over title and artist fields and
// returns the top hit. This finds e.g. an album's mix track without pulling
// the whole album.
func (c *Client) GetTrack(ctx context.Context, query string) (*core.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &core.ValidationError{Reason: "nothing to search"}
	}

	slug := c.normalizer.TrackSlug(query)
	path := "/catalog/track" +
		fuzzyOrQuery(slug, "title", "artistsTitle") +
		fmt.Sprintf("&limit=%d", c.config.SearchLimit)

	var page trackPage
	if err := c.getJSON(ctx, "track-search", path, query, &page); err != nil {
		return nil, err
	}
	if len(page.Results) == 0 {
		return nil, &core.NotFoundError{Query: query}
	}

	return &page.Results[0], nil
}

// SearchMonstercatTracks fuzzy-searches tracks credited to Monstercat itself
// (mixes and podcast episodes) and returns the full ranked result set.
func (c *Client) SearchMonstercatTracks(ctx context.Context, query string) ([]core.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &core.ValidationError{Reason: "nothing to search"}
	}

	slug := c.normalizer.TrackSlug(query)
	path := fmt.Sprintf("/catalog/track?fuzzy=title,%s,artistsTitle,monstercat&limit=%d",
		url.QueryEscape(slug), c.config.SearchLimit)

	var page trackPage
	if err := c.getJSON(ctx, "track-search", path, query, &page); err != nil {
		return nil, err
	}
	if len(page.Results) == 0 {
		return nil, &core.NotFoundError{Query: query}
	}

	return page.Results, nil
}

// GetMonstercatTrack returns the top hit of SearchMonstercatTracks.
func (c *Client) GetMonstercatTrack(ctx context.Context, query string) (*core.Track, error) {
	tracks, err := c.SearchMonstercatTracks(ctx, query)
	if err != nil {
		return nil, err
	}

	return &tracks[0], nil
}

// GetArtist resolves an artist and their releases. The direct vanity slug
// lookup is tried first; a not-found answer falls back to the fuzzy search
// over name and vanity URI fields.
func (c *Client) GetArtist(ctx context.Context, query string) (*core.Artist, []core.Release, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil, &core.ValidationError{Reason: "nothing to search"}
	}

	var artist core.Artist

	slug := c.normalizer.ArtistSlug(query)
	err := c.getJSON(ctx, "artist", "/catalog/artist/"+slug, query, &artist)
	if err != nil {
		var notFound *core.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, nil, err
		}

		path := "/catalog/artist" +
			fuzzyOrQuery(query, "name", "vanityUri") +
			fmt.Sprintf("&limit=%d", c.config.SearchLimit)

		var page artistPage
		if err := c.getJSON(ctx, "artist-search", path, query, &page); err != nil {
			return nil, nil, err
		}
		if len(page.Results) == 0 {
			return nil, nil, &core.NotFoundError{Query: query}
		}
		artist = page.Results[0]
	}

	var releases releasePage
	if err := c.getJSON(ctx, "artist-releases", "/catalog/artist/"+artist.VanityURI+"/releases", query, &releases); err != nil {
		return nil, nil, err
	}

	c.logger.Debug("Resolved artist",
		zap.String("query", query),
		zap.String("artist", artist.Name),
		zap.Int("releaseCount", len(releases.Results)))

	return &artist, releases.Results, nil
}

// fuzzyOrQuery builds the fuzzyOr query string: each field is paired with the
// escaped search term.
func fuzzyOrQuery(search string, fields ...string) string {
	escaped := url.QueryEscape(search)

	pairs := make([]string, 0, len(fields))
	for _, field := range fields {
		pairs = append(pairs, field+","+escaped)
	}

	return "?fuzzyOr=" + strings.Join(pairs, ",")
}

func (c *Client) getJSON(ctx context.Context, operation, path, query string, out any) error {
	start := time.Now()

	err := c.doGetJSON(ctx, path, query, out)

	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.ObserveRemoteCall(operation, status, time.Since(start))

	return err
}

func (c *Client) doGetJSON(ctx context.Context, path, query string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, http.NoBody)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read catalog response: %w", err)
	}

	// Body first: an error-bearing body carries a more specific failure than
	// the status code, whatever the status is.
	if err := checkAPIError(body, query); err != nil {
		return err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &core.RemoteError{StatusCode: resp.StatusCode}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}

	return nil
}

type apiError struct {
	Err     json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// checkAPIError translates an error-bearing response body into the resolver
// error taxonomy. The API reports application errors inside the body
// regardless of the HTTP status.
func checkAPIError(body []byte, query string) error {
	var e apiError
	if err := json.Unmarshal(body, &e); err != nil {
		// Not an object-shaped body; leave it to the caller's decode.
		return nil
	}

	if len(e.Err) == 0 || string(e.Err) == "null" {
		return nil
	}

	switch e.Message {
	case msgResourceNotFound, msgArtistNotFound:
		return &core.NotFoundError{Query: query}
	default:
		return &core.RemoteError{Message: e.Message}
	}
}
