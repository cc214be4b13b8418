package stream

import (
	"context"
	"math"
	"regexp"
	"time"

	"go.uber.org/zap"

	"connectdj/internal/core"
)

var youtubeLinkRegex = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?youtube\.com`)

// SingleSource is the playback session for a regular single-track release.
// Single-owner: the creating session drives it through its lifecycle, and
// concurrent GetInfo/Load calls are not supported.
type SingleSource struct {
	query string
	deps  Deps

	release        *core.Release
	hasCatalogData bool

	title      string
	artists    string
	catalogID  string
	genre      string
	bpm        int
	duration   int
	thumbURL   string
	releasedAt time.Time
	streamURL  string
	videoURL   string

	handle *AudioHandle
}

func NewSingleSource(query string, deps Deps) *SingleSource {
	return &SingleSource{query: query, deps: deps}
}

// NewSingleSourceWithData builds a source pre-seeded with already-fetched
// catalog data; GetInfo will then skip the catalog round trips.
func NewSingleSourceWithData(query string, release *core.Release, tracks []core.Track, deps Deps) (*SingleSource, error) {
	s := NewSingleSource(query, deps)
	if err := s.setCatalogData(release, tracks); err != nil {
		return nil, err
	}

	return s, nil
}

// GetInfo resolves catalog metadata (unless pre-seeded) and then the video
// reference: a YouTube link embedded in the release's URL collection wins,
// otherwise the external media lookup runs on its worker pool. Idempotent
// once both stages are populated.
func (s *SingleSource) GetInfo(ctx context.Context) error {
	if !s.hasCatalogData {
		release, tracks, err := s.deps.Catalog.GetRelease(ctx, s.query)
		if err != nil {
			return err
		}
		if err := s.setCatalogData(release, tracks); err != nil {
			return err
		}
	}

	if s.videoURL != "" {
		return nil
	}

	for _, u := range s.release.URLs {
		if youtubeLinkRegex.MatchString(u) {
			s.videoURL = u
			s.deps.Logger.Debug("Using embedded video link", zap.String("url", u))
			return nil
		}
	}

	result, err := s.deps.Media.Search(ctx, s.artists+" - "+s.title)
	if err != nil {
		return err
	}
	s.videoURL = result.URL

	return nil
}

// setCatalogData populates terminal metadata fields from a release and its
// track list. The type guard rejects releases whose shape belongs to the
// other source variants.
func (s *SingleSource) setCatalogData(release *core.Release, tracks []core.Track) error {
	if release.IsMultiType() {
		return &core.WrongSourceTypeError{ReleaseType: release.Type, Want: "multi-track"}
	}
	if release.IsLongType() {
		return &core.WrongSourceTypeError{ReleaseType: release.Type, Want: "long-form"}
	}
	if len(tracks) == 0 {
		return &core.NotFoundError{Query: s.query}
	}

	track := tracks[0]
	hash := track.StreamHash()
	if hash == "" {
		return &core.NotFoundError{Query: s.query}
	}

	s.release = release
	s.streamURL = StreamURL(hash)
	s.title = release.Title
	s.artists = release.Artists
	s.catalogID = release.CatalogID
	s.thumbURL = release.ThumbURL()
	s.releasedAt = release.ReleaseDate.Time
	s.bpm = int(math.Round(track.BPM))
	s.duration = int(math.Round(track.Duration))
	s.genre = track.PrimaryGenre()
	s.hasCatalogData = true

	return nil
}

// Load binds the stream locator to a live decode handle.
func (s *SingleSource) Load(ctx context.Context) error {
	if s.streamURL == "" {
		return &core.ValidationError{Reason: "source not resolved, call GetInfo first"}
	}

	handle, err := OpenAudio(s.deps.FFmpegPath, s.streamURL)
	if err != nil {
		return err
	}
	s.handle = handle

	return nil
}

func (s *SingleSource) Read() ([]byte, error) {
	if s.handle == nil {
		return nil, &core.ValidationError{Reason: "source not loaded, call Load first"}
	}

	return s.handle.Read()
}

func (s *SingleSource) Cleanup() {
	if s.handle != nil {
		s.handle.Cleanup()
	}
}

// Describe projects the populated metadata. Ready is false until the media
// resolution stage has completed.
func (s *SingleSource) Describe() core.SourceInfo {
	if !s.hasCatalogData || s.videoURL == "" {
		return core.SourceInfo{}
	}

	return core.SourceInfo{
		Ready:      true,
		ReleaseID:  s.release.ID,
		Title:      s.title,
		Artists:    s.artists,
		CatalogID:  s.catalogID,
		Genre:      s.genre,
		BPM:        s.bpm,
		Duration:   s.duration,
		ThumbURL:   s.thumbURL,
		VideoURL:   s.videoURL,
		StreamURL:  s.streamURL,
		ReleasedAt: s.releasedAt,
	}
}
