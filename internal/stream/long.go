package stream

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"connectdj/internal/core"
	"connectdj/pkg/text"
)

const musicOnlySuffix = " (Music Only)"

// LongSource is the playback session for long-form releases: podcast
// episodes, mixes, and album-length tracks. In addition to the single-track
// lifecycle it derives an ordered segment list from the media result's
// description. Single-owner, like SingleSource.
type LongSource struct {
	query string
	deps  Deps

	kind           string
	hasCatalogData bool
	hasMediaData   bool

	releaseID  string
	title      string
	artists    string
	catalogID  string
	duration   int
	thumbURL   string
	releasedAt time.Time
	streamURL  string
	videoURL   string
	segments   []core.Segment

	handle *AudioHandle
}

func NewLongSource(query string, deps Deps) *LongSource {
	return &LongSource{query: query, deps: deps}
}

// GetInfo resolves the long-form track via the Monstercat track search plus
// a release fetch, then always runs the media lookup and feeds the result's
// description through the tracklist segmenter. Both stages are idempotent.
func (s *LongSource) GetInfo(ctx context.Context) error {
	if !s.hasCatalogData {
		if err := s.resolveCatalog(ctx); err != nil {
			return err
		}
	}

	if !s.hasMediaData {
		result, err := s.deps.Media.Search(ctx, s.artists+" - "+s.title)
		if err != nil {
			return err
		}

		s.videoURL = result.URL
		s.segments = text.ParseTracklist(result.Description)
		s.hasMediaData = true

		s.deps.Logger.Debug("Segmented long-form description",
			zap.String("title", s.title),
			zap.Int("segmentCount", len(s.segments)))
	}

	return nil
}

func (s *LongSource) resolveCatalog(ctx context.Context) error {
	tracks, err := s.deps.Catalog.SearchMonstercatTracks(ctx, s.query)
	if err != nil {
		return err
	}

	track := tracks[0]
	if strings.Contains(track.Title, "Podcast") || strings.Contains(track.Title, "Call of the Wild") {
		s.kind = "podcast"
		track = pickPodcastTrack(tracks)
	} else {
		s.kind = "album-mix"
	}

	if len(track.Albums) == 0 {
		return &core.NotFoundError{Query: s.query}
	}

	release, err := s.deps.Catalog.ReleaseFromID(ctx, track.Albums[0].AlbumID)
	if err != nil {
		return err
	}

	s.streamURL = StreamURL(track.Albums[0].StreamHash)
	s.releaseID = release.ID
	s.title = track.Title
	s.artists = track.Artists
	s.catalogID = release.CatalogID
	s.duration = int(math.Round(track.Duration))
	s.thumbURL = release.ThumbURL()
	s.releasedAt = release.ReleaseDate.Time
	s.hasCatalogData = true

	return nil
}

// pickPodcastTrack prefers the full episode over its "(Music Only)" cut when
// the search ranked the cut first.
func pickPodcastTrack(tracks []core.Track) core.Track {
	first := tracks[0]
	if !strings.Contains(first.Title, "Music Only") {
		return first
	}

	want := strings.ReplaceAll(first.Title, musicOnlySuffix, "")
	for _, t := range tracks {
		if t.Title == want {
			return t
		}
	}

	return first
}

// Kind reports the detected long-form flavor: "podcast" or "album-mix".
// Empty until catalog resolution completes.
func (s *LongSource) Kind() string {
	return s.kind
}

// Segments returns the derived segment list in source order. Nil when the
// description carried no tracklist; that is a normal case.
func (s *LongSource) Segments() []core.Segment {
	return s.segments
}

// AnnounceSegments walks the segment list, invoking fn as each segment's
// start offset elapses relative to now. The walk runs in its own goroutine
// and stops when the context is cancelled. Call after GetInfo, at the moment
// playback starts.
func (s *LongSource) AnnounceSegments(ctx context.Context, fn func(core.Segment)) {
	segments := s.segments

	go func() {
		start := time.Now()

		for _, seg := range segments {
			wait := time.Duration(seg.Start)*time.Second - time.Since(start)
			if wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}

			fn(seg)
		}
	}()
}

// Load binds the stream locator to a live decode handle.
func (s *LongSource) Load(ctx context.Context) error {
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

func (s *LongSource) Read() ([]byte, error) {
	if s.handle == nil {
		return nil, &core.ValidationError{Reason: "source not loaded, call Load first"}
	}

	return s.handle.Read()
}

func (s *LongSource) Cleanup() {
	if s.handle != nil {
		s.handle.Cleanup()
	}
}

// Describe projects the populated metadata, including the segment list.
// Ready is false until catalog resolution and segmentation have completed.
func (s *LongSource) Describe() core.SourceInfo {
	if !s.hasCatalogData || !s.hasMediaData {
		return core.SourceInfo{}
	}

	return core.SourceInfo{
		Ready:      true,
		ReleaseID:  s.releaseID,
		Title:      s.title,
		Artists:    s.artists,
		CatalogID:  s.catalogID,
		Duration:   s.duration,
		ThumbURL:   s.thumbURL,
		VideoURL:   s.videoURL,
		StreamURL:  s.streamURL,
		ReleasedAt: s.releasedAt,
		Segments:   s.segments,
	}
}
