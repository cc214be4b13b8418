package core

import (
	"context"
	"sort"
	"strings"
	"time"
)

// connectTimeLayout is the timestamp format used by the Connect API.
const connectTimeLayout = "2006-01-02T15:04:05.000Z"

// ConnectTime wraps time.Time to decode the Connect API's timestamp format.
type ConnectTime struct {
	time.Time
}

func (t *ConnectTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := time.Parse(connectTimeLayout, s)
	if err != nil {
		return err
	}

	t.Time = parsed
	return nil
}

// Release is a published catalog entry (single, album, compilation, podcast
// episode, etc.). Immutable once fetched; resolutions always re-fetch.
type Release struct {
	ID          string      `json:"_id"`
	CatalogID   string      `json:"catalogId"`
	Title       string      `json:"title"`
	Artists     string      `json:"renderedArtists"`
	Type        string      `json:"type"`
	CoverURL    string      `json:"coverUrl"`
	ReleaseDate ConnectTime `json:"releaseDate"`
	URLs        []string    `json:"urls"`
}

// IsMultiType reports whether the release holds several regular tracks.
func (r *Release) IsMultiType() bool {
	return r.Type == "Album" || r.Type == "EP"
}

// IsLongType reports whether the release is a single long-form recording.
func (r *Release) IsLongType() bool {
	return r.Type == "Mixes" || r.Type == "Podcast"
}

// ThumbURL returns the cover art URL escaped and sized for display.
func (r *Release) ThumbURL() string {
	if r.CoverURL == "" {
		return ""
	}
	return strings.ReplaceAll(r.CoverURL, " ", "%20") + "?image_width=256"
}

// TrackAlbum links a track to one release it appears on, carrying the
// per-album stream hash used to address the playable blob.
type TrackAlbum struct {
	AlbumID     string `json:"albumId"`
	StreamHash  string `json:"streamHash"`
	TrackNumber int    `json:"trackNumber"`
}

// Track is one audio item belonging to a release.
type Track struct {
	ID       string       `json:"_id"`
	Title    string       `json:"title"`
	Artists  string       `json:"artistsTitle"`
	Duration float64      `json:"duration"`
	BPM      float64      `json:"bpm"`
	Genre    string       `json:"genre"`
	Genres   []string     `json:"genres"`
	Albums   []TrackAlbum `json:"albums"`
}

// PrimaryGenre returns the track's genre, falling back to the first entry of
// the genres list. The API populates the two fields inconsistently.
func (t *Track) PrimaryGenre() string {
	if t.Genre != "" {
		return t.Genre
	}
	if len(t.Genres) > 0 {
		return t.Genres[0]
	}
	return ""
}

// StreamHash returns the stream hash of the first album entry, or "" when the
// track carries no album linkage.
func (t *Track) StreamHash() string {
	if len(t.Albums) == 0 {
		return ""
	}
	return t.Albums[0].StreamHash
}

// Artist is a catalog artist record. Optional fields (bookings, management)
// are present only for some artists.
type Artist struct {
	ID               string   `json:"_id"`
	Name             string   `json:"name"`
	VanityURI        string   `json:"vanityUri"`
	About            string   `json:"about"`
	ProfileImageURL  string   `json:"profileImageUrl"`
	Years            []*int   `json:"years"`
	URLs             []string `json:"urls"`
	Bookings         string   `json:"bookings"`
	ManagementDetail string   `json:"managementDetail"`
}

// BookingContact returns the booking contact with its display label
// stripped. The API stores the field as rendered text ("Booking: ...").
func (a *Artist) BookingContact() string {
	return strings.TrimSpace(strings.TrimPrefix(a.Bookings, "Booking:"))
}

// ManagementContact returns the management contact with its display label
// stripped, like BookingContact.
func (a *Artist) ManagementContact() string {
	return strings.TrimSpace(strings.TrimPrefix(a.ManagementDetail, "Management:"))
}

// ReleaseYears returns the artist's active years with nulls discarded,
// sorted ascending.
func (a *Artist) ReleaseYears() []int {
	var years []int
	for _, y := range a.Years {
		if y != nil {
			years = append(years, *y)
		}
	}
	sort.Ints(years)
	return years
}

// Segment is a sub-range of a long-form audio stream corresponding to one
// embedded track. Start is the cumulative offset in seconds; Duration 0 means
// the segment runs to the end of the stream.
type Segment struct {
	Label    string
	Start    int
	Duration int
}

// MediaResult is one hit from the external media lookup.
type MediaResult struct {
	URL         string
	Title       string
	Description string
	Duration    float64
}

// MediaLookup resolves a free-text query to a playable media reference.
type MediaLookup interface {
	Search(ctx context.Context, query string) (*MediaResult, error)
}

// CatalogClient is the Connect catalog resolution surface. Implementations
// may be shared read-only across sessions.
type CatalogClient interface {
	GetRelease(ctx context.Context, query string) (*Release, []Track, error)
	ReleaseFromID(ctx context.Context, id string) (*Release, error)
	GetTrack(ctx context.Context, query string) (*Track, error)
	GetMonstercatTrack(ctx context.Context, query string) (*Track, error)
	SearchMonstercatTracks(ctx context.Context, query string) ([]Track, error)
	GetArtist(ctx context.Context, query string) (*Artist, []Release, error)
}

// SourceInfo is a projection of a stream source's populated metadata. Ready
// is false until the owning source has resolved far enough to describe
// itself.
type SourceInfo struct {
	Ready      bool
	ReleaseID  string
	Title      string
	Artists    string
	CatalogID  string
	Genre      string
	BPM        int
	Duration   int
	ThumbURL   string
	VideoURL   string
	StreamURL  string
	ReleasedAt time.Time
	Segments   []Segment
}

// StreamSource is one playback attempt. Owned exclusively by the session that
// created it; callers must serialize GetInfo/Load themselves.
type StreamSource interface {
	// GetInfo fetches catalog and media metadata. Idempotent: once populated
	// it performs no further network calls.
	GetInfo(ctx context.Context) error

	// Load binds the stream locator to a live decodable audio handle.
	Load(ctx context.Context) error

	// Read returns the next chunk of decoded audio, io.EOF at end of stream.
	Read() ([]byte, error)

	// Cleanup releases the decode resource. Idempotent, safe before Load.
	Cleanup()

	// Describe projects the populated metadata fields.
	Describe() SourceInfo
}

// Metrics is the instrumentation surface consumed by the resolver layers.
type Metrics interface {
	ObserveRemoteCall(operation, status string, elapsed time.Duration)
	ObserveMediaLookup(status string)
}

// NopMetrics is a Metrics implementation that records nothing.
type NopMetrics struct{}

func (NopMetrics) ObserveRemoteCall(string, string, time.Duration) {}
func (NopMetrics) ObserveMediaLookup(string)                      {}
