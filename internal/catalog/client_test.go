package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"connectdj/internal/core"
)

const testRelease = `{
	"_id": "release-1",
	"catalogId": "MC025",
	"title": "Monstercat 025 - Threshold",
	"renderedArtists": "Various Artists",
	"type": "Album",
	"coverUrl": "https://assets.monstercat.com/releases/threshold cover.jpg",
	"releaseDate": "2015-11-13T00:00:00.000Z",
	"urls": ["https://www.youtube.com/watch?v=abc"]
}`

const testTracks = `{
	"results": [
		{
			"_id": "track-1",
			"title": "Emergency",
			"artistsTitle": "Pegboard Nerds",
			"duration": 195.4,
			"bpm": 110,
			"genre": "Drumstep",
			"albums": [{"albumId": "release-1", "streamHash": "hash-1", "trackNumber": 1}]
		}
	]
}`

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := &core.ConnectConfig{
		BaseURL:     server.URL,
		SearchLimit: 10,
		Timeout:     5 * time.Second,
	}

	return NewClient(config, zap.NewNop(), nil), server
}

func catalogHandler(t *testing.T) http.Handler {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/catalog/release/MC025", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testRelease))
	})
	mux.HandleFunc("/catalog/release/release-1/tracks", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testTracks))
	})
	mux.HandleFunc("/catalog/release", func(w http.ResponseWriter, r *http.Request) {
		fuzzyOr := r.URL.Query().Get("fuzzyOr")
		if !strings.Contains(fuzzyOr, "title,") || !strings.Contains(fuzzyOr, "catalogId,") {
			t.Errorf("release search fuzzyOr = %q, missing expected fields", fuzzyOr)
		}
		if strings.Contains(fuzzyOr, "threshold") {
			_, _ = w.Write([]byte(`{"results": [` + testRelease + `]}`))
			return
		}
		_, _ = w.Write([]byte(`{"results": []}`))
	})

	return mux
}

func TestGetReleaseByCatalogID(t *testing.T) {
	client, _ := newTestClient(t, catalogHandler(t))

	release, tracks, err := client.GetRelease(context.Background(), "MC025")
	if err != nil {
		t.Fatalf("GetRelease() unexpected error: %v", err)
	}

	if release.ID != "release-1" {
		t.Errorf("release ID = %q, expected %q", release.ID, "release-1")
	}
	if release.CatalogID != "MC025" {
		t.Errorf("catalog ID = %q, expected %q", release.CatalogID, "MC025")
	}
	if len(tracks) != 1 {
		t.Fatalf("got %d tracks, expected 1", len(tracks))
	}
	if tracks[0].StreamHash() != "hash-1" {
		t.Errorf("stream hash = %q, expected %q", tracks[0].StreamHash(), "hash-1")
	}
}

func TestGetReleaseBySearch(t *testing.T) {
	client, _ := newTestClient(t, catalogHandler(t))

	release, tracks, err := client.GetRelease(context.Background(), "Threshold")
	if err != nil {
		t.Fatalf("GetRelease() unexpected error: %v", err)
	}

	// Both resolution paths must land on the same release identity.
	if release.ID != "release-1" {
		t.Errorf("release ID = %q, expected %q", release.ID, "release-1")
	}
	if len(tracks) != 1 {
		t.Errorf("got %d tracks, expected 1", len(tracks))
	}
}

func TestGetReleaseLowercaseCatalogID(t *testing.T) {
	client, _ := newTestClient(t, catalogHandler(t))

	release, _, err := client.GetRelease(context.Background(), "mc025")
	if err != nil {
		t.Fatalf("GetRelease() unexpected error: %v", err)
	}
	if release.ID != "release-1" {
		t.Errorf("release ID = %q, expected %q", release.ID, "release-1")
	}
}

func TestGetReleaseEmptyQuery(t *testing.T) {
	client, _ := newTestClient(t, catalogHandler(t))

	for _, query := range []string{"", "   "} {
		_, _, err := client.GetRelease(context.Background(), query)

		var validationErr *core.ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("GetRelease(%q) error = %v, expected ValidationError", query, err)
		}
	}
}

func TestGetReleaseNoResults(t *testing.T) {
	client, _ := newTestClient(t, catalogHandler(t))

	_, _, err := client.GetRelease(context.Background(), "no such release")

	var notFound *core.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("GetRelease() error = %v, expected NotFoundError", err)
	}
}

func TestGetReleaseServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, _, err := client.GetRelease(context.Background(), "MC025")

	var remoteErr *core.RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("GetRelease() error = %v, expected RemoteError", err)
	}
	if remoteErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("status code = %d, expected %d", remoteErr.StatusCode, http.StatusInternalServerError)
	}
}

func TestGetReleaseErrorBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error": {"code": 404}, "message": "The specified resource was not found."}`))
	}))

	_, _, err := client.GetRelease(context.Background(), "MC999")

	var notFound *core.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("GetRelease() error = %v, expected NotFoundError for not-found body", err)
	}
}

func TestGetReleaseErrorBodyOnErrorStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"code": 404}, "message": "The specified resource was not found."}`))
	}))

	// The body's error message wins over the bare status code.
	_, _, err := client.GetRelease(context.Background(), "MC999")

	var notFound *core.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("GetRelease() error = %v, expected NotFoundError from the error body", err)
	}
}

func TestGetReleaseErrorBodyOtherMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error": {"code": 500}, "message": "Rate limit exceeded."}`))
	}))

	_, _, err := client.GetRelease(context.Background(), "MC025")

	var remoteErr *core.RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("GetRelease() error = %v, expected RemoteError", err)
	}
	if remoteErr.Message != "Rate limit exceeded." {
		t.Errorf("message = %q, expected remote message passthrough", remoteErr.Message)
	}
}

func TestSearchMonstercatTracks(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(testTracks))
	}))

	tracks, err := client.SearchMonstercatTracks(context.Background(), "Podcast Ep. 100")
	if err != nil {
		t.Fatalf("SearchMonstercatTracks() unexpected error: %v", err)
	}
	if len(tracks) != 1 {
		t.Errorf("got %d tracks, expected 1", len(tracks))
	}

	if !strings.Contains(gotQuery, "artistsTitle,monstercat") {
		t.Errorf("query = %q, expected artist field pinned to monstercat", gotQuery)
	}
}

func TestGetMonstercatTrackTopHit(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": [
			{"_id": "track-a", "title": "Podcast Ep. 100"},
			{"_id": "track-b", "title": "Podcast Ep. 100 (Music Only)"}
		]}`))
	}))

	track, err := client.GetMonstercatTrack(context.Background(), "Podcast Ep. 100")
	if err != nil {
		t.Fatalf("GetMonstercatTrack() unexpected error: %v", err)
	}
	if track.ID != "track-a" {
		t.Errorf("track ID = %q, expected top hit %q", track.ID, "track-a")
	}
}

func TestGetTrack(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fuzzyOr := r.URL.Query().Get("fuzzyOr")
		if !strings.Contains(fuzzyOr, "title,emergency") {
			t.Errorf("track search fuzzyOr = %q, expected hyphen-slugged query", fuzzyOr)
		}
		_, _ = w.Write([]byte(testTracks))
	}))

	track, err := client.GetTrack(context.Background(), "Emergency")
	if err != nil {
		t.Fatalf("GetTrack() unexpected error: %v", err)
	}
	if track.Title != "Emergency" {
		t.Errorf("track title = %q, expected %q", track.Title, "Emergency")
	}
}

func TestGetArtistDirectSlug(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/catalog/artist/pegboard-nerds", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"_id": "artist-1", "name": "Pegboard Nerds", "vanityUri": "pegboard-nerds", "years": [2014, null, 2015]}`))
	})
	mux.HandleFunc("/catalog/artist/pegboard-nerds/releases", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": [` + testRelease + `]}`))
	})

	client, _ := newTestClient(t, mux)

	artist, releases, err := client.GetArtist(context.Background(), "Pegboard Nerds")
	if err != nil {
		t.Fatalf("GetArtist() unexpected error: %v", err)
	}
	if artist.ID != "artist-1" {
		t.Errorf("artist ID = %q, expected %q", artist.ID, "artist-1")
	}
	if len(releases) != 1 {
		t.Errorf("got %d releases, expected 1", len(releases))
	}

	years := artist.ReleaseYears()
	if len(years) != 2 || years[0] != 2014 || years[1] != 2015 {
		t.Errorf("ReleaseYears() = %v, expected [2014 2015]", years)
	}
}

func TestGetArtistFuzzyFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/catalog/artist/rogue", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error": {"code": 404}, "message": "Artist not found."}`))
	})
	mux.HandleFunc("/catalog/artist", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": [{"_id": "artist-2", "name": "Rogue", "vanityUri": "rogue-official"}]}`))
	})
	mux.HandleFunc("/catalog/artist/rogue-official/releases", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	})

	client, _ := newTestClient(t, mux)

	artist, _, err := client.GetArtist(context.Background(), "Rogue")
	if err != nil {
		t.Fatalf("GetArtist() unexpected error: %v", err)
	}
	if artist.ID != "artist-2" {
		t.Errorf("artist ID = %q, expected fuzzy fallback hit %q", artist.ID, "artist-2")
	}
}

func TestFuzzyOrQuery(t *testing.T) {
	got := fuzzyOrQuery("a b", "title", "renderedArtists")
	expected := "?fuzzyOr=title,a+b,renderedArtists,a+b"
	if got != expected {
		t.Errorf("fuzzyOrQuery() = %q, expected %q", got, expected)
	}
}
