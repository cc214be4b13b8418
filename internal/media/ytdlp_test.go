package media

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"connectdj/internal/core"
)

func newTestLookup() *Lookup {
	config := &core.MediaConfig{
		YTDLPPath: "/nonexistent/yt-dlp",
		Workers:   2,
		CacheSize: 8,
		Timeout:   time.Second,
	}
	return NewLookup(config, zap.NewNop(), nil)
}

func TestSearchEmptyQuery(t *testing.T) {
	lookup := newTestLookup()

	for _, query := range []string{"", "   "} {
		_, err := lookup.Search(context.Background(), query)

		var validationErr *core.ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("Search(%q) error = %v, expected ValidationError", query, err)
		}
	}
}

func TestSearchCacheHitSkipsSubprocess(t *testing.T) {
	lookup := newTestLookup()

	want := &core.MediaResult{URL: "https://www.youtube.com/watch?v=abc", Title: "Emergency"}
	lookup.cache.Add("pegboard nerds - emergency", want)

	// The configured binary does not exist, so a cache miss would error.
	got, err := lookup.Search(context.Background(), "pegboard nerds - emergency")
	if err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("Search() = %v, expected cached %v", got, want)
	}
}

func TestSearchSubprocessFailure(t *testing.T) {
	lookup := newTestLookup()

	_, err := lookup.Search(context.Background(), "anything")
	if err == nil {
		t.Fatal("Search() expected error from missing binary")
	}
}
