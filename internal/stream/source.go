// Package stream implements playable source sessions over the catalog
// resolver and the external media lookup.
package stream

import (
	"go.uber.org/zap"

	"connectdj/internal/core"
)

// blobBaseURL addresses the playable audio blob for a stream hash.
const blobBaseURL = "https://s3.amazonaws.com/data.monstercat.com/blobs/"

// StreamURL builds the playable object storage address for a stream hash.
// A pure string template, not a network call.
func StreamURL(streamHash string) string {
	return blobBaseURL + streamHash
}

// Deps bundles the collaborators a source needs. The catalog client is
// shared read-only; everything else belongs to the owning session.
type Deps struct {
	Catalog    core.CatalogClient
	Media      core.MediaLookup
	Logger     *zap.Logger
	FFmpegPath string
}

// SourceForRelease selects the source variant for an already-resolved
// release: long-form releases get a LongSource keyed on the original query,
// anything else a SingleSource pre-seeded with the catalog data. Multi-track
// releases surface WrongSourceTypeError from the single variant's type
// guard, matching the resolver's classification contract.
func SourceForRelease(query string, release *core.Release, tracks []core.Track, deps Deps) (core.StreamSource, error) {
	if release.IsLongType() {
		return NewLongSource(query, deps), nil
	}

	return NewSingleSourceWithData(query, release, tracks, deps)
}
