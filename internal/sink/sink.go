// Package sink implements the chunked streaming delivery contract shared by
// the territory labeler and POI selector: a producer hands off an
// immutable result batch, and a drain loop feeds it to a consumer in
// bounded chunks with cooperative yields between them.
//
// EndBulk always runs, even when the context is cancelled mid-drain, so a
// detaching consumer can always reattach cleanly.
package sink

import (
	"context"
	"runtime"

	"github.com/star/satplanner/internal/poiselect"
	"github.com/star/satplanner/internal/territory"
)

// DefaultChunkSize is the recommended batch size from the streaming
// contract (spec: C = 20000).
const DefaultChunkSize = 20000

// TerritorySink receives a territory labeling result in chunked batches.
// While streaming, a real consumer is expected to detach from its display
// (bulk-append mode) between BeginBulk and EndBulk, reattaching once the
// last chunk lands.
type TerritorySink interface {
	BeginBulk()
	AppendBatch(rows []territory.Row)
	EndBulk()
}

// DrainTerritory delivers rows to s in chunks of at most chunkSize,
// yielding cooperatively between chunks. EndBulk always runs, via defer,
// even if ctx is cancelled mid-drain, so a detached consumer always
// reattaches.
func DrainTerritory(ctx context.Context, s TerritorySink, rows []territory.Row, chunkSize int) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	s.BeginBulk()
	defer s.EndBulk()

	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		s.AppendBatch(rows[start:end])
		runtime.Gosched()
		if ctx.Err() != nil {
			return
		}
	}
}

// PoiSink receives a POI selection result in chunked batches.
type PoiSink interface {
	BeginBulk()
	AppendBatch(picks []poiselect.Pick)
	EndBulk()
}

// DrainPoi is DrainTerritory for POI picks.
func DrainPoi(ctx context.Context, s PoiSink, picks []poiselect.Pick, chunkSize int) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	s.BeginBulk()
	defer s.EndBulk()

	for start := 0; start < len(picks); start += chunkSize {
		end := start + chunkSize
		if end > len(picks) {
			end = len(picks)
		}
		s.AppendBatch(picks[start:end])
		runtime.Gosched()
		if ctx.Err() != nil {
			return
		}
	}
}
