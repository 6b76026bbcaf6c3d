package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/star/satplanner/internal/metrics"
	"github.com/star/satplanner/internal/poiselect"
	"github.com/star/satplanner/internal/sink"
	"github.com/star/satplanner/internal/territory"
)

// territoryCSVSink adapts a bufio.Writer to sink.TerritorySink, writing the
// BOM and header once on BeginBulk and flushing once on EndBulk — the
// "detach while streaming, reattach on completion" contract applied to a
// plain io.Writer rather than a GUI view.
type territoryCSVSink struct {
	bw *bufio.Writer
}

func (s *territoryCSVSink) BeginBulk() {
	s.bw.WriteString(utf8BOM)
	s.bw.WriteString("Time,Latitude,Longitude,Country\n")
}

func (s *territoryCSVSink) AppendBatch(rows []territory.Row) {
	for _, r := range rows {
		if r.IsGapMarker() {
			continue
		}
		fmt.Fprintf(s.bw, "%s,%.5f,%.5f,%s\n", csvEscape(r.TimeStr), r.LatDeg, r.LonDeg, csvEscape(r.CountryLabel))
	}
}

func (s *territoryCSVSink) EndBulk() {
	s.bw.Flush()
}

// StreamTerritoryCSV drains rows to w in chunks of chunkSize via
// sink.DrainTerritory, cooperatively yielding between chunks — the
// large-export path for /api/v1/runs/{id}/territory.csv, as opposed to
// WriteTerritoryCSV's single-shot write used by small/test exports.
func StreamTerritoryCSV(ctx context.Context, w io.Writer, rows []territory.Row, chunkSize int) {
	start := time.Now()
	s := &territoryCSVSink{bw: bufio.NewWriter(w)}
	sink.DrainTerritory(ctx, s, rows, chunkSize)
	metrics.RecordExportWrite("territory_csv", time.Since(start))
}

// poiCSVSink is StreamTerritoryCSV's counterpart for POI picks.
type poiCSVSink struct {
	bw       *bufio.Writer
	preamble Preamble
}

func (s *poiCSVSink) BeginBulk() {
	s.bw.WriteString(utf8BOM)
	s.preamble.writeTo(s.bw)
	s.bw.WriteString("Time,Latitude,Longitude,Range_km,Direction,Name,Type\n")
}

func (s *poiCSVSink) AppendBatch(picks []poiselect.Pick) {
	for _, p := range picks {
		fmt.Fprintf(s.bw, "%s,%.5f,%.5f,%.3f,%.1f°,%s,%s\n",
			csvEscape(p.TimeStr), p.LatDeg, p.LonDeg, p.RangeKm, p.AzimuthDeg,
			csvEscape(p.Name), csvEscape(p.Type))
	}
}

func (s *poiCSVSink) EndBulk() {
	s.bw.Flush()
}

// StreamPOICSV is StreamTerritoryCSV for POI picks.
func StreamPOICSV(ctx context.Context, w io.Writer, picks []poiselect.Pick, preamble Preamble, chunkSize int) {
	start := time.Now()
	s := &poiCSVSink{bw: bufio.NewWriter(w), preamble: preamble}
	sink.DrainPoi(ctx, s, picks, chunkSize)
	metrics.RecordExportWrite("poi_csv", time.Since(start))
}
