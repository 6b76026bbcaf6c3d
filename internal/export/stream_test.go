package export

import (
	"context"
	"strings"
	"testing"

	"github.com/star/satplanner/internal/poiselect"
	"github.com/star/satplanner/internal/territory"
)

func TestStreamTerritoryCSVMatchesWriteTerritoryCSV(t *testing.T) {
	rows := []territory.Row{
		{TimeStr: "t1", LatDeg: 1, LonDeg: 2, CountryLabel: "France"},
		{},
		{TimeStr: "t2", LatDeg: 3, LonDeg: 4, CountryLabel: "Spain"},
	}

	var direct strings.Builder
	if err := WriteTerritoryCSV(&direct, rows); err != nil {
		t.Fatalf("WriteTerritoryCSV: %v", err)
	}

	var streamed strings.Builder
	StreamTerritoryCSV(context.Background(), &streamed, rows, 1)

	if direct.String() != streamed.String() {
		t.Fatalf("streamed output differs from direct write:\ndirect:   %q\nstreamed: %q", direct.String(), streamed.String())
	}
}

func TestStreamTerritoryCSVStopsOnCancellation(t *testing.T) {
	rows := make([]territory.Row, 10)
	for i := range rows {
		rows[i] = territory.Row{TimeStr: "t", CountryLabel: "X"}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out strings.Builder
	StreamTerritoryCSV(ctx, &out, rows, 1)

	// Still gets header (BeginBulk always runs); EndBulk always flushes.
	if !strings.Contains(out.String(), "Time,Latitude,Longitude,Country") {
		t.Fatal("expected the header to be written even under a pre-cancelled context")
	}
}

func TestStreamPOICSVMatchesWritePOICSV(t *testing.T) {
	picks := []poiselect.Pick{
		{TimeStr: "t", LatDeg: 1, LonDeg: 2, RangeKm: 3, AzimuthDeg: 4, Name: "n", Type: "ty"},
	}

	var direct strings.Builder
	if err := WritePOICSV(&direct, picks, Preamble{}); err != nil {
		t.Fatalf("WritePOICSV: %v", err)
	}

	var streamed strings.Builder
	StreamPOICSV(context.Background(), &streamed, picks, Preamble{}, 1)

	if direct.String() != streamed.String() {
		t.Fatalf("streamed output differs from direct write:\ndirect:   %q\nstreamed: %q", direct.String(), streamed.String())
	}
}
