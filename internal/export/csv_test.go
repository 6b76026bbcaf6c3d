package export

import (
	"strings"
	"testing"

	"github.com/star/satplanner/internal/poiselect"
	"github.com/star/satplanner/internal/territory"
)

func TestWritePOICSVHasBOMAndHeader(t *testing.T) {
	var buf strings.Builder
	picks := []poiselect.Pick{
		{TimeStr: "2024/04/10 12:00:00", LatDeg: 48.85826, LonDeg: 2.2945, RangeKm: 12.345, AzimuthDeg: 90.1, Name: "Eiffel Tower", Type: "landmark"},
	}

	if err := WritePOICSV(&buf, picks, Preamble{}); err != nil {
		t.Fatalf("WritePOICSV: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "\xEF\xBB\xBF") {
		t.Fatal("expected output to start with the UTF-8 BOM")
	}
	body := strings.TrimPrefix(out, "\xEF\xBB\xBF")
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	if lines[0] != "Time,Latitude,Longitude,Range_km,Direction,Name,Type" {
		t.Fatalf("got header %q", lines[0])
	}
	want := "2024/04/10 12:00:00,48.85826,2.29450,12.345,90.1°,Eiffel Tower,landmark"
	if lines[1] != want {
		t.Fatalf("got row %q, want %q", lines[1], want)
	}
}

func TestWritePOICSVQuotesEmbeddedComma(t *testing.T) {
	var buf strings.Builder
	picks := []poiselect.Pick{
		{TimeStr: "t", Name: "Tower, The", Type: "landmark"},
	}
	if err := WritePOICSV(&buf, picks, Preamble{}); err != nil {
		t.Fatalf("WritePOICSV: %v", err)
	}
	if !strings.Contains(buf.String(), `"Tower, The"`) {
		t.Fatalf("expected quoted field with embedded comma, got %q", buf.String())
	}
}

func TestWritePOICSVWritesPreamble(t *testing.T) {
	var buf strings.Builder
	err := WritePOICSV(&buf, nil, Preamble{TLEID: "25544", StepSec: 1, HorizonHrs: 2})
	if err != nil {
		t.Fatalf("WritePOICSV: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"# tle=25544\n", "# step_s=1\n", "# horizon_h=2\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing preamble line %q in %q", want, out)
		}
	}
}

func TestWritePOITXTHasNoBOMAndTabs(t *testing.T) {
	var buf strings.Builder
	picks := []poiselect.Pick{{TimeStr: "t", LatDeg: 1, LonDeg: 2, RangeKm: 3, AzimuthDeg: 4, Name: "n", Type: "ty"}}
	if err := WritePOITXT(&buf, picks); err != nil {
		t.Fatalf("WritePOITXT: %v", err)
	}
	out := buf.String()
	if strings.HasPrefix(out, "\xEF\xBB\xBF") {
		t.Fatal("TXT export must not carry a BOM")
	}
	if !strings.Contains(out, "\t") {
		t.Fatal("expected tab-separated output")
	}
}

func TestWriteTerritoryCSVOmitsGapMarkerRow(t *testing.T) {
	var buf strings.Builder
	rows := []territory.Row{
		{TimeStr: "t1", LatDeg: 1, LonDeg: 2, CountryLabel: "France"},
		{},
		{TimeStr: "t2", LatDeg: 3, LonDeg: 4, CountryLabel: "Spain"},
	}
	if err := WriteTerritoryCSV(&buf, rows); err != nil {
		t.Fatalf("WriteTerritoryCSV: %v", err)
	}
	lines := strings.Split(strings.TrimRight(strings.TrimPrefix(buf.String(), "\xEF\xBB\xBF"), "\n"), "\n")
	if lines[0] != "Time,Latitude,Longitude,Country" {
		t.Fatalf("got header %q", lines[0])
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3 (header + 2 data rows, gap marker omitted): %q", len(lines), lines)
	}
	for _, line := range lines[1:] {
		if line == ",,," {
			t.Fatalf("gap-marker row leaked into the export: %q", lines)
		}
	}
}
