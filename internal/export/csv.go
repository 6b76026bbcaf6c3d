// Package export writes territory and POI run results to CSV/TXT: quote-on-
// comma/quote/CR/LF, embedded quotes doubled, fixed %.5f/%.3f/%.1f° numeric
// formatting, UTF-8 BOM on the CSV variant, tab-separated and unquoted on
// the TXT variant.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/star/satplanner/internal/metrics"
	"github.com/star/satplanner/internal/planererr"
	"github.com/star/satplanner/internal/poiselect"
	"github.com/star/satplanner/internal/territory"
)

// utf8BOM is the three-byte UTF-8 byte order mark written ahead of every
// CSV export so Excel detects the encoding instead of mis-rendering the
// degree sign.
const utf8BOM = "\xEF\xBB\xBF"

// Preamble carries optional metadata comment lines ahead of a POI CSV's
// header row. Any zero field is omitted from the written preamble.
type Preamble struct {
	TLEID      string
	StepSec    int
	HorizonHrs int
}

func (p Preamble) writeTo(w *bufio.Writer) {
	if p.TLEID != "" {
		fmt.Fprintf(w, "# tle=%s\n", p.TLEID)
	}
	if p.StepSec != 0 {
		fmt.Fprintf(w, "# step_s=%d\n", p.StepSec)
	}
	if p.HorizonHrs != 0 {
		fmt.Fprintf(w, "# horizon_h=%d\n", p.HorizonHrs)
	}
}

// csvEscape quotes s if it contains a comma, quote, CR, or LF, doubling any
// embedded quote — a direct port of csv_escape.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' {
			b.WriteByte('"')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// WritePOICSV writes picks as UTF-8-BOM, comma-separated, quoted CSV with
// header "Time,Latitude,Longitude,Range_km,Direction,Name,Type", preceded
// by preamble's optional "# key=value" comment lines.
func WritePOICSV(w io.Writer, picks []poiselect.Pick, preamble Preamble) error {
	start := time.Now()
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(utf8BOM); err != nil {
		return &planererr.ExportWriteError{Path: "<writer>", Reason: err.Error()}
	}
	preamble.writeTo(bw)
	if _, err := bw.WriteString("Time,Latitude,Longitude,Range_km,Direction,Name,Type\n"); err != nil {
		return &planererr.ExportWriteError{Path: "<writer>", Reason: err.Error()}
	}

	for _, p := range picks {
		fmt.Fprintf(bw, "%s,%.5f,%.5f,%.3f,%.1f°,%s,%s\n",
			csvEscape(p.TimeStr), p.LatDeg, p.LonDeg, p.RangeKm, p.AzimuthDeg,
			csvEscape(p.Name), csvEscape(p.Type))
	}

	if err := bw.Flush(); err != nil {
		return &planererr.ExportWriteError{Path: "<writer>", Reason: err.Error()}
	}
	metrics.RecordExportWrite("poi_csv", time.Since(start))
	return nil
}

// WritePOITXT writes picks as tab-separated plain text: no BOM, no
// quoting, same column set as WritePOICSV; the header is tab-separated and
// names the range column "Range (km)".
func WritePOITXT(w io.Writer, picks []poiselect.Pick) error {
	start := time.Now()
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString("Time\tLatitude\tLongitude\tRange (km)\tDirection\tName\tType\n"); err != nil {
		return &planererr.ExportWriteError{Path: "<writer>", Reason: err.Error()}
	}
	for _, p := range picks {
		fmt.Fprintf(bw, "%s\t%.5f\t%.5f\t%.3f\t%.1f°\t%s\t%s\n",
			p.TimeStr, p.LatDeg, p.LonDeg, p.RangeKm, p.AzimuthDeg, p.Name, p.Type)
	}

	if err := bw.Flush(); err != nil {
		return &planererr.ExportWriteError{Path: "<writer>", Reason: err.Error()}
	}
	metrics.RecordExportWrite("poi_txt", time.Since(start))
	return nil
}

// WriteTerritoryCSV writes rows as UTF-8-BOM, comma-separated, quoted CSV
// with header "Time,Latitude,Longitude,Country". Gap-marker rows (see
// territory.Row.IsGapMarker) are a visual separator only, not part of the
// export, and are omitted entirely rather than written as a blank line.
func WriteTerritoryCSV(w io.Writer, rows []territory.Row) error {
	start := time.Now()
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(utf8BOM); err != nil {
		return &planererr.ExportWriteError{Path: "<writer>", Reason: err.Error()}
	}
	if _, err := bw.WriteString("Time,Latitude,Longitude,Country\n"); err != nil {
		return &planererr.ExportWriteError{Path: "<writer>", Reason: err.Error()}
	}

	for _, r := range rows {
		if r.IsGapMarker() {
			continue
		}
		fmt.Fprintf(bw, "%s,%.5f,%.5f,%s\n", csvEscape(r.TimeStr), r.LatDeg, r.LonDeg, csvEscape(r.CountryLabel))
	}

	if err := bw.Flush(); err != nil {
		return &planererr.ExportWriteError{Path: "<writer>", Reason: err.Error()}
	}
	metrics.RecordExportWrite("territory_csv", time.Since(start))
	return nil
}
