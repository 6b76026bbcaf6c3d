package propagation

import (
	"math"
	"testing"

	"github.com/star/satplanner/internal/timeutil"
	"github.com/star/satplanner/internal/tle"
	"github.com/star/satplanner/internal/transform"
)

// ISS TLE, real orbital elements used throughout these tests.
const (
	issLine1 = "1 25544U 98067A   24100.50000000  .00016717  00000-0  10270-3 0  9005"
	issLine2 = "2 25544  51.6400 100.0000 0001000   0.0000   0.0000 15.50000000    09"
)

func issEntry() tle.TLEEntry {
	return tle.TLEEntry{NORADID: 25544, Name: "ISS", Line1: issLine1, Line2: issLine2}
}

func TestAdvanceReturnsSaneGroundTrack(t *testing.T) {
	state, err := NewSatState(issEntry())
	if err != nil {
		t.Fatalf("NewSatState: %v", err)
	}

	jd := timeutil.UTCToJD(timeutil.UTCComponents{Year: 2024, Month: 4, Day: 10, Hour: 12, Minute: 0, Second: 0})
	lat, lon, err := Advance(state, jd)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if lat < -90 || lat > 90 {
		t.Errorf("lat = %v, want within [-90, 90]", lat)
	}
	if lon < -180 || lon > 180 {
		t.Errorf("lon = %v, want within [-180, 180]", lon)
	}
}

func TestAdvanceConsistentWithTEMEToECEF(t *testing.T) {
	state, err := NewSatState(issEntry())
	if err != nil {
		t.Fatalf("NewSatState: %v", err)
	}

	jd := timeutil.UTCToJD(timeutil.UTCComponents{Year: 2024, Month: 4, Day: 10, Hour: 12, Minute: 0, Second: 0})
	ecef, err := advanceECEF(state, jd)
	if err != nil {
		t.Fatalf("advanceECEF: %v", err)
	}
	if !transform.ValidateECEF(ecef) {
		t.Errorf("ECEF output failed validation: %+v", ecef)
	}

	// ISS orbits at roughly 6791km from Earth's center; geodetic altitude
	// derived from the same ECEF point should be in the right ballpark.
	pt := transform.ECEFToGeodetic(ecef.X, ecef.Y, ecef.Z)
	if pt.AltM < 300000 || pt.AltM > 500000 {
		t.Errorf("altitude = %.0fm, want roughly 300-500km for ISS", pt.AltM)
	}
}

func TestAdvanceWithLookAnglesRangeIsPositive(t *testing.T) {
	state, err := NewSatState(issEntry())
	if err != nil {
		t.Fatalf("NewSatState: %v", err)
	}
	obs := transform.NewObserverPosition(51.5074, -0.1278, 0)

	jd := timeutil.UTCToJD(timeutil.UTCComponents{Year: 2024, Month: 4, Day: 10, Hour: 12, Minute: 0, Second: 0})
	_, _, look, err := AdvanceWithLookAngles(state, jd, obs)
	if err != nil {
		t.Fatalf("AdvanceWithLookAngles: %v", err)
	}
	if look.RangeKm <= 0 {
		t.Errorf("range = %v, want > 0", look.RangeKm)
	}
	if look.AzimuthDeg < 0 || look.AzimuthDeg >= 360 {
		t.Errorf("azimuth = %v, want in [0, 360)", look.AzimuthDeg)
	}
}

func TestAdvanceSuccessiveSamplesMoveContinuously(t *testing.T) {
	state, err := NewSatState(issEntry())
	if err != nil {
		t.Fatalf("NewSatState: %v", err)
	}

	base := timeutil.UTCToJD(timeutil.UTCComponents{Year: 2024, Month: 4, Day: 10, Hour: 12, Minute: 0, Second: 0})
	lat1, lon1, err := Advance(state, base)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	lat2, lon2, err := Advance(state, base+1.0/86400.0)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}

	// ISS ground speed is roughly 7.66 km/s; one second of travel is a
	// small fraction of a degree, never a discontinuous jump.
	if math.Abs(lat2-lat1) > 1 || math.Abs(normDelta(lon2-lon1)) > 1 {
		t.Errorf("one-second step moved too far: (%v,%v) -> (%v,%v)", lat1, lon1, lat2, lon2)
	}
}

func normDelta(d float64) float64 {
	for d > 180 {
		d -= 360
	}
	for d < -180 {
		d += 360
	}
	return d
}

func TestNewSatStateRejectsInvalidTLE(t *testing.T) {
	_, err := NewSatState(tle.TLEEntry{NORADID: 99999, Line1: "invalid", Line2: "invalid"})
	if err == nil {
		t.Fatal("expected error for invalid TLE")
	}
}
