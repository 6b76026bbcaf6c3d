package propagation

import (
	"time"

	"github.com/star/satplanner/internal/planererr"
	"github.com/star/satplanner/internal/timeutil"
	"github.com/star/satplanner/internal/tle"
	"github.com/star/satplanner/internal/transform"
)

// NewSatState validates a TLE and initializes its SGP4 model.
func NewSatState(entry tle.TLEEntry) (SatState, error) {
	prop, err := NewSGP4Propagator(entry.Line1, entry.Line2, entry.NORADID)
	if err != nil {
		return SatState{}, err
	}
	return SatState{sat: prop.sat, NORADID: entry.NORADID}, nil
}

// Advance propagates state to the given Julian date (UTC) and returns the
// sub-satellite geodetic latitude/longitude in degrees. Altitude is
// discarded; the ground track is a 2-D projection.
func Advance(state SatState, jd float64) (lat, lon float64, err error) {
	ecef, err := advanceECEF(state, jd)
	if err != nil {
		return 0, 0, err
	}
	pt := transform.ECEFToGeodetic(ecef.X, ecef.Y, ecef.Z)
	return pt.LatDeg, pt.LonDeg, nil
}

// AdvanceWithLookAngles is Advance, additionally computing azimuth,
// elevation, and range from the given observer site.
func AdvanceWithLookAngles(state SatState, jd float64, obs transform.ObserverPosition) (lat, lon float64, look transform.LookAngles, err error) {
	ecef, err := advanceECEF(state, jd)
	if err != nil {
		return 0, 0, transform.LookAngles{}, err
	}
	pt := transform.ECEFToGeodetic(ecef.X, ecef.Y, ecef.Z)
	look = transform.ECEFToLookAngles(obs, ecef.X, ecef.Y, ecef.Z)
	return pt.LatDeg, pt.LonDeg, look, nil
}

func advanceECEF(state SatState, jd float64) (transform.PositionECEF, error) {
	c := timeutil.JDToUTC(jd)

	// Route through SGP4Propagator so the NaN/Inf and magnitude sanity
	// checks run exactly as they do for the batch path.
	prop := &SGP4Propagator{sat: state.sat, noradID: state.NORADID}
	teme, err := prop.Propagate(c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second)
	if err != nil {
		return transform.PositionECEF{}, &planererr.PropagationError{NORADID: state.NORADID, Reason: err.Error()}
	}

	t := time.Date(c.Year, time.Month(c.Month), c.Day, c.Hour, c.Minute, c.Second, 0, time.UTC)
	return transform.TEMEToECEF(teme, t), nil
}
