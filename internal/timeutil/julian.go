// Package timeutil converts between Julian dates (UTC) and calendar
// components, and formats/parses the fixed timestamp strings the ephemeris
// engine and its consumers pass around.
//
// JDToUTC implements the Fliegel–Van Flandern / Meeus algorithm, rounded to
// the nearest second. Per a preserved behavior of the system this was
// distilled from: the second-60 rollover carries into minutes, hours, and
// (on overflow) the day number, but does not re-check month/year boundaries
// once the day rolls. This is the day-boundary rollover approximation noted
// as an open question — preserved rather than fixed, since only a rounding
// carry of exactly one second can trigger it and no caller has depended on
// stricter behavior.
package timeutil

import "math"

// UTCComponents holds a Gregorian calendar date and time of day, all in UTC.
type UTCComponents struct {
	Year, Month, Day    int
	Hour, Minute, Second int
}

// JDToUTC converts a Julian date (UTC) to calendar components, rounding to
// the nearest whole second.
func JDToUTC(jd float64) UTCComponents {
	Z := math.Floor(jd + 0.5)
	F := (jd + 0.5) - Z
	J := int64(Z)

	var A int64
	if J >= 2299161 {
		alpha := int64(math.Floor((float64(J) - 1867216.25) / 36524.25))
		A = J + 1 + alpha - int64(math.Floor(float64(alpha)/4.0))
	} else {
		A = J
	}

	B := A + 1524
	C := int64(math.Floor((float64(B) - 122.1) / 365.25))
	D := int64(math.Floor(365.25 * float64(C)))
	E := int64(math.Floor(float64(B-D) / 30.6001))

	dayDecimal := float64(B-D) - math.Floor(30.6001*float64(E)) + F
	day := int(math.Floor(dayDecimal))

	var month int
	if E < 14 {
		month = int(E - 1)
	} else {
		month = int(E - 13)
	}

	var year int
	if month > 2 {
		year = int(C - 4716)
	} else {
		year = int(C - 4715)
	}

	fractionalDay := dayDecimal - float64(day)
	totalSeconds := fractionalDay * 86400.0

	hour := int(math.Floor(totalSeconds / 3600.0))
	rem := totalSeconds - float64(hour)*3600.0
	minute := int(math.Floor(rem / 60.0))
	seconds := rem - float64(minute)*60.0

	second := int(math.Floor(seconds + 0.5))
	if second >= 60 {
		second -= 60
		minute++
		if minute >= 60 {
			minute -= 60
			hour++
			if hour >= 24 {
				hour -= 24
				day++
				// Day rolled into the next calendar day without re-deriving
				// month/year from the JD conversion above. See package doc.
			}
		}
	}

	return UTCComponents{
		Year: year, Month: month, Day: day,
		Hour: hour, Minute: minute, Second: second,
	}
}

// JulianEpochJ2000 is the Julian date of the J2000.0 epoch, for callers that
// need to relate a Julian date back to J2000.
const JulianEpochJ2000 = 2451545.0

// UTCToJD converts calendar components (UTC) back to a Julian date. Inverse
// of JDToUTC, used by the display-time parser to reconstruct a jd from a
// formatted timestamp.
func UTCToJD(c UTCComponents) float64 {
	y := float64(c.Year)
	m := float64(c.Month)
	d := float64(c.Day) + (float64(c.Hour) + float64(c.Minute)/60.0 + float64(c.Second)/3600.0)/24.0

	if m <= 2 {
		y--
		m += 12
	}

	A := math.Floor(y / 100)
	B := 2 - A + math.Floor(A/4)

	return math.Floor(365.25*(y+4716)) + math.Floor(30.6001*(m+1)) + d + B - 1524.5
}
