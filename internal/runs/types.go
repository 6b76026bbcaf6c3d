// Package runs is the run-scoped orchestrator: a Registry holds the loaded
// territory and POI datasets, the in-flight run's cancel function per named
// consumer key, and a record per run ID; Start launches a run that fans out
// to the territory labeler and POI selector once the ephemeris engine
// completes. Starting a new run for a consumer key
// cancels that key's in-flight run outright rather than serving it while a
// replacement builds.
package runs

import (
	"time"

	"github.com/star/satplanner/internal/poiselect"
	"github.com/star/satplanner/internal/territory"
	"github.com/star/satplanner/internal/transform"
)

// Status is a run's lifecycle state.
type Status string

const (
	StatusRunning   Status = "running"
	StatusDone      Status = "done"
	StatusCancelled Status = "cancelled"
	StatusError     Status = "error"
)

// Spec describes one requested run: a TLE, a propagation horizon/step, and
// an optional ground observer for look angles.
type Spec struct {
	ConsumerKey string
	Line1       string
	Line2       string
	NORADID     int
	JDStart     float64
	HorizonSec  float64
	StepSec     float64
	Observer    *transform.ObserverPosition
}

// Result is the outcome of a completed run: the labeled territory rows and
// the POI closest-approach picks, computed concurrently off the same
// ephemeris buffer.
type Result struct {
	TerritoryRows []territory.Row
	PoiPicks      []poiselect.Pick
}

// State is the externally observable snapshot of one run, returned by
// Registry.Status.
type State struct {
	ID            string
	ConsumerKey   string
	Status        Status
	Err           error
	TerritoryRows int
	PoiPicks      int
	StartedAt     time.Time
	FinishedAt    time.Time
}
