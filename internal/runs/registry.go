package runs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/star/satplanner/internal/ephem"
	"github.com/star/satplanner/internal/metrics"
	"github.com/star/satplanner/internal/poiselect"
	"github.com/star/satplanner/internal/propagation"
	"github.com/star/satplanner/internal/spatial"
	"github.com/star/satplanner/internal/territory"
	"github.com/star/satplanner/internal/tiles"
	"github.com/star/satplanner/internal/tle"
)

// record is the mutable state for one run, read concurrently by HTTP
// status/export handlers while the run goroutine is still writing to it.
// State and Result are each swapped atomically rather than guarded by a
// mutex.
type record struct {
	state  atomic.Pointer[State]
	result atomic.Pointer[Result]
}

// Registry is the run-scoped orchestrator: it holds the currently loaded
// territory/POI datasets and their spatial indexes, and tracks in-flight
// and completed runs. One Registry is shared by the whole HTTP surface.
type Registry struct {
	logger      *slog.Logger
	engine      *ephem.Engine
	workers     int
	gridCellDeg float64

	datasetMu sync.RWMutex // serializes dataset reload vs. in-flight Label/Select reads
	countries []tiles.CountryTile
	countryG  *spatial.Grid
	pois      []tiles.PoiTile
	poiG      *spatial.Grid

	inflightMu sync.Mutex // guards inflight, serializing start-vs-cancel per consumer key
	inflight   map[string]inflightEntry
	nextToken  uint64

	records sync.Map // run id -> *record
}

// inflightEntry pairs a run's cancel func with a monotonic token, so a
// finishing run can tell whether it is still the consumer key's current
// run before clearing the map entry (a newer run may have already
// superseded it). Go has no function-identity comparison, hence the token.
type inflightEntry struct {
	cancel context.CancelFunc
	token  uint64
}

// defaultGridCellDeg is the spatial index cell size used unless
// NewRegistryWithGrid overrides it (PLANNER_GRID_CELL_DEG).
const defaultGridCellDeg = 1.0

// NewRegistry creates a Registry seeded with the given datasets, using the
// default grid cell size.
func NewRegistry(logger *slog.Logger, engine *ephem.Engine, workers int, countries []tiles.CountryTile, pois []tiles.PoiTile) *Registry {
	return NewRegistryWithGrid(logger, engine, workers, defaultGridCellDeg, countries, pois)
}

// NewRegistryWithGrid is NewRegistry with an explicit spatial grid cell
// size in degrees.
func NewRegistryWithGrid(logger *slog.Logger, engine *ephem.Engine, workers int, gridCellDeg float64, countries []tiles.CountryTile, pois []tiles.PoiTile) *Registry {
	r := &Registry{
		logger:      logger,
		engine:      engine,
		workers:     poiselect.ClampWorkers(workers),
		gridCellDeg: gridCellDeg,
		inflight:    make(map[string]inflightEntry),
	}
	r.ReplaceCountries(countries)
	r.ReplacePois(pois)
	return r
}

// ReplaceCountries atomically swaps the territory dataset and rebuilds its
// spatial index.
func (r *Registry) ReplaceCountries(countries []tiles.CountryTile) {
	grid := territory.BuildGrid(countries, r.gridCellDeg)
	r.datasetMu.Lock()
	r.countries, r.countryG = countries, grid
	r.datasetMu.Unlock()
}

// ReplacePois atomically swaps the POI dataset and rebuilds its spatial
// index.
func (r *Registry) ReplacePois(pois []tiles.PoiTile) {
	grid := poiselect.BuildGrid(pois, r.gridCellDeg)
	r.datasetMu.Lock()
	r.pois, r.poiG = pois, grid
	r.datasetMu.Unlock()
}

func (r *Registry) snapshotDatasets() ([]tiles.CountryTile, *spatial.Grid, []tiles.PoiTile, *spatial.Grid) {
	r.datasetMu.RLock()
	defer r.datasetMu.RUnlock()
	return r.countries, r.countryG, r.pois, r.poiG
}

// Start begins a new run for spec, cancelling any run still in flight for
// the same ConsumerKey first (single-flight: cancel-then-run, not
// serve-during-rebuild). Returns the new run's ID immediately; the run
// itself proceeds on a detached goroutine seeded from parent.
func (r *Registry) Start(parent context.Context, spec Spec) (string, error) {
	entry, err := tle.ParseLines("", spec.Line1, spec.Line2)
	if err != nil {
		return "", err
	}
	state, err := propagation.NewSatState(entry)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	runCtx, cancel := context.WithCancel(context.WithoutCancel(parent))

	r.inflightMu.Lock()
	if prior, ok := r.inflight[spec.ConsumerKey]; ok {
		prior.cancel()
	}
	r.nextToken++
	token := r.nextToken
	r.inflight[spec.ConsumerKey] = inflightEntry{cancel: cancel, token: token}
	r.inflightMu.Unlock()

	rec := &record{}
	rec.state.Store(&State{ID: id, ConsumerKey: spec.ConsumerKey, Status: StatusRunning, StartedAt: time.Now()})
	r.records.Store(id, rec)

	go r.run(runCtx, token, id, spec, state, rec)

	return id, nil
}

func (r *Registry) run(ctx context.Context, token uint64, id string, spec Spec, state propagation.SatState, rec *record) {
	defer r.clearInflight(spec.ConsumerKey, token)

	buf, err := r.engine.Generate(ctx, state, spec.Observer, spec.JDStart, spec.HorizonSec, spec.StepSec)
	if err != nil {
		r.finish(rec, id, spec.ConsumerKey, err, nil)
		return
	}

	countries, countryG, pois, poiG := r.snapshotDatasets()

	var wg sync.WaitGroup
	var rows []territory.Row
	var picks []poiselect.Pick
	var selectErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		rows = territory.Label(buf, countries, countryG, territory.WildcardSelector, true)
	}()
	go func() {
		defer wg.Done()
		picks, selectErr = poiselect.Select(ctx, buf, pois, poiG, "", r.workers)
	}()
	wg.Wait()

	if selectErr != nil {
		r.finish(rec, id, spec.ConsumerKey, selectErr, nil)
		return
	}

	metrics.RecordTerritoryRows(len(rows))
	metrics.RecordPoiPicks(len(picks))
	r.finish(rec, id, spec.ConsumerKey, nil, &Result{TerritoryRows: rows, PoiPicks: picks})
}

func (r *Registry) finish(rec *record, id, consumerKey string, err error, result *Result) {
	s := &State{ID: id, ConsumerKey: consumerKey, FinishedAt: time.Now()}
	prev := rec.state.Load()
	if prev != nil {
		s.StartedAt = prev.StartedAt
	}

	switch {
	case errors.Is(err, context.Canceled):
		s.Status = StatusCancelled
		metrics.RecordRunCancelled()
	case err != nil:
		s.Status = StatusError
		s.Err = err
		r.logger.Error("run failed", "run_id", id, "error", err)
	default:
		s.Status = StatusDone
		s.TerritoryRows = len(result.TerritoryRows)
		s.PoiPicks = len(result.PoiPicks)
		rec.result.Store(result)
	}
	rec.state.Store(s)
}

// clearInflight removes the consumer key's inflight entry, but only if it
// is still this run's token — a newer run may already have superseded it.
func (r *Registry) clearInflight(consumerKey string, token uint64) {
	r.inflightMu.Lock()
	defer r.inflightMu.Unlock()
	if cur, ok := r.inflight[consumerKey]; ok && cur.token == token {
		delete(r.inflight, consumerKey)
	}
}

// Status returns the current snapshot for a run ID.
func (r *Registry) Status(id string) (State, bool) {
	v, ok := r.records.Load(id)
	if !ok {
		return State{}, false
	}
	s := v.(*record).state.Load()
	if s == nil {
		return State{}, false
	}
	return *s, true
}

// Result returns the completed output for a run ID, if the run finished
// successfully.
func (r *Registry) Result(id string) (*Result, bool) {
	v, ok := r.records.Load(id)
	if !ok {
		return nil, false
	}
	res := v.(*record).result.Load()
	if res == nil {
		return nil, false
	}
	return res, true
}
