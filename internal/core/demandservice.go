package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// DefaultCacheEntries bounds the number of memoized results per cache.
const DefaultCacheEntries = 64

// ComputeRequest selects what DemandService.Compute produces.
type ComputeRequest struct {
	GroupingMode  models.GroupingMode  `json:"groupingMode"`
	HorizonStart  time.Time            `json:"horizonStart"`
	HorizonMonths int                  `json:"horizonMonths"`
	Filters       models.DemandFilters `json:"filters"`
	// WithRevenue annotates client-grouped results with revenue figures.
	WithRevenue bool `json:"withRevenue"`
}

// ComputeResult is the outcome of one recompute. Raw is the unfiltered
// matrix; Matrix is filtered and, when requested, annotated.
type ComputeResult struct {
	Dataset *models.Dataset
	Raw     *models.DemandMatrixData
	Matrix  *models.DemandMatrixData
	Issues  []models.ValidationIssue
	Cached  bool
}

// DemandService runs the build, filter, and annotate pipeline over the
// current source records.
type DemandService interface {
	Compute(ctx context.Context, req ComputeRequest) (*ComputeResult, error)
	Invalidate()
}

// ServiceOption configures a DemandService.
type ServiceOption func(*demandService)

// WithLogger sets the logger the service writes to.
func WithLogger(l Logger) ServiceOption {
	return func(s *demandService) {
		if l != nil {
			s.log = l
		}
	}
}

// WithEventLogger records a matrix.computed event for every fresh compute.
func WithEventLogger(e EventLogger) ServiceOption {
	return func(s *demandService) { s.events = e }
}

// WithCacheEntries bounds each memo cache.
func WithCacheEntries(n int) ServiceOption {
	return func(s *demandService) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithMatrixBuilder replaces the default MatrixBuilder.
func WithMatrixBuilder(b MatrixBuilder) ServiceOption {
	return func(s *demandService) {
		if b != nil {
			s.builder = b
		}
	}
}

// WithClock sets the clock used to default the horizon start.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *demandService) {
		if now != nil {
			s.now = now
		}
	}
}

type builtMatrix struct {
	matrix *models.DemandMatrixData
	issues []models.ValidationIssue
}

// demandService memoizes raw matrices on (version, horizon, mode) and
// results on the full request. Both caches are dropped when the dataset
// version changes; concurrent identical computes are collapsed.
type demandService struct {
	source     DataSource
	builder    MatrixBuilder
	log        Logger
	events     EventLogger
	maxEntries int
	now        func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	version string
	raw     *memo[builtMatrix]
	results *memo[*ComputeResult]
}

// NewDemandService creates a DemandService reading from source.
func NewDemandService(source DataSource, opts ...ServiceOption) DemandService {
	s := &demandService{
		source:     source,
		builder:    NewMatrixBuilder(nil),
		log:        nopLogger{},
		maxEntries: DefaultCacheEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.raw = newMemo[builtMatrix](s.maxEntries)
	s.results = newMemo[*ComputeResult](s.maxEntries)
	return s
}

// Compute loads the dataset and returns the matrix for req, reusing
// memoized work when the dataset has not changed.
func (s *demandService) Compute(ctx context.Context, req ComputeRequest) (*ComputeResult, error) {
	if s.source == nil {
		return nil, fmt.Errorf("computing demand: no data source configured")
	}
	req = s.normalize(req)
	if !ValidGroupingMode(req.GroupingMode) {
		return nil, fmt.Errorf("%w: %q (use skill or client)", ErrUnsupportedGrouping, req.GroupingMode)
	}

	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	horizon, err := NewHorizon(req.HorizonStart, req.HorizonMonths)
	if err != nil {
		return nil, err
	}

	s.resetIfStale(ds.Version)
	resultKey, err := requestKey(ds.Version, req)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.cachedResult(resultKey); ok {
		s.log.Debug("demand matrix cache hit", "key", resultKey)
		out := *cached
		out.Cached = true
		return &out, nil
	}

	ch := s.group.DoChan(resultKey, func() (any, error) {
		return s.compute(ds, horizon, req, resultKey)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ComputeResult), nil
	}
}

// Invalidate drops every memoized matrix.
func (s *demandService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw.clear()
	s.results.clear()
	s.version = ""
}

func (s *demandService) compute(ds *models.Dataset, horizon []models.MonthDescriptor, req ComputeRequest, resultKey string) (*ComputeResult, error) {
	started := s.now()
	built, err := s.buildRaw(ds, horizon, req.GroupingMode)
	if err != nil {
		return nil, err
	}

	matrix, err := FilterMatrix(built.matrix, req.Filters)
	if err != nil {
		return nil, err
	}
	if req.WithRevenue {
		matrix = AnnotateRevenue(matrix, ds.ClientRates(), ds.ClientExpectedRevenue())
	}

	issues := append([]models.ValidationIssue(nil), built.issues...)
	validateOpts := []ValidateOption{WithCapacity(ds.SkillCapacity())}
	if req.WithRevenue {
		validateOpts = append(validateOpts, WithClientRates(ds.ClientRates()))
	}
	issues = append(issues, ValidateMatrix(matrix, validateOpts...)...)

	result := &ComputeResult{
		Dataset: ds,
		Raw:     built.matrix,
		Matrix:  matrix,
		Issues:  issues,
	}
	s.storeResult(resultKey, result)

	s.log.Info("demand matrix computed",
		"mode", req.GroupingMode,
		"months", len(matrix.Months),
		"cells", len(matrix.DataPoints),
		"total_demand", matrix.TotalDemand,
		"issues", len(issues),
	)
	if s.events != nil {
		_ = s.events.LogEvent(EventMatrixComputed, map[string]any{
			"version":      ds.Version,
			"mode":         string(req.GroupingMode),
			"horizon":      horizon[0].Key,
			"months":       len(matrix.Months),
			"cells":        len(matrix.DataPoints),
			"total_demand": matrix.TotalDemand,
			"issues":       len(issues),
			"duration_ms":  s.now().Sub(started).Milliseconds(),
		})
	}
	return result, nil
}

func (s *demandService) buildRaw(ds *models.Dataset, horizon []models.MonthDescriptor, mode models.GroupingMode) (builtMatrix, error) {
	key := fmt.Sprintf("%s|%s|%d|%s", ds.Version, horizon[0].Key, len(horizon), mode)

	s.mu.Lock()
	cached, ok := s.raw.get(key)
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	assignments := ResolveStaffNames(ds.Assignments, ds.Staff)
	matrix, issues, err := s.builder.Build(assignments, horizon, mode)
	if err != nil {
		return builtMatrix{}, fmt.Errorf("building demand matrix: %w", err)
	}
	built := builtMatrix{matrix: matrix, issues: issues}

	s.mu.Lock()
	s.raw.put(key, built)
	s.mu.Unlock()
	return built, nil
}

func (s *demandService) normalize(req ComputeRequest) ComputeRequest {
	if req.GroupingMode == "" {
		req.GroupingMode = models.GroupBySkill
	}
	if req.HorizonMonths == 0 {
		req.HorizonMonths = DefaultHorizonMonths
	}
	if req.HorizonStart.IsZero() {
		req.HorizonStart = s.now()
	}
	req.HorizonStart = firstOfMonth(req.HorizonStart)
	return req
}

func (s *demandService) resetIfStale(version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != version {
		if s.version != "" {
			s.log.Debug("dataset changed; dropping memoized matrices", "old", s.version, "new", version)
		}
		s.raw.clear()
		s.results.clear()
		s.version = version
	}
}

func (s *demandService) cachedResult(key string) (*ComputeResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results.get(key)
}

func (s *demandService) storeResult(key string, r *ComputeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results.put(key, r)
}

func requestKey(version string, req ComputeRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding compute request: %w", err)
	}
	return version + "|" + string(data), nil
}

// memo is a bounded insertion-ordered cache. Callers hold the lock.
type memo[V any] struct {
	max   int
	order []string
	items map[string]V
}

func newMemo[V any](max int) *memo[V] {
	return &memo[V]{max: max, items: make(map[string]V)}
}

func (m *memo[V]) get(key string) (V, bool) {
	v, ok := m.items[key]
	return v, ok
}

func (m *memo[V]) put(key string, v V) {
	if _, ok := m.items[key]; !ok {
		m.order = append(m.order, key)
	}
	m.items[key] = v
	for len(m.order) > m.max {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.items, oldest)
	}
}

func (m *memo[V]) clear() {
	m.order = nil
	m.items = make(map[string]V)
}
