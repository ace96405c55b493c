package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// === PhotozTable ===

// Column indices of a PhotozTable.
const (
	PhotozColSpecz = iota
	PhotozColPhotoz
	PhotozColPhotozError
)

// PhotozTable is an immutable N×3 table of (spec-z, photo-z, photo-z error)
// built from reference objects with a positive spectroscopic redshift.
type PhotozTable struct {
	m *mat.Dense // nil when the table has no rows
}

// NewPhotozTable keeps the rows of refs with HostSpecz > 0 and finite
// photo-z columns.
func NewPhotozTable(refs []Metadata) *PhotozTable {
	data := make([]float64, 0, 3*len(refs))
	for _, r := range refs {
		if !(r.HostSpecz > 0) || math.IsInf(r.HostSpecz, 0) || !isFinite(r.HostPhotoz) || !isFinite(r.HostPhotozError) {
			continue
		}
		data = append(data, r.HostSpecz, r.HostPhotoz, r.HostPhotozError)
	}
	if len(data) == 0 {
		return &PhotozTable{}
	}
	return &PhotozTable{m: mat.NewDense(len(data)/3, 3, data)}
}

// Len returns the number of rows.
func (t *PhotozTable) Len() int {
	if t == nil || t.m == nil {
		return 0
	}
	r, _ := t.m.Dims()
	return r
}

// Row returns row i.
func (t *PhotozTable) Row(i int) (specz, photoz, photozError float64) {
	row := t.m.RawRowView(i)
	return row[PhotozColSpecz], row[PhotozColPhotoz], row[PhotozColPhotozError]
}

// Column returns a copy of column j.
func (t *PhotozTable) Column(j int) []float64 {
	n := t.Len()
	if n == 0 {
		return nil
	}
	return mat.Col(nil, j, t.m)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// === PhotozReference ===

// ReferenceLoader loads the metadata of the full reference dataset. No
// per-epoch observations are needed.
type ReferenceLoader func(ctx context.Context) ([]Metadata, error)

// CacheState is the lifecycle of a PhotozReference.
// Transitions: Empty → Loading → Ready | Failed. There is no way back
// except Reset.
type CacheState int

const (
	CacheEmpty CacheState = iota
	CacheLoading
	CacheReady
	CacheFailed
)

func (s CacheState) String() string {
	switch s {
	case CacheLoading:
		return "loading"
	case CacheReady:
		return "ready"
	case CacheFailed:
		return "failed"
	default:
		return "empty"
	}
}

// PhotozReference lazily loads and then retains the PhotozTable. The first
// caller pays for the load; concurrent callers wait for it. A failed load is
// terminal and every later call returns the same error.
type PhotozReference struct {
	loader ReferenceLoader

	mu    sync.Mutex
	state CacheState
	done  chan struct{}
	table *PhotozTable
	err   error
}

// NewPhotozReference creates an empty cache around loader.
func NewPhotozReference(loader ReferenceLoader) *PhotozReference {
	return &PhotozReference{loader: loader}
}

// NewPhotozReferenceFromTable creates a cache that is already Ready.
func NewPhotozReferenceFromTable(table *PhotozTable) *PhotozReference {
	done := make(chan struct{})
	close(done)
	return &PhotozReference{state: CacheReady, table: table, done: done}
}

// State returns the current lifecycle state.
func (p *PhotozReference) State() CacheState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Table returns the reference table, loading it on first use.
func (p *PhotozReference) Table(ctx context.Context) (*PhotozTable, error) {
	p.mu.Lock()
	switch p.state {
	case CacheReady:
		t := p.table
		p.mu.Unlock()
		return t, nil
	case CacheFailed:
		err := p.err
		p.mu.Unlock()
		return nil, err
	case CacheLoading:
		done := p.done
		p.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.table, p.err
	}

	p.state = CacheLoading
	done := make(chan struct{})
	p.done = done
	p.mu.Unlock()

	table, err := p.load(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.state = CacheFailed
		p.err = err
	} else {
		p.state = CacheReady
		p.table = table
	}
	close(done)
	return table, err
}

func (p *PhotozReference) load(ctx context.Context) (*PhotozTable, error) {
	if p.loader == nil {
		return nil, fmt.Errorf("%w: no loader configured", ErrPhotozReferenceLoad)
	}
	logrus.Info("Loading photo-z reference...")
	refs, err := p.loader(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPhotozReferenceLoad, err)
	}
	table := NewPhotozTable(refs)
	logrus.Infof("Loaded photo-z reference: %d of %d objects have a spec-z", table.Len(), len(refs))
	return table, nil
}

// Reset discards the cached table. Intended for tests. It does nothing
// while a load is in flight and reports whether the cache was reset.
func (p *PhotozReference) Reset() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == CacheLoading {
		return false
	}
	p.state = CacheEmpty
	p.table = nil
	p.err = nil
	p.done = nil
	return true
}

// === PhotozSimulator ===

// PhotozSimulator draws photo-z estimates by applying empirical
// photo-z minus spec-z residuals to a new true redshift.
type PhotozSimulator struct {
	reference *PhotozReference
	cfg       PhotozConfig
}

// NewPhotozSimulator creates a simulator backed by reference.
func NewPhotozSimulator(reference *PhotozReference, cfg PhotozConfig) *PhotozSimulator {
	return &PhotozSimulator{reference: reference, cfg: cfg}
}

// Simulate returns a (photo-z, photo-z error) pair for true redshift z.
// The residual of a random reference row is applied with a random sign:
// spectroscopic samples only reach low redshift, so the observed residuals
// are one-sided and are mirrored here. Candidates below zero are redrawn.
func (s *PhotozSimulator) Simulate(ctx context.Context, z float64, rng *rand.Rand) (float64, float64, error) {
	if math.IsNaN(z) || math.IsInf(z, 0) || z < 0 {
		return 0, 0, fmt.Errorf("%w: photo-z requested for z=%g", ErrInvalidRedshift, z)
	}
	table, err := s.reference.Table(ctx)
	if err != nil {
		return 0, 0, err
	}
	if table.Len() == 0 {
		return 0, 0, ErrEmptyPhotozTable
	}

	type draw struct{ photoz, photozError float64 }
	d, err := Retry(s.cfg.MaxAttempts, func(int) (draw, bool, error) {
		specz, photoz, photozError := table.Row(rng.Intn(table.Len()))
		diff := photoz - specz
		if rng.Intn(2) == 0 {
			diff = -diff
		}
		candidate := z + diff
		if !(candidate >= 0) {
			return draw{}, false, nil
		}
		// Smear the error so it is never an exact copy of a catalog value.
		smeared := photozError * (1 + s.cfg.ErrorScatter*rng.NormFloat64())
		return draw{candidate, smeared}, true, nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("%w: z=%g over %d reference rows: %v", ErrNoPhysicalPhotoz, z, table.Len(), err)
	}
	return d.photoz, d.photozError, nil
}
