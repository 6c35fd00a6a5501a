package epidemic

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"epi-ca/internal/core"
)

// Counts holds a per-state value indexed by State.
type Counts [NumStates]float64

// RawCounts holds the number of cells in each state.
type RawCounts [NumStates]int

// Total sums the raw counts.
func (r RawCounts) Total() int {
	total := 0
	for _, v := range r {
		total += v
	}
	return total
}

// Normalize divides every count by norm.
func (r RawCounts) Normalize(norm float64) Counts {
	var c Counts
	for i, v := range r {
		c[i] = float64(v) / norm
	}
	return c
}

// Series is the per-state time series of normalized counts in turn order.
type Series struct {
	values [NumStates][]float64
}

// Append records one turn of counts.
func (s *Series) Append(c Counts) {
	for i, v := range c {
		s.values[i] = append(s.values[i], v)
	}
}

// Len returns the number of recorded turns.
func (s *Series) Len() int { return len(s.values[Susceptible]) }

// Values returns the recorded values for st. The slice must not be modified.
func (s *Series) Values(st State) []float64 {
	if !st.Valid() {
		return nil
	}
	return s.values[st]
}

// Clone returns a deep copy of the series.
func (s *Series) Clone() Series {
	var out Series
	for i := range s.values {
		out.values[i] = append([]float64(nil), s.values[i]...)
	}
	return out
}

// Store owns the authoritative state grid, the history grid co-indexed with
// it and the recorded population series.
type Store struct {
	mu sync.RWMutex

	n       int
	grid    *core.ByteGrid
	history []uint32
	raw     RawCounts

	norm   float64
	series Series
}

// NewStore returns an empty store that divides population counts by norm.
func NewStore(norm float64) (*Store, error) {
	if !(norm > 0) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidNormalization, norm)
	}
	return &Store{norm: norm}, nil
}

// Initialize builds an n×n grid whose cells are drawn independently from
// dist and a zero history grid. Any recorded series is discarded.
func (s *Store) Initialize(n int, dist InitialDistribution, rng *rand.Rand) error {
	if n <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSize, n)
	}
	sampler, err := dist.Categorical()
	if err != nil {
		return err
	}
	cells := make([]State, n*n)
	for i := range cells {
		cells[i] = sampler.Sample(rng)
	}
	return s.InitializeWith(n, cells)
}

// InitializeWith installs an explicit n×n grid in row-major order with a zero
// history grid.
func (s *Store) InitializeWith(n int, cells []State) error {
	if n <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSize, n)
	}
	if len(cells) != n*n {
		return fmt.Errorf("%w: %d cells for a %dx%d grid", ErrSizeMismatch, len(cells), n, n)
	}
	grid := core.NewByteGrid(n, n)
	data := grid.Cells()
	for i, st := range cells {
		if !st.Valid() {
			return fmt.Errorf("epidemic: cell %d holds invalid state %d", i, st)
		}
		data[i] = uint8(st)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.n = n
	s.grid = grid
	s.history = make([]uint32, n*n)
	s.series = Series{}
	s.recount()
	return nil
}

// Size returns the side length of the grid.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.n
}

// Snapshot returns a read-only view of the current grid and history. The
// view is valid until the next Commit.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{grid: s.grid, history: s.history}
}

// Commit installs next as the current grid. History counters of cells whose
// state is unchanged are incremented; all others are reset to zero.
func (s *Store) Commit(next *core.ByteGrid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grid == nil || next == nil || next.W != s.n || next.H != s.n {
		return ErrSizeMismatch
	}
	cur := s.grid.Cells()
	for i, v := range next.Cells() {
		if v == cur[i] {
			s.history[i]++
		} else {
			s.history[i] = 0
		}
	}
	s.grid.CopyFrom(next)
	s.recount()
	return nil
}

func (s *Store) recount() {
	hist := s.grid.Histogram(NumStates)
	for i := range s.raw {
		s.raw[i] = hist[i]
	}
}

// RawCounts returns the number of cells in each state.
func (s *Store) RawCounts() RawCounts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw
}

// PopulationCounts returns the normalized per-state counts of the committed
// grid and appends them to the time series.
func (s *Store) PopulationCounts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.raw.Normalize(s.norm)
	s.series.Append(c)
	return c
}

// Series returns a copy of the recorded time series.
func (s *Store) Series() Series {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.series.Clone()
}

// CopyCells copies the current grid into dst, growing it when needed.
func (s *Store) CopyCells(dst []uint8) []uint8 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.grid == nil {
		return dst[:0]
	}
	src := s.grid.Cells()
	if cap(dst) < len(src) {
		dst = make([]uint8, len(src))
	}
	dst = dst[:len(src)]
	copy(dst, src)
	return dst
}

// CopyHistory copies the history grid into dst, growing it when needed.
func (s *Store) CopyHistory(dst []uint32) []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cap(dst) < len(s.history) {
		dst = make([]uint32, len(s.history))
	}
	dst = dst[:len(s.history)]
	copy(dst, s.history)
	return dst
}

// Snapshot is a read-only view of one turn's grid and history.
type Snapshot struct {
	grid    *core.ByteGrid
	history []uint32
}

// Size returns the side length of the grid.
func (v Snapshot) Size() int {
	if v.grid == nil {
		return 0
	}
	return v.grid.W
}

// At returns the state at column x, row y with toroidal wrapping.
func (v Snapshot) At(x, y int) State { return State(v.grid.At(x, y)) }

// HistoryAt returns the history counter at column x, row y.
func (v Snapshot) HistoryAt(x, y int) uint32 {
	x, y = v.grid.Wrap(x, y)
	return v.history[v.grid.Index(x, y)]
}

// Neighbors returns the linear indices of the eight toroidal neighbors.
func (v Snapshot) Neighbors(x, y int) [8]int { return v.grid.Neighbors(x, y) }

// StateAt returns the state at a linear index.
func (v Snapshot) StateAt(i int) State { return State(v.grid.Cells()[i]) }

// CellNumber returns the sequential bookkeeping number of the cell at
// column x, row y.
func (v Snapshot) CellNumber(x, y int) int {
	x, y = v.grid.Wrap(x, y)
	return v.grid.Index(x, y)
}
