package core

// MooreOffsets lists the eight (dx, dy) neighbor offsets in row-major order.
var MooreOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// ByteGrid stores a 2D grid of byte-sized cell values in row-major order.
// Coordinates are (x, y) where x is the column and y the row.
type ByteGrid struct {
	W, H int
	data []uint8
}

// NewByteGrid allocates a grid with the given dimensions.
func NewByteGrid(w, h int) *ByteGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &ByteGrid{W: w, H: h, data: make([]uint8, w*h)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *ByteGrid) Cells() []uint8 { return g.data }

// Index returns the linear slice index for coordinates (x, y).
func (g *ByteGrid) Index(x, y int) int { return y*g.W + x }

// At returns the value at (x, y) after toroidal wrapping.
func (g *ByteGrid) At(x, y int) uint8 {
	x, y = g.Wrap(x, y)
	return g.data[y*g.W+x]
}

// Wrap applies toroidal wrapping to the provided coordinates.
func (g *ByteGrid) Wrap(x, y int) (int, int) {
	x = (x%g.W + g.W) % g.W
	y = (y%g.H + g.H) % g.H
	return x, y
}

// Neighbors returns the wrapped linear indices of the eight Moore neighbors
// of (x, y). On grids narrower than three cells some indices repeat.
func (g *ByteGrid) Neighbors(x, y int) [8]int {
	var out [8]int
	for i, off := range MooreOffsets {
		nx, ny := g.Wrap(x+off[0], y+off[1])
		out[i] = ny*g.W + nx
	}
	return out
}

// CopyFrom overwrites the grid with src. Both grids must share dimensions.
func (g *ByteGrid) CopyFrom(src *ByteGrid) bool {
	if src == nil || src.W != g.W || src.H != g.H {
		return false
	}
	copy(g.data, src.data)
	return true
}


// Histogram counts how many cells hold each value below n.
func (g *ByteGrid) Histogram(n int) []int {
	counts := make([]int, n)
	for _, v := range g.data {
		if int(v) < n {
			counts[v]++
		}
	}
	return counts
}
