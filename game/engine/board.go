package engine

// Board is a fixed-size grid of cells; each cell is Empty or holds a color
type Board struct {
	rows int
	cols int
	grid [][]string
}

// NewBoard creates an empty board with the given dimensions
func NewBoard(rows, cols int) *Board {
	b := &Board{rows: rows, cols: cols}
	b.Reset()
	return b
}

// Rows returns the number of rows
func (b *Board) Rows() int {
	return b.rows
}

// Cols returns the number of columns
func (b *Board) Cols() int {
	return b.cols
}

// Reset empties every cell
func (b *Board) Reset() {
	b.grid = make([][]string, b.rows)
	for y := range b.grid {
		b.grid[y] = emptyRow(b.cols)
	}
}

// InBounds reports whether (x, y) is a stored cell
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.cols && y >= 0 && y < b.rows
}

// IsOccupied reports whether the cell at (x, y) holds a locked block.
// Cells outside the grid are never stored and report false.
func (b *Board) IsOccupied(x, y int) bool {
	if !b.InBounds(x, y) {
		return false
	}
	return b.grid[y][x] != Empty
}

// Cell returns the value stored at (x, y), or Empty when out of bounds
func (b *Board) Cell(x, y int) string {
	if !b.InBounds(x, y) {
		return Empty
	}
	return b.grid[y][x]
}

// Set writes a value into the cell at (x, y); out-of-bounds writes are dropped
func (b *Board) Set(x, y int, value string) {
	if b.InBounds(x, y) {
		b.grid[y][x] = value
	}
}

// Lock writes the piece color into every cell covered by its shape.
// It must only be called once the piece cannot move down any further.
func (b *Board) Lock(p *Piece) {
	for r, row := range p.Shape {
		for c, filled := range row {
			if filled {
				b.Set(p.X+c, p.Y+r, p.Color)
			}
		}
	}
}

// ClearLines removes every full row, inserting an empty row at the top for
// each one, and returns how many rows were removed.
func (b *Board) ClearLines() int {
	cleared := 0
	for y := b.rows - 1; y >= 0; y-- {
		if !b.rowFull(y) {
			continue
		}
		copy(b.grid[1:y+1], b.grid[:y])
		b.grid[0] = emptyRow(b.cols)
		cleared++
		// rows above shifted down into y
		y++
	}
	return cleared
}

// Grid returns a deep copy of the cells
func (b *Board) Grid() [][]string {
	out := make([][]string, b.rows)
	for y, row := range b.grid {
		out[y] = append([]string(nil), row...)
	}
	return out
}

// FilledCells counts occupied cells
func (b *Board) FilledCells() int {
	return CountFilledCells(b.grid)
}

func (b *Board) rowFull(y int) bool {
	for _, cell := range b.grid[y] {
		if cell == Empty {
			return false
		}
	}
	return true
}

func emptyRow(cols int) []string {
	return make([]string, cols)
}
