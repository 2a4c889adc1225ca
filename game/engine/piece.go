package engine

// Shape is a filled/empty matrix; row-major, Shape[r][c]
type Shape [][]bool

// Shapes holds the canonical tetrominoes in spawn orientation
var Shapes = map[Kind]Shape{
	KindI: {{true, true, true, true}},
	KindO: {{true, true}, {true, true}},
	KindT: {{false, true, false}, {true, true, true}},
	KindL: {{true, false, false}, {true, true, true}},
	KindJ: {{false, false, true}, {true, true, true}},
	KindS: {{true, true, false}, {false, true, true}},
	KindZ: {{false, true, true}, {true, true, false}},
}

// Kinds lists the tetromino kinds in the order used for random selection
var Kinds = []Kind{KindI, KindO, KindT, KindL, KindJ, KindS, KindZ}

// Width returns the number of columns in the shape
func (s Shape) Width() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Height returns the number of rows in the shape
func (s Shape) Height() int {
	return len(s)
}

// Clone returns a deep copy of the shape
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	for r, row := range s {
		out[r] = append([]bool(nil), row...)
	}
	return out
}

// Rotated returns the shape turned 90 degrees clockwise: column c of the
// source, read bottom to top, becomes row c of the result.
func (s Shape) Rotated() Shape {
	h, w := s.Height(), s.Width()
	out := make(Shape, w)
	for c := 0; c < w; c++ {
		out[c] = make([]bool, h)
		for r := 0; r < h; r++ {
			out[c][r] = s[h-1-r][c]
		}
	}
	return out
}

// Equal reports whether two shapes have identical dimensions and cells
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for r := range s {
		if len(s[r]) != len(other[r]) {
			return false
		}
		for c := range s[r] {
			if s[r][c] != other[r][c] {
				return false
			}
		}
	}
	return true
}

// Piece is the active tetromino: shape, board-space origin, kind and color
type Piece struct {
	Kind  Kind
	Color string
	Shape Shape
	X     int
	Y     int
}

// NewPiece creates a piece of the given kind at (x, y)
func NewPiece(kind Kind, color string, x, y int) *Piece {
	return &Piece{
		Kind:  kind,
		Color: color,
		Shape: Shapes[kind].Clone(),
		X:     x,
		Y:     y,
	}
}

// Collides reports whether any filled cell lies below the floor, beyond a
// side wall, or on an occupied board cell.
func (p *Piece) Collides(b *Board) bool {
	for r, row := range p.Shape {
		for c, filled := range row {
			if !filled {
				continue
			}
			x, y := p.X+c, p.Y+r
			if y >= b.Rows() || x < 0 || x >= b.Cols() {
				return true
			}
			if b.IsOccupied(x, y) {
				return true
			}
		}
	}
	return false
}

// Move shifts the piece horizontally by dx; the shift is rejected on collision
func (p *Piece) Move(b *Board, dx int) bool {
	candidate := *p
	candidate.X += dx
	return p.apply(b, candidate)
}

// Rotate turns the piece clockwise; the rotation is rejected on collision
func (p *Piece) Rotate(b *Board) bool {
	candidate := *p
	candidate.Shape = p.Shape.Rotated()
	return p.apply(b, candidate)
}

// Drop moves the piece down one row. It returns false when the piece has
// landed, leaving it at its last valid position.
func (p *Piece) Drop(b *Board) bool {
	candidate := *p
	candidate.Y++
	return p.apply(b, candidate)
}

// apply commits candidate only when it fits on the board
func (p *Piece) apply(b *Board, candidate Piece) bool {
	if candidate.Collides(b) {
		return false
	}
	*p = candidate
	return true
}

// View returns the renderable form of the piece
func (p *Piece) View() *ActivePiece {
	return &ActivePiece{
		Kind:     p.Kind,
		Color:    p.Color,
		Shape:    p.Shape.Clone(),
		Position: Position{X: p.X, Y: p.Y},
	}
}
