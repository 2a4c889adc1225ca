package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape_Rotated(t *testing.T) {
	tests := []struct {
		name string
		in   Shape
		want Shape
	}{
		{
			name: "I becomes vertical",
			in:   Shapes[KindI],
			want: Shape{{true}, {true}, {true}, {true}},
		},
		{
			name: "T points right",
			in:   Shapes[KindT],
			want: Shape{{true, false}, {true, true}, {true, false}},
		},
		{
			name: "L clockwise",
			in:   Shapes[KindL],
			want: Shape{{true, true}, {true, false}, {true, false}},
		},
		{
			name: "O is unchanged",
			in:   Shapes[KindO],
			want: Shapes[KindO],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Rotated()
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestPiece_FourRotationsRestoreShape(t *testing.T) {
	board := NewBoard(20, 10)

	for _, kind := range Kinds {
		t.Run(string(kind), func(t *testing.T) {
			p := NewPiece(kind, "c", 3, 5)
			original := p.Shape.Clone()

			for i := 0; i < 4; i++ {
				require.True(t, p.Rotate(board), "rotation %d should fit on an empty board", i+1)
			}
			assert.True(t, p.Shape.Equal(original))
			assert.Equal(t, 3, p.X)
			assert.Equal(t, 5, p.Y)
		})
	}
}

func TestPiece_Move(t *testing.T) {
	board := NewBoard(20, 10)

	t.Run("blocked by left wall", func(t *testing.T) {
		p := NewPiece(KindO, "c", 0, 0)
		assert.False(t, p.Move(board, -1))
		assert.Equal(t, 0, p.X)
	})

	t.Run("blocked by right wall", func(t *testing.T) {
		p := NewPiece(KindI, "c", 6, 0)
		assert.False(t, p.Move(board, 1))
		assert.Equal(t, 6, p.X)
	})

	t.Run("blocked by locked cells", func(t *testing.T) {
		b := NewBoard(20, 10)
		b.Set(2, 1, "x")
		p := NewPiece(KindO, "c", 3, 0)
		assert.False(t, p.Move(b, -1))
		assert.Equal(t, 3, p.X)
	})

	t.Run("free move", func(t *testing.T) {
		p := NewPiece(KindT, "c", 3, 0)
		assert.True(t, p.Move(board, 1))
		assert.Equal(t, 4, p.X)
	})
}

func TestPiece_RotateRejected(t *testing.T) {
	board := NewBoard(20, 10)
	// Horizontal I on the floor cannot turn vertical
	p := NewPiece(KindI, "c", 3, 19)
	before := p.Shape.Clone()

	assert.False(t, p.Rotate(board))
	assert.True(t, p.Shape.Equal(before))

	// Vertical I against the right wall cannot turn horizontal
	v := &Piece{Kind: KindI, Color: "c", Shape: Shapes[KindI].Rotated(), X: 9, Y: 0}
	assert.False(t, v.Rotate(board))
	assert.Equal(t, 1, v.Shape.Width())
}

func TestPiece_Drop(t *testing.T) {
	board := NewBoard(4, 4)
	p := NewPiece(KindO, "c", 1, 0)

	assert.True(t, p.Drop(board))
	assert.True(t, p.Drop(board))
	assert.Equal(t, 2, p.Y)
	assert.False(t, p.Drop(board), "floor reached")
	assert.Equal(t, 2, p.Y, "rejected drop keeps last valid position")
}

func TestPiece_Collides(t *testing.T) {
	board := NewBoard(20, 10)

	assert.False(t, NewPiece(KindT, "c", 3, 0).Collides(board))
	assert.True(t, NewPiece(KindT, "c", -1, 0).Collides(board))
	assert.True(t, NewPiece(KindT, "c", 8, 0).Collides(board))
	assert.True(t, NewPiece(KindT, "c", 3, 19).Collides(board))

	// Empty cells of the shape never collide
	board.Set(3, 0, "x")
	assert.False(t, NewPiece(KindT, "c", 3, 0).Collides(board))
	board.Set(4, 0, "x")
	assert.True(t, NewPiece(KindT, "c", 3, 0).Collides(board))
}

// Adding blocks to a board never turns a colliding position into a free one
func TestPiece_CollisionMonotonic(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))

	for iter := 0; iter < 300; iter++ {
		board := NewBoard(20, 10)
		for i := 0; i < rng.IntN(60); i++ {
			board.Set(rng.IntN(10), rng.IntN(20), "x")
		}

		kind := Kinds[rng.IntN(len(Kinds))]
		p := NewPiece(kind, "c", rng.IntN(12)-2, rng.IntN(22))
		before := p.Collides(board)

		for i := 0; i < 1+rng.IntN(20); i++ {
			board.Set(rng.IntN(10), rng.IntN(20), "y")
		}
		after := p.Collides(board)

		if before {
			require.True(t, after, "iteration %d: %s at (%d,%d) stopped colliding", iter, kind, p.X, p.Y)
		}
	}
}
