package engine

import "strings"

const (
	emptyChar  = '.'
	lockedChar = '#'
	activeChar = '@'
)

// CountFilledCells counts the occupied cells in a grid
func CountFilledCells(grid [][]string) int {
	count := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell != Empty {
				count++
			}
		}
	}
	return count
}

// ColumnHeights returns, per column, the distance from the floor to the
// highest locked block (0 for an empty column)
func ColumnHeights(grid [][]string) []int {
	if len(grid) == 0 {
		return nil
	}
	heights := make([]int, len(grid[0]))
	for x := range heights {
		for y, row := range grid {
			if row[x] != Empty {
				heights[x] = len(grid) - y
				break
			}
		}
	}
	return heights
}

// RenderRows draws a snapshot as text, one string per board row: '.' for an
// empty cell, '#' for a locked block and '@' for the active piece
func RenderRows(state *GameState) []string {
	if state == nil {
		return nil
	}
	canvas := make([][]byte, len(state.Grid))
	for y, row := range state.Grid {
		canvas[y] = make([]byte, len(row))
		for x, cell := range row {
			if cell == Empty {
				canvas[y][x] = emptyChar
			} else {
				canvas[y][x] = lockedChar
			}
		}
	}

	if state.Active != nil {
		origin := state.Active.Position
		for r, row := range state.Active.Shape {
			for c, filled := range row {
				x, y := origin.X+c, origin.Y+r
				if filled && y >= 0 && y < len(canvas) && x >= 0 && x < len(canvas[y]) {
					canvas[y][x] = activeChar
				}
			}
		}
	}

	rows := make([]string, len(canvas))
	for y, line := range canvas {
		rows[y] = string(line)
	}
	return rows
}

// RenderBoard joins RenderRows with newlines
func RenderBoard(state *GameState) string {
	return strings.Join(RenderRows(state), "\n")
}
