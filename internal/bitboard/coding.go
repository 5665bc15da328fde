// Package bitboard implements the 7x6 drop-token board as a pair of 64-bit
// occupancy masks. Each column is allotted 8 bit positions (6 playable plus 2
// guard bits) so that shift-based line detection never leaks across column
// boundaries:
//
//	(48) (49) (50) (51) (52) (53) (54) (55)
//	 40   41   42   43   44   45   46  (47)
//	 32   33   34   35   36   37   38  (39)
//	 24   25   26   27   28   29   30  (31)
//	 16   17   18   19   20   21   22  (23)
//	  8    9   10   11   12   13   14  (15)
//	  0    1    2    3    4    5    6  ( 7)
//
// Positions in parentheses are guard bits and stay empty.
package bitboard

const (
	// Width is the number of columns on the board.
	Width = 7
	// Height is the number of playable rows per column.
	Height = 6

	// columnStride is the bit distance between vertically adjacent cells.
	columnStride = 8
)

// bit returns a mask with only the cell at (column, row) set.
func bit(column, row int) uint64 {
	return 1 << (column + columnStride*row)
}

// columnMask builds the mask covering all playable cells of one column.
func columnMask(column int) uint64 {
	var m uint64
	for row := 0; row < Height; row++ {
		m |= bit(column, row)
	}
	return m
}

func fullBoardMask() uint64 {
	var m uint64
	for column := 0; column < Width; column++ {
		m |= columnMask(column)
	}
	return m
}

func bottomFillMask() uint64 {
	var m uint64
	for column := 0; column < Width; column++ {
		m |= bit(column, 0)
	}
	return m
}

var (
	// ColumnMasks flags the playable cells of each of the seven columns.
	ColumnMasks = [Width]uint64{
		columnMask(0), columnMask(1), columnMask(2), columnMask(3),
		columnMask(4), columnMask(5), columnMask(6),
	}

	// FullBoard flags every playable cell, guard bits excluded.
	FullBoard = fullBoardMask()

	// bottomRow flags the lowest cell of every column; synthetic floor for
	// landing-bit computation.
	bottomRow = bottomFillMask()
)

// DirShifts are the four line directions encoded as shift amounts:
//
//	7  8  9
//	 \ | /
//	   X - 1
//
// up-left diagonal, up, up-right diagonal, right.
var DirShifts = [4]uint{7, 8, 9, 1}

// ClipShift shifts a mask toward higher bits and clips against the guard bits.
func ClipShift(m uint64, amount uint) uint64 {
	return (m << amount) & FullBoard
}

// ClipShiftBack is the inverse direction of ClipShift.
func ClipShiftBack(m uint64, amount uint) uint64 {
	return (m >> amount) & FullBoard
}

// PossibleMove returns the single bit where a stone dropped into column would
// land given the combined occupancy of both sides, or 0 if the column is full.
func PossibleMove(occupancy uint64, column int) uint64 {
	// Shifting the occupancy up one row and extending it with a synthetic
	// bottom row marks every cell that has support below it; XOR against the
	// occupancy itself isolates the lowest free cell per column.
	return ((ClipShift(occupancy, columnStride) | bottomRow) ^ occupancy) & ColumnMasks[column]
}

// Move pairs a landing bit with the column it was generated for.
type Move struct {
	Mask   uint64
	Column int
}

// AllPossibleMoves returns one landing bit per non-full column, in ascending
// column order.
func AllPossibleMoves(occupancy uint64) []Move {
	landings := (ClipShift(occupancy, columnStride) | bottomRow) ^ occupancy
	moves := make([]Move, 0, Width)
	for column := 0; column < Width; column++ {
		if m := landings & ColumnMasks[column]; m != 0 {
			moves = append(moves, Move{Mask: m, Column: column})
		}
	}
	return moves
}

// HasWin reports whether the mask contains four contiguous stones in any of
// the four line directions. One shifted AND collapses pairs, a double shift of
// the pair mask ANDed back collapses runs of four; no cell-by-cell scan.
func HasWin(m uint64) bool {
	for _, shift := range DirShifts {
		d := ClipShift(m, shift) & m
		dd := ClipShift(ClipShift(d, shift), shift)
		if dd&d != 0 {
			return true
		}
	}
	return false
}

// WinningStones recovers the full set of stones participating in winning
// lines. HasWin collapses each run of four into its outermost bit; shifting
// that bit back three times in the same direction re-expands the run. Used
// only for highlighting, never inside the search.
func WinningStones(m uint64) uint64 {
	var result uint64
	for _, shift := range DirShifts {
		d := ClipShift(m, shift) & m
		dd := ClipShift(ClipShift(d, shift), shift)
		flag := dd & d

		result |= flag
		for i := 0; i < 3; i++ {
			flag >>= shift
			result |= flag
		}
	}
	return result
}

// FlipBoard mirrors a mask along the vertical center line (columns 0<->6,
// 1<->5, 2<->4, 3 fixed). It is an involution: FlipBoard(FlipBoard(m)) == m.
func FlipBoard(m uint64) uint64 {
	result := (m & ColumnMasks[6]) >> 6
	result |= (m & ColumnMasks[5]) >> 4
	result |= (m & ColumnMasks[4]) >> 2
	result |= m & ColumnMasks[3]
	result |= (m & ColumnMasks[2]) << 2
	result |= (m & ColumnMasks[1]) << 4
	result |= (m & ColumnMasks[0]) << 6
	return result
}
