package bitboard

// Result encodes the terminal status of a board for the game and rendering
// layers.
type Result int

const (
	Pending Result = iota
	Draw
	FirstPlayerWon
	SecondPlayerWon
)

func (r Result) String() string {
	switch r {
	case Pending:
		return "pending"
	case Draw:
		return "draw"
	case FirstPlayerWon:
		return "first_player_won"
	case SecondPlayerWon:
		return "second_player_won"
	default:
		return "unknown"
	}
}

// Board is the mutable per-game position: two disjoint occupancy masks plus a
// display flag mapping the own/opponent roles to visual player identity. It
// has value semantics and is cloned freely by copying.
type Board struct {
	own      uint64
	opponent uint64
	// firstPlayerOwn records whether the own side made the first move. Pure
	// display metadata, irrelevant to search correctness.
	firstPlayerOwn bool
}

// Key is the symmetry-independent position encoding used as a transposition
// table key: the lexicographically smaller of the position and its horizontal
// mirror, so a board and its mirror image always produce the same key.
type Key struct {
	Own uint64
	Opp uint64
}

// NewBoard returns an empty board.
func NewBoard() Board {
	return Board{}
}

// Reset clears both occupancy masks between games.
func (b *Board) Reset() {
	b.own = 0
	b.opponent = 0
}

// SetFirstPlayerOwn marks whether the own side plays first; used by the
// rendering queries only.
func (b *Board) SetFirstPlayerOwn(first bool) {
	b.firstPlayerOwn = first
}

// FirstPlayerOwn reports whether the own side plays first.
func (b *Board) FirstPlayerOwn() bool {
	return b.firstPlayerOwn
}

// Key derives the canonical key for the position.
func (b *Board) Key() Key {
	flippedOwn := FlipBoard(b.own)
	flippedOpp := FlipBoard(b.opponent)

	if b.own < flippedOwn || (b.own == flippedOwn && b.opponent < flippedOpp) {
		return Key{Own: b.own, Opp: b.opponent}
	}
	return Key{Own: flippedOwn, Opp: flippedOpp}
}

// SwapSides exchanges the own and opponent masks; this is what makes the
// negamax "maximize my score" recursion valid at every ply.
func (b *Board) SwapSides() {
	b.own, b.opponent = b.opponent, b.own
}

// PossibleMove returns the landing bit for a stone dropped into column, or 0
// if the column is full.
func (b *Board) PossibleMove(column int) uint64 {
	return PossibleMove(b.own|b.opponent, column)
}

// AllMoves returns one landing bit per non-full column in ascending order.
func (b *Board) AllMoves() []Move {
	return AllPossibleMoves(b.own | b.opponent)
}

// Apply ORs a landed-stone bit into the named side's mask. The mask must be a
// single bit previously obtained from PossibleMove/AllMoves on this same
// occupancy; violating that is a programming error.
func (b *Board) Apply(mask uint64, own bool) {
	if own {
		b.own |= mask
	} else {
		b.opponent |= mask
	}
}

// Revoke removes a bit previously applied with Apply.
func (b *Board) Revoke(mask uint64, own bool) {
	if own {
		b.own ^= mask
	} else {
		b.opponent ^= mask
	}
}

// ApplyColumn drops a stone into a column for the named side and returns the
// landing row, or false if the column is full. Convenience for the game
// layer, not the search.
func (b *Board) ApplyColumn(column int, own bool) (int, bool) {
	mask := b.PossibleMove(column)
	if mask == 0 {
		return 0, false
	}
	row, _ := b.Landing(column)
	b.Apply(mask, own)
	return row, true
}

// Own returns the own-side occupancy mask.
func (b *Board) Own() uint64 {
	return b.own
}

// Opponent returns the opponent-side occupancy mask.
func (b *Board) Opponent() uint64 {
	return b.opponent
}

// FullWithoutWin reports whether every cell is occupied. Callers must have
// already ruled out a win; this is the cheap secondary draw check of the hot
// loop.
func (b *Board) FullWithoutWin() bool {
	return b.own|b.opponent == FullBoard
}

// IsTerminal reports whether the game is over: either side has four in a row
// or the board is full.
func (b *Board) IsTerminal() bool {
	return b.FullWithoutWin() || HasWin(b.own) || HasWin(b.opponent)
}

// Landing returns the row a stone dropped into column would come to rest on,
// without mutating the board. Used by the animation layer. Returns false if
// the column is full.
func (b *Board) Landing(column int) (int, bool) {
	mask := b.PossibleMove(column)
	if mask == 0 {
		return 0, false
	}
	for row := 0; row < Height; row++ {
		if mask&bit(column, row) != 0 {
			return row, true
		}
	}
	return 0, false
}

// Stone is one occupied cell as seen by the rendering layer.
type Stone struct {
	Column      int
	Row         int
	FirstPlayer bool
}

// Cell is a board coordinate, used for the winning-line highlight.
type Cell struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

// cells enumerates the coordinates of all set bits in a mask, column-major.
// Slow; rendering only.
func cells(mask uint64) []Cell {
	var out []Cell
	for column := 0; column < Width; column++ {
		for row := 0; row < Height; row++ {
			if mask&bit(column, row) != 0 {
				out = append(out, Cell{Column: column, Row: row})
			}
		}
	}
	return out
}

// Stones enumerates every occupied cell with its visual player identity.
// Slow; rendering only.
func (b *Board) Stones() []Stone {
	firstMask, secondMask := b.own, b.opponent
	if !b.firstPlayerOwn {
		firstMask, secondMask = secondMask, firstMask
	}

	var out []Stone
	for _, c := range cells(firstMask) {
		out = append(out, Stone{Column: c.Column, Row: c.Row, FirstPlayer: true})
	}
	for _, c := range cells(secondMask) {
		out = append(out, Stone{Column: c.Column, Row: c.Row, FirstPlayer: false})
	}
	return out
}

// Status reports the terminal state of the board and, on a win, the cells
// forming the winning line (possibly more than four if several lines complete
// at once).
func (b *Board) Status() (Result, []Cell) {
	firstMask, secondMask := b.own, b.opponent
	if !b.firstPlayerOwn {
		firstMask, secondMask = secondMask, firstMask
	}

	switch {
	case HasWin(firstMask):
		return FirstPlayerWon, cells(WinningStones(firstMask))
	case HasWin(secondMask):
		return SecondPlayerWon, cells(WinningStones(secondMask))
	case b.FullWithoutWin():
		return Draw, nil
	default:
		return Pending, nil
	}
}
