package engine

import "github.com/hailam/perch/internal/board"

// historyMax bounds every history counter. Updates use the gravity
// formula entry += bonus - entry*|bonus|/historyMax, which saturates
// smoothly toward +-historyMax and decays stale entries as new bonuses
// arrive.
const historyMax = 16384

func gravity(entry *int16, bonus int) {
	b := bonus
	if b > historyMax {
		b = historyMax
	} else if b < -historyMax {
		b = -historyMax
	}
	*entry += int16(b - int(*entry)*abs(b)/historyMax)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ButterflyHistory grades quiet moves by side to move and from-to square
// pair, independent of the moving piece.
type ButterflyHistory [2][64 * 64]int16

func (h *ButterflyHistory) Get(c board.Color, m board.Move) int {
	return int(h[c][m.FromTo()])
}

func (h *ButterflyHistory) Update(c board.Color, m board.Move, bonus int) {
	gravity(&h[c][m.FromTo()], bonus)
}

// PieceToHistory grades (piece, target square) pairs. It is the cell type
// of the continuation history: each search node exposes the entry of the
// move that led to it, and deeper nodes combine several of them.
type PieceToHistory [12][64]int16

func (h *PieceToHistory) Get(pc board.Piece, to board.Square) int {
	return int(h[pc][to])
}

func (h *PieceToHistory) Update(pc board.Piece, to board.Square, bonus int) {
	gravity(&h[pc][to], bonus)
}

// ContinuationHistory indexes PieceToHistory tables by the previous move's
// piece and target square. Index 12 is a sentinel row for plies before the
// root and null moves, so lookups never need a nil check.
type ContinuationHistory [13][64]PieceToHistory

func (h *ContinuationHistory) Entry(pc board.Piece, to board.Square) *PieceToHistory {
	return &h[pc][to]
}

// Sentinel returns the entry used when no real previous move exists.
func (h *ContinuationHistory) Sentinel() *PieceToHistory {
	return &h[board.NoPiece][0]
}

// CaptureHistory grades captures by moving piece, target square and
// captured piece type. Quiet promotions file under NoPieceType.
type CaptureHistory [12][64][7]int16

func (h *CaptureHistory) Get(pc board.Piece, to board.Square, victim board.PieceType) int {
	return int(h[pc][to][victim])
}

func (h *CaptureHistory) Update(pc board.Piece, to board.Square, victim board.PieceType, bonus int) {
	gravity(&h[pc][to][victim], bonus)
}
