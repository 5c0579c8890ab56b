package engine

import "github.com/hailam/perch/internal/board"

// Piece-square tables from White's perspective, centipawns, A1 first.
var pstPawn = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, -20, -20, 10, 10, 5,
	5, -5, -10, 0, 0, -10, -5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, 5, 10, 25, 25, 10, 5, 5,
	10, 10, 20, 30, 30, 20, 10, 10,
	50, 50, 50, 50, 50, 50, 50, 50,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var pstKnight = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var pstBishop = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var pstRook = [64]int{
	0, 0, 0, 5, 5, 0, 0, 0,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	5, 10, 10, 10, 10, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var pstQueen = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-10, 5, 5, 5, 5, 5, 0, -10,
	0, 0, 5, 5, 5, 5, 0, -5,
	-5, 0, 5, 5, 5, 5, 0, -5,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var pstKing = [64]int{
	20, 30, 10, 0, 0, 10, 30, 20,
	20, 20, 0, 0, 0, 0, 20, 20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
}

var pst = [6]*[64]int{&pstPawn, &pstKnight, &pstBishop, &pstRook, &pstQueen, &pstKing}

const (
	doubledPawnPenalty  = 12
	isolatedPawnPenalty = 15
)

var passedPawnBonus = [8]int{0, 10, 15, 25, 40, 60, 90, 0}

const pawnCacheSize = 1 << 14

type pawnCacheEntry struct {
	key   uint64
	score int // from White's perspective
}

// PawnCache memoizes the pawn-structure term by pawn hash, so positions
// that only shuffle pieces reuse it.
type PawnCache [pawnCacheSize]pawnCacheEntry

// Evaluate scores the position in centipawns from the side to move's
// perspective: material, piece placement and pawn structure.
func Evaluate(p *board.Position, pawns *PawnCache) int {
	score := 0
	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}
		for pt := board.Pawn; pt <= board.King; pt++ {
			for bb := p.Pieces[c][pt]; bb != 0; {
				sq := bb.PopLSB()
				idx := sq
				if c == board.Black {
					idx = sq ^ 56 // mirror vertically
				}
				score += sign * (board.PieceValue[pt] + pst[pt][idx])
			}
		}
	}

	score += pawnStructure(p, pawns)

	if p.SideToMove == board.Black {
		return -score
	}
	return score
}

func pawnStructure(p *board.Position, cache *PawnCache) int {
	entry := &cache[p.PawnKey&(pawnCacheSize-1)]
	if entry.key == p.PawnKey {
		return entry.score
	}

	score := 0
	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}
		us := p.Pieces[c][board.Pawn]
		them := p.Pieces[c.Other()][board.Pawn]

		for file := 0; file < 8; file++ {
			fileBB := board.FileA << file
			n := (us & fileBB).PopCount()
			if n > 1 {
				score -= sign * doubledPawnPenalty * (n - 1)
			}
			if n > 0 && us&adjacentFiles(file) == 0 {
				score -= sign * isolatedPawnPenalty * n
			}
		}

		for bb := us; bb != 0; {
			sq := bb.PopLSB()
			if them&passedMask(sq, c) == 0 {
				score += sign * passedPawnBonus[sq.RelativeRank(c)]
			}
		}
	}

	entry.key = p.PawnKey
	entry.score = score
	return score
}

func adjacentFiles(file int) board.Bitboard {
	var bb board.Bitboard
	if file > 0 {
		bb |= board.FileA << (file - 1)
	}
	if file < 7 {
		bb |= board.FileA << (file + 1)
	}
	return bb
}

// passedMask covers the squares an enemy pawn would need to occupy to
// stop a c-colored pawn on sq: its file and the adjacent files, ahead of
// it.
func passedMask(sq board.Square, c board.Color) board.Bitboard {
	span := (board.FileA << sq.File()) | adjacentFiles(sq.File())
	if c == board.White {
		for r := 0; r <= sq.Rank(); r++ {
			span &^= board.Rank1 << (8 * r)
		}
	} else {
		for r := 7; r >= sq.Rank(); r-- {
			span &^= board.Rank1 << (8 * r)
		}
	}
	return span
}
