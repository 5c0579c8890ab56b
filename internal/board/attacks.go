package board

// Precomputed attack tables for the leapers, plus between/line tables used
// for pin and check reasoning.
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard

	betweenBB [64][64]Bitboard // squares strictly between two aligned squares
	lineBB    [64][64]Bitboard // full line through two aligned squares
)

var (
	bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	rookDirs   = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
)

func init() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		knightAttacks[sq] = (bb<<17)&notFileA | (bb<<15)&notFileH |
			(bb>>17)&notFileH | (bb>>15)&notFileA |
			(bb<<10)&notFileAB | (bb<<6)&notFileGH |
			(bb>>10)&notFileGH | (bb>>6)&notFileAB

		kingAttacks[sq] = bb.North() | bb.South() | (bb<<1)&notFileA | (bb>>1)&notFileH |
			bb.NorthEast() | bb.NorthWest() | bb.SouthEast() | bb.SouthWest()

		pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()
	}
	initRays()
}

func initRays() {
	for sq := A1; sq <= H8; sq++ {
		for _, dirs := range [2][4][2]int{bishopDirs, rookDirs} {
			for _, d := range dirs {
				line := SquareBB(sq) | rayThrough(sq, d) | rayThrough(sq, [2]int{-d[0], -d[1]})
				f, r := sq.File()+d[0], sq.Rank()+d[1]
				var ray Bitboard
				for f >= 0 && f <= 7 && r >= 0 && r <= 7 {
					cur := NewSquare(f, r)
					lineBB[sq][cur] = line
					betweenBB[sq][cur] = ray
					ray |= SquareBB(cur)
					f, r = f+d[0], r+d[1]
				}
			}
		}
	}
}

// rayThrough extends from sq in direction d to the board edge.
func rayThrough(sq Square, d [2]int) Bitboard {
	var bb Bitboard
	f, r := sq.File()+d[0], sq.Rank()+d[1]
	for f >= 0 && f <= 7 && r >= 0 && r <= 7 {
		bb |= SquareBB(NewSquare(f, r))
		f, r = f+d[0], r+d[1]
	}
	return bb
}

func slideAttacks(sq Square, occupied Bitboard, dirs [4][2]int) Bitboard {
	var att Bitboard
	for _, d := range dirs {
		f, r := sq.File()+d[0], sq.Rank()+d[1]
		for f >= 0 && f <= 7 && r >= 0 && r <= 7 {
			cur := NewSquare(f, r)
			att |= SquareBB(cur)
			if occupied.IsSet(cur) {
				break
			}
			f, r = f+d[0], r+d[1]
		}
	}
	return att
}

// KnightAttacks returns the knight attack set from sq.
func KnightAttacks(sq Square) Bitboard { return knightAttacks[sq] }

// KingAttacks returns the king attack set from sq.
func KingAttacks(sq Square) Bitboard { return kingAttacks[sq] }

// PawnAttacks returns the squares a c-colored pawn on sq attacks.
func PawnAttacks(sq Square, c Color) Bitboard { return pawnAttacks[c][sq] }

// BishopAttacks returns the bishop attack set from sq given occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return slideAttacks(sq, occupied, bishopDirs)
}

// RookAttacks returns the rook attack set from sq given occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return slideAttacks(sq, occupied, rookDirs)
}

// QueenAttacks returns the queen attack set from sq given occupancy.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return BishopAttacks(sq, occupied) | RookAttacks(sq, occupied)
}

// Between returns the squares strictly between two aligned squares, empty
// when the squares are not on a common rank, file or diagonal.
func Between(sq1, sq2 Square) Bitboard { return betweenBB[sq1][sq2] }

// Aligned reports whether sq3 lies on the line through sq1 and sq2.
func Aligned(sq1, sq2, sq3 Square) bool {
	return lineBB[sq1][sq2].IsSet(sq3)
}

// AttackersTo returns all pieces of both colors attacking sq under the
// given occupancy.
func (p *Position) AttackersTo(sq Square, occupied Bitboard) Bitboard {
	return pawnAttacks[Black][sq]&p.Pieces[White][Pawn] |
		pawnAttacks[White][sq]&p.Pieces[Black][Pawn] |
		knightAttacks[sq]&(p.Pieces[White][Knight]|p.Pieces[Black][Knight]) |
		kingAttacks[sq]&(p.Pieces[White][King]|p.Pieces[Black][King]) |
		BishopAttacks(sq, occupied)&(p.diagSliders(White)|p.diagSliders(Black)) |
		RookAttacks(sq, occupied)&(p.lineSliders(White)|p.lineSliders(Black))
}

// AttackersByColor returns the pieces of color c attacking sq under the
// given occupancy.
func (p *Position) AttackersByColor(sq Square, c Color, occupied Bitboard) Bitboard {
	return pawnAttacks[c.Other()][sq]&p.Pieces[c][Pawn] |
		knightAttacks[sq]&p.Pieces[c][Knight] |
		kingAttacks[sq]&p.Pieces[c][King] |
		BishopAttacks(sq, occupied)&p.diagSliders(c) |
		RookAttacks(sq, occupied)&p.lineSliders(c)
}

// IsSquareAttacked reports whether byColor attacks sq.
func (p *Position) IsSquareAttacked(sq Square, byColor Color) bool {
	return p.AttackersByColor(sq, byColor, p.AllOccupied) != 0
}

func (p *Position) diagSliders(c Color) Bitboard {
	return p.Pieces[c][Bishop] | p.Pieces[c][Queen]
}

func (p *Position) lineSliders(c Color) Bitboard {
	return p.Pieces[c][Rook] | p.Pieces[c][Queen]
}
