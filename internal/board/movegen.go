package board

// GenType selects which move category a generator call produces. The
// categories are disjoint and, together, cover every pseudo-legal move:
// captures carry all promotions (push promotions included) and en passant,
// quiets are everything else. Evasions replace both while in check and are
// fully legal. Quiet checks are the subset of quiets that give direct
// check, generated separately for the quiescence check stage.
type GenType uint8

const (
	GenCaptures GenType = iota
	GenQuiets
	GenEvasions
	GenQuietChecks
)

// GenerateInto writes the moves of category t into buf and returns how
// many were written. Except for GenEvasions, moves are pseudo-legal: they
// may leave the mover's king in check and must be validated by MakeMove.
func (p *Position) GenerateInto(t GenType, buf []OrderedMove) int {
	switch t {
	case GenCaptures:
		return p.genCaptures(buf)
	case GenQuiets:
		return p.genQuiets(buf)
	case GenEvasions:
		return p.genEvasions(buf)
	default:
		return p.genQuietChecks(buf)
	}
}

func put(buf []OrderedMove, n int, m Move) int {
	buf[n] = OrderedMove{Move: m}
	return n + 1
}

// pawnDeltas returns the push and capture offsets for c, plus the rank
// mask of c's pawns one step from promotion.
func pawnDeltas(c Color) (up, east, west int, seventh Bitboard) {
	if c == White {
		return 8, 9, 7, Rank7
	}
	return -8, -9, -7, Rank2
}

func addPromotions(buf []OrderedMove, n int, from, to Square) int {
	n = put(buf, n, NewPromotion(from, to, Queen))
	n = put(buf, n, NewPromotion(from, to, Rook))
	n = put(buf, n, NewPromotion(from, to, Bishop))
	n = put(buf, n, NewPromotion(from, to, Knight))
	return n
}

func (p *Position) genCaptures(buf []OrderedMove) int {
	us := p.SideToMove
	them := us.Other()
	enemies := p.Occupied[them]
	empty := ^p.AllOccupied
	up, east, west, seventh := pawnDeltas(us)

	pawns := p.Pieces[us][Pawn]
	pawnsOn7 := pawns & seventh
	pawnsNotOn7 := pawns &^ seventh

	n := 0

	shift := func(b Bitboard, d int) Bitboard {
		if us == White {
			switch d {
			case up:
				return b.North()
			case east:
				return b.NorthEast()
			default:
				return b.NorthWest()
			}
		}
		switch d {
		case up:
			return b.South()
		case east:
			return b.SouthWest()
		default:
			return b.SouthEast()
		}
	}

	if pawnsOn7 != 0 {
		for bb := shift(pawnsOn7, up) & empty; bb != 0; {
			to := bb.PopLSB()
			n = addPromotions(buf, n, Square(int(to)-up), to)
		}
		for bb := shift(pawnsOn7, east) & enemies; bb != 0; {
			to := bb.PopLSB()
			n = addPromotions(buf, n, Square(int(to)-east), to)
		}
		for bb := shift(pawnsOn7, west) & enemies; bb != 0; {
			to := bb.PopLSB()
			n = addPromotions(buf, n, Square(int(to)-west), to)
		}
	}

	for bb := shift(pawnsNotOn7, east) & enemies; bb != 0; {
		to := bb.PopLSB()
		n = put(buf, n, NewMove(Square(int(to)-east), to))
	}
	for bb := shift(pawnsNotOn7, west) & enemies; bb != 0; {
		to := bb.PopLSB()
		n = put(buf, n, NewMove(Square(int(to)-west), to))
	}

	if p.EnPassant != NoSquare {
		for bb := pawnAttacks[them][p.EnPassant] & pawnsNotOn7; bb != 0; {
			from := bb.PopLSB()
			n = put(buf, n, NewEnPassant(from, p.EnPassant))
		}
	}

	n = p.genPieceMoves(buf, n, enemies)
	return n
}

func (p *Position) genQuiets(buf []OrderedMove) int {
	us := p.SideToMove
	empty := ^p.AllOccupied
	up, _, _, seventh := pawnDeltas(us)

	pawnsNotOn7 := p.Pieces[us][Pawn] &^ seventh

	n := 0

	var single, third Bitboard
	if us == White {
		single = pawnsNotOn7.North() & empty
		third = Rank3
	} else {
		single = pawnsNotOn7.South() & empty
		third = Rank6
	}
	double := single & third
	if us == White {
		double = double.North() & empty
	} else {
		double = double.South() & empty
	}

	for bb := single; bb != 0; {
		to := bb.PopLSB()
		n = put(buf, n, NewMove(Square(int(to)-up), to))
	}
	for bb := double; bb != 0; {
		to := bb.PopLSB()
		n = put(buf, n, NewMove(Square(int(to)-2*up), to))
	}

	n = p.genCastling(buf, n)
	n = p.genPieceMoves(buf, n, empty)
	return n
}

// genPieceMoves emits knight, bishop, rook, queen and king moves to
// squares in targets.
func (p *Position) genPieceMoves(buf []OrderedMove, n int, targets Bitboard) int {
	us := p.SideToMove
	occ := p.AllOccupied

	for bb := p.Pieces[us][Knight]; bb != 0; {
		from := bb.PopLSB()
		for att := knightAttacks[from] & targets; att != 0; {
			n = put(buf, n, NewMove(from, att.PopLSB()))
		}
	}
	for bb := p.Pieces[us][Bishop]; bb != 0; {
		from := bb.PopLSB()
		for att := BishopAttacks(from, occ) & targets; att != 0; {
			n = put(buf, n, NewMove(from, att.PopLSB()))
		}
	}
	for bb := p.Pieces[us][Rook]; bb != 0; {
		from := bb.PopLSB()
		for att := RookAttacks(from, occ) & targets; att != 0; {
			n = put(buf, n, NewMove(from, att.PopLSB()))
		}
	}
	for bb := p.Pieces[us][Queen]; bb != 0; {
		from := bb.PopLSB()
		for att := QueenAttacks(from, occ) & targets; att != 0; {
			n = put(buf, n, NewMove(from, att.PopLSB()))
		}
	}

	ksq := p.KingSquare[us]
	for att := kingAttacks[ksq] & targets; att != 0; {
		n = put(buf, n, NewMove(ksq, att.PopLSB()))
	}
	return n
}

func (p *Position) genCastling(buf []OrderedMove, n int) int {
	us := p.SideToMove
	them := us.Other()
	occ := p.AllOccupied

	type castle struct {
		right    CastlingRights
		from, to Square
		path     Bitboard // squares between king and rook, must be empty
		transit  Square   // square the king crosses, must not be attacked
	}
	var sides [2]castle
	if us == White {
		sides[0] = castle{WhiteKingside, E1, G1, SquareBB(F1) | SquareBB(G1), F1}
		sides[1] = castle{WhiteQueenside, E1, C1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), D1}
	} else {
		sides[0] = castle{BlackKingside, E8, G8, SquareBB(F8) | SquareBB(G8), F8}
		sides[1] = castle{BlackQueenside, E8, C8, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), D8}
	}

	for _, c := range sides {
		if p.CastlingRights&c.right == 0 || occ&c.path != 0 {
			continue
		}
		if p.IsSquareAttacked(c.transit, them) {
			continue
		}
		n = put(buf, n, NewCastling(c.from, c.to))
	}
	return n
}

// genEvasions produces fully legal moves out of check. Under double check
// only the king may move; otherwise pieces may also capture the checker or
// interpose. Pinned pieces are never legal evasions and are excluded.
func (p *Position) genEvasions(buf []OrderedMove) int {
	us := p.SideToMove
	them := us.Other()
	ksq := p.KingSquare[us]
	occ := p.AllOccupied

	n := 0

	// King steps: verify the destination with the king removed from the
	// occupancy, so sliding checkers keep attacking through its square.
	occNoKing := occ &^ SquareBB(ksq)
	for att := kingAttacks[ksq] &^ p.Occupied[us]; att != 0; {
		to := att.PopLSB()
		if p.AttackersByColor(to, them, occNoKing) == 0 {
			n = put(buf, n, NewMove(ksq, to))
		}
	}

	if p.Checkers.PopCount() > 1 {
		return n
	}

	checker := p.Checkers.LSB()
	targets := p.Checkers | Between(ksq, checker)
	pinned := p.ComputePinned(us)
	movable := p.Occupied[us] &^ (pinned | SquareBB(ksq))

	up, _, _, seventh := pawnDeltas(us)
	pawns := p.Pieces[us][Pawn] & movable

	// Pawn captures of the checker, promoting when it sits on the last
	// rank.
	for bb := pawnAttacks[them][checker] & pawns; bb != 0; {
		from := bb.PopLSB()
		if SquareBB(from)&seventh != 0 {
			n = addPromotions(buf, n, from, checker)
		} else {
			n = put(buf, n, NewMove(from, checker))
		}
	}

	// Pawn interpositions.
	blocks := targets &^ p.Checkers
	for bb := pawns; bb != 0; {
		from := bb.PopLSB()
		one := Square(int(from) + up)
		if occ.IsSet(one) {
			continue
		}
		if blocks.IsSet(one) {
			if SquareBB(from)&seventh != 0 {
				n = addPromotions(buf, n, from, one)
			} else {
				n = put(buf, n, NewMove(from, one))
			}
		}
		if from.RelativeRank(us) == 1 {
			two := Square(int(from) + 2*up)
			if blocks.IsSet(two) && !occ.IsSet(two) {
				n = put(buf, n, NewMove(from, two))
			}
		}
	}

	// En passant resolves check only when the checker is the pawn that
	// just pushed; discovered-check edge cases are settled by make/unmake.
	if p.EnPassant != NoSquare && p.PieceAt(checker).Type() == Pawn {
		for bb := pawnAttacks[them][p.EnPassant] & pawns; bb != 0; {
			from := bb.PopLSB()
			m := NewEnPassant(from, p.EnPassant)
			if undo, ok := p.MakeMove(m); ok {
				p.UnmakeMove(undo)
				n = put(buf, n, m)
			}
		}
	}

	for bb := p.Pieces[us][Knight] & movable; bb != 0; {
		from := bb.PopLSB()
		for att := knightAttacks[from] & targets; att != 0; {
			n = put(buf, n, NewMove(from, att.PopLSB()))
		}
	}
	for bb := (p.Pieces[us][Bishop] | p.Pieces[us][Queen]) & movable; bb != 0; {
		from := bb.PopLSB()
		for att := BishopAttacks(from, occ) & targets; att != 0; {
			n = put(buf, n, NewMove(from, att.PopLSB()))
		}
	}
	for bb := (p.Pieces[us][Rook] | p.Pieces[us][Queen]) & movable; bb != 0; {
		from := bb.PopLSB()
		for att := RookAttacks(from, occ) & targets; att != 0; {
			n = put(buf, n, NewMove(from, att.PopLSB()))
		}
	}
	return n
}

// genQuietChecks emits non-capturing pawn, knight, bishop, rook and queen
// moves that give direct check to the opposing king. Discovered checks are
// not generated here.
func (p *Position) genQuietChecks(buf []OrderedMove) int {
	us := p.SideToMove
	them := us.Other()
	ksq := p.KingSquare[them]
	occ := p.AllOccupied
	empty := ^occ

	n := 0

	// A pawn push checks when the destination attacks the king. Promotion
	// pushes are the capture generator's business.
	up, _, _, seventh := pawnDeltas(us)
	pawnChecks := pawnAttacks[them][ksq] & empty
	for bb := p.Pieces[us][Pawn] &^ seventh; bb != 0; {
		from := bb.PopLSB()
		one := Square(int(from) + up)
		if occ.IsSet(one) {
			continue
		}
		if pawnChecks.IsSet(one) {
			n = put(buf, n, NewMove(from, one))
		}
		if from.RelativeRank(us) == 1 {
			two := Square(int(from) + 2*up)
			if pawnChecks.IsSet(two) && !occ.IsSet(two) {
				n = put(buf, n, NewMove(from, two))
			}
		}
	}

	knightChecks := knightAttacks[ksq] & empty
	for bb := p.Pieces[us][Knight]; bb != 0; {
		from := bb.PopLSB()
		for att := knightAttacks[from] & knightChecks; att != 0; {
			n = put(buf, n, NewMove(from, att.PopLSB()))
		}
	}

	diagChecks := BishopAttacks(ksq, occ) & empty
	lineChecks := RookAttacks(ksq, occ) & empty

	for bb := p.Pieces[us][Bishop]; bb != 0; {
		from := bb.PopLSB()
		for att := BishopAttacks(from, occ) & diagChecks; att != 0; {
			n = put(buf, n, NewMove(from, att.PopLSB()))
		}
	}
	for bb := p.Pieces[us][Rook]; bb != 0; {
		from := bb.PopLSB()
		for att := RookAttacks(from, occ) & lineChecks; att != 0; {
			n = put(buf, n, NewMove(from, att.PopLSB()))
		}
	}
	for bb := p.Pieces[us][Queen]; bb != 0; {
		from := bb.PopLSB()
		for att := QueenAttacks(from, occ) & (diagChecks | lineChecks); att != 0; {
			n = put(buf, n, NewMove(from, att.PopLSB()))
		}
	}
	return n
}

// PseudoLegal reports whether m could have been produced by the category
// generators in the current position. In check it tests membership in the
// evasion set, otherwise in captures and quiets.
func (p *Position) PseudoLegal(m Move) bool {
	if m == NoMove {
		return false
	}
	var buf [MaxMoves]OrderedMove
	if p.InCheck() {
		n := p.GenerateInto(GenEvasions, buf[:])
		return containsMove(buf[:n], m)
	}
	n := p.GenerateInto(GenCaptures, buf[:])
	if containsMove(buf[:n], m) {
		return true
	}
	n = p.GenerateInto(GenQuiets, buf[:])
	return containsMove(buf[:n], m)
}

func containsMove(ms []OrderedMove, m Move) bool {
	for i := range ms {
		if ms[i].Move == m {
			return true
		}
	}
	return false
}
