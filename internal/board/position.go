package board

import "strings"

// CastlingRights is a bitmask of the four castling permissions.
type CastlingRights uint8

const (
	WhiteKingside CastlingRights = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside
	AllCastling = WhiteKingside | WhiteQueenside | BlackKingside | BlackQueenside
)

// Position holds the full board state. All mutation goes through MakeMove
// and UnmakeMove so the incremental fields (hashes, checkers, occupancy)
// stay consistent.
type Position struct {
	Pieces      [2][6]Bitboard
	Occupied    [2]Bitboard
	AllOccupied Bitboard

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	FullMoveNumber int

	KingSquare [2]Square
	Checkers   Bitboard

	Hash    uint64
	PawnKey uint64
}

// UndoInfo snapshots everything MakeMove changes. UnmakeMove restores from
// it wholesale, which keeps make/unmake trivially symmetric.
type UndoInfo struct {
	Pieces      [2][6]Bitboard
	Occupied    [2]Bitboard
	AllOccupied Bitboard

	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	FullMoveNumber int

	KingSquare [2]Square
	Checkers   Bitboard

	Hash    uint64
	PawnKey uint64
}

func (p *Position) snapshot() UndoInfo {
	return UndoInfo{
		Pieces:         p.Pieces,
		Occupied:       p.Occupied,
		AllOccupied:    p.AllOccupied,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		FullMoveNumber: p.FullMoveNumber,
		KingSquare:     p.KingSquare,
		Checkers:       p.Checkers,
		Hash:           p.Hash,
		PawnKey:        p.PawnKey,
	}
}

func (p *Position) restore(u UndoInfo) {
	p.Pieces = u.Pieces
	p.Occupied = u.Occupied
	p.AllOccupied = u.AllOccupied
	p.CastlingRights = u.CastlingRights
	p.EnPassant = u.EnPassant
	p.HalfMoveClock = u.HalfMoveClock
	p.FullMoveNumber = u.FullMoveNumber
	p.KingSquare = u.KingSquare
	p.Checkers = u.Checkers
	p.Hash = u.Hash
	p.PawnKey = u.PawnKey
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	bb := SquareBB(sq)
	for c := White; c <= Black; c++ {
		if p.Occupied[c]&bb == 0 {
			continue
		}
		for pt := Pawn; pt <= King; pt++ {
			if p.Pieces[c][pt]&bb != 0 {
				return NewPiece(pt, c)
			}
		}
	}
	return NoPiece
}

// MovedPiece returns the piece standing on m's origin square.
func (p *Position) MovedPiece(m Move) Piece {
	return p.PieceAt(m.From())
}

// IsCapture reports whether m takes a piece (including en passant).
func (p *Position) IsCapture(m Move) bool {
	if m.IsEnPassant() {
		return true
	}
	return !m.IsCastling() && p.AllOccupied.IsSet(m.To())
}

// CaptureClass reports whether m is a capture or a promotion. The picker's
// capture stages and refutation filter are defined over this class rather
// than plain captures.
func (p *Position) CaptureClass(m Move) bool {
	return p.IsCapture(m) || m.IsPromotion()
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	return p.Checkers != 0
}

// HasNonPawnMaterial reports whether c has any piece besides pawns and the
// king, used to gate null-move pruning.
func (p *Position) HasNonPawnMaterial(c Color) bool {
	return p.Pieces[c][Knight]|p.Pieces[c][Bishop]|p.Pieces[c][Rook]|p.Pieces[c][Queen] != 0
}

func (p *Position) setPiece(pc Piece, sq Square) {
	c, pt := pc.Color(), pc.Type()
	bb := SquareBB(sq)
	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	p.Hash ^= zobristPieces[pc][sq]
	if pt == Pawn {
		p.PawnKey ^= zobristPieces[pc][sq]
	}
	if pt == King {
		p.KingSquare[c] = sq
	}
}

func (p *Position) removePiece(pc Piece, sq Square) {
	c, pt := pc.Color(), pc.Type()
	bb := SquareBB(sq)
	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb
	p.Hash ^= zobristPieces[pc][sq]
	if pt == Pawn {
		p.PawnKey ^= zobristPieces[pc][sq]
	}
}

func (p *Position) movePiece(pc Piece, from, to Square) {
	p.removePiece(pc, from)
	p.setPiece(pc, to)
}

// castlingUpdates clears rights when a king or rook moves off, or a piece
// lands on, its home square.
var castlingUpdates = func() [64]CastlingRights {
	var t [64]CastlingRights
	for sq := A1; sq <= H8; sq++ {
		t[sq] = AllCastling
	}
	t[E1] &^= WhiteKingside | WhiteQueenside
	t[H1] &^= WhiteKingside
	t[A1] &^= WhiteQueenside
	t[E8] &^= BlackKingside | BlackQueenside
	t[H8] &^= BlackKingside
	t[A8] &^= BlackQueenside
	return t
}()

// MakeMove applies m and returns a snapshot for UnmakeMove. When the move
// leaves the mover's own king attacked it restores the position and
// reports false; the position is then unchanged.
func (p *Position) MakeMove(m Move) (UndoInfo, bool) {
	undo := p.snapshot()

	us := p.SideToMove
	them := us.Other()
	from, to := m.From(), m.To()
	moved := p.PieceAt(from)

	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
		p.EnPassant = NoSquare
	}

	p.HalfMoveClock++
	if moved.Type() == Pawn {
		p.HalfMoveClock = 0
	}

	switch m.Flag() {
	case FlagCastling:
		rookFrom, rookTo := rookCastleSquares(to)
		p.movePiece(moved, from, to)
		p.movePiece(NewPiece(Rook, us), rookFrom, rookTo)
	case FlagEnPassant:
		var victimSq Square
		if us == White {
			victimSq = to - 8
		} else {
			victimSq = to + 8
		}
		p.removePiece(NewPiece(Pawn, them), victimSq)
		p.movePiece(moved, from, to)
	case FlagPromotion:
		if captured := p.PieceAt(to); captured != NoPiece {
			p.removePiece(captured, to)
			p.HalfMoveClock = 0
		}
		p.removePiece(moved, from)
		p.setPiece(NewPiece(m.Promotion(), us), to)
	default:
		if captured := p.PieceAt(to); captured != NoPiece {
			p.removePiece(captured, to)
			p.HalfMoveClock = 0
		}
		p.movePiece(moved, from, to)
		if moved.Type() == Pawn && abs(int(to)-int(from)) == 16 {
			p.EnPassant = (from + to) / 2
			p.Hash ^= zobristEnPassant[p.EnPassant.File()]
		}
	}

	p.Hash ^= zobristCastling[p.CastlingRights]
	p.CastlingRights &= castlingUpdates[from] & castlingUpdates[to]
	p.Hash ^= zobristCastling[p.CastlingRights]

	if us == Black {
		p.FullMoveNumber++
	}
	p.SideToMove = them
	p.Hash ^= zobristSide

	if p.IsSquareAttacked(p.KingSquare[us], them) {
		p.restore(undo)
		p.SideToMove = us
		return UndoInfo{}, false
	}

	p.UpdateCheckers()
	return undo, true
}

// UnmakeMove restores the position from a MakeMove snapshot.
func (p *Position) UnmakeMove(undo UndoInfo) {
	p.restore(undo)
	p.SideToMove = p.SideToMove.Other()
}

// MakeNullMove passes the turn. The caller must not be in check.
func (p *Position) MakeNullMove() UndoInfo {
	undo := p.snapshot()
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
		p.EnPassant = NoSquare
	}
	p.SideToMove = p.SideToMove.Other()
	p.Hash ^= zobristSide
	p.Checkers = 0
	return undo
}

// UnmakeNullMove restores the position from a MakeNullMove snapshot.
func (p *Position) UnmakeNullMove(undo UndoInfo) {
	p.restore(undo)
	p.SideToMove = p.SideToMove.Other()
}

// UpdateCheckers recomputes the checker set for the side to move.
func (p *Position) UpdateCheckers() {
	us := p.SideToMove
	p.Checkers = p.AttackersByColor(p.KingSquare[us], us.Other(), p.AllOccupied)
}

// ComputePinned returns c's pieces absolutely pinned to their king.
func (p *Position) ComputePinned(c Color) Bitboard {
	ksq := p.KingSquare[c]
	them := c.Other()

	snipers := BishopAttacks(ksq, 0)&p.diagSliders(them) |
		RookAttacks(ksq, 0)&p.lineSliders(them)

	var pinned Bitboard
	for snipers != 0 {
		sniper := snipers.PopLSB()
		blockers := Between(ksq, sniper) & p.AllOccupied
		if blockers.PopCount() == 1 && blockers&p.Occupied[c] != 0 {
			pinned |= blockers
		}
	}
	return pinned
}

func rookCastleSquares(kingTo Square) (from, to Square) {
	switch kingTo {
	case G1:
		return H1, F1
	case C1:
		return A1, D1
	case G8:
		return H8, F8
	default: // C8
		return A8, D8
	}
}

// Copy returns an independent copy of the position.
func (p *Position) Copy() *Position {
	dup := *p
	return &dup
}

// String renders the board with rank and file labels, for the UCI "d"
// command and debugging.
func (p *Position) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteString("  +---+---+---+---+---+---+---+---+\n  ")
		for file := 0; file < 8; file++ {
			sb.WriteString("| " + p.PieceAt(NewSquare(file, rank)).String() + " ")
		}
		sb.WriteString("| " + string('1'+byte(rank)) + "\n")
	}
	sb.WriteString("  +---+---+---+---+---+---+---+---+\n")
	sb.WriteString("    a   b   c   d   e   f   g   h\n")
	return sb.String()
}
