package board

// SeeGE reports whether the static exchange evaluation of m is at least
// threshold centipawns. It plays out the capture sequence on m's target
// square, each side answering with its least valuable attacker and x-ray
// attackers joining as blockers clear. Castling, promotions and en passant
// skip the exchange and compare zero against the threshold.
func (p *Position) SeeGE(m Move, threshold int) bool {
	if m.Flag() != FlagNormal {
		return threshold <= 0
	}

	from, to := m.From(), m.To()

	// Early outs: losing the captured piece alone fails, winning it even
	// after losing the mover succeeds.
	swap := p.PieceAt(to).Value() - threshold
	if swap < 0 {
		return false
	}
	swap = p.PieceAt(from).Value() - swap
	if swap <= 0 {
		return true
	}

	occ := p.AllOccupied ^ SquareBB(from) ^ SquareBB(to)
	stm := p.PieceAt(from).Color()
	attackers := p.AttackersTo(to, occ)
	allDiag := p.diagSliders(White) | p.diagSliders(Black)
	allLine := p.lineSliders(White) | p.lineSliders(Black)
	res := 1

	for {
		stm = stm.Other()
		attackers &= occ

		stmAttackers := attackers & p.Occupied[stm]
		if stmAttackers == 0 {
			break
		}
		res ^= 1

		switch {
		case stmAttackers&p.Pieces[stm][Pawn] != 0:
			swap = PieceValue[Pawn] - swap
			if swap < res {
				return res == 1
			}
			occ ^= SquareBB((stmAttackers & p.Pieces[stm][Pawn]).LSB())
			attackers |= BishopAttacks(to, occ) & allDiag

		case stmAttackers&p.Pieces[stm][Knight] != 0:
			swap = PieceValue[Knight] - swap
			if swap < res {
				return res == 1
			}
			occ ^= SquareBB((stmAttackers & p.Pieces[stm][Knight]).LSB())

		case stmAttackers&p.Pieces[stm][Bishop] != 0:
			swap = PieceValue[Bishop] - swap
			if swap < res {
				return res == 1
			}
			occ ^= SquareBB((stmAttackers & p.Pieces[stm][Bishop]).LSB())
			attackers |= BishopAttacks(to, occ) & allDiag

		case stmAttackers&p.Pieces[stm][Rook] != 0:
			swap = PieceValue[Rook] - swap
			if swap < res {
				return res == 1
			}
			occ ^= SquareBB((stmAttackers & p.Pieces[stm][Rook]).LSB())
			attackers |= RookAttacks(to, occ) & allLine

		case stmAttackers&p.Pieces[stm][Queen] != 0:
			swap = PieceValue[Queen] - swap
			if swap < res {
				return res == 1
			}
			occ ^= SquareBB((stmAttackers & p.Pieces[stm][Queen]).LSB())
			attackers |= BishopAttacks(to, occ)&allDiag | RookAttacks(to, occ)&allLine

		default:
			// King takes: legal only if the opponent has no attacker
			// left, in which case the last flip is undone.
			if attackers&^p.Occupied[stm] != 0 {
				return res^1 == 1
			}
			return res == 1
		}
	}
	return res == 1
}
