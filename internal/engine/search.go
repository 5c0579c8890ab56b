package engine

import (
	"sync/atomic"
	"time"

	"github.com/hailam/perch/internal/board"
)

const (
	MaxPly    = 128
	MateScore = 32000
	Infinity  = 32500
	DrawScore = 0
)

// stackFrame carries per-ply search state. The continuation-history entry
// of the move made at a ply stays reachable from deeper plies, which is
// how the picker's quiet scoring sees plies -1, -2 and -4.
type stackFrame struct {
	killers     [2]board.Move
	currentMove board.Move
	movedPiece  board.Piece
	contHist    *PieceToHistory
}

type searcher struct {
	pos *board.Position
	tt  *TranspositionTable

	butterfly ButterflyHistory
	contHist  ContinuationHistory
	captHist  CaptureHistory
	counters  [12][64]board.Move
	pawns     PawnCache

	pickers [MaxPly + 1]MovePicker
	stack   [MaxPly + 1]stackFrame

	// repetition detection: zobrist keys of the game so far plus the
	// current search line
	keys []uint64

	nodes    uint64
	stop     *atomic.Bool
	deadline time.Time
	hasStop  bool

	rootBest board.Move
}

func newSearcher(tt *TranspositionTable, stop *atomic.Bool) *searcher {
	return &searcher{tt: tt, stop: stop}
}

func (s *searcher) aborted() bool {
	if s.stop.Load() {
		return true
	}
	if s.hasStop && s.nodes&1023 == 0 && time.Now().After(s.deadline) {
		s.stop.Store(true)
		return true
	}
	return false
}

// contHistories assembles the continuation-history slots visible from
// ply, substituting the sentinel where no earlier move exists.
func (s *searcher) contHistories(ply int) [4]*PieceToHistory {
	var out [4]*PieceToHistory
	for i, back := range [4]int{1, 2, 3, 4} {
		if ply-back >= 0 && s.stack[ply-back].contHist != nil {
			out[i] = s.stack[ply-back].contHist
		} else {
			out[i] = s.contHist.Sentinel()
		}
	}
	return out
}

func (s *searcher) isRepetition() bool {
	key := s.pos.Hash
	n := 0
	for i := len(s.keys) - 2; i >= 0; i-- {
		if s.keys[i] == key {
			n++
			if n >= 1 {
				return true
			}
		}
	}
	return false
}

func statBonus(depth int) int {
	b := 150*depth - 100
	if b > 1700 {
		b = 1700
	}
	return b
}

func (s *searcher) negamax(depth, ply, alpha, beta int) int {
	if depth <= 0 {
		return s.qsearch(ply, 0, alpha, beta)
	}
	if s.aborted() {
		return alpha
	}
	s.nodes++

	pos := s.pos
	inCheck := pos.InCheck()
	rootNode := ply == 0

	if !rootNode {
		if pos.HalfMoveClock >= 100 || s.isRepetition() {
			return DrawScore
		}
		if ply >= MaxPly {
			return Evaluate(pos, &s.pawns)
		}
		// Mate distance pruning.
		if alpha < -MateScore+ply {
			alpha = -MateScore + ply
		}
		if beta > MateScore-ply-1 {
			beta = MateScore - ply - 1
		}
		if alpha >= beta {
			return alpha
		}
	}

	ttMove := board.NoMove
	if entry, ok := s.tt.Probe(pos.Hash); ok {
		ttMove = entry.Move
		score := ScoreFromTT(int(entry.Score), ply)
		if !rootNode && int(entry.Depth) >= depth {
			switch entry.Flag {
			case BoundExact:
				return score
			case BoundLower:
				if score >= beta {
					return score
				}
			case BoundUpper:
				if score <= alpha {
					return score
				}
			}
		}
	}

	staticEval := -Infinity
	if !inCheck {
		staticEval = Evaluate(pos, &s.pawns)
	}

	// Reverse futility: a quiet position far above beta fails high
	// without searching.
	if !inCheck && !rootNode && depth <= 6 && staticEval-80*depth >= beta &&
		abs(beta) < MateScore-MaxPly {
		return staticEval
	}

	// Null move pruning.
	if !inCheck && !rootNode && depth >= 3 && staticEval >= beta &&
		s.stack[ply-1].currentMove != board.NoMove &&
		pos.HasNonPawnMaterial(pos.SideToMove) {

		s.stack[ply].currentMove = board.NoMove
		s.stack[ply].contHist = nil

		undo := pos.MakeNullMove()
		s.keys = append(s.keys, pos.Hash)
		r := 3 + depth/4
		score := -s.negamax(depth-r, ply+1, -beta, -beta+1)
		s.keys = s.keys[:len(s.keys)-1]
		pos.UnmakeNullMove(undo)

		if score >= beta && score < MateScore-MaxPly {
			return score
		}
	}

	// ProbCut: when a shallow capture search already beats beta by a
	// margin, trust it at depth.
	probCutBeta := beta + 180
	if !inCheck && !rootNode && depth >= 5 && abs(beta) < MateScore-MaxPly &&
		!(ttMove != board.NoMove && !pos.CaptureClass(ttMove)) {

		threshold := probCutBeta - staticEval
		pcPicker := &s.pickers[ply]
		pcPicker.InitProbCut(pos, ttMove, threshold)

		for m := pcPicker.Next(false); m != board.NoMove; m = pcPicker.Next(false) {
			undo, ok := pos.MakeMove(m)
			if !ok {
				continue
			}
			s.stack[ply].currentMove = m
			s.stack[ply].movedPiece = pos.PieceAt(m.To())
			s.stack[ply].contHist = s.contHist.Entry(s.stack[ply].movedPiece, m.To())
			s.keys = append(s.keys, pos.Hash)

			score := -s.qsearch(ply+1, 0, -probCutBeta, -probCutBeta+1)
			if score >= probCutBeta {
				score = -s.negamax(depth-4, ply+1, -probCutBeta, -probCutBeta+1)
			}

			s.keys = s.keys[:len(s.keys)-1]
			pos.UnmakeMove(undo)

			if score >= probCutBeta {
				s.tt.Store(pos.Hash, depth-3, ScoreToTT(score, ply), BoundLower, m)
				return score
			}
		}
	}

	var counter board.Move
	if ply > 0 {
		if prev := s.stack[ply-1]; prev.currentMove != board.NoMove {
			counter = s.counters[prev.movedPiece][prev.currentMove.To()]
		}
	}

	picker := &s.pickers[ply]
	picker.Init(pos, ttMove, depth, &s.butterfly, s.contHistories(ply),
		s.stack[ply].killers, counter)

	var (
		bestScore     = -Infinity
		bestMove      = board.NoMove
		moveCount     int
		flag          = BoundUpper
		triedQuiets   [64]board.Move
		quietCount    int
		triedCaptures [32]board.Move
		captureCount  int
		skipQuiets    bool
	)

	for m := picker.Next(skipQuiets); m != board.NoMove; m = picker.Next(skipQuiets) {
		isQuiet := !pos.CaptureClass(m)
		movedPiece := pos.MovedPiece(m)
		victim := captureVictim(pos, m)

		undo, ok := pos.MakeMove(m)
		if !ok {
			continue
		}
		moveCount++

		s.stack[ply].currentMove = m
		s.stack[ply].movedPiece = movedPiece
		s.stack[ply].contHist = s.contHist.Entry(movedPiece, m.To())
		s.keys = append(s.keys, pos.Hash)

		newDepth := depth - 1
		if pos.InCheck() {
			newDepth++
		}

		var score int
		if moveCount == 1 {
			score = -s.negamax(newDepth, ply+1, -beta, -alpha)
		} else {
			// Late move reduction, re-search on improvement.
			r := 0
			if depth >= 3 && moveCount > 3 && !inCheck {
				if isQuiet {
					r = 1 + moveCount/12
				} else if s.captHist.Get(movedPiece, m.To(), victim) < 0 {
					r = 1
				}
			}
			score = -s.negamax(newDepth-r, ply+1, -alpha-1, -alpha)
			if score > alpha && r > 0 {
				score = -s.negamax(newDepth, ply+1, -alpha-1, -alpha)
			}
			if score > alpha && score < beta {
				score = -s.negamax(newDepth, ply+1, -beta, -alpha)
			}
		}

		s.keys = s.keys[:len(s.keys)-1]
		pos.UnmakeMove(undo)

		if s.stop.Load() {
			return bestScore
		}

		if isQuiet {
			if quietCount < len(triedQuiets) {
				triedQuiets[quietCount] = m
				quietCount++
			}
		} else if captureCount < len(triedCaptures) {
			triedCaptures[captureCount] = m
			captureCount++
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			if rootNode {
				s.rootBest = m
			}
			if score > alpha {
				alpha = score
				flag = BoundExact
				if alpha >= beta {
					flag = BoundLower
					s.onCutoff(m, ply, depth, isQuiet,
						triedQuiets[:quietCount], triedCaptures[:captureCount])
					break
				}
			}
		}

		// Move count pruning: after enough quiet tries the rest of the
		// quiets are skipped, the picker keeps yielding captures.
		if !rootNode && isQuiet && moveCount >= 4+depth*depth {
			skipQuiets = true
		}
	}

	if moveCount == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return DrawScore
	}

	s.tt.Store(pos.Hash, depth, ScoreToTT(bestScore, ply), flag, bestMove)
	return bestScore
}

// onCutoff records a fail-high: killers, the counter-move and the history
// tables, rewarding the cutoff move and punishing the moves tried before
// it.
func (s *searcher) onCutoff(m board.Move, ply, depth int, isQuiet bool, triedQuiets, triedCaptures []board.Move) {
	bonus := statBonus(depth)
	stm := s.pos.SideToMove

	if isQuiet {
		if s.stack[ply].killers[0] != m {
			s.stack[ply].killers[1] = s.stack[ply].killers[0]
			s.stack[ply].killers[0] = m
		}
		if ply > 0 {
			if prev := s.stack[ply-1]; prev.currentMove != board.NoMove {
				s.counters[prev.movedPiece][prev.currentMove.To()] = m
			}
		}

		s.butterfly.Update(stm, m, bonus)
		s.updateContinuations(ply, s.pos.MovedPiece(m), m.To(), bonus)

		for _, q := range triedQuiets {
			if q == m {
				continue
			}
			s.butterfly.Update(stm, q, -bonus)
			s.updateContinuations(ply, s.pos.MovedPiece(q), q.To(), -bonus)
		}
	} else {
		s.captHist.Update(s.pos.MovedPiece(m), m.To(), captureVictim(s.pos, m), bonus)
	}

	// Captures tried before any cutoff lose standing, whatever cut.
	for _, c := range triedCaptures {
		if c == m {
			continue
		}
		s.captHist.Update(s.pos.MovedPiece(c), c.To(), captureVictim(s.pos, c), -bonus)
	}
}

// captureVictim returns the piece type a capture-class move wins: the
// occupant of the target square, the pawn for en passant, NoPieceType for
// a quiet promotion.
func captureVictim(p *board.Position, m board.Move) board.PieceType {
	if m.IsEnPassant() {
		return board.Pawn
	}
	return p.PieceAt(m.To()).Type()
}

func (s *searcher) updateContinuations(ply int, pc board.Piece, to board.Square, bonus int) {
	for _, back := range [3]int{1, 2, 4} {
		if ply-back >= 0 && s.stack[ply-back].contHist != nil {
			s.stack[ply-back].contHist.Update(pc, to, bonus)
		}
	}
}

// qsearch resolves captures (and, at the first quiescence ply, quiet
// checks) until the position is calm enough to trust the static eval.
func (s *searcher) qsearch(ply, qdepth, alpha, beta int) int {
	if s.aborted() {
		return alpha
	}
	s.nodes++

	pos := s.pos
	inCheck := pos.InCheck()

	if pos.HalfMoveClock >= 100 || s.isRepetition() {
		return DrawScore
	}
	if ply >= MaxPly {
		if inCheck {
			return DrawScore
		}
		return Evaluate(pos, &s.pawns)
	}

	ttMove := board.NoMove
	if entry, ok := s.tt.Probe(pos.Hash); ok {
		ttMove = entry.Move
		score := ScoreFromTT(int(entry.Score), ply)
		switch entry.Flag {
		case BoundExact:
			return score
		case BoundLower:
			if score >= beta {
				return score
			}
		case BoundUpper:
			if score <= alpha {
				return score
			}
		}
	}

	bestScore := -Infinity
	if !inCheck {
		bestScore = Evaluate(pos, &s.pawns)
		if bestScore >= beta {
			return bestScore
		}
		if bestScore > alpha {
			alpha = bestScore
		}
	}

	picker := &s.pickers[ply]
	picker.InitQuiescence(pos, ttMove, qdepth, &s.butterfly, s.contHistories(ply))

	moveCount := 0
	for m := picker.Next(false); m != board.NoMove; m = picker.Next(false) {
		// Skip obviously losing captures once a stand-pat exists.
		if !inCheck && !pos.SeeGE(m, 0) {
			continue
		}

		movedPiece := pos.MovedPiece(m)
		undo, ok := pos.MakeMove(m)
		if !ok {
			continue
		}
		moveCount++

		s.stack[ply].currentMove = m
		s.stack[ply].movedPiece = movedPiece
		s.stack[ply].contHist = s.contHist.Entry(movedPiece, m.To())
		s.keys = append(s.keys, pos.Hash)

		score := -s.qsearch(ply+1, qdepth-1, -beta, -alpha)

		s.keys = s.keys[:len(s.keys)-1]
		pos.UnmakeMove(undo)

		if score > bestScore {
			bestScore = score
			if score > alpha {
				alpha = score
				if alpha >= beta {
					break
				}
			}
		}
	}

	if inCheck && moveCount == 0 {
		return -MateScore + ply
	}
	return bestScore
}
