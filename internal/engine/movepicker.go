package engine

import (
	"math"

	"github.com/hailam/perch/internal/board"
)

// pickStage enumerates the move picker's states. The order matters: the
// constructors skip the hash-move stage by adding one, and Next advances
// with stage++ as each phase exhausts.
type pickStage int

const (
	stageMainTT pickStage = iota
	stageCaptureInit
	stageGoodCapture
	stageRefutation
	stageQuietInit
	stageGoodQuiet
	stageBadCapture
	stageBadQuiet

	stageEvasionTT
	stageEvasionInit
	stageEvasion

	stageProbCutTT
	stageProbCutInit
	stageProbCut

	stageQSearchTT
	stageQCaptureInit
	stageQCapture
	stageQCheckInit
	stageQCheck
)

// depthQSChecks is the quiescence depth at which quiet checks are still
// explored after the captures run out.
const depthQSChecks = 0

// quietThreshold is the partial-sort limit for quiet moves: deeper nodes
// tolerate worse-looking quiets before giving up on full ordering.
func quietThreshold(depth int) int32 {
	return int32(-3330 * depth)
}

type pickMode int

const (
	pickNext pickMode = iota // range already sorted, advance the cursor
	pickBest                 // linear max-scan, swap the best to the front
)

// MovePicker yields the moves of one search node lazily, in an order
// chosen to maximize the chance of an early cutoff: hash move, winning
// captures, refutations, quiets, then the deferred losing captures and
// quiets. It owns a fixed move buffer reused across generation phases and
// borrows the position and history tables, which must outlive it.
//
// One picker serves one node visit. It is not safe for concurrent use;
// parallel search threads each use their own pickers over their own
// position copies.
type MovePicker struct {
	pos       *board.Position
	butterfly *ButterflyHistory
	contHist  [4]*PieceToHistory

	ttMove      board.Move
	refutations [3]board.OrderedMove
	refCur      int
	refEnd      int

	depth     int
	threshold int

	stage pickStage

	cur            int
	end            int
	endBadCaptures int
	beginBadQuiets int
	endBadQuiets   int

	moves [board.MaxMoves]board.OrderedMove
}

// Init prepares the picker for a main-search node. The refutations are the
// two killers for this ply plus the counter-move to the opponent's last
// move; a counter equal to a killer is yielded at most once. Panics when
// depth is not positive: main-search ordering at zero depth is a caller
// bug, quiescence uses InitQuiescence.
func (mp *MovePicker) Init(pos *board.Position, ttMove board.Move, depth int,
	butterfly *ButterflyHistory, contHist [4]*PieceToHistory,
	killers [2]board.Move, counter board.Move) {

	if depth <= 0 {
		panic("movepicker: main search needs depth > 0")
	}
	mp.reset(pos, ttMove, depth, butterfly, contHist)
	mp.refutations[0] = board.OrderedMove{Move: killers[0]}
	mp.refutations[1] = board.OrderedMove{Move: killers[1]}
	mp.refutations[2] = board.OrderedMove{Move: counter}

	mp.stage = stageMainTT
	if pos.InCheck() {
		mp.stage = stageEvasionTT
	}
	if ttMove == board.NoMove || !pos.PseudoLegal(ttMove) {
		mp.stage++
	}
}

// InitQuiescence prepares the picker for a quiescence node. Depth must be
// zero or negative; quiet checks are generated only at depth zero.
func (mp *MovePicker) InitQuiescence(pos *board.Position, ttMove board.Move, depth int,
	butterfly *ButterflyHistory, contHist [4]*PieceToHistory) {

	if depth > 0 {
		panic("movepicker: quiescence needs depth <= 0")
	}
	mp.reset(pos, ttMove, depth, butterfly, contHist)

	mp.stage = stageQSearchTT
	if pos.InCheck() {
		mp.stage = stageEvasionTT
	}
	if ttMove == board.NoMove || !pos.PseudoLegal(ttMove) {
		mp.stage++
	}
}

// InitProbCut prepares the picker to yield only captures whose static
// exchange meets threshold. The hash move is yielded first only when it
// passes the same bar. Panics when the side to move is in check: probing
// is never performed from check.
func (mp *MovePicker) InitProbCut(pos *board.Position, ttMove board.Move, threshold int) {
	if pos.InCheck() {
		panic("movepicker: probcut in check")
	}
	mp.reset(pos, ttMove, 0, nil, [4]*PieceToHistory{})
	mp.threshold = threshold

	mp.stage = stageProbCutTT
	if ttMove == board.NoMove || !pos.CaptureClass(ttMove) ||
		!pos.PseudoLegal(ttMove) || !pos.SeeGE(ttMove, threshold) {
		mp.stage++
	}
}

func (mp *MovePicker) reset(pos *board.Position, ttMove board.Move, depth int,
	butterfly *ButterflyHistory, contHist [4]*PieceToHistory) {

	mp.pos = pos
	mp.butterfly = butterfly
	mp.contHist = contHist
	mp.ttMove = ttMove
	mp.refutations = [3]board.OrderedMove{}
	mp.refCur, mp.refEnd = 0, 0
	mp.depth = depth
	mp.threshold = 0
	mp.cur, mp.end = 0, 0
	mp.endBadCaptures = 0
	mp.beginBadQuiets, mp.endBadQuiets = 0, 0
}

// Next returns the next move to try, or NoMove when the node is
// exhausted; calling it again after exhaustion keeps returning NoMove.
// The hash move is never yielded twice. With skipQuiets the quiet phases
// are bypassed, though evasions are unaffected since check leaves no
// quiet/capture split worth pruning.
func (mp *MovePicker) Next(skipQuiets bool) board.Move {
	for {
		switch mp.stage {
		case stageMainTT, stageEvasionTT, stageProbCutTT, stageQSearchTT:
			mp.stage++
			return mp.ttMove

		case stageCaptureInit, stageProbCutInit, stageQCaptureInit:
			mp.cur, mp.endBadCaptures = 0, 0
			mp.end = mp.pos.GenerateInto(board.GenCaptures, mp.moves[:])
			mp.scoreCaptures()
			partialInsertionSort(mp.moves[mp.cur:mp.end], math.MinInt32)
			mp.stage++

		case stageGoodCapture:
			m := mp.selectMove(pickNext, func() bool {
				om := mp.moves[mp.cur]
				if mp.pos.SeeGE(om.Move, -int(om.Key)/18) {
					return true
				}
				// Losing capture: compact it into the bad-capture range
				// at the front of the buffer for later.
				mp.moves[mp.endBadCaptures] = om
				mp.endBadCaptures++
				return false
			})
			if m != board.NoMove {
				return m
			}
			mp.refCur, mp.refEnd = 0, 3
			if mp.refutations[2].Move == mp.refutations[0].Move ||
				mp.refutations[2].Move == mp.refutations[1].Move {
				mp.refEnd = 2
			}
			mp.stage++

		case stageRefutation:
			for mp.refCur < mp.refEnd {
				m := mp.refutations[mp.refCur].Move
				mp.refCur++
				if m != board.NoMove && m != mp.ttMove &&
					!mp.pos.CaptureClass(m) && mp.pos.PseudoLegal(m) {
					return m
				}
			}
			mp.stage++

		case stageQuietInit:
			if !skipQuiets {
				mp.cur = mp.endBadCaptures
				mp.end = mp.cur + mp.pos.GenerateInto(board.GenQuiets, mp.moves[mp.cur:])
				mp.beginBadQuiets, mp.endBadQuiets = mp.end, mp.end
				mp.scoreQuiets()
				partialInsertionSort(mp.moves[mp.cur:mp.end], quietThreshold(mp.depth))
			}
			mp.stage++

		case stageGoodQuiet:
			if !skipQuiets {
				if m := mp.selectMove(pickNext, mp.notRefutation); m != board.NoMove {
					picked := mp.moves[mp.cur-1]
					if picked.Key > -8000 || picked.Key <= quietThreshold(mp.depth) {
						return m
					}
					// The sorted prefix is spent; everything from here on
					// is a bad quiet, deferred behind the bad captures.
					mp.beginBadQuiets = mp.cur - 1
				}
			}
			mp.cur, mp.end = 0, mp.endBadCaptures
			mp.stage++

		case stageBadCapture:
			if m := mp.selectMove(pickNext, acceptAll); m != board.NoMove {
				return m
			}
			mp.cur, mp.end = mp.beginBadQuiets, mp.endBadQuiets
			mp.stage++

		case stageBadQuiet:
			if !skipQuiets {
				return mp.selectMove(pickNext, mp.notRefutation)
			}
			return board.NoMove

		case stageEvasionInit:
			mp.cur = 0
			mp.end = mp.pos.GenerateInto(board.GenEvasions, mp.moves[:])
			mp.scoreEvasions()
			mp.stage++

		case stageEvasion:
			return mp.selectMove(pickBest, acceptAll)

		case stageProbCut:
			return mp.selectMove(pickNext, func() bool {
				return mp.pos.SeeGE(mp.moves[mp.cur].Move, mp.threshold)
			})

		case stageQCapture:
			if m := mp.selectMove(pickNext, acceptAll); m != board.NoMove {
				return m
			}
			if mp.depth != depthQSChecks {
				return board.NoMove
			}
			mp.stage++

		case stageQCheckInit:
			mp.cur = 0
			mp.end = mp.pos.GenerateInto(board.GenQuietChecks, mp.moves[:])
			mp.stage++

		default: // stageQCheck
			return mp.selectMove(pickNext, acceptAll)
		}
	}
}

func acceptAll() bool { return true }

func (mp *MovePicker) notRefutation() bool {
	m := mp.moves[mp.cur].Move
	return m != mp.refutations[0].Move &&
		m != mp.refutations[1].Move &&
		m != mp.refutations[2].Move
}

// selectMove scans [cur, end) for the next acceptable move. pickBest
// swaps the highest-keyed remaining move to the cursor first; pickNext
// assumes the range is already ordered. The hash move is skipped
// unconditionally, rejected moves are passed over without removal.
func (mp *MovePicker) selectMove(mode pickMode, filter func() bool) board.Move {
	for mp.cur < mp.end {
		if mode == pickBest {
			best := mp.cur
			for i := mp.cur + 1; i < mp.end; i++ {
				if mp.moves[i].Key > mp.moves[best].Key {
					best = i
				}
			}
			mp.moves[mp.cur], mp.moves[best] = mp.moves[best], mp.moves[mp.cur]
		}
		if mp.moves[mp.cur].Move != mp.ttMove && filter() {
			m := mp.moves[mp.cur].Move
			mp.cur++
			return m
		}
		mp.cur++
	}
	return board.NoMove
}

// scoreCaptures keys captures by victim value, biased against captures
// far up the board; en passant scores as a zero-value victim.
func (mp *MovePicker) scoreCaptures() {
	stm := mp.pos.SideToMove
	for i := mp.cur; i < mp.end; i++ {
		to := mp.moves[i].Move.To()
		mp.moves[i].Key = int32(mp.pos.PieceAt(to).Value() - 200*to.RelativeRank(stm))
	}
}

// scoreQuiets keys quiets by the butterfly history plus the continuation
// histories of the previous, second-previous and fourth-previous plies.
func (mp *MovePicker) scoreQuiets() {
	stm := mp.pos.SideToMove
	for i := mp.cur; i < mp.end; i++ {
		m := mp.moves[i].Move
		pc := mp.pos.MovedPiece(m)
		to := m.To()
		mp.moves[i].Key = int32(mp.butterfly.Get(stm, m) +
			mp.contHist[0].Get(pc, to) +
			mp.contHist[1].Get(pc, to) +
			mp.contHist[3].Get(pc, to))
	}
}

// scoreEvasions keys evasive captures by victim value minus attacker type
// so the cheapest attacker wins ties, and evasive quiets by butterfly
// history sunk below every capture.
func (mp *MovePicker) scoreEvasions() {
	stm := mp.pos.SideToMove
	for i := mp.cur; i < mp.end; i++ {
		m := mp.moves[i].Move
		if mp.pos.IsCapture(m) {
			mp.moves[i].Key = int32(mp.pos.PieceAt(m.To()).Value() -
				int(mp.pos.MovedPiece(m).Type()))
		} else {
			mp.moves[i].Key = int32(mp.butterfly.Get(stm, m)) - (1 << 28)
		}
	}
}

// partialInsertionSort orders ms so that every element with Key >= limit
// forms a descending prefix; elements below the limit end up after it in
// unspecified order. Insertion sort restricted to qualifying elements,
// O(n*k) for k elements above the limit.
func partialInsertionSort(ms []board.OrderedMove, limit int32) {
	sortedEnd := 0
	for p := 1; p < len(ms); p++ {
		if ms[p].Key >= limit {
			tmp := ms[p]
			sortedEnd++
			ms[p] = ms[sortedEnd]
			q := sortedEnd
			for ; q > 0 && ms[q-1].Key < tmp.Key; q-- {
				ms[q] = ms[q-1]
			}
			ms[q] = tmp
		}
	}
}
