// Package engine implements the search: a staged move picker feeding a
// negamax driver with transposition table, history heuristics and
// quiescence.
package engine

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/perch/internal/board"
	"github.com/hailam/perch/internal/experience"
)

// SearchLimits bounds one search. Zero values mean unlimited.
type SearchLimits struct {
	Depth     int
	MoveTime  time.Duration
	WhiteTime time.Duration
	BlackTime time.Duration
	WhiteInc  time.Duration
	BlackInc  time.Duration
	MovesToGo int
	Infinite  bool
}

// SearchInfo reports the state of an iterative-deepening round.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Elapsed  time.Duration
	HashFull int
	BestMove board.Move
}

// Engine owns the long-lived search state: transposition table, history
// tables and the optional experience store shared across searches of one
// game.
type Engine struct {
	tt       *TranspositionTable
	searcher *searcher
	exp      *experience.Store
	log      zerolog.Logger

	pos     *board.Position
	history []uint64 // zobrist keys of the game line up to pos

	stop   atomic.Bool
	OnInfo func(SearchInfo)
}

// Options configures a new Engine.
type Options struct {
	HashMB     int
	Experience *experience.Store
	Logger     zerolog.Logger
}

func New(opts Options) *Engine {
	if opts.HashMB <= 0 {
		opts.HashMB = 64
	}
	e := &Engine{
		tt:  NewTranspositionTable(opts.HashMB),
		exp: opts.Experience,
		log: opts.Logger,
	}
	e.searcher = newSearcher(e.tt, &e.stop)
	e.SetPosition(mustStartPos(), nil)
	return e
}

func mustStartPos() *board.Position {
	p, err := board.NewPosition(board.StartFEN)
	if err != nil {
		panic(err)
	}
	return p
}

// NewGame resets per-game state: the table, histories and killers.
func (e *Engine) NewGame() {
	e.tt.Clear()
	e.searcher.butterfly = ButterflyHistory{}
	e.searcher.contHist = ContinuationHistory{}
	e.searcher.captHist = CaptureHistory{}
	e.searcher.counters = [12][64]board.Move{}
	e.SetPosition(mustStartPos(), nil)
}

// SetPosition installs the position to search and the zobrist keys of the
// moves leading to it, used for repetition detection.
func (e *Engine) SetPosition(pos *board.Position, history []uint64) {
	e.pos = pos
	e.history = append(e.history[:0], history...)
	e.history = append(e.history, pos.Hash)
}

// Position returns the current position.
func (e *Engine) Position() *board.Position {
	return e.pos
}

// ResizeHash replaces the transposition table with one of the given size
// in megabytes. Must not be called while a search is running.
func (e *Engine) ResizeHash(mb int) {
	if mb <= 0 {
		return
	}
	e.tt = NewTranspositionTable(mb)
	e.searcher.tt = e.tt
}

// Stop aborts a running search; the search returns its best move so far.
func (e *Engine) Stop() {
	e.stop.Store(true)
}

// Search runs iterative deepening under limits and returns the best move
// found. Experience entries from earlier games seed the table, and the
// final result is recorded back.
func (e *Engine) Search(limits SearchLimits) board.Move {
	start := time.Now()
	e.stop.Store(false)
	e.tt.NewSearch()

	s := e.searcher
	s.pos = e.pos
	s.keys = append(s.keys[:0], e.history...)
	s.nodes = 0
	s.rootBest = board.NoMove
	s.stack = [MaxPly + 1]stackFrame{}

	if e.exp != nil {
		if entry, ok := e.exp.Probe(e.pos.Hash); ok {
			e.tt.Store(e.pos.Hash, int(entry.Depth), int(entry.Score), BoundExact, entry.Move)
			e.log.Debug().Str("move", entry.Move.String()).Int8("depth", entry.Depth).
				Msg("experience hit")
		}
	}

	maxDepth := limits.Depth
	if maxDepth <= 0 || maxDepth > MaxPly {
		maxDepth = MaxPly
	}
	budget := allocateTime(limits, e.pos.SideToMove)
	s.hasStop = budget > 0
	if s.hasStop {
		s.deadline = start.Add(budget)
	}

	best := board.NoMove
	bestScore := 0
	completed := 0
	for depth := 1; depth <= maxDepth; depth++ {
		score := s.negamax(depth, 0, -Infinity, Infinity)
		if e.stop.Load() && depth > 1 {
			break
		}
		best, bestScore, completed = s.rootBest, score, depth

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:    depth,
				Score:    bestScore,
				Nodes:    s.nodes,
				Elapsed:  time.Since(start),
				HashFull: e.tt.HashFull(),
				BestMove: best,
			})
		}
		if s.hasStop && time.Since(start) > budget/2 {
			break
		}
		if bestScore > MateScore-MaxPly {
			break
		}
	}

	if e.exp != nil && best != board.NoMove {
		if err := e.exp.Record(e.pos.Hash, experience.Entry{
			Move:  best,
			Score: int16(bestScore),
			Depth: int8(completed),
		}); err != nil {
			e.log.Warn().Err(err).Msg("experience record failed")
		}
	}
	return best
}

// Perft counts leaf nodes to the given depth, a correctness check for the
// generators and make/unmake.
func Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var buf [board.MaxMoves]board.OrderedMove
	var n int
	if pos.InCheck() {
		n = pos.GenerateInto(board.GenEvasions, buf[:])
	} else {
		n = pos.GenerateInto(board.GenCaptures, buf[:])
		n += pos.GenerateInto(board.GenQuiets, buf[n:])
	}

	var total uint64
	for i := 0; i < n; i++ {
		undo, ok := pos.MakeMove(buf[i].Move)
		if !ok {
			continue
		}
		total += Perft(pos, depth-1)
		pos.UnmakeMove(undo)
	}
	return total
}
