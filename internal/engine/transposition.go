package engine

import "github.com/hailam/perch/internal/board"

// Bound describes how a stored score relates to the true value.
type Bound uint8

const (
	BoundExact Bound = iota
	BoundLower // fail high, score is a lower bound
	BoundUpper // fail low, score is an upper bound
)

// TTEntry is one transposition table slot. The full hash is kept for
// verification so index collisions never surface a wrong entry.
type TTEntry struct {
	Key   uint64
	Move  board.Move
	Score int16
	Depth int8
	Flag  Bound
	Age   uint8
}

// TranspositionTable caches search results by zobrist hash. The search
// runs on a single goroutine, so the table is unsynchronized; the age
// counter lets entries from earlier searches be replaced eagerly.
type TranspositionTable struct {
	entries []TTEntry
	mask    uint64
	age     uint8
}

// NewTranspositionTable allocates a table of roughly sizeMB megabytes,
// rounded down to a power-of-two entry count.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	const entrySize = 16
	n := uint64(sizeMB) * 1024 * 1024 / entrySize
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n = (n + 1) >> 1

	return &TranspositionTable{
		entries: make([]TTEntry, n),
		mask:    n - 1,
	}
}

// Probe returns the entry for hash, if present.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	entry := tt.entries[hash&tt.mask]
	if entry.Key == hash {
		return entry, true
	}
	return TTEntry{}, false
}

// Store writes an entry, replacing the incumbent when it is stale or not
// deeper than the new result.
func (tt *TranspositionTable) Store(hash uint64, depth, score int, flag Bound, move board.Move) {
	entry := &tt.entries[hash&tt.mask]
	if entry.Age == tt.age && entry.Key == hash && depth < int(entry.Depth) && flag != BoundExact {
		return
	}
	*entry = TTEntry{
		Key:   hash,
		Move:  move,
		Score: int16(score),
		Depth: int8(depth),
		Flag:  flag,
		Age:   tt.age,
	}
}

// NewSearch advances the replacement generation.
func (tt *TranspositionTable) NewSearch() {
	tt.age++
}

// Clear wipes the table.
func (tt *TranspositionTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	tt.age = 0
}

// HashFull estimates table usage in permille for "info hashfull".
func (tt *TranspositionTable) HashFull() int {
	sample := 1000
	if uint64(sample) > uint64(len(tt.entries)) {
		sample = len(tt.entries)
	}
	used := 0
	for i := 0; i < sample; i++ {
		if tt.entries[i].Depth != 0 && tt.entries[i].Age == tt.age {
			used++
		}
	}
	if sample == 0 {
		return 0
	}
	return used * 1000 / sample
}

// ScoreFromTT converts a stored score back to a search score: mate scores
// are kept relative to the root by re-adding the current ply.
func ScoreFromTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// ScoreToTT converts a search score for storage, stripping the current
// ply from mate scores so they transpose correctly.
func ScoreToTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
