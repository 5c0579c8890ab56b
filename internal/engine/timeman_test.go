package engine

import (
	"testing"
	"time"

	"github.com/hailam/perch/internal/board"
)

func TestAllocateTime(t *testing.T) {
	if got := allocateTime(SearchLimits{Infinite: true}, board.White); got != 0 {
		t.Errorf("infinite search budget = %v, want 0", got)
	}
	if got := allocateTime(SearchLimits{MoveTime: time.Second}, board.White); got != time.Second {
		t.Errorf("movetime budget = %v, want 1s", got)
	}

	got := allocateTime(SearchLimits{WhiteTime: time.Minute, MovesToGo: 20}, board.White)
	if got != 3*time.Second {
		t.Errorf("60s over 20 moves = %v, want 3s", got)
	}

	got = allocateTime(SearchLimits{BlackTime: 40 * time.Millisecond}, board.Black)
	if got < time.Millisecond {
		t.Errorf("budget = %v, below the 1ms floor", got)
	}
	if got > 40*time.Millisecond {
		t.Errorf("budget = %v exceeds remaining time", got)
	}
}

func TestAllocateTimeKeepsSafetyMargin(t *testing.T) {
	// One move to go with a big increment must still leave the margin.
	limits := SearchLimits{WhiteTime: time.Second, WhiteInc: 5 * time.Second, MovesToGo: 1}
	got := allocateTime(limits, board.White)
	if got > time.Second-50*time.Millisecond {
		t.Errorf("budget = %v eats into the safety margin", got)
	}
}
