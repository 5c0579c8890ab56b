package engine

import (
	"time"

	"github.com/hailam/perch/internal/board"
)

// allocateTime turns UCI clock limits into a per-move budget. Zero means
// no time limit applies (fixed depth or infinite search).
func allocateTime(limits SearchLimits, stm board.Color) time.Duration {
	if limits.Infinite {
		return 0
	}
	if limits.MoveTime > 0 {
		return limits.MoveTime
	}

	remaining := limits.WhiteTime
	inc := limits.WhiteInc
	if stm == board.Black {
		remaining = limits.BlackTime
		inc = limits.BlackInc
	}
	if remaining <= 0 {
		return 0
	}

	movesToGo := limits.MovesToGo
	if movesToGo <= 0 {
		movesToGo = 30
	}

	budget := remaining/time.Duration(movesToGo) + inc/2
	// Keep a safety margin so flag falls never happen on the increment.
	if limit := remaining - 50*time.Millisecond; budget > limit {
		budget = limit
	}
	if budget < time.Millisecond {
		budget = time.Millisecond
	}
	return budget
}
