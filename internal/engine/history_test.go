package engine

import (
	"testing"

	"github.com/hailam/perch/internal/board"
)

func TestGravitySaturates(t *testing.T) {
	var h ButterflyHistory
	m := board.NewMove(board.E2, board.E4)

	for i := 0; i < 100; i++ {
		h.Update(board.White, m, 2000)
	}
	v := h.Get(board.White, m)
	if v > historyMax || v <= 0 {
		t.Errorf("saturated value = %d, want within (0, %d]", v, historyMax)
	}

	for i := 0; i < 200; i++ {
		h.Update(board.White, m, -2000)
	}
	v = h.Get(board.White, m)
	if v < -historyMax || v >= 0 {
		t.Errorf("negative saturation = %d, want within [%d, 0)", v, -historyMax)
	}
}

func TestGravityDecaysTowardBonus(t *testing.T) {
	var h ButterflyHistory
	m := board.NewMove(board.G1, board.F3)

	h.Update(board.Black, m, 1000)
	first := h.Get(board.Black, m)
	if first != 1000 {
		t.Errorf("first update from zero = %d, want the full bonus", first)
	}
	h.Update(board.Black, m, 1000)
	second := h.Get(board.Black, m)
	if second <= first || second >= 2*first {
		t.Errorf("second update = %d, want between %d and %d", second, first, 2*first)
	}
}

func TestContinuationSentinel(t *testing.T) {
	var ch ContinuationHistory
	s := ch.Sentinel()
	if s == nil {
		t.Fatal("sentinel is nil")
	}
	if got := s.Get(board.WhiteKnight, board.F3); got != 0 {
		t.Errorf("fresh sentinel value = %d, want 0", got)
	}
	// The sentinel aliases the NoPiece row, distinct from real entries.
	if s == ch.Entry(board.WhiteKnight, board.F3) {
		t.Error("sentinel must not alias a real entry")
	}
}
