package uci

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hailam/perch/internal/engine"
)

func runSession(t *testing.T, script string) string {
	t.Helper()
	eng := engine.New(engine.Options{HashMB: 8, Logger: zerolog.Nop()})
	var out strings.Builder
	h := New(eng, &out, zerolog.Nop())
	if err := h.Run(strings.NewReader(script)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestHandshake(t *testing.T) {
	out := runSession(t, "uci\nisready\nquit\n")

	for _, want := range []string{"id name Perch", "option name Hash", "uciok", "readyok"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSetOption(t *testing.T) {
	script := "setoption name Hash value 16\n" +
		"setoption name Threads value 1\n" +
		"setoption name Nonsense value 7\n" +
		"position startpos\ngo depth 2\nquit\n"
	out := runSession(t, script)

	if !strings.Contains(out, "bestmove ") {
		t.Errorf("engine should still search after setoption:\n%s", out)
	}
}

func TestGoProducesBestMove(t *testing.T) {
	out := runSession(t, "position startpos\ngo depth 3\nquit\n")

	if !strings.Contains(out, "bestmove ") {
		t.Errorf("no bestmove in output:\n%s", out)
	}
	if !strings.Contains(out, "info depth") {
		t.Errorf("no search info in output:\n%s", out)
	}
}

func TestPositionWithMoves(t *testing.T) {
	out := runSession(t, "position startpos moves e2e4 e7e5\nd\nquit\n")

	if !strings.Contains(out, "Fen: rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq") {
		t.Errorf("position after e2e4 e7e5 not reflected:\n%s", out)
	}
}

func TestPerftCommand(t *testing.T) {
	out := runSession(t, "position startpos\nperft 2\nquit\n")

	if !strings.Contains(out, "perft 2: 400 nodes") {
		t.Errorf("perft output wrong:\n%s", out)
	}
}
