package engine

import (
	"testing"

	"github.com/hailam/perch/internal/board"
)

const kiwipeteFEN = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

func mustPosition(t *testing.T, fen string) *board.Position {
	t.Helper()
	p, err := board.NewPosition(fen)
	if err != nil {
		t.Fatalf("NewPosition(%q): %v", fen, err)
	}
	return p
}

func allMoves(p *board.Position) map[board.Move]bool {
	var buf [board.MaxMoves]board.OrderedMove
	set := make(map[board.Move]bool)
	var n int
	if p.InCheck() {
		n = p.GenerateInto(board.GenEvasions, buf[:])
	} else {
		n = p.GenerateInto(board.GenCaptures, buf[:])
		n += p.GenerateInto(board.GenQuiets, buf[n:])
	}
	for i := 0; i < n; i++ {
		set[buf[i].Move] = true
	}
	return set
}

func drain(mp *MovePicker, skipQuiets bool) []board.Move {
	var out []board.Move
	for m := mp.Next(skipQuiets); m != board.NoMove; m = mp.Next(skipQuiets) {
		out = append(out, m)
	}
	return out
}

func newMainPicker(p *board.Position, ttMove board.Move, depth int,
	killers [2]board.Move, counter board.Move) (*MovePicker, *ButterflyHistory) {

	butterfly := &ButterflyHistory{}
	contHist := &ContinuationHistory{}
	slots := [4]*PieceToHistory{
		contHist.Sentinel(), contHist.Sentinel(),
		contHist.Sentinel(), contHist.Sentinel(),
	}
	mp := &MovePicker{}
	mp.Init(p, ttMove, depth, butterfly, slots, killers, counter)
	return mp, butterfly
}

func TestHashMoveFirstOnceAndComplete(t *testing.T) {
	p := mustPosition(t, kiwipeteFEN)
	ttMove, err := board.ParseMove("e2a6", p)
	if err != nil {
		t.Fatal(err)
	}
	if !p.PseudoLegal(ttMove) {
		t.Fatal("e2a6 must be pseudo-legal in kiwipete")
	}

	mp, _ := newMainPicker(p, ttMove, 3, [2]board.Move{}, board.NoMove)
	yielded := drain(mp, false)

	if len(yielded) == 0 || yielded[0] != ttMove {
		t.Fatalf("first move = %v, want hash move %v", yielded[0], ttMove)
	}

	seen := make(map[board.Move]int)
	for _, m := range yielded {
		seen[m]++
	}
	for m, n := range seen {
		if n != 1 {
			t.Errorf("move %s yielded %d times", m, n)
		}
	}

	want := allMoves(p)
	if len(seen) != len(want) {
		t.Errorf("yielded %d distinct moves, generator produces %d", len(seen), len(want))
	}
	for m := range want {
		if seen[m] == 0 {
			t.Errorf("move %s never yielded", m)
		}
	}
}

func TestGoodCapturesDescendingAndPartition(t *testing.T) {
	p := mustPosition(t, kiwipeteFEN)
	mp, _ := newMainPicker(p, board.NoMove, 2, [2]board.Move{}, board.NoMove)

	captureScore := func(m board.Move) int {
		return p.PieceAt(m.To()).Value() - 200*m.To().RelativeRank(p.SideToMove)
	}

	// Good captures come first; the run ends at the first non-capture.
	yielded := drain(mp, false)
	var good []board.Move
	for _, m := range yielded {
		if !p.CaptureClass(m) {
			break
		}
		good = append(good, m)
	}
	for i := 1; i < len(good); i++ {
		if captureScore(good[i]) > captureScore(good[i-1]) {
			t.Errorf("good captures out of order: %s before %s", good[i-1], good[i])
		}
	}

	// Good + bad captures together must cover the full capture set.
	var captures []board.Move
	for _, m := range yielded {
		if p.CaptureClass(m) {
			captures = append(captures, m)
		}
	}
	var buf [board.MaxMoves]board.OrderedMove
	n := p.GenerateInto(board.GenCaptures, buf[:])
	if len(captures) != n {
		t.Errorf("yielded %d captures, generator produces %d", len(captures), n)
	}
}

func TestSkipQuietsYieldsOnlyCaptureClass(t *testing.T) {
	p := mustPosition(t, kiwipeteFEN)
	mp, _ := newMainPicker(p, board.NoMove, 4, [2]board.Move{}, board.NoMove)

	for _, m := range drain(mp, true) {
		if !p.CaptureClass(m) {
			t.Errorf("skipQuiets yielded quiet move %s", m)
		}
	}
}

func TestMainSearchSequenceWithRefutations(t *testing.T) {
	p := mustPosition(t, "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1")
	capture := board.NewMove(board.E4, board.D5)
	k1 := board.NewMove(board.E1, board.D2)
	k2 := board.NewMove(board.E1, board.F2)

	// Counter-move duplicates the first killer and must not repeat.
	mp, _ := newMainPicker(p, board.NoMove, 1, [2]board.Move{k1, k2}, k1)
	yielded := drain(mp, false)

	if len(yielded) < 3 {
		t.Fatalf("yielded only %d moves: %v", len(yielded), yielded)
	}
	if yielded[0] != capture {
		t.Errorf("first move = %s, want capture %s", yielded[0], capture)
	}
	if yielded[1] != k1 || yielded[2] != k2 {
		t.Errorf("refutations = %s, %s, want %s, %s", yielded[1], yielded[2], k1, k2)
	}

	seen := make(map[board.Move]int)
	for _, m := range yielded {
		seen[m]++
	}
	if seen[k1] != 1 {
		t.Errorf("killer/counter %s yielded %d times, want 1", k1, seen[k1])
	}

	// 1 capture + 1 pawn push + 5 king moves.
	if len(yielded) != 7 {
		t.Errorf("yielded %d moves, want 7: %v", len(yielded), yielded)
	}

	// Exhaustion is idempotent.
	for i := 0; i < 3; i++ {
		if m := mp.Next(false); m != board.NoMove {
			t.Fatalf("after exhaustion Next returned %s", m)
		}
	}
}

func TestRefutationFilters(t *testing.T) {
	p := mustPosition(t, "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1")
	captureKiller := board.NewMove(board.E4, board.D5) // capture-class, filtered
	bogusKiller := board.NewMove(board.A1, board.A2)   // not pseudo-legal

	mp, _ := newMainPicker(p, board.NoMove, 1,
		[2]board.Move{captureKiller, bogusKiller}, board.NoMove)
	yielded := drain(mp, false)

	seen := make(map[board.Move]int)
	for _, m := range yielded {
		seen[m]++
	}
	if seen[captureKiller] != 1 {
		t.Errorf("capture killer yielded %d times, want 1 (capture stage only)",
			seen[captureKiller])
	}
	if seen[bogusKiller] != 0 {
		t.Errorf("non-pseudo-legal killer was yielded")
	}
}

func TestProbCutSkipsFailingHashMove(t *testing.T) {
	// Qxd5 is met by exd5; Qxh3 wins a clean pawn.
	p := mustPosition(t, "4k3/8/4p3/3p4/8/3Q3p/8/4K3 w - - 0 1")
	badTT := board.NewMove(board.D3, board.D5)
	goodCapture := board.NewMove(board.D3, board.H3)

	mp := &MovePicker{}
	mp.InitProbCut(p, badTT, 0)
	yielded := drain(mp, false)

	if len(yielded) == 0 || yielded[0] != goodCapture {
		t.Fatalf("first probcut move = %v, want %s", yielded, goodCapture)
	}
	for _, m := range yielded {
		if m == badTT {
			t.Errorf("hash move failing the exchange threshold was yielded")
		}
		if !p.SeeGE(m, 0) {
			t.Errorf("probcut yielded %s below the threshold", m)
		}
	}
}

func TestProbCutHashMoveFirst(t *testing.T) {
	p := mustPosition(t, "4k3/8/4p3/3p4/8/3Q3p/8/4K3 w - - 0 1")
	goodTT := board.NewMove(board.D3, board.H3)

	mp := &MovePicker{}
	mp.InitProbCut(p, goodTT, 0)
	yielded := drain(mp, false)

	if len(yielded) == 0 || yielded[0] != goodTT {
		t.Fatalf("first probcut move = %v, want hash move %s", yielded, goodTT)
	}
	count := 0
	for _, m := range yielded {
		if m == goodTT {
			count++
		}
	}
	if count != 1 {
		t.Errorf("hash move yielded %d times, want 1", count)
	}
}

func TestEvasionCapturesBeforeQuiets(t *testing.T) {
	// Knight on d3 checks; Rxd3 is the only capture evasion.
	p := mustPosition(t, "4k3/8/8/8/8/3n4/8/3RK3 w - - 0 1")
	if !p.InCheck() {
		t.Fatal("expected check")
	}

	mp, _ := newMainPicker(p, board.NoMove, 1, [2]board.Move{}, board.NoMove)
	yielded := drain(mp, false)

	if len(yielded) == 0 {
		t.Fatal("no evasions yielded")
	}
	if want := board.NewMove(board.D1, board.D3); yielded[0] != want {
		t.Errorf("first evasion = %s, want capture %s", yielded[0], want)
	}
	want := allMoves(p)
	if len(yielded) != len(want) {
		t.Errorf("yielded %d evasions, generator produces %d", len(yielded), len(want))
	}
	for _, m := range yielded {
		if !want[m] {
			t.Errorf("yielded %s which is not a legal evasion", m)
		}
	}
}

func TestQuiescenceChecksOnlyAtDepthZero(t *testing.T) {
	// No captures available; Ra8 is a quiet checking move.
	p := mustPosition(t, "4k3/8/8/8/8/8/8/R3K1N1 w - - 0 1")
	butterfly := &ButterflyHistory{}
	contHist := &ContinuationHistory{}
	slots := [4]*PieceToHistory{
		contHist.Sentinel(), contHist.Sentinel(),
		contHist.Sentinel(), contHist.Sentinel(),
	}

	mp := &MovePicker{}
	mp.InitQuiescence(p, board.NoMove, 0, butterfly, slots)
	yielded := drain(mp, false)
	found := false
	for _, m := range yielded {
		if m == board.NewMove(board.A1, board.A8) {
			found = true
		}
		if p.IsCapture(m) {
			t.Errorf("unexpected capture %s", m)
		}
	}
	if !found {
		t.Errorf("quiet check a1a8 not yielded at depth 0: %v", yielded)
	}

	mp2 := &MovePicker{}
	mp2.InitQuiescence(p, board.NoMove, -1, butterfly, slots)
	if got := drain(mp2, false); len(got) != 0 {
		t.Errorf("depth -1 yielded %v, want no moves without captures", got)
	}
}

func TestPickerPreconditions(t *testing.T) {
	p := mustPosition(t, "4k3/8/8/8/8/3n4/8/4K3 w - - 0 1") // in check

	assertPanics(t, "probcut in check", func() {
		mp := &MovePicker{}
		mp.InitProbCut(p, board.NoMove, 0)
	})
	assertPanics(t, "main search depth 0", func() {
		mp, _ := newMainPicker(mustPosition(t, kiwipeteFEN), board.NoMove, 0,
			[2]board.Move{}, board.NoMove)
		_ = mp
	})
	assertPanics(t, "quiescence depth 1", func() {
		mp := &MovePicker{}
		mp.InitQuiescence(mustPosition(t, kiwipeteFEN), board.NoMove, 1,
			&ButterflyHistory{}, [4]*PieceToHistory{})
	})
}

func assertPanics(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}
