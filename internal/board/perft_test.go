package board

import "testing"

func perft(p *Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var buf [MaxMoves]OrderedMove
	var n int
	if p.InCheck() {
		n = p.GenerateInto(GenEvasions, buf[:])
	} else {
		n = p.GenerateInto(GenCaptures, buf[:])
		n += p.GenerateInto(GenQuiets, buf[n:])
	}

	var total uint64
	for i := 0; i < n; i++ {
		undo, ok := p.MakeMove(buf[i].Move)
		if !ok {
			continue
		}
		total += perft(p, depth-1)
		p.UnmakeMove(undo)
	}
	return total
}

func TestPerft(t *testing.T) {
	cases := []struct {
		name  string
		fen   string
		depth int
		nodes uint64
	}{
		{"startpos d1", StartFEN, 1, 20},
		{"startpos d2", StartFEN, 2, 400},
		{"startpos d3", StartFEN, 3, 8902},
		{"startpos d4", StartFEN, 4, 197281},
		{"kiwipete d1", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 1, 48},
		{"kiwipete d2", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2, 2039},
		{"kiwipete d3", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 3, 97862},
		{"endgame d1", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 1, 14},
		{"endgame d2", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 2, 191},
		{"endgame d3", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 3, 2812},
		{"endgame d4", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 4, 43238},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := mustPosition(t, tc.fen)
			if got := perft(p, tc.depth); got != tc.nodes {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.nodes)
			}
		})
	}
}

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
	}
	for _, fen := range fens {
		p := mustPosition(t, fen)
		if got := p.ToFEN(); got != fen {
			t.Errorf("round trip:\n in  %s\n out %s", fen, got)
		}
	}
}

func TestHashDiffersByMove(t *testing.T) {
	p := mustPosition(t, StartFEN)
	h0 := p.Hash

	m, _ := ParseMove("e2e4", p)
	undo, ok := p.MakeMove(m)
	if !ok {
		t.Fatal("e2e4 must be legal")
	}
	if p.Hash == h0 {
		t.Errorf("hash unchanged after a move")
	}
	p.UnmakeMove(undo)
	if p.Hash != h0 {
		t.Errorf("hash not restored after unmake")
	}
}
