package board

import "testing"

func TestSeeGEUndefendedPawn(t *testing.T) {
	p := mustPosition(t, "4k3/8/8/4p3/8/5N2/8/4K3 w - - 0 1")
	m := NewMove(F3, E5)

	if !p.SeeGE(m, 100) {
		t.Errorf("winning a free pawn should meet threshold 100")
	}
	if p.SeeGE(m, 101) {
		t.Errorf("a free pawn is worth exactly 100, not 101")
	}
}

func TestSeeGEDefendedPawn(t *testing.T) {
	// The d6 pawn guards e5: NxP loses knight for pawn.
	p := mustPosition(t, "4k3/8/3p4/4p3/8/5N2/8/4K3 w - - 0 1")
	m := NewMove(F3, E5)

	if p.SeeGE(m, 0) {
		t.Errorf("capturing a defended pawn with a knight is not >= 0")
	}
	if !p.SeeGE(m, -220) {
		t.Errorf("the exchange loses exactly knight-for-pawn, -220")
	}
	if p.SeeGE(m, -219) {
		t.Errorf("the exchange should fail threshold -219")
	}
}

func TestSeeGERecaptureChain(t *testing.T) {
	// RxR on d5 is met by BxR; the bishop is not recapturable, so white
	// wins a rook and loses a rook: exchange is rook-for-rook, zero.
	p := mustPosition(t, "4k3/8/4b3/3r4/8/8/3R4/4K3 w - - 0 1")
	m := NewMove(D2, D5)

	if !p.SeeGE(m, 0) {
		t.Errorf("rook for rook should meet threshold 0")
	}
	if p.SeeGE(m, 1) {
		t.Errorf("rook for rook wins nothing beyond the trade")
	}
}

func TestSeeGEThresholdMonotonic(t *testing.T) {
	// If an exchange meets a threshold it must meet every lower one.
	p := mustPosition(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	var buf [MaxMoves]OrderedMove
	n := p.GenerateInto(GenCaptures, buf[:])

	thresholds := []int{-900, -330, -100, 0, 100, 330, 900}
	for i := 0; i < n; i++ {
		m := buf[i].Move
		prev := false
		for j := len(thresholds) - 1; j >= 0; j-- {
			got := p.SeeGE(m, thresholds[j])
			if prev && !got {
				t.Errorf("%s: SeeGE passes threshold %d but fails lower %d",
					m, thresholds[j+1], thresholds[j])
			}
			prev = got
		}
	}
}

func TestSeeGENonNormalMoves(t *testing.T) {
	p := mustPosition(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	castle := NewCastling(E1, G1)

	if !p.SeeGE(castle, 0) {
		t.Errorf("non-normal moves compare zero against the threshold")
	}
	if p.SeeGE(castle, 1) {
		t.Errorf("non-normal moves never meet a positive threshold")
	}
}
