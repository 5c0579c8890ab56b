package board

// Zobrist tables. A fixed-seed xorshift64* generator keeps the keys stable
// across builds, so persisted experience entries stay valid.
var (
	zobristPieces    [12][64]uint64
	zobristCastling  [16]uint64
	zobristEnPassant [8]uint64
	zobristSide      uint64
)

func init() {
	seed := uint64(0x98F107A2BEEF1234)
	next := func() uint64 {
		seed ^= seed >> 12
		seed ^= seed << 25
		seed ^= seed >> 27
		return seed * 0x2545F4914F6CDD1D
	}

	for pc := WhitePawn; pc < NoPiece; pc++ {
		for sq := A1; sq <= H8; sq++ {
			zobristPieces[pc][sq] = next()
		}
	}
	for i := range zobristCastling {
		zobristCastling[i] = next()
	}
	for i := range zobristEnPassant {
		zobristEnPassant[i] = next()
	}
	zobristSide = next()
}
