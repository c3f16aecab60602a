package engine

const (
	bitboardFileA uint64 = 0x0101010101010101
	bitboardFileH uint64 = 0x8080808080808080
)

var (
	positionBB  [64]uint64
	kingMoves   [64]uint64
	knightMoves [64]uint64
	// centrality[sq] is 3 on the four centre squares falling to 0 on the rim.
	centrality [64]int32
	fileMasks  [8]uint64
)

func init() {
	for sq := 0; sq < 64; sq++ {
		sqBB := uint64(1) << sq
		positionBB[sq] = sqBB

		// a1 = bit 0, so "left" (towards file A) is a right shift.
		top := sqBB << 8
		bottom := sqBB >> 8
		right := (sqBB << 1) &^ bitboardFileA
		left := (sqBB >> 1) &^ bitboardFileH
		kingMoves[sq] = top | bottom | left | right |
			(top<<1)&^bitboardFileA | (top>>1)&^bitboardFileH |
			(bottom<<1)&^bitboardFileA | (bottom>>1)&^bitboardFileH

		var knight uint64
		file, rank := sq%8, sq/8
		for _, d := range [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}} {
			f, r := file+d[0], rank+d[1]
			if f >= 0 && f < 8 && r >= 0 && r < 8 {
				knight |= uint64(1) << (r*8 + f)
			}
		}
		knightMoves[sq] = knight

		df := abs(2*file - 7)
		dr := abs(2*rank - 7)
		centrality[sq] = int32(3 - Max(df, dr)/2)
	}
	for f := 0; f < 8; f++ {
		fileMasks[f] = bitboardFileA << f
	}
}
