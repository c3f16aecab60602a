package bench

import (
	"testing"

	"chess-bots/position"
)

const (
	kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	pos6     = "r4rk1/1pp1qppp/p1np1n2/2b1p3/2B1P3/2NP1N2/PPP1QPPP/R4RK1 w - - 0 10"
)

func mustFEN(b *testing.B, fen string) *position.Position {
	b.Helper()
	pos, err := position.FromFEN(fen)
	if err != nil {
		b.Fatalf("FromFEN: %v", err)
	}
	return pos
}

func benchPerft(b *testing.B, fen string, depth int) {
	pos := mustFEN(b, fen)
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		_ = position.Perft(pos, depth)
	}
}

func BenchmarkPerft_Initial_D4(b *testing.B) {
	benchPerft(b, position.StartFEN, 4)
}

func BenchmarkPerft_Kiwipete_D3(b *testing.B) {
	benchPerft(b, kiwipete, 3)
}

func benchLegalMoves(b *testing.B, fen string) {
	pos := mustFEN(b, fen)
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		_ = pos.LegalMoves()
	}
}

func BenchmarkLegalMoves_Initial(b *testing.B) {
	benchLegalMoves(b, position.StartFEN)
}

func BenchmarkLegalMoves_Kiwipete(b *testing.B) {
	benchLegalMoves(b, kiwipete)
}

func BenchmarkLegalMoves_Pos6(b *testing.B) {
	benchLegalMoves(b, pos6)
}

func BenchmarkPushPop_Kiwipete(b *testing.B) {
	pos := mustFEN(b, kiwipete)
	moves := pos.LegalMoves()
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		for _, m := range moves {
			pos.Push(m)
			pos.Pop()
		}
	}
}
