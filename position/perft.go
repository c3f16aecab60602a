package position

// Perft counts leaf nodes of the legal move tree to the given depth using
// Push/Pop, which makes it a check on both move generation and reversibility.
func Perft(p *Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := p.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		p.Push(m)
		nodes += Perft(p, depth-1)
		p.Pop()
	}
	return nodes
}

// PerftDivide returns per-root-move node counts keyed by move notation.
func PerftDivide(p *Position, depth int) map[string]uint64 {
	div := make(map[string]uint64)
	if depth <= 0 {
		return div
	}
	for _, m := range p.LegalMoves() {
		p.Push(m)
		div[MoveString(m)] = Perft(p, depth-1)
		p.Pop()
	}
	return div
}
