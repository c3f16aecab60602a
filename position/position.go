// Package position adapts the dragontoothmg move generator into the cursor
// the search engine works on: legal moves, reversible push/pop, game-state
// queries and FEN encode/decode.
package position

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

// Move is the provider's opaque move identity (from, to, promotion).
type Move = dragontoothmg.Move

// Piece is a colourless piece type as used by the provider.
type Piece = dragontoothmg.Piece

// Piece types, re-exported so callers don't need the provider import.
const (
	NoPiece = Piece(dragontoothmg.Nothing)
	Pawn    = Piece(dragontoothmg.Pawn)
	Knight  = Piece(dragontoothmg.Knight)
	Bishop  = Piece(dragontoothmg.Bishop)
	Rook    = Piece(dragontoothmg.Rook)
	Queen   = Piece(dragontoothmg.Queen)
	King    = Piece(dragontoothmg.King)
)

// NoMove is the zero move; never produced by move generation.
const NoMove Move = 0

// ErrInvalidMove is returned when a move string is malformed or not legal in
// the current position.
var ErrInvalidMove = errors.New("invalid move")

// Outcome classifies the state of a position.
type Outcome int

const (
	Ongoing Outcome = iota
	Checkmate
	Stalemate
	InsufficientMaterial
)

func (o Outcome) String() string {
	switch o {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case InsufficientMaterial:
		return "insufficient_material"
	default:
		return "ongoing"
	}
}

// Position is a cursor over a board. Push and Pop are exact inverses; N
// pushes followed by N pops restore the original position. A Position is not
// safe for concurrent use: give every goroutine its own Copy.
type Position struct {
	board dragontoothmg.Board
	undo  []func()
}

// New returns the standard starting position.
func New() *Position {
	p, err := FromFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return p
}

// FromFEN decodes a FEN string. Malformed input, and positions where the side
// not on move is in check, yield an error wrapping ErrInvalidFEN.
func FromFEN(fen string) (p *Position, err error) {
	normalized, err := normalizeFEN(fen)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, invalidFEN(fen, fmt.Sprint(r))
		}
	}()
	p = &Position{board: dragontoothmg.ParseFen(normalized)}

	flipped := p.board
	flipped.Wtomove = !flipped.Wtomove
	if flipped.OurKingInCheck() {
		return nil, invalidFEN(fen, "side not to move is in check")
	}
	return p, nil
}

// FEN encodes the current position.
func (p *Position) FEN() string {
	return p.board.ToFen()
}

// Key is the position identity used by the transposition cache.
func (p *Position) Key() uint64 {
	return p.board.Hash()
}

// BookKey is the canonical opening-book identity: piece placement, side to
// move and castling rights. Move counters and the en passant field are
// ignored so book files need not agree with the encoder on them.
func (p *Position) BookKey() string {
	fields := strings.Fields(p.FEN())
	if len(fields) < 3 {
		return p.FEN()
	}
	return strings.Join(fields[:3], " ")
}

// Board exposes the underlying board for read-only inspection.
func (p *Position) Board() *dragontoothmg.Board {
	return &p.board
}

// LegalMoves enumerates the legal moves for the side to move.
func (p *Position) LegalMoves() []Move {
	return p.board.GenerateLegalMoves()
}

// Push plays a legal move.
func (p *Position) Push(m Move) {
	p.undo = append(p.undo, p.board.Apply(m))
}

// Pop undoes the most recent Push. Popping past the start of the cursor is a
// programming error and panics.
func (p *Position) Pop() {
	n := len(p.undo)
	if n == 0 {
		panic("position: Pop without matching Push")
	}
	p.undo[n-1]()
	p.undo[n-1] = nil
	p.undo = p.undo[:n-1]
}

// Ply is the number of moves pushed and not yet popped.
func (p *Position) Ply() int {
	return len(p.undo)
}

// Copy returns an independent cursor at the same position. The copy cannot
// pop moves pushed before it was taken.
func (p *Position) Copy() *Position {
	return &Position{board: p.board}
}

// WhiteToMove reports the side to move.
func (p *Position) WhiteToMove() bool {
	return p.board.Wtomove
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	return p.board.OurKingInCheck()
}

// IsCheckmate reports whether the side to move is mated.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && len(p.LegalMoves()) == 0
}

// IsStalemate reports whether the side to move has no legal move but is not
// in check.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && len(p.LegalMoves()) == 0
}

// IsInsufficientMaterial reports dead positions: bare kings, a single minor
// piece, or bishops only with all of them on one square colour.
func (p *Position) IsInsufficientMaterial() bool {
	w, b := &p.board.White, &p.board.Black
	if w.Pawns|b.Pawns|w.Rooks|b.Rooks|w.Queens|b.Queens != 0 {
		return false
	}
	minors := bits.OnesCount64(w.Knights | b.Knights | w.Bishops | b.Bishops)
	if minors <= 1 {
		return true
	}
	if w.Knights|b.Knights != 0 {
		return false
	}
	const lightSquares uint64 = 0x55AA55AA55AA55AA
	bishops := w.Bishops | b.Bishops
	return bishops&lightSquares == 0 || bishops&^lightSquares == 0
}

// Outcome classifies the position for the side to move.
func (p *Position) Outcome() Outcome {
	if len(p.LegalMoves()) == 0 {
		if p.InCheck() {
			return Checkmate
		}
		return Stalemate
	}
	if p.IsInsufficientMaterial() {
		return InsufficientMaterial
	}
	return Ongoing
}

// IsGameOver reports whether no further play is meaningful.
func (p *Position) IsGameOver() bool {
	return p.Outcome() != Ongoing
}

// IsCapture reports whether m captures a piece (en passant included).
func (p *Position) IsCapture(m Move) bool {
	return dragontoothmg.IsCapture(m, &p.board)
}

// GivesCheck reports whether m leaves the opponent in check. It is decided
// by a speculative push/pop.
func (p *Position) GivesCheck(m Move) bool {
	p.Push(m)
	check := p.InCheck()
	p.Pop()
	return check
}

// PieceAt returns the piece on sq and whether it is white.
func (p *Position) PieceAt(sq uint8) (piece Piece, white bool) {
	if pt := pieceOn(&p.board.White, sq); pt != NoPiece {
		return pt, true
	}
	return pieceOn(&p.board.Black, sq), false
}

func pieceOn(bb *dragontoothmg.Bitboards, sq uint8) Piece {
	mask := uint64(1) << sq
	switch {
	case bb.All&mask == 0:
		return NoPiece
	case bb.Pawns&mask != 0:
		return Pawn
	case bb.Knights&mask != 0:
		return Knight
	case bb.Bishops&mask != 0:
		return Bishop
	case bb.Rooks&mask != 0:
		return Rook
	case bb.Queens&mask != 0:
		return Queen
	case bb.Kings&mask != 0:
		return King
	}
	return NoPiece
}

// OpponentMoveCount counts the legal moves the side not on move would have
// if it were its turn. Used for mobility; the flipped board is never played.
// The en passant square belongs to the side on move, so it is dropped first.
func (p *Position) OpponentMoveCount() int {
	flipped := p.board
	if fields := strings.Fields(p.board.ToFen()); len(fields) > 3 && fields[3] != "-" {
		fields[3] = "-"
		flipped = dragontoothmg.ParseFen(strings.Join(fields, " "))
	}
	flipped.Wtomove = !flipped.Wtomove
	return len(flipped.GenerateLegalMoves())
}

// ParseMove resolves a long-algebraic move string ("e2e4", "e7e8q") against
// the legal moves of the current position.
func (p *Position) ParseMove(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("%w %q: bad length", ErrInvalidMove, s)
	}
	if _, err := squareIndex(s[0:2]); err != nil {
		return NoMove, fmt.Errorf("%w %q: %v", ErrInvalidMove, s, err)
	}
	if _, err := squareIndex(s[2:4]); err != nil {
		return NoMove, fmt.Errorf("%w %q: %v", ErrInvalidMove, s, err)
	}
	for _, m := range p.LegalMoves() {
		if MoveString(m) == s {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w %q: not legal in %s", ErrInvalidMove, s, p.FEN())
}

// MoveString renders a move in long algebraic notation.
func MoveString(m Move) string {
	return m.String()
}

// From returns the origin square of m.
func From(m Move) uint8 {
	return m.From()
}

// To returns the destination square of m.
func To(m Move) uint8 {
	return m.To()
}

// Promotion returns the promotion piece of m, or NoPiece.
func Promotion(m Move) Piece {
	return m.Promote()
}
