package engine

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"

	"chess-bots/position"
)

// Score constants. Mate scores sit above Checkmate and below MaxScore so
// they can be told apart from material swings.
const (
	MaxScore  int32 = 32500
	Checkmate int32 = 20000
	DrawScore int32 = 0
	MaxPly          = 128
)

// PieceValue is indexed by position.Piece.
var PieceValue = [7]int32{
	position.Pawn:   100,
	position.Knight: 320,
	position.Bishop: 330,
	position.Rook:   500,
	position.Queen:  900,
	position.King:   0,
}

const (
	centerSquares uint64 = 0x0000001818000000 // d4 e4 d5 e5
	rank1         uint64 = 0x00000000000000ff
	rank8         uint64 = 0xff00000000000000
)

var centerSquareList = [4]uint8{27, 28, 35, 36}

// EvalTerm is one named, toggleable evaluation term.
type EvalTerm struct {
	Enabled bool  `mapstructure:"enabled" yaml:"enabled"`
	Weight  int32 `mapstructure:"weight" yaml:"weight"`
}

func (t EvalTerm) apply(raw int32) int32 {
	if !t.Enabled {
		return 0
	}
	return raw * t.Weight
}

// EvalConfig selects which terms the Evaluator sums and how heavily.
// Material's weight is a plain multiplier on PieceValue.
type EvalConfig struct {
	Material         EvalTerm `mapstructure:"material"`
	PawnCenter       EvalTerm `mapstructure:"pawn_center"`
	PawnAdvance      EvalTerm `mapstructure:"pawn_advance"`
	Centrality       EvalTerm `mapstructure:"centrality"`
	CenterControl    EvalTerm `mapstructure:"center_control"`
	KingSafety       EvalTerm `mapstructure:"king_safety"`
	Mobility         EvalTerm `mapstructure:"mobility"`
	DoubledPawns     EvalTerm `mapstructure:"doubled_pawns"`
	RookOpenFile     EvalTerm `mapstructure:"rook_open_file"`
	RookSemiOpenFile EvalTerm `mapstructure:"rook_semi_open_file"`
	MinorDevelopment EvalTerm `mapstructure:"minor_development"`
}

// DefaultEvalConfig enables every term.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		Material:         EvalTerm{true, 1},
		PawnCenter:       EvalTerm{true, 20},
		PawnAdvance:      EvalTerm{true, 5},
		Centrality:       EvalTerm{true, 3},
		CenterControl:    EvalTerm{true, 4},
		KingSafety:       EvalTerm{true, 6},
		Mobility:         EvalTerm{true, 2},
		DoubledPawns:     EvalTerm{true, 15},
		RookOpenFile:     EvalTerm{true, 20},
		RookSemiOpenFile: EvalTerm{true, 10},
		MinorDevelopment: EvalTerm{true, 10},
	}
}

// MaterialOnly is the bare material count, handy for tests and for the
// weaker tiers.
func MaterialOnly() EvalConfig {
	return EvalConfig{Material: EvalTerm{true, 1}}
}

// Evaluator scores positions from the side to move's point of view. It holds
// no mutable state and may be shared between goroutines.
type Evaluator struct {
	cfg EvalConfig
}

func NewEvaluator(cfg EvalConfig) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Config returns the term configuration in use.
func (e *Evaluator) Config() EvalConfig {
	return e.cfg
}

// Evaluate returns the static score of pos for the side to move. A mated side
// to move scores -Checkmate; stalemate and dead positions score 0.
func (e *Evaluator) Evaluate(pos *position.Position) int32 {
	return e.evaluate(pos, pos.LegalMoves())
}

// evaluate is Evaluate with the legal moves already generated.
func (e *Evaluator) evaluate(pos *position.Position, moves []position.Move) int32 {
	if len(moves) == 0 {
		if pos.InCheck() {
			return -Checkmate
		}
		return DrawScore
	}
	if pos.IsInsufficientMaterial() {
		return DrawScore
	}

	b := pos.Board()
	score := e.sideScore(b, true) - e.sideScore(b, false)

	if e.cfg.Mobility.Enabled {
		mobility := int32(len(moves) - pos.OpponentMoveCount())
		if !b.Wtomove {
			mobility = -mobility
		}
		score += e.cfg.Mobility.apply(mobility)
	}

	if !b.Wtomove {
		score = -score
	}
	return score
}

// sideScore sums every per-side term for one colour.
func (e *Evaluator) sideScore(b *dragontoothmg.Board, white bool) int32 {
	us, them := &b.White, &b.Black
	if !white {
		us, them = them, us
	}
	var score int32

	if e.cfg.Material.Enabled {
		var material int32
		material += int32(bits.OnesCount64(us.Pawns)) * PieceValue[position.Pawn]
		material += int32(bits.OnesCount64(us.Knights)) * PieceValue[position.Knight]
		material += int32(bits.OnesCount64(us.Bishops)) * PieceValue[position.Bishop]
		material += int32(bits.OnesCount64(us.Rooks)) * PieceValue[position.Rook]
		material += int32(bits.OnesCount64(us.Queens)) * PieceValue[position.Queen]
		score += e.cfg.Material.apply(material)
	}

	score += e.cfg.PawnCenter.apply(int32(bits.OnesCount64(us.Pawns & centerSquares)))

	if e.cfg.PawnAdvance.Enabled {
		var advance int32
		for pawns := us.Pawns; pawns != 0; pawns &= pawns - 1 {
			rank := int32(bits.TrailingZeros64(pawns) / 8)
			if white {
				advance += rank - 1
			} else {
				advance += 6 - rank
			}
		}
		score += e.cfg.PawnAdvance.apply(advance)
	}

	if e.cfg.Centrality.Enabled {
		var central int32
		for pieces := us.All; pieces != 0; pieces &= pieces - 1 {
			central += centrality[bits.TrailingZeros64(pieces)]
		}
		score += e.cfg.Centrality.apply(central)
	}

	if e.cfg.CenterControl.Enabled {
		var control int32
		for _, sq := range centerSquareList {
			control += attackCount(b, sq, white)
		}
		score += e.cfg.CenterControl.apply(control)
	}

	if e.cfg.KingSafety.Enabled && us.Kings != 0 {
		ksq := bits.TrailingZeros64(us.Kings)
		var danger int32
		for zone := kingMoves[ksq] | us.Kings; zone != 0; zone &= zone - 1 {
			danger += attackCount(b, uint8(bits.TrailingZeros64(zone)), !white)
		}
		score -= e.cfg.KingSafety.apply(danger)
	}

	if e.cfg.DoubledPawns.Enabled {
		var doubled int32
		for _, mask := range fileMasks {
			if n := bits.OnesCount64(us.Pawns & mask); n > 1 {
				doubled += int32(n - 1)
			}
		}
		score -= e.cfg.DoubledPawns.apply(doubled)
	}

	if e.cfg.RookOpenFile.Enabled || e.cfg.RookSemiOpenFile.Enabled {
		var open, semiOpen int32
		for rooks := us.Rooks; rooks != 0; rooks &= rooks - 1 {
			file := fileMasks[bits.TrailingZeros64(rooks)%8]
			switch {
			case file&(us.Pawns|them.Pawns) == 0:
				open++
			case file&us.Pawns == 0:
				semiOpen++
			}
		}
		score += e.cfg.RookOpenFile.apply(open) + e.cfg.RookSemiOpenFile.apply(semiOpen)
	}

	if e.cfg.MinorDevelopment.Enabled {
		backRank := rank1
		if !white {
			backRank = rank8
		}
		developed := bits.OnesCount64((us.Knights | us.Bishops) &^ backRank)
		score += e.cfg.MinorDevelopment.apply(int32(developed))
	}

	return score
}
