package position

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the standard initial chess position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrInvalidFEN is returned for malformed position encodings.
var ErrInvalidFEN = errors.New("invalid FEN")

func invalidFEN(fen, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidFEN, fen, reason)
}

// normalizeFEN validates a FEN string and returns it with all six fields
// present. Four-field FENs (no move counters) get "0 1" appended. The
// provider library panics or silently builds garbage boards on bad input,
// so everything is checked here first.
func normalizeFEN(fen string) (string, error) {
	fields := strings.Fields(fen)
	switch len(fields) {
	case 4:
		fields = append(fields, "0", "1")
	case 6:
	default:
		return "", invalidFEN(fen, "expected 4 or 6 fields")
	}

	// 1. Piece placement
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return "", invalidFEN(fen, "incorrect number of ranks")
	}
	var (
		board                  [64]rune // a1 = 0, empty squares are 0
		whiteKings, blackKings int
	)
	for i, rankStr := range ranks {
		if len(rankStr) == 0 {
			return "", invalidFEN(fen, "empty rank description")
		}
		file := 0
		for _, ch := range rankStr {
			switch {
			case ch >= '1' && ch <= '8':
				file += int(ch - '0')
			case strings.ContainsRune("pnbrqkPNBRQK", ch):
				if (ch == 'p' || ch == 'P') && (i == 0 || i == 7) {
					return "", invalidFEN(fen, "pawn on back rank")
				}
				if ch == 'K' {
					whiteKings++
				} else if ch == 'k' {
					blackKings++
				}
				if file < 8 {
					board[(7-i)*8+file] = ch
				}
				file++
			default:
				return "", invalidFEN(fen, "unrecognized piece character")
			}
			if file > 8 {
				return "", invalidFEN(fen, "too many squares in rank")
			}
		}
		if file != 8 {
			return "", invalidFEN(fen, "rank does not have 8 columns")
		}
	}
	if whiteKings != 1 || blackKings != 1 {
		return "", invalidFEN(fen, "each side needs exactly one king")
	}

	// 2. Side to move
	if fields[1] != "w" && fields[1] != "b" {
		return "", invalidFEN(fen, "side to move must be 'w' or 'b'")
	}

	// 3. Castling rights. A right needs the king and that rook on their
	// home squares; anything else is rejected rather than stripped.
	if fields[2] != "-" {
		seen := map[rune]bool{}
		for _, ch := range fields[2] {
			if !strings.ContainsRune("KQkq", ch) || seen[ch] {
				return "", invalidFEN(fen, "invalid castling rights")
			}
			seen[ch] = true
			home := castlingHome[ch]
			if board[home.king] != home.kingPiece || board[home.rook] != home.rookPiece {
				return "", invalidFEN(fen, fmt.Sprintf("castling right %c without king and rook on their home squares", ch))
			}
		}
	}

	// 4. En passant target square. It must sit behind a pawn of the side
	// not on move that could just have made a double step.
	if fields[3] != "-" {
		ep := fields[3]
		wantRank, pawn, step := byte('6'), 'p', -8
		if fields[1] == "b" {
			wantRank, pawn, step = '3', 'P', 8
		}
		if len(ep) != 2 || ep[0] < 'a' || ep[0] > 'h' || ep[1] != wantRank {
			return "", invalidFEN(fen, "invalid en passant square")
		}
		sq, _ := squareIndex(ep)
		if board[sq] != 0 || board[int(sq)+step] != pawn || board[int(sq)-step] != 0 {
			return "", invalidFEN(fen, "en passant square without a pawn that just double stepped")
		}
	}

	// 5, 6. Move counters
	if n, err := strconv.Atoi(fields[4]); err != nil || n < 0 || n > 255 {
		return "", invalidFEN(fen, "halfmove clock is not a small number")
	}
	if n, err := strconv.Atoi(fields[5]); err != nil || n < 1 || n > 65535 {
		return "", invalidFEN(fen, "fullmove number is not a positive number")
	}

	return strings.Join(fields, " "), nil
}

type castlingSquares struct {
	king, rook           uint8
	kingPiece, rookPiece rune
}

var castlingHome = map[rune]castlingSquares{
	'K': {king: 4, rook: 7, kingPiece: 'K', rookPiece: 'R'},
	'Q': {king: 4, rook: 0, kingPiece: 'K', rookPiece: 'R'},
	'k': {king: 60, rook: 63, kingPiece: 'k', rookPiece: 'r'},
	'q': {king: 60, rook: 56, kingPiece: 'k', rookPiece: 'r'},
}

// squareIndex converts "e4" into a 0..63 index (a1 = 0, h8 = 63).
func squareIndex(alg string) (uint8, error) {
	if len(alg) != 2 {
		return 0, errors.New("invalid algebraic square length")
	}
	file := alg[0]
	rank := alg[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return 0, errors.New("invalid algebraic square")
	}
	return (file - 'a') + (rank-'1')*8, nil
}

// SquareName converts a 0..63 index into algebraic notation.
func SquareName(sq uint8) string {
	return string([]byte{'a' + sq%8, '1' + sq/8})
}
