package entity

import "github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"

// Analysis is the engine's view of a single board.
type Analysis struct {
	Board    tictactoe.Board    `json:"board"`
	Player   string             `json:"player,omitempty"`
	Actions  []tictactoe.Action `json:"actions"`
	Terminal bool               `json:"terminal"`
	Winner   string             `json:"winner,omitempty"`
	Utility  int                `json:"utility"`
	Outcome  string             `json:"outcome"`
	Best     *tictactoe.Action  `json:"best,omitempty"`
	Scores   []tictactoe.Score  `json:"scores,omitempty"`
}

// NewAnalysis - runs the full minimax search on the board.
func NewAnalysis(board tictactoe.Board) *Analysis {
	analysis := &Analysis{
		Board:    board,
		Actions:  board.Actions(),
		Terminal: board.Terminal(),
		Utility:  board.Utility(),
		Outcome:  board.Outcome().String(),
	}

	if winner, ok := board.Winner(); ok {
		analysis.Winner = winner.String()
	}

	if analysis.Terminal {
		return analysis
	}

	analysis.Player = board.Player().String()
	analysis.Scores = tictactoe.Evaluate(board)

	if best, ok := tictactoe.Best(board.Player(), analysis.Scores); ok {
		analysis.Best = &best.Action
	}

	return analysis
}
