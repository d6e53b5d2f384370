package tictactoe

// Score is the minimax value reached by playing Action.
type Score struct {
	Action Action `json:"action"`
	Value  int    `json:"value"`
}

// MaxValue - returns the value of the board when X (the maximizer) is to move.
func MaxValue(board Board) int {
	return value(board, true)
}

// MinValue - returns the value of the board when O (the minimizer) is to move.
func MinValue(board Board) int {
	return value(board, false)
}

// Minimax - returns the optimal action for the player to move.
// It returns false on a terminal board. Among equally valued actions the first in
// row-major order wins.
func Minimax(board Board) (Action, bool) {
	if board.Terminal() {
		return Action{}, false
	}

	best, ok := Best(board.Player(), Evaluate(board))

	return best.Action, ok
}

// Best - picks the score the player prefers: the highest for X, the lowest for O.
// Ties go to the earliest score.
func Best(player Player, scores []Score) (Score, bool) {
	if len(scores) == 0 {
		return Score{}, false
	}

	maximizing := player == X

	best := scores[0]
	for _, score := range scores[1:] {
		if better(score.Value, best.Value, maximizing) {
			best = score
		}
	}

	return best, true
}

// Evaluate - returns the minimax value of every legal action for the player to move,
// in the order of Board.Actions. Terminal boards have no scores.
func Evaluate(board Board) []Score {
	if board.Terminal() {
		return nil
	}

	// after X moves O minimizes and vice versa
	opponentMaximizes := board.Player() == O

	actions := board.Actions()
	scores := make([]Score, 0, len(actions))
	for _, action := range actions {
		next, err := board.Result(action)
		if err != nil {
			// unreachable: actions come from the board itself
			panic(err)
		}

		scores = append(scores, Score{Action: action, Value: value(next, opponentMaximizes)})
	}

	return scores
}

func value(board Board, maximizing bool) int {
	if board.Terminal() {
		return board.Utility()
	}

	var best int
	for i, action := range board.Actions() {
		next, err := board.Result(action)
		if err != nil {
			panic(err)
		}

		v := value(next, !maximizing)
		if i == 0 || better(v, best, maximizing) {
			best = v
		}
	}

	return best
}

func better(candidate, current int, maximizing bool) bool {
	if maximizing {
		return candidate > current
	}

	return candidate < current
}
