package protocol

const (
	// Data/file validation.
	ErrBadScene = "E_BAD_SCENE"

	// Move preconditions.
	ErrUnknownBox     = "E_UNKNOWN_BOX"
	ErrAlreadyStacked = "E_ALREADY_STACKED"
	ErrDestOccupied   = "E_DEST_OCCUPIED"
	ErrSourceNotClear = "E_SOURCE_NOT_CLEAR"

	// Goal evaluation.
	ErrGoalUnmet = "E_GOAL_UNMET"

	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrBadScene:       {},
	ErrUnknownBox:     {},
	ErrAlreadyStacked: {},
	ErrDestOccupied:   {},
	ErrSourceNotClear: {},
	ErrGoalUnmet:      {},
	ErrInternal:       {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
