package tile

// State is the pair of statuses a stage keeps for one tile.
type State struct {
	This Status
	Prev Status
}

// WriteAction tells the caller what to do with the computed state.
type WriteAction int

const (
	WriteNone WriteAction = iota
	WriteInsert
	WriteUpdate
)

func (a WriteAction) String() string {
	switch a {
	case WriteInsert:
		return "insert"
	case WriteUpdate:
		return "update"
	default:
		return "none"
	}
}

// PropagateInput carries the pre-fetched state needed to compute a tile's
// status at an adjacent-tile stage. All values are looked up by the caller.
type PropagateInput struct {
	// InputStatus is the feeding stage's status for this tile.
	// Callers pass StatusDoesNotExist when the input record is unknown.
	InputStatus Status

	// HasAdjacent is false when no predecessor tile is known.
	HasAdjacent    bool
	AdjacentStatus Status

	// Existing is this stage's persisted state, nil for a new tile.
	Existing *State
}

// PropagateResult is the state to persist and how to persist it.
type PropagateResult struct {
	State
	Write WriteAction
}

// Propagate computes the upstream (prev) status and this stage's status for
// one tile.
//
// Rules:
//   - without a predecessor the tile does not exist at this stage
//   - a persisted Processing status is never interrupted
//   - a dependency that just became known graduates the tile to Incomplete
//   - an unfinished or regressed input forces Incomplete
//   - otherwise the persisted status (Complete, Failed, ...) is kept
func Propagate(in PropagateInput) PropagateResult {
	prev := StatusDoesNotExist
	this := StatusDoesNotExist

	if in.HasAdjacent {
		this = StatusIncomplete
		prev = CombineUpstream(in.InputStatus, in.AdjacentStatus)
	}

	if in.Existing == nil {
		return PropagateResult{State: State{This: this, Prev: prev}, Write: WriteInsert}
	}

	existing := *in.Existing

	switch {
	case existing.This == StatusProcessing:
		this = existing.This
	case this == StatusDoesNotExist:
		// Not actionable without a predecessor.
	case prev != StatusDoesNotExist && existing.Prev == StatusDoesNotExist:
		this = StatusIncomplete
	case in.InputStatus != StatusComplete:
		this = StatusIncomplete
	default:
		this = existing.This
	}

	result := PropagateResult{State: State{This: this, Prev: prev}, Write: WriteNone}
	if result.State != existing {
		result.Write = WriteUpdate
	}
	return result
}
