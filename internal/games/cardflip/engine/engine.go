package engine

import "time"

// NoSelection marks an empty selection slot.
const NoSelection = -1

// State is the session lifecycle state.
type State uint8

const (
	StateIdle State = iota
	StateActive
	StateCompleted
)

// String returns the string representation of a state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Timing holds the pacing intervals used to resolve a selected pair.
// ShakeDelay and RevertDelay are both measured from the second selection.
type Timing struct {
	MatchDelay  time.Duration
	ShakeDelay  time.Duration
	RevertDelay time.Duration
	TickUnit    time.Duration // Unit of the elapsed-time counter
}

// DefaultTiming returns the standard pacing.
func DefaultTiming() Timing {
	return Timing{
		MatchDelay:  300 * time.Millisecond,
		ShakeDelay:  400 * time.Millisecond,
		RevertDelay: 1200 * time.Millisecond,
		TickUnit:    time.Second,
	}
}

// Selection is the pending pair of card indices.
type Selection struct {
	First  int
	Second int
}

// Completion is emitted once when the last pair is matched.
type Completion struct {
	FinishTime   int // Elapsed ticks at completion
	MatchedPairs int
	Score        int
	Generation   uint64 // Session the completion belongs to
}

// Engine runs one Card Flip session: selection, pair resolution,
// elapsed time and completion detection.
//
// All methods must be called from a single goroutine.
type Engine struct {
	deck   Deck
	timing Timing
	sched  Scheduler

	state        State
	first        int
	second       int
	locked       bool
	matchedPairs int

	startedAt  time.Time
	finishedAt time.Time
	elapsed    int

	completion *Completion

	// OnComplete, if set, is called synchronously on the Active -> Completed
	// transition.
	OnComplete func(Completion)
}

// New creates an engine for the given deck.
func New(deck Deck, timing Timing) *Engine {
	if timing.TickUnit <= 0 {
		timing.TickUnit = time.Second
	}
	e := &Engine{timing: timing}
	e.Reset(deck)
	return e
}

// Reset starts a new session with deck. Anything still scheduled for the
// previous session is invalidated.
func (e *Engine) Reset(deck Deck) {
	e.sched.Cancel()
	e.deck = deck
	e.state = StateIdle
	e.first = NoSelection
	e.second = NoSelection
	e.locked = false
	e.matchedPairs = 0
	e.startedAt = time.Time{}
	e.finishedAt = time.Time{}
	e.elapsed = 0
	e.completion = nil
}

// Select handles a card selection at index i.
// Returns false when the selection is rejected; a rejected selection never
// changes any state.
func (e *Engine) Select(i int, now time.Time) bool {
	if e.locked || e.state == StateCompleted {
		return false
	}
	if i < 0 || i >= len(e.deck) {
		return false
	}
	if e.deck[i].Flipped || e.deck[i].Matched {
		return false
	}

	if e.state == StateIdle {
		e.state = StateActive
		e.startedAt = now
		e.elapsed = 0
	}

	e.deck[i].Flipped = true

	if e.first == NoSelection {
		e.first = i
		return true
	}

	e.second = i
	e.locked = true

	first, second := e.first, e.second
	if IsPair(e.deck[first], e.deck[second]) {
		e.sched.After(now, e.timing.MatchDelay, "match", func(at time.Time) {
			e.resolveMatch(first, second, at)
		})
	} else {
		e.sched.After(now, e.timing.ShakeDelay, "shake", func(time.Time) {
			e.deck[first].Shaking = true
			e.deck[second].Shaking = true
		})
		e.sched.After(now, e.timing.RevertDelay, "revert", func(time.Time) {
			e.deck[first].Flipped = false
			e.deck[first].Shaking = false
			e.deck[second].Flipped = false
			e.deck[second].Shaking = false
			e.clearSelection()
		})
	}
	return true
}

// resolveMatch marks a pair matched and detects completion.
func (e *Engine) resolveMatch(first, second int, at time.Time) {
	e.deck[first].Matched = true
	e.deck[second].Matched = true

	prev := e.matchedPairs
	e.matchedPairs = e.deck.MatchedCount() / 2
	e.clearSelection()

	if prev < TotalPairs && e.matchedPairs == TotalPairs {
		e.complete(at)
	}
}

func (e *Engine) clearSelection() {
	e.first = NoSelection
	e.second = NoSelection
	e.locked = false
}

// complete freezes the clock and records the completion.
func (e *Engine) complete(at time.Time) {
	e.state = StateCompleted
	e.finishedAt = at
	e.elapsed = e.ticksSince(at)

	c := Completion{
		FinishTime:   e.elapsed,
		MatchedPairs: e.matchedPairs,
		Score:        Score(e.elapsed),
		Generation:   e.sched.Generation(),
	}
	e.completion = &c

	if e.OnComplete != nil {
		e.OnComplete(c)
	}
}

// Advance runs resolutions that are due and updates elapsed time.
// Called on every platform tick.
func (e *Engine) Advance(now time.Time) {
	e.sched.Run(now)
	if e.state == StateActive {
		e.elapsed = e.ticksSince(now)
	}
}

func (e *Engine) ticksSince(now time.Time) int {
	d := now.Sub(e.startedAt)
	if d < 0 {
		return 0
	}
	return int(d / e.timing.TickUnit)
}

// TakeCompletion returns the completion of this session once.
func (e *Engine) TakeCompletion() (Completion, bool) {
	if e.completion == nil {
		return Completion{}, false
	}
	c := *e.completion
	e.completion = nil
	return c, true
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Cards returns a copy of the deck.
func (e *Engine) Cards() Deck {
	return e.deck
}

// Card returns the card at index i.
func (e *Engine) Card(i int) Card {
	return e.deck[i]
}

// MatchedPairs returns the number of matched pairs.
func (e *Engine) MatchedPairs() int {
	return e.matchedPairs
}

// Elapsed returns elapsed ticks since the first selection.
// Frozen once the session completes.
func (e *Engine) Elapsed() int {
	return e.elapsed
}

// Locked reports whether input is locked while a pair resolves.
func (e *Engine) Locked() bool {
	return e.locked
}

// Selection returns the pending selection indices.
func (e *Engine) Selection() Selection {
	return Selection{First: e.first, Second: e.second}
}

// StartedAt returns the session start time (zero while idle).
func (e *Engine) StartedAt() time.Time {
	return e.startedAt
}

// FinishedAt returns the completion time (zero until completed).
func (e *Engine) FinishedAt() time.Time {
	return e.finishedAt
}

// Generation returns the current session generation.
func (e *Engine) Generation() uint64 {
	return e.sched.Generation()
}

// PendingTasks returns how many resolution steps are scheduled.
func (e *Engine) PendingTasks() int {
	return e.sched.Pending()
}
