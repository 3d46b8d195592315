package analyzer

import "slices"

// maxCallAttempts bounds how many combinations of nominal super choices a
// single call tries before giving up.
const maxCallAttempts = 16

// choicePoint is a nominal super search that found more than one
// candidate during a call.
type choicePoint struct {
	key string
	n   int
}

// choices drives the retries of one call. Each attempt records the choice
// points it passes; a failed attempt advances the last one that still has
// untried candidates, like an odometer.
type choices struct {
	picks map[string]int
	seen  []choicePoint
}

func newChoices() *choices {
	return &choices{picks: map[string]int{}}
}

// pick returns the first candidate index to try for key and records the
// choice point.
func (ch *choices) pick(key string, n int) int {
	if ch == nil || n < 2 {
		return 0
	}
	if !slices.ContainsFunc(ch.seen, func(cp choicePoint) bool { return cp.key == key }) {
		ch.seen = append(ch.seen, choicePoint{key: key, n: n})
	}
	return min(ch.picks[key], n-1)
}

// advance moves to the next untried combination. It reports false when
// every combination of the recorded choice points was tried.
func (ch *choices) advance() bool {
	for i := len(ch.seen) - 1; i >= 0; i-- {
		cp := ch.seen[i]
		if ch.picks[cp.key]+1 < cp.n {
			ch.picks[cp.key]++
			ch.seen = ch.seen[:0]
			return true
		}
		delete(ch.picks, cp.key)
	}
	return false
}

func (ch *choices) reset() {
	if ch != nil {
		ch.seen = ch.seen[:0]
	}
}
