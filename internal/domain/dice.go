package domain

import (
	"errors"
	"sort"
	"time"
)

// DiceCount is the number of dice thrown per turn.
const DiceCount = 3

// ErrInvalidDice indicates a roll with the wrong die count or out-of-range values.
var ErrInvalidDice = errors.New("roll must contain exactly three dice with values 1-6")

// OutcomeKind is the category a classified roll falls into.
type OutcomeKind string

const (
	// OutcomeWin covers the 4-5-6 combination and all triples.
	OutcomeWin OutcomeKind = "win"
	// OutcomeLose is the fixed 1-2-3 losing combination.
	OutcomeLose OutcomeKind = "lose"
	// OutcomePoint is a pair plus an odd die inside the valid point range.
	OutcomePoint OutcomeKind = "point"
	// OutcomeIndeterminate carries no decision and must be compared or re-rolled.
	OutcomeIndeterminate OutcomeKind = "indeterminate"
)

// Outcome is the derived classification of a single roll.
type Outcome struct {
	Kind OutcomeKind
	// Point is the unmatched die value for point outcomes, otherwise 0.
	Point int
	// Triple is the face value for triple wins, 0 for the 4-5-6 win.
	Triple int
}

// Jackpot reports whether the outcome scores triple points. Only triples
// qualify; the 4-5-6 combination is a standard one-point win.
func (o Outcome) Jackpot() bool {
	return o.Kind == OutcomeWin && o.Triple > 0
}

// Roll is a recorded throw: three die values plus derived outcome.
// Immutable once recorded.
type Roll struct {
	Dice     [3]int
	Outcome  Outcome
	RolledAt time.Time
}

// Rules carries the table-variant knobs for roll classification.
type Rules struct {
	// PointMin/PointMax bound the unmatched die values accepted as a point.
	PointMin int
	PointMax int
}

// DefaultRules uses the restricted point range 2-5.
var DefaultRules = Rules{PointMin: 2, PointMax: 5}

// ValidateDice checks die count and value range.
func ValidateDice(dice []int) error {
	if len(dice) != DiceCount {
		return ErrInvalidDice
	}
	for _, d := range dice {
		if d < 1 || d > 6 {
			return ErrInvalidDice
		}
	}
	return nil
}

// Classify derives the Cee-Lo outcome of a roll. The rules are applied in
// order on the sorted values: 4-5-6, triple, 1-2-3, pair+point, otherwise
// indeterminate.
func (r Rules) Classify(dice []int) (Outcome, error) {
	if err := ValidateDice(dice); err != nil {
		return Outcome{}, err
	}

	sorted := append([]int(nil), dice...)
	sort.Ints(sorted)
	a, b, c := sorted[0], sorted[1], sorted[2]

	switch {
	case a == 4 && b == 5 && c == 6:
		return Outcome{Kind: OutcomeWin}, nil
	case a == b && b == c:
		return Outcome{Kind: OutcomeWin, Triple: a}, nil
	case a == 1 && b == 2 && c == 3:
		return Outcome{Kind: OutcomeLose}, nil
	}

	if odd, ok := oddDie(a, b, c); ok && odd >= r.PointMin && odd <= r.PointMax {
		return Outcome{Kind: OutcomePoint, Point: odd}, nil
	}

	return Outcome{Kind: OutcomeIndeterminate}, nil
}

// oddDie returns the unmatched die when exactly two of the sorted values
// are equal.
func oddDie(a, b, c int) (int, bool) {
	switch {
	case a == b && b != c:
		return c, true
	case b == c && a != b:
		return a, true
	default:
		return 0, false
	}
}

// rank maps an outcome onto a single comparable scale:
// 4-5-6 above all triples, triples by face, then points by value,
// then lose, then indeterminate.
func rank(o Outcome) int {
	switch o.Kind {
	case OutcomeWin:
		if o.Triple == 0 {
			return 100
		}
		return 90 + o.Triple
	case OutcomePoint:
		return 10 + o.Point
	case OutcomeLose:
		return 1
	default:
		return 0
	}
}

// Compare orders two outcomes under the Cee-Lo hierarchy.
// Returns >0 when a beats b, <0 when b beats a, 0 on a tie.
func Compare(a, b Outcome) int {
	return rank(a) - rank(b)
}
