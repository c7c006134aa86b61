package domain

import (
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		dice     []int
		expected Outcome
	}{
		{
			name:     "FourFiveSix",
			dice:     []int{4, 5, 6},
			expected: Outcome{Kind: OutcomeWin},
		},
		{
			name:     "FourFiveSixUnsorted",
			dice:     []int{6, 4, 5},
			expected: Outcome{Kind: OutcomeWin},
		},
		{
			name:     "TripleSixes",
			dice:     []int{6, 6, 6},
			expected: Outcome{Kind: OutcomeWin, Triple: 6},
		},
		{
			name:     "TripleOnes",
			dice:     []int{1, 1, 1},
			expected: Outcome{Kind: OutcomeWin, Triple: 1},
		},
		{
			name:     "OneTwoThree",
			dice:     []int{3, 1, 2},
			expected: Outcome{Kind: OutcomeLose},
		},
		{
			name:     "PointFive",
			dice:     []int{2, 2, 5},
			expected: Outcome{Kind: OutcomePoint, Point: 5},
		},
		{
			name:     "PointTwoLowPair",
			dice:     []int{2, 6, 6},
			expected: Outcome{Kind: OutcomePoint, Point: 2},
		},
		{
			name:     "PointOneOutsideRange",
			dice:     []int{1, 4, 4},
			expected: Outcome{Kind: OutcomeIndeterminate},
		},
		{
			name:     "PointSixOutsideRange",
			dice:     []int{3, 3, 6},
			expected: Outcome{Kind: OutcomeIndeterminate},
		},
		{
			name:     "NoPairNoSequence",
			dice:     []int{1, 3, 5},
			expected: Outcome{Kind: OutcomeIndeterminate},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DefaultRules.Classify(tt.dice)
			if err != nil {
				t.Fatalf("Classify(%v) error: %v", tt.dice, err)
			}
			if got != tt.expected {
				t.Errorf("Classify(%v) = %+v, want %+v", tt.dice, got, tt.expected)
			}
		})
	}
}

func TestClassifyRejectsInvalidDice(t *testing.T) {
	tests := []struct {
		name string
		dice []int
	}{
		{name: "TooFew", dice: []int{1, 2}},
		{name: "TooMany", dice: []int{1, 2, 3, 4}},
		{name: "ValueTooLow", dice: []int{0, 2, 3}},
		{name: "ValueTooHigh", dice: []int{1, 2, 7}},
		{name: "Empty", dice: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DefaultRules.Classify(tt.dice); err != ErrInvalidDice {
				t.Fatalf("Classify(%v) err = %v, want ErrInvalidDice", tt.dice, err)
			}
		})
	}
}

// Every valid roll must classify into exactly one category.
func TestClassifyIsTotal(t *testing.T) {
	kinds := map[OutcomeKind]int{}
	for a := 1; a <= 6; a++ {
		for b := 1; b <= 6; b++ {
			for c := 1; c <= 6; c++ {
				out, err := DefaultRules.Classify([]int{a, b, c})
				if err != nil {
					t.Fatalf("Classify(%d,%d,%d) error: %v", a, b, c, err)
				}
				switch out.Kind {
				case OutcomeWin, OutcomeLose, OutcomePoint, OutcomeIndeterminate:
					kinds[out.Kind]++
				default:
					t.Fatalf("Classify(%d,%d,%d) returned unknown kind %q", a, b, c, out.Kind)
				}
			}
		}
	}
	for _, kind := range []OutcomeKind{OutcomeWin, OutcomeLose, OutcomePoint, OutcomeIndeterminate} {
		if kinds[kind] == 0 {
			t.Errorf("no roll classified as %q across all 216 combinations", kind)
		}
	}
}

func TestCompareOrdering(t *testing.T) {
	win456 := Outcome{Kind: OutcomeWin}
	triple6 := Outcome{Kind: OutcomeWin, Triple: 6}
	triple1 := Outcome{Kind: OutcomeWin, Triple: 1}
	point5 := Outcome{Kind: OutcomePoint, Point: 5}
	point2 := Outcome{Kind: OutcomePoint, Point: 2}
	lose := Outcome{Kind: OutcomeLose}
	indet := Outcome{Kind: OutcomeIndeterminate}

	// Highest to lowest under the hierarchy.
	ordered := []Outcome{win456, triple6, triple1, point5, point2, lose, indet}
	for i := range ordered {
		for j := range ordered {
			got := Compare(ordered[i], ordered[j])
			switch {
			case i < j && got <= 0:
				t.Errorf("Compare(%+v, %+v) = %d, want > 0", ordered[i], ordered[j], got)
			case i > j && got >= 0:
				t.Errorf("Compare(%+v, %+v) = %d, want < 0", ordered[i], ordered[j], got)
			case i == j && got != 0:
				t.Errorf("Compare(%+v, %+v) = %d, want 0", ordered[i], ordered[j], got)
			}
		}
	}
}

func TestJackpot(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    bool
	}{
		{name: "TripleSix", outcome: Outcome{Kind: OutcomeWin, Triple: 6}, want: true},
		{name: "TripleOne", outcome: Outcome{Kind: OutcomeWin, Triple: 1}, want: true},
		{name: "FourFiveSix", outcome: Outcome{Kind: OutcomeWin}, want: false},
		{name: "Point", outcome: Outcome{Kind: OutcomePoint, Point: 4}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.outcome.Jackpot(); got != tt.want {
				t.Fatalf("Jackpot() = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestDetermineRoundWinner(t *testing.T) {
	roll := func(kind OutcomeKind, point int) Roll {
		return Roll{Outcome: Outcome{Kind: kind, Point: point}}
	}

	tests := []struct {
		name       string
		rolls      map[string]Roll
		wantWinner string
		wantTied   bool
	}{
		{
			name: "HighestPointWins",
			rolls: map[string]Roll{
				"a": roll(OutcomePoint, 3),
				"b": roll(OutcomePoint, 5),
				"c": roll(OutcomeIndeterminate, 0),
			},
			wantWinner: "b",
		},
		{
			name: "PointBeatsIndeterminate",
			rolls: map[string]Roll{
				"a": roll(OutcomeIndeterminate, 0),
				"b": roll(OutcomePoint, 2),
			},
			wantWinner: "b",
		},
		{
			name: "AllIndeterminateIsTied",
			rolls: map[string]Roll{
				"a": roll(OutcomeIndeterminate, 0),
				"b": roll(OutcomeIndeterminate, 0),
			},
			wantTied: true,
		},
		{
			name: "EqualTopPointsAreTied",
			rolls: map[string]Roll{
				"a": roll(OutcomePoint, 5),
				"b": roll(OutcomePoint, 5),
			},
			wantTied: true,
		},
		{
			name: "SharedLowerRankStillProducesWinner",
			rolls: map[string]Roll{
				"a": roll(OutcomePoint, 4),
				"b": roll(OutcomePoint, 4),
				"c": roll(OutcomePoint, 5),
			},
			wantWinner: "c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			winner, tied := DetermineRoundWinner(tt.rolls)
			if tied != tt.wantTied {
				t.Fatalf("tied = %t, want %t", tied, tt.wantTied)
			}
			if winner != tt.wantWinner {
				t.Fatalf("winner = %q, want %q", winner, tt.wantWinner)
			}
		})
	}
}
