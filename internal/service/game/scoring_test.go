package game

import (
	"testing"
)

func TestCalculateScore(t *testing.T) {
	cases := []struct {
		name  string
		faces []int
		want  int
	}{
		{"empty roll", []int{}, 0},
		{"straight", []int{1, 2, 3, 4, 5, 6}, 1500},
		{"shuffled straight", []int{6, 3, 1, 5, 2, 4}, 1500},
		{"triple ones", []int{1, 1, 1}, 1000},
		{"quad ones", []int{1, 1, 1, 1}, 2000},
		{"five ones", []int{1, 1, 1, 1, 1}, 3000},
		{"six ones", []int{1, 1, 1, 1, 1, 1}, 4000},
		{"two fives", []int{5, 5}, 100},
		{"two twos", []int{2, 2}, 0},
		{"triple twos", []int{2, 2, 2}, 200},
		{"quad twos", []int{2, 2, 2, 2}, 400},
		{"triple sixes", []int{6, 6, 6}, 600},
		{"single one", []int{1}, 100},
		{"single five", []int{5}, 50},
		{"one and five", []int{1, 5}, 150},
		{"triple threes with extras", []int{3, 3, 3, 1, 5}, 450},
	}

	for _, c := range cases {
		if got := CalculateScore(c.faces); got != c.want {
			t.Errorf("%s: CalculateScore(%v) = %d, want %d", c.name, c.faces, got, c.want)
		}
	}
}

func TestIsScoringSelection(t *testing.T) {
	cases := []struct {
		name  string
		faces []int
		want  bool
	}{
		{"two twos", []int{2, 2}, false},
		{"one plus junk twos", []int{1, 2, 2}, false},
		{"triple twos", []int{2, 2, 2}, true},
		{"one and five", []int{1, 5}, true},
		{"straight", []int{1, 2, 3, 4, 5, 6}, true},
		{"single four", []int{4}, false},
		{"quad fours", []int{4, 4, 4, 4}, true},
		{"triple plus junk", []int{3, 3, 3, 2}, false},
	}

	for _, c := range cases {
		if got := IsScoringSelection(c.faces); got != c.want {
			t.Errorf("%s: IsScoringSelection(%v) = %v, want %v", c.name, c.faces, got, c.want)
		}
	}
}

func TestHasPossibleMoves(t *testing.T) {
	cases := []struct {
		name  string
		faces []int
		want  bool
	}{
		{"genuine farkle", []int{2, 3, 4, 6, 6, 2}, false},
		{"has a one", []int{1, 2, 3, 4, 6, 2}, true},
		{"has a five", []int{2, 3, 4, 6, 6, 5}, true},
		{"has a triple", []int{2, 2, 2, 3, 4, 6}, true},
		{"junk pair", []int{2, 6}, false},
	}

	for _, c := range cases {
		if got := HasPossibleMoves(c.faces); got != c.want {
			t.Errorf("%s: HasPossibleMoves(%v) = %v, want %v", c.name, c.faces, got, c.want)
		}
	}
}
