package match_test

import (
	"testing"

	"jobpilot/campaign-service/internal/match"
)

func TestCompose(t *testing.T) {
	cases := []struct {
		name    string
		base    int
		penalty float64
		boost   int
		want    int
	}{
		{"no feedback", 80, 0, 0, 80},
		{"quarter penalty", 80, 0.25, 0, 60},
		{"half penalty", 80, 0.50, 0, 40},
		{"half penalty rounds", 75, 0.50, 0, 38},
		{"quarter penalty rounds", 70, 0.25, 0, 53},
		{"boost only", 60, 0, 15, 75},
		{"penalty then boost", 80, 0.50, 15, 55},
		{"boost clamps high", 95, 0, 8, 100},
		{"full penalty", 42, 1.0, 0, 0},
		{"zero base", 0, 0.50, 0, 0},
	}
	for _, tc := range cases {
		if got := match.Compose(tc.base, tc.penalty, tc.boost); got != tc.want {
			t.Errorf("%s: Compose(%d, %v, %d) = %d, want %d",
				tc.name, tc.base, tc.penalty, tc.boost, got, tc.want)
		}
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ in, want int }{
		{-5, 0}, {0, 0}, {55, 55}, {100, 100}, {130, 100},
	}
	for _, tc := range cases {
		if got := match.Clamp(tc.in); got != tc.want {
			t.Errorf("Clamp(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
