package engine

import (
	"testing"
	"time"

	"quizzle/internal/domain"
)

func TestCalculatePoints(t *testing.T) {
	cases := []struct {
		name       string
		elapsed    time.Duration
		difficulty domain.Difficulty
		want       int
	}{
		{"easy instant", 0, domain.DifficultyEasy, 700},
		{"medium instant", 0, domain.DifficultyMedium, 850},
		{"hard instant", 0, domain.DifficultyHard, 1000},
		{"medium quarter elapsed rounds half up", 5 * time.Second, domain.DifficultyMedium, 638},
		{"easy quarter elapsed", 5 * time.Second, domain.DifficultyEasy, 525},
		{"hard half elapsed", 10 * time.Second, domain.DifficultyHard, 500},
		{"hard just past half", 10001 * time.Millisecond, domain.DifficultyHard, 500},
		{"easy at the limit", 20 * time.Second, domain.DifficultyEasy, 0},
		{"medium past the limit", 25 * time.Second, domain.DifficultyMedium, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculatePoints(tc.elapsed, tc.difficulty)
			if got != tc.want {
				t.Fatalf("CalculatePoints(%v, %s) = %d, want %d", tc.elapsed, tc.difficulty, got, tc.want)
			}
		})
	}
}

func TestCalculatePointsNeverIncreasesWithTime(t *testing.T) {
	prev := CalculatePoints(0, domain.DifficultyHard)
	for elapsed := 50 * time.Millisecond; elapsed <= 21*time.Second; elapsed += 50 * time.Millisecond {
		got := CalculatePoints(elapsed, domain.DifficultyHard)
		if got > prev {
			t.Fatalf("points increased from %d to %d at elapsed=%v", prev, got, elapsed)
		}
		if got < 0 {
			t.Fatalf("negative points %d at elapsed=%v", got, elapsed)
		}
		prev = got
	}
	if prev != 0 {
		t.Fatalf("expected zero points past the limit, got %d", prev)
	}
}

func TestStreakBonus(t *testing.T) {
	cases := []struct {
		streak int
		want   int
	}{
		{0, 0},
		{1, 0},
		{2, 200},
		{3, 300},
		{5, 500},
	}
	for _, tc := range cases {
		if got := StreakBonus(tc.streak); got != tc.want {
			t.Fatalf("StreakBonus(%d) = %d, want %d", tc.streak, got, tc.want)
		}
	}
}
