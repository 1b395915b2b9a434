package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/eslsoft/vidlingo/internal/entity"
)

func TestNextReviewAt(t *testing.T) {
	from := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	cases := []struct {
		level entity.MasteryLevel
		days  int
	}{
		{1, 1},
		{2, 3},
		{3, 7},
		{4, 14},
		{5, 30},
		{0, 1},  // never reviewed falls back to one day
		{-3, 1}, // out-of-range values use the default too
		{9, 1},
	}
	for _, tc := range cases {
		got := NextReviewAt(tc.level, from)
		assert.Equal(t, from.AddDate(0, 0, tc.days), got, "level %d", tc.level)
	}
}

func TestNextReviewAtDeterministic(t *testing.T) {
	from := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, NextReviewAt(4, from), NextReviewAt(4, from))
}
