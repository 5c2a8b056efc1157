package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSolveAssignment(t *testing.T) {
	tests := []struct {
		name     string
		cost     [][]float64
		expected []int
	}{
		{
			name:     "empty",
			cost:     nil,
			expected: nil,
		},
		{
			name: "square",
			cost: [][]float64{
				{4, 1, 3},
				{2, 0, 5},
				{3, 2, 2},
			},
			expected: []int{1, 0, 2},
		},
		{
			name: "greedy choice is not optimal",
			cost: [][]float64{
				{1, 2},
				{2, 100},
			},
			expected: []int{1, 0},
		},
		{
			name:     "more columns than rows",
			cost:     [][]float64{{3, 1, 2}},
			expected: []int{1},
		},
		{
			name:     "more rows than columns",
			cost:     [][]float64{{5}, {1}, {3}},
			expected: []int{-1, 0, -1},
		},
		{
			name:     "no columns",
			cost:     [][]float64{{}, {}},
			expected: []int{-1, -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, solveAssignment(tt.cost))
		})
	}
}
