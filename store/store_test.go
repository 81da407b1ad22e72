package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSortMode(t *testing.T) {
	cases := []struct {
		in   string
		want SortMode
	}{
		{"recency", SortRecency},
		{"likes", SortLikes},
		{"", SortRecency},
		{"newest", SortRecency},
		{"LIKES", SortRecency},
		{"garbage", SortRecency},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseSortMode(tc.in), "input %q", tc.in)
	}
}
