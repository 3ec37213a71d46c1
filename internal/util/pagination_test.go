package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		page, size int
		want       Page
	}{
		{name: "first page", page: 1, size: 12, want: Page{Page: 1, Offset: 0, Limit: 12}},
		{name: "third page", page: 3, size: 12, want: Page{Page: 3, Offset: 24, Limit: 12}},
		{name: "zero page", page: 0, size: 12, want: Page{Page: 1, Offset: 0, Limit: 12}},
		{name: "oversized", page: 2, size: 500, want: Page{Page: 2, Offset: 10, Limit: 10}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.page, tt.size))
		})
	}
}

func TestPageCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, PageCount(0, 12))
	assert.Equal(t, 1, PageCount(12, 12))
	assert.Equal(t, 2, PageCount(13, 12))
}
