package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRunID_Unique(t *testing.T) {
	a := NewRunID()
	b := NewRunID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestRating_IsValid(t *testing.T) {
	assert.True(t, Rating(1).IsValid())
	assert.True(t, Rating(10).IsValid())
	assert.False(t, Rating(0).IsValid())
	assert.False(t, Rating(11).IsValid())
	assert.False(t, Rating(-3).IsValid())
}

func TestPagination_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Pagination
		want Pagination
	}{
		{"defaults_applied", Pagination{}, Pagination{Limit: 50, Offset: 0}},
		{"limit_clamped", Pagination{Limit: 5000}, Pagination{Limit: 500, Offset: 0}},
		{"negative_offset", Pagination{Limit: 10, Offset: -4}, Pagination{Limit: 10, Offset: 0}},
		{"passthrough", Pagination{Limit: 25, Offset: 75}, Pagination{Limit: 25, Offset: 75}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize(50, 500))
		})
	}
}
