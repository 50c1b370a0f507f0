package evolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"humira", "humira", 100},
		{"Humira", "humira", 100},
		{"humera", "humira", 83},
		{"", "", 100},
		{"humira", "", 0},
		{"", "humira", 0},
		{"abc", "xyz", 0},
		{"remicade", "remicade!", 94},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Ratio(tt.a, tt.b))
		})
	}
}

func TestRatio_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"humira", "humera"},
		{"stelara", "stelera"},
		{"remicade", "remission"},
		{"a", "abcdef"},
	}
	for _, p := range pairs {
		assert.Equal(t, Ratio(p[0], p[1]), Ratio(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestRatio_Range(t *testing.T) {
	words := []string{"", "a", "humira", "remicade", "completely unrelated phrase"}
	for _, a := range words {
		for _, b := range words {
			r := Ratio(a, b)
			assert.GreaterOrEqual(t, r, 0)
			assert.LessOrEqual(t, r, 100)
		}
	}
}
