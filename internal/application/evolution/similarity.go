package evolution

import (
	"math"
	"strings"
)

// Ratio scores the similarity of two strings as an integer percentage in
// [0, 100].  It is the classic edit-distance ratio: insertions and deletions
// cost 1, substitutions cost 2, and the score is the normalized complement
// of the distance.  Comparison is case-insensitive and symmetric.  Two empty
// strings score 100; an empty string against a non-empty one scores 0.
func Ratio(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 100
	}

	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	dist := weightedEditDistance(ra, rb)
	return int(math.Round(100 * float64(total-dist) / float64(total)))
}

func weightedEditDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			sub := prev[j-1]
			if a[i-1] != b[j-1] {
				sub += 2
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
