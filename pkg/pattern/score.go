package pattern

import (
	"math"

	e "smug/error"
)

// Score rates how unlikely b is to appear in memory by chance. Longer,
// higher entropy and more diverse runs score higher; runs made of one
// repeated byte are penalized.
func Score(b []byte) (float64, error) {
	if len(b) == 0 {
		return 0, nil
	}

	var counts [256]uint16
	unique := 0
	for _, c := range b {
		if counts[c] == math.MaxUint16 {
			return 0, e.AnchorOverflow
		}
		if counts[c] == 0 {
			unique++
		}
		counts[c]++
	}

	n := float64(len(b))
	var entropy float64
	most := uint16(0)
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		entropy -= p * math.Log2(p)
		most = max(most, c)
	}
	diversity := float64(unique) / n

	score := 1.5*n + 2*entropy + 3*diversity
	if unique == 1 {
		score -= 5
	}
	if float64(most)/n > 0.9 {
		score -= 3
	}
	return score, nil
}
