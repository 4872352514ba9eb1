package merchant

import (
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

const defaultMaxDistance = 2

// Nearest returns the candidate whose normalized name is closest to name within
// maxDistance edits, or nil. Names shorter than four runes are never suggested.
func Nearest(name string, candidates []*Merchant, maxDistance int) *Merchant {
	target := []rune(name)
	if len(target) < 4 {
		return nil
	}

	var (
		best     *Merchant
		bestDist = maxDistance + 1
	)

	for _, c := range candidates {
		if c.NormalizedName == name {
			continue
		}

		d := levenshtein.DistanceForStrings(target, []rune(c.NormalizedName), levenshtein.DefaultOptions)
		if d < bestDist {
			best, bestDist = c, d
		}
	}

	return best
}
