// Package typoutil implements bounded edit-distance computation for
// typo-tolerant matching. The same implementation backs the relevance
// scorer, the in-memory operator matcher and the edit_distance SQL function
// registered with the native index, so every backend agrees on which
// candidates qualify as fuzzy matches.
package typoutil

// MaxStringLength guards the edit-distance computation against pathological
// inputs; beyond this we fall back to a length-difference heuristic.
const MaxStringLength = 1000

// BoundedDistance computes the Damerau-Levenshtein distance between a and b
// (insertions, deletions, substitutions and adjacent transpositions), with
// early termination once the distance provably exceeds maxDistance.
// Returns maxDistance + 1 when the actual distance exceeds maxDistance.
// Unicode-safe: operates on runes, not bytes.
func BoundedDistance(a, b string, maxDistance int) int {
	if maxDistance < 0 {
		return 0
	}

	runesA := []rune(a)
	runesB := []rune(b)
	lenA := len(runesA)
	lenB := len(runesB)

	lengthDiff := lenA - lenB
	if lengthDiff < 0 {
		lengthDiff = -lengthDiff
	}

	if lenA > MaxStringLength || lenB > MaxStringLength {
		if lengthDiff <= maxDistance {
			return lengthDiff
		}
		return maxDistance + 1
	}

	// If the lengths alone differ by more than the budget, no sequence of
	// edits within the budget can reconcile the strings.
	if lengthDiff > maxDistance {
		return maxDistance + 1
	}

	if lenA == 0 {
		return capDistance(lenB, maxDistance)
	}
	if lenB == 0 {
		return capDistance(lenA, maxDistance)
	}

	// Three rolling rows: transpositions need the row before the previous one.
	prevPrevRow := make([]int, lenB+1)
	prevRow := make([]int, lenB+1)
	currRow := make([]int, lenB+1)

	for j := 0; j <= lenB; j++ {
		prevRow[j] = j
	}

	for i := 1; i <= lenA; i++ {
		currRow[0] = i
		minInRow := i

		for j := 1; j <= lenB; j++ {
			cost := 1
			if runesA[i-1] == runesB[j-1] {
				cost = 0
			}

			deletion := prevRow[j] + 1
			insertion := currRow[j-1] + 1
			substitution := prevRow[j-1] + cost

			d := deletion
			if insertion < d {
				d = insertion
			}
			if substitution < d {
				d = substitution
			}

			if i > 1 && j > 1 &&
				runesA[i-1] == runesB[j-2] &&
				runesA[i-2] == runesB[j-1] {
				if transposition := prevPrevRow[j-2] + cost; transposition < d {
					d = transposition
				}
			}

			currRow[j] = d
			if d < minInRow {
				minInRow = d
			}
		}

		// Once every cell in a row exceeds the budget the final distance
		// cannot come back under it.
		if minInRow > maxDistance {
			return maxDistance + 1
		}

		prevPrevRow, prevRow, currRow = prevRow, currRow, prevPrevRow
	}

	return capDistance(prevRow[lenB], maxDistance)
}

// IsMatch reports whether a and b are within maxDistance edits of each other.
func IsMatch(a, b string, maxDistance int) bool {
	return BoundedDistance(a, b, maxDistance) <= maxDistance
}

func capDistance(d, maxDistance int) int {
	if d > maxDistance {
		return maxDistance + 1
	}
	return d
}
