package lexicon

// SegmentEditDistance computes the Levenshtein edit distance between two
// segment sequences.
func SegmentEditDistance(a, b []string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	// Use single-row DP to save memory.
	prev := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		cur := make([]int, lb+1)
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev = cur
	}
	return prev[lb]
}

// NormalizedEditDistance divides SegmentEditDistance by the longer length,
// giving a value in [0, 1]. Two empty sequences are at distance 0.
func NormalizedEditDistance(a, b []string) float64 {
	n := max(len(a), len(b))
	if n == 0 {
		return 0
	}
	return float64(SegmentEditDistance(a, b)) / float64(n)
}
