package processors

// Similarity computes the Ratcliff/Obershelp ratio between two strings:
// 2*M/T where M is the total size of the longest matching blocks found
// recursively and T is the combined length. This is the measure behind
// Python's difflib, which the legacy mapping engine used with a 0.6
// cutoff, so existing mapping behavior carries over unchanged. The
// ratio is in [0,1]; identical strings score 1, disjoint strings 0.
//
// difflib's autojunk heuristic only activates on inputs of 200+
// characters; transaction descriptions never get there, so it is
// deliberately not implemented.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}

	b2j := make(map[rune][]int, len(rb))
	for j, c := range rb {
		b2j[c] = append(b2j[c], j)
	}

	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(ra), 0, len(rb)}}
	matched := 0
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		besti, bestj, bestk := findLongestMatch(ra, b2j, s.alo, s.ahi, s.blo, s.bhi)
		if bestk > 0 {
			matched += bestk
			queue = append(queue,
				span{s.alo, besti, s.blo, bestj},
				span{besti + bestk, s.ahi, bestj + bestk, s.bhi})
		}
	}

	return 2 * float64(matched) / float64(total)
}

// findLongestMatch locates the longest block of a[alo:ahi] that also
// appears in b[blo:bhi], preferring the earliest such block. b2j indexes
// every rune of b to its positions.
func findLongestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) (besti, bestj, bestk int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestk
}
