package compare

// SharedSamples resolves, once per stream pair, the samples present in both
// streams. The returned index slices satisfy
// names1[idx1[k]] == names2[idx2[k]] == shared[k], ordered stably by the
// first stream's sample order. A non-nil allow-list restricts the result.
func SharedSamples(names1, names2 []string, allow []string) (idx1, idx2 []int, shared []string) {
	pos2 := make(map[string]int, len(names2))
	for i, name := range names2 {
		pos2[name] = i
	}

	var keep map[string]bool
	if allow != nil {
		keep = make(map[string]bool, len(allow))
		for _, name := range allow {
			keep[name] = true
		}
	}

	for i, name := range names1 {
		j, ok := pos2[name]
		if !ok || (keep != nil && !keep[name]) {
			continue
		}
		idx1 = append(idx1, i)
		idx2 = append(idx2, j)
		shared = append(shared, name)
	}

	return idx1, idx2, shared
}
