package capture

// Similarity computes a deterministic byte-level similarity score between
// two image buffers as a percentage in [0, 100]. Identical buffers score
// 100; an empty buffer on either side scores 0 so an unreadable capture
// can never be mistaken for "unchanged" and silently starve analysis.
//
// The metric counts bytes that are equal at equal offsets and divides by
// the longer length, so it is symmetric and monotonic in raw byte
// difference. It makes no perceptual claims; two re-encodings of the
// same screen may score low.
func Similarity(a, b []byte) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	shorter, longer := len(a), len(b)
	if shorter > longer {
		shorter, longer = longer, shorter
	}

	matching := 0
	for i := 0; i < shorter; i++ {
		if a[i] == b[i] {
			matching++
		}
	}

	return float64(matching) * 100 / float64(longer)
}

// ShouldSkip reports whether a capture scoring sim against the previous
// one should bypass classification given the configured threshold.
// A threshold of zero disables skipping entirely.
func ShouldSkip(sim, threshold float64) bool {
	return threshold > 0 && sim >= threshold
}
