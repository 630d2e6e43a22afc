package util

// MaxPrealloc is the largest capacity reserved up front for a collection whose
// size was read from a stream. Larger collections grow while their elements are
// read, so a forged count cannot reserve memory the stream never delivers.
const MaxPrealloc = 1024

// CapacityHint returns the capacity to reserve for n announced elements
func CapacityHint(n int) int {
	return min(max(n, 0), MaxPrealloc)
}
