package psm

// struct denoting start and end indices of the observation rows a worker
// accumulates pair frequencies for
type rangeJob struct {
	a, b int
}

/* Pick the number of accumulation workers from the observation count. The
 * pairwise loop is quadratic in the number of observations, so small
 * matrices are not worth the goroutine overhead. */
func numWorkers(n int) int {
	if n < 64 {
		return 1
	} else if n < 256 {
		return 4
	}

	return 8
}
