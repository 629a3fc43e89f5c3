package psm

import (
	"gonum.org/v1/gonum/mat"
)

// merge records one agglomeration step. Leaves carry ids 0..n-1; the node
// created by step m carries id n+m. The left child is always the subtree
// holding the smaller original observation index.
type merge struct {
	left, right int
	height      float64
}

// averageLinkage builds the UPGMA merge tree of a dissimilarity matrix. At
// every step the two active clusters with the smallest average pairwise
// dissimilarity are joined, with the Lance-Williams update on a working
// copy of the matrix.
//
// Average-linkage merges are not uniquely ordered under ties, so ties are
// broken towards the pair containing the smallest original observation
// index, then the smaller opposing index. The tree is therefore
// reproducible for any input.
func averageLinkage(d *mat.SymDense) []merge {
	n := d.SymmetricDim()

	var (
		// dist holds distances between active cluster slots; size, id and
		// low hold each slot's leaf count, node id and smallest leaf.
		dist = make([][]float64, n)
		size = make([]int, n)
		id   = make([]int, n)
		low  = make([]int, n)
	)

	for i := 0; i < n; i++ {
		dist[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			dist[i][j] = d.At(i, j)
		}

		size[i] = 1
		id[i] = i
		low[i] = i
	}

	var (
		merges = make([]merge, 0, n-1)
		active = n
	)

	for step := 0; step < n-1; step++ {
		var (
			x, y = -1, -1
			best float64
		)

		for i := 0; i < active; i++ {
			for j := i + 1; j < active; j++ {
				h := dist[i][j]
				if x < 0 || h < best || (h == best && pairBefore(low, i, j, x, y)) {
					best = h
					x, y = i, j
				}
			}
		}

		left, right := id[x], id[y]
		if low[y] < low[x] {
			left, right = right, left
		}

		merges = append(merges, merge{left: left, right: right, height: best})

		// fold slot y into slot x with the average-linkage update
		sx, sy := float64(size[x]), float64(size[y])
		for k := 0; k < active; k++ {
			if k == x || k == y {
				continue
			}

			m := (sx*dist[x][k] + sy*dist[y][k]) / (sx + sy)
			dist[x][k] = m
			dist[k][x] = m
		}

		size[x] += size[y]
		id[x] = n + step
		if low[y] < low[x] {
			low[x] = low[y]
		}

		// retire slot y by moving the last active slot into it
		last := active - 1
		if y != last {
			for k := 0; k < active; k++ {
				dist[y][k] = dist[last][k]
				dist[k][y] = dist[k][last]
			}
			dist[y][y] = 0

			size[y] = size[last]
			id[y] = id[last]
			low[y] = low[last]
		}

		active--
	}

	return merges
}

// pairBefore reports whether the cluster pair in slots (i, j) precedes the
// pair in slots (x, y) under the deterministic tie-break: compare the
// smaller of the two clusters' minimum leaves first, then the larger.
func pairBefore(low []int, i, j, x, y int) bool {
	a, b := low[i], low[j]
	if b < a {
		a, b = b, a
	}

	c, d := low[x], low[y]
	if d < c {
		c, d = d, c
	}

	if a != c {
		return a < c
	}

	return b < d
}

// leafOrder reads the dendrogram leaves left to right, visiting every left
// subtree before its sibling.
func leafOrder(merges []merge, n int) []int {
	order := make([]int, 0, n)

	if n == 1 {
		return append(order, 0)
	}

	stack := []int{n + len(merges) - 1}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if id < n {
			order = append(order, id)
			continue
		}

		m := merges[id-n]

		// push the right child first so the left is visited first
		stack = append(stack, m.right, m.left)
	}

	return order
}
