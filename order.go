package psm

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Ordering is the observation ordering derived from a consensus
// dendrogram. Leaves is the permutation of 0..n-1 read off the dendrogram
// left to right; Rank is its inverse; Ticks holds the between-cell
// boundary positions of the flat clusters, one per cluster, ascending.
//
// Boundaries sit half a cell below the first observation of each cluster,
// so with cells centered on integer positions the first tick is always
// -0.5.
type Ordering struct {
	Leaves []int
	Rank   []int
	Ticks  []float64
}

// OrderBy runs average-linkage clustering on the dissimilarity matrix
// 1 - s of the chosen similarity matrix and cuts the tree into nclust flat
// clusters. orderby is 1-based into the matrix sequence; 0 selects the
// last matrix, which is the overall consensus when more than one dataset
// is present.
//
// The resulting leaf order is shared by every matrix in the sequence, so
// heatmaps of all datasets stay comparable along a common axis.
func OrderBy(p *PosteriorSimilarity, nclust, orderby int) (*Ordering, error) {
	if nclust < 1 || nclust > p.Observations {
		return nil, ErrClusterCount
	}

	if orderby < 0 || orderby > len(p.Matrices) {
		return nil, ErrOrderIndex
	}

	ref := len(p.Matrices) - 1
	if orderby > 0 {
		ref = orderby - 1
	}

	n := p.Observations

	// dissimilarity; the zero diagonal follows from the unit similarity
	// diagonal
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d.SetSym(i, j, 1-p.Matrices[ref].At(i, j))
		}
	}

	merges := averageLinkage(d)
	leaves := leafOrder(merges, n)

	rank := make([]int, n)
	for pos, i := range leaves {
		rank[i] = pos
	}

	return &Ordering{
		Leaves: leaves,
		Rank:   rank,
		Ticks:  cutTicks(merges, leaves, n, nclust),
	}, nil
}

// cutTicks cuts the merge tree after n-nclust steps and returns the leaf
// order position at which each of the resulting flat clusters begins,
// offset onto the cell boundary below it. Flat clusters are dendrogram
// subtrees, so each occupies a contiguous run of the leaf order.
func cutTicks(merges []merge, leaves []int, n, nclust int) []float64 {
	applied := n - nclust

	parent := make([]int, n+applied)
	for i := range parent {
		parent[i] = i
	}

	for m := 0; m < applied; m++ {
		parent[merges[m].left] = n + m
		parent[merges[m].right] = n + m
	}

	root := func(i int) int {
		for parent[i] != i {
			i = parent[i]
		}
		return i
	}

	first := make(map[int]int, nclust)
	for pos, leaf := range leaves {
		r := root(leaf)
		if _, ok := first[r]; !ok {
			first[r] = pos
		}
	}

	ticks := make([]float64, 0, nclust)
	for _, pos := range first {
		ticks = append(ticks, float64(pos)-0.5)
	}

	sort.Float64s(ticks)

	return ticks
}
