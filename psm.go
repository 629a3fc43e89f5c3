package psm

import (
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// OverallName is the display name of the consensus matrix appended when a
// trace covers more than one dataset.
const OverallName = "Overall"

// PosteriorSimilarity is an ordered sequence of square co-clustering
// frequency matrices, one per dataset, plus the overall consensus matrix
// when more than one dataset is present. Every matrix is symmetric with
// unit diagonal and entries in [0, 1]. Names parallels Matrices.
//
// The sequence is built once by GeneratePSM and read-only afterwards.
type PosteriorSimilarity struct {
	Matrices     []*mat.SymDense
	Names        []string
	Datasets     int
	Observations int
}

// GeneratePSM reads a sampler trace, discards the first burnin iterations,
// keeps every thin-th iteration of the remainder and accumulates the
// posterior similarity matrices of its datasets.
func GeneratePSM(file string, burnin, thin int) (*PosteriorSimilarity, error) {
	tr, err := NewTraceImporter().Import(file, burnin, thin)
	if err != nil {
		return nil, err
	}

	return buildSimilarity(tr)
}

func buildSimilarity(tr *Trace) (*PosteriorSimilarity, error) {
	if len(tr.Labels) == 0 {
		return nil, ErrEmptyTrace
	}

	p := &PosteriorSimilarity{
		Matrices:     make([]*mat.SymDense, tr.Datasets),
		Names:        make([]string, 0, tr.Datasets+1),
		Datasets:     tr.Datasets,
		Observations: tr.Observations,
	}

	p.Names = append(p.Names, tr.Names...)

	for k := range p.Matrices {
		p.Matrices[k] = mat.NewSymDense(tr.Observations, nil)
	}

	/* The pairwise frequency loop is split into row blocks handed to a
	 * fixed set of workers. Every (dataset, i, j) entry is written exactly
	 * once and blocks are disjoint, so no locking is needed. */
	var (
		s = numWorkers(tr.Observations)
		f = tr.Observations / s
		j = make(chan rangeJob, s)
		w sync.WaitGroup
	)

	w.Add(s)

	for i := 0; i < s; i++ {
		go func() {
			defer w.Done()

			for r := range j {
				accumulate(tr, p.Matrices, r)
			}
		}()
	}

	for i := 0; i < s; i++ {
		b := (i + 1) * f
		if i == s-1 {
			b = tr.Observations
		}

		j <- rangeJob{a: i * f, b: b}
	}

	close(j)
	w.Wait()

	if tr.Datasets > 1 {
		p.Matrices = append(p.Matrices, consensus(p.Matrices, tr.Observations))
		p.Names = append(p.Names, OverallName)
	}

	return p, nil
}

// accumulate fills rows [a, b) of every dataset's similarity matrix with
// the fraction of iterations in which each observation pair shares a
// cluster label. Diagonal entries are set to 1 explicitly, as the pairwise
// loop never visits them.
func accumulate(tr *Trace, ms []*mat.SymDense, r rangeJob) {
	iters := float64(len(tr.Labels))

	for k := 0; k < tr.Datasets; k++ {
		off := k * tr.Observations

		for i := r.a; i < r.b; i++ {
			ms[k].SetSym(i, i, 1)

			for j := i + 1; j < tr.Observations; j++ {
				var c float64

				for _, row := range tr.Labels {
					if row[off+i] == row[off+j] {
						c++
					}
				}

				ms[k].SetSym(i, j, c/iters)
			}
		}
	}
}

// consensus is the unweighted elementwise mean of the per-dataset matrices.
// The diagonal is forced back to exactly 1 afterwards, fixing both the
// convention and any floating-point drift from averaging.
func consensus(ms []*mat.SymDense, n int) *mat.SymDense {
	c := mat.NewSymDense(n, nil)
	data := c.RawSymmetric().Data

	for _, m := range ms {
		floats.Add(data, m.RawSymmetric().Data)
	}

	floats.Scale(1/float64(len(ms)), data)

	for i := 0; i < n; i++ {
		c.SetSym(i, i, 1)
	}

	return c
}
