package psm

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	// Columns written by the sampler before any per-dataset parameter:
	// the iteration index and the log-likelihood. Both are opaque here.
	leadingColumns = 2

	// Header prefix of the per-dataset mass parameter columns. The sampler
	// writes exactly one such column per dataset, which is how the number
	// of datasets is recovered from the header.
	massParameterPrefix = "MassParameter"
)

// Trace is the cluster-label block of a sampler trace after burn-in and
// thinning. Rows are retained iterations; columns are the Datasets blocks
// of Observations cluster labels, concatenated in header order.
type Trace struct {
	Labels       [][]float64
	Datasets     int
	Observations int
	Names        []string
}

// traceLayout locates the cluster-label block within the full column set.
type traceLayout struct {
	datasets   int
	labelStart int
}

// resolveLayout derives the column layout from a trace header. The
// cluster-label block follows the two leading columns, one mass parameter
// column per dataset, one pairwise mixing-weight column per dataset pair
// and, for a single dataset, one extra column.
func resolveLayout(header []string) (traceLayout, error) {
	var k int

	for _, h := range header {
		if strings.HasPrefix(h, massParameterPrefix) {
			k++
		}
	}

	if k == 0 {
		return traceLayout{}, shapeErrorf("no %s columns among %d header columns", massParameterPrefix, len(header))
	}

	start := leadingColumns + k + k*(k-1)/2
	if k == 1 {
		start++
	}

	if start >= len(header) {
		return traceLayout{}, shapeErrorf("header with %d columns has no cluster-label block after column %d", len(header), start)
	}

	return traceLayout{datasets: k, labelStart: start}, nil
}

// datasetNames collects the distinct prefixes before the first underscore
// of the cluster-label column names, in first-seen order.
func datasetNames(labels []string) []string {
	var (
		names []string
		seen  = make(map[string]bool)
	)

	for _, l := range labels {
		p, _, _ := strings.Cut(l, "_")
		if !seen[p] {
			seen[p] = true
			names = append(names, p)
		}
	}

	return names
}

type TraceImporter struct {
}

func NewTraceImporter() *TraceImporter {
	return &TraceImporter{}
}

// Import reads a comma-delimited sampler trace, drops the first burnin data
// rows, keeps every thin-th row of the remainder and retains only the
// cluster-label columns. Layout problems surface as *ShapeError; malformed
// numeric cells surface as parse errors.
func (im *TraceImporter) Import(file string, burnin, thin int) (*Trace, error) {
	if burnin < 0 {
		return nil, ErrBurnIn
	}

	if thin < 1 {
		return nil, ErrThinning
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))

	header, err := r.Read()
	if err != nil {
		return nil, err
	}

	layout, err := resolveLayout(header)
	if err != nil {
		return nil, err
	}

	var (
		labels = header[layout.labelStart:]
		k      = layout.datasets
	)

	if len(labels)%k != 0 {
		return nil, shapeErrorf("%d cluster-label columns cannot be split evenly across %d datasets", len(labels), k)
	}

	names := datasetNames(labels)
	if len(names) != k {
		return nil, shapeErrorf("%d dataset name prefixes in the cluster-label block, expected %d", len(names), k)
	}

	var (
		d   = make([][]float64, 0, 256)
		row int
	)

	for {
		record, err := r.Read()

		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		row++
		if row <= burnin || (row-burnin-1)%thin != 0 {
			continue
		}

		g := make([]float64, len(labels))

		for j := range g {
			v, err := strconv.ParseFloat(record[layout.labelStart+j], 64)
			if err != nil {
				return nil, err
			}
			g[j] = v
		}

		d = append(d, g)
	}

	return &Trace{
		Labels:       d,
		Datasets:     k,
		Observations: len(labels) / k,
		Names:        names,
	}, nil
}
