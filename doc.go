// Package psm post-processes the output of a multi-dataset Dirichlet
// mixture MCMC sampler into posterior similarity matrices and a consensus
// heatmap ordering.
//
// A sampler trace is a comma-delimited table whose header declares, per
// dataset, one mass parameter column followed by a block of cluster-label
// columns. GeneratePSM turns such a trace into one co-clustering frequency
// matrix per dataset, plus an overall consensus matrix when more than one
// dataset is present:
//
//	p, err := psm.GeneratePSM("trace.csv", 500, 2)
//	// p.Matrices[k].At(i, j) is the fraction of retained iterations in
//	// which observations i and j share a cluster in dataset k
//
// ConsensusMap clusters one of the matrices with average linkage and
// permutes the whole sequence into the resulting dendrogram leaf order, so
// heatmaps of all datasets share an axis ordering that keeps consensus
// clusters contiguous:
//
//	panels, err := psm.ConsensusMap(p, 4, 0)
//	err = psm.RenderConsensusMap(panels, "consensus.png")
package psm
