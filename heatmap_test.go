package psm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsensusMapPanels(t *testing.T) {
	p, err := buildSimilarity(testTrace())
	require.NoError(t, err)

	panels, err := ConsensusMap(p, 2, 0)
	require.NoError(t, err)

	require.Len(t, panels, 3)
	assert.Equal(t, []string{"expr", "meth", "Overall"}, []string{panels[0].Name, panels[1].Name, panels[2].Name})

	ord, err := OrderBy(p, 2, 0)
	require.NoError(t, err)

	n := p.Observations

	for k, pn := range panels {
		cols, rows := pn.Grid.Dims()
		assert.Equal(t, n, cols)
		assert.Equal(t, n, rows)

		// all panels share the reference ordering and its ticks
		assert.Equal(t, ord.Ticks, pn.Ticks)

		// rows are flipped: the first ordered observation draws at the top
		for c := 0; c < n; c++ {
			for r := 0; r < n; r++ {
				want := p.Matrices[k].At(ord.Leaves[c], ord.Leaves[n-1-r])
				assert.Equal(t, want, pn.Grid.Z(c, r), "panel %d cell (%d,%d)", k, c, r)
			}
		}
	}
}

func TestConsensusMapPropagatesOrderingErrors(t *testing.T) {
	p, err := buildSimilarity(testTrace())
	require.NoError(t, err)

	_, err = ConsensusMap(p, 0, 0)
	assert.ErrorIs(t, err, ErrClusterCount)

	_, err = ConsensusMap(p, 2, len(p.Matrices)+1)
	assert.ErrorIs(t, err, ErrOrderIndex)
}

func TestRenderConsensusMapWritesImage(t *testing.T) {
	p, err := buildSimilarity(testTrace())
	require.NoError(t, err)

	panels, err := ConsensusMap(p, 2, 0)
	require.NoError(t, err)

	f := filepath.Join(t.TempDir(), "consensus.png")
	require.NoError(t, RenderConsensusMap(panels, f))

	fi, err := os.Stat(f)
	require.NoError(t, err)
	assert.Greater(t, fi.Size(), int64(0))
}
