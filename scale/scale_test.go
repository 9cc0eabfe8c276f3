package scale

import (
	"errors"
	"math"
	"testing"

	mdp "github.com/ajoshpratt/MolDynPlot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saxsCurve(Te *testing.T, q []float64, factor float64, se bool) *mdp.Table {
	T, err := mdp.NewTable("q", q)
	require.NoError(Te, err)
	I := make([]float64, len(q))
	S := make([]float64, len(q))
	for i, v := range q {
		I[i] = factor * math.Exp(-v*v) * 100
		S[i] = factor * 0.5
	}
	require.NoError(Te, T.AddCol("intensity", I))
	if se {
		require.NoError(Te, T.AddCol("intensity_se", S))
	}
	return T
}

func span(a, b float64, n int) []float64 {
	ret := make([]float64, n)
	for i := range ret {
		ret[i] = a + (b-a)*float64(i)/float64(n-1)
	}
	return ret
}

func TestNumericScale(Te *testing.T) {
	T := saxsCurve(Te, []float64{0.1, 0.2}, 1, true)
	I := append([]float64(nil), T.Col("intensity")...)
	f, err := Scale(T, 2.0, nil, nil)
	require.NoError(Te, err)
	assert.Equal(Te, 2.0, f)
	assert.InDelta(Te, 2*I[1], T.Col("intensity")[1], 1e-12)
	assert.InDelta(Te, 1.0, T.Col("intensity_se")[0], 1e-12)
	f, err = Scale(T, 3, nil, nil)
	require.NoError(Te, err)
	assert.Equal(Te, 3.0, f)
}

func TestBadTargets(Te *testing.T) {
	T := saxsCurve(Te, []float64{0.1, 0.2}, 1, false)
	I := append([]float64(nil), T.Col("intensity")...)
	f, err := Scale(T, true, nil, nil)
	assert.Equal(Te, 1.0, f)
	assert.True(Te, errors.Is(err, mdp.ErrInvalidArgument))
	f, err = Scale(T, []float64{1}, nil, nil)
	assert.Equal(Te, 1.0, f)
	assert.True(Te, errors.Is(err, mdp.ErrInvalidArgument))
	missing := func(path string) (*mdp.Table, error) {
		return nil, mdp.NewError(mdp.SourceNotFoundError, "", "no such file").WithFile(path)
	}
	Te.Setenv("MDP_SCALE_TEST", "/nonexistent")
	var got string
	f, err = Scale(T, "$MDP_SCALE_TEST/ref.dat", func(p string) (*mdp.Table, error) {
		got = p
		return missing(p)
	}, nil)
	assert.Equal(Te, "/nonexistent/ref.dat", got)
	assert.Equal(Te, 1.0, f)
	assert.True(Te, errors.Is(err, mdp.ErrSourceNotFound))
	assert.Equal(Te, I, T.Col("intensity"))
	_, err = Scale(T, -1.0, nil, nil)
	assert.True(Te, errors.Is(err, mdp.ErrInvalidArgument))
}

func TestFit(Te *testing.T) {
	ref := saxsCurve(Te, span(0.01, 0.5, 50), 3, true)
	work := saxsCurve(Te, span(0, 0.6, 37), 1, false)
	F, err := Fit(work, ref, nil)
	require.NoError(Te, err)
	assert.InDelta(Te, 3.0, F.Factor, 1e-4)
	for _, q := range F.Q {
		assert.True(Te, q > 0.01 && q < 0.5)
	}
	assert.NotNil(Te, F.RefSE)
	assert.Equal(Te, 1.0, work.Col("intensity")[0]/100) //Fit does not scale

	f, err := Scale(work, "ref", func(string) (*mdp.Table, error) { return ref, nil }, nil)
	require.NoError(Te, err)
	assert.InDelta(Te, 3.0, f, 1e-4)
	assert.InDelta(Te, 300.0, work.Col("intensity")[0], 1e-2)
}

func TestFitLinearAndDisjoint(Te *testing.T) {
	ref := saxsCurve(Te, []float64{0.1, 0.2, 0.3}, 2, false)
	work := saxsCurve(Te, []float64{0.15, 0.2, 0.25}, 1, false)
	F, err := Fit(work, ref, nil)
	require.NoError(Te, err)
	assert.Equal(Te, 3, F.Points())
	assert.Nil(Te, F.RefSE)
	assert.InDelta(Te, 2.0, F.Factor, 0.05)

	far := saxsCurve(Te, []float64{1, 2, 3}, 1, false)
	_, err = Fit(far, ref, nil)
	assert.True(Te, errors.Is(err, mdp.ErrIncompatibleDatasets))

	O := DefaultOptions()
	O.Column("saxs")
	_, err = Fit(work, ref, O)
	assert.True(Te, errors.Is(err, mdp.ErrIncompatibleDatasets))
}
