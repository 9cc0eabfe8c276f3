package mdstat

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	mdp "github.com/ajoshpratt/MolDynPlot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func seriesTable(Te *testing.T, cols map[string][]float64, n int) *mdp.Table {
	index := make([]float64, n)
	for i := range index {
		index[i] = float64(i)
	}
	T, err := mdp.NewTable("time", index)
	require.NoError(Te, err)
	for _, name := range []string{"a", "a_se", "b", "c"} {
		if c, ok := cols[name]; ok {
			require.NoError(Te, T.AddCol(name, c))
		}
	}
	return T
}

func TestDownsample(Te *testing.T) {
	T := seriesTable(Te, map[string][]float64{"a": {0, 1, 2, 3, 4, 5, 6, 7, 8, 9}}, 10)
	R, err := Downsample(T, 3, Mean)
	require.NoError(Te, err)
	assert.Equal(Te, 3, R.Len())
	assert.Equal(Te, []float64{1, 4, 7}, R.Index())
	assert.Equal(Te, []float64{1, 4, 7}, R.Col("a"))
	assert.Equal(Te, 10, T.Len()) //the original is left alone

	R, err = Downsample(T, 1, Mean)
	require.NoError(Te, err)
	assert.Equal(Te, T.Col("a"), R.Col("a"))

	_, err = Downsample(T, 0, Mean)
	assert.True(Te, errors.Is(err, mdp.ErrInvalidArgument))
	_, err = Downsample(T, 2, "median")
	assert.True(Te, errors.Is(err, mdp.ErrInvalidArgument))
}

func TestMode(Te *testing.T) {
	assert.Equal(Te, 2.0, mode([]float64{3, 2, 2, 3, 1}))
	assert.Equal(Te, 1.0, mode([]float64{math.NaN(), 1, 5, math.NaN()}))
	assert.True(Te, math.IsNaN(mode([]float64{math.NaN(), math.NaN()})))
	T := seriesTable(Te, map[string][]float64{"a": {1, 1, 0, 0, 1, 0}}, 6)
	R, err := Downsample(T, 3, Mode)
	require.NoError(Te, err)
	assert.Equal(Te, []float64{1, 0}, R.Col("a"))
}

func TestKDE(Te *testing.T) {
	a := []float64{1, 1.2, 0.8, 1.1, math.NaN(), 0.9, 1.3}
	b := []float64{5, 6, 5.5, 6.5, 5.2, 6.1, 5.9}
	T := seriesTable(Te, map[string][]float64{"a": a, "b": b}, len(a))
	O := DefaultKDEOptions()
	D, err := PDist(T, Quantities(T), O)
	require.NoError(Te, err)
	require.Len(Te, D, 2)
	for _, d := range D {
		assert.Len(Te, d.X, DefaultGridPoints)
		assert.InDelta(Te, 1.0, d.Total(), 1e-9)
	}
	assert.Equal(Te, "a", D[0].Name)
	O.AllGrid(floats.Span(make([]float64, 11), 0, 10))
	O.Bandwidth("b", 0.5)
	D, err = PDist(T, []string{"b"}, O)
	require.NoError(Te, err)
	assert.Len(Te, D[0].X, 11)
	assert.InDelta(Te, 1.0, D[0].Total(), 1e-9)
	//the mass concentrates around the data
	assert.Greater(Te, D[0].Y[6], D[0].Y[1])

	_, err = ColumnPDist(T, "nope", O)
	assert.True(Te, errors.Is(err, mdp.ErrMissingColumn))
	C := seriesTable(Te, map[string][]float64{"c": {2, 2, 2}}, 3)
	_, err = ColumnPDist(C, "c", nil)
	assert.True(Te, errors.Is(err, mdp.ErrInvalidArgument))
}

func TestSequenceKDE(Te *testing.T) {
	a := []float64{1, 1.2, 0.8, 1.1}
	se := []float64{0.1, math.NaN(), 0.1, 0.1}
	T := seriesTable(Te, map[string][]float64{"a": a, "a_se": se, "b": {1, 2, 3, 4}}, 4)
	assert.Equal(Te, []string{"a"}, SEPaired(T))
	assert.Equal(Te, []string{"a", "b"}, Quantities(T))
	O := SequenceKDEOptions()
	assert.Equal(Te, 0.4, O.columnBandwidth("r2", a))
	d, err := ColumnPDist(T, "a", O)
	require.NoError(Te, err)
	assert.InDelta(Te, 1.0, d.Total(), 1e-9)
}

func TestNativeContacts(Te *testing.T) {
	T, err := mdp.NewTable("frame", []float64{0, 1})
	require.NoError(Te, err)
	T.AddCol("c1", []float64{1, 6})
	T.AddCol("c2", []float64{2, 6})
	T.AddCol("c3", []float64{6, 6})
	T.AddCol("c4", []float64{6, math.NaN()})
	R, err := NativeContacts(T, DefaultCutoff)
	require.NoError(Te, err)
	assert.Equal(Te, []float64{0.5, 0.0}, R.Col(NativeContactsColumn))
	assert.Equal(Te, "time", R.IndexName())
	assert.Equal(Te, []string{NativeContactsColumn}, R.Columns())
}

func TestContactPDist(Te *testing.T) {
	d := ContactDividers(4)
	assert.Len(Te, d, 6)
	assert.InDelta(Te, -0.125, d[0], 1e-12)
	assert.InDelta(Te, 1.125, d[5], 1e-12)
	T := seriesTable(Te, nil, 4)
	T.AddCol(NativeContactsColumn, []float64{0.5, 0.5, 1, 0})
	D, err := ContactPDist(T, 4)
	require.NoError(Te, err)
	fmt.Println(D)
	assert.True(Te, D.Step())
	assert.Len(Te, D.X, 12)
	assert.Equal(Te, 0.0, D.Y[0])
	assert.Equal(Te, 0.0, D.Y[len(D.Y)-1])
	assert.InDeltaSlice(Te, []float64{0.25, 0, 0.5, 0, 0.25}, D.Masses(), 1e-12)
	assert.InDelta(Te, 1.0, D.Total(), 1e-12)
}

func ar1(n int, phi float64, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	ret := make([]float64, n)
	for i := 1; i < n; i++ {
		ret[i] = phi*ret[i-1] + r.NormFloat64()
	}
	return ret
}

func TestBlockAverage(Te *testing.T) {
	data := ar1(4096, 0.9, 1)
	B, err := BlockAverage(data, nil)
	require.NoError(Te, err)
	fmt.Println(B)
	assert.Len(Te, B.Lengths, 11) //1 to 1024
	assert.Equal(Te, 1.0, B.Lengths[0])
	assert.False(Te, math.IsNaN(B.A))
	assert.Greater(Te, B.A, 0.0)
	//correlated data has a standard error larger than the naive one
	assert.Greater(Te, B.A, B.SE[0])

	B, err = BlockAverage([]float64{3, 3, 3, 3, 3, 3, 3, 3}, nil)
	require.NoError(Te, err)
	assert.Equal(Te, 0.0, B.A)

	_, err = BlockAverage([]float64{1, 2, 3}, nil)
	assert.True(Te, errors.Is(err, mdp.ErrInvalidArgument))
}

func TestStdErr(Te *testing.T) {
	T := seriesTable(Te, map[string][]float64{"a": {1, 2, 3, 4}, "a_se": {1, 1, 1, 1}}, 4)
	se, err := StdErr(T, StdMethod, nil)
	require.NoError(Te, err)
	assert.Len(Te, se, 1)
	assert.InDelta(Te, 1.2909944, se["a"], 1e-6)

	se, err = StdErr(T, "jackknife", nil)
	assert.Nil(Te, se)
	assert.True(Te, errors.Is(err, mdp.ErrInvalidArgument))

	L := seriesTable(Te, map[string][]float64{"b": ar1(256, 0.5, 2)}, 256)
	se, err = StdErr(L, BlockMethod, DefaultBlockOptions())
	require.NoError(Te, err)
	assert.Greater(Te, se["b"], 0.0)
}

func TestAutoCorr(Te *testing.T) {
	x := make([]float64, 200)
	for i := range x {
		x[i] = math.Sin(float64(i) / 5)
	}
	r, err := AutoCorr(x)
	require.NoError(Te, err)
	assert.Len(Te, r, len(x))
	assert.InDelta(Te, 1.0, r[0], 1e-9)
	for _, v := range r {
		assert.LessOrEqual(Te, math.Abs(v), 1.0+1e-9)
	}
	_, err = CrossCorr(x, x[:10])
	assert.True(Te, errors.Is(err, mdp.ErrInvalidArgument))
	_, err = AutoCorr([]float64{1, 1, 1})
	assert.True(Te, errors.Is(err, mdp.ErrInvalidArgument))
}
