package dataset

import (
	"bytes"
	"errors"
	"log"
	"math"
	"sync"
	"testing"

	mdp "github.com/ajoshpratt/MolDynPlot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//memLoader serves copies of tables kept in memory, by infile.
type memLoader struct {
	mu     sync.Mutex
	tables map[string]*mdp.Table
	loads  map[string]int
}

func newMemLoader() *memLoader {
	return &memLoader{tables: make(map[string]*mdp.Table), loads: make(map[string]int)}
}

func (L *memLoader) Load(S *Spec) (*mdp.Table, error) {
	name, err := S.Str("infile", "")
	if err != nil {
		return nil, err
	}
	L.mu.Lock()
	defer L.mu.Unlock()
	L.loads[name]++
	T, ok := L.tables[name]
	if !ok {
		return nil, mdp.NewError(mdp.SourceNotFoundError, "memLoader.Load", "no table").WithFile(name)
	}
	return T.Clone(), nil
}

func testBuilder(L Loader) (*Builder, *bytes.Buffer) {
	B := NewBuilder(L, nil)
	var buf bytes.Buffer
	B.Logger(log.New(&buf, "", 0))
	return B, &buf
}

func numTable(Te *testing.T, name string, index []float64, cols ...interface{}) *mdp.Table {
	T, err := mdp.NewTable(name, index)
	require.NoError(Te, err)
	for i := 0; i < len(cols); i += 2 {
		require.NoError(Te, T.AddCol(cols[i].(string), cols[i+1].([]float64)))
	}
	return T
}

func relaxTable(Te *testing.T) *mdp.Table {
	T, err := mdp.NewLabeledTable("residue", []string{"ALA:1", "GLY:2", "SER:3"})
	require.NoError(Te, err)
	T.AddCol("r1", []float64{1.0, 1.1, 1.3})
	T.AddCol("r1_se", []float64{0.1, 0.1, 0.1})
	T.AddCol("r2", []float64{10, 11, 13})
	T.AddCol("r2_se", []float64{1, 1, 1})
	T.AddCol("noe", []float64{0.7, 0.8, 0.75})
	T.AddCol("noe_se", []float64{0.05, 0.05, 0.05})
	return T
}

func TestSequence(Te *testing.T) {
	L := newMemLoader()
	L.tables["relax.csv"] = relaxTable(Te)
	B, _ := testBuilder(L)
	S, err := NewSpec("sequence", map[string]any{"infile": "relax.csv", "use_indexes": []int{3, 1}, "calc_pdist": true})
	require.NoError(Te, err)
	D, err := B.Load(S)
	require.NoError(Te, err)
	T := D.Table
	assert.Equal(Te, []string{"ALA:1", "SER:3"}, T.Keys())
	assert.Equal(Te, []float64{1, 3}, T.Index())
	assert.Equal(Te, "residue", T.IndexName())
	assert.Equal(Te, []string{"ALA", "SER"}, T.Text(AminoAcidColumn))
	assert.Equal(Te, []float64{1, 3}, T.Col(ResIndexColumn))
	assert.InDeltaSlice(Te, []float64{0.1, 0.1}, T.Col(RatioColumn), 1e-12)
	assert.InDelta(Te, 0.1*math.Sqrt(0.01+0.01), T.Col("r1/r2_se")[0], 1e-12)
	require.Len(Te, D.PDist, 4)
	for i, n := range []string{"r1", "r2", "noe", "r1/r2"} {
		assert.Equal(Te, n, D.PDist[i].Name)
		assert.InDelta(Te, 1.0, D.PDist[i].Total(), 1e-9)
	}
	assert.NotNil(Te, D.PDistOf("noe"))

	D2, err := B.Load(S)
	require.NoError(Te, err)
	assert.Same(Te, D, D2)
	assert.Equal(Te, 1, L.loads["relax.csv"])
}

func TestSequenceSoftAndHardFailures(Te *testing.T) {
	L := newMemLoader()
	T := relaxTable(Te)
	T.Drop("r2")
	L.tables["nor2.csv"] = T
	bad, _ := mdp.NewLabeledTable("residue", []string{"ALA1", "GLY:2"})
	bad.AddCol("r1", []float64{1, 2})
	L.tables["bad.csv"] = bad
	B, logs := testBuilder(L)
	D, err := B.LoadMap(map[string]any{"kind": "SequenceDataset", "infile": "nor2.csv"})
	require.NoError(Te, err)
	assert.False(Te, D.Table.Has(RatioColumn))
	assert.Contains(Te, logs.String(), "ratio")

	_, err = B.LoadMap(map[string]any{"kind": "sequence", "infile": "bad.csv"})
	assert.True(Te, errors.Is(err, mdp.ErrInvalidArgument))
	_, err = B.LoadMap(map[string]any{"kind": "sequence", "infile": "nothere.csv"})
	assert.True(Te, errors.Is(err, mdp.ErrSourceNotFound))
	assert.Equal(Te, 1, B.Cache().Len())
}

func TestTimeSeries(Te *testing.T) {
	L := newMemLoader()
	index := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	L.tables["rmsd.csv"] = numTable(Te, "frame", index,
		"rmsd", []float64{1, 2, 1, 2, 1.5, 2.5, 1, 3, 2, 2},
		"rg", []float64{10, 11, 10, 12, 11, 10, 13, 12, 11, 10})
	B, logs := testBuilder(L)
	D, err := B.LoadMap(map[string]any{
		"kind": "timeseries", "infile": "rmsd.csv",
		"dt": 0.5, "toffset": 10, "downsample": 2, "usecols": []any{"rmsd"},
		"calc_pdist": true, "calc_error": true,
	})
	require.NoError(Te, err)
	assert.Equal(Te, 5, D.Table.Len())
	assert.Equal(Te, []string{"rmsd"}, D.Table.Columns())
	assert.InDelta(Te, 10.25, D.Table.Index()[0], 1e-12)
	assert.InDeltaSlice(Te, []float64{1.5, 1.5, 2, 2, 2}, D.Table.Col("rmsd"), 1e-12)
	require.Len(Te, D.PDist, 1)
	assert.InDelta(Te, 1.0, D.PDist[0].Total(), 1e-9)
	assert.InDelta(Te, math.Sqrt(0.075), D.SE["rmsd"], 1e-9)

	D, err = B.LoadMap(map[string]any{"kind": "timeseries", "infile": "rmsd.csv", "calc_error": true, "error_method": "bootstrap"})
	require.NoError(Te, err)
	assert.Nil(Te, D.SE)
	assert.Contains(Te, logs.String(), "error")

	_, err = B.LoadMap(map[string]any{"kind": "timeseries", "infile": "rmsd.csv", "downsample": 2, "downsample_mode": "median"})
	assert.True(Te, errors.Is(err, mdp.ErrInvalidArgument))
}

func TestNatCon(Te *testing.T) {
	L := newMemLoader()
	L.tables["nc.csv"] = numTable(Te, "frame", []float64{0, 1, 2, 3},
		"c1", []float64{1, 1, 9, 1},
		"c2", []float64{2, 2, 9, 1},
		"c3", []float64{6, 6, 9, 1},
		"c4", []float64{6, 6, 9, 1})
	B, _ := testBuilder(L)
	D, err := B.LoadMap(map[string]any{"kind": "natcon", "infile": "nc.csv", "downsample": 2})
	require.NoError(Te, err)
	//fractions 0.5, 0.5, 0, 1 reduced by their mode
	assert.Equal(Te, []float64{0.5, 0}, D.Table.Col("percent_native_contacts"))
	assert.Equal(Te, "time", D.Table.IndexName())
	require.Len(Te, D.PDist, 1)
	assert.True(Te, D.PDist[0].Step())
	assert.InDeltaSlice(Te, []float64{0.5, 0, 0.5, 0, 0}, D.PDist[0].Masses(), 1e-12)

	D, err = B.LoadMap(map[string]any{"kind": "natcon", "infile": "nc.csv", "cutoff": 0.5, "calc_pdist": false})
	require.NoError(Te, err)
	assert.Equal(Te, []float64{0, 0, 0, 0}, D.Table.Col("percent_native_contacts"))
	assert.Nil(Te, D.PDist)
}

func saxsTable(Te *testing.T, factor float64, n int) *mdp.Table {
	q := make([]float64, n)
	I := make([]float64, n)
	se := make([]float64, n)
	for i := range q {
		q[i] = 0.01 + 0.5*float64(i)/float64(n-1)
		I[i] = factor * 100 * math.Exp(-q[i]*q[i]*10)
		se[i] = factor
	}
	return numTable(Te, "q", q, "intensity", I, "intensity_se", se)
}

func TestSAXSScale(Te *testing.T) {
	L := newMemLoader()
	L.tables["exp.dat"] = saxsTable(Te, 1, 30)
	L.tables["ref.dat"] = saxsTable(Te, 3, 40)
	B, logs := testBuilder(L)
	D, err := B.LoadMap(map[string]any{"kind": "saxs", "infile": "exp.dat", "scale": 2})
	require.NoError(Te, err)
	assert.Equal(Te, 2.0, D.Scale)
	assert.InDelta(Te, 2*L.tables["exp.dat"].Col("intensity")[3], D.Table.Col("intensity")[3], 1e-9)
	assert.Equal(Te, 2.0, D.Table.Col("intensity_se")[0])

	Te.Setenv("MDP_SAXS", "ref")
	D, err = B.LoadMap(map[string]any{"kind": "SAXSExperimentDataset", "infile": "exp.dat", "scale": "$MDP_SAXS.dat"})
	require.NoError(Te, err)
	assert.InDelta(Te, 3.0, D.Scale, 1e-3)
	ref, ok := B.Cache().Get(mustKey(Te, "saxs", map[string]any{"infile": "ref.dat"}))
	assert.True(Te, ok)
	assert.Equal(Te, 1.0, ref.Scale)

	D, err = B.LoadMap(map[string]any{"kind": "saxs", "infile": "exp.dat", "scale": "missing.dat"})
	require.NoError(Te, err)
	assert.Equal(Te, 1.0, D.Scale)
	assert.Equal(Te, L.tables["exp.dat"].Col("intensity"), D.Table.Col("intensity"))
	assert.Contains(Te, logs.String(), "scale")
}

func TestSAXSTimeSeries(Te *testing.T) {
	L := newMemLoader()
	index := []float64{0, 1, 2, 3, 4, 5, 6, 7}
	L.tables["md.csv"] = numTable(Te, "time", index,
		"0.1", []float64{10, 11, 10, 12, 11, 10, 13, 12},
		"0.2", []float64{5, 6, 5.5, 6, 5, 6.5, 5, 6},
		"0.3", []float64{1, 1.5, 1, 1.2, 1.1, 1, 1.3, 1.2})
	B, _ := testBuilder(L)
	D, err := B.LoadMap(map[string]any{"kind": "saxs_timeseries", "infile": "md.csv", "scale": 2})
	require.NoError(Te, err)
	assert.Equal(Te, []float64{0.1, 0.2, 0.3}, D.Table.Index())
	assert.Equal(Te, 8, D.Series.Len())
	assert.InDelta(Te, 2*11.125, D.Table.Col("intensity")[0], 1e-9)
	se := D.Table.Col("intensity_se")
	require.Len(Te, se, 3)
	for _, v := range se {
		assert.Greater(Te, v, 0.0)
		assert.False(Te, math.IsNaN(v))
	}
	assert.Len(Te, D.Blocks, 3)

	//without the mean, the time series itself is scaled
	D, err = B.LoadMap(map[string]any{"kind": "saxs_timeseries", "infile": "md.csv", "scale": 2, "calc_mean": false, "calc_error": false})
	require.NoError(Te, err)
	assert.Nil(Te, D.Series)
	assert.Equal(Te, 8, D.Table.Len())
	assert.Equal(Te, 2.0, D.Scale)
	assert.InDeltaSlice(Te, []float64{20, 22, 20, 24, 22, 20, 26, 24}, D.Table.Col("0.1"), 1e-12)
	assert.InDeltaSlice(Te, []float64{2, 3, 2, 2.4, 2.2, 2, 2.6, 2.4}, D.Table.Col("0.3"), 1e-12)
}

func TestDiff(Te *testing.T) {
	L := newMemLoader()
	L.tables["a.dat"] = numTable(Te, "q", []float64{1, 2, 3}, "intensity", []float64{1, 2, 3}, "intensity_se", []float64{0, 0, 0})
	L.tables["b.dat"] = numTable(Te, "q", []float64{1, 2, 3}, "intensity", []float64{0, 1, 1}, "intensity_se", []float64{0, 0, 0})
	L.tables["c.dat"] = numTable(Te, "q", []float64{1, 2, 3}, "intensity", []float64{0, 1, 1})
	B, _ := testBuilder(L)
	spec := map[string]any{
		"kind":       "saxs_diff",
		"minuend":    map[string]any{"kind": "saxs", "infile": "a.dat"},
		"subtrahend": map[string]any{"kind": "saxs", "infile": "b.dat"},
	}
	D, err := B.LoadMap(spec)
	require.NoError(Te, err)
	assert.Equal(Te, []float64{1, 1, 2}, D.Table.Col("intensity"))
	assert.Equal(Te, []float64{0, 0, 0}, D.Table.Col("intensity_se"))
	//the diff and both sub-datasets are cached
	assert.Equal(Te, 3, B.Cache().Len())

	spec["subtrahend"] = map[string]any{"kind": "saxs", "infile": "c.dat"}
	_, err = B.LoadMap(spec)
	assert.True(Te, errors.Is(err, mdp.ErrIncompatibleDatasets))
	_, err = B.LoadMap(map[string]any{"kind": "diff", "minuend": map[string]any{"kind": "saxs", "infile": "a.dat"}})
	assert.True(Te, errors.Is(err, mdp.ErrConfiguration))
}

func TestCorr(Te *testing.T) {
	L := newMemLoader()
	L.tables["x.csv"] = numTable(Te, "time", []float64{0, 1, 2, 3}, "rmsd", []float64{1, 2, 3, 4}, "rg", []float64{3, 2, 1, 0})
	L.tables["y.csv"] = numTable(Te, "time", []float64{1, 2, 3, 4}, "rmsd", []float64{2, 4, 6, 8})
	L.tables["z.csv"] = numTable(Te, "time", []float64{10, 11}, "rmsd", []float64{1, 2})
	B, _ := testBuilder(L)
	D, err := B.LoadMap(map[string]any{
		"kind": "CorrDataset",
		"x_kw": map[string]any{"kind": "timeseries", "infile": "x.csv"},
		"y_kw": map[string]any{"kind": "timeseries", "infile": "y.csv"},
	})
	require.NoError(Te, err)
	require.NotNil(Te, D.Corr)
	assert.Equal(Te, []string{"rmsd:x", "rmsd:y"}, D.Table.Columns())
	assert.Equal(Te, 3, D.Table.Len())
	r, err := D.Corr.Pearson("rmsd")
	require.NoError(Te, err)
	assert.InDelta(Te, 1.0, r, 1e-12)

	D, err = B.LoadMap(map[string]any{
		"kind": "corr",
		"x":    map[string]any{"kind": "timeseries", "infile": "x.csv"},
		"y":    map[string]any{"kind": "timeseries", "infile": "z.csv"},
	})
	require.NoError(Te, err)
	assert.Equal(Te, 0, D.Table.Len())
}

func TestFileLoader(Te *testing.T) {
	S, _ := NewSpec("saxs", map[string]any{"infile": "a.h5", "address": "/a/b"})
	_, err := FileLoader{}.Load(S)
	assert.True(Te, errors.Is(err, mdp.ErrConfiguration))
	S, _ = NewSpec("saxs", map[string]any{"infile": "/nonexistent/file.csv"})
	_, err = FileLoader{}.Load(S)
	assert.True(Te, errors.Is(err, mdp.ErrSourceNotFound))
	S, _ = NewSpec("saxs", map[string]any{"infile": "a", "read_csv_kw": map[string]any{"delimiter": `\s+`, "index_col": 1, "comment": "@"}})
	O, err := ReadOptions(S)
	require.NoError(Te, err)
	assert.Equal(Te, mdp.Whitespace, O.Delimiter())
	assert.Equal(Te, 1, O.IndexCol())
	assert.Equal(Te, "@", O.Comment())
	S, _ = NewSpec("saxs", map[string]any{"infile": "a", "read_csv_kw": map[string]any{"engine": "c"}})
	_, err = ReadOptions(S)
	assert.True(Te, errors.Is(err, mdp.ErrConfiguration))
}
