package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mdp "github.com/ajoshpratt/MolDynPlot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rmsd = `frame,rmsd,rg
0,1,10
1,2,11
2,1,10
3,2,12
`

func writeFile(Te *testing.T, name, content string) {
	Te.Helper()
	require.NoError(Te, os.WriteFile(name, []byte(content), 0o644))
}

func TestRunOne(Te *testing.T) {
	dir := Te.TempDir()
	writeFile(Te, filepath.Join(dir, "rmsd.csv"), rmsd)
	spec := filepath.Join(dir, "spec.jsonc")
	writeFile(Te, spec, `{
		// time in ns
		"kind": "TimeSeriesDataset",
		"infile": "`+filepath.Join(dir, "rmsd.csv")+`",
		"dt": 0.5,
		"calc_pdist": true,
	}`)
	out := filepath.Join(dir, "out.csv.gz")
	var stdout, stderr bytes.Buffer
	code := run([]string{"-o", out, "--pdist", spec}, &stdout, &stderr)
	require.Equal(Te, 0, code, stderr.String())
	T, err := mdp.TableFileRead(out, nil)
	require.NoError(Te, err)
	assert.Equal(Te, []float64{0, 0.5, 1, 1.5}, T.Index())
	assert.Equal(Te, []float64{1, 2, 1, 2}, T.Col("rmsd"))
	P, err := mdp.TableFileRead(filepath.Join(dir, "out_pdist_rmsd.csv.gz"), nil)
	require.NoError(Te, err)
	assert.True(Te, P.Has("probability"))
	assert.Contains(Te, stderr.String(), "1 datasets built")
}

func TestRunSeveral(Te *testing.T) {
	dir := Te.TempDir()
	infile := filepath.Join(dir, "rmsd.csv")
	writeFile(Te, infile, rmsd)
	spec := filepath.Join(dir, "spec.json")
	writeFile(Te, spec, `[
		{"kind": "timeseries", "infile": "`+infile+`"},
		{"kind": "timeseries", "infile": "`+infile+`", "downsample": 2},
		{"kind": "timeseries", "infile": "`+infile+`"}
	]`)
	outdir := filepath.Join(dir, "out")
	var stdout, stderr bytes.Buffer
	require.Equal(Te, 0, run([]string{"--out", outdir, spec}, &stdout, &stderr), stderr.String())
	files, err := os.ReadDir(outdir)
	require.NoError(Te, err)
	//the first and the last specifications are the same dataset.
	assert.Len(Te, files, 2)
	assert.Contains(Te, stderr.String(), "2 datasets built, 1 served from the cache")
}

func TestRunKeys(Te *testing.T) {
	dir := Te.TempDir()
	spec := filepath.Join(dir, "spec.json")
	writeFile(Te, spec, `{"kind": "saxs", "infile": "/data/exp.dat"}`)
	var stdout, stderr bytes.Buffer
	require.Equal(Te, 0, run([]string{"--key", spec}, &stdout, &stderr))
	fields := strings.Fields(stdout.String())
	require.NotEmpty(Te, fields)
	assert.Len(Te, fields[0], 64)
	assert.Contains(Te, stdout.String(), `(saxs ("infile" "/data/exp.dat"))`)
}

func TestRunErrors(Te *testing.T) {
	dir := Te.TempDir()
	var stdout, stderr bytes.Buffer
	assert.Equal(Te, 2, run(nil, &stdout, &stderr))
	assert.Equal(Te, 1, run([]string{filepath.Join(dir, "nothere.json")}, &stdout, &stderr))
	spec := filepath.Join(dir, "bad.json")
	writeFile(Te, spec, `{"kind": "hdf5", "infile": "a.h5"}`)
	stderr.Reset()
	assert.Equal(Te, 1, run([]string{spec}, &stdout, &stderr))
	assert.Contains(Te, stderr.String(), "hdf5")
	writeFile(Te, spec, `"timeseries"`)
	assert.Equal(Te, 1, run([]string{spec}, &stdout, &stderr))
}

func TestPdistTable(Te *testing.T) {
	d := mdp.NewStepDistribution("native", []float64{0, 0.5, 1}, []float64{0.4, 0.6})
	T, err := pdistTable(d)
	require.NoError(Te, err)
	assert.Equal(Te, 6, T.Len())
	assert.Equal(Te, []float64{0, 0, 0.5, 0.5, 1, 1}, T.Col("native"))
	assert.Equal(Te, []float64{0, 0.4, 0.4, 0.6, 0.6, 0}, T.Col("probability"))
	assert.Equal(Te, "out_pdist_native.csv.zst", pdistName("out.csv.zst", "native"))
}
