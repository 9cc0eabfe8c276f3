package mdstat

import (
	"math"

	mdp "github.com/ajoshpratt/MolDynPlot"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

//DefaultGridPoints is the number of points of the grids built for columns without one.
const DefaultGridPoints = 100

//SequenceBandwidths are the kernel scales used by default for per-residue
//relaxation quantities.
var SequenceBandwidths = map[string]float64{
	"r1":    0.05,
	"r2":    0.4,
	"noe":   0.05,
	"r1/r2": 0.1,
}

//KDEOptions contains the options for the kernel density estimates of PDist.
//Bandwidths and grids are resolved per column: first the per-column value, then the one
//shared by all columns, then the default.
type KDEOptions struct {
	bandwidth    map[string]float64
	allBandwidth float64
	grid         map[string][]float64
	allGrid      []float64
	points       int
	skipSE       bool
	defaults     map[string]float64
}

//DefaultKDEOptions returns options for time series: the default bandwidth of each
//column is a tenth of its standard deviation.
func DefaultKDEOptions() *KDEOptions {
	O := new(KDEOptions)
	O.bandwidth = make(map[string]float64)
	O.grid = make(map[string][]float64)
	O.points = DefaultGridPoints
	return O
}

//SequenceKDEOptions returns options for per-residue tables. Default bandwidths are taken from
//SequenceBandwidths (a tenth of the standard deviation for other quantities), and rows where
//the standard error of the column is missing are skipped too.
func SequenceKDEOptions() *KDEOptions {
	O := DefaultKDEOptions()
	O.defaults = SequenceBandwidths
	O.skipSE = true
	return O
}

//Returns the bandwidth for column, and sets it to a new value, if given.
//It returns 0 if no bandwidth has been set for the column.
func (O *KDEOptions) Bandwidth(column string, bw ...float64) float64 {
	if len(bw) > 0 {
		O.bandwidth[column] = bw[0]
	}
	return O.bandwidth[column]
}

//Returns the bandwidth used for all columns without their own,
//and sets it to a new value, if given. 0 means that no such bandwidth is set.
func (O *KDEOptions) AllBandwidth(bw ...float64) float64 {
	if len(bw) > 0 {
		O.allBandwidth = bw[0]
	}
	return O.allBandwidth
}

//Returns the grid for column, and sets it to a new value, if given.
func (O *KDEOptions) Grid(column string, grid ...[]float64) []float64 {
	if len(grid) > 0 {
		O.grid[column] = grid[0]
	}
	return O.grid[column]
}

//Returns the grid used for all columns without their own,
//and sets it to a new value, if given.
func (O *KDEOptions) AllGrid(grid ...[]float64) []float64 {
	if len(grid) > 0 {
		O.allGrid = grid[0]
	}
	return O.allGrid
}

//Returns the number of points of the grids built by default, and sets it to a new
//value if a number larger than 1 is given.
func (O *KDEOptions) Points(n ...int) int {
	if len(n) > 0 && n[0] > 1 {
		O.points = n[0]
	}
	return O.points
}

//finite returns the values in v that are not NaN, considering also
//the value at the same position in se, if se is not nil.
func finite(v, se []float64) []float64 {
	ret := make([]float64, 0, len(v))
	for i, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		if se != nil && math.IsNaN(se[i]) {
			continue
		}
		ret = append(ret, f)
	}
	return ret
}

//columnBandwidth resolves the bandwidth for column, whose finite values are data.
func (O *KDEOptions) columnBandwidth(column string, data []float64) float64 {
	if bw, ok := O.bandwidth[column]; ok {
		return bw
	}
	if O.allBandwidth != 0 {
		return O.allBandwidth
	}
	if bw, ok := O.defaults[column]; ok {
		return bw
	}
	return stat.StdDev(data, nil) / 10.0
}

//columnGrid resolves the grid for column. The default grid spans the data plus one
//standard deviation at each side.
func (O *KDEOptions) columnGrid(column string, data []float64) []float64 {
	if g, ok := O.grid[column]; ok {
		return g
	}
	if O.allGrid != nil {
		return O.allGrid
	}
	std := stat.StdDev(data, nil)
	return floats.Span(make([]float64, O.points), floats.Min(data)-std, floats.Max(data)+std)
}

//ColumnPDist returns the probability distribution of the float column of T, estimated
//by placing a Gaussian kernel on each observation, and normalized so the probabilities
//over the grid sum to 1. Rows with missing values are skipped.
func ColumnPDist(T *mdp.Table, column string, O *KDEOptions) (*mdp.Distribution, error) {
	if O == nil {
		O = DefaultKDEOptions()
	}
	v := T.Col(column)
	if v == nil {
		return nil, mdp.NewError(mdp.MissingColumnError, "ColumnPDist", "no float column %s", column)
	}
	var se []float64
	if O.skipSE {
		se = T.Col(mdp.SEName(column))
	}
	data := finite(v, se)
	if len(data) < 2 {
		return nil, mdp.NewError(mdp.InvalidArgumentError, "ColumnPDist", "column %s has %d finite observations", column, len(data))
	}
	bw := O.columnBandwidth(column, data)
	if !(bw > 0) || math.IsInf(bw, 0) {
		return nil, mdp.NewError(mdp.InvalidArgumentError, "ColumnPDist", "invalid bandwidth %g for column %s", bw, column)
	}
	grid := O.columnGrid(column, data)
	if len(grid) == 0 {
		return nil, mdp.NewError(mdp.InvalidArgumentError, "ColumnPDist", "empty grid for column %s", column)
	}
	pdf := make([]float64, len(grid))
	for _, x := range data {
		kernel := distuv.Normal{Mu: x, Sigma: bw}
		for i, g := range grid {
			pdf[i] += kernel.Prob(g)
		}
	}
	total := floats.Sum(pdf)
	if !(total > 0) || math.IsInf(total, 0) {
		return nil, mdp.NewError(mdp.InvalidArgumentError, "ColumnPDist", "the density of column %s vanishes over its grid", column)
	}
	floats.Scale(1/total, pdf)
	return mdp.NewDistribution(column, grid, pdf), nil
}

//PDist returns the probability distribution of each of the given columns of T,
//in the same order, as ColumnPDist does. It fails on the first column that fails.
func PDist(T *mdp.Table, columns []string, O *KDEOptions) ([]*mdp.Distribution, error) {
	ret := make([]*mdp.Distribution, 0, len(columns))
	for _, c := range columns {
		d, err := ColumnPDist(T, c, O)
		if err != nil {
			return nil, mdp.ErrDecorate(err, "PDist")
		}
		ret = append(ret, d)
	}
	return ret, nil
}

//SEPaired returns the float columns of T that are not standard errors but
//have a standard error companion, in table order.
func SEPaired(T *mdp.Table) []string {
	ret := make([]string, 0, 4)
	for _, c := range T.FloatColumns() {
		if !mdp.IsSE(c) && T.Col(mdp.SEName(c)) != nil {
			ret = append(ret, c)
		}
	}
	return ret
}

//Quantities returns the float columns of T that are not standard errors, in table order.
func Quantities(T *mdp.Table) []string {
	ret := make([]string, 0, 4)
	for _, c := range T.FloatColumns() {
		if !mdp.IsSE(c) {
			ret = append(ret, c)
		}
	}
	return ret
}
