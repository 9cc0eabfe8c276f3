//Package mdstat implements the statistical transforms applied to time series and
//per-residue tables: downsampling, kernel density estimates of probability
//distributions, standard errors by block averaging, native contact fractions and
//FFT-based correlation functions.
package mdstat

import (
	"math"
	"sort"

	mdp "github.com/ajoshpratt/MolDynPlot"
	"gonum.org/v1/gonum/stat"
)

//Reducers for Downsample
const (
	Mean = "mean"
	Mode = "mode"
)

//Downsample reduces T by a factor k. The table is first truncated to floor(n/k)*k rows,
//(the trailing rows that don't fill a group are discarded) then each group of k
//consecutive rows is reduced to one, using the mean or the statistical mode
//of each float column, depending on reducer. The index of each new row is the
//mean of the index values of its group. Text columns are dropped.
//T is not modified.
func Downsample(T *mdp.Table, k int, reducer string) (*mdp.Table, error) {
	if k <= 0 {
		return nil, mdp.NewError(mdp.InvalidArgumentError, "Downsample", "downsampling factor must be positive, got %d", k)
	}
	var reduce func([]float64) float64
	switch reducer {
	case Mean:
		reduce = func(v []float64) float64 { return stat.Mean(v, nil) }
	case Mode:
		reduce = mode
	default:
		return nil, mdp.NewError(mdp.InvalidArgumentError, "Downsample", "downsampling mode %q not understood, must be %q or %q", reducer, Mean, Mode)
	}
	if T.Labeled() {
		return nil, mdp.NewError(mdp.InvalidArgumentError, "Downsample", "a table with a labeled index can't be downsampled")
	}
	groups := T.Len() / k
	index := T.Index()
	newindex := make([]float64, groups)
	for g := range newindex {
		newindex[g] = stat.Mean(index[g*k:(g+1)*k], nil)
	}
	R, err := mdp.NewTable(T.IndexName(), newindex)
	if err != nil {
		return nil, mdp.ErrDecorate(err, "Downsample")
	}
	for _, name := range T.FloatColumns() {
		col := T.Col(name)
		reduced := make([]float64, groups)
		for g := range reduced {
			reduced[g] = reduce(col[g*k : (g+1)*k])
		}
		R.AddCol(name, reduced)
	}
	return R, nil
}

//mode returns the most common value in v, ignoring NaNs.
//Ties go to the smallest value, as in scipy.stats.mode.
//If all the values are NaN, it returns NaN.
func mode(v []float64) float64 {
	s := make([]float64, 0, len(v))
	for _, f := range v {
		if !math.IsNaN(f) {
			s = append(s, f)
		}
	}
	if len(s) == 0 {
		return math.NaN()
	}
	sort.Float64s(s)
	best, bestcount := s[0], 0
	for i := 0; i < len(s); {
		j := i
		for j < len(s) && s[j] == s[i] {
			j++
		}
		//strictly greater, so the first (smallest) value wins ties.
		if j-i > bestcount {
			best, bestcount = s[i], j-i
		}
		i = j
	}
	return best
}
