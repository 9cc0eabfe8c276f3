package mdstat

import (
	"fmt"
	"math"

	mdp "github.com/ajoshpratt/MolDynPlot"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

//Methods for StdErr
const (
	StdMethod   = "std"
	BlockMethod = "block"
)

//BlockOptions contains the options for BlockAverage.
type BlockOptions struct {
	minBlocks int
	cpoints   int
}

//DefaultBlockOptions returns options requiring at least 4 blocks per blocking.
func DefaultBlockOptions() *BlockOptions {
	return &BlockOptions{minBlocks: 4, cpoints: 200}
}

//Returns the minimum number of blocks a blocking must have in order to be used,
//and sets it to a new value, if a value larger than 1 is given.
func (O *BlockOptions) MinBlocks(n ...int) int {
	if len(n) > 0 && n[0] > 1 {
		O.minBlocks = n[0]
	}
	return O.minBlocks
}

//BlockResult contains the standard error of the mean obtained for each block length,
//and the parameters of the fit se(x) = A - B*exp(-C*x) to it, where x is the block length.
//A, the value to which the standard error converges for long blocks, is the
//estimated standard error of the mean of the series.
type BlockResult struct {
	Lengths []float64
	SE      []float64
	SESE    []float64 //standard error of each SE
	A, B, C float64
}

func (B *BlockResult) String() string {
	return fmt.Sprintf("Block averaging: %d blockings, se(x) = %g - %g*exp(-%g*x)", len(B.Lengths), B.A, B.B, B.C)
}

//blocking returns the standard error of the mean of data, computed from the means of
//consecutive blocks of length bl, and the standard error of that estimate. Trailing points
//that don't fill a block are not used.
func blocking(data []float64, bl int) (float64, float64) {
	nb := len(data) / bl
	means := make([]float64, nb)
	for i := range means {
		means[i] = stat.Mean(data[i*bl:(i+1)*bl], nil)
	}
	se := stat.StdDev(means, nil) / math.Sqrt(float64(nb))
	return se, se / math.Sqrt(2*float64(nb-1))
}

//BlockAverage estimates the standard error of the mean of a correlated series by the
//Flyvbjerg-Petersen blocking method. The series is divided in blocks of length
//1, 2, 4... as long as at least MinBlocks blocks fit, and the standard error of the mean
//is computed from the block means for each length. The standard error grows with
//the block length until blocks are longer than the correlation time of the series, and
//then stays constant. The plateau is extrapolated by fitting an exponential.
//NaNs in data are ignored.
func BlockAverage(data []float64, O *BlockOptions) (*BlockResult, error) {
	if O == nil {
		O = DefaultBlockOptions()
	}
	data = finite(data, nil)
	if len(data) < 2*O.minBlocks {
		return nil, mdp.NewError(mdp.InvalidArgumentError, "BlockAverage", "%d points are not enough for blocking with at least %d blocks", len(data), O.minBlocks)
	}
	R := new(BlockResult)
	for bl := 1; len(data)/bl >= O.minBlocks; bl *= 2 {
		se, sese := blocking(data, bl)
		R.Lengths = append(R.Lengths, float64(bl))
		R.SE = append(R.SE, se)
		R.SESE = append(R.SESE, sese)
	}
	maxse := floats.Max(R.SE)
	if maxse == 0 {
		//a constant series
		return R, nil
	}
	if len(R.Lengths) < 3 {
		//Not enough blockings to fit 3 parameters. The last one is as close
		//to the plateau as we can get.
		R.A = R.SE[len(R.SE)-1]
		return R, nil
	}
	w := fitWeights(R.SESE)
	a, b, c, chi2 := expGridFit(R.Lengths, R.SE, w, O.cpoints)
	if math.IsNaN(chi2) {
		R.A = R.SE[len(R.SE)-1]
		return R, nil
	}
	a, b, c = expRefine(R.Lengths, R.SE, w, a, b, c, chi2, maxse)
	R.A, R.B, R.C = a, b, c
	return R, nil
}

//fitWeights returns 1/sese^2. Zero standard errors get the largest weight found.
func fitWeights(sese []float64) []float64 {
	w := make([]float64, len(sese))
	maxw := 0.0
	for i, s := range sese {
		if s > 0 {
			w[i] = 1 / (s * s)
			maxw = math.Max(maxw, w[i])
		}
	}
	if maxw == 0 {
		maxw = 1
	}
	for i, s := range sese {
		if !(s > 0) {
			w[i] = maxw
		}
	}
	return w
}

func expModel(x, a, b, c float64) float64 {
	return a - b*math.Exp(-c*x)
}

func chiSquare(x, y, w []float64, a, b, c float64) float64 {
	var chi2 float64
	for i := range x {
		r := y[i] - expModel(x[i], a, b, c)
		chi2 += w[i] * r * r
	}
	return chi2
}

//linearFit solves the weighted least squares problem for a and b with c fixed.
func linearFit(x, y, w []float64, c float64) (float64, float64, error) {
	X := mat.NewDense(len(x), 2, nil)
	Y := mat.NewVecDense(len(x), nil)
	for i := range x {
		sw := math.Sqrt(w[i])
		X.Set(i, 0, sw)
		X.Set(i, 1, -sw*math.Exp(-c*x[i]))
		Y.SetVec(i, sw*y[i])
	}
	var p mat.VecDense
	if err := p.SolveVec(X, Y); err != nil {
		return 0, 0, err
	}
	return p.AtVec(0), p.AtVec(1), nil
}

//expGridFit scans the rate c over a logarithmic grid spanning the block lengths,
//fitting a and b linearly for each, and returns the best parameters and their
//chi square (NaN if no fit was possible).
func expGridFit(x, y, w []float64, points int) (a, b, c, chi2 float64) {
	chi2 = math.NaN()
	cmin := math.Log(0.01 / floats.Max(x))
	cmax := math.Log(10 / floats.Min(x))
	grid := floats.Span(make([]float64, points), cmin, cmax)
	for _, lc := range grid {
		tc := math.Exp(lc)
		ta, tb, err := linearFit(x, y, w, tc)
		if err != nil || math.IsNaN(ta) || math.IsNaN(tb) {
			continue
		}
		tchi2 := chiSquare(x, y, w, ta, tb, tc)
		if math.IsNaN(chi2) || tchi2 < chi2 {
			a, b, c, chi2 = ta, tb, tc, tchi2
		}
	}
	return a, b, c, chi2
}

//expRefine polishes the grid fit with Nelder-Mead. The refined parameters are only
//kept if they improve the fit and give a sensible plateau.
func expRefine(x, y, w []float64, a, b, c, chi2, maxse float64) (float64, float64, float64) {
	p := optimize.Problem{
		Func: func(q []float64) float64 {
			return chiSquare(x, y, w, q[0], q[1], math.Exp(q[2]))
		},
	}
	res, err := optimize.Minimize(p, []float64{a, b, math.Log(c)}, nil, &optimize.NelderMead{})
	if err != nil || res == nil {
		return a, b, c
	}
	ra, rb, rc := res.X[0], res.X[1], math.Exp(res.X[2])
	if !(res.F < chi2) || floats.HasNaN(res.X) || math.IsInf(rc, 0) || ra < 0 || ra > 10*maxse {
		return a, b, c
	}
	return ra, rb, rc
}

//StdErr returns the standard error of each quantity (float column that is not
//a standard error) in T. With method "std" it is the sample standard deviation of the
//column, with "block", the plateau obtained by BlockAverage, using the options in O.
//Unknown methods give an InvalidArgumentError and a nil map.
func StdErr(T *mdp.Table, method string, O *BlockOptions) (map[string]float64, error) {
	cols := Quantities(T)
	ret := make(map[string]float64, len(cols))
	switch method {
	case StdMethod:
		for _, c := range cols {
			ret[c] = stat.StdDev(finite(T.Col(c), nil), nil)
		}
	case BlockMethod:
		for _, c := range cols {
			B, err := BlockAverage(T.Col(c), O)
			if err != nil {
				return nil, mdp.ErrDecorate(err, "StdErr")
			}
			ret[c] = B.A
		}
	default:
		return nil, mdp.NewError(mdp.InvalidArgumentError, "StdErr", "error_method %q not understood, must be one of %q, %q", method, StdMethod, BlockMethod)
	}
	return ret, nil
}
