package mdstat

import (
	"fmt"
	"math"
	"math/cmplx"

	mdp "github.com/ajoshpratt/MolDynPlot"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

func cmplxMulConj(dst, b []complex128) {
	if len(dst) != len(b) {
		panic(fmt.Sprintf("complex conjugate multiplication of slices: Both slices should have the same len %d, %d", len(dst), len(b)))
	}
	for i, v := range b {
		dst[i] *= cmplx.Conj(v)
	}
}

func cmplxRealScale(dst []complex128, sc float64) []complex128 {
	for i, v := range dst {
		dst[i] = v * complex(sc, 0)
	}
	return dst
}

//CrossCorrMem returns the normalized cross-correlation of c1 and c2, which must have the same length n,
//for lags 0 to n-1: ret[k] is the average over i of (c1[i+k]-<c1>)(c2[i]-<c2>), divided
//by the product of the standard deviations of the series. It is computed by FFT, on series
//zero-padded to 2n. c1pad and c2pad are workspace, and are allocated if their length is not 2n.
//If a slice with len 0 is given as dst, it is used to store the result.
func CrossCorrMem(c1, c2 []float64, c1pad, c2pad []complex128, dst ...[]float64) []float64 {
	var ret []float64
	if len(dst) == 0 || len(dst[0]) > 0 { //if you give a slice, you can set the cap, but len must be 0
		ret = make([]float64, 0, len(c1))
	} else {
		ret = dst[0]
	}
	c1mean := stat.Mean(c1, nil)
	c2mean := stat.Mean(c2, nil)
	c1std := math.Sqrt(stat.PopVariance(c1, nil))
	c2std := math.Sqrt(stat.PopVariance(c2, nil))
	if len(c1pad) != 2*len(c1) {
		c1pad = make([]complex128, 2*len(c1))
	}
	if len(c2pad) != 2*len(c2) {
		c2pad = make([]complex128, 2*len(c2))
	}
	for i, v := range c1 {
		c1pad[i] = complex(v-c1mean, 0)
		c2pad[i] = complex(c2[i]-c2mean, 0)
	}
	for i := len(c1); i < len(c1pad); i++ {
		c1pad[i] = 0
		c2pad[i] = 0
	}
	f := fourier.NewCmplxFFT(len(c1pad))
	f.Coefficients(c1pad, c1pad)
	f.Coefficients(c2pad, c2pad)
	cmplxMulConj(c1pad, c2pad)
	f.Sequence(c1pad, c1pad)
	cmplxRealScale(c1pad, 1.0/float64(len(c1pad))) //normalization of the FFT
	//the second half holds the negative lags, which we don't use.
	for _, v := range c1pad[:len(c1)] {
		ret = append(ret, real(v)/(c1std*c2std)/float64(len(c1)))
	}
	return ret
}

//CrossCorr returns the normalized cross-correlation of x and y, for lags 0 to len(x)-1.
//Both series must have the same length (at least 2) and nonzero variance, and no NaNs.
func CrossCorr(x, y []float64) ([]float64, error) {
	if len(x) != len(y) {
		return nil, mdp.NewError(mdp.InvalidArgumentError, "CrossCorr", "series of different lengths %d and %d", len(x), len(y))
	}
	if len(x) < 2 {
		return nil, mdp.NewError(mdp.InvalidArgumentError, "CrossCorr", "series too short (%d points)", len(x))
	}
	for _, s := range [][]float64{x, y} {
		if len(finite(s, nil)) != len(s) {
			return nil, mdp.NewError(mdp.InvalidArgumentError, "CrossCorr", "series with missing values")
		}
		if stat.PopVariance(s, nil) == 0 {
			return nil, mdp.NewError(mdp.InvalidArgumentError, "CrossCorr", "constant series")
		}
	}
	return CrossCorrMem(x, y, nil, nil), nil
}

//AutoCorr returns the normalized autocorrelation function of x, so AutoCorr(x)[0] is 1.
func AutoCorr(x []float64) ([]float64, error) {
	r, err := CrossCorr(x, x)
	return r, mdp.ErrDecorate(err, "AutoCorr")
}
