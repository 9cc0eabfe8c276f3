/*
 * scale.go, part of moldynplot.
 *
 * Copyright 2016 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package scale brings scattering intensity curves to a common scale, either by a
//given factor or by a least squares fit against a reference curve.
package scale

import (
	"math"
	"os"
	"sort"

	mdp "github.com/ajoshpratt/MolDynPlot"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"
)

//DefaultColumn is the column scaled by default.
const DefaultColumn = "intensity"

//Options contains the options for the scale fit.
type Options struct {
	column string
}

//DefaultOptions returns the default options, which scale the "intensity" column.
func DefaultOptions() *Options {
	return &Options{column: DefaultColumn}
}

//Returns the name of the column to be scaled, and sets it to a new value, if a non-empty
//one is given. The column's standard error, if present, is scaled with it.
func (O *Options) Column(name ...string) string {
	if len(name) > 0 && name[0] != "" {
		O.column = name[0]
	}
	return O.column
}

//FitResult contains the outcome of a scale fit.
type FitResult struct {
	Factor float64
	Q      []float64 //the points of the working curve used in the fit
	Work   []float64 //working intensities at Q
	Ref    []float64 //reference intensities, interpolated at Q
	RefSE  []float64 //interpolated reference standard errors, nil if not available
}

//Number of points used in the fit.
func (F *FitResult) Points() int {
	return len(F.Q)
}

//ResolveFunc loads the reference table named by path.
type ResolveFunc func(path string) (*mdp.Table, error)

//Scale scales the working curve in T in place, and returns the factor used.
//The target may be a number, which is used directly as the factor, or the path to
//a reference curve, which is loaded with resolve and fitted with Fit. Environment
//variables in the path are expanded.
//If the reference can not be loaded, or the target has any other type, an error is
//returned together with a factor of 1, and T is not modified.
func Scale(T *mdp.Table, target any, resolve ResolveFunc, O *Options) (float64, error) {
	if O == nil {
		O = DefaultOptions()
	}
	var factor float64
	switch t := target.(type) {
	case bool:
		return 1, mdp.NewError(mdp.InvalidArgumentError, "Scale", "scale can't be a boolean")
	case string:
		path := os.ExpandEnv(t)
		if resolve == nil {
			return 1, mdp.NewError(mdp.ConfigurationError, "Scale", "no way to load the reference %s", path)
		}
		ref, err := resolve(path)
		if err != nil {
			return 1, mdp.ErrDecorate(err, "Scale")
		}
		F, err := Fit(T, ref, O)
		if err != nil {
			return 1, mdp.ErrDecorate(err, "Scale")
		}
		factor = F.Factor
	default:
		f, ok := number(target)
		if !ok {
			return 1, mdp.NewError(mdp.InvalidArgumentError, "Scale", "scale of type %T not understood", target)
		}
		factor = f
	}
	if err := Apply(T, factor, O); err != nil {
		return 1, mdp.ErrDecorate(err, "Scale")
	}
	return factor, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

//Apply multiplies the scaled column of T, and its standard error, by factor, in place.
func Apply(T *mdp.Table, factor float64, O *Options) error {
	if O == nil {
		O = DefaultOptions()
	}
	if math.IsNaN(factor) || factor < 0 || math.IsInf(factor, 0) {
		return mdp.NewError(mdp.InvalidArgumentError, "Apply", "invalid scale factor %g", factor)
	}
	if T.Col(O.column) == nil {
		return mdp.NewError(mdp.MissingColumnError, "Apply", "no column %s to scale", O.column)
	}
	T.ScaleCols(factor, O.column, mdp.SEName(O.column))
	return nil
}

//curve returns the finite points of column in T, sorted by index value.
//se is nil if T has no usable standard error for the column.
func curve(T *mdp.Table, column string) (q, y, se []float64) {
	col := T.Col(column)
	secol := T.Col(mdp.SEName(column))
	idx := T.Index()
	rows := make([]int, 0, T.Len())
	for i, v := range col {
		if !math.IsNaN(v) && !math.IsNaN(idx[i]) {
			rows = append(rows, i)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return idx[rows[i]] < idx[rows[j]] })
	q = make([]float64, len(rows))
	y = make([]float64, len(rows))
	if secol != nil {
		se = make([]float64, len(rows))
	}
	for i, r := range rows {
		q[i] = idx[r]
		y[i] = col[r]
		if se != nil {
			se[i] = secol[r]
			if math.IsNaN(se[i]) {
				se = nil
			}
		}
	}
	return q, y, se
}

//predictor interpolates (x, y), with a not-a-knot cubic spline, or linearly
//if there are fewer than 4 points.
func predictor(x, y []float64) (interp.Predictor, error) {
	if len(x) >= 4 {
		nc := new(interp.NotAKnotCubic)
		if err := nc.Fit(x, y); err == nil {
			return nc, nil
		}
	}
	pl := new(interp.PiecewiseLinear)
	if err := pl.Fit(x, y); err != nil {
		return nil, err
	}
	return pl, nil
}

//Fit finds the factor a that minimizes the squared differences between a*work and ref,
//where ref is interpolated onto the index values of work that lie strictly inside
//the range of the index of ref. The differences are weighted by 1/se^2, where se is
//the interpolated standard error of ref, if ref has one. Both tables need a numeric index
//(q) and the scaled column. work is not modified.
func Fit(work, ref *mdp.Table, O *Options) (*FitResult, error) {
	if O == nil {
		O = DefaultOptions()
	}
	for _, t := range []*mdp.Table{work, ref} {
		if t.Labeled() {
			return nil, mdp.NewError(mdp.InvalidArgumentError, "Fit", "curves need a numeric index")
		}
		if t.Col(O.column) == nil {
			return nil, mdp.NewError(mdp.IncompatibleDatasetsError, "Fit", "no column %s", O.column)
		}
	}
	rq, ry, rse := curve(ref, O.column)
	if len(rq) < 2 {
		return nil, mdp.NewError(mdp.IncompatibleDatasetsError, "Fit", "reference with %d points", len(rq))
	}
	wq, wy, _ := curve(work, O.column)
	F := new(FitResult)
	for i, q := range wq {
		if q > rq[0] && q < rq[len(rq)-1] {
			F.Q = append(F.Q, q)
			F.Work = append(F.Work, wy[i])
		}
	}
	if len(F.Q) == 0 {
		return nil, mdp.NewError(mdp.IncompatibleDatasetsError, "Fit", "the curves don't overlap")
	}
	p, err := predictor(rq, ry)
	if err != nil {
		return nil, mdp.WrapError(mdp.InvalidArgumentError, "Fit", err, "can't interpolate the reference")
	}
	F.Ref = make([]float64, len(F.Q))
	for i, q := range F.Q {
		F.Ref[i] = p.Predict(q)
	}
	var weights []float64
	if rse != nil {
		if sp, err := predictor(rq, rse); err == nil {
			F.RefSE = make([]float64, len(F.Q))
			weights = make([]float64, len(F.Q))
			for i, q := range F.Q {
				F.RefSE[i] = sp.Predict(q)
				if !(F.RefSE[i] > 0) {
					weights = nil
					break
				}
				weights[i] = 1 / (F.RefSE[i] * F.RefSE[i])
			}
		}
	}
	_, F.Factor = stat.LinearRegression(F.Work, F.Ref, weights, true)
	if math.IsNaN(F.Factor) || math.IsInf(F.Factor, 0) {
		if floats.Norm(F.Work, 2) == 0 {
			return nil, mdp.NewError(mdp.InvalidArgumentError, "Fit", "the working curve vanishes over the reference range")
		}
		return nil, mdp.NewError(mdp.InvalidArgumentError, "Fit", "the fit did not converge")
	}
	if F.Factor < 0 {
		return nil, mdp.NewError(mdp.InvalidArgumentError, "Fit", "negative scale factor %g", F.Factor)
	}
	return F, nil
}
