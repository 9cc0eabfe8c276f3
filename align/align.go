/*
 * align.go, part of moldynplot.
 *
 *
 * Copyright 2021 Raul Mera rauldotmeraatusachdotcl
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
 *
 *
 */

//Package align combines pairs of tables over the entries their indexes share,
//to correlate or subtract them.
package align

import (
	"fmt"
	"math"

	mdp "github.com/ajoshpratt/MolDynPlot"
	"github.com/ajoshpratt/MolDynPlot/mdstat"
	"gonum.org/v1/gonum/stat"
)

//Suffixes of the flattened column names of a Corr
const (
	XSuffix = ":x"
	YSuffix = ":y"
)

//Intersect returns the index keys present in both tables, in the order of left.
func Intersect(left, right *mdp.Table) []string {
	ret := make([]string, 0, left.Len())
	for _, k := range left.Keys() {
		if _, ok := right.Lookup(k); ok {
			ret = append(ret, k)
		}
	}
	return ret
}

//rowsOf returns the rows of T with the given keys, which must all exist.
func rowsOf(T *mdp.Table, keys []string) []int {
	ret := make([]int, len(keys))
	for i, k := range keys {
		ret[i], _ = T.Lookup(k)
	}
	return ret
}

//Columns returns the float columns, other than standard errors, that both tables have,
//in the order of left. Each is followed by its standard error column, if both tables have it.
func Columns(left, right *mdp.Table) []string {
	ret := make([]string, 0, 4)
	for _, c := range left.FloatColumns() {
		if mdp.IsSE(c) || right.Col(c) == nil {
			continue
		}
		ret = append(ret, c)
		se := mdp.SEName(c)
		if left.Col(se) != nil && right.Col(se) != nil {
			ret = append(ret, se)
		}
	}
	return ret
}

//Corr holds two tables restricted to the same rows and columns, to be compared
//quantity by quantity.
type Corr struct {
	X       *mdp.Table
	Y       *mdp.Table
	Columns []string
}

//Correlate returns the rows of left and right with the index entries present in both,
//and only their shared columns, as a Corr. If the indexes don't intersect, the tables in
//the Corr are empty.
func Correlate(left, right *mdp.Table) *Corr {
	keys := Intersect(left, right)
	C := &Corr{Columns: Columns(left, right)}
	var err error
	C.X, err = left.Rows(rowsOf(left, keys)).Select(C.Columns)
	if err != nil {
		//Columns only returns existing columns.
		panic("moldynplot/align.Correlate: " + err.Error())
	}
	C.Y, err = right.Rows(rowsOf(right, keys)).Select(C.Columns)
	if err != nil {
		panic("moldynplot/align.Correlate: " + err.Error())
	}
	return C
}

//Len returns the number of shared rows.
func (C *Corr) Len() int {
	return C.X.Len()
}

//Flat returns a single table with the index of X and, for each shared column c,
//the columns "c:x" and "c:y".
func (C *Corr) Flat() *mdp.Table {
	F, _ := C.X.Select(nil)
	for _, c := range C.Columns {
		F.AddCol(c+XSuffix, C.X.Col(c))
		F.AddCol(c+YSuffix, C.Y.Col(c))
	}
	return F
}

func (C *Corr) pair(caller, quantity string) ([]float64, []float64, error) {
	x := C.X.Col(quantity)
	y := C.Y.Col(quantity)
	if x == nil || y == nil {
		return nil, nil, mdp.NewError(mdp.MissingColumnError, caller, "quantity %s not shared", quantity)
	}
	fx := make([]float64, 0, len(x))
	fy := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		fx = append(fx, x[i])
		fy = append(fy, y[i])
	}
	return fx, fy, nil
}

//Pearson returns the Pearson correlation coefficient between the x and y values
//of quantity. Rows where either is missing are not used.
func (C *Corr) Pearson(quantity string) (float64, error) {
	x, y, err := C.pair("Corr.Pearson", quantity)
	if err != nil {
		return math.NaN(), err
	}
	if len(x) < 2 {
		return math.NaN(), mdp.NewError(mdp.InvalidArgumentError, "Corr.Pearson", "%d shared points for %s", len(x), quantity)
	}
	return stat.Correlation(x, y, nil), nil
}

//Lagged returns the normalized cross-correlation function of the x and y values of quantity,
//for lags 0 to n-1, with n the number of rows where both are present.
func (C *Corr) Lagged(quantity string) ([]float64, error) {
	x, y, err := C.pair("Corr.Lagged", quantity)
	if err != nil {
		return nil, err
	}
	r, err := mdstat.CrossCorr(x, y)
	return r, mdp.ErrDecorate(err, "Corr.Lagged")
}

func (C *Corr) String() string {
	return fmt.Sprintf("Correlation of %d rows, columns %v", C.Len(), C.Columns)
}

//Difference returns a table with the index entries shared by left and right, in the order
//of left, with the column quantity equal to left-right and its standard error, obtained
//by propagating the errors of both sides. Both tables must have the quantity and its
//standard error. Disjoint tables give an empty table.
func Difference(left, right *mdp.Table, quantity string) (*mdp.Table, error) {
	se := mdp.SEName(quantity)
	for _, t := range []struct {
		name string
		T    *mdp.Table
	}{{"minuend", left}, {"subtrahend", right}} {
		if t.T.Col(quantity) == nil || t.T.Col(se) == nil {
			return nil, mdp.NewError(mdp.IncompatibleDatasetsError, "Difference", "the %s lacks %s or %s", t.name, quantity, se)
		}
	}
	keys := Intersect(left, right)
	lrows := rowsOf(left, keys)
	rrows := rowsOf(right, keys)
	D, _ := left.Rows(lrows).Select(nil)
	diff := make([]float64, len(keys))
	diffse := make([]float64, len(keys))
	lq, lse := left.Col(quantity), left.Col(se)
	rq, rse := right.Col(quantity), right.Col(se)
	for i := range keys {
		l, r := lrows[i], rrows[i]
		diff[i] = lq[l] - rq[r]
		diffse[i] = math.Hypot(lse[l], rse[r])
	}
	D.AddCol(quantity, diff)
	D.AddCol(se, diffse)
	return D, nil
}
