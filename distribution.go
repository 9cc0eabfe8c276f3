/*
 * distribution.go, part of moldynplot.
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

package moldynplot

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot/plotter"
)

//Distribution is a discretized probability mass over an ordered support grid.
//
//For distributions obtained from histograms (step distributions) X and Y
//hold a step polyline, with two points per bin edge, ready to be drawn as an area.
//The mass of each bin appears twice in Y in that case; use Total or Masses
//to get the masses themselves.
type Distribution struct {
	Name string
	X    []float64
	Y    []float64
	step bool
}

//NewDistribution returns a distribution with the quantity name, support grid and
//probabilities given. Both slices are copied.
func NewDistribution(name string, grid, prob []float64) *Distribution {
	if len(grid) != len(prob) {
		panic(fmt.Sprintf("moldynplot.NewDistribution: %d grid points for %d probabilities", len(grid), len(prob)))
	}
	D := &Distribution{Name: name, X: make([]float64, len(grid)), Y: make([]float64, len(prob))}
	copy(D.X, grid)
	copy(D.Y, prob)
	return D
}

//NewStepDistribution expands a histogram with the given dividers (bin edges) and
//masses, len(dividers)==len(masses)+1, into a step polyline.
func NewStepDistribution(name string, dividers, masses []float64) *Distribution {
	if len(dividers) != len(masses)+1 {
		panic(fmt.Sprintf("moldynplot.NewStepDistribution: %d dividers for %d bins", len(dividers), len(masses)))
	}
	D := &Distribution{Name: name, step: true}
	D.X = make([]float64, 2*len(dividers))
	D.Y = make([]float64, 2*len(dividers))
	for i, v := range dividers {
		D.X[2*i] = v
		D.X[2*i+1] = v
	}
	//The polyline goes up at the first edge and down at the last one.
	for i, m := range masses {
		D.Y[2*i+1] = m
		D.Y[2*i+2] = m
	}
	return D
}

//Step returns true if the distribution is a step polyline from a histogram.
func (D *Distribution) Step() bool {
	return D.step
}

//Masses returns the probability mass at each support point, or, for
//step distributions, in each bin.
func (D *Distribution) Masses() []float64 {
	if !D.step {
		ret := make([]float64, len(D.Y))
		copy(ret, D.Y)
		return ret
	}
	n := len(D.Y)/2 - 1
	ret := make([]float64, n)
	for i := range ret {
		ret[i] = D.Y[2*i+1]
	}
	return ret
}

//Total returns the sum of the masses, which is 1 for a properly
//normalized distribution.
func (D *Distribution) Total() float64 {
	return floats.Sum(D.Masses())
}

//XYs returns the distribution as points for the gonum plotter.
func (D *Distribution) XYs() plotter.XYs {
	ret := make(plotter.XYs, len(D.X))
	for i := range D.X {
		ret[i].X = D.X[i]
		ret[i].Y = D.Y[i]
	}
	return ret
}

func (D *Distribution) String() string {
	return fmt.Sprintf("Distribution of %s: %d points, total %4.3f", D.Name, len(D.X), D.Total())
}
