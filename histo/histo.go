//Package histo implements histograms with explicit dividers (bin edges), which
//expand into step distributions.
package histo

import (
	"math"
	"sort"

	mdp "github.com/ajoshpratt/MolDynPlot"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Data is a histogram of counts. Bin i counts the points p with dividers[i] <= p < dividers[i+1].
//Only the points that fall in a bin count for the total.
type Data struct {
	total    int
	dividers []float64
	counts   []float64
}

//NewData returns the histogram of rawdata over dividers, which must be at least two and sorted.
//rawdata can be nil, and it is not modified.
func NewData(dividers []float64, rawdata []float64) *Data {
	if len(dividers) < 2 || !sort.Float64sAreSorted(dividers) {
		panic("moldynplot/histo.NewData: dividers must be at least 2, and sorted")
	}
	D := new(Data)
	D.dividers = make([]float64, len(dividers))
	copy(D.dividers, dividers)
	D.Add(rawdata...)
	return D
}

//inRange drops NaNs and the points outside the dividers, and returns the rest sorted.
//stat.Histogram panics on points off limits.
func (D *Data) inRange(points []float64) []float64 {
	raw := make([]float64, 0, len(points))
	for _, v := range points {
		if !math.IsNaN(v) {
			raw = append(raw, v)
		}
	}
	sort.Float64s(raw)
	raw = raw[:sort.SearchFloat64s(raw, D.dividers[len(D.dividers)-1])]
	return raw[sort.SearchFloat64s(raw, D.dividers[0]):]
}

//Add counts the given points. NaNs and points outside the dividers are discarded.
func (D *Data) Add(points ...float64) {
	raw := D.inRange(points)
	h := stat.Histogram(nil, D.dividers, raw, nil)
	if D.counts == nil {
		D.counts = h
	} else {
		floats.Add(D.counts, h)
	}
	D.total += len(raw)
}

//Total returns the number of points counted.
func (D *Data) Total() int {
	return D.total
}

//View returns a view of the counts in each bin.
func (D *Data) View() []float64 {
	return D.counts
}

//Distribution returns the histogram, normalized, as a step distribution of the quantity
//name. An empty histogram gives zero masses.
func (D *Data) Distribution(name string) *mdp.Distribution {
	masses := make([]float64, len(D.counts))
	if D.total > 0 {
		floats.ScaleTo(masses, 1/float64(D.total), D.counts)
	}
	return mdp.NewStepDistribution(name, D.dividers, masses)
}
