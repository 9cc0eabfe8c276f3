package mdstat

import (
	"math"

	mdp "github.com/ajoshpratt/MolDynPlot"
	"github.com/ajoshpratt/MolDynPlot/histo"
	"gonum.org/v1/gonum/floats"
)

//DefaultCutoff is the distance, in Angstrom, below which a native contact is formed.
const DefaultCutoff = 5.5

//NativeContactsColumn is the name of the column produced by NativeContacts.
const NativeContactsColumn = "percent_native_contacts"

//NativeContacts reduces a table of per-contact distances (one column per native
//contact, one row per frame) to the fraction of contacts formed in each frame.
//A contact is formed when its distance is <= cutoff. NaN distances count as
//not formed. The returned table has the same index, named "time", and the single
//column NativeContactsColumn.
func NativeContacts(T *mdp.Table, cutoff float64) (*mdp.Table, error) {
	if math.IsNaN(cutoff) {
		return nil, mdp.NewError(mdp.InvalidArgumentError, "NativeContacts", "NaN cutoff")
	}
	cols := T.FloatColumns()
	if len(cols) == 0 {
		return nil, mdp.NewError(mdp.MissingColumnError, "NativeContacts", "no distance columns")
	}
	frac := make([]float64, T.Len())
	for _, c := range cols {
		for i, d := range T.Col(c) {
			if d <= cutoff {
				frac[i]++
			}
		}
	}
	floats.Scale(1/float64(len(cols)), frac)
	R, err := T.Select(nil)
	if err != nil {
		return nil, mdp.ErrDecorate(err, "NativeContacts")
	}
	R.SetIndexName("time")
	R.AddCol(NativeContactsColumn, frac)
	return R, nil
}

//ContactDividers returns the bin edges for the histogram of the fraction of
//n contacts formed: n+1 bins of width 1/n, centered on the achievable fractions 0, 1/n ... 1.
func ContactDividers(n int) []float64 {
	half := 1 / (2 * float64(n))
	return floats.Span(make([]float64, n+2), -half, 1+half)
}

//ContactPDist returns the probability distribution of the fraction of native
//contacts in the column NativeContactsColumn of T, where nContacts is the number of
//native contacts. The distribution is a normalized histogram, published as a step polyline.
func ContactPDist(T *mdp.Table, nContacts int) (*mdp.Distribution, error) {
	if nContacts <= 0 {
		return nil, mdp.NewError(mdp.InvalidArgumentError, "ContactPDist", "the number of contacts must be positive, got %d", nContacts)
	}
	v := T.Col(NativeContactsColumn)
	if v == nil {
		return nil, mdp.NewError(mdp.MissingColumnError, "ContactPDist", "no column %s", NativeContactsColumn)
	}
	h := histo.NewData(ContactDividers(nContacts), v)
	if h.Total() == 0 {
		return nil, mdp.NewError(mdp.InvalidArgumentError, "ContactPDist", "no finite fractions to histogram")
	}
	return h.Distribution(NativeContactsColumn), nil
}
