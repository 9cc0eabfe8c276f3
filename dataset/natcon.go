package dataset

import (
	"github.com/ajoshpratt/MolDynPlot/mdstat"
)

var natConStages = []stage{
	{name: "load", run: loadStage},
	{name: "usecols", run: useColsStage},
	{name: "time", run: timeAxisStage},
	{name: "contacts", run: contactsStage},
	{name: "downsample", run: natConDownsampleStage},
	{name: "pdist", run: contactPDistStage},
}

func contactsStage(b *build) error {
	cutoff, err := b.S.Float("cutoff", mdstat.DefaultCutoff)
	if err != nil {
		return err
	}
	b.nContacts = len(b.D.Table.FloatColumns())
	T, err := mdstat.NativeContacts(b.D.Table, cutoff)
	if err != nil {
		return err
	}
	b.logf(1, "%s: %d native contacts, cutoff %g", b.K.Name, b.nContacts, cutoff)
	b.D.Table = T
	return nil
}

//The fractions of contacts formed are discrete, so they are
//always downsampled by their mode.
func natConDownsampleStage(b *build) error {
	return downsample(b, mdstat.Mode)
}

func contactPDistStage(b *build) error {
	on, err := b.S.Bool("calc_pdist", true)
	if err != nil || !on {
		return err
	}
	d, err := mdstat.ContactPDist(b.D.Table, b.nContacts)
	if err != nil {
		return err
	}
	b.D.PDist = append(b.D.PDist[:0], d)
	return nil
}
