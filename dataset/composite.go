package dataset

import (
	mdp "github.com/ajoshpratt/MolDynPlot"
	"github.com/ajoshpratt/MolDynPlot/align"
)

var diffStages = []stage{
	{name: "difference", run: differenceStage},
}

var corrStages = []stage{
	{name: "correlate", run: correlateStage},
}

//subDatasets loads, through the cache, the sub-datasets of b for the given roles.
func subDatasets(b *build, roles ...string) ([]*Dataset, error) {
	ret := make([]*Dataset, len(roles))
	for i, r := range roles {
		S := b.S.Sub(r)
		if S == nil {
			return nil, mdp.NewError(mdp.ConfigurationError, "subDatasets", "%s needs a %s dataset (%s or %s_kw, with a kind)", b.K.Name, r, r, r)
		}
		D, err := b.B.Load(S)
		if err != nil {
			return nil, mdp.ErrDecorate(err, r)
		}
		b.logf(1, "%s: %s is %s", b.K.Name, r, D)
		ret[i] = D
	}
	return ret, nil
}

func differenceStage(b *build) error {
	quantity, err := b.S.Str("quantity", IntensityColumn)
	if err != nil {
		return err
	}
	subs, err := subDatasets(b, "minuend", "subtrahend")
	if err != nil {
		return err
	}
	T, err := align.Difference(subs[0].Table, subs[1].Table, quantity)
	if err != nil {
		return err
	}
	b.D.Table = T
	return nil
}

func correlateStage(b *build) error {
	subs, err := subDatasets(b, "x", "y")
	if err != nil {
		return err
	}
	b.D.Corr = align.Correlate(subs[0].Table, subs[1].Table)
	b.D.Table = b.D.Corr.Flat()
	return nil
}
