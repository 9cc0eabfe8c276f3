package dataset

import (
	"math"

	mdp "github.com/ajoshpratt/MolDynPlot"
	"github.com/ajoshpratt/MolDynPlot/mdstat"
)

var timeSeriesStages = []stage{
	{name: "load", run: loadStage},
	{name: "usecols", run: useColsStage},
	{name: "time", run: timeAxisStage},
	{name: "downsample", run: downsampleStage},
	{name: "pdist", run: timeSeriesPDistStage},
	{name: "error", soft: true, run: errorStage},
}

//UseCols returns a table with only the columns of T given in cols, each either a
//column name or the position of a column (0 is the first column after the index).
func UseCols(T *mdp.Table, cols []any) (*mdp.Table, error) {
	all := T.Columns()
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		if s, ok := c.(string); ok {
			names = append(names, s)
			continue
		}
		f, ok := toFloat(c)
		if !ok || f != math.Trunc(f) || f < 0 || int(f) >= len(all) {
			return nil, mdp.NewError(mdp.InvalidArgumentError, "UseCols", "column %v is neither a name nor a position in 0-%d", c, len(all)-1)
		}
		names = append(names, all[int(f)])
	}
	R, err := T.Select(names)
	return R, mdp.ErrDecorate(err, "UseCols")
}

func useColsStage(b *build) error {
	cols, err := b.S.List("usecols")
	if err != nil || cols == nil {
		return err
	}
	T, err := UseCols(b.D.Table, cols)
	if err != nil {
		return err
	}
	b.D.Table = T
	return nil
}

//TimeAxis multiplies the index of T by dt, and then shifts it by toffset.
func TimeAxis(T *mdp.Table, dt, toffset float64) error {
	if dt == 1 && toffset == 0 {
		return nil
	}
	if T.Labeled() {
		return mdp.NewError(mdp.InvalidArgumentError, "TimeAxis", "a labeled index has no time axis")
	}
	if dt == 0 || math.IsNaN(dt) || math.IsNaN(toffset) {
		return mdp.NewError(mdp.InvalidArgumentError, "TimeAxis", "invalid dt %g or toffset %g", dt, toffset)
	}
	return mdp.ErrDecorate(T.MapIndex(func(t float64) float64 { return t*dt + toffset }), "TimeAxis")
}

func timeAxisStage(b *build) error {
	dt, err := b.S.Float("dt", 1)
	if err != nil {
		return err
	}
	toffset, err := b.S.Float("toffset", 0)
	if err != nil {
		return err
	}
	return TimeAxis(b.D.Table, dt, toffset)
}

//downsample reduces the table of b with the reducer given, or with the one in
//downsample_mode if reducer is empty.
func downsample(b *build, reducer string) error {
	k, err := b.S.Int("downsample", 0)
	if err != nil || !b.S.Has("downsample") {
		return err
	}
	if reducer == "" {
		if reducer, err = b.S.Str("downsample_mode", mdstat.Mean); err != nil {
			return err
		}
	}
	T, err := mdstat.Downsample(b.D.Table, k, reducer)
	if err != nil {
		return err
	}
	b.logf(1, "%s: downsampled from %d to %d rows (%s)", b.K.Name, b.D.Table.Len(), T.Len(), reducer)
	b.D.Table = T
	return nil
}

func downsampleStage(b *build) error {
	return downsample(b, "")
}

func timeSeriesPDistStage(b *build) error {
	on, err := b.S.Bool("calc_pdist", false)
	if err != nil || !on {
		return err
	}
	O, cols, err := kdeOptions(b.S, mdstat.DefaultKDEOptions())
	if err != nil {
		return err
	}
	if cols == nil {
		cols = mdstat.Quantities(b.D.Table)
	}
	b.D.PDist = pdists(b, cols, O)
	return nil
}

//blockOptions reads block_kw.
func blockOptions(S *Spec) (*mdstat.BlockOptions, error) {
	O := mdstat.DefaultBlockOptions()
	kw, err := S.Map("block_kw")
	if err != nil || kw == nil {
		return O, err
	}
	if v, ok := kw["min_blocks"]; ok {
		f, ok := toFloat(v)
		if !ok || f != math.Trunc(f) || f < 2 {
			return nil, mdp.NewError(mdp.InvalidArgumentError, "blockOptions", "min_blocks must be an integer larger than 1")
		}
		O.MinBlocks(int(f))
	}
	return O, nil
}

//standardErrors calculates the standard error of each quantity in T, with the
//method in error_method (def if not given).
func standardErrors(b *build, T *mdp.Table, def string) (map[string]float64, map[string]*mdstat.BlockResult, error) {
	method, err := b.S.Str("error_method", def)
	if err != nil {
		return nil, nil, err
	}
	O, err := blockOptions(b.S)
	if err != nil {
		return nil, nil, err
	}
	if method != mdstat.BlockMethod {
		se, err := mdstat.StdErr(T, method, O)
		return se, nil, err
	}
	cols := mdstat.Quantities(T)
	se := make(map[string]float64, len(cols))
	blocks := make(map[string]*mdstat.BlockResult, len(cols))
	for _, c := range cols {
		B, err := mdstat.BlockAverage(T.Col(c), O)
		if err != nil {
			return nil, nil, mdp.ErrDecorate(err, "standardErrors: "+c)
		}
		se[c] = B.A
		blocks[c] = B
	}
	return se, blocks, nil
}

func errorStage(b *build) error {
	on, err := b.S.Bool("calc_error", false)
	if err != nil || !on {
		return err
	}
	se, blocks, err := standardErrors(b, b.D.Table, mdstat.StdMethod)
	if err != nil {
		return err
	}
	b.D.SE = se
	b.D.Blocks = blocks
	return nil
}
