package dataset

import (
	"math"
	"strconv"
	"strings"

	mdp "github.com/ajoshpratt/MolDynPlot"
	"github.com/ajoshpratt/MolDynPlot/mdstat"
	"github.com/ajoshpratt/MolDynPlot/scale"
	"gonum.org/v1/gonum/stat"
)

//IntensityColumn is the column of scattering curves.
const IntensityColumn = scale.DefaultColumn

var saxsStages = []stage{
	{name: "load", run: loadStage},
	{name: "q", run: qIndexStage},
	{name: "scale", soft: true, run: scaleStage},
}

var saxsTimeSeriesStages = []stage{
	{name: "load", run: loadStage},
	{name: "time", run: timeAxisStage},
	{name: "downsample", run: saxsDownsampleStage},
	{name: "mean", run: meanStage},
	{name: "scale", soft: true, run: scaleStage},
	{name: "error", soft: true, run: saxsErrorStage},
}

func qIndexStage(b *build) error {
	if b.D.Table.Labeled() {
		return mdp.NewError(mdp.InvalidArgumentError, "qIndexStage", "scattering curves need numeric q values as index")
	}
	b.D.Table.SetIndexName("q")
	return nil
}

//scaleStage scales the curve by the factor or reference curve in the scale parameter.
//References are loaded as saxs datasets, through the cache.
func scaleStage(b *build) error {
	target, ok := b.S.Param("scale")
	if !ok || target == nil {
		return nil
	}
	if b.D.Table.Col(IntensityColumn) == nil {
		if f, ok := toFloat(target); ok && b.K.Name == "saxs_timeseries" && b.D.Series == nil {
			if _, err := QColumns(b.D.Table); err == nil {
				return scaleSeries(b, f)
			}
		}
		return mdp.NewError(mdp.MissingColumnError, "scaleStage", "no %s column to scale", IntensityColumn)
	}
	resolve := func(path string) (*mdp.Table, error) {
		S, err := NewSpec("saxs", map[string]any{"infile": path})
		if err != nil {
			return nil, err
		}
		ref, err := b.B.Load(S)
		if err != nil {
			return nil, err
		}
		return ref.Table, nil
	}
	f, err := scale.Scale(b.D.Table, target, resolve, nil)
	if err != nil {
		return err
	}
	b.D.Scale = f
	b.logf(1, "%s: scaled by %g", b.K.Name, f)
	return nil
}

//scaleSeries multiplies every q column of a time series that was not averaged by factor.
func scaleSeries(b *build, factor float64) error {
	O := scale.DefaultOptions()
	for _, c := range b.D.Table.FloatColumns() {
		if mdp.IsSE(c) {
			continue
		}
		O.Column(c)
		if err := scale.Apply(b.D.Table, factor, O); err != nil {
			return mdp.ErrDecorate(err, "scaleSeries")
		}
	}
	b.D.Scale = factor
	b.logf(1, "%s: time series scaled by %g", b.K.Name, factor)
	return nil
}

//SAXS time series are always averaged by the mean.
func saxsDownsampleStage(b *build) error {
	return downsample(b, mdstat.Mean)
}

//QColumns returns the q values that name the float columns of a scattering time series.
func QColumns(T *mdp.Table) ([]float64, error) {
	cols := T.FloatColumns()
	q := make([]float64, len(cols))
	for i, c := range cols {
		v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return nil, mdp.NewError(mdp.InvalidArgumentError, "QColumns", "column %q is not a q value", c)
		}
		q[i] = v
	}
	return q, nil
}

//MeanCurve returns the scattering curve obtained by averaging the time series T,
//whose rows are times and whose columns are named by q values.
func MeanCurve(T *mdp.Table) (*mdp.Table, error) {
	q, err := QColumns(T)
	if err != nil {
		return nil, mdp.ErrDecorate(err, "MeanCurve")
	}
	R, err := mdp.NewTable("q", q)
	if err != nil {
		return nil, mdp.ErrDecorate(err, "MeanCurve")
	}
	I := make([]float64, len(q))
	for i, c := range T.FloatColumns() {
		I[i] = stat.Mean(finiteValues(T.Col(c)), nil)
	}
	R.AddCol(IntensityColumn, I)
	return R, nil
}

func finiteValues(v []float64) []float64 {
	ret := make([]float64, 0, len(v))
	for _, f := range v {
		if !math.IsNaN(f) {
			ret = append(ret, f)
		}
	}
	return ret
}

func meanStage(b *build) error {
	on, err := b.S.Bool("calc_mean", true)
	if err != nil || !on {
		return err
	}
	R, err := MeanCurve(b.D.Table)
	if err != nil {
		return err
	}
	b.D.Series = b.D.Table
	b.D.Table = R
	return nil
}

//saxsErrorStage adds the standard error of the mean curve, obtained from the time
//series and scaled like the curve. The errors in the dataset's SE are scaled too.
func saxsErrorStage(b *build) error {
	on, err := b.S.Bool("calc_error", true)
	if err != nil || !on {
		return err
	}
	if b.D.Series == nil {
		return mdp.NewError(mdp.ConfigurationError, "saxsErrorStage", "the standard error needs the mean curve (calc_mean)")
	}
	se, blocks, err := standardErrors(b, b.D.Series, mdstat.BlockMethod)
	if err != nil {
		return err
	}
	cols := b.D.Series.FloatColumns()
	curve := make([]float64, len(cols))
	for i, c := range cols {
		se[c] *= b.D.Scale
		curve[i] = se[c]
	}
	b.D.SE = se
	b.D.Blocks = blocks
	return b.D.Table.AddCol(mdp.SEName(IntensityColumn), curve)
}
