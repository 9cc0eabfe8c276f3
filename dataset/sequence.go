package dataset

import (
	"math"
	"strconv"
	"strings"

	mdp "github.com/ajoshpratt/MolDynPlot"
	"github.com/ajoshpratt/MolDynPlot/mdstat"
)

//Column names produced by SplitResidues and AddRatio
const (
	AminoAcidColumn = "amino acid"
	ResIndexColumn  = "index"
	RatioColumn     = "r1/r2"
)

var sequenceStages = []stage{
	{name: "load", run: loadStage},
	{name: "residues", run: residuesStage},
	{name: "use_indexes", run: useIndexesStage},
	{name: "ratio", soft: true, run: ratioStage},
	{name: "pdist", run: sequencePDistStage},
}

//SplitResidues returns a copy of T, where each index entry, a residue token of
//the form "<label>:<number>", such as "ALA:12", gets number as its numeric value.
//The label and the number are also added as the first two columns, AminoAcidColumn and
//ResIndexColumn. The index of the new table is named "residue".
func SplitResidues(T *mdp.Table) (*mdp.Table, error) {
	keys := T.Keys()
	labels := make([]string, len(keys))
	nums := make([]float64, len(keys))
	for i, k := range keys {
		l, n, ok := strings.Cut(k, ":")
		num, err := strconv.Atoi(strings.TrimSpace(n))
		if !ok || strings.TrimSpace(l) == "" || err != nil {
			return nil, mdp.NewError(mdp.InvalidArgumentError, "SplitResidues", "residue %q is not of the form <label>:<number>", k)
		}
		labels[i] = strings.TrimSpace(l)
		nums[i] = float64(num)
	}
	R, err := mdp.NewLabeledTable("residue", keys)
	if err != nil {
		return nil, mdp.ErrDecorate(err, "SplitResidues")
	}
	if err = R.SetIndexValues(nums); err != nil {
		return nil, mdp.ErrDecorate(err, "SplitResidues")
	}
	R.AddText(AminoAcidColumn, labels)
	R.AddCol(ResIndexColumn, nums)
	for _, c := range T.Columns() {
		if c == AminoAcidColumn || c == ResIndexColumn {
			continue
		}
		if T.IsText(c) {
			R.AddText(c, T.Text(c))
		} else {
			R.AddCol(c, T.Col(c))
		}
	}
	return R, nil
}

//FilterIndexes returns a table with the rows of T whose numeric index value is in set,
//in the order of T.
func FilterIndexes(T *mdp.Table, set []int) *mdp.Table {
	in := make(map[int]bool, len(set))
	for _, v := range set {
		in[v] = true
	}
	rows := make([]int, 0, len(set))
	for i, v := range T.Index() {
		if !math.IsNaN(v) && v == math.Trunc(v) && in[int(v)] {
			rows = append(rows, i)
		}
	}
	return T.Rows(rows)
}

//AddRatio adds to T the column RatioColumn, r1/r2, and, if T has the standard errors of
//both r1 and r2, its propagated standard error.
func AddRatio(T *mdp.Table) error {
	r1, r2 := T.Col("r1"), T.Col("r2")
	if r1 == nil || r2 == nil {
		return mdp.NewError(mdp.MissingColumnError, "AddRatio", "r1 and r2 are needed for their ratio")
	}
	ratio := make([]float64, len(r1))
	for i := range r1 {
		ratio[i] = r1[i] / r2[i]
	}
	T.AddCol(RatioColumn, ratio)
	r1se, r2se := T.Col(mdp.SEName("r1")), T.Col(mdp.SEName("r2"))
	if r1se == nil || r2se == nil {
		return nil
	}
	se := make([]float64, len(r1))
	for i := range r1 {
		se[i] = ratio[i] * math.Hypot(r1se[i]/r1[i], r2se[i]/r2[i])
	}
	T.AddCol(mdp.SEName(RatioColumn), se)
	return nil
}

func loadStage(b *build) error {
	T, err := b.B.loader.Load(b.S)
	if err != nil {
		return err
	}
	b.D.Table = T
	return nil
}

func residuesStage(b *build) error {
	T, err := SplitResidues(b.D.Table)
	if err != nil {
		return err
	}
	b.D.Table = T
	return nil
}

func useIndexesStage(b *build) error {
	set, err := b.S.Ints("use_indexes")
	if err != nil || set == nil {
		return err
	}
	b.D.Table = FilterIndexes(b.D.Table, set)
	b.logf(1, "%s: %d residues kept", b.K.Name, b.D.Table.Len())
	return nil
}

func ratioStage(b *build) error {
	on, err := b.S.Bool("ratio", true)
	if err != nil || !on {
		return err
	}
	return AddRatio(b.D.Table)
}

func sequencePDistStage(b *build) error {
	on, err := b.S.Bool("calc_pdist", false)
	if err != nil || !on {
		return err
	}
	O, cols, err := kdeOptions(b.S, mdstat.SequenceKDEOptions())
	if err != nil {
		return err
	}
	if cols == nil {
		cols = mdstat.SEPaired(b.D.Table)
	}
	b.D.PDist = pdists(b, cols, O)
	return nil
}

//kdeOptions reads pdist_kw into O. It returns the columns requested, or nil
//if none were.
func kdeOptions(S *Spec, O *mdstat.KDEOptions) (*mdstat.KDEOptions, []string, error) {
	kw, err := S.Map("pdist_kw")
	if err != nil || kw == nil {
		return O, nil, err
	}
	kwS, err := NewSpec("pdist_kw", kw)
	if err != nil {
		return nil, nil, err
	}
	if bw, ok := kw["bandwidth"]; ok {
		if f, ok := toFloat(bw); ok {
			O.AllBandwidth(f)
		} else if m, ok := bw.(map[string]any); ok {
			for c, v := range m {
				f, ok := toFloat(v)
				if !ok {
					return nil, nil, mdp.NewError(mdp.InvalidArgumentError, "kdeOptions", "bandwidth of %s must be a number", c)
				}
				O.Bandwidth(c, f)
			}
		} else {
			return nil, nil, mdp.NewError(mdp.InvalidArgumentError, "kdeOptions", "bandwidth must be a number or a mapping")
		}
	}
	if g, ok := kw["grid"]; ok {
		if m, ok := g.(map[string]any); ok {
			for c, v := range m {
				grid, ok := toFloats(v)
				if !ok {
					return nil, nil, mdp.NewError(mdp.InvalidArgumentError, "kdeOptions", "grid of %s must be a list of numbers", c)
				}
				O.Grid(c, grid)
			}
		} else {
			grid, err := kwS.Floats("grid")
			if err != nil {
				return nil, nil, mdp.ErrDecorate(err, "kdeOptions")
			}
			O.AllGrid(grid)
		}
	}
	points, err := kwS.Int("points", O.Points())
	if err != nil {
		return nil, nil, mdp.ErrDecorate(err, "kdeOptions")
	}
	O.Points(points)
	var cols []string
	if l, err := kwS.List("columns"); err != nil {
		return nil, nil, mdp.ErrDecorate(err, "kdeOptions")
	} else if l != nil {
		cols = make([]string, 0, len(l))
		for _, v := range l {
			s, ok := v.(string)
			if !ok {
				return nil, nil, mdp.NewError(mdp.InvalidArgumentError, "kdeOptions", "column names must be strings")
			}
			cols = append(cols, s)
		}
	}
	return O, cols, nil
}

//pdists returns the distributions of the given columns of the table of b. Columns whose
//distribution can't be obtained are logged and skipped.
func pdists(b *build, cols []string, O *mdstat.KDEOptions) []*mdp.Distribution {
	ret := make([]*mdp.Distribution, 0, len(cols))
	for _, c := range cols {
		d, err := mdstat.ColumnPDist(b.D.Table, c, O)
		if err != nil {
			b.B.logger.Printf("moldynplot: %s: no distribution for %s: %v", b.K.Name, c, err)
			continue
		}
		ret = append(ret, d)
	}
	return ret
}
