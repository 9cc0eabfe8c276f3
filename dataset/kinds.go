package dataset

import (
	"sort"
	"strings"

	mdp "github.com/ajoshpratt/MolDynPlot"
)

//stage is one named step of the pipeline of a kind. Soft stages that fail are
//logged and skipped, other failures abort the build.
type stage struct {
	name string
	soft bool
	run  func(b *build) error
}

//Kind is a kind of dataset: a name, its aliases, and the pipeline that builds it.
//Composite kinds are built from sub-datasets, and get their identity from them.
type Kind struct {
	Name      string
	Aliases   []string
	Composite bool
	stages    []stage
}

//Stages returns the names of the stages of the pipeline of the kind, in order.
func (K *Kind) Stages() []string {
	ret := make([]string, len(K.stages))
	for i, s := range K.stages {
		ret[i] = s.name
	}
	return ret
}

//Spec returns a specification of this kind with the given parameters.
func (K *Kind) Spec(params map[string]any) (*Spec, error) {
	return NewSpec(K.Name, params)
}

var registry = make(map[string]*Kind)

func register(K *Kind) {
	for _, n := range append([]string{K.Name}, K.Aliases...) {
		n = strings.ToLower(n)
		if _, ok := registry[n]; ok {
			panic("moldynplot/dataset: kind name registered twice: " + n)
		}
		registry[n] = K
	}
}

//The pipelines call Builder.Load, which needs the registry, so it is filled here.
func init() {
	register(&Kind{Name: "sequence", Aliases: []string{"SequenceDataset"}, stages: sequenceStages})
	register(&Kind{Name: "timeseries", Aliases: []string{"TimeSeriesDataset"}, stages: timeSeriesStages})
	register(&Kind{Name: "natcon", Aliases: []string{"NatConDataset"}, stages: natConStages})
	register(&Kind{Name: "saxs", Aliases: []string{"saxs_experiment", "SAXSDataset", "SAXSExperimentDataset"}, stages: saxsStages})
	register(&Kind{Name: "saxs_timeseries", Aliases: []string{"SAXSTimeSeriesDataset"}, stages: saxsTimeSeriesStages})
	register(&Kind{Name: "diff", Aliases: []string{"saxs_diff", "SAXSDiffDataset"}, Composite: true, stages: diffStages})
	register(&Kind{Name: "corr", Aliases: []string{"CorrDataset"}, Composite: true, stages: corrStages})
}

//Lookup returns the kind with the given name or alias. Names are not case sensitive, and
//only the last component of a dotted name (such as moldynplot.Dataset.SequenceDataset) is used.
func Lookup(name string) (*Kind, error) {
	n := strings.TrimSpace(name)
	if i := strings.LastIndex(n, "."); i >= 0 {
		n = n[i+1:]
	}
	K, ok := registry[strings.ToLower(n)]
	if !ok {
		return nil, mdp.NewError(mdp.ConfigurationError, "Lookup", "unknown dataset kind %q", name)
	}
	return K, nil
}

//Kinds returns the canonical names of all the kinds, sorted.
func Kinds() []string {
	seen := make(map[string]bool)
	ret := make([]string, 0, len(registry))
	for _, K := range registry {
		if !seen[K.Name] {
			seen[K.Name] = true
			ret = append(ret, K.Name)
		}
	}
	sort.Strings(ret)
	return ret
}
