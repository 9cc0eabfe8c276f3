/*
 * builder.go, part of moldynplot.
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

//Package dataset builds datasets from their specifications. A specification is resolved
//to a Key, and the dataset is built by the pipeline of its kind, only if the Cache has no
//dataset with that key already. Built datasets are shared, and must not be modified.
package dataset

import (
	"fmt"
	"log"

	mdp "github.com/ajoshpratt/MolDynPlot"
	"github.com/ajoshpratt/MolDynPlot/align"
	"github.com/ajoshpratt/MolDynPlot/mdstat"
)

//Dataset is a built dataset.
type Dataset struct {
	Key    Key
	Kind   string
	Spec   *Spec
	Table  *mdp.Table
	Series *mdp.Table //time series the table was averaged from, if any.
	PDist  []*mdp.Distribution
	SE     map[string]float64 //standard error of the mean of each quantity, if calculated.
	Blocks map[string]*mdstat.BlockResult
	Scale  float64 //scale factor applied to the table, 1 if not scaled.
	Corr   *align.Corr
}

//PDistOf returns the distribution of the quantity name, or nil.
func (D *Dataset) PDistOf(name string) *mdp.Distribution {
	for _, d := range D.PDist {
		if d.Name == name {
			return d
		}
	}
	return nil
}

func (D *Dataset) String() string {
	return fmt.Sprintf("%s dataset, %d rows, columns %v", D.Kind, D.Table.Len(), D.Table.Columns())
}

//Builder builds datasets through a loader and a cache.
type Builder struct {
	loader  Loader
	cache   *Cache
	logger  *log.Logger
	verbose int
}

//NewBuilder returns a builder that reads tables with L and keeps the datasets in C.
//If L is nil, a FileLoader is used, if C is nil, a new cache is created.
func NewBuilder(L Loader, C *Cache) *Builder {
	if L == nil {
		L = FileLoader{}
	}
	if C == nil {
		C = NewCache()
	}
	return &Builder{loader: L, cache: C, logger: log.Default()}
}

//Returns the verbosity level, and sets it to a new value, if given. Level 1 logs
//each stage, 2 also prints the tables. Specifications can raise the level with their
//verbose parameter.
func (B *Builder) Verbose(v ...int) int {
	if len(v) > 0 {
		B.verbose = v[0]
	}
	return B.verbose
}

//Returns the logger for diagnostics and progress messages, and sets it
//to a new value, if a non-nil one is given.
func (B *Builder) Logger(l ...*log.Logger) *log.Logger {
	if len(l) > 0 && l[0] != nil {
		B.logger = l[0]
	}
	return B.logger
}

//Cache returns the cache used by the builder.
func (B *Builder) Cache() *Cache {
	return B.cache
}

//build is the state of a dataset while its pipeline runs.
type build struct {
	B         *Builder
	S         *Spec
	K         *Kind
	D         *Dataset
	verbose   int
	nContacts int
}

func (b *build) logf(level int, format string, args ...interface{}) {
	if b.verbose >= level {
		b.B.logger.Printf(format, args...)
	}
}

//Load returns the dataset for the specification S, from the cache if
//it has been built already.
func (B *Builder) Load(S *Spec) (*Dataset, error) {
	K, err := Lookup(S.Kind())
	if err != nil {
		return nil, mdp.ErrDecorate(err, "Builder.Load")
	}
	key, err := Resolve(S)
	if err != nil {
		return nil, mdp.ErrDecorate(err, "Builder.Load")
	}
	D, err := B.cache.GetOrCreate(key, func() (*Dataset, error) {
		return B.run(K, S, key)
	})
	return D, mdp.ErrDecorate(err, "Builder.Load")
}

//LoadMap is like Load, for a specification given as a map with a "kind" entry.
func (B *Builder) LoadMap(m map[string]any) (*Dataset, error) {
	S, err := SpecFromMap(m)
	if err != nil {
		return nil, mdp.ErrDecorate(err, "Builder.LoadMap")
	}
	return B.Load(S)
}

//run executes the pipeline of K for S.
func (B *Builder) run(K *Kind, S *Spec, key Key) (*Dataset, error) {
	b := &build{B: B, S: S, K: K, verbose: B.verbose}
	b.D = &Dataset{Key: key, Kind: K.Name, Spec: S, Scale: 1}
	if v, ok := S.params["verbose"]; ok {
		switch t := v.(type) {
		case bool:
			if t && b.verbose < 1 {
				b.verbose = 1
			}
		default:
			if f, ok := toFloat(v); ok && int(f) > b.verbose {
				b.verbose = int(f)
			}
		}
	}
	for _, st := range K.stages {
		b.logf(1, "%s: %s", K.Name, st.name)
		err := st.run(b)
		if err == nil {
			continue
		}
		if st.soft {
			B.logger.Printf("moldynplot: %s: stage %s skipped: %v", K.Name, st.name, err)
			continue
		}
		return nil, mdp.ErrDecorate(err, K.Name+"."+st.name)
	}
	if b.D.Table == nil {
		return nil, mdp.NewError(mdp.ConfigurationError, K.Name, "the pipeline produced no table")
	}
	if b.verbose >= 2 {
		B.logger.Printf("%s\n%s", b.D, b.D.Table)
	}
	return b.D, nil
}
