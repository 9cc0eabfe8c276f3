/*
 * main.go, part of moldynplot.
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

//mdset builds the datasets described in a specification file and writes their tables.
//
//The specification file is JSON, with comments and trailing commas allowed, holding one
//dataset specification (an object with a "kind" entry and the parameters of the dataset)
//or an array of them. All the datasets are built through one cache, so sources shared
//among them are read only once.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	mdp "github.com/ajoshpratt/MolDynPlot"
	"github.com/ajoshpratt/MolDynPlot/dataset"
	flag "github.com/spf13/pflag"
	"github.com/tailscale/hujson"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	out     string
	pdist   bool
	keys    bool
	verbose int
}

func parseFlags(errOut io.Writer, args []string) (options, []string, int) {
	var O options
	flagSet := flag.NewFlagSet("mdset", flag.ContinueOnError)
	flagSet.SetOutput(errOut)
	flagSet.Usage = func() {
		fmt.Fprintln(errOut, "Usage: mdset [flags] spec.jsonc")
		flagSet.PrintDefaults()
	}
	flagSet.StringVarP(&O.out, "out", "o", "", "output table (one specification) or directory (several)")
	flagSet.BoolVar(&O.pdist, "pdist", false, "also write the probability distributions, next to the tables")
	flagSet.BoolVar(&O.keys, "key", false, "only print the keys of the datasets, and their digests")
	flagSet.CountVarP(&O.verbose, "verbose", "v", "log each stage (-vv also prints the tables)")
	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return O, nil, 0
		}
		return O, nil, 2
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return O, nil, 2
	}
	return O, flagSet.Args(), -1
}

//readSpecs reads the specification file name.
func readSpecs(name string) ([]*dataset.Spec, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, mdp.WrapError(mdp.SourceNotFoundError, "readSpecs", err, "can't read the specification file").WithFile(name)
	}
	standard, err := hujson.Standardize(data)
	if err != nil {
		return nil, mdp.WrapError(mdp.ConfigurationError, "readSpecs", err, "invalid JSONC").WithFile(name)
	}
	var raw any
	if err = json.Unmarshal(standard, &raw); err != nil {
		return nil, mdp.WrapError(mdp.ConfigurationError, "readSpecs", err, "invalid JSON").WithFile(name)
	}
	var list []any
	switch t := raw.(type) {
	case map[string]any:
		list = []any{t}
	case []any:
		list = t
	default:
		return nil, mdp.NewError(mdp.ConfigurationError, "readSpecs", "the file must hold a specification or an array of them").WithFile(name)
	}
	specs := make([]*dataset.Spec, 0, len(list))
	for i, v := range list {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, mdp.NewError(mdp.ConfigurationError, "readSpecs", "element %d is not a specification", i).WithFile(name)
		}
		S, err := dataset.SpecFromMap(m)
		if err != nil {
			return nil, mdp.ErrDecorate(err, fmt.Sprintf("readSpecs: element %d", i))
		}
		specs = append(specs, S)
	}
	return specs, nil
}

//outputName returns the file where the table of the i-th of n datasets is written.
func outputName(out string, D *dataset.Dataset, i, n int) string {
	if n == 1 && out != "" {
		return out
	}
	dir := out
	if dir == "" {
		dir = "."
	}
	id := D.Key.Digest()
	if len(id) > 12 {
		id = id[:12]
	} else {
		id = fmt.Sprintf("%03d", i)
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", D.Kind, id))
}

//pdistName returns the file for the distribution name of the table written to tablefile.
func pdistName(tablefile, name string) string {
	ext := filepath.Ext(tablefile)
	if ext == ".zst" || ext == ".gz" || ext == ".zz" || ext == ".flate" {
		ext = filepath.Ext(strings.TrimSuffix(tablefile, ext)) + ext
	}
	base := strings.TrimSuffix(tablefile, ext)
	clean := strings.NewReplacer("/", "_", " ", "_", ":", "_").Replace(name)
	return base + "_pdist_" + clean + ext
}

//pdistTable puts the polyline of a distribution in a table, one row per point.
func pdistTable(d *mdp.Distribution) (*mdp.Table, error) {
	xys := d.XYs()
	points := make([]float64, xys.Len())
	x := make([]float64, xys.Len())
	y := make([]float64, xys.Len())
	for i := range points {
		points[i] = float64(i)
		x[i], y[i] = xys.XY(i)
	}
	T, err := mdp.NewTable("point", points)
	if err != nil {
		return nil, err
	}
	name := d.Name
	if name == "" || name == "probability" {
		name = "x"
	}
	if err = T.AddCol(name, x); err != nil {
		return nil, err
	}
	if err = T.AddCol("probability", y); err != nil {
		return nil, err
	}
	return T, nil
}

func run(args []string, out, errOut io.Writer) int {
	O, files, code := parseFlags(errOut, args)
	if code >= 0 {
		return code
	}
	logger := log.New(errOut, "mdset: ", 0)
	specs, err := readSpecs(files[0])
	if err != nil {
		logger.Print(err)
		return 1
	}
	if O.keys {
		for _, S := range specs {
			k, err := dataset.Resolve(S)
			if err != nil {
				logger.Print(err)
				return 1
			}
			fmt.Fprintf(out, "%s %s\n", k.Digest(), k)
		}
		return 0
	}
	if len(specs) > 1 && O.out != "" {
		if err := os.MkdirAll(O.out, 0o755); err != nil {
			logger.Print(err)
			return 1
		}
	}
	B := dataset.NewBuilder(nil, dataset.NewCache())
	B.Logger(logger)
	B.Verbose(O.verbose)
	for i, S := range specs {
		D, err := B.Load(S)
		if err != nil {
			logger.Printf("dataset %d (%s): %v", i, S.Kind(), err)
			return 1
		}
		name := outputName(O.out, D, i, len(specs))
		if err := mdp.TableFileWrite(name, D.Table); err != nil {
			logger.Print(err)
			return 1
		}
		fmt.Fprintf(out, "%s: %s\n", name, D)
		names := make([]string, 0, len(D.SE))
		for k := range D.SE {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			fmt.Fprintf(out, "  standard error of %s: %g\n", k, D.SE[k])
		}
		if !O.pdist {
			continue
		}
		for _, d := range D.PDist {
			T, err := pdistTable(d)
			if err != nil {
				logger.Print(err)
				return 1
			}
			pname := pdistName(name, d.Name)
			if err := mdp.TableFileWrite(pname, T); err != nil {
				logger.Print(err)
				return 1
			}
			fmt.Fprintf(out, "%s: %s\n", pname, d)
		}
	}
	builds, hits := B.Cache().Stats()
	logger.Printf("%d datasets built, %d served from the cache", builds, hits)
	return 0
}
