/*
 * table.go, part of moldynplot.
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

package moldynplot

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

//SESuffix is appended to the name of a column to obtain the name of
//its standard error companion.
const SESuffix = "_se"

//SEName returns the name of the standard error companion of the column name.
func SEName(name string) string {
	return name + SESuffix
}

//IsSE returns true if name is the name of a standard error column.
func IsSE(name string) bool {
	return strings.HasSuffix(name, SESuffix)
}

//Table is an indexed table: an ordered set of rows, each with a unique index
//entry, and named columns, kept in insertion order. Columns hold either floats
//or text.
//
//The index is either numeric (times, q values, frames) or labeled (residue
//tokens such as "ALA:12"). A labeled index still carries a numeric value per row,
//NaN unless set with SetIndexValues.
type Table struct {
	indexName string
	labeled   bool
	keys      []string
	values    []float64
	pos       map[string]int
	names     []string
	floats    map[string][]float64
	texts     map[string][]string
}

//indexKey is the canonical string form of a numeric index entry.
func indexKey(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func newTable(indexName string, n int) *Table {
	T := new(Table)
	T.indexName = indexName
	T.keys = make([]string, 0, n)
	T.values = make([]float64, 0, n)
	T.pos = make(map[string]int, n)
	T.floats = make(map[string][]float64)
	T.texts = make(map[string][]string)
	return T
}

//NewTable returns an empty-columned table with the given numeric index.
//The index entries must be unique and not NaN.
func NewTable(indexName string, index []float64) (*Table, error) {
	T := newTable(indexName, len(index))
	for _, v := range index {
		if math.IsNaN(v) {
			return nil, NewError(InvalidArgumentError, "NewTable", "NaN index entry")
		}
		k := indexKey(v)
		if _, ok := T.pos[k]; ok {
			return nil, NewError(InvalidArgumentError, "NewTable", "repeated index entry %s", k)
		}
		T.pos[k] = len(T.keys)
		T.keys = append(T.keys, k)
		T.values = append(T.values, v)
	}
	return T, nil
}

//NewLabeledTable returns an empty-columned table with the given labels as index.
//Labels must be unique.
func NewLabeledTable(indexName string, labels []string) (*Table, error) {
	T := newTable(indexName, len(labels))
	T.labeled = true
	for _, l := range labels {
		if _, ok := T.pos[l]; ok {
			return nil, NewError(InvalidArgumentError, "NewLabeledTable", "repeated index entry %s", l)
		}
		T.pos[l] = len(T.keys)
		T.keys = append(T.keys, l)
		T.values = append(T.values, math.NaN())
	}
	return T, nil
}

//Len returns the number of rows in the table.
func (T *Table) Len() int {
	return len(T.keys)
}

//IndexName returns the name of the index.
func (T *Table) IndexName() string {
	return T.indexName
}

//SetIndexName sets the name of the index.
func (T *Table) SetIndexName(name string) {
	T.indexName = name
}

//Labeled returns true if the index is made of labels rather than numbers.
func (T *Table) Labeled() bool {
	return T.labeled
}

//Keys returns a view of the index entries, as strings.
func (T *Table) Keys() []string {
	return T.keys
}

//Index returns a view of the numeric values of the index.
func (T *Table) Index() []float64 {
	return T.values
}

//Lookup returns the row with the index entry key, and whether it exists.
func (T *Table) Lookup(key string) (int, bool) {
	i, ok := T.pos[key]
	return i, ok
}

//SetIndexValues replaces the numeric values of the index. For numeric tables
//the keys are recomputed and must remain unique. For labeled tables only the values
//change.
func (T *Table) SetIndexValues(vals []float64) error {
	if len(vals) != T.Len() {
		return NewError(InvalidArgumentError, "Table.SetIndexValues", "%d values given for %d rows", len(vals), T.Len())
	}
	if T.labeled {
		copy(T.values, vals)
		return nil
	}
	keys := make([]string, len(vals))
	pos := make(map[string]int, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			return NewError(InvalidArgumentError, "Table.SetIndexValues", "NaN index entry")
		}
		k := indexKey(v)
		if _, ok := pos[k]; ok {
			return NewError(InvalidArgumentError, "Table.SetIndexValues", "repeated index entry %s", k)
		}
		pos[k] = i
		keys[i] = k
	}
	copy(T.values, vals)
	T.keys = keys
	T.pos = pos
	return nil
}

//MapIndex applies f to every numeric value of the index.
func (T *Table) MapIndex(f func(float64) float64) error {
	vals := make([]float64, T.Len())
	for i, v := range T.values {
		vals[i] = f(v)
	}
	return ErrDecorate(T.SetIndexValues(vals), "Table.MapIndex")
}

//Columns returns the names of all the columns, in insertion order.
func (T *Table) Columns() []string {
	ret := make([]string, len(T.names))
	copy(ret, T.names)
	return ret
}

//FloatColumns returns the names of the float columns, in insertion order.
func (T *Table) FloatColumns() []string {
	ret := make([]string, 0, len(T.names))
	for _, v := range T.names {
		if _, ok := T.floats[v]; ok {
			ret = append(ret, v)
		}
	}
	return ret
}

//Has returns true if the table has a column (of any type) with the given name.
func (T *Table) Has(name string) bool {
	_, f := T.floats[name]
	_, t := T.texts[name]
	return f || t
}

//IsText returns true if name is a text column.
func (T *Table) IsText(name string) bool {
	_, ok := T.texts[name]
	return ok
}

//Col returns a view of the float column name, or nil if
//there is no such float column.
func (T *Table) Col(name string) []float64 {
	return T.floats[name]
}

//Text returns a view of the text column name, or nil.
func (T *Table) Text(name string) []string {
	return T.texts[name]
}

//AddCol copies data into the float column name. An existing column
//with that name is replaced, keeping its position.
func (T *Table) AddCol(name string, data []float64) error {
	if len(data) != T.Len() {
		return NewError(InvalidArgumentError, "Table.AddCol", "column %s has %d values for %d rows", name, len(data), T.Len())
	}
	c := make([]float64, len(data))
	copy(c, data)
	if !T.Has(name) {
		T.names = append(T.names, name)
	}
	delete(T.texts, name)
	T.floats[name] = c
	return nil
}

//AddText copies data into the text column name. An existing column
//with that name is replaced, keeping its position.
func (T *Table) AddText(name string, data []string) error {
	if len(data) != T.Len() {
		return NewError(InvalidArgumentError, "Table.AddText", "column %s has %d values for %d rows", name, len(data), T.Len())
	}
	c := make([]string, len(data))
	copy(c, data)
	if !T.Has(name) {
		T.names = append(T.names, name)
	}
	delete(T.floats, name)
	T.texts[name] = c
	return nil
}

//Drop removes the column name, if present.
func (T *Table) Drop(name string) {
	if !T.Has(name) {
		return
	}
	delete(T.floats, name)
	delete(T.texts, name)
	for i, v := range T.names {
		if v == name {
			T.names = append(T.names[:i], T.names[i+1:]...)
			break
		}
	}
}

//ScaleCols multiplies the given float columns by factor, in place.
//Names that are not float columns are ignored.
func (T *Table) ScaleCols(factor float64, names ...string) {
	for _, n := range names {
		for i := range T.floats[n] {
			T.floats[n][i] *= factor
		}
	}
}

//Rows returns a new table with the rows in the positions given, in that order.
//The rows must not be repeated.
func (T *Table) Rows(rows []int) *Table {
	R := newTable(T.indexName, len(rows))
	R.labeled = T.labeled
	for _, r := range rows {
		k := T.keys[r]
		if _, ok := R.pos[k]; ok {
			panic("moldynplot.Table.Rows: repeated row " + k)
		}
		R.pos[k] = len(R.keys)
		R.keys = append(R.keys, k)
		R.values = append(R.values, T.values[r])
	}
	for _, n := range T.names {
		R.names = append(R.names, n)
		if f, ok := T.floats[n]; ok {
			c := make([]float64, len(rows))
			for i, r := range rows {
				c[i] = f[r]
			}
			R.floats[n] = c
			continue
		}
		t := T.texts[n]
		c := make([]string, len(rows))
		for i, r := range rows {
			c[i] = t[r]
		}
		R.texts[n] = c
	}
	return R
}

//Select returns a new table with only the given columns, in the order given.
func (T *Table) Select(names []string) (*Table, error) {
	all := make([]int, T.Len())
	for i := range all {
		all[i] = i
	}
	R := T.Rows(all)
	R.names = R.names[:0]
	R.floats = make(map[string][]float64)
	R.texts = make(map[string][]string)
	for _, n := range names {
		if R.Has(n) {
			return nil, NewError(InvalidArgumentError, "Table.Select", "column %s selected twice", n)
		}
		if f, ok := T.floats[n]; ok {
			R.AddCol(n, f)
		} else if t, ok := T.texts[n]; ok {
			R.AddText(n, t)
		} else {
			return nil, NewError(MissingColumnError, "Table.Select", "no column %s", n)
		}
	}
	return R, nil
}

//Clone returns a deep copy of the table.
func (T *Table) Clone() *Table {
	all := make([]int, T.Len())
	for i := range all {
		all[i] = i
	}
	return T.Rows(all)
}

//Tables longer than this are printed abbreviated.
const printRows = 20

//String returns a -hopefully- readable representation of the table, in the
//style of a pandas DataFrame.
func (T *Table) String() string {
	header := append([]string{T.indexName}, T.names...)
	rows := make([]int, 0, T.Len())
	for i := 0; i < T.Len(); i++ {
		if T.Len() > printRows && i >= printRows/2 && i < T.Len()-printRows/2 {
			continue
		}
		rows = append(rows, i)
	}
	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, header)
	for _, r := range rows {
		line := make([]string, 0, len(header))
		line = append(line, T.keys[r])
		for _, n := range T.names {
			if f, ok := T.floats[n]; ok {
				line = append(line, strconv.FormatFloat(f[r], 'g', 6, 64))
			} else {
				line = append(line, T.texts[n][r])
			}
		}
		cells = append(cells, line)
	}
	widths := make([]int, len(header))
	for _, line := range cells {
		for j, c := range line {
			if len(c) > widths[j] {
				widths[j] = len(c)
			}
		}
	}
	var b strings.Builder
	for i, line := range cells {
		if T.Len() > printRows && i == printRows/2+1 {
			b.WriteString("...\n")
		}
		for j, c := range line {
			if j > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%*s", widths[j], c)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "[%d rows x %d columns]", T.Len(), len(T.names))
	return b.String()
}
