/*
 * spec.go, part of moldynplot.
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

package dataset

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	mdp "github.com/ajoshpratt/MolDynPlot"
)

//Roles of the sub-datasets of composite kinds. In a specification, a sub-dataset can
//also be given under the role name plus "_kw".
var SubRoles = []string{"x", "y", "minuend", "subtrahend"}

//Spec is a dataset specification: a kind and its parameters. Specs are immutable,
//the constructors copy the parameters given, and Param returns copies.
type Spec struct {
	kind   string
	params map[string]any
}

func subRole(name string) (string, bool) {
	n := strings.TrimSuffix(name, "_kw")
	for _, r := range SubRoles {
		if n == r {
			return r, true
		}
	}
	return "", false
}

//NewSpec returns a specification with the given kind and parameters. Mappings with a
//"kind" entry given under a sub-dataset role are turned into nested Specs.
func NewSpec(kind string, params map[string]any) (*Spec, error) {
	if strings.TrimSpace(kind) == "" {
		return nil, mdp.NewError(mdp.ConfigurationError, "NewSpec", "no kind given")
	}
	S := &Spec{kind: kind, params: make(map[string]any, len(params))}
	for k, v := range params {
		if k == "kind" {
			continue
		}
		name := k
		if role, ok := subRole(k); ok {
			if m, ok := v.(map[string]any); ok {
				sub, err := SpecFromMap(m)
				if err != nil {
					return nil, mdp.ErrDecorate(err, "NewSpec: "+k)
				}
				v = sub
				name = role
			} else if sub, ok := v.(*Spec); ok {
				v = sub
				name = role
			}
			if _, dup := S.params[name]; dup {
				return nil, mdp.NewError(mdp.ConfigurationError, "NewSpec", "sub-dataset %s given twice", name)
			}
		}
		S.params[name] = deepCopy(v)
	}
	return S, nil
}

//SpecFromMap returns the specification in m, whose "kind" entry gives the kind and the
//rest of the entries, the parameters. This is the form specifications take in JSON files.
func SpecFromMap(m map[string]any) (*Spec, error) {
	k, ok := m["kind"]
	if !ok {
		return nil, mdp.NewError(mdp.ConfigurationError, "SpecFromMap", "no kind in specification")
	}
	kind, ok := k.(string)
	if !ok {
		return nil, mdp.NewError(mdp.ConfigurationError, "SpecFromMap", "kind must be a string, not %T", k)
	}
	return NewSpec(kind, m)
}

//deepCopy copies maps and slices recursively. Specs are immutable, so they are shared.
func deepCopy(v any) any {
	switch t := v.(type) {
	case nil, *Spec, string, bool:
		return v
	case map[string]any:
		ret := make(map[string]any, len(t))
		for k, w := range t {
			ret[k] = deepCopy(w)
		}
		return ret
	case []any:
		ret := make([]any, len(t))
		for i, w := range t {
			ret[i] = deepCopy(w)
		}
		return ret
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		c := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			c.Index(i).Set(reflect.ValueOf(deepCopy(rv.Index(i).Interface())))
		}
		return c.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		c := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			c.SetMapIndex(iter.Key(), reflect.ValueOf(deepCopy(iter.Value().Interface())))
		}
		return c.Interface()
	}
	return v
}

//Kind returns the kind of the dataset, as given.
func (S *Spec) Kind() string {
	return S.kind
}

//Param returns a copy of the parameter name, and whether it is set.
func (S *Spec) Param(name string) (any, bool) {
	v, ok := S.params[name]
	return deepCopy(v), ok
}

//Has returns true if the parameter name is set.
func (S *Spec) Has(name string) bool {
	_, ok := S.params[name]
	return ok
}

//Names returns the names of the parameters, sorted.
func (S *Spec) Names() []string {
	ret := make([]string, 0, len(S.params))
	for k := range S.params {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

//Sub returns the nested specification for role, or nil.
func (S *Spec) Sub(role string) *Spec {
	sub, _ := S.params[role].(*Spec)
	return sub
}

//With returns a copy of S with the parameter name set to value. A nil value
//removes the parameter.
func (S *Spec) With(name string, value any) (*Spec, error) {
	params := make(map[string]any, len(S.params)+1)
	for k, v := range S.params {
		params[k] = v
	}
	delete(params, name)
	if role, ok := subRole(name); ok {
		delete(params, role)
	}
	if value != nil {
		params[name] = value
	}
	return NewSpec(S.kind, params)
}

func (S *Spec) String() string {
	return fmt.Sprintf("%s%v", S.kind, S.Names())
}

func (S *Spec) typeError(caller, name string, want string) error {
	return mdp.NewError(mdp.InvalidArgumentError, caller, "parameter %s must be %s, not %T", name, want, S.params[name])
}

//Bool returns the boolean parameter name, or def if it is not set.
func (S *Spec) Bool(name string, def bool) (bool, error) {
	v, ok := S.params[name]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return def, S.typeError("Spec.Bool", name, "a boolean")
	}
	return b, nil
}

//Float returns the numeric parameter name, or def if it is not set.
func (S *Spec) Float(name string, def float64) (float64, error) {
	v, ok := S.params[name]
	if !ok || v == nil {
		return def, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return def, S.typeError("Spec.Float", name, "a number")
	}
	return f, nil
}

//Int returns the integer parameter name, or def if it is not set. Floats
//with integer values are accepted.
func (S *Spec) Int(name string, def int) (int, error) {
	v, ok := S.params[name]
	if !ok || v == nil {
		return def, nil
	}
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) {
		return def, S.typeError("Spec.Int", name, "an integer")
	}
	return int(f), nil
}

//Str returns the string parameter name, or def if it is not set.
func (S *Spec) Str(name string, def string) (string, error) {
	v, ok := S.params[name]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return def, S.typeError("Spec.Str", name, "a string")
	}
	return s, nil
}

//Map returns a copy of the mapping parameter name, or nil if it is not set.
func (S *Spec) Map(name string) (map[string]any, error) {
	v, ok := S.params[name]
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, S.typeError("Spec.Map", name, "a mapping")
	}
	return deepCopy(m).(map[string]any), nil
}

//List returns the elements of the list parameter name, or nil if it is not set.
func (S *Spec) List(name string) ([]any, error) {
	v, ok := S.params[name]
	if !ok || v == nil {
		return nil, nil
	}
	l, ok := toList(v)
	if !ok {
		return nil, S.typeError("Spec.List", name, "a list")
	}
	return l, nil
}

//toFloat converts any Go number, but not booleans, to float64.
func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

//toList returns the elements of any Go slice or array.
func toList(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	ret := make([]any, rv.Len())
	for i := range ret {
		ret[i] = rv.Index(i).Interface()
	}
	return ret, true
}

//toFloats converts a list of numbers to floats.
func toFloats(v any) ([]float64, bool) {
	l, ok := toList(v)
	if !ok {
		return nil, false
	}
	ret := make([]float64, len(l))
	for i, e := range l {
		f, ok := toFloat(e)
		if !ok {
			return nil, false
		}
		ret[i] = f
	}
	return ret, true
}

//Floats returns the list parameter name as floats, or nil if it is not set.
func (S *Spec) Floats(name string) ([]float64, error) {
	v, ok := S.params[name]
	if !ok || v == nil {
		return nil, nil
	}
	ret, ok := toFloats(v)
	if !ok {
		return nil, S.typeError("Spec.Floats", name, "a list of numbers")
	}
	return ret, nil
}

//Ints returns the list parameter name as integers, or nil if it is not set.
func (S *Spec) Ints(name string) ([]int, error) {
	f, err := S.Floats(name)
	if err != nil {
		return nil, mdp.ErrDecorate(err, "Spec.Ints")
	}
	if f == nil {
		return nil, nil
	}
	ret := make([]int, len(f))
	for i, v := range f {
		if v != math.Trunc(v) {
			return nil, S.typeError("Spec.Ints", name, "a list of integers")
		}
		ret[i] = int(v)
	}
	return ret, nil
}
