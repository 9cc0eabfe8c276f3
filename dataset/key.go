package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"

	mdp "github.com/ajoshpratt/MolDynPlot"
)

//Key is the identity of a dataset: two specifications with equal keys produce the same
//dataset. Keys can be compared with == and used as map keys. The zero Key means that
//the specification can't be cached.
type Key struct {
	repr string
}

//Cacheable returns false for the zero Key.
func (K Key) Cacheable() bool {
	return K.repr != ""
}

//String returns the canonical form of the key.
func (K Key) String() string {
	if !K.Cacheable() {
		return "<uncacheable>"
	}
	return K.repr
}

//Less orders keys by their canonical form.
func (K Key) Less(o Key) bool {
	return K.repr < o.repr
}

//Digest returns the hex-encoded sha256 of the canonical form of the key, or an empty string
//for the zero Key.
func (K Key) Digest() string {
	if !K.Cacheable() {
		return ""
	}
	h := sha256.Sum256([]byte(K.repr))
	return hex.EncodeToString(h[:])
}

//errUncacheable is returned by canonical for values holding a specification that can't
//be cached. It never leaves Resolve.
var errUncacheable = errors.New("uncacheable specification")

//nonSemantic parameters don't change the dataset, so they are not part of the key.
var nonSemantic = map[string]bool{
	"verbose": true,
	"debug":   true,
}

//pathParams hold file paths when they are strings, and get environment variables expanded.
var pathParams = map[string]bool{
	"infile": true,
	"scale":  true,
}

//setParams are lists where neither order nor repetition matters.
var setParams = map[string]bool{
	"use_indexes": true,
}

//Resolve returns the key of the specification S. The key is made from the
//canonical name of the kind and the parameters, sorted by name. Lists keep their order,
//except for use_indexes, which is a set. Mappings are sorted by key. Numbers have the same
//form regardless of their Go type.
//A specification of a non-composite kind without infile can't be cached, and the zero Key
//is returned for it. A specification can't be cached either if any specification nested in it,
//as a sub-dataset or inside a list or mapping parameter, can't.
func Resolve(S *Spec) (Key, error) {
	K, err := Lookup(S.Kind())
	if err != nil {
		return Key{}, mdp.ErrDecorate(err, "Resolve")
	}
	if !K.Composite && !S.Has("infile") {
		return Key{}, nil
	}
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(K.Name)
	for _, name := range S.Names() {
		if nonSemantic[name] {
			continue
		}
		v := S.params[name]
		if sub, ok := v.(*Spec); ok {
			sk, err := Resolve(sub)
			if err != nil {
				return Key{}, mdp.ErrDecorate(err, "Resolve: "+name)
			}
			if !sk.Cacheable() {
				return Key{}, nil
			}
			b.WriteString(" (" + strconv.Quote(name) + " " + sk.repr + ")")
			continue
		}
		if str, ok := v.(string); ok && pathParams[name] {
			v = os.ExpandEnv(str)
		}
		var repr string
		if setParams[name] {
			repr, err = canonicalSet(v)
		} else {
			repr, err = canonical(v)
		}
		if err == errUncacheable {
			return Key{}, nil
		}
		if err != nil {
			return Key{}, mdp.ErrDecorate(err, "Resolve: "+name)
		}
		b.WriteString(" (" + strconv.Quote(name) + " " + repr + ")")
	}
	b.WriteString(")")
	return Key{repr: b.String()}, nil
}

func canonicalNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

//canonical returns the canonical form of the value v.
func canonical(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "nil", nil
	case bool:
		if t {
			return "#t", nil
		}
		return "#f", nil
	case string:
		return strconv.Quote(t), nil
	case *Spec:
		k, err := Resolve(t)
		if err != nil {
			return "", err
		}
		if !k.Cacheable() {
			return "", errUncacheable
		}
		return "(spec " + k.repr + ")", nil
	}
	if f, ok := toFloat(v); ok {
		return canonicalNumber(f), nil
	}
	if l, ok := toList(v); ok {
		parts := make([]string, len(l))
		for i, e := range l {
			c, err := canonical(e)
			if err != nil {
				return "", err
			}
			parts[i] = c
		}
		return "(list" + join(parts) + ")", nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			c, err := canonical(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return "", err
			}
			parts[i] = "(" + strconv.Quote(k) + " " + c + ")"
		}
		return "(map" + join(parts) + ")", nil
	}
	return "", mdp.NewError(mdp.ConfigurationError, "canonical", "parameter values of type %T are not supported", v)
}

//canonicalSet returns the canonical form of the list v as a set: sorted, without repetitions.
func canonicalSet(v any) (string, error) {
	l, ok := toList(v)
	if !ok {
		return canonical(v)
	}
	parts := make([]string, 0, len(l))
	nums := make([]float64, 0, len(l))
	for _, e := range l {
		if f, ok := toFloat(e); ok {
			nums = append(nums, f)
			continue
		}
		c, err := canonical(e)
		if err != nil {
			return "", err
		}
		parts = append(parts, c)
	}
	sort.Float64s(nums)
	sorted := make([]string, 0, len(l))
	for i, f := range nums {
		if i > 0 && f == nums[i-1] {
			continue
		}
		sorted = append(sorted, canonicalNumber(f))
	}
	sort.Strings(parts)
	for i, p := range parts {
		if i > 0 && p == parts[i-1] {
			continue
		}
		sorted = append(sorted, p)
	}
	return "(set" + join(sorted) + ")", nil
}

func join(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}
