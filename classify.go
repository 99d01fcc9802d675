package kdb

import (
	"reflect"
	"regexp"
	"time"

	"github.com/pkg/errors"
)

// a backtick followed by at least one non-space character
var symbolLiteral = regexp.MustCompile("^`\\S+$")

// TypeOf classifies a value. An explicit Typed tag wins; otherwise
//
//	nil                         KNIL
//	Go number                   KF
//	time.Time                   KZ
//	bool                        KB
//	slice or array              KLIST
//	string                      KSTR
//	map[string]interface{}, Dict XD
//
// Anything else is ErrBadType.
func TypeOf(v interface{}) (WireType, error) {
	switch x := v.(type) {
	case nil:
		return KNIL, nil
	case *Typed:
		if x == nil {
			return KNIL, nil
		}
		return x.typ, nil
	case bool:
		return KB, nil
	case time.Time, *time.Time:
		return KZ, nil
	case string:
		return KSTR, nil
	case Dict, *Dict, map[string]interface{}:
		return XD, nil
	case []interface{}:
		return KLIST, nil
	}
	if _, ok := toFloat(v); ok {
		return KF, nil
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return KLIST, nil
	}
	return 0, errors.Wrapf(ErrBadType, "bad type %T", v)
}

// node is a value resolved to the layout it is written with:
//
//	scalar types   v is the normalised payload (KS: string or nil)
//	KSTR           v is a string sent as a char list
//	KTLIST         v is []interface{} of normalised payloads of type elem
//	K0             v is []interface{} of unresolved elements
//	XD             v is a Dict
//	KNIL
//
// The size estimator and the writer both work from nodes so they agree on
// every decision.
type node struct {
	t    WireType
	elem WireType
	v    interface{}
}

func resolve(v interface{}) (node, error) {
	t, err := TypeOf(v)
	if err != nil {
		return node{}, err
	}
	switch t {
	case KNIL:
		return node{t: KNIL}, nil
	case KSTR:
		s := v.(string)
		if symbolLiteral.MatchString(s) {
			return node{t: KS, v: s[1:]}, nil
		}
		return node{t: KSTR, v: s}, nil
	case KLIST:
		items, _ := listItems(v)
		return promote(items)
	case XD:
		if tv, ok := v.(*Typed); ok {
			return node{t: XD, v: tv.value}, nil
		}
		return resolveDict(v)
	}
	if tv, ok := v.(*Typed); ok {
		return node{t: tv.typ, elem: tv.elem, v: tv.value}, nil
	}
	// untagged scalars: numbers, bools and instants
	nv, err := checkScalar(t, deref(v))
	if err != nil {
		return node{}, err
	}
	return node{t: t, v: nv}, nil
}

func deref(v interface{}) interface{} {
	if p, ok := v.(*time.Time); ok && p != nil {
		return *p
	}
	return v
}

func resolveDict(v interface{}) (node, error) {
	var d Dict
	switch x := v.(type) {
	case Dict:
		d = x
	case *Dict:
		if x == nil {
			return node{t: KNIL}, nil
		}
		d = *x
	case map[string]interface{}:
		d = dictFromMap(x)
	}
	if len(d.Keys) != len(d.Values) {
		return node{}, shapeErrorf(XD, "dict has %d keys and %d values", len(d.Keys), len(d.Values))
	}
	return node{t: XD, v: d}, nil
}

// promote turns a non-empty untagged sequence whose elements all classify
// to the same scalar type into a typed list. Anything else is a mixed list.
func promote(items []interface{}) (node, error) {
	if len(items) == 0 {
		return node{t: K0, v: items}, nil
	}
	first, err := TypeOf(items[0])
	if err != nil {
		return node{}, err
	}
	if !first.IsScalar() {
		return node{t: K0, v: items}, nil
	}
	for _, x := range items[1:] {
		t, err := TypeOf(x)
		if err != nil {
			return node{}, err
		}
		if t != first {
			return node{t: K0, v: items}, nil
		}
	}
	payloads := make([]interface{}, len(items))
	for i, x := range items {
		if tv, ok := x.(*Typed); ok {
			payloads[i] = tv.value
			continue
		}
		if payloads[i], err = checkScalar(first, deref(x)); err != nil {
			return node{}, err
		}
	}
	return node{t: KTLIST, elem: first, v: payloads}, nil
}
