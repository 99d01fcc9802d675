package kdb

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	gouuid "github.com/nu7hatch/gouuid"
	"github.com/pkg/errors"
)

// Typed tells the encoder exactly how to send a value instead of letting
// it infer the type. Build one with NewTyped, NewTypedList, NewList,
// NewDict or NewLong; construction checks the payload against the type.
type Typed struct {
	typ   WireType
	value interface{}
	elem  WireType
}

// Type returns the tagged type: a scalar, KTLIST, K0 or XD.
func (t *Typed) Type() WireType { return t.typ }

// Value returns the payload in its normalised form.
func (t *Typed) Value() interface{} { return t.value }

// ElemType returns the element type of a typed list.
func (t *Typed) ElemType() (WireType, error) {
	if t.typ != KTLIST {
		return 0, errors.New("only available for type typedlist")
	}
	return t.elem, nil
}

func (t *Typed) String() string {
	if t.typ == KTLIST {
		return fmt.Sprintf("list[%v](%s)", t.elem, joinValues(t.value.([]interface{})))
	}
	if vs, ok := t.value.([]interface{}); ok {
		return fmt.Sprintf("%v(%s)", t.typ, joinValues(vs))
	}
	return fmt.Sprintf("%v(%v)", t.typ, t.value)
}

func joinValues(vs []interface{}) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}

// NewTyped tags a single value with scalar type t.
//
//	bool                      boolean
//	string, [16]byte, uuid    guid
//	any Go number             byte, short, int, real, float (±Inf allowed except byte)
//	integer, Long, ±Inf       long
//	non-empty string          char (first byte is sent), symbol
//	nil                       symbol (the null symbol)
//	time.Time                 timestamp, month, date, datetime, timespan, minute, second, time
func NewTyped(t WireType, v interface{}) (*Typed, error) {
	if !t.IsScalar() {
		return nil, errors.Wrapf(ErrBadType, "bad type %v", t)
	}
	if t == KS && v == nil {
		return &Typed{typ: KS}, nil
	}
	nv, err := checkScalar(t, v)
	if err != nil {
		return nil, err
	}
	return &Typed{typ: t, value: nv}, nil
}

// NewTypedList tags a non-empty slice as a homogeneous list of elem.
func NewTypedList(elem WireType, vs interface{}) (*Typed, error) {
	if !elem.IsScalar() {
		return nil, errors.Wrapf(ErrBadType, "bad type %v", elem)
	}
	items, err := nonEmptyItems(KTLIST, vs)
	if err != nil {
		return nil, err
	}
	for i, v := range items {
		if items[i], err = checkScalar(elem, v); err != nil {
			return nil, err
		}
	}
	return &Typed{typ: KTLIST, value: items, elem: elem}, nil
}

// NewList tags a non-empty slice as a mixed list, so every element is sent
// with its own type even when they would all agree.
func NewList(vs interface{}) (*Typed, error) {
	items, err := nonEmptyItems(K0, vs)
	if err != nil {
		return nil, err
	}
	return &Typed{typ: K0, value: items}, nil
}

// NewDict tags a non-empty map[string]interface{} or Dict as a dictionary.
// Map keys are sorted so the encoding is deterministic.
func NewDict(v interface{}) (*Typed, error) {
	var d Dict
	switch x := v.(type) {
	case Dict:
		d = x
	case *Dict:
		if x == nil {
			return nil, shapeErrorf(XD, `expected "%v" to be an object`, v)
		}
		d = *x
	case map[string]interface{}:
		d = dictFromMap(x)
	default:
		return nil, shapeErrorf(XD, `expected "%v" to be an object`, v)
	}
	if len(d.Keys) != len(d.Values) {
		return nil, shapeErrorf(XD, "dict has %d keys and %d values", len(d.Keys), len(d.Values))
	}
	if len(d.Keys) == 0 {
		return nil, shapeErrorf(XD, "object must not be empty")
	}
	return &Typed{typ: XD, value: d}, nil
}

// Long is a 64-bit integer given as its signed 32-bit halves. A half of
// math.Inf(±1) makes the whole value ±0Wj; a NaN half means it is missing.
type Long struct {
	Low, High float64
}

// Int64 assembles the halves. Infinite halves yield the sentinel patterns.
func (l Long) Int64() (int64, error) {
	switch {
	case math.IsInf(l.Low, 1) || math.IsInf(l.High, 1):
		return Wj, nil
	case math.IsInf(l.Low, -1) || math.IsInf(l.High, -1):
		return nWj, nil
	}
	lo, ok1 := half(l.Low)
	hi, ok2 := half(l.High)
	if !ok1 || !ok2 {
		return 0, shapeErrorf(KJ, "low and high required for long")
	}
	return int64(hi)<<32 | int64(lo), nil
}

// half accepts a signed or unsigned 32-bit integral value and returns its bits.
func half(f float64) (uint32, bool) {
	if math.IsNaN(f) || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxUint32 {
		return 0, false
	}
	return uint32(int64(f)), true
}

// NewLong tags a long built from its halves.
func NewLong(low, high float64) (*Typed, error) {
	return NewTyped(KJ, Long{Low: low, High: high})
}

func nonEmptyItems(t WireType, vs interface{}) ([]interface{}, error) {
	items, ok := listItems(vs)
	if !ok {
		return nil, shapeErrorf(t, `expected "%v" to be an array`, vs)
	}
	if len(items) == 0 {
		return nil, shapeErrorf(t, "array must not be empty")
	}
	return items, nil
}

// listItems copies any slice or array into []interface{}.
func listItems(v interface{}) ([]interface{}, bool) {
	if items, ok := v.([]interface{}); ok {
		return items, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]interface{}, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func dictFromMap(m map[string]interface{}) Dict {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals := make([]interface{}, len(keys))
	for i, k := range keys {
		vals[i] = m[k]
	}
	return Dict{Keys: keys, Values: vals}
}

// checkScalar validates v for scalar type t and returns the form the
// encoder writes.
func checkScalar(t WireType, v interface{}) (interface{}, error) {
	switch t {
	case KB:
		if b, ok := v.(bool); ok {
			return b, nil
		}
		return nil, shapeErrorf(t, `expected "%v" to be a boolean`, v)
	case UU:
		return checkGUID(v)
	case KG, KH, KI, KE, KF:
		if f, ok := toFloat(v); ok {
			return f, nil
		}
		return nil, shapeErrorf(t, `expected "%v" to be a number`, v)
	case KJ:
		return checkLong(v)
	case KC, KS:
		s, ok := v.(string)
		if !ok {
			return nil, shapeErrorf(t, `expected "%v" to be a string`, v)
		}
		if s == "" {
			return nil, shapeErrorf(t, "string must not be empty")
		}
		return s, nil
	case KP, KM, KD, KZ, KN, KU, KV, KT:
		switch x := v.(type) {
		case time.Time:
			return x, nil
		case *time.Time:
			if x != nil {
				return *x, nil
			}
		}
		return nil, shapeErrorf(t, `expected "%v" to be a date`, v)
	}
	return nil, errors.Wrapf(ErrBadType, "bad type %v", t)
}

// checkGUID returns the 16 raw bytes of a guid payload.
func checkGUID(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case string:
		if x == "" {
			return nil, shapeErrorf(UU, "string must not be empty")
		}
		u, err := uuid.Parse(x)
		if err != nil {
			return nil, shapeErrorf(UU, `expected "%v" to be a guid: %v`, v, err)
		}
		return [16]byte(u), nil
	case uuid.UUID:
		return [16]byte(x), nil
	case [16]byte:
		return x, nil
	case gouuid.UUID:
		return [16]byte(x), nil
	case *gouuid.UUID:
		if x != nil {
			return [16]byte(*x), nil
		}
	}
	return nil, shapeErrorf(UU, `expected "%v" to be a string`, v)
}

// checkLong returns an int64, or a float64 infinity for ±0Wj.
func checkLong(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case Long:
		return x.Int64()
	case *Long:
		if x != nil {
			return x.Int64()
		}
	case float64:
		if math.IsInf(x, 0) {
			return x, nil
		}
	case float32:
		if math.IsInf(float64(x), 0) {
			return float64(x), nil
		}
	}
	if i, ok := toInt64(v); ok {
		return i, nil
	}
	return nil, shapeErrorf(KJ, "low and high required for long")
}

// toFloat accepts any Go number.
func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

// toInt64 accepts Go integer kinds only; uint64 above MaxInt64 is rejected.
func toInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), uint64(x) <= math.MaxInt64
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), x <= math.MaxInt64
	}
	return 0, false
}
