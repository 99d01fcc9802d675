package kdb

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Message type, second byte of the ipc header
const (
	ASYNC    int = 0
	SYNC     int = 1
	RESPONSE int = 2
)

// WireType is a q type as it appears on the wire, plus a few producer-side
// kinds that are resolved to a wire layout before anything is written.
type WireType int8

const (
	K0 WireType = 0 // mixed list
	//      type bytes qtype     ctype  accessor
	KB WireType = 1  // 1 boolean   char   kG
	UU WireType = 2  // 16 guid     U      kU
	KG WireType = 4  // 1 byte      char   kG
	KH WireType = 5  // 2 short     short  kH
	KI WireType = 6  // 4 int       int    kI
	KJ WireType = 7  // 8 long      long   kJ
	KE WireType = 8  // 4 real      float  kE
	KF WireType = 9  // 8 float     double kF
	KC WireType = 10 // 1 char      char   kC
	KS WireType = 11 // * symbol    char*  kS

	KP WireType = 12 // 8 timestamp long   kJ (nanoseconds from 2000.01.01)
	KM WireType = 13 // 4 month     int    kI (months from 2000.01.01)
	KD WireType = 14 // 4 date      int    kI (days from 2000.01.01)
	KZ WireType = 15 // 8 datetime  double kF (days from 2000.01.01)
	KN WireType = 16 // 8 timespan  long   kJ (nanoseconds)
	KU WireType = 17 // 4 minute    int    kI
	KV WireType = 18 // 4 second    int    kI
	KT WireType = 19 // 4 time      int    kI (millisecond)

	// table,dict
	XT WireType = 98 //   not supported
	XD WireType = 99 //   symbol list of keys followed by a list of values

	// function types, decoded as opaque markers
	KFUNC   WireType = 100
	KFUNCUP WireType = 101 // unary primitive, (::) is null
	KFUNCBP WireType = 102 // binary primitive
	KFUNCTR WireType = 103 // ternary (operator)

	// error type
	KERR WireType = -128
)

// Producer-side kinds. They never reach the wire under these numbers.
const (
	KLIST  WireType = 120 // untagged sequence, resolved to K0 or a typed list
	KTLIST WireType = 121 // typed list, element type carried by Typed
	KSTR   WireType = 122 // text, resolved to a symbol atom or a char list
	KNIL   WireType = 123 // null, written as (::)
)

// VariableWidth is reported by Width for symbols.
const VariableWidth = -1

type typeInfo struct {
	name  string
	width int
}

// registry of scalar types indexed by type code; zero entries are holes
var registry = [KT + 1]typeInfo{
	KB: {"boolean", 1},
	UU: {"guid", 16},
	KG: {"byte", 1},
	KH: {"short", 2},
	KI: {"int", 4},
	KJ: {"long", 8},
	KE: {"real", 4},
	KF: {"float", 8},
	KC: {"char", 1},
	KS: {"symbol", VariableWidth},
	KP: {"timestamp", 8},
	KM: {"month", 4},
	KD: {"date", 4},
	KZ: {"datetime", 8},
	KN: {"timespan", 8},
	KU: {"minute", 4},
	KV: {"second", 4},
	KT: {"time", 4},
}

var pseudoNames = map[WireType]string{
	K0:     "mixedlist",
	XD:     "dict",
	XT:     "table",
	KLIST:  "list",
	KTLIST: "typedlist",
	KSTR:   "string",
	KNIL:   "null",
}

var typesByName = func() map[string]WireType {
	m := make(map[string]WireType, len(registry))
	for i, ti := range registry {
		if ti.name != "" {
			m[ti.name] = WireType(i)
		}
	}
	return m
}()

// IsScalar reports whether t is one of the registry's scalar types.
func (t WireType) IsScalar() bool {
	return t > 0 && t <= KT && registry[t].name != ""
}

func (t WireType) String() string {
	if t.IsScalar() {
		return registry[t].name
	}
	if s, ok := pseudoNames[t]; ok {
		return s
	}
	return fmt.Sprintf("type(%d)", int8(t))
}

// Code returns the registry code of a scalar type.
func Code(t WireType) (uint8, error) {
	if !t.IsScalar() {
		return 0, errors.Wrapf(ErrBadType, "bad type %v", t)
	}
	return uint8(t), nil
}

// Width returns the fixed byte width of a scalar type, or VariableWidth
// for symbols.
func Width(t WireType) (int, error) {
	if !t.IsScalar() {
		return 0, errors.Wrapf(ErrBadType, "bad type %v", t)
	}
	return registry[t].width, nil
}

// TypeByName looks up a scalar type by its q name, e.g. "timestamp".
func TypeByName(name string) (WireType, error) {
	t, ok := typesByName[strings.ToLower(name)]
	if !ok {
		return 0, errors.Wrapf(ErrBadType, "bad type %s", name)
	}
	return t, nil
}

// ScalarTypes lists the registry in code order.
func ScalarTypes() []WireType {
	var res []WireType
	for i := range registry {
		if WireType(i).IsScalar() {
			res = append(res, WireType(i))
		}
	}
	return res
}

type ipcHeader struct {
	ByteOrder   byte
	RequestType byte
	Compressed  byte
	Reserved    byte
	MsgSize     int32
}

const headerSize = 8

// infinities
const (
	Wh int16 = 0x7FFF
	Wi int32 = 0x7FFFFFFF
	Wj int64 = 0x7FFFFFFFFFFFFFFF
)

// -0W in each width. q reserves the minimum value for null, so negative
// infinity is one above it.
const (
	nWh = -Wh
	nWi = -Wi
	nWj = -Wj
)

// Ni is the int null; its bit pattern is the high half of -0Wj.
const Ni int32 = -0x80000000

// message is malformated or invalid
var ErrBadMsg = errors.New("Bad Message")

// msg header is invalid
var ErrBadHeader = errors.New("Bad header")

// type code or name outside the registry
var ErrBadType = errors.New("bad type")

// read or write outside the buffer, or a number that does not fit its type
var ErrOutOfRange = errors.New("out of range")

// wire type that is recognised but not implemented
var ErrUnsupportedType = errors.New("type is unsupported")

// RemoteError carries the text of a q error (type -128) found in a message.
type RemoteError string

func (e RemoteError) Error() string {
	return string(e)
}

// ShapeError reports a payload that does not fit the type it was tagged with.
type ShapeError struct {
	Type WireType
	Msg  string
}

func (e *ShapeError) Error() string {
	return e.Msg
}

func shapeErrorf(t WireType, format string, args ...interface{}) error {
	return &ShapeError{Type: t, Msg: fmt.Sprintf(format, args...)}
}

var qEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// days between 1970.01.01 and 2000.01.01
const epochOffsetDays = 10957

const (
	msPerDay = 86400000
	nsPerDay = 86400000000000
)

// Dict is an ordered key->value mapping. Keys are always sent as symbols.
type Dict struct {
	Keys   []string
	Values []interface{}
}

func (d Dict) String() string {
	vals := make([]string, len(d.Values))
	for i, v := range d.Values {
		vals[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("`%s!(%s)", strings.Join(d.Keys, "`"), strings.Join(vals, ";"))
}

// Get returns the value stored under key.
func (d Dict) Get(key string) (interface{}, bool) {
	for i, k := range d.Keys {
		if k == key {
			return d.Values[i], true
		}
	}
	return nil, false
}

// Function is the placeholder returned for q function values. Only the
// type code and the byte following it are kept.
type Function struct {
	Type  WireType
	Index byte
}

func (f Function) String() string {
	return "func"
}
