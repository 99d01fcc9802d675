package kdb

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewTypedShapeErrors(t *testing.T) {
	var shapeTests = []struct {
		desc string
		typ  WireType
		v    interface{}
		msg  string
	}{
		{"boolean", KB, 1, `expected "1" to be a boolean`},
		{"guid empty", UU, "", "string must not be empty"},
		{"guid number", UU, 1, `expected "1" to be a string`},
		{"int", KI, "1", `expected "1" to be a number`},
		{"char", KC, 1, `expected "1" to be a string`},
		{"symbol empty", KS, "", "string must not be empty"},
		{"date", KD, "2000.01.01", `expected "2000.01.01" to be a date`},
		{"long", KJ, 1.5, "low and high required for long"},
		{"long halves", KJ, Long{Low: math.NaN(), High: 1}, "low and high required for long"},
	}
	for _, tt := range shapeTests {
		_, err := NewTyped(tt.typ, tt.v)
		require.Error(t, err, tt.desc)
		se, ok := err.(*ShapeError)
		require.True(t, ok, "%s: %T", tt.desc, err)
		require.Equal(t, tt.typ, se.Type, tt.desc)
		require.Equal(t, tt.msg, se.Error(), tt.desc)
	}
}

func TestNewTypedBadType(t *testing.T) {
	for _, typ := range []WireType{K0, 3, XD, KTLIST, KERR, 20} {
		_, err := NewTyped(typ, 1)
		require.Error(t, err, "%v", typ)
		_, err = NewTypedList(typ, []int{1})
		require.Error(t, err, "%v", typ)
	}
}

func TestNewTypedList(t *testing.T) {
	tv, err := NewTypedList(KI, []int{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, KTLIST, tv.Type())
	elem, err := tv.ElemType()
	require.NoError(t, err)
	require.Equal(t, KI, elem)
	require.Equal(t, []interface{}{1.0, 2.0, 3.0}, tv.Value())
	require.Equal(t, "list[int](1,2,3)", tv.String())

	_, err = NewTypedList(KB, []interface{}{1, 2})
	require.EqualError(t, err, `expected "1" to be a boolean`)
	_, err = NewTypedList(KI, []int{})
	require.EqualError(t, err, "array must not be empty")
	_, err = NewTypedList(KI, 1)
	require.EqualError(t, err, `expected "1" to be an array`)
}

func TestNewListAndDict(t *testing.T) {
	l, err := NewList([]interface{}{1, "`a"})
	require.NoError(t, err)
	require.Equal(t, K0, l.Type())
	_, err = l.ElemType()
	require.EqualError(t, err, "only available for type typedlist")
	_, err = NewList(nil)
	require.Error(t, err)
	_, err = NewList([]string{})
	require.EqualError(t, err, "array must not be empty")

	d, err := NewDict(map[string]interface{}{"b": 2, "a": 1})
	require.NoError(t, err)
	require.Equal(t, XD, d.Type())
	require.Equal(t, Dict{Keys: []string{"a", "b"}, Values: []interface{}{1, 2}}, d.Value())

	_, err = NewDict(map[string]interface{}{})
	require.EqualError(t, err, "object must not be empty")
	_, err = NewDict([]int{1})
	require.EqualError(t, err, `expected "[1]" to be an object`)
	_, err = NewDict(Dict{Keys: []string{"a"}})
	require.Error(t, err)
}

func TestTypedScalar(t *testing.T) {
	tv, err := NewTyped(KI, 1)
	require.NoError(t, err)
	require.Equal(t, KI, tv.Type())
	require.Equal(t, "int(1)", tv.String())
	_, err = tv.ElemType()
	require.Error(t, err)

	tv, err = NewTyped(KS, nil)
	require.NoError(t, err)
	require.Nil(t, tv.Value())

	ts := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	tv, err = NewTyped(KP, &ts)
	require.NoError(t, err)
	require.Equal(t, ts, tv.Value())
}

func TestGUIDPayloads(t *testing.T) {
	const s = "4fd620c0-ac4d-49f9-9ef8-19c5233aaf4d"
	u := uuid.MustParse(s)
	want := [16]byte(u)
	for _, v := range []interface{}{s, u, [16]byte(u)} {
		tv, err := NewTyped(UU, v)
		require.NoError(t, err)
		require.Equal(t, want, tv.Value())
	}
	_, err := NewTyped(UU, "not-a-guid")
	require.Error(t, err)
}

func TestLong(t *testing.T) {
	var longTests = []struct {
		low, high float64
		expected  int64
	}{
		{0, 0, 0},
		{1, 0, 1},
		{-1, -1, -1},
		{0xffffffff, 0x7fffffff, Wj},
		{math.Inf(1), 0, Wj},
		{0, math.Inf(-1), nWj},
		{0, 1, 1 << 32},
	}
	for _, tt := range longTests {
		v, err := Long{Low: tt.low, High: tt.high}.Int64()
		require.NoError(t, err)
		require.Equal(t, tt.expected, v, "%v %v", tt.low, tt.high)
	}
	_, err := Long{Low: 0.5, High: 0}.Int64()
	require.Error(t, err)
	_, err = NewLong(math.NaN(), math.NaN())
	require.EqualError(t, err, "low and high required for long")
}

func TestTypeOf(t *testing.T) {
	tv, _ := NewTyped(KH, 1)
	var typeTests = []struct {
		v        interface{}
		expected WireType
	}{
		{nil, KNIL},
		{1, KF},
		{uint8(1), KF},
		{float32(1), KF},
		{true, KB},
		{time.Now(), KZ},
		{"x", KSTR},
		{[]int{1}, KLIST},
		{[2]string{}, KLIST},
		{[]byte("ab"), KLIST},
		{map[string]interface{}{}, XD},
		{Dict{}, XD},
		{tv, KH},
	}
	for _, tt := range typeTests {
		typ, err := TypeOf(tt.v)
		require.NoError(t, err, "%v", tt.v)
		require.Equal(t, tt.expected, typ, "%v", tt.v)
	}
	_, err := TypeOf(struct{}{})
	require.Error(t, err)
	_, err = TypeOf(map[int]int{})
	require.Error(t, err)
}
