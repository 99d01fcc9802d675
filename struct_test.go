package kdb

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	var registryTests = []struct {
		name  string
		code  uint8
		width int
	}{
		{"boolean", 1, 1},
		{"guid", 2, 16},
		{"byte", 4, 1},
		{"short", 5, 2},
		{"int", 6, 4},
		{"long", 7, 8},
		{"real", 8, 4},
		{"float", 9, 8},
		{"char", 10, 1},
		{"symbol", 11, VariableWidth},
		{"timestamp", 12, 8},
		{"month", 13, 4},
		{"date", 14, 4},
		{"datetime", 15, 8},
		{"timespan", 16, 8},
		{"minute", 17, 4},
		{"second", 18, 4},
		{"time", 19, 4},
	}
	types := ScalarTypes()
	require.Len(t, types, len(registryTests))
	for i, tt := range registryTests {
		typ, err := TypeByName(tt.name)
		require.NoError(t, err, tt.name)
		require.Equal(t, types[i], typ)
		require.Equal(t, tt.name, typ.String())
		code, err := Code(typ)
		require.NoError(t, err, tt.name)
		require.Equal(t, tt.code, code, tt.name)
		width, err := Width(typ)
		require.NoError(t, err, tt.name)
		require.Equal(t, tt.width, width, tt.name)
	}
}

func TestRegistryUnknown(t *testing.T) {
	_, err := TypeByName("decimal")
	require.True(t, errors.Is(err, ErrBadType))
	for _, typ := range []WireType{K0, 3, 20, XD, KLIST, KSTR, KERR} {
		_, err = Code(typ)
		require.True(t, errors.Is(err, ErrBadType), "%v", typ)
		_, err = Width(typ)
		require.True(t, errors.Is(err, ErrBadType), "%v", typ)
		require.False(t, typ.IsScalar())
	}
	typ, err := TypeByName("TimeStamp")
	require.NoError(t, err)
	require.Equal(t, KP, typ)
	require.Equal(t, "dict", XD.String())
	require.Equal(t, "type(3)", WireType(3).String())
}

func TestDict(t *testing.T) {
	d := Dict{Keys: []string{"a", "b"}, Values: []interface{}{1, "x"}}
	v, ok := d.Get("b")
	require.True(t, ok)
	require.Equal(t, "x", v)
	_, ok = d.Get("c")
	require.False(t, ok)
	require.Equal(t, "`a`b!(1;x)", d.String())
}
