package kdb

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	h, err := ParseHeader(bytes2KTrue)
	require.NoError(t, err)
	require.Equal(t, Header{MsgType: ASYNC, Compressed: true, Size: len(bytes2KTrue)}, h)

	h, err = ParseHeader([]byte{0x01, 0x02, 0x00, 0x00, 0x0a, 0x00, 0x00, 0x00, 0xff, 0x01})
	require.NoError(t, err)
	require.Equal(t, Header{MsgType: RESPONSE, Size: 10}, h)

	var badHeaders = [][]byte{
		{0x01, 0x00, 0x00},
		{0x00, 0x00, 0x00, 0x00, 0x0a, 0x00, 0x00, 0x00},
		{0x01, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00},
		{0x01, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff},
	}
	for _, b := range badHeaders {
		_, err = ParseHeader(b)
		require.True(t, errors.Is(err, ErrBadHeader), "%v: %v", b, err)
	}
}

func TestWriteReadMessage(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, WriteMessage(buf, SYNC, "`ping", false))
	require.NoError(t, WriteMessage(buf, RESPONSE, true2K(), true))
	require.NoError(t, WriteMessage(buf, ASYNC, map[string]interface{}{"a": 1}, true))

	r := bufio.NewReader(buf)
	v, msgtype, err := ReadMessage(r)
	require.NoError(t, err)
	require.Equal(t, SYNC, msgtype)
	require.Equal(t, "ping", v)

	v, msgtype, err = ReadMessage(r)
	require.NoError(t, err)
	require.Equal(t, RESPONSE, msgtype)
	require.Len(t, v, 2000)

	v, msgtype, err = ReadMessage(r)
	require.NoError(t, err)
	require.Equal(t, ASYNC, msgtype)
	require.Equal(t, Dict{Keys: []string{"a"}, Values: []interface{}{1.0}}, v)

	_, _, err = ReadMessage(r)
	require.Equal(t, io.EOF, err)
}

func TestWriteMessageCompressed(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, WriteMessage(buf, ASYNC, true2K(), true))
	require.Equal(t, bytes2KTrue, buf.Bytes())

	// too small to compress
	buf.Reset()
	require.NoError(t, WriteMessage(buf, SYNC, mustTyped(KG, 1), true))
	require.Equal(t, []byte{0x01, 0x01, 0x00, 0x00, 0x0a, 0x00, 0x00, 0x00, 0xfc, 0x01}, buf.Bytes())
}

func TestWriteMessageErrors(t *testing.T) {
	buf := new(bytes.Buffer)
	require.Error(t, WriteMessage(buf, 256, nil, false))
	require.Error(t, WriteMessage(buf, -1, nil, false))
	err := WriteMessage(buf, SYNC, make(chan int), false)
	require.True(t, errors.Is(err, ErrBadType))
	require.Zero(t, buf.Len())
}

func TestReadMessageErrors(t *testing.T) {
	// header promises more than is there
	r := bufio.NewReader(bytes.NewReader([]byte{0x01, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0xff}))
	_, msgtype, err := ReadMessage(r)
	require.Error(t, err)
	require.Equal(t, ASYNC, msgtype)

	r = bufio.NewReader(bytes.NewReader([]byte{0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00}))
	_, _, err = ReadMessage(r)
	require.True(t, errors.Is(err, ErrBadHeader))

	r = bufio.NewReader(bytes.NewReader(msg(0x80, 'e', 'r', 'r', 0x00)))
	_, _, err = ReadMessage(r)
	require.Equal(t, RemoteError("err"), err)
}

func TestReadMessageRawNanos(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, WriteMessage(buf, ASYNC, mustTyped(KP, qEpoch), false))
	v, _, err := ReadMessage(bufio.NewReader(buf), RawNanos())
	require.NoError(t, err)
	require.Equal(t, qEpoch.UnixNano(), v)
}
