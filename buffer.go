package kdb

import (
	"bytes"
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var order = binary.LittleEndian

// buffer is a little-endian view over a message. Every accessor takes an
// absolute offset and fails with ErrOutOfRange instead of panicking.
type buffer []byte

func (b buffer) check(off, n int) error {
	if off < 0 || n < 0 || off > len(b)-n {
		return errors.Wrapf(ErrOutOfRange, "access of %d bytes at %d, buffer length %d", n, off, len(b))
	}
	return nil
}

func (b buffer) int8At(off int) (int8, error) {
	v, err := b.uint8At(off)
	return int8(v), err
}

func (b buffer) uint8At(off int) (uint8, error) {
	if err := b.check(off, 1); err != nil {
		return 0, err
	}
	return b[off], nil
}

func (b buffer) int16At(off int) (int16, error) {
	if err := b.check(off, 2); err != nil {
		return 0, err
	}
	return int16(order.Uint16(b[off:])), nil
}

func (b buffer) int32At(off int) (int32, error) {
	if err := b.check(off, 4); err != nil {
		return 0, err
	}
	return int32(order.Uint32(b[off:])), nil
}

func (b buffer) float32At(off int) (float32, error) {
	if err := b.check(off, 4); err != nil {
		return 0, err
	}
	return math.Float32frombits(order.Uint32(b[off:])), nil
}

func (b buffer) float64At(off int) (float64, error) {
	if err := b.check(off, 8); err != nil {
		return 0, err
	}
	return math.Float64frombits(order.Uint64(b[off:])), nil
}

// stringAt decodes n bytes at off as UTF-8. Invalid sequences become U+FFFD.
func (b buffer) stringAt(off, n int) (string, error) {
	if err := b.check(off, n); err != nil {
		return "", err
	}
	raw := b[off : off+n]
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	return string(bytes.ToValidUTF8(raw, []byte(string(utf8.RuneError)))), nil
}

// indexByte returns the absolute offset of the first c at or after off, or -1.
func (b buffer) indexByte(off int, c byte) int {
	if off < 0 || off >= len(b) {
		return -1
	}
	i := bytes.IndexByte(b[off:], c)
	if i < 0 {
		return -1
	}
	return off + i
}

func (b buffer) putInt8(off int, v int8) error {
	return b.putUint8(off, uint8(v))
}

func (b buffer) putUint8(off int, v uint8) error {
	if err := b.check(off, 1); err != nil {
		return err
	}
	b[off] = v
	return nil
}

func (b buffer) putInt16(off int, v int16) error {
	if err := b.check(off, 2); err != nil {
		return err
	}
	order.PutUint16(b[off:], uint16(v))
	return nil
}

func (b buffer) putInt32(off int, v int32) error {
	if err := b.check(off, 4); err != nil {
		return err
	}
	order.PutUint32(b[off:], uint32(v))
	return nil
}

func (b buffer) putInt64(off int, v int64) error {
	if err := b.check(off, 8); err != nil {
		return err
	}
	order.PutUint64(b[off:], uint64(v))
	return nil
}

func (b buffer) putFloat32(off int, v float32) error {
	if err := b.check(off, 4); err != nil {
		return err
	}
	order.PutUint32(b[off:], math.Float32bits(v))
	return nil
}

func (b buffer) putFloat64(off int, v float64) error {
	if err := b.check(off, 8); err != nil {
		return err
	}
	order.PutUint64(b[off:], math.Float64bits(v))
	return nil
}

// putString copies the UTF-8 bytes of s to off and returns how many were written.
func (b buffer) putString(off int, s string) (int, error) {
	if err := b.check(off, len(s)); err != nil {
		return 0, err
	}
	return copy(b[off:], s), nil
}
