package kdb

import (
	"fmt"
	"math"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DecodeOption adjusts how Decode materialises values.
type DecodeOption func(*reader)

// RawNanos leaves timestamps and timespans as int64 nanosecond counts
// instead of time.Time. Timestamps count from 1970.01.01.
func RawNanos() DecodeOption {
	return func(r *reader) {
		r.rawNanos = true
	}
}

// Decodes a complete q ipc message held in b. Compressed messages are
// uncompressed first. Lists come back as []interface{}, char lists as
// string and dictionaries as Dict. A q error in the message is returned
// as a RemoteError.
func Decode(b []byte, opts ...DecodeOption) (interface{}, error) {
	if len(b) < headerSize {
		return nil, errors.Wrapf(ErrBadHeader, "message of %d bytes", len(b))
	}
	if b[2] == 1 {
		var err error
		if b, err = Uncompress(b[headerSize:]); err != nil {
			return nil, err
		}
	}
	r := &reader{buf: buffer(b), pos: headerSize}
	for _, opt := range opts {
		opt(r)
	}
	return r.read()
}

// reader walks a message. pos is the next byte to read.
type reader struct {
	buf      buffer
	pos      int
	rawNanos bool
}

func (r *reader) read() (interface{}, error) {
	b, err := r.i8()
	if err != nil {
		return nil, err
	}
	t := WireType(b)
	glog.V(2).Infoln("Msg Type:", t)
	switch {
	case t == KERR:
		msg, err := r.symbol()
		if err != nil {
			return nil, err
		}
		return nil, RemoteError(msg)
	case t < 0 && t > -20:
		return r.atom(-t)
	case t > XD && t <= KFUNCTR:
		idx, err := r.u8()
		if err != nil {
			return nil, err
		}
		if idx == 0 && t == KFUNCUP {
			return nil, nil
		}
		return Function{Type: t, Index: idx}, nil
	case t == XD:
		return r.dict()
	case t == XT:
		return nil, errors.Wrapf(ErrUnsupportedType, "table")
	case t < 0 || t > KT:
		return nil, errors.Wrapf(ErrUnsupportedType, "type %d", int8(t))
	}
	return r.list(t)
}

func (r *reader) list(t WireType) (interface{}, error) {
	if t != K0 && !t.IsScalar() {
		return nil, errors.Wrapf(ErrBadType, "bad type %d", int8(t))
	}
	r.pos++ // attribute
	n, err := r.i32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.Wrapf(ErrBadMsg, "negative list length %d", n)
	}
	if t == KC {
		s, err := r.buf.stringAt(r.pos, int(n))
		if err != nil {
			return nil, err
		}
		r.pos += int(n)
		return s, nil
	}
	// every element takes at least one byte; refuse to allocate for more
	// elements than could possibly follow
	w := registry[t].width
	if w < 1 {
		w = 1
	}
	if int(n) > (len(r.buf)-r.pos)/w {
		return nil, errors.Wrapf(ErrOutOfRange, "list of %d %v elements", n, t)
	}
	res := make([]interface{}, n)
	for i := range res {
		if t == K0 {
			res[i], err = r.read()
		} else {
			res[i], err = r.atom(t)
		}
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (r *reader) dict() (interface{}, error) {
	k, err := r.read()
	if err != nil {
		return nil, err
	}
	v, err := r.read()
	if err != nil {
		return nil, err
	}
	keys, ok := k.([]interface{})
	if !ok {
		return nil, errors.Wrapf(ErrBadMsg, "dict keys are %T", k)
	}
	var vals []interface{}
	switch x := v.(type) {
	case []interface{}:
		vals = x
	case string:
		for i := 0; i < len(x); i++ {
			vals = append(vals, x[i:i+1])
		}
	default:
		return nil, errors.Wrapf(ErrBadMsg, "dict values are %T", v)
	}
	if len(keys) != len(vals) {
		return nil, errors.Wrapf(ErrBadMsg, "dict has %d keys and %d values", len(keys), len(vals))
	}
	d := Dict{Keys: make([]string, len(keys)), Values: vals}
	for i, key := range keys {
		if s, ok := key.(string); ok {
			d.Keys[i] = s
		} else {
			d.Keys[i] = fmt.Sprint(key)
		}
	}
	return d, nil
}

// atom reads the payload of a scalar of type t.
func (r *reader) atom(t WireType) (interface{}, error) {
	switch t {
	case KB:
		b, err := r.i8()
		return b == 1, err
	case UU:
		if err := r.buf.check(r.pos, 16); err != nil {
			return nil, err
		}
		var u uuid.UUID
		r.pos += copy(u[:], r.buf[r.pos:])
		return u.String(), nil
	case KG:
		return r.u8()
	case KH:
		h, err := r.i16()
		if err != nil {
			return nil, err
		}
		switch h {
		case Wh:
			return math.Inf(1), nil
		case nWh:
			return math.Inf(-1), nil
		}
		return h, nil
	case KI:
		i, err := r.i32()
		if err != nil {
			return nil, err
		}
		switch i {
		case Wi:
			return math.Inf(1), nil
		case nWi:
			return math.Inf(-1), nil
		}
		return i, nil
	case KJ:
		j, err := r.i64()
		if err != nil {
			return nil, err
		}
		switch j {
		case Wj:
			return math.Inf(1), nil
		case nWj:
			return math.Inf(-1), nil
		}
		return j, nil
	case KE:
		e, err := r.buf.float32At(r.pos)
		r.pos += 4
		return e, err
	case KF:
		f, err := r.buf.float64At(r.pos)
		r.pos += 8
		return f, err
	case KC:
		c, err := r.u8()
		if err != nil {
			return nil, err
		}
		if c == ' ' {
			return nil, nil
		}
		return string(rune(c)), nil
	case KS:
		return r.symbol()
	case KP:
		ns, err := r.i64()
		if err != nil {
			return nil, err
		}
		if r.rawNanos {
			return ns + epochOffsetDays*nsPerDay, nil
		}
		return qEpoch.Add(time.Duration(ns)), nil
	case KM:
		m, err := r.i32()
		if err != nil {
			return nil, err
		}
		return time.Date(2000+int(m/12), time.Month(m%12+1), 1, 0, 0, 0, 0, time.UTC), nil
	case KD:
		d, err := r.i32()
		if err != nil {
			return nil, err
		}
		return qEpoch.AddDate(0, 0, int(d)), nil
	case KZ:
		z, err := r.buf.float64At(r.pos)
		if err != nil {
			return nil, err
		}
		r.pos += 8
		return epochDays(z), nil
	case KN:
		ns, err := r.i64()
		if err != nil {
			return nil, err
		}
		if r.rawNanos {
			return ns, nil
		}
		return qEpoch.Add(time.Duration(ns)), nil
	case KU, KV, KT:
		i, err := r.i32()
		if err != nil {
			return nil, err
		}
		return qEpoch.Add(time.Duration(i) * clockUnit(t)), nil
	}
	return nil, errors.Wrapf(ErrBadType, "bad type %d", int8(t))
}

func clockUnit(t WireType) time.Duration {
	switch t {
	case KU:
		return time.Minute
	case KV:
		return time.Second
	}
	return time.Millisecond
}

// epochDays is the instant n days after 2000.01.01, to the nearest millisecond.
func epochDays(n float64) time.Time {
	ms := math.Round(msPerDay * (epochOffsetDays + n))
	return time.UnixMilli(int64(ms)).UTC()
}

// symbol reads null-terminated UTF-8 text.
func (r *reader) symbol() (string, error) {
	end := r.buf.indexByte(r.pos, 0)
	if end < 0 {
		return "", errors.Wrapf(ErrOutOfRange, "unterminated symbol at %d", r.pos)
	}
	s, err := r.buf.stringAt(r.pos, end-r.pos)
	r.pos = end + 1
	return s, err
}

func (r *reader) i8() (int8, error) {
	v, err := r.buf.int8At(r.pos)
	r.pos++
	return v, err
}

func (r *reader) u8() (uint8, error) {
	v, err := r.buf.uint8At(r.pos)
	r.pos++
	return v, err
}

func (r *reader) i16() (int16, error) {
	v, err := r.buf.int16At(r.pos)
	r.pos += 2
	return v, err
}

func (r *reader) i32() (int32, error) {
	v, err := r.buf.int32At(r.pos)
	r.pos += 4
	return v, err
}

// i64 reads a long as its two int32 halves, low first.
func (r *reader) i64() (int64, error) {
	lo, err := r.i32()
	if err != nil {
		return 0, err
	}
	hi, err := r.i32()
	if err != nil {
		return 0, err
	}
	return int64(hi)<<32 | int64(uint32(lo)), nil
}
