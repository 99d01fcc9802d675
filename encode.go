package kdb

import (
	"math"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Encode serializes v into a complete q ipc message: the 8-byte header
// followed by v. The message type byte is left at ASYNC (0).
func Encode(v interface{}) ([]byte, error) {
	return encodeMessage(ASYNC, v)
}

func encodeMessage(msgtype int, v interface{}) ([]byte, error) {
	n, err := Size(v)
	if err != nil {
		return nil, err
	}
	total := headerSize + n
	if total > math.MaxInt32 {
		return nil, errors.Wrapf(ErrOutOfRange, "message of %d bytes", total)
	}
	w := &writer{buf: make(buffer, total)}
	if err = w.header(msgtype, total); err != nil {
		return nil, err
	}
	if err = w.write(v); err != nil {
		return nil, err
	}
	if w.pos != total {
		return nil, errors.Errorf("encoded %d bytes, size estimate was %d", w.pos, total)
	}
	glog.V(2).Infof("encoded %d byte message", total)
	return w.buf, nil
}

// writer fills a buffer sized by Size. pos is the next byte to write.
type writer struct {
	buf buffer
	pos int
}

func (w *writer) header(msgtype int, total int) error {
	h := ipcHeader{ByteOrder: 1, RequestType: byte(msgtype), MsgSize: int32(total)}
	for _, b := range []byte{h.ByteOrder, h.RequestType, h.Compressed, h.Reserved} {
		if err := w.u8(b); err != nil {
			return err
		}
	}
	return w.i32(h.MsgSize)
}

func (w *writer) write(v interface{}) error {
	n, err := resolve(v)
	if err != nil {
		return err
	}
	return w.node(n)
}

func (w *writer) node(n node) error {
	switch n.t {
	case KNIL:
		if err := w.u8(uint8(KFUNCUP)); err != nil {
			return err
		}
		return w.u8(0)
	case KSTR:
		s := n.v.(string)
		if err := w.listHeader(KC, len(s)); err != nil {
			return err
		}
		return w.str(s)
	case XD:
		return w.dict(n.v.(Dict))
	case K0:
		items := n.v.([]interface{})
		if err := w.listHeader(K0, len(items)); err != nil {
			return err
		}
		for _, x := range items {
			if err := w.write(x); err != nil {
				return err
			}
		}
		return nil
	case KTLIST:
		items := n.v.([]interface{})
		if _, err := Code(n.elem); err != nil {
			return err
		}
		if err := w.listHeader(n.elem, len(items)); err != nil {
			return err
		}
		for _, x := range items {
			if err := w.atom(n.elem, x); err != nil {
				return err
			}
		}
		return nil
	}
	code, err := Code(n.t)
	if err != nil {
		return err
	}
	if err := w.i8(-int8(code)); err != nil {
		return err
	}
	return w.atom(n.t, n.v)
}

func (w *writer) dict(d Dict) error {
	if err := w.u8(uint8(XD)); err != nil {
		return err
	}
	if err := w.listHeader(KS, len(d.Keys)); err != nil {
		return err
	}
	for _, k := range d.Keys {
		if err := w.symbol(k); err != nil {
			return err
		}
	}
	vals, err := promote(d.Values)
	if err != nil {
		return err
	}
	return w.node(vals)
}

func (w *writer) listHeader(t WireType, n int) error {
	if n > math.MaxInt32 {
		return errors.Wrapf(ErrOutOfRange, "list of %d elements", n)
	}
	if err := w.u8(uint8(t)); err != nil {
		return err
	}
	if err := w.u8(0); err != nil {
		return err
	}
	return w.i32(int32(n))
}

// atom writes the payload of a scalar without its type byte. v is always in
// the form checkScalar produces.
func (w *writer) atom(t WireType, v interface{}) error {
	switch t {
	case KB:
		if v.(bool) {
			return w.u8(1)
		}
		return w.u8(0)
	case UU:
		g := v.([16]byte)
		if err := w.buf.check(w.pos, len(g)); err != nil {
			return err
		}
		w.pos += copy(w.buf[w.pos:], g[:])
		return nil
	case KG:
		i, err := toRange(t, v.(float64), math.MinInt8, math.MaxUint8)
		if err != nil {
			return err
		}
		return w.u8(uint8(i))
	case KH:
		return w.short(v.(float64))
	case KI:
		return w.intAtom(t, v.(float64))
	case KJ:
		return w.long(v)
	case KE:
		return w.f32(float32(v.(float64)))
	case KF:
		return w.f64(v.(float64))
	case KC:
		return w.u8(v.(string)[0])
	case KS:
		return w.symbol(v)
	}
	x := v.(time.Time)
	switch t {
	case KP:
		d := x.Sub(qEpoch)
		if d == math.MaxInt64 || d == math.MinInt64 {
			return errors.Wrapf(ErrOutOfRange, "%v does not fit a timestamp", x)
		}
		return w.i64(int64(d))
	case KM:
		u := x.UTC()
		return w.intAtom(t, float64((u.Year()-2000)*12+int(u.Month())-1))
	case KD:
		return w.intAtom(t, float64(floorDiv(x.UnixMilli(), msPerDay)-epochOffsetDays))
	case KZ:
		return w.f64(float64(x.UnixMilli())/msPerDay - epochOffsetDays)
	case KN:
		return w.i64(int64(sinceMidnight(x)))
	case KU:
		return w.i32(int32(sinceMidnight(x) / time.Minute))
	case KV:
		return w.i32(int32(sinceMidnight(x) / time.Second))
	case KT:
		return w.i32(int32(sinceMidnight(x) / time.Millisecond))
	}
	return errors.Wrapf(ErrBadType, "bad type %v", t)
}

func (w *writer) short(f float64) error {
	switch {
	case math.IsInf(f, 1):
		return w.i16(Wh)
	case math.IsInf(f, -1):
		return w.i16(nWh)
	}
	i, err := toRange(KH, f, math.MinInt16, math.MaxInt16)
	if err != nil {
		return err
	}
	return w.i16(int16(i))
}

func (w *writer) intAtom(t WireType, f float64) error {
	switch {
	case math.IsInf(f, 1):
		return w.i32(Wi)
	case math.IsInf(f, -1):
		return w.i32(nWi)
	}
	i, err := toRange(t, f, math.MinInt32, math.MaxInt32)
	if err != nil {
		return err
	}
	return w.i32(int32(i))
}

func (w *writer) long(v interface{}) error {
	switch x := v.(type) {
	case int64:
		return w.i64(x)
	case float64:
		if math.IsInf(x, 1) {
			return w.i64(Wj)
		}
		if math.IsInf(x, -1) {
			return w.i64(nWj)
		}
	}
	return errors.Wrapf(ErrBadType, "%v is not a long", v)
}

// symbol writes the UTF-8 text and a terminating zero. nil is the null symbol.
func (w *writer) symbol(v interface{}) error {
	if s, ok := v.(string); ok {
		if err := w.str(s); err != nil {
			return err
		}
	}
	return w.u8(0)
}

func toRange(t WireType, f float64, min, max int64) (int64, error) {
	if math.IsNaN(f) || f < float64(min) || f > float64(max) {
		return 0, errors.Wrapf(ErrOutOfRange, "%v does not fit %v", f, t)
	}
	return int64(f), nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// sinceMidnight is the UTC time of day of x.
func sinceMidnight(x time.Time) time.Duration {
	u := x.UTC()
	h, m, s := u.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(u.Nanosecond())
}

func (w *writer) i8(v int8) error {
	err := w.buf.putInt8(w.pos, v)
	w.pos++
	return err
}

func (w *writer) u8(v uint8) error {
	err := w.buf.putUint8(w.pos, v)
	w.pos++
	return err
}

func (w *writer) i16(v int16) error {
	err := w.buf.putInt16(w.pos, v)
	w.pos += 2
	return err
}

func (w *writer) i32(v int32) error {
	err := w.buf.putInt32(w.pos, v)
	w.pos += 4
	return err
}

func (w *writer) i64(v int64) error {
	err := w.buf.putInt64(w.pos, v)
	w.pos += 8
	return err
}

func (w *writer) f32(v float32) error {
	err := w.buf.putFloat32(w.pos, v)
	w.pos += 4
	return err
}

func (w *writer) f64(v float64) error {
	err := w.buf.putFloat64(w.pos, v)
	w.pos += 8
	return err
}

func (w *writer) str(s string) error {
	n, err := w.buf.putString(w.pos, s)
	w.pos += n
	return err
}
