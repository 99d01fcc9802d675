package kdb

import (
	"fmt"

	"github.com/pkg/errors"
)

// messages this short are never compressed
const minCompressSize = 18

// Compress msg, a complete message, using q IPC compression. The result
// keeps msg's header with the compressed flag set and its size field
// updated. msg itself is returned when compression would not save at
// least half of it.
func Compress(msg []byte) []byte {
	if len(msg) < minCompressSize {
		return msg
	}
	var (
		dst    = make([]byte, len(msg)/2)
		limit  = len(dst) - 17
		hashes [256]int
		bit    byte // current bit of the flag byte
		flags  byte
		fpos   = 12 // where the flag byte for the current group goes
		d      = fpos
		s      = headerSize
		end    = len(msg)
		h, h0  int
		s0     int
	)
	copy(dst[:4], msg[:4])
	dst[2] = 1
	order.PutUint32(dst[8:], uint32(len(msg)))
	for ; s < end; bit *= 2 {
		if bit == 0 {
			if d > limit {
				return msg
			}
			bit = 1
			dst[fpos] = flags
			fpos = d
			d++
			flags = 0
		}
		literal := s > end-3
		var p int
		if !literal {
			h = int(msg[s] ^ msg[s+1])
			p = hashes[h]
			literal = p == 0 || msg[s] != msg[p]
		}
		if s0 > 0 {
			hashes[h0] = s0
			s0 = 0
		}
		if literal {
			h0 = h
			s0 = s
			dst[d] = msg[s]
			d++
			s++
			continue
		}
		// back reference: the two bytes found through the hash plus up
		// to 255 more
		hashes[h] = s
		flags |= bit
		p += 2
		s += 2
		start := s
		stop := s + 255
		if stop > end {
			stop = end
		}
		for msg[p] == msg[s] {
			s++
			if s >= stop {
				break
			}
			p++
		}
		dst[d] = byte(h)
		dst[d+1] = byte(s - start)
		d += 2
	}
	dst[fpos] = flags
	order.PutUint32(dst[4:], uint32(d))
	return dst[:d:d]
}

// Uncompress the body of a compressed message, i.e. everything after its
// 8-byte header. The result is a whole message whose first 8 bytes are
// zero; the data starts at offset 8 as in any other message.
func Uncompress(b []byte) (dst []byte, err error) {
	if len(b) < 4+1 {
		return nil, errors.Wrapf(ErrBadMsg, "compressed body of %d bytes", len(b))
	}
	size := int32(order.Uint32(b))
	if size < headerSize {
		return nil, errors.Wrapf(ErrBadMsg, "uncompressed size %d", size)
	}
	// a corrupt body makes the indices below run off either slice
	defer func() {
		if e := recover(); e != nil {
			dst = nil
			err = errors.Wrap(ErrBadMsg, fmt.Sprint(e))
		}
	}()
	dst = make([]byte, size)
	var (
		hashes [256]int
		d      = 4
		s      = headerSize
		p      = s
		bit    = 0
		flags  = 0
		n      int
	)
	for s < len(dst) {
		if bit == 0 {
			flags = int(b[d])
			d++
			bit = 1
		}
		ref := flags&bit != 0
		if ref {
			r := hashes[b[d]]
			d++
			dst[s] = dst[r]
			dst[s+1] = dst[r+1]
			s += 2
			r += 2
			n = int(b[d])
			d++
			for m := 0; m < n; m++ {
				dst[s+m] = dst[r+m]
			}
		} else {
			dst[s] = b[d]
			s++
			d++
		}
		for p < s-1 {
			hashes[dst[p]^dst[p+1]] = p
			p++
		}
		if ref {
			s += n
			p = s
		}
		bit *= 2
		if bit == 256 {
			bit = 0
		}
	}
	return dst, nil
}
