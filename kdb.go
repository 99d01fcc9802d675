package kdb

import (
	"bufio"
	"io"
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Header is the decoded form of the 8 bytes in front of every message.
type Header struct {
	MsgType    int
	Compressed bool
	Size       int
}

// ParseHeader reads the header at the start of msg. Only little-endian
// messages are accepted.
func ParseHeader(msg []byte) (Header, error) {
	b := buffer(msg)
	if err := b.check(0, headerSize); err != nil {
		return Header{}, errors.Wrap(ErrBadHeader, err.Error())
	}
	h := ipcHeader{ByteOrder: msg[0], RequestType: msg[1], Compressed: msg[2], Reserved: msg[3]}
	h.MsgSize, _ = b.int32At(4)
	if h.ByteOrder != 1 {
		return Header{}, errors.Wrapf(ErrBadHeader, "byte order %d", h.ByteOrder)
	}
	if h.MsgSize < headerSize {
		return Header{}, errors.Wrapf(ErrBadHeader, "message size %d", h.MsgSize)
	}
	return Header{MsgType: int(h.RequestType), Compressed: h.Compressed == 1, Size: int(h.MsgSize)}, nil
}

// WriteMessage encodes data as a message of type msgtype (ASYNC, SYNC or
// RESPONSE) and writes it to w, compressed when compress is set and it
// pays off.
func WriteMessage(w io.Writer, msgtype int, data interface{}, compress bool) error {
	if msgtype < 0 || msgtype > math.MaxUint8 {
		return errors.Errorf("invalid message type %d", msgtype)
	}
	msg, err := encodeMessage(msgtype, data)
	if err != nil {
		return err
	}
	if compress {
		msg = Compress(msg)
	}
	_, err = w.Write(msg)
	return err
}

// ReadMessage reads one complete message from src, as delimited by its
// header, and decodes it.
func ReadMessage(src *bufio.Reader, opts ...DecodeOption) (data interface{}, msgtype int, err error) {
	head, err := src.Peek(headerSize)
	if err != nil {
		glog.Errorln("Failed to read message header:", err)
		return nil, -1, err
	}
	h, err := ParseHeader(head)
	if err != nil {
		return nil, -1, err
	}
	msg := make([]byte, h.Size)
	if _, err = io.ReadFull(src, msg); err != nil {
		glog.Errorln("ReadMessage: short message -", err)
		return nil, h.MsgType, err
	}
	glog.V(1).Infof("read message type %d, %d bytes, compressed %v", h.MsgType, h.Size, h.Compressed)
	data, err = Decode(msg, opts...)
	return data, h.MsgType, err
}
